// Initializing common application configuration
package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Upload     UploadConfig     `mapstructure:"upload"`
	Gemini     GeminiConfig     `mapstructure:"gemini"`
	Compositor CompositorConfig `mapstructure:"compositor"`
	Kafka      KafkaConfig      `mapstructure:"kafka"`
	Log        LogConfig        `mapstructure:"log"`
}

type ServerConfig struct {
	AppVersion     string        `mapstructure:"app_version"`
	Host           string        `mapstructure:"host"`
	Port           string        `mapstructure:"port"`
	Timeout        time.Duration `mapstructure:"timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	Env            string        `mapstructure:"environment"`
	Mode           string        `mapstructure:"mode"`
}

type UploadConfig struct {
	MaxBytes   int64  `mapstructure:"max_bytes"`
	StagingDir string `mapstructure:"staging_dir"`
}

// GeminiConfig is passed to the generator at construction time. An empty
// APIKey is not a startup error; it is reported per request.
type GeminiConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type CompositorConfig struct {
	Layout    string `mapstructure:"layout"`
	Quality   int    `mapstructure:"quality"`
	MaxPixels int    `mapstructure:"max_pixels"`
}

type KafkaConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// LoadConfig reads ./config/config.yaml when present. Every key can be
// overridden from the environment (server.port -> SERVER_PORT), and the
// generation credentials also answer to GEMINI_API_KEY / GEMINI_MODEL.
func LoadConfig(paths ...string) (*viper.Viper, error) {
	_ = godotenv.Load()

	viperInstance := viper.New()
	setDefaults(viperInstance)

	if len(paths) == 0 {
		paths = []string{"./config"}
	}
	for _, p := range paths {
		viperInstance.AddConfigPath(p)
	}
	viperInstance.SetConfigName("config")
	viperInstance.SetConfigType("yaml")

	viperInstance.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viperInstance.AutomaticEnv()
	_ = viperInstance.BindEnv("gemini.api_key", "GEMINI_API_KEY")
	_ = viperInstance.BindEnv("gemini.model", "GEMINI_MODEL")

	if err := viperInstance.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}
	return viperInstance, nil
}

func ParseConfig(v *viper.Viper) (*Config, error) {
	var c Config

	if err := v.Unmarshal(&c); err != nil {
		return nil, err
	}
	// comma separated list when it comes from KAFKA_BROKERS
	if len(c.Kafka.Brokers) == 1 && strings.Contains(c.Kafka.Brokers[0], ",") {
		c.Kafka.Brokers = strings.Split(c.Kafka.Brokers[0], ",")
	}
	return &c, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.app_version", "1.0.0")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.timeout", 120*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.request_timeout", 110*time.Second)
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.mode", "debug")

	v.SetDefault("upload.max_bytes", 10<<20)
	v.SetDefault("upload.staging_dir", "./uploads")

	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model", "gemini-2.5-flash-image")
	v.SetDefault("gemini.timeout", 90*time.Second)

	v.SetDefault("compositor.layout", "stacked")
	v.SetDefault("compositor.quality", 90)
	v.SetDefault("compositor.max_pixels", 40_000_000)

	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{"localhost:9094"})
	v.SetDefault("kafka.topic", "climate-transforms")

	v.SetDefault("log.level", "info")
}

func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
