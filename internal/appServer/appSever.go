// launching the server, generator, compositor, kafka
package appServer

import (
	"context"
	"crypto/tls"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/sundai-club/climatime-machine/config"
	"github.com/sundai-club/climatime-machine/internal/pkg/compositor"
	"github.com/sundai-club/climatime-machine/internal/pkg/generator"
	"github.com/sundai-club/climatime-machine/internal/pkg/kafka"
	"github.com/sundai-club/climatime-machine/internal/pkg/storage"
	"github.com/sundai-club/climatime-machine/internal/service"
	"github.com/sundai-club/climatime-machine/internal/transport"
)

const shutdownTimeout = 15 * time.Second

type Server struct {
	httpServer *http.Server
}

func (s *Server) Run(cfg *config.Config, handler http.Handler) error {
	s.httpServer = &http.Server{
		Addr:              cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:           handler,
		MaxHeaderBytes:    1 << 20,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 3 * time.Second,
		TLSConfig:         &tls.Config{MinVersion: tls.VersionTLS12},
		ErrorLog:          log.New(os.Stderr, "SERVER ERROR: ", log.LstdFlags),
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// App holds the wired components of one running instance.
type App struct {
	Handler  http.Handler
	producer kafka.Producer
}

func (a *App) Close() error {
	return a.producer.Close()
}

func Build(cfg *config.Config, logger *logrus.Entry) (*App, error) {
	layout, err := compositor.ParseLayout(cfg.Compositor.Layout)
	if err != nil {
		return nil, err
	}
	comp, err := compositor.New(compositor.Options{
		Layout:    layout,
		Quality:   cfg.Compositor.Quality,
		MaxPixels: cfg.Compositor.MaxPixels,
		Logger:    logger,
	})
	if err != nil {
		return nil, err
	}

	fileStorage, err := storage.NewFileStorage(cfg.Upload.StagingDir)
	if err != nil {
		return nil, err
	}

	if cfg.Gemini.APIKey == "" {
		logger.Warn("GEMINI_API_KEY is not set, transform requests will fail until it is configured")
	}
	gen := generator.NewGemini(generator.GeminiOptions{
		APIKey:  cfg.Gemini.APIKey,
		Model:   cfg.Gemini.Model,
		Timeout: cfg.Gemini.Timeout,
		Logger:  logger,
	})

	producer := kafka.NewProducer(cfg.Kafka, logger)
	transformService := service.NewTransformService(fileStorage, gen, comp, producer, cfg.Upload.MaxBytes, logger)
	transformHandler := transport.NewTransformHandler(transformService, cfg.Upload.MaxBytes, logger)

	return &App{
		Handler:  transport.InitRoutes(transformHandler, cfg.Server.RequestTimeout),
		producer: producer,
	}, nil
}

func NewServer(cfg *config.Config) {
	logrus.SetFormatter(new(logrus.JSONFormatter))
	if level, err := logrus.ParseLevel(cfg.Log.Level); err == nil {
		logrus.SetLevel(level)
	}

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	logger := logrus.WithFields(logrus.Fields{
		"version":     cfg.Server.AppVersion,
		"environment": cfg.Server.Env,
	})

	app, err := Build(cfg, logger)
	if err != nil {
		logrus.Fatalf("error occured while building app: %s", err.Error())
	}

	srv := new(Server)
	go func() {
		if err := srv.Run(cfg, app.Handler); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("error occured while running http server: %s", err.Error())
		}
	}()

	logger.WithField("port", cfg.Server.Port).Info("App Started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	logrus.Print("App Shutting Down")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logrus.Errorf("error occured on server shutting down: %s", err.Error())
	}
	if err := app.Close(); err != nil {
		logrus.Errorf("error occured on closing kafka producer: %s", err.Error())
	}
}
