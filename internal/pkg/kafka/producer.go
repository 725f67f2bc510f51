package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"github.com/sundai-club/climatime-machine/config"
)

const writeTimeout = 10 * time.Second

type Producer interface {
	SendMessage(ctx context.Context, key string, message interface{}) error
	Close() error
}

type kafkaProducer struct {
	writer *kafka.Writer
	log    *logrus.Entry
}

// NewProducer returns a Kafka-backed producer, or a mock one when Kafka is
// disabled or the first broker cannot be reached.
func NewProducer(cfg config.KafkaConfig, logger *logrus.Entry) Producer {
	log := logger.WithFields(logrus.Fields{"component": "kafka", "topic": cfg.Topic})

	if !cfg.Enabled || len(cfg.Brokers) == 0 {
		log.Info("Kafka disabled, using mock producer")
		return NewMockProducer(log)
	}

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	conn, err := kafka.DialContext(ctx, "tcp", cfg.Brokers[0])
	if err != nil {
		log.WithError(err).Warn("Kafka connection failed, using mock producer instead")
		return NewMockProducer(log)
	}
	defer conn.Close()

	// Создаем топик если не существует
	err = conn.CreateTopics(kafka.TopicConfig{
		Topic:             cfg.Topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	})
	if err != nil {
		log.WithError(err).Debug("Could not create topic (might already exist)")
	}

	log.WithField("brokers", cfg.Brokers).Info("Connected to Kafka")
	return &kafkaProducer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        cfg.Topic,
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: 10 * time.Millisecond,
			RequiredAcks: kafka.RequireOne,
		},
		log: log,
	}
}

func (p *kafkaProducer) SendMessage(ctx context.Context, key string, message interface{}) error {
	value, err := json.Marshal(message)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: value,
		Time:  time.Now(),
	})
	if err != nil {
		return err
	}

	p.log.WithField("key", key).Debug("Message sent")
	return nil
}

func (p *kafkaProducer) Close() error {
	return p.writer.Close()
}

// MockProducer keeps messages in memory; used when Kafka is unavailable and
// in tests.
type MockProducer struct {
	Err error

	mu       sync.Mutex
	messages []kafka.Message
	closed   bool
	log      *logrus.Entry
}

func NewMockProducer(logger *logrus.Entry) *MockProducer {
	return &MockProducer{log: logger}
}

func (m *MockProducer) SendMessage(ctx context.Context, key string, message interface{}) error {
	if m.Err != nil {
		return m.Err
	}
	value, err := json.Marshal(message)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return errors.New("producer is closed")
	}
	m.messages = append(m.messages, kafka.Message{Key: []byte(key), Value: value, Time: time.Now()})

	if m.log != nil {
		m.log.WithField("key", key).Debug("MOCK: message recorded")
	}
	return nil
}

func (m *MockProducer) Messages() []kafka.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]kafka.Message, len(m.messages))
	copy(out, m.messages)
	return out
}

func (m *MockProducer) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
