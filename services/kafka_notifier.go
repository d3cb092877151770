package services

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl/plain"
)

// KafkaConfig holds the broker connection settings shared by the producer and the mail worker.
type KafkaConfig struct {
	Broker   string
	Topic    string
	GroupID  string
	Username string
	Password string
}

// saslEnabled reports whether the broker expects SASL/PLAIN over TLS.
func (c KafkaConfig) saslEnabled() bool {
	return c.Username != ""
}

// KafkaNotifier publishes emails to a topic; a MailWorker delivers them.
type KafkaNotifier struct {
	writer *kafka.Writer
}

func NewKafkaNotifier(cfg KafkaConfig) (*KafkaNotifier, error) {
	if cfg.Broker == "" || cfg.Topic == "" {
		return nil, fmt.Errorf("KAFKA_BROKER and KAFKA_TOPIC are required for the kafka notifier")
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Broker),
		Topic:        cfg.Topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireAll,
		Async:        false,
		WriteTimeout: 10 * time.Second,
	}
	if cfg.saslEnabled() {
		writer.Transport = &kafka.Transport{
			SASL: plain.Mechanism{Username: cfg.Username, Password: cfg.Password},
			TLS:  &tls.Config{},
		}
	}

	return &KafkaNotifier{writer: writer}, nil
}

func (n *KafkaNotifier) Send(ctx context.Context, email Email) error {
	value, err := json.Marshal(email)
	if err != nil {
		return fmt.Errorf("marshal email: %w", err)
	}

	return n.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(email.To),
		Value: value,
		Time:  time.Now(),
	})
}

func (n *KafkaNotifier) Close() error {
	return n.writer.Close()
}

// MailWorker consumes the email topic and hands each message to a delivery notifier.
type MailWorker struct {
	reader   *kafka.Reader
	delivery Notifier
	logger   zerolog.Logger
}

func NewMailWorker(cfg KafkaConfig, delivery Notifier, logger zerolog.Logger) *MailWorker {
	dialer := &kafka.Dialer{
		Timeout:   10 * time.Second,
		DualStack: true,
	}
	if cfg.saslEnabled() {
		dialer.TLS = &tls.Config{}
		dialer.SASLMechanism = plain.Mechanism{Username: cfg.Username, Password: cfg.Password}
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  []string{cfg.Broker},
		GroupID:  cfg.GroupID,
		Topic:    cfg.Topic,
		MinBytes: 10e3,
		MaxBytes: 10e6,
		Dialer:   dialer,
	})

	return &MailWorker{
		reader:   reader,
		delivery: delivery,
		logger:   logger.With().Str("serviceName", "mailWorker").Logger(),
	}
}

// Listen blocks until ctx is cancelled. Undeliverable messages are logged and skipped.
func (w *MailWorker) Listen(ctx context.Context) {
	for {
		msg, err := w.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			w.logger.Error().Err(err).Msg("read error")
			continue
		}

		if err := w.handle(ctx, msg.Value); err != nil {
			w.logger.Error().Err(err).Int64("offset", msg.Offset).Msg("handler error")
		}
	}
}

func (w *MailWorker) handle(ctx context.Context, value []byte) error {
	var email Email
	if err := json.Unmarshal(value, &email); err != nil {
		return fmt.Errorf("decode email: %w", err)
	}

	sendCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := w.delivery.Send(sendCtx, email); err != nil {
		return fmt.Errorf("deliver email to %s: %w", email.To, err)
	}
	w.logger.Info().Str("to", email.To).Str("subject", email.Subject).Msg("email delivered")
	return nil
}

func (w *MailWorker) Close() error {
	return w.reader.Close()
}
