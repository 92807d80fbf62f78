package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/lehigh-university-libraries/placeimages/internal/models"
)

// KafkaConfig holds the settings of the Kafka collection sink
type KafkaConfig struct {
	Brokers      []string      `mapstructure:"brokers"`
	Topic        string        `mapstructure:"topic"`
	BatchTimeout time.Duration `mapstructure:"batch_timeout"`
}

// CollectionMessage is the value published for every registered collection
type CollectionMessage struct {
	Slug         string                   `json:"slug"`
	Images       []models.NormalizedImage `json:"images"`
	RegisteredAt time.Time                `json:"registered_at"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Kafka publishes collections to a topic keyed by slug, so a compacted topic
// keeps only the latest collection per location.
type Kafka struct {
	writer messageWriter
	topic  string
	now    func() time.Time
}

// NewKafka creates an asynchronous producer. Delivery failures are reported
// through the writer's completion callback and logged.
func NewKafka(cfg KafkaConfig) (*Kafka, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka sink requires at least one broker")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("kafka sink requires a topic")
	}
	if cfg.BatchTimeout <= 0 {
		cfg.BatchTimeout = 100 * time.Millisecond
	}

	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: cfg.BatchTimeout,
		Async:        true,
		Completion: func(messages []kafka.Message, err error) {
			if err == nil {
				return
			}
			for _, m := range messages {
				slog.Error("Failed to publish collection", "topic", cfg.Topic, "slug", string(m.Key), "err", err)
			}
		},
	}

	slog.Info("Kafka sink configured", "brokers", cfg.Brokers, "topic", cfg.Topic)
	return &Kafka{writer: w, topic: cfg.Topic, now: time.Now}, nil
}

// RegisterImages publishes the collection of slug. It never blocks on delivery.
func (k *Kafka) RegisterImages(slug string, images []models.NormalizedImage) {
	msg, err := k.message(slug, images)
	if err != nil {
		slog.Error("Failed to encode collection", "slug", slug, "err", err)
		return
	}

	if err := k.writer.WriteMessages(context.Background(), msg); err != nil {
		slog.Error("Failed to enqueue collection", "topic", k.topic, "slug", slug, "err", err)
	}
}

func (k *Kafka) message(slug string, images []models.NormalizedImage) (kafka.Message, error) {
	if images == nil {
		images = []models.NormalizedImage{}
	}
	value, err := json.Marshal(CollectionMessage{
		Slug:         slug,
		Images:       images,
		RegisteredAt: k.now().UTC(),
	})
	if err != nil {
		return kafka.Message{}, fmt.Errorf("marshal collection %s: %w", slug, err)
	}
	return kafka.Message{Key: []byte(slug), Value: value}, nil
}

// Close flushes pending messages and releases the producer
func (k *Kafka) Close() error {
	return k.writer.Close()
}
