package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"

	"github.com/kailas-cloud/partdex/internal/domain/search/event"
)

// Config holds producer parameters.
type Config struct {
	Brokers []string
	Topic   string
	Timeout time.Duration
}

// Publisher publishes search events to a Kafka topic, keyed by query so that
// events for one query land in one partition.
type Publisher struct {
	producer sarama.SyncProducer
	topic    string
}

// NewPublisher connects a synchronous producer.
func NewPublisher(cfg Config) (*Publisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("brokers are required")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("topic is required")
	}

	sc := sarama.NewConfig()
	sc.Producer.Return.Successes = true
	sc.Producer.RequiredAcks = sarama.WaitForLocal
	sc.Producer.Partitioner = sarama.NewHashPartitioner
	if cfg.Timeout > 0 {
		sc.Producer.Timeout = cfg.Timeout
	}

	producer, err := sarama.NewSyncProducer(cfg.Brokers, sc)
	if err != nil {
		return nil, fmt.Errorf("create producer: %w", err)
	}
	return NewPublisherWithProducer(producer, cfg.Topic), nil
}

// NewPublisherWithProducer wraps an existing producer.
func NewPublisherWithProducer(p sarama.SyncProducer, topic string) *Publisher {
	return &Publisher{producer: p, topic: topic}
}

// Record implements events.Recorder.
func (p *Publisher) Record(ctx context.Context, e event.Event) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("publish search event: %w", err)
	}
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal search event: %w", err)
	}
	msg := &sarama.ProducerMessage{
		Topic:     p.topic,
		Key:       sarama.StringEncoder(e.Query),
		Value:     sarama.ByteEncoder(payload),
		Timestamp: e.CreatedAt,
	}
	if _, _, err := p.producer.SendMessage(msg); err != nil {
		return fmt.Errorf("publish search event: %w", err)
	}
	return nil
}

// Close flushes and closes the producer.
func (p *Publisher) Close() error {
	if err := p.producer.Close(); err != nil {
		return fmt.Errorf("close producer: %w", err)
	}
	return nil
}
