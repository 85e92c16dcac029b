package kafka

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/segmentio/kafka-go"

	"asclepius/internal/adapters/config"
	"asclepius/pkg/errors"
	"asclepius/pkg/logger"
)

// Producer publishes JSON messages to Kafka topics
type Producer struct {
	brokers []string
	writers map[string]*kafka.Writer
	mu      sync.Mutex
}

// NewProducer creates a new Kafka producer
func NewProducer(cfg config.KafkaConfig) *Producer {
	return &Producer{
		brokers: cfg.Brokers,
		writers: make(map[string]*kafka.Writer),
	}
}

func (p *Producer) writer(topic string) *kafka.Writer {
	p.mu.Lock()
	defer p.mu.Unlock()

	if w, ok := p.writers[topic]; ok {
		return w
	}

	w := &kafka.Writer{
		Addr:     kafka.TCP(p.brokers...),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	}
	p.writers[topic] = w
	return w
}

// Publish sends a JSON-encoded message to a topic keyed by key
func (p *Producer) Publish(ctx context.Context, topic string, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return errors.Wrap(err, "failed to marshal message")
	}

	err = p.writer(topic).WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: data,
	})
	if err != nil {
		return errors.Wrapf(err, "failed to publish to topic %s", topic)
	}

	return nil
}

// Close closes all topic writers
func (p *Producer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for topic, w := range p.writers {
		if err := w.Close(); err != nil {
			logger.Errorf("Failed to close kafka writer for %s: %v", topic, err)
		}
	}
	p.writers = make(map[string]*kafka.Writer)
	return nil
}
