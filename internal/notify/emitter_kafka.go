package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/twmb/franz-go/pkg/kgo"
)

// KafkaEmitter publishes notification events to a Kafka topic so a separate
// delivery service owns the actual mail sending.
type KafkaEmitter struct {
	client *kgo.Client
	topic  string
}

// NewKafkaEmitter connects to the given brokers.
func NewKafkaEmitter(brokers []string, topic string) (*KafkaEmitter, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return &KafkaEmitter{client: client, topic: topic}, nil
}

func (e *KafkaEmitter) Emit(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode notification event: %w", err)
	}
	record := &kgo.Record{
		Topic: e.topic,
		Key:   []byte(event.EntityID),
		Value: payload,
	}
	if err := e.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce notification event: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying client.
func (e *KafkaEmitter) Close() {
	e.client.Close()
}
