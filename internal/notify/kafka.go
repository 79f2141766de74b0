package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"
)

// Kafka publishes notification events to a single topic. Records are keyed by
// claim number so consumers see per-claim ordering.
type Kafka struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

func NewKafka(client *kgo.Client, topic string, logger *slog.Logger) *Kafka {
	return &Kafka{client: client, topic: topic, logger: logger}
}

func (k *Kafka) Publish(ctx context.Context, event Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal notify event: %w", err)
	}
	record := &kgo.Record{
		Topic: k.topic,
		Key:   []byte(event.NumeroSinistre),
		Value: value,
	}
	if err := k.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce notify event %s: %w", event.Type, err)
	}
	k.logger.DebugContext(ctx, "notification published",
		slog.String("type", event.Type),
		slog.String("numero_sinistre", event.NumeroSinistre))
	return nil
}

func (k *Kafka) Close() { k.client.Close() }
