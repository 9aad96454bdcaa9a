// Package kafka fans published forecast snapshots out to a Kafka topic so
// off-process consumers can subscribe to update notifications.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/meteowatch/kindex-forecast/internal/config"
	"github.com/meteowatch/kindex-forecast/internal/coordinator"
	"github.com/meteowatch/kindex-forecast/internal/domain"
)

// Notifier publishes each successful snapshot to the configured topic.
type Notifier struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewNotifier creates a Kafka producer for the snapshot update topic.
func NewNotifier(cfg *config.Config, logger *slog.Logger) *Notifier {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaTopic,
		Balancer:               &kafkago.LeastBytes{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Notifier{writer: w, logger: logger}
}

// Run consumes coordinator events until the context ends or the channel
// closes. Failed cycles carry no snapshot and are skipped; publish errors
// are logged and the next cycle's event is awaited.
func (n *Notifier) Run(ctx context.Context, events <-chan coordinator.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if ev.Snapshot == nil {
				continue
			}
			if err := n.Publish(ctx, ev.Snapshot); err != nil {
				n.logger.Error("snapshot publish to kafka failed", "error", err)
			}
		}
	}
}

// Publish serializes and writes one snapshot to the topic.
func (n *Notifier) Publish(ctx context.Context, snap *domain.Snapshot) error {
	msg, err := serializeToMessage(snap)
	if err != nil {
		return err
	}
	return n.writer.WriteMessages(ctx, msg)
}

func (n *Notifier) Close() error {
	return n.writer.Close()
}

// serializeToMessage marshals a snapshot into a Kafka message keyed by
// reference date, so a compacted topic retains one message per forecast day.
func serializeToMessage(snap *domain.Snapshot) (kafkago.Message, error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize snapshot: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(snap.ReferenceDate.Format("2006-01-02")),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "fetched_at", Value: []byte(snap.FetchedAt.Format(time.RFC3339))},
			{Key: "days", Value: []byte(strconv.Itoa(len(snap.Readings)))},
		},
	}, nil
}
