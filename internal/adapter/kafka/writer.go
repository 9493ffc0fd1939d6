// Package kafka publishes run annotations to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/event-weather-service/internal/config"
	"github.com/couchcryptid/event-weather-service/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Writer produces annotation messages to the configured topic.
// It implements pipeline.AnnotationPublisher.
type Writer struct {
	writer messageWriter
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the annotation topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// Publish sends one message per annotation in a single WriteMessages call.
// Messages are keyed by event ID so an event's history stays on one
// partition.
func (w *Writer) Publish(ctx context.Context, annotations []domain.Annotation) error {
	if len(annotations) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(annotations))
	for i := range annotations {
		msg, err := serializeToMessage(annotations[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write annotations: %w", err)
	}
	w.logger.Debug("annotations published", "count", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

func serializeToMessage(a domain.Annotation) (kafkago.Message, error) {
	data, err := json.Marshal(a)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize annotation: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(a.EventID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "outcome", Value: []byte(a.Outcome)},
			{Key: "run_id", Value: []byte(a.RunID)},
			{Key: "processed_at", Value: []byte(a.ProcessedAt.Format(time.RFC3339))},
		},
	}, nil
}
