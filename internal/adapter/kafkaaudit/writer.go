// Package kafkaaudit publishes submission audit events to a Kafka topic.
// The audit trail is an optional feature: when disabled the dashboard runs
// without a producer at all.
package kafkaaudit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/mpd-verif-dashboard/internal/config"
)

// SubmissionEvent records one resolved selection submission and its outcome.
type SubmissionEvent struct {
	ID          string    `json:"id"`
	Mode        string    `json:"mode"`
	Year        int       `json:"year"`
	Number      string    `json:"number"`
	Failed      []string  `json:"failed,omitempty"`
	DurationMs  int64     `json:"duration_ms"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// Writer produces audit events to the configured Kafka topic.
// It implements httpapi.AuditPublisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the audit topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.AuditTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// PublishSubmission serializes and publishes one audit event. An empty event
// ID is filled in with a fresh UUID.
func (w *Writer) PublishSubmission(ctx context.Context, event SubmissionEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	msg, err := serializeToMessage(event)
	if err != nil {
		return err
	}
	return w.writer.WriteMessages(ctx, msg)
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a SubmissionEvent into a Kafka message.
func serializeToMessage(event SubmissionEvent) (kafkago.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize submission event: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(event.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "event_type", Value: []byte("mpd_submission")},
			{Key: "submitted_at", Value: []byte(event.SubmittedAt.Format(time.RFC3339))},
		},
	}, nil
}
