package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"agri-credit-engine/internal/domain/notify"

	kafkago "github.com/segmentio/kafka-go"
)

var _ notify.Sink = (*KafkaSink)(nil)

// messageWriter is the part of *kafkago.Writer the sink uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
}

// KafkaSink writes events to a topic keyed by borrower id, so one borrower's
// events stay ordered within a partition.
type KafkaSink struct {
	w messageWriter
}

func NewKafkaSink(w messageWriter) *KafkaSink { return &KafkaSink{w: w} }

func (s *KafkaSink) Notify(ctx context.Context, e notify.Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", e.Type, err)
	}
	msg := kafkago.Message{
		Key:   []byte(e.BorrowerID),
		Value: payload,
		Headers: []kafkago.Header{
			{Key: "event_type", Value: []byte(e.Type)},
		},
	}
	if err := s.w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka publish %s: %w", e.Type, err)
	}
	return nil
}
