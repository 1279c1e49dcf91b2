package notify

import (
	"context"

	"agri-credit-engine/internal/domain/notify"

	"go.uber.org/zap"
)

var _ notify.Sink = (*LogSink)(nil)

// LogSink writes every event to the structured log.
type LogSink struct{ log *zap.Logger }

func NewLogSink(l *zap.Logger) *LogSink { return &LogSink{log: l} }

func (s *LogSink) Notify(_ context.Context, e notify.Event) error {
	s.log.Info("notification",
		zap.String("type", string(e.Type)),
		zap.String("borrower_id", e.BorrowerID),
		zap.Any("payload", e.Payload),
		zap.Time("occurred_at", e.OccurredAt))
	return nil
}
