package notifymock

import (
	"context"
	"sync"

	"agri-credit-engine/internal/domain/notify"
)

// Ensure compile-time compliance
var _ notify.Sink = (*Sink)(nil)

// Sink records every event it is handed. NotifyFn, when set, decides the
// returned error.
type Sink struct {
	mu     sync.Mutex
	events []notify.Event

	NotifyFn func(ctx context.Context, e notify.Event) error
}

func (s *Sink) Notify(ctx context.Context, e notify.Event) error {
	s.mu.Lock()
	s.events = append(s.events, e)
	s.mu.Unlock()
	if s.NotifyFn != nil {
		return s.NotifyFn(ctx, e)
	}
	return nil
}

func (s *Sink) Events() []notify.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]notify.Event(nil), s.events...)
}

// Types lists the recorded event types in order.
func (s *Sink) Types() []notify.EventType {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]notify.EventType, len(s.events))
	for i, e := range s.events {
		out[i] = e.Type
	}
	return out
}
