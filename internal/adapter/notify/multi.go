package notify

import (
	"context"
	"errors"

	"agri-credit-engine/internal/domain/notify"
)

// Multi fans an event out to every sink and joins their errors.
type Multi []notify.Sink

func (m Multi) Notify(ctx context.Context, e notify.Event) error {
	var errs []error
	for _, s := range m {
		if err := s.Notify(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
