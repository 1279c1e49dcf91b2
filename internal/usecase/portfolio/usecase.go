package portfolio

import (
	"context"
	"time"

	"agri-credit-engine/internal/domain/borrower"

	"go.uber.org/zap"
)

type Service struct {
	repo borrower.Repository
	log  *zap.Logger
}

func NewService(r borrower.Repository, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{repo: r, log: log}
}

// Snapshot re-derives the portfolio from every stored borrower.
func (s *Service) Snapshot(ctx context.Context) (*Snapshot, error) {
	start := time.Now()
	acc := NewAccumulator()
	err := s.repo.Each(ctx, func(b *borrower.Borrower) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		acc.Add(b)
		return nil
	})
	if err != nil {
		return nil, err
	}
	snap := acc.Snapshot()
	s.log.Debug("portfolio scanned",
		zap.Int("borrowers", snap.BorrowerCount),
		zap.Int("loans", snap.TotalLoans),
		zap.Duration("took", time.Since(start)))
	return &snap, nil
}
