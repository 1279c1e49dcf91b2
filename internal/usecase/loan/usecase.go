package loan

import (
	"context"
	"fmt"
	"strings"
	"time"

	"agri-credit-engine/internal/domain/borrower"
	"agri-credit-engine/internal/domain/ledger"
	domain "agri-credit-engine/internal/domain/loan"
	"agri-credit-engine/internal/domain/notify"
	"agri-credit-engine/internal/domain/score"
	"agri-credit-engine/internal/domain/uow"
	"agri-credit-engine/pkg/id"

	"go.uber.org/zap"
)

const defaultNotifyTimeout = 2 * time.Second

type Usecase struct {
	repo   borrower.Repository
	uow    uow.UnitOfWork
	policy borrower.Policy

	sink          notify.Sink
	notifyTimeout time.Duration
	log           *zap.Logger
	now           func() time.Time
}

type Option func(*Usecase)

func WithSink(s notify.Sink) Option { return func(u *Usecase) { u.sink = s } }
func WithLogger(l *zap.Logger) Option { return func(u *Usecase) { u.log = l } }
func WithClock(now func() time.Time) Option { return func(u *Usecase) { u.now = now } }
func WithNotifyTimeout(d time.Duration) Option { return func(u *Usecase) { u.notifyTimeout = d } }

func NewUsecase(r borrower.Repository, tx uow.UnitOfWork, p borrower.Policy, opts ...Option) *Usecase {
	u := &Usecase{
		repo:          r,
		uow:           tx,
		policy:        p,
		notifyTimeout: defaultNotifyTimeout,
		log:           zap.NewNop(),
		now:           func() time.Time { return time.Now().UTC() },
	}
	for _, o := range opts {
		o(u)
	}
	return u
}

// Score evaluates f without storing anything.
func (u *Usecase) Score(f score.Factors) (score.Result, error) {
	if err := f.Validate(); err != nil {
		return score.Result{}, err
	}
	return score.Evaluate(f), nil
}

func (u *Usecase) Register(ctx context.Context, in RegisterInput) (*BorrowerDTO, error) {
	if in.OpeningBalance < 0 {
		return nil, ledger.ErrNonPositiveAmount
	}
	now := u.now()
	b, err := borrower.New(id.NewID32(), in.Email, in.Name, in.Region, now)
	if err != nil {
		return nil, err
	}
	if in.OpeningBalance > 0 {
		if err := b.Open(in.OpeningBalance, now); err != nil {
			return nil, err
		}
	}
	if err := u.repo.Create(ctx, b); err != nil {
		return nil, err
	}
	u.log.Info("borrower registered", zap.String("borrower_id", b.ID), zap.Int64("opening_balance", in.OpeningBalance))
	return toBorrowerDTO(b), nil
}

func (u *Usecase) GetBorrower(ctx context.Context, borrowerID string) (*BorrowerDTO, error) {
	b, err := u.repo.GetByID(ctx, borrowerID)
	if err != nil {
		return nil, err
	}
	return toBorrowerDTO(b), nil
}

func (u *Usecase) Deposit(ctx context.Context, borrowerID string, in DepositInput) (*BorrowerDTO, error) {
	if in.Amount <= 0 {
		return nil, ledger.ErrNonPositiveAmount
	}
	if in.EntryID == "" {
		in.EntryID = id.NewID32()
	}
	var dto *BorrowerDTO
	err := u.uow.WithinBorrower(ctx, borrowerID, func(_ borrower.Repository, b *borrower.Borrower) error {
		if _, err := b.Deposit(in.EntryID, in.Amount, u.now()); err != nil {
			return err
		}
		dto = toBorrowerDTO(b)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// Assess scores f and stores the result on the borrower.
func (u *Usecase) Assess(ctx context.Context, borrowerID string, f score.Factors) (*score.Result, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	var res score.Result
	err := u.uow.WithinBorrower(ctx, borrowerID, func(_ borrower.Repository, b *borrower.Borrower) error {
		r, err := b.Assess(f, u.now())
		res = r
		return err
	})
	if err != nil {
		return nil, err
	}
	u.log.Info("borrower assessed",
		zap.String("borrower_id", borrowerID),
		zap.Int("score", res.Score),
		zap.String("tier", string(res.RiskTier)))
	return &res, nil
}

func (u *Usecase) UpdateProfile(ctx context.Context, borrowerID string, in ProfileInput) (*BorrowerDTO, error) {
	var dto *BorrowerDTO
	err := u.uow.WithinBorrower(ctx, borrowerID, func(_ borrower.Repository, b *borrower.Borrower) error {
		b.UpdateProfile(in.Name, in.Region, u.now())
		dto = toBorrowerDTO(b)
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.publish(ctx, notify.ProfileUpdated, borrowerID, map[string]any{"name": dto.Name, "region": dto.Region})
	return dto, nil
}

// Submit opens a pending application for the borrower and charges the
// processing fee in the same write.
func (u *Usecase) Submit(ctx context.Context, borrowerID string, in SubmitInput) (*ApplicationDTO, error) {
	if in.Amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	if !domain.ValidPurpose(strings.ToLower(strings.TrimSpace(in.Purpose))) {
		return nil, domain.ErrUnknownPurpose
	}
	if _, err := u.repo.GetByID(ctx, borrowerID); err != nil {
		return nil, err
	}
	appID := in.ApplicationID
	if appID == "" {
		appID = id.NewID32()
	}
	// the index is written first so a lookup never misses a stored application
	if err := u.repo.IndexApplication(ctx, appID, borrowerID); err != nil {
		return nil, fmt.Errorf("index application: %w", err)
	}

	var (
		dto     *ApplicationDTO
		created bool
	)
	err := u.uow.WithinBorrower(ctx, borrowerID, func(_ borrower.Repository, b *borrower.Borrower) error {
		created = b.Application(appID) == nil
		a, err := b.Submit(appID, in.Amount, in.Purpose, u.now(), u.policy)
		if err != nil {
			return err
		}
		dto = toApplicationDTO(b, a)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if created {
		u.log.Info("loan application submitted",
			zap.String("loan_id", appID),
			zap.String("borrower_id", borrowerID),
			zap.Int64("amount", dto.RequestedAmount))
		u.publish(ctx, notify.ApplicationSubmitted, borrowerID, map[string]any{
			"loan_id": appID,
			"amount":  dto.RequestedAmount,
			"purpose": dto.Purpose,
		})
	}
	return dto, nil
}

// Decide records a verifier's outcome on a pending application.
func (u *Usecase) Decide(ctx context.Context, loanID string, in DecideInput) (*ApplicationDTO, error) {
	outcome := domain.Outcome(strings.ToLower(strings.TrimSpace(in.Outcome)))
	if outcome != domain.OutcomeApprove && outcome != domain.OutcomeReject {
		return nil, domain.ErrUnknownOutcome
	}
	var dto *ApplicationDTO
	err := u.withinApplication(ctx, loanID, func(b *borrower.Borrower) error {
		a, err := b.Decide(loanID, outcome, in.VerifierID, u.now(), u.policy)
		if err != nil {
			return err
		}
		dto = toApplicationDTO(b, a)
		return nil
	})
	if err != nil {
		return nil, err
	}

	event := notify.Approved
	if dto.Status == domain.StatusRejected {
		event = notify.Rejected
	}
	u.log.Info("loan application decided",
		zap.String("loan_id", loanID),
		zap.String("status", string(dto.Status)),
		zap.String("verifier_id", in.VerifierID))
	u.publish(ctx, event, dto.BorrowerID, map[string]any{
		"loan_id":     loanID,
		"verifier_id": in.VerifierID,
		"amount":      dto.RequestedAmount,
	})
	return dto, nil
}

func (u *Usecase) Repay(ctx context.Context, loanID string, in RepayInput) (*ApplicationDTO, error) {
	if in.Amount <= 0 {
		return nil, ledger.ErrNonPositiveAmount
	}
	if in.PaymentID == "" {
		in.PaymentID = id.NewID32()
	}
	var (
		dto    *ApplicationDTO
		repaid bool
	)
	err := u.withinApplication(ctx, loanID, func(b *borrower.Borrower) error {
		a, done, err := b.Repay(loanID, in.PaymentID, in.Amount, u.now())
		if err != nil {
			return err
		}
		dto, repaid = toApplicationDTO(b, a), done
		return nil
	})
	if err != nil {
		return nil, err
	}
	if repaid {
		u.log.Info("loan repaid", zap.String("loan_id", loanID), zap.Int("payments", dto.PaymentsMade))
		u.publish(ctx, notify.LoanRepaid, dto.BorrowerID, map[string]any{
			"loan_id":  loanID,
			"amount":   dto.AmountRepaid,
			"payments": dto.PaymentsMade,
		})
	}
	return dto, nil
}

// DeletePending withdraws a pending application on behalf of borrowerID.
func (u *Usecase) DeletePending(ctx context.Context, loanID, borrowerID string) error {
	return u.withinApplication(ctx, loanID, func(b *borrower.Borrower) error {
		return b.DeletePending(loanID, borrowerID, u.now())
	})
}

func (u *Usecase) SelectLender(ctx context.Context, loanID, borrowerID, lender string) (*ApplicationDTO, error) {
	if strings.TrimSpace(lender) == "" {
		return nil, domain.ErrMissingLenderArg
	}
	var dto *ApplicationDTO
	err := u.withinApplication(ctx, loanID, func(b *borrower.Borrower) error {
		a, err := b.SelectLender(loanID, borrowerID, lender, u.now())
		if err != nil {
			return err
		}
		dto = toApplicationDTO(b, a)
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.publish(ctx, notify.LenderSelected, dto.BorrowerID, map[string]any{"loan_id": loanID, "lender": dto.Lender})
	return dto, nil
}

func (u *Usecase) Get(ctx context.Context, loanID string) (*ApplicationDTO, error) {
	borrowerID, err := u.repo.BorrowerIDForApplication(ctx, loanID)
	if err != nil {
		return nil, err
	}
	b, err := u.repo.GetByID(ctx, borrowerID)
	if err != nil {
		return nil, domain.ErrNotFound
	}
	a := b.Application(loanID)
	if a == nil {
		return nil, domain.ErrNotFound
	}
	return toApplicationDTO(b, a), nil
}

// withinApplication resolves the owning borrower of loanID and runs fn in a
// unit of work on that record.
func (u *Usecase) withinApplication(ctx context.Context, loanID string, fn func(b *borrower.Borrower) error) error {
	borrowerID, err := u.repo.BorrowerIDForApplication(ctx, loanID)
	if err != nil {
		return err
	}
	return u.uow.WithinBorrower(ctx, borrowerID, func(_ borrower.Repository, b *borrower.Borrower) error {
		return fn(b)
	})
}

func (u *Usecase) publish(ctx context.Context, t notify.EventType, borrowerID string, payload map[string]any) {
	if u.sink == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), u.notifyTimeout)
	defer cancel()
	err := u.sink.Notify(ctx, notify.Event{
		Type:       t,
		BorrowerID: borrowerID,
		Payload:    payload,
		OccurredAt: u.now(),
	})
	if err != nil {
		u.log.Warn("notification dropped", zap.String("type", string(t)), zap.String("borrower_id", borrowerID), zap.Error(err))
	}
}
