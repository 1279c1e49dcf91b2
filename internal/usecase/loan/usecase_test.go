package loan

import (
	"context"
	"errors"
	"testing"
	"time"

	"agri-credit-engine/internal/adapter/repository/tenantrepo"
	"agri-credit-engine/internal/domain/apperr"
	"agri-credit-engine/internal/domain/borrower"
	"agri-credit-engine/internal/domain/ledger"
	domain "agri-credit-engine/internal/domain/loan"
	"agri-credit-engine/internal/domain/notify"
	"agri-credit-engine/internal/domain/score"
	"agri-credit-engine/internal/testutil/borrowermock"
	"agri-credit-engine/internal/testutil/notifymock"
	"agri-credit-engine/internal/testutil/storemock"
	"agri-credit-engine/internal/testutil/uowmock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

type fixture struct {
	uc   *Usecase
	sink *notifymock.Sink
	now  time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := tenantrepo.NewBorrowerRepository(storemock.New())
	f := &fixture{sink: &notifymock.Sink{}, now: t0}
	f.uc = NewUsecase(repo, tenantrepo.NewCASUoW(repo, 3), borrower.DefaultPolicy(),
		WithSink(f.sink),
		WithClock(func() time.Time { return f.now }),
	)
	return f
}

func (f *fixture) register(t *testing.T, email string, opening int64) *BorrowerDTO {
	t.Helper()
	b, err := f.uc.Register(context.Background(), RegisterInput{Email: email, Name: "Ama", Region: "Ashanti", OpeningBalance: opening})
	require.NoError(t, err)
	return b
}

func factors(p score.PaymentHistory, y score.CropYield) score.Factors {
	return score.Factors{
		PaymentHistory:    p,
		CropYield:         y,
		LandOwnership:     score.LandOwned,
		FarmingExperience: score.ExperienceExpert,
		ExistingLoans:     score.LoansNone,
		MarketVolatility:  score.MarketStable,
		LandSize:          score.SizeLarge,
		WeatherRisk:       score.WeatherMinimal,
		IncomeStability:   score.IncomeStable,
		Insurance:         score.InsuranceHigh,
	}
}

func worstFactors() score.Factors {
	return score.Factors{
		PaymentHistory:    score.PaymentPoor,
		CropYield:         score.YieldLow,
		LandOwnership:     score.LandNone,
		FarmingExperience: score.ExperienceBeginner,
		ExistingLoans:     score.LoansHigh,
		MarketVolatility:  score.MarketVolatile,
		LandSize:          score.SizeSmall,
		WeatherRisk:       score.WeatherSevere,
		IncomeStability:   score.IncomeIrregular,
		Insurance:         score.InsuranceNone,
	}
}

func TestRegister(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b := f.register(t, "Farmer@Example.com", 10_000)
	assert.Len(t, b.ID, 32)
	assert.Equal(t, "farmer@example.com", b.Email)
	assert.Equal(t, int64(10_000), b.Balance)
	require.Len(t, b.Ledger, 1)
	assert.Equal(t, "opn-"+b.ID, b.Ledger[0].ID)

	got, err := f.uc.GetBorrower(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.Email, got.Email)

	_, err = f.uc.Register(ctx, RegisterInput{Email: "farmer@EXAMPLE.com"})
	assert.ErrorIs(t, err, apperr.ErrStateConflict)

	_, err = f.uc.Register(ctx, RegisterInput{Email: "x@y.io", OpeningBalance: -1})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = f.uc.Register(ctx, RegisterInput{Email: " "})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = f.uc.GetBorrower(ctx, "missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestLifecycle_SubmitApproveRepay(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.register(t, "a@farm.io", 10_000)

	res, err := f.uc.Assess(ctx, b.ID, factors(score.PaymentGood, score.YieldHigh))
	require.NoError(t, err)
	assert.Equal(t, 850, res.Score)

	app, err := f.uc.Submit(ctx, b.ID, SubmitInput{Amount: 100_000, Purpose: "Seeds"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, app.Status)
	assert.Equal(t, "seeds", app.Purpose)
	assert.InDelta(t, 0.0, app.RiskScore, 1e-9)
	assert.Equal(t, int64(100_000), app.RemainingBalance)

	got, _ := f.uc.GetBorrower(ctx, b.ID)
	assert.Equal(t, int64(9_500), got.Balance, "processing fee is charged at submission")

	app, err = f.uc.Decide(ctx, app.ID, DecideInput{Outcome: "approve", VerifierID: "ver-1"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, app.Status)
	assert.Equal(t, "ver-1", app.DecidedBy)
	require.NotNil(t, app.DueAt)
	assert.Equal(t, t0.Add(180*24*time.Hour), *app.DueAt)

	got, _ = f.uc.GetBorrower(ctx, b.ID)
	assert.Equal(t, int64(109_500), got.Balance)

	app, err = f.uc.Repay(ctx, app.ID, RepayInput{PaymentID: "pay-1", Amount: 60_000})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, app.Status)
	assert.Equal(t, int64(40_000), app.RemainingBalance)

	app, err = f.uc.Repay(ctx, app.ID, RepayInput{PaymentID: "pay-2", Amount: 40_000})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRepaid, app.Status)
	assert.Equal(t, int64(0), app.RemainingBalance)
	assert.Equal(t, 2, app.PaymentsMade)

	view, err := f.uc.Get(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRepaid, view.Status)

	assert.Equal(t, []notify.EventType{notify.ApplicationSubmitted, notify.Approved, notify.LoanRepaid}, f.sink.Types())
	for _, e := range f.sink.Events() {
		assert.Equal(t, b.ID, e.BorrowerID)
		assert.Equal(t, app.ID, e.Payload["loan_id"])
	}
}

func TestSubmit_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.register(t, "a@farm.io", 0)

	cases := []struct {
		name string
		in   SubmitInput
		want error
	}{
		{"zero amount", SubmitInput{Amount: 0, Purpose: "seeds"}, apperr.ErrValidation},
		{"unknown purpose", SubmitInput{Amount: 10, Purpose: "yacht"}, apperr.ErrValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.uc.Submit(ctx, b.ID, tc.in)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	_, err := f.uc.Submit(ctx, "missing", SubmitInput{Amount: 10, Purpose: "seeds"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Empty(t, f.sink.Events())
}

func TestSubmit_CeilingEnforcedOnceAssessed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.register(t, "a@farm.io", 0)

	// unassessed borrowers may apply for any amount
	_, err := f.uc.Submit(ctx, b.ID, SubmitInput{Amount: 20_000, Purpose: "seeds"})
	require.NoError(t, err)

	_, err = f.uc.Assess(ctx, b.ID, worstFactors())
	require.NoError(t, err)

	_, err = f.uc.Submit(ctx, b.ID, SubmitInput{Amount: 20_000, Purpose: "seeds"})
	assert.ErrorIs(t, err, domain.ErrExceedsCeiling)

	_, err = f.uc.Submit(ctx, b.ID, SubmitInput{Amount: 10_000, Purpose: "seeds"})
	assert.NoError(t, err)
}

func TestSubmit_RepeatedApplicationID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.register(t, "a@farm.io", 5_000)

	in := SubmitInput{ApplicationID: "app-1", Amount: 1_000, Purpose: "labor"}
	first, err := f.uc.Submit(ctx, b.ID, in)
	require.NoError(t, err)
	second, err := f.uc.Submit(ctx, b.ID, in)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	got, _ := f.uc.GetBorrower(ctx, b.ID)
	assert.Len(t, got.Applications, 1)
	assert.Equal(t, int64(4_500), got.Balance, "fee charged once")
	assert.Equal(t, []notify.EventType{notify.ApplicationSubmitted}, f.sink.Types())
}

func TestSubmit_ApplicationIDOfAnotherBorrower(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.register(t, "a@farm.io", 2_000)
	b := f.register(t, "b@farm.io", 2_000)

	_, err := f.uc.Submit(ctx, a.ID, SubmitInput{ApplicationID: "app-1", Amount: 1_000, Purpose: "labor"})
	require.NoError(t, err)

	_, err = f.uc.Submit(ctx, b.ID, SubmitInput{ApplicationID: "app-1", Amount: 1_000, Purpose: "labor"})
	require.ErrorIs(t, err, apperr.ErrStateConflict)
	assert.Equal(t, "state_conflict", apperr.Kind(err))
	assert.NotContains(t, err.Error(), a.ID)

	got, _ := f.uc.GetBorrower(ctx, b.ID)
	assert.Empty(t, got.Applications)
	assert.Equal(t, int64(2_000), got.Balance)
}

func TestSubmit_AfterWithdrawalNeedsFreshID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.register(t, "a@farm.io", 2_000)

	in := SubmitInput{ApplicationID: "app-3", Amount: 1_000, Purpose: "seeds"}
	_, err := f.uc.Submit(ctx, b.ID, in)
	require.NoError(t, err)
	require.NoError(t, f.uc.DeletePending(ctx, "app-3", b.ID))

	_, err = f.uc.Submit(ctx, b.ID, in)
	assert.ErrorIs(t, err, domain.ErrIDReused)

	in.ApplicationID = "app-4"
	_, err = f.uc.Submit(ctx, b.ID, in)
	require.NoError(t, err)
	got, _ := f.uc.GetBorrower(ctx, b.ID)
	assert.Equal(t, int64(1_000), got.Balance, "each submission pays its own fee")
}

func TestDecide(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.register(t, "a@farm.io", 0)

	app, err := f.uc.Submit(ctx, b.ID, SubmitInput{Amount: 1_000, Purpose: "seeds"})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, app.RiskScore, 1e-9, "unassessed borrower carries full risk")

	_, err = f.uc.Decide(ctx, app.ID, DecideInput{Outcome: "approve", VerifierID: "v"})
	assert.ErrorIs(t, err, apperr.ErrThreshold)

	_, err = f.uc.Decide(ctx, app.ID, DecideInput{Outcome: "maybe", VerifierID: "v"})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = f.uc.Decide(ctx, "nope", DecideInput{Outcome: "reject", VerifierID: "v"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	app, err = f.uc.Decide(ctx, app.ID, DecideInput{Outcome: "REJECT", VerifierID: "v"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRejected, app.Status)

	_, err = f.uc.Decide(ctx, app.ID, DecideInput{Outcome: "reject", VerifierID: "v"})
	assert.ErrorIs(t, err, domain.ErrAlreadyDecided)

	got, _ := f.uc.GetBorrower(ctx, b.ID)
	last := got.Ledger[len(got.Ledger)-1]
	assert.Equal(t, ledger.KindRejection, last.Kind)
	assert.Equal(t, int64(0), last.Amount)

	assert.Equal(t, []notify.EventType{notify.ApplicationSubmitted, notify.Rejected}, f.sink.Types())
}

func approvedLoan(t *testing.T, f *fixture, amount int64) (*BorrowerDTO, *ApplicationDTO) {
	t.Helper()
	ctx := context.Background()
	b := f.register(t, "a@farm.io", 0)
	_, err := f.uc.Assess(ctx, b.ID, factors(score.PaymentGood, score.YieldHigh))
	require.NoError(t, err)
	app, err := f.uc.Submit(ctx, b.ID, SubmitInput{Amount: amount, Purpose: "equipment"})
	require.NoError(t, err)
	app, err = f.uc.Decide(ctx, app.ID, DecideInput{Outcome: "approve", VerifierID: "v"})
	require.NoError(t, err)
	return b, app
}

func TestRepay_Rules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b, app := approvedLoan(t, f, 1_000)

	_, err := f.uc.Repay(ctx, app.ID, RepayInput{Amount: 0})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = f.uc.Repay(ctx, app.ID, RepayInput{Amount: 1_001})
	assert.ErrorIs(t, err, ledger.ErrExceedsRemainingBalance)

	first, err := f.uc.Repay(ctx, app.ID, RepayInput{PaymentID: "p1", Amount: 400})
	require.NoError(t, err)
	again, err := f.uc.Repay(ctx, app.ID, RepayInput{PaymentID: "p1", Amount: 400})
	require.NoError(t, err)
	assert.Equal(t, first.AmountRepaid, again.AmountRepaid, "same payment id is applied once")

	got, _ := f.uc.GetBorrower(ctx, b.ID)
	assert.Equal(t, int64(600), got.Balance)

	// past the due date the payment is tagged late
	f.now = t0.Add(200 * 24 * time.Hour)
	app2, err := f.uc.Repay(ctx, app.ID, RepayInput{PaymentID: "p2", Amount: 600})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRepaid, app2.Status)

	got, _ = f.uc.GetBorrower(ctx, b.ID)
	tags := map[string]string{}
	for _, e := range got.Ledger {
		if e.Kind == ledger.KindRepayment {
			tags[e.ID] = e.Tag
		}
	}
	assert.Equal(t, map[string]string{"p1": ledger.TagOnTime, "p2": ledger.TagLate}, tags)

	_, err = f.uc.Repay(ctx, app.ID, RepayInput{PaymentID: "p3", Amount: 1})
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestRepay_PendingLoan(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.register(t, "a@farm.io", 5_000)
	app, err := f.uc.Submit(ctx, b.ID, SubmitInput{Amount: 1_000, Purpose: "seeds"})
	require.NoError(t, err)

	_, err = f.uc.Repay(ctx, app.ID, RepayInput{Amount: 100})
	assert.ErrorIs(t, err, apperr.ErrStateConflict)
}

func TestDeletePending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.register(t, "a@farm.io", 5_000)
	app, err := f.uc.Submit(ctx, b.ID, SubmitInput{Amount: 1_000, Purpose: "seeds"})
	require.NoError(t, err)

	err = f.uc.DeletePending(ctx, app.ID, "someone-else")
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	require.NoError(t, f.uc.DeletePending(ctx, app.ID, b.ID))

	_, err = f.uc.Get(ctx, app.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	got, _ := f.uc.GetBorrower(ctx, b.ID)
	assert.Empty(t, got.Applications)
	assert.Equal(t, int64(4_500), got.Balance, "fee is not refunded")
}

func TestDeletePending_DecidedLoan(t *testing.T) {
	f := newFixture(t)
	b, app := approvedLoan(t, f, 1_000)
	err := f.uc.DeletePending(context.Background(), app.ID, b.ID)
	assert.ErrorIs(t, err, apperr.ErrStateConflict)
}

func TestSelectLender(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b, app := approvedLoan(t, f, 1_000)

	_, err := f.uc.SelectLender(ctx, app.ID, b.ID, " ")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = f.uc.SelectLender(ctx, app.ID, "intruder", "coop-bank")
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	got, err := f.uc.SelectLender(ctx, app.ID, b.ID, "coop-bank")
	require.NoError(t, err)
	assert.Equal(t, "coop-bank", got.Lender)

	types := f.sink.Types()
	assert.Equal(t, notify.LenderSelected, types[len(types)-1])
}

func TestUpdateProfile_Notifies(t *testing.T) {
	f := newFixture(t)
	b := f.register(t, "a@farm.io", 0)

	got, err := f.uc.UpdateProfile(context.Background(), b.ID, ProfileInput{Region: "Volta"})
	require.NoError(t, err)
	assert.Equal(t, "Ama", got.Name)
	assert.Equal(t, "volta", got.Region)
	assert.Equal(t, []notify.EventType{notify.ProfileUpdated}, f.sink.Types())
}

func TestNotificationFailureIsSwallowed(t *testing.T) {
	f := newFixture(t)
	f.sink.NotifyFn = func(context.Context, notify.Event) error { return errors.New("broker down") }
	b := f.register(t, "a@farm.io", 0)

	_, err := f.uc.Submit(context.Background(), b.ID, SubmitInput{Amount: 100, Purpose: "seeds"})
	assert.NoError(t, err)
	assert.Len(t, f.sink.Events(), 1)
}

func TestConcurrentUpdateSurfaces(t *testing.T) {
	repo := &borrowermock.Repo{}
	uc := NewUsecase(repo, uowmock.Failing(apperr.ErrConcurrentUpdate), borrower.DefaultPolicy())

	_, err := uc.Deposit(context.Background(), "b1", DepositInput{Amount: 10})
	assert.ErrorIs(t, err, apperr.ErrConcurrentUpdate)
}

func TestDeposit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.register(t, "a@farm.io", 0)

	_, err := f.uc.Deposit(ctx, b.ID, DepositInput{Amount: -5})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = f.uc.Deposit(ctx, b.ID, DepositInput{EntryID: "d1", Amount: 250})
	require.NoError(t, err)
	got, err := f.uc.Deposit(ctx, b.ID, DepositInput{EntryID: "d1", Amount: 250})
	require.NoError(t, err)
	assert.Equal(t, int64(250), got.Balance)

	_, err = f.uc.Deposit(ctx, "missing", DepositInput{Amount: 1})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestScore(t *testing.T) {
	uc := NewUsecase(&borrowermock.Repo{}, uowmock.New(), borrower.DefaultPolicy())

	r, err := uc.Score(factors(score.PaymentGood, score.YieldHigh))
	require.NoError(t, err)
	assert.Equal(t, score.TierLow, r.RiskTier)

	_, err = uc.Score(score.Factors{})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestGet_IndexLookupFails(t *testing.T) {
	repo := &borrowermock.Repo{
		BorrowerIDForApplicationFn: func(context.Context, string) (string, error) { return "b1", nil },
	}
	uc := NewUsecase(repo, uowmock.New(), borrower.DefaultPolicy())
	_, err := uc.Get(context.Background(), "app")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
