package calc_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/boddenberg/givecalc-bfa-go/internal/calc"
	"github.com/boddenberg/givecalc-bfa-go/internal/domain"
	"github.com/boddenberg/givecalc-bfa-go/internal/infra/observability"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// --- Fakes ---

type fakeEngine struct {
	mu      sync.Mutex
	amount  int
	target  int
	uk      int
	err     error
	release chan struct{} // when set, calls block until it is closed
	started chan struct{}

	lastAmount *domain.AmountRequest
}

func (f *fakeEngine) wait() {
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.release != nil {
		<-f.release
	}
}

func (f *fakeEngine) ComputeAmount(_ context.Context, req *domain.AmountRequest) (*domain.AmountResult, error) {
	f.mu.Lock()
	f.amount++
	f.lastAmount = req
	f.mu.Unlock()
	f.wait()
	if f.err != nil {
		return nil, f.err
	}
	return &domain.AmountResult{
		DonationAmount: req.DonationAmount,
		TaxSavings:     req.DonationAmount * 0.3,
		Curve:          []domain.CurvePoint{{Donation: req.DonationAmount}},
	}, nil
}

func (f *fakeEngine) ComputeTarget(_ context.Context, req *domain.TargetRequest) (*domain.TargetResult, error) {
	f.mu.Lock()
	f.target++
	f.mu.Unlock()
	f.wait()
	if f.err != nil {
		return nil, f.err
	}
	return &domain.TargetResult{RequiredDonation: 12000, ActualPercentage: req.TargetReduction}, nil
}

func (f *fakeEngine) ComputeUK(_ context.Context, req *domain.UKRequest) (*domain.UKResult, error) {
	f.mu.Lock()
	f.uk++
	f.mu.Unlock()
	f.wait()
	if f.err != nil {
		return nil, f.err
	}
	return &domain.UKResult{GiftAid: req.GiftAid, TaxSavings: req.GiftAid * 0.2}, nil
}

func (f *fakeEngine) calls() (amount, target, uk int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.amount, f.target, f.uk
}

func newDispatcher(e *fakeEngine) *calc.Dispatcher {
	return calc.NewDispatcher(e, observability.NewMetrics(), zap.NewNop())
}

// --- Tests ---

func TestCalculate_AmountHappyPathIsCached(t *testing.T) {
	eng := &fakeEngine{}
	d := newDispatcher(eng)
	st := calc.NewState()
	form := calc.DefaultForm()

	first, err := d.Calculate(context.Background(), st, form, domain.JurisdictionUS)
	require.NoError(t, err)
	assert.False(t, first.Cached)
	assert.True(t, first.Applied)
	require.NotNil(t, first.Entry.Amount)
	assert.Equal(t, 5000.0, first.Entry.Amount.DonationAmount)
	assert.Equal(t, "CA", eng.lastAmount.StateCode)
	assert.Equal(t, 100000.0, eng.lastAmount.Income.WagesAndSalaries)
	assert.Equal(t, 2025, eng.lastAmount.Year)

	second, err := d.Calculate(context.Background(), st, form, domain.JurisdictionUS)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Same(t, first.Entry.Amount, second.Entry.Amount)

	amount, target, uk := eng.calls()
	assert.Equal(t, 1, amount)
	assert.Zero(t, target)
	assert.Zero(t, uk)
}

func TestCalculate_IssuesOneCallPerScope(t *testing.T) {
	eng := &fakeEngine{}
	d := newDispatcher(eng)
	st := calc.NewState()
	form := calc.DefaultForm()
	form.US.Mode = domain.ModeTarget

	out, err := d.Calculate(context.Background(), st, form, domain.JurisdictionUS)
	require.NoError(t, err)
	assert.NotNil(t, out.Entry.Target)
	assert.Nil(t, out.Entry.Amount)

	out, err = d.Calculate(context.Background(), st, form, domain.JurisdictionUK)
	require.NoError(t, err)
	assert.NotNil(t, out.Entry.UK)

	amount, target, uk := eng.calls()
	assert.Equal(t, [3]int{0, 1, 1}, [3]int{amount, target, uk})
	assert.Equal(t, 2, st.Cache.Len())
}

func TestCalculate_FailureIsNotCached(t *testing.T) {
	boom := &domain.ErrExternalService{Service: "engine", Err: errors.New("connection refused")}
	eng := &fakeEngine{err: boom}
	d := newDispatcher(eng)
	st := calc.NewState()
	form := calc.DefaultForm()

	_, err := d.Calculate(context.Background(), st, form, domain.JurisdictionUS)
	var ext *domain.ErrExternalService
	require.True(t, errors.As(err, &ext))
	assert.Zero(t, st.Cache.Len())

	_, _, pending := st.Display.Snapshot(domain.JurisdictionUS)
	assert.False(t, pending)

	eng.err = nil
	out, err := d.Calculate(context.Background(), st, form, domain.JurisdictionUS)
	require.NoError(t, err)
	assert.False(t, out.Cached)

	amount, _, _ := eng.calls()
	assert.Equal(t, 2, amount)
}

func TestCalculate_ClearsStaleResultBeforeCall(t *testing.T) {
	eng := &fakeEngine{}
	d := newDispatcher(eng)
	st := calc.NewState()
	a := calc.DefaultForm()

	_, err := d.Calculate(context.Background(), st, a, domain.JurisdictionUS)
	require.NoError(t, err)
	_, shown, _ := st.Display.Snapshot(domain.JurisdictionUS)
	require.NotNil(t, shown.Amount)

	eng.release = make(chan struct{})
	eng.started = make(chan struct{}, 1)
	b := a
	b.US.DonationAmount = 8000

	done := make(chan error, 1)
	go func() {
		_, err := d.Calculate(context.Background(), st, b, domain.JurisdictionUS)
		done <- err
	}()
	<-eng.started

	want, shown, pending := st.Display.Snapshot(domain.JurisdictionUS)
	assert.Equal(t, calc.FingerprintOf(b, domain.JurisdictionUS), want)
	assert.True(t, shown.Empty(), "result for the previous input must not stay visible")
	assert.True(t, pending)

	close(eng.release)
	require.NoError(t, <-done)

	_, shown, pending = st.Display.Snapshot(domain.JurisdictionUS)
	require.NotNil(t, shown.Amount)
	assert.Equal(t, 8000.0, shown.Amount.DonationAmount)
	assert.False(t, pending)
}

func TestCalculate_SupersededResultIsCachedButNotShown(t *testing.T) {
	eng := &fakeEngine{release: make(chan struct{}), started: make(chan struct{}, 1)}
	d := newDispatcher(eng)
	st := calc.NewState()
	a := calc.DefaultForm()

	done := make(chan *calc.Outcome, 1)
	go func() {
		out, _ := d.Calculate(context.Background(), st, a, domain.JurisdictionUS)
		done <- out
	}()
	<-eng.started

	// The user edits the form while A is computing.
	b := a
	b.US.DonationAmount = 9000
	fpB := calc.FingerprintOf(b, domain.JurisdictionUS)
	entry, ok := st.Cache.Get(fpB.Key())
	st.Display.Restore(domain.JurisdictionUS, fpB, entry, ok)

	close(eng.release)
	out := <-done
	require.NotNil(t, out)
	assert.False(t, out.Applied)

	want, shown, _ := st.Display.Snapshot(domain.JurisdictionUS)
	assert.Equal(t, fpB, want)
	assert.True(t, shown.Empty())

	cached, ok := st.Cache.Get(calc.FingerprintOf(a, domain.JurisdictionUS).Key())
	require.True(t, ok)
	assert.NotNil(t, cached.Amount)
}

func TestRun_EditBetweenStageAndRunWins(t *testing.T) {
	eng := &fakeEngine{}
	d := newDispatcher(eng)
	st := calc.NewState()
	a := calc.DefaultForm()

	job := st.Stage(a, domain.JurisdictionUS)
	assert.False(t, job.Cached())
	want, _, pending := st.Display.Snapshot(domain.JurisdictionUS)
	assert.Equal(t, job.Fingerprint, want)
	assert.True(t, pending)

	b := a
	b.US.DonationAmount = 9999
	fpB := calc.FingerprintOf(b, domain.JurisdictionUS)
	entry, ok := st.Cache.Get(fpB.Key())
	st.Display.Restore(domain.JurisdictionUS, fpB, entry, ok)

	out, err := d.Run(context.Background(), st, job)
	require.NoError(t, err)
	assert.False(t, out.Applied)
	assert.Equal(t, 5000.0, eng.lastAmount.DonationAmount)

	want, shown, pending := st.Display.Snapshot(domain.JurisdictionUS)
	assert.Equal(t, fpB, want)
	assert.True(t, shown.Empty())
	assert.False(t, pending)
}

func TestStage_CacheHitIsShownWithoutEngine(t *testing.T) {
	eng := &fakeEngine{}
	d := newDispatcher(eng)
	st := calc.NewState()
	form := calc.DefaultForm()
	fp := calc.FingerprintOf(form, domain.JurisdictionUS)
	st.Cache.Put(fp.Key(), cacheEntryWithAmount())

	job := st.Stage(form, domain.JurisdictionUS)
	require.True(t, job.Cached())
	_, shown, pending := st.Display.Snapshot(domain.JurisdictionUS)
	assert.NotNil(t, shown.Amount)
	assert.False(t, pending)

	out, err := d.Run(context.Background(), st, job)
	require.NoError(t, err)
	assert.True(t, out.Cached)
	assert.True(t, out.Applied)

	amount, _, _ := eng.calls()
	assert.Zero(t, amount)
}

func TestCalculate_EntryMissingScopePartCallsEngine(t *testing.T) {
	eng := &fakeEngine{}
	d := newDispatcher(eng)
	st := calc.NewState()
	form := calc.DefaultForm()
	form.US.Mode = domain.ModeTarget

	fp := calc.FingerprintOf(form, domain.JurisdictionUS)
	st.Cache.Put(fp.Key(), cacheEntryWithAmount())

	out, err := d.Calculate(context.Background(), st, form, domain.JurisdictionUS)
	require.NoError(t, err)
	assert.False(t, out.Cached)
	assert.NotNil(t, out.Entry.Amount, "merge keeps the existing part")
	assert.NotNil(t, out.Entry.Target)
}

func TestHolds(t *testing.T) {
	e := cacheEntryWithAmount()
	assert.True(t, calc.Holds(e, calc.ScopeUSAmount))
	assert.False(t, calc.Holds(e, calc.ScopeUSTarget))
	assert.False(t, calc.Holds(e, calc.ScopeUK))
}
