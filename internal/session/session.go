// Package session holds the per-browser-tab context of the calculator: form
// state, one wizard per jurisdiction, the result cache and the display state.
package session

import (
	"strings"
	"sync"
	"time"

	"github.com/boddenberg/givecalc-bfa-go/internal/calc"
	"github.com/boddenberg/givecalc-bfa-go/internal/domain"
	"github.com/boddenberg/givecalc-bfa-go/internal/wizard"
)

// Action is the outcome of a wizard action. When Dispatch is true Job is
// already staged against Calc() and the caller must run it exactly once and
// then call Finish.
type Action struct {
	Applied      bool
	Dispatch     bool
	Jurisdiction domain.Jurisdiction
	Form         calc.Form
	Job          *calc.Job
}

// Session is one browser tab. All methods are safe for concurrent use; none of
// them blocks on the engine.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu           sync.Mutex
	jurisdiction domain.Jurisdiction
	form         calc.Form
	wizards      map[domain.Jurisdiction]*wizard.Wizard
	state        *calc.State
	inFlight     bool
	lastErr      error
}

// New creates a session with the default forms.
func New(id string, now time.Time) *Session {
	s := &Session{
		ID:           id,
		CreatedAt:    now,
		jurisdiction: domain.JurisdictionUS,
		form:         calc.DefaultForm(),
		wizards: map[domain.Jurisdiction]*wizard.Wizard{
			domain.JurisdictionUS: wizard.New(),
			domain.JurisdictionUK: wizard.New(),
		},
		state: calc.NewState(),
	}
	s.restore(domain.JurisdictionUS)
	s.restore(domain.JurisdictionUK)
	return s
}

// Calc returns the calculation context the dispatcher works on.
func (s *Session) Calc() *calc.State {
	return s.state
}

// Jurisdiction returns the active jurisdiction.
func (s *Session) Jurisdiction() domain.Jurisdiction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jurisdiction
}

// SetJurisdiction switches the active jurisdiction. Each jurisdiction keeps
// its own form, wizard and displayed result.
func (s *Session) SetJurisdiction(j domain.Jurisdiction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jurisdiction = j
}

// Form returns a copy of the current form.
func (s *Session) Form() calc.Form {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form
}

// SetUSForm replaces the US form. The display then shows whatever the cache
// holds for the new input, or nothing.
func (s *Session) SetUSForm(f domain.FormState) error {
	f.StateCode = strings.ToUpper(strings.TrimSpace(f.StateCode))
	if err := f.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.form.US = f
	s.restore(domain.JurisdictionUS)
	return nil
}

// SetUKForm replaces the UK form.
func (s *Session) SetUKForm(f domain.UKFormState) error {
	f.Region = strings.ToUpper(strings.TrimSpace(f.Region))
	if err := f.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.form.UK = f
	s.restore(domain.JurisdictionUK)
	return nil
}

// restore points the display of j at the current form. Callers hold s.mu.
func (s *Session) restore(j domain.Jurisdiction) {
	fp := calc.FingerprintOf(s.form, j)
	entry, ok := s.state.Cache.Get(fp.Key())
	s.state.Display.Restore(j, fp, entry, ok)
}

// Confirm confirms sec of the wizard of j. Confirming details while a
// calculation is running is rejected, and it only dispatches when both
// sections are filled in.
func (s *Session) Confirm(j domain.Jurisdiction, sec wizard.Section) (Action, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sec == wizard.Details && s.inFlight {
		return Action{}, &domain.ErrCalculationInFlight{SessionID: s.ID}
	}

	ready := s.ready(j, sec)
	if sec == wizard.Details {
		ready = ready && s.ready(j, wizard.Donation)
	}
	applied, dispatch := s.wizards[j].Confirm(sec, ready)
	return s.action(j, applied, dispatch), nil
}

// Edit reopens sec of the wizard of j.
func (s *Session) Edit(j domain.Jurisdiction, sec wizard.Section) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wizards[j].Edit(sec)
}

// Submit is the keyboard shortcut. It silently does nothing unless both
// sections are complete and no calculation is running.
func (s *Session) Submit(j domain.Jurisdiction) Action {
	s.mu.Lock()
	defer s.mu.Unlock()

	ready := s.ready(j, wizard.Donation) && s.ready(j, wizard.Details)
	fire := s.wizards[j].Submit(ready, s.inFlight)
	return s.action(j, fire, fire)
}

// action builds the result of a wizard transition. A dispatch is staged here,
// under s.mu, so a form edit that follows can only supersede it. Callers hold
// s.mu.
func (s *Session) action(j domain.Jurisdiction, applied, dispatch bool) Action {
	act := Action{Applied: applied, Dispatch: dispatch, Jurisdiction: j, Form: s.form}
	if dispatch {
		s.inFlight = true
		s.lastErr = nil
		act.Job = s.state.Stage(s.form, j)
	}
	return act
}

// Finish ends the calculation started by a dispatching action. A non-nil err
// is kept until dismissed; the wizard is left as it was so the user can retry.
func (s *Session) Finish(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight = false
	s.lastErr = err
}

// InFlight reports whether a calculation is running.
func (s *Session) InFlight() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight
}

// Err returns the last calculation error, if any.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// DismissError clears the last calculation error.
func (s *Session) DismissError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = nil
}

// WizardState returns the state of sec in the wizard of j.
func (s *Session) WizardState(j domain.Jurisdiction, sec wizard.Section) wizard.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wizards[j].State(sec)
}

// ready evaluates the completion predicate of sec for j. Callers hold s.mu.
func (s *Session) ready(j domain.Jurisdiction, sec wizard.Section) bool {
	switch {
	case j == domain.JurisdictionUK && sec == wizard.Donation:
		return s.form.UK.DonationReady()
	case j == domain.JurisdictionUK:
		return s.form.UK.DetailsReady()
	case sec == wizard.Donation:
		return s.form.US.DonationReady()
	default:
		return s.form.US.DetailsReady()
	}
}

// View renders the session for the browser.
func (s *Session) View() domain.SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := domain.SessionView{
		ID:           s.ID,
		Jurisdiction: s.jurisdiction,
		USForm:       s.form.US,
		UKForm:       s.form.UK,
		US:           s.jurisdictionView(domain.JurisdictionUS, s.form.US.Income.Total()),
		UK:           s.jurisdictionView(domain.JurisdictionUK, s.form.UK.Income.Total()),
		InFlight:     s.inFlight,
		CreatedAt:    s.CreatedAt,
	}
	if s.lastErr != nil {
		v.Error = domain.UserMessage(s.lastErr)
	}
	return v
}

func (s *Session) jurisdictionView(j domain.Jurisdiction, totalIncome float64) domain.JurisdictionView {
	fp, entry, pending := s.state.Display.Snapshot(j)
	ready := s.ready(j, wizard.Donation) && s.ready(j, wizard.Details)
	return domain.JurisdictionView{
		Wizard:      s.wizards[j].View(ready, s.inFlight),
		TotalIncome: totalIncome,
		Fingerprint: fp.Digest(),
		Pending:     pending,
		Result:      calc.SelectEntry(entry, s.form.Mode(j), j),
	}
}
