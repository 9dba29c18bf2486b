// Package wizard implements the two-step confirmation flow of the calculator
// form: the donation section first, then the household details section.
package wizard

import (
	"fmt"
	"strings"

	"github.com/boddenberg/givecalc-bfa-go/internal/domain"
)

// State is the state of one wizard section.
type State uint8

const (
	Locked   State = iota // not reachable yet
	Active                // being edited
	Complete              // confirmed and collapsed to a summary
)

func (s State) String() string {
	switch s {
	case Locked:
		return "locked"
	case Active:
		return "active"
	case Complete:
		return "complete"
	}
	return fmt.Sprintf("State(%d)", uint8(s))
}

// Section names one of the two wizard sections.
type Section string

const (
	Donation Section = "donation"
	Details  Section = "details"
)

// ParseSection accepts "donation" and "details" in any case.
func ParseSection(s string) (Section, error) {
	switch sec := Section(strings.ToLower(strings.TrimSpace(s))); sec {
	case Donation, Details:
		return sec, nil
	}
	return "", &domain.ErrValidation{Field: "section", Message: fmt.Sprintf("unknown section %q", s)}
}

// Wizard holds the section states of one jurisdiction. The details section is
// locked until the donation section has been confirmed once; after that neither
// section goes back to locked.
//
// Wizard is not safe for concurrent use.
type Wizard struct {
	donation State
	details  State
}

// New returns a wizard in its initial state: donation active, details locked.
func New() *Wizard {
	return &Wizard{donation: Active, details: Locked}
}

// State returns the state of sec.
func (w *Wizard) State(sec Section) State {
	if sec == Details {
		return w.details
	}
	return w.donation
}

// ConfirmDonation completes the donation section when ready holds. The first
// confirmation unlocks details; later ones leave details as it is. It reports
// whether the transition happened.
func (w *Wizard) ConfirmDonation(ready bool) bool {
	if !ready || w.donation != Active {
		return false
	}
	w.donation = Complete
	if w.details == Locked {
		w.details = Active
	}
	return true
}

// ConfirmDetails completes the details section when ready holds, the section
// is unlocked and the donation section is complete. ready must cover both
// sections. A true result means the caller must dispatch exactly one
// calculation. Confirming an already complete section recalculates.
func (w *Wizard) ConfirmDetails(ready bool) bool {
	if !ready || w.details == Locked || w.donation != Complete {
		return false
	}
	w.details = Complete
	return true
}

// Confirm confirms sec. The result is true only when details was confirmed,
// which is the cue to dispatch.
func (w *Wizard) Confirm(sec Section, ready bool) (applied, dispatch bool) {
	if sec == Details {
		ok := w.ConfirmDetails(ready)
		return ok, ok
	}
	return w.ConfirmDonation(ready), false
}

// Edit reopens a complete section. The other section keeps its state. It has
// no effect on a locked or already active section.
func (w *Wizard) Edit(sec Section) bool {
	st := &w.donation
	if sec == Details {
		st = &w.details
	}
	if *st != Complete {
		return false
	}
	*st = Active
	return true
}

// Ready reports whether both sections are complete.
func (w *Wizard) Ready() bool {
	return w.donation == Complete && w.details == Complete
}

// Submit is the keyboard shortcut for recalculating. It fires only when both
// sections are complete, the form still satisfies them and no calculation is
// in flight; a true result means the caller must dispatch.
func (w *Wizard) Submit(ready, inFlight bool) bool {
	if inFlight || !w.Ready() {
		return false
	}
	return w.ConfirmDetails(ready)
}

// View renders the wizard for the browser.
func (w *Wizard) View(ready, inFlight bool) domain.WizardView {
	return domain.WizardView{
		Donation:  w.donation.String(),
		Details:   w.details.String(),
		CanSubmit: w.Ready() && ready && !inFlight,
	}
}
