// Package calc holds the calculation core of GiveCalc: fingerprinting of form
// state, the dispatcher that serves cached results or calls the engine, the
// display state those results land in and the selector that picks what the
// browser renders.
package calc

import (
	"strings"

	"github.com/boddenberg/givecalc-bfa-go/internal/domain"
)

// Scope identifies one of the three calculation shapes.
type Scope string

const (
	ScopeUSAmount Scope = "us/amount"
	ScopeUSTarget Scope = "us/target"
	ScopeUK       Scope = "uk"
)

// Form is the complete form state of a session: one form per jurisdiction.
type Form struct {
	US domain.FormState
	UK domain.UKFormState
}

// DefaultForm returns the form a new session starts with.
func DefaultForm() Form {
	return Form{US: domain.DefaultFormState(), UK: domain.DefaultUKFormState()}
}

// Mode returns the calculation mode in effect for j. The UK has no target mode.
func (f Form) Mode(j domain.Jurisdiction) domain.Mode {
	if j == domain.JurisdictionUS && f.US.Mode == domain.ModeTarget {
		return domain.ModeTarget
	}
	return domain.ModeAmount
}

// Scope returns the calculation shape for j.
func (f Form) Scope(j domain.Jurisdiction) Scope {
	switch {
	case j == domain.JurisdictionUK:
		return ScopeUK
	case f.Mode(j) == domain.ModeTarget:
		return ScopeUSTarget
	}
	return ScopeUSAmount
}

func code(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

func amountRequest(f domain.FormState) *domain.AmountRequest {
	return &domain.AmountRequest{
		Income:         f.Income,
		StateCode:      code(f.StateCode),
		IsMarried:      f.IsMarried,
		NumChildren:    f.NumChildren,
		InNYC:          f.EffectiveInNYC(),
		DonationAmount: f.DonationAmount,
		Deductions:     f.Deductions,
		Year:           f.Year,
	}
}

func targetRequest(f domain.FormState) *domain.TargetRequest {
	return &domain.TargetRequest{
		Income:          f.Income,
		StateCode:       code(f.StateCode),
		IsMarried:       f.IsMarried,
		NumChildren:     f.NumChildren,
		InNYC:           f.EffectiveInNYC(),
		Deductions:      f.Deductions,
		TargetReduction: f.TargetReduction,
		IsPercentage:    f.IsPercentage,
		Year:            f.Year,
	}
}

func ukRequest(f domain.UKFormState) *domain.UKRequest {
	return &domain.UKRequest{
		Income:      f.Income,
		Region:      code(f.Region),
		GiftAid:     f.GiftAid,
		IsMarried:   f.IsMarried,
		NumChildren: f.NumChildren,
		Year:        f.Year,
	}
}
