package domain_test

import (
	"errors"
	"math"
	"testing"

	"github.com/boddenberg/givecalc-bfa-go/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultFormState_IsValid(t *testing.T) {
	require.NoError(t, domain.DefaultFormState().Validate())
	require.NoError(t, domain.DefaultUKFormState().Validate())
}

func TestFormState_Validate(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(f *domain.FormState)
		field string
	}{
		{"negative wages", func(f *domain.FormState) { f.Income.WagesAndSalaries = -1 }, "income.wages_and_salaries"},
		{"nan tips", func(f *domain.FormState) { f.Income.Tips = math.NaN() }, "income.tips"},
		{"negative deduction", func(f *domain.FormState) { f.Deductions.CasualtyLoss = -5 }, "deductions.casualty_loss"},
		{"unknown state", func(f *domain.FormState) { f.StateCode = "ZZ" }, "state_code"},
		{"unknown mode", func(f *domain.FormState) { f.Mode = "both" }, "mode"},
		{"too many children", func(f *domain.FormState) { f.NumChildren = 11 }, "num_children"},
		{"unsupported year", func(f *domain.FormState) { f.Year = 2023 }, "year"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := domain.DefaultFormState()
			tt.edit(&f)

			err := f.Validate()
			var verr *domain.ErrValidation
			require.True(t, errors.As(err, &verr), "expected ErrValidation, got %v", err)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestFormState_Predicates(t *testing.T) {
	f := domain.DefaultFormState()
	assert.True(t, f.DonationReady())
	assert.True(t, f.DetailsReady())

	f.DonationAmount = 0
	assert.False(t, f.DonationReady())

	f.Mode = domain.ModeTarget
	assert.True(t, f.DonationReady(), "target mode only needs a target reduction")

	f.StateCode = ""
	assert.False(t, f.DetailsReady())

	f = domain.DefaultFormState()
	f.Income = domain.Income{}
	assert.False(t, f.DetailsReady())
}

func TestFormState_EffectiveInNYC(t *testing.T) {
	f := domain.DefaultFormState()
	f.InNYC = true
	assert.False(t, f.EffectiveInNYC())

	f.StateCode = "ny"
	assert.True(t, f.EffectiveInNYC())
}

func TestUKFormState(t *testing.T) {
	f := domain.DefaultUKFormState()
	f.GiftAid = 1000
	assert.Equal(t, 1250.0, f.CharityReceives())

	f.Region = "ATLANTIS"
	assert.Error(t, f.Validate())

	f = domain.DefaultUKFormState()
	f.Income = domain.UKIncome{}
	assert.False(t, f.DetailsReady())
}

func TestParseJurisdiction(t *testing.T) {
	j, err := domain.ParseJurisdiction(" UK ")
	require.NoError(t, err)
	assert.Equal(t, domain.JurisdictionUK, j)

	_, err = domain.ParseJurisdiction("fr")
	assert.Error(t, err)
}

func TestReferenceData(t *testing.T) {
	states := domain.States()
	assert.Len(t, states, 51)
	assert.Equal(t, "AK", states[0].Code)
	assert.True(t, domain.IsStateCode("ca"))

	var az domain.StateInfo
	for _, s := range states {
		if s.Code == "AZ" {
			az = s
		}
	}
	assert.True(t, az.HasSpecialPrograms)

	assert.Len(t, domain.UKRegions(), 12)
	assert.True(t, domain.IsUKRegion("scotland"))
}

func TestUserMessage(t *testing.T) {
	assert.Empty(t, domain.UserMessage(nil))

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"rejected", &domain.ErrExternalService{Service: "engine", Err: &domain.ErrValidation{Field: "compute-uk", Message: "Invalid region"}}, "rejected this household: Invalid region"},
		{"timeout", &domain.ErrExternalService{Service: "engine", Err: &domain.ErrTimeout{Operation: "compute-amount"}}, "took too long"},
		{"breaker", &domain.ErrCircuitOpen{Service: "engine"}, "temporarily unavailable"},
		{"other", errors.New("connection refused"), "could not complete"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, domain.UserMessage(tt.err), tt.want)
		})
	}
}
