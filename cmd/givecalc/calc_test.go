package main

import (
	"bytes"
	"testing"

	"github.com/boddenberg/givecalc-bfa-go/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestMoney(t *testing.T) {
	assert.Equal(t, "$1,234.50", money(domain.CurrencyUSD, 1234.5))
	assert.Equal(t, "£1,250.00", money(domain.CurrencyGBP, 1250))
	assert.Equal(t, "-$300.00", money(domain.CurrencyUSD, -300))
}

func TestPrintBundle_Target(t *testing.T) {
	var buf bytes.Buffer
	printBundle(&buf, &domain.DisplayBundle{
		Kind:            domain.ModeTarget,
		Jurisdiction:    domain.JurisdictionUS,
		Currency:        domain.CurrencyUSD,
		DonationAmount:  12000,
		CharityReceives: 12000,
		ActualReduction: 8000,
		Curve:           make([]domain.CurvePoint, 1001),
	})

	out := buf.String()
	assert.Contains(t, out, "US calculation (target)")
	assert.Contains(t, out, "$12,000.00")
	assert.Contains(t, out, "Actual reduction")
	assert.Contains(t, out, "1,001")
}

func TestFormFromFlags(t *testing.T) {
	flagRegion, flagGiftAid, flagWages, flagYear = " scotland ", 2000, 60000, 2025
	form := formFromFlags(domain.JurisdictionUK)
	assert.Equal(t, "SCOTLAND", form.UK.Region)
	assert.Equal(t, 2000.0, form.UK.GiftAid)
	assert.Equal(t, 60000.0, form.UK.Income.EmploymentIncome)
	assert.Equal(t, domain.DefaultFormState(), form.US)

	flagState, flagMode, flagDonation = "ny", "TARGET", 500
	form = formFromFlags(domain.JurisdictionUS)
	assert.Equal(t, "NY", form.US.StateCode)
	assert.Equal(t, domain.ModeTarget, form.US.Mode)
	assert.Equal(t, domain.DefaultUKFormState(), form.UK)
}
