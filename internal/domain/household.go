// Package domain defines the core entities of the GiveCalc BFA: household form
// state, engine request/response bundles and the shapes rendered to the browser.
package domain

import (
	"fmt"
	"math"
	"strings"
)

// ============================================================
// Jurisdiction / Mode
// ============================================================

// Jurisdiction selects the tax system a household is evaluated under.
type Jurisdiction string

const (
	JurisdictionUS Jurisdiction = "us"
	JurisdictionUK Jurisdiction = "uk"
)

// ParseJurisdiction accepts "us"/"uk" in any case.
func ParseJurisdiction(s string) (Jurisdiction, error) {
	switch j := Jurisdiction(strings.ToLower(strings.TrimSpace(s))); j {
	case JurisdictionUS, JurisdictionUK:
		return j, nil
	}
	return "", &ErrValidation{Field: "jurisdiction", Message: fmt.Sprintf("unknown jurisdiction %q", s)}
}

// Mode is the US calculation mode.
type Mode string

const (
	ModeAmount Mode = "amount" // fixed donation amount
	ModeTarget Mode = "target" // target net-income reduction
)

// TaxYears is the enumerated set of supported tax years.
var TaxYears = []int{2024, 2025, 2026}

const (
	DefaultTaxYear = 2025
	MaxChildren    = 10
)

// Field is a named numeric form value.
type Field struct {
	Name  string
	Value float64
}

// ============================================================
// US household
// ============================================================

// Income holds the US income sources of a household.
type Income struct {
	WagesAndSalaries      float64 `json:"wages_and_salaries"`
	Tips                  float64 `json:"tips"`
	Dividends             float64 `json:"dividends"`
	QualifiedDividends    float64 `json:"qualified_dividends"`
	ShortTermCapitalGains float64 `json:"short_term_capital_gains"`
	LongTermCapitalGains  float64 `json:"long_term_capital_gains"`
	InterestIncome        float64 `json:"interest_income"`
	SelfEmploymentIncome  float64 `json:"self_employment_income"`
}

// Fields lists the income sources in wire order.
func (i Income) Fields() []Field {
	return []Field{
		{"wages_and_salaries", i.WagesAndSalaries},
		{"tips", i.Tips},
		{"dividends", i.Dividends},
		{"qualified_dividends", i.QualifiedDividends},
		{"short_term_capital_gains", i.ShortTermCapitalGains},
		{"long_term_capital_gains", i.LongTermCapitalGains},
		{"interest_income", i.InterestIncome},
		{"self_employment_income", i.SelfEmploymentIncome},
	}
}

// Total sums every income source.
func (i Income) Total() float64 {
	return sumFields(i.Fields())
}

// Deductions holds US itemized deductions.
type Deductions struct {
	MortgageInterest float64 `json:"mortgage_interest"`
	RealEstateTaxes  float64 `json:"real_estate_taxes"`
	MedicalExpenses  float64 `json:"medical_expenses"`
	CasualtyLoss     float64 `json:"casualty_loss"`
}

// Fields lists the deductions in wire order.
func (d Deductions) Fields() []Field {
	return []Field{
		{"mortgage_interest", d.MortgageInterest},
		{"real_estate_taxes", d.RealEstateTaxes},
		{"medical_expenses", d.MedicalExpenses},
		{"casualty_loss", d.CasualtyLoss},
	}
}

// FormState is the US form as edited in the browser.
type FormState struct {
	Income          Income     `json:"income"`
	StateCode       string     `json:"state_code"`
	IsMarried       bool       `json:"is_married"`
	NumChildren     int        `json:"num_children"`
	InNYC           bool       `json:"in_nyc"`
	DonationAmount  float64    `json:"donation_amount"`
	Deductions      Deductions `json:"deductions"`
	Mode            Mode       `json:"mode"`
	TargetReduction float64    `json:"target_reduction"`
	IsPercentage    bool       `json:"is_percentage"`
	Year            int        `json:"year"`
}

// DefaultFormState returns the form a new session starts with.
func DefaultFormState() FormState {
	return FormState{
		Income:          Income{WagesAndSalaries: 100000},
		StateCode:       "CA",
		DonationAmount:  5000,
		Mode:            ModeAmount,
		TargetReduction: 10,
		IsPercentage:    true,
		Year:            DefaultTaxYear,
	}
}

// EffectiveInNYC reports the city flag as the engine should see it: only New York
// residents can be subject to NYC income tax.
func (f FormState) EffectiveInNYC() bool {
	return f.InNYC && strings.EqualFold(strings.TrimSpace(f.StateCode), "NY")
}

// Validate checks field ranges. It does not decide whether a wizard step may be
// confirmed; see DonationReady and DetailsReady.
func (f FormState) Validate() error {
	if err := nonNegative("income.", f.Income.Fields()); err != nil {
		return err
	}
	if err := nonNegative("deductions.", f.Deductions.Fields()); err != nil {
		return err
	}
	if err := nonNegative("", []Field{
		{"donation_amount", f.DonationAmount},
		{"target_reduction", f.TargetReduction},
	}); err != nil {
		return err
	}
	if f.StateCode != "" && !IsStateCode(f.StateCode) {
		return &ErrValidation{Field: "state_code", Message: fmt.Sprintf("unknown state %q", f.StateCode)}
	}
	if f.Mode != ModeAmount && f.Mode != ModeTarget {
		return &ErrValidation{Field: "mode", Message: fmt.Sprintf("unknown mode %q", f.Mode)}
	}
	if err := validateHousehold(f.NumChildren, f.Year); err != nil {
		return err
	}
	return nil
}

// DonationReady is the completion predicate of the donation step.
func (f FormState) DonationReady() bool {
	if f.Mode == ModeTarget {
		return f.TargetReduction > 0
	}
	return f.DonationAmount > 0
}

// DetailsReady is the completion predicate of the household step.
func (f FormState) DetailsReady() bool {
	return f.Income.Total() > 0 && strings.TrimSpace(f.StateCode) != ""
}

// ============================================================
// UK household
// ============================================================

// UKIncome holds the UK income sources of a household.
type UKIncome struct {
	EmploymentIncome     float64 `json:"employment_income"`
	SelfEmploymentIncome float64 `json:"self_employment_income"`
}

// Fields lists the income sources in wire order.
func (i UKIncome) Fields() []Field {
	return []Field{
		{"employment_income", i.EmploymentIncome},
		{"self_employment_income", i.SelfEmploymentIncome},
	}
}

// Total sums every income source.
func (i UKIncome) Total() float64 {
	return sumFields(i.Fields())
}

// UKFormState is the UK form as edited in the browser.
type UKFormState struct {
	Income      UKIncome `json:"income"`
	Region      string   `json:"region"`
	GiftAid     float64  `json:"gift_aid"`
	IsMarried   bool     `json:"is_married"`
	NumChildren int      `json:"num_children"`
	Year        int      `json:"year"`
}

// DefaultUKFormState returns the UK form a new session starts with.
func DefaultUKFormState() UKFormState {
	return UKFormState{
		Income:  UKIncome{EmploymentIncome: 50000},
		Region:  "LONDON",
		GiftAid: 1000,
		Year:    DefaultTaxYear,
	}
}

// Validate checks field ranges.
func (f UKFormState) Validate() error {
	if err := nonNegative("income.", f.Income.Fields()); err != nil {
		return err
	}
	if err := nonNegative("", []Field{{"gift_aid", f.GiftAid}}); err != nil {
		return err
	}
	if !IsUKRegion(f.Region) {
		return &ErrValidation{Field: "region", Message: fmt.Sprintf("unknown region %q", f.Region)}
	}
	return validateHousehold(f.NumChildren, f.Year)
}

// DonationReady is the completion predicate of the Gift Aid step.
func (f UKFormState) DonationReady() bool {
	return f.GiftAid > 0
}

// DetailsReady is the completion predicate of the household step.
func (f UKFormState) DetailsReady() bool {
	return f.Income.Total() > 0
}

// CharityReceives is the gross amount the charity gets once Gift Aid is reclaimed.
func (f UKFormState) CharityReceives() float64 {
	return f.GiftAid * GiftAidGrossUp
}

// ============================================================
// helpers
// ============================================================

func sumFields(fields []Field) float64 {
	var total float64
	for _, f := range fields {
		total += f.Value
	}
	return total
}

func nonNegative(prefix string, fields []Field) error {
	for _, f := range fields {
		if math.IsNaN(f.Value) || math.IsInf(f.Value, 0) {
			return &ErrValidation{Field: prefix + f.Name, Message: "must be a finite number"}
		}
		if f.Value < 0 {
			return &ErrValidation{Field: prefix + f.Name, Message: "must be >= 0"}
		}
	}
	return nil
}

func validateHousehold(children, year int) error {
	if children < 0 || children > MaxChildren {
		return &ErrValidation{Field: "num_children", Message: fmt.Sprintf("must be between 0 and %d", MaxChildren)}
	}
	for _, y := range TaxYears {
		if y == year {
			return nil
		}
	}
	return &ErrValidation{Field: "year", Message: fmt.Sprintf("must be one of %v", TaxYears)}
}
