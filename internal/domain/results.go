package domain

// GiftAidGrossUp converts a net Gift Aid donation into what the charity receives
// after reclaiming basic-rate tax.
const GiftAidGrossUp = 1.25

const (
	CurrencyUSD = "USD"
	CurrencyGBP = "GBP"
)

// ============================================================
// Engine requests
// ============================================================

// AmountRequest is sent to the engine's compute-amount operation.
type AmountRequest struct {
	Income         Income     `json:"income"`
	StateCode      string     `json:"state_code"`
	IsMarried      bool       `json:"is_married"`
	NumChildren    int        `json:"num_children"`
	InNYC          bool       `json:"in_nyc"`
	DonationAmount float64    `json:"donation_amount"`
	Deductions     Deductions `json:"deductions"`
	Year           int        `json:"year"`
}

// TargetRequest is sent to the engine's compute-target operation.
type TargetRequest struct {
	Income          Income     `json:"income"`
	StateCode       string     `json:"state_code"`
	IsMarried       bool       `json:"is_married"`
	NumChildren     int        `json:"num_children"`
	InNYC           bool       `json:"in_nyc"`
	Deductions      Deductions `json:"deductions"`
	TargetReduction float64    `json:"target_reduction"`
	IsPercentage    bool       `json:"is_percentage"`
	Year            int        `json:"year"`
}

// UKRequest is sent to the engine's compute-uk operation.
type UKRequest struct {
	Income      UKIncome `json:"income"`
	Region      string   `json:"region"`
	GiftAid     float64  `json:"gift_aid"`
	IsMarried   bool     `json:"is_married"`
	NumChildren int      `json:"num_children"`
	Year        int      `json:"year"`
}

// ============================================================
// Engine results
// ============================================================

// CurvePoint is one sample of the donation sweep. The engine owns its content.
type CurvePoint struct {
	Donation        float64 `json:"donation"`
	NetTax          float64 `json:"net_tax"`
	MarginalSavings float64 `json:"marginal_savings"`
	NetIncome       float64 `json:"net_income"`
}

// TaxBreakdown splits a tax figure into federal and state parts.
type TaxBreakdown struct {
	Federal float64 `json:"federal"`
	State   float64 `json:"state"`
	Total   float64 `json:"total"`
}

// AmountResult is the outcome of a US fixed-donation calculation.
type AmountResult struct {
	DonationAmount         float64       `json:"donation_amount"`
	BaselineNetTax         float64       `json:"baseline_net_tax"`
	NetTaxAtDonation       float64       `json:"net_tax_at_donation"`
	TaxSavings             float64       `json:"tax_savings"`
	MarginalSavingsRate    float64       `json:"marginal_savings_rate"`
	BaselineTaxBreakdown   *TaxBreakdown `json:"baseline_tax_breakdown,omitempty"`
	DonationTaxBreakdown   *TaxBreakdown `json:"donation_tax_breakdown,omitempty"`
	BaselineNetIncome      float64       `json:"baseline_net_income"`
	NetIncomeAfterDonation float64       `json:"net_income_after_donation"`
	Curve                  []CurvePoint  `json:"curve"`
}

// TargetResult is the outcome of a US target-reduction calculation.
type TargetResult struct {
	RequiredDonation       float64      `json:"required_donation"`
	ActualReduction        float64      `json:"actual_reduction"`
	ActualPercentage       float64      `json:"actual_percentage"`
	BaselineNetIncome      float64      `json:"baseline_net_income"`
	NetIncomeAfterDonation float64      `json:"net_income_after_donation"`
	Curve                  []CurvePoint `json:"curve"`
}

// UKResult is the outcome of a UK Gift Aid calculation.
type UKResult struct {
	GiftAid                float64      `json:"gift_aid"`
	BaselineNetTax         float64      `json:"baseline_net_tax"`
	NetTaxAtDonation       float64      `json:"net_tax_at_donation"`
	TaxSavings             float64      `json:"tax_savings"`
	MarginalSavingsRate    float64      `json:"marginal_savings_rate"`
	BaselineNetIncome      float64      `json:"baseline_net_income"`
	NetIncomeAfterDonation float64      `json:"net_income_after_donation"`
	Curve                  []CurvePoint `json:"curve"`
}

// ============================================================
// Display
// ============================================================

// DisplayBundle is the single shape the browser renders, whichever calculation
// produced it.
type DisplayBundle struct {
	Kind                   Mode         `json:"kind"`
	Jurisdiction           Jurisdiction `json:"jurisdiction"`
	Currency               string       `json:"currency"`
	DonationAmount         float64      `json:"donation_amount"`
	CharityReceives        float64      `json:"charity_receives"`
	BaselineNetTax         float64      `json:"baseline_net_tax"`
	NetTaxAtDonation       float64      `json:"net_tax_at_donation"`
	TaxSavings             float64      `json:"tax_savings"`
	MarginalSavingsRate    float64      `json:"marginal_savings_rate"`
	BaselineNetIncome      float64      `json:"baseline_net_income"`
	NetIncomeAfterDonation float64      `json:"net_income_after_donation"`
	ActualReduction        float64      `json:"actual_reduction,omitempty"`
	ActualPercentage       float64      `json:"actual_percentage,omitempty"`
	Curve                  []CurvePoint `json:"curve"`
}
