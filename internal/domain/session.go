package domain

import "time"

// ============================================================
// Session API: requests and responses
// ============================================================

// WizardView is the state of the two wizard sections of one jurisdiction.
type WizardView struct {
	Donation string `json:"donation"` // locked, active, complete
	Details  string `json:"details"`
	// CanSubmit is true when the Enter shortcut would recalculate.
	CanSubmit bool `json:"can_submit"`
}

// JurisdictionView is what the browser renders for one jurisdiction.
type JurisdictionView struct {
	Wizard      WizardView     `json:"wizard"`
	TotalIncome float64        `json:"total_income"`
	Fingerprint string         `json:"fingerprint"`
	Pending     bool           `json:"pending"`
	Result      *DisplayBundle `json:"result"`
}

// SessionView is returned by every /v1/sessions route.
type SessionView struct {
	ID           string           `json:"id"`
	Token        string           `json:"token,omitempty"`
	Jurisdiction Jurisdiction     `json:"jurisdiction"`
	USForm       FormState        `json:"us_form"`
	UKForm       UKFormState      `json:"uk_form"`
	US           JurisdictionView `json:"us"`
	UK           JurisdictionView `json:"uk"`
	InFlight     bool             `json:"in_flight"`
	Error        string           `json:"error,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
}

// ActionResponse wraps a session view with the outcome of a wizard action.
type ActionResponse struct {
	Applied    bool        `json:"applied"`
	Calculated bool        `json:"calculated"`
	Cached     bool        `json:"cached"`
	Session    SessionView `json:"session"`
}

// JurisdictionRequest is the body of PUT /v1/sessions/{id}/jurisdiction.
type JurisdictionRequest struct {
	Jurisdiction string `json:"jurisdiction"`
}
