package handler

import (
	"net/http"

	"github.com/boddenberg/givecalc-bfa-go/internal/domain"
)

// ============================================================
// Reference data
// GET /v1/states
// GET /v1/uk/regions
// GET /v1/tax-years
// ============================================================

func statesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"states": domain.States()})
	}
}

func ukRegionsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"regions": domain.UKRegions()})
	}
}

func taxYearsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"years":   domain.TaxYears,
			"default": domain.DefaultTaxYear,
		})
	}
}
