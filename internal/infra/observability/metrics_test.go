package observability_test

import (
	"testing"

	"github.com/boddenberg/givecalc-bfa-go/internal/infra/observability"

	"github.com/stretchr/testify/assert"
)

func TestCalculatorSnapshot(t *testing.T) {
	m := observability.NewMetrics()

	m.IncrCacheHit("us/amount")
	m.IncrCacheMiss("us/amount")
	m.IncrCacheMiss("uk")
	m.IncrCacheMiss("uk")
	m.IncrSuperseded("uk")
	m.IncrExternalError("engine")
	m.IncrCalculation("us/amount", "success")
	m.IncrCalculation("us/amount", "cached")
	m.IncrCalculation("uk", "error")
	m.SessionStarted()
	m.SessionStarted()
	m.SessionEnded()

	snap := m.GetCalculatorSnapshot()

	assert.EqualValues(t, 1, snap.CacheHits)
	assert.EqualValues(t, 3, snap.CacheMisses)
	assert.InDelta(t, 0.25, snap.CacheHitRate, 1e-9)
	assert.EqualValues(t, 1, snap.SupersededResults)
	assert.EqualValues(t, 1, snap.EngineErrors)
	assert.EqualValues(t, 1, snap.ActiveSessions)
	assert.EqualValues(t, 2, snap.CalculationsByKind["us/amount"])
	assert.EqualValues(t, 0, snap.CalculationsByKind["uk"])
}

func TestNewMetrics_Twice(t *testing.T) {
	assert.NotPanics(t, func() {
		observability.NewMetrics()
		observability.NewMetrics()
	})
}
