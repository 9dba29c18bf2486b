package wizard_test

import (
	"testing"

	"github.com/boddenberg/givecalc-bfa-go/internal/wizard"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_InitialState(t *testing.T) {
	w := wizard.New()

	assert.Equal(t, wizard.Active, w.State(wizard.Donation))
	assert.Equal(t, wizard.Locked, w.State(wizard.Details))
	assert.False(t, w.Ready())
}

func TestDetailsGatedUntilDonationConfirmed(t *testing.T) {
	w := wizard.New()

	assert.False(t, w.ConfirmDetails(true))
	assert.False(t, w.Edit(wizard.Details))
	applied, dispatch := w.Confirm(wizard.Details, true)
	assert.False(t, applied)
	assert.False(t, dispatch)
	assert.False(t, w.Submit(true, false))

	assert.Equal(t, wizard.Locked, w.State(wizard.Details))
	assert.Equal(t, wizard.Active, w.State(wizard.Donation))
}

func TestConfirmDonation_RequiresPredicate(t *testing.T) {
	w := wizard.New()

	assert.False(t, w.ConfirmDonation(false))
	assert.Equal(t, wizard.Active, w.State(wizard.Donation))
	assert.Equal(t, wizard.Locked, w.State(wizard.Details))

	assert.True(t, w.ConfirmDonation(true))
	assert.Equal(t, wizard.Complete, w.State(wizard.Donation))
	assert.Equal(t, wizard.Active, w.State(wizard.Details))
}

func TestConfirmDetails_DispatchesEveryTime(t *testing.T) {
	w := wizard.New()
	require.True(t, w.ConfirmDonation(true))

	assert.False(t, w.ConfirmDetails(false), "incomplete details do not dispatch")
	assert.Equal(t, wizard.Active, w.State(wizard.Details))

	assert.True(t, w.ConfirmDetails(true))
	assert.True(t, w.Ready())
	assert.True(t, w.ConfirmDetails(true), "re-confirming recalculates")
}

func TestEditAfterComplete_KeepsOtherSection(t *testing.T) {
	w := wizard.New()
	require.True(t, w.ConfirmDonation(true))
	require.True(t, w.ConfirmDetails(true))

	assert.True(t, w.Edit(wizard.Donation))
	assert.Equal(t, wizard.Active, w.State(wizard.Donation))
	assert.Equal(t, wizard.Complete, w.State(wizard.Details))
	assert.False(t, w.Ready())

	// Re-confirming donation leaves the already confirmed details alone.
	assert.True(t, w.ConfirmDonation(true))
	assert.Equal(t, wizard.Complete, w.State(wizard.Details))
	assert.True(t, w.Ready())
}

func TestConfirmDetails_RefusedWhileDonationReopened(t *testing.T) {
	w := wizard.New()
	require.True(t, w.ConfirmDonation(true))
	require.True(t, w.ConfirmDetails(true))
	require.True(t, w.Edit(wizard.Donation))

	applied, dispatch := w.Confirm(wizard.Details, true)
	assert.False(t, applied)
	assert.False(t, dispatch)
	assert.Equal(t, wizard.Active, w.State(wizard.Donation))
	assert.Equal(t, wizard.Complete, w.State(wizard.Details))

	require.True(t, w.ConfirmDonation(true))
	assert.True(t, w.ConfirmDetails(true))
}

func TestEditDetails_KeepsDonation(t *testing.T) {
	w := wizard.New()
	require.True(t, w.ConfirmDonation(true))
	require.True(t, w.ConfirmDetails(true))

	assert.True(t, w.Edit(wizard.Details))
	assert.Equal(t, wizard.Complete, w.State(wizard.Donation))
	assert.Equal(t, wizard.Active, w.State(wizard.Details))

	assert.False(t, w.Edit(wizard.Details), "already active")
}

func TestEditDonation_BeforeDetailsConfirmed(t *testing.T) {
	w := wizard.New()
	require.True(t, w.ConfirmDonation(true))

	assert.True(t, w.Edit(wizard.Donation))
	assert.Equal(t, wizard.Active, w.State(wizard.Details))

	assert.False(t, w.ConfirmDetails(true), "donation is open again")

	assert.True(t, w.ConfirmDonation(true))
	assert.Equal(t, wizard.Active, w.State(wizard.Details))
}

func TestSubmit(t *testing.T) {
	w := wizard.New()
	require.True(t, w.ConfirmDonation(true))
	assert.False(t, w.Submit(true, false), "details not complete")

	require.True(t, w.ConfirmDetails(true))
	assert.False(t, w.Submit(true, true), "calculation in flight")
	assert.False(t, w.Submit(false, false), "form no longer satisfies the sections")
	assert.True(t, w.Submit(true, false))

	require.True(t, w.Edit(wizard.Donation))
	assert.False(t, w.Submit(true, false))
}

func TestView(t *testing.T) {
	w := wizard.New()
	v := w.View(true, false)
	assert.Equal(t, "active", v.Donation)
	assert.Equal(t, "locked", v.Details)
	assert.False(t, v.CanSubmit)

	require.True(t, w.ConfirmDonation(true))
	require.True(t, w.ConfirmDetails(true))
	assert.True(t, w.View(true, false).CanSubmit)
	assert.False(t, w.View(true, true).CanSubmit)
}

func TestParseSection(t *testing.T) {
	s, err := wizard.ParseSection(" Details ")
	require.NoError(t, err)
	assert.Equal(t, wizard.Details, s)

	_, err = wizard.ParseSection("summary")
	assert.Error(t, err)
}
