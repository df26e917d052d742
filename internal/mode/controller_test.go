package mode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minaret-labs/minaret/internal/db"
)

func TestAutoSignalTracksDetectorWithoutOverride(t *testing.T) {
	ctl := NewController(db.NewMemStore())

	state, err := ctl.AutoSignal(1, true)
	require.NoError(t, err)
	assert.True(t, state.AutoDetected)
	assert.True(t, state.Effective)

	state, err = ctl.AutoSignal(1, false)
	require.NoError(t, err)
	assert.False(t, state.Effective)
}

func TestManualToggleLatchesOverride(t *testing.T) {
	store := db.NewMemStore()
	ctl := NewController(store)

	state, err := ctl.ManualToggle(1)
	require.NoError(t, err)
	assert.True(t, state.Effective)
	assert.True(t, state.ManualOverrideActive)

	// the detector signal must not clobber the user's explicit choice
	state, err = ctl.AutoSignal(1, false)
	require.NoError(t, err)
	assert.True(t, state.Effective, "manual override survived the auto signal")
	assert.False(t, state.AutoDetected, "the detector state is still recorded")

	// and the latch persists across controller restarts
	state, err = NewController(store).State(1)
	require.NoError(t, err)
	assert.True(t, state.Effective)
	assert.True(t, state.ManualOverrideActive)
}

func TestResetToAutoReevaluatesLastSignal(t *testing.T) {
	ctl := NewController(db.NewMemStore())

	_, err := ctl.ManualToggle(1)
	require.NoError(t, err)
	_, err = ctl.AutoSignal(1, false)
	require.NoError(t, err)

	state, err := ctl.ResetToAuto(1)
	require.NoError(t, err)
	assert.False(t, state.ManualOverrideActive)
	assert.False(t, state.Effective, "effective re-evaluates against the last known signal")
}

func TestManualToggleFlipsBothWays(t *testing.T) {
	ctl := NewController(db.NewMemStore())

	_, err := ctl.AutoSignal(1, true)
	require.NoError(t, err)

	state, err := ctl.ManualToggle(1)
	require.NoError(t, err)
	assert.False(t, state.Effective, "toggle flips an active mode off")

	state, err = ctl.ManualToggle(1)
	require.NoError(t, err)
	assert.True(t, state.Effective)
	assert.True(t, state.ManualOverrideActive, "latch stays until an explicit reset")
}
