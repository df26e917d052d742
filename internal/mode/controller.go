// Package mode owns the seasonal (Ramadan) display mode: an automatic
// lunar-month detector combined with a sticky manual override latch. The
// three transition methods are the only mutation path; every transition is
// persisted before it is reported back.
package mode

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/minaret-labs/minaret/internal/db"
	"github.com/minaret-labs/minaret/internal/model"
)

type Controller struct {
	store db.Store
	mu    sync.Mutex
}

func NewController(store db.Store) *Controller {
	return &Controller{store: store}
}

// State returns the persisted mode state for a location.
func (c *Controller) State(locationID int) (model.ModeState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.GetModeState(locationID)
}

// AutoSignal records newly known lunar-month information. While a manual
// override is latched the signal only updates the detector; the user's
// explicit choice is never silently clobbered.
func (c *Controller) AutoSignal(locationID int, isSpecialMonth bool) (model.ModeState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	state, err := c.store.GetModeState(locationID)
	if err != nil {
		return model.ModeState{}, err
	}
	state.AutoDetected = isSpecialMonth
	if !state.ManualOverrideActive {
		state.Effective = isSpecialMonth
	}
	if err := c.save(locationID, state); err != nil {
		return model.ModeState{}, err
	}
	log.Debug().Int("location_id", locationID).Bool("special_month", isSpecialMonth).
		Bool("effective", state.Effective).Msg("mode auto signal")
	return state, nil
}

// ManualToggle flips the effective mode and latches the manual override.
func (c *Controller) ManualToggle(locationID int) (model.ModeState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	state, err := c.store.GetModeState(locationID)
	if err != nil {
		return model.ModeState{}, err
	}
	state.Effective = !state.Effective
	state.LastManualValue = state.Effective
	state.ManualOverrideActive = true
	if err := c.save(locationID, state); err != nil {
		return model.ModeState{}, err
	}
	log.Info().Int("location_id", locationID).Bool("effective", state.Effective).Msg("mode toggled manually")
	return state, nil
}

// ResetToAuto clears the manual latch and re-evaluates against the last
// known detector signal.
func (c *Controller) ResetToAuto(locationID int) (model.ModeState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	state, err := c.store.GetModeState(locationID)
	if err != nil {
		return model.ModeState{}, err
	}
	state.ManualOverrideActive = false
	state.Effective = state.AutoDetected
	if err := c.save(locationID, state); err != nil {
		return model.ModeState{}, err
	}
	log.Info().Int("location_id", locationID).Bool("effective", state.Effective).Msg("mode reset to auto")
	return state, nil
}

// save persists with one immediate retry; a persisted-twice failure leaves
// the stored state untouched and is surfaced as PersistenceFailed.
func (c *Controller) save(locationID int, state model.ModeState) error {
	if err := c.store.SaveModeState(locationID, state); err != nil {
		if err := c.store.SaveModeState(locationID, state); err != nil {
			log.Error().Err(err).Int("location_id", locationID).Msg("mode state persist failed")
			return model.ErrPersistenceFailed
		}
	}
	return nil
}
