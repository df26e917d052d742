package db

import (
	"database/sql"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/minaret-labs/minaret/internal/model"
)

// GetModeState loads the persisted seasonal mode state; a location without
// a row starts in the zero state (auto, not overridden, inactive).
func (p *pgStore) GetModeState(locationID int) (model.ModeState, error) {
	var s model.ModeState
	const q = `
	SELECT auto_detected, manual_override_active, last_manual_value, effective
	  FROM mode_state
	 WHERE location_id = $1;`
	err := p.db.Get(&s, q, locationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.ModeState{}, nil
		}
		log.Error().Err(err).Int("location_id", locationID).Msg("GetModeState failed")
		return model.ModeState{}, err
	}
	return s, nil
}

func (p *pgStore) SaveModeState(locationID int, state model.ModeState) error {
	const q = `
	INSERT INTO mode_state (location_id, auto_detected, manual_override_active, last_manual_value, effective, updated_at)
	VALUES ($1, $2, $3, $4, $5, now())
	ON CONFLICT (location_id)
	DO UPDATE SET auto_detected = EXCLUDED.auto_detected,
	              manual_override_active = EXCLUDED.manual_override_active,
	              last_manual_value = EXCLUDED.last_manual_value,
	              effective = EXCLUDED.effective,
	              updated_at = now();`
	if _, err := p.db.Exec(q, locationID, state.AutoDetected, state.ManualOverrideActive, state.LastManualValue, state.Effective); err != nil {
		log.Error().Err(err).Int("location_id", locationID).Msg("SaveModeState failed")
		return err
	}
	return nil
}
