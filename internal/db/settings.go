package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/minaret-labs/minaret/internal/model"
)

// GetAlertSettings returns the per-location alert settings, falling back to
// defaults when no row has been written yet.
func (p *pgStore) GetAlertSettings(locationID int) (model.AlertSettings, error) {
	var payload []byte
	const q = `SELECT payload FROM alert_settings WHERE location_id = $1;`
	if err := p.db.Get(&payload, q, locationID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.DefaultAlertSettings(), nil
		}
		log.Error().Err(err).Int("location_id", locationID).Msg("GetAlertSettings failed")
		return model.AlertSettings{}, err
	}
	var s model.AlertSettings
	if err := json.Unmarshal(payload, &s); err != nil {
		return model.AlertSettings{}, fmt.Errorf("decode alert settings: %w", err)
	}
	return s, nil
}

func (p *pgStore) SaveAlertSettings(locationID int, settings model.AlertSettings) error {
	payload, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encode alert settings: %w", err)
	}
	const q = `
	INSERT INTO alert_settings (location_id, payload, updated_at)
	VALUES ($1, $2, now())
	ON CONFLICT (location_id)
	DO UPDATE SET payload = EXCLUDED.payload, updated_at = now();`
	if _, err := p.db.Exec(q, locationID, payload); err != nil {
		log.Error().Err(err).Int("location_id", locationID).Msg("SaveAlertSettings failed")
		return err
	}
	return nil
}
