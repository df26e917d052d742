package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/minaret-labs/minaret/internal/model"
)

// GetInstalledAlertSet loads the idempotency ledger row for one
// (location, date); nil when nothing was ever installed for that day.
func (p *pgStore) GetInstalledAlertSet(locationID int, date string) (*model.InstalledAlertSet, error) {
	var payload []byte
	const q = `SELECT payload FROM installed_alert_sets WHERE location_id = $1 AND date = $2;`
	if err := p.db.Get(&payload, q, locationID, date); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		log.Error().Err(err).Int("location_id", locationID).Str("date", date).Msg("GetInstalledAlertSet failed")
		return nil, err
	}
	var set model.InstalledAlertSet
	if err := json.Unmarshal(payload, &set); err != nil {
		return nil, fmt.Errorf("decode installed alert set: %w", err)
	}
	return &set, nil
}

// SwapInstalledAlertSet replaces the ledger row for the set's key in a
// single statement. The upsert either fully replaces the previous value or
// leaves it untouched; the ledger is never partially overwritten.
func (p *pgStore) SwapInstalledAlertSet(set model.InstalledAlertSet) error {
	payload, err := json.Marshal(set)
	if err != nil {
		return fmt.Errorf("encode installed alert set: %w", err)
	}
	const q = `
	INSERT INTO installed_alert_sets (location_id, date, fingerprint, payload, installed_at)
	VALUES ($1, $2, $3, $4, now())
	ON CONFLICT (location_id, date)
	DO UPDATE SET fingerprint = EXCLUDED.fingerprint,
	              payload = EXCLUDED.payload,
	              installed_at = now();`
	if _, err := p.db.Exec(q, set.LocationID, set.Date, set.Fingerprint, payload); err != nil {
		log.Error().Err(err).Int("location_id", set.LocationID).Str("date", set.Date).Msg("SwapInstalledAlertSet failed")
		return err
	}
	return nil
}
