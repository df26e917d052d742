// internal/db/schedules.go
package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/minaret-labs/minaret/internal/model"
)

// UpsertCachedSchedule persists a resolved schedule for the offline tier.
// The row is replaced atomically; a failed write leaves the previous copy
// intact.
func (p *pgStore) UpsertCachedSchedule(locationID int, date string, schedule model.DailySchedule) error {
	payload, err := json.Marshal(schedule)
	if err != nil {
		return fmt.Errorf("encode cached schedule: %w", err)
	}
	const q = `
	INSERT INTO cached_schedules (location_id, date, payload, fetched_at)
	VALUES ($1, $2, $3, now())
	ON CONFLICT (location_id, date)
	DO UPDATE SET payload = EXCLUDED.payload, fetched_at = now();`
	if _, err := p.db.Exec(q, locationID, date, payload); err != nil {
		log.Error().Err(err).Int("location_id", locationID).Str("date", date).Msg("UpsertCachedSchedule failed")
		return err
	}
	return nil
}

// GetCachedSchedule returns the most recently persisted schedule for the
// exact (locationID, date) key, or model.ErrNoDataForDate.
func (p *pgStore) GetCachedSchedule(locationID int, date string) (model.DailySchedule, error) {
	var payload []byte
	const q = `SELECT payload FROM cached_schedules WHERE location_id = $1 AND date = $2;`
	if err := p.db.Get(&payload, q, locationID, date); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.DailySchedule{}, model.ErrNoDataForDate
		}
		log.Error().Err(err).Int("location_id", locationID).Str("date", date).Msg("GetCachedSchedule failed")
		return model.DailySchedule{}, err
	}
	var s model.DailySchedule
	if err := json.Unmarshal(payload, &s); err != nil {
		return model.DailySchedule{}, fmt.Errorf("decode cached schedule: %w", err)
	}
	return s, nil
}

// PurgeCachedSchedules removes rows fetched before the staleness horizon.
// Returns the number of rows removed.
func (p *pgStore) PurgeCachedSchedules(olderThan time.Time) (int, error) {
	res, err := p.db.Exec(`DELETE FROM cached_schedules WHERE fetched_at < $1;`, olderThan)
	if err != nil {
		log.Error().Err(err).Msg("PurgeCachedSchedules failed")
		return 0, err
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}
