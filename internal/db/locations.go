package db

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/minaret-labs/minaret/internal/model"
)

// ReplaceCachedLocations refreshes the denormalized directory copy in one
// transaction whenever a live directory fetch succeeds. Entries are never
// invalidated between refreshes; staleness is tolerated for availability.
func (p *pgStore) ReplaceCachedLocations(locations []model.Location) error {
	tx, err := p.db.Beginx()
	if err != nil {
		return fmt.Errorf("begin directory refresh: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM cached_locations;`); err != nil {
		log.Error().Err(err).Msg("ReplaceCachedLocations clear failed")
		return err
	}
	const q = `
	INSERT INTO cached_locations (id, name, slug, city, timezone, athan_audio_url, active, refreshed_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, now());`
	for _, l := range locations {
		if _, err := tx.Exec(q, l.ID, l.Name, l.Slug, l.City, l.Timezone, l.AthanAudioURL, l.Active); err != nil {
			log.Error().Err(err).Int("location_id", l.ID).Msg("ReplaceCachedLocations insert failed")
			return err
		}
	}
	return tx.Commit()
}

func (p *pgStore) ListCachedLocations() ([]model.Location, error) {
	var out []model.Location
	const q = `
	SELECT id, name, slug, city, timezone, athan_audio_url, active
	  FROM cached_locations
	 ORDER BY id;`
	if err := p.db.Select(&out, q); err != nil {
		log.Error().Err(err).Msg("ListCachedLocations failed")
		return nil, err
	}
	return out, nil
}

func (p *pgStore) GetCachedLocation(locationID int) (model.Location, error) {
	var l model.Location
	const q = `
	SELECT id, name, slug, city, timezone, athan_audio_url, active
	  FROM cached_locations
	 WHERE id = $1;`
	err := p.db.Get(&l, q, locationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Location{}, sql.ErrNoRows
		}
		log.Error().Err(err).Int("location_id", locationID).Msg("GetCachedLocation failed")
	}
	return l, err
}

// ActiveLocationIDs lists the locations the engine refreshes on its daily
// loop.
func (p *pgStore) ActiveLocationIDs() ([]int, error) {
	var ids []int
	if err := p.db.Select(&ids, `SELECT id FROM cached_locations WHERE active ORDER BY id;`); err != nil {
		log.Error().Err(err).Msg("ActiveLocationIDs failed")
		return nil, err
	}
	return ids, nil
}
