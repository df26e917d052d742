package source

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/minaret-labs/minaret/internal/db"
	"github.com/minaret-labs/minaret/internal/model"
)

// Directory serves location lookups from the live remote directory,
// refreshing the cached copy on every successful fetch and falling back to
// the cache when the remote is unreachable.
type Directory struct {
	baseURL string
	http    *http.Client
	store   db.Store
}

func NewDirectory(baseURL string, store db.Store) *Directory {
	return &Directory{baseURL: baseURL, http: newHTTPClient(), store: store}
}

// Locations lists the directory, preferring the live source.
func (d *Directory) Locations(ctx context.Context) ([]model.Location, error) {
	var locations []model.Location
	if err := getJSON(ctx, d.http, d.baseURL+"/locations", &locations); err != nil {
		log.Warn().Err(err).Msg("directory fetch failed, serving cached copy")
		return d.store.ListCachedLocations()
	}

	// opportunistic refresh of the offline copy
	if err := d.store.ReplaceCachedLocations(locations); err != nil {
		log.Error().Err(err).Msg("failed to refresh cached directory")
	}
	return locations, nil
}

// Location resolves one entry, via the cache first since single lookups are
// hot-path for every resolve.
func (d *Directory) Location(ctx context.Context, locationID int) (model.Location, error) {
	if l, err := d.store.GetCachedLocation(locationID); err == nil {
		return l, nil
	}
	locations, err := d.Locations(ctx)
	if err != nil {
		return model.Location{}, err
	}
	for _, l := range locations {
		if l.ID == locationID {
			return l, nil
		}
	}
	return model.Location{}, model.ErrNoDataForDate
}
