package source

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/minaret-labs/minaret/internal/db"
	"github.com/minaret-labs/minaret/internal/model"
)

// ResolveMeta reports where a schedule came from and what the source knew
// about the lunar calendar, so the engine can feed the mode controller.
type ResolveMeta struct {
	Tier         string
	HijriKnown   bool
	SpecialMonth bool
}

const (
	TierStatic  = "static"
	TierDynamic = "dynamic"
	TierCached  = "cached"
)

// Resolver walks the source tiers in order, first success wins. Successful
// live resolutions are written back into the persistent store so the cached
// tier has them when connectivity later fails.
type Resolver struct {
	static    *StaticClient
	dynamic   *DynamicClient
	directory *Directory
	store     db.Store
}

func NewResolver(static *StaticClient, dynamic *DynamicClient, directory *Directory, store db.Store) *Resolver {
	return &Resolver{static: static, dynamic: dynamic, directory: directory, store: store}
}

// Resolve produces the authoritative schedule for (locationID, day).
// seasonActive selects the Ramadan derivation rules. day must already be in
// the location's timezone (the engine applies the calendar offset first).
func (r *Resolver) Resolve(ctx context.Context, locationID int, day time.Time, seasonActive bool) (model.DailySchedule, ResolveMeta, error) {
	location, err := r.directory.Location(ctx, locationID)
	if err != nil {
		return model.DailySchedule{}, ResolveMeta{}, fmt.Errorf("unknown location %d: %w", locationID, err)
	}

	if rec, ok := r.fromStatic(ctx, location, day); ok {
		return r.finish(ctx, rec, locationID, day, seasonActive, TierStatic)
	}

	if rec, ok := r.fromDynamic(ctx, locationID, day); ok {
		return r.finish(ctx, rec, locationID, day, seasonActive, TierDynamic)
	}

	cached, err := r.store.GetCachedSchedule(locationID, day.Format(model.DateLayout))
	if err != nil {
		if errors.Is(err, model.ErrNoDataForDate) {
			return model.DailySchedule{}, ResolveMeta{}, model.ErrNoDataForDate
		}
		return model.DailySchedule{}, ResolveMeta{}, err
	}
	log.Info().Int("location_id", locationID).Str("date", day.Format(model.DateLayout)).
		Msg("live tiers unavailable, serving cached schedule")
	return cached, ResolveMeta{Tier: TierCached}, nil
}

func (r *Resolver) fromStatic(ctx context.Context, location model.Location, day time.Time) (model.RawScheduleRecord, bool) {
	records, err := r.static.FetchBundle(ctx, location.Slug, day.Format("2006-01"))
	if err != nil {
		log.Debug().Err(err).Str("slug", location.Slug).Msg("static tier miss")
		return model.RawScheduleRecord{}, false
	}
	rec, ok := RecordFor(records, day)
	return rec, ok
}

func (r *Resolver) fromDynamic(ctx context.Context, locationID int, day time.Time) (model.RawScheduleRecord, bool) {
	rec, err := r.dynamic.FetchRecord(ctx, locationID, day)
	if err != nil {
		log.Debug().Err(err).Int("location_id", locationID).Msg("dynamic tier miss")
		return model.RawScheduleRecord{}, false
	}
	return rec, true
}

func (r *Resolver) finish(ctx context.Context, rec model.RawScheduleRecord, locationID int, day time.Time, seasonActive bool, tier string) (model.DailySchedule, ResolveMeta, error) {
	schedule, err := buildSchedule(rec, locationID, day, seasonActive)
	if err != nil {
		return model.DailySchedule{}, ResolveMeta{}, err
	}

	// write-back for the offline tier; detached from the caller's context
	// so cancellation cannot interrupt the durable write
	go func(s model.DailySchedule) {
		if err := r.store.UpsertCachedSchedule(s.LocationID, s.DateKey(), s); err != nil {
			log.Error().Err(err).Int("location_id", s.LocationID).Msg("schedule write-back failed")
		}
	}(schedule)

	meta := ResolveMeta{Tier: tier, HijriKnown: rec.HijriKnown(), SpecialMonth: rec.IsRamadan()}
	return schedule, meta, nil
}
