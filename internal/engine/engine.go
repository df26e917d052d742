// Package engine drives the control flow: resolve a location's schedule,
// feed the lunar-month signal to the mode controller, hand the schedule to
// the orchestrator, and keep the athan audio warm. It also owns the
// periodic refresh and cache-sweep loops and the cold-boot recovery hook.
package engine

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/minaret-labs/minaret/internal/assets"
	"github.com/minaret-labs/minaret/internal/db"
	"github.com/minaret-labs/minaret/internal/mode"
	"github.com/minaret-labs/minaret/internal/model"
	"github.com/minaret-labs/minaret/internal/recovery"
	"github.com/minaret-labs/minaret/internal/source"
)

// scheduleResolver is what the engine needs from the source tier walker.
type scheduleResolver interface {
	Resolve(ctx context.Context, locationID int, day time.Time, seasonActive bool) (model.DailySchedule, source.ResolveMeta, error)
}

// reconciler is what the engine needs from the alarm orchestrator.
type reconciler interface {
	Reconcile(ctx context.Context, schedule model.DailySchedule, modeEffective bool) (model.InstalledAlertSet, error)
	ReconcileRecovered(ctx context.Context, schedule model.DailySchedule, modeEffective bool) (model.InstalledAlertSet, error)
}

const (
	refreshInterval = 1 * time.Hour
	sweepInterval   = 12 * time.Hour

	// cached schedules older than this are purged by the sweep
	cacheHorizon = 7 * 24 * time.Hour
)

type Engine struct {
	store    db.Store
	resolver scheduleResolver
	mode     *mode.Controller
	orch     reconciler
	recovery *recovery.Store
	assets   *assets.Cache

	now func() time.Time
}

func New(store db.Store, resolver scheduleResolver, modeCtl *mode.Controller, orch reconciler, recoveryStore *recovery.Store, assetCache *assets.Cache) *Engine {
	return &Engine{
		store:    store,
		resolver: resolver,
		mode:     modeCtl,
		orch:     orch,
		recovery: recoveryStore,
		assets:   assetCache,
		now:      time.Now,
	}
}

// RefreshLocation runs one full resolve-and-reconcile pass for a location's
// current day.
func (e *Engine) RefreshLocation(ctx context.Context, locationID int) error {
	location, err := e.store.GetCachedLocation(locationID)
	if err != nil {
		log.Warn().Err(err).Int("location_id", locationID).Msg("location not in cached directory")
		location = model.Location{ID: locationID}
	}

	settings, err := e.store.GetAlertSettings(locationID)
	if err != nil {
		return err
	}
	day := e.today(location).AddDate(0, 0, settings.CalendarOffsetDays)

	state, err := e.mode.State(locationID)
	if err != nil {
		return err
	}

	schedule, meta, err := e.resolver.Resolve(ctx, locationID, day, state.Effective)
	if err != nil {
		return err
	}

	// a live record tells us the lunar month; the detector may flip the
	// effective mode, which changes the derivation
	if meta.HijriKnown {
		newState, err := e.mode.AutoSignal(locationID, meta.SpecialMonth)
		if err != nil {
			return err
		}
		if newState.Effective != state.Effective {
			schedule, _, err = e.resolver.Resolve(ctx, locationID, day, newState.Effective)
			if err != nil {
				return err
			}
		}
		state = newState
	}

	if _, err := e.orch.Reconcile(ctx, schedule, state.Effective); err != nil {
		return err
	}

	e.warmAudio(location)
	return nil
}

// RefreshAll refreshes every active directory location. NoDataForDate is
// surfaced per location and does not stop the pass.
func (e *Engine) RefreshAll(ctx context.Context) {
	ids, err := e.store.ActiveLocationIDs()
	if err != nil {
		log.Error().Err(err).Msg("could not list locations for refresh")
		return
	}
	for _, id := range ids {
		if err := e.RefreshLocation(ctx, id); err != nil {
			log.Error().Err(err).Int("location_id", id).Msg("refresh failed")
		}
	}
}

// RecoverLocation is the cold-boot path: it re-arms today's alarms from the
// boot record. Missing or stale records are discarded silently; this is the
// only path that re-installs after a reboot.
func (e *Engine) RecoverLocation(ctx context.Context, locationID int) error {
	if e.recovery == nil {
		return nil
	}
	recovered, err := e.recovery.Recover(locationID, e.now())
	if err != nil {
		return err
	}
	if recovered == nil {
		return nil
	}
	log.Info().Int("location_id", locationID).Str("date", recovered.Schedule.DateKey()).
		Msg("re-arming alarms from boot record")
	_, err = e.orch.ReconcileRecovered(ctx, recovered.Schedule, recovered.ModeEffective)
	return err
}

// RecoverAll runs the recovery procedure for every known location at
// process start.
func (e *Engine) RecoverAll(ctx context.Context) {
	ids, err := e.store.ActiveLocationIDs()
	if err != nil {
		log.Error().Err(err).Msg("could not list locations for recovery")
		return
	}
	for _, id := range ids {
		if err := e.RecoverLocation(ctx, id); err != nil {
			log.Error().Err(err).Int("location_id", id).Msg("boot recovery failed")
		}
	}
}

// Run drives the periodic loops until the context is cancelled. Refreshes
// are idempotent (fingerprint no-ops), so the interval only bounds how fast
// remote changes and day rollovers are picked up.
func (e *Engine) Run(ctx context.Context) {
	refresh := time.NewTicker(refreshInterval)
	sweep := time.NewTicker(sweepInterval)
	defer refresh.Stop()
	defer sweep.Stop()

	e.RefreshAll(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-refresh.C:
			e.RefreshAll(ctx)
		case <-sweep.C:
			n, err := e.store.PurgeCachedSchedules(e.now().Add(-cacheHorizon))
			if err != nil {
				log.Error().Err(err).Msg("cache sweep failed")
			} else if n > 0 {
				log.Info().Int("purged", n).Msg("purged stale cached schedules")
			}
		}
	}
}

func (e *Engine) warmAudio(location model.Location) {
	if e.assets == nil || location.AthanAudioURL == "" {
		return
	}
	// reconcile never blocks on the audio download
	go func() {
		if err := e.assets.EnsureCached(context.Background(), location.AthanAudioURL); err != nil {
			log.Warn().Err(err).Int("location_id", location.ID).Msg("athan audio warmup failed")
		}
	}()
}

func (e *Engine) today(location model.Location) time.Time {
	now := e.now().In(location.TZ())
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}
