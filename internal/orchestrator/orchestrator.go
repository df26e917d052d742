// Package orchestrator reconciles a resolved daily schedule against the
// alert entries currently installed on the device, issuing install/cancel
// operations through the scheduling boundary so every event alerts exactly
// once. It is the sole writer to the boundary and to the installed-alert
// ledger.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/minaret-labs/minaret/internal/db"
	"github.com/minaret-labs/minaret/internal/model"
	"github.com/minaret-labs/minaret/internal/recovery"
	"github.com/minaret-labs/minaret/internal/scheduler"
)

type Orchestrator struct {
	store    db.Store
	boundary scheduler.Boundary
	recovery *recovery.Store

	// now is swappable for tests
	now func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func New(store db.Store, boundary scheduler.Boundary, recoveryStore *recovery.Store) *Orchestrator {
	return &Orchestrator{
		store:    store,
		boundary: boundary,
		recovery: recoveryStore,
		now:      time.Now,
		locks:    map[string]*sync.Mutex{},
	}
}

// Reconcile brings the installed alert entries for the schedule's
// (location, date) in line with the schedule. An unchanged fingerprint is a
// no-op apart from the countdown update, which is cheap and has no
// duplication risk.
func (o *Orchestrator) Reconcile(ctx context.Context, schedule model.DailySchedule, modeEffective bool) (model.InstalledAlertSet, error) {
	return o.reconcile(ctx, schedule, modeEffective, false)
}

// ReconcileRecovered re-arms a schedule recovered after a device cold boot.
// The operating scheduler lost its entries, so the ledger fingerprint must
// not short-circuit the reinstall.
func (o *Orchestrator) ReconcileRecovered(ctx context.Context, schedule model.DailySchedule, modeEffective bool) (model.InstalledAlertSet, error) {
	return o.reconcile(ctx, schedule, modeEffective, true)
}

func (o *Orchestrator) reconcile(ctx context.Context, schedule model.DailySchedule, modeEffective bool, force bool) (model.InstalledAlertSet, error) {
	date := schedule.DateKey()
	unlock := o.lock(schedule.LocationID, date)
	defer unlock()

	fingerprint := Fingerprint(schedule, modeEffective)

	previous, err := o.store.GetInstalledAlertSet(schedule.LocationID, date)
	if err != nil {
		return model.InstalledAlertSet{}, fmt.Errorf("load alert ledger: %w", err)
	}

	if previous != nil && previous.Fingerprint == fingerprint && !force {
		o.pushCountdown(ctx, schedule)
		return *previous, nil
	}

	settings, err := o.store.GetAlertSettings(schedule.LocationID)
	if err != nil {
		return model.InstalledAlertSet{}, fmt.Errorf("load alert settings: %w", err)
	}

	if previous != nil {
		o.cancelAll(ctx, previous)
	}

	set := model.InstalledAlertSet{
		LocationID:  schedule.LocationID,
		Date:        date,
		Fingerprint: fingerprint,
		InstalledAt: o.now(),
	}

	o.installAlarms(ctx, schedule, &set)
	o.installDNDWindows(ctx, schedule, settings, &set)
	o.pushCountdown(ctx, schedule)

	if err := o.persist(schedule, modeEffective, set); err != nil {
		// the ledger still names the previous set; cancel this pass's
		// entries so the device never carries installs the ledger cannot
		// see, which the next reconcile would duplicate
		o.cancelAll(ctx, &set)
		return model.InstalledAlertSet{}, err
	}

	log.Info().Int("location_id", schedule.LocationID).Str("date", date).
		Int("alarms", len(set.Alarms)).Int("dnd_windows", len(set.DNDWindows)).
		Bool("dnd_unavailable", set.DNDUnavailable).Msg("alert set reconciled")
	return set, nil
}

// installAlarms installs one timed alarm per canonical prayer whose alert
// time is still in the future. Already-passed events for today are skipped
// without error.
func (o *Orchestrator) installAlarms(ctx context.Context, schedule model.DailySchedule, set *model.InstalledAlertSet) {
	now := o.now()
	for _, e := range schedule.Events {
		if !model.CanonicalKinds[e.Kind] {
			continue
		}
		firesAt, err := e.AlertAt(schedule.Date)
		if err != nil {
			log.Warn().Err(err).Str("event", e.Name).Msg("skipping alarm with unparseable time")
			continue
		}
		if !firesAt.After(now) {
			continue
		}
		alarm := model.AlarmEntry{
			ID:      uuid.NewString(),
			Kind:    e.Kind,
			Name:    e.Name,
			FiresAt: firesAt,
		}
		if err := o.boundary.InstallAlarm(ctx, schedule.LocationID, alarm); err != nil {
			log.Error().Err(err).Str("event", e.Name).Msg("alarm install failed")
			continue
		}
		set.Alarms = append(set.Alarms, alarm)
	}
}

// installDNDWindows installs a quiet window around each enabled event's
// secondary time. The whole subsystem is skipped when globally disabled or
// when the device reports PermissionDenied; the denial is recorded on the
// ledger so it is not re-prompted every reconcile.
func (o *Orchestrator) installDNDWindows(ctx context.Context, schedule model.DailySchedule, settings model.AlertSettings, set *model.InstalledAlertSet) {
	if !settings.DNDEnabled {
		return
	}
	before := time.Duration(settings.DNDBeforeMinutes) * time.Minute
	after := time.Duration(settings.DNDAfterMinutes) * time.Minute

	for _, e := range schedule.Events {
		if !settings.EnabledKinds[e.Kind] {
			continue
		}
		anchor, err := e.SecondaryAt(schedule.Date)
		if err != nil {
			log.Warn().Err(err).Str("event", e.Name).Msg("skipping DND window with unparseable time")
			continue
		}
		window := model.DNDWindowEntry{
			ID:    uuid.NewString(),
			Kind:  e.Kind,
			Start: anchor.Add(-before),
			End:   anchor.Add(after),
		}
		if err := o.boundary.InstallDNDWindow(ctx, schedule.LocationID, window); err != nil {
			if errors.Is(err, model.ErrPermissionDenied) {
				log.Warn().Int("location_id", schedule.LocationID).Msg("DND permission missing, subsystem disabled for this set")
				set.DNDUnavailable = true
				return
			}
			log.Error().Err(err).Str("event", e.Name).Msg("DND window install failed")
			continue
		}
		set.DNDWindows = append(set.DNDWindows, window)
	}
}

func (o *Orchestrator) pushCountdown(ctx context.Context, schedule model.DailySchedule) {
	payload := model.CountdownPayload{
		LocationID: schedule.LocationID,
		Date:       schedule.DateKey(),
	}
	for _, e := range schedule.Events {
		if !model.CanonicalKinds[e.Kind] {
			continue
		}
		payload.Items = append(payload.Items, model.CountdownItem{Name: e.Name, AlertTime: e.AlertTime})
	}
	if err := o.boundary.UpdateCountdown(ctx, payload); err != nil {
		log.Error().Err(err).Int("location_id", schedule.LocationID).Msg("countdown update failed")
	}
}

func (o *Orchestrator) cancelAll(ctx context.Context, set *model.InstalledAlertSet) {
	for _, a := range set.Alarms {
		if err := o.boundary.CancelAlarm(ctx, set.LocationID, a.ID); err != nil {
			log.Error().Err(err).Str("alarm_id", a.ID).Msg("alarm cancel failed")
		}
	}
	for _, w := range set.DNDWindows {
		if err := o.boundary.CancelDNDWindow(ctx, set.LocationID, w.ID); err != nil {
			log.Error().Err(err).Str("window_id", w.ID).Msg("DND window cancel failed")
		}
	}
}

// persist swaps the ledger row and writes the boot recovery record, each
// with one immediate retry. A ledger failure surfaces PersistenceFailed and
// leaves the previous row untouched.
func (o *Orchestrator) persist(schedule model.DailySchedule, modeEffective bool, set model.InstalledAlertSet) error {
	if err := o.store.SwapInstalledAlertSet(set); err != nil {
		if err := o.store.SwapInstalledAlertSet(set); err != nil {
			log.Error().Err(err).Int("location_id", set.LocationID).Str("date", set.Date).Msg("alert ledger persist failed")
			return fmt.Errorf("%w: alert ledger", model.ErrPersistenceFailed)
		}
	}
	if o.recovery != nil {
		if err := o.recovery.Persist(schedule, modeEffective); err != nil {
			// alarms are installed; a failed boot record only degrades
			// recovery after the next reboot
			log.Error().Err(err).Int("location_id", set.LocationID).Msg("boot record persist failed")
		}
	}
	return nil
}

func (o *Orchestrator) lock(locationID int, date string) func() {
	key := fmt.Sprintf("%d/%s", locationID, date)
	o.mu.Lock()
	l, ok := o.locks[key]
	if !ok {
		l = &sync.Mutex{}
		o.locks[key] = l
	}
	o.mu.Unlock()
	l.Lock()
	return l.Unlock
}
