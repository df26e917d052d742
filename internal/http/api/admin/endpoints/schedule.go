package endpoints

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/minaret-labs/minaret/internal/db"
	"github.com/minaret-labs/minaret/internal/engine"
	"github.com/minaret-labs/minaret/internal/http/api"
	"github.com/minaret-labs/minaret/internal/http/api/admin/packets"
	"github.com/minaret-labs/minaret/internal/mode"
	"github.com/minaret-labs/minaret/internal/model"
	"github.com/minaret-labs/minaret/internal/source"
)

type ScheduleController struct {
	store    db.Store
	resolver *source.Resolver
	mode     *mode.Controller
	engine   *engine.Engine
}

func NewScheduleController(store db.Store, resolver *source.Resolver, modeCtl *mode.Controller, eng *engine.Engine) *ScheduleController {
	return &ScheduleController{store: store, resolver: resolver, mode: modeCtl, engine: eng}
}

func ScheduleModule(store db.Store, resolver *source.Resolver, modeCtl *mode.Controller, eng *engine.Engine) api.Module {
	ctl := NewScheduleController(store, resolver, modeCtl, eng)
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/locations/:id/schedule", api.ResolveEndpointWithAuth(ctl.getSchedule))
		c.POST("/locations/:id/reconcile", api.ResolveEndpointWithAuth(ctl.reconcile))
		c.POST("/locations/:id/recover", api.ResolveEndpointWithAuth(ctl.recover))
	})
}

// getSchedule resolves the schedule for ?date=YYYY-MM-DD (default: today in
// the location's timezone) without touching installed alerts.
func (s *ScheduleController) getSchedule(ctx *gin.Context, _ *model.User) (any, *api.APIError) {
	locationID, apiErr := locationParam(ctx)
	if apiErr != nil {
		return nil, apiErr
	}

	location, err := s.store.GetCachedLocation(locationID)
	if err != nil {
		location = model.Location{ID: locationID}
	}

	day := time.Now().In(location.TZ())
	if raw := ctx.Query("date"); raw != "" {
		day, err = time.ParseInLocation(model.DateLayout, raw, location.TZ())
		if err != nil {
			return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid date, expected YYYY-MM-DD"}
		}
	} else {
		day = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	}

	state, err := s.mode.State(locationID)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "failed to load mode state"}
	}

	schedule, meta, err := s.resolver.Resolve(ctx.Request.Context(), locationID, day, state.Effective)
	if err != nil {
		if errors.Is(err, model.ErrNoDataForDate) {
			return nil, &api.APIError{Code: http.StatusNotFound, Message: "no schedule data, check connectivity"}
		}
		log.Error().Err(err).Int("location_id", locationID).Msg("schedule resolve failed")
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "failed to resolve schedule"}
	}
	return packets.ScheduleResponseFrom(schedule, meta.Tier), nil
}

func (s *ScheduleController) reconcile(ctx *gin.Context, _ *model.User) (any, *api.APIError) {
	locationID, apiErr := locationParam(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	if err := s.engine.RefreshLocation(ctx.Request.Context(), locationID); err != nil {
		if errors.Is(err, model.ErrNoDataForDate) {
			return nil, &api.APIError{Code: http.StatusNotFound, Message: "no schedule data, check connectivity"}
		}
		log.Error().Err(err).Int("location_id", locationID).Msg("reconcile failed")
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "reconcile failed"}
	}

	// read back the same day the engine reconciled: today in the
	// location's timezone, shifted by the calendar offset
	location, err := s.store.GetCachedLocation(locationID)
	if err != nil {
		location = model.Location{ID: locationID}
	}
	settings, err := s.store.GetAlertSettings(locationID)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "failed to load settings"}
	}
	day := time.Now().In(location.TZ()).AddDate(0, 0, settings.CalendarOffsetDays)

	set, err := s.store.GetInstalledAlertSet(locationID, day.Format(model.DateLayout))
	if err != nil || set == nil {
		return gin.H{"message": "reconciled"}, nil
	}
	return packets.ReconcileResponse{
		Fingerprint:    set.Fingerprint,
		Alarms:         len(set.Alarms),
		DNDWindows:     len(set.DNDWindows),
		DNDUnavailable: set.DNDUnavailable,
	}, nil
}

// recover replays the boot record, the same path a device cold boot takes.
func (s *ScheduleController) recover(ctx *gin.Context, _ *model.User) (any, *api.APIError) {
	locationID, apiErr := locationParam(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	if err := s.engine.RecoverLocation(ctx.Request.Context(), locationID); err != nil {
		log.Error().Err(err).Int("location_id", locationID).Msg("manual recovery failed")
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "recovery failed"}
	}
	return gin.H{"message": "recovery completed"}, nil
}
