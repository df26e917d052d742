package endpoints

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/minaret-labs/minaret/internal/db"
	"github.com/minaret-labs/minaret/internal/http/api"
	"github.com/minaret-labs/minaret/internal/http/api/admin/packets"
	"github.com/minaret-labs/minaret/internal/model"
)

type SettingsController struct {
	store db.Store
}

func NewSettingsController(store db.Store) *SettingsController {
	return &SettingsController{store: store}
}

func SettingsModule(store db.Store) api.Module {
	ctl := NewSettingsController(store)
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/locations/:id/settings", api.ResolveEndpointWithAuth(ctl.getSettings))
		c.PUT("/locations/:id/settings", api.ResolveEndpointWithAuth(ctl.updateSettings))
	})
}

func locationParam(ctx *gin.Context) (int, *api.APIError) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return 0, &api.APIError{Code: http.StatusBadRequest, Message: "invalid location id"}
	}
	return id, nil
}

func (s *SettingsController) getSettings(ctx *gin.Context, _ *model.User) (any, *api.APIError) {
	locationID, apiErr := locationParam(ctx)
	if apiErr != nil {
		return nil, apiErr
	}

	settings, err := s.store.GetAlertSettings(locationID)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "failed to load settings"}
	}
	return packets.SettingsResponseFrom(settings), nil
}

func (s *SettingsController) updateSettings(ctx *gin.Context, _ *model.User) (any, *api.APIError) {
	locationID, apiErr := locationParam(ctx)
	if apiErr != nil {
		return nil, apiErr
	}

	var request packets.UpdateSettingsRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	settings, err := s.store.GetAlertSettings(locationID)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "failed to load settings"}
	}

	if request.DNDEnabled != nil {
		settings.DNDEnabled = *request.DNDEnabled
	}
	if request.DNDBeforeMinutes != nil {
		settings.DNDBeforeMinutes = *request.DNDBeforeMinutes
	}
	if request.DNDAfterMinutes != nil {
		settings.DNDAfterMinutes = *request.DNDAfterMinutes
	}
	if request.CalendarOffsetDays != nil {
		settings.CalendarOffsetDays = *request.CalendarOffsetDays
	}
	if request.EnabledKinds != nil {
		enabled := make(map[model.PrayerKind]bool, len(request.EnabledKinds))
		for _, k := range request.EnabledKinds {
			kind := model.PrayerKind(k)
			if !model.CanonicalKinds[kind] {
				return nil, &api.APIError{Code: http.StatusBadRequest, Message: "unknown prayer kind: " + k}
			}
			enabled[kind] = true
		}
		settings.EnabledKinds = enabled
	}

	if err := s.store.SaveAlertSettings(locationID, settings); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "failed to save settings"}
	}
	return packets.SettingsResponseFrom(settings), nil
}
