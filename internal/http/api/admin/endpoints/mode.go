package endpoints

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/minaret-labs/minaret/internal/engine"
	"github.com/minaret-labs/minaret/internal/http/api"
	"github.com/minaret-labs/minaret/internal/http/api/admin/packets"
	"github.com/minaret-labs/minaret/internal/mode"
	"github.com/minaret-labs/minaret/internal/model"
)

type ModeController struct {
	mode   *mode.Controller
	engine *engine.Engine
}

func NewModeController(modeCtl *mode.Controller, eng *engine.Engine) *ModeController {
	return &ModeController{mode: modeCtl, engine: eng}
}

func ModeModule(modeCtl *mode.Controller, eng *engine.Engine) api.Module {
	ctl := NewModeController(modeCtl, eng)
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/locations/:id/mode", api.ResolveEndpointWithAuth(ctl.getMode))
		c.POST("/locations/:id/mode/toggle", api.ResolveEndpointWithAuth(ctl.toggle))
		c.POST("/locations/:id/mode/reset", api.ResolveEndpointWithAuth(ctl.reset))
	})
}

func (m *ModeController) getMode(ctx *gin.Context, _ *model.User) (any, *api.APIError) {
	locationID, apiErr := locationParam(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	state, err := m.mode.State(locationID)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "failed to load mode state"}
	}
	return packets.ModeResponseFrom(state), nil
}

func (m *ModeController) toggle(ctx *gin.Context, _ *model.User) (any, *api.APIError) {
	locationID, apiErr := locationParam(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	state, err := m.mode.ManualToggle(locationID)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "failed to toggle mode"}
	}
	m.refresh(locationID)
	return packets.ModeResponseFrom(state), nil
}

func (m *ModeController) reset(ctx *gin.Context, _ *model.User) (any, *api.APIError) {
	locationID, apiErr := locationParam(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	state, err := m.mode.ResetToAuto(locationID)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "failed to reset mode"}
	}
	m.refresh(locationID)
	return packets.ModeResponseFrom(state), nil
}

// a mode change alters the derived event list, so re-run the pipeline for
// the location; failures only delay the next periodic refresh
func (m *ModeController) refresh(locationID int) {
	go func() {
		if err := m.engine.RefreshLocation(context.Background(), locationID); err != nil {
			log.Error().Err(err).Int("location_id", locationID).Msg("refresh after mode change failed")
		}
	}()
}
