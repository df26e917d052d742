package endpoints

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/minaret-labs/minaret/internal/assets"
	"github.com/minaret-labs/minaret/internal/http/api"
	"github.com/minaret-labs/minaret/internal/http/api/admin/packets"
	"github.com/minaret-labs/minaret/internal/model"
	"github.com/minaret-labs/minaret/internal/source"
)

type LocationsController struct {
	directory *source.Directory
	assets    *assets.Cache
}

func NewLocationsController(directory *source.Directory, assetCache *assets.Cache) *LocationsController {
	return &LocationsController{directory: directory, assets: assetCache}
}

func LocationsModule(directory *source.Directory, assetCache *assets.Cache) api.Module {
	ctl := NewLocationsController(directory, assetCache)
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/locations", api.ResolveEndpointWithAuth(ctl.listLocations))
		c.GET("/asset/status", api.ResolveEndpointWithAuth(ctl.assetStatus))
	})
}

// listLocations serves the directory, live when reachable and cached
// otherwise.
func (l *LocationsController) listLocations(ctx *gin.Context, _ *model.User) (any, *api.APIError) {
	locations, err := l.directory.Locations(ctx.Request.Context())
	if err != nil {
		return nil, &api.APIError{Code: http.StatusServiceUnavailable, Message: "directory unavailable"}
	}

	response := make([]packets.LocationResponse, 0, len(locations))
	for _, it := range locations {
		response = append(response, packets.LocationResponse{
			ID:       it.ID,
			Name:     it.Name,
			Slug:     it.Slug,
			City:     it.City,
			Timezone: it.Timezone,
			Active:   it.Active,
		})
	}
	return response, nil
}

func (l *LocationsController) assetStatus(ctx *gin.Context, _ *model.User) (any, *api.APIError) {
	if l.assets == nil {
		return packets.AssetStatusResponse{}, nil
	}
	path, cached := l.assets.CachedPath()
	return packets.AssetStatusResponse{Cached: cached, Path: path}, nil
}
