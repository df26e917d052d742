package main

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/minaret-labs/minaret/internal/assets"
	"github.com/minaret-labs/minaret/internal/db"
	"github.com/minaret-labs/minaret/internal/engine"
	"github.com/minaret-labs/minaret/internal/http/api"
	adminapi "github.com/minaret-labs/minaret/internal/http/api/admin/endpoints"
	"github.com/minaret-labs/minaret/internal/mode"
	"github.com/minaret-labs/minaret/internal/source"
)

// RegisterRoutes sets up all application routes
func RegisterRoutes(
	r *gin.Engine,
	env Environment,
	store db.Store,
	resolver *source.Resolver,
	directory *source.Directory,
	modeCtl *mode.Controller,
	eng *engine.Engine,
	assetCache *assets.Cache,
) {
	// CORS
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool { return true },
		AllowMethods: []string{
			"GET",
			"POST",
			"PUT",
			"PATCH",
			"DELETE",
			"OPTIONS",
			"HEAD",
		},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Authorization",
			"Accept",
		},
		AllowCredentials: false,
	}))

	api.MountGroup(r, api.GroupConfig{
		Prefix: "/api/admin",
		Auth:   false,
	},
		adminapi.AuthPublicModule(env.SecretKey, store),
	)

	api.MountGroup(r, api.GroupConfig{
		Prefix:    "/api/admin",
		Auth:      true,
		SecretKey: env.SecretKey,
		Store:     store,
	},
		adminapi.AuthSessionModule(env.SecretKey, store),
		adminapi.SettingsModule(store),
		adminapi.ModeModule(modeCtl, eng),
		adminapi.ScheduleModule(store, resolver, modeCtl, eng),
		adminapi.LocationsModule(directory, assetCache),
	)
}
