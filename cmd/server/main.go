package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/minaret-labs/minaret/internal/assets"
	"github.com/minaret-labs/minaret/internal/db"
	"github.com/minaret-labs/minaret/internal/engine"
	"github.com/minaret-labs/minaret/internal/mode"
	"github.com/minaret-labs/minaret/internal/orchestrator"
	"github.com/minaret-labs/minaret/internal/recovery"
	"github.com/minaret-labs/minaret/internal/redis"
	"github.com/minaret-labs/minaret/internal/scheduler"
	"github.com/minaret-labs/minaret/internal/source"
)

func main() {
	env := LoadEnvironment()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// initialize PostgreSQL
	if err := db.Init(env.DatabaseURL); err != nil {
		log.Fatal().Err(err).Msg("db init")
	}

	// run pending migrations
	if err := db.RunMigrations(env.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("db migrate")
	}

	if env.RedisAddress != "" {
		redis.InitRedis(env.RedisAddress, env.RedisUsername, env.RedisPassword)
	}

	store := db.NewStore(nil)

	boundary, err := scheduler.NewMQTTBoundary(env.MQTTBrokerURL, "minaret-server")
	if err != nil {
		log.Fatal().Err(err).Msg("mqtt init")
	}
	defer boundary.Disconnect()

	recoveryStore := recovery.NewStore(env.DataDir)
	orch := orchestrator.New(store, boundary, recoveryStore)

	assetCache := assets.NewCache(env.AssetDir)
	if env.UseSpaces {
		if err := assetCache.WithSpacesFallback(
			env.SpacesEndpoint, env.SpacesRegion, env.SpacesBucket, env.SpacesAudioKey,
			env.SpacesAccessKey, env.SpacesSecretKey,
		); err != nil {
			log.Fatal().Err(err).Msg("spaces init")
		}
	}

	directory := source.NewDirectory(env.TimetableAPIURL, store)
	resolver := source.NewResolver(
		source.NewStaticClient(env.BundleBaseURL),
		source.NewDynamicClient(env.TimetableAPIURL),
		directory,
		store,
	)
	modeCtl := mode.NewController(store)

	eng := engine.New(store, resolver, modeCtl, orch, recoveryStore, assetCache)

	// devices that cold-boot while we run report on their status topic
	boundary.OnBoot = func(locationID int) {
		if err := eng.RecoverLocation(context.Background(), locationID); err != nil {
			log.Error().Err(err).Int("location_id", locationID).Msg("boot recovery failed")
		}
	}

	// re-arm today's alarms from boot records before anything else
	eng.RecoverAll(ctx)

	go eng.Run(ctx)

	if env.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	RegisterRoutes(r, env, store, resolver, directory, modeCtl, eng, assetCache)

	log.Info().Str("address", env.ServerAddress).Msg("listening")
	if err := r.Run(env.ServerAddress); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}
