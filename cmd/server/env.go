package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Environment struct {
	Environment    string
	ServerAddress  string
	SecretKey      string
	DatabaseURL    string
	MigrationsPath string

	RedisAddress  string
	RedisUsername string
	RedisPassword string

	MQTTBrokerURL string

	BundleBaseURL   string
	TimetableAPIURL string

	DataDir  string
	AssetDir string

	UseSpaces       bool
	SpacesEndpoint  string
	SpacesRegion    string
	SpacesBucket    string
	SpacesAudioKey  string
	SpacesAccessKey string
	SpacesSecretKey string
}

// LoadEnvironment reads and validates env vars
func LoadEnvironment() Environment {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	env := Environment{
		Environment:    os.Getenv("APP_ENV"),
		ServerAddress:  os.Getenv("SERVER_ADDRESS"),
		SecretKey:      os.Getenv("JWT_SECRET"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		MigrationsPath: os.Getenv("MIGRATIONS_PATH"),

		RedisAddress:  os.Getenv("REDIS_ADDRESS"),
		RedisUsername: os.Getenv("REDIS_USERNAME"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		MQTTBrokerURL: os.Getenv("MQTT_BROKER_URL"),

		BundleBaseURL:   os.Getenv("BUNDLE_BASE_URL"),
		TimetableAPIURL: os.Getenv("TIMETABLE_API_URL"),

		DataDir:  os.Getenv("DATA_DIR"),
		AssetDir: os.Getenv("ASSET_DIR"),

		UseSpaces:       os.Getenv("USE_SPACES") == "true",
		SpacesEndpoint:  os.Getenv("SPACES_ENDPOINT"),
		SpacesRegion:    os.Getenv("SPACES_REGION"),
		SpacesBucket:    os.Getenv("SPACES_BUCKET"),
		SpacesAudioKey:  os.Getenv("SPACES_AUDIO_KEY"),
		SpacesAccessKey: os.Getenv("SPACES_ACCESS_KEY"),
		SpacesSecretKey: os.Getenv("SPACES_SECRET_KEY"),
	}

	if env.ServerAddress == "" {
		env.ServerAddress = ":8080"
	}
	if env.MigrationsPath == "" {
		env.MigrationsPath = "./migrations"
	}
	if env.MQTTBrokerURL == "" {
		env.MQTTBrokerURL = "tcp://0.0.0.0:1883"
	}
	if env.DataDir == "" {
		env.DataDir = "./data"
	}
	if env.AssetDir == "" {
		env.AssetDir = "./data/assets"
	}

	if env.DatabaseURL == "" || env.SecretKey == "" || env.TimetableAPIURL == "" {
		log.Fatal().Msg("Missing required environment variables")
	}

	return env
}
