package main

import (
	"context"
	"flag"
	"net/http"
	"os"

	"github.com/diwise/gorm-geoquery/internal/pkg/infrastructure/logging"
	"github.com/diwise/gorm-geoquery/internal/pkg/infrastructure/repositories/places"
	"github.com/diwise/gorm-geoquery/internal/pkg/infrastructure/router"
	"github.com/diwise/gorm-geoquery/internal/pkg/presentation/api"
	"github.com/diwise/gorm-geoquery/pkg/geoquery"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v2"
)

const serviceName string = "placefinder"

// overridden at build time via ldflags
var version string = "develop"

type appConfig struct {
	Port     string `yaml:"port"`
	DevMode  bool   `yaml:"devmode"`
	SeedFile string `yaml:"seedfile"`
}

func defaultConfig() appConfig {
	return appConfig{
		Port:     envOrDefault("SERVICE_PORT", "8080"),
		DevMode:  os.Getenv("DEV_MODE") == "true",
		SeedFile: os.Getenv("SEED_FILE"),
	}
}

func main() {
	ctx, logger := logging.NewLogger(context.Background(), serviceName, version)

	configFile := flag.String("config", "", "path to an optional yaml configuration file")
	flag.Parse()

	cfg := defaultConfig()

	if *configFile != "" {
		contents, err := os.ReadFile(*configFile)
		exitIf(err, logger, "could not open configuration file")

		err = yaml.Unmarshal(contents, &cfg)
		exitIf(err, logger, "could not parse configuration file")
	}

	repo, err := newPlaceRepository(logger, cfg)
	exitIf(err, logger, "could not create or connect to database")

	if cfg.SeedFile != "" {
		seed, err := os.Open(cfg.SeedFile)
		exitIf(err, logger, "could not open seed file")

		err = repo.Seed(ctx, seed)
		seed.Close()
		exitIf(err, logger, "could not seed places")
	}

	r := api.RegisterHandlers(router.New(logger), logger, repo)

	logger.Info().Msgf("%s listening on port %s", serviceName, cfg.Port)

	err = http.ListenAndServe(":"+cfg.Port, r)
	exitIf(err, logger, "failed to start request router")
}

func newPlaceRepository(logger zerolog.Logger, cfg appConfig) (places.PlaceRepository, error) {
	if cfg.DevMode {
		logger.Info().Msg("running in dev mode with an in memory database")
		return places.NewPlaceRepository(geoquery.NewSQLiteConnector())
	}

	return places.NewPlaceRepository(
		geoquery.NewPostgreSQLConnector(logger, geoquery.LoadConfigFromEnv()),
	)
}

func envOrDefault(name, defaultValue string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}

	return defaultValue
}

func exitIf(err error, logger zerolog.Logger, msg string) {
	if err != nil {
		logger.Fatal().Err(err).Msg(msg)
	}
}
