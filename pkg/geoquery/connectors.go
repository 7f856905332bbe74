package geoquery

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type ConnectorConfig struct {
	Host     string
	Port     string
	Username string
	DbName   string
	Password string
	SslMode  string
}

func LoadConfigFromEnv() ConnectorConfig {
	sslMode := os.Getenv("POSTGRES_SSLMODE")
	if sslMode == "" {
		sslMode = "disable"
	}

	port := os.Getenv("POSTGRES_PORT")
	if port == "" {
		port = "5432"
	}

	return ConnectorConfig{
		Host:     os.Getenv("POSTGRES_HOST"),
		Port:     port,
		Username: os.Getenv("POSTGRES_USER"),
		DbName:   os.Getenv("POSTGRES_DBNAME"),
		Password: os.Getenv("POSTGRES_PASSWORD"),
		SslMode:  sslMode,
	}
}

type ConnectorFunc func() (*gorm.DB, error)

// NewSQLiteConnector connects to an in memory database, used in tests and
// when running in dev mode.
func NewSQLiteConnector() ConnectorFunc {
	return func() (*gorm.DB, error) {
		db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
			Logger:          logger.Default.LogMode(logger.Silent),
			CreateBatchSize: 1000,
		})

		if err == nil {
			db.Exec("PRAGMA foreign_keys = ON")
			sqldb, _ := db.DB()
			sqldb.SetMaxOpenConns(1)
		}

		return db, err
	}
}

func NewPostgreSQLConnector(log zerolog.Logger, cfg ConnectorConfig) ConnectorFunc {
	dbURI := fmt.Sprintf(
		"host=%s port=%s user=%s dbname=%s sslmode=%s password=%s",
		cfg.Host, cfg.Port, cfg.Username, cfg.DbName, cfg.SslMode, cfg.Password,
	)

	return func() (*gorm.DB, error) {
		sublogger := log.With().Str("host", cfg.Host).Str("database", cfg.DbName).Logger()
		sublogger.Info().Msg("connecting to database host")

		db, err := gorm.Open(postgres.Open(dbURI), &gorm.Config{
			Logger: logger.New(
				&logadapter{logger: sublogger},
				logger.Config{
					SlowThreshold:             time.Second,
					LogLevel:                  logger.Warn,
					IgnoreRecordNotFoundError: false,
					Colorful:                  false,
				},
			),
		})
		if err != nil {
			sublogger.Error().Err(err).Msg("failed to connect to database")
			return nil, err
		}

		return db, nil
	}
}

func NewMySQLConnector(log zerolog.Logger, dsn string) ConnectorFunc {
	return func() (*gorm.DB, error) {
		log.Info().Msg("connecting to mysql database")

		db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
			Logger: logger.New(
				&logadapter{logger: log},
				logger.Config{
					SlowThreshold:             time.Second,
					LogLevel:                  logger.Warn,
					IgnoreRecordNotFoundError: false,
					Colorful:                  false,
				},
			),
		})
		if err != nil {
			log.Error().Err(err).Msg("failed to connect to database")
			return nil, err
		}

		return db, nil
	}
}

// logadapter provides a Printf interface to the gorm logger so that we can
// forward the log data to zerolog
type logadapter struct {
	logger zerolog.Logger
}

func (adapter *logadapter) Printf(format string, args ...interface{}) {
	adapter.logger.Info().Msgf(format, args...)
}
