package main

import (
	"log/slog"
	"time"

	"github.com/fastprodman/artmarket/internal/config"
)

type apiConfig struct {
	AppEnv          string        `env:"APP_ENV" envDefault:"PROD"`
	LogLevel        slog.Level    `env:"APP_LOG_LEVEL" envDefault:"INFO"`
	ShutdownTimeout time.Duration `env:"APP_SHUTDOWN_TIMEOUT" envDefault:"10s"`

	HTTP     config.HTTPConfig
	Postgres config.PostgresConfig
	Wallet   config.WalletConfig
	S3       config.S3Config
}

// warnMissing logs settings whose absence degrades, but does not stop, the
// service.
func (c *apiConfig) warnMissing() {
	if !c.S3.Configured() {
		slog.Warn("object store not configured; upload endpoints will fail",
			"AWS_REGION_set", c.S3.Region != "",
			"S3_BUCKET_set", c.S3.Bucket != "",
		)
	}

	if len(c.HTTP.CORSOrigins) == 0 {
		slog.Warn("API_CORS_ORIGINS is empty; every origin will be allowed, without credentials")
	}
}
