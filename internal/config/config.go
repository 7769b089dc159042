package config

import "time"

type PostgresConfig struct {
	DSN             string        `env:"PG_DSN"`
	MaxOpenConns    int           `env:"PG_MAX_OPEN_CONNS" envDefault:"10"`
	MaxIdleConns    int           `env:"PG_MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxIdleTime time.Duration `env:"PG_CONN_MAX_IDLE_TIME" envDefault:"5m"`
	ConnMaxLifetime time.Duration `env:"PG_CONN_MAX_LIFETIME" envDefault:"30m"`
}

// WalletConfig bounds how long a balance mutation may wait for a pooled
// connection, on row locks and on any single statement before it is aborted.
type WalletConfig struct {
	AcquireTimeout   time.Duration `env:"PG_ACQUIRE_TIMEOUT" envDefault:"2s"`
	LockTimeout      time.Duration `env:"WALLET_LOCK_TIMEOUT" envDefault:"3s"`
	StatementTimeout time.Duration `env:"WALLET_STATEMENT_TIMEOUT" envDefault:"5s"`
}

// S3Config points at any S3-compatible store. Endpoint and static keys are
// optional; without them the default AWS credential chain is used.
type S3Config struct {
	Region     string        `env:"AWS_REGION" envDefault:""`
	Bucket     string        `env:"S3_BUCKET" envDefault:""`
	Endpoint   string        `env:"S3_ENDPOINT" envDefault:""`
	AccessKey  string        `env:"S3_ACCESS_KEY" envDefault:""`
	SecretKey  string        `env:"S3_SECRET_KEY" envDefault:""`
	PresignTTL time.Duration `env:"S3_PRESIGN_TTL" envDefault:"15m"`
}

// Configured reports whether uploads can be served at all.
func (c S3Config) Configured() bool {
	return c.Region != "" && c.Bucket != ""
}

type HTTPConfig struct {
	Port          uint16   `env:"APP_PORT" envDefault:"8080"`
	CORSOrigins   []string `env:"API_CORS_ORIGINS" envDefault:"http://localhost:3000"`
	AuthRatePerS  float64  `env:"AUTH_RATE_PER_SEC" envDefault:"5"`
	AuthRateBurst int      `env:"AUTH_RATE_BURST" envDefault:"10"`
}
