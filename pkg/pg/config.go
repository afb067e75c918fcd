package pg

import "time"

// Config is populated from the environment by pkg/config.
type Config struct {
	ConnectionString string        `env:"PG_CONN_URL,required"`
	MaxConns         int32         `env:"PG_MAX_CONNS" envDefault:"10"`
	MinConns         int32         `env:"PG_MIN_CONNS" envDefault:"2"`
	MaxConnIdleTime  time.Duration `env:"PG_MAX_CONN_IDLE_TIME" envDefault:"10m"`
	HealthCheck      time.Duration `env:"PG_HEALTHCHECK_PERIOD" envDefault:"1m"`

	RetryAttempts int           `env:"PG_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval time.Duration `env:"PG_RETRY_INTERVAL" envDefault:"2s"`

	// MigrationsDir is the directory inside the migrations FS handed to Migrate.
	MigrationsDir   string `env:"PG_MIGRATIONS_DIR" envDefault:"migrations"`
	MigrationsTable string `env:"PG_MIGRATIONS_TABLE" envDefault:"useradmin_migrations"`
}
