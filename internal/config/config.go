package config

import "time"

type PostgresConfig struct {
	DSN             string        `env:"PG_DSN"`
	MaxOpenConns    int           `env:"PG_MAX_OPEN_CONNS" envDefault:"10"`
	MaxIdleConns    int           `env:"PG_MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxIdleTime time.Duration `env:"PG_CONN_MAX_IDLE_TIME" envDefault:"5m"`
	ConnMaxLifetime time.Duration `env:"PG_CONN_MAX_LIFETIME" envDefault:"30m"`
}

type AuthConfig struct {
	JWTSigningKey string `env:"AUTH_JWT_SIGNING_KEY"`
	JWTIssuer     string `env:"AUTH_JWT_ISSUER" envDefault:"webapp"`
	JWTAudience   string `env:"AUTH_JWT_AUDIENCE" envDefault:"webapp-api"`
}
