package main

import (
	"log/slog"
	"time"

	"github.com/jasdeace/webapp/internal/config"
)

type apiConfig struct {
	Port            uint16        `env:"APP_PORT" envDefault:"8080"`
	LogLevel        slog.Level    `env:"APP_LOG_LEVEL" envDefault:"INFO"`
	ShutdownTimeout time.Duration `env:"APP_SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// Credits consumed per form submission.
	SubmissionCost int64 `env:"APP_SUBMISSION_COST" envDefault:"1"`

	// Per-user rate limit on mutating routes.
	RateLimitPerSec float64 `env:"APP_RATE_LIMIT_PER_SEC" envDefault:"2"`
	RateLimitBurst  int     `env:"APP_RATE_LIMIT_BURST" envDefault:"10"`

	PaymentCheckoutURL string `env:"PAYMENT_CHECKOUT_URL" envDefault:"https://payment-gateway.example.com/checkout"`

	Auth     config.AuthConfig
	Postgres config.PostgresConfig
}
