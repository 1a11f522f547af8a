package transport

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config tunes the HTTP server. It is read from the environment only.
type Config struct {
	Addr              string        `env:"HH_INTERVIEWER_HTTP_ADDR" envDefault:":8080"`
	ReadHeaderTimeout time.Duration `env:"HH_INTERVIEWER_HTTP_READ_HEADER_TIMEOUT" envDefault:"5s"`
	// WriteTimeout must leave room for a judge call.
	WriteTimeout    time.Duration `env:"HH_INTERVIEWER_HTTP_WRITE_TIMEOUT" envDefault:"90s"`
	IdleTimeout     time.Duration `env:"HH_INTERVIEWER_HTTP_IDLE_TIMEOUT" envDefault:"120s"`
	ShutdownTimeout time.Duration `env:"HH_INTERVIEWER_HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	MaxBodyBytes    int64         `env:"HH_INTERVIEWER_HTTP_MAX_BODY_BYTES" envDefault:"65536"`
}

func LoadConfig() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if cfg.MaxBodyBytes <= 0 {
		return nil, fmt.Errorf("max body bytes must be positive, got %d", cfg.MaxBodyBytes)
	}
	return &cfg, nil
}
