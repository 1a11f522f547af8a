// Package storage persists interview snapshots and final reports.
package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spigell/hh-interviewer/internal/interview"
	"github.com/spigell/hh-interviewer/internal/summary"
)

// Store keeps the latest snapshot and the report of each interview. Missing records are
// reported as interview.ErrNotFound.
type Store interface {
	SaveSnapshot(ctx context.Context, s *interview.State) error
	LoadSnapshot(ctx context.Context, id string) (*interview.State, error)
	SaveReport(ctx context.Context, id string, r *summary.Report) error
	LoadReport(ctx context.Context, id string) (*summary.Report, error)
	Delete(ctx context.Context, id string) error
	Close() error
}

const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverRedis  = "redis"
)

type Config struct {
	Driver string      `mapstructure:"driver"`
	Dir    string      `mapstructure:"dir"`
	Redis  RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	PasswordFile string        `mapstructure:"password-file"`
	DB           int           `mapstructure:"db"`
	Prefix       string        `mapstructure:"prefix"`
	TTL          time.Duration `mapstructure:"ttl"`
}

func DefaultConfig() Config {
	return Config{
		Driver: DriverMemory,
		Dir:    "interviews",
		Redis: RedisConfig{
			Addr:   "localhost:6379",
			Prefix: "hh-interviewer",
			TTL:    30 * 24 * time.Hour,
		},
	}
}

func notFound(kind, id string) error {
	return fmt.Errorf("%s %q: %w", kind, id, interview.ErrNotFound)
}

// validID rejects ids that could escape a directory or a key namespace.
func validID(id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("interview id is required")
	}
	if strings.ContainsAny(id, `/\:`) || strings.Contains(id, "..") {
		return fmt.Errorf("invalid interview id %q", id)
	}
	return nil
}
