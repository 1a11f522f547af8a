package storage

import (
	"context"
	"fmt"

	"github.com/spigell/hh-interviewer/internal/secrets"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Open builds the store selected by cfg.Driver. A redis store is pinged before use.
func Open(ctx context.Context, cfg Config, logger *zap.Logger) (Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch cfg.Driver {
	case "", DriverMemory:
		logger.Info("using in-memory storage; interviews are lost on restart")
		return NewMemory(), nil
	case DriverFile:
		logger.Info("using file storage", zap.String("dir", cfg.Dir))
		return NewFile(cfg.Dir)
	case DriverRedis:
		password := ""
		if cfg.Redis.Password != "" || cfg.Redis.PasswordFile != "" {
			p, err := secrets.Load(secrets.Source{
				Name:  "redis password",
				Value: cfg.Redis.Password,
				File:  cfg.Redis.PasswordFile,
			})
			if err != nil {
				return nil, err
			}
			password = p
		}

		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("connect to redis at %s: %w", cfg.Redis.Addr, err)
		}
		logger.Info("using redis storage",
			zap.String("addr", cfg.Redis.Addr),
			zap.String("prefix", cfg.Redis.Prefix),
			zap.Duration("ttl", cfg.Redis.TTL),
		)
		return NewRedis(client, cfg.Redis.Prefix, cfg.Redis.TTL), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
