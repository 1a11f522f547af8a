package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spigell/hh-interviewer/internal/interview"
	"github.com/spigell/hh-interviewer/internal/summary"

	"github.com/redis/go-redis/v9"
)

// Redis keeps records as JSON strings under a key prefix.
type Redis struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedis wraps an existing client. A zero ttl keeps keys forever.
func NewRedis(client *redis.Client, prefix string, ttl time.Duration) *Redis {
	if prefix == "" {
		prefix = "hh-interviewer"
	}
	return &Redis{client: client, prefix: prefix, ttl: ttl}
}

func (r *Redis) key(kind, id string) string {
	return r.prefix + ":" + kind + ":" + id
}

func (r *Redis) SaveSnapshot(ctx context.Context, s *interview.State) error {
	return r.set(ctx, "snapshot", s.ID, s)
}

func (r *Redis) LoadSnapshot(ctx context.Context, id string) (*interview.State, error) {
	var s interview.State
	if err := r.get(ctx, "snapshot", id, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *Redis) SaveReport(ctx context.Context, id string, rep *summary.Report) error {
	return r.set(ctx, "report", id, rep)
}

func (r *Redis) LoadReport(ctx context.Context, id string) (*summary.Report, error) {
	var rep summary.Report
	if err := r.get(ctx, "report", id, &rep); err != nil {
		return nil, err
	}
	return &rep, nil
}

func (r *Redis) Delete(ctx context.Context, id string) error {
	return r.client.Del(ctx, r.key("snapshot", id), r.key("report", id)).Err()
}

func (r *Redis) Close() error {
	return r.client.Close()
}

func (r *Redis) set(ctx context.Context, kind, id string, v any) error {
	if err := validID(id); err != nil {
		return err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", kind, err)
	}
	if err := r.client.Set(ctx, r.key(kind, id), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("store %s %q: %w", kind, id, err)
	}
	return nil
}

func (r *Redis) get(ctx context.Context, kind, id string, v any) error {
	data, err := r.client.Get(ctx, r.key(kind, id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return notFound(kind, id)
	}
	if err != nil {
		return fmt.Errorf("load %s %q: %w", kind, id, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s %q: %w", kind, id, err)
	}
	return nil
}
