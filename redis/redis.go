package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Connect opens a client for addr and checks it with PING.
func Connect(ctx context.Context, addr string) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr: addr,
		DB:   0,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", addr, err)
	}
	return client, nil
}

// Marker records one-shot keys shared by every server instance.
type Marker struct {
	client goredis.Cmdable
	prefix string
}

func NewMarker(client goredis.Cmdable, prefix string) *Marker {
	return &Marker{client: client, prefix: prefix}
}

// MarkOnce sets key if absent and reports whether this call set it.
func (m *Marker) MarkOnce(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := m.client.SetNX(ctx, m.prefix+key, time.Now().Unix(), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("setnx %s: %w", m.prefix+key, err)
	}
	return ok, nil
}
