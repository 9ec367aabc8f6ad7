package database

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

func NewRedisClient() (*redis.Client, error) {
	host := os.Getenv("REDIS_HOST")
	port := os.Getenv("REDIS_PORT")
	if host == "" {
		host = "localhost"
	}
	if port == "" {
		port = "6379"
	}

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", host, port),
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

// CallbackGuard remembers gateway callbacks that were already handled so
// replays can be answered without touching the database. The database
// remains the source of truth; a nil client disables the fast path.
type CallbackGuard struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCallbackGuard(client *redis.Client, ttl time.Duration) *CallbackGuard {
	return &CallbackGuard{client: client, ttl: ttl}
}

// Seen reports whether the transaction was already handled.
func (g *CallbackGuard) Seen(ctx context.Context, tempOrderNumber string) bool {
	if g == nil || g.client == nil {
		return false
	}
	n, err := g.client.Exists(ctx, callbackKey(tempOrderNumber)).Result()
	if err != nil {
		return false
	}
	return n > 0
}

// Mark records a handled transaction. Only called after the outcome is
// durably committed.
func (g *CallbackGuard) Mark(ctx context.Context, tempOrderNumber string) {
	if g == nil || g.client == nil {
		return
	}
	_ = g.client.Set(ctx, callbackKey(tempOrderNumber), "1", g.ttl).Err()
}

func callbackKey(tempOrderNumber string) string {
	return "payment:callback:" + tempOrderNumber
}
