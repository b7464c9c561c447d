package widget

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/theirongolddev/japa/internal/model"
)

const redisTimeout = 2 * time.Second

// Hash fields written under the widget key.
const (
	fieldLifetime = "totalLifetimeCount"
	fieldStreak   = "currentStreak"
	fieldToday    = "todayCount"
	fieldUpdated  = "updatedAt"
)

// RedisPublisher stores the widget numbers in a Redis hash.
type RedisPublisher struct {
	client *redis.Client
	key    string
}

// NewRedisPublisher connects to redisURL and checks the connection.
func NewRedisPublisher(redisURL, key string) (*RedisPublisher, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	return &RedisPublisher{client: client, key: key}, nil
}

// Publish writes all fields in one HSET.
func (p *RedisPublisher) Publish(d model.WidgetData) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	return p.client.HSet(ctx, p.key,
		fieldLifetime, d.TotalLifetimeCount,
		fieldStreak, d.CurrentStreak,
		fieldToday, d.TodayCount,
		fieldUpdated, d.UpdatedAt.UTC().Format(time.RFC3339),
	).Err()
}

// Read returns the last published numbers. Missing fields read as zero.
func (p *RedisPublisher) Read() (model.WidgetData, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	vals, err := p.client.HGetAll(ctx, p.key).Result()
	if err != nil {
		return model.WidgetData{}, fmt.Errorf("reading widget hash: %w", err)
	}

	var d model.WidgetData
	d.TotalLifetimeCount, _ = strconv.Atoi(vals[fieldLifetime])
	d.CurrentStreak, _ = strconv.Atoi(vals[fieldStreak])
	d.TodayCount, _ = strconv.Atoi(vals[fieldToday])
	if ts := vals[fieldUpdated]; ts != "" {
		d.UpdatedAt, _ = time.Parse(time.RFC3339, ts)
	}
	return d, nil
}

// Close releases the connection pool.
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
