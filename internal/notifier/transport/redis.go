package transport

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisPublisher публикует команды в канал <prefix>:<userID>, бот подписан на канал
type RedisPublisher struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisPublisher(rdb *redis.Client, prefix string) *RedisPublisher {
	if prefix == "" {
		prefix = "planner:reminders"
	}
	return &RedisPublisher{rdb: rdb, prefix: prefix}
}

func (p *RedisPublisher) Channel(userID string) string {
	return p.prefix + ":" + userID
}

func (p *RedisPublisher) SendData(ctx context.Context, userID string, data []byte) error {
	if err := p.rdb.Publish(ctx, p.Channel(userID), data).Err(); err != nil {
		return fmt.Errorf("redis publish: %w", err)
	}
	return nil
}
