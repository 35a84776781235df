package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskPlanner/internal/logger"
	"taskPlanner/internal/storage"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Options struct {
	Addr     string
	Password string
	DB       int
}

// Connect создаёт клиента и проверяет соединение
func Connect(ctx context.Context, opts Options) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		logger.Error("Storage: Redis недоступен", err, zap.String("addr", opts.Addr))
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	logger.Info("Storage: Подключение к Redis", zap.String("addr", opts.Addr))
	return rdb, nil
}

// Storage слоты как строковые ключи Redis без TTL
type Storage struct {
	rdb    *redis.Client
	prefix string
}

func New(rdb *redis.Client, prefix string) *Storage {
	return &Storage{rdb: rdb, prefix: prefix}
}

func (s *Storage) key(slot string) string {
	if s.prefix == "" {
		return slot
	}
	return s.prefix + ":" + slot
}

func (s *Storage) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := s.rdb.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, storage.ErrSlotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return b, nil
}

func (s *Storage) Set(ctx context.Context, key string, payload []byte) error {
	if err := s.rdb.Set(ctx, s.key(key), payload, 0).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *Storage) Close() error {
	return s.rdb.Close()
}
