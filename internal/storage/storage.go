// Package storage хранит коллекции планировщика в именованных слотах.
// Хранилище вспомогательное: источник истины - коллекция в памяти.
package storage

import (
	"context"
	"errors"
	"fmt"

	"taskPlanner/internal/logger"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"
)

var (
	ErrSlotNotFound = errors.New("слот не найден")
	ErrUnavailable  = errors.New("хранилище недоступно")
)

// Backend слот ключ/значение; Get возвращает ErrSlotNotFound для отсутствующего ключа
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, payload []byte) error
	HealthCheck(ctx context.Context) error
	Close() error
}

// Collection сериализует упорядоченную коллекцию в JSON и обратно
type Collection[T any] struct {
	backend Backend
}

func NewCollection[T any](backend Backend) *Collection[T] {
	return &Collection[T]{backend: backend}
}

// Load читает коллекцию. Отсутствующий или повреждённый слот даёт пустую коллекцию,
// остальные ошибки чтения возвращаются вызывающему.
func (c *Collection[T]) Load(ctx context.Context, key string) ([]T, error) {
	items := []T{}
	if c == nil || c.backend == nil {
		logger.Warn("Storage: Хранилище не настроено, коллекция пуста", zap.String("key", key))
		return items, nil
	}

	data, err := c.backend.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrSlotNotFound) {
			logger.Debug("Storage: Слот пуст", zap.String("key", key))
			return items, nil
		}
		logger.Error("Storage: Ошибка чтения слота", err, zap.String("key", key))
		return nil, fmt.Errorf("чтение слота %s: %w", key, err)
	}

	var decoded []T
	if err := sonic.ConfigStd.Unmarshal(data, &decoded); err != nil {
		logger.Warn("Storage: Повреждённые данные, коллекция сброшена",
			zap.String("key", key),
			zap.Int("bytes", len(data)),
			zap.Error(err))
		return items, nil
	}
	if decoded == nil {
		return items, nil
	}

	logger.Debug("Storage: Коллекция загружена", zap.String("key", key), zap.Int("count", len(decoded)))
	return decoded, nil
}

// Save пишет коллекцию целиком. Ошибка возвращается вызывающему только для записи в лог.
func (c *Collection[T]) Save(ctx context.Context, key string, items []T) error {
	if c == nil || c.backend == nil {
		return ErrUnavailable
	}
	if items == nil {
		items = []T{}
	}

	data, err := sonic.ConfigStd.Marshal(items)
	if err != nil {
		return fmt.Errorf("сериализация коллекции %s: %w", key, err)
	}
	if err := c.backend.Set(ctx, key, data); err != nil {
		return fmt.Errorf("запись слота %s: %w", key, err)
	}
	return nil
}
