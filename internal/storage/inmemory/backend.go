package inmemory

import (
	"bytes"
	"context"
	"sync"

	"taskPlanner/internal/logger"
	"taskPlanner/internal/storage"
)

// Storage слоты в памяти процесса; живут до перезапуска
type Storage struct {
	slots map[string][]byte
	mtx   *sync.RWMutex
	keys  []string
}

func NewStorage() *Storage {
	return &Storage{
		slots: make(map[string][]byte),
		mtx:   &sync.RWMutex{},
		keys:  []string{},
	}
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	logger.Debug("Storage: Хранилище в памяти доступно")
	return nil
}

func (s *Storage) Get(ctx context.Context, key string) ([]byte, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	payload, ok := s.slots[key]
	if !ok {
		return nil, storage.ErrSlotNotFound
	}
	return bytes.Clone(payload), nil
}

func (s *Storage) Set(ctx context.Context, key string, payload []byte) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.slots[key]; !ok {
		s.keys = append(s.keys, key)
	}
	s.slots[key] = bytes.Clone(payload)
	return nil
}

// Keys ключи в порядке первой записи
func (s *Storage) Keys() []string {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := make([]string, len(s.keys))
	copy(res, s.keys)
	return res
}

func (s *Storage) Close() error {
	return nil
}
