package file

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	"taskPlanner/internal/logger"
	"taskPlanner/internal/storage"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Storage один JSON-файл на слот в каталоге dir
type Storage struct {
	fs  afero.Fs
	dir string
	mtx sync.Mutex
}

func New(fs afero.Fs, dir string) (*Storage, error) {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if dir == "" {
		dir = "data"
	}

	if err := fs.MkdirAll(dir, 0o755); err != nil {
		logger.Error("Storage: Не удалось создать каталог данных", err, zap.String("dir", dir))
		return nil, fmt.Errorf("создание каталога %s: %w", dir, err)
	}

	logger.Info("Storage: Файловое хранилище готово", zap.String("dir", dir))
	return &Storage{fs: fs, dir: dir}, nil
}

func (s *Storage) path(key string) string {
	return filepath.Join(s.dir, url.QueryEscape(key)+".json")
}

func (s *Storage) Get(ctx context.Context, key string) ([]byte, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	data, err := afero.ReadFile(s.fs, s.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, storage.ErrSlotNotFound
		}
		return nil, fmt.Errorf("чтение файла слота: %w", err)
	}
	return data, nil
}

// Set пишет во временный файл и переименовывает его
func (s *Storage) Set(ctx context.Context, key string, payload []byte) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	target := s.path(key)
	tmp := target + ".tmp"

	if err := afero.WriteFile(s.fs, tmp, payload, 0o644); err != nil {
		return fmt.Errorf("запись файла слота: %w", err)
	}
	if err := s.fs.Rename(tmp, target); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("замена файла слота: %w", err)
	}
	return nil
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	info, err := s.fs.Stat(s.dir)
	if err != nil {
		return fmt.Errorf("каталог данных: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s не каталог", s.dir)
	}
	return nil
}

func (s *Storage) Close() error {
	return nil
}
