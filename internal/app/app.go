package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"

	"taskPlanner/internal/config"
	"taskPlanner/internal/handlers"
	"taskPlanner/internal/logger"
	"taskPlanner/internal/notifier"
	"taskPlanner/internal/notifier/transport"
	"taskPlanner/internal/service"
	"taskPlanner/internal/storage"
	"taskPlanner/internal/storage/file"
	"taskPlanner/internal/storage/inmemory"
	"taskPlanner/internal/storage/postgres"
	redisstorage "taskPlanner/internal/storage/redis"
	"taskPlanner/internal/storage/tables"
	"taskPlanner/internal/worker"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

type App struct {
	config    *config.Config
	server    *http.Server
	handler   http.Handler
	backend   storage.Backend
	registry  *service.Registry
	worker    *worker.OverdueWorker
	shutdowns []func() // выполняются в обратном порядке
}

func New(cfg *config.Config) *App {
	return &App{
		config:    cfg,
		shutdowns: make([]func(), 0),
	}
}

func (a *App) Init(ctx context.Context) error {
	if err := logger.Init(a.config.Logging.Development); err != nil {
		return fmt.Errorf("инициализация логгера: %w", err)
	}

	a.shutdowns = append(a.shutdowns, func() {
		logger.Info("Завершение работы логгирования...")
		logger.Sync()
	})

	loc, err := a.config.Location()
	if err != nil {
		return err
	}

	backend, err := a.buildBackend(ctx)
	if err != nil {
		a.Close()
		return fmt.Errorf("инициализация хранилища: %w", err)
	}
	a.backend = backend
	a.shutdowns = append(a.shutdowns, func() {
		if err := backend.Close(); err != nil {
			logger.Warn("Storage: Ошибка закрытия хранилища", zap.Error(err))
		}
	})

	sender, err := a.buildTransport(ctx)
	if err != nil {
		a.Close()
		return fmt.Errorf("инициализация канала бота: %w", err)
	}

	a.registry = service.NewRegistry(backend, sender, notifier.LogConfirmer{},
		service.WithLocation(loc),
		service.WithPreviewLimit(a.config.Planner.PreviewLimit),
	)

	a.handler = handlers.NewRouter(a.registry, handlers.RouterConfig{
		AllowedOrigins: a.config.Server.AllowedOrigins,
		RateLimit:      a.config.Server.RateLimit,
	})

	a.server = &http.Server{
		Addr:         a.config.GetServerAddr(),
		Handler:      a.handler,
		ReadTimeout:  a.config.Server.ReadTimeout,
		WriteTimeout: a.config.Server.WriteTimeout,
	}

	a.worker = worker.NewOverdueWorker(a.registry, a.config.Planner.OverdueInterval)

	logger.Info("Приложение инициализировано",
		zap.String("storage", a.config.Storage.Backend),
		zap.String("transport", a.config.Notifier.Transport),
		zap.String("timezone", loc.String()))
	return nil
}

func (a *App) buildBackend(ctx context.Context) (storage.Backend, error) {
	sc := a.config.Storage

	switch sc.Backend {
	case config.BackendInMemory:
		return inmemory.NewStorage(), nil

	case config.BackendFile:
		return file.New(afero.NewOsFs(), sc.File.Dir)

	case config.BackendRedis:
		rdb, err := redisstorage.Connect(ctx, redisstorage.Options{
			Addr:     sc.Redis.Addr,
			Password: sc.Redis.Password,
			DB:       sc.Redis.DB,
		})
		if err != nil {
			return nil, err
		}
		return redisstorage.New(rdb, sc.Redis.Prefix), nil

	case config.BackendPostgres:
		pg, err := postgres.New(ctx, sc.Postgres.URL)
		if err != nil {
			return nil, err
		}
		if sc.Postgres.Migrate {
			if err := pg.Migrate(); err != nil {
				pg.Close()
				return nil, err
			}
		}
		return pg, nil

	case config.BackendTables:
		return tables.NewFromConnectionString(ctx, sc.Tables.ConnectionString, sc.Tables.Table)

	default:
		return nil, fmt.Errorf("неизвестный backend %q", sc.Backend)
	}
}

// buildTransport nil означает, что бот не подключён
func (a *App) buildTransport(ctx context.Context) (notifier.Transport, error) {
	nc := a.config.Notifier

	switch nc.Transport {
	case "", config.TransportNone:
		logger.Info("Notifier: Канал бота не настроен")
		return nil, nil

	case config.TransportRedis:
		rdb, err := redisstorage.Connect(ctx, redisstorage.Options{
			Addr:     nc.Redis.Addr,
			Password: nc.Redis.Password,
			DB:       nc.Redis.DB,
		})
		if err != nil {
			return nil, err
		}
		a.shutdowns = append(a.shutdowns, func() { _ = rdb.Close() })
		return transport.NewRedisPublisher(rdb, nc.Redis.Prefix), nil

	case config.TransportAzQueue:
		return transport.NewAzureQueueFromConnectionString(nc.AzQueue.ConnectionString, nc.AzQueue.Queue)

	default:
		return nil, fmt.Errorf("неизвестный transport %q", nc.Transport)
	}
}

func (a *App) Handler() http.Handler {
	return a.handler
}

func (a *App) Registry() *service.Registry {
	return a.registry
}

// Run блокируется до отмены ctx или ошибки сервера
func (a *App) Run(ctx context.Context) error {
	workerCtx, stopWorker := context.WithCancel(ctx)
	defer stopWorker()
	go a.worker.Start(workerCtx)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server started", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case err := <-errCh:
		runErr = err
	}

	stopWorker()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.Server.ShutdownTimeout)
	defer cancel()

	logger.Info("Остановка сервера...")
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Ошибка остановки сервера", err)
		if runErr == nil {
			runErr = err
		}
	}

	a.Close()
	return runErr
}

func (a *App) Close() {
	shutdowns := slices.Clone(a.shutdowns)
	a.shutdowns = nil
	slices.Reverse(shutdowns)
	for _, fn := range shutdowns {
		fn()
	}
}
