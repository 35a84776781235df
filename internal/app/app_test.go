package app_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"taskPlanner/internal/app"
	"taskPlanner/internal/config"
	"taskPlanner/internal/models/user"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_Backends(t *testing.T) {
	mr := miniredis.RunT(t)

	tests := []struct {
		name   string
		mutate func(cfg *config.Config)
	}{
		{
			name:   "success - inmemory",
			mutate: func(cfg *config.Config) {},
		},
		{
			name: "success - file",
			mutate: func(cfg *config.Config) {
				cfg.Storage.Backend = config.BackendFile
				cfg.Storage.File.Dir = t.TempDir()
			},
		},
		{
			name: "success - redis storage and transport",
			mutate: func(cfg *config.Config) {
				cfg.Storage.Backend = config.BackendRedis
				cfg.Storage.Redis.Addr = mr.Addr()
				cfg.Notifier.Transport = config.TransportRedis
				cfg.Notifier.Redis.Addr = mr.Addr()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Planner.Timezone = "UTC"
			tt.mutate(cfg)

			a := app.New(cfg)
			require.NoError(t, a.Init(context.Background()))
			defer a.Close()

			rec := httptest.NewRecorder()
			a.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
			assert.Equal(t, http.StatusOK, rec.Code)

			tomorrow := time.Now().UTC().AddDate(0, 0, 1).Format("2006-01-02")
			req := httptest.NewRequest(http.MethodPost, "/api/tasks",
				strings.NewReader(`{"title":"t","date":"`+tomorrow+`","time":"09:00"}`))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("X-Telegram-User-Id", "101")
			rec = httptest.NewRecorder()
			a.Handler().ServeHTTP(rec, req)
			assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

			p, err := a.Registry().For(context.Background(), user.HostUser{ID: "101"})
			require.NoError(t, err)
			assert.Equal(t, 1, p.Tasks.Len())
		})
	}
}

func TestInit_RedisUnavailable(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Backend = config.BackendRedis
	cfg.Storage.Redis.Addr = "127.0.0.1:1"

	err := app.New(cfg).Init(context.Background())
	assert.Error(t, err)
}

func TestRun_StopsOnCancel(t *testing.T) {
	cfg := config.Default()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = "0"
	cfg.Server.ShutdownTimeout = time.Second

	a := app.New(cfg)
	require.NoError(t, a.Init(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("приложение не остановилось")
	}
}
