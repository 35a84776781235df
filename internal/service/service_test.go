package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"taskPlanner/internal/models/task"
	"taskPlanner/internal/notifier"
	"taskPlanner/internal/service"
	"taskPlanner/internal/storage"
	"taskPlanner/internal/storage/inmemory"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockNotifier - мок моста уведомлений
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, cmd notifier.Command) bool {
	args := m.Called(ctx, cmd)
	return args.Bool(0)
}

var _ service.Notifier = (*MockNotifier)(nil)

// actions действия в порядке вызовов
func (m *MockNotifier) actions() []notifier.Action {
	res := []notifier.Action{}
	for _, call := range m.Calls {
		if call.Method != "Notify" {
			continue
		}
		res = append(res, call.Arguments.Get(1).(notifier.Command).Action)
	}
	return res
}

type brokenBackend struct{}

func (brokenBackend) Get(ctx context.Context, key string) ([]byte, error) {
	return nil, storage.ErrSlotNotFound
}

func (brokenBackend) Set(ctx context.Context, key string, payload []byte) error {
	return errors.New("quota exceeded")
}

func (brokenBackend) HealthCheck(ctx context.Context) error { return errors.New("quota exceeded") }

func (brokenBackend) Close() error { return nil }

// 2024-03-14 12:00 UTC, четверг
var fixedNow = time.Date(2024, time.March, 14, 12, 0, 0, 0, time.UTC)

func nowFunc() time.Time { return fixedNow }

func clockOptions() []service.ServiceOption {
	return []service.ServiceOption{service.WithClock(nowFunc), service.WithLocation(time.UTC)}
}

func newTaskService(t *testing.T, n service.Notifier) (*service.TaskService, *inmemory.Storage) {
	t.Helper()
	backend := inmemory.NewStorage()
	svc, err := service.NewTaskService(context.Background(),
		storage.NewCollection[task.Task](backend),
		service.TasksSlot,
		service.NewSyncCoordinator(n),
		clockOptions()...)
	require.NoError(t, err)
	return svc, backend
}

func acceptingNotifier() *MockNotifier {
	m := new(MockNotifier)
	m.On("Notify", mock.Anything, mock.Anything).Return(true)
	return m
}
