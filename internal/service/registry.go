package service

import (
	"context"
	"strings"
	"sync"

	"taskPlanner/internal/logger"
	"taskPlanner/internal/models/event"
	"taskPlanner/internal/models/task"
	"taskPlanner/internal/models/user"
	"taskPlanner/internal/notifier"
	"taskPlanner/internal/storage"

	"go.uber.org/zap"
)

const (
	TasksSlot  = "planner-tasks"
	EventsSlot = "calendar-events"
)

// Planner хранилища задач и событий одного пользователя
type Planner struct {
	User   user.HostUser
	Tasks  *TaskService
	Events *EventService
}

type Registry struct {
	mtx       sync.Mutex
	planners  map[string]*Planner
	order     []string
	backend   storage.Backend
	transport notifier.Transport
	confirmer notifier.Confirmer
	options   []ServiceOption
}

func NewRegistry(backend storage.Backend, transport notifier.Transport, confirmer notifier.Confirmer, options ...ServiceOption) *Registry {
	return &Registry{
		planners:  make(map[string]*Planner),
		backend:   backend,
		transport: transport,
		confirmer: confirmer,
		options:   options,
	}
}

// For планировщик пользователя; коллекции загружаются при первом обращении.
// Загрузка идёт без блокировки реестра; планировщик с ошибкой чтения не кэшируется.
func (r *Registry) For(ctx context.Context, u user.HostUser) (*Planner, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	id := strings.TrimSpace(u.ID)

	r.mtx.Lock()
	p, ok := r.planners[id]
	r.mtx.Unlock()
	if ok {
		return p, nil
	}

	p, err := r.load(ctx, u)
	if err != nil {
		logger.Error("Service: Не удалось загрузить планировщик", err, zap.String("user", id))
		return nil, err
	}

	r.mtx.Lock()
	defer r.mtx.Unlock()

	// параллельный запрос мог загрузить планировщик раньше
	if existing, ok := r.planners[id]; ok {
		return existing, nil
	}
	r.planners[id] = p
	r.order = append(r.order, id)

	logger.Info("Service: Планировщик загружен",
		zap.String("user", id),
		zap.Int("tasks", p.Tasks.Len()),
		zap.Int("events", p.Events.Len()),
		zap.Bool("bot", !u.IsAnonymous() && r.transport != nil))
	return p, nil
}

func (r *Registry) load(ctx context.Context, u user.HostUser) (*Planner, error) {
	id := strings.TrimSpace(u.ID)

	// у анонимного пользователя нет канала бота
	var transport notifier.Transport
	if !u.IsAnonymous() {
		transport = r.transport
	}
	bridge := notifier.NewBridge(id, transport, r.confirmer)

	tasks, err := NewTaskService(ctx,
		storage.NewCollection[task.Task](r.backend),
		u.Namespace(TasksSlot),
		NewSyncCoordinator(bridge),
		r.options...)
	if err != nil {
		return nil, err
	}

	events, err := NewEventService(ctx,
		storage.NewCollection[event.Event](r.backend),
		u.Namespace(EventsSlot),
		r.options...)
	if err != nil {
		return nil, err
	}

	return &Planner{User: u, Tasks: tasks, Events: events}, nil
}

// Each обходит загруженные планировщики в порядке загрузки
func (r *Registry) Each(fn func(*Planner)) {
	r.mtx.Lock()
	planners := make([]*Planner, 0, len(r.order))
	for _, id := range r.order {
		planners = append(planners, r.planners[id])
	}
	r.mtx.Unlock()

	for _, p := range planners {
		fn(p)
	}
}

func (r *Registry) HealthCheck(ctx context.Context) error {
	if r.backend == nil {
		return storage.ErrUnavailable
	}
	return r.backend.HealthCheck(ctx)
}
