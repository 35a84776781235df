package service

import (
	"context"
	"iter"
	"slices"
	"sync"
	"time"

	"taskPlanner/internal/clock"
	"taskPlanner/internal/logger"
	"taskPlanner/internal/models/task"
	"taskPlanner/internal/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TaskService владеет коллекцией задач одного пользователя.
// Изменения выполняются по одному: запись в хранилище и синхронизация
// происходят в том же шаге, что и само изменение.
type TaskService struct {
	mtx         sync.Mutex
	tasks       []task.Task
	store       *storage.Collection[task.Task]
	key         string
	coordinator *SyncCoordinator
	now         func() time.Time
	loc         *time.Location
}

type ServiceOption func(*serviceOptions)

type serviceOptions struct {
	now          func() time.Time
	loc          *time.Location
	previewLimit int
}

func WithClock(now func() time.Time) ServiceOption {
	return func(o *serviceOptions) {
		if now != nil {
			o.now = now
		}
	}
}

func WithLocation(loc *time.Location) ServiceOption {
	return func(o *serviceOptions) {
		if loc != nil {
			o.loc = loc
		}
	}
}

// WithPreviewLimit сколько событий показывать в ячейке календаря
func WithPreviewLimit(limit int) ServiceOption {
	return func(o *serviceOptions) {
		if limit > 0 {
			o.previewLimit = limit
		}
	}
}

func buildOptions(options []ServiceOption) serviceOptions {
	o := serviceOptions{now: time.Now, loc: time.Local, previewLimit: DefaultPreviewLimit}
	for _, opt := range options {
		opt(&o)
	}
	return o
}

// NewTaskService загружает коллекцию из слота key; при ошибке чтения сервис не создаётся
func NewTaskService(ctx context.Context, store *storage.Collection[task.Task], key string, coordinator *SyncCoordinator, options ...ServiceOption) (*TaskService, error) {
	tasks, err := store.Load(ctx, key)
	if err != nil {
		return nil, err
	}

	o := buildOptions(options)
	return &TaskService{
		tasks:       tasks,
		store:       store,
		key:         key,
		coordinator: coordinator,
		now:         o.now,
		loc:         o.loc,
	}, nil
}

// persist вызывается под mtx. Ошибка записи не откатывает изменение в памяти.
// Отмена запроса запись не прерывает.
func (s *TaskService) persist(ctx context.Context) {
	if err := s.store.Save(context.WithoutCancel(ctx), s.key, s.tasks); err != nil {
		logger.Error("Service: Не удалось сохранить задачи", err, zap.String("key", s.key))
	}
}

func (s *TaskService) indexOf(id string) int {
	return slices.IndexFunc(s.tasks, func(t task.Task) bool { return t.ID == id })
}

func (s *TaskService) validate(d task.Draft) error {
	if err := validateTitle(d.Title); err != nil {
		return err
	}
	return validateSchedule(d.Date, d.Time, s.loc)
}

func (s *TaskService) Create(ctx context.Context, d task.Draft) (task.Task, error) {
	if err := s.validate(d); err != nil {
		logger.Debug("Service: Задача отклонена", zap.Error(err))
		return task.Task{}, err
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	created := task.New(uuid.New().String(),
		s.now().UTC().Truncate(time.Millisecond),
		task.WithDraft(d),
		task.WithCompleted(false),
	)

	s.tasks = append(s.tasks, created)
	s.persist(ctx)
	s.coordinator.Apply(ctx, MutationCreated, created)

	logger.Info("Service: Задача создана", zap.String("task_id", created.ID))
	return created, nil
}

// Update заменяет изменяемые поля; completed и created сохраняются
func (s *TaskService) Update(ctx context.Context, id string, d task.Draft) (task.Task, error) {
	if err := s.validate(d); err != nil {
		return task.Task{}, err
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		logger.Info("Service: Задача не найдена", zap.String("target_id", id))
		return task.Task{}, NewNotFound(ResourceTask, id)
	}

	task.WithDraft(d)(&s.tasks[idx])
	updated := s.tasks[idx]

	s.persist(ctx)
	s.coordinator.Apply(ctx, MutationUpdated, updated)

	logger.Info("Service: Задача обновлена", zap.String("task_id", id))
	return updated, nil
}

func (s *TaskService) ToggleComplete(ctx context.Context, id string) (task.Task, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		logger.Info("Service: Задача не найдена", zap.String("target_id", id))
		return task.Task{}, NewNotFound(ResourceTask, id)
	}

	s.tasks[idx].Completed = !s.tasks[idx].Completed
	toggled := s.tasks[idx]

	s.persist(ctx)

	mutation := MutationReopened
	if toggled.Completed {
		mutation = MutationCompleted
	}
	s.coordinator.Apply(ctx, mutation, toggled)

	logger.Info("Service: Статус задачи изменён",
		zap.String("task_id", id),
		zap.Bool("completed", toggled.Completed))
	return toggled, nil
}

// Delete снимает напоминание независимо от статуса задачи
func (s *TaskService) Delete(ctx context.Context, id string) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		logger.Info("Service: Задача не найдена", zap.String("target_id", id))
		return NewNotFound(ResourceTask, id)
	}

	removed := s.tasks[idx]
	s.tasks = slices.Delete(s.tasks, idx, idx+1)

	s.persist(ctx)
	s.coordinator.Apply(ctx, MutationDeleted, removed)

	logger.Info("Service: Задача удалена", zap.String("task_id", id))
	return nil
}

func (s *TaskService) Get(id string) (task.Task, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return task.Task{}, NewNotFound(ResourceTask, id)
	}
	return s.tasks[idx], nil
}

func (s *TaskService) snapshot() []task.Task {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return slices.Clone(s.tasks)
}

// Filter ленивая последовательность; снимок коллекции и "сегодня" берутся при начале обхода
func (s *TaskService) Filter(f task.Filter) iter.Seq[task.Task] {
	return func(yield func(task.Task) bool) {
		today := clock.Today(s.now().In(s.loc))
		for _, t := range s.snapshot() {
			if !f.Matches(t, today) {
				continue
			}
			if !yield(t) {
				return
			}
		}
	}
}

// List задачи по критерию в порядке отображения
func (s *TaskService) List(f task.Filter) []task.Task {
	tasks := task.SortForDisplay(slices.Collect(s.Filter(f)))
	if tasks == nil {
		return []task.Task{}
	}
	return tasks
}

func (s *TaskService) IsOverdue(t task.Task) bool {
	return task.IsOverdue(t, s.now(), s.loc)
}

func (s *TaskService) Overdue() []task.Task {
	now := s.now()
	overdue := []task.Task{}
	for t := range s.Filter(task.FilterAll) {
		if task.IsOverdue(t, now, s.loc) {
			overdue = append(overdue, t)
		}
	}
	return task.SortForDisplay(overdue)
}

func (s *TaskService) Len() int {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return len(s.tasks)
}

// DueLabel подпись срока в зоне планировщика
func (s *TaskService) DueLabel(t task.Task) string {
	return clock.DueLabel(t.Date, t.Time, s.now().In(s.loc))
}
