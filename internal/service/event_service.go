package service

import (
	"context"
	"slices"
	"sync"
	"time"

	"taskPlanner/internal/clock"
	"taskPlanner/internal/logger"
	"taskPlanner/internal/models/event"
	"taskPlanner/internal/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EventService события календаря пользователя. С ботом не синхронизируются.
type EventService struct {
	mtx          sync.Mutex
	events       []event.Event
	store        *storage.Collection[event.Event]
	key          string
	now          func() time.Time
	loc          *time.Location
	previewLimit int
}

func NewEventService(ctx context.Context, store *storage.Collection[event.Event], key string, options ...ServiceOption) (*EventService, error) {
	events, err := store.Load(ctx, key)
	if err != nil {
		return nil, err
	}

	o := buildOptions(options)
	return &EventService{
		events:       events,
		store:        store,
		key:          key,
		now:          o.now,
		loc:          o.loc,
		previewLimit: o.previewLimit,
	}, nil
}

// newEventID идентификаторы v7 упорядочены по времени и не повторяются при быстрых созданиях
func newEventID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

func (s *EventService) persist(ctx context.Context) {
	if err := s.store.Save(context.WithoutCancel(ctx), s.key, s.events); err != nil {
		logger.Error("Service: Не удалось сохранить события", err, zap.String("key", s.key))
	}
}

func (s *EventService) indexOf(id string) int {
	return slices.IndexFunc(s.events, func(e event.Event) bool { return e.ID == id })
}

// normalize проверяет черновик и подставляет категорию и аудиторию по умолчанию
func (s *EventService) normalize(d event.Draft) (event.Draft, error) {
	if err := validateTitle(d.Title); err != nil {
		return d, err
	}
	if err := validateSchedule(d.Date, d.Time, s.loc); err != nil {
		return d, err
	}

	typ, ok := event.ParseType(string(d.Type))
	if !ok {
		return d, NewValidationError("type", "неизвестная категория события")
	}
	audience, ok := event.ParseAudience(string(d.EventFor))
	if !ok {
		return d, NewValidationError("eventFor", "неизвестная аудитория")
	}

	d.Type = typ
	d.EventFor = audience
	return d, nil
}

func (s *EventService) Create(ctx context.Context, d event.Draft) (event.Event, error) {
	d, err := s.normalize(d)
	if err != nil {
		logger.Debug("Service: Событие отклонено", zap.Error(err))
		return event.Event{}, err
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	created := event.Event{
		ID:      newEventID(),
		Created: s.now().UTC().Truncate(time.Millisecond),
	}
	d.Apply(&created)

	s.events = append(s.events, created)
	s.persist(ctx)

	logger.Info("Service: Событие создано", zap.String("event_id", created.ID), zap.String("date", created.Date))
	return created, nil
}

func (s *EventService) Update(ctx context.Context, id string, d event.Draft) (event.Event, error) {
	d, err := s.normalize(d)
	if err != nil {
		return event.Event{}, err
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		logger.Info("Service: Событие не найдено", zap.String("target_id", id))
		return event.Event{}, NewNotFound(ResourceEvent, id)
	}

	d.Apply(&s.events[idx])
	updated := s.events[idx]
	s.persist(ctx)

	logger.Info("Service: Событие обновлено", zap.String("event_id", id))
	return updated, nil
}

func (s *EventService) Delete(ctx context.Context, id string) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		logger.Info("Service: Событие не найдено", zap.String("target_id", id))
		return NewNotFound(ResourceEvent, id)
	}

	s.events = slices.Delete(s.events, idx, idx+1)
	s.persist(ctx)

	logger.Info("Service: Событие удалено", zap.String("event_id", id))
	return nil
}

func (s *EventService) Get(id string) (event.Event, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return event.Event{}, NewNotFound(ResourceEvent, id)
	}
	return s.events[idx], nil
}

// EventsForDate события дня в порядке создания
func (s *EventService) EventsForDate(date string) []event.Event {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	res := []event.Event{}
	for _, e := range s.events {
		if e.Date == date {
			res = append(res, e)
		}
	}
	return res
}

// DayPreview первые limit событий дня и количество остальных
func (s *EventService) DayPreview(date string, limit int) ([]event.Event, int) {
	events := s.EventsForDate(date)
	if limit <= 0 {
		limit = s.previewLimit
	}
	if len(events) <= limit {
		return events, 0
	}
	return events[:limit], len(events) - limit
}

// groupByDate события по датам одним проходом
func (s *EventService) groupByDate() map[string][]event.Event {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	byDate := make(map[string][]event.Event)
	for _, e := range s.events {
		byDate[e.Date] = append(byDate[e.Date], e)
	}
	return byDate
}

// Today текущая дата в зоне планировщика
func (s *EventService) Today() string {
	return clock.Today(s.now().In(s.loc))
}

func (s *EventService) Len() int {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return len(s.events)
}
