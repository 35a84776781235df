package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"taskPlanner/internal/handlers"
	"taskPlanner/internal/handlers/dto"
	"taskPlanner/internal/logger"
	"taskPlanner/internal/middleware"
	"taskPlanner/internal/models/event"
	"taskPlanner/internal/models/user"
	"taskPlanner/internal/service"
	"taskPlanner/internal/storage/inmemory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// 2024-03-14 12:00 UTC
var fixedNow = time.Date(2024, time.March, 14, 12, 0, 0, 0, time.UTC)

func newServer(t *testing.T) (http.Handler, *inmemory.Storage) {
	t.Helper()
	backend := inmemory.NewStorage()
	reg := service.NewRegistry(backend, nil, nil,
		service.WithClock(func() time.Time { return fixedNow }),
		service.WithLocation(time.UTC))
	return handlers.NewRouter(reg, handlers.RouterConfig{}), backend
}

func do(h http.Handler, method, path, body, userID string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if userID != "" {
		req.Header.Set(middleware.HeaderUserID, userID)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

type taskEnvelope struct {
	Task dto.TaskResponse `json:"task"`
}

type tasksEnvelope struct {
	Tasks []dto.TaskResponse `json:"tasks"`
}

type errorEnvelope struct {
	Error   string         `json:"error"`
	Message string         `json:"message"`
	Details map[string]any `json:"details"`
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func createTask(t *testing.T, h http.Handler, userID, body string) dto.TaskResponse {
	t.Helper()
	rec := do(h, http.MethodPost, "/api/tasks", body, userID)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[taskEnvelope](t, rec).Task
}

func TestHealth(t *testing.T) {
	t.Run("success - storage ok", func(t *testing.T) {
		h, _ := newServer(t)
		rec := do(h, http.MethodGet, "/health", "", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"ok","storage":"ok"}`, rec.Body.String())
	})

	t.Run("error - storage unavailable", func(t *testing.T) {
		h := handlers.NewRouter(service.NewRegistry(nil, nil, nil), handlers.RouterConfig{})
		rec := do(h, http.MethodGet, "/health", "", "")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, rec.Body.String(), "unavailable")
	})
}

func TestCreateTask(t *testing.T) {
	t.Run("success - created", func(t *testing.T) {
		h, backend := newServer(t)

		created := createTask(t, h, "101", `{"title":"  Купить молоко ","date":"2024-03-15","time":"09:00"}`)

		assert.NotEmpty(t, created.ID)
		assert.Equal(t, "Купить молоко", created.Title)
		assert.False(t, created.Completed)
		assert.False(t, created.IsOverdue)
		assert.Equal(t, "Завтра, 09:00", created.DueLabel)
		assert.Contains(t, backend.Keys(), "101:planner-tasks")
	})

	t.Run("success - past due is overdue", func(t *testing.T) {
		h, _ := newServer(t)
		created := createTask(t, h, "", `{"title":"old","date":"2024-03-13","time":"09:00"}`)
		assert.True(t, created.IsOverdue)
		assert.Equal(t, "13 марта, 09:00", created.DueLabel)
	})

	tests := []struct {
		name        string
		body        string
		contentType string
		wantStatus  int
		wantError   string
	}{
		{
			name:        "error - wrong content type",
			body:        `{"title":"x"}`,
			contentType: "text/plain",
			wantStatus:  http.StatusUnsupportedMediaType,
		},
		{
			name:        "error - malformed json",
			body:        `{"title":`,
			contentType: "application/json",
			wantStatus:  http.StatusBadRequest,
		},
		{
			name:        "error - empty title",
			body:        `{"title":"   ","date":"2024-03-15","time":"09:00"}`,
			contentType: "application/json; charset=utf-8",
			wantStatus:  http.StatusBadRequest,
			wantError:   service.CodeValidation,
		},
		{
			name:        "error - missing time",
			body:        `{"title":"x","date":"2024-03-15"}`,
			contentType: "application/json",
			wantStatus:  http.StatusBadRequest,
			wantError:   service.CodeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, backend := newServer(t)

			req := httptest.NewRequest(http.MethodPost, "/api/tasks", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", tt.contentType)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, decode[errorEnvelope](t, rec).Error)
			}
			assert.Empty(t, backend.Keys(), "при ошибке ничего не сохраняется")
		})
	}
}

func TestTaskLifecycle(t *testing.T) {
	h, _ := newServer(t)
	created := createTask(t, h, "101", `{"title":"Отчёт","description":"квартальный","date":"2024-03-20","time":"18:00"}`)
	path := "/api/tasks/" + created.ID

	rec := do(h, http.MethodGet, path, "", "101")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, created, decode[taskEnvelope](t, rec).Task)

	rec = do(h, http.MethodPut, path, `{"title":"Отчёт v2","description":"","date":"2024-03-21","time":"10:00"}`, "101")
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decode[taskEnvelope](t, rec).Task
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Отчёт v2", updated.Title)
	assert.Equal(t, "2024-03-21", updated.Date)
	assert.Equal(t, created.Created, updated.Created)

	rec = do(h, http.MethodPost, path+"/toggle", "", "101")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[taskEnvelope](t, rec).Task.Completed)

	rec = do(h, http.MethodGet, "/api/tasks?filter=completed", "", "101")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[tasksEnvelope](t, rec).Tasks, 1)

	rec = do(h, http.MethodDelete, path, "", "101")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = do(h, http.MethodGet, path, "", "101")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	body := decode[errorEnvelope](t, rec)
	assert.Equal(t, service.CodeNotFound, body.Error)
	assert.Equal(t, created.ID, body.Details["id"])
}

func TestTaskNotFound(t *testing.T) {
	h, _ := newServer(t)

	for _, tc := range []struct{ method, path, body string }{
		{http.MethodGet, "/api/tasks/missing", ""},
		{http.MethodPut, "/api/tasks/missing", `{"title":"x","date":"2024-03-15","time":"09:00"}`},
		{http.MethodDelete, "/api/tasks/missing", ""},
		{http.MethodPost, "/api/tasks/missing/toggle", ""},
	} {
		rec := do(h, tc.method, tc.path, tc.body, "101")
		assert.Equal(t, http.StatusNotFound, rec.Code, "%s %s", tc.method, tc.path)
	}
}

func TestListTasks(t *testing.T) {
	h, _ := newServer(t)
	createTask(t, h, "101", `{"title":"later","date":"2024-03-20","time":"09:00"}`)
	createTask(t, h, "101", `{"title":"today","date":"2024-03-14","time":"18:00"}`)
	createTask(t, h, "101", `{"title":"overdue","date":"2024-03-14","time":"08:00"}`)

	t.Run("success - all sorted", func(t *testing.T) {
		rec := do(h, http.MethodGet, "/api/tasks", "", "101")
		require.Equal(t, http.StatusOK, rec.Code)
		tasks := decode[tasksEnvelope](t, rec).Tasks
		require.Len(t, tasks, 3)
		assert.Equal(t, []string{"overdue", "today", "later"}, []string{tasks[0].Title, tasks[1].Title, tasks[2].Title})
	})

	t.Run("success - today", func(t *testing.T) {
		rec := do(h, http.MethodGet, "/api/tasks?filter=today", "", "101")
		assert.Len(t, decode[tasksEnvelope](t, rec).Tasks, 2)
	})

	t.Run("success - upcoming", func(t *testing.T) {
		rec := do(h, http.MethodGet, "/api/tasks?filter=upcoming", "", "101")
		tasks := decode[tasksEnvelope](t, rec).Tasks
		require.Len(t, tasks, 1)
		assert.Equal(t, "later", tasks[0].Title)
	})

	t.Run("success - overdue", func(t *testing.T) {
		rec := do(h, http.MethodGet, "/api/tasks/overdue", "", "101")
		tasks := decode[tasksEnvelope](t, rec).Tasks
		require.Len(t, tasks, 1)
		assert.Equal(t, "overdue", tasks[0].Title)
		assert.True(t, tasks[0].IsOverdue)
	})

	t.Run("success - other user sees empty list", func(t *testing.T) {
		rec := do(h, http.MethodGet, "/api/tasks", "", "202")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"tasks":[]}`, rec.Body.String())
	})

	t.Run("error - unknown filter", func(t *testing.T) {
		rec := do(h, http.MethodGet, "/api/tasks?filter=someday", "", "101")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestEvents(t *testing.T) {
	h, _ := newServer(t)

	rec := do(h, http.MethodPost, "/api/events", `{"title":"Лекция","date":"2024-03-14","time":"10:00"}`, "101")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[struct {
		Event event.Event `json:"event"`
	}](t, rec).Event
	assert.Equal(t, event.TypeLecture, created.Type)
	assert.Equal(t, event.AudienceAll, created.EventFor)

	t.Run("success - today by default", func(t *testing.T) {
		rec := do(h, http.MethodGet, "/api/events", "", "101")
		require.Equal(t, http.StatusOK, rec.Code)
		body := decode[struct {
			Date   string        `json:"date"`
			Events []event.Event `json:"events"`
		}](t, rec)
		assert.Equal(t, "2024-03-14", body.Date)
		require.Len(t, body.Events, 1)
		assert.Equal(t, created.ID, body.Events[0].ID)
	})

	t.Run("success - empty day", func(t *testing.T) {
		rec := do(h, http.MethodGet, "/api/events?date=2024-03-15", "", "101")
		assert.JSONEq(t, `{"date":"2024-03-15","events":[]}`, rec.Body.String())
	})

	t.Run("error - bad date", func(t *testing.T) {
		rec := do(h, http.MethodGet, "/api/events?date=15.03.2024", "", "101")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("error - bad audience", func(t *testing.T) {
		rec := do(h, http.MethodPost, "/api/events", `{"title":"x","date":"2024-03-14","time":"10:00","eventFor":"parents"}`, "101")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, service.CodeValidation, decode[errorEnvelope](t, rec).Error)
	})

	t.Run("success - update and delete", func(t *testing.T) {
		path := "/api/events/" + created.ID
		rec := do(h, http.MethodPut, path, `{"title":"Экзамен","date":"2024-03-14","time":"12:00","type":"exam","eventFor":"students"}`, "101")
		require.Equal(t, http.StatusOK, rec.Code)

		rec = do(h, http.MethodGet, path, "", "101")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"type":"exam"`)

		assert.Equal(t, http.StatusNoContent, do(h, http.MethodDelete, path, "", "101").Code)
		assert.Equal(t, http.StatusNotFound, do(h, http.MethodDelete, path, "", "101").Code)
	})
}

func TestCalendar(t *testing.T) {
	h, _ := newServer(t)
	for i := 0; i < 3; i++ {
		rec := do(h, http.MethodPost, "/api/events", `{"title":"e","date":"2024-03-15","time":"10:00"}`, "")
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	t.Run("success - explicit month", func(t *testing.T) {
		rec := do(h, http.MethodGet, "/api/calendar?month=2024-03", "", "")
		require.Equal(t, http.StatusOK, rec.Code)

		view := decode[struct {
			Calendar service.MonthView `json:"calendar"`
		}](t, rec).Calendar
		assert.Equal(t, "Март 2024", view.Title)
		require.Len(t, view.Days, 42)

		cell := view.Days[18]
		assert.Equal(t, "2024-03-15", cell.Date)
		assert.Equal(t, 3, cell.Count)
		assert.Equal(t, "3 события", cell.CountLabel)
		assert.Len(t, cell.Preview, service.DefaultPreviewLimit)
		assert.Equal(t, 1, cell.More)
		assert.True(t, view.Days[17].Today)
	})

	t.Run("success - current month", func(t *testing.T) {
		rec := do(h, http.MethodGet, "/api/calendar", "", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"month":"2024-03"`)
	})

	t.Run("error - bad month", func(t *testing.T) {
		rec := do(h, http.MethodGet, "/api/calendar?month=march", "", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

// MockPlanners мок поставщика планировщиков
type MockPlanners struct {
	mock.Mock
}

func (m *MockPlanners) For(ctx context.Context, u user.HostUser) (*service.Planner, error) {
	args := m.Called(ctx, u)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Planner), args.Error(1)
}

func (m *MockPlanners) HealthCheck(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func TestPlannerUnavailable(t *testing.T) {
	planners := new(MockPlanners)
	planners.On("For", mock.Anything, mock.MatchedBy(func(u user.HostUser) bool {
		return u.ID == "101" && u.DisplayName == "Alice"
	})).Return(nil, errors.New("backend down"))

	h := handlers.NewRouter(planners, handlers.RouterConfig{})

	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	req.Header.Set(middleware.HeaderUserID, "101")
	req.Header.Set(middleware.HeaderUserName, "Alice")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	planners.AssertExpectations(t)
}

func TestCORSPreflight(t *testing.T) {
	h := handlers.NewRouter(new(MockPlanners), handlers.RouterConfig{AllowedOrigins: []string{"https://app.example"}})

	req := httptest.NewRequest(http.MethodOptions, "/api/tasks", nil)
	req.Header.Set("Origin", "https://app.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", middleware.HeaderUserID)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "https://app.example", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestMutationLogsCarryStatus(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	prev := logger.Logger
	logger.Logger = zap.New(core)
	t.Cleanup(func() { logger.Logger = prev })

	h, _ := newServer(t)
	created := createTask(t, h, "101", `{"title":"t","date":"2024-03-20","time":"18:00"}`)
	path := "/api/tasks/" + created.ID

	require.Equal(t, http.StatusOK, do(h, http.MethodPut, path, `{"title":"t2","date":"2024-03-20","time":"18:00"}`, "101").Code)
	require.Equal(t, http.StatusOK, do(h, http.MethodPost, path+"/toggle", "", "101").Code)
	require.Equal(t, http.StatusNoContent, do(h, http.MethodDelete, path, "", "101").Code)

	outs := logs.FilterMessageSnippet("HTTP_OUT: ").FilterField(zap.String("task_id", created.ID)).All()
	require.NotEmpty(t, outs)
	for _, entry := range outs {
		assert.Contains(t, entry.ContextMap(), "http_status", entry.Message)
	}

	toggled := logs.FilterMessage("HTTP_OUT: Статус задачи переключён").All()
	require.Len(t, toggled, 1)
	assert.EqualValues(t, http.StatusOK, toggled[0].ContextMap()["http_status"])
}
