package handlers

import (
	"net/http"
	"time"

	"taskPlanner/internal/handlers/dto"
	"taskPlanner/internal/logger"
	"taskPlanner/internal/models/task"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type TaskHandler struct {
	Planners PlannerProvider
}

func NewTaskHandler(planners PlannerProvider) TaskHandler {
	return TaskHandler{
		Planners: planners,
	}
}

func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	filter, ok := task.ParseFilter(r.URL.Query().Get("filter"))
	if !ok {
		logger.Warn("HTTP: Неверное значение параметра",
			zap.String("query", "filter"),
			zap.String("value", r.URL.Query().Get("filter")),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, "неверное значение filter")
		return
	}

	p, ok := plannerFor(w, r, h.Planners)
	if !ok {
		return
	}

	tasks := p.Tasks.List(filter)

	logger.Info("HTTP_OUT: Задачи получены",
		zap.String("filter", string(filter)),
		zap.Int("count", len(tasks)),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK, toPayload("tasks", dto.FromTaskList(tasks, p.Tasks)))
}

func (h *TaskHandler) ListOverdue(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	p, ok := plannerFor(w, r, h.Planners)
	if !ok {
		return
	}

	tasks := p.Tasks.Overdue()
	responseWithJSON(w, http.StatusOK, toPayload("tasks", dto.FromTaskList(tasks, p.Tasks)))
}

func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	var request dto.TaskRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	p, ok := plannerFor(w, r, h.Planners)
	if !ok {
		return
	}

	created, err := p.Tasks.Create(r.Context(), request.ToDraft())
	if err != nil {
		handleError(w, r, err, "create_task")
		return
	}

	logger.Info("HTTP_OUT: Задача создана",
		zap.String("task_id", created.ID),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusCreated))

	responseWithJSON(w, http.StatusCreated, toPayload("task", dto.FromTask(created, p.Tasks)))
}

func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	p, ok := plannerFor(w, r, h.Planners)
	if !ok {
		return
	}

	t, err := p.Tasks.Get(chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err, "get_task")
		return
	}

	responseWithJSON(w, http.StatusOK, toPayload("task", dto.FromTask(t, p.Tasks)))
}

func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	var request dto.TaskRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	p, ok := plannerFor(w, r, h.Planners)
	if !ok {
		return
	}

	updated, err := p.Tasks.Update(r.Context(), chi.URLParam(r, "id"), request.ToDraft())
	if err != nil {
		handleError(w, r, err, "update_task")
		return
	}

	logger.Info("HTTP_OUT: Задача обновлена",
		zap.String("task_id", updated.ID),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK, toPayload("task", dto.FromTask(updated, p.Tasks)))
}

func (h *TaskHandler) ToggleTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	p, ok := plannerFor(w, r, h.Planners)
	if !ok {
		return
	}

	toggled, err := p.Tasks.ToggleComplete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err, "toggle_task")
		return
	}

	logger.Info("HTTP_OUT: Статус задачи переключён",
		zap.String("task_id", toggled.ID),
		zap.Bool("completed", toggled.Completed),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK, toPayload("task", dto.FromTask(toggled, p.Tasks)))
}

func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	p, ok := plannerFor(w, r, h.Planners)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if err := p.Tasks.Delete(r.Context(), id); err != nil {
		handleError(w, r, err, "delete_task")
		return
	}

	logger.Info("HTTP_OUT: Задача удалена",
		zap.String("task_id", id),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusNoContent))

	noContent(w)
}
