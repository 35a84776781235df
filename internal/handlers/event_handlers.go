package handlers

import (
	"net/http"
	"strings"
	"time"

	"taskPlanner/internal/clock"
	"taskPlanner/internal/handlers/dto"
	"taskPlanner/internal/logger"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type EventHandler struct {
	Planners PlannerProvider
}

func NewEventHandler(planners PlannerProvider) EventHandler {
	return EventHandler{
		Planners: planners,
	}
}

// ListEvents события дня из ?date=, по умолчанию сегодня
func (h *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	date := strings.TrimSpace(r.URL.Query().Get("date"))
	if date != "" {
		if _, err := clock.ParseDate(date, time.UTC); err != nil {
			logger.Warn("HTTP: Неверное значение параметра",
				zap.String("query", "date"),
				zap.String("value", date),
				zap.String("client_ip", r.RemoteAddr))

			responseWithError(w, http.StatusBadRequest, "дата должна быть в формате YYYY-MM-DD")
			return
		}
	}

	p, ok := plannerFor(w, r, h.Planners)
	if !ok {
		return
	}

	if date == "" {
		date = p.Events.Today()
	}

	events := p.Events.EventsForDate(date)
	responseWithJSON(w, http.StatusOK,
		toPayload("date", date),
		toPayload("events", events),
	)
}

func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	var request dto.EventRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	p, ok := plannerFor(w, r, h.Planners)
	if !ok {
		return
	}

	created, err := p.Events.Create(r.Context(), request.ToDraft())
	if err != nil {
		handleError(w, r, err, "create_event")
		return
	}

	logger.Info("HTTP_OUT: Событие создано",
		zap.String("event_id", created.ID),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusCreated))

	responseWithJSON(w, http.StatusCreated, toPayload("event", created))
}

func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	p, ok := plannerFor(w, r, h.Planners)
	if !ok {
		return
	}

	e, err := p.Events.Get(chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err, "get_event")
		return
	}

	responseWithJSON(w, http.StatusOK, toPayload("event", e))
}

func (h *EventHandler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	var request dto.EventRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	p, ok := plannerFor(w, r, h.Planners)
	if !ok {
		return
	}

	updated, err := p.Events.Update(r.Context(), chi.URLParam(r, "id"), request.ToDraft())
	if err != nil {
		handleError(w, r, err, "update_event")
		return
	}

	logger.Info("HTTP_OUT: Событие обновлено",
		zap.String("event_id", updated.ID),
		zap.Duration("ms", time.Since(start)))

	responseWithJSON(w, http.StatusOK, toPayload("event", updated))
}

func (h *EventHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	p, ok := plannerFor(w, r, h.Planners)
	if !ok {
		return
	}

	if err := p.Events.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleError(w, r, err, "delete_event")
		return
	}

	noContent(w)
}

// Calendar сетка месяца из ?month=YYYY-MM, по умолчанию текущий
func (h *EventHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	p, ok := plannerFor(w, r, h.Planners)
	if !ok {
		return
	}

	view, err := p.Events.MonthViewOf(r.URL.Query().Get("month"))
	if err != nil {
		handleError(w, r, err, "month_view")
		return
	}

	responseWithJSON(w, http.StatusOK, toPayload("calendar", view))
}
