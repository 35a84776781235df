package handlers

import (
	"net/http"

	"taskPlanner/internal/logger"
	"taskPlanner/internal/middleware"
	"taskPlanner/internal/service"

	"go.uber.org/zap"
)

// plannerFor пишет ответ сам, если планировщик недоступен
func plannerFor(w http.ResponseWriter, r *http.Request, planners PlannerProvider) (*service.Planner, bool) {
	u := middleware.UserFromContext(r.Context())

	p, err := planners.For(r.Context(), u)
	if err != nil {
		logger.Error("HTTP: Не удалось получить планировщик", err,
			zap.String("user", u.ID),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusServiceUnavailable, "планировщик недоступен")
		return nil, false
	}
	return p, true
}
