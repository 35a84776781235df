package handlers

import (
	"context"

	"taskPlanner/internal/models/user"
	"taskPlanner/internal/service"
)

// PlannerProvider отдаёт планировщик пользователя хоста
type PlannerProvider interface {
	For(ctx context.Context, u user.HostUser) (*service.Planner, error)
	HealthCheck(ctx context.Context) error
}
