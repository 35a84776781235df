package worker

import (
	"context"
	"time"

	"taskPlanner/internal/logger"
	"taskPlanner/internal/service"

	"go.uber.org/zap"
)

const DefaultInterval = 5 * time.Minute

// Planners источник загруженных планировщиков
type Planners interface {
	Each(fn func(*service.Planner))
}

// Report итог одной проверки
type Report struct {
	Users   int
	Tasks   int
	Overdue int
}

// OverdueWorker периодически считает просроченные задачи. Коллекции не изменяет:
// просроченность вычисляется при чтении.
type OverdueWorker struct {
	planners Planners
	interval time.Duration
}

func NewOverdueWorker(planners Planners, interval time.Duration) *OverdueWorker {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &OverdueWorker{
		planners: planners,
		interval: interval,
	}
}

func (w *OverdueWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	logger.Info("Worker: Фоновая проверка запущена", zap.Duration("interval", w.interval))

	for {
		select {
		case <-ticker.C:
			w.Check(ctx)
		case <-ctx.Done():
			logger.Info("Worker: Фоновая проверка останавливается")
			return
		}
	}
}

func (w *OverdueWorker) Check(ctx context.Context) Report {
	start := time.Now()
	var report Report

	w.planners.Each(func(p *service.Planner) {
		if ctx.Err() != nil {
			return
		}

		overdue := p.Tasks.Overdue()
		report.Users++
		report.Tasks += p.Tasks.Len()
		report.Overdue += len(overdue)

		if len(overdue) > 0 {
			logger.Info("Worker: Есть просроченные задачи",
				zap.String("user", p.User.ID),
				zap.Int("overdue", len(overdue)))
		}
	})

	logger.Info(
		"Worker: Завершение проверки задач",
		zap.Duration("ms", time.Since(start)),
		zap.Int("users", report.Users),
		zap.Int("checked", report.Tasks),
		zap.Int("overdue", report.Overdue),
	)
	return report
}
