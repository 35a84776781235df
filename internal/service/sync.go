package service

import (
	"context"

	"taskPlanner/internal/logger"
	"taskPlanner/internal/models/task"
	"taskPlanner/internal/notifier"

	"go.uber.org/zap"
)

// Mutation исход изменения задачи
type Mutation int

const (
	MutationCreated Mutation = iota
	MutationUpdated
	MutationCompleted
	MutationReopened
	MutationDeleted
)

func (m Mutation) String() string {
	switch m {
	case MutationCreated:
		return "created"
	case MutationUpdated:
		return "updated"
	case MutationCompleted:
		return "completed"
	case MutationReopened:
		return "reopened"
	case MutationDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// Notifier принимает команду синхронизации; false, если команда не передана
type Notifier interface {
	Notify(ctx context.Context, cmd notifier.Command) bool
}

// Decide какая команда (если есть) следует за изменением задачи t.
// Редактирование не меняет completed, поэтому t.Completed для MutationUpdated - прежнее состояние.
func Decide(m Mutation, t task.Task) (notifier.Command, bool) {
	switch m {
	case MutationCreated, MutationReopened:
		return notifier.FromTask(notifier.ActionAdd, t), true
	case MutationUpdated:
		// напоминание выполненной задачи уже снято у бота
		if t.Completed {
			return notifier.Command{}, false
		}
		return notifier.FromTask(notifier.ActionUpdate, t), true
	case MutationCompleted, MutationDeleted:
		return notifier.FromTask(notifier.ActionDelete, t), true
	default:
		return notifier.Command{}, false
	}
}

type SyncCoordinator struct {
	notifier Notifier
}

func NewSyncCoordinator(n Notifier) *SyncCoordinator {
	return &SyncCoordinator{notifier: n}
}

// Apply вызывается синхронно в том же шаге, что и изменение. Результат не влияет на изменение.
func (c *SyncCoordinator) Apply(ctx context.Context, m Mutation, t task.Task) bool {
	cmd, ok := Decide(m, t)
	if !ok {
		logger.Debug("Service: Синхронизация не требуется",
			zap.String("mutation", m.String()),
			zap.String("task_id", t.ID))
		return false
	}
	if c == nil || c.notifier == nil {
		return false
	}

	// отправленная команда доводится до конца даже после отмены запроса
	accepted := c.notifier.Notify(context.WithoutCancel(ctx), cmd)
	if !accepted {
		logger.Debug("Service: Команда не принята транспортом",
			zap.String("action", string(cmd.Action)),
			zap.String("task_id", t.ID))
	}
	return accepted
}
