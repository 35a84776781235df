package notifier

import (
	"context"
	"fmt"

	"taskPlanner/internal/logger"

	"go.uber.org/zap"
)

// Transport односторонняя отправка данных боту пользователя
type Transport interface {
	SendData(ctx context.Context, userID string, data []byte) error
}

// Confirmer показывает пользователю кратковременное подтверждение
type Confirmer interface {
	ShowAlert(ctx context.Context, message string)
}

// LogConfirmer пишет подтверждения в лог
type LogConfirmer struct{}

func (LogConfirmer) ShowAlert(ctx context.Context, message string) {
	logger.Info("Notifier: Подтверждение", zap.String("message", message))
}

// Bridge доставка не гарантируется: без подтверждений, повторов и очереди
type Bridge struct {
	userID    string
	transport Transport
	confirmer Confirmer
}

func NewBridge(userID string, transport Transport, confirmer Confirmer) *Bridge {
	return &Bridge{
		userID:    userID,
		transport: transport,
		confirmer: confirmer,
	}
}

func (b *Bridge) Available() bool {
	return b != nil && b.transport != nil
}

// Notify возвращает true, если команда передана транспорту
func (b *Bridge) Notify(ctx context.Context, cmd Command) bool {
	if !b.Available() {
		logger.Debug("Notifier: Транспорт недоступен",
			zap.String("action", string(cmd.Action)),
			zap.String("task_id", cmd.TaskID))
		return false
	}

	data, err := Encode(cmd)
	if err != nil {
		logger.Error("Notifier: Ошибка сериализации команды", err, zap.String("task_id", cmd.TaskID))
		return false
	}

	if err := b.transport.SendData(ctx, b.userID, data); err != nil {
		logger.Warn("Notifier: Команда не передана",
			zap.String("user", b.userID),
			zap.String("action", string(cmd.Action)),
			zap.String("task_id", cmd.TaskID),
			zap.Error(err))
		return false
	}

	logger.Debug("Notifier: Команда передана",
		zap.String("user", b.userID),
		zap.String("action", string(cmd.Action)),
		zap.String("task_id", cmd.TaskID))

	if b.confirmer != nil {
		if msg, ok := ConfirmationMessage(cmd); ok {
			b.confirmer.ShowAlert(ctx, msg)
		}
	}
	return true
}

// ConfirmationMessage текст подтверждения; для удаления его нет
func ConfirmationMessage(cmd Command) (string, bool) {
	switch cmd.Action {
	case ActionAdd:
		return fmt.Sprintf("Напоминание \"%s\" добавлено в чат-бота", cmd.Title), true
	case ActionUpdate:
		return fmt.Sprintf("Напоминание \"%s\" обновлено в чат-боте", cmd.Title), true
	default:
		return "", false
	}
}
