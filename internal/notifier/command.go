package notifier

import (
	"fmt"

	"taskPlanner/internal/models/task"

	"github.com/bytedance/sonic"
)

type Action string

const (
	ActionAdd    Action = "add_reminder"
	ActionUpdate Action = "update_reminder"
	ActionDelete Action = "delete_reminder"
)

// Command проекция задачи в момент изменения; не хранится
type Command struct {
	Action      Action
	TaskID      string
	Title       string
	Description string
	Date        string
	Time        string
}

func FromTask(action Action, t task.Task) Command {
	return Command{
		Action:      action,
		TaskID:      t.ID,
		Title:       t.Title,
		Description: t.Description,
		Date:        t.Date,
		Time:        t.Time,
	}
}

type reminderMessage struct {
	Action      Action `json:"action"`
	TaskID      string `json:"task_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Time        string `json:"time"`
}

type deleteMessage struct {
	Action Action `json:"action"`
	TaskID string `json:"task_id"`
}

// Encode сообщение для бота. Для удаления передаются только action и task_id.
func Encode(cmd Command) ([]byte, error) {
	switch cmd.Action {
	case ActionAdd, ActionUpdate:
		return sonic.ConfigStd.Marshal(reminderMessage{
			Action:      cmd.Action,
			TaskID:      cmd.TaskID,
			Title:       cmd.Title,
			Description: cmd.Description,
			Date:        cmd.Date,
			Time:        cmd.Time,
		})
	case ActionDelete:
		return sonic.ConfigStd.Marshal(deleteMessage{Action: cmd.Action, TaskID: cmd.TaskID})
	default:
		return nil, fmt.Errorf("неизвестное действие %q", cmd.Action)
	}
}
