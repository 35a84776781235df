package dto

import (
	"time"

	"taskPlanner/internal/models/event"
	"taskPlanner/internal/models/task"
)

type TaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Time        string `json:"time"`
}

func (r TaskRequest) ToDraft() task.Draft {
	return task.Draft{
		Title:       r.Title,
		Description: r.Description,
		Date:        r.Date,
		Time:        r.Time,
	}
}

type EventRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Type        string `json:"type"`
	EventFor    string `json:"eventFor"`
}

func (r EventRequest) ToDraft() event.Draft {
	return event.Draft{
		Title:       r.Title,
		Description: r.Description,
		Date:        r.Date,
		Time:        r.Time,
		Type:        event.Type(r.Type),
		EventFor:    event.Audience(r.EventFor),
	}
}

// TaskResponse задача с вычисляемыми полями для отображения
type TaskResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        string    `json:"date"`
	Time        string    `json:"time"`
	Completed   bool      `json:"completed"`
	Created     time.Time `json:"created"`
	IsOverdue   bool      `json:"is_overdue"`
	DueLabel    string    `json:"due_label"`
}

// TaskView вычисляет просроченность и подпись срока
type TaskView interface {
	IsOverdue(t task.Task) bool
	DueLabel(t task.Task) string
}

func FromTask(t task.Task, view TaskView) TaskResponse {
	return TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Date:        t.Date,
		Time:        t.Time,
		Completed:   t.Completed,
		Created:     t.Created,
		IsOverdue:   view.IsOverdue(t),
		DueLabel:    view.DueLabel(t),
	}
}

func FromTaskList(tasks []task.Task, view TaskView) []TaskResponse {
	result := make([]TaskResponse, len(tasks))
	for i, t := range tasks {
		result[i] = FromTask(t, view)
	}
	return result
}
