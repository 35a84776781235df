package task

import (
	"strings"
	"time"
)

type TaskOption func(*Task)

func New(id string, created time.Time, options ...TaskOption) Task {
	t := Task{
		ID:      id,
		Created: created,
	}
	for _, opt := range options {
		if opt != nil {
			opt(&t)
		}
	}
	return t
}

// WithDraft заменяет все изменяемые поля; id, created и completed не трогает
func WithDraft(d Draft) TaskOption {
	return func(t *Task) {
		t.Title = strings.TrimSpace(d.Title)
		t.Description = d.Description
		t.Date = strings.TrimSpace(d.Date)
		t.Time = strings.TrimSpace(d.Time)
	}
}

func WithCompleted(completed bool) TaskOption {
	return func(t *Task) {
		t.Completed = completed
	}
}

func WithDescription(description string) TaskOption {
	if description == "" {
		return nil
	}
	return func(t *Task) {
		t.Description = description
	}
}

// Draft поля задачи в виде формы, например для редактирования
func (t Task) Draft() Draft {
	return Draft{
		Title:       t.Title,
		Description: t.Description,
		Date:        t.Date,
		Time:        t.Time,
	}
}
