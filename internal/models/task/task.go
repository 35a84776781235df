package task

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"taskPlanner/internal/clock"
)

// Task задача пользователя с датой и временем срока.
// Просроченность не хранится, а вычисляется через IsOverdue.
type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        string    `json:"date"`
	Time        string    `json:"time"`
	Completed   bool      `json:"completed"`
	Created     time.Time `json:"created"`
}

// Draft изменяемые поля задачи, приходящие из формы
type Draft struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Time        string `json:"time"`
}

type Filter string

const (
	FilterAll       Filter = "all"
	FilterToday     Filter = "today"
	FilterUpcoming  Filter = "upcoming"
	FilterCompleted Filter = "completed"
)

func ParseFilter(s string) (Filter, bool) {
	switch f := Filter(strings.TrimSpace(s)); f {
	case "":
		return FilterAll, true
	case FilterAll, FilterToday, FilterUpcoming, FilterCompleted:
		return f, true
	default:
		return "", false
	}
}

// Matches проверяет задачу по критерию; today в формате YYYY-MM-DD
func (f Filter) Matches(t Task, today string) bool {
	switch f {
	case FilterToday:
		return t.Date == today
	case FilterUpcoming:
		return clock.CompareDates(t.Date, today) > 0
	case FilterCompleted:
		return t.Completed
	default:
		return true
	}
}

// Due момент срока задачи в зоне loc
func (t Task) Due(loc *time.Location) (time.Time, error) {
	return clock.DueInstant(t.Date, t.Time, loc)
}

// IsOverdue: не выполнена и срок раньше now.
// Задача с неразбираемым сроком просроченной не считается.
func IsOverdue(t Task, now time.Time, loc *time.Location) bool {
	if t.Completed {
		return false
	}
	due, err := t.Due(loc)
	if err != nil {
		return false
	}
	return due.Before(now)
}

// SortForDisplay сортирует копию по дате, затем по времени.
// Оба поля фиксированной ширины, поэтому строкового сравнения достаточно.
func SortForDisplay(tasks []Task) []Task {
	sorted := slices.Clone(tasks)
	slices.SortStableFunc(sorted, func(a, b Task) int {
		return cmp.Or(
			clock.CompareDates(a.Date, b.Date),
			strings.Compare(a.Time, b.Time),
		)
	})
	return sorted
}
