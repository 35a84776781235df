package task_test

import (
	"testing"
	"time"

	"taskPlanner/internal/models/task"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsOverdue(t *testing.T) {
	now := time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		task     task.Task
		expected bool
	}{
		{
			name:     "past due and active",
			task:     task.Task{Date: "2024-03-15", Time: "09:00"},
			expected: true,
		},
		{
			name:     "past due but completed",
			task:     task.Task{Date: "2020-01-01", Time: "09:00", Completed: true},
			expected: false,
		},
		{
			name:     "due later today",
			task:     task.Task{Date: "2024-03-15", Time: "12:01"},
			expected: false,
		},
		{
			name:     "due exactly now is not overdue",
			task:     task.Task{Date: "2024-03-15", Time: "12:00"},
			expected: false,
		},
		{
			name:     "empty time falls back to end of day",
			task:     task.Task{Date: "2024-03-15"},
			expected: false,
		},
		{
			name:     "unparseable date",
			task:     task.Task{Date: "not-a-date", Time: "09:00"},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, task.IsOverdue(tt.task, now, time.UTC))
		})
	}
}

// TestIsOverdue_Monotonic срок прошёл - задача остаётся просроченной при любом более позднем now
func TestIsOverdue_Monotonic(t *testing.T) {
	tk := task.Task{Date: "2024-03-15", Time: "09:00"}
	due := time.Date(2024, time.March, 15, 9, 0, 0, 0, time.UTC)

	assert.False(t, task.IsOverdue(tk, due.Add(-time.Minute), time.UTC))
	for _, step := range []time.Duration{time.Second, time.Hour, 24 * time.Hour, 365 * 24 * time.Hour} {
		assert.True(t, task.IsOverdue(tk, due.Add(step), time.UTC))
	}
}

func TestSortForDisplay(t *testing.T) {
	tasks := []task.Task{
		{ID: "c", Date: "2024-03-16", Time: "08:00"},
		{ID: "a", Date: "2024-03-15", Time: "18:00"},
		{ID: "b", Date: "2024-03-15", Time: "09:00"},
		{ID: "d", Date: "2023-12-31", Time: "23:59"},
	}

	sorted := task.SortForDisplay(tasks)

	ids := make([]string, 0, len(sorted))
	for _, tk := range sorted {
		ids = append(ids, tk.ID)
	}
	assert.Equal(t, []string{"d", "b", "a", "c"}, ids)
	assert.Equal(t, "c", tasks[0].ID, "исходный срез не должен меняться")
}

func TestFilterMatches(t *testing.T) {
	today := "2024-03-15"
	tasks := map[string]task.Task{
		"yesterday": {Date: "2024-03-14"},
		"today":     {Date: "2024-03-15"},
		"tomorrow":  {Date: "2024-03-16"},
		"done":      {Date: "2024-03-10", Completed: true},
	}

	tests := []struct {
		filter   task.Filter
		expected []string
	}{
		{task.FilterAll, []string{"yesterday", "today", "tomorrow", "done"}},
		{task.FilterToday, []string{"today"}},
		{task.FilterUpcoming, []string{"tomorrow"}},
		{task.FilterCompleted, []string{"done"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.filter), func(t *testing.T) {
			var got []string
			for name, tk := range tasks {
				if tt.filter.Matches(tk, today) {
					got = append(got, name)
				}
			}
			assert.ElementsMatch(t, tt.expected, got)
		})
	}
}

func TestParseFilter(t *testing.T) {
	f, ok := task.ParseFilter("")
	require.True(t, ok)
	assert.Equal(t, task.FilterAll, f)

	f, ok = task.ParseFilter("upcoming")
	require.True(t, ok)
	assert.Equal(t, task.FilterUpcoming, f)

	_, ok = task.ParseFilter("overdue")
	assert.False(t, ok)
}

func TestNewWithDraft(t *testing.T) {
	created := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	tk := task.New("id-1", created, task.WithDraft(task.Draft{
		Title: "  Submit report ",
		Date:  "2024-03-15",
		Time:  "09:00",
	}), task.WithDescription(""))

	assert.Equal(t, "id-1", tk.ID)
	assert.Equal(t, "Submit report", tk.Title)
	assert.Equal(t, "", tk.Description)
	assert.False(t, tk.Completed)
	assert.Equal(t, created, tk.Created)
	assert.Equal(t, "Submit report", tk.Draft().Title)
}
