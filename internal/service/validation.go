package service

import (
	"strings"
	"time"

	"taskPlanner/internal/clock"
)

func validateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return NewValidationError("title", "название не может быть пустым")
	}
	return nil
}

// validateSchedule дата и время обязательны и вместе должны давать момент времени
func validateSchedule(date, clockTime string, loc *time.Location) error {
	if strings.TrimSpace(date) == "" {
		return NewValidationError("date", "дата обязательна")
	}
	if _, err := clock.ParseDate(date, loc); err != nil {
		return NewValidationError("date", "ожидается формат YYYY-MM-DD")
	}
	if strings.TrimSpace(clockTime) == "" {
		return NewValidationError("time", "время обязательно")
	}
	if _, err := clock.DueInstant(date, clockTime, loc); err != nil {
		return NewValidationError("time", "ожидается формат HH:mm")
	}
	return nil
}
