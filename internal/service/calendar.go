package service

import (
	"fmt"
	"strings"
	"time"

	"taskPlanner/internal/clock"
	"taskPlanner/internal/models/event"
)

const DefaultPreviewLimit = 2

type DayCell struct {
	Date       string        `json:"date"`
	Day        int           `json:"day"`
	InMonth    bool          `json:"in_month"`
	Today      bool          `json:"today"`
	Count      int           `json:"count"`
	CountLabel string        `json:"count_label"`
	Preview    []event.Event `json:"preview"`
	More       int           `json:"more"`
}

type MonthView struct {
	Month string    `json:"month"`
	Title string    `json:"title"`
	Days  []DayCell `json:"days"`
}

// MonthView сетка месяца anchor из 42 дней с превью событий
func (s *EventService) MonthView(anchor time.Time) MonthView {
	if anchor.IsZero() {
		anchor = s.now()
	}
	anchor = anchor.In(s.loc)
	today := clock.Today(s.now().In(s.loc))
	byDate := s.groupByDate()

	grid := clock.MonthGrid(anchor)
	days := make([]DayCell, 0, len(grid))
	for _, d := range grid {
		date := clock.FormatDate(d)
		events := byDate[date]

		preview := events
		more := 0
		if len(events) > s.previewLimit {
			preview = events[:s.previewLimit]
			more = len(events) - s.previewLimit
		}
		if preview == nil {
			preview = []event.Event{}
		}

		days = append(days, DayCell{
			Date:       date,
			Day:        d.Day(),
			InMonth:    clock.IsSameMonth(d, anchor),
			Today:      date == today,
			Count:      len(events),
			CountLabel: EventCountLabel(len(events)),
			Preview:    preview,
			More:       more,
		})
	}

	return MonthView{
		Month: anchor.Format(clock.MonthLayout),
		Title: clock.MonthTitle(anchor),
		Days:  days,
	}
}

// MonthViewOf разбирает месяц YYYY-MM в зоне планировщика; пустая строка это текущий месяц
func (s *EventService) MonthViewOf(month string) (MonthView, error) {
	if strings.TrimSpace(month) == "" {
		return s.MonthView(time.Time{}), nil
	}
	anchor, err := clock.ParseMonth(month, s.loc)
	if err != nil {
		return MonthView{}, NewValidationError("month", "ожидается формат YYYY-MM")
	}
	return s.MonthView(anchor), nil
}

// EventCountLabel "1 событие", "3 события", "5 событий"; для пустого дня пусто
func EventCountLabel(n int) string {
	if n <= 0 {
		return ""
	}
	return fmt.Sprintf("%d %s", n, pluralRu(n, "событие", "события", "событий"))
}

func pluralRu(n int, one, few, many string) string {
	n100 := n % 100
	n10 := n % 10
	switch {
	case n100 >= 11 && n100 <= 14:
		return many
	case n10 == 1:
		return one
	case n10 >= 2 && n10 <= 4:
		return few
	default:
		return many
	}
}
