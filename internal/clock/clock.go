// Package clock содержит чистые функции работы с датами планировщика.
// Даты хранятся строками YYYY-MM-DD, время строками HH:mm.
package clock

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	DateLayout  = "2006-01-02"
	TimeLayout  = "15:04"
	MonthLayout = "2006-01"

	// GridSize 6 полных недель
	GridSize = 42

	// EndOfDay используется, если у задачи не указано время
	EndOfDay = "23:59"
)

var genitiveMonths = [...]string{
	"января", "февраля", "марта", "апреля", "мая", "июня",
	"июля", "августа", "сентября", "октября", "ноября", "декабря",
}

var nominativeMonths = [...]string{
	"Январь", "Февраль", "Март", "Апрель", "Май", "Июнь",
	"Июль", "Август", "Сентябрь", "Октябрь", "Ноябрь", "Декабрь",
}

// Today возвращает календарную дату now в формате YYYY-MM-DD.
func Today(now time.Time) string {
	return now.Format(DateLayout)
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

func FormatTime(t time.Time) string {
	return t.Format(TimeLayout)
}

// ErrNotCanonical значение разбирается, но записано не в фиксированной ширине (например "9:00")
var ErrNotCanonical = errors.New("ожидается формат фиксированной ширины")

// ParseDate принимает только YYYY-MM-DD, строковое сравнение дат опирается на фиксированную ширину
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	t, err := time.ParseInLocation(DateLayout, s, locOrLocal(loc))
	if err != nil {
		return time.Time{}, fmt.Errorf("разбор даты %q: %w", s, err)
	}
	if FormatDate(t) != s {
		return time.Time{}, fmt.Errorf("разбор даты %q: %w", s, ErrNotCanonical)
	}
	return t, nil
}

func ParseMonth(s string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(MonthLayout, strings.TrimSpace(s), locOrLocal(loc))
	if err != nil {
		return time.Time{}, fmt.Errorf("разбор месяца %q: %w", s, err)
	}
	return t, nil
}

// DueInstant собирает момент из даты и времени в заданной зоне.
// Пустое время означает конец дня.
func DueInstant(date, clockTime string, loc *time.Location) (time.Time, error) {
	if strings.TrimSpace(clockTime) == "" {
		clockTime = EndOfDay
	}
	date, clockTime = strings.TrimSpace(date), strings.TrimSpace(clockTime)
	t, err := time.ParseInLocation(DateLayout+" "+TimeLayout, date+" "+clockTime, locOrLocal(loc))
	if err != nil {
		return time.Time{}, fmt.Errorf("разбор срока %q %q: %w", date, clockTime, err)
	}
	// в макете "15" час может быть однозначным
	if FormatDate(t) != date || FormatTime(t) != clockTime {
		return time.Time{}, fmt.Errorf("разбор срока %q %q: %w", date, clockTime, ErrNotCanonical)
	}
	return t, nil
}

func IsSameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func IsSameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}

// CompareDates сравнивает даты YYYY-MM-DD; для формата фиксированной ширины
// лексикографический порядок совпадает с календарным.
func CompareDates(a, b string) int {
	return strings.Compare(a, b)
}

// MondayIndex переводит день недели из time.Weekday (воскресенье = 0)
// в индекс недели, начинающейся с понедельника (понедельник = 0 .. воскресенье = 6).
func MondayIndex(dow time.Weekday) int {
	return (int(dow) + 6) % 7
}

// StartOfMonth первое число месяца anchor в полночь.
func StartOfMonth(anchor time.Time) time.Time {
	return time.Date(anchor.Year(), anchor.Month(), 1, 0, 0, 0, 0, anchor.Location())
}

// MonthGrid возвращает 42 даты сетки месяца: хвост предыдущего месяца,
// все дни месяца anchor и начало следующего. Первая дата всегда понедельник.
func MonthGrid(anchor time.Time) []time.Time {
	first := StartOfMonth(anchor)
	start := first.AddDate(0, 0, -MondayIndex(first.Weekday()))

	grid := make([]time.Time, GridSize)
	for i := range grid {
		grid[i] = start.AddDate(0, 0, i)
	}
	return grid
}

// DueLabel подпись срока задачи: "Сегодня, 09:00", "Завтра, 09:00" или "15 марта, 09:00".
func DueLabel(date, clockTime string, now time.Time) string {
	today := Today(now)
	tomorrow := Today(now.AddDate(0, 0, 1))

	var day string
	switch date {
	case today:
		day = "Сегодня"
	case tomorrow:
		day = "Завтра"
	default:
		t, err := time.Parse(DateLayout, date)
		if err != nil {
			day = date
		} else {
			day = fmt.Sprintf("%d %s", t.Day(), genitiveMonths[t.Month()-1])
		}
	}
	return day + ", " + clockTime
}

// MonthTitle заголовок месяца, например "Март 2024".
func MonthTitle(anchor time.Time) string {
	return fmt.Sprintf("%s %d", nominativeMonths[anchor.Month()-1], anchor.Year())
}

func locOrLocal(loc *time.Location) *time.Location {
	if loc == nil {
		return time.Local
	}
	return loc
}
