package event

import (
	"strings"
	"time"
)

// Event событие календаря, привязанное к одному дню. Выполненным не бывает.
type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Time        string    `json:"time"`
	Date        string    `json:"date"`
	Type        Type      `json:"type"`
	EventFor    Audience  `json:"eventFor"`
	Created     time.Time `json:"created"`
}

type Draft struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Time        string   `json:"time"`
	Date        string   `json:"date"`
	Type        Type     `json:"type"`
	EventFor    Audience `json:"eventFor"`
}

type Type string

const (
	TypeLecture Type = "lecture"
	TypeSeminar Type = "seminar"
	TypeExam    Type = "exam"
	TypeOther   Type = "other"
)

// Types закрытый набор категорий; первая используется по умолчанию
var Types = []Type{TypeLecture, TypeSeminar, TypeExam, TypeOther}

type Audience string

const (
	AudienceAll      Audience = "all"
	AudienceStudents Audience = "students"
	AudienceTeachers Audience = "teachers"
)

var Audiences = []Audience{AudienceAll, AudienceStudents, AudienceTeachers}

// ParseType пустое значение превращается в категорию по умолчанию
func ParseType(s string) (Type, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Types[0], true
	}
	for _, t := range Types {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

func ParseAudience(s string) (Audience, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Audiences[0], true
	}
	for _, a := range Audiences {
		if string(a) == s {
			return a, true
		}
	}
	return "", false
}

// Apply переносит поля черновика в событие; id и created сохраняются.
// Тип и аудитория должны быть уже проверены.
func (d Draft) Apply(e *Event) {
	e.Title = strings.TrimSpace(d.Title)
	e.Description = d.Description
	e.Time = strings.TrimSpace(d.Time)
	e.Date = strings.TrimSpace(d.Date)
	e.Type = d.Type
	e.EventFor = d.EventFor
}
