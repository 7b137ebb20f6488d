package events

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrInvalidDate  = errors.New("date must be YYYY-MM-DD")
	ErrInvalidField = errors.New("field must be title or notes")
	ErrNotFound     = errors.New("event not found")
	ErrEditInFlight = errors.New("edit already in flight for event")
	ErrCommitFailed = errors.New("event update failed")
)

// DateLayout es el formato de Event.Date. Al ser ISO, comparar strings ordena por fecha.
const DateLayout = "2006-01-02"

// DateOf es el día calendario de t en UTC; "hoy" se decide siempre así.
func DateOf(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// MaxBatch es el tope de escrituras por lote del store.
const MaxBatch = 500

// Event es un evento del calendario de BCASCO.
type Event struct {
	ID        string
	Title     string
	Date      string // YYYY-MM-DD
	Time      string // texto libre, p.ej. "10:00 AM - 12:00 Noon"
	Location  string
	Notes     string
	FlyerURL  string
	CreatedAt time.Time
	UpdatedAt time.Time
	UpdatedBy string
}

// HasStarted: el evento es de hoy o anterior (se puede dejar feedback).
func (e Event) HasStarted(today string) bool {
	return e.Date <= today
}

// Field son los campos editables con el editor por prompt.
type Field string

const (
	FieldTitle Field = "title"
	FieldNotes Field = "notes"
)

func ParseField(s string) (Field, error) {
	switch f := Field(strings.ToLower(strings.TrimSpace(s))); f {
	case FieldTitle, FieldNotes:
		return f, nil
	default:
		return "", ErrInvalidField
	}
}

func (e Event) Value(f Field) string {
	switch f {
	case FieldTitle:
		return e.Title
	case FieldNotes:
		return e.Notes
	}
	return ""
}

// Patch es una escritura de un campo dentro de un lote.
type Patch struct {
	EventID   string
	Field     Field
	Value     string
	UpdatedBy string
}

func ValidateDate(s string) error {
	if _, err := time.Parse(DateLayout, strings.TrimSpace(s)); err != nil {
		return ErrInvalidDate
	}
	return nil
}
