package forms

import (
	"errors"
	"time"
)

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrInvalidRating   = errors.New("rating must be between 1 and 5")
	ErrEventNotStarted = errors.New("feedback is only accepted once the event has started")
)

// Kind es el discriminante "type" que recibe la planilla.
type Kind string

const (
	KindQuestion Kind = "question"
	KindFeedback Kind = "feedback"
)

const (
	MinRating = 1
	MaxRating = 5
)

// Question es una pregunta sobre un evento (colección eventQuestions).
type Question struct {
	ID          string
	EventID     string
	EventTitle  string
	Name        string
	Email       string
	Question    string
	Comments    string
	SubmittedAt time.Time
}

// Feedback es una encuesta post-evento (colección eventSurveys).
type Feedback struct {
	ID          string
	EventID     string
	EventTitle  string
	Rating      int
	Notes       string
	Name        string
	Email       string
	SubmittedAt time.Time
}
