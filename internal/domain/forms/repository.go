package forms

import "context"

type Repository interface {
	// AddQuestion guarda y devuelve el id generado; SubmittedAt lo pone el store.
	AddQuestion(ctx context.Context, q Question) (string, error)
	AddFeedback(ctx context.Context, f Feedback) (string, error)
	// eventID vacío = todos.
	ListQuestions(ctx context.Context, eventID string) ([]Question, error)
	ListFeedback(ctx context.Context, eventID string) ([]Feedback, error)
}
