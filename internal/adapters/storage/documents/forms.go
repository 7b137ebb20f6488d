package documents

import (
	"context"
	"sort"
	"time"

	"github.com/rahaft/bcasco-site/internal/domain/forms"
	"github.com/rahaft/bcasco-site/internal/ports/docstore"
)

const (
	CollectionQuestions = "eventQuestions"
	CollectionSurveys   = "eventSurveys"
)

type FormsRepo struct {
	store docstore.Store
}

func NewFormsRepo(store docstore.Store) *FormsRepo {
	return &FormsRepo{store: store}
}

var _ forms.Repository = (*FormsRepo)(nil)

type questionDoc struct {
	EventID     string    `json:"eventId"`
	EventTitle  string    `json:"eventTitle"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Question    string    `json:"question"`
	Comments    string    `json:"comments"`
	SubmittedAt time.Time `json:"submittedAt"`
}

type feedbackDoc struct {
	EventID     string    `json:"eventId"`
	EventTitle  string    `json:"eventTitle"`
	Rating      int       `json:"rating"`
	Notes       string    `json:"notes"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	SubmittedAt time.Time `json:"submittedAt"`
}

func (r *FormsRepo) AddQuestion(ctx context.Context, q forms.Question) (string, error) {
	return r.store.Add(ctx, CollectionQuestions, map[string]any{
		"eventId":     q.EventID,
		"eventTitle":  q.EventTitle,
		"name":        q.Name,
		"email":       q.Email,
		"question":    q.Question,
		"comments":    q.Comments,
		"submittedAt": docstore.ServerTimestamp,
	})
}

func (r *FormsRepo) AddFeedback(ctx context.Context, f forms.Feedback) (string, error) {
	return r.store.Add(ctx, CollectionSurveys, map[string]any{
		"eventId":     f.EventID,
		"eventTitle":  f.EventTitle,
		"rating":      f.Rating,
		"notes":       f.Notes,
		"name":        f.Name,
		"email":       f.Email,
		"submittedAt": docstore.ServerTimestamp,
	})
}

// ListQuestions devuelve las preguntas en orden de llegada.
func (r *FormsRepo) ListQuestions(ctx context.Context, eventID string) ([]forms.Question, error) {
	docs, err := r.store.List(ctx, CollectionQuestions)
	if err != nil {
		return nil, err
	}
	out := make([]forms.Question, 0, len(docs))
	for _, doc := range docs {
		var d questionDoc
		if err := doc.Decode(&d); err != nil {
			return nil, err
		}
		if eventID != "" && d.EventID != eventID {
			continue
		}
		out = append(out, forms.Question{
			ID:          doc.Key,
			EventID:     d.EventID,
			EventTitle:  d.EventTitle,
			Name:        d.Name,
			Email:       d.Email,
			Question:    d.Question,
			Comments:    d.Comments,
			SubmittedAt: d.SubmittedAt,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SubmittedAt.Before(out[j].SubmittedAt) })
	return out, nil
}

func (r *FormsRepo) ListFeedback(ctx context.Context, eventID string) ([]forms.Feedback, error) {
	docs, err := r.store.List(ctx, CollectionSurveys)
	if err != nil {
		return nil, err
	}
	out := make([]forms.Feedback, 0, len(docs))
	for _, doc := range docs {
		var d feedbackDoc
		if err := doc.Decode(&d); err != nil {
			return nil, err
		}
		if eventID != "" && d.EventID != eventID {
			continue
		}
		out = append(out, forms.Feedback{
			ID:          doc.Key,
			EventID:     d.EventID,
			EventTitle:  d.EventTitle,
			Rating:      d.Rating,
			Notes:       d.Notes,
			Name:        d.Name,
			Email:       d.Email,
			SubmittedAt: d.SubmittedAt,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SubmittedAt.Before(out[j].SubmittedAt) })
	return out, nil
}
