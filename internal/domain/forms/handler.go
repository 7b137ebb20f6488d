package forms

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rahaft/bcasco-site/internal/domain/authz"
	"github.com/rahaft/bcasco-site/internal/domain/events"
	"github.com/rahaft/bcasco-site/internal/middleware"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes: el envío es público; los listados son sólo para editores.
func RegisterRoutes(r chi.Router, svc *Service, policy *authz.Policy) {
	r.Route("/forms", func(fr chi.Router) {
		fr.Post("/questions", submitQuestionHandler(svc))
		fr.Post("/feedback", submitFeedbackHandler(svc))
	})

	r.Route("/admin/forms", func(ar chi.Router) {
		ar.Get("/questions", listQuestionsHandler(svc, policy))
		ar.Get("/feedback", listFeedbackHandler(svc, policy))
	})
}

type questionRequest struct {
	EventID  string `json:"event_id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Question string `json:"question"`
	Comments string `json:"comments"`
}

type feedbackRequest struct {
	EventID string `json:"event_id"`
	Rating  int    `json:"rating"`
	Notes   string `json:"notes"`
	Name    string `json:"name"`
	Email   string `json:"email"`
}

type questionResponse struct {
	ID          string    `json:"id"`
	EventID     string    `json:"event_id"`
	EventTitle  string    `json:"event_title"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Question    string    `json:"question"`
	Comments    string    `json:"comments,omitempty"`
	SubmittedAt time.Time `json:"submitted_at"`
}

type feedbackResponse struct {
	ID          string    `json:"id"`
	EventID     string    `json:"event_id"`
	EventTitle  string    `json:"event_title"`
	Rating      int       `json:"rating"`
	Notes       string    `json:"notes,omitempty"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// submitQuestionHandler godoc
// @Summary Enviar una pregunta sobre un evento
// @Description Se guarda primero; el envío a la planilla y el aviso por email van por la cola saliente.
// @Tags forms
// @Accept json
// @Produce json
// @Param payload body questionRequest true "Pregunta"
// @Success 201 {object} questionResponse
// @Failure 400 {string} string "invalid json / campos requeridos"
// @Failure 404 {string} string "event not found"
// @Router /forms/questions [post]
func submitQuestionHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req questionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		q, err := svc.SubmitQuestion(r.Context(), QuestionInput{
			EventID:  req.EventID,
			Name:     req.Name,
			Email:    req.Email,
			Question: req.Question,
			Comments: req.Comments,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toQuestionResponse(q))
	}
}

// submitFeedbackHandler godoc
// @Summary Enviar feedback de un evento
// @Description rating 1..5. Sólo para eventos que ya empezaron (fecha <= hoy).
// @Tags forms
// @Accept json
// @Produce json
// @Param payload body feedbackRequest true "Feedback"
// @Success 201 {object} feedbackResponse
// @Failure 400 {string} string "invalid json / rating inválido"
// @Failure 404 {string} string "event not found"
// @Failure 409 {string} string "event has not started"
// @Router /forms/feedback [post]
func submitFeedbackHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req feedbackRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		f, err := svc.SubmitFeedback(r.Context(), FeedbackInput{
			EventID: req.EventID,
			Rating:  req.Rating,
			Notes:   req.Notes,
			Name:    req.Name,
			Email:   req.Email,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toFeedbackResponse(f))
	}
}

// listQuestionsHandler godoc
// @Summary Preguntas recibidas
// @Tags admin
// @Produce json
// @Param event_id query string false "Filtrar por evento"
// @Success 200 {array} questionResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Router /admin/forms/questions [get]
func listQuestionsHandler(svc *Service, policy *authz.Policy) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireEditor(w, r, policy) {
			return
		}
		items, err := svc.ListQuestions(r.Context(), r.URL.Query().Get("event_id"))
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		out := make([]questionResponse, 0, len(items))
		for _, q := range items {
			out = append(out, toQuestionResponse(q))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// listFeedbackHandler godoc
// @Summary Feedback recibido
// @Tags admin
// @Produce json
// @Param event_id query string false "Filtrar por evento"
// @Success 200 {array} feedbackResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Router /admin/forms/feedback [get]
func listFeedbackHandler(svc *Service, policy *authz.Policy) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requireEditor(w, r, policy) {
			return
		}
		items, err := svc.ListFeedback(r.Context(), r.URL.Query().Get("event_id"))
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		out := make([]feedbackResponse, 0, len(items))
		for _, f := range items {
			out = append(out, toFeedbackResponse(f))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func requireEditor(w http.ResponseWriter, r *http.Request, policy *authz.Policy) bool {
	id := middleware.GetIdentity(r.Context())
	if id == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return false
	}
	if !policy.IsEditor(id) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return false
	}
	return true
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrInvalidRating):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, events.ErrNotFound):
		http.Error(w, "event not found", http.StatusNotFound)
	case errors.Is(err, ErrEventNotStarted):
		http.Error(w, "event has not started", http.StatusConflict)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toQuestionResponse(q Question) questionResponse {
	return questionResponse{
		ID:          q.ID,
		EventID:     q.EventID,
		EventTitle:  q.EventTitle,
		Name:        q.Name,
		Email:       q.Email,
		Question:    q.Question,
		Comments:    q.Comments,
		SubmittedAt: q.SubmittedAt,
	}
}

func toFeedbackResponse(f Feedback) feedbackResponse {
	return feedbackResponse{
		ID:          f.ID,
		EventID:     f.EventID,
		EventTitle:  f.EventTitle,
		Rating:      f.Rating,
		Notes:       f.Notes,
		Name:        f.Name,
		Email:       f.Email,
		SubmittedAt: f.SubmittedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
