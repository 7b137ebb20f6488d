package relay

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rahaft/bcasco-site/internal/domain/authz"
	"github.com/rahaft/bcasco-site/internal/middleware"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes monta la administración del outbox. Todas las rutas exigen editor.
func RegisterRoutes(r chi.Router, svc *Service, policy *authz.Policy) {
	r.Route("/admin/relay", func(rr chi.Router) {
		rr.Use(requireEditor(policy))

		rr.Get("/", listEntriesHandler(svc))
		rr.Post("/process", processHandler(svc))
		rr.Get("/{entryID}", getEntryHandler(svc))
		rr.Post("/{entryID}/retry", retryHandler(svc))
		rr.Post("/{entryID}/abandon", abandonHandler(svc))
	})
}

type entryResponse struct {
	ID              string     `json:"id"`
	Action          Action     `json:"action"`
	Payload         string     `json:"payload"`
	Status          string     `json:"status"`
	Attempts        int        `json:"attempts"`
	MaxAttempts     int        `json:"max_attempts"`
	LastAttemptedAt *time.Time `json:"last_attempted_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	ErrorMessage    string     `json:"error_message,omitempty"`
}

type abandonRequest struct {
	Reason string `json:"reason"`
}

// listEntriesHandler godoc
// @Summary Listar entradas del outbox
// @Tags admin
// @Produce json
// @Param status query string false "pending | retrying | done | failed | abandoned"
// @Success 200 {array} entryResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Router /admin/relay [get]
func listEntriesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.List(r.Context(), r.URL.Query().Get("status"))
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		out := make([]entryResponse, 0, len(items))
		for _, e := range items {
			out = append(out, toEntryResponse(e))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// getEntryHandler godoc
// @Summary Obtener una entrada del outbox
// @Tags admin
// @Produce json
// @Param entryID path string true "ID de la entrada"
// @Success 200 {object} entryResponse
// @Failure 404 {string} string "relay entry not found"
// @Router /admin/relay/{entryID} [get]
func getEntryHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		e, err := svc.Get(r.Context(), chi.URLParam(r, "entryID"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toEntryResponse(e))
	}
}

// processHandler godoc
// @Summary Procesar el outbox ahora
// @Description Una pasada del procesador (respeta el backoff).
// @Tags admin
// @Produce json
// @Success 200 {object} ProcessReport
// @Router /admin/relay/process [post]
func processHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rep, err := svc.ProcessPending(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, rep)
	}
}

// retryHandler godoc
// @Summary Reintentar una entrada
// @Description Entrega inmediata sin esperar el backoff. El resultado del intento queda en la entrada.
// @Tags admin
// @Produce json
// @Param entryID path string true "ID de la entrada"
// @Success 200 {object} entryResponse
// @Failure 404 {string} string "relay entry not found"
// @Failure 409 {string} string "relay entry is in a terminal state"
// @Router /admin/relay/{entryID}/retry [post]
func retryHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		e, err := svc.Retry(r.Context(), chi.URLParam(r, "entryID"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toEntryResponse(e))
	}
}

// abandonHandler godoc
// @Summary Abandonar una entrada
// @Description Marca la entrada como abandoned; el procesador no la vuelve a tomar.
// @Tags admin
// @Accept json
// @Produce json
// @Param entryID path string true "ID de la entrada"
// @Param payload body abandonRequest false "Motivo"
// @Success 200 {object} entryResponse
// @Failure 400 {string} string "invalid json"
// @Failure 404 {string} string "relay entry not found"
// @Failure 409 {string} string "relay entry is in a terminal state"
// @Router /admin/relay/{entryID}/abandon [post]
func abandonHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req abandonRequest
		if r.ContentLength > 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "invalid json", http.StatusBadRequest)
				return
			}
		}
		e, err := svc.Abandon(r.Context(), chi.URLParam(r, "entryID"), req.Reason)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toEntryResponse(e))
	}
}

func requireEditor(policy *authz.Policy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := middleware.GetIdentity(r.Context())
			if id == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			if !policy.IsEditor(id) {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		http.Error(w, "relay entry not found", http.StatusNotFound)
	case errors.Is(err, ErrTerminal):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toEntryResponse(e Entry) entryResponse {
	out := entryResponse{
		ID:           e.ID,
		Action:       e.Action,
		Payload:      e.Payload,
		Status:       e.Status,
		Attempts:     e.Attempts,
		MaxAttempts:  e.MaxAttempts,
		CreatedAt:    e.CreatedAt,
		ErrorMessage: e.ErrorMessage,
	}
	if !e.LastAttemptedAt.IsZero() {
		t := e.LastAttemptedAt
		out.LastAttemptedAt = &t
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
