package events

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rahaft/bcasco-site/internal/domain/authz"
	"github.com/rahaft/bcasco-site/internal/domain/identity"
	"github.com/rahaft/bcasco-site/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/events", func(er chi.Router) {
		er.Get("/", listEventsHandler(svc))
		er.Post("/", createEventHandler(svc))
		er.Get("/{eventID}", getEventHandler(svc))

		// Editor por prompt (title / notes)
		er.Post("/{eventID}/fields/{field}", editFieldHandler(svc))
	})

	r.Route("/admin/events", func(ar chi.Router) {
		ar.Post("/strip-refreshments", stripRefreshmentsHandler(svc))
		ar.Post("/seed", seedEventsHandler(svc))
	})
}

type createEventRequest struct {
	Title    string `json:"title"`
	Date     string `json:"date"` // YYYY-MM-DD
	Time     string `json:"time"`
	Location string `json:"location"`
	Notes    string `json:"notes"`
	FlyerURL string `json:"flyer_url"`
}

type eventResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Date      string    `json:"date"`
	Time      string    `json:"time"`
	Location  string    `json:"location"`
	Notes     string    `json:"notes"`
	FlyerURL  string    `json:"flyer_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	UpdatedBy string    `json:"updated_by,omitempty"`
}

type listEventsResponse struct {
	Today    string          `json:"today"`
	Upcoming []eventResponse `json:"upcoming"`
	Past     []eventResponse `json:"past"`
}

// Value ausente o null = prompt descartado.
type editFieldRequest struct {
	Value *string `json:"value"`
}

type editFieldResponse struct {
	Result EditResult    `json:"result"`
	Event  eventResponse `json:"event"`
}

// listEventsHandler godoc
// @Summary Listar eventos
// @Description Próximos (fecha > hoy, ascendente) y pasados (fecha <= hoy, descendente). when=upcoming|past filtra.
// @Tags events
// @Produce json
// @Param when query string false "upcoming | past"
// @Success 200 {object} listEventsResponse
// @Failure 500 {string} string "internal error"
// @Router /events [get]
func listEventsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		today := svc.Today()
		upcoming, past, err := svc.Partition(r.Context(), today)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		resp := listEventsResponse{Today: today, Upcoming: toEventResponses(upcoming), Past: toEventResponses(past)}
		switch strings.ToLower(r.URL.Query().Get("when")) {
		case "upcoming":
			resp.Past = []eventResponse{}
		case "past":
			resp.Upcoming = []eventResponse{}
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// getEventHandler godoc
// @Summary Obtener un evento
// @Tags events
// @Produce json
// @Param eventID path string true "ID del evento"
// @Success 200 {object} eventResponse
// @Failure 404 {string} string "event not found"
// @Router /events/{eventID} [get]
func getEventHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		e, err := svc.Get(r.Context(), chi.URLParam(r, "eventID"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toEventResponse(e))
	}
}

// createEventHandler godoc
// @Summary Crear evento
// @Description Solo editores (allow-list). Autenticación: `X-Debug-User-ID` + `X-Debug-User-Email` (dev) o `Authorization: Bearer <token>`.
// @Tags events
// @Accept json
// @Produce json
// @Param payload body createEventRequest true "Evento; date en formato YYYY-MM-DD"
// @Success 201 {object} eventResponse
// @Failure 400 {string} string "invalid json / reglas de negocio"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Router /events [post]
func createEventHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireEditor(w, r, svc)
		if !ok {
			return
		}

		var req createEventRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		e, err := svc.Create(r.Context(), actor, CreateInput{
			Title:    req.Title,
			Date:     req.Date,
			Time:     req.Time,
			Location: req.Location,
			Notes:    req.Notes,
			FlyerURL: req.FlyerURL,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toEventResponse(e))
	}
}

// editFieldHandler godoc
// @Summary Editar title o notes de un evento
// @Description value null/ausente (prompt descartado) o igual al actual => result=cancelled sin escritura. "" es válido. El valor se guarda trimmeado.
// @Tags events
// @Accept json
// @Produce json
// @Param eventID path string true "ID del evento"
// @Param field path string true "title | notes"
// @Param payload body editFieldRequest true "Nuevo valor"
// @Success 200 {object} editFieldResponse
// @Failure 400 {string} string "invalid json / field inválido"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "event not found"
// @Failure 409 {string} string "edit already in flight"
// @Failure 502 {string} string "event update failed"
// @Router /events/{eventID}/fields/{field} [post]
func editFieldHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireEditor(w, r, svc)
		if !ok {
			return
		}

		field, err := ParseField(chi.URLParam(r, "field"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		var req editFieldRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		out, err := svc.EditField(r.Context(), FieldEdit{
			EventID:  chi.URLParam(r, "eventID"),
			Field:    field,
			Prompted: req.Value,
			Actor:    actor,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, editFieldResponse{Result: out.Result, Event: toEventResponse(out.Event)})
	}
}

// stripRefreshmentsHandler godoc
// @Summary Quitar "and Refreshments" de las notas
// @Description Idempotente. Devuelve conteos por ítem.
// @Tags admin
// @Produce json
// @Success 200 {object} Report
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Router /admin/events/strip-refreshments [post]
func stripRefreshmentsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireEditor(w, r, svc)
		if !ok {
			return
		}
		rep, err := svc.StripRefreshments(r.Context(), actor)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, rep)
	}
}

// seedEventsHandler godoc
// @Summary Cargar el calendario base
// @Description Idempotente: un evento con el mismo título y fecha se saltea.
// @Tags admin
// @Produce json
// @Success 200 {object} Report
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Router /admin/events/seed [post]
func seedEventsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireEditor(w, r, svc)
		if !ok {
			return
		}
		rep, err := svc.Seed(r.Context(), actor, DefaultCalendar())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, rep)
	}
}

func requireEditor(w http.ResponseWriter, r *http.Request, svc *Service) (*identity.Identity, bool) {
	id := middleware.GetIdentity(r.Context())
	if id == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return nil, false
	}
	if !svc.Policy().IsEditor(id) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return nil, false
	}
	return id, true
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, authz.ErrNotEditor):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "event not found", http.StatusNotFound)
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrInvalidDate), errors.Is(err, ErrInvalidField):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrEditInFlight):
		http.Error(w, "edit already in flight", http.StatusConflict)
	case errors.Is(err, ErrCommitFailed):
		http.Error(w, "event update failed", http.StatusBadGateway)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toEventResponses(items []Event) []eventResponse {
	out := make([]eventResponse, 0, len(items))
	for _, e := range items {
		out = append(out, toEventResponse(e))
	}
	return out
}

func toEventResponse(e Event) eventResponse {
	return eventResponse{
		ID:        e.ID,
		Title:     e.Title,
		Date:      e.Date,
		Time:      e.Time,
		Location:  e.Location,
		Notes:     e.Notes,
		FlyerURL:  e.FlyerURL,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
		UpdatedBy: e.UpdatedBy,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
