package content

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rahaft/bcasco-site/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, ws *Workspaces) {
	// Lectura pública (visitante sin sesión)
	r.Get("/pages/{page}/content", pageContentHandler(ws))

	r.Route("/sessions", func(sr chi.Router) {
		sr.Post("/", openSessionHandler(ws))

		sr.Route("/{sessionID}", func(s chi.Router) {
			s.Get("/", getSessionHandler(ws))
			s.Delete("/", closeSessionHandler(ws))

			// login / logout sobre el hub del workspace
			s.Put("/identity", loginHandler(ws))
			s.Delete("/identity", logoutHandler(ws))

			s.Post("/pages/{page}/regions", registerRegionsHandler(ws))
			s.Get("/pages/{page}/regions", listRegionsHandler(ws))

			s.Route("/regions/{page}/{regionID}", func(rr chi.Router) {
				rr.Post("/focus", focusHandler(ws))
				rr.Put("/input", inputHandler(ws))
				rr.Post("/commit", commitHandler(ws))
				rr.Post("/key", keyHandler(ws))
				rr.Post("/cancel", cancelHandler(ws))
			})
		})
	})
}

type sessionResponse struct {
	ID      string           `json:"id"`
	Editor  bool             `json:"editor"`
	Regions []regionResponse `json:"regions"`
}

type registerRegionsRequest struct {
	Regions []struct {
		RegionID  string `json:"region_id"`
		Authored  string `json:"authored"`
		Multiline bool   `json:"multiline"`
	} `json:"regions"`
}

type regionResponse struct {
	Page      string     `json:"page"`
	RegionID  string     `json:"region_id"`
	Content   string     `json:"content"`
	Baseline  string     `json:"baseline"`
	Dirty     bool       `json:"dirty"`
	Multiline bool       `json:"multiline"`
	Editable  bool       `json:"editable"`
	Status    Status     `json:"status"`
	Source    Source     `json:"source"`
	SavedAt   *time.Time `json:"saved_at,omitempty"`
	Error     string     `json:"error,omitempty"`
}

type focusResponse struct {
	ShowHint bool   `json:"show_hint"`
	Hint     string `json:"hint,omitempty"`
}

type inputRequest struct {
	Content string `json:"content"`
}

type keyRequest struct {
	Key   string `json:"key"`
	Shift bool   `json:"shift"`
}

type outcomeResponse struct {
	Result Result         `json:"result"`
	Region regionResponse `json:"region"`
	Error  string         `json:"error,omitempty"`
}

// pageContentHandler godoc
// @Summary Contenido persistido de una página
// @Description Devuelve region_id => contenido guardado. Las regiones sin registro no aparecen (se usa el contenido authored).
// @Tags content
// @Produce json
// @Param page path string true "Página (p.ej. home)"
// @Success 200 {object} map[string]string
// @Failure 500 {string} string "internal error"
// @Router /pages/{page}/content [get]
func pageContentHandler(ws *Workspaces) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := ws.PageContent(r.Context(), chi.URLParam(r, "page"))
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// openSessionHandler godoc
// @Summary Abrir sesión de edición
// @Description Crea un workspace. Si el request trae identidad (Bearer o X-Debug-User-*), se publica de entrada.
// @Tags content
// @Produce json
// @Param Authorization header string false "Bearer token en producción"
// @Param X-Debug-User-Email header string false "Solo en modo dev"
// @Success 201 {object} sessionResponse
// @Router /sessions [post]
func openSessionHandler(ws *Workspaces) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		wsp := ws.Open(middleware.GetIdentity(r.Context()))
		writeJSON(w, http.StatusCreated, ws.toSessionResponse(wsp))
	}
}

// getSessionHandler godoc
// @Summary Estado de la sesión
// @Tags content
// @Produce json
// @Param sessionID path string true "ID de la sesión"
// @Success 200 {object} sessionResponse
// @Failure 403 {string} string "session belongs to another user"
// @Failure 404 {string} string "session not found"
// @Router /sessions/{sessionID} [get]
func getSessionHandler(ws *Workspaces) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		wsp, ok := loadOwnedWorkspace(w, r, ws)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, ws.toSessionResponse(wsp))
	}
}

// closeSessionHandler godoc
// @Summary Cerrar la sesión (unload de la página)
// @Tags content
// @Param sessionID path string true "ID de la sesión"
// @Success 204
// @Failure 403 {string} string "session belongs to another user"
// @Failure 404 {string} string "session not found"
// @Router /sessions/{sessionID} [delete]
func closeSessionHandler(ws *Workspaces) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := loadOwnedWorkspace(w, r, ws); !ok {
			return
		}
		if err := ws.Close(chi.URLParam(r, "sessionID")); err != nil {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// loginHandler godoc
// @Summary Publicar identidad en la sesión
// @Description Equivale a un login: el Gate reevalúa la allow-list y activa o desactiva la edición.
// @Tags content
// @Produce json
// @Param sessionID path string true "ID de la sesión"
// @Success 200 {object} sessionResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "session belongs to another user"
// @Failure 404 {string} string "session not found"
// @Router /sessions/{sessionID}/identity [put]
func loginHandler(ws *Workspaces) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := middleware.GetIdentity(r.Context())
		if id == nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if _, ok := loadOwnedWorkspace(w, r, ws); !ok {
			return
		}
		wsp, err := ws.SetIdentity(chi.URLParam(r, "sessionID"), id)
		if err != nil {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, ws.toSessionResponse(wsp))
	}
}

// logoutHandler godoc
// @Summary Logout: publica identidad vacía
// @Tags content
// @Produce json
// @Param sessionID path string true "ID de la sesión"
// @Success 200 {object} sessionResponse
// @Failure 403 {string} string "session belongs to another user"
// @Failure 404 {string} string "session not found"
// @Router /sessions/{sessionID}/identity [delete]
func logoutHandler(ws *Workspaces) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := loadOwnedWorkspace(w, r, ws); !ok {
			return
		}
		wsp, err := ws.SetIdentity(chi.URLParam(r, "sessionID"), nil)
		if err != nil {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, ws.toSessionResponse(wsp))
	}
}

// registerRegionsHandler godoc
// @Summary Registrar regiones editables de una página
// @Description Evento "region registered": idempotente por (page, region_id). Carga el contenido persistido o deja el authored.
// @Tags content
// @Accept json
// @Produce json
// @Param sessionID path string true "ID de la sesión"
// @Param page path string true "Página"
// @Param payload body registerRegionsRequest true "Regiones"
// @Success 200 {array} regionResponse
// @Failure 400 {string} string "invalid json / region_id requerido"
// @Failure 403 {string} string "session belongs to another user"
// @Failure 404 {string} string "session not found"
// @Router /sessions/{sessionID}/pages/{page}/regions [post]
func registerRegionsHandler(ws *Workspaces) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		wsp, ok := loadOwnedWorkspace(w, r, ws)
		if !ok {
			return
		}

		var req registerRegionsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		page := chi.URLParam(r, "page")
		specs := make([]RegionSpec, 0, len(req.Regions))
		for _, rg := range req.Regions {
			specs = append(specs, RegionSpec{Page: page, RegionID: rg.RegionID, Authored: rg.Authored, Multiline: rg.Multiline})
		}

		regions, err := wsp.Registry.RegisterPage(r.Context(), specs)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusOK, ws.toRegionResponses(regions))
	}
}

// listRegionsHandler godoc
// @Summary Regiones registradas de una página, con su estado de edición
// @Tags content
// @Produce json
// @Param sessionID path string true "ID de la sesión"
// @Param page path string true "Página"
// @Success 200 {array} regionResponse
// @Failure 403 {string} string "session belongs to another user"
// @Failure 404 {string} string "session not found"
// @Router /sessions/{sessionID}/pages/{page}/regions [get]
func listRegionsHandler(ws *Workspaces) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		wsp, ok := loadOwnedWorkspace(w, r, ws)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, ws.toRegionResponses(wsp.Registry.List(chi.URLParam(r, "page"))))
	}
}

// focusHandler godoc
// @Summary Foco en una región
// @Description show_hint es true solo en el primer foco de la sesión.
// @Tags content
// @Produce json
// @Param sessionID path string true "ID de la sesión"
// @Param page path string true "Página"
// @Param regionID path string true "Región"
// @Success 200 {object} focusResponse
// @Failure 403 {string} string "region not editable / session belongs to another user"
// @Failure 404 {string} string "session / region not found"
// @Router /sessions/{sessionID}/regions/{page}/{regionID}/focus [post]
func focusHandler(ws *Workspaces) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		wsp, key, ok := loadRegion(w, r, ws)
		if !ok {
			return
		}
		hint, err := wsp.Controller.Focus(key)
		if err != nil {
			writeEditError(w, err)
			return
		}
		resp := focusResponse{ShowHint: hint}
		if hint {
			resp.Hint = EditHint
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// inputHandler godoc
// @Summary Texto actual de la región (sin escribir)
// @Tags content
// @Accept json
// @Produce json
// @Param sessionID path string true "ID de la sesión"
// @Param page path string true "Página"
// @Param regionID path string true "Región"
// @Param payload body inputRequest true "Contenido"
// @Success 200 {object} regionResponse
// @Failure 400 {string} string "invalid json"
// @Failure 403 {string} string "region not editable / session belongs to another user"
// @Failure 404 {string} string "session / region not found"
// @Router /sessions/{sessionID}/regions/{page}/{regionID}/input [put]
func inputHandler(ws *Workspaces) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		wsp, key, ok := loadRegion(w, r, ws)
		if !ok {
			return
		}
		var req inputRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		region, err := wsp.Controller.Input(key, req.Content)
		if err != nil {
			writeEditError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, ws.toRegionResponse(region))
	}
}

// commitHandler godoc
// @Summary Confirmar la edición de una región (blur)
// @Description Sin cambios => result=unchanged y no hay escritura. Un fallo del store devuelve 200 con result=error y la región revertida al baseline.
// @Tags content
// @Produce json
// @Param sessionID path string true "ID de la sesión"
// @Param page path string true "Página"
// @Param regionID path string true "Región"
// @Success 200 {object} outcomeResponse
// @Failure 403 {string} string "region not editable / session belongs to another user"
// @Failure 404 {string} string "session / region not found"
// @Failure 409 {string} string "commit already in flight"
// @Router /sessions/{sessionID}/regions/{page}/{regionID}/commit [post]
func commitHandler(ws *Workspaces) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		wsp, key, ok := loadRegion(w, r, ws)
		if !ok {
			return
		}
		out, err := wsp.Controller.Commit(r.Context(), key)
		if err != nil {
			writeEditError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, ws.toOutcomeResponse(out))
	}
}

// keyHandler godoc
// @Summary Tecla en una región
// @Description Enter sin Shift en región de una línea hace commit; Escape cancela; el resto es ignored.
// @Tags content
// @Accept json
// @Produce json
// @Param sessionID path string true "ID de la sesión"
// @Param page path string true "Página"
// @Param regionID path string true "Región"
// @Param payload body keyRequest true "Tecla"
// @Success 200 {object} outcomeResponse
// @Failure 400 {string} string "invalid json"
// @Failure 403 {string} string "region not editable / session belongs to another user"
// @Failure 404 {string} string "session / region not found"
// @Failure 409 {string} string "commit already in flight"
// @Router /sessions/{sessionID}/regions/{page}/{regionID}/key [post]
func keyHandler(ws *Workspaces) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		wsp, key, ok := loadRegion(w, r, ws)
		if !ok {
			return
		}
		var req keyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		out, err := wsp.Controller.Key(r.Context(), key, KeyPress{Key: req.Key, Shift: req.Shift})
		if err != nil {
			writeEditError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, ws.toOutcomeResponse(out))
	}
}

// cancelHandler godoc
// @Summary Descartar la edición y volver al baseline
// @Tags content
// @Produce json
// @Param sessionID path string true "ID de la sesión"
// @Param page path string true "Página"
// @Param regionID path string true "Región"
// @Success 200 {object} outcomeResponse
// @Failure 403 {string} string "region not editable / session belongs to another user"
// @Failure 404 {string} string "session / region not found"
// @Failure 409 {string} string "commit already in flight"
// @Router /sessions/{sessionID}/regions/{page}/{regionID}/cancel [post]
func cancelHandler(ws *Workspaces) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		wsp, key, ok := loadRegion(w, r, ws)
		if !ok {
			return
		}
		out, err := wsp.Controller.Cancel(key)
		if err != nil {
			writeEditError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, ws.toOutcomeResponse(out))
	}
}

func loadWorkspace(w http.ResponseWriter, r *http.Request, ws *Workspaces) (*Workspace, bool) {
	wsp, err := ws.Get(chi.URLParam(r, "sessionID"))
	if err != nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return nil, false
	}
	return wsp, true
}

// loadOwnedWorkspace: el id de sesión no alcanza; si hay identidad publicada,
// el request tiene que venir del mismo usuario.
func loadOwnedWorkspace(w http.ResponseWriter, r *http.Request, ws *Workspaces) (*Workspace, bool) {
	wsp, ok := loadWorkspace(w, r, ws)
	if !ok {
		return nil, false
	}
	if !wsp.OwnedBy(middleware.GetIdentity(r.Context())) {
		writeEditError(w, ErrNotWorkspaceOwner)
		return nil, false
	}
	return wsp, true
}

func loadRegion(w http.ResponseWriter, r *http.Request, ws *Workspaces) (*Workspace, RegionKey, bool) {
	wsp, ok := loadOwnedWorkspace(w, r, ws)
	if !ok {
		return nil, RegionKey{}, false
	}
	key, err := NewRegionKey(chi.URLParam(r, "page"), chi.URLParam(r, "regionID"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil, RegionKey{}, false
	}
	return wsp, key, true
}

// read-only no es un error del sistema: 403 sin log
func writeEditError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotEditable):
		http.Error(w, "region not editable", http.StatusForbidden)
	case errors.Is(err, ErrNotWorkspaceOwner):
		http.Error(w, "session belongs to another user", http.StatusForbidden)
	case errors.Is(err, ErrRegionNotFound):
		http.Error(w, "region not found", http.StatusNotFound)
	case errors.Is(err, ErrCommitInFlight):
		http.Error(w, "commit already in flight", http.StatusConflict)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func (ws *Workspaces) toSessionResponse(wsp *Workspace) sessionResponse {
	return sessionResponse{
		ID:      wsp.ID,
		Editor:  wsp.Controller.Active(),
		Regions: ws.toRegionResponses(wsp.Registry.List("")),
	}
}

func (ws *Workspaces) toRegionResponses(regions []Region) []regionResponse {
	out := make([]regionResponse, 0, len(regions))
	for _, rg := range regions {
		out = append(out, ws.toRegionResponse(rg))
	}
	return out
}

func (ws *Workspaces) toRegionResponse(rg Region) regionResponse {
	resp := regionResponse{
		Page:      rg.Key.Page,
		RegionID:  rg.Key.RegionID,
		Content:   rg.Current,
		Baseline:  rg.Baseline,
		Dirty:     rg.Dirty(),
		Multiline: rg.Multiline,
		Editable:  rg.Editable,
		Status:    rg.StatusAt(ws.now(), ws.SavedIndicatorTTL),
		Source:    rg.Source,
		Error:     rg.LastError,
	}
	if !rg.SavedAt.IsZero() {
		t := rg.SavedAt
		resp.SavedAt = &t
	}
	return resp
}

func (ws *Workspaces) toOutcomeResponse(o Outcome) outcomeResponse {
	resp := outcomeResponse{Result: o.Result, Region: ws.toRegionResponse(o.Region)}
	if o.Err != nil {
		resp.Error = o.Err.Error()
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
