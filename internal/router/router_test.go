package router_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rahaft/bcasco-site/internal/app"
	"github.com/rahaft/bcasco-site/internal/docs"
	"github.com/rahaft/bcasco-site/internal/platform/config"
	"github.com/rahaft/bcasco-site/internal/platform/metrics"
	"github.com/rahaft/bcasco-site/internal/router"

	"github.com/go-chi/chi/v5"
)

type user struct {
	id    string
	email string
}

var (
	admin   = &user{id: "u-admin", email: "RosieHaft@gmail.com"}
	visitor = &user{id: "u-visitor", email: "someone@example.com"}
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	svc := app.New(app.Options{
		Config:  config.Config{AdminEmails: config.DefaultAdminEmails, RelayMaxAttempts: 5},
		Metrics: metrics.New(),
	})
	ts := httptest.NewServer(router.NewRouter(router.Options{AuthVerifier: nil, Services: svc}))
	t.Cleanup(ts.Close)
	return ts
}

func TestHTTP_Health(t *testing.T) {
	ts := newServer(t)
	st, body := doReq(t, ts.URL, "GET", "/health", nil, nil)
	if st != http.StatusOK || string(body) != "ok" {
		t.Fatalf("expected ok, got %d %q", st, string(body))
	}
}

// cada ruta montada tiene que figurar en el documento servido en /swagger
func TestHTTP_DocsCoverEveryRoute(t *testing.T) {
	routes, ok := router.NewRouter(router.Options{}).(chi.Routes)
	if !ok {
		t.Fatalf("router does not expose chi.Routes")
	}

	var doc struct {
		Paths map[string]map[string]any `json:"paths"`
	}
	if err := json.Unmarshal([]byte(docs.SwaggerInfo.ReadDoc()), &doc); err != nil {
		t.Fatalf("swagger doc is not valid json: %v", err)
	}

	walk := func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		switch method {
		case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete:
		default:
			return nil
		}
		if route == "/swagger/*" || (route == "/metrics" && method != http.MethodGet) {
			return nil
		}
		if len(route) > 1 {
			route = strings.TrimSuffix(route, "/")
		}
		if _, ok := doc.Paths[route][strings.ToLower(method)]; !ok {
			t.Errorf("route %s %s missing from swagger doc", method, route)
		}
		return nil
	}
	if err := chi.Walk(routes, walk); err != nil {
		t.Fatalf("walk: %v", err)
	}
}

// home_intro: "Welcome." -> "Welcome to BCASCO." por un editor; el visitante lo ve publicado.
func TestHTTP_EndToEnd_InlineEdit(t *testing.T) {
	ts := newServer(t)

	sessionID := openSession(t, ts.URL, admin)
	regions := registerRegions(t, ts.URL, sessionID, admin, "home", []map[string]any{
		{"region_id": "intro", "authored": "Welcome."},
	})
	if len(regions) != 1 || regions[0]["content"] != "Welcome." || regions[0]["editable"] != true || regions[0]["source"] != "authored" {
		t.Fatalf("unexpected regions %#v", regions)
	}

	base := "/sessions/" + sessionID + "/regions/home/intro"

	// hint sólo la primera vez
	{
		_, body := doReq(t, ts.URL, "POST", base+"/focus", admin, nil)
		var resp map[string]any
		mustJSON(t, body, &resp)
		if resp["show_hint"] != true {
			t.Fatalf("expected hint on first focus, got %s", string(body))
		}
		_, body = doReq(t, ts.URL, "POST", base+"/focus", admin, nil)
		mustJSON(t, body, &resp)
		if resp["show_hint"] != false {
			t.Fatalf("expected no hint on second focus, got %s", string(body))
		}
	}

	// blur sin cambios => unchanged
	{
		st, body := doReq(t, ts.URL, "POST", base+"/commit", admin, nil)
		if st != http.StatusOK || !strings.Contains(string(body), `"result":"unchanged"`) {
			t.Fatalf("expected unchanged, got %d %s", st, string(body))
		}
	}

	// input + Enter en región de una línea => commit
	{
		st, _ := doReq(t, ts.URL, "PUT", base+"/input", admin, map[string]any{"content": "Welcome to BCASCO."})
		if st != http.StatusOK {
			t.Fatalf("expected 200 input, got %d", st)
		}
		st, body := doReq(t, ts.URL, "POST", base+"/key", admin, map[string]any{"key": "Enter"})
		if st != http.StatusOK {
			t.Fatalf("expected 200 key, got %d %s", st, string(body))
		}
		var out struct {
			Result string         `json:"result"`
			Region map[string]any `json:"region"`
		}
		mustJSON(t, body, &out)
		if out.Result != "saved" || out.Region["baseline"] != "Welcome to BCASCO." || out.Region["status"] != "saved" {
			t.Fatalf("unexpected outcome %s", string(body))
		}
	}

	// visitante anónimo: ve el contenido guardado pero no puede editar
	{
		st, body := doReq(t, ts.URL, "GET", "/pages/home/content", nil, nil)
		if st != http.StatusOK || !strings.Contains(string(body), `"intro":"Welcome to BCASCO."`) {
			t.Fatalf("expected published content, got %d %s", st, string(body))
		}

		anon := openSession(t, ts.URL, nil)
		regions := registerRegions(t, ts.URL, anon, nil, "home", []map[string]any{
			{"region_id": "intro", "authored": "Welcome."},
		})
		if regions[0]["content"] != "Welcome to BCASCO." || regions[0]["editable"] != false || regions[0]["source"] != "persisted" {
			t.Fatalf("unexpected anonymous region %#v", regions[0])
		}
		st, _ = doReq(t, ts.URL, "POST", "/sessions/"+anon+"/regions/home/intro/focus", nil, nil)
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 for read-only region, got %d", st)
		}
	}

	// otro usuario con el id de la sesión del editor no puede editar ni cerrarla
	{
		st, body := doReq(t, ts.URL, "PUT", base+"/input", visitor, map[string]any{"content": "hijacked"})
		if st != http.StatusForbidden || !strings.Contains(string(body), "session belongs to another user") {
			t.Fatalf("expected 403 for foreign caller, got %d %s", st, string(body))
		}
		st, _ = doReq(t, ts.URL, "POST", base+"/commit", nil, nil)
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 for anonymous caller, got %d", st)
		}
		st, _ = doReq(t, ts.URL, "DELETE", "/sessions/"+sessionID+"/identity", visitor, nil)
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 on foreign logout, got %d", st)
		}
		st, _ = doReq(t, ts.URL, "DELETE", "/sessions/"+sessionID, visitor, nil)
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 on foreign close, got %d", st)
		}
	}

	// logout => la sesión pasa a solo lectura
	{
		st, body := doReq(t, ts.URL, "DELETE", "/sessions/"+sessionID+"/identity", admin, nil)
		if st != http.StatusOK || !strings.Contains(string(body), `"editor":false`) {
			t.Fatalf("expected read-only session after logout, got %d %s", st, string(body))
		}
		st, _ = doReq(t, ts.URL, "PUT", base+"/input", admin, map[string]any{"content": "x"})
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 after logout, got %d", st)
		}
	}

	// un usuario fuera de la allow-list nunca queda como editor
	{
		other := openSession(t, ts.URL, visitor)
		st, body := doReq(t, ts.URL, "GET", "/sessions/"+other, visitor, nil)
		if st != http.StatusOK || !strings.Contains(string(body), `"editor":false`) {
			t.Fatalf("expected non-editor session, got %d %s", st, string(body))
		}
	}

	// el commit quedó contado
	{
		_, body := doReq(t, ts.URL, "GET", "/metrics", nil, nil)
		if !strings.Contains(string(body), `bcasco_content_commits_total{outcome="saved"} 1`) {
			t.Fatalf("expected commit metric, got:\n%s", string(body))
		}
	}
}

func TestHTTP_EndToEnd_EventEditor(t *testing.T) {
	ts := newServer(t)

	// sólo editores pueden sembrar
	if st, _ := doReq(t, ts.URL, "POST", "/admin/events/seed", nil, nil); st != http.StatusUnauthorized {
		t.Fatalf("expected 401 anonymous seed, got %d", st)
	}
	if st, _ := doReq(t, ts.URL, "POST", "/admin/events/seed", visitor, nil); st != http.StatusForbidden {
		t.Fatalf("expected 403 visitor seed, got %d", st)
	}
	{
		st, body := doReq(t, ts.URL, "POST", "/admin/events/seed", admin, nil)
		if st != http.StatusOK || !strings.Contains(string(body), `"applied":6`) {
			t.Fatalf("expected 6 seeded events, got %d %s", st, string(body))
		}
	}

	var list struct {
		Upcoming []map[string]any `json:"upcoming"`
		Past     []map[string]any `json:"past"`
	}
	{
		st, body := doReq(t, ts.URL, "GET", "/events", nil, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 list, got %d", st)
		}
		mustJSON(t, body, &list)
		if len(list.Upcoming)+len(list.Past) != 6 {
			t.Fatalf("expected 6 events, got %s", string(body))
		}
	}

	var eventID string
	for _, e := range append(list.Upcoming, list.Past...) {
		if e["title"] == "The Unmet Needs of Senior Veterans" {
			eventID = e["id"].(string)
		}
	}
	if eventID == "" {
		t.Fatalf("seeded event not found")
	}
	path := "/events/" + eventID + "/fields/notes"

	// prompt descartado => cancelled
	{
		st, body := doReq(t, ts.URL, "POST", path, admin, map[string]any{"value": nil})
		if st != http.StatusOK || !strings.Contains(string(body), `"result":"cancelled"`) {
			t.Fatalf("expected cancelled, got %d %s", st, string(body))
		}
	}

	// "Networking at 9:30 AM" -> "" se guarda
	{
		st, body := doReq(t, ts.URL, "POST", path, admin, map[string]any{"value": ""})
		if st != http.StatusOK || !strings.Contains(string(body), `"result":"saved"`) {
			t.Fatalf("expected saved, got %d %s", st, string(body))
		}
		st, body = doReq(t, ts.URL, "GET", "/events/"+eventID, nil, nil)
		var e map[string]any
		mustJSON(t, body, &e)
		if st != http.StatusOK || e["notes"] != "" || e["updated_by"] != "rosiehaft@gmail.com" {
			t.Fatalf("unexpected event after edit %s", string(body))
		}
	}

	if st, _ := doReq(t, ts.URL, "POST", path, visitor, map[string]any{"value": "x"}); st != http.StatusForbidden {
		t.Fatalf("expected 403 visitor edit, got %d", st)
	}
	if st, _ := doReq(t, ts.URL, "POST", "/events/"+eventID+"/fields/location", admin, map[string]any{"value": "x"}); st != http.StatusBadRequest {
		t.Fatalf("expected 400 bad field, got %d", st)
	}
	if st, _ := doReq(t, ts.URL, "POST", "/events/missing/fields/title", admin, map[string]any{"value": "x"}); st != http.StatusNotFound {
		t.Fatalf("expected 404 missing event, got %d", st)
	}

	// strip-refreshments es idempotente
	{
		st, body := doReq(t, ts.URL, "POST", "/admin/events/strip-refreshments", admin, nil)
		if st != http.StatusOK || !strings.Contains(string(body), `"applied":0`) {
			t.Fatalf("expected no-op strip, got %d %s", st, string(body))
		}
	}
}

func TestHTTP_EndToEnd_FormsAndRelay(t *testing.T) {
	ts := newServer(t)

	st, body := doReq(t, ts.URL, "POST", "/events", admin, map[string]any{
		"title": "Let's Get Started Improving the Lives of Seniors",
		"date":  "2025-09-12",
		"notes": "Networking at 9:30 AM",
	})
	if st != http.StatusCreated {
		t.Fatalf("expected 201 create event, got %d %s", st, string(body))
	}
	var ev map[string]any
	mustJSON(t, body, &ev)
	eventID := ev["id"].(string)

	// feedback público de un evento pasado
	{
		st, body := doReq(t, ts.URL, "POST", "/forms/feedback", nil, map[string]any{
			"event_id": eventID,
			"rating":   5,
			"name":     "Ann",
			"email":    "ann@example.com",
			"notes":    "Very helpful",
		})
		if st != http.StatusCreated {
			t.Fatalf("expected 201 feedback, got %d %s", st, string(body))
		}
	}
	if st, _ := doReq(t, ts.URL, "POST", "/forms/feedback", nil, map[string]any{"event_id": eventID, "rating": 9, "name": "Ann", "email": "ann@example.com"}); st != http.StatusBadRequest {
		t.Fatalf("expected 400 bad rating, got %d", st)
	}

	// el listado es sólo para editores
	if st, _ := doReq(t, ts.URL, "GET", "/admin/forms/feedback", visitor, nil); st != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", st)
	}
	{
		st, body := doReq(t, ts.URL, "GET", "/admin/forms/feedback?event_id="+eventID, admin, nil)
		if st != http.StatusOK || !strings.Contains(string(body), `"rating":5`) {
			t.Fatalf("expected stored feedback, got %d %s", st, string(body))
		}
	}

	// relay: una entrada sheets pendiente; sin URL configurada queda abandonada
	var entries []map[string]any
	{
		st, body := doReq(t, ts.URL, "GET", "/admin/relay", admin, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 relay list, got %d", st)
		}
		mustJSON(t, body, &entries)
		if len(entries) != 1 || entries[0]["action"] != "sheets" || entries[0]["status"] != "pending" {
			t.Fatalf("unexpected relay entries %s", string(body))
		}
		if !strings.Contains(entries[0]["payload"].(string), `"type":"feedback"`) {
			t.Fatalf("payload must carry the form type: %v", entries[0]["payload"])
		}
	}
	{
		st, body := doReq(t, ts.URL, "POST", "/admin/relay/process", admin, nil)
		if st != http.StatusOK || !strings.Contains(string(body), `"abandoned":1`) {
			t.Fatalf("expected abandoned entry, got %d %s", st, string(body))
		}
		st, _ = doReq(t, ts.URL, "POST", "/admin/relay/"+entries[0]["id"].(string)+"/retry", admin, nil)
		if st != http.StatusConflict {
			t.Fatalf("expected 409 retry of abandoned entry, got %d", st)
		}
	}
}

func openSession(t *testing.T, baseURL string, u *user) string {
	t.Helper()
	st, body := doReq(t, baseURL, "POST", "/sessions", u, nil)
	if st != http.StatusCreated {
		t.Fatalf("expected 201 open session, got %d body=%s", st, string(body))
	}
	var resp struct {
		ID string `json:"id"`
	}
	mustJSON(t, body, &resp)
	if resp.ID == "" {
		t.Fatalf("missing session id: %s", string(body))
	}
	return resp.ID
}

func registerRegions(t *testing.T, baseURL, sessionID string, u *user, page string, regions []map[string]any) []map[string]any {
	t.Helper()
	st, body := doReq(t, baseURL, "POST", "/sessions/"+sessionID+"/pages/"+page+"/regions", u, map[string]any{"regions": regions})
	if st != http.StatusOK {
		t.Fatalf("expected 200 register regions, got %d body=%s", st, string(body))
	}
	var out []map[string]any
	mustJSON(t, body, &out)
	return out
}

func doReq(t *testing.T, baseURL, method, path string, u *user, payload any) (int, []byte) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if u != nil {
		req.Header.Set("X-Debug-User-ID", u.id)
		req.Header.Set("X-Debug-User-Email", u.email)
	}

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, b
}

func mustJSON(t *testing.T, b []byte, out any) {
	t.Helper()
	if err := json.Unmarshal(b, out); err != nil {
		t.Fatalf("unmarshal: %v body=%s", err, string(b))
	}
}
