package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/openmohaa/hiscores-dash/internal/models"
	"github.com/openmohaa/hiscores-dash/internal/selection"
)

func benjiSnapshot() *models.Snapshot {
	return &models.Snapshot{
		Name: "BenjiFresh91",
		Skills: []models.SkillRecord{
			{ID: 0, Name: "Overall", Rank: 5000, Level: 1500, XP: 50_000_000},
			{ID: 1, Name: "Attack", Rank: 100, Level: 99, XP: 13_034_431},
			{ID: 2, Name: "Defence", Rank: 200, Level: 70, XP: 737_627},
			{ID: 3, Name: "Strength", Rank: -1, Level: 1, XP: 0},
		},
		Activities: []models.ActivityRecord{
			{ID: 10, Name: "Clue Scrolls (all)", Rank: 1234, Score: 238},
			{ID: 20, Name: "Zulrah", Rank: 999, Score: 412},
			{ID: 21, Name: "Vorkath", Rank: -1, Score: 0},
		},
	}
}

func newTestHandler(t *testing.T, mutate ...func(*Config)) (*Handler, http.Handler) {
	t.Helper()
	cfg := Config{
		Fetcher: &MockFetcher{Players: map[string]*models.Snapshot{
			"BenjiFresh91": benjiSnapshot(),
			"IronBengal":   benjiSnapshot(),
		}},
		Logger:        zap.NewNop(),
		Session:       selection.Config{CycleInterval: time.Hour},
		DefaultPlayer: "BenjiFresh91",
		Players:       []string{"BenjiFresh91", "IronBengal"},
		Group: []models.GroupMember{
			{Name: "IronBengal", Slot: models.SlotTopLeft},
			{Name: "Kobenhamner", Slot: models.SlotTopRight},
		},
	}
	for _, m := range mutate {
		m(&cfg)
	}
	h := New(cfg)
	t.Cleanup(h.Close)
	return h, h.Routes([]string{"*"})
}

func do(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeView(t *testing.T, w *httptest.ResponseRecorder) selection.View {
	t.Helper()
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var v selection.View
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("decode view: %v", err)
	}
	return v
}

func createSession(t *testing.T, router http.Handler, body string) string {
	t.Helper()
	w := do(t, router, "POST", "/api/v1/sessions?wait=true", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp CreateSessionResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.ID == "" {
		t.Fatal("empty session id")
	}
	return resp.ID
}

func TestHealth(t *testing.T) {
	_, router := newTestHandler(t)

	w := do(t, router, "GET", "/health", "")
	if w.Code != http.StatusOK {
		t.Errorf("StatusCode = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"status":"ok"`) {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestReady(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		_, router := newTestHandler(t, func(c *Config) {
			c.Cache = &MockPinger{}
			c.Queue = &MockQueue{Depth: 3}
		})
		w := do(t, router, "GET", "/ready", "")
		if w.Code != http.StatusOK {
			t.Errorf("StatusCode = %d", w.Code)
		}
		if !strings.Contains(w.Body.String(), `"queueDepth":3`) {
			t.Errorf("body = %s", w.Body.String())
		}
	})

	t.Run("redis down", func(t *testing.T) {
		_, router := newTestHandler(t, func(c *Config) {
			c.Cache = &MockPinger{Err: errPingFailed}
		})
		w := do(t, router, "GET", "/ready", "")
		if w.Code != http.StatusServiceUnavailable {
			t.Errorf("StatusCode = %d, want 503", w.Code)
		}
	})
}

func TestCreateSession_DefaultPlayer(t *testing.T) {
	_, router := newTestHandler(t)

	w := do(t, router, "POST", "/api/v1/sessions?wait=true", "")
	if w.Code != http.StatusCreated {
		t.Fatalf("StatusCode = %d, body = %s", w.Code, w.Body.String())
	}

	var resp CreateSessionResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.View.Player != "BenjiFresh91" {
		t.Errorf("Player = %q", resp.View.Player)
	}
	if !resp.View.Loaded || len(resp.View.Items) != 3 {
		t.Errorf("view = loaded %v, %d items", resp.View.Loaded, len(resp.View.Items))
	}
	if resp.View.Current == nil || resp.View.Current.ID != "skill-1" {
		t.Errorf("Current = %+v", resp.View.Current)
	}
}

func TestCreateSession_Validation(t *testing.T) {
	_, router := newTestHandler(t)

	tests := []struct {
		name string
		body string
	}{
		{"name too long", `{"player":"ThisNameIsTooLong"}`},
		{"malformed json", `{"player":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, router, "POST", "/api/v1/sessions", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("StatusCode = %d, want 400", w.Code)
			}
		})
	}
}

func TestCreateSession_Limit(t *testing.T) {
	_, router := newTestHandler(t, func(c *Config) { c.MaxSessions = 1 })

	createSession(t, router, "")
	w := do(t, router, "POST", "/api/v1/sessions", "")
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("StatusCode = %d, want 503", w.Code)
	}
}

func TestCreateSession_UnknownPlayer(t *testing.T) {
	_, router := newTestHandler(t)

	id := createSession(t, router, `{"player":"Nobody"}`)
	v := decodeView(t, do(t, router, "GET", "/api/v1/sessions/"+id, ""))
	if v.Error != "Player not found" {
		t.Errorf("Error = %q", v.Error)
	}
	if v.Current != nil || len(v.Items) != 0 {
		t.Errorf("expected a no-data view, got %+v", v)
	}
}

func TestSessionNavigation(t *testing.T) {
	_, router := newTestHandler(t)
	id := createSession(t, router, "")
	base := "/api/v1/sessions/" + id

	v := decodeView(t, do(t, router, "POST", base+"/prev", ""))
	if v.Index != 0 {
		t.Errorf("prev from 0: Index = %d", v.Index)
	}

	do(t, router, "POST", base+"/next", "")
	v = decodeView(t, do(t, router, "POST", base+"/next", ""))
	if v.Index != 2 {
		t.Errorf("Index = %d, want 2", v.Index)
	}
	v = decodeView(t, do(t, router, "POST", base+"/next", ""))
	if v.Index != 0 {
		t.Errorf("next should wrap, Index = %d", v.Index)
	}

	v = decodeView(t, do(t, router, "POST", base+"/pin", ""))
	if !v.Pinned || v.AutoCycle {
		t.Errorf("after pin: pinned=%v autoCycle=%v", v.Pinned, v.AutoCycle)
	}

	v = decodeView(t, do(t, router, "POST", base+"/select", `{"id":"skill-3"}`))
	if v.Current == nil || v.Current.ID != "skill-3" {
		t.Errorf("select: Current = %+v", v.Current)
	}
}

func TestSessionPinAcrossCategories(t *testing.T) {
	_, router := newTestHandler(t)
	id := createSession(t, router, "")
	base := "/api/v1/sessions/" + id

	v := decodeView(t, do(t, router, "POST", base+"/pin-to", `{"id":"act-21"}`))
	if v.PinnedID != "act-21" || v.Index != 0 {
		t.Errorf("pin-to on skills: %+v", v)
	}

	v = decodeView(t, do(t, router, "POST", base+"/category", `{"category":"bosses"}`))
	if v.Current == nil || v.Current.Name != "Vorkath" {
		t.Errorf("Current = %+v, want Vorkath", v.Current)
	}
	if !v.Pinned {
		t.Error("pin must survive the category switch")
	}

	v = decodeView(t, do(t, router, "POST", base+"/pin-to", `{"id":"act-21"}`))
	if v.Pinned {
		t.Error("pinning the pinned id again releases it")
	}
}

func TestSessionCategory_Invalid(t *testing.T) {
	_, router := newTestHandler(t)
	id := createSession(t, router, "")

	for _, body := range []string{`{"category":"quests"}`, `{}`} {
		w := do(t, router, "POST", "/api/v1/sessions/"+id+"/category", body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("body %s: StatusCode = %d, want 400", body, w.Code)
		}
	}
}

func TestSessionAggregateViews(t *testing.T) {
	_, router := newTestHandler(t)
	id := createSession(t, router, "")
	base := "/api/v1/sessions/" + id

	v := decodeView(t, do(t, router, "POST", base+"/category", `{"category":"total"}`))
	if v.Current != nil {
		t.Error("total view has no current item")
	}

	w := do(t, router, "GET", base+"/total", "")
	if w.Code != http.StatusOK {
		t.Fatalf("StatusCode = %d", w.Code)
	}
	var total models.TotalModel
	if err := json.NewDecoder(w.Body).Decode(&total); err != nil {
		t.Fatal(err)
	}
	if total.TotalLevel != 99+70+1 {
		t.Errorf("TotalLevel = %d, want 170", total.TotalLevel)
	}
}

func TestSessionSearch(t *testing.T) {
	_, router := newTestHandler(t)
	id := createSession(t, router, "")

	w := do(t, router, "GET", "/api/v1/sessions/"+id+"/search?q=def", "")
	if w.Code != http.StatusOK {
		t.Fatalf("StatusCode = %d", w.Code)
	}
	var matches []selection.Match
	if err := json.NewDecoder(w.Body).Decode(&matches); err != nil {
		t.Fatal(err)
	}
	if len(matches) != 1 || matches[0].ID != "skill-2" {
		t.Errorf("matches = %+v", matches)
	}
}

func TestSessionPlayerAndRefresh(t *testing.T) {
	_, router := newTestHandler(t)
	id := createSession(t, router, "")
	base := "/api/v1/sessions/" + id

	do(t, router, "POST", base+"/next", "")
	v := decodeView(t, do(t, router, "POST", base+"/refresh?wait=true", ""))
	if v.Index != 1 || v.Refreshing {
		t.Errorf("refresh must keep the selection: index=%d refreshing=%v", v.Index, v.Refreshing)
	}

	v = decodeView(t, do(t, router, "POST", base+"/player?wait=true", `{"player":"IronBengal"}`))
	if v.Player != "IronBengal" || v.Index != 0 {
		t.Errorf("player switch: %q index %d", v.Player, v.Index)
	}

	w := do(t, router, "POST", base+"/player", `{"player":""}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("empty player: StatusCode = %d, want 400", w.Code)
	}
}

func TestSessionDelete(t *testing.T) {
	h, router := newTestHandler(t)
	id := createSession(t, router, "")

	if got := len(h.Targets()); got != 1 {
		t.Errorf("Targets = %d, want 1", got)
	}

	w := do(t, router, "DELETE", "/api/v1/sessions/"+id, "")
	if w.Code != http.StatusNoContent {
		t.Errorf("StatusCode = %d, want 204", w.Code)
	}
	for _, path := range []string{"/api/v1/sessions/" + id, "/api/v1/sessions/" + id + "/total"} {
		if w := do(t, router, "GET", path, ""); w.Code != http.StatusNotFound {
			t.Errorf("%s: StatusCode = %d, want 404", path, w.Code)
		}
	}
	if got := len(h.Targets()); got != 0 {
		t.Errorf("Targets = %d, want 0", got)
	}
}

func TestGetGroup(t *testing.T) {
	_, router := newTestHandler(t)

	w := do(t, router, "GET", "/api/v1/group", "")
	if w.Code != http.StatusOK {
		t.Fatalf("StatusCode = %d", w.Code)
	}
	var resp models.GroupResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Panels) != 2 {
		t.Fatalf("got %d panels", len(resp.Panels))
	}
	if !resp.Panels[0].OK || resp.Panels[0].Name != "IronBengal" {
		t.Errorf("panel 0 = %s ok=%v", resp.Panels[0].Name, resp.Panels[0].OK)
	}
	if resp.Panels[1].OK || resp.Panels[1].Slot != models.SlotTopRight {
		t.Errorf("missing member should render fallback in its slot: %+v", resp.Panels[1])
	}
}

func TestGetPlayers(t *testing.T) {
	_, router := newTestHandler(t)

	w := do(t, router, "GET", "/api/v1/players", "")
	var resp models.PlayersResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Default != "BenjiFresh91" || len(resp.Players) != 2 {
		t.Errorf("players = %+v", resp)
	}
}

func TestCORS(t *testing.T) {
	h := New(Config{Fetcher: &MockFetcher{}, Logger: zap.NewNop()})
	t.Cleanup(h.Close)
	router := h.Routes([]string{"http://dash.local"})

	req := httptest.NewRequest("OPTIONS", "/api/v1/players", nil)
	req.Header.Set("Origin", "http://dash.local")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://dash.local" {
		t.Errorf("Allow-Origin = %q", got)
	}
}
