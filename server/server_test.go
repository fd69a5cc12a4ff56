package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"shelleylegion/eventstatus"
	"shelleylegion/middleware"
	"shelleylegion/services"
	"shelleylegion/storage"

	"golang.org/x/crypto/bcrypt"
)

type testServer struct {
	t       *testing.T
	deps    Deps
	backend *storage.MemoryBackend
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("legion2025"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	session, err := services.NewAdminSession(services.AdminSessionConfig{
		Secret:       "0123456789abcdef0123456789abcdef",
		Username:     "coach",
		PasswordHash: string(hash),
	})
	if err != nil {
		t.Fatal(err)
	}
	backend := storage.NewMemoryBackend()
	return &testServer{
		t:       t,
		backend: backend,
		deps: Deps{
			Store:   services.NewContentStore(backend, time.Second),
			Session: session,
			Clock:   eventstatus.FixedClock(time.Date(2025, 3, 15, 18, 0, 0, 0, time.UTC)),
		},
	}
}

func (s *testServer) do(method, path, token string, body any, headers ...string) (int, map[string]any, http.Header) {
	s.t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			s.t.Fatal(err)
		}
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	resp, err := New(s.deps).Test(req)
	if err != nil {
		s.t.Fatal(err)
	}
	defer resp.Body.Close()

	var out map[string]any
	raw, _ := io.ReadAll(resp.Body)
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			s.t.Fatalf("%s %s: decode %q: %v", method, path, raw, err)
		}
	}
	return resp.StatusCode, out, resp.Header
}

func (s *testServer) login() string {
	s.t.Helper()
	code, body, _ := s.do("POST", "/api/admin/login", "", map[string]string{"username": "coach", "password": "legion2025"})
	if code != http.StatusOK {
		s.t.Fatalf("login status = %d, body %v", code, body)
	}
	return body["token"].(string)
}

func TestPublicData(t *testing.T) {
	s := newTestServer(t)

	code, body, hdr := s.do("GET", "/api/data/team-info.json", "", nil)
	if code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if body["teamName"] != "Shelley Legion" {
		t.Errorf("teamName = %v", body["teamName"])
	}
	if hdr.Get("Cache-Control") != "no-cache, no-store, must-revalidate" || hdr.Get("Pragma") != "no-cache" || hdr.Get("Expires") != "0" {
		t.Errorf("cache headers = %v", hdr)
	}
	if hdr.Get("X-Content-Fallback") != "true" {
		t.Errorf("X-Content-Fallback = %q", hdr.Get("X-Content-Fallback"))
	}

	if code, _, _ := s.do("GET", "/api/data/scores", "", nil); code != http.StatusNotFound {
		t.Errorf("unknown document status = %d", code)
	}
}

func TestPublicScheduleResolvesStatus(t *testing.T) {
	s := newTestServer(t)
	token := s.login()

	stored := []string{"upcoming", "upcoming", "upcoming", "cancelled"}
	schedule := map[string]any{"events": []map[string]any{
		event("March 10", stored[0]),
		event("March 15", stored[1]),
		event("March 20", stored[2]),
		event("March 10", stored[3]),
	}}
	if code, body, _ := s.do("PUT", "/api/admin/data/schedule", token, map[string]any{"content": schedule}); code != http.StatusOK {
		t.Fatalf("PUT status = %d, body %v", code, body)
	}

	code, body, _ := s.do("GET", "/api/data/schedule", "", nil)
	if code != http.StatusOK {
		t.Fatalf("GET status = %d", code)
	}
	events := body["events"].([]any)
	want := []struct{ status, text, color string }{
		{"completed", "Completed", "success"},
		{"today", "Today", "warning"},
		{"upcoming", "Upcoming", "info"},
		{"cancelled", "Cancelled", "danger"},
	}
	for i, w := range want {
		e := events[i].(map[string]any)
		label := e["statusLabel"].(map[string]any)
		if e["effectiveStatus"] != w.status || label["text"] != w.text || label["color"] != w.color {
			t.Errorf("event %d = %v / %v, want %+v", i, e["effectiveStatus"], label, w)
		}
		if e["status"] != stored[i] {
			t.Errorf("event %d stored status rewritten to %v", i, e["status"])
		}
	}
}

func event(date, status string) map[string]any {
	return map[string]any{
		"date": date, "title": "vs Blackfoot", "type": "game", "location": "Legion Field",
		"time": "6:00 PM", "status": status, "description": "League game",
	}
}

func TestAdminLogin(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name string
		body any
		want int
	}{
		{"wrong password", map[string]string{"username": "coach", "password": "nope"}, http.StatusUnauthorized},
		{"unknown user", map[string]string{"username": "ump", "password": "legion2025"}, http.StatusUnauthorized},
		{"missing fields", map[string]string{"username": "coach"}, http.StatusBadRequest},
		{"valid", map[string]string{"username": "coach", "password": "legion2025"}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body, _ := s.do("POST", "/api/admin/login", "", tt.body)
			if code != tt.want {
				t.Errorf("status = %d, want %d (%v)", code, tt.want, body)
			}
		})
	}

	token := s.login()
	code, body, _ := s.do("GET", "/api/admin/verify", token, nil)
	if code != http.StatusOK || body["username"] != "coach" || body["valid"] != true {
		t.Errorf("verify = %d %v", code, body)
	}
}

func TestAdminLoginRateLimited(t *testing.T) {
	s := newTestServer(t)
	s.deps.AuthLimiter = middleware.NewRateLimiter(2, time.Hour)

	bad := map[string]string{"username": "coach", "password": "guess"}
	codes := []int{}
	for i := 0; i < 3; i++ {
		code, _, _ := s.do("POST", "/api/admin/login", "", bad)
		codes = append(codes, code)
	}
	if codes[0] != 401 || codes[1] != 401 || codes[2] != http.StatusTooManyRequests {
		t.Errorf("codes = %v", codes)
	}
}

func TestAdminRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)
	routes := []struct{ method, path string }{
		{"GET", "/api/admin/verify"},
		{"GET", "/api/admin/data"},
		{"GET", "/api/admin/data/roster"},
		{"PUT", "/api/admin/data/roster"},
		{"PUT", "/api/admin/data/roster/entries/x"},
		{"DELETE", "/api/admin/data/roster/entries/x"},
		{"GET", "/api/admin/debug"},
		{"POST", "/api/admin/data/schedule/refresh-statuses"},
	}
	for _, r := range routes {
		if code, _, _ := s.do(r.method, r.path, "", nil); code != http.StatusUnauthorized {
			t.Errorf("%s %s without token = %d", r.method, r.path, code)
		}
		if code, _, _ := s.do(r.method, r.path, "forged.token.value", nil); code != http.StatusUnauthorized {
			t.Errorf("%s %s with forged token = %d", r.method, r.path, code)
		}
	}

	keys, err := s.backend.ListObjects(context.Background(), "")
	if err != nil || len(keys) != 0 {
		t.Errorf("unauthenticated requests wrote to storage: %v %v", keys, err)
	}
}

func TestAdminWriteFlow(t *testing.T) {
	s := newTestServer(t)
	token := s.login()

	code, body, _ := s.do("GET", "/api/admin/data/team-info", token, nil)
	if code != http.StatusOK {
		t.Fatalf("GET status = %d", code)
	}
	doc := body["document"].(map[string]any)
	if doc["fallback"] != true {
		t.Errorf("unsaved document not marked fallback: %v", doc)
	}

	info := doc["content"].(map[string]any)
	info["tagline"] = "Play Hard"
	code, body, hdr := s.do("PUT", "/api/admin/data/team-info", token, map[string]any{"content": info})
	if code != http.StatusOK {
		t.Fatalf("PUT status = %d, body %v", code, body)
	}
	v1 := body["versionToken"].(string)
	if hdr.Get("ETag") != `"`+v1+`"` {
		t.Errorf("ETag = %q", hdr.Get("ETag"))
	}

	info["tagline"] = "Play Harder"
	code, body, _ = s.do("PUT", "/api/admin/data/team-info", token, map[string]any{"content": info, "expectedVersionToken": v1})
	if code != http.StatusOK {
		t.Fatalf("second PUT status = %d, body %v", code, body)
	}

	info["tagline"] = "Stale"
	code, body, _ = s.do("PUT", "/api/admin/data/team-info", token, map[string]any{"content": info, "expectedVersionToken": v1})
	if code != http.StatusConflict {
		t.Errorf("stale PUT status = %d, body %v", code, body)
	}

	delete(info, "teamName")
	code, body, _ = s.do("PUT", "/api/admin/data/team-info", token, map[string]any{"content": info})
	if code != http.StatusBadRequest {
		t.Fatalf("invalid PUT status = %d", code)
	}
	fields := body["fields"].([]any)
	if len(fields) != 1 || fields[0].(map[string]any)["field"] != "teamName" {
		t.Errorf("fields = %v", fields)
	}

	_, body, _ = s.do("GET", "/api/data/team-info", "", nil)
	if body["tagline"] != "Play Harder" {
		t.Errorf("public tagline = %v", body["tagline"])
	}
}

func TestAdminFirstSavesFromDefaultsConflict(t *testing.T) {
	s := newTestServer(t)
	token := s.login()

	_, body, hdr := s.do("GET", "/api/admin/data/team-info", token, nil)
	doc := body["document"].(map[string]any)
	version, _ := doc["versionToken"].(string)
	if version == "" || hdr.Get("ETag") != `"`+version+`"` {
		t.Fatalf("unsaved document version = %q, ETag %q", version, hdr.Get("ETag"))
	}
	info := doc["content"].(map[string]any)

	info["tagline"] = "First editor"
	if code, body, _ := s.do("PUT", "/api/admin/data/team-info", token, info, "If-Match", `"`+version+`"`); code != http.StatusOK {
		t.Fatalf("first save status = %d, body %v", code, body)
	}
	info["tagline"] = "Second editor"
	if code, body, _ := s.do("PUT", "/api/admin/data/team-info", token, map[string]any{"content": info, "expectedVersionToken": version}); code != http.StatusConflict {
		t.Fatalf("second save status = %d, body %v", code, body)
	}

	_, body, _ = s.do("GET", "/api/data/team-info", "", nil)
	if body["tagline"] != "First editor" {
		t.Errorf("public tagline = %v", body["tagline"])
	}
}

func TestAdminRefreshStatuses(t *testing.T) {
	s := newTestServer(t)
	token := s.login()

	schedule := map[string]any{"events": []map[string]any{
		event("March 10", "upcoming"),
		event("March 15", "upcoming"),
		event("March 20", "upcoming"),
		event("March 10", "cancelled"),
	}}
	code, body, _ := s.do("PUT", "/api/admin/data/schedule", token, map[string]any{"content": schedule})
	if code != http.StatusOK {
		t.Fatalf("PUT status = %d, body %v", code, body)
	}
	version := body["versionToken"].(string)

	code, body, _ = s.do("GET", "/api/admin/data/schedule", token, nil)
	if code != http.StatusOK {
		t.Fatalf("GET status = %d", code)
	}
	events := body["document"].(map[string]any)["content"].(map[string]any)["events"].([]any)
	first := events[0].(map[string]any)
	if first["status"] != "upcoming" || first["effectiveStatus"] != "completed" {
		t.Errorf("admin event 0 = %v / %v", first["status"], first["effectiveStatus"])
	}
	if label := first["statusLabel"].(map[string]any); label["text"] != "Completed" {
		t.Errorf("admin event 0 label = %v", label)
	}

	code, body, _ = s.do("POST", "/api/admin/data/schedule/refresh-statuses", token, nil, "If-Match", `"stale"`)
	if code != http.StatusConflict {
		t.Errorf("stale refresh status = %d, body %v", code, body)
	}

	code, body, _ = s.do("POST", "/api/admin/data/schedule/refresh-statuses", token, map[string]any{"expectedVersionToken": version})
	if code != http.StatusOK {
		t.Fatalf("refresh status = %d, body %v", code, body)
	}
	if body["changed"].(float64) != 1 {
		t.Errorf("changed = %v", body["changed"])
	}
	refreshed := body["versionToken"].(string)
	if refreshed == version {
		t.Error("refresh did not write a new version")
	}
	events = body["document"].(map[string]any)["content"].(map[string]any)["events"].([]any)
	wantStored := []string{"completed", "upcoming", "upcoming", "cancelled"}
	for i, w := range wantStored {
		if got := events[i].(map[string]any)["status"]; got != w {
			t.Errorf("event %d stored status = %v, want %s", i, got, w)
		}
	}

	code, body, _ = s.do("POST", "/api/admin/data/schedule/refresh-statuses", token, nil)
	if code != http.StatusOK || body["changed"].(float64) != 0 {
		t.Fatalf("second refresh = %d %v", code, body)
	}
	if body["message"] != "All event statuses are already up to date!" || body["versionToken"] != refreshed {
		t.Errorf("second refresh = %v", body)
	}
}

func TestAdminEntryFlow(t *testing.T) {
	s := newTestServer(t)
	token := s.login()

	player := map[string]any{"number": 12, "name": "Eli Ward", "position": "Second Base", "stats": ".270 AVG"}
	code, body, _ := s.do("POST", "/api/admin/data/roster/entries", token, map[string]any{"entry": player})
	if code != http.StatusOK {
		t.Fatalf("POST entry status = %d, body %v", code, body)
	}
	version := body["versionToken"].(string)
	players := body["document"].(map[string]any)["content"].(map[string]any)["players"].([]any)
	added := players[len(players)-1].(map[string]any)
	id := added["id"].(string)
	if id == "" || added["name"] != "Eli Ward" {
		t.Fatalf("added player = %v", added)
	}

	player["stats"] = ".301 AVG"
	code, body, _ = s.do("PUT", "/api/admin/data/roster/entries/"+id, token, player, "If-Match", `"`+version+`"`)
	if code != http.StatusOK {
		t.Fatalf("PUT entry status = %d, body %v", code, body)
	}
	newVersion := body["versionToken"].(string)

	if code, _, _ := s.do("DELETE", "/api/admin/data/roster/entries/"+id, token, nil, "If-Match", version); code != http.StatusConflict {
		t.Errorf("stale DELETE status = %d", code)
	}
	if code, _, _ := s.do("DELETE", "/api/admin/data/roster/entries/"+id, token, nil, "If-Match", newVersion); code != http.StatusOK {
		t.Errorf("DELETE status = %d", code)
	}
	if code, _, _ := s.do("DELETE", "/api/admin/data/roster/entries/"+id, token, nil); code != http.StatusNotFound {
		t.Errorf("second DELETE status = %d", code)
	}
	if code, _, _ := s.do("DELETE", "/api/admin/data/team-info/entries/x", token, nil); code != http.StatusBadRequest {
		t.Errorf("DELETE on team-info status = %d", code)
	}
}

func TestAdminListAndDebug(t *testing.T) {
	s := newTestServer(t)
	token := s.login()

	code, body, _ := s.do("GET", "/api/admin/data", token, nil)
	if code != http.StatusOK || len(body["documents"].([]any)) != 4 {
		t.Errorf("list = %d %v", code, body)
	}

	s.do("GET", "/api/data/stats", "", nil)
	code, body, _ = s.do("GET", "/api/admin/debug", token, nil)
	if code != http.StatusOK || body["backend"] != "memory" {
		t.Fatalf("debug = %d %v", code, body)
	}
	if n := body["fallbacks"].(map[string]any)["count"].(float64); n < 1 {
		t.Errorf("fallback count = %v", n)
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	code, body, _ := s.do("GET", "/health", "", nil)
	if code != http.StatusOK || body["status"] != "healthy" || body["hasJwtSecret"] != true {
		t.Errorf("health = %d %v", code, body)
	}
}
