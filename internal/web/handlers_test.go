package web

import (
	"encoding/json"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/knelavan/skilltime/internal/config"
	"github.com/knelavan/skilltime/internal/mirror"
	"github.com/knelavan/skilltime/internal/ops"
	"github.com/knelavan/skilltime/internal/store"
	"github.com/knelavan/skilltime/internal/vault"
)

func setupTest(t *testing.T) *Handlers {
	t.Helper()
	st, err := store.Open(t.TempDir())
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	cfg := config.DefaultConfig()

	templateSub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		t.Fatalf("template sub-FS: %v", err)
	}
	renderer := NewRenderer(templateSub, "test")

	return &Handlers{
		st:       st,
		cfg:      cfg,
		mirror:   mirror.NewService(mirror.NewClient(cfg)),
		renderer: renderer,
	}
}

// login establishes a session for handlers behind the login gate.
func login(t *testing.T, h *Handlers) {
	t.Helper()
	if _, err := ops.Login(h.st, ops.LoginInput{Name: "Maya"}); err != nil {
		t.Fatalf("login: %v", err)
	}
}

// seedCapsule seals a capsule and returns its ID. With ready=true the
// capsule's unlock instant is planted in the past.
func seedCapsule(t *testing.T, h *Handlers, ready bool) string {
	t.Helper()
	now := time.Now().UnixMilli()
	sealedAt := now
	if ready {
		sealedAt = now - 32*vault.DayMillis
	}
	out, err := ops.Seal(h.st, ops.SealInput{
		SkillID:         "3",
		Content:         "past snapshot",
		MessageToFuture: "future goal",
		DurationMonths:  1,
		Now:             sealedAt,
	})
	if err != nil {
		t.Fatalf("seed capsule: %v", err)
	}
	return out.Capsule.ID
}

func postForm(path string, values url.Values) *http.Request {
	req := httptest.NewRequest("POST", path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

// --- login gate ---

func TestHandleDashboard_RedirectsWhenLoggedOut(t *testing.T) {
	h := setupTest(t)

	req := httptest.NewRequest("GET", "/vault", nil)
	rec := httptest.NewRecorder()
	h.HandleDashboard(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/login" {
		t.Errorf("Location = %q, want /login", loc)
	}
}

func TestHandleLogin(t *testing.T) {
	h := setupTest(t)

	rec := httptest.NewRecorder()
	h.HandleLogin(rec, postForm("/login", url.Values{"name": {"Maya"}}))

	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rec.Code)
	}

	user, err := ops.CurrentUser(h.st)
	if err != nil {
		t.Fatalf("CurrentUser: %v", err)
	}
	if user == nil || user.Name != "Maya" {
		t.Errorf("user = %+v, want a Maya session", user)
	}
}

func TestHandleLogin_EmptyName(t *testing.T) {
	h := setupTest(t)

	rec := httptest.NewRecorder()
	h.HandleLogin(rec, postForm("/login", url.Values{"name": {"   "}}))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "name is required") {
		t.Error("expected the validation message inline on the login page")
	}
}

func TestHandleLogout(t *testing.T) {
	h := setupTest(t)
	login(t, h)

	rec := httptest.NewRecorder()
	h.HandleLogout(rec, postForm("/logout", nil))

	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rec.Code)
	}
	user, err := ops.CurrentUser(h.st)
	if err != nil {
		t.Fatalf("CurrentUser: %v", err)
	}
	if user != nil {
		t.Error("logout should clear the session")
	}
}

// --- dashboard ---

func TestHandleDashboard(t *testing.T) {
	h := setupTest(t)
	login(t, h)
	seedCapsule(t, h, false)

	req := httptest.NewRequest("GET", "/vault", nil)
	rec := httptest.NewRecorder()
	h.HandleDashboard(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Algebra Master") {
		t.Error("expected the capsule's skill name in the dashboard")
	}
	if !strings.Contains(body, "left") {
		t.Error("expected a remaining-time label in the dashboard")
	}
}

func TestHandleDashboard_Empty(t *testing.T) {
	h := setupTest(t)
	login(t, h)

	req := httptest.NewRequest("GET", "/vault", nil)
	rec := httptest.NewRecorder()
	h.HandleDashboard(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "No capsules yet") {
		t.Error("expected empty state message")
	}
}

// --- seal ---

func TestHandleSeal(t *testing.T) {
	h := setupTest(t)
	login(t, h)

	rec := httptest.NewRecorder()
	h.HandleSeal(rec, postForm("/vault/seal", url.Values{
		"skill_id":          {"1"},
		"content":           {"snapshot"},
		"message_to_future": {"goal"},
		"duration_months":   {"3"},
	}))

	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rec.Code)
	}

	listed, err := ops.List(h.st, ops.ListInput{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if listed.Total != 1 {
		t.Errorf("Total = %d, want 1", listed.Total)
	}
}

func TestHandleSeal_InvalidDuration(t *testing.T) {
	h := setupTest(t)
	login(t, h)

	rec := httptest.NewRecorder()
	h.HandleSeal(rec, postForm("/vault/seal", url.Values{
		"skill_id":          {"1"},
		"content":           {"snapshot"},
		"message_to_future": {"goal"},
		"duration_months":   {"2"},
	}))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "duration") {
		t.Error("expected the validation message inline on the seal form")
	}
}

// --- mirror page ---

func TestHandleMirror_SealedCapsule(t *testing.T) {
	h := setupTest(t)
	login(t, h)
	id := seedCapsule(t, h, false)

	req := httptest.NewRequest("GET", "/vault/"+id, nil)
	req.SetPathValue("id", id)
	rec := httptest.NewRecorder()
	h.HandleMirror(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "still sealed") {
		t.Error("expected the sealed notice")
	}
	// Sealed content never leaks into the page
	if strings.Contains(body, "past snapshot") {
		t.Error("sealed capsule content must not be rendered")
	}
}

func TestHandleMirror_NotFound(t *testing.T) {
	h := setupTest(t)
	login(t, h)

	req := httptest.NewRequest("GET", "/vault/missing", nil)
	req.SetPathValue("id", "missing")
	rec := httptest.NewRecorder()
	h.HandleMirror(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

// --- unlock ---

func TestHandleUnlock_Ready(t *testing.T) {
	h := setupTest(t)
	login(t, h)
	id := seedCapsule(t, h, true)

	req := postForm("/vault/"+id+"/unlock", nil)
	req.SetPathValue("id", id)
	rec := httptest.NewRecorder()
	h.HandleUnlock(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rec.Code)
	}

	got, err := ops.Fetch(h.st, ops.FetchInput{ID: id})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if !got.IsUnlocked {
		t.Error("unlock should persist the opened flag")
	}
}

func TestHandleUnlock_StillLocked(t *testing.T) {
	h := setupTest(t)
	login(t, h)
	id := seedCapsule(t, h, false)

	req := postForm("/vault/"+id+"/unlock", nil)
	req.SetPathValue("id", id)
	rec := httptest.NewRecorder()
	h.HandleUnlock(rec, req)

	if rec.Code != http.StatusLocked {
		t.Fatalf("status = %d, want 423", rec.Code)
	}
}

// --- reflect ---

func TestHandleReflect_UnconfiguredMirror(t *testing.T) {
	h := setupTest(t)
	login(t, h)
	id := seedCapsule(t, h, true)

	req := postForm("/vault/"+id+"/reflect", url.Values{
		"present_content": {"present snapshot"},
	})
	req.SetPathValue("id", id)
	rec := httptest.NewRecorder()
	h.HandleReflect(rec, req)

	// An unconfigured mirror still renders a narrative, just the fallback
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "needs an API key") {
		t.Error("expected the not-configured fallback narrative")
	}
}

func TestHandleReflect_StillLocked(t *testing.T) {
	h := setupTest(t)
	login(t, h)
	id := seedCapsule(t, h, false)

	req := postForm("/vault/"+id+"/reflect", url.Values{
		"present_content": {"present snapshot"},
	})
	req.SetPathValue("id", id)
	rec := httptest.NewRecorder()
	h.HandleReflect(rec, req)

	if rec.Code != http.StatusLocked {
		t.Fatalf("status = %d, want 423", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "still sealed") {
		t.Error("expected the lock error inline on the capsule page")
	}
}

func TestHandleReflect_StubbedMirror(t *testing.T) {
	h := setupTest(t)
	login(t, h)
	id := seedCapsule(t, h, true)

	stub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "**You grew so much!**"}},
			},
		})
	}))
	defer stub.Close()

	h.mirror = mirror.NewService(mirror.NewClient(&config.Config{
		MirrorBaseURL: stub.URL,
		MirrorAPIKey:  "test-key",
	}))

	req := postForm("/vault/"+id+"/reflect", url.Values{
		"present_content": {"present snapshot"},
	})
	req.SetPathValue("id", id)
	rec := httptest.NewRecorder()
	h.HandleReflect(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	// Markdown narrative is rendered as HTML
	if !strings.Contains(rec.Body.String(), "<strong>You grew so much!</strong>") {
		t.Error("expected the rendered narrative in the page")
	}
}

func TestHandleReflect_OpensReadyCapsule(t *testing.T) {
	h := setupTest(t)
	login(t, h)
	id := seedCapsule(t, h, true)

	req := postForm("/vault/"+id+"/reflect", url.Values{
		"present_content": {"present snapshot"},
	})
	req.SetPathValue("id", id)
	rec := httptest.NewRecorder()
	h.HandleReflect(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	// Reflecting a ready capsule opens it, so the page shows the sealed
	// snapshot alongside the narrative
	if !strings.Contains(body, "past snapshot") {
		t.Error("expected the capsule content on the page after reflecting")
	}
	if !strings.Contains(body, "needs an API key") {
		t.Error("expected the fallback narrative on the page")
	}

	got, err := ops.Fetch(h.st, ops.FetchInput{ID: id})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if !got.IsUnlocked {
		t.Error("reflect should persist the opened flag")
	}
}

// --- settings ---

func TestHandleCreatorKey(t *testing.T) {
	h := setupTest(t)
	login(t, h)

	rec := httptest.NewRecorder()
	h.HandleCreatorKey(rec, postForm("/settings/creator", url.Values{
		"creator_key": {h.cfg.CreatorKey},
	}))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Add a skill") {
		t.Error("expected the creator panel after a valid key")
	}
}

func TestHandleCreatorKey_Wrong(t *testing.T) {
	h := setupTest(t)
	login(t, h)

	rec := httptest.NewRecorder()
	h.HandleCreatorKey(rec, postForm("/settings/creator", url.Values{
		"creator_key": {"nope"},
	}))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if strings.Contains(body, "Add a skill") {
		t.Error("creator panel must stay hidden for a wrong key")
	}
	if !strings.Contains(body, "doesn&#39;t match") {
		t.Error("expected the wrong-key message")
	}
}

func TestHandleAddSkill(t *testing.T) {
	h := setupTest(t)
	login(t, h)

	rec := httptest.NewRecorder()
	h.HandleAddSkill(rec, postForm("/settings/skills", url.Values{
		"creator_key": {h.cfg.CreatorKey},
		"name":        {"Chess Openings"},
		"category":    {"maths"},
	}))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	skills, err := ops.ListSkills(h.st)
	if err != nil {
		t.Fatalf("ListSkills: %v", err)
	}
	if skills.Total != 13 {
		t.Errorf("Total = %d, want 13", skills.Total)
	}
}

func TestHandleExport(t *testing.T) {
	h := setupTest(t)
	login(t, h)
	seedCapsule(t, h, false)

	req := httptest.NewRequest("GET", "/settings/export", nil)
	rec := httptest.NewRecorder()
	h.HandleExport(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "attachment") {
		t.Errorf("Content-Disposition = %q, want an attachment", cd)
	}

	var exported vault.AppState
	if err := json.Unmarshal(rec.Body.Bytes(), &exported); err != nil {
		t.Fatalf("export body is not valid JSON: %v", err)
	}
	if len(exported.Capsules) != 1 {
		t.Errorf("exported %d capsules, want 1", len(exported.Capsules))
	}
}

func TestHandleReset(t *testing.T) {
	h := setupTest(t)
	login(t, h)
	seedCapsule(t, h, false)

	rec := httptest.NewRecorder()
	h.HandleReset(rec, postForm("/settings/reset", url.Values{"confirm": {"true"}}))

	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rec.Code)
	}

	listed, err := ops.List(h.st, ops.ListInput{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if listed.Total != 0 {
		t.Error("reset should delete every capsule")
	}
}

func TestHandleReset_NoConfirm(t *testing.T) {
	h := setupTest(t)
	login(t, h)
	seedCapsule(t, h, false)

	rec := httptest.NewRecorder()
	h.HandleReset(rec, postForm("/settings/reset", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	listed, err := ops.List(h.st, ops.ListInput{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if listed.Total != 1 {
		t.Error("an unconfirmed reset must not delete anything")
	}
}

// --- security headers ---

func TestSecurityHeaders(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	rec := httptest.NewRecorder()
	securityHeaders(inner).ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	if got := rec.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q, want DENY", got)
	}
	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q, want nosniff", got)
	}
}
