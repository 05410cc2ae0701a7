package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/brijesht/folio/internal/auth"
	"github.com/brijesht/folio/internal/content"
	"github.com/brijesht/folio/internal/media"
	"github.com/brijesht/folio/internal/testutil"
)

const (
	testAdminEmail    = "admin@example.com"
	testAdminPassword = "s3cret"
)

// stubDelegate stands in for the managed identity service.
type stubDelegate struct {
	calls int
	err   error
	user  auth.User
}

func (d *stubDelegate) SignIn(_ context.Context, _, _ string) (auth.User, error) {
	d.calls++
	if d.err != nil {
		return auth.User{}, d.err
	}
	return d.user, nil
}

type testEnv struct {
	router   http.Handler
	svc      *content.Service
	delegate *stubDelegate
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()

	svc := content.NewService(testutil.TestStore(t), nil)
	delegate := &stubDelegate{err: &auth.CredentialError{Message: "no such account"}}
	chain := &auth.Chain{
		Static:   &auth.Static{Email: testAdminEmail, Password: testAdminPassword},
		Delegate: delegate,
	}
	sessions := auth.NewSessions("test-secret", time.Hour)

	mediaHost := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("media host: %v", err)
		}
		if got := r.FormValue("upload_preset"); got != "ml_default" {
			t.Errorf("upload_preset = %q", got)
		}
		json.NewEncoder(w).Encode(map[string]string{"secure_url": "https://cdn.example/hosted.png"})
	}))
	t.Cleanup(mediaHost.Close)

	uploader := media.New(mediaHost.URL, "ml_default", 1<<20)
	sseStub := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
	})
	return &testEnv{
		router:   NewRouter(svc, chain, sessions, uploader, sseStub),
		svc:      svc,
		delegate: delegate,
	}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) login(t *testing.T) string {
	t.Helper()
	w := e.do(t, http.MethodPost, "/auth/login", "", LoginRequest{Email: testAdminEmail, Password: testAdminPassword})
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp LoginResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	return resp.Token
}

func TestStaticLoginSkipsDelegate(t *testing.T) {
	env := newEnv(t)

	token := env.login(t)
	if env.delegate.calls != 0 {
		t.Errorf("static login contacted the delegate %d times", env.delegate.calls)
	}

	// The token restores the session with no further verification.
	w := env.do(t, http.MethodGet, "/auth/session", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("session status = %d", w.Code)
	}
	var resp SessionResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.User.Email != testAdminEmail || resp.User.ID != auth.StaticAdminID {
		t.Errorf("user = %+v", resp.User)
	}
}

func TestLoginSurfacesDelegateMessage(t *testing.T) {
	env := newEnv(t)

	w := env.do(t, http.MethodPost, "/auth/login", "", LoginRequest{Email: "other@example.com", Password: "pw"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", w.Code)
	}
	if env.delegate.calls != 1 {
		t.Errorf("delegate calls = %d, want 1", env.delegate.calls)
	}
	var resp errResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Error != "no such account" {
		t.Errorf("error = %q, want the delegate's verbatim message", resp.Error)
	}
}

func TestAdminRoutesRequireSession(t *testing.T) {
	env := newEnv(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/projects"},
		{http.MethodGet, "/messages"},
		{http.MethodPut, "/profile"},
		{http.MethodPost, "/uploads"},
	} {
		w := env.do(t, tc.method, tc.path, "", nil)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s %s without token: status = %d, want 401", tc.method, tc.path, w.Code)
		}
	}
}

func TestEventsStreamIsPublic(t *testing.T) {
	env := newEnv(t)

	// The public site subscribes to live updates with no session.
	w := env.do(t, http.MethodGet, "/events", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("unauthenticated /events status = %d, want 200", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("content type = %q", ct)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	env := newEnv(t)
	token := env.login(t)

	if w := env.do(t, http.MethodPost, "/auth/logout", token, nil); w.Code != http.StatusNoContent {
		t.Fatalf("logout status = %d", w.Code)
	}
	if w := env.do(t, http.MethodGet, "/auth/session", token, nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("revoked token still accepted: %d", w.Code)
	}
}

func TestContactFormEndToEnd(t *testing.T) {
	env := newEnv(t)
	before := time.Now().UnixMilli()

	w := env.do(t, http.MethodPost, "/messages", "", content.ContactSubmission{
		Name: "Jane", Email: "jane@x.com", Subject: "Hi", Message: "Hello",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("submit status = %d, body = %s", w.Code, w.Body.String())
	}

	token := env.login(t)
	w = env.do(t, http.MethodGet, "/messages", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}
	var resp MessageListResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Messages) != 1 {
		t.Fatalf("len = %d", len(resp.Messages))
	}
	msg := resp.Messages[0]
	if msg.Name != "Jane" || msg.Email != "jane@x.com" || msg.Subject != "Hi" || msg.Body != "Hello" {
		t.Errorf("message = %+v", msg)
	}
	if msg.IsRead {
		t.Error("new message must start unread")
	}
	after := time.Now().UnixMilli()
	if msg.Timestamp < before || msg.Timestamp > after {
		t.Errorf("timestamp %d outside [%d, %d]", msg.Timestamp, before, after)
	}
}

func TestMessagesNewestFirstAndUnreadFilter(t *testing.T) {
	env := newEnv(t)

	base := time.Now()
	env.svc.Now = func() time.Time { return base }
	env.do(t, http.MethodPost, "/messages", "", content.ContactSubmission{Name: "First", Email: "a@x.com", Message: "one"})
	env.svc.Now = func() time.Time { return base.Add(time.Minute) }
	env.do(t, http.MethodPost, "/messages", "", content.ContactSubmission{Name: "Second", Email: "b@x.com", Message: "two"})

	token := env.login(t)

	var all MessageListResponse
	w := env.do(t, http.MethodGet, "/messages", token, nil)
	if err := json.Unmarshal(w.Body.Bytes(), &all); err != nil {
		t.Fatal(err)
	}
	if len(all.Messages) != 2 || all.Messages[0].Name != "Second" {
		t.Fatalf("newest-first violated: %+v", all.Messages)
	}

	// Mark the newest read; the unread filter then shows only the older one.
	key := all.Messages[0].Key
	if w := env.do(t, http.MethodPatch, "/messages/"+key+"/read", token, ReadRequest{IsRead: true}); w.Code != http.StatusNoContent {
		t.Fatalf("patch status = %d", w.Code)
	}

	var unread MessageListResponse
	w = env.do(t, http.MethodGet, "/messages?filter=unread", token, nil)
	if err := json.Unmarshal(w.Body.Bytes(), &unread); err != nil {
		t.Fatal(err)
	}
	if len(unread.Messages) != 1 || unread.Messages[0].Name != "First" {
		t.Fatalf("unread filter = %+v", unread.Messages)
	}

	// The patch touched only is_read.
	w = env.do(t, http.MethodGet, "/messages", token, nil)
	if err := json.Unmarshal(w.Body.Bytes(), &all); err != nil {
		t.Fatal(err)
	}
	for _, m := range all.Messages {
		if m.Key == key {
			if !m.IsRead || m.Name != "Second" || m.Body != "two" {
				t.Errorf("patched message = %+v", m)
			}
		}
	}
}

func TestSkillEndToEnd(t *testing.T) {
	env := newEnv(t)
	token := env.login(t)

	w := env.do(t, http.MethodPost, "/skills", token, content.Skill{
		Name:         "Go",
		Category:     "Programming & Development",
		Proficiency:  80,
		DisplayOrder: 1,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", w.Code, w.Body.String())
	}

	// Publicly visible, grouped under its category with its proficiency.
	w = env.do(t, http.MethodGet, "/skills", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}
	var resp SkillListResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Skills) != 1 {
		t.Fatalf("len = %d", len(resp.Skills))
	}
	sk := resp.Skills[0]
	if sk.Name != "Go" || sk.Category != "Programming & Development" || sk.Proficiency != 80 {
		t.Errorf("skill = %+v", sk)
	}
}

func TestSkillRejectsUnknownCategory(t *testing.T) {
	env := newEnv(t)
	token := env.login(t)

	w := env.do(t, http.MethodPost, "/skills", token, content.Skill{Name: "Go", Category: "Wizardry", Proficiency: 80})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestProjectCrudFullOverwrite(t *testing.T) {
	env := newEnv(t)
	token := env.login(t)

	w := env.do(t, http.MethodPost, "/projects", token, map[string]any{
		"title":         "Folio",
		"description":   "Portfolio backend",
		"tech_stack":    "Go, chi, SQLite",
		"image_url":     "https://cdn.example/old.png",
		"display_order": 1,
		"is_featured":   true,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", w.Code, w.Body.String())
	}
	var created content.ProjectRecord
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}
	if len(created.TechStack) != 3 {
		t.Fatalf("tech_stack = %v", created.TechStack)
	}

	// Update omits image_url entirely: a full overwrite clears it.
	w = env.do(t, http.MethodPut, "/projects/"+created.Key, token, map[string]any{
		"title":         "Folio v2",
		"description":   "Portfolio backend",
		"tech_stack":    []string{"Go"},
		"display_order": 2,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("update status = %d, body = %s", w.Code, w.Body.String())
	}

	var list ProjectListResponse
	w = env.do(t, http.MethodGet, "/projects", "", nil)
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatal(err)
	}
	got := list.Projects[0]
	if got.Title != "Folio v2" || got.ImageURL != "" || got.IsFeatured {
		t.Errorf("overwrite was a merge: %+v", got)
	}

	// Delete removes it from the next snapshot, and again after "reload"
	// (a fresh read path, no cache).
	if w := env.do(t, http.MethodDelete, "/projects/"+created.Key, token, nil); w.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", w.Code)
	}
	w = env.do(t, http.MethodGet, "/projects", "", nil)
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatal(err)
	}
	if len(list.Projects) != 0 {
		t.Fatalf("deleted project still present: %+v", list.Projects)
	}
}

func TestProjectsSortedByDisplayOrder(t *testing.T) {
	env := newEnv(t)
	token := env.login(t)

	for i, title := range []string{"third", "first", "second"} {
		order := []int{3, 1, 2}[i]
		w := env.do(t, http.MethodPost, "/projects", token, map[string]any{
			"title": title, "description": "d", "display_order": order,
		})
		if w.Code != http.StatusCreated {
			t.Fatalf("create %s: %d", title, w.Code)
		}
	}

	var list ProjectListResponse
	w := env.do(t, http.MethodGet, "/projects", "", nil)
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatal(err)
	}
	want := []string{"first", "second", "third"}
	for i := range want {
		if list.Projects[i].Title != want[i] {
			t.Fatalf("order = %v", list.Projects)
		}
	}
}

func TestUpdateMissingProject(t *testing.T) {
	env := newEnv(t)
	token := env.login(t)

	w := env.do(t, http.MethodPut, "/projects/ghost", token, map[string]any{"title": "t", "description": "d"})
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestProfileRoundTrip(t *testing.T) {
	env := newEnv(t)
	token := env.login(t)

	// Before any save the profile is empty, not an error.
	w := env.do(t, http.MethodGet, "/profile", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}

	if w := env.do(t, http.MethodPut, "/profile", token, content.Profile{PhotoURL: "https://cdn.example/me.png"}); w.Code != http.StatusOK {
		t.Fatalf("put status = %d", w.Code)
	}

	var p content.Profile
	w = env.do(t, http.MethodGet, "/profile", "", nil)
	if err := json.Unmarshal(w.Body.Bytes(), &p); err != nil {
		t.Fatal(err)
	}
	if p.PhotoURL != "https://cdn.example/me.png" {
		t.Errorf("photoUrl = %q", p.PhotoURL)
	}
}

func TestUploadPassthrough(t *testing.T) {
	env := newEnv(t)
	token := env.login(t)

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("file", "shot.png")
	if err != nil {
		t.Fatal(err)
	}
	fmt.Fprint(part, "png-bytes")
	form.Close()

	req := httptest.NewRequest(http.MethodPost, "/uploads", &body)
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp UploadResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.URL != "https://cdn.example/hosted.png" {
		t.Errorf("url = %q", resp.URL)
	}
}

func TestContactValidation(t *testing.T) {
	env := newEnv(t)
	w := env.do(t, http.MethodPost, "/messages", "", content.ContactSubmission{Name: "", Email: "bad", Message: ""})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}
