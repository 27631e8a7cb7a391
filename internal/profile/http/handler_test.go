package http

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	accountdomain "github.com/AlibekovAA/snapfeed/internal/account/domain"
	accountrepo "github.com/AlibekovAA/snapfeed/internal/account/repository"
	authdomain "github.com/AlibekovAA/snapfeed/internal/auth/domain"
	authservice "github.com/AlibekovAA/snapfeed/internal/auth/service"
	"github.com/AlibekovAA/snapfeed/internal/common/clock"
	"github.com/AlibekovAA/snapfeed/internal/common/constants"
	commoncrypto "github.com/AlibekovAA/snapfeed/internal/common/crypto"
	"github.com/AlibekovAA/snapfeed/internal/common/jwtverify"
	"github.com/AlibekovAA/snapfeed/internal/common/logger"
	"github.com/AlibekovAA/snapfeed/internal/media"
	"github.com/AlibekovAA/snapfeed/internal/profile/service"
)

const testSecret = "test-secret-key-at-least-32-bytes!!"

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

type memStore struct{}

func (memStore) Backend() string { return "mem" }

func (memStore) Put(_ context.Context, obj media.Object) (string, error) {
	return "/media/" + obj.Key, nil
}

func (memStore) Delete(context.Context, string) error { return nil }

type testEnv struct {
	mux    *http.ServeMux
	repo   *accountrepo.MemoryRepository
	cookie *http.Cookie
}

func setupHandler(t *testing.T) *testEnv {
	t.Helper()
	log := logger.NewWriter(&strings.Builder{}, "test", "ERROR")
	ids := commoncrypto.NewUUIDGenerator()
	c := clock.NewRealClock()

	repo := accountrepo.NewMemoryRepository()
	account := accountdomain.Account{ID: "user-1", Email: "alice@example.com", Username: "alice", Name: "Alice"}
	if err := repo.Create(context.Background(), account); err != nil {
		t.Fatalf("seed: %v", err)
	}

	sessions := authservice.NewSessionIssuer(testSecret, ids, time.Hour, c)
	h := NewHandler(Config{
		Profiles:       service.NewProfileService(repo, media.NewUploader(memStore{}, c, ids, log), log),
		Sessions:       sessions,
		Verifier:       jwtverify.NewVerifier(testSecret, log),
		Log:            log,
		RequestTimeout: time.Second,
		UploadTimeout:  time.Second,
	})
	mux := http.NewServeMux()
	h.Register(mux)

	session, err := sessions.Issue(authdomain.IdentityFromAccount(account))
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	return &testEnv{
		mux:    mux,
		repo:   repo,
		cookie: &http.Cookie{Name: constants.SessionCookieName, Value: session.Token},
	}
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	req.AddCookie(e.cookie)
	rec := httptest.NewRecorder()
	e.mux.ServeHTTP(rec, req)
	return rec
}

func updateRequest(t *testing.T, fields map[string]string, withAvatar bool) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if withAvatar {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="profileImage"; filename="me.png"`)
		h.Set("Content-Type", "image/png")
		pw, err := w.CreatePart(h)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		_, _ = pw.Write(pngHeader)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	req := httptest.NewRequest(http.MethodPut, "/api/profile", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestGetProfile(t *testing.T) {
	env := setupHandler(t)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/profile", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body profileResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Username != "alice" || body.Email != "alice@example.com" {
		t.Errorf("unexpected profile %+v", body)
	}
}

func TestGetProfile_RequiresSession(t *testing.T) {
	env := setupHandler(t)

	rec := httptest.NewRecorder()
	env.mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/profile", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestUpdateProfile_RefreshesSession(t *testing.T) {
	env := setupHandler(t)

	rec := env.do(updateRequest(t, map[string]string{"name": "Alice B", "bio": "hi"}, true))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body updateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.User.Name != "Alice B" || body.User.Bio != "hi" || !strings.HasPrefix(body.User.ProfileImage, "/media/avatars/") {
		t.Errorf("unexpected user %+v", body.User)
	}

	var refreshed *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == constants.SessionCookieName {
			refreshed = c
		}
	}
	if refreshed == nil {
		t.Fatal("expected refreshed session cookie")
	}
	claims, err := jwtverify.ParseToken(refreshed.Value, []byte(testSecret))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Name != "Alice B" || claims.AvatarURL == "" {
		t.Errorf("expected updated claims, got %+v", claims)
	}
}

func TestUpdateProfile_EmptyBioClears(t *testing.T) {
	env := setupHandler(t)
	env.do(updateRequest(t, map[string]string{"bio": "something"}, false))

	rec := env.do(updateRequest(t, map[string]string{"bio": ""}, false))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	account, _ := env.repo.FindByID(context.Background(), "user-1")
	if account.Bio == nil || *account.Bio != "" {
		t.Errorf("expected empty bio, got %v", account.Bio)
	}
}

func TestUpdateProfile_NothingToUpdate(t *testing.T) {
	env := setupHandler(t)

	rec := env.do(updateRequest(t, nil, false))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestUpdateProfile_IgnoresEmailAndUsername(t *testing.T) {
	env := setupHandler(t)

	rec := env.do(updateRequest(t, map[string]string{"name": "A", "email": "evil@example.com", "username": "root"}, false))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	account, _ := env.repo.FindByID(context.Background(), "user-1")
	if account.Email != "alice@example.com" || account.Username != "alice" {
		t.Errorf("email and username must be immutable, got %+v", account)
	}
}

func TestUpdateProfile_BlankNameRejected(t *testing.T) {
	env := setupHandler(t)

	for _, name := range []string{"", "   "} {
		rec := env.do(updateRequest(t, map[string]string{"name": name, "bio": "hello"}, false))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("name %q: expected 400, got %d: %s", name, rec.Code, rec.Body.String())
		}
		if !strings.Contains(rec.Body.String(), "name cannot be empty") {
			t.Errorf("name %q: unexpected body %s", name, rec.Body.String())
		}
	}

	stored, err := env.repo.FindByID(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if stored.Name != "Alice" {
		t.Errorf("expected stored name to stay Alice, got %q", stored.Name)
	}
	if stored.Bio != nil {
		t.Errorf("expected bio untouched by rejected update, got %q", *stored.Bio)
	}
}
