package gateway

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jurisconnect/console/internal/domain"
	"github.com/jurisconnect/console/internal/repository"
	"github.com/jurisconnect/console/internal/session"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newStoreForTest(t *testing.T) *session.Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&domain.SessionRecord{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return session.NewStore(repository.NewSessionRecordRepository(db), session.NewMemoryTokenStore(), slog.Default())
}

func newGatewayForTest(t *testing.T, api http.Handler) (*Gateway, *session.Store, *atomic.Int64) {
	t.Helper()
	store := newStoreForTest(t)

	var forced atomic.Int64
	transport := &Transport{
		Tokens: store,
		OnUnauthorized: func(ctx context.Context, sid string) {
			forced.Add(1)
			_ = store.Clear(ctx, sid)
		},
	}

	server := httptest.NewServer(api)
	t.Cleanup(server.Close)

	client := &http.Client{Transport: transport, Timeout: 5 * time.Second}
	return New(server.URL, client, store, slog.Default()), store, &forced
}

func TestLoginSuccessSavesSession(t *testing.T) {
	gw, store, _ := newGatewayForTest(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/login" || r.Method != http.MethodPost {
			t.Errorf("unexpected call %s %s", r.Method, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"user":{"id":"1","name":"Ana","email":"a@b.com","role":"lawyer"},"token":"tok1"}`))
	}))
	ctx := context.Background()

	user, err := gw.Login(ctx, "sid", "a@b.com", "secret123", true)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if user.ID != "1" || user.Role != domain.RoleLawyer {
		t.Fatalf("unexpected user %+v", user)
	}
	if !store.IsAuthenticated(ctx, "sid") {
		t.Fatal("expected authenticated session after login")
	}
	if got := store.Token(ctx, "sid"); got != "tok1" {
		t.Fatalf("unexpected token %q", got)
	}
	if !store.Remember(ctx, "sid") {
		t.Fatal("expected remember flag persisted")
	}
}

func TestLoginRejectedSurfacesVerbatimErrorAndKeepsState(t *testing.T) {
	gw, store, forced := newGatewayForTest(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"Credenciais inválidas"}`))
	}))
	ctx := context.Background()

	// Pre-existing session from another account must stay untouched.
	if err := store.Save(ctx, "sid", &domain.User{ID: "9", Name: "Old", Email: "old@b.com", Role: domain.RoleAdmin}, "tok-old", true); err != nil {
		t.Fatalf("seed session: %v", err)
	}

	_, err := gw.Login(ctx, "sid", "a@b.com", "wrong", false)
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if err.Error() != "Credenciais inválidas" {
		t.Fatalf("expected verbatim API message, got %q", err.Error())
	}
	if got := store.Token(ctx, "sid"); got != "tok-old" {
		t.Fatalf("previous session must be untouched, token=%q", got)
	}
	if forced.Load() != 0 {
		t.Fatalf("login 401 must not trigger forced logout, got %d", forced.Load())
	}
}

func TestLoginUnreachableIsAuthUnavailable(t *testing.T) {
	store := newStoreForTest(t)
	client := &http.Client{Transport: &Transport{Tokens: store}, Timeout: time.Second}
	gw := New("http://127.0.0.1:1", client, store, slog.Default())

	_, err := gw.Login(context.Background(), "sid", "a@b.com", "secret123", false)
	if !errors.Is(err, ErrAuthUnavailable) {
		t.Fatalf("expected ErrAuthUnavailable, got %v", err)
	}
}

func TestLoginMalformedResponseIsAuthUnavailable(t *testing.T) {
	gw, store, _ := newGatewayForTest(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"unexpected":"shape"}`))
	}))
	ctx := context.Background()

	_, err := gw.Login(ctx, "sid", "a@b.com", "secret123", false)
	if !errors.Is(err, ErrAuthUnavailable) {
		t.Fatalf("expected ErrAuthUnavailable for malformed body, got %v", err)
	}
	if store.IsAuthenticated(ctx, "sid") {
		t.Fatal("malformed response must not authenticate")
	}
}

func TestRegisterAutoAuthenticates(t *testing.T) {
	gw, store, _ := newGatewayForTest(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/users" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"user":{"id":"7","name":"Novo","email":"n@b.com","role":"intern"},"token":"tok-new"}`))
	}))
	ctx := context.Background()

	user, err := gw.Register(ctx, "sid", domain.RegisterProfile{Role: domain.RoleIntern, Password: "longenough"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.ID != "7" {
		t.Fatalf("unexpected user %+v", user)
	}
	if !store.IsAuthenticated(ctx, "sid") {
		t.Fatal("register must auto-authenticate")
	}
	if !store.Remember(ctx, "sid") {
		t.Fatal("register defaults to remembered sessions")
	}
}

func TestRegisterValidationErrorIsVerbatim(t *testing.T) {
	gw, _, _ := newGatewayForTest(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"CPF inválido"}`))
	}))

	_, err := gw.Register(context.Background(), "sid", domain.RegisterProfile{})
	if !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("expected ErrValidationFailed, got %v", err)
	}
	if err.Error() != "CPF inválido" {
		t.Fatalf("expected verbatim message, got %q", err.Error())
	}
}

func TestLogoutClearsStateEvenWhenAPIUnreachable(t *testing.T) {
	store := newStoreForTest(t)
	client := &http.Client{Transport: &Transport{Tokens: store}, Timeout: time.Second}
	gw := New("http://127.0.0.1:1", client, store, slog.Default())
	ctx := context.Background()

	if err := store.Save(ctx, "sid", &domain.User{ID: "1", Name: "Ana", Email: "a@b.com", Role: domain.RoleLawyer}, "tok1", true); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := gw.Logout(ctx, "sid"); err != nil {
		t.Fatalf("logout must not surface network failure: %v", err)
	}
	if store.IsAuthenticated(ctx, "sid") {
		t.Fatal("logout must clear local state despite network failure")
	}
}

func TestUnauthorizedResponseForcesLogoutOnce(t *testing.T) {
	api := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/login":
			w.Write([]byte(`{"user":{"id":"1","name":"Ana","email":"a@b.com","role":"lawyer"},"token":"tok1"}`))
		default:
			w.WriteHeader(http.StatusUnauthorized)
		}
	})
	gw, store, forced := newGatewayForTest(t, api)
	ctx := context.Background()

	if _, err := gw.Login(ctx, "sid", "a@b.com", "secret123", true); err != nil {
		t.Fatalf("login: %v", err)
	}

	_, err := gw.Refresh(ctx, "sid")
	if !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
	if store.IsAuthenticated(ctx, "sid") {
		t.Fatal("401 must clear the session store")
	}
	if forced.Load() != 1 {
		t.Fatalf("expected exactly one forced logout, got %d", forced.Load())
	}
}

func TestRefreshRewritesUserKeepingToken(t *testing.T) {
	api := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/login":
			w.Write([]byte(`{"user":{"id":"1","name":"Ana","email":"a@b.com","role":"lawyer"},"token":"tok1"}`))
		case "/api/users/me":
			if got := r.Header.Get("Authorization"); got != "Bearer tok1" {
				t.Errorf("expected bearer token on refresh, got %q", got)
			}
			w.Write([]byte(`{"user":{"id":"1","name":"Ana Costa","email":"a@b.com","role":"lawyer"}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	gw, store, _ := newGatewayForTest(t, api)
	ctx := context.Background()

	if _, err := gw.Login(ctx, "sid", "a@b.com", "secret123", true); err != nil {
		t.Fatalf("login: %v", err)
	}
	user, err := gw.Refresh(ctx, "sid")
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if user.Name != "Ana Costa" {
		t.Fatalf("expected refreshed user, got %+v", user)
	}
	if got := store.Token(ctx, "sid"); got != "tok1" {
		t.Fatalf("refresh must keep the stored token, got %q", got)
	}
}
