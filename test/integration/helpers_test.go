package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jurisconnect/console/internal/cep"
	"github.com/jurisconnect/console/internal/directory"
	"github.com/jurisconnect/console/internal/domain"
	"github.com/jurisconnect/console/internal/gateway"
	"github.com/jurisconnect/console/internal/http/handler"
	"github.com/jurisconnect/console/internal/http/router"
	"github.com/jurisconnect/console/internal/repository"
	"github.com/jurisconnect/console/internal/security"
	"github.com/jurisconnect/console/internal/session"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	testEmail    = "ana.costa@escritorio.com.br"
	testPassword = "segredo-forte-123"
	testToken    = "tok-integration-1"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
}

// remoteAPI is a scriptable stand-in for the upstream JurisConnect API.
type remoteAPI struct {
	mu sync.Mutex

	// rejectTokens makes GET /api/users/me answer 401 regardless of token.
	rejectTokens bool
	// down makes every request fail at the network level.
	down bool

	logoutCalls int
}

func (a *remoteAPI) set(fn func(*remoteAPI)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	fn(a)
}

func (a *remoteAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	down := a.down
	reject := a.rejectTokens
	a.mu.Unlock()

	if down {
		hj, ok := w.(http.Hijacker)
		if !ok {
			panic("test server does not support hijacking")
		}
		conn, _, err := hj.Hijack()
		if err != nil {
			panic(err)
		}
		conn.Close()
		return
	}

	user := domain.User{ID: "u-1", Name: "Ana Costa", Email: testEmail, Role: domain.RoleLawyer}

	switch r.Method + " " + r.URL.Path {
	case "POST /api/login":
		var body struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if body.Email != testEmail || body.Password != testPassword {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": "Credenciais inválidas"})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"user": user, "token": testToken})

	case "POST /api/users":
		created := user
		created.ID = "u-2"
		created.Email = "novo@escritorio.com.br"
		created.Name = "Novo Advogado"
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{"user": created, "token": "tok-integration-2"})

	case "POST /api/logout":
		a.set(func(api *remoteAPI) { api.logoutCalls++ })
		w.WriteHeader(http.StatusOK)

	case "GET /api/users/me":
		if reject || r.Header.Get("Authorization") != "Bearer "+testToken {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"user": user, "token": ""})

	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

type consoleHarness struct {
	URL     string
	Client  *http.Client
	API     *remoteAPI
	Records repository.SessionRecordRepository
	Store   *session.Store
	Cookies *security.CookieManager
	Forced  *atomic.Int32
}

func newConsoleHarness(t *testing.T) *consoleHarness {
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
	records := repository.NewSessionRecordRepository(db)

	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := session.NewStore(records, session.NewMemoryTokenStore(), quiet)

	api := &remoteAPI{}
	apiServer := httptest.NewServer(api)
	t.Cleanup(apiServer.Close)

	forced := &atomic.Int32{}
	apiClient := &http.Client{
		Transport: &gateway.Transport{
			Tokens: store,
			OnUnauthorized: func(ctx context.Context, sid string) {
				forced.Add(1)
				_ = store.Clear(ctx, sid)
			},
		},
		Timeout: 5 * time.Second,
	}
	gw := gateway.New(apiServer.URL, apiClient, store, quiet)
	cookies := security.NewCookieManager(strings.Repeat("s", 32), time.Hour, false)

	mux := router.NewRouter(router.Dependencies{
		AuthHandler:    handler.NewAuthHandler(gw, store, quiet),
		ConsoleHandler: handler.NewConsoleHandler(directory.NewService(), cep.NewClient(apiServer.URL, nil), quiet),
		PageHandler:    handler.NewPageHandler(store, quiet),
		CookieManager:  cookies,
		Sessions:       store,
	})
	consoleServer := httptest.NewServer(mux)
	t.Cleanup(consoleServer.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
		Timeout: 10 * time.Second,
	}

	return &consoleHarness{
		URL:     consoleServer.URL,
		Client:  client,
		API:     api,
		Records: records,
		Store:   store,
		Cookies: cookies,
		Forced:  forced,
	}
}

func (h *consoleHarness) doJSON(t *testing.T, method, path string, body any) (*http.Response, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("encode body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, h.URL+path, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := h.Client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			t.Fatalf("decode envelope from %s: %v (%q)", path, err, raw)
		}
	}
	return resp, env
}

func (h *consoleHarness) login(t *testing.T, remember bool) {
	t.Helper()
	resp, env := h.doJSON(t, http.MethodPost, "/api/login", map[string]any{
		"email":    testEmail,
		"password": testPassword,
		"remember": remember,
	})
	if resp.StatusCode != http.StatusOK || !env.Success {
		t.Fatalf("login failed: status=%d success=%v", resp.StatusCode, env.Success)
	}
}

// sessionID recovers the browser session id from the signed cookie held
// in the client's jar.
func (h *consoleHarness) sessionID(t *testing.T) string {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, h.URL+"/", nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	for _, c := range h.Client.Jar.Cookies(req.URL) {
		if c.Name == security.SessionCookieName {
			sid, err := h.Cookies.Parse(c.Value)
			if err != nil {
				t.Fatalf("parse session cookie: %v", err)
			}
			return sid
		}
	}
	t.Fatal("no session cookie in jar")
	return ""
}
