package session

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/jurisconnect/console/internal/domain"
	"github.com/jurisconnect/console/internal/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newDurableTierForTest(t *testing.T) repository.SessionRecordRepository {
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
	return repository.NewSessionRecordRepository(db)
}

func testUser() *domain.User {
	return &domain.User{ID: "1", Name: "Ana Costa", Email: "ana@jurisconnect.test", Role: domain.RoleLawyer}
}

func TestSaveThenIsAuthenticatedTracksTokenPresence(t *testing.T) {
	store := NewStore(newDurableTierForTest(t), NewMemoryTokenStore(), slog.Default())
	ctx := context.Background()

	if store.IsAuthenticated(ctx, "sid") {
		t.Fatal("fresh session must be unauthenticated")
	}

	if err := store.Save(ctx, "sid", testUser(), "tok1", true); err != nil {
		t.Fatalf("save: %v", err)
	}
	if !store.IsAuthenticated(ctx, "sid") {
		t.Fatal("expected authenticated after save with token")
	}
	if got := store.Token(ctx, "sid"); got != "tok1" {
		t.Fatalf("unexpected token %q", got)
	}

	// Degraded/legacy mode: a save without a token is not authenticated,
	// even though the user blob is cached.
	if err := store.Save(ctx, "sid", testUser(), "", true); err != nil {
		t.Fatalf("tokenless save: %v", err)
	}
	if store.IsAuthenticated(ctx, "sid") {
		t.Fatal("token presence is the sole authentication signal")
	}
	if store.User(ctx, "sid") == nil {
		t.Fatal("user blob should still be cached")
	}
}

func TestSaveRejectsNilUser(t *testing.T) {
	store := NewStore(newDurableTierForTest(t), NewMemoryTokenStore(), slog.Default())

	if err := store.Save(context.Background(), "sid", nil, "tok", true); !errors.Is(err, ErrNilUser) {
		t.Fatalf("expected ErrNilUser, got %v", err)
	}
}

func TestClearIsIdempotent(t *testing.T) {
	store := NewStore(newDurableTierForTest(t), NewMemoryTokenStore(), slog.Default())
	ctx := context.Background()

	if err := store.Clear(ctx, "sid"); err != nil {
		t.Fatalf("clear on empty state: %v", err)
	}

	if err := store.Save(ctx, "sid", testUser(), "tok1", false); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Clear(ctx, "sid"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if store.IsAuthenticated(ctx, "sid") {
		t.Fatal("expected unauthenticated after clear")
	}
	if store.User(ctx, "sid") != nil {
		t.Fatal("expected user blob removed after clear")
	}
	if err := store.Clear(ctx, "sid"); err != nil {
		t.Fatalf("second clear: %v", err)
	}
}

func TestRememberTieringAcrossRestart(t *testing.T) {
	durable := newDurableTierForTest(t)
	ctx := context.Background()

	remembered := NewStore(durable, NewMemoryTokenStore(), slog.Default())
	if err := remembered.Save(ctx, "sid-durable", testUser(), "tok-durable", true); err != nil {
		t.Fatalf("save remembered: %v", err)
	}
	volatile := NewMemoryTokenStore()
	forgotten := NewStore(durable, volatile, slog.Default())
	if err := forgotten.Save(ctx, "sid-volatile", testUser(), "tok-volatile", false); err != nil {
		t.Fatalf("save volatile: %v", err)
	}
	if !forgotten.IsAuthenticated(ctx, "sid-volatile") {
		t.Fatal("volatile session must authenticate before restart")
	}

	// A restart keeps the durable tier and drops the volatile one.
	restarted := NewStore(durable, NewMemoryTokenStore(), slog.Default())
	if !restarted.IsAuthenticated(ctx, "sid-durable") {
		t.Fatal("remembered token must survive restart")
	}
	if got := restarted.Token(ctx, "sid-durable"); got != "tok-durable" {
		t.Fatalf("unexpected durable token %q", got)
	}
	if restarted.IsAuthenticated(ctx, "sid-volatile") {
		t.Fatal("non-remembered token must not survive restart")
	}
	if restarted.User(ctx, "sid-volatile") == nil {
		t.Fatal("user blob always lands in the durable tier")
	}
}

type failingRepo struct{ err error }

func (r *failingRepo) Upsert(context.Context, *domain.SessionRecord) error { return r.err }
func (r *failingRepo) FindBySessionID(context.Context, string) (*domain.SessionRecord, error) {
	return nil, r.err
}
func (r *failingRepo) DeleteBySessionID(context.Context, string) error { return r.err }
func (r *failingRepo) CleanupOlderThan(context.Context, time.Duration) (int64, error) {
	return 0, r.err
}

func TestUnavailableDurableTierDegradesToLoggedOut(t *testing.T) {
	repo := &failingRepo{err: errors.New("disk gone")}
	store := NewStore(repo, NewMemoryTokenStore(), slog.Default())
	ctx := context.Background()

	if store.IsAuthenticated(ctx, "sid") {
		t.Fatal("unavailable storage must read as unauthenticated")
	}
	if store.User(ctx, "sid") != nil {
		t.Fatal("unavailable storage must read user as nil")
	}
	if err := store.Save(ctx, "sid", testUser(), "tok", true); err == nil {
		t.Fatal("durable write failure must propagate")
	}
}
