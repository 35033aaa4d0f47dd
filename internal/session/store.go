package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jurisconnect/console/internal/domain"
	"github.com/jurisconnect/console/internal/repository"
)

var ErrNilUser = errors.New("session: user is required")

// VolatileTokenStore is the tab-lifetime retention tier. Implementations
// must treat an unavailable backend as empty rather than failing reads.
type VolatileTokenStore interface {
	SetToken(ctx context.Context, sid, token string) error
	Token(ctx context.Context, sid string) (string, error)
	DeleteToken(ctx context.Context, sid string) error
}

// Store is the single authority over the Session Record. The user blob and
// remember flag always land in the durable tier; the credential token goes
// durable only when remember is set, volatile otherwise. Token presence is
// the sole authentication signal.
type Store struct {
	records  repository.SessionRecordRepository
	volatile VolatileTokenStore
	logger   *slog.Logger
}

func NewStore(records repository.SessionRecordRepository, volatile VolatileTokenStore, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{records: records, volatile: volatile, logger: logger}
}

func (s *Store) Save(ctx context.Context, sid string, user *domain.User, token string, remember bool) error {
	if user == nil {
		return ErrNilUser
	}
	blob, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user blob: %w", err)
	}

	rec := &domain.SessionRecord{SessionID: sid, UserBlob: blob, Remember: remember}
	if remember {
		rec.Token = token
	}
	if err := s.records.Upsert(ctx, rec); err != nil {
		return fmt.Errorf("save session record: %w", err)
	}

	if remember || token == "" {
		// Token lives durably (or not at all); drop any stale volatile copy.
		if err := s.volatile.DeleteToken(ctx, sid); err != nil {
			s.logger.WarnContext(ctx, "volatile tier delete failed", "sid", sid, "error", err)
		}
		return nil
	}
	if err := s.volatile.SetToken(ctx, sid, token); err != nil {
		return fmt.Errorf("save volatile token: %w", err)
	}
	return nil
}

// Clear removes the record from both tiers. Clearing an absent session is
// a no-op.
func (s *Store) Clear(ctx context.Context, sid string) error {
	var errs []error
	if err := s.records.DeleteBySessionID(ctx, sid); err != nil && !errors.Is(err, repository.ErrRecordNotFound) {
		errs = append(errs, err)
	}
	if err := s.volatile.DeleteToken(ctx, sid); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// IsAuthenticated reports whether a non-empty token is retrievable for the
// session, durable tier first. Unavailable storage reads as logged out.
func (s *Store) IsAuthenticated(ctx context.Context, sid string) bool {
	return s.Token(ctx, sid) != ""
}

// User returns the cached user blob, or nil when absent or unreadable. It
// never validates the token and must not be used as an authorization check.
func (s *Store) User(ctx context.Context, sid string) *domain.User {
	rec, err := s.records.FindBySessionID(ctx, sid)
	if err != nil {
		if !errors.Is(err, repository.ErrRecordNotFound) {
			s.logger.WarnContext(ctx, "durable tier read failed", "sid", sid, "error", err)
		}
		return nil
	}
	var user domain.User
	if err := json.Unmarshal(rec.UserBlob, &user); err != nil {
		s.logger.WarnContext(ctx, "corrupt user blob", "sid", sid, "error", err)
		return nil
	}
	return &user
}

// Token returns the credential token from whichever tier holds it,
// preferring durable. Empty when the session is unauthenticated.
func (s *Store) Token(ctx context.Context, sid string) string {
	rec, err := s.records.FindBySessionID(ctx, sid)
	if err == nil && rec.Token != "" {
		return rec.Token
	}
	if err != nil && !errors.Is(err, repository.ErrRecordNotFound) {
		s.logger.WarnContext(ctx, "durable tier read failed", "sid", sid, "error", err)
	}
	tok, err := s.volatile.Token(ctx, sid)
	if err != nil {
		s.logger.WarnContext(ctx, "volatile tier read failed", "sid", sid, "error", err)
		return ""
	}
	return tok
}

// Remember reports the stored remember preference for shell rendering.
func (s *Store) Remember(ctx context.Context, sid string) bool {
	rec, err := s.records.FindBySessionID(ctx, sid)
	if err != nil {
		return false
	}
	return rec.Remember
}
