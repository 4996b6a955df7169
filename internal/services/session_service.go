package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/isdelr/weight-tracker-be/internal/auth"
	"github.com/isdelr/weight-tracker-be/internal/database"
	"github.com/isdelr/weight-tracker-be/internal/models"
	"github.com/rs/zerolog/log"
)

// SessionServiceProvider defines the interface for session services.
type SessionServiceProvider interface {
	auth.SessionResolver
	Create(ctx context.Context, accountID int64) (token string, session models.Session, err error)
	Revoke(ctx context.Context, sessionID string) error
}

// SessionService keeps login sessions server-side. The cookie token only
// names a session row; a token whose row is gone or expired is rejected.
type SessionService struct {
	db     *database.DB
	signer *auth.Signer
	ttl    time.Duration
	now    func() time.Time
}

// NewSessionService creates a new SessionService.
func NewSessionService(db *database.DB, signer *auth.Signer, ttl time.Duration) *SessionService {
	return &SessionService{db: db, signer: signer, ttl: ttl, now: time.Now}
}

// Create opens a session for the account and returns its signed token.
// Expired sessions of the same account are pruned on the way.
func (s *SessionService) Create(ctx context.Context, accountID int64) (string, models.Session, error) {
	now := s.now().UTC().Truncate(time.Second)
	session := models.Session{
		ID:        uuid.New().String(),
		AccountID: accountID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}

	err := s.db.WithTx(ctx, func(tx *database.Tx) error {
		if _, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM session WHERE account_id = ? AND expires_at <= ?"), accountID, now); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, tx.Rebind(
			"INSERT INTO session (id, account_id, created_at, expires_at) VALUES (?, ?, ?, ?)"),
			session.ID, session.AccountID, session.CreatedAt, session.ExpiresAt)
		return err
	})
	if err != nil {
		return "", models.Session{}, fmt.Errorf("failed to create session: %w", err)
	}

	token, err := s.signer.Sign(session)
	if err != nil {
		return "", models.Session{}, err
	}
	return token, session, nil
}

// Resolve verifies a session token and looks its session up.
func (s *SessionService) Resolve(ctx context.Context, token string) (models.Caller, error) {
	sessionID, accountID, err := s.signer.Verify(token)
	if err != nil {
		return models.Caller{}, wrapError(ErrUnauthorized, "Authentication required", err)
	}

	var session models.Session
	row := s.db.QueryRowContext(ctx, s.db.Rebind("SELECT id, account_id, created_at, expires_at FROM session WHERE id = ?"), sessionID)
	err = row.Scan(&session.ID, &session.AccountID, &session.CreatedAt, &session.ExpiresAt)
	if err != nil {
		if err = database.MapError(err); errors.Is(err, database.ErrNotFound) {
			return models.Caller{}, newError(ErrUnauthorized, "Authentication required")
		}
		return models.Caller{}, fmt.Errorf("failed to load session: %w", err)
	}

	if session.AccountID != accountID {
		return models.Caller{}, newError(ErrUnauthorized, "Authentication required")
	}
	if session.Expired(s.now()) {
		if err := s.Revoke(ctx, session.ID); err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("session_id", session.ID).Msg("Failed to remove expired session")
		}
		return models.Caller{}, newError(ErrUnauthorized, "Authentication required")
	}

	return models.Caller{AccountID: session.AccountID, SessionID: session.ID}, nil
}

// Revoke deletes a session. Revoking an unknown session is not an error.
func (s *SessionService) Revoke(ctx context.Context, sessionID string) error {
	return s.db.WithTx(ctx, func(tx *database.Tx) error {
		_, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM session WHERE id = ?"), sessionID)
		return err
	})
}
