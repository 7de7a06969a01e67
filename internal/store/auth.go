package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/JonMunkholm/flashcards/internal/core"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// UpsertUser returns the user with email, creating it on first sign-in.
func (s *Store) UpsertUser(ctx context.Context, email string) (*core.User, error) {
	var (
		id   pgtype.UUID
		user core.User
	)
	err := s.db.QueryRow(ctx,
		`INSERT INTO users (id, email) VALUES ($1, $2)
		 ON CONFLICT (email) DO UPDATE SET email = EXCLUDED.email
		 RETURNING id, email, created_at`,
		pgUUID(uuid.New()), email).Scan(&id, &user.Email, &user.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("upsert user: %w", err)
	}
	user.ID = fromPgUUID(id)
	return &user, nil
}

// SaveSignInCode stores code, replacing any pending code for the same email.
func (s *Store) SaveSignInCode(ctx context.Context, code core.SignInCode) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO sign_in_codes (email, code_hash, attempts, expires_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (email) DO UPDATE
		 SET code_hash = EXCLUDED.code_hash, attempts = EXCLUDED.attempts, expires_at = EXCLUDED.expires_at`,
		code.Email, code.CodeHash, int32(code.Attempts), code.ExpiresAt)
	if err != nil {
		return fmt.Errorf("save sign-in code: %w", err)
	}
	return nil
}

// ClaimSignInAttempt increments the attempt counter of the pending code for
// email and returns the code, unless maxAttempts was already reached.
// Concurrent guesses serialize on the row lock, so at most maxAttempts of
// them ever see the hash.
func (s *Store) ClaimSignInAttempt(ctx context.Context, email string, maxAttempts int) (*core.SignInCode, error) {
	var (
		code     core.SignInCode
		attempts int32
	)
	err := s.db.QueryRow(ctx,
		`UPDATE sign_in_codes SET attempts = attempts + 1
		 WHERE email = $1 AND attempts < $2
		 RETURNING email, code_hash, attempts, expires_at`,
		email, int32(maxAttempts)).Scan(&code.Email, &code.CodeHash, &attempts, &code.ExpiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		var exists bool
		if err := s.db.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM sign_in_codes WHERE email = $1)`, email).Scan(&exists); err != nil {
			return nil, fmt.Errorf("check sign-in code: %w", err)
		}
		if exists {
			return nil, core.ErrTooManyGuesses
		}
		return nil, core.ErrCodeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("claim sign-in attempt: %w", err)
	}
	code.Attempts = int(attempts)
	return &code, nil
}

// DeleteSignInCode removes the pending code for email.
func (s *Store) DeleteSignInCode(ctx context.Context, email string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM sign_in_codes WHERE email = $1`, email)
	if err != nil {
		return fmt.Errorf("delete sign-in code: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return core.ErrCodeNotFound
	}
	return nil
}

// CreateSession stores a session keyed by its token hash.
func (s *Store) CreateSession(ctx context.Context, session core.Session) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO sessions (token_hash, user_id, expires_at) VALUES ($1, $2, $3)`,
		session.TokenHash, pgUUID(session.UserID), session.ExpiresAt)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// GetSession returns a session and its user.
func (s *Store) GetSession(ctx context.Context, tokenHash string) (*core.Session, *core.User, error) {
	var (
		userID  pgtype.UUID
		session = core.Session{TokenHash: tokenHash}
		user    core.User
	)
	err := s.db.QueryRow(ctx,
		`SELECT s.user_id, s.expires_at, u.email, u.created_at
		 FROM sessions s JOIN users u ON u.id = s.user_id
		 WHERE s.token_hash = $1`,
		tokenHash).Scan(&userID, &session.ExpiresAt, &user.Email, &user.CreatedAt)
	if err != nil {
		return nil, nil, notFound(err, core.ErrSessionNotFound)
	}
	session.UserID = fromPgUUID(userID)
	user.ID = session.UserID
	return &session, &user, nil
}

// DeleteSession ends a session.
func (s *Store) DeleteSession(ctx context.Context, tokenHash string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM sessions WHERE token_hash = $1`, tokenHash)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return core.ErrSessionNotFound
	}
	return nil
}

// PurgeExpired deletes sessions and sign-in codes that expired before now,
// in one transaction.
func (s *Store) PurgeExpired(ctx context.Context, now time.Time) (sessions, codes int64, err error) {
	err = s.withTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM sessions WHERE expires_at < $1`, now)
		if err != nil {
			return fmt.Errorf("purge sessions: %w", err)
		}
		sessions = tag.RowsAffected()

		tag, err = tx.Exec(ctx, `DELETE FROM sign_in_codes WHERE expires_at < $1`, now)
		if err != nil {
			return fmt.Errorf("purge sign-in codes: %w", err)
		}
		codes = tag.RowsAffected()
		return nil
	})
	return sessions, codes, err
}
