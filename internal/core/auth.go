package core

// auth.go implements passwordless sign-in. A six-digit code is emailed to the
// user; exchanging it yields a bearer token. Only hashes are persisted: the
// code as bcrypt, the token as SHA-256 so sessions can be looked up by hash.

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"net/mail"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const (
	signInCodeDigits = 6
	sessionTokenSize = 32
)

// CodeSender delivers a sign-in code to an email address.
type CodeSender interface {
	SendCode(ctx context.Context, email, code string) error
}

// logSender writes codes to the log. It stands in for a mail transport in
// development.
type logSender struct{}

func (logSender) SendCode(ctx context.Context, email, code string) error {
	slog.InfoContext(ctx, "sign-in code issued", "email", email, "code", code)
	return nil
}

// RequestSignIn issues a new sign-in code for email, replacing any pending
// one, and hands it to the CodeSender.
func (s *Service) RequestSignIn(ctx context.Context, email string) error {
	email, err := normalizeEmail(email)
	if err != nil {
		return err
	}

	code, err := newSignInCode()
	if err != nil {
		return fmt.Errorf("generate code: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), s.codeCost)
	if err != nil {
		return fmt.Errorf("hash code: %w", err)
	}

	err = s.store.SaveSignInCode(ctx, SignInCode{
		Email:     email,
		CodeHash:  string(hash),
		ExpiresAt: s.now().Add(s.cfg.Auth.CodeTTL),
	})
	if err != nil {
		return fmt.Errorf("save code: %w", err)
	}

	slog.InfoContext(ctx, "sign-in requested", "email", email, "ip", GetIPAddressFromContext(ctx))
	if err := s.sender.SendCode(ctx, email, code); err != nil {
		return fmt.Errorf("send code: %w", err)
	}
	return nil
}

// VerifySignIn exchanges a sign-in code for a session. The code is consumed
// on success, and also once it has expired or been guessed at too often.
func (s *Service) VerifySignIn(ctx context.Context, email, code string) (*SignInResult, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}

	pending, err := s.store.ClaimSignInAttempt(ctx, email, s.cfg.Auth.MaxCodeAttempts)
	if errors.Is(err, ErrTooManyGuesses) {
		s.discardCode(ctx, email)
		return nil, ErrTooManyGuesses
	}
	if err != nil {
		return nil, err
	}

	now := s.now()
	if now.After(pending.ExpiresAt) {
		s.discardCode(ctx, email)
		return nil, ErrCodeExpired
	}
	if bcrypt.CompareHashAndPassword([]byte(pending.CodeHash), []byte(strings.TrimSpace(code))) != nil {
		return nil, ErrInvalidCode
	}
	s.discardCode(ctx, email)

	user, err := s.store.UpsertUser(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("upsert user: %w", err)
	}

	token, err := newSessionToken()
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	session := Session{
		TokenHash: HashToken(token),
		UserID:    user.ID,
		ExpiresAt: now.Add(s.cfg.Auth.SessionTTL),
	}
	if err := s.store.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	slog.InfoContext(ctx, "signed in",
		"user_id", user.ID,
		"ip", GetIPAddressFromContext(ctx),
		"user_agent", GetUserAgentFromContext(ctx),
	)
	return &SignInResult{Token: token, User: *user, ExpiresAt: session.ExpiresAt}, nil
}

// Authenticate resolves a bearer token to its user. Unknown and expired
// tokens return ErrUnauthorized.
func (s *Service) Authenticate(ctx context.Context, token string) (*User, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}

	hash := HashToken(token)
	session, user, err := s.store.GetSession(ctx, hash)
	if errors.Is(err, ErrSessionNotFound) {
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	if s.now().After(session.ExpiresAt) {
		if err := s.store.DeleteSession(ctx, hash); err != nil && !errors.Is(err, ErrSessionNotFound) {
			slog.WarnContext(ctx, "failed to delete expired session", "error", err)
		}
		return nil, ErrUnauthorized
	}
	return user, nil
}

// SignOut ends the session for token. Unknown tokens are ignored.
func (s *Service) SignOut(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	err := s.store.DeleteSession(ctx, HashToken(token))
	if err != nil && !errors.Is(err, ErrSessionNotFound) {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *Service) discardCode(ctx context.Context, email string) {
	if err := s.store.DeleteSignInCode(ctx, email); err != nil && !errors.Is(err, ErrCodeNotFound) {
		slog.WarnContext(ctx, "failed to delete sign-in code", "error", err)
	}
}

// HashToken returns the hex SHA-256 of a session token.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", invalid("email", "is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", invalid("email", "is not a valid address")
	}
	return email, nil
}

func newSignInCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", signInCodeDigits, n.Int64()), nil
}

func newSessionToken() (string, error) {
	b := make([]byte, sessionTokenSize)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
