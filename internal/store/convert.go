package store

import (
	"errors"
	"fmt"

	"github.com/JonMunkholm/flashcards/internal/core"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

func pgUUID(id uuid.UUID) pgtype.UUID {
	return pgtype.UUID{Bytes: id, Valid: true}
}

func fromPgUUID(u pgtype.UUID) uuid.UUID {
	if !u.Valid {
		return uuid.Nil
	}
	return uuid.UUID(u.Bytes)
}

func pgText(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: *s, Valid: true}
}

func fromPgText(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	s := t.String
	return &s
}

// jsonParam passes raw JSON to a JSONB column, or SQL NULL when empty.
func jsonParam(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	return raw
}

// notFound translates pgx.ErrNoRows into the given sentinel.
func notFound(err, sentinel error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return sentinel
	}
	return err
}

// PostgreSQL rejects NUL in text and \u0000 in jsonb with these codes.
const (
	sqlStateUntranslatableChar  = "22P05"
	sqlStateCharNotInRepertoire = "22021"
)

// textError translates PostgreSQL's character errors into
// core.ErrUnsupportedText and returns other errors unchanged.
func textError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case sqlStateUntranslatableChar, sqlStateCharNotInRepertoire:
			return fmt.Errorf("%w: %s", core.ErrUnsupportedText, pgErr.Message)
		}
	}
	return err
}
