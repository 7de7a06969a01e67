package core

import (
	"context"
	"encoding/json"
	"time"

	"github.com/JonMunkholm/flashcards/internal/cardcsv"
	"github.com/google/uuid"
)

// User is a signed-in account, identified by email.
type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// Deck is a named collection of cards owned by one user.
type Deck struct {
	ID          uuid.UUID `json:"id"`
	OwnerID     uuid.UUID `json:"ownerId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Card is a stored flashcard. Extra holds arbitrary JSON, or nil.
type Card struct {
	ID        uuid.UUID       `json:"id"`
	DeckID    uuid.UUID       `json:"deckId"`
	Front     string          `json:"front"`
	Back      string          `json:"back"`
	Hint      *string         `json:"hint"`
	Extra     json.RawMessage `json:"extra"`
	Position  int             `json:"position"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// NewCard is the content of a card about to be inserted. The store assigns
// ID, position and timestamps.
type NewCard struct {
	Front string
	Back  string
	Hint  *string
	Extra json.RawMessage
}

// SignInCode is a pending emailed sign-in code. Only its bcrypt hash is kept.
type SignInCode struct {
	Email     string
	CodeHash  string
	Attempts  int
	ExpiresAt time.Time
}

// Session is a signed-in session, looked up by the SHA-256 of its token.
type Session struct {
	TokenHash string
	UserID    uuid.UUID
	ExpiresAt time.Time
}

// DeckInput is the payload for creating a deck.
type DeckInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// DeckUpdate changes the non-nil fields of a deck.
type DeckUpdate struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

// CardInput is the payload for creating a single card.
type CardInput struct {
	Front string          `json:"front"`
	Back  string          `json:"back"`
	Hint  *string         `json:"hint"`
	Extra json.RawMessage `json:"extra"`
}

// CardUpdate changes the non-nil fields of a card. An empty Hint clears the
// hint and an Extra of JSON null clears the extra payload.
type CardUpdate struct {
	Front *string         `json:"front"`
	Back  *string         `json:"back"`
	Hint  *string         `json:"hint"`
	Extra json.RawMessage `json:"extra"`
}

// ImportPreview is the outcome of parsing an import file without saving it.
type ImportPreview struct {
	FileName string         `json:"fileName"`
	Rows     int            `json:"rows"` // rows read from the file, header included
	Report   cardcsv.Report `json:"report"`
}

// ImportResult summarizes a completed import.
type ImportResult struct {
	DeckID         uuid.UUID     `json:"deckId"`
	FileName       string        `json:"fileName"`
	Rows           int           `json:"rows"`
	Imported       int           `json:"imported"`
	Dropped        int           `json:"dropped"`
	HeaderDetected bool          `json:"headerDetected"`
	Duration       time.Duration `json:"durationNs"`
	Cards          []Card        `json:"cards,omitempty"`
}

// SignInResult is returned when a sign-in code is accepted. Token is only
// ever available here; the store keeps its hash.
type SignInResult struct {
	Token     string    `json:"token"`
	User      User      `json:"user"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Store persists users, sessions, decks and cards.
// Implementations return ErrDeckNotFound, ErrCardNotFound, ErrCodeNotFound and
// ErrSessionNotFound for missing rows.
type Store interface {
	ListDecks(ctx context.Context, ownerID uuid.UUID) ([]Deck, error)
	GetDeck(ctx context.Context, ownerID, deckID uuid.UUID) (*Deck, error)
	CreateDeck(ctx context.Context, deck Deck) (*Deck, error)
	UpdateDeck(ctx context.Context, deck Deck) (*Deck, error)

	ListCards(ctx context.Context, deckID uuid.UUID) ([]Card, error)
	GetCard(ctx context.Context, ownerID, cardID uuid.UUID) (*Card, error)
	// CreateCards appends cards to the end of a deck in one transaction.
	CreateCards(ctx context.Context, deckID uuid.UUID, cards []NewCard) ([]Card, error)
	UpdateCard(ctx context.Context, card Card) (*Card, error)
	DeleteCard(ctx context.Context, cardID uuid.UUID) error

	UpsertUser(ctx context.Context, email string) (*User, error)
	SaveSignInCode(ctx context.Context, code SignInCode) error
	// ClaimSignInAttempt counts one guess against the pending code and
	// returns it, in a single step. It returns ErrTooManyGuesses once
	// maxAttempts guesses were made and ErrCodeNotFound without a code.
	ClaimSignInAttempt(ctx context.Context, email string, maxAttempts int) (*SignInCode, error)
	DeleteSignInCode(ctx context.Context, email string) error

	CreateSession(ctx context.Context, session Session) error
	GetSession(ctx context.Context, tokenHash string) (*Session, *User, error)
	DeleteSession(ctx context.Context, tokenHash string) error

	// PurgeExpired deletes sessions and sign-in codes that expired before now.
	PurgeExpired(ctx context.Context, now time.Time) (sessions, codes int64, err error)
}
