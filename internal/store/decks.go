package store

import (
	"context"
	"fmt"

	"github.com/JonMunkholm/flashcards/internal/core"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const deckColumns = `id, owner_id, title, description, created_at, updated_at`

func scanDeck(row pgx.CollectableRow) (core.Deck, error) {
	var (
		id, ownerID pgtype.UUID
		deck        core.Deck
	)
	err := row.Scan(&id, &ownerID, &deck.Title, &deck.Description, &deck.CreatedAt, &deck.UpdatedAt)
	if err != nil {
		return core.Deck{}, err
	}
	deck.ID = fromPgUUID(id)
	deck.OwnerID = fromPgUUID(ownerID)
	return deck, nil
}

// ListDecks returns the owner's decks, newest first.
func (s *Store) ListDecks(ctx context.Context, ownerID uuid.UUID) ([]core.Deck, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+deckColumns+` FROM decks WHERE owner_id = $1 ORDER BY created_at DESC, id`,
		pgUUID(ownerID))
	if err != nil {
		return nil, fmt.Errorf("query decks: %w", err)
	}
	return pgx.CollectRows(rows, scanDeck)
}

// GetDeck returns a deck if ownerID owns it.
func (s *Store) GetDeck(ctx context.Context, ownerID, deckID uuid.UUID) (*core.Deck, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+deckColumns+` FROM decks WHERE id = $1 AND owner_id = $2`,
		pgUUID(deckID), pgUUID(ownerID))
	if err != nil {
		return nil, fmt.Errorf("query deck: %w", err)
	}
	deck, err := pgx.CollectExactlyOneRow(rows, scanDeck)
	if err != nil {
		return nil, notFound(err, core.ErrDeckNotFound)
	}
	return &deck, nil
}

// CreateDeck inserts a deck.
func (s *Store) CreateDeck(ctx context.Context, deck core.Deck) (*core.Deck, error) {
	rows, err := s.db.Query(ctx,
		`INSERT INTO decks (id, owner_id, title, description, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+deckColumns,
		pgUUID(deck.ID), pgUUID(deck.OwnerID), deck.Title, deck.Description, deck.CreatedAt, deck.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert deck: %w", err)
	}
	created, err := pgx.CollectExactlyOneRow(rows, scanDeck)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateDeck overwrites a deck's title, description and updated_at.
func (s *Store) UpdateDeck(ctx context.Context, deck core.Deck) (*core.Deck, error) {
	rows, err := s.db.Query(ctx,
		`UPDATE decks SET title = $2, description = $3, updated_at = $4
		 WHERE id = $1
		 RETURNING `+deckColumns,
		pgUUID(deck.ID), deck.Title, deck.Description, deck.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("update deck: %w", err)
	}
	updated, err := pgx.CollectExactlyOneRow(rows, scanDeck)
	if err != nil {
		return nil, notFound(err, core.ErrDeckNotFound)
	}
	return &updated, nil
}
