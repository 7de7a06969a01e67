package core

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// MaxDeckTitleLength is the longest accepted deck title, in characters.
const MaxDeckTitleLength = 200

// ListDecks returns the owner's decks, newest first.
func (s *Service) ListDecks(ctx context.Context, ownerID uuid.UUID) ([]Deck, error) {
	decks, err := s.store.ListDecks(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list decks: %w", err)
	}
	return decks, nil
}

// GetDeck returns one of the owner's decks, or ErrDeckNotFound.
func (s *Service) GetDeck(ctx context.Context, ownerID, deckID uuid.UUID) (*Deck, error) {
	deck, err := s.store.GetDeck(ctx, ownerID, deckID)
	if err != nil {
		return nil, fmt.Errorf("get deck: %w", err)
	}
	return deck, nil
}

// CreateDeck creates a deck owned by ownerID.
func (s *Service) CreateDeck(ctx context.Context, ownerID uuid.UUID, in DeckInput) (*Deck, error) {
	title, err := deckTitle(in.Title)
	if err != nil {
		return nil, err
	}

	now := s.now()
	deck, err := s.store.CreateDeck(ctx, Deck{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return nil, fmt.Errorf("create deck: %w", err)
	}
	return deck, nil
}

// UpdateDeck applies the non-nil fields of upd to one of the owner's decks.
func (s *Service) UpdateDeck(ctx context.Context, ownerID, deckID uuid.UUID, upd DeckUpdate) (*Deck, error) {
	deck, err := s.GetDeck(ctx, ownerID, deckID)
	if err != nil {
		return nil, err
	}

	if upd.Title != nil {
		title, err := deckTitle(*upd.Title)
		if err != nil {
			return nil, err
		}
		deck.Title = title
	}
	if upd.Description != nil {
		deck.Description = strings.TrimSpace(*upd.Description)
	}
	deck.UpdatedAt = s.now()

	updated, err := s.store.UpdateDeck(ctx, *deck)
	if err != nil {
		return nil, fmt.Errorf("update deck: %w", err)
	}
	return updated, nil
}

func deckTitle(raw string) (string, error) {
	title := strings.TrimSpace(raw)
	if title == "" {
		return "", invalid("title", "is required")
	}
	if utf8.RuneCountInString(title) > MaxDeckTitleLength {
		return "", invalid("title", fmt.Sprintf("must be at most %d characters", MaxDeckTitleLength))
	}
	return title, nil
}
