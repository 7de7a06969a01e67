package core

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/JonMunkholm/flashcards/internal/cardcsv"
	"github.com/google/uuid"
)

// ListCards returns the cards of one of the owner's decks, by position.
func (s *Service) ListCards(ctx context.Context, ownerID, deckID uuid.UUID) ([]Card, error) {
	if _, err := s.GetDeck(ctx, ownerID, deckID); err != nil {
		return nil, err
	}
	cards, err := s.store.ListCards(ctx, deckID)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	return cards, nil
}

// CreateCard appends a single card to one of the owner's decks.
func (s *Service) CreateCard(ctx context.Context, ownerID, deckID uuid.UUID, in CardInput) (*Card, error) {
	nc, err := newCard(in.Front, in.Back, in.Hint, in.Extra)
	if err != nil {
		return nil, err
	}
	cards, err := s.insertCards(ctx, ownerID, deckID, []NewCard{nc})
	if err != nil {
		return nil, err
	}
	return &cards[0], nil
}

// BulkCreateCards appends records to one of the owner's decks in order, as
// a single transaction.
func (s *Service) BulkCreateCards(ctx context.Context, ownerID, deckID uuid.UUID, records []cardcsv.CardRecord) ([]Card, error) {
	if len(records) == 0 {
		return nil, ErrNoCards
	}
	if limit := s.cfg.Import.MaxCards; limit > 0 && len(records) > limit {
		return nil, fmt.Errorf("%w: %d cards, limit is %d", ErrTooManyCards, len(records), limit)
	}

	batch := make([]NewCard, 0, len(records))
	for i, rec := range records {
		extra, err := recordExtra(rec.Extra)
		if err != nil {
			return nil, fmt.Errorf("card %d: %w", i+1, err)
		}
		nc, err := newCard(rec.Front, rec.Back, rec.Hint, extra)
		if err != nil {
			return nil, fmt.Errorf("card %d: %w", i+1, err)
		}
		batch = append(batch, nc)
	}
	return s.insertCards(ctx, ownerID, deckID, batch)
}

// UpdateCard applies the non-nil fields of upd to a card in one of the
// owner's decks.
func (s *Service) UpdateCard(ctx context.Context, ownerID, cardID uuid.UUID, upd CardUpdate) (*Card, error) {
	card, err := s.store.GetCard(ctx, ownerID, cardID)
	if err != nil {
		return nil, fmt.Errorf("get card: %w", err)
	}

	if upd.Front != nil {
		if card.Front = strings.TrimSpace(*upd.Front); card.Front == "" {
			return nil, invalid("front", "is required")
		}
	}
	if upd.Back != nil {
		if card.Back = strings.TrimSpace(*upd.Back); card.Back == "" {
			return nil, invalid("back", "is required")
		}
	}
	if upd.Hint != nil {
		card.Hint = optional(*upd.Hint)
	}
	if upd.Extra != nil {
		extra, err := cleanExtra(upd.Extra)
		if err != nil {
			return nil, err
		}
		card.Extra = extra
	}
	card.UpdatedAt = s.now()

	updated, err := s.store.UpdateCard(ctx, *card)
	if err != nil {
		return nil, fmt.Errorf("update card: %w", err)
	}
	return updated, nil
}

// DeleteCard removes a card from one of the owner's decks.
func (s *Service) DeleteCard(ctx context.Context, ownerID, cardID uuid.UUID) error {
	if _, err := s.store.GetCard(ctx, ownerID, cardID); err != nil {
		return fmt.Errorf("get card: %w", err)
	}
	if err := s.store.DeleteCard(ctx, cardID); err != nil {
		return fmt.Errorf("delete card: %w", err)
	}
	return nil
}

func (s *Service) insertCards(ctx context.Context, ownerID, deckID uuid.UUID, batch []NewCard) ([]Card, error) {
	if _, err := s.GetDeck(ctx, ownerID, deckID); err != nil {
		return nil, err
	}
	cards, err := s.store.CreateCards(ctx, deckID, batch)
	if err != nil {
		return nil, fmt.Errorf("create cards: %w", err)
	}
	return cards, nil
}

func newCard(front, back string, hint *string, extra json.RawMessage) (NewCard, error) {
	nc := NewCard{
		Front: strings.TrimSpace(front),
		Back:  strings.TrimSpace(back),
	}
	if nc.Front == "" {
		return NewCard{}, invalid("front", "is required")
	}
	if nc.Back == "" {
		return NewCard{}, invalid("back", "is required")
	}
	if hint != nil {
		nc.Hint = optional(*hint)
	}

	cleaned, err := cleanExtra(extra)
	if err != nil {
		return NewCard{}, err
	}
	nc.Extra = cleaned
	return nc, nil
}

// optional trims s and returns nil when nothing is left.
func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// cleanExtra validates and compacts a JSON payload. Empty input and JSON
// null both mean "no extra".
func cleanExtra(raw json.RawMessage) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, trimmed); err != nil {
		return nil, invalid("extra", "must be valid JSON")
	}
	return buf.Bytes(), nil
}

// recordExtra serializes a decoded extra cell for storage.
func recordExtra(extra *cardcsv.Extra) (json.RawMessage, error) {
	if extra == nil {
		return nil, nil
	}
	b, err := json.Marshal(extra)
	if err != nil {
		return nil, invalid("extra", "must be valid JSON")
	}
	return b, nil
}
