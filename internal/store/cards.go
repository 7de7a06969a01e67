package store

import (
	"context"
	"fmt"
	"time"

	"github.com/JonMunkholm/flashcards/internal/core"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const cardColumns = `id, deck_id, front, back, hint, extra, position, created_at, updated_at`

// copyColumns is the column order used by CreateCards' COPY.
var copyColumns = []string{"id", "deck_id", "front", "back", "hint", "extra", "position", "created_at", "updated_at"}

func scanCard(row pgx.CollectableRow) (core.Card, error) {
	var (
		id, deckID pgtype.UUID
		hint       pgtype.Text
		extra      []byte
		position   int32
		card       core.Card
	)
	err := row.Scan(&id, &deckID, &card.Front, &card.Back, &hint, &extra, &position, &card.CreatedAt, &card.UpdatedAt)
	if err != nil {
		return core.Card{}, err
	}
	card.ID = fromPgUUID(id)
	card.DeckID = fromPgUUID(deckID)
	card.Hint = fromPgText(hint)
	card.Position = int(position)
	if len(extra) > 0 {
		card.Extra = extra
	}
	return card, nil
}

// ListCards returns a deck's cards by position.
func (s *Store) ListCards(ctx context.Context, deckID uuid.UUID) ([]core.Card, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+cardColumns+` FROM cards WHERE deck_id = $1 ORDER BY position`,
		pgUUID(deckID))
	if err != nil {
		return nil, fmt.Errorf("query cards: %w", err)
	}
	return pgx.CollectRows(rows, scanCard)
}

// GetCard returns a card if it belongs to a deck owned by ownerID.
func (s *Store) GetCard(ctx context.Context, ownerID, cardID uuid.UUID) (*core.Card, error) {
	rows, err := s.db.Query(ctx,
		`SELECT c.id, c.deck_id, c.front, c.back, c.hint, c.extra, c.position, c.created_at, c.updated_at
		 FROM cards c JOIN decks d ON d.id = c.deck_id
		 WHERE c.id = $1 AND d.owner_id = $2`,
		pgUUID(cardID), pgUUID(ownerID))
	if err != nil {
		return nil, fmt.Errorf("query card: %w", err)
	}
	card, err := pgx.CollectExactlyOneRow(rows, scanCard)
	if err != nil {
		return nil, notFound(err, core.ErrCardNotFound)
	}
	return &card, nil
}

// CreateCards appends cards after the deck's last position using COPY.
// The deck row is locked for the duration so concurrent imports into the
// same deck get disjoint positions.
func (s *Store) CreateCards(ctx context.Context, deckID uuid.UUID, batch []core.NewCard) ([]core.Card, error) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	cards := make([]core.Card, len(batch))

	err := s.withTx(ctx, func(tx pgx.Tx) error {
		var locked pgtype.UUID
		err := tx.QueryRow(ctx,
			`UPDATE decks SET updated_at = $2 WHERE id = $1 RETURNING id`,
			pgUUID(deckID), now).Scan(&locked)
		if err != nil {
			return notFound(err, core.ErrDeckNotFound)
		}

		var last int32
		err = tx.QueryRow(ctx,
			`SELECT COALESCE(MAX(position), -1) FROM cards WHERE deck_id = $1`,
			pgUUID(deckID)).Scan(&last)
		if err != nil {
			return fmt.Errorf("read last position: %w", err)
		}

		for i, nc := range batch {
			cards[i] = core.Card{
				ID:        uuid.New(),
				DeckID:    deckID,
				Front:     nc.Front,
				Back:      nc.Back,
				Hint:      nc.Hint,
				Extra:     nc.Extra,
				Position:  int(last) + 1 + i,
				CreatedAt: now,
				UpdatedAt: now,
			}
		}

		copied, err := tx.CopyFrom(ctx, pgx.Identifier{"cards"}, copyColumns, pgx.CopyFromSlice(len(cards), func(i int) ([]any, error) {
			return cardRow(cards[i]), nil
		}))
		if err != nil {
			return fmt.Errorf("copy cards: %w", textError(err))
		}
		if int(copied) != len(cards) {
			return fmt.Errorf("copy cards: wrote %d of %d rows", copied, len(cards))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cards, nil
}

// cardRow orders a card's values to match copyColumns.
func cardRow(c core.Card) []any {
	return []any{
		pgUUID(c.ID),
		pgUUID(c.DeckID),
		c.Front,
		c.Back,
		pgText(c.Hint),
		jsonParam(c.Extra),
		int32(c.Position),
		c.CreatedAt,
		c.UpdatedAt,
	}
}

// UpdateCard overwrites a card's content fields and updated_at.
func (s *Store) UpdateCard(ctx context.Context, card core.Card) (*core.Card, error) {
	rows, err := s.db.Query(ctx,
		`UPDATE cards SET front = $2, back = $3, hint = $4, extra = $5, updated_at = $6
		 WHERE id = $1
		 RETURNING `+cardColumns,
		pgUUID(card.ID), card.Front, card.Back, pgText(card.Hint), jsonParam(card.Extra), card.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("update card: %w", textError(err))
	}
	updated, err := pgx.CollectExactlyOneRow(rows, scanCard)
	if err != nil {
		return nil, notFound(textError(err), core.ErrCardNotFound)
	}
	return &updated, nil
}

// DeleteCard removes a card. Positions of later cards are left as they are.
func (s *Store) DeleteCard(ctx context.Context, cardID uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM cards WHERE id = $1`, pgUUID(cardID))
	if err != nil {
		return fmt.Errorf("delete card: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return core.ErrCardNotFound
	}
	return nil
}
