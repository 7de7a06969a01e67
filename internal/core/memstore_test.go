package core

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// memStore is an in-memory Store for service tests.
type memStore struct {
	mu       sync.Mutex
	users    map[uuid.UUID]User
	decks    map[uuid.UUID]Deck
	cards    map[uuid.UUID]Card
	codes    map[string]SignInCode
	sessions map[string]Session

	failCreateCards error
}

func newMemStore() *memStore {
	return &memStore{
		users:    make(map[uuid.UUID]User),
		decks:    make(map[uuid.UUID]Deck),
		cards:    make(map[uuid.UUID]Card),
		codes:    make(map[string]SignInCode),
		sessions: make(map[string]Session),
	}
}

func (m *memStore) ListDecks(_ context.Context, ownerID uuid.UUID) ([]Deck, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	decks := []Deck{}
	for _, d := range m.decks {
		if d.OwnerID == ownerID {
			decks = append(decks, d)
		}
	}
	sort.Slice(decks, func(i, j int) bool { return decks[i].CreatedAt.After(decks[j].CreatedAt) })
	return decks, nil
}

func (m *memStore) GetDeck(_ context.Context, ownerID, deckID uuid.UUID) (*Deck, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.decks[deckID]
	if !ok || d.OwnerID != ownerID {
		return nil, ErrDeckNotFound
	}
	return &d, nil
}

func (m *memStore) CreateDeck(_ context.Context, deck Deck) (*Deck, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.decks[deck.ID] = deck
	return &deck, nil
}

func (m *memStore) UpdateDeck(_ context.Context, deck Deck) (*Deck, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.decks[deck.ID]; !ok {
		return nil, ErrDeckNotFound
	}
	m.decks[deck.ID] = deck
	return &deck, nil
}

func (m *memStore) ListCards(_ context.Context, deckID uuid.UUID) ([]Card, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deckCards(deckID), nil
}

func (m *memStore) deckCards(deckID uuid.UUID) []Card {
	cards := []Card{}
	for _, c := range m.cards {
		if c.DeckID == deckID {
			cards = append(cards, c)
		}
	}
	sort.Slice(cards, func(i, j int) bool { return cards[i].Position < cards[j].Position })
	return cards
}

func (m *memStore) GetCard(_ context.Context, ownerID, cardID uuid.UUID) (*Card, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.cards[cardID]
	if !ok || m.decks[c.DeckID].OwnerID != ownerID {
		return nil, ErrCardNotFound
	}
	return &c, nil
}

func (m *memStore) CreateCards(_ context.Context, deckID uuid.UUID, batch []NewCard) ([]Card, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failCreateCards != nil {
		return nil, m.failCreateCards
	}

	next := 0
	for _, c := range m.deckCards(deckID) {
		if c.Position >= next {
			next = c.Position + 1
		}
	}

	now := time.Now()
	created := make([]Card, 0, len(batch))
	for i, nc := range batch {
		c := Card{
			ID:        uuid.New(),
			DeckID:    deckID,
			Front:     nc.Front,
			Back:      nc.Back,
			Hint:      nc.Hint,
			Extra:     nc.Extra,
			Position:  next + i,
			CreatedAt: now,
			UpdatedAt: now,
		}
		m.cards[c.ID] = c
		created = append(created, c)
	}
	return created, nil
}

func (m *memStore) UpdateCard(_ context.Context, card Card) (*Card, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.cards[card.ID]; !ok {
		return nil, ErrCardNotFound
	}
	m.cards[card.ID] = card
	return &card, nil
}

func (m *memStore) DeleteCard(_ context.Context, cardID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.cards[cardID]; !ok {
		return ErrCardNotFound
	}
	delete(m.cards, cardID)
	return nil
}

func (m *memStore) UpsertUser(_ context.Context, email string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return &u, nil
		}
	}
	u := User{ID: uuid.New(), Email: email, CreatedAt: time.Now()}
	m.users[u.ID] = u
	return &u, nil
}

func (m *memStore) SaveSignInCode(_ context.Context, code SignInCode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.codes[code.Email] = code
	return nil
}

func (m *memStore) ClaimSignInAttempt(_ context.Context, email string, maxAttempts int) (*SignInCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.codes[email]
	if !ok {
		return nil, ErrCodeNotFound
	}
	if c.Attempts >= maxAttempts {
		return nil, ErrTooManyGuesses
	}
	c.Attempts++
	m.codes[email] = c
	return &c, nil
}

func (m *memStore) DeleteSignInCode(_ context.Context, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.codes[email]; !ok {
		return ErrCodeNotFound
	}
	delete(m.codes, email)
	return nil
}

func (m *memStore) CreateSession(_ context.Context, session Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[session.TokenHash]; ok {
		return errors.New("duplicate key value violates unique constraint")
	}
	m.sessions[session.TokenHash] = session
	return nil
}

func (m *memStore) GetSession(_ context.Context, tokenHash string) (*Session, *User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[tokenHash]
	if !ok {
		return nil, nil, ErrSessionNotFound
	}
	u := m.users[s.UserID]
	return &s, &u, nil
}

func (m *memStore) DeleteSession(_ context.Context, tokenHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[tokenHash]; !ok {
		return ErrSessionNotFound
	}
	delete(m.sessions, tokenHash)
	return nil
}

func (m *memStore) PurgeExpired(_ context.Context, now time.Time) (int64, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var sessions, codes int64
	for k, s := range m.sessions {
		if s.ExpiresAt.Before(now) {
			delete(m.sessions, k)
			sessions++
		}
	}
	for k, c := range m.codes {
		if c.ExpiresAt.Before(now) {
			delete(m.codes, k)
			codes++
		}
	}
	return sessions, codes, nil
}
