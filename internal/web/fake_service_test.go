package web

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/JonMunkholm/flashcards/internal/cardcsv"
	"github.com/JonMunkholm/flashcards/internal/core"
	"github.com/google/uuid"
)

const validCode = "123456"

// fakeService is an in-memory Service for handler tests.
type fakeService struct {
	mu        sync.Mutex
	sessions  map[string]*core.User
	decks     map[uuid.UUID]core.Deck
	cards     map[uuid.UUID][]core.Card
	signedOut []string
	importErr error
}

func newFakeService() *fakeService {
	return &fakeService{
		sessions: make(map[string]*core.User),
		decks:    make(map[uuid.UUID]core.Deck),
		cards:    make(map[uuid.UUID][]core.Card),
	}
}

// addUser registers a signed-in user reachable through token.
func (f *fakeService) addUser(email, token string) *core.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	user := &core.User{ID: uuid.New(), Email: email, CreatedAt: time.Now()}
	f.sessions[token] = user
	return user
}

func (f *fakeService) addDeck(owner uuid.UUID, title, description string) core.Deck {
	f.mu.Lock()
	defer f.mu.Unlock()
	d := core.Deck{
		ID:          uuid.New(),
		OwnerID:     owner,
		Title:       strings.TrimSpace(title),
		Description: strings.TrimSpace(description),
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	f.decks[d.ID] = d
	return d
}

func (f *fakeService) RequestSignIn(_ context.Context, email string) error {
	if !strings.Contains(email, "@") {
		return &core.ValidationError{Field: "email", Reason: "is not a valid address"}
	}
	return nil
}

func (f *fakeService) VerifySignIn(_ context.Context, email, code string) (*core.SignInResult, error) {
	if code != validCode {
		return nil, core.ErrInvalidCode
	}
	token := "tok-" + email
	user := f.addUser(email, token)
	return &core.SignInResult{Token: token, User: *user, ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func (f *fakeService) Authenticate(_ context.Context, token string) (*core.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.sessions[token]
	if !ok {
		return nil, core.ErrUnauthorized
	}
	return user, nil
}

func (f *fakeService) SignOut(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, token)
	f.signedOut = append(f.signedOut, token)
	return nil
}

func (f *fakeService) ListDecks(_ context.Context, ownerID uuid.UUID) ([]core.Deck, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	decks := []core.Deck{}
	for _, d := range f.decks {
		if d.OwnerID == ownerID {
			decks = append(decks, d)
		}
	}
	return decks, nil
}

func (f *fakeService) GetDeck(_ context.Context, ownerID, deckID uuid.UUID) (*core.Deck, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.decks[deckID]
	if !ok || d.OwnerID != ownerID {
		return nil, core.ErrDeckNotFound
	}
	return &d, nil
}

func (f *fakeService) CreateDeck(_ context.Context, ownerID uuid.UUID, in core.DeckInput) (*core.Deck, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, &core.ValidationError{Field: "title", Reason: "is required"}
	}
	d := f.addDeck(ownerID, in.Title, in.Description)
	return &d, nil
}

func (f *fakeService) UpdateDeck(ctx context.Context, ownerID, deckID uuid.UUID, upd core.DeckUpdate) (*core.Deck, error) {
	d, err := f.GetDeck(ctx, ownerID, deckID)
	if err != nil {
		return nil, err
	}
	if upd.Title != nil {
		d.Title = *upd.Title
	}
	if upd.Description != nil {
		d.Description = *upd.Description
	}
	f.mu.Lock()
	f.decks[d.ID] = *d
	f.mu.Unlock()
	return d, nil
}

func (f *fakeService) ListCards(ctx context.Context, ownerID, deckID uuid.UUID) ([]core.Card, error) {
	if _, err := f.GetDeck(ctx, ownerID, deckID); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]core.Card{}, f.cards[deckID]...), nil
}

func (f *fakeService) CreateCard(ctx context.Context, ownerID, deckID uuid.UUID, in core.CardInput) (*core.Card, error) {
	if strings.TrimSpace(in.Front) == "" {
		return nil, &core.ValidationError{Field: "front", Reason: "is required"}
	}
	cards, err := f.append(ctx, ownerID, deckID, []cardcsv.CardRecord{{Front: in.Front, Back: in.Back, Hint: in.Hint}})
	if err != nil {
		return nil, err
	}
	return &cards[0], nil
}

func (f *fakeService) BulkCreateCards(ctx context.Context, ownerID, deckID uuid.UUID, records []cardcsv.CardRecord) ([]core.Card, error) {
	if len(records) == 0 {
		return nil, core.ErrNoCards
	}
	return f.append(ctx, ownerID, deckID, records)
}

func (f *fakeService) append(ctx context.Context, ownerID, deckID uuid.UUID, records []cardcsv.CardRecord) ([]core.Card, error) {
	if _, err := f.GetDeck(ctx, ownerID, deckID); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	created := make([]core.Card, 0, len(records))
	for _, rec := range records {
		c := core.Card{
			ID:       uuid.New(),
			DeckID:   deckID,
			Front:    rec.Front,
			Back:     rec.Back,
			Hint:     rec.Hint,
			Position: len(f.cards[deckID]),
		}
		f.cards[deckID] = append(f.cards[deckID], c)
		created = append(created, c)
	}
	return created, nil
}

// findCard returns the deck and index of cardID among the owner's cards.
func (f *fakeService) findCard(ownerID, cardID uuid.UUID) (uuid.UUID, int, error) {
	for deckID, cards := range f.cards {
		if f.decks[deckID].OwnerID != ownerID {
			continue
		}
		for i, c := range cards {
			if c.ID == cardID {
				return deckID, i, nil
			}
		}
	}
	return uuid.Nil, 0, core.ErrCardNotFound
}

func (f *fakeService) UpdateCard(_ context.Context, ownerID, cardID uuid.UUID, upd core.CardUpdate) (*core.Card, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	deckID, i, err := f.findCard(ownerID, cardID)
	if err != nil {
		return nil, err
	}
	c := &f.cards[deckID][i]
	if upd.Front != nil {
		c.Front = *upd.Front
	}
	if upd.Back != nil {
		c.Back = *upd.Back
	}
	out := *c
	return &out, nil
}

func (f *fakeService) DeleteCard(_ context.Context, ownerID, cardID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	deckID, i, err := f.findCard(ownerID, cardID)
	if err != nil {
		return err
	}
	cards := f.cards[deckID]
	f.cards[deckID] = append(cards[:i:i], cards[i+1:]...)
	return nil
}

func (f *fakeService) PreviewImport(fileName string, data []byte) (*core.ImportPreview, error) {
	if len(data) == 0 {
		return nil, core.ErrEmptyFile
	}
	rows, err := cardcsv.RowsFromFile(fileName, data)
	if err != nil {
		return nil, err
	}
	return &core.ImportPreview{FileName: fileName, Rows: len(rows), Report: cardcsv.NormalizeReport(rows)}, nil
}

func (f *fakeService) ImportCards(ctx context.Context, ownerID, deckID uuid.UUID, fileName string, data []byte) (*core.ImportResult, error) {
	if f.importErr != nil {
		return nil, f.importErr
	}
	preview, err := f.PreviewImport(fileName, data)
	if err != nil {
		return nil, err
	}
	cards, err := f.BulkCreateCards(ctx, ownerID, deckID, preview.Report.Records)
	if err != nil {
		return nil, err
	}
	return &core.ImportResult{
		DeckID:         deckID,
		FileName:       fileName,
		Rows:           preview.Rows,
		Imported:       len(cards),
		Dropped:        preview.Report.Dropped,
		HeaderDetected: preview.Report.HeaderDetected,
		Cards:          cards,
	}, nil
}

func (f *fakeService) ImportStatus() core.ImportLimiterStatus {
	return core.ImportLimiterStatus{Active: 0, Available: 4, MaxConcurrent: 4}
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

var errDown = errors.New("connection refused")
