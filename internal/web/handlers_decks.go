package web

import (
	"net/http"

	"github.com/JonMunkholm/flashcards/internal/cardcsv"
	"github.com/JonMunkholm/flashcards/internal/core"
)

func (s *Server) handleListDecks(w http.ResponseWriter, r *http.Request) {
	decks, err := s.service.ListDecks(r.Context(), currentUser(r).ID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, decks)
}

func (s *Server) handleCreateDeck(w http.ResponseWriter, r *http.Request) {
	var in core.DeckInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondError(w, r, err)
		return
	}

	deck, err := s.service.CreateDeck(r.Context(), currentUser(r).ID, in)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, deck)
}

func (s *Server) handleGetDeck(w http.ResponseWriter, r *http.Request) {
	deckID, err := pathUUID(r, "deckID")
	if err != nil {
		respondError(w, r, err)
		return
	}

	deck, err := s.service.GetDeck(r.Context(), currentUser(r).ID, deckID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, deck)
}

func (s *Server) handleUpdateDeck(w http.ResponseWriter, r *http.Request) {
	deckID, err := pathUUID(r, "deckID")
	if err != nil {
		respondError(w, r, err)
		return
	}

	var upd core.DeckUpdate
	if err := decodeJSON(w, r, &upd); err != nil {
		respondError(w, r, err)
		return
	}

	deck, err := s.service.UpdateDeck(r.Context(), currentUser(r).ID, deckID, upd)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, deck)
}

// handleListCards returns a deck's cards in position order.
func (s *Server) handleListCards(w http.ResponseWriter, r *http.Request) {
	deckID, err := pathUUID(r, "deckID")
	if err != nil {
		respondError(w, r, err)
		return
	}

	cards, err := s.service.ListCards(r.Context(), currentUser(r).ID, deckID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cards)
}

func (s *Server) handleCreateCard(w http.ResponseWriter, r *http.Request) {
	deckID, err := pathUUID(r, "deckID")
	if err != nil {
		respondError(w, r, err)
		return
	}

	var in core.CardInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondError(w, r, err)
		return
	}

	card, err := s.service.CreateCard(r.Context(), currentUser(r).ID, deckID, in)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, card)
}

// handleBulkCreateCards appends a JSON array of card records to a deck in
// one transaction.
func (s *Server) handleBulkCreateCards(w http.ResponseWriter, r *http.Request) {
	deckID, err := pathUUID(r, "deckID")
	if err != nil {
		respondError(w, r, err)
		return
	}

	var records []cardcsv.CardRecord
	if err := decodeJSON(w, r, &records); err != nil {
		respondError(w, r, err)
		return
	}

	cards, err := s.service.BulkCreateCards(r.Context(), currentUser(r).ID, deckID, records)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, cards)
}

func (s *Server) handleUpdateCard(w http.ResponseWriter, r *http.Request) {
	cardID, err := pathUUID(r, "cardID")
	if err != nil {
		respondError(w, r, err)
		return
	}

	var upd core.CardUpdate
	if err := decodeJSON(w, r, &upd); err != nil {
		respondError(w, r, err)
		return
	}

	card, err := s.service.UpdateCard(r.Context(), currentUser(r).ID, cardID, upd)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, card)
}

func (s *Server) handleDeleteCard(w http.ResponseWriter, r *http.Request) {
	cardID, err := pathUUID(r, "cardID")
	if err != nil {
		respondError(w, r, err)
		return
	}

	if err := s.service.DeleteCard(r.Context(), currentUser(r).ID, cardID); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
