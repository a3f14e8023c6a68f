package api

import (
	"net/http"
	"time"

	apperrors "github.com/vytor/flashdeck/internal/errors"
	"github.com/vytor/flashdeck/internal/logger"
	"github.com/vytor/flashdeck/internal/models"
)

type createCollectionRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleCreateCollection(w http.ResponseWriter, r *http.Request) {
	var req createCollectionRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	collection, err := s.Collections.CreateCollection(r.Context(), req.Name)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, collection)
}

func (s *Server) handleListCollections(w http.ResponseWriter, r *http.Request) {
	collections, err := s.Collections.ListCollections(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, collections)
}

func (s *Server) handleGetCollection(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}

	collection, err := s.Collections.GetCollection(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, collection)
}

type createCardsRequest struct {
	Cards []struct {
		Front    string `json:"front"`
		Back     string `json:"back"`
		Priority int    `json:"priority"`
	} `json:"cards"`
}

func (s *Server) handleCreateCards(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	id, err := idParam(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}

	var req createCardsRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	cards := make([]models.Card, len(req.Cards))
	for i, c := range req.Cards {
		cards[i] = models.Card{Front: c.Front, Back: c.Back, Priority: c.Priority}
	}
	if err := s.Collections.CreateCards(r.Context(), id, cards); err != nil {
		handleError(w, r, err)
		return
	}

	log.Info("created %d cards in collection %d", len(cards), id)
	writeJSON(w, http.StatusCreated, map[string]int{"created": len(cards)})
}

func (s *Server) handleListCards(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}

	filter := models.CardFilter{CollectionID: id}
	if statusParam := r.URL.Query().Get("status"); statusParam != "" {
		status, err := models.ParseCardStatus(statusParam)
		if err != nil {
			handleError(w, r, apperrors.NewValidationError("status", err.Error()))
			return
		}
		filter.Status = &status
	}

	cards, err := s.Collections.ListCards(r.Context(), filter)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cards)
}

type postponeCardsRequest struct {
	CardIDs []int64    `json:"card_ids"`
	Until   *time.Time `json:"until,omitempty"`
}

func (s *Server) handlePostponeCards(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}

	var req postponeCardsRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	until := time.Now().Add(24 * time.Hour)
	if req.Until != nil {
		until = *req.Until
	}
	if err := s.Collections.PostponeCards(r.Context(), id, req.CardIDs, until); err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"postponed": len(req.CardIDs)})
}
