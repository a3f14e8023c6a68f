package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	apperrors "github.com/vytor/flashdeck/internal/errors"
	"github.com/vytor/flashdeck/internal/logger"
	"github.com/vytor/flashdeck/internal/models"
	"github.com/vytor/flashdeck/internal/repository"
)

// CollectionService handles collection and card authoring.
type CollectionService interface {
	CreateCollection(ctx context.Context, name string) (*models.Collection, error)
	GetCollection(ctx context.Context, id int64) (*models.Collection, error)
	ListCollections(ctx context.Context) ([]models.Collection, error)
	CreateCard(ctx context.Context, card models.Card) (*models.Card, error)
	CreateCards(ctx context.Context, collectionID int64, cards []models.Card) error
	ListCards(ctx context.Context, filter models.CardFilter) ([]models.Card, error)
	PostponeCards(ctx context.Context, collectionID int64, cardIDs []int64, until time.Time) error
}

type collectionService struct {
	collections repository.CollectionRepository
	cards       repository.CardRepository
}

// NewCollectionService creates a new CollectionService
func NewCollectionService(collections repository.CollectionRepository, cards repository.CardRepository) CollectionService {
	return &collectionService{collections: collections, cards: cards}
}

func (s *collectionService) CreateCollection(ctx context.Context, name string) (*models.Collection, error) {
	log := logger.FromContext(ctx)
	if name == "" {
		return nil, apperrors.NewValidationError("name", "cannot be empty")
	}

	id, err := s.collections.Insert(ctx, models.Collection{Name: name})
	if err != nil {
		log.Error("failed to create collection: %v", err)
		return nil, apperrors.NewInternalError(err)
	}
	return s.GetCollection(ctx, id)
}

func (s *collectionService) GetCollection(ctx context.Context, id int64) (*models.Collection, error) {
	collection, err := s.collections.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("collection", id)
		}
		return nil, apperrors.NewInternalError(err)
	}
	return collection, nil
}

func (s *collectionService) ListCollections(ctx context.Context) ([]models.Collection, error) {
	collections, err := s.collections.List(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return collections, nil
}

func (s *collectionService) CreateCard(ctx context.Context, card models.Card) (*models.Card, error) {
	log := logger.FromContext(ctx)
	if card.Front == "" {
		return nil, apperrors.NewValidationError("front", "cannot be empty")
	}
	if card.Back == "" {
		return nil, apperrors.NewValidationError("back", "cannot be empty")
	}
	if _, err := s.GetCollection(ctx, card.CollectionID); err != nil {
		return nil, err
	}

	card.Status = models.CardStatusNew
	id, err := s.cards.Insert(ctx, card)
	if err != nil {
		log.Error("failed to create card: %v", err)
		return nil, apperrors.NewInternalError(err)
	}
	created, err := s.cards.Get(ctx, id)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return created, nil
}

func (s *collectionService) CreateCards(ctx context.Context, collectionID int64, cards []models.Card) error {
	log := logger.FromContext(ctx)
	if _, err := s.GetCollection(ctx, collectionID); err != nil {
		return err
	}

	for i := range cards {
		if cards[i].Front == "" || cards[i].Back == "" {
			return apperrors.NewValidationError("cards", "front and back cannot be empty")
		}
		cards[i].CollectionID = collectionID
		cards[i].Status = models.CardStatusNew
	}
	if err := s.cards.InsertMany(ctx, cards); err != nil {
		log.Error("failed to bulk create cards: %v", err)
		return apperrors.NewInternalError(err)
	}
	return nil
}

func (s *collectionService) ListCards(ctx context.Context, filter models.CardFilter) ([]models.Card, error) {
	cards, err := s.cards.List(ctx, filter)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return cards, nil
}

// PostponeCards pushes the given cards' due times out to the given instant,
// the "learn later" action.
func (s *collectionService) PostponeCards(ctx context.Context, collectionID int64, cardIDs []int64, until time.Time) error {
	log := logger.FromContext(ctx)
	log.Debug("postponing %d cards until %s", len(cardIDs), until)

	postponed := make([]models.Card, 0, len(cardIDs))
	for _, id := range cardIDs {
		card, err := s.cards.Get(ctx, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apperrors.NewNotFoundError("card", id)
			}
			return apperrors.NewInternalError(err)
		}
		if card.CollectionID != collectionID {
			return apperrors.NewValidationError("card_ids", "card does not belong to the collection")
		}
		card.RepeatTime = until
		postponed = append(postponed, *card)
	}
	if err := s.cards.BulkUpdateRepeatTime(ctx, postponed); err != nil {
		return apperrors.NewInternalError(err)
	}
	return nil
}
