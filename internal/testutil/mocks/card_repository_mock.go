package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/flashdeck/internal/models"
)

// MockCardRepository is a mock implementation of repository.CardRepository
type MockCardRepository struct {
	mock.Mock
}

func (m *MockCardRepository) Get(ctx context.Context, id int64) (*models.Card, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Card), args.Error(1)
}

func (m *MockCardRepository) Insert(ctx context.Context, card models.Card) (int64, error) {
	args := m.Called(ctx, card)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCardRepository) InsertMany(ctx context.Context, cards []models.Card) error {
	args := m.Called(ctx, cards)
	return args.Error(0)
}

func (m *MockCardRepository) Update(ctx context.Context, card models.Card) error {
	args := m.Called(ctx, card)
	return args.Error(0)
}

func (m *MockCardRepository) BulkUpdateRepeatTime(ctx context.Context, cards []models.Card) error {
	args := m.Called(ctx, cards)
	return args.Error(0)
}

func (m *MockCardRepository) List(ctx context.Context, filter models.CardFilter) ([]models.Card, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Card), args.Error(1)
}

func (m *MockCardRepository) SelectNew(ctx context.Context, collectionID int64, limit int) ([]models.Card, error) {
	args := m.Called(ctx, collectionID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Card), args.Error(1)
}

func (m *MockCardRepository) SelectLearning(ctx context.Context, collectionID int64, limit int) ([]models.Card, error) {
	args := m.Called(ctx, collectionID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Card), args.Error(1)
}

func (m *MockCardRepository) SelectReview(ctx context.Context, collectionID int64, dueBefore time.Time, limit int) ([]models.Card, error) {
	args := m.Called(ctx, collectionID, dueBefore, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Card), args.Error(1)
}
