package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/flashdeck/internal/models"
)

// MockSessionCardRepository is a mock implementation of repository.SessionCardRepository
type MockSessionCardRepository struct {
	mock.Mock
}

func (m *MockSessionCardRepository) Get(ctx context.Context, sessionID, cardID int64) (*models.SessionCard, error) {
	args := m.Called(ctx, sessionID, cardID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SessionCard), args.Error(1)
}

func (m *MockSessionCardRepository) InsertMany(ctx context.Context, sessionCards []models.SessionCard) error {
	args := m.Called(ctx, sessionCards)
	return args.Error(0)
}

func (m *MockSessionCardRepository) Update(ctx context.Context, sessionCard models.SessionCard) error {
	args := m.Called(ctx, sessionCard)
	return args.Error(0)
}

func (m *MockSessionCardRepository) Delete(ctx context.Context, sessionID, cardID int64) error {
	args := m.Called(ctx, sessionID, cardID)
	return args.Error(0)
}

func (m *MockSessionCardRepository) Cards(ctx context.Context, sessionID int64) ([]models.Card, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Card), args.Error(1)
}
