package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/flashdeck/internal/models"
)

// MockTrainingStore is a mock implementation of repository.TrainingStore
type MockTrainingStore struct {
	mock.Mock
}

func (m *MockTrainingStore) SaveReview(ctx context.Context, card models.Card, sessionCard models.SessionCard) error {
	args := m.Called(ctx, card, sessionCard)
	return args.Error(0)
}
