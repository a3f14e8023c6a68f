package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/flashdeck/internal/models"
)

// MockReviewLogRepository is a mock implementation of repository.ReviewLogRepository
type MockReviewLogRepository struct {
	mock.Mock
}

func (m *MockReviewLogRepository) Insert(ctx context.Context, log models.ReviewLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *MockReviewLogRepository) ListByCard(ctx context.Context, cardID int64, limit int) ([]models.ReviewLog, error) {
	args := m.Called(ctx, cardID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ReviewLog), args.Error(1)
}
