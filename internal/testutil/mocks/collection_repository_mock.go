package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/flashdeck/internal/models"
)

// MockCollectionRepository is a mock implementation of repository.CollectionRepository
type MockCollectionRepository struct {
	mock.Mock
}

func (m *MockCollectionRepository) Insert(ctx context.Context, collection models.Collection) (int64, error) {
	args := m.Called(ctx, collection)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCollectionRepository) Get(ctx context.Context, id int64) (*models.Collection, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Collection), args.Error(1)
}

func (m *MockCollectionRepository) List(ctx context.Context) ([]models.Collection, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Collection), args.Error(1)
}

func (m *MockCollectionRepository) TrainingData(ctx context.Context, collectionID int64) (*models.CollectionTrainingData, error) {
	args := m.Called(ctx, collectionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CollectionTrainingData), args.Error(1)
}

func (m *MockCollectionRepository) SaveTrainingData(ctx context.Context, data models.CollectionTrainingData) error {
	args := m.Called(ctx, data)
	return args.Error(0)
}
