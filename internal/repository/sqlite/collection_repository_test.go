package sqlite_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/vytor/flashdeck/internal/db"
	"github.com/vytor/flashdeck/internal/models"
	"github.com/vytor/flashdeck/internal/repository"
	"github.com/vytor/flashdeck/internal/repository/sqlite"
	"github.com/vytor/flashdeck/internal/testutil"
)

type CollectionRepositorySuite struct {
	suite.Suite
	db    *db.DB
	repo  repository.CollectionRepository
	cards repository.CardRepository
}

func (s *CollectionRepositorySuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.repo = sqlite.NewCollectionRepository(s.db.DB)
	s.cards = sqlite.NewCardRepository(s.db.DB)
}

func (s *CollectionRepositorySuite) TestGetCountsCards() {
	ctx := context.Background()

	id, err := s.repo.Insert(ctx, models.Collection{Name: "irregular verbs"})
	s.Require().NoError(err)

	s.Require().NoError(s.cards.InsertMany(ctx, []models.Card{
		{CollectionID: id, Front: "a", Back: "b"},
		{CollectionID: id, Front: "c", Back: "d"},
	}))

	collection, err := s.repo.Get(ctx, id)
	s.Require().NoError(err)
	s.Assert().Equal("irregular verbs", collection.Name)
	s.Assert().Equal(2, collection.CardsNumber)
}

func (s *CollectionRepositorySuite) TestTrainingDataMissingIsNil() {
	ctx := context.Background()

	id, err := s.repo.Insert(ctx, models.Collection{Name: "empty"})
	s.Require().NoError(err)

	td, err := s.repo.TrainingData(ctx, id)
	s.Require().NoError(err)
	s.Assert().Nil(td)
}

func (s *CollectionRepositorySuite) TestSaveTrainingDataUpserts() {
	ctx := context.Background()

	id, err := s.repo.Insert(ctx, models.Collection{Name: "verbs"})
	s.Require().NoError(err)

	s.Require().NoError(s.repo.SaveTrainingData(ctx, models.CollectionTrainingData{
		CollectionID: id, MaxNewCards: 10, MaxLearningCards: 50, MaxReviewCards: 100,
	}))

	td, err := s.repo.TrainingData(ctx, id)
	s.Require().NoError(err)
	s.Require().NotNil(td)
	s.Assert().Equal(10, td.MaxNewCards)
	s.Assert().Equal(0, td.Streak)

	td.Streak = 3
	td.LastTrainingDate = "2026-03-10"
	td.TotalScore = 42
	s.Require().NoError(s.repo.SaveTrainingData(ctx, *td))

	updated, err := s.repo.TrainingData(ctx, id)
	s.Require().NoError(err)
	s.Assert().Equal(3, updated.Streak)
	s.Assert().Equal("2026-03-10", updated.LastTrainingDate)
	s.Assert().Equal(42, updated.TotalScore)
}

func TestCollectionRepositorySuite(t *testing.T) {
	suite.Run(t, new(CollectionRepositorySuite))
}
