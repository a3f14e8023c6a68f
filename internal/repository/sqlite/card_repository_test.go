package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/vytor/flashdeck/internal/db"
	"github.com/vytor/flashdeck/internal/models"
	"github.com/vytor/flashdeck/internal/repository"
	"github.com/vytor/flashdeck/internal/repository/sqlite"
	"github.com/vytor/flashdeck/internal/testutil"
)

type CardRepositorySuite struct {
	suite.Suite
	db   *db.DB
	repo repository.CardRepository
}

func (s *CardRepositorySuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.repo = sqlite.NewCardRepository(s.db.DB)
}

func (s *CardRepositorySuite) setupCollection() int64 {
	ctx := context.Background()

	res, err := s.db.ExecContext(ctx, `INSERT INTO collections (name) VALUES (?)`, "test collection")
	s.Require().NoError(err)
	id, err := res.LastInsertId()
	s.Require().NoError(err)
	return id
}

func (s *CardRepositorySuite) TestInsertAndGet() {
	ctx := context.Background()
	collectionID := s.setupCollection()

	due := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	id, err := s.repo.Insert(ctx, models.Card{
		CollectionID: collectionID,
		Front:        "hablar",
		Back:         "to speak",
		Status:       models.CardStatusNew,
		RepeatTime:   due,
		Priority:     2,
	})
	s.Require().NoError(err)
	s.Assert().Greater(id, int64(0))

	card, err := s.repo.Get(ctx, id)
	s.Require().NoError(err)
	s.Assert().Equal("hablar", card.Front)
	s.Assert().Equal("to speak", card.Back)
	s.Assert().Equal(models.CardStatusNew, card.Status)
	s.Assert().Equal(2, card.Priority)
	s.Assert().True(card.RepeatTime.Equal(due))
	s.Assert().True(card.PrevRepeatTime.IsZero())
}

func (s *CardRepositorySuite) TestUpdateKeepsMemoryState() {
	ctx := context.Background()
	collectionID := s.setupCollection()

	id, err := s.repo.Insert(ctx, models.Card{CollectionID: collectionID, Front: "f", Back: "b"})
	s.Require().NoError(err)

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	card := models.Card{
		ID:                id,
		CollectionID:      collectionID,
		Front:             "f",
		Back:              "b",
		Status:            models.CardStatusReview,
		Stability:         4.2,
		Difficulty:        6.1,
		IntervalDays:      4,
		RepeatTime:        now.AddDate(0, 0, 4),
		PrevRepeatTime:    now,
		SuccessfulRepeats: 3,
	}
	s.Require().NoError(s.repo.Update(ctx, card))

	got, err := s.repo.Get(ctx, id)
	s.Require().NoError(err)
	s.Assert().Equal(models.CardStatusReview, got.Status)
	s.Assert().Equal(4.2, got.Stability)
	s.Assert().Equal(6.1, got.Difficulty)
	s.Assert().Equal(4, got.IntervalDays)
	s.Assert().Equal(3, got.SuccessfulRepeats)
	s.Assert().True(got.PrevRepeatTime.Equal(now))
}

func (s *CardRepositorySuite) TestSelectNewOrdersByPriority() {
	ctx := context.Background()
	collectionID := s.setupCollection()

	s.Require().NoError(s.repo.InsertMany(ctx, []models.Card{
		{CollectionID: collectionID, Front: "low", Back: "b", Priority: 5},
		{CollectionID: collectionID, Front: "high", Back: "b", Priority: 1},
		{CollectionID: collectionID, Front: "mid", Back: "b", Priority: 3},
	}))

	cards, err := s.repo.SelectNew(ctx, collectionID, 2)
	s.Require().NoError(err)
	s.Require().Len(cards, 2)
	s.Assert().Equal("high", cards[0].Front)
	s.Assert().Equal("mid", cards[1].Front)
}

func (s *CardRepositorySuite) TestSelectLearningIncludesRelearning() {
	ctx := context.Background()
	collectionID := s.setupCollection()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	s.Require().NoError(s.repo.InsertMany(ctx, []models.Card{
		{CollectionID: collectionID, Front: "learning", Back: "b", Status: models.CardStatusLearning, RepeatTime: now.Add(10 * time.Minute)},
		{CollectionID: collectionID, Front: "relearning", Back: "b", Status: models.CardStatusRelearning, RepeatTime: now.Add(time.Minute)},
		{CollectionID: collectionID, Front: "review", Back: "b", Status: models.CardStatusReview, RepeatTime: now},
		{CollectionID: collectionID, Front: "new", Back: "b", Status: models.CardStatusNew},
	}))

	cards, err := s.repo.SelectLearning(ctx, collectionID, 10)
	s.Require().NoError(err)
	s.Require().Len(cards, 2)
	s.Assert().Equal("relearning", cards[0].Front)
	s.Assert().Equal("learning", cards[1].Front)
}

func (s *CardRepositorySuite) TestSelectReviewHonorsDueBefore() {
	ctx := context.Background()
	collectionID := s.setupCollection()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	s.Require().NoError(s.repo.InsertMany(ctx, []models.Card{
		{CollectionID: collectionID, Front: "due", Back: "b", Status: models.CardStatusReview, RepeatTime: now.Add(-time.Hour)},
		{CollectionID: collectionID, Front: "later", Back: "b", Status: models.CardStatusReview, RepeatTime: now.AddDate(0, 0, 3)},
	}))

	cards, err := s.repo.SelectReview(ctx, collectionID, now, 10)
	s.Require().NoError(err)
	s.Require().Len(cards, 1)
	s.Assert().Equal("due", cards[0].Front)

	cards, err = s.repo.SelectReview(ctx, collectionID, now.AddDate(0, 0, 4), 10)
	s.Require().NoError(err)
	s.Assert().Len(cards, 2)
}

func (s *CardRepositorySuite) TestBulkUpdateRepeatTime() {
	ctx := context.Background()
	collectionID := s.setupCollection()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	id1, err := s.repo.Insert(ctx, models.Card{CollectionID: collectionID, Front: "a", Back: "b"})
	s.Require().NoError(err)
	id2, err := s.repo.Insert(ctx, models.Card{CollectionID: collectionID, Front: "c", Back: "d"})
	s.Require().NoError(err)

	s.Require().NoError(s.repo.BulkUpdateRepeatTime(ctx, []models.Card{
		{ID: id1, RepeatTime: now},
		{ID: id2, RepeatTime: now.Add(10 * time.Second)},
	}))

	first, err := s.repo.Get(ctx, id1)
	s.Require().NoError(err)
	s.Assert().True(first.RepeatTime.Equal(now))
	second, err := s.repo.Get(ctx, id2)
	s.Require().NoError(err)
	s.Assert().True(second.RepeatTime.Equal(now.Add(10 * time.Second)))
}

func (s *CardRepositorySuite) TestListWithStatusFilter() {
	ctx := context.Background()
	collectionID := s.setupCollection()

	s.Require().NoError(s.repo.InsertMany(ctx, []models.Card{
		{CollectionID: collectionID, Front: "a", Back: "b", Status: models.CardStatusNew},
		{CollectionID: collectionID, Front: "c", Back: "d", Status: models.CardStatusReview},
	}))

	status := models.CardStatusReview
	cards, err := s.repo.List(ctx, models.CardFilter{CollectionID: collectionID, Status: &status})
	s.Require().NoError(err)
	s.Require().Len(cards, 1)
	s.Assert().Equal("c", cards[0].Front)
}

func TestCardRepositorySuite(t *testing.T) {
	suite.Run(t, new(CardRepositorySuite))
}
