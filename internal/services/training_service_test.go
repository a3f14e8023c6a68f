package services_test

import (
	"context"
	"database/sql"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/vytor/flashdeck/internal/errors"
	"github.com/vytor/flashdeck/internal/models"
	"github.com/vytor/flashdeck/internal/pool"
	"github.com/vytor/flashdeck/internal/scheduler"
	"github.com/vytor/flashdeck/internal/services"
	"github.com/vytor/flashdeck/internal/testutil/mocks"
	"github.com/vytor/flashdeck/internal/timeutil"
)

type trainingMocks struct {
	cards        *mocks.MockCardRepository
	sessions     *mocks.MockSessionRepository
	sessionCards *mocks.MockSessionCardRepository
	reviews      *mocks.MockReviewLogRepository
	collections  *mocks.MockCollectionRepository
	store        *mocks.MockTrainingStore
}

func newTrainingMocks() trainingMocks {
	return trainingMocks{
		cards:        new(mocks.MockCardRepository),
		sessions:     new(mocks.MockSessionRepository),
		sessionCards: new(mocks.MockSessionCardRepository),
		reviews:      new(mocks.MockReviewLogRepository),
		collections:  new(mocks.MockCollectionRepository),
		store:        new(mocks.MockTrainingStore),
	}
}

func (m trainingMocks) deps() services.TrainingDeps {
	return services.TrainingDeps{
		Cards:        m.cards,
		Sessions:     m.sessions,
		SessionCards: m.sessionCards,
		ReviewLogs:   m.reviews,
		Collections:  m.collections,
		Store:        m.store,
	}
}

func newMockedService(m trainingMocks, now time.Time) *services.TrainingService {
	return services.NewTrainingService(
		m.deps(),
		scheduler.New(scheduler.DefaultParams()),
		services.Quotas{MaxNewCards: 10, MaxLearningCards: 50, MaxReviewCards: 100},
		services.WithClock(func() time.Time { return now }),
		services.WithRandSource(func() *rand.Rand { return rand.New(rand.NewSource(1)) }),
	)
}

func TestStartSession_BuildsSessionWithCapsAndDedupe(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	m := newTrainingMocks()
	svc := newMockedService(m, now)

	m.collections.On("Get", ctx, int64(1)).Return(&models.Collection{ID: 1, Name: "verbs"}, nil)
	m.collections.On("TrainingData", ctx, int64(1)).Return(&models.CollectionTrainingData{
		CollectionID: 1, MaxNewCards: 2, MaxLearningCards: 5, MaxReviewCards: 5,
	}, nil)
	m.sessions.On("GetStarted", ctx, int64(1), "2026-03-10").Return(nil, nil)

	m.cards.On("SelectLearning", ctx, int64(1), 5).Return([]models.Card{
		{ID: 3, Status: models.CardStatusLearning, RepeatTime: now.Add(-time.Hour)},
	}, nil)
	m.cards.On("SelectNew", ctx, int64(1), 2).Return([]models.Card{
		{ID: 1, Status: models.CardStatusNew},
		{ID: 2, Status: models.CardStatusNew},
	}, nil)
	cutoff := timeutil.EndOfDay(now)
	m.cards.On("SelectReview", ctx, int64(1), cutoff, 5).Return([]models.Card{
		{ID: 4, Status: models.CardStatusReview, RepeatTime: now.Add(-2 * time.Hour)},
	}, nil)
	// The backfill query sees card 4 again; only card 5 may be added.
	m.cards.On("SelectReview", ctx, int64(1), cutoff.AddDate(0, 0, 1), 5).Return([]models.Card{
		{ID: 4, Status: models.CardStatusReview, RepeatTime: now.Add(-2 * time.Hour)},
		{ID: 5, Status: models.CardStatusReview, RepeatTime: now.Add(20 * time.Hour)},
	}, nil)

	m.sessions.On("Insert", ctx, mock.MatchedBy(func(sess models.Session) bool {
		return sess.CollectionID == 1 &&
			sess.TrainingDate == "2026-03-10" &&
			sess.NewCards == 2 &&
			sess.LearningCards == 1 &&
			sess.ReviewCards == 2 &&
			sess.Status == models.SessionStatusStarted
	})).Return(int64(7), nil)
	m.sessionCards.On("InsertMany", ctx, mock.MatchedBy(func(rows []models.SessionCard) bool {
		if len(rows) != 5 {
			return false
		}
		for _, row := range rows {
			if row.SessionID != 7 || row.Status != models.SessionCardStatusNew {
				return false
			}
		}
		return true
	})).Return(nil)
	// Only the two never-scheduled cards get synthetic due times.
	m.cards.On("BulkUpdateRepeatTime", ctx, mock.MatchedBy(func(updated []models.Card) bool {
		return len(updated) == 2 && updated[0].ID == 1 && updated[1].ID == 2 &&
			!updated[0].RepeatTime.IsZero() && updated[1].RepeatTime.After(updated[0].RepeatTime)
	})).Return(nil)

	built := &models.Session{
		ID: 7, CollectionID: 1, TrainingDate: "2026-03-10",
		NewCards: 2, ReviewCards: 2, LearningCards: 1, Status: models.SessionStatusStarted,
	}
	m.sessions.On("Get", ctx, int64(7)).Return(built, nil)
	m.sessionCards.On("Cards", ctx, int64(7)).Return([]models.Card{
		{ID: 1, Status: models.CardStatusNew, RepeatTime: now},
		{ID: 2, Status: models.CardStatusNew, RepeatTime: now.Add(10 * time.Second)},
		{ID: 3, Status: models.CardStatusLearning, RepeatTime: now.Add(-time.Hour)},
		{ID: 4, Status: models.CardStatusReview, RepeatTime: now.Add(-2 * time.Hour)},
		{ID: 5, Status: models.CardStatusReview, RepeatTime: now.Add(20 * time.Hour)},
	}, nil)

	flow, err := svc.StartSession(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(7), flow.Session().ID)
	assert.Equal(t, pool.Snapshot{New: 2, Learning: 1, Review: 2}, flow.Snapshot())
	assert.False(t, flow.Completed())

	m.cards.AssertExpectations(t)
	m.sessions.AssertExpectations(t)
	m.sessionCards.AssertExpectations(t)
	m.collections.AssertExpectations(t)
}

func TestStartSession_CollectionNotFound(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	m := newTrainingMocks()
	svc := newMockedService(m, now)

	m.collections.On("Get", ctx, int64(99)).Return(nil, sql.ErrNoRows)

	_, err := svc.StartSession(ctx, 99)
	require.Error(t, err)
	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeNotFound, appErr.Code)
}

func TestStartSession_CreatesDefaultTrainingData(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	m := newTrainingMocks()
	svc := newMockedService(m, now)

	existing := &models.Session{ID: 4, CollectionID: 2, TrainingDate: "2026-03-10", Status: models.SessionStatusStarted}

	m.collections.On("Get", ctx, int64(2)).Return(&models.Collection{ID: 2}, nil)
	m.collections.On("TrainingData", ctx, int64(2)).Return(nil, nil)
	m.collections.On("SaveTrainingData", ctx, mock.MatchedBy(func(td models.CollectionTrainingData) bool {
		return td.CollectionID == 2 && td.MaxNewCards == 10 && td.MaxLearningCards == 50 && td.MaxReviewCards == 100
	})).Return(nil)
	m.sessions.On("GetStarted", ctx, int64(2), "2026-03-10").Return(existing, nil)
	m.sessionCards.On("Cards", ctx, int64(4)).Return([]models.Card{}, nil)

	flow, err := svc.StartSession(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(4), flow.Session().ID)

	m.collections.AssertExpectations(t)
}

func TestStartSession_SameDayReturnsSameFlow(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	m := newTrainingMocks()
	svc := newMockedService(m, now)

	existing := &models.Session{ID: 8, CollectionID: 3, TrainingDate: "2026-03-10", Status: models.SessionStatusStarted}

	m.collections.On("Get", ctx, int64(3)).Return(&models.Collection{ID: 3}, nil)
	m.collections.On("TrainingData", ctx, int64(3)).Return(&models.CollectionTrainingData{CollectionID: 3, MaxNewCards: 5, MaxLearningCards: 5, MaxReviewCards: 5}, nil)
	m.sessions.On("GetStarted", ctx, int64(3), "2026-03-10").Return(existing, nil)
	m.sessionCards.On("Cards", ctx, int64(8)).Return([]models.Card{
		{ID: 10, Status: models.CardStatusNew, RepeatTime: now},
	}, nil).Once()

	first, err := svc.StartSession(ctx, 3)
	require.NoError(t, err)
	second, err := svc.StartSession(ctx, 3)
	require.NoError(t, err)
	assert.Same(t, first, second)

	registered, ok := svc.Flow(8)
	require.True(t, ok)
	assert.Same(t, first, registered)
}
