package scheduler_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/flashdeck/internal/models"
	"github.com/vytor/flashdeck/internal/scheduler"
)

var now = time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

func newCard() *models.Card {
	return &models.Card{ID: 1, CollectionID: 1, Status: models.CardStatusNew}
}

func TestReview_FirstResponseInitializesMemory(t *testing.T) {
	s := scheduler.New(scheduler.DefaultParams())

	for _, grade := range []models.Grade{models.GradeAgain, models.GradeHard, models.GradeGood, models.GradeEasy} {
		card := newCard()
		s.Review(card, grade, now)

		assert.GreaterOrEqual(t, card.Stability, scheduler.StabilityMin, "grade %s", grade)
		assert.GreaterOrEqual(t, card.Difficulty, 1.0, "grade %s", grade)
		assert.LessOrEqual(t, card.Difficulty, 10.0, "grade %s", grade)
		assert.Equal(t, now, card.PrevRepeatTime)
		assert.NotEqual(t, models.CardStatusNew, card.Status, "first response must leave New")
	}
}

func TestReview_BoundsHoldAcrossStatusesAndGrades(t *testing.T) {
	s := scheduler.New(scheduler.DefaultParams())

	statuses := []models.CardStatus{
		models.CardStatusNew, models.CardStatusLearning,
		models.CardStatusReview, models.CardStatusRelearning,
	}
	grades := []models.Grade{models.GradeAgain, models.GradeHard, models.GradeGood, models.GradeEasy}

	for _, status := range statuses {
		for _, grade := range grades {
			card := &models.Card{
				Status:         status,
				Stability:      12.5,
				Difficulty:     6.2,
				PrevRepeatTime: now.AddDate(0, 0, -5),
				RepeatTime:     now,
			}
			s.Review(card, grade, now)

			assert.GreaterOrEqual(t, card.Stability, scheduler.StabilityMin, "%s/%s", status, grade)
			assert.GreaterOrEqual(t, card.Difficulty, 1.0, "%s/%s", status, grade)
			assert.LessOrEqual(t, card.Difficulty, 10.0, "%s/%s", status, grade)
			assert.True(t, card.RepeatTime.After(now), "%s/%s must schedule into the future", status, grade)
		}
	}
}

func TestRetrievability(t *testing.T) {
	s := scheduler.New(scheduler.DefaultParams())

	assert.InDelta(t, 1.0, s.Retrievability(10, 0), 1e-9, "retrievability at zero elapsed days is 1")

	prev := 1.0
	for days := 1; days <= 60; days++ {
		r := s.Retrievability(10, float64(days))
		assert.Less(t, r, prev, "retrievability must strictly decrease (day %d)", days)
		prev = r
	}
}

func TestReview_GoodLadderPromotesAfterAllSteps(t *testing.T) {
	params := scheduler.DefaultParams()
	s := scheduler.New(params)
	card := newCard()

	for i := 0; i < len(params.LearningSteps)-1; i++ {
		s.Review(card, models.GradeGood, now)
		require.Equal(t, models.CardStatusLearning, card.Status, "still in ladder after %d responses", i+1)
	}
	s.Review(card, models.GradeGood, now)

	assert.Equal(t, models.CardStatusReview, card.Status)
	assert.Equal(t, 0, card.LearningStep)
	assert.GreaterOrEqual(t, card.IntervalDays, 1)
}

func TestReview_EasyPromotesImmediately(t *testing.T) {
	s := scheduler.New(scheduler.DefaultParams())
	card := newCard()

	s.Review(card, models.GradeEasy, now)

	assert.Equal(t, models.CardStatusReview, card.Status)
	assert.True(t, card.RepeatTime.After(now.Add(23*time.Hour)), "promoted card schedules at least a day out")
}

func TestReview_AgainResetsLearningStep(t *testing.T) {
	s := scheduler.New(scheduler.DefaultParams())
	card := newCard()

	s.Review(card, models.GradeGood, now) // step 0 -> 1
	require.Equal(t, 1, card.LearningStep)

	s.Review(card, models.GradeAgain, now.Add(time.Minute))

	assert.Equal(t, 0, card.LearningStep)
	assert.Equal(t, models.CardStatusLearning, card.Status)
	assert.Equal(t, now.Add(2*time.Minute), card.RepeatTime, "Again reschedules at the first step")
}

func TestReview_HardDoesNotAdvanceStep(t *testing.T) {
	params := scheduler.DefaultParams()
	s := scheduler.New(params)
	card := newCard()

	s.Review(card, models.GradeHard, now)

	assert.Equal(t, 0, card.LearningStep)
	// At step 0 with two steps, Hard schedules the average of the first two.
	avg := (params.LearningSteps[0] + params.LearningSteps[1]) / 2
	assert.Equal(t, now.Add(avg), card.RepeatTime)
}

func TestReview_HardWithSingleStepLadder(t *testing.T) {
	params := scheduler.DefaultParams()
	params.LearningSteps = []time.Duration{2 * time.Minute}
	s := scheduler.New(params)
	card := newCard()

	s.Review(card, models.GradeHard, now)

	assert.Equal(t, now.Add(3*time.Minute), card.RepeatTime, "1.5x the only step")
}

func TestReview_AgainOnReviewDemotesToRelearning(t *testing.T) {
	params := scheduler.DefaultParams()
	s := scheduler.New(params)
	card := &models.Card{
		Status:         models.CardStatusReview,
		Stability:      20,
		Difficulty:     5,
		PrevRepeatTime: now.AddDate(0, 0, -20),
	}

	s.Review(card, models.GradeAgain, now)

	assert.Equal(t, models.CardStatusRelearning, card.Status)
	assert.Equal(t, 0, card.LearningStep)
	assert.Equal(t, now.Add(params.RelearningSteps[0]), card.RepeatTime)
	assert.Less(t, card.Stability, 20.0, "failure can only shrink stability")
}

func TestReview_AgainOnReviewWithoutRelearningLadder(t *testing.T) {
	params := scheduler.DefaultParams()
	params.RelearningSteps = nil
	s := scheduler.New(params)
	card := &models.Card{
		Status:         models.CardStatusReview,
		Stability:      20,
		Difficulty:     5,
		PrevRepeatTime: now.AddDate(0, 0, -20),
	}

	s.Review(card, models.GradeAgain, now)

	assert.Equal(t, models.CardStatusReview, card.Status, "stays in Review with a recomputed interval")
	assert.True(t, card.RepeatTime.After(now))
}

func TestReview_RelearningPromotesBackToReview(t *testing.T) {
	s := scheduler.New(scheduler.DefaultParams())
	card := &models.Card{
		Status:         models.CardStatusRelearning,
		Stability:      4,
		Difficulty:     6,
		LearningStep:   1,
		PrevRepeatTime: now.Add(-10 * time.Minute),
	}

	s.Review(card, models.GradeGood, now)

	assert.Equal(t, models.CardStatusReview, card.Status)
	assert.Equal(t, 0, card.LearningStep)
}

func TestReview_SameDaySuccessNeverReducesStability(t *testing.T) {
	s := scheduler.New(scheduler.DefaultParams())

	for _, grade := range []models.Grade{models.GradeGood, models.GradeEasy} {
		card := &models.Card{
			Status:         models.CardStatusLearning,
			Stability:      3.5,
			Difficulty:     5,
			PrevRepeatTime: now.Add(-10 * time.Minute),
		}
		s.Review(card, grade, now)
		assert.GreaterOrEqual(t, card.Stability, 3.5, "grade %s", grade)
	}
}

func TestReview_MultiDaySuccessGrowsStability(t *testing.T) {
	s := scheduler.New(scheduler.DefaultParams())
	card := &models.Card{
		Status:         models.CardStatusReview,
		Stability:      10,
		Difficulty:     5,
		PrevRepeatTime: now.AddDate(0, 0, -10),
	}

	s.Review(card, models.GradeGood, now)

	assert.Greater(t, card.Stability, 10.0)
	assert.Equal(t, models.CardStatusReview, card.Status)
}

func TestNextIntervalDays_Clamped(t *testing.T) {
	params := scheduler.DefaultParams()
	s := scheduler.New(params)

	assert.Equal(t, 1, s.NextIntervalDays(0.0001), "tiny stability clamps to one day")
	assert.Equal(t, params.MaxIntervalDays, s.NextIntervalDays(1e9), "huge stability clamps to the max")

	// At the 0.9 reference retention the interval tracks stability.
	assert.Equal(t, 10, s.NextIntervalDays(10))
}

func TestReview_InvalidGradePanics(t *testing.T) {
	s := scheduler.New(scheduler.DefaultParams())

	assert.Panics(t, func() {
		s.Review(newCard(), models.Grade(42), now)
	})
}
