package sqlite

import (
	"context"
	"database/sql"

	"github.com/vytor/flashdeck/internal/logger"
	"github.com/vytor/flashdeck/internal/models"
	"github.com/vytor/flashdeck/internal/repository"
)

type trainingStore struct {
	db *sql.DB
}

// NewTrainingStore creates a new TrainingStore implementation
func NewTrainingStore(db *sql.DB) repository.TrainingStore {
	return &trainingStore{db: db}
}

// SaveReview writes the reviewed card and its session card in one
// transaction so a partial write can never split the pair.
func (s *trainingStore) SaveReview(ctx context.Context, card models.Card, sessionCard models.SessionCard) error {
	log := logger.FromContext(ctx).WithPrefix("training_store")
	log.Debug("saving review: card_id=%d, session_id=%d", card.ID, sessionCard.SessionID)

	return tx(ctx, s.db, func(t *sql.Tx) error {
		if _, err := t.ExecContext(ctx, `
UPDATE cards
SET status = ?, stability = ?, difficulty = ?, learning_step = ?, interval_days = ?,
    repeat_time = ?, prev_repeat_time = ?, successful_repeats = ?, failed_repeats = ?
WHERE id = ?
`, card.Status, card.Stability, card.Difficulty, card.LearningStep, card.IntervalDays,
			card.RepeatTime, card.PrevRepeatTime, card.SuccessfulRepeats, card.FailedRepeats, card.ID); err != nil {
			return err
		}
		if _, err := t.ExecContext(ctx, `
UPDATE session_cards
SET status = ?, successful_repeats = ?, failed_repeats = ?, planned_review_time = ?
WHERE session_id = ? AND card_id = ?
`, sessionCard.Status, sessionCard.SuccessfulRepeats, sessionCard.FailedRepeats,
			sessionCard.PlannedReviewTime, sessionCard.SessionID, sessionCard.CardID); err != nil {
			return err
		}
		return nil
	})
}
