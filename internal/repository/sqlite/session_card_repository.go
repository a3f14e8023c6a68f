package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/vytor/flashdeck/internal/logger"
	"github.com/vytor/flashdeck/internal/models"
	"github.com/vytor/flashdeck/internal/repository"
)

type sessionCardRepository struct {
	db *sql.DB
}

// NewSessionCardRepository creates a new SessionCardRepository implementation
func NewSessionCardRepository(db *sql.DB) repository.SessionCardRepository {
	return &sessionCardRepository{db: db}
}

func (r *sessionCardRepository) Get(ctx context.Context, sessionID, cardID int64) (*models.SessionCard, error) {
	log := logger.FromContext(ctx).WithPrefix("session_card_repo")

	var sc models.SessionCard
	err := r.db.QueryRowContext(ctx, `
SELECT id, session_id, card_id, status, successful_repeats, failed_repeats, planned_review_time
FROM session_cards
WHERE session_id = ? AND card_id = ?
`, sessionID, cardID).Scan(&sc.ID, &sc.SessionID, &sc.CardID, &sc.Status, &sc.SuccessfulRepeats, &sc.FailedRepeats, &sc.PlannedReviewTime)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("session card not found: session_id=%d, card_id=%d", sessionID, cardID)
		} else {
			log.Error("failed to get session card: %v", err)
		}
		return nil, err
	}
	return &sc, nil
}

func (r *sessionCardRepository) InsertMany(ctx context.Context, sessionCards []models.SessionCard) error {
	log := logger.FromContext(ctx).WithPrefix("session_card_repo")
	log.Debug("bulk inserting %d session cards", len(sessionCards))
	if len(sessionCards) == 0 {
		return nil
	}

	return tx(ctx, r.db, func(t *sql.Tx) error {
		stmt, err := t.PrepareContext(ctx, `
INSERT INTO session_cards (session_id, card_id, status, successful_repeats, failed_repeats, planned_review_time)
VALUES (?, ?, ?, ?, ?, ?)
`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, sc := range sessionCards {
			if _, err := stmt.ExecContext(ctx, sc.SessionID, sc.CardID, sc.Status, sc.SuccessfulRepeats, sc.FailedRepeats, sc.PlannedReviewTime); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *sessionCardRepository) Update(ctx context.Context, sc models.SessionCard) error {
	log := logger.FromContext(ctx).WithPrefix("session_card_repo")
	log.Debug("updating session card: session_id=%d, card_id=%d, status=%d", sc.SessionID, sc.CardID, sc.Status)

	_, err := r.db.ExecContext(ctx, `
UPDATE session_cards
SET status = ?, successful_repeats = ?, failed_repeats = ?, planned_review_time = ?
WHERE session_id = ? AND card_id = ?
`, sc.Status, sc.SuccessfulRepeats, sc.FailedRepeats, sc.PlannedReviewTime, sc.SessionID, sc.CardID)
	if err != nil {
		log.Error("failed to update session card: %v", err)
	}
	return err
}

func (r *sessionCardRepository) Delete(ctx context.Context, sessionID, cardID int64) error {
	log := logger.FromContext(ctx).WithPrefix("session_card_repo")
	log.Debug("deleting session card: session_id=%d, card_id=%d", sessionID, cardID)

	_, err := r.db.ExecContext(ctx, `DELETE FROM session_cards WHERE session_id = ? AND card_id = ?`, sessionID, cardID)
	if err != nil {
		log.Error("failed to delete session card: %v", err)
	}
	return err
}

func (r *sessionCardRepository) Cards(ctx context.Context, sessionID int64) ([]models.Card, error) {
	log := logger.FromContext(ctx).WithPrefix("session_card_repo")
	log.Debug("loading working set: session_id=%d", sessionID)

	rows, err := r.db.QueryContext(ctx, `
SELECT cards.id, cards.collection_id, cards.front, cards.back, cards.status, cards.stability,
       cards.difficulty, cards.learning_step, cards.interval_days, cards.repeat_time,
       cards.prev_repeat_time, cards.successful_repeats, cards.failed_repeats, cards.priority, cards.created_at
FROM cards
INNER JOIN session_cards ON cards.id = session_cards.card_id
WHERE session_cards.session_id = ? AND session_cards.status <> ?
ORDER BY cards.repeat_time, cards.id
`, sessionID, models.SessionCardStatusComplete)
	if err != nil {
		log.Error("failed to load session cards: %v", err)
		return nil, err
	}
	defer rows.Close()
	return scanCards(rows)
}
