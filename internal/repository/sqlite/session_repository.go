package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/vytor/flashdeck/internal/logger"
	"github.com/vytor/flashdeck/internal/models"
	"github.com/vytor/flashdeck/internal/repository"
)

const sessionColumns = "id, collection_id, training_date, new_cards, review_cards, learning_cards, total_views, success_responses, failed_responses, score, status, created_at"

type sessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new SessionRepository implementation
func NewSessionRepository(db *sql.DB) repository.SessionRepository {
	return &sessionRepository{db: db}
}

func scanSession(row rowScanner) (models.Session, error) {
	var s models.Session
	err := row.Scan(&s.ID, &s.CollectionID, &s.TrainingDate, &s.NewCards,
		&s.ReviewCards, &s.LearningCards, &s.TotalViews, &s.SuccessResponses,
		&s.FailedResponses, &s.Score, &s.Status, &s.CreatedAt)
	return s, err
}

func (r *sessionRepository) Insert(ctx context.Context, s models.Session) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("session_repo")
	log.Debug("inserting session: collection_id=%d, training_date=%s", s.CollectionID, s.TrainingDate)

	res, err := r.db.ExecContext(ctx, `
INSERT INTO sessions (collection_id, training_date, new_cards, review_cards, learning_cards, total_views, success_responses, failed_responses, score, status)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, s.CollectionID, s.TrainingDate, s.NewCards, s.ReviewCards, s.LearningCards, s.TotalViews, s.SuccessResponses, s.FailedResponses, s.Score, s.Status)
	if err != nil {
		log.Error("failed to insert session: %v", err)
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		log.Error("failed to get session id: %v", err)
		return 0, err
	}
	log.Debug("session inserted: id=%d", id)
	return id, nil
}

func (r *sessionRepository) Update(ctx context.Context, s models.Session) error {
	log := logger.FromContext(ctx).WithPrefix("session_repo")
	log.Debug("updating session: id=%d, status=%d, views=%d", s.ID, s.Status, s.TotalViews)

	_, err := r.db.ExecContext(ctx, `
UPDATE sessions
SET new_cards = ?, review_cards = ?, learning_cards = ?, total_views = ?,
    success_responses = ?, failed_responses = ?, score = ?, status = ?
WHERE id = ?
`, s.NewCards, s.ReviewCards, s.LearningCards, s.TotalViews, s.SuccessResponses, s.FailedResponses, s.Score, s.Status, s.ID)
	if err != nil {
		log.Error("failed to update session: %v", err)
	}
	return err
}

func (r *sessionRepository) Get(ctx context.Context, id int64) (*models.Session, error) {
	log := logger.FromContext(ctx).WithPrefix("session_repo")

	row := r.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id)
	s, err := scanSession(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("session not found: id=%d", id)
		} else {
			log.Error("failed to get session: %v", err)
		}
		return nil, err
	}
	return &s, nil
}

func (r *sessionRepository) GetStarted(ctx context.Context, collectionID int64, trainingDate string) (*models.Session, error) {
	log := logger.FromContext(ctx).WithPrefix("session_repo")
	log.Debug("looking for started session: collection_id=%d, training_date=%s", collectionID, trainingDate)

	row := r.db.QueryRowContext(ctx, `
SELECT `+sessionColumns+`
FROM sessions
WHERE collection_id = ? AND training_date = ? AND status = ?
`, collectionID, trainingDate, models.SessionStatusStarted)
	s, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get started session: %v", err)
		return nil, err
	}
	return &s, nil
}
