package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/vytor/flashdeck/internal/logger"
	"github.com/vytor/flashdeck/internal/models"
	"github.com/vytor/flashdeck/internal/repository"
)

type reviewLogRepository struct {
	db *sql.DB
}

// NewReviewLogRepository creates a new ReviewLogRepository implementation
func NewReviewLogRepository(db *sql.DB) repository.ReviewLogRepository {
	return &reviewLogRepository{db: db}
}

func (r *reviewLogRepository) Insert(ctx context.Context, l models.ReviewLog) error {
	log := logger.FromContext(ctx).WithPrefix("review_log_repo")
	log.Debug("appending review log: card_id=%d, grade=%s", l.CardID, l.Grade)

	_, err := r.db.ExecContext(ctx, `
INSERT INTO review_logs (card_id, status, grade, duration_ms, repeat_time, stability, difficulty)
VALUES (?, ?, ?, ?, ?, ?, ?)
`, l.CardID, l.Status, l.Grade, l.Duration.Milliseconds(), l.RepeatTime, l.Stability, l.Difficulty)
	if err != nil {
		log.Error("failed to append review log: %v", err)
	}
	return err
}

func (r *reviewLogRepository) ListByCard(ctx context.Context, cardID int64, limit int) ([]models.ReviewLog, error) {
	log := logger.FromContext(ctx).WithPrefix("review_log_repo")
	log.Debug("listing review logs: card_id=%d, limit=%d", cardID, limit)

	rows, err := r.db.QueryContext(ctx, `
SELECT id, card_id, status, grade, duration_ms, repeat_time, stability, difficulty, created_at
FROM review_logs
WHERE card_id = ?
ORDER BY created_at DESC, id DESC
LIMIT ?
`, cardID, limit)
	if err != nil {
		log.Error("failed to list review logs: %v", err)
		return nil, err
	}
	defer rows.Close()

	var logs []models.ReviewLog
	for rows.Next() {
		var l models.ReviewLog
		var durationMS int64
		if err := rows.Scan(&l.ID, &l.CardID, &l.Status, &l.Grade, &durationMS, &l.RepeatTime, &l.Stability, &l.Difficulty, &l.CreatedAt); err != nil {
			log.Error("failed to scan review log row: %v", err)
			return nil, err
		}
		l.Duration = time.Duration(durationMS) * time.Millisecond
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
