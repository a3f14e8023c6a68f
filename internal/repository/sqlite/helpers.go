package sqlite

import (
	"context"
	"database/sql"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/flashdeck/internal/logger"
	"github.com/vytor/flashdeck/internal/models"
)

var sqlBuilder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

// cardColumns is the scan order shared by every card query.
const cardColumns = "id, collection_id, front, back, status, stability, difficulty, learning_step, interval_days, repeat_time, prev_repeat_time, successful_repeats, failed_repeats, priority, created_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCard(row rowScanner) (models.Card, error) {
	var c models.Card
	err := row.Scan(&c.ID, &c.CollectionID, &c.Front, &c.Back, &c.Status,
		&c.Stability, &c.Difficulty, &c.LearningStep, &c.IntervalDays,
		&c.RepeatTime, &c.PrevRepeatTime, &c.SuccessfulRepeats,
		&c.FailedRepeats, &c.Priority, &c.CreatedAt)
	return c, err
}

func scanCards(rows *sql.Rows) ([]models.Card, error) {
	var cards []models.Card
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, rows.Err()
}

func tx(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) error {
	log := logger.FromContext(ctx).WithPrefix("repo")
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("failed to begin transaction: %v", err)
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		log.Debug("transaction rolled back due to error: %v", err)
		return err
	}
	if err := tx.Commit(); err != nil {
		log.Error("failed to commit transaction: %v", err)
		return err
	}
	return nil
}
