package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/vytor/flashdeck/internal/logger"
	"github.com/vytor/flashdeck/internal/models"
	"github.com/vytor/flashdeck/internal/repository"
)

type cardRepository struct {
	db *sql.DB
}

// NewCardRepository creates a new CardRepository implementation
func NewCardRepository(db *sql.DB) repository.CardRepository {
	return &cardRepository{db: db}
}

func (r *cardRepository) Get(ctx context.Context, id int64) (*models.Card, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")

	row := r.db.QueryRowContext(ctx, `SELECT `+cardColumns+` FROM cards WHERE id = ?`, id)
	c, err := scanCard(row)
	if err != nil {
		if err == sql.ErrNoRows {
			log.Debug("card not found: id=%d", id)
		} else {
			log.Error("failed to get card: %v", err)
		}
		return nil, err
	}
	return &c, nil
}

func (r *cardRepository) Insert(ctx context.Context, c models.Card) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("inserting card: collection_id=%d", c.CollectionID)

	res, err := r.db.ExecContext(ctx, `
INSERT INTO cards (collection_id, front, back, status, stability, difficulty, learning_step, interval_days, repeat_time, prev_repeat_time, successful_repeats, failed_repeats, priority)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, c.CollectionID, c.Front, c.Back, c.Status, c.Stability, c.Difficulty, c.LearningStep, c.IntervalDays, c.RepeatTime, c.PrevRepeatTime, c.SuccessfulRepeats, c.FailedRepeats, c.Priority)
	if err != nil {
		log.Error("failed to insert card: %v", err)
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		log.Error("failed to get card id: %v", err)
		return 0, err
	}
	return id, nil
}

func (r *cardRepository) InsertMany(ctx context.Context, cards []models.Card) error {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("bulk inserting %d cards", len(cards))
	if len(cards) == 0 {
		return nil
	}

	return tx(ctx, r.db, func(t *sql.Tx) error {
		stmt, err := t.PrepareContext(ctx, `
INSERT INTO cards (collection_id, front, back, status, stability, difficulty, learning_step, interval_days, repeat_time, prev_repeat_time, successful_repeats, failed_repeats, priority)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, c := range cards {
			if _, err := stmt.ExecContext(ctx, c.CollectionID, c.Front, c.Back, c.Status, c.Stability, c.Difficulty, c.LearningStep, c.IntervalDays, c.RepeatTime, c.PrevRepeatTime, c.SuccessfulRepeats, c.FailedRepeats, c.Priority); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *cardRepository) Update(ctx context.Context, c models.Card) error {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("updating card: id=%d, status=%s, stability=%.3f", c.ID, c.Status, c.Stability)

	_, err := r.db.ExecContext(ctx, `
UPDATE cards
SET front = ?, back = ?, status = ?, stability = ?, difficulty = ?, learning_step = ?, interval_days = ?,
    repeat_time = ?, prev_repeat_time = ?, successful_repeats = ?, failed_repeats = ?, priority = ?
WHERE id = ?
`, c.Front, c.Back, c.Status, c.Stability, c.Difficulty, c.LearningStep, c.IntervalDays, c.RepeatTime, c.PrevRepeatTime, c.SuccessfulRepeats, c.FailedRepeats, c.Priority, c.ID)
	if err != nil {
		log.Error("failed to update card: %v", err)
	}
	return err
}

func (r *cardRepository) BulkUpdateRepeatTime(ctx context.Context, cards []models.Card) error {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("bulk updating repeat time for %d cards", len(cards))
	if len(cards) == 0 {
		return nil
	}

	return tx(ctx, r.db, func(t *sql.Tx) error {
		stmt, err := t.PrepareContext(ctx, `UPDATE cards SET repeat_time = ? WHERE id = ?`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, c := range cards {
			if _, err := stmt.ExecContext(ctx, c.RepeatTime, c.ID); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *cardRepository) List(ctx context.Context, filter models.CardFilter) ([]models.Card, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("listing cards: collection_id=%d", filter.CollectionID)

	query := sqlBuilder.Select(
		"id", "collection_id", "front", "back", "status", "stability",
		"difficulty", "learning_step", "interval_days", "repeat_time",
		"prev_repeat_time", "successful_repeats", "failed_repeats",
		"priority", "created_at",
	).From("cards").OrderBy("id")

	if filter.CollectionID != 0 {
		query = query.Where("collection_id = ?", filter.CollectionID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.DueBefore != nil {
		query = query.Where("repeat_time <= ?", *filter.DueBefore)
	}
	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
	}

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build card list query: %v", err)
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		log.Error("failed to list cards: %v", err)
		return nil, err
	}
	defer rows.Close()
	return scanCards(rows)
}

func (r *cardRepository) SelectNew(ctx context.Context, collectionID int64, limit int) ([]models.Card, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("selecting new cards: collection_id=%d, limit=%d", collectionID, limit)

	rows, err := r.db.QueryContext(ctx, `
SELECT `+cardColumns+`
FROM cards
WHERE collection_id = ? AND status = ?
ORDER BY priority, id
LIMIT ?
`, collectionID, models.CardStatusNew, limit)
	if err != nil {
		log.Error("failed to select new cards: %v", err)
		return nil, err
	}
	defer rows.Close()
	return scanCards(rows)
}

func (r *cardRepository) SelectLearning(ctx context.Context, collectionID int64, limit int) ([]models.Card, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("selecting learning cards: collection_id=%d, limit=%d", collectionID, limit)

	rows, err := r.db.QueryContext(ctx, `
SELECT `+cardColumns+`
FROM cards
WHERE collection_id = ? AND status IN (?, ?)
ORDER BY repeat_time
LIMIT ?
`, collectionID, models.CardStatusLearning, models.CardStatusRelearning, limit)
	if err != nil {
		log.Error("failed to select learning cards: %v", err)
		return nil, err
	}
	defer rows.Close()
	return scanCards(rows)
}

func (r *cardRepository) SelectReview(ctx context.Context, collectionID int64, dueBefore time.Time, limit int) ([]models.Card, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("selecting review cards: collection_id=%d, due_before=%s, limit=%d", collectionID, dueBefore, limit)

	rows, err := r.db.QueryContext(ctx, `
SELECT `+cardColumns+`
FROM cards
WHERE collection_id = ? AND status = ? AND repeat_time <= ?
ORDER BY repeat_time
LIMIT ?
`, collectionID, models.CardStatusReview, dueBefore, limit)
	if err != nil {
		log.Error("failed to select review cards: %v", err)
		return nil, err
	}
	defer rows.Close()
	return scanCards(rows)
}
