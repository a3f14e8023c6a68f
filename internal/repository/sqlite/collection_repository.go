package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/vytor/flashdeck/internal/logger"
	"github.com/vytor/flashdeck/internal/models"
	"github.com/vytor/flashdeck/internal/repository"
)

type collectionRepository struct {
	db *sql.DB
}

// NewCollectionRepository creates a new CollectionRepository implementation
func NewCollectionRepository(db *sql.DB) repository.CollectionRepository {
	return &collectionRepository{db: db}
}

func (r *collectionRepository) Insert(ctx context.Context, c models.Collection) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("collection_repo")
	log.Debug("inserting collection: name=%s", c.Name)

	res, err := r.db.ExecContext(ctx, `INSERT INTO collections (name) VALUES (?)`, c.Name)
	if err != nil {
		log.Error("failed to insert collection: %v", err)
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		log.Error("failed to get collection id: %v", err)
		return 0, err
	}
	return id, nil
}

func (r *collectionRepository) Get(ctx context.Context, id int64) (*models.Collection, error) {
	log := logger.FromContext(ctx).WithPrefix("collection_repo")

	var c models.Collection
	err := r.db.QueryRowContext(ctx, `
SELECT id, name,
       (SELECT COUNT(*) FROM cards WHERE cards.collection_id = collections.id) AS cards_number,
       created_at
FROM collections
WHERE id = ?
`, id).Scan(&c.ID, &c.Name, &c.CardsNumber, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("collection not found: id=%d", id)
		} else {
			log.Error("failed to get collection: %v", err)
		}
		return nil, err
	}
	return &c, nil
}

func (r *collectionRepository) List(ctx context.Context) ([]models.Collection, error) {
	log := logger.FromContext(ctx).WithPrefix("collection_repo")

	rows, err := r.db.QueryContext(ctx, `
SELECT id, name,
       (SELECT COUNT(*) FROM cards WHERE cards.collection_id = collections.id) AS cards_number,
       created_at
FROM collections
ORDER BY id
`)
	if err != nil {
		log.Error("failed to list collections: %v", err)
		return nil, err
	}
	defer rows.Close()

	var collections []models.Collection
	for rows.Next() {
		var c models.Collection
		if err := rows.Scan(&c.ID, &c.Name, &c.CardsNumber, &c.CreatedAt); err != nil {
			log.Error("failed to scan collection row: %v", err)
			return nil, err
		}
		collections = append(collections, c)
	}
	return collections, rows.Err()
}

func (r *collectionRepository) TrainingData(ctx context.Context, collectionID int64) (*models.CollectionTrainingData, error) {
	log := logger.FromContext(ctx).WithPrefix("collection_repo")

	var td models.CollectionTrainingData
	err := r.db.QueryRowContext(ctx, `
SELECT collection_id, max_new_cards, max_learning_cards, max_review_cards, streak,
       last_training_date, total_score, total_card_views, total_success_responses, total_failed_responses
FROM collection_training_data
WHERE collection_id = ?
`, collectionID).Scan(&td.CollectionID, &td.MaxNewCards, &td.MaxLearningCards, &td.MaxReviewCards,
		&td.Streak, &td.LastTrainingDate, &td.TotalScore, &td.TotalCardViews,
		&td.TotalSuccessResponses, &td.TotalFailedResponses)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get training data: %v", err)
		return nil, err
	}
	return &td, nil
}

func (r *collectionRepository) SaveTrainingData(ctx context.Context, td models.CollectionTrainingData) error {
	log := logger.FromContext(ctx).WithPrefix("collection_repo")
	log.Debug("saving training data: collection_id=%d, streak=%d", td.CollectionID, td.Streak)

	_, err := r.db.ExecContext(ctx, `
INSERT INTO collection_training_data (collection_id, max_new_cards, max_learning_cards, max_review_cards, streak, last_training_date, total_score, total_card_views, total_success_responses, total_failed_responses)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(collection_id) DO UPDATE SET
    max_new_cards = excluded.max_new_cards,
    max_learning_cards = excluded.max_learning_cards,
    max_review_cards = excluded.max_review_cards,
    streak = excluded.streak,
    last_training_date = excluded.last_training_date,
    total_score = excluded.total_score,
    total_card_views = excluded.total_card_views,
    total_success_responses = excluded.total_success_responses,
    total_failed_responses = excluded.total_failed_responses
`, td.CollectionID, td.MaxNewCards, td.MaxLearningCards, td.MaxReviewCards, td.Streak,
		td.LastTrainingDate, td.TotalScore, td.TotalCardViews, td.TotalSuccessResponses, td.TotalFailedResponses)
	if err != nil {
		log.Error("failed to save training data: %v", err)
	}
	return err
}
