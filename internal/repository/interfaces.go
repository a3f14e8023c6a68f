package repository

import (
	"context"
	"time"

	"github.com/vytor/flashdeck/internal/models"
)

// CardRepository handles card data access, including the bounded candidate
// queries used when a session is assembled.
type CardRepository interface {
	Get(ctx context.Context, id int64) (*models.Card, error)
	Insert(ctx context.Context, card models.Card) (int64, error)
	InsertMany(ctx context.Context, cards []models.Card) error
	Update(ctx context.Context, card models.Card) error
	BulkUpdateRepeatTime(ctx context.Context, cards []models.Card) error
	List(ctx context.Context, filter models.CardFilter) ([]models.Card, error)
	SelectNew(ctx context.Context, collectionID int64, limit int) ([]models.Card, error)
	SelectLearning(ctx context.Context, collectionID int64, limit int) ([]models.Card, error)
	SelectReview(ctx context.Context, collectionID int64, dueBefore time.Time, limit int) ([]models.Card, error)
}

// SessionRepository handles session rows.
type SessionRepository interface {
	Insert(ctx context.Context, session models.Session) (int64, error)
	Update(ctx context.Context, session models.Session) error
	Get(ctx context.Context, id int64) (*models.Session, error)
	GetStarted(ctx context.Context, collectionID int64, trainingDate string) (*models.Session, error)
}

// SessionCardRepository handles the per-session card tracking rows.
type SessionCardRepository interface {
	Get(ctx context.Context, sessionID, cardID int64) (*models.SessionCard, error)
	InsertMany(ctx context.Context, sessionCards []models.SessionCard) error
	Update(ctx context.Context, sessionCard models.SessionCard) error
	Delete(ctx context.Context, sessionID, cardID int64) error
	// Cards returns the cards of the session's working set, incomplete rows
	// only, ordered by due time.
	Cards(ctx context.Context, sessionID int64) ([]models.Card, error)
}

// ReviewLogRepository appends review history. Entries are never mutated.
type ReviewLogRepository interface {
	Insert(ctx context.Context, log models.ReviewLog) error
	ListByCard(ctx context.Context, cardID int64, limit int) ([]models.ReviewLog, error)
}

// CollectionRepository handles collections and their training settings.
type CollectionRepository interface {
	Insert(ctx context.Context, collection models.Collection) (int64, error)
	Get(ctx context.Context, id int64) (*models.Collection, error)
	List(ctx context.Context) ([]models.Collection, error)
	TrainingData(ctx context.Context, collectionID int64) (*models.CollectionTrainingData, error)
	SaveTrainingData(ctx context.Context, data models.CollectionTrainingData) error
}

// TrainingStore persists the outcome of one review turn. Card and session
// card are one logical unit: both are written or neither is.
type TrainingStore interface {
	SaveReview(ctx context.Context, card models.Card, sessionCard models.SessionCard) error
}
