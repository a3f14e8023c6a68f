package models

import "time"

type Collection struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	CardsNumber int       `json:"cards_number"`
	CreatedAt   time.Time `json:"created_at"`
}

// CollectionTrainingData carries the per-collection daily quotas and the
// aggregate training statistics. Stats fields are mutated only when a
// session completes.
type CollectionTrainingData struct {
	CollectionID          int64  `json:"collection_id"`
	MaxNewCards           int    `json:"max_new_cards"`
	MaxLearningCards      int    `json:"max_learning_cards"`
	MaxReviewCards        int    `json:"max_review_cards"`
	Streak                int    `json:"streak"`
	LastTrainingDate      string `json:"last_training_date"`
	TotalScore            int    `json:"total_score"`
	TotalCardViews        int    `json:"total_card_views"`
	TotalSuccessResponses int    `json:"total_success_responses"`
	TotalFailedResponses  int    `json:"total_failed_responses"`
}
