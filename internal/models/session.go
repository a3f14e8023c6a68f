package models

import "time"

// SessionStatus is the lifecycle of one training session.
type SessionStatus int

const (
	SessionStatusAbandoned SessionStatus = -1
	SessionStatusStarted   SessionStatus = 0
	SessionStatusCompleted SessionStatus = 1
)

// Session is the bounded working set of one collection for one calendar day.
// TrainingDate is a day key in "2006-01-02" form; at most one Started session
// may exist per (collection, day).
type Session struct {
	ID               int64         `json:"id"`
	CollectionID     int64         `json:"collection_id"`
	TrainingDate     string        `json:"training_date"`
	NewCards         int           `json:"new_cards"`
	ReviewCards      int           `json:"review_cards"`
	LearningCards    int           `json:"learning_cards"`
	TotalViews       int           `json:"total_views"`
	SuccessResponses int           `json:"success_responses"`
	FailedResponses  int           `json:"failed_responses"`
	Score            int           `json:"score"`
	Status           SessionStatus `json:"status"`
	CreatedAt        time.Time     `json:"created_at"`
}

// SessionCardStatus tracks a card's progress within a single session.
type SessionCardStatus int

const (
	SessionCardStatusNew SessionCardStatus = iota
	SessionCardStatusLearning
	SessionCardStatusComplete
)

// SessionCard links a card into a session's working set.
type SessionCard struct {
	ID                int64             `json:"id"`
	SessionID         int64             `json:"session_id"`
	CardID            int64             `json:"card_id"`
	Status            SessionCardStatus `json:"status"`
	SuccessfulRepeats int               `json:"successful_repeats"`
	FailedRepeats     int               `json:"failed_repeats"`
	PlannedReviewTime time.Time         `json:"planned_review_time"`
}
