package models

import "time"

// ReviewLog is one append-only history entry per graded response.
// Status, Stability and Difficulty are the card's values before the review
// was applied; RepeatTime is the due time the review produced.
type ReviewLog struct {
	ID         int64         `json:"id"`
	CardID     int64         `json:"card_id"`
	Status     CardStatus    `json:"status"`
	Grade      Grade         `json:"grade"`
	Duration   time.Duration `json:"duration"`
	RepeatTime time.Time     `json:"repeat_time"`
	Stability  float64       `json:"stability"`
	Difficulty float64       `json:"difficulty"`
	CreatedAt  time.Time     `json:"created_at"`
}
