package models

import (
	"fmt"
	"time"
)

// CardStatus tracks where a card sits in the learning lifecycle.
type CardStatus int

const (
	CardStatusNew CardStatus = iota
	CardStatusLearning
	CardStatusReview
	CardStatusRelearning
)

func (s CardStatus) String() string {
	switch s {
	case CardStatusNew:
		return "new"
	case CardStatusLearning:
		return "learning"
	case CardStatusReview:
		return "review"
	case CardStatusRelearning:
		return "relearning"
	default:
		return "unknown"
	}
}

// ParseCardStatus converts a wire-level status string into a CardStatus.
func ParseCardStatus(s string) (CardStatus, error) {
	switch s {
	case "new":
		return CardStatusNew, nil
	case "learning":
		return CardStatusLearning, nil
	case "review":
		return CardStatusReview, nil
	case "relearning":
		return CardStatusRelearning, nil
	default:
		return 0, fmt.Errorf("unknown card status %q", s)
	}
}

// Card is one flashcard together with its memory-model state.
// Stability == 0 and a zero PrevRepeatTime mean the card was never reviewed.
type Card struct {
	ID                int64      `json:"id"`
	CollectionID      int64      `json:"collection_id"`
	Front             string     `json:"front"`
	Back              string     `json:"back"`
	Status            CardStatus `json:"status"`
	Stability         float64    `json:"stability"`
	Difficulty        float64    `json:"difficulty"`
	LearningStep      int        `json:"learning_step"`
	IntervalDays      int        `json:"interval_days"`
	RepeatTime        time.Time  `json:"repeat_time"`
	PrevRepeatTime    time.Time  `json:"prev_repeat_time"`
	SuccessfulRepeats int        `json:"successful_repeats"`
	FailedRepeats     int        `json:"failed_repeats"`
	Priority          int        `json:"priority"`
	CreatedAt         time.Time  `json:"created_at"`
}

// CardFilter narrows card listing queries.
type CardFilter struct {
	CollectionID int64
	Status       *CardStatus
	DueBefore    *time.Time
	Limit        int
}
