package services

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	apperrors "github.com/vytor/flashdeck/internal/errors"
	"github.com/vytor/flashdeck/internal/logger"
	"github.com/vytor/flashdeck/internal/models"
	"github.com/vytor/flashdeck/internal/pool"
)

// Flow is the live state of one started session: the pool selector plus the
// session counters. All methods serialize on the flow mutex, so a flow can be
// shared across handlers.
type Flow struct {
	mu         sync.Mutex
	svc        *TrainingService
	session    *models.Session
	selector   *pool.Selector
	completed  bool
	onComplete func(session *models.Session)
}

// ResponseResult reports the outcome of one graded response.
type ResponseResult struct {
	Card      models.Card   `json:"card"`
	Retired   bool          `json:"retired"`
	Completed bool          `json:"completed"`
	Next      *models.Card  `json:"next,omitempty"`
	Pools     pool.Snapshot `json:"pools"`
}

// Session returns a copy of the session's current counters.
func (f *Flow) Session() models.Session {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.session
}

// Completed reports whether every card in the working set has been retired.
func (f *Flow) Completed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.completed
}

// CurrentCard returns a copy of the card to present next, or nil once the
// session is complete.
func (f *Flow) CurrentCard() *models.Card {
	f.mu.Lock()
	defer f.mu.Unlock()
	current := f.selector.Current()
	if current == nil {
		return nil
	}
	card := *current
	return &card
}

// Snapshot returns the current pool composition.
func (f *Flow) Snapshot() pool.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.selector.Sizes()
}

// SetOnComplete registers a callback invoked after the session finishes and
// its aggregates are persisted. It runs while the flow lock is held.
func (f *Flow) SetOnComplete(fn func(session *models.Session)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onComplete = fn
}

// SubmitResponse applies one graded response to the current card: the
// scheduler advances the card's memory state, the per-card and per-session
// counters move, the outcome is persisted, a history entry is appended, and
// the selector picks the next card. Completing the last card finalizes the
// session.
func (f *Flow) SubmitResponse(ctx context.Context, grade models.Grade, duration time.Duration) (*ResponseResult, error) {
	log := logger.FromContext(ctx)
	f.mu.Lock()
	defer f.mu.Unlock()

	if !grade.Valid() {
		return nil, apperrors.NewValidationError("grade", "must be again, hard, good or easy")
	}
	if f.completed {
		return nil, apperrors.NewConflictError("session already finished")
	}
	card := f.selector.Current()
	if card == nil {
		return nil, apperrors.NewConflictError("no card left to review")
	}

	sessionCard, err := f.svc.deps.SessionCards.Get(ctx, f.session.ID, card.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, missingSessionCard(f.session.ID, card.ID)
		}
		return nil, apperrors.NewInternalError(err)
	}

	prevStatus := card.Status
	prevStability := card.Stability
	prevDifficulty := card.Difficulty
	now := f.svc.now()

	f.svc.sched.Review(card, grade, now)
	log.Debug("graded card %d %s: %s -> %s, due %s",
		card.ID, grade, prevStatus, card.Status, card.RepeatTime.Format(time.RFC3339))

	switch grade {
	case models.GradeAgain:
		card.FailedRepeats++
		card.SuccessfulRepeats = 0
		sessionCard.FailedRepeats++
		f.session.FailedResponses++
	case models.GradeGood, models.GradeEasy:
		card.SuccessfulRepeats++
		card.FailedRepeats = 0
		sessionCard.SuccessfulRepeats++
		f.session.SuccessResponses++
	}
	f.session.TotalViews++

	if sessionCard.Status == models.SessionCardStatusNew {
		sessionCard.Status = models.SessionCardStatusLearning
	}
	retired := pool.DoneForToday(card, now)
	if retired {
		sessionCard.Status = models.SessionCardStatusComplete
	}
	sessionCard.PlannedReviewTime = card.RepeatTime

	if err := f.svc.deps.Store.SaveReview(ctx, *card, *sessionCard); err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if err := f.svc.deps.ReviewLogs.Insert(ctx, models.ReviewLog{
		CardID:     card.ID,
		Status:     prevStatus,
		Grade:      grade,
		Duration:   duration,
		RepeatTime: card.RepeatTime,
		Stability:  prevStability,
		Difficulty: prevDifficulty,
	}); err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if err := f.svc.deps.Sessions.Update(ctx, *f.session); err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	_, completed, err := f.selector.Update(card, prevStatus, now)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	result := &ResponseResult{
		Card:      *card,
		Retired:   retired,
		Completed: completed,
		Pools:     f.selector.Sizes(),
	}
	if next := f.selector.Current(); next != nil {
		copied := *next
		result.Next = &copied
	}

	if completed {
		f.completed = true
		if err := f.svc.completeTraining(ctx, f.session); err != nil {
			return nil, err
		}
		if f.onComplete != nil {
			f.onComplete(f.session)
		}
		f.svc.dropFlow(f.session.ID)
	}
	return result, nil
}

// Abandon marks the session abandoned and discards the in-memory flow.
// Cards keep whatever scheduling state they reached; no aggregates move.
func (f *Flow) Abandon(ctx context.Context) error {
	log := logger.FromContext(ctx)
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.completed {
		return apperrors.NewConflictError("session already finished")
	}
	f.session.Status = models.SessionStatusAbandoned
	if err := f.svc.deps.Sessions.Update(ctx, *f.session); err != nil {
		return apperrors.NewInternalError(err)
	}
	f.completed = true
	f.svc.dropFlow(f.session.ID)
	log.Info("session abandoned: id=%d", f.session.ID)
	return nil
}
