package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	apperrors "github.com/vytor/flashdeck/internal/errors"
	"github.com/vytor/flashdeck/internal/logger"
	"github.com/vytor/flashdeck/internal/models"
	"github.com/vytor/flashdeck/internal/pool"
	"github.com/vytor/flashdeck/internal/repository"
	"github.com/vytor/flashdeck/internal/scheduler"
	"github.com/vytor/flashdeck/internal/timeutil"
)

// newCardSpacing staggers due times of cards that were never scheduled, so a
// fresh session does not present them all at the same instant.
const newCardSpacing = 10 * time.Second

// Quotas are the daily selection caps used when a collection has no
// training settings row yet.
type Quotas struct {
	MaxNewCards      int
	MaxLearningCards int
	MaxReviewCards   int
}

// TrainingDeps bundles the storage collaborators of the training core.
type TrainingDeps struct {
	Cards        repository.CardRepository
	Sessions     repository.SessionRepository
	SessionCards repository.SessionCardRepository
	ReviewLogs   repository.ReviewLogRepository
	Collections  repository.CollectionRepository
	Store        repository.TrainingStore
}

// TrainingService assembles daily sessions and processes graded responses.
// It keeps one in-memory flow per started session; all persistent state
// lives behind the repository interfaces.
type TrainingService struct {
	deps     TrainingDeps
	sched    *scheduler.Scheduler
	defaults Quotas
	now      func() time.Time
	newRand  func() *rand.Rand

	mu    sync.Mutex
	flows map[int64]*Flow
}

// TrainingOption configures a TrainingService.
type TrainingOption func(*TrainingService)

// WithClock injects the time source. All due-time comparisons use it.
func WithClock(now func() time.Time) TrainingOption {
	return func(s *TrainingService) { s.now = now }
}

// WithRandSource injects the factory for the per-session random source used
// by pool selection, so tests can seed it.
func WithRandSource(newRand func() *rand.Rand) TrainingOption {
	return func(s *TrainingService) { s.newRand = newRand }
}

// NewTrainingService creates a new TrainingService
func NewTrainingService(deps TrainingDeps, sched *scheduler.Scheduler, defaults Quotas, opts ...TrainingOption) *TrainingService {
	s := &TrainingService{
		deps:     deps,
		sched:    sched,
		defaults: defaults,
		now:      time.Now,
		newRand: func() *rand.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		},
		flows: make(map[int64]*Flow),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StartSession returns the flow for today's session of the collection,
// building the session first if none is started. Calling it again for the
// same day returns the same flow.
func (s *TrainingService) StartSession(ctx context.Context, collectionID int64) (*Flow, error) {
	log := logger.FromContext(ctx)
	now := s.now()
	dayKey := timeutil.DayKey(now)
	log.Debug("starting session: collection_id=%d, day=%s", collectionID, dayKey)

	if _, err := s.deps.Collections.Get(ctx, collectionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("collection", collectionID)
		}
		return nil, apperrors.NewInternalError(err)
	}

	trainingData, err := s.trainingData(ctx, collectionID)
	if err != nil {
		return nil, err
	}

	session, err := s.deps.Sessions.GetStarted(ctx, collectionID, dayKey)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if session == nil {
		session, err = s.buildSession(ctx, collectionID, dayKey, trainingData, now)
		if err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if flow, ok := s.flows[session.ID]; ok {
		return flow, nil
	}

	cards, err := s.deps.SessionCards.Cards(ctx, session.ID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	ptrs := make([]*models.Card, len(cards))
	for i := range cards {
		ptrs[i] = &cards[i]
	}

	flow := &Flow{
		svc:      s,
		session:  session,
		selector: pool.New(ptrs, s.newRand()),
	}
	s.flows[session.ID] = flow
	log.Info("session ready: id=%d, new=%d, learning=%d, review=%d",
		session.ID, session.NewCards, session.LearningCards, session.ReviewCards)
	return flow, nil
}

// Session loads a session's persisted counters.
func (s *TrainingService) Session(ctx context.Context, id int64) (*models.Session, error) {
	session, err := s.deps.Sessions.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("session", id)
		}
		return nil, apperrors.NewInternalError(err)
	}
	return session, nil
}

// Flow returns the in-memory flow for a session, if it is active.
func (s *TrainingService) Flow(sessionID int64) (*Flow, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	flow, ok := s.flows[sessionID]
	return flow, ok
}

func (s *TrainingService) dropFlow(sessionID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.flows, sessionID)
}

// trainingData loads the collection's training settings, creating a row
// from the configured defaults on first use.
func (s *TrainingService) trainingData(ctx context.Context, collectionID int64) (*models.CollectionTrainingData, error) {
	trainingData, err := s.deps.Collections.TrainingData(ctx, collectionID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if trainingData != nil {
		return trainingData, nil
	}

	trainingData = &models.CollectionTrainingData{
		CollectionID:     collectionID,
		MaxNewCards:      s.defaults.MaxNewCards,
		MaxLearningCards: s.defaults.MaxLearningCards,
		MaxReviewCards:   s.defaults.MaxReviewCards,
	}
	if err := s.deps.Collections.SaveTrainingData(ctx, *trainingData); err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return trainingData, nil
}

// buildSession selects today's bounded working set, records the session row
// with the actual composition counts and creates one tracking row per card.
func (s *TrainingService) buildSession(ctx context.Context, collectionID int64, dayKey string, trainingData *models.CollectionTrainingData, now time.Time) (*models.Session, error) {
	log := logger.FromContext(ctx)

	maxNew := trainingData.MaxNewCards
	if maxNew < 0 {
		maxNew = 0
	}
	learningCards, err := s.deps.Cards.SelectLearning(ctx, collectionID, trainingData.MaxLearningCards)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	newCards, err := s.deps.Cards.SelectNew(ctx, collectionID, maxNew)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	cutoff := timeutil.EndOfDay(now)
	reviewCards, err := s.deps.Cards.SelectReview(ctx, collectionID, cutoff, trainingData.MaxReviewCards)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	// Short of quota: backfill with cards due within the next day. The
	// extended query returns today's cards again, so append only unseen ones.
	if len(reviewCards) < trainingData.MaxReviewCards {
		additional, err := s.deps.Cards.SelectReview(ctx, collectionID, cutoff.AddDate(0, 0, 1), trainingData.MaxReviewCards)
		if err != nil {
			return nil, apperrors.NewInternalError(err)
		}
		picked := make(map[int64]bool, len(reviewCards))
		for _, card := range reviewCards {
			picked[card.ID] = true
		}
		for _, card := range additional {
			if len(reviewCards) >= trainingData.MaxReviewCards {
				break
			}
			if picked[card.ID] {
				continue
			}
			reviewCards = append(reviewCards, card)
		}
	}

	// A card must not enter the working set twice.
	seen := make(map[int64]bool)
	var selected []models.Card
	var dedupedNew, dedupedLearning, dedupedReview int
	for _, group := range []struct {
		cards []models.Card
		count *int
	}{
		{newCards, &dedupedNew},
		{learningCards, &dedupedLearning},
		{reviewCards, &dedupedReview},
	} {
		for _, card := range group.cards {
			if seen[card.ID] {
				continue
			}
			seen[card.ID] = true
			selected = append(selected, card)
			*group.count++
		}
	}

	session := models.Session{
		CollectionID:  collectionID,
		TrainingDate:  dayKey,
		NewCards:      dedupedNew,
		ReviewCards:   dedupedReview,
		LearningCards: dedupedLearning,
		Status:        models.SessionStatusStarted,
	}
	sessionID, err := s.deps.Sessions.Insert(ctx, session)
	if err != nil {
		// The unique started-session index may have caught a concurrent
		// create; the winner's session is the one to use.
		if existing, getErr := s.deps.Sessions.GetStarted(ctx, collectionID, dayKey); getErr == nil && existing != nil {
			log.Warn("concurrent session create for collection %d, reusing session %d", collectionID, existing.ID)
			return existing, nil
		}
		return nil, apperrors.NewInternalError(err)
	}

	// Never-scheduled cards get staggered synthetic due times so they do not
	// all present at once.
	var rescheduled []models.Card
	sessionCards := make([]models.SessionCard, 0, len(selected))
	for i := range selected {
		card := &selected[i]
		if card.RepeatTime.IsZero() {
			card.RepeatTime = now.Add(time.Duration(i) * newCardSpacing)
			rescheduled = append(rescheduled, *card)
		}
		sessionCards = append(sessionCards, models.SessionCard{
			SessionID:         sessionID,
			CardID:            card.ID,
			Status:            models.SessionCardStatusNew,
			PlannedReviewTime: card.RepeatTime,
		})
	}
	if err := s.deps.SessionCards.InsertMany(ctx, sessionCards); err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if err := s.deps.Cards.BulkUpdateRepeatTime(ctx, rescheduled); err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	created, err := s.deps.Sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	log.Info("session built: id=%d, cards=%d", sessionID, len(selected))
	return created, nil
}

// completeTraining finalizes a finished session and folds its counters into
// the collection's aggregate stats. Completing a session that is no longer
// Started is a no-op.
func (s *TrainingService) completeTraining(ctx context.Context, session *models.Session) error {
	log := logger.FromContext(ctx)
	if session.Status != models.SessionStatusStarted {
		log.Debug("session %d already finalized, skipping", session.ID)
		return nil
	}
	now := s.now()

	session.Score = calcScore(session)
	session.Status = models.SessionStatusCompleted

	trainingData, err := s.deps.Collections.TrainingData(ctx, session.CollectionID)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	if trainingData != nil {
		if trainingData.LastTrainingDate == timeutil.YesterdayKey(now) {
			trainingData.Streak++
		} else {
			trainingData.Streak = 1
		}
		trainingData.LastTrainingDate = timeutil.DayKey(now)
		trainingData.TotalScore += session.Score
		trainingData.TotalCardViews += session.TotalViews
		trainingData.TotalSuccessResponses += session.SuccessResponses
		trainingData.TotalFailedResponses += session.FailedResponses
		if err := s.deps.Collections.SaveTrainingData(ctx, *trainingData); err != nil {
			return apperrors.NewInternalError(err)
		}
	}

	if err := s.deps.Sessions.Update(ctx, *session); err != nil {
		return apperrors.NewInternalError(err)
	}
	log.Info("training complete: session=%d, score=%d, streak=%d",
		session.ID, session.Score, streakOf(trainingData))
	return nil
}

func calcScore(session *models.Session) int {
	return session.NewCards*10 + session.ReviewCards*3 + session.TotalViews
}

func streakOf(trainingData *models.CollectionTrainingData) int {
	if trainingData == nil {
		return 0
	}
	return trainingData.Streak
}

func missingSessionCard(sessionID, cardID int64) error {
	return apperrors.NewInternalError(fmt.Errorf("session card missing: session=%d card=%d", sessionID, cardID))
}
