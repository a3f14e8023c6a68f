package scheduler

import (
	"fmt"
	"math"
	"time"

	"github.com/vytor/flashdeck/internal/models"
	"github.com/vytor/flashdeck/internal/timeutil"
)

// Scheduler computes the next memory state and due time for a card given a
// grade. It is pure aside from the caller-supplied clock: all I/O stays with
// the caller.
type Scheduler struct {
	p       Params
	decay   float64
	factor  float64
	minSMul float64
}

// New precomputes the derived model constants from p.
func New(p Params) *Scheduler {
	decay := -p.Weights[20]
	return &Scheduler{
		p:       p,
		decay:   decay,
		factor:  math.Exp(math.Log(0.9)/decay) - 1,
		minSMul: 1.0 / math.Exp(p.Weights[17]*p.Weights[18]),
	}
}

// Review applies one graded response to card in place, updating stability,
// difficulty, learning step, status, interval and both repeat times.
// An unknown grade is a programming error and panics.
func (s *Scheduler) Review(card *models.Card, grade models.Grade, now time.Time) {
	if !grade.Valid() {
		panic(fmt.Sprintf("scheduler: invalid grade %d", int(grade)))
	}

	// First response moves a card out of New.
	if card.Status == models.CardStatusNew {
		card.Status = models.CardStatusLearning
	}

	days, reviewedBefore := daysSinceLastReview(card, now)
	switch card.Status {
	case models.CardStatusLearning:
		s.updateMemory(card, grade, days, reviewedBefore)
		s.applyLadder(card, grade, now, s.p.LearningSteps)
	case models.CardStatusReview:
		s.updateMemory(card, grade, days, reviewedBefore)
		s.applyReviewGrade(card, grade, now)
	case models.CardStatusRelearning:
		s.updateMemory(card, grade, days, reviewedBefore)
		s.applyLadder(card, grade, now, s.p.RelearningSteps)
	default:
		panic(fmt.Sprintf("scheduler: invalid card status %d", int(card.Status)))
	}
	card.PrevRepeatTime = now
}

// Retrievability estimates the recall probability after elapsedDays for the
// given stability. It is 1 at zero elapsed days and strictly decreasing.
func (s *Scheduler) Retrievability(stability float64, elapsedDays float64) float64 {
	return math.Pow(1+s.factor*elapsedDays/stability, s.decay)
}

// NextIntervalDays converts a stability into a whole-day review interval
// targeting the configured retention, clamped to [1, MaxIntervalDays].
func (s *Scheduler) NextIntervalDays(stability float64) int {
	interval := (stability / s.factor) * (math.Pow(s.p.TargetRetention, 1/s.decay) - 1)
	days := int(math.Round(interval))
	if days < 1 {
		days = 1
	}
	if days > s.p.MaxIntervalDays {
		days = s.p.MaxIntervalDays
	}
	return days
}

// updateMemory advances stability and difficulty for one response. A card
// with zero stability has never been graded and gets the grade-indexed
// initial values. Same-day repeats use the short-term stability adjustment
// instead of the retrievability-based formulas.
func (s *Scheduler) updateMemory(card *models.Card, grade models.Grade, days int, reviewedBefore bool) {
	switch {
	case card.Stability == 0:
		card.Stability = clampStability(s.initialStability(grade))
		card.Difficulty = clampDifficulty(s.initialDifficulty(grade))
	case reviewedBefore && days < 1:
		card.Stability = s.shortTermStability(card.Stability, grade)
		card.Difficulty = s.nextDifficulty(card.Difficulty, grade)
	default:
		retrievability := 0.0
		if reviewedBefore {
			retrievability = s.Retrievability(card.Stability, float64(days))
		}
		card.Stability = s.nextStability(card.Difficulty, card.Stability, retrievability, grade)
		card.Difficulty = s.nextDifficulty(card.Difficulty, grade)
	}
}

// applyLadder runs the learning/relearning step machine and promotes the
// card to Review when it graduates.
func (s *Scheduler) applyLadder(card *models.Card, grade models.Grade, now time.Time, steps []time.Duration) {
	if len(steps) == 0 || (card.LearningStep >= len(steps) && grade != models.GradeAgain) {
		s.promote(card, now)
		return
	}

	var next time.Duration
	switch grade {
	case models.GradeAgain:
		card.LearningStep = 0
		next = steps[0]
	case models.GradeHard:
		// Hard never advances the step.
		if card.LearningStep == 0 {
			if len(steps) == 1 {
				next = steps[0] * 3 / 2
			} else {
				next = (steps[0] + steps[1]) / 2
			}
		} else {
			next = steps[card.LearningStep]
		}
	case models.GradeGood:
		if card.LearningStep == len(steps)-1 {
			s.promote(card, now)
			return
		}
		card.LearningStep++
		next = steps[card.LearningStep]
	case models.GradeEasy:
		s.promote(card, now)
		return
	}
	card.RepeatTime = now.Add(next)
}

// applyReviewGrade handles a card already in Review. Again demotes to
// Relearning when a relearning ladder is configured, otherwise the card
// stays in Review with a recomputed interval.
func (s *Scheduler) applyReviewGrade(card *models.Card, grade models.Grade, now time.Time) {
	if grade == models.GradeAgain && len(s.p.RelearningSteps) > 0 {
		card.Status = models.CardStatusRelearning
		card.LearningStep = 0
		card.RepeatTime = now.Add(s.p.RelearningSteps[0])
		return
	}
	card.Status = models.CardStatusReview
	days := s.NextIntervalDays(card.Stability)
	card.IntervalDays = days
	card.RepeatTime = now.Add(time.Duration(days) * 24 * time.Hour)
}

func (s *Scheduler) promote(card *models.Card, now time.Time) {
	card.Status = models.CardStatusReview
	card.LearningStep = 0
	days := s.NextIntervalDays(card.Stability)
	card.IntervalDays = days
	card.RepeatTime = now.Add(time.Duration(days) * 24 * time.Hour)
}

func (s *Scheduler) initialStability(grade models.Grade) float64 {
	return s.p.Weights[int(grade)-1]
}

func (s *Scheduler) initialDifficulty(grade models.Grade) float64 {
	return s.p.Weights[4] - math.Exp(s.p.Weights[5]*float64(int(grade)-1)) + 1
}

// shortTermStability adjusts stability for a same-day repeat. Good and Easy
// cannot reduce stability: their multiplier is floored at 1.
func (s *Scheduler) shortTermStability(stability float64, grade models.Grade) float64 {
	increase := math.Exp(s.p.Weights[17]*(float64(int(grade))-3+s.p.Weights[18])) *
		math.Pow(stability, -s.p.Weights[19])
	if grade == models.GradeGood || grade == models.GradeEasy {
		increase = math.Max(increase, 1.0)
	}
	return clampStability(stability * increase)
}

// nextStabilityOnFailure can only shrink stability, bounded below by a fixed
// fraction of its previous value.
func (s *Scheduler) nextStabilityOnFailure(difficulty, stability, retrievability float64) float64 {
	w := s.p.Weights
	next := w[11] *
		math.Pow(difficulty, -w[12]) * // difficult cards lose more
		(math.Pow(stability+1, w[13]) - 1) * // stable cards lose less
		math.Exp((1-retrievability)*w[14])
	return math.Min(next, stability*s.minSMul)
}

func (s *Scheduler) nextStabilityOnSuccess(difficulty, stability, retrievability float64, grade models.Grade) float64 {
	w := s.p.Weights
	hardPenalty := 1.0
	if grade == models.GradeHard {
		hardPenalty = w[15]
	}
	easyBonus := 1.0
	if grade == models.GradeEasy {
		easyBonus = w[16]
	}
	return stability * (1 +
		math.Exp(w[8])*
			(11-difficulty)* // difficulty penalty
			math.Pow(stability, -w[9])* // growth saturates with stability
			(math.Exp((1-retrievability)*w[10])-1)*
			hardPenalty*
			easyBonus)
}

func (s *Scheduler) nextStability(difficulty, stability, retrievability float64, grade models.Grade) float64 {
	var next float64
	if grade == models.GradeAgain {
		next = s.nextStabilityOnFailure(difficulty, stability, retrievability)
	} else {
		next = s.nextStabilityOnSuccess(difficulty, stability, retrievability, grade)
	}
	return clampStability(next)
}

// nextDifficulty damps the grade-driven delta for already-difficult cards
// and mean-reverts toward the Easy-baseline difficulty.
func (s *Scheduler) nextDifficulty(difficulty float64, grade models.Grade) float64 {
	delta := -s.p.Weights[6] * (float64(int(grade)) - 3)
	damped := difficulty + (10.0-difficulty)*delta/9.0
	reverted := s.p.Weights[7]*s.initialDifficulty(models.GradeEasy) + (1-s.p.Weights[7])*damped
	return clampDifficulty(reverted)
}

func daysSinceLastReview(card *models.Card, now time.Time) (int, bool) {
	if card.PrevRepeatTime.IsZero() {
		return 0, false
	}
	return timeutil.DaysBetween(card.PrevRepeatTime, now), true
}

func clampStability(stability float64) float64 {
	return math.Max(stability, StabilityMin)
}

func clampDifficulty(difficulty float64) float64 {
	return math.Max(math.Min(difficulty, 10), 1)
}
