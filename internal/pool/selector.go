package pool

import (
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/vytor/flashdeck/internal/models"
)

// dayHorizon is how far out a card's due time must be before it is retired
// from today's working set. The one-hour grace keeps a card reviewed right
// after session start from slipping past tomorrow's cutoff.
const dayHorizon = 24*time.Hour - time.Hour

// Reinsertion floors: a freshly reviewed low-step card may not come back
// ahead of these positions, so the learner sees something else in between.
const (
	minIndexStepZero = 3
	minIndexStepOne  = 6
)

// DoneForToday reports whether the card's next due time falls beyond the
// session horizon, retiring it from the current session.
func DoneForToday(card *models.Card, now time.Time) bool {
	return card.RepeatTime.After(now.Add(dayHorizon))
}

// Snapshot is a read-only view of pool sizes for progress display.
type Snapshot struct {
	New      int `json:"new"`
	Learning int `json:"learning"`
	Review   int `json:"review"`
}

func (s Snapshot) Total() int { return s.New + s.Learning + s.Review }

// Selector holds the three runtime pools of a session and picks the card to
// present next. It is not safe for concurrent use; the owning flow
// serializes access.
type Selector struct {
	newPool    []*models.Card
	learnPool  []*models.Card
	reviewPool []*models.Card
	current    *models.Card
	rng        *rand.Rand
	done       bool
}

// New partitions cards into pools by status, each sorted ascending by due
// time, and selects the earliest-due card as current. rng drives the
// weighted pool draws; pass a seeded source for reproducible selection.
func New(cards []*models.Card, rng *rand.Rand) *Selector {
	s := &Selector{rng: rng}
	sorted := make([]*models.Card, len(cards))
	copy(sorted, cards)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].RepeatTime.Equal(sorted[j].RepeatTime) {
			return sorted[i].ID < sorted[j].ID
		}
		return sorted[i].RepeatTime.Before(sorted[j].RepeatTime)
	})
	for _, card := range sorted {
		switch card.Status {
		case models.CardStatusNew:
			s.newPool = append(s.newPool, card)
		case models.CardStatusLearning, models.CardStatusRelearning:
			s.learnPool = append(s.learnPool, card)
		case models.CardStatusReview:
			s.reviewPool = append(s.reviewPool, card)
		}
	}
	if len(sorted) > 0 {
		s.current = sorted[0]
	} else {
		s.done = true
	}
	return s
}

// Current returns the card to present, or nil once training is complete.
func (s *Selector) Current() *models.Card {
	return s.current
}

// Done reports whether all pools have drained.
func (s *Selector) Done() bool {
	return s.done
}

// Sizes returns the current pool composition.
func (s *Selector) Sizes() Snapshot {
	return Snapshot{
		New:      len(s.newPool),
		Learning: len(s.learnPool),
		Review:   len(s.reviewPool),
	}
}

// Update removes card from the pool matching prevStatus, retires it when its
// due time is past the session horizon, otherwise reinserts it into the pool
// matching its new status, and picks the next current card. It returns
// whether the card was retired and whether training completed on this call;
// completion is signalled exactly once.
func (s *Selector) Update(card *models.Card, prevStatus models.CardStatus, now time.Time) (retired bool, completed bool, err error) {
	if s.done {
		return false, false, fmt.Errorf("pool: update after training completed")
	}

	switch prevStatus {
	case models.CardStatusNew:
		s.newPool = removeCard(s.newPool, card.ID)
	case models.CardStatusLearning, models.CardStatusRelearning:
		s.learnPool = removeCard(s.learnPool, card.ID)
	case models.CardStatusReview:
		s.reviewPool = removeCard(s.reviewPool, card.ID)
	default:
		return false, false, fmt.Errorf("pool: unknown previous status %d", int(prevStatus))
	}

	retired = DoneForToday(card, now)

	if s.Sizes().Total() == 0 {
		if retired {
			s.current = nil
			s.done = true
			return true, true, nil
		}
		// The last remaining card is still due today; keep cycling it.
		s.current = card
		s.reinsert(card)
		return false, false, nil
	}

	// Pick the next card before reinserting, so the learner does not see the
	// same card twice in a row.
	next, err := s.selectPool(now)
	if err != nil {
		return retired, false, err
	}
	s.current = next[0]

	if !retired {
		s.reinsert(card)
	}
	return retired, false, nil
}

// selectPool draws one of the non-empty pools. Each pool's share is
// (size/total)*weight; the learning pool's weight drops to zero while its
// head card is not yet due. An empty draw falls back Review, Learning, New.
func (s *Selector) selectPool(now time.Time) ([]*models.Card, error) {
	total := s.Sizes().Total()
	if total == 0 {
		return nil, fmt.Errorf("pool: selecting from empty pools")
	}

	learnWeight := 1.0
	if len(s.learnPool) > 0 && s.learnPool[0].RepeatTime.After(now) {
		learnWeight = 0
	}

	newShare := float64(len(s.newPool)) / float64(total)
	learnShare := float64(len(s.learnPool)) / float64(total) * learnWeight
	reviewShare := float64(len(s.reviewPool)) / float64(total)

	p := s.rng.Float64() * (newShare + learnShare + reviewShare)
	if p <= newShare && len(s.newPool) > 0 {
		return s.newPool, nil
	}
	if p <= newShare+learnShare && len(s.learnPool) > 0 {
		return s.learnPool, nil
	}
	if len(s.reviewPool) > 0 {
		return s.reviewPool, nil
	}
	if len(s.learnPool) > 0 {
		return s.learnPool, nil
	}
	if len(s.newPool) > 0 {
		return s.newPool, nil
	}
	return nil, fmt.Errorf("pool: selecting from empty pools")
}

// reinsert places card into the pool matching its status at the sorted
// position for its due time, floored so a just-reviewed low-step card does
// not resurface immediately.
func (s *Selector) reinsert(card *models.Card) {
	switch card.Status {
	case models.CardStatusNew:
		s.newPool = insertCard(s.newPool, card)
	case models.CardStatusLearning, models.CardStatusRelearning:
		s.learnPool = insertCard(s.learnPool, card)
	case models.CardStatusReview:
		s.reviewPool = insertCard(s.reviewPool, card)
	}
}

func insertCard(pool []*models.Card, card *models.Card) []*models.Card {
	idx := -1
	for i, c := range pool {
		if c.RepeatTime.After(card.RepeatTime) {
			idx = i
			break
		}
	}
	if idx == -1 {
		return append(pool, card)
	}
	if card.LearningStep == 0 && idx < minIndexStepZero {
		idx = minIndexStepZero
	} else if card.LearningStep == 1 && idx < minIndexStepOne {
		idx = minIndexStepOne
	}
	if idx > len(pool) {
		idx = len(pool)
	}
	pool = append(pool, nil)
	copy(pool[idx+1:], pool[idx:])
	pool[idx] = card
	return pool
}

func removeCard(pool []*models.Card, id int64) []*models.Card {
	for i, c := range pool {
		if c.ID == id {
			return append(pool[:i], pool[i+1:]...)
		}
	}
	return pool
}
