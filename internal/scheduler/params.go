package scheduler

import "time"

// Params configures the memory model. Weights is the 21-element FSRS
// parameter vector; the last element is the retention decay exponent.
type Params struct {
	Weights         [21]float64
	LearningSteps   []time.Duration
	RelearningSteps []time.Duration
	TargetRetention float64
	MaxIntervalDays int
}

// StabilityMin is the floor applied to every computed stability.
const StabilityMin = 0.001

var defaultWeights = [21]float64{
	0.2172, 1.1771, 3.2602, 16.1507, 7.0114, 0.57, 2.0966, 0.0069, 1.5261,
	0.112, 1.0178, 1.849, 0.1133, 0.3127, 2.2934, 0.2191, 3.0004, 0.7536,
	0.3332, 0.1437, 0.2,
}

// DefaultParams returns the stock FSRS weight set with one-minute and
// ten-minute learning and relearning steps.
func DefaultParams() Params {
	return Params{
		Weights:         defaultWeights,
		LearningSteps:   []time.Duration{time.Minute, 10 * time.Minute},
		RelearningSteps: []time.Duration{time.Minute, 10 * time.Minute},
		TargetRetention: 0.9,
		MaxIntervalDays: 36500,
	}
}
