package models

import "fmt"

// Grade is the learner's response quality for one review.
type Grade int

const (
	GradeAgain Grade = iota + 1
	GradeHard
	GradeGood
	GradeEasy
)

func (g Grade) String() string {
	switch g {
	case GradeAgain:
		return "again"
	case GradeHard:
		return "hard"
	case GradeGood:
		return "good"
	case GradeEasy:
		return "easy"
	default:
		return fmt.Sprintf("Grade(%d)", int(g))
	}
}

// Valid reports whether g is one of the four known grades.
func (g Grade) Valid() bool {
	return g >= GradeAgain && g <= GradeEasy
}

// ParseGrade converts a wire-level grade string into a Grade.
func ParseGrade(s string) (Grade, error) {
	switch s {
	case "again":
		return GradeAgain, nil
	case "hard":
		return GradeHard, nil
	case "good":
		return GradeGood, nil
	case "easy":
		return GradeEasy, nil
	default:
		return 0, fmt.Errorf("unknown grade %q", s)
	}
}
