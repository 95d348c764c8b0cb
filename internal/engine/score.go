package engine

import (
	"math"

	"softloop/internal/domain"
)

// Fixed reason texts, keyed by (status, hasCommit).
const (
	ReasonCompleteWithCommit = "task complete with commit"
	ReasonCompleteNoCommit   = "marked complete, no commit found"
	ReasonPartial            = "work-in-progress - commit exists but task not marked complete"
	ReasonNotStarted         = "not started"
)

// TaskSignals are the observable facts the scorer weighs for one task.
type TaskSignals struct {
	Completed bool
	HasCommit bool
	HasTests  bool
	TestsPass bool
	IsPartial bool
}

// TaskConfidence maps signals onto a deterministic 0-100 confidence and
// a fixed reason text. The rule table is evaluated top to bottom, first
// match wins. Pure function, total over its input domain.
func TaskConfidence(s TaskSignals) (int, string) {
	switch {
	case !s.Completed && !s.IsPartial:
		return 0, ReasonNotStarted
	case s.IsPartial:
		return 50, ReasonPartial
	case s.Completed && s.HasCommit && s.HasTests && s.TestsPass:
		return 100, ReasonCompleteWithCommit
	case s.Completed && s.HasCommit && s.HasTests:
		return 60, ReasonCompleteWithCommit
	case s.Completed && s.HasCommit:
		return 90, ReasonCompleteWithCommit
	case s.Completed:
		return 70, ReasonCompleteNoCommit
	default:
		return 0, ReasonNotStarted
	}
}

// PhaseConfidence is the rounded arithmetic mean of the entry
// confidences. An empty matrix yields 0, never a division error.
func PhaseConfidence(entries []domain.VerificationEntry) int {
	if len(entries) == 0 {
		return 0
	}
	sum := 0
	for _, e := range entries {
		sum += e.Confidence
	}
	return int(math.Round(float64(sum) / float64(len(entries))))
}
