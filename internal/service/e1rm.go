package service

import (
	"math"

	"github.com/mansoorceksport/liftlog/internal/domain"
)

// EstimateOneRepMax returns the Epley estimate weight * (1 + reps/30) for a working set.
// ok is false for warm-up sets and for sets whose estimate is not a finite positive
// number, which excludes every bodyweight set (weight absent or 0).
func EstimateOneRepMax(set *domain.Set) (estimate float64, ok bool) {
	if set == nil || set.SetType != domain.SetTypeWorking {
		return 0, false
	}

	e := set.WeightOrZero() * (1 + float64(set.Reps)/30)
	if math.IsNaN(e) || math.IsInf(e, 0) || e <= 0 {
		return 0, false
	}
	return e, true
}

// annotateSets pairs each set with its estimate for API responses
func annotateSets(sets []*domain.Set) []*domain.SetWithEstimate {
	out := make([]*domain.SetWithEstimate, len(sets))
	for i, s := range sets {
		out[i] = &domain.SetWithEstimate{Set: s}
		if e, ok := EstimateOneRepMax(s); ok {
			out[i].Estimated1RM = &e
		}
	}
	return out
}
