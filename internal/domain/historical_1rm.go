package domain

import (
	"context"
	"time"
)

// Best1RmRecord is the best estimated one-rep max known for one exercise.
// A nil SourceWorkoutID marks a manual override entered by the user; otherwise the
// value was computed from the sets of that workout.
type Best1RmRecord struct {
	Value           float64   `json:"historical_1rm" bson:"historical_1rm"`
	UpdatedAt       time.Time `json:"updated_at" bson:"updated_at"`
	SourceWorkoutID *string   `json:"source_workout_id" bson:"source_workout_id"`
}

// IsManual reports whether the record was supplied by the user rather than computed
func (r *Best1RmRecord) IsManual() bool {
	return r.SourceWorkoutID == nil
}

// IsFrom reports whether the record was computed from the given workout
func (r *Best1RmRecord) IsFrom(workoutID string) bool {
	return r.SourceWorkoutID != nil && *r.SourceWorkoutID == workoutID
}

// Historical1RMIndex maps exercise ID to its record. A missing key means no known 1RM.
type Historical1RMIndex map[string]*Best1RmRecord

// Clone returns a deep copy of the index
func (idx Historical1RMIndex) Clone() Historical1RMIndex {
	out := make(Historical1RMIndex, len(idx))
	for exerciseID, rec := range idx {
		if rec == nil {
			continue
		}
		cp := *rec
		if rec.SourceWorkoutID != nil {
			src := *rec.SourceWorkoutID
			cp.SourceWorkoutID = &src
		}
		out[exerciseID] = &cp
	}
	return out
}

// Historical1RMStore persists the whole index as one document.
// Writes replace the document as a unit; there are no per-key writes.
type Historical1RMStore interface {
	// Load returns the persisted index, or an empty one when no document exists.
	// A document that cannot be decoded is reported with ErrCorruptIndex.
	Load(ctx context.Context) (Historical1RMIndex, error)
	// Save replaces the persisted document with idx
	Save(ctx context.Context, idx Historical1RMIndex) error
	// Clear removes the persisted document entirely
	Clear(ctx context.Context) error
}
