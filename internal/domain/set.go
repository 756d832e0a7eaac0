package domain

import (
	"context"
	"time"
)

// SetType distinguishes warm-up sets from sets performed at working effort
type SetType string

const (
	SetTypeWarmup  SetType = "warmup"
	SetTypeWorking SetType = "working"
)

// Set is a single logged set stored as a standalone document in the set_logs collection.
// Sets are owned by the workout store; the historical 1RM engine only reads them.
type Set struct {
	ID         string   `json:"id" bson:"_id,omitempty"`
	ClientID   string   `json:"client_id,omitempty" bson:"client_id,omitempty"` // Frontend ULID for dual-identity
	ExerciseID string   `json:"exercise_id" bson:"exercise_id"`
	WorkoutID  string   `json:"workout_id" bson:"workout_id"`
	MemberID   string   `json:"member_id" bson:"member_id"`               // Owner
	Weight     *float64 `json:"weight,omitempty" bson:"weight,omitempty"` // nil or 0 = bodyweight
	Reps       int      `json:"reps" bson:"reps"`
	SetType    SetType  `json:"set_type" bson:"set_type"`
	// Ordering within the workout
	ExerciseOrder int       `json:"exercise_order" bson:"exercise_order"`
	SetIndex      int       `json:"set_index" bson:"set_index"` // 1-based index for display
	CreatedAt     time.Time `json:"created_at" bson:"created_at"`
}

// WeightOrZero returns the set weight, treating an absent weight as bodyweight (0)
func (s *Set) WeightOrZero() float64 {
	if s.Weight == nil {
		return 0
	}
	return *s.Weight
}

// SetsReplaced is the receipt handed out by SetRepository.ReplaceForWorkout once the new
// sets of a workout are committed and visible to GetAll.
type SetsReplaced struct {
	WorkoutID   string
	SetCount    int
	CommittedAt time.Time
}

// SetScanner gives the historical 1RM engine a full snapshot of every set
type SetScanner interface {
	// GetAll returns all sets across all workouts and exercises, unfiltered
	GetAll(ctx context.Context) ([]*Set, error)
}

// SetRepository handles CRUD operations for the set_logs collection
type SetRepository interface {
	SetScanner
	// CreateMany inserts the sets of one workout
	CreateMany(ctx context.Context, sets []*Set) error
	// GetByWorkoutID retrieves all sets for a workout in logging order
	GetByWorkoutID(ctx context.Context, workoutID string) ([]*Set, error)
	// ReplaceForWorkout swaps every set of a workout for the given ones
	ReplaceForWorkout(ctx context.Context, workoutID string, sets []*Set) (SetsReplaced, error)
	// DeleteByWorkoutID removes all sets for a workout (cascade)
	DeleteByWorkoutID(ctx context.Context, workoutID string) error
	// DeleteByExerciseID removes all sets for an exercise (cascade)
	DeleteByExerciseID(ctx context.Context, exerciseID string) error
}
