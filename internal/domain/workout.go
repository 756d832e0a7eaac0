package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrWorkoutNotFound = errors.New("workout not found")
)

type Workout struct {
	ID          string     `json:"id" bson:"_id,omitempty"`
	MemberID    string     `json:"member_id" bson:"member_id"`
	Name        string     `json:"name" bson:"name"`
	Notes       string     `json:"notes,omitempty" bson:"notes,omitempty"`
	PerformedAt time.Time  `json:"performed_at" bson:"performed_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty" bson:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" bson:"updated_at"`
}

// WorkoutWithSets is a workout inflated with its sets, as returned by the API
type WorkoutWithSets struct {
	*Workout
	Sets []*SetWithEstimate `json:"sets"`
}

// SetWithEstimate annotates a set with its estimated 1RM (nil when the set does not qualify)
type SetWithEstimate struct {
	*Set
	Estimated1RM *float64 `json:"estimated_1rm"`
}

type WorkoutRepository interface {
	Create(ctx context.Context, workout *Workout) error
	GetByID(ctx context.Context, id string) (*Workout, error)
	List(ctx context.Context, memberID string, limit int) ([]*Workout, error)
	Delete(ctx context.Context, id string) error
}
