package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"time"

	"github.com/mansoorceksport/liftlog/internal/domain"
	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
)

// WorkoutService owns workout and set CRUD and notifies the historical 1RM index
// after each committed change.
type WorkoutService struct {
	workoutRepo  domain.WorkoutRepository
	setRepo      domain.SetRepository
	exerciseRepo domain.ExerciseRepository
	historical   *Historical1RMService
}

func NewWorkoutService(
	workoutRepo domain.WorkoutRepository,
	setRepo domain.SetRepository,
	exerciseRepo domain.ExerciseRepository,
	historical *Historical1RMService,
) *WorkoutService {
	return &WorkoutService{
		workoutRepo:  workoutRepo,
		setRepo:      setRepo,
		exerciseRepo: exerciseRepo,
		historical:   historical,
	}
}

// generateULID creates a new ULID string
func generateULID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
}

// prepareSets validates incoming sets and stamps ownership, ordering and client IDs
func (s *WorkoutService) prepareSets(ctx context.Context, workout *domain.Workout, sets []*domain.Set) error {
	known := make(map[string]bool)
	perExercise := make(map[string]int)
	order := make(map[string]int)

	for _, set := range sets {
		if set == nil || set.ExerciseID == "" {
			return fmt.Errorf("%w: exercise_id is required", domain.ErrInvalidSet)
		}
		if set.Reps < 0 {
			return fmt.Errorf("%w: reps must not be negative", domain.ErrInvalidSet)
		}
		if set.Weight != nil && *set.Weight < 0 {
			return fmt.Errorf("%w: weight must not be negative", domain.ErrInvalidSet)
		}
		switch set.SetType {
		case "":
			set.SetType = domain.SetTypeWorking
		case domain.SetTypeWarmup, domain.SetTypeWorking:
		default:
			return fmt.Errorf("%w: unknown set_type %q", domain.ErrInvalidSet, set.SetType)
		}

		if !known[set.ExerciseID] {
			if _, err := s.exerciseRepo.GetByID(ctx, set.ExerciseID); err != nil {
				return fmt.Errorf("invalid exercise %s: %w", set.ExerciseID, err)
			}
			known[set.ExerciseID] = true
			order[set.ExerciseID] = len(order) + 1
		}

		perExercise[set.ExerciseID]++
		set.ID = ""
		set.WorkoutID = workout.ID
		set.MemberID = workout.MemberID
		set.ExerciseOrder = order[set.ExerciseID]
		set.SetIndex = perExercise[set.ExerciseID]
		if set.ClientID == "" {
			set.ClientID = generateULID()
		}
	}
	return nil
}

// CreateWorkout stores a workout with its sets, then raises historical 1RMs it beats
func (s *WorkoutService) CreateWorkout(ctx context.Context, workout *domain.Workout, sets []*domain.Set) (*domain.WorkoutWithSets, error) {
	if workout.PerformedAt.IsZero() {
		workout.PerformedAt = time.Now()
	}
	if err := s.workoutRepo.Create(ctx, workout); err != nil {
		return nil, err
	}

	if err := s.prepareSets(ctx, workout, sets); err != nil {
		s.rollbackWorkout(ctx, workout.ID)
		return nil, err
	}
	if len(sets) > 0 {
		if err := s.setRepo.CreateMany(ctx, sets); err != nil {
			// Part of the batch may have landed; none of it was indexed yet
			s.rollbackWorkout(ctx, workout.ID)
			return nil, fmt.Errorf("failed to store sets: %w", err)
		}
	}

	// Derived index must not fail the save
	if err := s.historical.OnWorkoutCreated(ctx, workout.ID); err != nil {
		logrus.WithError(err).WithField("workout_id", workout.ID).Warn("failed to update historical 1RM after workout create")
	}

	return &domain.WorkoutWithSets{Workout: workout, Sets: annotateSets(sets)}, nil
}

// ReplaceWorkoutSets swaps the sets of an existing workout and re-derives affected records
func (s *WorkoutService) ReplaceWorkoutSets(ctx context.Context, workoutID string, sets []*domain.Set) (*domain.WorkoutWithSets, error) {
	workout, err := s.workoutRepo.GetByID(ctx, workoutID)
	if err != nil {
		return nil, err
	}
	if err := s.prepareSets(ctx, workout, sets); err != nil {
		return nil, err
	}

	receipt, err := s.setRepo.ReplaceForWorkout(ctx, workout.ID, sets)
	if err != nil {
		// The old sets may already be gone: re-derive from whatever is stored now
		if ierr := s.historical.OnWorkoutUpdated(ctx, workout.ID); ierr != nil {
			logrus.WithError(ierr).WithField("workout_id", workout.ID).Warn("failed to update historical 1RM after partial set replace")
		}
		return nil, fmt.Errorf("failed to replace sets: %w", err)
	}

	if err := s.historical.RecordSetsReplaced(ctx, receipt); err != nil {
		logrus.WithError(err).WithField("workout_id", workout.ID).Warn("failed to update historical 1RM after workout update")
	}

	return s.GetWorkout(ctx, workout.ID)
}

// DeleteWorkout removes a workout and its sets, then repairs records it produced
func (s *WorkoutService) DeleteWorkout(ctx context.Context, workoutID string) error {
	workout, err := s.workoutRepo.GetByID(ctx, workoutID)
	if err != nil {
		return err
	}

	// Cascade delete: sets first, so the repair scan no longer sees them.
	// Any set removal is repaired in the index even when a later step fails.
	err = s.setRepo.DeleteByWorkoutID(ctx, workout.ID)
	if err != nil {
		err = fmt.Errorf("failed to delete sets: %w", err)
	} else {
		err = s.workoutRepo.Delete(ctx, workout.ID)
	}

	if ierr := s.historical.OnWorkoutDeleted(ctx, workout.ID); ierr != nil {
		logrus.WithError(ierr).WithField("workout_id", workout.ID).Warn("failed to repair historical 1RM after workout delete")
	}
	return err
}

// rollbackWorkout removes a workout whose sets could not be stored
func (s *WorkoutService) rollbackWorkout(ctx context.Context, workoutID string) {
	if err := s.setRepo.DeleteByWorkoutID(ctx, workoutID); err != nil {
		logrus.WithError(err).WithField("workout_id", workoutID).Warn("failed to roll back sets")
	}
	if err := s.workoutRepo.Delete(ctx, workoutID); err != nil {
		logrus.WithError(err).WithField("workout_id", workoutID).Warn("failed to roll back workout")
	}
}

// GetWorkout returns a workout inflated with its sets and their estimates
func (s *WorkoutService) GetWorkout(ctx context.Context, workoutID string) (*domain.WorkoutWithSets, error) {
	workout, err := s.workoutRepo.GetByID(ctx, workoutID)
	if err != nil {
		return nil, err
	}
	sets, err := s.setRepo.GetByWorkoutID(ctx, workout.ID)
	if err != nil {
		return nil, err
	}
	return &domain.WorkoutWithSets{Workout: workout, Sets: annotateSets(sets)}, nil
}

func (s *WorkoutService) ListWorkouts(ctx context.Context, memberID string, limit int) ([]*domain.Workout, error) {
	return s.workoutRepo.List(ctx, memberID, limit)
}
