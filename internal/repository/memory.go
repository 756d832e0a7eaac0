package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mansoorceksport/liftlog/internal/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory repositories mirror the Mongo ones (ObjectID hex IDs, same not-found errors)
// and back the memory data store and the tests.

type MemorySetRepository struct {
	mu   sync.Mutex
	sets []*domain.Set // insertion order
}

func NewMemorySetRepository() *MemorySetRepository {
	return &MemorySetRepository{}
}

func copySet(s *domain.Set) *domain.Set {
	cp := *s
	if s.Weight != nil {
		w := *s.Weight
		cp.Weight = &w
	}
	return &cp
}

func (r *MemorySetRepository) GetAll(_ context.Context) ([]*domain.Set, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*domain.Set, len(r.sets))
	for i, s := range r.sets {
		out[i] = copySet(s)
	}
	return out, nil
}

func (r *MemorySetRepository) CreateMany(_ context.Context, sets []*domain.Set) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.insert(sets)
	return nil
}

func (r *MemorySetRepository) insert(sets []*domain.Set) {
	now := time.Now()
	for _, s := range sets {
		s.ID = primitive.NewObjectID().Hex()
		s.CreatedAt = now
		r.sets = append(r.sets, copySet(s))
	}
}

func (r *MemorySetRepository) GetByWorkoutID(_ context.Context, workoutID string) ([]*domain.Set, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := []*domain.Set{}
	for _, s := range r.sets {
		if s.WorkoutID == workoutID {
			out = append(out, copySet(s))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].ExerciseOrder != out[j].ExerciseOrder {
			return out[i].ExerciseOrder < out[j].ExerciseOrder
		}
		return out[i].SetIndex < out[j].SetIndex
	})
	return out, nil
}

func (r *MemorySetRepository) ReplaceForWorkout(_ context.Context, workoutID string, sets []*domain.Set) (domain.SetsReplaced, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.removeWhere(func(s *domain.Set) bool { return s.WorkoutID == workoutID })
	r.insert(sets)
	return domain.SetsReplaced{
		WorkoutID:   workoutID,
		SetCount:    len(sets),
		CommittedAt: time.Now(),
	}, nil
}

func (r *MemorySetRepository) DeleteByWorkoutID(_ context.Context, workoutID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.removeWhere(func(s *domain.Set) bool { return s.WorkoutID == workoutID })
	return nil
}

func (r *MemorySetRepository) DeleteByExerciseID(_ context.Context, exerciseID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.removeWhere(func(s *domain.Set) bool { return s.ExerciseID == exerciseID })
	return nil
}

func (r *MemorySetRepository) removeWhere(match func(*domain.Set) bool) {
	kept := r.sets[:0]
	for _, s := range r.sets {
		if !match(s) {
			kept = append(kept, s)
		}
	}
	r.sets = kept
}

type MemoryWorkoutRepository struct {
	mu       sync.Mutex
	workouts map[string]*domain.Workout
}

func NewMemoryWorkoutRepository() *MemoryWorkoutRepository {
	return &MemoryWorkoutRepository{workouts: make(map[string]*domain.Workout)}
}

func (r *MemoryWorkoutRepository) Create(_ context.Context, workout *domain.Workout) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	workout.ID = primitive.NewObjectID().Hex()
	workout.CreatedAt = time.Now()
	workout.UpdatedAt = workout.CreatedAt
	cp := *workout
	r.workouts[workout.ID] = &cp
	return nil
}

func (r *MemoryWorkoutRepository) GetByID(_ context.Context, id string) (*domain.Workout, error) {
	if !primitive.IsValidObjectID(id) {
		return nil, domain.ErrInvalidID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	w, ok := r.workouts[id]
	if !ok {
		return nil, domain.ErrWorkoutNotFound
	}
	cp := *w
	return &cp, nil
}

func (r *MemoryWorkoutRepository) List(_ context.Context, memberID string, limit int) ([]*domain.Workout, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := []*domain.Workout{}
	for _, w := range r.workouts {
		if memberID == "" || w.MemberID == memberID {
			cp := *w
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PerformedAt.After(out[j].PerformedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryWorkoutRepository) Delete(_ context.Context, id string) error {
	if !primitive.IsValidObjectID(id) {
		return domain.ErrInvalidID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.workouts[id]; !ok {
		return domain.ErrWorkoutNotFound
	}
	delete(r.workouts, id)
	return nil
}

type MemoryExerciseRepository struct {
	mu        sync.Mutex
	exercises map[string]*domain.Exercise
}

func NewMemoryExerciseRepository() *MemoryExerciseRepository {
	return &MemoryExerciseRepository{exercises: make(map[string]*domain.Exercise)}
}

func (r *MemoryExerciseRepository) nameTaken(name, exceptID string) bool {
	for id, ex := range r.exercises {
		if id != exceptID && ex.Name == name {
			return true
		}
	}
	return false
}

func (r *MemoryExerciseRepository) Create(_ context.Context, ex *domain.Exercise) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.nameTaken(ex.Name, "") {
		return domain.ErrDuplicateExercise
	}
	ex.ID = primitive.NewObjectID().Hex()
	ex.CreatedAt = time.Now()
	ex.UpdatedAt = ex.CreatedAt
	cp := *ex
	r.exercises[ex.ID] = &cp
	return nil
}

func (r *MemoryExerciseRepository) GetByID(_ context.Context, id string) (*domain.Exercise, error) {
	if !primitive.IsValidObjectID(id) {
		return nil, domain.ErrInvalidID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	ex, ok := r.exercises[id]
	if !ok {
		return nil, domain.ErrExerciseNotFound
	}
	cp := *ex
	return &cp, nil
}

func (r *MemoryExerciseRepository) List(_ context.Context, filter map[string]interface{}) ([]*domain.Exercise, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name, _ := filter["name"].(string)
	group, _ := filter["muscle_group"].(string)

	out := []*domain.Exercise{}
	for _, ex := range r.exercises {
		if name != "" && !strings.Contains(strings.ToLower(ex.Name), strings.ToLower(name)) {
			continue
		}
		if group != "" && ex.MuscleGroup != group {
			continue
		}
		cp := *ex
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *MemoryExerciseRepository) Update(_ context.Context, ex *domain.Exercise) error {
	if !primitive.IsValidObjectID(ex.ID) {
		return domain.ErrInvalidID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.exercises[ex.ID]
	if !ok {
		return domain.ErrExerciseNotFound
	}
	if r.nameTaken(ex.Name, ex.ID) {
		return domain.ErrDuplicateExercise
	}
	ex.CreatedAt = existing.CreatedAt
	ex.UpdatedAt = time.Now()
	cp := *ex
	r.exercises[ex.ID] = &cp
	return nil
}

func (r *MemoryExerciseRepository) Delete(_ context.Context, id string) error {
	if !primitive.IsValidObjectID(id) {
		return domain.ErrInvalidID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.exercises[id]; !ok {
		return domain.ErrExerciseNotFound
	}
	delete(r.exercises, id)
	return nil
}
