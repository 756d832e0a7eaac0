package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mansoorceksport/liftlog/internal/domain"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const historical1RMInstrumentation = "historical_1rm"

// Historical1RMService maintains the per-exercise best estimated 1RM index.
//
// Every entry point runs after the caller has committed its set/workout change, reads the
// full set collection through the SetScanner, and writes the whole index back once.
// Calls are serialized within one process only. Two processes sharing a store can still
// overwrite each other's result; the index can always be rebuilt with Reset.
type Historical1RMService struct {
	store   domain.Historical1RMStore
	scanner domain.SetScanner
	now     func() time.Time

	mu      sync.Mutex
	tracer  trace.Tracer
	changed metric.Int64Counter
}

type Historical1RMOption func(*Historical1RMService)

// WithClock overrides the time source used for UpdatedAt
func WithClock(now func() time.Time) Historical1RMOption {
	return func(s *Historical1RMService) {
		s.now = now
	}
}

func NewHistorical1RMService(store domain.Historical1RMStore, scanner domain.SetScanner, opts ...Historical1RMOption) *Historical1RMService {
	s := &Historical1RMService{
		store:   store,
		scanner: scanner,
		now:     time.Now,
		tracer:  otel.Tracer(historical1RMInstrumentation),
	}
	for _, opt := range opts {
		opt(s)
	}

	changed, err := otel.Meter(historical1RMInstrumentation).Int64Counter(
		"historical_1rm.records_changed",
		metric.WithDescription("Historical 1RM records created, replaced or removed"),
	)
	if err != nil {
		logrus.WithError(err).Warn("historical 1rm: records_changed counter unavailable")
	} else {
		s.changed = changed
	}
	return s
}

// candidate is the best qualifying estimate seen so far for one exercise
type candidate struct {
	value     float64
	workoutID string
}

// bestPerExercise scans sets in the order given and keeps, per exercise, the highest
// estimate. Ties keep the first set encountered. keep filters the sets considered.
func bestPerExercise(sets []*domain.Set, keep func(*domain.Set) bool) map[string]candidate {
	best := make(map[string]candidate)
	for _, set := range sets {
		if keep != nil && !keep(set) {
			continue
		}
		e, ok := EstimateOneRepMax(set)
		if !ok {
			continue
		}
		if cur, seen := best[set.ExerciseID]; !seen || e > cur.value {
			best[set.ExerciseID] = candidate{value: e, workoutID: set.WorkoutID}
		}
	}
	return best
}

func (s *Historical1RMService) computed(c candidate) *domain.Best1RmRecord {
	workoutID := c.workoutID
	return &domain.Best1RmRecord{
		Value:           c.value,
		UpdatedAt:       s.now(),
		SourceWorkoutID: &workoutID,
	}
}

// load never fails: an unreadable or corrupt document is treated as an empty index
func (s *Historical1RMService) load(ctx context.Context) domain.Historical1RMIndex {
	idx, err := s.store.Load(ctx)
	if err != nil {
		entry := logrus.WithError(err)
		if errors.Is(err, domain.ErrCorruptIndex) {
			entry.Warn("historical 1rm: persisted index is corrupt, treating as empty")
		} else {
			entry.Warn("historical 1rm: persisted index unavailable, treating as empty")
		}
		return domain.Historical1RMIndex{}
	}
	if idx == nil {
		return domain.Historical1RMIndex{}
	}
	return idx
}

func (s *Historical1RMService) save(ctx context.Context, op string, idx domain.Historical1RMIndex, changed int) error {
	if err := s.store.Save(ctx, idx); err != nil {
		return fmt.Errorf("save historical 1rm index: %w", err)
	}
	if s.changed != nil && changed > 0 {
		s.changed.Add(ctx, int64(changed), metric.WithAttributes(attribute.String("op", op)))
	}
	return nil
}

func (s *Historical1RMService) scan(ctx context.Context) ([]*domain.Set, error) {
	sets, err := s.scanner.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("scan sets: %w", err)
	}
	return sets, nil
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// Compute derives the full index from the current sets without persisting it
func (s *Historical1RMService) Compute(ctx context.Context) (domain.Historical1RMIndex, error) {
	sets, err := s.scan(ctx)
	if err != nil {
		return nil, err
	}

	idx := make(domain.Historical1RMIndex)
	for exerciseID, c := range bestPerExercise(sets, nil) {
		idx[exerciseID] = s.computed(c)
	}
	return idx, nil
}

// Bootstrap rebuilds the whole index from every set and replaces the persisted document.
// Manual overrides are discarded.
func (s *Historical1RMService) Bootstrap(ctx context.Context) (err error) {
	ctx, span := s.tracer.Start(ctx, "historical_1rm.bootstrap")
	defer func() { endSpan(span, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.bootstrap(ctx)
}

func (s *Historical1RMService) bootstrap(ctx context.Context) error {
	idx, err := s.Compute(ctx)
	if err != nil {
		return err
	}

	logrus.WithField("exercises", len(idx)).Info("historical 1rm: index rebuilt")
	return s.save(ctx, "bootstrap", idx, len(idx))
}

// Reset clears the persisted index and bootstraps it again. The document is only cleared
// once the set scan has succeeded.
func (s *Historical1RMService) Reset(ctx context.Context) (err error) {
	ctx, span := s.tracer.Start(ctx, "historical_1rm.reset")
	defer func() { endSpan(span, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	idx, err := s.Compute(ctx)
	if err != nil {
		return err
	}
	if err := s.store.Clear(ctx); err != nil {
		// Save replaces the document anyway
		logrus.WithError(err).Warn("historical 1rm: failed to clear index before rebuild")
	}

	logrus.WithField("exercises", len(idx)).Info("historical 1rm: index reset")
	return s.save(ctx, "reset", idx, len(idx))
}

// OnWorkoutCreated raises records with the best sets of a newly committed workout.
// A record, manual or computed, is only replaced by a strictly greater estimate.
func (s *Historical1RMService) OnWorkoutCreated(ctx context.Context, workoutID string) (err error) {
	ctx, span := s.tracer.Start(ctx, "historical_1rm.workout_created",
		trace.WithAttributes(attribute.String("workout.id", workoutID)),
	)
	defer func() { endSpan(span, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.onWorkoutCreated(ctx, workoutID)
}

func (s *Historical1RMService) onWorkoutCreated(ctx context.Context, workoutID string) error {
	sets, err := s.scan(ctx)
	if err != nil {
		return err
	}

	best := bestPerExercise(sets, func(set *domain.Set) bool {
		return set.WorkoutID == workoutID
	})
	if len(best) == 0 {
		return nil
	}

	idx := s.load(ctx)
	changed := 0
	for exerciseID, c := range best {
		existing := idx[exerciseID]
		if existing != nil && c.value <= existing.Value {
			continue
		}
		idx[exerciseID] = s.computed(c)
		changed++
		logrus.WithFields(logrus.Fields{
			"exercise_id": exerciseID,
			"workout_id":  workoutID,
			"value":       c.value,
		}).Debug("historical 1rm: record raised")
	}
	if changed == 0 {
		return nil
	}
	return s.save(ctx, "workout_created", idx, changed)
}

// OnWorkoutDeleted repairs every record attributed to a workout whose sets are already
// gone from the set store. Affected exercises are recomputed from the remaining sets, or
// dropped when nothing qualifies. Manual records and records from other workouts stay.
func (s *Historical1RMService) OnWorkoutDeleted(ctx context.Context, workoutID string) (err error) {
	ctx, span := s.tracer.Start(ctx, "historical_1rm.workout_deleted",
		trace.WithAttributes(attribute.String("workout.id", workoutID)),
	)
	defer func() { endSpan(span, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.onWorkoutDeleted(ctx, workoutID)
}

func (s *Historical1RMService) onWorkoutDeleted(ctx context.Context, workoutID string) error {
	idx := s.load(ctx)

	var affected []string
	for exerciseID, rec := range idx {
		if rec != nil && rec.IsFrom(workoutID) {
			affected = append(affected, exerciseID)
		}
	}
	if len(affected) == 0 {
		return nil
	}

	sets, err := s.scan(ctx)
	if err != nil {
		return err
	}

	for _, exerciseID := range affected {
		best := bestPerExercise(sets, func(set *domain.Set) bool {
			return set.ExerciseID == exerciseID
		})
		if c, ok := best[exerciseID]; ok {
			idx[exerciseID] = s.computed(c)
			continue
		}
		delete(idx, exerciseID)
	}
	return s.save(ctx, "workout_deleted", idx, len(affected))
}

// OnWorkoutUpdated re-derives records after a workout's sets changed in place.
// The set store must already hold the post-update sets.
func (s *Historical1RMService) OnWorkoutUpdated(ctx context.Context, workoutID string) (err error) {
	ctx, span := s.tracer.Start(ctx, "historical_1rm.workout_updated",
		trace.WithAttributes(attribute.String("workout.id", workoutID)),
	)
	defer func() { endSpan(span, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.onWorkoutDeleted(ctx, workoutID); err != nil {
		return err
	}
	return s.onWorkoutCreated(ctx, workoutID)
}

// RecordSetsReplaced is the second step of a workout update: it takes the receipt from
// SetRepository.ReplaceForWorkout, which proves the new sets are committed.
func (s *Historical1RMService) RecordSetsReplaced(ctx context.Context, receipt domain.SetsReplaced) error {
	if receipt.WorkoutID == "" {
		return fmt.Errorf("record sets replaced: %w", domain.ErrInvalidID)
	}
	return s.OnWorkoutUpdated(ctx, receipt.WorkoutID)
}

// SetManual stores a user-supplied 1RM, replacing any record regardless of its value.
// A nil value removes the exercise's record. value must already be validated.
func (s *Historical1RMService) SetManual(ctx context.Context, exerciseID string, value *float64) (err error) {
	ctx, span := s.tracer.Start(ctx, "historical_1rm.set_manual",
		trace.WithAttributes(
			attribute.String("exercise.id", exerciseID),
			attribute.Bool("unset", value == nil),
		),
	)
	defer func() { endSpan(span, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.load(ctx)
	if value == nil {
		delete(idx, exerciseID)
	} else {
		idx[exerciseID] = &domain.Best1RmRecord{
			Value:     *value,
			UpdatedAt: s.now(),
		}
	}
	return s.save(ctx, "set_manual", idx, 1)
}

// OnExerciseDeleted drops the exercise's record. Other exercises are unaffected.
func (s *Historical1RMService) OnExerciseDeleted(ctx context.Context, exerciseID string) (err error) {
	ctx, span := s.tracer.Start(ctx, "historical_1rm.exercise_deleted",
		trace.WithAttributes(attribute.String("exercise.id", exerciseID)),
	)
	defer func() { endSpan(span, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.load(ctx)
	if _, ok := idx[exerciseID]; !ok {
		return nil
	}
	delete(idx, exerciseID)
	return s.save(ctx, "exercise_deleted", idx, 1)
}

// GetRecord returns a copy of the exercise's record, or nil when no 1RM is known
func (s *Historical1RMService) GetRecord(ctx context.Context, exerciseID string) *domain.Best1RmRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.load(ctx)[exerciseID]
	if rec == nil {
		return nil
	}
	return domain.Historical1RMIndex{exerciseID: rec}.Clone()[exerciseID]
}

// Snapshot returns a copy of the whole index
func (s *Historical1RMService) Snapshot(ctx context.Context) domain.Historical1RMIndex {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load(ctx).Clone()
}
