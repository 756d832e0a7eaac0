package service

import (
	"context"
	"fmt"
	"math"

	"github.com/mansoorceksport/liftlog/internal/domain"
	"github.com/sirupsen/logrus"
)

// ExerciseService handles the exercise library and the manual historical 1RM override
type ExerciseService struct {
	exerciseRepo domain.ExerciseRepository
	setRepo      domain.SetRepository
	historical   *Historical1RMService
}

func NewExerciseService(
	exerciseRepo domain.ExerciseRepository,
	setRepo domain.SetRepository,
	historical *Historical1RMService,
) *ExerciseService {
	return &ExerciseService{
		exerciseRepo: exerciseRepo,
		setRepo:      setRepo,
		historical:   historical,
	}
}

func (s *ExerciseService) Create(ctx context.Context, ex *domain.Exercise) error {
	return s.exerciseRepo.Create(ctx, ex)
}

func (s *ExerciseService) Update(ctx context.Context, ex *domain.Exercise) error {
	return s.exerciseRepo.Update(ctx, ex)
}

func (s *ExerciseService) List(ctx context.Context, filter map[string]interface{}) ([]*domain.Exercise, error) {
	return s.exerciseRepo.List(ctx, filter)
}

// Delete removes an exercise, its logged sets and its historical 1RM
func (s *ExerciseService) Delete(ctx context.Context, exerciseID string) error {
	if _, err := s.exerciseRepo.GetByID(ctx, exerciseID); err != nil {
		return err
	}
	if err := s.setRepo.DeleteByExerciseID(ctx, exerciseID); err != nil {
		return fmt.Errorf("failed to delete sets: %w", err)
	}
	if err := s.exerciseRepo.Delete(ctx, exerciseID); err != nil {
		return err
	}

	if err := s.historical.OnExerciseDeleted(ctx, exerciseID); err != nil {
		logrus.WithError(err).WithField("exercise_id", exerciseID).Warn("failed to drop historical 1RM after exercise delete")
	}
	return nil
}

// ValidateManual1RM accepts nil (unset) or a finite value greater than zero
func ValidateManual1RM(value *float64) error {
	if value == nil {
		return nil
	}
	v := *value
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return domain.ErrInvalidManualValue
	}
	return nil
}

// SetManual1RM validates and stores a user-entered 1RM; nil clears it
func (s *ExerciseService) SetManual1RM(ctx context.Context, exerciseID string, value *float64) (*domain.Best1RmRecord, error) {
	if err := ValidateManual1RM(value); err != nil {
		return nil, err
	}
	if _, err := s.exerciseRepo.GetByID(ctx, exerciseID); err != nil {
		return nil, err
	}
	if err := s.historical.SetManual(ctx, exerciseID, value); err != nil {
		return nil, err
	}
	return s.historical.GetRecord(ctx, exerciseID), nil
}

// GetHistorical1RM returns domain.ErrNotFound when the exercise has no known 1RM
func (s *ExerciseService) GetHistorical1RM(ctx context.Context, exerciseID string) (*domain.Best1RmRecord, error) {
	rec := s.historical.GetRecord(ctx, exerciseID)
	if rec == nil {
		return nil, domain.ErrNotFound
	}
	return rec, nil
}
