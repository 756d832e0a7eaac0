package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/mansoorceksport/liftlog/internal/domain"
	"github.com/mansoorceksport/liftlog/internal/service"
	"github.com/mansoorceksport/liftlog/internal/telemetry"
)

type WorkoutHandler struct {
	workoutService *service.WorkoutService
}

func NewWorkoutHandler(workoutService *service.WorkoutService) *WorkoutHandler {
	return &WorkoutHandler{
		workoutService: workoutService,
	}
}

type setRequest struct {
	ClientID   string   `json:"client_id"`
	ExerciseID string   `json:"exercise_id"`
	Weight     *float64 `json:"weight"`
	Reps       int      `json:"reps"`
	SetType    string   `json:"set_type"`
}

func (r setRequest) toDomain() *domain.Set {
	return &domain.Set{
		ClientID:   r.ClientID,
		ExerciseID: r.ExerciseID,
		Weight:     r.Weight,
		Reps:       r.Reps,
		SetType:    domain.SetType(r.SetType),
	}
}

func toDomainSets(reqs []setRequest) []*domain.Set {
	sets := make([]*domain.Set, len(reqs))
	for i, r := range reqs {
		sets[i] = r.toDomain()
	}
	return sets
}

// CreateWorkout POST /v1/workouts
func (h *WorkoutHandler) CreateWorkout(c *fiber.Ctx) error {
	var req struct {
		MemberID    string       `json:"member_id"`
		Name        string       `json:"name"`
		Notes       string       `json:"notes"`
		PerformedAt time.Time    `json:"performed_at"`
		Sets        []setRequest `json:"sets"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}

	workout := &domain.Workout{
		MemberID:    req.MemberID,
		Name:        req.Name,
		Notes:       req.Notes,
		PerformedAt: req.PerformedAt,
	}
	created, err := h.workoutService.CreateWorkout(c.UserContext(), workout, toDomainSets(req.Sets))
	if err != nil {
		return errorJSON(c, err)
	}
	telemetry.SetSpanAttribute(c, "workout.id", created.ID)
	return c.Status(fiber.StatusCreated).JSON(created)
}

// GetWorkout GET /v1/workouts/:id
func (h *WorkoutHandler) GetWorkout(c *fiber.Ctx) error {
	workout, err := h.workoutService.GetWorkout(c.UserContext(), c.Params("id"))
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(workout)
}

// ListWorkouts GET /v1/workouts?member_id=&limit=
func (h *WorkoutHandler) ListWorkouts(c *fiber.Ctx) error {
	workouts, err := h.workoutService.ListWorkouts(c.UserContext(), c.Query("member_id"), c.QueryInt("limit", 50))
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(workouts)
}

// ReplaceSets PUT /v1/workouts/:id/sets
func (h *WorkoutHandler) ReplaceSets(c *fiber.Ctx) error {
	var req struct {
		Sets []setRequest `json:"sets"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}

	workoutID := c.Params("id")
	telemetry.SetSpanAttribute(c, "workout.id", workoutID)

	updated, err := h.workoutService.ReplaceWorkoutSets(c.UserContext(), workoutID, toDomainSets(req.Sets))
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(updated)
}

// DeleteWorkout DELETE /v1/workouts/:id
func (h *WorkoutHandler) DeleteWorkout(c *fiber.Ctx) error {
	workoutID := c.Params("id")
	telemetry.SetSpanAttribute(c, "workout.id", workoutID)

	if err := h.workoutService.DeleteWorkout(c.UserContext(), workoutID); err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(fiber.Map{"message": "deleted"})
}
