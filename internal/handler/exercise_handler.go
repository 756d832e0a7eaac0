package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/mansoorceksport/liftlog/internal/domain"
	"github.com/mansoorceksport/liftlog/internal/service"
	"github.com/mansoorceksport/liftlog/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

type ExerciseHandler struct {
	exerciseService *service.ExerciseService
}

func NewExerciseHandler(exerciseService *service.ExerciseService) *ExerciseHandler {
	return &ExerciseHandler{
		exerciseService: exerciseService,
	}
}

// --- Exercises CRUD ---

func (h *ExerciseHandler) ListExercises(c *fiber.Ctx) error {
	filter := make(map[string]interface{})
	if name := c.Query("name"); name != "" {
		filter["name"] = name
	}
	if group := c.Query("muscle_group"); group != "" {
		filter["muscle_group"] = group
	}
	exs, err := h.exerciseService.List(c.UserContext(), filter)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(exs)
}

func (h *ExerciseHandler) CreateExercise(c *fiber.Ctx) error {
	var req domain.Exercise
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}
	if req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "name is required"})
	}
	req.ID = ""
	if err := h.exerciseService.Create(c.UserContext(), &req); err != nil {
		return errorJSON(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(req)
}

func (h *ExerciseHandler) UpdateExercise(c *fiber.Ctx) error {
	var req domain.Exercise
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}
	req.ID = c.Params("id")
	if err := h.exerciseService.Update(c.UserContext(), &req); err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(req)
}

func (h *ExerciseHandler) DeleteExercise(c *fiber.Ctx) error {
	if err := h.exerciseService.Delete(c.UserContext(), c.Params("id")); err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(fiber.Map{"message": "deleted"})
}

// --- Historical 1RM ---

// GetHistorical1RM GET /v1/exercises/:id/historical-1rm
func (h *ExerciseHandler) GetHistorical1RM(c *fiber.Ctx) error {
	rec, err := h.exerciseService.GetHistorical1RM(c.UserContext(), c.Params("id"))
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(rec)
}

// SetHistorical1RM PUT /v1/exercises/:id/historical-1rm
// Body {"value": 150} sets a manual override, {"value": null} clears the record.
// A body without "value" is rejected so a malformed request never clears an override.
func (h *ExerciseHandler) SetHistorical1RM(c *fiber.Ctx) error {
	var req map[string]interface{}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}
	raw, ok := req["value"]
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "value is required (number, or null to clear)"})
	}
	if raw == nil {
		return h.setManual(c, nil)
	}
	value, ok := raw.(float64)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "value must be a number or null"})
	}
	return h.setManual(c, &value)
}

// ClearHistorical1RM DELETE /v1/exercises/:id/historical-1rm
func (h *ExerciseHandler) ClearHistorical1RM(c *fiber.Ctx) error {
	return h.setManual(c, nil)
}

func (h *ExerciseHandler) setManual(c *fiber.Ctx, value *float64) error {
	exerciseID := c.Params("id")
	telemetry.AddSpanEvent(c, "historical_1rm.manual",
		attribute.String("exercise.id", exerciseID),
		attribute.Bool("unset", value == nil),
	)

	rec, err := h.exerciseService.SetManual1RM(c.UserContext(), exerciseID, value)
	if err != nil {
		return errorJSON(c, err)
	}
	if rec == nil {
		return c.JSON(fiber.Map{"message": "cleared"})
	}
	return c.JSON(rec)
}
