package server

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/mansoorceksport/liftlog/internal/config"
	"github.com/mansoorceksport/liftlog/internal/handler"
	"github.com/mansoorceksport/liftlog/internal/middleware"
	"github.com/mansoorceksport/liftlog/internal/repository"
	"github.com/mansoorceksport/liftlog/internal/service"
	"github.com/mansoorceksport/liftlog/internal/telemetry"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
)

// AppDependencies holds the dependencies required to start the application.
// A nil MongoDB runs the CRUD stores in memory; a nil RedisClient disables request idempotency.
type AppDependencies struct {
	Config      *config.Config
	MongoDB     *mongo.Database
	RedisClient *redis.Client
}

// NewApp creates and configures the Fiber application with the given dependencies
func NewApp(deps AppDependencies) (*fiber.App, error) {
	cfg := deps.Config

	// Initialize repositories
	repos := NewRepositories(deps.MongoDB)
	store, err := NewHistorical1RMStore(cfg.Historical1RM, deps.MongoDB, deps.RedisClient)
	if err != nil {
		return nil, err
	}

	// Initialize services
	historicalService := service.NewHistorical1RMService(store, repos.Sets)
	workoutService := service.NewWorkoutService(repos.Workouts, repos.Sets, repos.Exercises, historicalService)
	exerciseService := service.NewExerciseService(repos.Exercises, repos.Sets, historicalService)

	if cfg.Historical1RM.BootstrapOnStart {
		if err := historicalService.Bootstrap(context.Background()); err != nil {
			logrus.WithError(err).Warn("historical 1rm bootstrap on start failed")
		}
	}

	// Initialize handlers
	workoutHandler := handler.NewWorkoutHandler(workoutService)
	exerciseHandler := handler.NewExerciseHandler(exerciseService)
	historicalHandler := handler.NewHistorical1RMHandler(historicalService)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "LiftLog API",
		BodyLimit:    int(cfg.Server.MaxBodySizeMB * 1024 * 1024),
		ErrorHandler: customErrorHandler,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, " + telemetry.CorrelationHeader,
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))
	app.Use(telemetry.FiberMiddleware())

	// Health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"service": "liftlog",
		})
	})

	// API v1 routes
	v1 := app.Group("/v1")
	if deps.RedisClient != nil && cfg.Server.IdempotencyTTL > 0 {
		v1.Use(middleware.IdempotencyMiddleware(repository.NewRedisCacheRepository(deps.RedisClient), cfg.Server.IdempotencyTTL))
	}

	exercises := v1.Group("/exercises")
	exercises.Get("/", exerciseHandler.ListExercises)
	exercises.Post("/", exerciseHandler.CreateExercise)
	exercises.Put("/:id", exerciseHandler.UpdateExercise)
	exercises.Delete("/:id", exerciseHandler.DeleteExercise)
	exercises.Get("/:id/historical-1rm", exerciseHandler.GetHistorical1RM)
	exercises.Put("/:id/historical-1rm", exerciseHandler.SetHistorical1RM)
	exercises.Delete("/:id/historical-1rm", exerciseHandler.ClearHistorical1RM)

	workouts := v1.Group("/workouts")
	workouts.Get("/", workoutHandler.ListWorkouts)
	workouts.Post("/", workoutHandler.CreateWorkout)
	workouts.Get("/:id", workoutHandler.GetWorkout)
	workouts.Put("/:id/sets", workoutHandler.ReplaceSets)
	workouts.Delete("/:id", workoutHandler.DeleteWorkout)

	historical := v1.Group("/historical-1rm")
	historical.Get("/", historicalHandler.Snapshot)
	historical.Post("/bootstrap", historicalHandler.Bootstrap)
	historical.Post("/reset", historicalHandler.Reset)

	return app, nil
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}
	logrus.WithError(err).WithFields(logrus.Fields{
		"method": c.Method(),
		"path":   c.Path(),
		"status": code,
	}).Error("request failed")
	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}
