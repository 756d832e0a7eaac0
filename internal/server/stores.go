package server

import (
	"fmt"

	"github.com/mansoorceksport/liftlog/internal/config"
	"github.com/mansoorceksport/liftlog/internal/domain"
	"github.com/mansoorceksport/liftlog/internal/repository"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// Repositories groups the CRUD stores the services depend on
type Repositories struct {
	Exercises domain.ExerciseRepository
	Workouts  domain.WorkoutRepository
	Sets      domain.SetRepository
}

// NewRepositories returns Mongo-backed repositories, or in-memory ones when db is nil
func NewRepositories(db *mongo.Database) Repositories {
	if db == nil {
		return Repositories{
			Exercises: repository.NewMemoryExerciseRepository(),
			Workouts:  repository.NewMemoryWorkoutRepository(),
			Sets:      repository.NewMemorySetRepository(),
		}
	}
	return Repositories{
		Exercises: repository.NewMongoExerciseRepository(db),
		Workouts:  repository.NewMongoWorkoutRepository(db),
		Sets:      repository.NewMongoSetRepository(db),
	}
}

// NewHistorical1RMStore picks the backend holding the derived index document
func NewHistorical1RMStore(cfg config.Historical1RMConfig, db *mongo.Database, redisClient *redis.Client) (domain.Historical1RMStore, error) {
	switch cfg.Store {
	case config.StoreMongo:
		if db == nil {
			return nil, fmt.Errorf("historical 1rm store %q needs a MongoDB connection", cfg.Store)
		}
		return repository.NewMongoHistorical1RMStore(db, cfg.Key), nil
	case config.StoreRedis:
		if redisClient == nil {
			return nil, fmt.Errorf("historical 1rm store %q needs a Redis connection", cfg.Store)
		}
		return repository.NewRedisHistorical1RMStore(repository.NewRedisCacheRepository(redisClient), cfg.Key), nil
	case config.StoreMemory:
		return repository.NewMemoryHistorical1RMStore(), nil
	default:
		return nil, fmt.Errorf("unknown historical 1rm store %q", cfg.Store)
	}
}
