package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/mansoorceksport/liftlog/internal/config"
	"github.com/mansoorceksport/liftlog/internal/domain"
	"github.com/mansoorceksport/liftlog/internal/server"
	"github.com/mansoorceksport/liftlog/internal/service"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	count := flag.Int("workouts", 20, "Number of workouts to generate")
	members := flag.Int("members", 3, "Number of distinct members")
	seed := flag.Int64("seed", 0, "Random seed (0 = random)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoDB.URI))
	if err != nil {
		logrus.Fatalf("failed to connect to Mongo: %v", err)
	}
	defer client.Disconnect(context.Background())
	db := client.Database(cfg.MongoDB.Database)

	var redisClient *redis.Client
	if cfg.Historical1RM.Store == config.StoreRedis {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		defer redisClient.Close()
	}

	repos := server.NewRepositories(db)
	store, err := server.NewHistorical1RMStore(cfg.Historical1RM, db, redisClient)
	if err != nil {
		logrus.Fatalf("failed to open historical 1RM store: %v", err)
	}
	historical := service.NewHistorical1RMService(store, repos.Sets)
	workouts := service.NewWorkoutService(repos.Workouts, repos.Sets, repos.Exercises, historical)

	exercises, err := repos.Exercises.List(ctx, map[string]interface{}{})
	if err != nil {
		logrus.Fatalf("failed to list exercises: %v", err)
	}
	if len(exercises) == 0 {
		logrus.Fatal("exercise library is empty, run cmd/seed/exercises first")
	}

	faker := gofakeit.New(*seed)
	memberIDs := make([]string, *members)
	for i := range memberIDs {
		memberIDs[i] = faker.UUID()
	}

	start := time.Now().AddDate(0, -3, 0)
	for i := 0; i < *count; i++ {
		workout := &domain.Workout{
			MemberID:    memberIDs[faker.Number(0, len(memberIDs)-1)],
			Name:        fmt.Sprintf("%s Day", faker.RandomString([]string{"Push", "Pull", "Legs", "Upper", "Lower", "Full Body"})),
			Notes:       faker.Sentence(6),
			PerformedAt: faker.DateRange(start, time.Now()),
		}

		created, err := workouts.CreateWorkout(ctx, workout, randomSets(faker, exercises))
		if err != nil {
			logrus.WithError(err).Error("failed to create workout")
			continue
		}
		fmt.Printf("Created workout %s (%s) with %d sets\n", created.ID, created.Name, len(created.Sets))
	}

	// The incremental index must match a full recompute
	incremental := historical.Snapshot(ctx)
	computed, err := historical.Compute(ctx)
	if err != nil {
		logrus.Fatalf("failed to compute index: %v", err)
	}
	mismatches := 0
	for id, c := range computed {
		if s := incremental[id]; s == nil || s.IsManual() || math.Abs(s.Value-c.Value) > 1e-9 {
			mismatches++
			logrus.WithField("exercise_id", id).Warn("incremental record differs from recompute")
		}
	}
	fmt.Printf("Seeding workouts complete. %d records, %d mismatches against a full recompute.\n", len(computed), mismatches)
}

// randomSets picks a few exercises and logs warm-ups followed by working sets
func randomSets(faker *gofakeit.Faker, exercises []*domain.Exercise) []*domain.Set {
	var sets []*domain.Set
	picked := faker.Number(2, 5)
	for i := 0; i < picked; i++ {
		ex := exercises[faker.Number(0, len(exercises)-1)]
		bodyweight := ex.Equipment == "Bodyweight"
		top := float64(faker.Number(8, 40)) * 5 // 40 to 200 in 5 steps

		for w := 0; w < faker.Number(0, 2); w++ {
			sets = append(sets, &domain.Set{
				ExerciseID: ex.ID,
				Weight:     weight(top*0.5, bodyweight),
				Reps:       faker.Number(8, 12),
				SetType:    domain.SetTypeWarmup,
			})
		}
		for w := 0; w < faker.Number(2, 5); w++ {
			sets = append(sets, &domain.Set{
				ExerciseID: ex.ID,
				Weight:     weight(top-float64(faker.Number(0, 4))*2.5, bodyweight),
				Reps:       faker.Number(1, 12),
				SetType:    domain.SetTypeWorking,
			})
		}
	}
	return sets
}

func weight(w float64, bodyweight bool) *float64 {
	if bodyweight {
		return nil
	}
	return &w
}
