package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mansoorceksport/liftlog/internal/config"
	"github.com/mansoorceksport/liftlog/internal/domain"
	"github.com/mansoorceksport/liftlog/internal/repository"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// library is the default exercise catalogue
var library = []domain.Exercise{
	// Legs
	{Name: "Barbell Squat", MuscleGroup: "Legs", Equipment: "Barbell"},
	{Name: "Front Squat", MuscleGroup: "Legs", Equipment: "Barbell"},
	{Name: "Leg Press", MuscleGroup: "Legs", Equipment: "Machine"},
	{Name: "Romanian Deadlift", MuscleGroup: "Legs (Hamstrings)", Equipment: "Barbell"},
	{Name: "Bulgarian Split Squat", MuscleGroup: "Legs", Equipment: "Dumbbell"},
	{Name: "Walking Lunge", MuscleGroup: "Legs", Equipment: "Bodyweight/Dumbbell"},

	// Chest
	{Name: "Barbell Bench Press", MuscleGroup: "Chest", Equipment: "Barbell"},
	{Name: "Incline Dumbbell Press", MuscleGroup: "Chest", Equipment: "Dumbbell"},
	{Name: "Push Up", MuscleGroup: "Chest", Equipment: "Bodyweight"},
	{Name: "Dips", MuscleGroup: "Chest/Triceps", Equipment: "Bodyweight"},

	// Back
	{Name: "Deadlift", MuscleGroup: "Back/Legs", Equipment: "Barbell"},
	{Name: "Barbell Row", MuscleGroup: "Back", Equipment: "Barbell"},
	{Name: "Pull Up", MuscleGroup: "Back", Equipment: "Bodyweight"},
	{Name: "Lat Pulldown", MuscleGroup: "Back", Equipment: "Cable"},

	// Shoulders and arms
	{Name: "Overhead Press", MuscleGroup: "Shoulders", Equipment: "Barbell"},
	{Name: "Dumbbell Shoulder Press", MuscleGroup: "Shoulders", Equipment: "Dumbbell"},
	{Name: "Barbell Curl", MuscleGroup: "Biceps", Equipment: "Barbell"},
	{Name: "Skullcrusher", MuscleGroup: "Triceps", Equipment: "EZ Bar"},

	// Core
	{Name: "Plank", MuscleGroup: "Core", Equipment: "Bodyweight"},
	{Name: "Hanging Leg Raise", MuscleGroup: "Core", Equipment: "Bodyweight"},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoDB.URI))
	if err != nil {
		logrus.Fatalf("failed to connect to Mongo: %v", err)
	}
	defer client.Disconnect(context.Background())

	repo := repository.NewMongoExerciseRepository(client.Database(cfg.MongoDB.Database))

	created := 0
	for _, ex := range library {
		ex := ex
		if err := repo.Create(ctx, &ex); err != nil {
			if errors.Is(err, domain.ErrDuplicateExercise) {
				fmt.Printf("Skipping duplicate: %s\n", ex.Name)
				continue
			}
			logrus.WithError(err).WithField("exercise", ex.Name).Error("failed to create exercise")
			continue
		}
		created++
		fmt.Printf("Created: %s\n", ex.Name)
	}
	fmt.Printf("Seeding exercises complete: %d created, %d in library.\n", created, len(library))
}
