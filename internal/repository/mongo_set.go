package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/mansoorceksport/liftlog/internal/domain"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoSetRepository struct {
	collection *mongo.Collection
}

func NewMongoSetRepository(db *mongo.Database) *MongoSetRepository {
	coll := db.Collection("set_logs")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "workout_id", Value: 1}}},
		{Keys: bson.D{{Key: "exercise_id", Value: 1}}},
	}); err != nil {
		logrus.WithError(err).WithField("collection", "set_logs").Warn("failed to create indexes")
	}

	return &MongoSetRepository{
		collection: coll,
	}
}

// GetAll returns every set in _id order, which is insertion order for ObjectIDs
func (r *MongoSetRepository) GetAll(ctx context.Context) ([]*domain.Set, error) {
	return r.find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
}

func (r *MongoSetRepository) GetByWorkoutID(ctx context.Context, workoutID string) ([]*domain.Set, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "exercise_order", Value: 1},
		{Key: "set_index", Value: 1},
	})
	return r.find(ctx, bson.M{"workout_id": workoutID}, opts)
}

func (r *MongoSetRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*domain.Set, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	sets := []*domain.Set{}
	if err := cursor.All(ctx, &sets); err != nil {
		return nil, err
	}
	return sets, nil
}

func (r *MongoSetRepository) CreateMany(ctx context.Context, sets []*domain.Set) error {
	if len(sets) == 0 {
		return nil
	}

	now := time.Now()
	docs := make([]interface{}, len(sets))
	for i, set := range sets {
		set.CreatedAt = now
		docs[i] = set
	}

	result, err := r.collection.InsertMany(ctx, docs)
	if err != nil {
		return fmt.Errorf("failed to create sets: %w", err)
	}

	for i, id := range result.InsertedIDs {
		if oid, ok := id.(primitive.ObjectID); ok {
			sets[i].ID = oid.Hex()
		}
	}
	return nil
}

func (r *MongoSetRepository) ReplaceForWorkout(ctx context.Context, workoutID string, sets []*domain.Set) (domain.SetsReplaced, error) {
	if err := r.DeleteByWorkoutID(ctx, workoutID); err != nil {
		return domain.SetsReplaced{}, err
	}
	if err := r.CreateMany(ctx, sets); err != nil {
		return domain.SetsReplaced{}, err
	}
	return domain.SetsReplaced{
		WorkoutID:   workoutID,
		SetCount:    len(sets),
		CommittedAt: time.Now(),
	}, nil
}

func (r *MongoSetRepository) DeleteByWorkoutID(ctx context.Context, workoutID string) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"workout_id": workoutID})
	return err
}

func (r *MongoSetRepository) DeleteByExerciseID(ctx context.Context, exerciseID string) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"exercise_id": exerciseID})
	return err
}
