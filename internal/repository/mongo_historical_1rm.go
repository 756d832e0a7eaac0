package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/mansoorceksport/liftlog/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// historical1RMDocument is the single document holding the whole index
type historical1RMDocument struct {
	ID        string                           `bson:"_id"`
	Records   map[string]*domain.Best1RmRecord `bson:"records"`
	UpdatedAt time.Time                        `bson:"updated_at"`
}

// MongoHistorical1RMStore keeps the historical 1RM index as one document in derived_aggregates
type MongoHistorical1RMStore struct {
	collection *mongo.Collection
	key        string
}

func NewMongoHistorical1RMStore(db *mongo.Database, key string) *MongoHistorical1RMStore {
	return &MongoHistorical1RMStore{
		collection: db.Collection("derived_aggregates"),
		key:        key,
	}
}

func (r *MongoHistorical1RMStore) Load(ctx context.Context) (domain.Historical1RMIndex, error) {
	res := r.collection.FindOne(ctx, bson.M{"_id": r.key})
	if err := res.Err(); err != nil {
		if err == mongo.ErrNoDocuments {
			return domain.Historical1RMIndex{}, nil
		}
		return nil, fmt.Errorf("failed to load historical 1RM document: %w", err)
	}

	var doc historical1RMDocument
	if err := res.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCorruptIndex, err)
	}
	if doc.Records == nil {
		return domain.Historical1RMIndex{}, nil
	}
	return domain.Historical1RMIndex(doc.Records), nil
}

// Save replaces the whole document in a single write
func (r *MongoHistorical1RMStore) Save(ctx context.Context, idx domain.Historical1RMIndex) error {
	doc := historical1RMDocument{
		ID:        r.key,
		Records:   idx,
		UpdatedAt: time.Now(),
	}
	if doc.Records == nil {
		doc.Records = map[string]*domain.Best1RmRecord{}
	}

	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": r.key}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to save historical 1RM document: %w", err)
	}
	return nil
}

func (r *MongoHistorical1RMStore) Clear(ctx context.Context) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": r.key})
	return err
}
