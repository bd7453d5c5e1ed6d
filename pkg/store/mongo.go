package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore persists runs in a MongoDB collection.
type MongoStore struct {
	client *mongo.Client
	runs   *mongo.Collection
}

// MongoConfig holds the connection settings for a Mongo store.
type MongoConfig struct {
	URI        string // e.g. "mongodb://localhost:27017"
	Database   string // defaults to "factortree"
	Collection string // defaults to "runs"
}

// NewMongoStore connects to MongoDB and verifies the connection.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	if cfg.Database == "" {
		cfg.Database = "factortree"
	}
	if cfg.Collection == "" {
		cfg.Collection = "runs"
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return &MongoStore{
		client: client,
		runs:   client.Database(cfg.Database).Collection(cfg.Collection),
	}, nil
}

// Put stores a run, overwriting any run with the same ID.
func (s *MongoStore) Put(ctx context.Context, run Run) error {
	opts := options.Replace().SetUpsert(true)
	_, err := s.runs.ReplaceOne(ctx, bson.M{"_id": run.ID}, run, opts)
	return err
}

// Get retrieves a run by ID.
func (s *MongoStore) Get(ctx context.Context, id string) (*Run, error) {
	var run Run
	err := s.runs.FindOne(ctx, bson.M{"_id": id}).Decode(&run)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// List returns up to limit runs, newest first.
func (s *MongoStore) List(ctx context.Context, limit int) ([]Run, error) {
	findOpts := options.Find().SetSort(bson.M{"created_at": -1})
	if limit > 0 {
		findOpts.SetLimit(int64(limit))
	}
	cur, err := s.runs.Find(ctx, bson.M{}, findOpts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []Run
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Close disconnects the client.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Ensure MongoStore implements Store.
var _ Store = (*MongoStore)(nil)
