package post

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const collectionName = "posts"

type MongoStore struct {
	coll *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{coll: db.Collection(collectionName)}
}

// EnsureIndexes crée les index utilisés par Find.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("index posts: %w", err)
	}
	return nil
}

// Les valeurs passent par $eq : une chaîne ne peut pas devenir un opérateur.
func toBSON(f Filter) bson.D {
	filter := bson.D{}
	if f.ID != "" {
		filter = append(filter, bson.E{Key: "_id", Value: bson.D{{Key: "$eq", Value: f.ID}}})
	}
	if f.Owner != "" {
		filter = append(filter, bson.E{Key: "user_id", Value: bson.D{{Key: "$eq", Value: f.Owner}}})
	}
	return filter
}

func (s *MongoStore) Find(ctx context.Context, f Filter) ([]Post, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.coll.Find(ctx, toBSON(f), opts)
	if err != nil {
		return nil, fmt.Errorf("lecture des posts: %w", err)
	}
	posts := []Post{}
	if err := cur.All(ctx, &posts); err != nil {
		return nil, fmt.Errorf("lecture des posts: %w", err)
	}
	return posts, nil
}

func (s *MongoStore) InsertOne(ctx context.Context, p *Post) (string, error) {
	if _, err := s.coll.InsertOne(ctx, p); err != nil {
		return "", fmt.Errorf("insertion du post: %w", err)
	}
	return p.ID, nil
}

func (s *MongoStore) UpdateOne(ctx context.Context, f Filter, patch Patch) (int64, error) {
	if f.IsZero() {
		return 0, ErrEmptyFilter
	}
	set := bson.D{}
	if patch.Content != nil {
		set = append(set, bson.E{Key: "content", Value: *patch.Content})
	}
	if len(set) == 0 {
		return 0, nil
	}

	res, err := s.coll.UpdateOne(ctx, toBSON(f), bson.D{{Key: "$set", Value: set}})
	if err != nil {
		return 0, fmt.Errorf("mise à jour du post: %w", err)
	}
	return res.MatchedCount, nil
}

func (s *MongoStore) DeleteOne(ctx context.Context, f Filter) (int64, error) {
	if f.IsZero() {
		return 0, ErrEmptyFilter
	}
	res, err := s.coll.DeleteOne(ctx, toBSON(f))
	if err != nil {
		return 0, fmt.Errorf("suppression du post: %w", err)
	}
	return res.DeletedCount, nil
}
