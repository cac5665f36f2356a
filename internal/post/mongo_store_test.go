package post

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

func TestToBSONUsesEq(t *testing.T) {
	assert.Equal(t, bson.D{}, toBSON(Filter{}))

	got := toBSON(OwnedBy("p1", "user-a"))
	assert.Equal(t, bson.D{
		{Key: "_id", Value: bson.D{{Key: "$eq", Value: "p1"}}},
		{Key: "user_id", Value: bson.D{{Key: "$eq", Value: "user-a"}}},
	}, got)
}

// Nécessite une instance MongoDB : MONGODB_TEST_URL=mongodb://localhost:27017
func TestMongoStoreOwnership(t *testing.T) {
	url := os.Getenv("MONGODB_TEST_URL")
	if url == "" {
		t.Skip("MONGODB_TEST_URL non défini")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := mongo.Connect(options.Client().ApplyURI(url))
	require.NoError(t, err)
	defer func() { _ = client.Disconnect(ctx) }()

	db := client.Database("onlyfeed_posts_store_test")
	defer func() { _ = db.Drop(ctx) }()

	store := NewMongoStore(db)
	require.NoError(t, store.EnsureIndexes(ctx))

	now := time.Now().UTC().Truncate(time.Millisecond)
	for i, owner := range []string{"user-a", "user-b"} {
		_, err := store.InsertOne(ctx, &Post{
			ID:        "p" + owner,
			UserID:    owner,
			Content:   EncodeContent("hello"),
			CreatedAt: now.Add(time.Duration(i) * time.Minute),
			Likes:     pq.StringArray{},
			Comments:  Comments{},
		})
		require.NoError(t, err)
	}

	all, err := store.Find(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "puser-b", all[0].ID)

	content := EncodeContent("hijack")
	matched, err := store.UpdateOne(ctx, OwnedBy("puser-a", "user-b"), Patch{Content: &content})
	require.NoError(t, err)
	assert.Zero(t, matched)

	deleted, err := store.DeleteOne(ctx, OwnedBy("puser-a", "user-b"))
	require.NoError(t, err)
	assert.Zero(t, deleted)

	deleted, err = store.DeleteOne(ctx, OwnedBy("puser-a", "user-a"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
}
