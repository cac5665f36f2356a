package database

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

var ErrMongoNotReady = errors.New("mongodb not ready")

const (
	connectAttempts = 3
	retryInterval   = 2 * time.Second
)

// ConnectMongo ouvre le client et vérifie la connexion par un ping.
func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	var lastErr error
	for range connectAttempts {
		client, err := mongo.Connect(
			options.Client().
				ApplyURI(uri).
				SetConnectTimeout(10 * time.Second).
				SetRetryWrites(true).
				SetRetryReads(true),
		)
		if err != nil {
			return nil, errors.Join(ErrMongoNotReady, err)
		}
		if lastErr = client.Ping(ctx, nil); lastErr == nil {
			return client, nil
		}
		_ = client.Disconnect(ctx)

		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrMongoNotReady, ctx.Err())
		case <-time.After(retryInterval):
		}
	}
	return nil, errors.Join(ErrMongoNotReady, lastErr)
}
