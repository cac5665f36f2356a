package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type gridFSMetadata struct {
	Filename    string    `bson:"filename"`
	ContentType string    `bson:"content_type"`
	UploadDate  time.Time `bson:"upload_date"`
}

// GridFSStore range les pièces jointes dans un bucket GridFS ; l'identifiant
// est l'ObjectID hexadécimal du fichier.
type GridFSStore struct {
	bucket *mongo.GridFSBucket
}

func NewGridFSStore(db *mongo.Database, bucketName string) *GridFSStore {
	return &GridFSStore{
		bucket: db.GridFSBucket(options.GridFSBucket().SetName(bucketName)),
	}
}

func (g *GridFSStore) Put(ctx context.Context, data []byte, meta Metadata) (string, error) {
	opts := options.GridFSUpload().SetMetadata(gridFSMetadata{
		Filename:    meta.Filename,
		ContentType: meta.ContentType,
		UploadDate:  meta.UploadedAt.UTC(),
	})

	id, err := g.bucket.UploadFromStream(ctx, meta.Name, bytes.NewReader(data), opts)
	if err != nil {
		return "", fmt.Errorf("upload GridFS: %w", err)
	}
	return id.Hex(), nil
}

func (g *GridFSStore) Delete(ctx context.Context, id string) error {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return ErrInvalidID
	}

	if err := g.bucket.Delete(ctx, oid); err != nil {
		if errors.Is(err, mongo.ErrFileNotFound) {
			return ErrBlobNotFound
		}
		return fmt.Errorf("suppression GridFS: %w", err)
	}
	return nil
}

func (g *GridFSStore) Open(ctx context.Context, id string) (io.ReadCloser, Metadata, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, Metadata{}, ErrBlobNotFound
	}

	stream, err := g.bucket.OpenDownloadStream(ctx, oid)
	if err != nil {
		if errors.Is(err, mongo.ErrFileNotFound) {
			return nil, Metadata{}, ErrBlobNotFound
		}
		return nil, Metadata{}, fmt.Errorf("lecture GridFS: %w", err)
	}

	file := stream.GetFile()
	meta := Metadata{Name: file.Name, Size: file.Length, UploadedAt: file.UploadDate}

	var extra gridFSMetadata
	if len(file.Metadata) > 0 {
		if err := bson.Unmarshal(file.Metadata, &extra); err == nil {
			meta.Filename = extra.Filename
			meta.ContentType = extra.ContentType
		}
	}
	return stream, meta, nil
}
