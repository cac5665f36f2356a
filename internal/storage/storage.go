// Package storage stocke les pièces jointes (S3 ou GridFS).
package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"
)

var (
	ErrBlobNotFound = errors.New("blob introuvable")
	ErrInvalidID    = errors.New("identifiant de blob invalide")
)

// Metadata accompagne chaque blob. Name est le nom unique de stockage,
// Filename le nom d'origine nettoyé.
type Metadata struct {
	Name        string
	Filename    string
	ContentType string
	Size        int64
	UploadedAt  time.Time
}

// BlobStore est le contrat attendu par le pipeline d'upload et le cycle de vie des posts.
type BlobStore interface {
	Put(ctx context.Context, data []byte, meta Metadata) (string, error)
	Delete(ctx context.Context, id string) error
	Open(ctx context.Context, id string) (io.ReadCloser, Metadata, error)
}

func checkID(id string) error {
	if id == "" || strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return ErrInvalidID
	}
	return nil
}
