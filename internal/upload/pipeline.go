// Package upload enchaîne la validation d'un fichier et son enregistrement.
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"time"

	"github.com/ArthurDelaporte/OnlyFeed-Posts/internal/apperr"
	"github.com/ArthurDelaporte/OnlyFeed-Posts/internal/logs"
	"github.com/ArthurDelaporte/OnlyFeed-Posts/internal/media"
	"github.com/ArthurDelaporte/OnlyFeed-Posts/internal/storage"
)

// Attachment est la référence renvoyée après un upload réussi.
type Attachment struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `json:"created_at"`
}

type Pipeline struct {
	validator *media.Validator
	blobs     storage.BlobStore
	now       func() time.Time
}

func NewPipeline(validator *media.Validator, blobs storage.BlobStore) *Pipeline {
	return &Pipeline{
		validator: validator,
		blobs:     blobs,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Upload : taille annoncée, lecture bornée, fichier vide, extension, nom unique,
// type réel, puis écriture. Rien n'est écrit avant la dernière étape.
func (p *Pipeline) Upload(ctx context.Context, fh *multipart.FileHeader) (*Attachment, error) {
	if fh == nil {
		return nil, apperr.New(apperr.MissingFields)
	}

	if fh.Size > p.validator.MaxBytes() {
		logs.LogJSON("WARN", "File upload rejected: size exceeds limit", map[string]interface{}{
			"size": fh.Size,
			"max":  p.validator.MaxBytes(),
		})
		return nil, apperr.New(apperr.FileTooLarge)
	}

	data, err := readLimited(fh, p.validator.MaxBytes())
	if err != nil {
		return nil, apperr.Wrap(apperr.InvalidInput, err)
	}

	if err := p.validator.CheckSize(int64(len(data))); err != nil {
		logs.LogJSON("WARN", "File upload rejected", map[string]interface{}{
			"reason": string(apperr.KindOf(err)),
			"size":   len(data),
		})
		return nil, err
	}

	filename := media.SecureFilename(fh.Filename)
	if !p.validator.CheckExtension(filename) {
		logs.LogJSON("WARN", "File upload rejected: invalid extension", map[string]interface{}{
			"filename": filename,
		})
		return nil, apperr.New(apperr.FileTypeNotAllowed)
	}

	uniqueName := media.UniqueName(filename)

	ok, detected := p.validator.CheckContent(data)
	if !ok {
		logs.LogJSON("WARN", "File upload rejected: invalid MIME type", map[string]interface{}{
			"filename": filename,
			"mime":     detected,
		})
		return nil, apperr.New(apperr.InvalidFileType)
	}

	createdAt := p.now()
	id, err := p.blobs.Put(ctx, data, storage.Metadata{
		Name:        uniqueName,
		Filename:    filename,
		ContentType: detected,
		Size:        int64(len(data)),
		UploadedAt:  createdAt,
	})
	if err != nil {
		logs.LogJSON("ERROR", "File upload failed", map[string]interface{}{
			"filename": filename,
			"error":    err.Error(),
		})
		return nil, apperr.Wrap(apperr.PostCreationFailed, err)
	}

	logs.LogJSON("INFO", "File uploaded", map[string]interface{}{
		"filename": filename,
		"mime":     detected,
		"id":       id,
	})

	return &Attachment{
		ID:          id,
		Filename:    filename,
		ContentType: detected,
		Size:        int64(len(data)),
		CreatedAt:   createdAt,
	}, nil
}

// readLimited lit au plus max+1 octets : un octet de trop suffit à détecter
// un fichier dont la taille annoncée était fausse.
func readLimited(fh *multipart.FileHeader, max int64) ([]byte, error) {
	file, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("ouverture du fichier: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, max+1))
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("lecture du fichier: %w", err)
	}
	return data, nil
}
