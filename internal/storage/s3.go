package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// S3Client regroupe les appels utilisés, pour pouvoir les simuler en test.
type S3Client interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type S3Config struct {
	Bucket       string
	Region       string
	AccessKeyID  string
	SecretKey    string
	Endpoint     string
	UsePathStyle bool
	Folder       string
}

type S3Store struct {
	client S3Client
	bucket string
	folder string
}

func NewS3Store(client S3Client, bucket, folder string) *S3Store {
	return &S3Store{client: client, bucket: bucket, folder: folder}
}

// InitS3 construit le client à partir des identifiants statiques de la config.
func InitS3(ctx context.Context, cfg S3Config) (*S3Store, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" && cfg.SecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretKey,
			"",
		)))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("chargement config AWS: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})
	return NewS3Store(client, cfg.Bucket, cfg.Folder), nil
}

func (s *S3Store) key(id string) string {
	if s.folder == "" {
		return id
	}
	return s.folder + "/" + id
}

// Put utilise le nom unique comme identifiant.
func (s *S3Store) Put(ctx context.Context, data []byte, meta Metadata) (string, error) {
	if err := checkID(meta.Name); err != nil {
		return "", err
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s.key(meta.Name)),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(meta.ContentType),
		ContentLength: aws.Int64(int64(len(data))),
		Metadata: map[string]string{
			"filename":    meta.Filename,
			"upload-date": meta.UploadedAt.UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		return "", fmt.Errorf("upload échoué: %w", err)
	}
	return meta.Name, nil
}

func (s *S3Store) Delete(ctx context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(id)),
	})
	if err != nil {
		if isS3NotFound(err) {
			return ErrBlobNotFound
		}
		return fmt.Errorf("erreur suppression S3 : %w", err)
	}
	return nil
}

func (s *S3Store) Open(ctx context.Context, id string) (io.ReadCloser, Metadata, error) {
	if err := checkID(id); err != nil {
		return nil, Metadata{}, ErrBlobNotFound
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(id)),
	})
	if err != nil {
		if isS3NotFound(err) {
			return nil, Metadata{}, ErrBlobNotFound
		}
		return nil, Metadata{}, fmt.Errorf("lecture S3: %w", err)
	}

	meta := Metadata{
		Name:        id,
		Filename:    out.Metadata["filename"],
		ContentType: aws.ToString(out.ContentType),
		Size:        aws.ToInt64(out.ContentLength),
	}
	if ts, err := time.Parse(time.RFC3339, out.Metadata["upload-date"]); err == nil {
		meta.UploadedAt = ts
	}
	return out.Body, meta, nil
}

func isS3NotFound(err error) bool {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		return code == "NoSuchKey" || code == "NotFound"
	}
	return false
}
