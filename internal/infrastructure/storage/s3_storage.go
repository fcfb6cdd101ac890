package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/LavaJover/shvark-donation-service/internal/config"
	"github.com/LavaJover/shvark-donation-service/internal/domain"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3Storage stores receipts in an S3 compatible bucket instead of the local
// disk, for deployments running more than one replica.
type S3Storage struct {
	client    *minio.Client
	bucket    string
	retention time.Duration
	newToken  func() string

	ensureOnce sync.Once
	ensureErr  error
}

func NewS3Client(cfg config.ObjectStorage) (*minio.Client, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create s3 client: %w", err)
	}
	return client, nil
}

func NewS3Storage(client *minio.Client, bucket string, retention time.Duration) (*S3Storage, error) {
	gen, err := newTokenGenerator()
	if err != nil {
		return nil, err
	}
	return &S3Storage{
		client:    client,
		bucket:    strings.TrimSpace(bucket),
		retention: retention,
		newToken:  gen,
	}, nil
}

func (s *S3Storage) EnsureBucket(ctx context.Context) error {
	if s.client == nil {
		return fmt.Errorf("s3 client is nil")
	}
	if s.bucket == "" {
		return fmt.Errorf("s3 bucket is empty")
	}

	s.ensureOnce.Do(func() {
		exists, err := s.client.BucketExists(ctx, s.bucket)
		if err != nil {
			s.ensureErr = err
			return
		}
		if exists {
			return
		}
		s.ensureErr = s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{})
	})

	if s.ensureErr != nil {
		return fmt.Errorf("ensure s3 bucket %q: %w", s.bucket, s.ensureErr)
	}
	return nil
}

// Save uploads the PDF under a fresh token. Unlike FileStorage it does not
// sweep on every write: listing a shared bucket per request would be costly,
// so expired objects go on the periodic Cleanup tick.
func (s *S3Storage) Save(ctx context.Context, data []byte) (string, error) {
	if err := s.EnsureBucket(ctx); err != nil {
		return "", err
	}

	token := s.newToken()
	_, err := s.client.PutObject(ctx, s.bucket, objectName(token), bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/pdf",
	})
	if err != nil {
		return "", fmt.Errorf("put object to s3: %w", err)
	}
	return token, nil
}

func (s *S3Storage) Open(ctx context.Context, token string) (io.ReadCloser, error) {
	if !validToken(token) {
		return nil, domain.ErrReceiptFileNotFound
	}

	obj, err := s.client.GetObject(ctx, s.bucket, objectName(token), minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get object: %w", err)
	}
	// GetObject is lazy; Stat surfaces a missing key.
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, domain.ErrReceiptFileNotFound
		}
		return nil, fmt.Errorf("stat object: %w", err)
	}
	return obj, nil
}

func (s *S3Storage) Cleanup(ctx context.Context) (int, error) {
	if s.retention <= 0 {
		return 0, nil
	}
	if err := s.EnsureBucket(ctx); err != nil {
		return 0, err
	}

	cutoff := time.Now().Add(-s.retention)
	removed := 0
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{}) {
		if obj.Err != nil {
			return removed, fmt.Errorf("list objects: %w", obj.Err)
		}
		if !strings.HasSuffix(obj.Key, ".pdf") || !obj.LastModified.Before(cutoff) {
			continue
		}
		if err := s.client.RemoveObject(ctx, s.bucket, obj.Key, minio.RemoveObjectOptions{}); err != nil {
			return removed, fmt.Errorf("delete object: %w", err)
		}
		removed++
	}
	return removed, nil
}
