package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/LavaJover/shvark-donation-service/internal/domain"
	"go.uber.org/zap"
)

// FileStorage keeps receipts as <token>.pdf in a local directory. Files older
// than the retention window are removed on every save.
type FileStorage struct {
	dir       string
	retention time.Duration
	newToken  func() string
	now       func() time.Time
	log       *zap.Logger
}

func NewFileStorage(dir string, retention time.Duration, log *zap.Logger) (*FileStorage, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create receipt dir %q: %w", dir, err)
	}
	gen, err := newTokenGenerator()
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &FileStorage{
		dir:       dir,
		retention: retention,
		newToken:  gen,
		now:       time.Now,
		log:       log,
	}, nil
}

func (s *FileStorage) Save(ctx context.Context, data []byte) (string, error) {
	if removed, err := s.Cleanup(ctx); err != nil {
		s.log.Warn("receipt cleanup failed", zap.Error(err))
	} else if removed > 0 {
		s.log.Info("expired receipts removed", zap.Int("count", removed))
	}

	token := s.newToken()
	path := filepath.Join(s.dir, objectName(token))
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("write receipt file: %w", err)
	}
	return token, nil
}

func (s *FileStorage) Open(_ context.Context, token string) (io.ReadCloser, error) {
	if !validToken(token) {
		return nil, domain.ErrReceiptFileNotFound
	}
	f, err := os.Open(filepath.Join(s.dir, objectName(token)))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.ErrReceiptFileNotFound
		}
		return nil, fmt.Errorf("open receipt file: %w", err)
	}
	return f, nil
}

func (s *FileStorage) Cleanup(ctx context.Context) (int, error) {
	if s.retention <= 0 {
		return 0, nil
	}
	paths, err := filepath.Glob(filepath.Join(s.dir, "*.pdf"))
	if err != nil {
		return 0, err
	}

	cutoff := s.now().Add(-s.retention)
	removed := 0
	for _, path := range paths {
		if ctx.Err() != nil {
			return removed, ctx.Err()
		}
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(path); err == nil {
				removed++
			}
		}
	}
	return removed, nil
}
