package persistence

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"workly-web/internal/session/domain/repository"
	apperrors "workly-web/internal/shared/errors"
	"workly-web/internal/shared/logger"

	"go.uber.org/zap"
)

var _ repository.SessionStorage = (*FileStorage)(nil)

// FileStorage writes one JSON file per key. Writes go to a temp file in the
// same directory and are renamed into place.
type FileStorage struct {
	dir    string
	logger logger.Logger
}

// NewFileStorage creates dir if needed.
func NewFileStorage(dir string, log logger.Logger) (*FileStorage, error) {
	if dir == "" {
		return nil, errors.New("session file directory cannot be empty")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create session directory %s: %w", dir, err)
	}
	if log == nil {
		log = logger.Default()
	}
	return &FileStorage{dir: dir, logger: log.WithComponent("session_file_storage")}, nil
}

// path maps key to a file name that is safe on every filesystem.
func (s *FileStorage) path(key string) string {
	return filepath.Join(s.dir, base64.RawURLEncoding.EncodeToString([]byte(key))+".json")
}

func (s *FileStorage) Load(ctx context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrSessionNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session %s: %w", key, err)
	}
	return data, nil
}

func (s *FileStorage) Save(ctx context.Context, key string, data []byte) error {
	tmp, err := os.CreateTemp(s.dir, ".session-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file for session %s: %w", key, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write session %s: %w", key, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to sync session %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close session %s: %w", key, err)
	}
	if err := os.Rename(tmpName, s.path(key)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace session %s: %w", key, err)
	}

	s.logger.WithFields(logger.ZapFields(zap.String("key", key), zap.Int("bytes", len(data)))).Debug("Session saved")
	return nil
}

func (s *FileStorage) Remove(ctx context.Context, key string) error {
	err := os.Remove(s.path(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove session %s: %w", key, err)
	}
	return nil
}
