package filesystem

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xilidan/transcriber/services/asr/entity"
	"github.com/xilidan/transcriber/services/asr/storage"
)

type TextStore struct {
	dir string
}

func NewTextStore(dir string) (*TextStore, error) {
	if _, err := EnsureDir(dir); err != nil {
		return nil, err
	}
	return &TextStore{dir: dir}, nil
}

func (s *TextStore) textPath(id string) string { return filepath.Join(s.dir, id+textExt) }
func (s *TextStore) namePath(id string) string { return filepath.Join(s.dir, id+nameExt) }

func checkID(id string) error {
	if !storage.ValidID(id) {
		return fmt.Errorf("transcript id %q: %w", id, entity.ErrInvalidRequest)
	}
	return nil
}

func (s *TextStore) SaveText(ctx context.Context, id, text string) error {
	if err := checkID(id); err != nil {
		return err
	}
	if err := writeFileAtomic(s.textPath(id), []byte(text)); err != nil {
		return fmt.Errorf("failed to save transcript %s: %w", id, err)
	}
	return nil
}

func (s *TextStore) SaveCustomName(ctx context.Context, id, name string) error {
	if err := checkID(id); err != nil {
		return err
	}
	if err := writeFileAtomic(s.namePath(id), []byte(name)); err != nil {
		return fmt.Errorf("failed to save custom name %s: %w", id, err)
	}
	return nil
}

func (s *TextStore) ReadText(ctx context.Context, id string) (string, error) {
	if err := checkID(id); err != nil {
		return "", err
	}
	data, err := os.ReadFile(s.textPath(id))
	if errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("transcript %s: %w", id, entity.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read transcript %s: %w", id, err)
	}
	return string(data), nil
}

func (s *TextStore) ReadCustomName(ctx context.Context, id string) (string, bool, error) {
	if err := checkID(id); err != nil {
		return "", false, err
	}
	data, err := os.ReadFile(s.namePath(id))
	if errors.Is(err, os.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read custom name %s: %w", id, err)
	}
	return string(data), true, nil
}

func (s *TextStore) Exists(ctx context.Context, id string) (bool, error) {
	if err := checkID(id); err != nil {
		return false, err
	}
	_, err := os.Stat(s.textPath(id))
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to stat transcript %s: %w", id, err)
	}
	return true, nil
}

func (s *TextStore) ModTime(ctx context.Context, id string) (time.Time, error) {
	if err := checkID(id); err != nil {
		return time.Time{}, err
	}
	info, err := os.Stat(s.textPath(id))
	if errors.Is(err, os.ErrNotExist) {
		return time.Time{}, fmt.Errorf("transcript %s: %w", id, entity.ErrNotFound)
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to stat transcript %s: %w", id, err)
	}
	return info.ModTime(), nil
}
