package filesystem

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xilidan/transcriber/pkg/logger"
	"github.com/xilidan/transcriber/services/asr/entity"
	"github.com/xilidan/transcriber/services/asr/storage"
)

type ItemStore struct {
	dir string
	now storage.Clock
}

func NewItemStore(dir string, now storage.Clock) (*ItemStore, error) {
	if _, err := EnsureDir(dir); err != nil {
		return nil, err
	}
	if now == nil {
		now = time.Now
	}
	return &ItemStore{dir: dir, now: now}, nil
}

func (s *ItemStore) path(id string) string {
	return filepath.Join(s.dir, id+itemExt)
}

func (s *ItemStore) SaveItem(ctx context.Context, id string, item entity.Item) (entity.Item, error) {
	if !storage.ValidID(id) {
		return nil, fmt.Errorf("item id %q: %w", id, entity.ErrInvalidRequest)
	}

	previous, _, err := s.LoadItem(ctx, id)
	if err != nil {
		logger.FromContext(ctx).Warn("previous history item unreadable, overwriting",
			"file_id", id, "error", err)
		previous = nil
	}

	stored := storage.Stamp(item, previous, s.now())

	data, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode history item: %w", err)
	}
	if err := writeFileAtomic(s.path(id), data); err != nil {
		return nil, fmt.Errorf("failed to save history item %s: %w", id, err)
	}

	return stored, nil
}

func (s *ItemStore) LoadItem(ctx context.Context, id string) (entity.Item, bool, error) {
	if !storage.ValidID(id) {
		return nil, false, fmt.Errorf("item id %q: %w", id, entity.ErrInvalidRequest)
	}

	data, err := os.ReadFile(s.path(id))
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read history item %s: %w", id, err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var item entity.Item
	if err := dec.Decode(&item); err != nil {
		return nil, false, fmt.Errorf("failed to decode history item %s: %w", id, err)
	}
	if item == nil {
		item = entity.Item{}
	}

	return item, true, nil
}
