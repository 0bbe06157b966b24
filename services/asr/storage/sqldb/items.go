package sqldb

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/xilidan/transcriber/services/asr/entity"
	"github.com/xilidan/transcriber/services/asr/storage"
)

type ItemStore struct {
	db      *sql.DB
	dialect Dialect
	now     storage.Clock
}

func NewItemStore(db *sql.DB, dialect Dialect, now storage.Clock) *ItemStore {
	if now == nil {
		now = time.Now
	}
	return &ItemStore{db: db, dialect: dialect, now: now}
}

func (s *ItemStore) SaveItem(ctx context.Context, id string, item entity.Item) (entity.Item, error) {
	if !storage.ValidID(id) {
		return nil, fmt.Errorf("item id %q: %w", id, entity.ErrInvalidRequest)
	}

	var previous string
	err := s.db.QueryRowContext(ctx,
		s.dialect.rebind(`SELECT server_modified FROM history_items WHERE id = ?`), id,
	).Scan(&previous)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to read history item %s: %w", id, err)
	}

	stored := storage.Stamp(item, entity.Item{entity.FieldServerModified: previous}, s.now())

	payload, err := json.Marshal(stored)
	if err != nil {
		return nil, fmt.Errorf("failed to encode history item: %w", err)
	}

	_, err = s.db.ExecContext(ctx, s.dialect.rebind(`
		INSERT INTO history_items (id, payload, server_modified) VALUES (?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET payload = excluded.payload, server_modified = excluded.server_modified`),
		id, string(payload), stored.ServerModified(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to save history item %s: %w", id, err)
	}

	return stored, nil
}

func (s *ItemStore) LoadItem(ctx context.Context, id string) (entity.Item, bool, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		s.dialect.rebind(`SELECT payload FROM history_items WHERE id = ?`), id,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read history item %s: %w", id, err)
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(payload)))
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
