package usecase

import (
	"context"
	"log/slog"

	"github.com/xilidan/transcriber/pkg/logger"
	"github.com/xilidan/transcriber/services/asr/entity"
	"github.com/xilidan/transcriber/services/asr/storage"
)

func (u *usecase) Sync(ctx context.Context, batch []any) (*entity.SyncResponse, error) {
	log := logger.FromContext(ctx)

	synced := make([]entity.Item, 0, len(batch))
	skipped := 0

	for _, raw := range batch {
		item, ok := clientItem(raw)
		if !ok {
			skipped++
			continue
		}

		result, err := u.syncItem(ctx, item)
		if err != nil {
			log.Error("history sync failed",
				slog.String("file_id", item.ID()),
				slog.String("error", err.Error()),
			)
			return nil, err
		}
		synced = append(synced, result)
	}

	log.Info("history synced",
		slog.Int("received", len(batch)),
		slog.Int("synced", len(synced)),
		slog.Int("skipped", skipped),
	)

	return &entity.SyncResponse{SyncedItems: synced}, nil
}

func clientItem(raw any) (entity.Item, bool) {
	var item entity.Item
	switch v := raw.(type) {
	case map[string]any:
		item = entity.Item(v)
	case entity.Item:
		item = v
	default:
		return nil, false
	}

	id, _ := item[entity.FieldID].(string)
	if !storage.ValidID(id) {
		return nil, false
	}
	return item, true
}

func (u *usecase) syncItem(ctx context.Context, item entity.Item) (entity.Item, error) {
	id := item.ID()

	unlock := u.locker.Lock(id)
	defer unlock()

	exists, err := u.texts.Exists(ctx, id)
	if err != nil {
		return nil, err
	}

	if exists {
		existing, _, err := u.items.LoadItem(ctx, id)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			existing = entity.Item{}
		}

		return u.items.SaveItem(ctx, id, existing.Merge(item))
	}

	// unknown id: the client copy is the only one left, take it as is
	if text := item.Text(); text != "" {
		if err := u.texts.SaveText(ctx, id, text); err != nil {
			return nil, err
		}
	}
	if name := item.Filename(); name != "" {
		if err := u.texts.SaveCustomName(ctx, id, name); err != nil {
			return nil, err
		}
	}
	if _, err := u.items.SaveItem(ctx, id, item); err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("history item recovered from client",
		slog.String("file_id", id),
		slog.Bool("has_text", item.Text() != ""),
	)
	return item, nil
}
