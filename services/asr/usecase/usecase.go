package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/xilidan/transcriber/pkg/gen"
	"github.com/xilidan/transcriber/pkg/logger"
	"github.com/xilidan/transcriber/services/asr/consts"
	"github.com/xilidan/transcriber/services/asr/entity"
	"github.com/xilidan/transcriber/services/asr/media"
	"github.com/xilidan/transcriber/services/asr/storage"
	"github.com/xilidan/transcriber/services/asr/transcribe"
)

type Usecase interface {
	Upload(ctx context.Context, req *entity.UploadRequest, file io.Reader) (*entity.UploadResponse, error)
	Save(ctx context.Context, req *entity.SaveRequest) (*entity.SaveResponse, error)
	ExportText(ctx context.Context, id string) (*entity.Export, error)
	ExportDocx(ctx context.Context, id string) (*entity.Export, error)
	GetHistory(ctx context.Context, id string) (entity.Item, error)
	// Sync reconciles a client batch; entries that are not objects with a
	// usable id are skipped.
	Sync(ctx context.Context, batch []any) (*entity.SyncResponse, error)
}

type Params struct {
	Items      storage.ItemStore
	Texts      storage.TextStore
	Engine     transcribe.Engine
	Normalizer media.Normalizer
	UploadDir  string

	// optional
	Locker *storage.Locker
	IDs    gen.UUIDGenerator
	Now    storage.Clock
}

type usecase struct {
	items      storage.ItemStore
	texts      storage.TextStore
	engine     transcribe.Engine
	normalizer media.Normalizer
	uploadDir  string

	locker *storage.Locker
	ids    gen.UUIDGenerator
	now    storage.Clock
}

func New(p Params) Usecase {
	u := &usecase{
		items:      p.Items,
		texts:      p.Texts,
		engine:     p.Engine,
		normalizer: p.Normalizer,
		uploadDir:  p.UploadDir,
		locker:     p.Locker,
		ids:        p.IDs,
		now:        p.Now,
	}
	if u.locker == nil {
		u.locker = storage.NewLocker()
	}
	if u.ids == nil {
		u.ids = gen.UUID()
	}
	if u.now == nil {
		u.now = time.Now
	}
	return u
}

func (u *usecase) Save(ctx context.Context, req *entity.SaveRequest) (*entity.SaveResponse, error) {
	if req == nil || req.FileID == "" {
		return nil, fmt.Errorf("%w: file_id is required", entity.ErrInvalidRequest)
	}
	if !storage.ValidID(req.FileID) {
		return nil, fmt.Errorf("%w: malformed file_id", entity.ErrInvalidRequest)
	}

	log := logger.With(ctx, slog.String("file_id", req.FileID))

	unlock := u.locker.Lock(req.FileID)
	defer unlock()

	if err := u.texts.SaveText(ctx, req.FileID, req.Text); err != nil {
		return nil, err
	}
	if req.Filename != "" {
		if err := u.texts.SaveCustomName(ctx, req.FileID, req.Filename); err != nil {
			return nil, err
		}
	}

	now := entity.FormatTime(u.now())

	item, found, err := u.items.LoadItem(ctx, req.FileID)
	if err != nil {
		return nil, err
	}
	if !found {
		item = entity.Item{
			entity.FieldID:   req.FileID,
			entity.FieldDate: now,
		}
	}

	item = item.Clone()
	item[entity.FieldText] = req.Text
	if req.Filename != "" {
		item[entity.FieldFilename] = req.Filename
	}
	item[entity.FieldLastModified] = now

	stored, err := u.items.SaveItem(ctx, req.FileID, item)
	if err != nil {
		return nil, err
	}

	log.Info("transcript saved", slog.Bool("new_item", !found))

	return &entity.SaveResponse{
		Status:      "saved",
		FileID:      req.FileID,
		HistoryItem: stored,
	}, nil
}

func (u *usecase) GetHistory(ctx context.Context, id string) (entity.Item, error) {
	item, found, err := u.items.LoadItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if found {
		return item, nil
	}

	// no structured record yet: rebuild a minimal one from the transcript
	text, err := u.texts.ReadText(ctx, id)
	if err != nil {
		return nil, err
	}

	name, err := u.displayName(ctx, id)
	if err != nil {
		return nil, err
	}

	modified, err := u.texts.ModTime(ctx, id)
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Debug("history item reconstructed from transcript",
		slog.String("file_id", id))

	return entity.Item{
		entity.FieldID:               id,
		entity.FieldFilename:         name,
		entity.FieldOriginalFilename: name,
		entity.FieldText:             text,
		entity.FieldDate:             entity.FormatTime(modified),
	}, nil
}

func (u *usecase) displayName(ctx context.Context, id string) (string, error) {
	name, found, err := u.texts.ReadCustomName(ctx, id)
	if err != nil {
		return "", err
	}
	if found && strings.TrimSpace(name) != "" {
		return strings.TrimSpace(name), nil
	}
	return consts.DefaultName(id), nil
}

// processingError wraps a pipeline failure so it maps onto ErrProcessing
// while keeping the cause reachable through errors.Is.
func processingError(stage string, err error) error {
	if errors.Is(err, entity.ErrProcessing) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", entity.ErrProcessing, stage, err)
}
