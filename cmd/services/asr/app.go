package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	config "github.com/xilidan/transcriber/config/asr"
	"github.com/xilidan/transcriber/pkg/gen"
	"github.com/xilidan/transcriber/pkg/logger"
	"github.com/xilidan/transcriber/services/asr/media"
	"github.com/xilidan/transcriber/services/asr/storage"
	"github.com/xilidan/transcriber/services/asr/storage/filesystem"
	"github.com/xilidan/transcriber/services/asr/storage/objectstore"
	"github.com/xilidan/transcriber/services/asr/storage/sqldb"
	"github.com/xilidan/transcriber/services/asr/transcribe"
	"github.com/xilidan/transcriber/services/asr/usecase"
)

// app owns the collaborators built from configuration.
type app struct {
	cfg *config.Config
	log *slog.Logger
	db  *sql.DB
}

func newLogger(cfg *config.Config, out io.Writer) (*slog.Logger, error) {
	level, err := logger.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}

	return logger.New(logger.Config{
		Level:     level,
		Output:    out,
		AddSource: cfg.Log.AddSource,
		Format:    cfg.Log.Format,
	}), nil
}

func (a *app) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

func (a *app) itemStore(ctx context.Context) (storage.ItemStore, error) {
	switch a.cfg.ItemStore {
	case config.StorePostgres:
		return a.sqlItemStore(ctx, sqldb.Postgres, a.cfg.PostgresDSN())
	case config.StoreSQLite:
		path := a.cfg.Database.SQLitePath
		if !filepath.IsAbs(path) {
			path = filepath.Join(a.cfg.DataDir, path)
		}
		return a.sqlItemStore(ctx, sqldb.SQLite, path)
	default:
		return filesystem.NewItemStore(a.cfg.HistoryDir(), nil)
	}
}

func (a *app) sqlItemStore(ctx context.Context, dialect sqldb.Dialect, dsn string) (storage.ItemStore, error) {
	db, err := sqldb.Open(ctx, dialect, dsn)
	if err != nil {
		return nil, err
	}
	if err := sqldb.Migrate(ctx, db, dialect); err != nil {
		db.Close()
		return nil, err
	}
	a.db = db

	a.log.Info("history items stored in database", slog.String("dialect", string(dialect)))
	return sqldb.NewItemStore(db, dialect, nil), nil
}

func (a *app) textStore(ctx context.Context) (storage.TextStore, error) {
	if a.cfg.TextStore != config.StoreS3 {
		return filesystem.NewTextStore(a.cfg.ResultDir())
	}

	client, err := objectstore.NewClient(ctx, objectstore.Options{
		Region:    a.cfg.S3.Region,
		Endpoint:  a.cfg.S3.Endpoint,
		AccessKey: a.cfg.S3.AccessKey,
		SecretKey: a.cfg.S3.SecretKey,
	})
	if err != nil {
		return nil, err
	}

	a.log.Info("transcripts stored in object storage",
		slog.String("bucket", a.cfg.S3.Bucket),
		slog.String("prefix", a.cfg.S3.Prefix))
	return objectstore.NewTextStore(client, a.cfg.S3.Bucket, a.cfg.S3.Prefix), nil
}

func (a *app) engine() transcribe.Engine {
	tc := a.cfg.Transcribe

	var engine transcribe.Engine
	switch tc.Backend {
	case config.BackendOpenAI:
		engine = transcribe.NewOpenAIEngine(tc.OpenAIURL, tc.OpenAIKey, tc.OpenAIModel, tc.Language)
	default:
		engine = transcribe.NewLazy(transcribe.WhisperFactory(transcribe.WhisperOptions{
			Executable:   tc.WhisperPath,
			Model:        tc.Model,
			ModelDirs:    a.modelDirs(),
			Language:     tc.Language,
			AutoDownload: tc.AutoDownload,
			Logger:       a.log,
		}))
	}

	return transcribe.WithTimeout(engine, tc.Timeout)
}

// modelDirs lists where a named model is looked up; downloads go to the first.
func (a *app) modelDirs() []string {
	dirs := []string{a.cfg.Transcribe.ModelDir}
	if !filepath.IsAbs(a.cfg.Transcribe.ModelDir) {
		dirs[0] = filepath.Join(a.cfg.DataDir, a.cfg.Transcribe.ModelDir)
	}

	seen := map[string]bool{dirs[0]: true}
	for _, dir := range []string{"models", "/app/models"} {
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}
	return dirs
}

func (a *app) usecase(ctx context.Context) (usecase.Usecase, error) {
	items, err := a.itemStore(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to init item store: %w", err)
	}

	texts, err := a.textStore(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to init text store: %w", err)
	}

	return usecase.New(usecase.Params{
		Items:      items,
		Texts:      texts,
		Engine:     a.engine(),
		Normalizer: media.NewFFmpeg(a.cfg.Media.FFmpegPath, a.cfg.Media.Timeout, a.log),
		UploadDir:  a.cfg.UploadDir(),
		Locker:     storage.NewLocker(),
		IDs:        gen.UUID(),
	}), nil
}
