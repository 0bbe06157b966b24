package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"

	"github.com/xilidan/transcriber/pkg/logger"
	"github.com/xilidan/transcriber/services/asr/consts"
	"github.com/xilidan/transcriber/services/asr/entity"
)

const genericMIME = "application/octet-stream"

func (u *usecase) Upload(ctx context.Context, req *entity.UploadRequest, file io.Reader) (*entity.UploadResponse, error) {
	if req == nil || file == nil {
		return nil, fmt.Errorf("%w: file is required", entity.ErrInvalidRequest)
	}

	ext := strings.ToLower(filepath.Ext(req.Filename))
	if !consts.IsSupported(ext) {
		return nil, fmt.Errorf("%w: %q", entity.ErrUnsupportedFormat, ext)
	}

	id := u.ids.Next().String()
	log := logger.With(ctx,
		slog.String("file_id", id),
		slog.String("filename", req.Filename),
	)

	if err := os.MkdirAll(u.uploadDir, 0o755); err != nil {
		return nil, processingError("create upload dir", err)
	}

	rawPath := filepath.Join(u.uploadDir, id+ext)
	created := []string{rawPath}
	cleanup := func() {
		for _, path := range created {
			if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
				log.Error("failed to remove upload file",
					slog.String("path", path),
					slog.String("error", err.Error()),
				)
			}
		}
	}

	size, err := writeUpload(rawPath, file)
	if err != nil {
		cleanup()
		return nil, processingError("store upload", err)
	}

	fileType := detectFileType(rawPath, req.ContentType)
	log.Info("upload stored",
		slog.String("size", humanize.Bytes(uint64(size))),
		slog.String("file_type", fileType),
	)

	audioPath := rawPath
	if consts.IsVideo(ext) {
		audioPath = filepath.Join(u.uploadDir, id+consts.FormatWAV)
		created = append(created, audioPath)

		if err := u.normalizer.ExtractAudio(ctx, rawPath, audioPath); err != nil {
			log.Error("audio extraction failed", slog.String("error", err.Error()))
			cleanup()
			return nil, processingError("extract audio", err)
		}
	}

	text, err := u.engine.Transcribe(ctx, audioPath)
	if err != nil {
		log.Error("transcription failed", slog.String("error", err.Error()))
		cleanup()
		return nil, processingError("transcribe", err)
	}

	unlock := u.locker.Lock(id)
	defer unlock()

	if err := u.texts.SaveText(ctx, id, text); err != nil {
		cleanup()
		return nil, processingError("save transcript", err)
	}

	stored, err := u.items.SaveItem(ctx, id, entity.Item{
		entity.FieldID:               id,
		entity.FieldFilename:         req.Filename,
		entity.FieldOriginalFilename: req.Filename,
		entity.FieldText:             text,
		entity.FieldDate:             entity.FormatTime(u.now()),
		entity.FieldSize:             size,
		entity.FieldFileType:         fileType,
	})
	if err != nil {
		cleanup()
		return nil, processingError("save history item", err)
	}

	log.Info("upload transcribed", slog.Int("chars", len([]rune(text))))

	return &entity.UploadResponse{
		FileID:      id,
		Text:        text,
		Filename:    req.Filename,
		HistoryItem: stored,
	}, nil
}

func writeUpload(path string, r io.Reader) (int64, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return 0, err
	}

	n, err := io.Copy(f, r)
	if err != nil {
		f.Close()
		return n, err
	}
	return n, f.Close()
}

// detectFileType sniffs the stored bytes and falls back to the type the
// client declared when the content is not recognised.
func detectFileType(path, declared string) string {
	mt, err := mimetype.DetectFile(path)
	if err == nil && mt.String() != genericMIME {
		return mt.String()
	}
	if declared != "" {
		return declared
	}
	return genericMIME
}
