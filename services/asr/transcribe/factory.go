package transcribe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

type WhisperOptions struct {
	Executable   string
	Model        string
	ModelDirs    []string
	Language     string
	AutoDownload bool
	Logger       *slog.Logger
}

var ErrModelMissing = errors.New("whisper model not available")

// WhisperFactory resolves (and if allowed downloads) the model, then
// builds a whisper-cli engine. It is meant to be wrapped in Lazy.
func WhisperFactory(opts WhisperOptions) Factory {
	return func(ctx context.Context) (Engine, error) {
		log := opts.Logger
		if log == nil {
			log = slog.Default()
		}

		model, err := ResolveModel(opts.Model, opts.ModelDirs...)
		if err != nil {
			return nil, fmt.Errorf("resolve model: %w", err)
		}

		if model.NeedsDownload {
			if !opts.AutoDownload {
				return nil, fmt.Errorf("%w: %s not found at %s", ErrModelMissing, model.Name, model.Path)
			}

			log.Info("downloading whisper model",
				slog.String("model", model.Name),
				slog.String("url", model.URL),
				slog.String("path", model.Path),
			)
			err := DownloadFile(ctx, DownloadOptions{
				URL:            model.URL,
				Destination:    model.Path,
				ExpectedSHA256: model.SHA256,
				Logger:         log,
			})
			if err != nil {
				return nil, fmt.Errorf("download model %s: %w", model.Name, err)
			}
		}

		engine, err := NewWhisperEngine(opts.Executable, model.Path, opts.Language, log)
		if err != nil {
			return nil, err
		}

		log.Info("whisper model loaded", slog.String("path", model.Path))
		return engine, nil
	}
}
