// Package media extracts a speech-ready audio track with ffmpeg.
package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

var ErrTimeout = errors.New("audio extraction timed out")

// Normalizer converts a media file into mono 16 kHz PCM WAV.
type Normalizer interface {
	ExtractAudio(ctx context.Context, inputPath, outputPath string) error
}

type FFmpeg struct {
	Path    string
	Timeout time.Duration
	Logger  *slog.Logger
}

func NewFFmpeg(path string, timeout time.Duration, logger *slog.Logger) *FFmpeg {
	if path == "" {
		path = "ffmpeg"
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &FFmpeg{Path: path, Timeout: timeout, Logger: logger}
}

func (f *FFmpeg) args(inputPath, outputPath string) []string {
	return []string{
		"-i", inputPath,
		"-acodec", "pcm_s16le",
		"-ac", "1",
		"-ar", "16k",
		"-y",
		outputPath,
	}
}

func (f *FFmpeg) ExtractAudio(ctx context.Context, inputPath, outputPath string) error {
	if f.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, f.Path, f.args(inputPath, outputPath)...)
	var stderr bytes.Buffer
	cmd.Stdout = io.Discard
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%w after %s", ErrTimeout, f.Timeout)
		}
		return fmt.Errorf("ffmpeg: %w (%s)", err, lastLine(stderr.String()))
	}

	f.Logger.Debug("audio extracted",
		slog.String("input", inputPath),
		slog.String("output", outputPath),
		slog.Duration("took", time.Since(start)),
	)
	return nil
}

// lastLine keeps error messages short; ffmpeg prints its banner first.
func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[i+1:])
	}
	return s
}
