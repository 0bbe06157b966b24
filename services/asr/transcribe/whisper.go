package transcribe

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// WhisperEngine shells out to whisper.cpp's whisper-cli.
type WhisperEngine struct {
	Executable string
	ModelPath  string
	Language   string
	Logger     *slog.Logger
}

func NewWhisperEngine(executable, modelPath, language string, logger *slog.Logger) (*WhisperEngine, error) {
	resolved, err := resolveExecutable(executable)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &WhisperEngine{
		Executable: resolved,
		ModelPath:  modelPath,
		Language:   language,
		Logger:     logger,
	}, nil
}

func (w *WhisperEngine) Transcribe(ctx context.Context, audioPath string) (string, error) {
	if strings.TrimSpace(audioPath) == "" {
		return "", errors.New("audio path is required")
	}
	if strings.TrimSpace(w.ModelPath) == "" {
		return "", errors.New("model path is required")
	}

	outDir, err := os.MkdirTemp("", "whisper-")
	if err != nil {
		return "", fmt.Errorf("create whisper output dir: %w", err)
	}
	defer os.RemoveAll(outDir)

	outBase := filepath.Join(outDir, "transcript")
	args := []string{"-m", w.ModelPath, "-f", audioPath, "-nt", "-otxt", "-of", outBase}
	if lang := strings.TrimSpace(w.Language); lang != "" && lang != "auto" {
		args = append(args, "-l", lang)
	}

	cmd := exec.CommandContext(ctx, w.Executable, args...)
	var stderr bytes.Buffer
	cmd.Stdout = io.Discard
	cmd.Stderr = &stderr

	w.Logger.Debug("running whisper engine",
		slog.String("engine", w.Executable),
		slog.String("audio", audioPath),
	)
	if err := cmd.Run(); err != nil {
		errText := strings.TrimSpace(stderr.String())
		if isMissingSharedLibraryError(errText) {
			return "", fmt.Errorf("whisper engine at %s is missing required shared libraries (%s)", w.Executable, errText)
		}
		return "", fmt.Errorf("whisper transcribe failed: %w (%s)", err, errText)
	}

	content, err := os.ReadFile(outBase + ".txt")
	if err != nil {
		return "", fmt.Errorf("read whisper output: %w", err)
	}

	return JoinSegments(strings.Split(string(content), "\n")), nil
}

// resolveExecutable accepts either a path or a bare name looked up in PATH.
func resolveExecutable(name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", errors.New("whisper executable is required")
	}
	if !strings.ContainsRune(name, os.PathSeparator) {
		path, err := exec.LookPath(name)
		if err != nil {
			return "", fmt.Errorf("whisper engine %q not found in PATH: %w", name, err)
		}
		return path, nil
	}
	if err := ensureExecutable(name); err != nil {
		return "", fmt.Errorf("whisper engine is not executable: %w", err)
	}
	return name, nil
}

func ensureExecutable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	if runtime.GOOS != "windows" && info.Mode()&0o111 == 0 {
		return fmt.Errorf("%s is not executable", path)
	}
	return nil
}

func isMissingSharedLibraryError(stderr string) bool {
	value := strings.ToLower(strings.TrimSpace(stderr))
	if value == "" {
		return false
	}

	for _, pattern := range []string{
		"error while loading shared libraries",
		"cannot open shared object file",
		"dyld: library not loaded",
	} {
		if strings.Contains(value, pattern) {
			return true
		}
	}
	return false
}
