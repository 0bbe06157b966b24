// Package transcribe runs speech-to-text through an external engine:
// a local whisper-cli binary or an OpenAI-compatible HTTP service.
package transcribe

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Engine turns an audio file into transcript text.
type Engine interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

var ErrTimeout = errors.New("transcription timed out")

// JoinSegments joins segment texts with single spaces.
func JoinSegments(segments []string) string {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		s = strings.TrimSpace(s)
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

type timeoutEngine struct {
	next    Engine
	timeout time.Duration
}

// WithTimeout bounds every call to next. A zero timeout returns next as is.
func WithTimeout(next Engine, timeout time.Duration) Engine {
	if timeout <= 0 {
		return next
	}
	return &timeoutEngine{next: next, timeout: timeout}
}

func (e *timeoutEngine) Transcribe(ctx context.Context, audioPath string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	text, err := e.next.Transcribe(ctx, audioPath)
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return "", fmt.Errorf("%w after %s: %w", ErrTimeout, e.timeout, err)
	}
	return text, err
}
