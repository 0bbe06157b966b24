package transcribe

import (
	"context"
	"sync"
)

type Factory func(ctx context.Context) (Engine, error)

// Lazy builds the engine on first use. A failed build is retried on the
// next call; concurrent first calls wait for the same build.
type Lazy struct {
	mu      sync.Mutex
	engine  Engine
	factory Factory
}

func NewLazy(factory Factory) *Lazy {
	return &Lazy{factory: factory}
}

func (l *Lazy) Get(ctx context.Context) (Engine, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.engine != nil {
		return l.engine, nil
	}

	engine, err := l.factory(ctx)
	if err != nil {
		return nil, err
	}
	l.engine = engine
	return engine, nil
}

func (l *Lazy) Transcribe(ctx context.Context, audioPath string) (string, error) {
	engine, err := l.Get(ctx)
	if err != nil {
		return "", err
	}
	return engine.Transcribe(ctx, audioPath)
}
