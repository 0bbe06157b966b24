package storage

import (
	"context"
	"strings"
	"time"

	"github.com/xilidan/transcriber/services/asr/entity"
)

// ItemStore persists history items keyed by identifier.
type ItemStore interface {
	// SaveItem overwrites the record for id and stamps server_modified.
	SaveItem(ctx context.Context, id string, item entity.Item) (entity.Item, error)
	// LoadItem returns the stored record verbatim; found is false if it was never saved.
	LoadItem(ctx context.Context, id string) (item entity.Item, found bool, err error)
}

// TextStore persists transcript text and the optional display-name override.
type TextStore interface {
	SaveText(ctx context.Context, id, text string) error
	SaveCustomName(ctx context.Context, id, name string) error
	// ReadText returns entity.ErrNotFound when no transcript exists.
	ReadText(ctx context.Context, id string) (string, error)
	ReadCustomName(ctx context.Context, id string) (name string, found bool, err error)
	Exists(ctx context.Context, id string) (bool, error)
	// ModTime returns the last write time of the transcript.
	ModTime(ctx context.Context, id string) (time.Time, error)
}

type Clock func() time.Time

// Stamp returns item with server_modified set to now, or to the previous
// stamp when the clock went backwards since the last save.
func Stamp(item entity.Item, previous entity.Item, now time.Time) entity.Item {
	stamp := now
	if prev, ok := entity.ParseTime(previous.ServerModified()); ok && prev.After(now) {
		stamp = prev
	}

	out := item.Clone()
	out[entity.FieldServerModified] = entity.FormatTime(stamp)
	return out
}

// ValidID reports whether id can be used as a storage key. Identifiers are
// opaque, but they end up in file names and object keys.
func ValidID(id string) bool {
	if id == "" || id == "." || id == ".." || len(id) > 255 {
		return false
	}
	return !strings.ContainsAny(id, "/\\\x00")
}
