package filesystem

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xilidan/transcriber/services/asr/entity"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestItemStore_SaveLoad(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "history")
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	store, err := NewItemStore(dir, fixedClock(now))
	require.NoError(t, err)

	_, found, err := store.LoadItem(ctx, "A")
	require.NoError(t, err)
	require.False(t, found)

	saved, err := store.SaveItem(ctx, "A", entity.Item{
		entity.FieldID:       "A",
		entity.FieldFilename: "call.mp3",
		entity.FieldSize:     1024,
		"client_only":        true,
	})
	require.NoError(t, err)
	require.Equal(t, entity.FormatTime(now), saved.ServerModified())

	loaded, found, err := store.LoadItem(ctx, "A")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "call.mp3", loaded.Filename())
	require.Equal(t, entity.FormatTime(now), loaded.ServerModified())
	require.Equal(t, json.Number("1024"), loaded[entity.FieldSize])
	require.Equal(t, true, loaded["client_only"])

	_, err = os.Stat(filepath.Join(dir, "A.json"))
	require.NoError(t, err)
}

func TestItemStore_ServerModifiedNeverGoesBack(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	clock := now

	store, err := NewItemStore(t.TempDir(), func() time.Time { return clock })
	require.NoError(t, err)

	first, err := store.SaveItem(ctx, "A", entity.Item{entity.FieldID: "A"})
	require.NoError(t, err)

	clock = now.Add(-time.Minute)
	second, err := store.SaveItem(ctx, "A", entity.Item{entity.FieldID: "A", entity.FieldText: "x"})
	require.NoError(t, err)
	require.Equal(t, first.ServerModified(), second.ServerModified())

	clock = now.Add(time.Minute)
	third, err := store.SaveItem(ctx, "A", entity.Item{entity.FieldID: "A"})
	require.NoError(t, err)
	require.Equal(t, entity.FormatTime(clock), third.ServerModified())
}

func TestItemStore_OverwritesCorruptRecord(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewItemStore(dir, nil)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "A.json"), []byte("{not json"), 0o644))

	_, _, err = store.LoadItem(ctx, "A")
	require.Error(t, err)

	_, err = store.SaveItem(ctx, "A", entity.Item{entity.FieldID: "A"})
	require.NoError(t, err)

	_, found, err := store.LoadItem(ctx, "A")
	require.NoError(t, err)
	require.True(t, found)
}

func TestItemStore_RejectsUnsafeID(t *testing.T) {
	store, err := NewItemStore(t.TempDir(), nil)
	require.NoError(t, err)

	_, err = store.SaveItem(context.Background(), "../escape", entity.Item{})
	require.ErrorIs(t, err, entity.ErrInvalidRequest)

	_, _, err = store.LoadItem(context.Background(), "a/b")
	require.ErrorIs(t, err, entity.ErrInvalidRequest)
}

func TestTextStore(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "results")

	store, err := NewTextStore(dir)
	require.NoError(t, err)

	exists, err := store.Exists(ctx, "A")
	require.NoError(t, err)
	require.False(t, exists)

	_, err = store.ReadText(ctx, "A")
	require.ErrorIs(t, err, entity.ErrNotFound)

	_, err = store.ModTime(ctx, "A")
	require.ErrorIs(t, err, entity.ErrNotFound)

	_, found, err := store.ReadCustomName(ctx, "A")
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, store.SaveText(ctx, "A", "привет, мир"))
	require.NoError(t, store.SaveCustomName(ctx, "A", "Call Notes"))

	exists, err = store.Exists(ctx, "A")
	require.NoError(t, err)
	require.True(t, exists)

	text, err := store.ReadText(ctx, "A")
	require.NoError(t, err)
	require.Equal(t, "привет, мир", text)

	name, found, err := store.ReadCustomName(ctx, "A")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "Call Notes", name)

	mod, err := store.ModTime(ctx, "A")
	require.NoError(t, err)
	require.WithinDuration(t, time.Now(), mod, time.Minute)

	require.FileExists(t, filepath.Join(dir, "A.txt"))
	require.FileExists(t, filepath.Join(dir, "A.filename"))

	require.NoError(t, store.SaveText(ctx, "A", "second"))
	text, err = store.ReadText(ctx, "A")
	require.NoError(t, err)
	require.Equal(t, "second", text)
}

func TestWriteFileAtomic_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "A.txt")

	require.NoError(t, writeFileAtomic(path, []byte("one")))
	require.NoError(t, writeFileAtomic(path, []byte("two")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "A.txt", entries[0].Name())
}
