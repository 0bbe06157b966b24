package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	config "github.com/xilidan/transcriber/config/asr"
	"github.com/xilidan/transcriber/pkg/logger"
)

func setupEnv(t *testing.T, itemStore string) string {
	t.Helper()

	dir := t.TempDir()
	t.Setenv("DATA_DIR", dir)
	t.Setenv("ITEM_STORE", itemStore)
	t.Setenv("TEXT_STORE", "fs")
	t.Setenv("TRANSCRIBE_BACKEND", "whisper")
	t.Setenv("LOG_LEVEL", "error")
	return dir
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func TestSyncHistoryExport(t *testing.T) {
	for _, store := range []string{config.StoreFilesystem, config.StoreSQLite} {
		t.Run(store, func(t *testing.T) {
			dir := setupEnv(t, store)

			out, err := run(t, `[{"id":"B","text":"recovered","filename":"Report"},{"text":"skipped"}]`, "sync", "-")
			require.NoError(t, err)

			var synced struct {
				SyncedItems []map[string]any `json:"synced_items"`
			}
			require.NoError(t, json.Unmarshal([]byte(out), &synced))
			require.Len(t, synced.SyncedItems, 1)

			out, err = run(t, "", "history", "B")
			require.NoError(t, err)

			var item map[string]any
			require.NoError(t, json.Unmarshal([]byte(out), &item))
			require.Equal(t, "recovered", item["text"])
			require.NotEmpty(t, item["server_modified"])

			out, err = run(t, "", "export", "B", "--out", dir)
			require.NoError(t, err)
			require.Equal(t, filepath.Join(dir, "Report.txt"), strings.TrimSpace(out))

			content, err := os.ReadFile(filepath.Join(dir, "Report.txt"))
			require.NoError(t, err)
			require.Equal(t, "recovered", string(content))

			out, err = run(t, "", "export", "B", "-f", "docx", "-o", "-")
			require.NoError(t, err)
			require.True(t, strings.HasPrefix(out, "PK"))
		})
	}
}

func TestHistory_NotFound(t *testing.T) {
	setupEnv(t, config.StoreFilesystem)

	_, err := run(t, "", "history", "missing")
	require.Error(t, err)
}

func TestExport_UnknownFormat(t *testing.T) {
	setupEnv(t, config.StoreFilesystem)

	_, err := run(t, "", "export", "B", "-f", "pdf")
	require.ErrorContains(t, err, "unknown format")
}

func TestSync_BadInput(t *testing.T) {
	setupEnv(t, config.StoreFilesystem)

	_, err := run(t, `{"id":"A"}`, "sync", "-")
	require.Error(t, err)
}

func TestInvalidConfig(t *testing.T) {
	setupEnv(t, "mongo")

	_, err := run(t, "", "history", "A")
	require.ErrorContains(t, err, "ITEM_STORE")
}

func TestModelDirs(t *testing.T) {
	a := &app{cfg: &config.Config{DataDir: "/data", Transcribe: config.TranscribeConfig{ModelDir: "models"}}, log: logger.Nop()}
	require.Equal(t, []string{"/data/models", "models", "/app/models"}, a.modelDirs())

	a.cfg.Transcribe.ModelDir = "/app/models"
	require.Equal(t, []string{"/app/models", "models"}, a.modelDirs())
}

func TestHealthcheck_NoAddress(t *testing.T) {
	setupEnv(t, config.StoreFilesystem)
	t.Setenv("GRPC_HEALTH_PORT", "0")

	_, err := run(t, "", "healthcheck")
	require.ErrorContains(t, err, "GRPC_HEALTH_PORT")
}
