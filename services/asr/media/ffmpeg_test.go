package media

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func fakeFFmpeg(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not supported on windows")
	}

	path := filepath.Join(t.TempDir(), "ffmpeg")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))
	return path
}

func TestExtractAudio(t *testing.T) {
	dir := t.TempDir()
	argsFile := filepath.Join(dir, "args")
	// write the last argument (output path) and record the full command line
	exe := fakeFFmpeg(t, `echo "$@" > "`+argsFile+`"
for last; do :; done
printf 'RIFF' > "$last"
`)

	out := filepath.Join(dir, "abc.wav")
	err := NewFFmpeg(exe, time.Minute, nil).ExtractAudio(context.Background(), "in.mp4", out)
	require.NoError(t, err)
	require.FileExists(t, out)

	args, err := os.ReadFile(argsFile)
	require.NoError(t, err)
	require.Equal(t, "-i in.mp4 -acodec pcm_s16le -ac 1 -ar 16k -y "+out+"\n", string(args))
}

func TestExtractAudio_Failure(t *testing.T) {
	exe := fakeFFmpeg(t, "echo 'ffmpeg version x' >&2\necho 'in.mp4: Invalid data found' >&2\nexit 1\n")

	err := NewFFmpeg(exe, 0, nil).ExtractAudio(context.Background(), "in.mp4", "out.wav")
	require.ErrorContains(t, err, "Invalid data found")
	require.NotContains(t, err.Error(), "ffmpeg version")
}

func TestExtractAudio_Timeout(t *testing.T) {
	exe := fakeFFmpeg(t, "exec sleep 5\n")

	err := NewFFmpeg(exe, 50*time.Millisecond, nil).ExtractAudio(context.Background(), "in.mp4", "out.wav")
	require.ErrorIs(t, err, ErrTimeout)
}

func TestExtractAudio_MissingBinary(t *testing.T) {
	err := NewFFmpeg(filepath.Join(t.TempDir(), "nope"), 0, nil).ExtractAudio(context.Background(), "in.mp4", "out.wav")
	require.Error(t, err)
}
