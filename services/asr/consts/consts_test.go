package consts

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsSupported(t *testing.T) {
	for _, ext := range []string{".mp3", ".wav", ".m4a", ".ogg", ".mp4", ".mov", ".avi", ".MP3", ".Mov"} {
		require.True(t, IsSupported(ext), ext)
	}
	for _, ext := range []string{".pdf", "", ".flac", "mp3"} {
		require.False(t, IsSupported(ext), ext)
	}
}

func TestIsVideo(t *testing.T) {
	require.True(t, IsVideo(".MP4"))
	require.False(t, IsVideo(".mp3"))
}

func TestExportFilename(t *testing.T) {
	require.Equal(t, "transcription_X.txt", ExportFilename("X", "", TextExt))
	require.Equal(t, "transcription_X.docx", ExportFilename("X", "   ", DocxExt))
	require.Equal(t, "Call Notes.txt", ExportFilename("X", "Call Notes", TextExt))
	require.Equal(t, "Call Notes.docx", ExportFilename("X", " Call Notes\n", DocxExt))
}
