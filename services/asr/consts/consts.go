package consts

import "strings"

const (
	// Audio produced by the media normalizer
	FormatWAV         = ".wav"
	DefaultSampleRate = 16000

	TextExt = "txt"
	DocxExt = "docx"

	DefaultNamePrefix = "transcription_"

	ContentTypeText = "text/plain; charset=utf-8"
	ContentTypeDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

var (
	audioExtensions = map[string]bool{".mp3": true, ".wav": true, ".m4a": true, ".ogg": true}
	videoExtensions = map[string]bool{".mp4": true, ".mov": true, ".avi": true}
)

func IsSupported(ext string) bool {
	ext = strings.ToLower(ext)
	return audioExtensions[ext] || videoExtensions[ext]
}

func IsVideo(ext string) bool {
	return videoExtensions[strings.ToLower(ext)]
}

// DefaultName is the display name of a transcript without a custom name.
func DefaultName(id string) string {
	return DefaultNamePrefix + id
}

// ExportFilename resolves the download name for a transcript.
func ExportFilename(id, customName, ext string) string {
	if name := strings.TrimSpace(customName); name != "" {
		return name + "." + ext
	}
	return DefaultName(id) + "." + ext
}
