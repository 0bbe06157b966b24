package entity

import (
	"time"
)

// Field names of a history item as exchanged with clients.
const (
	FieldID               = "id"
	FieldFilename         = "filename"
	FieldOriginalFilename = "original_filename"
	FieldText             = "text"
	FieldDate             = "date"
	FieldLastModified     = "last_modified"
	FieldServerModified   = "server_modified"
	FieldSize             = "size"
	FieldFileType         = "file_type"
)

// Item is a history record. It is kept as an open JSON object so fields
// the server does not know about survive a round trip.
type Item map[string]any

func (i Item) ID() string       { return i.str(FieldID) }
func (i Item) Text() string     { return i.str(FieldText) }
func (i Item) Filename() string { return i.str(FieldFilename) }

func (i Item) ServerModified() string { return i.str(FieldServerModified) }

func (i Item) str(key string) string {
	if i == nil {
		return ""
	}
	s, _ := i[key].(string)
	return s
}

// Clone returns a shallow copy.
func (i Item) Clone() Item {
	out := make(Item, len(i))
	for k, v := range i {
		out[k] = v
	}
	return out
}

// Merge returns a copy of i with every field of patch laid on top.
func (i Item) Merge(patch Item) Item {
	out := i.Clone()
	for k, v := range patch {
		out[k] = v
	}
	return out
}

func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func ParseTime(s string) (time.Time, bool) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

type (
	UploadRequest struct {
		Filename    string
		ContentType string
	}

	UploadResponse struct {
		FileID      string `json:"file_id"`
		Text        string `json:"text"`
		Filename    string `json:"filename"`
		HistoryItem Item   `json:"history_item"`
	}

	SaveRequest struct {
		FileID   string `json:"file_id"`
		Text     string `json:"text"`
		Filename string `json:"filename,omitempty"`
	}

	SaveResponse struct {
		Status      string `json:"status"`
		FileID      string `json:"file_id"`
		HistoryItem Item   `json:"history_item"`
	}

	SyncResponse struct {
		SyncedItems []Item `json:"synced_items"`
	}

	Export struct {
		Filename    string
		ContentType string
		Content     []byte
	}
)
