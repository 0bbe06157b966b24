package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestItem_Accessors(t *testing.T) {
	item := Item{FieldID: "A", FieldText: "hello", FieldFilename: "call.mp3", FieldSize: 12.0}

	require.Equal(t, "A", item.ID())
	require.Equal(t, "hello", item.Text())
	require.Equal(t, "call.mp3", item.Filename())

	require.Equal(t, "", Item{FieldID: 42}.ID())
	require.Equal(t, "", Item(nil).ID())
}

func TestItem_MergeClientWins(t *testing.T) {
	server := Item{FieldID: "A", FieldFilename: "old", FieldText: "old"}
	client := Item{FieldID: "A", FieldFilename: "new", "color": "red"}

	merged := server.Merge(client)

	require.Equal(t, Item{FieldID: "A", FieldFilename: "new", FieldText: "old", "color": "red"}, merged)
	require.Equal(t, "old", server.Filename(), "merge must not mutate the receiver")
}

func TestFormatParseTime(t *testing.T) {
	ts := time.Date(2026, 3, 1, 12, 30, 0, 500, time.FixedZone("X", 3*3600))

	parsed, ok := ParseTime(FormatTime(ts))
	require.True(t, ok)
	require.True(t, ts.Equal(parsed))

	_, ok = ParseTime("yesterday")
	require.False(t, ok)
}
