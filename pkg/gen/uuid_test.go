package gen

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestUUID_Random(t *testing.T) {
	g := UUID()
	a, b := g.Next(), g.Next()

	require.NotEqual(t, a, b)
	require.Equal(t, uuid.Version(4), a.Version())
}

func TestUUID_NilGenerator(t *testing.T) {
	var g UUIDGenerator
	require.Equal(t, uuid.Nil, g.Next())
}

func TestFixed(t *testing.T) {
	id := uuid.MustParse("3f2c5e1a-8d3b-4c6e-9a7f-1b2c3d4e5f60")
	g := Fixed(id)

	require.Equal(t, id, g.Next())
	require.Equal(t, uuid.Nil, g.Next())
}
