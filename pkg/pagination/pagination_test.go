package pagination

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPageNormalizes(t *testing.T) {
	p := NewPage(0, 0)
	assert.Equal(t, 1, p.Number)
	assert.Equal(t, DefaultLimit, p.Size)
	assert.Equal(t, 0, p.Offset())

	p = NewPage(3, 500)
	assert.Equal(t, MaxLimit, p.Size)
	assert.Equal(t, 2*MaxLimit, p.Offset())
}

func TestNewMeta(t *testing.T) {
	meta := NewMeta(NewPage(2, 20), 41)
	assert.Equal(t, 3, meta.TotalPages)
	assert.True(t, meta.HasNext)
	assert.True(t, meta.HasPrevious)

	empty := NewMeta(NewPage(1, 20), 0)
	assert.Equal(t, 0, empty.TotalPages)
	assert.False(t, empty.HasNext)
	assert.False(t, empty.HasPrevious)
}

func TestCursorRoundTrip(t *testing.T) {
	in := Cursor{CreatedAt: time.Date(2026, 3, 1, 10, 0, 0, 123, time.UTC), ID: uuid.New()}
	out, err := ParseCursor(EncodeCursor(in))
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.True(t, in.CreatedAt.Equal(out.CreatedAt))
	assert.Equal(t, in.ID, out.ID)

	none, err := ParseCursor("  ")
	require.NoError(t, err)
	assert.Nil(t, none)

	_, err = ParseCursor("not-base64!!")
	assert.Error(t, err)
}
