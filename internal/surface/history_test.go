package surface

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// snaps returns n distinguishable 4x4 snapshots.
func snaps(t *testing.T, n int) []*Snapshot {
	t.Helper()
	out := make([]*Snapshot, n)
	for i := range out {
		s, err := NewSurface(4, 4, nil, 0)
		require.NoError(t, err)
		s.Image().Pix[0] = uint8(i)
		out[i] = s.Capture()
	}
	return out
}

func TestHistoryEmpty(t *testing.T) {
	h := NewHistory(0, 0)
	_, ok := h.Undo()
	assert.False(t, ok)
	_, ok = h.Redo()
	assert.False(t, ok)
	_, ok = h.Current()
	assert.False(t, ok)
	assert.False(t, h.CanUndo())
	assert.False(t, h.CanRedo())
	h.Push(nil)
	assert.Zero(t, h.Len())
}

func TestHistoryUndoRedo(t *testing.T) {
	s := snaps(t, 3)
	h := NewHistory(0, 0)
	for _, snap := range s {
		h.Push(snap)
	}
	assert.Equal(t, 2, h.Step())

	got, ok := h.Undo()
	require.True(t, ok)
	assert.Same(t, s[1], got)
	got, ok = h.Undo()
	require.True(t, ok)
	assert.Same(t, s[0], got)

	for i := 0; i < 3; i++ {
		_, ok = h.Undo()
		assert.False(t, ok)
		assert.Equal(t, 0, h.Step())
	}

	got, ok = h.Redo()
	require.True(t, ok)
	assert.Same(t, s[1], got)
	h.Redo()
	for i := 0; i < 3; i++ {
		_, ok = h.Redo()
		assert.False(t, ok)
		assert.Equal(t, 2, h.Step())
	}
}

func TestHistoryNoBranching(t *testing.T) {
	s := snaps(t, 4)
	h := NewHistory(0, 0)
	h.Push(s[0])
	h.Push(s[1])
	h.Push(s[2])
	h.Undo()
	h.Push(s[3])

	require.Equal(t, 3, h.Len())
	assert.Equal(t, 2, h.Step())
	assert.Same(t, s[0], h.At(0))
	assert.Same(t, s[1], h.At(1))
	assert.Same(t, s[3], h.At(2))
	assert.False(t, h.CanRedo())
	assert.Equal(t, 3*s[0].Size(), h.Bytes())
}

func TestHistoryMaxDepth(t *testing.T) {
	s := snaps(t, 5)
	h := NewHistory(3, 0)
	for _, snap := range s {
		h.Push(snap)
	}
	assert.Equal(t, 3, h.Len())
	assert.Equal(t, 2, h.Step())
	assert.Same(t, s[2], h.At(0))
	assert.Same(t, s[4], h.At(2))
	assert.Equal(t, 3*s[0].Size(), h.Bytes())
}

func TestHistoryMaxBytes(t *testing.T) {
	s := snaps(t, 4)
	size := s[0].Size()
	h := NewHistory(0, 2*size)
	for _, snap := range s {
		h.Push(snap)
	}
	assert.Equal(t, 2, h.Len())
	assert.Same(t, s[3], h.At(1))

	// a single oversized entry is still kept
	h = NewHistory(0, size/2)
	h.Push(s[0])
	assert.Equal(t, 1, h.Len())
	cur, ok := h.Current()
	require.True(t, ok)
	assert.Same(t, s[0], cur)
}

func TestHistoryCapture(t *testing.T) {
	surf, err := NewSurface(2, 2, nil, 0)
	require.NoError(t, err)
	h := NewHistory(0, 0)
	h.Capture(surf)
	cur, ok := h.Current()
	require.True(t, ok)
	assert.True(t, cur.Equal(surf.Capture()))
	assert.Nil(t, h.At(5))
}
