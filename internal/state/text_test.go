package state

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPair(t *testing.T) (*SharedText, *SharedText) {
	t.Helper()
	a, err := NewSharedText(NewActorID())
	require.NoError(t, err)
	b, err := LoadSharedText(a.Save(), NewActorID())
	require.NoError(t, err)
	return a, b
}

// syncPair exchanges messages until neither side has anything to send.
func syncPair(t *testing.T, a, b *SharedText) {
	t.Helper()
	sa, sb := a.NewSyncState(), b.NewSyncState()
	for i := 0; i < 16; i++ {
		m1, ok1 := a.GenerateMessage(sa)
		if ok1 {
			require.NoError(t, b.ReceiveMessage(sb, m1))
		}
		m2, ok2 := b.GenerateMessage(sb)
		if ok2 {
			require.NoError(t, a.ReceiveMessage(sa, m2))
		}
		if !ok1 && !ok2 {
			return
		}
	}
	t.Fatal("sync did not settle")
}

func TestNewActorID(t *testing.T) {
	id := NewActorID()
	assert.Len(t, id, 32)
	assert.NotContains(t, id, "-")
	assert.NotEqual(t, id, NewActorID())
}

func TestSharedTextReplace(t *testing.T) {
	actor := NewActorID()
	s, err := NewSharedText(actor)
	require.NoError(t, err)
	assert.Equal(t, actor, s.ActorID())
	assert.Equal(t, "", s.CurrentText())

	require.NoError(t, s.ReplaceText("hello"))
	assert.Equal(t, "hello", s.CurrentText())
	require.NoError(t, s.ReplaceText("héllo wörld"))
	assert.Equal(t, "héllo wörld", s.CurrentText())
	require.NoError(t, s.ReplaceText(""))
	assert.Equal(t, "", s.CurrentText())
}

func TestSharedTextOnChange(t *testing.T) {
	s, err := NewSharedText("")
	require.NoError(t, err)

	var seen []string
	unsubscribe := s.OnChange(func() { seen = append(seen, s.CurrentText()) })

	require.NoError(t, s.ReplaceText("a"))
	require.NoError(t, s.ReplaceText("a"))
	require.NoError(t, s.ReplaceText("ab"))
	assert.Equal(t, []string{"a", "ab"}, seen)

	unsubscribe()
	unsubscribe()
	require.NoError(t, s.ReplaceText("abc"))
	assert.Len(t, seen, 2)
}

func TestSharedTextSaveLoad(t *testing.T) {
	s, err := NewSharedText("")
	require.NoError(t, err)
	require.NoError(t, s.ReplaceText("persisted"))

	loaded, err := LoadSharedText(s.Save(), "")
	require.NoError(t, err)
	assert.Equal(t, "persisted", loaded.CurrentText())
	assert.Equal(t, s.Heads(), loaded.Heads())

	_, err = LoadSharedText([]byte("not a doc"), "")
	assert.Error(t, err)
}

func TestSharedTextSync(t *testing.T) {
	a, b := newPair(t)
	notified := 0
	b.OnChange(func() { notified++ })

	require.NoError(t, a.ReplaceText("from a"))
	syncPair(t, a, b)
	assert.Equal(t, "from a", b.CurrentText())
	assert.Equal(t, 1, notified)
	assert.Equal(t, a.Heads(), b.Heads())

	// nothing new, nothing to report
	syncPair(t, a, b)
	assert.Equal(t, 1, notified)
}

func TestSharedTextConcurrentReplaceConverges(t *testing.T) {
	a, b := newPair(t)
	require.NoError(t, a.ReplaceText("left"))
	require.NoError(t, b.ReplaceText("right"))
	syncPair(t, a, b)

	assert.Equal(t, a.CurrentText(), b.CurrentText())
	assert.Equal(t, a.Heads(), b.Heads())
	merged := a.CurrentText()
	assert.True(t, strings.Contains(merged, "left") || strings.Contains(merged, "right"), merged)
}

func TestSharedTextChanges(t *testing.T) {
	s, err := NewSharedText(NewActorID())
	require.NoError(t, err)
	require.NoError(t, s.ReplaceText("one"))
	require.NoError(t, s.ReplaceText("two"))

	changes, err := s.Changes()
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(changes), 3)
	last := changes[len(changes)-1]
	assert.Equal(t, "two", last.Text)
	assert.Equal(t, s.ActorID(), last.Actor)
	assert.NotEmpty(t, last.Deps)
}

func TestSharedTextRenderHistory(t *testing.T) {
	s, err := NewSharedText("")
	require.NoError(t, err)
	require.NoError(t, s.ReplaceText(strings.Repeat("x", 40)))

	var buf bytes.Buffer
	require.NoError(t, s.RenderHistory(&buf))
	assert.Contains(t, buf.String(), "<svg")
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "short", preview("short"))
	assert.Equal(t, strings.Repeat("y", labelRunes)+"…", preview(strings.Repeat("y", 30)))
	assert.Equal(t, "abc", shortActor("abc"))
	assert.Equal(t, "01234567", shortActor("0123456789"))
}
