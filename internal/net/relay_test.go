package net

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ScribbleBoard/internal/state"
)

func newTestRelay(t *testing.T, opts RelayOptions) (*Relay, *httptest.Server) {
	t.Helper()
	if opts.SyncInterval == 0 {
		opts.SyncInterval = 20 * time.Millisecond
	}
	r, err := NewRelay(opts)
	require.NoError(t, err)
	srv := httptest.NewServer(r.Handler())
	t.Cleanup(func() {
		_ = r.Close()
		srv.Close()
	})
	return r, srv
}

func testClient(t *testing.T, srv *httptest.Server, doc string) *Client {
	t.Helper()
	c, err := NewClient(strings.TrimPrefix(srv.URL, "http://"), doc)
	require.NoError(t, err)
	c.SyncInterval = 20 * time.Millisecond
	c.RetryInterval = 20 * time.Millisecond
	return c
}

func TestRelayLatest(t *testing.T) {
	r, srv := newTestRelay(t, RelayOptions{Docs: []string{"main"}})
	doc, err := r.Doc("main")
	require.NoError(t, err)
	require.NoError(t, doc.ReplaceText("hello"))

	raw, err := testClient(t, srv, "main").Fetch(context.Background())
	require.NoError(t, err)
	loaded, err := state.LoadSharedText(raw, "")
	require.NoError(t, err)
	assert.Equal(t, "hello", loaded.CurrentText())

	_, err = testClient(t, srv, "nope").Fetch(context.Background())
	assert.ErrorIs(t, err, ErrUnknownDoc)
	_, err = r.Doc("nope")
	assert.ErrorIs(t, err, ErrUnknownDoc)
}

func TestRelayHistory(t *testing.T) {
	_, srv := newTestRelay(t, RelayOptions{Docs: []string{"main"}})

	resp, err := http.Get(srv.URL + "/docs/main/history.svg")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/svg+xml", resp.Header.Get("Content-Type"))
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "<svg")

	resp2, err := http.Get(srv.URL + "/docs/missing/history.svg")
	require.NoError(t, err)
	resp2.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp2.StatusCode)
}

func TestRelaySyncConverges(t *testing.T) {
	r, srv := newTestRelay(t, RelayOptions{Docs: []string{"main"}})
	hosted, err := r.Doc("main")
	require.NoError(t, err)

	c := testClient(t, srv, "main")
	raw, err := c.Fetch(context.Background())
	require.NoError(t, err)
	local, err := state.LoadSharedText(raw, state.NewActorID())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx, local) }()
	defer func() {
		cancel()
		assert.NoError(t, <-done)
	}()

	require.NoError(t, local.ReplaceText("from client"))
	require.Eventually(t, func() bool {
		return hosted.CurrentText() == "from client"
	}, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, r.Peers())

	changed := make(chan struct{}, 8)
	unsubscribe := local.OnChange(func() { changed <- struct{}{} })
	defer unsubscribe()
	require.NoError(t, hosted.ReplaceText("from host"))
	require.Eventually(t, func() bool {
		return local.CurrentText() == "from host"
	}, 5*time.Second, 10*time.Millisecond)
	assert.NotEmpty(t, changed)
}

func TestRelayBackupRestore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "relay.sqlite3")

	r, err := NewRelay(RelayOptions{Database: path, Docs: []string{"main"}, BackupInterval: time.Hour})
	require.NoError(t, err)
	doc, err := r.Doc("main")
	require.NoError(t, err)
	require.NoError(t, doc.ReplaceText("kept"))
	require.NoError(t, r.Close())
	require.NoError(t, r.Close())

	r2, err := NewRelay(RelayOptions{Database: path, Docs: []string{"main", "other"}, BackupInterval: time.Hour})
	require.NoError(t, err)
	defer r2.Close()
	doc2, err := r2.Doc("main")
	require.NoError(t, err)
	assert.Equal(t, "kept", doc2.CurrentText())
	other, err := r2.Doc("other")
	require.NoError(t, err)
	assert.Equal(t, "", other.CurrentText())
}

func TestRelayWithoutDatabase(t *testing.T) {
	r, err := NewRelay(RelayOptions{Docs: []string{"main"}})
	require.NoError(t, err)
	assert.NoError(t, r.Backup(context.Background()))
	assert.NoError(t, r.Close())
}
