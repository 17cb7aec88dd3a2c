package net

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/felixge/httpsnoop"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	_ "github.com/mattn/go-sqlite3"

	"ScribbleBoard/internal/state"
)

// DefaultBackupInterval is how often the relay writes changed documents to
// its database.
const DefaultBackupInterval = 5 * time.Second

// ErrUnknownDoc is returned for documents the relay does not serve.
var ErrUnknownDoc = errors.New("unknown doc")

// RelayOptions configures NewRelay.
type RelayOptions struct {
	// Database is a sqlite path. Empty keeps documents in memory only.
	Database       string
	Docs           []string
	Actor          string
	BackupInterval time.Duration
	SyncInterval   time.Duration
}

// Relay serves documents to peers over HTTP and websockets and backs them
// up to sqlite.
type Relay struct {
	opts   RelayOptions
	db     *sql.DB
	docs   sync.Map
	peers  atomic.Int64
	router *mux.Router

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	closed sync.Once
}

// NewRelay opens the database, loads every stored document, seeds the ones
// listed in opts.Docs and starts the backup loop.
func NewRelay(opts RelayOptions) (*Relay, error) {
	if opts.BackupInterval <= 0 {
		opts.BackupInterval = DefaultBackupInterval
	}
	if opts.Actor == "" {
		opts.Actor = state.NewActorID()
	}
	r := &Relay{opts: opts}

	if opts.Database != "" {
		slog.Info("opening database", "path", opts.Database)
		db, err := sql.Open("sqlite3", opts.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		r.db = db
		if err := r.init(); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	for _, id := range opts.Docs {
		if _, ok := r.docs.Load(id); ok {
			continue
		}
		doc, err := state.NewSharedText(opts.Actor)
		if err != nil {
			r.closeDB()
			return nil, err
		}
		r.docs.Store(id, doc)
	}

	r.router = mux.NewRouter()
	r.router.Use(accessLog)
	r.router.Methods(http.MethodGet).Path("/docs/{doc}/latest").HandlerFunc(r.getDoc)
	r.router.Methods(http.MethodGet).Path("/docs/{doc}/sync").HandlerFunc(r.syncDoc)
	r.router.Methods(http.MethodGet).Path("/docs/{doc}/history.svg").HandlerFunc(r.docHistory)

	r.ctx, r.cancel = context.WithCancel(context.Background())
	if r.db != nil {
		r.wg.Add(1)
		go r.backupLoop()
	}
	return r, nil
}

func accessLog(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		m := httpsnoop.CaptureMetrics(handler, writer, request)
		slog.Info("handled", "method", request.Method, "url", request.URL, "duration", m.Duration, "status", m.Code)
	})
}

func (r *Relay) init() error {
	if _, err := r.db.Exec(
		`CREATE TABLE IF NOT EXISTS docs (
		id text not null primary key,
		content text
		)`,
	); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}
	rows, err := r.db.Query(`SELECT id, content FROM docs`)
	if err != nil {
		return fmt.Errorf("failed to query: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id, content string
		if err := rows.Scan(&id, &content); err != nil {
			return fmt.Errorf("failed to scan: %w", err)
		}
		raw, err := base64.StdEncoding.DecodeString(content)
		if err != nil {
			return fmt.Errorf("failed to decode %s: %w", id, err)
		}
		doc, err := state.LoadSharedText(raw, r.opts.Actor)
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", id, err)
		}
		r.docs.Store(id, doc)
		slog.Info("restored doc", "doc", id, "heads", doc.Heads())
	}
	return rows.Err()
}

// Handler returns the relay's routes.
func (r *Relay) Handler() http.Handler {
	return r.router
}

// Doc returns the relay's own replica of a document.
func (r *Relay) Doc(id string) (*state.SharedText, error) {
	v, ok := r.docs.Load(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDoc, id)
	}
	return v.(*state.SharedText), nil
}

// Peers reports how many sync sessions are open.
func (r *Relay) Peers() int {
	return int(r.peers.Load())
}

func (r *Relay) lookup(writer http.ResponseWriter, request *http.Request) (*state.SharedText, bool) {
	doc, err := r.Doc(mux.Vars(request)["doc"])
	if err != nil {
		writer.WriteHeader(http.StatusNotFound)
		return nil, false
	}
	return doc, true
}

func (r *Relay) getDoc(writer http.ResponseWriter, request *http.Request) {
	doc, ok := r.lookup(writer, request)
	if !ok {
		return
	}
	writer.Header().Add("Content-Type", "application/octet-stream")
	if _, err := writer.Write(doc.Save()); err != nil {
		slog.Error("failed to write out", "err", err)
	}
}

func (r *Relay) docHistory(writer http.ResponseWriter, request *http.Request) {
	doc, ok := r.lookup(writer, request)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := doc.RenderHistory(&buf); err != nil {
		slog.Error("failed to render history", "err", err)
		writer.WriteHeader(http.StatusInternalServerError)
		return
	}
	writer.Header().Add("Content-Type", "image/svg+xml")
	if _, err := writer.Write(buf.Bytes()); err != nil {
		slog.Error("failed to write out", "err", err)
	}
}

func (r *Relay) syncDoc(writer http.ResponseWriter, request *http.Request) {
	doc, ok := r.lookup(writer, request)
	if !ok {
		return
	}
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
	conn, err := upgrader.Upgrade(writer, request, nil)
	if err != nil {
		slog.Error("failed to upgrade", "err", err)
		return
	}
	defer conn.Close()

	remote := conn.RemoteAddr().String()
	slog.Info("peer connected", "doc", mux.Vars(request)["doc"], "remote", remote, "peers", r.peers.Add(1))
	defer func() {
		slog.Info("peer left", "remote", remote, "peers", r.peers.Add(-1))
	}()

	if err := Sync(r.ctx, conn, doc, doc.NewSyncState(), r.opts.SyncInterval); err != nil {
		slog.Warn("failed to sync", "remote", remote, "err", err)
	}
}

func (r *Relay) backupLoop() {
	defer r.wg.Done()
	t := time.NewTicker(r.opts.BackupInterval)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			if err := r.Backup(r.ctx); err != nil {
				slog.Error("failed to backup docs in database", "err", err)
			}
		case <-r.ctx.Done():
			return
		}
	}
}

// Backup writes every document whose content changed since the last
// backup. It does nothing without a database.
func (r *Relay) Backup(ctx context.Context) error {
	if r.db == nil {
		return nil
	}
	var errs []error
	r.docs.Range(func(key, value any) bool {
		id, doc := key.(string), value.(*state.SharedText)
		content := base64.StdEncoding.EncodeToString(doc.Save())
		res, err := r.db.ExecContext(ctx,
			`INSERT INTO docs (id, content) VALUES (?, ?)
			ON CONFLICT(id) DO UPDATE SET content = excluded.content WHERE content != excluded.content`,
			id, content,
		)
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to backup %s: %w", id, err))
			return true
		}
		if n, _ := res.RowsAffected(); n > 0 {
			slog.Info("backed up", "doc", id, "heads", doc.Heads())
		}
		return true
	})
	return errors.Join(errs...)
}

// Close ends every sync session, writes a final backup and closes the
// database.
func (r *Relay) Close() error {
	var err error
	r.closed.Do(func() {
		r.cancel()
		r.wg.Wait()
		if r.db == nil {
			return
		}
		err = r.Backup(context.Background())
		if cerr := r.db.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close database: %w", cerr)
		}
	})
	return err
}

func (r *Relay) closeDB() {
	if r.db != nil {
		_ = r.db.Close()
	}
}
