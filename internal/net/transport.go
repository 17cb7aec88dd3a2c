package net

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/automerge/automerge-go"
	"github.com/gorilla/websocket"
)

// DefaultSyncInterval is how often Sync flushes local changes to a peer.
const DefaultSyncInterval = time.Second

// Document is a replica that can take part in a sync session.
type Document interface {
	NewSyncState() *automerge.SyncState
	GenerateMessage(ss *automerge.SyncState) ([]byte, bool)
	ReceiveMessage(ss *automerge.SyncState, msg []byte) error
}

func readAndReceiveMessage(conn *websocket.Conn, doc Document, ss *automerge.SyncState) error {
	mt, p, err := conn.ReadMessage()
	if err != nil {
		return fmt.Errorf("failed to read message: %w", err)
	}
	if mt != websocket.BinaryMessage {
		return nil
	}
	return doc.ReceiveMessage(ss, p)
}

// flush writes messages until the sync state has nothing more to say.
func flush(conn *websocket.Conn, doc Document, ss *automerge.SyncState) error {
	for {
		msg, ok := doc.GenerateMessage(ss)
		if !ok {
			return nil
		}
		if err := conn.WriteMessage(websocket.BinaryMessage, msg); err != nil {
			return fmt.Errorf("failed to write message: %w", err)
		}
	}
}

// Sync runs one sync session over conn until ctx ends or the connection
// fails. It reads in one goroutine and writes in another, flushing on every
// tick of interval. Ending ctx is not an error.
func Sync(ctx context.Context, conn *websocket.Conn, doc Document, ss *automerge.SyncState, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultSyncInterval
	}
	parent := ctx
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var readErr, writeErr error
	wg := new(sync.WaitGroup)

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer cancel()
		for {
			if err := readAndReceiveMessage(conn, doc, ss); err != nil {
				readErr = err
				return
			}
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		// closing unblocks the reader
		defer conn.Close()

		if err := flush(conn, doc, ss); err != nil {
			writeErr = err
			return
		}
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				if err := flush(conn, doc, ss); err != nil {
					writeErr = err
					return
				}
			case <-ctx.Done():
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
					time.Now().Add(time.Second))
				return
			}
		}
	}()

	wg.Wait()
	var closed *websocket.CloseError
	switch {
	case writeErr != nil:
		return writeErr
	case parent.Err() != nil:
		return nil
	case errors.As(readErr, &closed) && closed.Code == websocket.CloseNormalClosure:
		slog.Debug("sync session closed by peer")
		return nil
	}
	return readErr
}
