package net

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
)

// DefaultRetryInterval is the pause between reconnect attempts.
const DefaultRetryInterval = 2 * time.Second

// Client talks to a relay on behalf of one document.
type Client struct {
	base *url.URL
	doc  string

	SyncInterval  time.Duration
	RetryInterval time.Duration
	HTTP          *http.Client
	Dialer        *websocket.Dialer
}

// NewClient returns a client for document doc on the relay behind link.
func NewClient(link, doc string) (*Client, error) {
	base, err := ParseLink(link)
	if err != nil {
		return nil, err
	}
	return &Client{
		base:          base,
		doc:           doc,
		SyncInterval:  DefaultSyncInterval,
		RetryInterval: DefaultRetryInterval,
		HTTP:          http.DefaultClient,
		Dialer:        websocket.DefaultDialer,
	}, nil
}

// Fetch downloads the relay's latest copy of the document.
func (c *Client) Fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base.JoinPath("docs", c.doc, "latest").String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to get: %w", err)
	}
	defer resp.Body.Close()
	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDoc, c.doc)
	default:
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read body from get: %w", err)
	}
	return raw, nil
}

// Run keeps doc in sync with the relay until ctx ends, reconnecting after
// every failure.
func (c *Client) Run(ctx context.Context, doc Document) error {
	retry := c.RetryInterval
	if retry <= 0 {
		retry = DefaultRetryInterval
	}
	for {
		if err := c.connectAndSync(ctx, doc); err != nil {
			slog.Warn("failed to sync", "doc", c.doc, "err", err)
		}
		t := time.NewTimer(retry)
		select {
		case <-t.C:
		case <-ctx.Done():
			t.Stop()
			slog.Info("stopping scheduled sync", "doc", c.doc)
			return nil
		}
	}
}

func (c *Client) connectAndSync(ctx context.Context, doc Document) error {
	u := c.base.JoinPath("docs", c.doc, "sync")
	u.Scheme = "ws"
	conn, _, err := c.Dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to dial: %w", err)
	}
	defer conn.Close()
	slog.Info("syncing", "doc", c.doc, "relay", c.base.Host)
	if err := Sync(ctx, conn, doc, doc.NewSyncState(), c.SyncInterval); err != nil {
		return fmt.Errorf("failed to sync: %w", err)
	}
	return nil
}
