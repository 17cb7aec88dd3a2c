package net

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/mdns"
)

const serviceType = "_scribbleboard._tcp"

// DefaultBrowseTimeout bounds a Browse whose context has no deadline.
const DefaultBrowseTimeout = 3 * time.Second

// ErrNoBoard is returned when discovery finds nobody hosting.
var ErrNoBoard = errors.New("no board found on the local network")

// Board is a host found through discovery.
type Board struct {
	Addr string
	Doc  string
}

// Link returns the share link for the board.
func (b Board) Link() string {
	return LinkScheme + "://" + b.Addr
}

// Advertise announces a relay listening on port that serves doc. Call
// Shutdown on the returned server to stop.
func Advertise(port int, doc string) (*mdns.Server, error) {
	host, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("could not get hostname: %w", err)
	}

	var ips []net.IP
	if ip, err := GetOutgoingIP(); err == nil {
		ips = append(ips, net.ParseIP(ip))
	}
	service, err := mdns.NewMDNSService(host, serviceType, "", "", port, ips, []string{"ScribbleBoard", "doc=" + doc})
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS service: %w", err)
	}
	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return nil, fmt.Errorf("failed to start mDNS server: %w", err)
	}
	return server, nil
}

// Browse queries the local network once and calls found for every board
// that answers before ctx's deadline.
func Browse(ctx context.Context, found func(Board)) error {
	timeout := DefaultBrowseTimeout
	if dl, ok := ctx.Deadline(); ok {
		timeout = time.Until(dl)
	}
	if timeout <= 0 {
		return ctx.Err()
	}

	entries := make(chan *mdns.ServiceEntry, 8)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for e := range entries {
			if e.AddrV4 == nil || e.Port == 0 || ctx.Err() != nil {
				continue
			}
			found(Board{
				Addr: net.JoinHostPort(e.AddrV4.String(), fmt.Sprint(e.Port)),
				Doc:  docField(e.InfoFields),
			})
		}
	}()

	err := mdns.Query(&mdns.QueryParam{
		Service: serviceType,
		Domain:  "local",
		Timeout: timeout,
		Entries: entries,
	})
	close(entries)
	<-done
	if err != nil {
		return fmt.Errorf("failed to query mDNS: %w", err)
	}
	return nil
}

// Discover returns the first board that answers.
func Discover(ctx context.Context) (Board, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultBrowseTimeout)
	defer cancel()
	var first *Board
	err := Browse(ctx, func(b Board) {
		if first == nil {
			first = &b
		}
	})
	if err != nil {
		return Board{}, err
	}
	if first == nil {
		return Board{}, ErrNoBoard
	}
	return *first, nil
}

func docField(fields []string) string {
	for _, f := range fields {
		if v, ok := strings.CutPrefix(f, "doc="); ok {
			return v
		}
	}
	return ""
}
