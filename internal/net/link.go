package net

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
)

// LinkScheme prefixes every share link.
const LinkScheme = "scribbleboard"

// ErrBadLink is returned for links that do not name a host and port.
var ErrBadLink = errors.New("bad share link")

// ShareLink builds the link a host hands out to its peers.
func ShareLink(host string, port int) string {
	return LinkScheme + "://" + net.JoinHostPort(host, strconv.Itoa(port))
}

// ParseLink turns a share link into the relay's http base URL. A bare
// host:port is accepted as well.
func ParseLink(link string) (*url.URL, error) {
	link = strings.TrimSpace(link)
	if !strings.Contains(link, "://") {
		link = LinkScheme + "://" + link
	}
	u, err := url.Parse(link)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadLink, err)
	}
	if u.Scheme != LinkScheme {
		return nil, fmt.Errorf("%w: unexpected scheme %q", ErrBadLink, u.Scheme)
	}
	if u.Hostname() == "" || u.Port() == "" {
		return nil, fmt.Errorf("%w: %q needs host and port", ErrBadLink, link)
	}
	return &url.URL{Scheme: "http", Host: u.Host}, nil
}
