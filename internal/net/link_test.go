package net

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShareLink(t *testing.T) {
	assert.Equal(t, "scribbleboard://192.168.1.4:8888", ShareLink("192.168.1.4", 8888))
	assert.Equal(t, "scribbleboard://[::1]:8888", ShareLink("::1", 8888))
}

func TestParseLink(t *testing.T) {
	for _, link := range []string{"scribbleboard://10.0.0.2:8888", " 10.0.0.2:8888 "} {
		u, err := ParseLink(link)
		require.NoError(t, err, link)
		assert.Equal(t, "http://10.0.0.2:8888", u.String())
	}

	for _, link := range []string{"http://10.0.0.2:8888", "scribbleboard://10.0.0.2", "scribbleboard://:8888", "%%"} {
		_, err := ParseLink(link)
		assert.ErrorIs(t, err, ErrBadLink, link)
	}
}

func TestBoardLink(t *testing.T) {
	b := Board{Addr: "10.0.0.2:8888", Doc: "main"}
	u, err := ParseLink(b.Link())
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.2:8888", u.Host)
}

func TestDocField(t *testing.T) {
	assert.Equal(t, "main", docField([]string{"ScribbleBoard", "doc=main"}))
	assert.Equal(t, "", docField([]string{"ScribbleBoard"}))
}

func TestGetOutgoingIP(t *testing.T) {
	ip, err := GetOutgoingIP()
	require.NoError(t, err)
	assert.NotNil(t, net.ParseIP(ip))
}
