package vaultwire

import (
	"net"

	"github.com/opd-ai/vaultwire/session"
	"github.com/opd-ai/vaultwire/transport"
)

// Dial connects to a server over TLS and returns an unauthenticated session
// client. caFile points at a PEM trust bundle; empty uses the system store.
func Dial(addr, caFile string) (*session.Client, error) {
	conn, err := transport.Dial(addr, caFile)
	if err != nil {
		return nil, err
	}
	return session.NewClient(conn), nil
}

// DialInsecure connects over plain TCP. Intended for tests and environments
// where an external layer already secures the link.
func DialInsecure(addr string) (*session.Client, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, err
	}
	return session.NewClient(conn), nil
}
