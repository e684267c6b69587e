// Package session implements both roles of the vaultwire command protocol.
//
// A session starts with a one-round-trip password handshake and then runs
// strictly sequential commands: UPLOAD, DOWNLOAD, LIST, EXIT. Handler is the
// server half, bound to one connection for its lifetime; Client is the
// programmatic client half. Per-command failures are reported to the peer as
// a single FAILED line and leave the session usable; authentication failure
// and channel errors end it.
package session
