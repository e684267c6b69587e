// Package crypto provides the key material and payload cipher for vaultwire.
//
// Keys are derived deterministically from the user's password, so both peers
// reproduce identical key bytes without the key ever crossing the wire. File
// payloads are sealed as whole buffers with authenticated encryption; opening
// a buffer with the wrong key fails rather than yielding garbage.
package crypto
