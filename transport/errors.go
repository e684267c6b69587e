package transport

import "errors"

var (
	// ErrConnectionClosed indicates the peer disconnected during a read or
	// write. Fatal to the session.
	ErrConnectionClosed = errors.New("transport: connection closed")

	// ErrTruncatedTransfer indicates the connection closed before an
	// announced block arrived in full.
	ErrTruncatedTransfer = errors.New("transport: connection closed mid-block")

	// ErrBlockTooLarge indicates an announced block length past MaxBlockSize.
	ErrBlockTooLarge = errors.New("transport: announced block exceeds limit")

	// ErrEmbeddedNewline indicates a line containing the delimiter itself.
	ErrEmbeddedNewline = errors.New("transport: line contains embedded newline")
)
