// Package transport frames one byte stream into text lines and binary blocks.
//
// The wire protocol interleaves a line-oriented control plane with raw
// length-delimited payload blocks on the same connection. Conn is the single
// owner of the stream's read pointer for both modes, so bytes buffered while
// scanning for a line delimiter are handed to a following block read instead
// of being lost.
//
// The package also carries the TLS listen/dial glue; sessions themselves
// assume an already-secured, ordered stream.
package transport
