// Package storage persists uploaded payloads in per-user directories.
//
// Each authenticated user owns an isolated namespace under the storage root;
// a file is identified by the (username, filename) pair and re-uploading a
// name overwrites the previous bytes. The store holds whatever bytes it is
// given; in vaultwire those are always ciphertext.
package storage
