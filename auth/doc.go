// Package auth holds the credential store consumed by server sessions.
//
// The store maps each username to a password digest for verification and to
// the symmetric key derived from the same password at provisioning time.
// Writes happen only during provisioning; runtime access is read-mostly.
package auth
