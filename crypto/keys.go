package crypto

import (
	"crypto/sha256"
	"crypto/subtle"
)

// KeySize is the size in bytes of derived keys and password digests.
const KeySize = 32

// Key is symmetric key material derived from a password.
type Key [KeySize]byte

// PasswordHash is the digest stored in place of a password.
type PasswordHash [KeySize]byte

// DeriveKey computes the symmetric key for a password.
//
// The derivation is a single unsalted SHA-256 digest of the password bytes.
// Both peers must reproduce identical key bytes from the password alone, so
// the digest parameters are part of the wire contract.
func DeriveKey(password string) Key {
	return Key(sha256.Sum256([]byte(password)))
}

// HashPassword computes the digest stored for credential verification.
func HashPassword(password string) PasswordHash {
	return PasswordHash(sha256.Sum256([]byte(password)))
}

// Verify reports whether password matches the stored digest. The comparison
// is constant time.
func (h PasswordHash) Verify(password string) bool {
	digest := sha256.Sum256([]byte(password))
	return subtle.ConstantTimeCompare(h[:], digest[:]) == 1
}
