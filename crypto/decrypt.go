package crypto

import (
	"errors"

	"golang.org/x/crypto/nacl/secretbox"
)

// ErrDecryptionFailed indicates ciphertext that did not authenticate under
// the given key, either because the key is wrong or the bytes were corrupted.
var ErrDecryptionFailed = errors.New("crypto: decryption failed: message authentication failed")

// Decrypt opens a sealed buffer produced by Encrypt with the same key.
func Decrypt(key Key, ciphertext []byte) ([]byte, error) {
	if len(ciphertext) < Overhead {
		return nil, ErrDecryptionFailed
	}
	plaintext, ok := secretbox.Open(nil, ciphertext, &payloadNonce, (*[KeySize]byte)(&key))
	if !ok {
		return nil, ErrDecryptionFailed
	}
	return plaintext, nil
}
