package crypto

import (
	"errors"

	"golang.org/x/crypto/nacl/secretbox"
)

// Overhead is the number of bytes sealing adds to a plaintext.
const Overhead = secretbox.Overhead

// MaxPlaintextSize bounds a single sealed buffer. Whole files are sealed in
// one piece, so this is also the largest file the service will carry.
const MaxPlaintextSize = 256 * 1024 * 1024

// ErrPlaintextTooLarge indicates a buffer exceeding MaxPlaintextSize.
var ErrPlaintextTooLarge = errors.New("crypto: plaintext too large")

// payloadNonce is the fixed nonce used for payload sealing. The wire protocol
// carries no nonce alongside the ciphertext, so both peers must use the same
// constant to reproduce each other's buffers.
var payloadNonce [24]byte

// Encrypt seals plaintext under key using NaCl's secretbox. The result is
// len(plaintext)+Overhead bytes; identical inputs produce identical output.
func Encrypt(key Key, plaintext []byte) ([]byte, error) {
	if len(plaintext) > MaxPlaintextSize {
		return nil, ErrPlaintextTooLarge
	}
	return secretbox.Seal(nil, plaintext, &payloadNonce, (*[KeySize]byte)(&key)), nil
}
