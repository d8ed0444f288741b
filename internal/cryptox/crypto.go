// Package cryptox holds the key-derivation helpers behind the session
// credential check and the cached session flag signature.
package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"

	"golang.org/x/crypto/argon2"
)

// DeriveKey stretches a secret with argon2id. Parameters are fixed so the
// same inputs always produce the same 32-byte key.
func DeriveKey(secret []byte, salt []byte) []byte {
	return argon2.IDKey(secret, salt, 1, 64*1024, 4, 32)
}

func MakeVerifier(key []byte) []byte {
	hash := sha256.Sum256(key)
	return hash[:]
}

// VerifierMatches reports whether the verifier of key equals want, compared
// in constant time.
func VerifierMatches(key, want []byte) bool {
	got := MakeVerifier(key)
	return subtle.ConstantTimeCompare(got, want) == 1
}

// RandomBytes returns size bytes from crypto/rand.
func RandomBytes(size int) []byte {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return b
}

// RandomHex returns a hex string encoding size random bytes.
func RandomHex(size int) string {
	return hex.EncodeToString(RandomBytes(size))
}

// Wipe zeroes b in place. Nil is allowed.
func Wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
