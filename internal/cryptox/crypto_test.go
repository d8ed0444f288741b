package cryptox

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveKey_Deterministic(t *testing.T) {
	secret := []byte("admin@admin")
	salt := []byte("fixed-salt")

	key1 := DeriveKey(secret, salt)
	key2 := DeriveKey(secret, salt)

	require.Len(t, key1, 32)
	if !bytes.Equal(key1, key2) {
		t.Errorf("expected same result for same inputs, got different")
	}
}

func TestDeriveKey_DifferentSalts(t *testing.T) {
	secret := []byte("admin@admin")

	key1 := DeriveKey(secret, []byte("salt-1"))
	key2 := DeriveKey(secret, []byte("salt-2"))

	if bytes.Equal(key1, key2) {
		t.Errorf("expected different results for different salts, got same")
	}
}

func TestVerifierMatches(t *testing.T) {
	salt := []byte("s")
	want := MakeVerifier(DeriveKey([]byte("right"), salt))

	assert.True(t, VerifierMatches(DeriveKey([]byte("right"), salt), want))
	assert.False(t, VerifierMatches(DeriveKey([]byte("wrong"), salt), want))
	assert.False(t, VerifierMatches(DeriveKey([]byte("right"), salt), want[:16]))
}

func TestRandomHex_LengthAndHex(t *testing.T) {
	s := RandomHex(16)
	require.Len(t, s, 32)
	_, err := hex.DecodeString(s)
	require.NoError(t, err)

	if s == RandomHex(16) {
		t.Logf("warning: two RandomHex(16) results are identical; extremely unlikely")
	}
}

func TestRandomBytes_ZeroSize(t *testing.T) {
	assert.Empty(t, RandomBytes(0))
}

func TestWipe(t *testing.T) {
	buf := []byte{1, 2, 3, 4, 5}
	Wipe(buf)
	for i, v := range buf {
		assert.Zero(t, v, "buf[%d]", i)
	}
	Wipe(nil)
}
