package identity

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"runtime"
	"strings"
)

// SeedLen is the fixed length of the root identity secret in bytes.
const SeedLen = 32

// Seed is the root identity secret. It is created once at account creation
// and must never be logged or leave the device in cleartext.
type Seed struct {
	Raw []byte
}

// NewSeed generates a fresh random 32-byte seed.
func NewSeed() (Seed, error) {
	b := make([]byte, SeedLen)
	if _, err := rand.Read(b); err != nil {
		return Seed{}, err
	}
	return Seed{Raw: b}, nil
}

// ParseSeedHex converts a hex string back into a seed.
func ParseSeedHex(s string) (Seed, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Seed{}, errors.New("seed required")
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return Seed{}, err
	}
	if len(b) != SeedLen {
		return Seed{}, errors.New("seed must decode to 32 bytes")
	}
	return Seed{Raw: b}, nil
}

// Hex returns the lowercase hex encoding of the seed.
func (s Seed) Hex() string {
	return hex.EncodeToString(s.Raw)
}

// Valid reports whether the seed has the expected length.
func (s Seed) Valid() bool {
	return len(s.Raw) == SeedLen
}

// Equal compares two seeds in constant time.
func (s Seed) Equal(other Seed) bool {
	if len(s.Raw) != len(other.Raw) {
		return false
	}
	return subtle.ConstantTimeCompare(s.Raw, other.Raw) == 1
}

// Clone returns an independent copy of the seed bytes.
func (s Seed) Clone() Seed {
	return Seed{Raw: append([]byte(nil), s.Raw...)}
}

// Zero overwrites the seed bytes. Call once the seed has been consumed.
func (s Seed) Zero() {
	zeroBytes(s.Raw)
}

// zeroBytes overwrites a byte slice with zeros.
func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
	runtime.KeepAlive(b)
}
