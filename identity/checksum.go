package identity

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"

	"golang.org/x/crypto/hkdf"
)

// TransferTagLen is the truncated tag size carried in the check frame.
const TransferTagLen = 8

const checksumInfo = "seedvault:v1:qrcheck"

// TransferTag computes the keyed integrity tag carried alongside a QR
// transfer. The MAC key is an HKDF subkey of the seed itself, so the tag is
// self-authenticating: only a receiver that already reconstructed the correct
// seed can recompute it. It detects transcription and corruption errors
// between two devices converging on the same seed. It provides NO authenticity
// against an attacker who controls the frames, and must not be treated as one.
func TransferTag(seed Seed) ([TransferTagLen]byte, error) {
	var tag [TransferTagLen]byte
	if !seed.Valid() {
		return tag, errors.New("seed must be 32 bytes")
	}

	key := make([]byte, 32)
	r := hkdf.New(sha256.New, seed.Raw, nil, []byte(checksumInfo))
	if _, err := io.ReadFull(r, key); err != nil {
		return tag, err
	}

	mac := hmac.New(sha256.New, key)
	mac.Write(seed.Raw)
	sum := mac.Sum(nil)
	copy(tag[:], sum[:TransferTagLen])

	zeroBytes(key)
	return tag, nil
}

// TransferTagHex returns the tag as 16 lowercase hex characters for the wire.
func TransferTagHex(seed Seed) (string, error) {
	tag, err := TransferTag(seed)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(tag[:]), nil
}
