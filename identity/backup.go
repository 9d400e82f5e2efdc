// ABOUTME: Passphrase-encrypted seed backup for server storage.
// ABOUTME: Argon2id key derivation plus AES-256-GCM; cost parameters travel with the blob.
package identity

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"

	"github.com/oklog/ulid/v2"
	"golang.org/x/crypto/argon2"
)

const (
	backupSaltLen  = 16
	backupNonceLen = 12
	backupMACLen   = 16
	backupKeyLen   = 32
)

// KDFParams records everything needed to re-derive the backup key later.
// None of this is secret; it is stored alongside the ciphertext so that
// raising the cost over time never breaks old backups.
type KDFParams struct {
	Type        string `json:"type"` // always "argon2id"
	SaltB64     string `json:"salt"`
	Iterations  uint32 `json:"iterations"`
	MemoryKiB   uint32 `json:"memory"`
	Parallelism uint8  `json:"parallelism"`
	HashLength  uint32 `json:"hashLength"`
	NonceLength int    `json:"nonceLength"`
	MACLength   int    `json:"macLength"`
}

// DefaultKDFParams returns the current cost settings, deliberately expensive
// to slow offline brute force against weak passphrases. The salt is filled in
// per backup.
func DefaultKDFParams() KDFParams {
	return KDFParams{
		Type:        "argon2id",
		Iterations:  3,
		MemoryKiB:   64 * 1024,
		Parallelism: 4,
		HashLength:  backupKeyLen,
		NonceLength: backupNonceLen,
		MACLength:   backupMACLen,
	}
}

// EncryptedBackup is the opaque blob handed to the backup transport. Only the
// owning client's passphrase can decrypt it.
type EncryptedBackup struct {
	BackupID      string    `json:"backup_id"`
	Params        KDFParams `json:"params"`
	CiphertextB64 string    `json:"ciphertext"` // base64(nonce || ct || tag)
}

// EncryptBackup seals the seed under a key derived from the passphrase using
// the default cost parameters and a fresh random salt.
func EncryptBackup(seed Seed, passphrase string) (EncryptedBackup, error) {
	return EncryptBackupWithParams(seed, passphrase, DefaultKDFParams())
}

// EncryptBackupWithParams is EncryptBackup with explicit cost settings.
// Any salt already present in params is ignored: the salt MUST be freshly
// random each time a backup is created, or the KDF loses its purpose.
func EncryptBackupWithParams(seed Seed, passphrase string, params KDFParams) (EncryptedBackup, error) {
	if !seed.Valid() {
		return EncryptedBackup{}, errors.New("seed must be 32 bytes")
	}
	if passphrase == "" {
		return EncryptedBackup{}, errors.New("passphrase required")
	}
	if err := checkKDFParams(params); err != nil {
		return EncryptedBackup{}, err
	}

	salt := make([]byte, backupSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return EncryptedBackup{}, err
	}
	params.SaltB64 = base64.StdEncoding.EncodeToString(salt)

	key := argon2.IDKey([]byte(passphrase), salt, params.Iterations, params.MemoryKiB, params.Parallelism, params.HashLength)
	defer zeroBytes(key)

	aead, err := newBackupAEAD(key)
	if err != nil {
		return EncryptedBackup{}, err
	}
	nonce := make([]byte, backupNonceLen)
	if _, err := rand.Read(nonce); err != nil {
		return EncryptedBackup{}, err
	}
	ct := aead.Seal(nil, nonce, seed.Raw, nil)

	return EncryptedBackup{
		BackupID:      ulid.Make().String(),
		Params:        params,
		CiphertextB64: base64.StdEncoding.EncodeToString(append(nonce, ct...)),
	}, nil
}

// DecryptBackup re-derives the key from the stored parameters and
// authenticate-then-decrypts. Any failure (wrong passphrase, corrupted blob,
// truncated ciphertext) surfaces as the same ErrDecryptFailed so callers
// cannot build a decryption oracle, and no partially-decrypted bytes escape.
func DecryptBackup(backup EncryptedBackup, passphrase string) (Seed, error) {
	if passphrase == "" {
		return Seed{}, errors.New("passphrase required")
	}
	if err := checkKDFParams(backup.Params); err != nil {
		return Seed{}, err
	}
	salt, err := base64.StdEncoding.DecodeString(backup.Params.SaltB64)
	if err != nil || len(salt) != backupSaltLen {
		return Seed{}, ErrDecryptFailed
	}

	p := backup.Params
	key := argon2.IDKey([]byte(passphrase), salt, p.Iterations, p.MemoryKiB, p.Parallelism, p.HashLength)
	defer zeroBytes(key)

	raw, err := base64.StdEncoding.DecodeString(backup.CiphertextB64)
	if err != nil {
		return Seed{}, ErrDecryptFailed
	}
	if len(raw) < p.NonceLength+p.MACLength {
		return Seed{}, ErrDecryptFailed
	}

	aead, err := newBackupAEAD(key)
	if err != nil {
		return Seed{}, err
	}
	plain, err := aead.Open(nil, raw[:p.NonceLength], raw[p.NonceLength:], nil)
	if err != nil {
		return Seed{}, ErrDecryptFailed
	}
	if len(plain) != SeedLen {
		zeroBytes(plain)
		return Seed{}, ErrDecryptFailed
	}
	return Seed{Raw: plain}, nil
}

func newBackupAEAD(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

func checkKDFParams(p KDFParams) error {
	switch {
	case p.Type != "argon2id":
		return errors.New("unsupported kdf type")
	case p.Iterations < 1:
		return errors.New("kdf iterations must be positive")
	case p.MemoryKiB < 8*uint32(p.Parallelism):
		return errors.New("kdf memory too low")
	case p.Parallelism < 1:
		return errors.New("kdf parallelism must be positive")
	case p.HashLength != backupKeyLen:
		return errors.New("kdf hash length must be 32")
	case p.NonceLength != backupNonceLen:
		return errors.New("nonce length must be 12")
	case p.MACLength != backupMACLen:
		return errors.New("mac length must be 16")
	}
	return nil
}
