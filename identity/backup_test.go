// ABOUTME: Tests for passphrase-encrypted seed backups.
// ABOUTME: Verifies round trips, wrong-passphrase failure and stored-parameter decryption.
package identity

import (
	"encoding/base64"
	"errors"
	"testing"
)

// testKDFParams keeps Argon2id cheap enough for CI while exercising the same
// code paths as the production defaults.
func testKDFParams() KDFParams {
	p := DefaultKDFParams()
	p.Iterations = 1
	p.MemoryKiB = 16 * 1024
	p.Parallelism = 1
	return p
}

func TestBackupRoundTrip(t *testing.T) {
	seed, err := NewSeed()
	if err != nil {
		t.Fatalf("new seed: %v", err)
	}

	backup, err := EncryptBackupWithParams(seed, "correct horse", testKDFParams())
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if backup.BackupID == "" {
		t.Fatalf("expected backup id")
	}
	if backup.Params.SaltB64 == "" {
		t.Fatalf("expected fresh salt in params")
	}

	restored, err := DecryptBackup(backup, "correct horse")
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if !seed.Equal(restored) {
		t.Fatalf("restored seed does not match original")
	}
}

func TestBackupWrongPassphrase(t *testing.T) {
	seed, _ := NewSeed()
	backup, err := EncryptBackupWithParams(seed, "right", testKDFParams())
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}

	_, err = DecryptBackup(backup, "wrong")
	if !errors.Is(err, ErrDecryptFailed) {
		t.Fatalf("expected ErrDecryptFailed, got %v", err)
	}
}

func TestBackupTamperedCiphertext(t *testing.T) {
	seed, _ := NewSeed()
	backup, err := EncryptBackupWithParams(seed, "pass", testKDFParams())
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}

	raw, err := base64.StdEncoding.DecodeString(backup.CiphertextB64)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	raw[len(raw)-1] ^= 0x01
	backup.CiphertextB64 = base64.StdEncoding.EncodeToString(raw)

	_, err = DecryptBackup(backup, "pass")
	if !errors.Is(err, ErrDecryptFailed) {
		t.Fatalf("expected ErrDecryptFailed for tampered blob, got %v", err)
	}
}

func TestBackupFreshSaltPerBackup(t *testing.T) {
	seed, _ := NewSeed()
	b1, err := EncryptBackupWithParams(seed, "pass", testKDFParams())
	if err != nil {
		t.Fatalf("encrypt1: %v", err)
	}
	b2, err := EncryptBackupWithParams(seed, "pass", testKDFParams())
	if err != nil {
		t.Fatalf("encrypt2: %v", err)
	}
	if b1.Params.SaltB64 == b2.Params.SaltB64 {
		t.Fatalf("salt must be freshly random per backup")
	}
	if b1.CiphertextB64 == b2.CiphertextB64 {
		t.Fatalf("ciphertexts must differ across backups")
	}
}

func TestBackupDecryptsWithStoredParams(t *testing.T) {
	// A blob written under old (cheaper) cost settings must still decrypt
	// after defaults change: decryption reads the stored params, never the
	// current defaults.
	seed, _ := NewSeed()
	old := testKDFParams()
	backup, err := EncryptBackupWithParams(seed, "pass", old)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if backup.Params.Iterations != old.Iterations || backup.Params.MemoryKiB != old.MemoryKiB {
		t.Fatalf("params not persisted with backup")
	}
	restored, err := DecryptBackup(backup, "pass")
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if !seed.Equal(restored) {
		t.Fatalf("restore mismatch")
	}
}

func TestBackupParamValidation(t *testing.T) {
	seed, _ := NewSeed()

	p := testKDFParams()
	p.Type = "scrypt"
	if _, err := EncryptBackupWithParams(seed, "pass", p); err == nil {
		t.Fatalf("expected error for unsupported kdf type")
	}

	p = testKDFParams()
	p.Iterations = 0
	if _, err := EncryptBackupWithParams(seed, "pass", p); err == nil {
		t.Fatalf("expected error for zero iterations")
	}

	if _, err := EncryptBackupWithParams(seed, "", testKDFParams()); err == nil {
		t.Fatalf("expected error for empty passphrase")
	}
}

func TestDefaultKDFParamsFloor(t *testing.T) {
	p := DefaultKDFParams()
	if p.MemoryKiB < 64*1024 {
		t.Fatalf("default memory below 64 MiB: %d KiB", p.MemoryKiB)
	}
	if p.Iterations < 2 {
		t.Fatalf("default iterations below 2: %d", p.Iterations)
	}
}
