// ABOUTME: Service wires the store, transport and codecs into the export/import flows.
// ABOUTME: Each attempt owns its own session state; nothing leaks across attempts.
package identity

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/oklog/ulid/v2"
)

// ImportEvents provides hooks for observability during a frame import.
type ImportEvents struct {
	OnFrame  func(held, total int)  // called after each newly accepted frame
	OnReject func(r Result)         // called when a session rejects and resets
	OnDone   func(attemptID string) // called on a successful import
}

// Service coordinates the seed paths against the external collaborators.
type Service struct {
	store     IdentityStore
	transport BackupTransport
	kdf       KDFParams
}

// NewService builds a service. transport may be nil when server backup is not
// configured; only CreateBackup/RestoreBackup require it.
func NewService(store IdentityStore, transport BackupTransport) *Service {
	return &Service{store: store, transport: transport}
}

// SetKDFParams overrides the backup cost settings; zero value uses defaults.
// Stored backups always decrypt with their own recorded parameters.
func (s *Service) SetKDFParams(p KDFParams) { s.kdf = p }

// ExportMnemonic regenerates the 24-word recovery phrase for display.
func (s *Service) ExportMnemonic(ctx context.Context) (string, error) {
	seed, err := s.store.Get(ctx)
	if err != nil {
		return "", err
	}
	defer seed.Zero()
	return EncodeMnemonic(seed)
}

// ExportFrames produces the animated QR frame set for a device transfer.
func (s *Service) ExportFrames(ctx context.Context) ([]Frame, error) {
	seed, err := s.store.Get(ctx)
	if err != nil {
		return nil, err
	}
	defer seed.Zero()
	mnemonic, err := EncodeMnemonic(seed)
	if err != nil {
		return nil, err
	}
	return SplitFrames(mnemonic, seed)
}

// ImportMnemonic decodes a typed-in recovery phrase and stores the seed.
// Invalid input leaves the store untouched.
func (s *Service) ImportMnemonic(ctx context.Context, mnemonic string) error {
	seed, err := DecodeMnemonic(mnemonic)
	if err != nil {
		return err
	}
	defer seed.Zero()
	return s.store.Set(ctx, seed)
}

// ImportFrames drains the scan session until a full set validates, then
// stores the reconstructed seed. Rejected sets reset the session so the user
// can keep scanning; the loop ends on success, context cancellation, or the
// scan input closing (ErrScanEnded). An abandoned attempt writes nothing to
// the store.
func (s *Service) ImportFrames(ctx context.Context, session *ScanSession, events *ImportEvents) error {
	attemptID := ulid.Make().String()
	held := 0

	seed, err := session.Run(ctx, func(r Result) {
		switch r.State {
		case StateCollecting:
			if r.Held > held && events != nil && events.OnFrame != nil {
				events.OnFrame(r.Held, FrameCount)
			}
			held = r.Held
		case StateRejected:
			held = 0
			if events != nil && events.OnReject != nil {
				events.OnReject(r)
			}
		}
	})
	if err != nil {
		return err
	}

	err = s.store.Set(ctx, seed)
	seed.Zero()
	if err != nil {
		return err
	}
	if events != nil && events.OnDone != nil {
		events.OnDone(attemptID)
	}
	return nil
}

// CreateBackup encrypts the seed under the passphrase and uploads it.
// The Argon2id derivation is CPU-bound and intentionally slow; callers on an
// interactive path should run this off the UI goroutine.
func (s *Service) CreateBackup(ctx context.Context, passphrase string) error {
	seed, err := s.store.Get(ctx)
	if err != nil {
		return err
	}
	params := s.kdf
	if params.Type == "" {
		params = DefaultKDFParams()
	}
	backup, err := EncryptBackupWithParams(seed, passphrase, params)
	seed.Zero()
	if err != nil {
		return err
	}
	if err := s.transport.Upload(ctx, backup); err != nil {
		return err
	}
	if rec, ok := s.store.(StateStore); ok {
		if err := rec.SetState(ctx, "last_backup_id", backup.BackupID); err != nil {
			return fmt.Errorf("backup uploaded, recording state: %w", err)
		}
		if err := rec.SetState(ctx, "last_backup_at", strconv.FormatInt(time.Now().Unix(), 10)); err != nil {
			return fmt.Errorf("backup uploaded, recording state: %w", err)
		}
	}
	return nil
}

// RestoreBackup downloads the blob, decrypts it with the passphrase and
// stores the recovered seed. The store is only written after the ciphertext
// fully authenticates.
func (s *Service) RestoreBackup(ctx context.Context, passphrase string) error {
	backup, err := s.transport.Download(ctx)
	if err != nil {
		return err
	}
	seed, err := DecryptBackup(backup, passphrase)
	if err != nil {
		return err
	}
	defer seed.Zero()
	return s.store.Set(ctx, seed)
}
