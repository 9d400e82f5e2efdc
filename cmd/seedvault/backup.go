// ABOUTME: Server backup commands: encrypt-and-upload, download-and-restore.
// ABOUTME: The Argon2id derivation is slow on purpose; both commands warn before the wait.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"seedvault/identity"
)

func cmdBackup(args []string) error {
	fs := flag.NewFlagSet("backup", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := LoadConfig()
	if err != nil {
		return err
	}
	if cfg.UserID == "" {
		return errors.New("no user configured: set SEEDVAULT_USER_ID or user_id in the config file")
	}
	svc, store, err := openService(cfg)
	if err != nil {
		return err
	}
	defer func() {
		_ = store.Close()
	}()

	passphrase, err := getPassphraseWithConfirm("Backup passphrase: ", "Confirm passphrase: ")
	if err != nil {
		return err
	}
	defer zeroBytes(passphrase)

	fmt.Fprintln(os.Stderr, "Deriving key (this takes a moment by design)...")
	if err := svc.CreateBackup(context.Background(), string(passphrase)); err != nil {
		return err
	}

	fmt.Println("Backup uploaded.")
	return nil
}

func cmdRestore(args []string) error {
	fs := flag.NewFlagSet("restore", flag.ExitOnError)
	force := fs.Bool("force", false, "replace an existing identity")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := LoadConfig()
	if err != nil {
		return err
	}
	if cfg.UserID == "" {
		return errors.New("no user configured: set SEEDVAULT_USER_ID or user_id in the config file")
	}
	svc, store, err := openService(cfg)
	if err != nil {
		return err
	}
	defer func() {
		_ = store.Close()
	}()

	ctx := context.Background()
	if _, err := store.Get(ctx); err == nil && !*force {
		return errors.New("an identity seed already exists (use --force to replace it)")
	}

	passphrase, err := getPassphrase("Backup passphrase: ")
	if err != nil {
		return err
	}
	defer zeroBytes(passphrase)

	fmt.Fprintln(os.Stderr, "Deriving key (this takes a moment by design)...")
	err = svc.RestoreBackup(ctx, string(passphrase))
	switch {
	case errors.Is(err, identity.ErrBackupNotFound):
		return errors.New("no backup exists for this account")
	case errors.Is(err, identity.ErrDecryptFailed):
		return errors.New("wrong passphrase or corrupted backup")
	case err != nil:
		return err
	}

	fmt.Println("Identity restored from backup.")
	return nil
}
