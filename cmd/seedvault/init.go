// ABOUTME: init.go creates the CLI configuration and generates a fresh identity seed.
// ABOUTME: Refuses to overwrite an existing identity without --force.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"seedvault/identity"
)

func cmdInit(args []string) error {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	force := fs.Bool("force", false, "replace an existing identity")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if ConfigExists() && !*force {
		return fmt.Errorf("config already exists at %s (use --force to overwrite)", ConfigPath())
	}

	cfg, err := InitConfig()
	if err != nil {
		return err
	}
	_, store, err := openService(cfg)
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

	seed, err := identity.NewSeed()
	if err != nil {
		return err
	}
	defer seed.Zero()
	if err := store.Set(ctx, seed); err != nil {
		return err
	}

	fmt.Printf("Device ID: %s\n", cfg.DeviceID)
	fmt.Println("\nIdentity created. Run 'seedvault mnemonic' and write down the recovery phrase.")
	return nil
}

func cmdStatus(args []string) error {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := LoadConfig()
	if err != nil {
		return err
	}
	_, store, err := openService(cfg)
	if err != nil {
		return err
	}
	defer func() {
		_ = store.Close()
	}()

	ctx := context.Background()
	fmt.Printf("Server:    %s\n", cfg.Server)
	fmt.Printf("Device ID: %s\n", cfg.DeviceID)

	if _, err := store.Get(ctx); errors.Is(err, identity.ErrNoIdentity) {
		fmt.Println("Identity:  none (run 'seedvault init')")
		return nil
	} else if err != nil {
		return err
	}
	fmt.Println("Identity:  present")

	backupID, err := store.GetState(ctx, "last_backup_id", "")
	if err != nil {
		return err
	}
	if backupID == "" {
		fmt.Println("Backup:    never uploaded")
	} else {
		at, _ := store.GetState(ctx, "last_backup_at", "?")
		fmt.Printf("Backup:    %s (unix %s)\n", backupID, at)
	}
	return nil
}
