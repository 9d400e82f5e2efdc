// ABOUTME: Commands for displaying and re-entering the 24-word recovery phrase.
// ABOUTME: The phrase is regenerated from the seed on demand; it is never stored.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"seedvault/identity"
)

func cmdMnemonic(args []string) error {
	fs := flag.NewFlagSet("mnemonic", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := LoadConfig()
	if err != nil {
		return err
	}
	svc, store, err := openService(cfg)
	if err != nil {
		return err
	}
	defer func() {
		_ = store.Close()
	}()

	mnemonic, err := svc.ExportMnemonic(context.Background())
	if err != nil {
		return err
	}

	words := strings.Fields(mnemonic)
	fmt.Fprintln(os.Stderr, "Write these 24 words down in order. Anyone holding them holds your identity.")
	fmt.Fprintln(os.Stderr)
	for i, w := range words {
		fmt.Printf("%2d. %-12s", i+1, w)
		if (i+1)%4 == 0 {
			fmt.Println()
		}
	}
	return nil
}

func cmdRecover(args []string) error {
	fs := flag.NewFlagSet("recover", flag.ExitOnError)
	force := fs.Bool("force", false, "replace an existing identity")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := LoadConfig()
	if err != nil {
		return err
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
		return fmt.Errorf("an identity seed already exists (use --force to replace it)")
	}

	fmt.Fprintln(os.Stderr, "Enter your 24-word recovery phrase:")
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return err
	}
	mnemonic := strings.TrimSpace(line)

	if !identity.ValidateMnemonic(mnemonic) {
		// Decode again for the precise reason; validation is the cheap gate.
		if _, derr := identity.DecodeMnemonic(mnemonic); derr != nil {
			return derr
		}
	}
	if err := svc.ImportMnemonic(ctx, mnemonic); err != nil {
		return err
	}

	fmt.Println("Identity recovered.")
	return nil
}
