// ABOUTME: Device-to-device transfer commands over animated QR frames.
// ABOUTME: export-qr prints/render frames; import-qr feeds scanned lines to the assembler.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	qrcode "github.com/skip2/go-qrcode"

	"seedvault/identity"
)

func cmdExportQR(args []string) error {
	fs := flag.NewFlagSet("export-qr", flag.ExitOnError)
	pngDir := fs.String("png-dir", "", "also write one QR PNG per frame into this directory")
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

	frames, err := svc.ExportFrames(context.Background())
	if err != nil {
		return err
	}

	fmt.Fprintln(os.Stderr, "Cycle these frames on screen; the receiving device scans them in any order.")
	for _, f := range frames {
		fmt.Println(f.Encode())
	}

	if *pngDir != "" {
		if err := os.MkdirAll(*pngDir, 0o700); err != nil {
			return err
		}
		for _, f := range frames {
			path := filepath.Join(*pngDir, fmt.Sprintf("frame-%d.png", f.Index))
			if err := qrcode.WriteFile(f.Encode(), qrcode.Medium, 512, path); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
		}
		fmt.Fprintf(os.Stderr, "Wrote %d QR images to %s\n", len(frames), *pngDir)
	}
	return nil
}

func cmdImportQR(args []string) error {
	fs := flag.NewFlagSet("import-qr", flag.ExitOnError)
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if _, err := store.Get(ctx); err == nil && !*force {
		return fmt.Errorf("an identity seed already exists (use --force to replace it)")
	}

	fmt.Fprintln(os.Stderr, "Paste scanned frame payloads, one per line:")

	session := identity.NewScanSession()
	go func() {
		defer session.Close()
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			line := scanner.Text()
			if line == "" {
				continue
			}
			for !session.Feed(line) {
				select {
				case <-ctx.Done():
					return
				case <-time.After(10 * time.Millisecond):
				}
			}
		}
	}()

	events := &identity.ImportEvents{
		OnFrame: func(held, total int) {
			fmt.Fprintf(os.Stderr, "Frame accepted (%d/%d)\n", held, total)
		},
		OnReject: func(r identity.Result) {
			fmt.Fprintf(os.Stderr, "Rejected: %s; frames discarded, keep scanning\n", r.Reason)
		},
	}
	err = svc.ImportFrames(ctx, session, events)
	switch {
	case errors.Is(err, identity.ErrScanEnded):
		return errors.New("input ended before a complete frame set was scanned")
	case err != nil:
		return err
	}

	fmt.Println("Identity transferred.")
	return nil
}
