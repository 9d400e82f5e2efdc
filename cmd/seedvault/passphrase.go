// ABOUTME: Interactive passphrase entry without echo.
// ABOUTME: Falls back to an environment variable for scripted use.
package main

import (
	"bytes"
	"fmt"
	"os"

	"golang.org/x/term"
)

const passphraseEnvVar = "SEEDVAULT_PASSPHRASE"

func getPassphrase(prompt string) ([]byte, error) {
	if envPass := os.Getenv(passphraseEnvVar); envPass != "" {
		return []byte(envPass), nil
	}
	return readPassword(prompt)
}

func getPassphraseWithConfirm(prompt, confirmPrompt string) ([]byte, error) {
	if envPass := os.Getenv(passphraseEnvVar); envPass != "" {
		return []byte(envPass), nil
	}

	passphrase, err := readPassword(prompt)
	if err != nil {
		return nil, err
	}
	confirm, err := readPassword(confirmPrompt)
	if err != nil {
		zeroBytes(passphrase)
		return nil, err
	}
	if !bytes.Equal(passphrase, confirm) {
		zeroBytes(passphrase)
		zeroBytes(confirm)
		return nil, fmt.Errorf("passphrases do not match")
	}
	zeroBytes(confirm)
	return passphrase, nil
}

func readPassword(prompt string) ([]byte, error) {
	fmt.Fprint(os.Stderr, prompt)
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		tty, err := os.Open("/dev/tty")
		if err != nil {
			return nil, fmt.Errorf("cannot read passphrase: stdin is piped and /dev/tty is unavailable. Set %s", passphraseEnvVar)
		}
		defer func() {
			_ = tty.Close()
		}()
		fd = int(tty.Fd())
	}
	passphrase, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	return passphrase, err
}

func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
