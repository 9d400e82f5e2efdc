// ABOUTME: Typed errors for seed export/import and backup operations.
// ABOUTME: Enables programmatic error handling with errors.Is() and errors.As().
package identity

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for programmatic handling. Every failure here is local to
// one attempt; nothing is retried automatically without new user input.
var (
	ErrFormat           = errors.New("malformed frame")
	ErrChecksumMismatch = errors.New("checksum mismatch")
	ErrInvalidMnemonic  = errors.New("invalid mnemonic")
	ErrDecryptFailed    = errors.New("wrong passphrase or corrupted backup")
	ErrBackupNotFound   = errors.New("no backup exists")
	ErrNoIdentity       = errors.New("no identity stored")
	ErrNetworkFailure   = errors.New("network failure")
	ErrServerError      = errors.New("server error")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrRateLimited      = errors.New("rate limited")
	ErrScanEnded        = errors.New("scan input ended before a complete frame set")
)

// MnemonicError describes why a mnemonic was rejected.
type MnemonicError struct {
	WordCount int    // number of words seen, when the count was wrong
	Word      string // offending token, when one was outside the word list
	Cause     error  // underlying library error, if any
}

func (e *MnemonicError) Error() string {
	switch {
	case e.Word != "":
		return fmt.Sprintf("invalid mnemonic: word %q is not in the word list", e.Word)
	case e.WordCount != 0 && e.WordCount != MnemonicWords:
		return fmt.Sprintf("invalid mnemonic: expected %d words, got %d", MnemonicWords, e.WordCount)
	case e.Cause != nil:
		return fmt.Sprintf("invalid mnemonic: %v", e.Cause)
	}
	return "invalid mnemonic: checksum failed"
}

func (e *MnemonicError) Unwrap() error { return e.Cause }

func (e *MnemonicError) Is(target error) bool { return target == ErrInvalidMnemonic }

// FrameError describes a QR frame payload that failed to parse.
type FrameError struct {
	Input  string // offending wire text, truncated for display
	Reason string
}

func (e *FrameError) Error() string {
	in := e.Input
	if len(in) > 48 {
		in = in[:48] + "..."
	}
	return fmt.Sprintf("malformed frame %q: %s", in, e.Reason)
}

func (e *FrameError) Is(target error) bool { return target == ErrFormat }

// RateLimitError reports a server throttle, carrying the wait the server
// asked for when it sent a Retry-After hint.
type RateLimitError struct {
	After time.Duration
}

func (e *RateLimitError) Error() string {
	if e.After > 0 {
		return fmt.Sprintf("rate limited, retry after %s", e.After)
	}
	return "rate limited"
}

func (e *RateLimitError) Is(target error) bool { return target == ErrRateLimited }

// TransportError wraps backup transport failures with operation context.
type TransportError struct {
	Op      string // "upload", "download", "delete"
	Err     error  // underlying typed error
	Retries int    // attempts made
	Detail  string // server message if any
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s failed after %d attempts: %v", e.Op, e.Retries, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
