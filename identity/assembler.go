// ABOUTME: Stateful receiver for scanned QR frames with exactly-once validation.
// ABOUTME: Replaces ad-hoc received-frame maps with an explicit state machine.
package identity

import (
	"context"
	"strings"
	"sync"
)

// State enumerates the assembler lifecycle.
type State int

const (
	StateEmpty State = iota
	StateCollecting
	StateValidating
	StateSucceeded
	StateRejected
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateCollecting:
		return "collecting"
	case StateValidating:
		return "validating"
	case StateSucceeded:
		return "succeeded"
	case StateRejected:
		return "rejected"
	}
	return "unknown"
}

// RejectReason differentiates why a scanning attempt was discarded.
type RejectReason int

const (
	ReasonNone RejectReason = iota
	ReasonFormat
	ReasonDecode
	ReasonChecksumMismatch
)

func (r RejectReason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonFormat:
		return "format error"
	case ReasonDecode:
		return "mnemonic decode error"
	case ReasonChecksumMismatch:
		return "checksum mismatch"
	}
	return "unknown"
}

// Result is the outcome of offering one frame to the assembler.
type Result struct {
	State  State
	Reason RejectReason // set when State is StateRejected
	Err    error        // underlying cause for a rejection
	Held   int          // distinct frames currently held
}

// Assembler accumulates scanned frames for one import attempt. Offers are
// serialized; a frame arriving while validation is in progress waits for the
// outcome rather than corrupting the frame map. On any rejection all
// accumulated frames are discarded so the user can simply keep scanning.
type Assembler struct {
	mu     sync.Mutex
	frames map[int]string
	state  State
	seed   Seed
}

// NewAssembler returns an empty assembler for a single scanning session.
func NewAssembler() *Assembler {
	return &Assembler{
		frames: make(map[int]string),
		state:  StateEmpty,
	}
}

// State returns the current lifecycle state.
func (a *Assembler) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Seed returns the reconstructed seed once the assembler has succeeded.
func (a *Assembler) Seed() (Seed, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state != StateSucceeded {
		return Seed{}, false
	}
	return a.seed.Clone(), true
}

// Reset discards all session state, returning the assembler to empty.
func (a *Assembler) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.reset()
}

func (a *Assembler) reset() {
	a.frames = make(map[int]string)
	a.state = StateEmpty
	a.seed.Zero()
	a.seed = Seed{}
}

// Offer feeds one scanned wire payload into the session. Rescanning a frame
// index already held is a no-op. When the final distinct frame arrives the
// assembler validates exactly once and either succeeds terminally or rejects,
// discarding every held frame.
func (a *Assembler) Offer(text string) Result {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state == StateSucceeded {
		return Result{State: StateSucceeded, Held: len(a.frames)}
	}

	frame, err := ParseFrame(text)
	if err != nil {
		a.reset()
		return Result{State: StateRejected, Reason: ReasonFormat, Err: err}
	}

	if _, dup := a.frames[frame.Index]; dup {
		return Result{State: a.state, Held: len(a.frames)}
	}
	a.frames[frame.Index] = frame.Payload
	a.state = StateCollecting

	if len(a.frames) < FrameCount {
		return Result{State: StateCollecting, Held: len(a.frames)}
	}

	a.state = StateValidating
	return a.validate()
}

// validate runs with the lock held so no frame can land mid-validation.
func (a *Assembler) validate() Result {
	parts := make([]string, 0, FrameCount-1)
	for i := 1; i < FrameCount; i++ {
		parts = append(parts, a.frames[i])
	}
	mnemonic := strings.Join(parts, " ")
	wantTag := strings.TrimPrefix(a.frames[FrameCount], checkMarker)

	seed, err := DecodeMnemonic(mnemonic)
	if err != nil {
		a.reset()
		return Result{State: StateRejected, Reason: ReasonDecode, Err: err}
	}

	gotTag, err := TransferTagHex(seed)
	if err != nil {
		seed.Zero()
		a.reset()
		return Result{State: StateRejected, Reason: ReasonDecode, Err: err}
	}
	if gotTag != wantTag {
		seed.Zero()
		a.reset()
		return Result{State: StateRejected, Reason: ReasonChecksumMismatch, Err: ErrChecksumMismatch}
	}

	a.seed = seed
	a.state = StateSucceeded
	return Result{State: StateSucceeded, Held: FrameCount}
}

// ScanSession adapts asynchronous scan callbacks to the assembler through a
// single-consumer queue. Feed never blocks the scanner: frames arriving while
// the queue is full (validation in progress) are dropped, which is safe
// because the QR renderer cycles frames continuously.
type ScanSession struct {
	asm   *Assembler
	scans chan string
}

// NewScanSession creates a session with a small scan buffer.
func NewScanSession() *ScanSession {
	return &ScanSession{
		asm:   NewAssembler(),
		scans: make(chan string, FrameCount),
	}
}

// Feed enqueues a scanned payload. It reports false when the frame was
// dropped due to back-pressure.
func (s *ScanSession) Feed(text string) bool {
	select {
	case s.scans <- text:
		return true
	default:
		return false
	}
}

// Assembler exposes the underlying state machine for inspection.
func (s *ScanSession) Assembler() *Assembler {
	return s.asm
}

// Next consumes one queued scan and offers it to the assembler. It reports
// false when the queue is empty.
func (s *ScanSession) Next() (Result, bool) {
	select {
	case text := <-s.scans:
		return s.asm.Offer(text), true
	default:
		return Result{}, false
	}
}

// Scans returns the queue for consumer loops that select against a context.
func (s *ScanSession) Scans() <-chan string {
	return s.scans
}

// Close marks the end of scan input. Feed must not be called afterwards.
func (s *ScanSession) Close() {
	close(s.scans)
}

// Run consumes queued scans until a full frame set validates, the context is
// cancelled, or Close ends the input. cb, when non-nil, observes every offer
// outcome. On success the reconstructed seed is returned and the session
// resets for reuse; an unfinished run leaves no frames behind.
func (s *ScanSession) Run(ctx context.Context, cb func(Result)) (Seed, error) {
	for {
		select {
		case <-ctx.Done():
			s.asm.Reset()
			return Seed{}, ctx.Err()
		case text, ok := <-s.scans:
			if !ok {
				s.asm.Reset()
				return Seed{}, ErrScanEnded
			}
			r := s.asm.Offer(text)
			if cb != nil {
				cb(r)
			}
			if r.State == StateSucceeded {
				seed, held := s.asm.Seed()
				s.asm.Reset()
				if !held {
					return Seed{}, ErrChecksumMismatch
				}
				return seed, nil
			}
		}
	}
}
