// ABOUTME: Tests for QR frame splitting and strict wire-format parsing.
// ABOUTME: Covers the example vector from the protocol and malformed inputs.
package identity

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func testFrames(t *testing.T, seed Seed) []Frame {
	t.Helper()
	mnemonic, err := EncodeMnemonic(seed)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	frames, err := SplitFrames(mnemonic, seed)
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	return frames
}

func TestSplitFramesShape(t *testing.T) {
	seed := Seed{Raw: make([]byte, SeedLen)}
	frames := testFrames(t, seed)

	if len(frames) != FrameCount {
		t.Fatalf("expected %d frames, got %d", FrameCount, len(frames))
	}
	for i, f := range frames {
		if f.Index != i+1 || f.Total != FrameCount {
			t.Fatalf("frame %d has index %d/%d", i, f.Index, f.Total)
		}
	}
	if n := len(strings.Fields(frames[0].Payload)); n != 12 {
		t.Fatalf("expected 12 words in frame 1, got %d", n)
	}
	if n := len(strings.Fields(frames[1].Payload)); n != 12 {
		t.Fatalf("expected 12 words in frame 2, got %d", n)
	}
	if !strings.HasPrefix(frames[2].Payload, "check:") {
		t.Fatalf("expected check frame, got %q", frames[2].Payload)
	}
	if len(frames[2].Payload) != len("check:")+TransferTagLen*2 {
		t.Fatalf("unexpected check payload length %d", len(frames[2].Payload))
	}
}

func TestFrameEncodeWireFormat(t *testing.T) {
	seed := Seed{Raw: make([]byte, SeedLen)}
	frames := testFrames(t, seed)

	wire := frames[0].Encode()
	want := fmt.Sprintf("%s:1/%d:%s", FramePrefix, FrameCount, frames[0].Payload)
	if wire != want {
		t.Fatalf("wire format mismatch:\n got %q\nwant %q", wire, want)
	}
}

func TestParseFrameRoundTrip(t *testing.T) {
	seed, err := NewSeed()
	if err != nil {
		t.Fatalf("new seed: %v", err)
	}
	for _, f := range testFrames(t, seed) {
		parsed, err := ParseFrame(f.Encode())
		if err != nil {
			t.Fatalf("parse frame %d: %v", f.Index, err)
		}
		if parsed != f {
			t.Fatalf("frame %d round trip mismatch: %+v vs %+v", f.Index, parsed, f)
		}
	}
}

func TestParseFrameMalformed(t *testing.T) {
	words12 := strings.Repeat("abandon ", 11) + "abandon"
	cases := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"wrong prefix", "other-proto:1/3:" + words12},
		{"two sections", FramePrefix + ":1/3"},
		{"missing slash", FramePrefix + ":13:" + words12},
		{"non-numeric index", FramePrefix + ":x/3:" + words12},
		{"non-numeric total", FramePrefix + ":1/y:" + words12},
		{"wrong total", FramePrefix + ":1/4:" + words12},
		{"index zero", FramePrefix + ":0/3:" + words12},
		{"index above total", FramePrefix + ":4/3:" + words12},
		{"negative index", FramePrefix + ":-1/3:" + words12},
		{"empty payload", FramePrefix + ":1/3:"},
		{"short word frame", FramePrefix + ":1/3:abandon abandon"},
		{"uppercase words", FramePrefix + ":1/3:" + strings.ToUpper(words12)},
		{"check missing marker", FramePrefix + ":3/3:0011223344556677"},
		{"check short hex", FramePrefix + ":3/3:check:0011"},
		{"check uppercase hex", FramePrefix + ":3/3:check:00112233445566AA"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseFrame(tc.input)
			if !errors.Is(err, ErrFormat) {
				t.Fatalf("expected ErrFormat, got %v", err)
			}
			var fe *FrameError
			if !errors.As(err, &fe) {
				t.Fatalf("expected FrameError, got %T", err)
			}
		})
	}
}
