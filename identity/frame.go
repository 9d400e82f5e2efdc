// ABOUTME: Splits a mnemonic plus transfer tag into animated QR frames and parses them back.
// ABOUTME: Frames are order-independent in transit but position-indexed for reassembly.
package identity

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// FramePrefix identifies seed-transfer payloads in a QR symbol.
	FramePrefix = "otp-e2ee-seed"

	// FrameCount is the fixed number of frames per transfer: two 12-word
	// halves of the mnemonic plus one check frame.
	FrameCount = 3

	checkMarker   = "check:"
	wordsPerFrame = MnemonicWords / (FrameCount - 1)
)

// Frame is one unit of the multi-part QR transfer protocol.
type Frame struct {
	Index   int    // 1-based position
	Total   int    // always FrameCount for this protocol
	Payload string // space-joined words, or check:<hex> for the last frame
}

// Encode renders the frame in wire format: otp-e2ee-seed:<index>/<total>:<payload>.
func (f Frame) Encode() string {
	return fmt.Sprintf("%s:%d/%d:%s", FramePrefix, f.Index, f.Total, f.Payload)
}

// IsCheck reports whether this is the trailing check frame.
func (f Frame) IsCheck() bool {
	return f.Index == f.Total
}

// SplitFrames produces the fixed frame set for a seed and its mnemonic.
// The mnemonic must be the encoding of the seed; the check frame carries the
// seed's transfer tag so the receiver can verify the reassembled result.
func SplitFrames(mnemonic string, seed Seed) ([]Frame, error) {
	words := strings.Fields(mnemonic)
	if len(words) != MnemonicWords {
		return nil, &MnemonicError{WordCount: len(words)}
	}
	tag, err := TransferTagHex(seed)
	if err != nil {
		return nil, err
	}
	frames := make([]Frame, 0, FrameCount)
	for i := 0; i < FrameCount-1; i++ {
		part := words[i*wordsPerFrame : (i+1)*wordsPerFrame]
		frames = append(frames, Frame{
			Index:   i + 1,
			Total:   FrameCount,
			Payload: strings.Join(part, " "),
		})
	}
	frames = append(frames, Frame{
		Index:   FrameCount,
		Total:   FrameCount,
		Payload: checkMarker + tag,
	})
	return frames, nil
}

// ParseFrame strictly parses one scanned wire payload. Malformed input yields
// a FrameError; a Frame is never partially populated.
func ParseFrame(text string) (Frame, error) {
	parts := strings.SplitN(text, ":", 3)
	if len(parts) != 3 {
		return Frame{}, &FrameError{Input: text, Reason: "expected three colon-separated sections"}
	}
	if parts[0] != FramePrefix {
		return Frame{}, &FrameError{Input: text, Reason: "unknown prefix"}
	}

	idxStr, totalStr, found := strings.Cut(parts[1], "/")
	if !found {
		return Frame{}, &FrameError{Input: text, Reason: "missing index/total separator"}
	}
	index, err := strconv.Atoi(idxStr)
	if err != nil {
		return Frame{}, &FrameError{Input: text, Reason: "non-numeric frame index"}
	}
	total, err := strconv.Atoi(totalStr)
	if err != nil {
		return Frame{}, &FrameError{Input: text, Reason: "non-numeric frame total"}
	}
	if total != FrameCount {
		return Frame{}, &FrameError{Input: text, Reason: fmt.Sprintf("total must be %d", FrameCount)}
	}
	if index < 1 || index > total {
		return Frame{}, &FrameError{Input: text, Reason: "frame index out of range"}
	}

	payload := parts[2]
	if payload == "" {
		return Frame{}, &FrameError{Input: text, Reason: "empty payload"}
	}
	if index == total {
		if err := validateCheckPayload(payload); err != nil {
			return Frame{}, &FrameError{Input: text, Reason: err.Error()}
		}
	} else if err := validateWordPayload(payload); err != nil {
		return Frame{}, &FrameError{Input: text, Reason: err.Error()}
	}

	return Frame{Index: index, Total: total, Payload: payload}, nil
}

func validateCheckPayload(payload string) error {
	hexPart, ok := strings.CutPrefix(payload, checkMarker)
	if !ok {
		return fmt.Errorf("check frame must start with %q", checkMarker)
	}
	if len(hexPart) != TransferTagLen*2 {
		return fmt.Errorf("check value must be %d hex characters", TransferTagLen*2)
	}
	for _, c := range hexPart {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return fmt.Errorf("check value must be lowercase hex")
		}
	}
	return nil
}

func validateWordPayload(payload string) error {
	words := strings.Fields(payload)
	if len(words) != wordsPerFrame {
		return fmt.Errorf("word frame must carry %d words", wordsPerFrame)
	}
	for _, w := range words {
		if w != strings.ToLower(w) {
			return fmt.Errorf("mnemonic words must be lowercase")
		}
	}
	return nil
}
