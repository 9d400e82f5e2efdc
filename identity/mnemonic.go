// ABOUTME: Provides BIP39 mnemonic encoding/decoding for seed transfer and recovery.
// ABOUTME: The 24-word phrase is regenerated on demand and never stored.
package identity

import (
	"errors"
	"strings"
	"sync"

	"github.com/tyler-smith/go-bip39"
)

// MnemonicWords is the fixed word count for a 32-byte seed (256-bit entropy).
const MnemonicWords = 24

var (
	wordSetOnce sync.Once
	wordSet     map[string]struct{}
)

func inWordList(word string) bool {
	wordSetOnce.Do(func() {
		list := bip39.GetWordList()
		wordSet = make(map[string]struct{}, len(list))
		for _, w := range list {
			wordSet[w] = struct{}{}
		}
	})
	_, ok := wordSet[word]
	return ok
}

// EncodeMnemonic converts a seed into its 24-word mnemonic. The mapping is
// deterministic and total over valid 32-byte seeds: the seed bytes are the
// BIP39 entropy, so decoding returns them bit-for-bit.
func EncodeMnemonic(seed Seed) (string, error) {
	if !seed.Valid() {
		return "", errors.New("seed must be 32 bytes")
	}
	return bip39.NewMnemonic(seed.Raw)
}

// DecodeMnemonic converts a 24-word mnemonic back into the original seed.
// It rejects before returning anything: wrong word count, out-of-wordlist
// tokens and checksum failures all yield an error wrapping ErrInvalidMnemonic
// with no partial seed.
func DecodeMnemonic(mnemonic string) (Seed, error) {
	words := strings.Fields(strings.ToLower(strings.TrimSpace(mnemonic)))
	if len(words) != MnemonicWords {
		return Seed{}, &MnemonicError{WordCount: len(words)}
	}
	for _, w := range words {
		if !inWordList(w) {
			return Seed{}, &MnemonicError{Word: w}
		}
	}
	entropy, err := bip39.EntropyFromMnemonic(strings.Join(words, " "))
	if err != nil {
		// All that remains at this point is the embedded checksum.
		return Seed{}, &MnemonicError{Cause: err}
	}
	if len(entropy) != SeedLen {
		return Seed{}, &MnemonicError{Cause: errors.New("unexpected entropy length")}
	}
	return Seed{Raw: entropy}, nil
}

// ValidateMnemonic is a pure predicate over the same checks as DecodeMnemonic,
// for early UI validation without surfacing an error.
func ValidateMnemonic(mnemonic string) bool {
	words := strings.Fields(strings.ToLower(strings.TrimSpace(mnemonic)))
	if len(words) != MnemonicWords {
		return false
	}
	return bip39.IsMnemonicValid(strings.Join(words, " "))
}
