package identity

import "testing"

func TestTransferTagDeterministic(t *testing.T) {
	seed := Seed{Raw: bytes32(0x42)}

	tag1, err := TransferTag(seed)
	if err != nil {
		t.Fatalf("tag1: %v", err)
	}
	tag2, err := TransferTag(seed)
	if err != nil {
		t.Fatalf("tag2: %v", err)
	}
	if tag1 != tag2 {
		t.Fatalf("expected deterministic tag")
	}
}

func TestTransferTagDiffersAcrossSeeds(t *testing.T) {
	tagA, err := TransferTag(Seed{Raw: bytes32(0xAA)})
	if err != nil {
		t.Fatalf("tagA: %v", err)
	}
	tagB, err := TransferTag(Seed{Raw: bytes32(0xAB)})
	if err != nil {
		t.Fatalf("tagB: %v", err)
	}
	if tagA == tagB {
		t.Fatalf("expected different tags for different seeds")
	}
}

func TestTransferTagHexFormat(t *testing.T) {
	hexTag, err := TransferTagHex(Seed{Raw: bytes32(0x01)})
	if err != nil {
		t.Fatalf("hex tag: %v", err)
	}
	if len(hexTag) != TransferTagLen*2 {
		t.Fatalf("expected %d hex chars, got %d", TransferTagLen*2, len(hexTag))
	}
	for _, c := range hexTag {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			t.Fatalf("expected lowercase hex, got %q", hexTag)
		}
	}
}

func TestTransferTagRejectsBadSeed(t *testing.T) {
	if _, err := TransferTag(Seed{Raw: []byte{1, 2, 3}}); err == nil {
		t.Fatalf("expected error for short seed")
	}
}
