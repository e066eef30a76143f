package types

import "testing"

func TestChainIdRoundTrip(t *testing.T) {
	raw := make([]byte, ChainIdSize)
	for i := range raw {
		raw[i] = byte(i)
	}
	c, err := ChainIdFromBytes(raw)
	if err != nil {
		t.Fatalf("ChainIdFromBytes: %v", err)
	}

	c2, err := ChainIdFromHex(c.Hex())
	if err != nil {
		t.Fatalf("ChainIdFromHex: %v", err)
	}
	if c != c2 {
		t.Fatalf("round trip mismatch: %v != %v", c, c2)
	}
	if c.String() == "" {
		t.Fatal("String() returned empty base58")
	}
}

func TestChainIdInvalidLength(t *testing.T) {
	if _, err := ChainIdFromBytes(make([]byte, 5)); err != ErrInvalidChainId {
		t.Fatalf("expected ErrInvalidChainId, got %v", err)
	}
}

func TestChainIdIsZero(t *testing.T) {
	var c ChainId
	if !c.IsZero() {
		t.Fatal("zero-value ChainId should be IsZero")
	}
	c[0] = 1
	if c.IsZero() {
		t.Fatal("non-zero ChainId reported as IsZero")
	}
}

func TestAddressLess(t *testing.T) {
	a, _ := AddressFromHex("000000000000000000000000000000000000000a")
	b, _ := AddressFromHex("000000000000000000000000000000000000000b")
	if !a.Less(b) {
		t.Fatal("expected a < b")
	}
	if b.Less(a) == false && a.Less(b) == false {
		t.Fatal("exactly one direction should hold")
	}
	if a.Less(a) {
		t.Fatal("a should not be Less than itself")
	}
}

func TestBlockHashAndTxIdFromHex(t *testing.T) {
	hexStr := "aa00000000000000000000000000000000000000000000000000000000bb"
	if _, err := BlockHashFromHex(hexStr); err == nil {
		t.Fatal("expected error for odd-length or wrong-size hex")
	}

	valid := make([]byte, HashSize)
	valid[0] = 0xaa
	h, err := BlockHashFromBytes(valid)
	if err != nil {
		t.Fatalf("BlockHashFromBytes: %v", err)
	}
	h2, err := BlockHashFromHex(h.Hex())
	if err != nil {
		t.Fatalf("BlockHashFromHex: %v", err)
	}
	if h != h2 {
		t.Fatal("hash round trip mismatch")
	}

	txRaw := make([]byte, TxIdSize)
	txRaw[0] = 0xcc
	txId, err := TxIdFromBytes(txRaw)
	if err != nil {
		t.Fatalf("TxIdFromBytes: %v", err)
	}
	if txId.Hex()[:2] != "cc" {
		t.Fatalf("unexpected hex prefix: %s", txId.Hex())
	}
}
