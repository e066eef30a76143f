package engine

import (
	"crypto/sha256"
	"testing"

	"github.com/fortiblox/ledgerstore/internal/types"
)

type fakeTx struct {
	id      types.TxId
	payload []byte
}

func (f fakeTx) TxId() types.TxId         { return f.id }
func (f fakeTx) Marshal() ([]byte, error) { return f.payload, nil }

type fakeBlock struct {
	hash types.BlockHash
	txs  []types.Transaction
}

func (b fakeBlock) BlockHash() types.BlockHash      { return b.hash }
func (b fakeBlock) Marshal() ([]byte, error)        { return append([]byte{}, b.hash.Bytes()...), nil }
func (b fakeBlock) Transactions() []types.Transaction { return b.txs }

func fill32(seed byte) [32]byte {
	sum := sha256.Sum256([]byte{seed, 0x32})
	return sum
}

func fill20(seed byte) [20]byte {
	sum := sha256.Sum256([]byte{seed, 0x20})
	var out [20]byte
	copy(out[:], sum[:])
	return out
}

func newBlockHash(t *testing.T, seed byte) types.BlockHash {
	t.Helper()
	raw := fill32(seed)
	h, err := types.BlockHashFromBytes(raw[:])
	if err != nil {
		t.Fatalf("BlockHashFromBytes: %v", err)
	}
	return h
}

func newTxId(t *testing.T, seed byte) types.TxId {
	t.Helper()
	raw := fill32(seed)
	id, err := types.TxIdFromBytes(raw[:])
	if err != nil {
		t.Fatalf("TxIdFromBytes: %v", err)
	}
	return id
}

func newAddress(t *testing.T, seed byte) types.Address {
	t.Helper()
	raw := fill20(seed)
	a, err := types.AddressFromBytes(raw[:])
	if err != nil {
		t.Fatalf("AddressFromBytes: %v", err)
	}
	return a
}

func newChainId(t *testing.T, seed byte) types.ChainId {
	t.Helper()
	raw := make([]byte, types.ChainIdSize)
	for i := range raw {
		raw[i] = seed
	}
	c, err := types.ChainIdFromBytes(raw)
	if err != nil {
		t.Fatalf("ChainIdFromBytes: %v", err)
	}
	return c
}

func openMemEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := OpenMemory(DefaultOptions())
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { e.Close() })
	return e
}
