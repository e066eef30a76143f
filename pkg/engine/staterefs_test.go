package engine

import (
	"errors"
	"testing"

	"github.com/fortiblox/ledgerstore/internal/types"
)

func TestStoreStateReferenceDedup(t *testing.T) {
	e := openMemEngine(t)
	c := newChainId(t, 1)
	addr := newAddress(t, 1)
	h := newBlockHash(t, 1)

	if err := e.StoreStateReference(c, []types.Address{addr}, h, 5); err != nil {
		t.Fatalf("StoreStateReference: %v", err)
	}
	if err := e.StoreStateReference(c, []types.Address{addr}, h, 5); err != nil {
		t.Fatalf("second StoreStateReference: %v", err)
	}

	got, err := e.IterateStateReferences(c, addr, -1, 0, 0)
	if err != nil {
		t.Fatalf("IterateStateReferences: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected exactly one record after dedup, got %d", len(got))
	}
}

func TestIterateStateReferencesDescendingAndRange(t *testing.T) {
	e := openMemEngine(t)
	c := newChainId(t, 1)
	addr := newAddress(t, 1)

	for i, seed := range []byte{1, 3, 5, 7} {
		h := newBlockHash(t, seed)
		if err := e.StoreStateReference(c, []types.Address{addr}, h, int64(seed)); err != nil {
			t.Fatalf("StoreStateReference[%d]: %v", i, err)
		}
	}

	got, err := e.IterateStateReferences(c, addr, -1, 0, 0)
	if err != nil {
		t.Fatalf("IterateStateReferences: %v", err)
	}
	want := []int64{7, 5, 3, 1}
	if len(got) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(got))
	}
	for i, w := range want {
		if got[i].BlockIndex != w {
			t.Fatalf("index %d: expected %d, got %d", i, w, got[i].BlockIndex)
		}
	}
}

func TestIterateStateReferencesInvertedRangeFails(t *testing.T) {
	e := openMemEngine(t)
	c := newChainId(t, 1)
	addr := newAddress(t, 1)

	_, err := e.IterateStateReferences(c, addr, 5, 10, 0)
	if err == nil {
		t.Fatal("expected argument error for inverted range")
	}
	var ae *ArgumentError
	if !errors.As(err, &ae) {
		t.Fatalf("expected *ArgumentError, got %v", err)
	}
	if ae.Field != "highestIndex" {
		t.Fatalf("expected field highestIndex, got %s", ae.Field)
	}
}

func TestForkStateReferencesBoundedCopy(t *testing.T) {
	e := openMemEngine(t)
	src := newChainId(t, 1)
	dst := newChainId(t, 2)
	addr := newAddress(t, 1)

	for _, seed := range []byte{1, 3, 5, 7} {
		if err := e.StoreStateReference(src, []types.Address{addr}, newBlockHash(t, seed), int64(seed)); err != nil {
			t.Fatalf("StoreStateReference: %v", err)
		}
	}
	// The chain index must be non-empty for the source chain to count as known.
	if _, err := e.AppendIndex(src, newBlockHash(t, 1)); err != nil {
		t.Fatalf("AppendIndex: %v", err)
	}

	if err := e.ForkStateReferences(src, dst, 4); err != nil {
		t.Fatalf("ForkStateReferences: %v", err)
	}

	got, err := e.IterateStateReferences(dst, addr, -1, 0, 0)
	if err != nil {
		t.Fatalf("IterateStateReferences: %v", err)
	}
	if len(got) != 2 || got[0].BlockIndex != 3 || got[1].BlockIndex != 1 {
		t.Fatalf("expected [3 1], got %+v", got)
	}
}

func TestForkStateReferencesUnknownSourceFails(t *testing.T) {
	e := openMemEngine(t)
	src := newChainId(t, 9)
	dst := newChainId(t, 10)

	err := e.ForkStateReferences(src, dst, 100)
	if err == nil {
		t.Fatal("expected chain-not-found argument error")
	}
}

func TestListAddressesOrdered(t *testing.T) {
	e := openMemEngine(t)
	c := newChainId(t, 1)
	a1 := newAddress(t, 1)
	a2 := newAddress(t, 2)

	if err := e.StoreStateReference(c, []types.Address{a1, a2}, newBlockHash(t, 1), 1); err != nil {
		t.Fatalf("StoreStateReference: %v", err)
	}

	addrs, err := e.ListAddresses(c)
	if err != nil {
		t.Fatalf("ListAddresses: %v", err)
	}
	if len(addrs) != 2 {
		t.Fatalf("expected 2 addresses, got %d", len(addrs))
	}
	if !addrs[0].Less(addrs[1]) && addrs[0] != addrs[1] {
		t.Fatalf("expected ascending order, got %v", addrs)
	}
}
