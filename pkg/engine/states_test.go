package engine

import (
	"testing"

	"github.com/fortiblox/ledgerstore/internal/types"
)

func TestSetGetBlockStatesRoundTrip(t *testing.T) {
	e := openMemEngine(t)
	h := newBlockHash(t, 1)
	a1 := newAddress(t, 1)
	a2 := newAddress(t, 2)

	m := types.StateMap{
		a1: []byte("balance-100"),
		a2: []byte("balance-200"),
	}
	if err := e.SetBlockStates(h, m); err != nil {
		t.Fatalf("SetBlockStates: %v", err)
	}

	got, ok, err := e.GetBlockStates(h)
	if err != nil || !ok {
		t.Fatalf("GetBlockStates: ok=%v err=%v", ok, err)
	}
	if len(got) != 2 || string(got[a1]) != "balance-100" || string(got[a2]) != "balance-200" {
		t.Fatalf("unexpected state map: %+v", got)
	}
}

func TestSetBlockStatesReplacesPriorSnapshot(t *testing.T) {
	e := openMemEngine(t)
	h := newBlockHash(t, 1)
	a1 := newAddress(t, 1)

	if err := e.SetBlockStates(h, types.StateMap{a1: []byte("v1")}); err != nil {
		t.Fatalf("SetBlockStates: %v", err)
	}
	if err := e.SetBlockStates(h, types.StateMap{a1: []byte("v2")}); err != nil {
		t.Fatalf("SetBlockStates: %v", err)
	}

	got, ok, err := e.GetBlockStates(h)
	if err != nil || !ok {
		t.Fatalf("GetBlockStates: ok=%v err=%v", ok, err)
	}
	if string(got[a1]) != "v2" {
		t.Fatalf("expected replaced value v2, got %q", got[a1])
	}
}

func TestGetBlockStatesAbsent(t *testing.T) {
	e := openMemEngine(t)
	_, ok, err := e.GetBlockStates(newBlockHash(t, 99))
	if err != nil {
		t.Fatalf("GetBlockStates: %v", err)
	}
	if ok {
		t.Fatal("expected absent for never-set block hash")
	}
}
