package engine

import "testing"

func TestNonceMonotonicity(t *testing.T) {
	e := openMemEngine(t)
	c := newChainId(t, 1)
	addr := newAddress(t, 1)

	if n, err := e.GetTxNonce(c, addr); err != nil || n != 0 {
		t.Fatalf("GetTxNonce on fresh chain: n=%d err=%v", n, err)
	}

	deltas := []int64{1, 2, 3, 4}
	var want int64
	for _, d := range deltas {
		if err := e.IncreaseTxNonce(c, addr, d); err != nil {
			t.Fatalf("IncreaseTxNonce: %v", err)
		}
		want += d
	}

	got, err := e.GetTxNonce(c, addr)
	if err != nil || got != want {
		t.Fatalf("GetTxNonce: got=%d want=%d err=%v", got, want, err)
	}
}

func TestListTxNoncesOnlyPositive(t *testing.T) {
	e := openMemEngine(t)
	c := newChainId(t, 1)
	a1 := newAddress(t, 1)
	a2 := newAddress(t, 2)

	if err := e.IncreaseTxNonce(c, a1, 5); err != nil {
		t.Fatalf("IncreaseTxNonce: %v", err)
	}
	if err := e.IncreaseTxNonce(c, a2, 0); err != nil {
		t.Fatalf("IncreaseTxNonce: %v", err)
	}

	entries, err := e.ListTxNonces(c)
	if err != nil {
		t.Fatalf("ListTxNonces: %v", err)
	}
	if len(entries) != 1 || entries[0].Address != a1 || entries[0].Nonce != 5 {
		t.Fatalf("unexpected entries: %+v", entries)
	}
}
