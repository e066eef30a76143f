package engine

import (
	"testing"

	"github.com/fortiblox/ledgerstore/internal/types"
)

func TestAppendThenRead(t *testing.T) {
	e := openMemEngine(t)
	c := newChainId(t, 0)

	h1 := newBlockHash(t, 1)
	h2 := newBlockHash(t, 2)

	n1, err := e.AppendIndex(c, h1)
	if err != nil || n1 != 0 {
		t.Fatalf("AppendIndex h1: n=%d err=%v", n1, err)
	}
	n2, err := e.AppendIndex(c, h2)
	if err != nil || n2 != 1 {
		t.Fatalf("AppendIndex h2: n=%d err=%v", n2, err)
	}

	count, err := e.CountIndex(c)
	if err != nil || count != 2 {
		t.Fatalf("CountIndex: %d, %v", count, err)
	}

	got, ok, err := e.IndexBlockHash(c, 0)
	if err != nil || !ok || got != h1 {
		t.Fatalf("IndexBlockHash(0): got=%v ok=%v err=%v", got, ok, err)
	}

	got, ok, err = e.IndexBlockHash(c, -1)
	if err != nil || !ok || got != h2 {
		t.Fatalf("IndexBlockHash(-1): got=%v ok=%v err=%v", got, ok, err)
	}

	_, ok, err = e.IndexBlockHash(c, 2)
	if err != nil || ok {
		t.Fatalf("IndexBlockHash(2): expected absent, ok=%v err=%v", ok, err)
	}
}

func TestNegativeIndexSymmetry(t *testing.T) {
	e := openMemEngine(t)
	c := newChainId(t, 0)

	for i := byte(1); i <= 5; i++ {
		if _, err := e.AppendIndex(c, newBlockHash(t, i)); err != nil {
			t.Fatalf("AppendIndex: %v", err)
		}
	}
	count, err := e.CountIndex(c)
	if err != nil {
		t.Fatalf("CountIndex: %v", err)
	}

	for i := int64(0); i < count; i++ {
		fwd, _, err := e.IndexBlockHash(c, count-1-i)
		if err != nil {
			t.Fatalf("IndexBlockHash: %v", err)
		}
		back, _, err := e.IndexBlockHash(c, -1-i)
		if err != nil {
			t.Fatalf("IndexBlockHash: %v", err)
		}
		if fwd != back {
			t.Fatalf("mismatch at i=%d: %v != %v", i, fwd, back)
		}
	}
}

func TestDeleteIndex(t *testing.T) {
	e := openMemEngine(t)
	c := newChainId(t, 0)
	h1 := newBlockHash(t, 1)
	h2 := newBlockHash(t, 2)

	if _, err := e.AppendIndex(c, h1); err != nil {
		t.Fatalf("AppendIndex: %v", err)
	}
	if _, err := e.AppendIndex(c, h2); err != nil {
		t.Fatalf("AppendIndex: %v", err)
	}

	deleted, err := e.DeleteIndex(c, h1)
	if err != nil || !deleted {
		t.Fatalf("DeleteIndex: deleted=%v err=%v", deleted, err)
	}
	deleted, err = e.DeleteIndex(c, h1)
	if err != nil || deleted {
		t.Fatalf("second DeleteIndex should report false, got %v, %v", deleted, err)
	}

	count, err := e.CountIndex(c)
	if err != nil || count != 1 {
		t.Fatalf("CountIndex after delete: %d, %v", count, err)
	}
}

func TestIterateIndexesOffsetLimit(t *testing.T) {
	e := openMemEngine(t)
	c := newChainId(t, 0)

	for i := byte(1); i <= 5; i++ {
		if _, err := e.AppendIndex(c, newBlockHash(t, i)); err != nil {
			t.Fatalf("AppendIndex: %v", err)
		}
	}

	got, err := e.IterateIndexes(c, 1, 2)
	if err != nil {
		t.Fatalf("IterateIndexes: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 results, got %d", len(got))
	}
	want1 := newBlockHash(t, 2)
	want2 := newBlockHash(t, 3)
	if got[0] != want1 || got[1] != want2 {
		t.Fatalf("unexpected order: %v", got)
	}
}

func TestForkBlockIndexesPrefix(t *testing.T) {
	e := openMemEngine(t)
	src := newChainId(t, 1)
	dst := newChainId(t, 2)

	h1 := newBlockHash(t, 1)
	h2 := newBlockHash(t, 2)
	h3 := newBlockHash(t, 3)
	h4 := newBlockHash(t, 4)

	for _, h := range []types.BlockHash{h1, h2, h3, h4} {
		if _, err := e.AppendIndex(src, h); err != nil {
			t.Fatalf("AppendIndex: %v", err)
		}
	}

	if err := e.ForkBlockIndexes(src, dst, h3); err != nil {
		t.Fatalf("ForkBlockIndexes: %v", err)
	}

	got, err := e.IterateIndexes(dst, 0, 0)
	if err != nil {
		t.Fatalf("IterateIndexes: %v", err)
	}
	if len(got) != 3 || got[0] != h1 || got[1] != h2 || got[2] != h3 {
		t.Fatalf("expected prefix ending at h3, got %v", got)
	}
}
