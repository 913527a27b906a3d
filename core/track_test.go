package core_test

import (
	"testing"

	"resonance-engine/core"
)

func TestTrackReadWriteOverlayIsolation(t *testing.T) {
	store := core.NewInMemoryStore()
	store.PutSubstate("k1", []byte("committed"))

	tr := core.NewTrack(store, core.HashBytes([]byte("tx1")))
	tr.Write("k1", []byte("overlay-value"))

	value, _, found := tr.Read("k1")
	if !found || string(value) != "overlay-value" {
		t.Fatalf("Read should see the pending overlay write, got %q found=%v", value, found)
	}

	storeValue, _, _ := store.GetSubstate("k1")
	if string(storeValue) != "committed" {
		t.Fatalf("store should be untouched before Commit, got %q", storeValue)
	}
}

func TestTrackBorrowMutReentrantError(t *testing.T) {
	store := core.NewInMemoryStore()
	tr := core.NewTrack(store, core.HashBytes([]byte("tx1")))

	guard, err := tr.BorrowMut("k1")
	if err != nil {
		t.Fatalf("BorrowMut: %v", err)
	}
	if _, err := tr.BorrowMut("k1"); err != core.ErrSubstateBorrowed {
		t.Fatalf("got %v, want ErrSubstateBorrowed for a reentrant borrow", err)
	}

	guard.Release()
	if _, err := tr.BorrowMut("k1"); err != nil {
		t.Fatalf("BorrowMut after Release should succeed: %v", err)
	}
}

func TestTrackAssertNoBorrowsPanics(t *testing.T) {
	store := core.NewInMemoryStore()
	tr := core.NewTrack(store, core.HashBytes([]byte("tx1")))
	if _, err := tr.BorrowMut("k1"); err != nil {
		t.Fatalf("BorrowMut: %v", err)
	}

	defer func() {
		if recover() == nil {
			t.Fatal("AssertNoBorrows should panic while a guard is outstanding")
		}
	}()
	tr.AssertNoBorrows()
}

func TestTrackCommitAppliesSortedWrites(t *testing.T) {
	store := core.NewInMemoryStore()
	tr := core.NewTrack(store, core.HashBytes([]byte("tx1")))
	tr.Write("zzz", []byte("last"))
	tr.Write("aaa", []byte("first"))
	tr.Write("mmm", []byte("middle"))

	receipt := tr.Commit()
	if len(receipt.WrittenKeys) != 3 {
		t.Fatalf("got %d written keys, want 3", len(receipt.WrittenKeys))
	}
	if receipt.WrittenKeys[0] != "aaa" || receipt.WrittenKeys[1] != "mmm" || receipt.WrittenKeys[2] != "zzz" {
		t.Fatalf("written keys not in sorted order: %v", receipt.WrittenKeys)
	}

	v, _, found := store.GetSubstate("aaa")
	if !found || string(v) != "first" {
		t.Fatalf("store should contain the committed value, got %q found=%v", v, found)
	}
	if store.GetNonce() != 1 {
		t.Fatalf("nonce = %d, want 1 after Commit", store.GetNonce())
	}
}

func TestTrackDiscardLeavesStoreUntouched(t *testing.T) {
	store := core.NewInMemoryStore()
	store.PutSubstate("k1", []byte("original"))
	before := store.Snapshot()

	tr := core.NewTrack(store, core.HashBytes([]byte("tx1")))
	tr.Write("k1", []byte("mutated"))
	tr.Write("k2", []byte("new"))
	tr.Discard()

	after := store.Snapshot()
	if len(after) != len(before) {
		t.Fatalf("store size changed after Discard: before=%d after=%d", len(before), len(after))
	}
	v, _, _ := store.GetSubstate("k1")
	if string(v) != "original" {
		t.Fatalf("Discard should leave the store's prior value intact, got %q", v)
	}
	if _, _, found := store.GetSubstate("k2"); found {
		t.Fatal("Discard should prevent k2 from ever reaching the store")
	}
}

func TestTrackNewAddressesAreDistinctAndRecorded(t *testing.T) {
	store := core.NewInMemoryStore()
	tr := core.NewTrack(store, core.HashBytes([]byte("tx1")))

	a1 := tr.NewAddress(core.EntityComponent)
	a2 := tr.NewAddress(core.EntityComponent)
	if a1 == a2 {
		t.Fatal("consecutive NewAddress calls must produce distinct addresses")
	}

	all := tr.NewAddresses()
	if len(all) != 2 || all[0] != a1 || all[1] != a2 {
		t.Fatalf("NewAddresses() = %v, want [%v %v]", all, a1, a2)
	}
}
