package core_test

import (
	"testing"

	"resonance-engine/core"
)

func testResourceAddress() core.Address {
	return core.NewAddress(core.EntityResource, core.HashBytes([]byte("tx")), 1)
}

func TestBucketPutTakeFungible(t *testing.T) {
	resource := testResourceAddress()
	b := core.NewFungibleBucket(resource, core.NewAmountFromInt64(100))

	taken, err := b.Take(core.NewAmountFromInt64(40))
	if err != nil {
		t.Fatalf("Take: %v", err)
	}
	if taken.Amount().Cmp(core.NewAmountFromInt64(40)) != 0 {
		t.Fatalf("taken amount = %s, want 40", taken.Amount())
	}
	if b.Amount().Cmp(core.NewAmountFromInt64(60)) != 0 {
		t.Fatalf("remaining amount = %s, want 60", b.Amount())
	}

	if err := b.Put(taken); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if b.Amount().Cmp(core.NewAmountFromInt64(100)) != 0 {
		t.Fatalf("amount after put-back = %s, want 100", b.Amount())
	}
}

func TestBucketTakeInsufficientBalance(t *testing.T) {
	resource := testResourceAddress()
	b := core.NewFungibleBucket(resource, core.NewAmountFromInt64(10))
	if _, err := b.Take(core.NewAmountFromInt64(11)); err != core.ErrInsufficientBalance {
		t.Fatalf("got %v, want ErrInsufficientBalance", err)
	}
}

func TestBucketPutResourceMismatch(t *testing.T) {
	r1 := core.NewAddress(core.EntityResource, core.HashBytes([]byte("tx")), 1)
	r2 := core.NewAddress(core.EntityResource, core.HashBytes([]byte("tx")), 2)
	a := core.NewFungibleBucket(r1, core.NewAmountFromInt64(10))
	b := core.NewFungibleBucket(r2, core.NewAmountFromInt64(5))
	if err := a.Put(b); err != core.ErrResourceMismatch {
		t.Fatalf("got %v, want ErrResourceMismatch", err)
	}
}

func TestBucketNonFungibleTakeReturn(t *testing.T) {
	resource := testResourceAddress()
	ids := core.NewIDSet("nft-1", "nft-2", "nft-3")
	b := core.NewNonFungibleBucket(resource, ids)

	taken, err := b.TakeNonFungible(core.NewIDSet("nft-2"))
	if err != nil {
		t.Fatalf("TakeNonFungible: %v", err)
	}
	if taken.Ids().Len() != 1 {
		t.Fatalf("taken has %d ids, want 1", taken.Ids().Len())
	}
	if b.Ids().Len() != 2 {
		t.Fatalf("remaining has %d ids, want 2", b.Ids().Len())
	}

	if err := b.Put(taken); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if b.Ids().Len() != 3 {
		t.Fatalf("ids after put-back = %d, want 3", b.Ids().Len())
	}
}

func TestVaultDepositWithdraw(t *testing.T) {
	resource := testResourceAddress()
	v := core.NewVault("vault-1", resource, core.Fungible)
	deposit := core.NewFungibleBucket(resource, core.NewAmountFromInt64(50))

	if err := v.Put(deposit); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if v.Amount().Cmp(core.NewAmountFromInt64(50)) != 0 {
		t.Fatalf("vault amount = %s, want 50", v.Amount())
	}

	withdrawn, err := v.Take(core.NewAmountFromInt64(20))
	if err != nil {
		t.Fatalf("Take: %v", err)
	}
	if withdrawn.Amount().Cmp(core.NewAmountFromInt64(20)) != 0 {
		t.Fatalf("withdrawn = %s, want 20", withdrawn.Amount())
	}
	if v.Amount().Cmp(core.NewAmountFromInt64(30)) != 0 {
		t.Fatalf("vault amount after withdraw = %s, want 30", v.Amount())
	}
}

func TestWorktopMergeAndTake(t *testing.T) {
	resource := testResourceAddress()
	w := core.NewWorktop()

	if err := w.Put(core.NewFungibleBucket(resource, core.NewAmountFromInt64(10))); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := w.Put(core.NewFungibleBucket(resource, core.NewAmountFromInt64(5))); err != nil {
		t.Fatalf("Put: %v", err)
	}

	if err := w.AssertContains(resource, core.NewAmountFromInt64(15)); err != nil {
		t.Fatalf("AssertContains: %v", err)
	}

	b, err := w.TakeAmount(resource, core.NewAmountFromInt64(15))
	if err != nil {
		t.Fatalf("TakeAmount: %v", err)
	}
	if b.Amount().Cmp(core.NewAmountFromInt64(15)) != 0 {
		t.Fatalf("took %s, want 15", b.Amount())
	}
	if len(w.NonEmptyResources()) != 0 {
		t.Fatal("worktop should be fully drained")
	}
}
