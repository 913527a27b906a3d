package core_test

import (
	"testing"

	"resonance-engine/core"
)

func TestAuthZonePushPopOrder(t *testing.T) {
	resource := testResourceAddress()
	b := core.NewFungibleBucket(resource, core.NewAmountFromInt64(100))
	p1, _ := core.NewProofFromAmount(b, resource, core.NewAmountFromInt64(1))
	p2, _ := core.NewProofFromAmount(b, resource, core.NewAmountFromInt64(2))

	z := core.NewAuthZone()
	z.Push(p1)
	z.Push(p2)

	top, err := z.Pop()
	if err != nil {
		t.Fatalf("Pop: %v", err)
	}
	if top != p2 {
		t.Fatal("Pop should return the most recently pushed proof (LIFO)")
	}

	bottom, err := z.Pop()
	if err != nil {
		t.Fatalf("Pop: %v", err)
	}
	if bottom != p1 {
		t.Fatal("second Pop should return the first-pushed proof")
	}

	if _, err := z.Pop(); err != core.ErrBucketRefNotFound {
		t.Fatalf("got %v, want ErrBucketRefNotFound on an empty zone", err)
	}
}

func TestAuthZoneClearDropsProofs(t *testing.T) {
	resource := testResourceAddress()
	b := core.NewFungibleBucket(resource, core.NewAmountFromInt64(100))
	p, err := core.NewProofFromAmount(b, resource, core.NewAmountFromInt64(10))
	if err != nil {
		t.Fatalf("NewProofFromAmount: %v", err)
	}

	z := core.NewAuthZone()
	z.Push(p)
	if !b.HasLiveProofs() {
		t.Fatal("bucket should show a live proof once pushed")
	}

	z.Clear()
	if b.HasLiveProofs() {
		t.Fatal("Clear should drop every proof's hold on its source")
	}
	if len(z.Proofs()) != 0 {
		t.Fatal("zone should be empty after Clear")
	}
}

func TestAuthZoneCreateProofFromAmount(t *testing.T) {
	resource := testResourceAddress()
	b := core.NewFungibleBucket(resource, core.NewAmountFromInt64(100))
	sourceProof, err := core.NewProofFromAmount(b, resource, core.NewAmountFromInt64(50))
	if err != nil {
		t.Fatalf("NewProofFromAmount: %v", err)
	}

	z := core.NewAuthZone()
	z.Push(sourceProof)

	derived, err := z.CreateProofFromAmount(resource, core.NewAmountFromInt64(20))
	if err != nil {
		t.Fatalf("CreateProofFromAmount: %v", err)
	}
	if derived.TotalAmount().Cmp(core.NewAmountFromInt64(20)) != 0 {
		t.Fatalf("derived proof amount = %s, want 20", derived.TotalAmount())
	}

	if _, err := z.CreateProofFromAmount(resource, core.NewAmountFromInt64(999)); err != core.ErrBucketRefNotFound {
		t.Fatalf("got %v, want ErrBucketRefNotFound when no zone proof covers the amount", err)
	}
}

func TestAuthZoneCreateProofFromIDs(t *testing.T) {
	resource := testResourceAddress()
	b := core.NewNonFungibleBucket(resource, core.NewIDSet("x", "y", "z"))
	sourceProof, err := core.NewProofFromNonFungible(b, b, resource, core.NewIDSet("x", "y"))
	if err != nil {
		t.Fatalf("NewProofFromNonFungible: %v", err)
	}

	z := core.NewAuthZone()
	z.Push(sourceProof)

	derived, err := z.CreateProofFromIDs(resource, core.NewIDSet("x"))
	if err != nil {
		t.Fatalf("CreateProofFromIDs: %v", err)
	}
	ids, err := derived.TotalIDs()
	if err != nil {
		t.Fatalf("TotalIDs: %v", err)
	}
	if ids.Len() != 1 {
		t.Fatalf("got %d ids, want 1", ids.Len())
	}

	if _, err := z.CreateProofFromIDs(resource, core.NewIDSet("not-held")); err != core.ErrBucketRefNotFound {
		t.Fatalf("got %v, want ErrBucketRefNotFound for an id not covered by any zone proof", err)
	}
}
