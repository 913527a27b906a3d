package core

import "testing"

func newTestInterpreter() *Interpreter {
	store := NewInMemoryStore()
	track := NewTrack(store, HashBytes([]byte("tx-manifest")))
	gas := NewGasMeter(1_000_000)
	return NewInterpreter(track, NewPackageRegistry(), NewComponentRegistry(), NewResourceRegistry(), nil, gas, track.txHash)
}

func TestManifestTakeReturnAssertCycle(t *testing.T) {
	resource := NewAddress(EntityResource, HashBytes([]byte("res")), 1)
	in := newTestInterpreter()
	in.worktop.Put(NewFungibleBucket(resource, NewAmountFromInt64(100)))

	outputs, err := in.Run([]Instruction{
		{Kind: InstrTakeFromWorktopByAmount, Resource: resource, Amount: NewAmountFromInt64(30), BucketRef: "b1"},
		{Kind: InstrReturnToWorktop, BucketRef: "b1"},
		{Kind: InstrAssertWorktopContainsByAmount, Resource: resource, Amount: NewAmountFromInt64(100)},
		{Kind: InstrTakeFromWorktop, Resource: resource, BucketRef: "b2"},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(outputs) != 4 {
		t.Fatalf("got %d outputs, want 4", len(outputs))
	}
	if outputs[0].Kind != KindBucketID {
		t.Fatalf("TakeFromWorktopByAmount output kind = %v, want KindBucketID", outputs[0].Kind)
	}
	if outputs[1].Kind != KindUnit {
		t.Fatalf("ReturnToWorktop output kind = %v, want KindUnit", outputs[1].Kind)
	}
	if outputs[2].Kind != KindUnit {
		t.Fatalf("AssertWorktopContainsByAmount output kind = %v, want KindUnit", outputs[2].Kind)
	}
}

func TestManifestRunDetectsWorktopLeak(t *testing.T) {
	resource := NewAddress(EntityResource, HashBytes([]byte("res")), 1)
	in := newTestInterpreter()
	in.worktop.Put(NewFungibleBucket(resource, NewAmountFromInt64(5)))

	_, err := in.Run(nil)
	if err == nil {
		t.Fatal("expected a resource-leak error when the worktop still holds a bucket at end of run")
	}
	if _, ok := err.(*ResourceLeak); !ok {
		t.Fatalf("expected a *ResourceLeak, got %T", err)
	}
}

func TestManifestProofCreateCloneDrop(t *testing.T) {
	resource := NewAddress(EntityResource, HashBytes([]byte("res")), 1)
	in := newTestInterpreter()

	sourceBucket := NewFungibleBucket(resource, NewAmountFromInt64(100))
	basisProof, err := NewProofFromAmount(sourceBucket, resource, NewAmountFromInt64(50))
	if err != nil {
		t.Fatalf("NewProofFromAmount: %v", err)
	}
	in.root.AuthZone.Push(basisProof)

	outputs, err := in.Run([]Instruction{
		{Kind: InstrCreateProofFromAuthZoneByAmount, Resource: resource, Amount: NewAmountFromInt64(10), ProofRef: "p1"},
		{Kind: InstrCloneProof, ProofRef: "p1"},
		{Kind: InstrDropProof, ProofRef: "p1"},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if outputs[0].Kind != KindProofID {
		t.Fatalf("CreateProofFromAuthZoneByAmount output kind = %v, want KindProofID", outputs[0].Kind)
	}
	if outputs[1].Kind != KindProofID {
		t.Fatalf("CloneProof output kind = %v, want KindProofID", outputs[1].Kind)
	}
	if outputs[2].Kind != KindUnit {
		t.Fatalf("DropProof output kind = %v, want KindUnit", outputs[2].Kind)
	}
	if _, ok := in.proofs["p1"]; ok {
		t.Fatal("DropProof should remove the proof from the interpreter's proof-ref table")
	}
}

func TestHostCreateProofFromBucketLendsAndReclaimsBucket(t *testing.T) {
	resource := NewAddress(EntityResource, HashBytes([]byte("res")), 1)
	in := newTestInterpreter()

	b := NewFungibleBucket(resource, NewAmountFromInt64(100))
	in.root.AdoptBucket(b)

	input := Encode(Value{Kind: KindEnum, Fields: []Value{
		bucketIDValue(b.ID),
		{Kind: KindInt, Width: 256, Signed: true, Int: NewAmountFromInt64(40).Raw()},
	}})
	out, err := in.hostDispatch(in.root, OpCreateProofFromBucket, input)
	if err != nil {
		t.Fatalf("OpCreateProofFromBucket: %v", err)
	}
	proofVal, err := Decode(out)
	if err != nil {
		t.Fatalf("Decode proof id: %v", err)
	}
	proofID := ProofID(proofVal.LeafBytes)

	if _, stillOwned := in.root.Owned[b.ID]; stillOwned {
		t.Fatal("creating a proof from a bucket must move it out of Owned into Lent")
	}
	if _, lent := in.root.Lent[b.ID]; !lent {
		t.Fatal("creating a proof from a bucket must record it in Lent")
	}

	// While the proof is live, the bucket is unreachable via frame.Owned —
	// attempting to drain it through the same host op that draining would
	// use fails with ErrBucketNotFound (it's not in Owned, it's in Lent).
	burnInput := []byte(b.ID)
	if _, err := in.hostDispatch(in.root, OpBurn, burnInput); err != ErrBucketNotFound {
		t.Fatalf("OpBurn on a lent bucket: got %v, want ErrBucketNotFound", err)
	}

	if err := in.root.ReleaseProof(proofID); err != nil {
		t.Fatalf("ReleaseProof: %v", err)
	}
	if _, ownedAgain := in.root.Owned[b.ID]; !ownedAgain {
		t.Fatal("dropping the proof's last handle must reclaim the bucket back into Owned")
	}
	if _, lent := in.root.Lent[b.ID]; lent {
		t.Fatal("the bucket must no longer be in Lent once reclaimed")
	}
}

func TestManifestPushPopAuthZone(t *testing.T) {
	resource := NewAddress(EntityResource, HashBytes([]byte("res")), 1)
	in := newTestInterpreter()

	sourceBucket := NewFungibleBucket(resource, NewAmountFromInt64(100))
	basisProof, err := NewProofFromAmount(sourceBucket, resource, NewAmountFromInt64(50))
	if err != nil {
		t.Fatalf("NewProofFromAmount: %v", err)
	}
	in.root.AuthZone.Push(basisProof)

	outputs, err := in.Run([]Instruction{
		{Kind: InstrCreateProofFromAuthZoneByAmount, Resource: resource, Amount: NewAmountFromInt64(10), ProofRef: "p1"},
		{Kind: InstrPushToAuthZone, ProofRef: "p1"},
		{Kind: InstrPopFromAuthZone},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if outputs[2].Kind != KindProofID {
		t.Fatalf("PopFromAuthZone output kind = %v, want KindProofID", outputs[2].Kind)
	}
	if _, ok := in.proofs["p1"]; ok {
		t.Fatal("PushToAuthZone should remove the proof from the interpreter's proof-ref table")
	}
}
