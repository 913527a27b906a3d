package core

// Call Frame / Process (C6): the per-invocation state machine that drives
// one WASM invocation (or, at the root, the manifest interpreter itself),
// mediates host calls, and enforces per-frame resource discipline on
// return. Grounded on process.rs's Process struct and its
// moved_buckets/buckets_lent/proofs/bucket_proofs bookkeeping.

import "fmt"

// FrameState is the per-frame state machine named in the data model.
type FrameState int

const (
	FrameConstructed FrameState = iota
	FrameInvoking
	FrameAwaitingHostCall
	FrameRunning
	FrameFinalizing
	FrameOk
	FrameErr
)

// maxCallDepth bounds recursive CallFunction/CallMethod nesting.
const maxCallDepth = 32

// Frame owns everything one invocation is responsible for: its identity,
// the resources moved into it, any it lent out as proof backing, the
// proofs it currently holds borrowed, the resources it intends to hand
// back to its caller, and its own auth-zone.
type Frame struct {
	Package   Address
	Blueprint string
	Method    string

	Owned    map[BucketID]*Bucket // moved-in / frame-held buckets
	Lent     map[BucketID]*Bucket // buckets surrendered to a callee as proof source
	Borrowed map[ProofID]*Proof   // live proof refs held by this frame
	Moving   map[BucketID]*Bucket // buckets to hand back to the caller on return

	AuthZone *AuthZone
	Depth    int
	State    FrameState

	parent *Frame
}

// NewRootFrame starts the transaction's root frame (the manifest
// interpreter's implicit invocation).
func NewRootFrame() *Frame {
	return &Frame{
		Owned:    make(map[BucketID]*Bucket),
		Lent:     make(map[BucketID]*Bucket),
		Borrowed: make(map[ProofID]*Proof),
		Moving:   make(map[BucketID]*Bucket),
		AuthZone: NewAuthZone(),
		State:    FrameConstructed,
	}
}

// NewChildFrame starts a frame for a CallFunction/CallMethod invocation,
// failing ErrCallFrameDepthExceeded once the depth limit is hit.
func NewChildFrame(parent *Frame, pkg Address, blueprint, method string) (*Frame, error) {
	if parent.Depth+1 > maxCallDepth {
		return nil, ErrCallFrameDepthExceeded
	}
	return &Frame{
		Package:   pkg,
		Blueprint: blueprint,
		Method:    method,
		Owned:     make(map[BucketID]*Bucket),
		Lent:      make(map[BucketID]*Bucket),
		Borrowed:  make(map[ProofID]*Proof),
		Moving:    make(map[BucketID]*Bucket),
		AuthZone:  NewAuthZone(),
		Depth:     parent.Depth + 1,
		State:     FrameConstructed,
		parent:    parent,
	}, nil
}

// AdoptBucket records b as owned by the frame (e.g. newly created, or
// moved in from a caller's argument marshalling).
func (f *Frame) AdoptBucket(b *Bucket) { f.Owned[b.ID] = b }

// TakeOwnedBucket removes and returns a bucket the frame owns, failing
// ErrBucketNotFound if it is not present.
func (f *Frame) TakeOwnedBucket(id BucketID) (*Bucket, error) {
	b, ok := f.Owned[id]
	if !ok {
		return nil, ErrBucketNotFound
	}
	delete(f.Owned, id)
	return b, nil
}

// LendBucket moves a bucket from Owned to Lent — used when a bucket is
// handed to a callee purely as proof backing rather than ownership.
func (f *Frame) LendBucket(id BucketID) error {
	b, ok := f.Owned[id]
	if !ok {
		return ErrBucketNotFound
	}
	delete(f.Owned, id)
	f.Lent[id] = b
	return nil
}

// ReclaimLent moves a bucket back from Lent to Owned once the callee no
// longer needs it as proof backing.
func (f *Frame) ReclaimLent(id BucketID) error {
	b, ok := f.Lent[id]
	if !ok {
		return ErrBucketNotFound
	}
	delete(f.Lent, id)
	f.Owned[id] = b
	return nil
}

// HoldProof records a proof as borrowed by this frame.
func (f *Frame) HoldProof(p *Proof) { f.Borrowed[p.ID] = p }

// ReleaseProof drops a held proof, failing ErrBucketRefNotFound if the
// frame does not hold it.
func (f *Frame) ReleaseProof(id ProofID) error {
	p, ok := f.Borrowed[id]
	if !ok {
		return ErrBucketRefNotFound
	}
	delete(f.Borrowed, id)
	p.Drop()
	// Once the last handle to a bucket-sourced proof is dropped, the bucket
	// it was lent from is free to return to ordinary ownership. A proof
	// dropped by a clone held elsewhere, or sourced from a vault, leaves
	// Lent untouched — ReclaimLent is a no-op if id isn't there.
	if b, ok := p.source.(*Bucket); ok && !b.HasLiveProofs() {
		_ = f.ReclaimLent(b.ID)
	}
	return nil
}

// QueueForReturn marks a bucket to be handed back to the caller when this
// frame finalizes successfully.
func (f *Frame) QueueForReturn(b *Bucket) { f.Moving[b.ID] = b }

// DrainMovingInto drains this frame's Moving set into parent's Owned set,
// implementing "on return the child's moving set is drained back into the
// parent."
func (f *Frame) DrainMovingInto(parent *Frame) {
	for id, b := range f.Moving {
		parent.Owned[id] = b
	}
	f.Moving = make(map[BucketID]*Bucket)
}

// Finalize asserts the no-resource-leak invariant: every owned bucket with
// non-zero amount, every lent bucket, and every outstanding borrowed proof
// is a leak. Only empty owned buckets and empty proofs may be silently
// dropped.
func (f *Frame) Finalize() error {
	f.State = FrameFinalizing
	var leakBuckets []BucketID
	for id, b := range f.Owned {
		if !b.IsEmpty() {
			leakBuckets = append(leakBuckets, id)
		}
	}
	for id := range f.Lent {
		leakBuckets = append(leakBuckets, id)
	}
	var leakProofs []ProofID
	for id := range f.Borrowed {
		leakProofs = append(leakProofs, id)
	}
	if len(leakBuckets) > 0 || len(leakProofs) > 0 {
		f.State = FrameErr
		return &ResourceLeak{BucketIDs: leakBuckets, ProofIDs: leakProofs}
	}
	f.State = FrameOk
	return nil
}

// MarshalArgsInto extracts transient bucket-id leaves from args, moving the
// referenced buckets from parent into child's Owned set. A persisted
// (vault) id appearing in args is rejected outright, per
// PersistedBucketCantBeMoved.
func MarshalArgsInto(parent, child *Frame, args Value) error {
	leaves := ExtractLeaves(args, KindBucketID)
	for _, leaf := range leaves {
		id := BucketID(leaf.LeafBytes)
		b, err := parent.TakeOwnedBucket(id)
		if err != nil {
			return err
		}
		child.AdoptBucket(b)
	}
	if vaultLeaves := ExtractLeaves(args, KindVaultID); len(vaultLeaves) > 0 {
		return ErrPersistedBucketCantMove
	}
	return nil
}

// String renders the frame's identity for logging.
func (f *Frame) String() string {
	return fmt.Sprintf("%s::%s.%s[depth=%d]", f.Package, f.Blueprint, f.Method, f.Depth)
}
