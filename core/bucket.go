package core

// Buckets: transient, move-only resource containers. A bucket is owned by
// exactly one frame at a time; dropping a non-empty bucket is a resource
// leak, enforced at frame finalization (frame.go), not here.

import "github.com/google/uuid"

// BucketID globally identifies a transient bucket. Collision-free thanks to
// uuid generation, matching the "globally unique" requirement in the data
// model without needing a per-track counter threaded through every call.
type BucketID string

// NewBucketID mints a fresh bucket id.
func NewBucketID() BucketID { return BucketID(uuid.NewString()) }

// Bucket holds some amount of one resource: an Amount for fungible
// resources, or an IDSet for non-fungible ones — never both populated.
type Bucket struct {
	ID       BucketID
	Resource Address
	Kind     ResourceKind
	amount   Amount
	ids      IDSet

	// proofCount tracks proofs currently sourced from this bucket; it must
	// be zero for the bucket to be freely consumed/dropped.
	proofCount int
}

// NewFungibleBucket creates a bucket holding amount units of a fungible
// resource.
func NewFungibleBucket(resource Address, amount Amount) *Bucket {
	return &Bucket{ID: NewBucketID(), Resource: resource, Kind: Fungible, amount: amount}
}

// NewNonFungibleBucket creates a bucket holding the given ids of a
// non-fungible resource.
func NewNonFungibleBucket(resource Address, ids IDSet) *Bucket {
	return &Bucket{ID: NewBucketID(), Resource: resource, Kind: NonFungible, ids: ids}
}

// IsEmpty reports whether the bucket holds zero amount / zero ids.
func (b *Bucket) IsEmpty() bool {
	if b.Kind == Fungible {
		return b.amount.IsZero()
	}
	return b.ids.Len() == 0
}

// Amount returns the fungible amount held (zero for non-fungible buckets).
func (b *Bucket) Amount() Amount { return b.amount }

// Ids returns the non-fungible ids held (nil for fungible buckets).
func (b *Bucket) Ids() IDSet { return b.ids }

// Put merges other into b. Requires the same resource; fails
// ResourceMismatch otherwise. other is left empty on success, matching the
// move-only discipline (callers must not reuse other afterward).
func (b *Bucket) Put(other *Bucket) error {
	if b.Resource != other.Resource || b.Kind != other.Kind {
		return ErrResourceMismatch
	}
	if other.proofCount > 0 {
		return ErrBucketRefNotFound
	}
	switch b.Kind {
	case Fungible:
		sum, err := b.amount.Add(other.amount)
		if err != nil {
			return err
		}
		b.amount = sum
		other.amount = ZeroAmount()
	case NonFungible:
		b.ids = b.ids.Union(other.ids)
		other.ids = nil
	}
	return nil
}

// Take splits amount units into a fresh bucket, failing
// InsufficientBalance if amount exceeds the held balance. take(0) is a
// no-op that yields an empty bucket.
func (b *Bucket) Take(amount Amount) (*Bucket, error) {
	if b.Kind != Fungible {
		return nil, ErrResourceMismatch
	}
	if b.HasLiveProofs() {
		return nil, ErrBucketLockedByProof
	}
	remaining, err := b.amount.Sub(amount)
	if err != nil {
		return nil, err
	}
	b.amount = remaining
	return NewFungibleBucket(b.Resource, amount), nil
}

// TakeNonFungible splits the given ids into a fresh bucket, requiring the
// bucket to be non-fungible and to contain every requested id.
func (b *Bucket) TakeNonFungible(ids IDSet) (*Bucket, error) {
	if b.Kind != NonFungible {
		return nil, ErrResourceMismatch
	}
	if b.HasLiveProofs() {
		return nil, ErrBucketLockedByProof
	}
	remaining, err := b.ids.Sub(ids)
	if err != nil {
		return nil, err
	}
	b.ids = remaining
	return NewNonFungibleBucket(b.Resource, ids), nil
}

// TotalAmount reports the proof-relevant amount: the fungible balance, or
// the id-set cardinality for non-fungible buckets.
func (b *Bucket) TotalAmount() Amount {
	if b.Kind == Fungible {
		return b.amount
	}
	return NewAmountFromInt64(int64(b.ids.Len()))
}

// ResourceAddr, incRef and decRef satisfy proofSource so a Proof can be
// created from either a Bucket or a Vault through the same code path.
func (b *Bucket) ResourceAddr() Address { return b.Resource }
func (b *Bucket) incRef()               { b.proofCount++ }
func (b *Bucket) decRef()               { b.proofCount-- }

// HasLiveProofs reports whether any proof currently holds a reference into
// this bucket; such a bucket must not be emptied below the proof's
// asserted amount.
func (b *Bucket) HasLiveProofs() bool { return b.proofCount > 0 }
