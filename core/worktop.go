package core

// Worktop: the per-transaction, frame-external staging area the manifest
// interpreter uses to hold buckets between instructions.

// Worktop merges returned buckets by resource address and splits them back
// out on demand.
type Worktop struct {
	buckets map[Address]*Bucket
}

// NewWorktop returns an empty worktop.
func NewWorktop() *Worktop { return &Worktop{buckets: make(map[Address]*Bucket)} }

// Put merges bucket into the worktop's holding for its resource, consuming
// bucket.
func (w *Worktop) Put(bucket *Bucket) error {
	existing, ok := w.buckets[bucket.Resource]
	if !ok {
		w.buckets[bucket.Resource] = bucket
		return nil
	}
	return existing.Put(bucket)
}

// TakeAll removes and returns the entire bucket held for resource, failing
// ErrBucketNotFound if the worktop holds nothing (or an empty bucket) for
// it.
func (w *Worktop) TakeAll(resource Address) (*Bucket, error) {
	b, ok := w.buckets[resource]
	if !ok || b.IsEmpty() {
		return nil, ErrBucketNotFound
	}
	delete(w.buckets, resource)
	return b, nil
}

// TakeAmount splits amount units of resource out of the worktop.
func (w *Worktop) TakeAmount(resource Address, amount Amount) (*Bucket, error) {
	b, ok := w.buckets[resource]
	if !ok {
		return nil, ErrBucketNotFound
	}
	return b.Take(amount)
}

// TakeIDs splits the given non-fungible ids of resource out of the
// worktop.
func (w *Worktop) TakeIDs(resource Address, ids IDSet) (*Bucket, error) {
	b, ok := w.buckets[resource]
	if !ok {
		return nil, ErrBucketNotFound
	}
	return b.TakeNonFungible(ids)
}

// AssertContains fails the transaction if the worktop does not hold at
// least amount of resource (pure check, no state change).
func (w *Worktop) AssertContains(resource Address, amount Amount) error {
	b, ok := w.buckets[resource]
	if !ok || b.TotalAmount().Cmp(amount) < 0 {
		return ErrResourceMismatch
	}
	return nil
}

// Drain empties the worktop, returning every held bucket — used by
// CallMethodWithAllResources.
func (w *Worktop) Drain() []*Bucket {
	out := make([]*Bucket, 0, len(w.buckets))
	for _, b := range w.buckets {
		out = append(out, b)
	}
	w.buckets = make(map[Address]*Bucket)
	return out
}

// NonEmptyResources returns the resources for which the worktop still
// holds a non-empty bucket — used to detect a leak at end-of-transaction.
func (w *Worktop) NonEmptyResources() []Address {
	var out []Address
	for addr, b := range w.buckets {
		if !b.IsEmpty() {
			out = append(out, addr)
		}
	}
	return out
}
