package core

// Proofs: unforgeable, reference-counted assertions of resource holding.
// A proof never conveys ownership; it only asserts that its source still
// holds at least the claimed amount/ids. Grounded on the host API design
// note: the guest controls proof lifetimes across the call boundary, so
// the engine must implement an explicit refcount rather than a scoped
// host-side guard.

import "github.com/google/uuid"

// ProofID globally identifies a proof handle.
type ProofID string

// NewProofID mints a fresh proof id.
func NewProofID() ProofID { return ProofID(uuid.NewString()) }

// proofSource is the common surface Bucket and Vault expose so a Proof can
// be created from either without duplicating the sourcing logic.
type proofSource interface {
	ResourceAddr() Address
	TotalAmount() Amount
	incRef()
	decRef()
}

// Proof asserts "the holder can present at least Amount units of Resource
// (optionally restricted to Ids)". Proofs are clone/drop reference
// counted; when the count reaches zero the hold on the source is released.
type Proof struct {
	ID              ProofID
	ResourceAddress Address
	ResourceKind    ResourceKind
	amount          Amount
	ids             IDSet
	source          proofSource
	refs            *int
}

// NewProofFromAmount records (resource, amount, source) and increments the
// source's proof count. It fails ErrInsufficientBalance if the source holds
// less than amount (bucket/vault Take is never used here since a proof must
// not move resource).
func NewProofFromAmount(source proofSource, resource Address, amount Amount) (*Proof, error) {
	if source.ResourceAddr() != resource {
		return nil, ErrResourceMismatch
	}
	if source.TotalAmount().Cmp(amount) < 0 {
		return nil, ErrInsufficientBalance
	}
	source.incRef()
	refs := 1
	return &Proof{
		ID:              NewProofID(),
		ResourceAddress: resource,
		ResourceKind:    Fungible,
		amount:          amount,
		source:          source,
		refs:            &refs,
	}, nil
}

// NewProofFromNonFungible is the non-fungible counterpart of NewProofFromAmount.
// idsHolder additionally exposes the held id set, since proofSource alone
// cannot express "contains these specific ids".
type idsHolder interface {
	Ids() IDSet
}

// NewProofFromNonFungible records (resource, ids, source) for a bucket or
// vault holder.
func NewProofFromNonFungible(source proofSource, holder idsHolder, resource Address, ids IDSet) (*Proof, error) {
	if source.ResourceAddr() != resource {
		return nil, ErrResourceMismatch
	}
	if !holder.Ids().Contains(ids) {
		return nil, ErrInsufficientBalance
	}
	source.incRef()
	refs := 1
	return &Proof{
		ID:              NewProofID(),
		ResourceAddress: resource,
		ResourceKind:    NonFungible,
		ids:             ids,
		source:          source,
		refs:            &refs,
	}, nil
}

// TotalAmount reports the proof's asserted fungible amount, or the
// cardinality of its id-set for non-fungible proofs.
func (p *Proof) TotalAmount() Amount {
	if p.ResourceKind == Fungible {
		return p.amount
	}
	return NewAmountFromInt64(int64(p.ids.Len()))
}

// TotalIDs returns the proof's asserted id-set; callers must check
// ResourceKind == NonFungible first.
func (p *Proof) TotalIDs() (IDSet, error) {
	if p.ResourceKind != NonFungible {
		return nil, ErrResourceMismatch
	}
	return p.ids, nil
}

// Clone increments the reference count and returns a new handle to the
// same underlying proof; the returned handle must be Drop-ed independently
// of the original.
func (p *Proof) Clone() *Proof {
	*p.refs++
	clone := *p
	clone.ID = NewProofID()
	return &clone
}

// Drop decrements the reference count; when it reaches zero the proof's
// hold on its source is released.
func (p *Proof) Drop() {
	*p.refs--
	if *p.refs <= 0 {
		p.source.decRef()
	}
}

// IsValid reports whether the proof's source still holds at least the
// asserted amount — the "proof validity" invariant from the data model.
func (p *Proof) IsValid() bool {
	return p.source.TotalAmount().Cmp(p.TotalAmount()) >= 0
}
