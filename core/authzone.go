package core

// AuthZone: a per-frame LIFO stack of proofs, the default source for
// authorization checks made by calls executed from within that frame. Per
// the design notes' open question on cross-frame proof sharing, each
// frame's auth-zone is independent; a caller must explicitly push a proof
// for a callee to see it.

// AuthZone is a per-frame stack of proofs.
type AuthZone struct {
	stack []*Proof
}

// NewAuthZone returns an empty auth-zone.
func NewAuthZone() *AuthZone { return &AuthZone{} }

// Push adds a proof to the top of the stack.
func (z *AuthZone) Push(p *Proof) { z.stack = append(z.stack, p) }

// Pop removes and returns the top proof, failing ErrBucketRefNotFound
// (the spec's "or analogous" failure for popping an empty stack) if empty.
func (z *AuthZone) Pop() (*Proof, error) {
	if len(z.stack) == 0 {
		return nil, ErrBucketRefNotFound
	}
	p := z.stack[len(z.stack)-1]
	z.stack = z.stack[:len(z.stack)-1]
	return p, nil
}

// Clear drops every proof on the stack, releasing each one's hold on its
// source.
func (z *AuthZone) Clear() {
	for _, p := range z.stack {
		p.Drop()
	}
	z.stack = nil
}

// Proofs returns the zone's current contents, caller-to-top order, for use
// as one element of the proof-sets sequence passed to AccessRule.Check.
func (z *AuthZone) Proofs() []*Proof {
	out := make([]*Proof, len(z.stack))
	copy(out, z.stack)
	return out
}

// CreateProofFromAmount builds a proof backed by amount units visible
// across the zone's fungible proofs of resource, without consuming any of
// them — it sources a fresh proof against the first zone proof of that
// resource with sufficient balance, matching the per-proof (not
// aggregated) evaluation policy used throughout.
func (z *AuthZone) CreateProofFromAmount(resource Address, amount Amount) (*Proof, error) {
	for _, p := range z.stack {
		if p.ResourceAddress == resource && p.TotalAmount().Cmp(amount) >= 0 {
			return NewProofFromAmount(p.source, resource, amount)
		}
	}
	return nil, ErrBucketRefNotFound
}

// CreateProofFromIDs is the non-fungible counterpart of
// CreateProofFromAmount.
func (z *AuthZone) CreateProofFromIDs(resource Address, ids IDSet) (*Proof, error) {
	for _, p := range z.stack {
		if p.ResourceAddress != resource || p.ResourceKind != NonFungible {
			continue
		}
		held, err := p.TotalIDs()
		if err != nil {
			continue
		}
		if held.Contains(ids) {
			holder, ok := p.source.(idsHolder)
			if !ok {
				continue
			}
			return NewProofFromNonFungible(p.source, holder, resource, ids)
		}
	}
	return nil, ErrBucketRefNotFound
}
