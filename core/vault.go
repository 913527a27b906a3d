package core

// Vaults: persistent containers owned by a component's state tree,
// structurally identical to buckets but addressable by a stable substate
// key. Grounded on vault.rs: put/take mirror Bucket. Nothing in this
// package checks that a vault is mutated only via the owning component's
// own methods.

// VaultID identifies a vault's substate key within its owning component.
type VaultID string

// Vault is the persistent counterpart to Bucket.
type Vault struct {
	ID       VaultID
	Resource Address
	Kind     ResourceKind
	amount   Amount
	ids      IDSet

	proofCount int
}

// NewVault creates an empty vault for the given resource.
func NewVault(id VaultID, resource Address, kind ResourceKind) *Vault {
	v := &Vault{ID: id, Resource: resource, Kind: kind}
	if kind == NonFungible {
		v.ids = NewIDSet()
	}
	return v
}

// Amount returns the fungible balance held (zero for non-fungible vaults).
func (v *Vault) Amount() Amount { return v.amount }

// Ids returns the non-fungible ids held (nil for fungible vaults).
func (v *Vault) Ids() IDSet { return v.ids }

// Put deposits the entire contents of bucket into the vault, consuming it.
func (v *Vault) Put(bucket *Bucket) error {
	if v.Resource != bucket.Resource || v.Kind != bucket.Kind {
		return ErrResourceMismatch
	}
	switch v.Kind {
	case Fungible:
		sum, err := v.amount.Add(bucket.amount)
		if err != nil {
			return err
		}
		v.amount = sum
		bucket.amount = ZeroAmount()
	case NonFungible:
		v.ids = v.ids.Union(bucket.ids)
		bucket.ids = nil
	}
	return nil
}

// Take withdraws amount units into a fresh bucket, failing
// InsufficientBalance if amount exceeds the vault's balance, and
// UnauthorizedWithdraw is the caller's responsibility to raise before
// reaching here (the authorization rule is checked against the component,
// not the vault).
func (v *Vault) Take(amount Amount) (*Bucket, error) {
	if v.Kind != Fungible {
		return nil, ErrResourceMismatch
	}
	if v.HasLiveProofs() {
		return nil, ErrBucketLockedByProof
	}
	remaining, err := v.amount.Sub(amount)
	if err != nil {
		return nil, err
	}
	v.amount = remaining
	return NewFungibleBucket(v.Resource, amount), nil
}

// TakeNonFungible withdraws the given ids into a fresh bucket.
func (v *Vault) TakeNonFungible(ids IDSet) (*Bucket, error) {
	if v.Kind != NonFungible {
		return nil, ErrResourceMismatch
	}
	if v.HasLiveProofs() {
		return nil, ErrBucketLockedByProof
	}
	remaining, err := v.ids.Sub(ids)
	if err != nil {
		return nil, err
	}
	v.ids = remaining
	return NewNonFungibleBucket(v.Resource, ids), nil
}

// TotalAmount mirrors Bucket.TotalAmount for proof sourcing.
func (v *Vault) TotalAmount() Amount {
	if v.Kind == Fungible {
		return v.amount
	}
	return NewAmountFromInt64(int64(v.ids.Len()))
}

// ResourceAddr, incRef and decRef satisfy proofSource.
func (v *Vault) ResourceAddr() Address { return v.Resource }
func (v *Vault) incRef()               { v.proofCount++ }
func (v *Vault) decRef()               { v.proofCount-- }

// HasLiveProofs mirrors Bucket.HasLiveProofs.
func (v *Vault) HasLiveProofs() bool { return v.proofCount > 0 }
