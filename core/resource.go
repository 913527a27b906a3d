package core

// Resource definitions: the immutable descriptor every bucket, vault, and
// proof refers to by address. Created once via CreateResource, never
// mutated, never destroyed — mirroring the Package immutability invariant
// but for fungible/non-fungible asset types.

import "sync"

// ResourceKind distinguishes fungible resources (divisible amounts) from
// non-fungible resources (discrete ids).
type ResourceKind int

const (
	Fungible ResourceKind = iota
	NonFungible
)

// MintAuthority gates CreateResource's mint/burn capability. A nil
// authority means the resource's supply is fixed at creation and can never
// be minted or burned thereafter.
type MintAuthority struct {
	Rule *AccessRule
}

// ResourceDef is the immutable descriptor for one resource address.
type ResourceDef struct {
	Address      Address
	Symbol       string
	Name         string
	Kind         ResourceKind
	Divisibility uint8 // meaningful only when Kind == Fungible
	MintAuth     MintAuthority
	BurnAuth     MintAuthority
}

// ResourceRegistry holds every ResourceDef created so far, keyed by
// address. It never overwrites or deletes an entry once committed. Like
// PackageRegistry/ComponentRegistry it stages new definitions in a pending
// overlay until Commit, so a resource created by a transaction that later
// fails is discarded rather than persisted.
type ResourceRegistry struct {
	mu      sync.RWMutex
	defs    map[Address]*ResourceDef
	pending map[Address]*ResourceDef
}

// NewResourceRegistry returns an empty registry.
func NewResourceRegistry() *ResourceRegistry {
	return &ResourceRegistry{defs: make(map[Address]*ResourceDef), pending: make(map[Address]*ResourceDef)}
}

// Create stages a new, immutable resource descriptor in the pending
// overlay. It is an invariant violation (programming error) to call
// Create twice for the same address, since addresses are derived fresh
// per transaction.
func (r *ResourceRegistry) Create(def *ResourceDef) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending[def.Address] = def
}

// Get looks up a resource definition, checking the pending overlay first,
// failing ErrResourceNotFound if the address is unknown to both.
func (r *ResourceRegistry) Get(addr Address) (*ResourceDef, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if def, ok := r.pending[addr]; ok {
		return def, nil
	}
	def, ok := r.defs[addr]
	if !ok {
		return nil, ErrResourceNotFound
	}
	return def, nil
}

// Commit folds every resource definition created this transaction into
// permanent storage.
func (r *ResourceRegistry) Commit() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for addr, def := range r.pending {
		r.defs[addr] = def
	}
	r.pending = make(map[Address]*ResourceDef)
}

// Discard drops the pending overlay without touching defs.
func (r *ResourceRegistry) Discard() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending = make(map[Address]*ResourceDef)
}
