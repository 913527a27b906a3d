package core

// Package and Component registries. Adapted from the teacher's
// ContractRegistry (contracts.go): a mutex-guarded map keyed by address
// and a Deploy-shaped publish operation — but
// repurposed around the spec's immutable-package / mutable-component-state
// split instead of a single mutable "smart contract" record.

import (
	"sync"
)

// Blueprint is one exported contract type within a package: a name plus
// its ABI (the value schema for state and method args/returns). The ABI's
// shape is out of scope here (C1 only needs to decode tagged values, not
// validate them against a schema) — Methods is kept for the authorization
// lookup (which methods exist, and their MethodAuthorization).
type Blueprint struct {
	Name    string
	Methods map[string]MethodAuthorization
}

// Package is immutable WASM bytes plus per-blueprint metadata. Created by
// PublishPackage; validated once; never mutated or destroyed thereafter.
type Package struct {
	Address    Address
	Code       []byte
	CodeHash   Hash
	Blueprints map[string]*Blueprint
}

// PackageRegistry stores published packages. Like Track, it keeps an
// uncommitted overlay: a package published mid-transaction is visible to
// later reads of the same transaction via pending, but only lands in byID
// (and so survives a later transaction's reads) once Commit is called. A
// failed transaction calls Discard instead, dropping the overlay exactly
// as Track.Discard drops its own — so a package/component/resource created
// before a later failure never outlives the transaction that created it.
type PackageRegistry struct {
	mu      sync.RWMutex
	byID    map[Address]*Package
	pending map[Address]*Package
}

// NewPackageRegistry returns an empty registry.
func NewPackageRegistry() *PackageRegistry {
	return &PackageRegistry{byID: make(map[Address]*Package), pending: make(map[Address]*Package)}
}

// Publish validates (delegated to the injected WasmEngine) and stages a new
// package in the pending overlay, yielding its freshly derived address.
func (r *PackageRegistry) Publish(track *Track, engine WasmEngine, code []byte, blueprints map[string]*Blueprint) (*Package, error) {
	if err := engine.Validate(code); err != nil {
		return nil, err
	}
	instrumented, err := engine.Instrument(code)
	if err != nil {
		return nil, err
	}
	addr := track.NewAddress(EntityPackage)
	pkg := &Package{
		Address:    addr,
		Code:       instrumented,
		CodeHash:   HashBytes(instrumented),
		Blueprints: blueprints,
	}
	r.mu.Lock()
	r.pending[addr] = pkg
	r.mu.Unlock()
	return pkg, nil
}

// Get looks up a package, checking the pending overlay first so a
// transaction sees its own not-yet-committed publishes, failing
// ErrPackageNotFound if unknown to both.
func (r *PackageRegistry) Get(addr Address) (*Package, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if pkg, ok := r.pending[addr]; ok {
		return pkg, nil
	}
	pkg, ok := r.byID[addr]
	if !ok {
		return nil, ErrPackageNotFound
	}
	return pkg, nil
}

// Commit folds the pending overlay into permanent storage, mirroring
// Track.Commit's overlay-to-store handoff. Called once a transaction's
// track has itself committed successfully.
func (r *PackageRegistry) Commit() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for addr, pkg := range r.pending {
		r.byID[addr] = pkg
	}
	r.pending = make(map[Address]*Package)
}

// Discard drops the pending overlay without touching byID, mirroring
// Track.Discard — used whenever the transaction that staged it fails.
func (r *PackageRegistry) Discard() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending = make(map[Address]*Package)
}

// Component is a (package-address, blueprint-name, state, access-rules)
// tuple. Created by CreateComponent; state mutates only via the
// component's own methods, routed through the host interface.
type Component struct {
	Address     Address
	Package     Address
	Blueprint   string
	State       Value
	AccessRules map[string]MethodAuthorization
}

// ComponentRegistry stores live components, with the same pending-overlay
// discipline as PackageRegistry: creation and state mutation within a
// transaction land in pending, and only survive into byID on Commit.
type ComponentRegistry struct {
	mu      sync.RWMutex
	byID    map[Address]*Component
	pending map[Address]*Component
}

// NewComponentRegistry returns an empty registry.
func NewComponentRegistry() *ComponentRegistry {
	return &ComponentRegistry{byID: make(map[Address]*Component), pending: make(map[Address]*Component)}
}

// Create instantiates a new component from a package/blueprint with
// initial state and access rules, staging it in the pending overlay and
// yielding its freshly derived address.
func (r *ComponentRegistry) Create(track *Track, pkg Address, blueprint string, state Value, rules map[string]MethodAuthorization) *Component {
	addr := track.NewAddress(EntityComponent)
	c := &Component{Address: addr, Package: pkg, Blueprint: blueprint, State: state, AccessRules: rules}
	r.mu.Lock()
	r.pending[addr] = c
	r.mu.Unlock()
	return c
}

// Get looks up a component, checking the pending overlay first, failing
// ErrComponentNotFound if unknown to both.
func (r *ComponentRegistry) Get(addr Address) (*Component, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if c, ok := r.pending[addr]; ok {
		return c, nil
	}
	c, ok := r.byID[addr]
	if !ok {
		return nil, ErrComponentNotFound
	}
	return c, nil
}

// PutState overwrites a component's state value, as performed by one of
// its own methods via the host interface's put-component-state call. A
// component already staged this transaction is mutated in place; one
// carried over from a prior committed transaction is copy-on-write into
// the pending overlay so the committed copy stays untouched until Commit.
func (r *ComponentRegistry) PutState(addr Address, state Value) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.pending[addr]; ok {
		c.State = state
		return nil
	}
	c, ok := r.byID[addr]
	if !ok {
		return ErrComponentNotFound
	}
	clone := *c
	clone.State = state
	r.pending[addr] = &clone
	return nil
}

// Commit folds every component created or mutated this transaction into
// permanent storage.
func (r *ComponentRegistry) Commit() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for addr, c := range r.pending {
		r.byID[addr] = c
	}
	r.pending = make(map[Address]*Component)
}

// Discard drops the pending overlay without touching byID.
func (r *ComponentRegistry) Discard() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending = make(map[Address]*Component)
}

// MethodAuth looks up the MethodAuthorization bound to a component's
// method, failing ErrUnsupportedMethod if the method is not declared.
func (c *Component) MethodAuth(method string) MethodAuthorization {
	auth, ok := c.AccessRules[method]
	if !ok {
		return MethodAuthorization{Kind: AuthUnsupported}
	}
	return auth
}
