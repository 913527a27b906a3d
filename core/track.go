package core

// Track: a write-through journal over the persistent store, providing
// snapshot isolation for the lifetime of one transaction. Grounded on
// executor.rs's track/commit handoff and the data model's substate
// versioning rules.

import (
	"fmt"
)

type overlayEntry struct {
	value   []byte
	version uint64
}

// Track is the per-transaction journal. It is not safe for concurrent use
// by more than one frame at a time — the engine's concurrency model is
// single-threaded within a transaction.
type Track struct {
	store    SubstateStore
	overlay  map[SubstateKey]overlayEntry
	borrowed map[SubstateKey]struct{}
	counter  uint32
	newAddrs []Address
	txHash   Hash
}

// NewTrack opens a fresh journal rooted at store's current state.
func NewTrack(store SubstateStore, txHash Hash) *Track {
	return &Track{
		store:    store,
		overlay:  make(map[SubstateKey]overlayEntry),
		borrowed: make(map[SubstateKey]struct{}),
		txHash:   txHash,
	}
}

// Read returns the current value and version for key: the overlay's
// pending write if present, otherwise the committed value from the store.
func (t *Track) Read(key SubstateKey) ([]byte, uint64, bool) {
	if e, ok := t.overlay[key]; ok {
		return e.value, e.version, true
	}
	return t.store.GetSubstate(key)
}

// Write records a new value for key in the overlay; the store is
// untouched until Commit.
func (t *Track) Write(key SubstateKey, value []byte) {
	_, version, found := t.Read(key)
	if !found {
		version = 0
	}
	t.overlay[key] = overlayEntry{value: value, version: version + 1}
}

// SubstateGuard represents an exclusive borrow of one substate key; it
// must be released via Release before the transaction finalizes.
type SubstateGuard struct {
	track *Track
	key   SubstateKey
}

// BorrowMut marks key as borrowed, granting exclusive access until the
// guard is released. A reentrant borrow of the same key is a fatal
// programming error, surfaced as ErrSubstateBorrowed rather than a panic.
func (t *Track) BorrowMut(key SubstateKey) (*SubstateGuard, error) {
	if _, ok := t.borrowed[key]; ok {
		return nil, ErrSubstateBorrowed
	}
	t.borrowed[key] = struct{}{}
	return &SubstateGuard{track: t, key: key}, nil
}

// Release drops the borrow, allowing a future BorrowMut on the same key.
func (g *SubstateGuard) Release() {
	delete(g.track.borrowed, g.key)
}

// NewAddress consumes the per-track counter and derives a fresh address of
// the given kind, recording it for the receipt's new-address list.
func (t *Track) NewAddress(kind EntityType) Address {
	t.counter++
	addr := NewAddress(kind, t.txHash, t.counter)
	t.newAddrs = append(t.newAddrs, addr)
	return addr
}

// NewAddresses returns every address allocated on this track so far.
func (t *Track) NewAddresses() []Address {
	out := make([]Address, len(t.newAddrs))
	copy(out, t.newAddrs)
	return out
}

// AssertNoBorrows panics if any substate is still borrowed at
// end-of-transaction — the data model calls this a programming error, not
// a recoverable transaction failure, since it can only happen if engine
// code forgot to release a guard.
func (t *Track) AssertNoBorrows() {
	if len(t.borrowed) != 0 {
		panic(fmt.Sprintf("track: %d substate(s) still borrowed at commit", len(t.borrowed)))
	}
}

// CommitReceipt reports the substate writes applied by a successful
// Commit.
type CommitReceipt struct {
	WrittenKeys []SubstateKey
}

// Commit applies the overlay to the store in deterministic key order and
// bumps the nonce. Must only be called after AssertNoBorrows succeeds.
func (t *Track) Commit() *CommitReceipt {
	t.AssertNoBorrows()

	asMap := make(map[SubstateKey][]byte, len(t.overlay))
	for k, e := range t.overlay {
		asMap[k] = e.value
	}
	keys := sortedKeys(asMap)
	for _, k := range keys {
		t.store.PutSubstate(k, t.overlay[k].value)
	}
	t.store.IncreaseNonce()
	return &CommitReceipt{WrittenKeys: keys}
}

// Discard drops the overlay without touching the store — used on any
// execution failure so no partial effect is ever persisted.
func (t *Track) Discard() {
	t.overlay = make(map[SubstateKey]overlayEntry)
}
