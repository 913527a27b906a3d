package core

// Address derivation and the entity-type scheme. Grounded on the Radix
// entity-type prefix design: addresses are a typed byte-string, not a bare
// hash, so a reader can classify an address without a side lookup.

import (
	"encoding/hex"
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"
)

// EntityType distinguishes the kind of thing an Address refers to. The byte
// value is the address's first byte on the wire.
type EntityType byte

const (
	EntityResource EntityType = iota
	EntityPackage
	EntityComponent
	EntityAccountComponent
	EntitySystemComponent
)

func (e EntityType) String() string {
	switch e {
	case EntityResource:
		return "Resource"
	case EntityPackage:
		return "Package"
	case EntityComponent:
		return "Component"
	case EntityAccountComponent:
		return "AccountComponent"
	case EntitySystemComponent:
		return "SystemComponent"
	default:
		return "Unknown"
	}
}

// addressLen is the number of suffix bytes after the entity-type prefix.
const addressLen = 26

// Address is a typed byte-string: one entity-type prefix byte followed by
// 26 bytes derived from (transaction hash, counter).
type Address [1 + addressLen]byte

// NewAddress derives a deterministic address from a transaction hash and a
// per-transaction counter, matching the invariant that replays of the same
// transaction produce identical addresses.
func NewAddress(kind EntityType, txHash Hash, counter uint32) Address {
	buf := make([]byte, 0, len(txHash)+4+1)
	buf = append(buf, byte(kind))
	buf = append(buf, txHash[:]...)
	buf = append(buf, byte(counter>>24), byte(counter>>16), byte(counter>>8), byte(counter))
	digest := crypto.Keccak256(buf)

	var addr Address
	addr[0] = byte(kind)
	copy(addr[1:], digest[:addressLen])
	return addr
}

// Kind reports the address's entity type.
func (a Address) Kind() EntityType { return EntityType(a[0]) }

// Bytes returns the address as a byte slice.
func (a Address) Bytes() []byte { return a[:] }

// Hex renders the address as a network-prefix-free hex string. Textual form
// with a network prefix is a presentation concern left to callers outside
// the engine core.
func (a Address) Hex() string { return hex.EncodeToString(a[:]) }

func (a Address) String() string { return a.Kind().String() + ":" + a.Hex() }

// AddressFromHex parses the hex form produced by Address.Hex back into an
// Address, for CLI and manifest-loader use.
func AddressFromHex(s string) (Address, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return Address{}, fmt.Errorf("address %q: %w", s, err)
	}
	if len(b) != 1+addressLen {
		return Address{}, fmt.Errorf("address %q: want %d bytes, got %d", s, 1+addressLen, len(b))
	}
	var addr Address
	copy(addr[:], b)
	return addr, nil
}

// Hash is a 32-byte digest, used for transaction hashes and substate keys
// derived via content hashing.
type Hash [32]byte

func (h Hash) Hex() string { return hex.EncodeToString(h[:]) }

// HashBytes computes the Keccak-256 digest of b.
func HashBytes(b []byte) Hash {
	return Hash(crypto.Keccak256Hash(b))
}
