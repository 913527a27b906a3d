package core

// Fixed-precision decimal arithmetic and non-fungible id sets. The original
// engine this is modeled on panics on overflow (scrypto/src/math/integers.rs);
// here overflow is a returned error so a bad transaction aborts cleanly
// instead of taking the process down.

import (
	"fmt"
	"math/big"
	"sort"
)

// decimalScale is the number of fractional digits an Amount carries,
// matching the 18-decimal-place convention used throughout the domain.
const decimalScale = 18

var decimalScaleFactor = new(big.Int).Exp(big.NewInt(10), big.NewInt(decimalScale), nil)

// amountBound is the largest magnitude an Amount may hold; this stands in
// for the fixed-width (256-bit signed) integer the production type uses.
var amountBound = new(big.Int).Lsh(big.NewInt(1), 255)

// Amount is a fixed-point decimal with decimalScale fractional digits,
// backed by an arbitrary-precision integer so the scale/overflow-detection
// logic is exact; the bound check below is what gives it fixed-width
// overflow semantics despite the unbounded backing type.
type Amount struct {
	raw *big.Int
}

// ZeroAmount is the additive identity.
func ZeroAmount() Amount { return Amount{raw: big.NewInt(0)} }

// NewAmountFromInt64 builds an Amount representing n whole units.
func NewAmountFromInt64(n int64) Amount {
	return Amount{raw: new(big.Int).Mul(big.NewInt(n), decimalScaleFactor)}
}

// NewAmountRaw builds an Amount from its already-scaled integer
// representation (i.e. value * 10^decimalScale).
func NewAmountRaw(raw *big.Int) Amount {
	return Amount{raw: new(big.Int).Set(raw)}
}

func (a Amount) checked() Amount {
	if a.raw == nil {
		return ZeroAmount()
	}
	return a
}

// IsZero reports whether the amount is exactly zero.
func (a Amount) IsZero() bool { return a.checked().raw.Sign() == 0 }

// IsNegative reports whether the amount is strictly negative.
func (a Amount) IsNegative() bool { return a.checked().raw.Sign() < 0 }

// Cmp compares a and b as ordinary integers (-1, 0, 1).
func (a Amount) Cmp(b Amount) int { return a.checked().raw.Cmp(b.checked().raw) }

// Add returns a+b, failing with ErrOverflow if the result exceeds the
// representable bound.
func (a Amount) Add(b Amount) (Amount, error) {
	sum := new(big.Int).Add(a.checked().raw, b.checked().raw)
	return boundedAmount(sum)
}

// Sub returns a-b, failing with ErrInsufficientBalance if the result would
// be negative (the only subtraction the engine performs is bucket/vault
// withdrawal, which must never go negative).
func (a Amount) Sub(b Amount) (Amount, error) {
	diff := new(big.Int).Sub(a.checked().raw, b.checked().raw)
	if diff.Sign() < 0 {
		return Amount{}, ErrInsufficientBalance
	}
	return boundedAmount(diff)
}

func boundedAmount(v *big.Int) (Amount, error) {
	abs := new(big.Int).Abs(v)
	if abs.Cmp(amountBound) > 0 {
		return Amount{}, ErrOverflow
	}
	return Amount{raw: v}, nil
}

func (a Amount) String() string {
	r := a.checked().raw
	q, rem := new(big.Int).QuoRem(r, decimalScaleFactor, new(big.Int))
	if rem.Sign() == 0 {
		return q.String()
	}
	return fmt.Sprintf("%s.%0*s", q.String(), decimalScale, new(big.Int).Abs(rem).String())
}

// Raw exposes the scaled integer representation, e.g. for codec encoding.
func (a Amount) Raw() *big.Int { return new(big.Int).Set(a.checked().raw) }

// ParseAmount parses a decimal string (e.g. "12.5") into an Amount, scaling
// it to decimalScale fractional digits. Used by manifest loaders that accept
// human-authored amounts.
func ParseAmount(s string) (Amount, error) {
	neg := false
	if len(s) > 0 && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}
	whole, frac, hasFrac := s, "", false
	for i, r := range s {
		if r == '.' {
			whole, frac, hasFrac = s[:i], s[i+1:], true
			break
		}
	}
	if len(frac) > decimalScale {
		return Amount{}, fmt.Errorf("amount %q: too many fractional digits", s)
	}
	for len(frac) < decimalScale {
		frac += "0"
	}
	if !hasFrac {
		frac = ""
		for i := 0; i < decimalScale; i++ {
			frac += "0"
		}
	}
	digits := whole + frac
	if digits == "" {
		digits = "0"
	}
	raw, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return Amount{}, fmt.Errorf("amount %q: not a valid decimal", s)
	}
	if neg {
		raw.Neg(raw)
	}
	return boundedAmount(raw)
}

// NonFungibleID identifies one unit within a non-fungible resource.
type NonFungibleID string

// IDSet is an immutable-by-convention set of non-fungible ids; callers treat
// operations below as producing a new set rather than mutating in place,
// matching the resource model's move-only discipline for bucket contents.
type IDSet map[NonFungibleID]struct{}

// NewIDSet builds a set from the given ids, deduplicating.
func NewIDSet(ids ...NonFungibleID) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Union returns a new set containing every id in either set.
func (s IDSet) Union(other IDSet) IDSet {
	out := make(IDSet, len(s)+len(other))
	for id := range s {
		out[id] = struct{}{}
	}
	for id := range other {
		out[id] = struct{}{}
	}
	return out
}

// Contains reports whether every id in other is present in s, i.e. whether
// subtracting other from s is a valid operation.
func (s IDSet) Contains(other IDSet) bool {
	for id := range other {
		if _, ok := s[id]; !ok {
			return false
		}
	}
	return true
}

// Sub returns s minus other, failing with ErrInsufficientBalance if other is
// not a subset of s.
func (s IDSet) Sub(other IDSet) (IDSet, error) {
	if !s.Contains(other) {
		return nil, ErrInsufficientBalance
	}
	out := make(IDSet, len(s)-len(other))
	for id := range s {
		if _, removed := other[id]; !removed {
			out[id] = struct{}{}
		}
	}
	return out, nil
}

// Len reports the number of ids in the set.
func (s IDSet) Len() int { return len(s) }

// Sorted returns the set's ids in ascending lexical order, for deterministic
// iteration (commit ordering, log output).
func (s IDSet) Sorted() []NonFungibleID {
	out := make([]NonFungibleID, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
