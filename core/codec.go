package core

// The tagged value format: a self-describing, tag-length-value encoding with
// traversal-with-transform over leaf values. Grounded on process.rs's
// traverse_sbor/dte pattern, but — per the bounded-recursion design note —
// Traverse walks an explicit work-stack instead of recursing, so adversarial
// nesting depth in a decoded value cannot blow the Go call stack.

import (
	"encoding/binary"
	"math/big"
)

// Kind is the one-byte type tag prefixing every encoded value.
type Kind byte

const (
	KindUnit Kind = iota
	KindBool
	KindInt // signed/unsigned integer of a given width; width/sign stored alongside
	KindString
	KindOption
	KindArray  // homogeneous, element-type prefixed
	KindTuple
	KindEnum        // variant index + name + fields
	KindFieldsNamed
	KindFieldsUnnamed
	KindFieldsUnit
	KindVec
	KindSet
	KindMap

	// Domain leaf types.
	KindHash
	KindBigInt
	KindAddress
	KindBucketID
	KindProofID
	KindVaultID
	KindComponentID
	KindNonFungibleIDKind
)

// IsLeaf reports whether k is one of the domain leaf kinds visited by
// Traverse's transform callback.
func (k Kind) IsLeaf() bool {
	return k >= KindHash && k <= KindNonFungibleIDKind
}

// Value is a node in the decoded tagged-value tree. Exactly the fields
// relevant to Kind are populated; the rest are zero.
type Value struct {
	Kind Kind

	Bool   bool
	Signed bool
	Width  int // bit width for KindInt: 8,16,32,64,128,256
	Int    *big.Int

	Str string

	Option *Value // nil = None

	ElemKind Kind // element type tag for KindArray
	Elems    []Value

	VariantIndex uint8
	VariantName  string
	Fields       []Value
	FieldNames   []string // parallel to Fields when Kind == KindFieldsNamed

	MapKeys []Value
	MapVals []Value

	LeafBytes []byte // raw payload for domain leaf kinds
}

// Encode serializes v into the tagged wire format.
func Encode(v Value) []byte {
	var buf []byte
	return encodeInto(buf, v)
}

func encodeInto(buf []byte, v Value) []byte {
	buf = append(buf, byte(v.Kind))
	switch v.Kind {
	case KindUnit:
		// no payload
	case KindBool:
		if v.Bool {
			buf = append(buf, 1)
		} else {
			buf = append(buf, 0)
		}
	case KindInt:
		buf = append(buf, byte(v.Width))
		if v.Signed {
			buf = append(buf, 1)
		} else {
			buf = append(buf, 0)
		}
		if v.Int.Sign() < 0 {
			buf = append(buf, 1)
		} else {
			buf = append(buf, 0)
		}
		b := v.Int.Bytes() // magnitude only; sign carried in the byte above
		buf = appendU32(buf, uint32(len(b)))
		buf = append(buf, b...)
	case KindString:
		s := []byte(v.Str)
		buf = appendU32(buf, uint32(len(s)))
		buf = append(buf, s...)
	case KindOption:
		if v.Option == nil {
			buf = append(buf, 0)
		} else {
			buf = append(buf, 1)
			buf = encodeInto(buf, *v.Option)
		}
	case KindArray:
		buf = append(buf, byte(v.ElemKind))
		buf = appendU32(buf, uint32(len(v.Elems)))
		for _, e := range v.Elems {
			buf = encodeInto(buf, e)
		}
	case KindTuple, KindVec, KindSet, KindFieldsUnnamed:
		buf = appendU32(buf, uint32(len(v.Elems)))
		for _, e := range v.Elems {
			buf = encodeInto(buf, e)
		}
	case KindFieldsUnit:
		// no payload
	case KindFieldsNamed:
		buf = appendU32(buf, uint32(len(v.Fields)))
		for i, f := range v.Fields {
			buf = appendString(buf, v.FieldNames[i])
			buf = encodeInto(buf, f)
		}
	case KindEnum:
		buf = append(buf, v.VariantIndex)
		buf = appendString(buf, v.VariantName)
		buf = appendU32(buf, uint32(len(v.Fields)))
		for _, f := range v.Fields {
			buf = encodeInto(buf, f)
		}
	case KindMap:
		buf = appendU32(buf, uint32(len(v.MapKeys)))
		for i := range v.MapKeys {
			buf = encodeInto(buf, v.MapKeys[i])
			buf = encodeInto(buf, v.MapVals[i])
		}
	default: // domain leaf kinds
		buf = appendU32(buf, uint32(len(v.LeafBytes)))
		buf = append(buf, v.LeafBytes...)
	}
	return buf
}

func appendU32(buf []byte, n uint32) []byte {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], n)
	return append(buf, tmp[:]...)
}

func appendString(buf []byte, s string) []byte {
	buf = appendU32(buf, uint32(len(s)))
	return append(buf, s...)
}

// decoder reads sequentially from a fixed byte slice.
type decoder struct {
	data []byte
	pos  int
}

func (d *decoder) byte() (byte, error) {
	if d.pos >= len(d.data) {
		return 0, ErrNotAllBytesUsed
	}
	b := d.data[d.pos]
	d.pos++
	return b, nil
}

func (d *decoder) take(n int) ([]byte, error) {
	if n < 0 || d.pos+n > len(d.data) {
		return nil, ErrNotAllBytesUsed
	}
	b := d.data[d.pos : d.pos+n]
	d.pos += n
	return b, nil
}

func (d *decoder) u32() (uint32, error) {
	b, err := d.take(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

func (d *decoder) string() (string, error) {
	n, err := d.u32()
	if err != nil {
		return "", err
	}
	b, err := d.take(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Decode parses a single tagged value and requires the input to be fully
// consumed, matching the codec's "traversal must fully consume the input"
// contract.
func Decode(data []byte) (Value, error) {
	d := &decoder{data: data}
	v, err := decodeOne(d)
	if err != nil {
		return Value{}, err
	}
	if d.pos != len(d.data) {
		return Value{}, ErrNotAllBytesUsed
	}
	return v, nil
}

func decodeOne(d *decoder) (Value, error) {
	tagByte, err := d.byte()
	if err != nil {
		return Value{}, err
	}
	kind := Kind(tagByte)
	if kind > KindNonFungibleIDKind {
		return Value{}, ErrInvalidType
	}
	switch kind {
	case KindUnit:
		return Value{Kind: kind}, nil
	case KindBool:
		b, err := d.byte()
		if err != nil {
			return Value{}, err
		}
		if b != 0 && b != 1 {
			return Value{}, ErrInvalidType
		}
		return Value{Kind: kind, Bool: b == 1}, nil
	case KindInt:
		width, err := d.byte()
		if err != nil {
			return Value{}, err
		}
		signFlag, err := d.byte()
		if err != nil {
			return Value{}, err
		}
		negFlag, err := d.byte()
		if err != nil {
			return Value{}, err
		}
		n, err := d.u32()
		if err != nil {
			return Value{}, err
		}
		raw, err := d.take(int(n))
		if err != nil {
			return Value{}, err
		}
		i := new(big.Int).SetBytes(raw)
		if negFlag == 1 {
			i.Neg(i)
		}
		return Value{Kind: kind, Width: int(width), Signed: signFlag == 1, Int: i}, nil
	case KindString:
		s, err := d.string()
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: kind, Str: s}, nil
	case KindOption:
		tag, err := d.byte()
		if err != nil {
			return Value{}, err
		}
		if tag == 0 {
			return Value{Kind: kind, Option: nil}, nil
		}
		inner, err := decodeOne(d)
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: kind, Option: &inner}, nil
	case KindArray:
		elemKind, err := d.byte()
		if err != nil {
			return Value{}, err
		}
		n, err := d.u32()
		if err != nil {
			return Value{}, err
		}
		elems := make([]Value, 0, n)
		for i := uint32(0); i < n; i++ {
			e, err := decodeOne(d)
			if err != nil {
				return Value{}, err
			}
			elems = append(elems, e)
		}
		return Value{Kind: kind, ElemKind: Kind(elemKind), Elems: elems}, nil
	case KindTuple, KindVec, KindSet, KindFieldsUnnamed:
		n, err := d.u32()
		if err != nil {
			return Value{}, err
		}
		elems := make([]Value, 0, n)
		for i := uint32(0); i < n; i++ {
			e, err := decodeOne(d)
			if err != nil {
				return Value{}, err
			}
			elems = append(elems, e)
		}
		return Value{Kind: kind, Elems: elems}, nil
	case KindFieldsUnit:
		return Value{Kind: kind}, nil
	case KindFieldsNamed:
		n, err := d.u32()
		if err != nil {
			return Value{}, err
		}
		fields := make([]Value, 0, n)
		names := make([]string, 0, n)
		for i := uint32(0); i < n; i++ {
			name, err := d.string()
			if err != nil {
				return Value{}, err
			}
			f, err := decodeOne(d)
			if err != nil {
				return Value{}, err
			}
			names = append(names, name)
			fields = append(fields, f)
		}
		return Value{Kind: kind, Fields: fields, FieldNames: names}, nil
	case KindEnum:
		idx, err := d.byte()
		if err != nil {
			return Value{}, err
		}
		name, err := d.string()
		if err != nil {
			return Value{}, err
		}
		n, err := d.u32()
		if err != nil {
			return Value{}, err
		}
		fields := make([]Value, 0, n)
		for i := uint32(0); i < n; i++ {
			f, err := decodeOne(d)
			if err != nil {
				return Value{}, err
			}
			fields = append(fields, f)
		}
		return Value{Kind: kind, VariantIndex: idx, VariantName: name, Fields: fields}, nil
	case KindMap:
		n, err := d.u32()
		if err != nil {
			return Value{}, err
		}
		keys := make([]Value, 0, n)
		vals := make([]Value, 0, n)
		for i := uint32(0); i < n; i++ {
			k, err := decodeOne(d)
			if err != nil {
				return Value{}, err
			}
			v, err := decodeOne(d)
			if err != nil {
				return Value{}, err
			}
			keys = append(keys, k)
			vals = append(vals, v)
		}
		return Value{Kind: kind, MapKeys: keys, MapVals: vals}, nil
	default: // domain leaf kinds
		n, err := d.u32()
		if err != nil {
			return Value{}, err
		}
		raw, err := d.take(int(n))
		if err != nil {
			return Value{}, err
		}
		leaf := make([]byte, len(raw))
		copy(leaf, raw)
		return Value{Kind: kind, LeafBytes: leaf}, nil
	}
}

// LeafTransform rewrites a single leaf value, returning the replacement (or
// the same value to leave it unchanged) and an error to reject the leaf
// outright (InvalidType, CustomLeafRejected semantics live in the caller).
type LeafTransform func(Value) (Value, error)

// traverseFrame is one entry on Traverse's explicit work-stack: a partially
// rebuilt composite value plus the index of the next child to visit.
type traverseFrame struct {
	v       Value
	childIx int
	built   []Value // rebuilt children so far
}

// Traverse walks v and applies transform to every leaf exactly once,
// returning a new tree with leaves replaced. It uses an explicit
// heap-allocated work-stack rather than recursion, so pathologically deep
// input (crafted to exhaust the call stack) does not overflow the goroutine
// stack. No depth limit is applied: deep input is walked, not rejected, and
// the work-stack grows with the depth.
func Traverse(v Value, transform LeafTransform) (Value, error) {
	if v.Kind.IsLeaf() {
		return transform(v)
	}
	if !hasChildren(v.Kind) {
		return v, nil
	}

	stack := []traverseFrame{{v: v}}
	var result Value

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		children := childrenOf(top.v)
		if top.childIx >= len(children) {
			rebuilt := rebuild(top.v, top.built)
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				result = rebuilt
				break
			}
			parent := &stack[len(stack)-1]
			parent.built = append(parent.built, rebuilt)
			parent.childIx++
			continue
		}

		child := children[top.childIx]
		if child.Kind.IsLeaf() {
			out, err := transform(child)
			if err != nil {
				return Value{}, err
			}
			top.built = append(top.built, out)
			top.childIx++
			continue
		}
		if !hasChildren(child.Kind) {
			top.built = append(top.built, child)
			top.childIx++
			continue
		}
		stack = append(stack, traverseFrame{v: child})
	}
	return result, nil
}

func hasChildren(k Kind) bool {
	switch k {
	case KindOption, KindArray, KindTuple, KindVec, KindSet, KindFieldsUnnamed, KindFieldsNamed, KindEnum, KindMap:
		return true
	default:
		return false
	}
}

func childrenOf(v Value) []Value {
	switch v.Kind {
	case KindOption:
		if v.Option == nil {
			return nil
		}
		return []Value{*v.Option}
	case KindArray, KindTuple, KindVec, KindSet, KindFieldsUnnamed:
		return v.Elems
	case KindFieldsNamed:
		return v.Fields
	case KindEnum:
		return v.Fields
	case KindMap:
		out := make([]Value, 0, len(v.MapKeys)+len(v.MapVals))
		out = append(out, v.MapKeys...)
		out = append(out, v.MapVals...)
		return out
	default:
		return nil
	}
}

func rebuild(v Value, children []Value) Value {
	switch v.Kind {
	case KindOption:
		if len(children) == 0 {
			return v
		}
		c := children[0]
		v.Option = &c
	case KindArray, KindTuple, KindVec, KindSet, KindFieldsUnnamed:
		v.Elems = children
	case KindFieldsNamed:
		v.Fields = children
	case KindEnum:
		v.Fields = children
	case KindMap:
		half := len(children) / 2
		v.MapKeys = children[:half]
		v.MapVals = children[half:]
	}
	return v
}

// ExtractLeaves returns every leaf value of the given kind reachable from v,
// used to pull the set of resource references out of an opaque argument or
// component-state value.
func ExtractLeaves(v Value, kind Kind) []Value {
	var out []Value
	_, _ = Traverse(v, func(leaf Value) (Value, error) {
		if leaf.Kind == kind {
			out = append(out, leaf)
		}
		return leaf, nil
	})
	return out
}
