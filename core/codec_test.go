package core_test

import (
	"math/big"
	"testing"

	"resonance-engine/core"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	v := core.Value{
		Kind: core.KindTuple,
		Elems: []core.Value{
			{Kind: core.KindString, Str: "hello"},
			{Kind: core.KindInt, Width: 64, Signed: true, Int: big.NewInt(-42)},
			{Kind: core.KindBool, Bool: true},
			{Kind: core.KindOption, Option: &core.Value{Kind: core.KindUnit}},
		},
	}

	encoded := core.Encode(v)
	decoded, err := core.Decode(encoded)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if len(decoded.Elems) != 4 {
		t.Fatalf("got %d elements, want 4", len(decoded.Elems))
	}
	if decoded.Elems[0].Str != "hello" {
		t.Fatalf("Elems[0].Str = %q", decoded.Elems[0].Str)
	}
	if decoded.Elems[1].Int.Cmp(big.NewInt(-42)) != 0 {
		t.Fatalf("Elems[1].Int = %s, want -42", decoded.Elems[1].Int)
	}
	if !decoded.Elems[2].Bool {
		t.Fatal("Elems[2].Bool should be true")
	}
	if decoded.Elems[3].Option == nil || decoded.Elems[3].Option.Kind != core.KindUnit {
		t.Fatal("Elems[3].Option should decode back to Some(Unit)")
	}
}

func TestEncodeDecodeNoneOption(t *testing.T) {
	v := core.Value{Kind: core.KindOption, Option: nil}
	decoded, err := core.Decode(core.Encode(v))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if decoded.Option != nil {
		t.Fatal("expected None to decode back to a nil Option")
	}
}

func TestDecodeRejectsTrailingBytes(t *testing.T) {
	encoded := core.Encode(core.Value{Kind: core.KindUnit})
	encoded = append(encoded, 0xFF)
	if _, err := core.Decode(encoded); err == nil {
		t.Fatal("expected an error for trailing bytes")
	}
}

func TestTraverseRewritesLeaves(t *testing.T) {
	bucketLeaf := core.Value{Kind: core.KindBucketID, LeafBytes: []byte("bucket-1")}
	tree := core.Value{
		Kind:  core.KindTuple,
		Elems: []core.Value{bucketLeaf, {Kind: core.KindString, Str: "unrelated"}},
	}

	rewritten, err := core.Traverse(tree, func(leaf core.Value) (core.Value, error) {
		if leaf.Kind == core.KindBucketID {
			return core.Value{Kind: core.KindVaultID, LeafBytes: leaf.LeafBytes}, nil
		}
		return leaf, nil
	})
	if err != nil {
		t.Fatalf("Traverse: %v", err)
	}

	if rewritten.Elems[0].Kind != core.KindVaultID {
		t.Fatalf("bucket leaf was not rewritten to a vault leaf: %v", rewritten.Elems[0].Kind)
	}
	if string(rewritten.Elems[0].LeafBytes) != "bucket-1" {
		t.Fatalf("leaf payload mutated: %q", rewritten.Elems[0].LeafBytes)
	}
	if rewritten.Elems[1].Str != "unrelated" {
		t.Fatal("non-leaf sibling should be left untouched")
	}
}

func TestExtractLeaves(t *testing.T) {
	tree := core.Value{
		Kind: core.KindVec,
		Elems: []core.Value{
			{Kind: core.KindBucketID, LeafBytes: []byte("a")},
			{Kind: core.KindBucketID, LeafBytes: []byte("b")},
			{Kind: core.KindVaultID, LeafBytes: []byte("c")},
		},
	}
	leaves := core.ExtractLeaves(tree, core.KindBucketID)
	if len(leaves) != 2 {
		t.Fatalf("got %d bucket-id leaves, want 2", len(leaves))
	}
}
