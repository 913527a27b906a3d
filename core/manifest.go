package core

// Manifest Interpreter (C7): walks the ordered instruction stream of a
// transaction, maintaining the transaction-level worktop and auth-zone,
// and pushing child frames for CallFunction/CallMethod. Instruction shapes
// are grounded field-for-field on executable.rs's ExecutableInstruction
// enum.

import (
	"math/big"

	"github.com/sirupsen/logrus"
)

// InstrKind enumerates the manifest instruction set (C7 §4.7).
type InstrKind int

const (
	InstrTakeFromWorktop InstrKind = iota
	InstrTakeFromWorktopByAmount
	InstrTakeFromWorktopByIds
	InstrReturnToWorktop
	InstrAssertWorktopContains
	InstrAssertWorktopContainsByAmount
	InstrAssertWorktopContainsByIds
	InstrCreateProofFromAuthZone
	InstrCreateProofFromAuthZoneByAmount
	InstrCreateProofFromAuthZoneByIds
	InstrPushToAuthZone
	InstrPopFromAuthZone
	InstrClearAuthZone
	InstrCloneProof
	InstrDropProof
	InstrCallFunction
	InstrCallMethod
	InstrCallMethodWithAllResources
	InstrPublishPackage
)

// Instruction is one manifest step. Only the fields relevant to Kind are
// populated.
type Instruction struct {
	Kind InstrKind

	Resource Address
	Amount   Amount
	IDs      IDSet

	BucketRef string // local manifest handle naming a bucket
	ProofRef  string // local manifest handle naming a proof

	Package   Address
	Blueprint string
	Component Address
	Method    string
	CallData  []byte // tagged-encoded argument tuple

	Code       []byte                          // PublishPackage
	Blueprints map[string]*Blueprint            // PublishPackage (ABI supplied out-of-band; see DESIGN.md)
}

// Interpreter executes a manifest against a single track, accumulating
// worktop/auth-zone state across instructions and driving child frames for
// inter-component calls.
type Interpreter struct {
	Track      *Track
	Packages   *PackageRegistry
	Components *ComponentRegistry
	Resources  *ResourceRegistry
	Vaults     map[VaultID]*Vault
	Engine     WasmEngine
	Gas        *GasMeter

	worktop *Worktop
	root    *Frame

	buckets map[string]*Bucket
	proofs  map[string]*Proof

	logs    []LogEntry
	actor   Address
	txHash  Hash
}

// LogEntry is one emitted log line, level plus message.
type LogEntry struct {
	Level   string
	Message string
}

// NewInterpreter builds an interpreter for one transaction.
func NewInterpreter(track *Track, packages *PackageRegistry, components *ComponentRegistry, resources *ResourceRegistry, engine WasmEngine, gas *GasMeter, txHash Hash) *Interpreter {
	return &Interpreter{
		Track:      track,
		Packages:   packages,
		Components: components,
		Resources:  resources,
		Vaults:     make(map[VaultID]*Vault),
		Engine:     engine,
		Gas:        gas,
		worktop:    NewWorktop(),
		root:       NewRootFrame(),
		buckets:    make(map[string]*Bucket),
		proofs:     make(map[string]*Proof),
		txHash:     txHash,
	}
}

// Run executes every instruction in order, returning each instruction's
// output value (Value{Kind: KindUnit} for instructions with no output) or
// the first error encountered.
func (in *Interpreter) Run(instrs []Instruction) ([]Value, error) {
	outputs := make([]Value, 0, len(instrs))
	for _, instr := range instrs {
		out, err := in.step(instr)
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, out)
	}
	if leaked := in.worktop.NonEmptyResources(); len(leaked) > 0 {
		return nil, &ResourceLeak{}
	}
	in.root.AuthZone.Clear()
	return outputs, nil
}

func (in *Interpreter) step(instr Instruction) (Value, error) {
	switch instr.Kind {
	case InstrTakeFromWorktop:
		b, err := in.worktop.TakeAll(instr.Resource)
		if err != nil {
			return Value{}, err
		}
		in.root.AdoptBucket(b)
		in.buckets[instr.BucketRef] = b
		return bucketIDValue(b.ID), nil

	case InstrTakeFromWorktopByAmount:
		b, err := in.worktop.TakeAmount(instr.Resource, instr.Amount)
		if err != nil {
			return Value{}, err
		}
		in.root.AdoptBucket(b)
		in.buckets[instr.BucketRef] = b
		return bucketIDValue(b.ID), nil

	case InstrTakeFromWorktopByIds:
		b, err := in.worktop.TakeIDs(instr.Resource, instr.IDs)
		if err != nil {
			return Value{}, err
		}
		in.root.AdoptBucket(b)
		in.buckets[instr.BucketRef] = b
		return bucketIDValue(b.ID), nil

	case InstrReturnToWorktop:
		b, ok := in.buckets[instr.BucketRef]
		if !ok {
			return Value{}, ErrBucketNotFound
		}
		if _, err := in.root.TakeOwnedBucket(b.ID); err != nil {
			return Value{}, err
		}
		delete(in.buckets, instr.BucketRef)
		if err := in.worktop.Put(b); err != nil {
			return Value{}, err
		}
		return Value{Kind: KindUnit}, nil

	case InstrAssertWorktopContains, InstrAssertWorktopContainsByAmount:
		if err := in.worktop.AssertContains(instr.Resource, instr.Amount); err != nil {
			return Value{}, err
		}
		return Value{Kind: KindUnit}, nil

	case InstrAssertWorktopContainsByIds:
		b, ok := in.worktop.buckets[instr.Resource]
		if !ok || !b.Ids().Contains(instr.IDs) {
			return Value{}, ErrResourceMismatch
		}
		return Value{Kind: KindUnit}, nil

	case InstrCreateProofFromAuthZone:
		p, err := in.root.AuthZone.CreateProofFromAmount(instr.Resource, in.resourceTotal(instr.Resource))
		if err != nil {
			return Value{}, err
		}
		in.root.HoldProof(p)
		in.proofs[instr.ProofRef] = p
		return proofIDValue(p.ID), nil

	case InstrCreateProofFromAuthZoneByAmount:
		p, err := in.root.AuthZone.CreateProofFromAmount(instr.Resource, instr.Amount)
		if err != nil {
			return Value{}, err
		}
		in.root.HoldProof(p)
		in.proofs[instr.ProofRef] = p
		return proofIDValue(p.ID), nil

	case InstrCreateProofFromAuthZoneByIds:
		p, err := in.root.AuthZone.CreateProofFromIDs(instr.Resource, instr.IDs)
		if err != nil {
			return Value{}, err
		}
		in.root.HoldProof(p)
		in.proofs[instr.ProofRef] = p
		return proofIDValue(p.ID), nil

	case InstrPushToAuthZone:
		p, ok := in.proofs[instr.ProofRef]
		if !ok {
			return Value{}, ErrBucketRefNotFound
		}
		delete(in.proofs, instr.ProofRef)
		// The held proof moving to the zone is still "held" logically: it
		// stays in the root frame's Borrowed set and its refcount is not
		// dropped.
		in.root.AuthZone.Push(p)
		return Value{Kind: KindUnit}, nil

	case InstrPopFromAuthZone:
		p, err := in.root.AuthZone.Pop()
		if err != nil {
			return Value{}, err
		}
		in.root.HoldProof(p)
		return proofIDValue(p.ID), nil

	case InstrClearAuthZone:
		in.root.AuthZone.Clear()
		return Value{Kind: KindUnit}, nil

	case InstrCloneProof:
		p, ok := in.proofs[instr.ProofRef]
		if !ok {
			return Value{}, ErrBucketRefNotFound
		}
		clone := p.Clone()
		in.root.HoldProof(clone)
		return proofIDValue(clone.ID), nil

	case InstrDropProof:
		p, ok := in.proofs[instr.ProofRef]
		if !ok {
			return Value{}, ErrBucketRefNotFound
		}
		delete(in.proofs, instr.ProofRef)
		return Value{Kind: KindUnit}, in.root.ReleaseProof(p.ID)

	case InstrCallFunction:
		return in.callFunction(in.root, instr)

	case InstrCallMethod:
		return in.callMethod(in.root, instr)

	case InstrCallMethodWithAllResources:
		return in.callMethodWithAllResources(instr)

	case InstrPublishPackage:
		pkg, err := in.Packages.Publish(in.Track, in.Engine, instr.Code, instr.Blueprints)
		if err != nil {
			return Value{}, err
		}
		return addressValue(KindAddress, pkg.Address), nil

	default:
		return Value{}, ErrInvalidOpCode
	}
}

func (in *Interpreter) resourceTotal(resource Address) Amount {
	for _, p := range in.root.AuthZone.Proofs() {
		if p.ResourceAddress == resource {
			return p.TotalAmount()
		}
	}
	return ZeroAmount()
}

func (in *Interpreter) callFunction(caller *Frame, instr Instruction) (Value, error) {
	pkg, err := in.Packages.Get(instr.Package)
	if err != nil {
		return Value{}, err
	}
	bp, ok := pkg.Blueprints[instr.Blueprint]
	if !ok {
		return Value{}, ErrBlueprintNotFound
	}
	child, err := NewChildFrame(caller, instr.Package, instr.Blueprint, instr.Method)
	if err != nil {
		return Value{}, err
	}
	args, err := Decode(instr.CallData)
	if err != nil {
		return Value{}, &InvalidData{Cause: err}
	}
	if err := MarshalArgsInto(caller, child, args); err != nil {
		return Value{}, err
	}
	auth := bp.Methods[instr.Method]
	if err := auth.Check([][]*Proof{caller.AuthZone.Proofs()}); err != nil {
		return Value{}, err
	}
	return in.invoke(pkg, child, instr.Method, args)
}

func (in *Interpreter) callMethod(caller *Frame, instr Instruction) (Value, error) {
	comp, err := in.Components.Get(instr.Component)
	if err != nil {
		return Value{}, err
	}
	pkg, err := in.Packages.Get(comp.Package)
	if err != nil {
		return Value{}, err
	}
	auth := comp.MethodAuth(instr.Method)
	if err := auth.Check([][]*Proof{caller.AuthZone.Proofs()}); err != nil {
		return Value{}, err
	}
	child, err := NewChildFrame(caller, comp.Package, comp.Blueprint, instr.Method)
	if err != nil {
		return Value{}, err
	}
	args, err := Decode(instr.CallData)
	if err != nil {
		return Value{}, &InvalidData{Cause: err}
	}
	if err := MarshalArgsInto(caller, child, args); err != nil {
		return Value{}, err
	}
	return in.invoke(pkg, child, instr.Method, args)
}

func (in *Interpreter) callMethodWithAllResources(instr Instruction) (Value, error) {
	drained := in.worktop.Drain()
	for _, b := range drained {
		in.root.AdoptBucket(b)
	}
	comp, err := in.Components.Get(instr.Component)
	if err != nil {
		return Value{}, err
	}
	pkg, err := in.Packages.Get(comp.Package)
	if err != nil {
		return Value{}, err
	}
	auth := comp.MethodAuth(instr.Method)
	if err := auth.Check([][]*Proof{in.root.AuthZone.Proofs()}); err != nil {
		return Value{}, err
	}
	child, err := NewChildFrame(in.root, comp.Package, comp.Blueprint, instr.Method)
	if err != nil {
		return Value{}, err
	}
	bucketIDs := make([]Value, 0, len(drained))
	for _, b := range drained {
		if _, err := in.root.TakeOwnedBucket(b.ID); err != nil {
			return Value{}, err
		}
		child.AdoptBucket(b)
		bucketIDs = append(bucketIDs, bucketIDValue(b.ID))
	}
	args := Value{Kind: KindVec, Elems: bucketIDs}
	return in.invoke(pkg, child, instr.Method, args)
}

// invoke loads the package's WASM instance, wires the host-call dispatcher
// against this interpreter, drives the call, drains the child's moving set
// back into the root frame, and finalizes the child.
func (in *Interpreter) invoke(pkg *Package, child *Frame, method string, args Value) (Value, error) {
	instance, err := in.Engine.Instantiate(pkg.Code, func(op HostOp, input []byte) ([]byte, error) {
		return in.hostDispatch(child, op, input)
	})
	if err != nil {
		return Value{}, err
	}
	if err := in.Gas.Consume(OpCallMethod); err != nil {
		return Value{}, err
	}
	out, err := instance.InvokeExport(method, Encode(args))
	if err != nil {
		return Value{}, err
	}
	child.DrainMovingInto(in.root)
	if err := child.Finalize(); err != nil {
		return Value{}, err
	}
	result, err := Decode(out)
	if err != nil {
		return Value{}, &InvalidData{Cause: err}
	}
	logrus.WithField("frame", child.String()).Debug("invocation finalized")
	return result, nil
}

func bucketIDValue(id BucketID) Value {
	return Value{Kind: KindBucketID, LeafBytes: []byte(id)}
}

func proofIDValue(id ProofID) Value {
	return Value{Kind: KindProofID, LeafBytes: []byte(id)}
}

func addressValue(kind Kind, addr Address) Value {
	return Value{Kind: kind, LeafBytes: addr.Bytes()}
}

// hostDispatch is the typed dispatch table (C5 §4.5) a running WASM
// instance's imported host_call function routes into. Grounded on the
// design note preferring a typed table keyed on an enum over the source's
// raw integer-opcode switch. The Go compiler does not check this switch for
// exhaustiveness; an op with no case fails ErrUnknownHostFunction.
func (in *Interpreter) hostDispatch(frame *Frame, op HostOp, input []byte) ([]byte, error) {
	if err := in.Gas.Consume(op); err != nil {
		return nil, err
	}
	switch op {
	case OpEmitLog:
		v, err := Decode(input)
		if err != nil {
			return nil, &InvalidRequest{Cause: err}
		}
		if len(v.Fields) != 2 {
			return nil, &InvalidRequest{Cause: ErrInvalidType}
		}
		in.logs = append(in.logs, LogEntry{Level: v.Fields[0].Str, Message: v.Fields[1].Str})
		return Encode(Value{Kind: KindUnit}), nil

	case OpGetActor:
		return Encode(addressValue(KindAddress, frame.Package)), nil

	case OpGetTransactionHash:
		return Encode(Value{Kind: KindHash, LeafBytes: in.txHash[:]}), nil

	case OpGetNonce:
		return Encode(Value{Kind: KindInt, Width: 64, Int: bigFromUint64(in.Track.store.GetNonce())}), nil

	case OpBucketAmount:
		id := BucketID(input)
		b, ok := frame.Owned[id]
		if !ok {
			return nil, ErrBucketNotFound
		}
		return Encode(Value{Kind: KindInt, Width: 256, Signed: true, Int: b.TotalAmount().Raw()}), nil

	case OpBucketIDs:
		id := BucketID(input)
		b, ok := frame.Owned[id]
		if !ok {
			return nil, ErrBucketNotFound
		}
		elems := make([]Value, 0, b.Ids().Len())
		for _, nfid := range b.Ids().Sorted() {
			elems = append(elems, Value{Kind: KindNonFungibleIDKind, LeafBytes: []byte(nfid)})
		}
		return Encode(Value{Kind: KindVec, Elems: elems}), nil

	case OpBucketTake:
		v, err := Decode(input)
		if err != nil || len(v.Fields) != 2 {
			return nil, &InvalidRequest{Cause: ErrInvalidType}
		}
		id := BucketID(v.Fields[0].LeafBytes)
		src, ok := frame.Owned[id]
		if !ok {
			return nil, ErrBucketNotFound
		}
		amount := NewAmountRaw(v.Fields[1].Int)
		out, err := src.Take(amount)
		if err != nil {
			return nil, err
		}
		frame.AdoptBucket(out)
		return Encode(bucketIDValue(out.ID)), nil

	case OpBucketPut:
		v, err := Decode(input)
		if err != nil || len(v.Fields) != 2 {
			return nil, &InvalidRequest{Cause: ErrInvalidType}
		}
		dstID := BucketID(v.Fields[0].LeafBytes)
		srcID := BucketID(v.Fields[1].LeafBytes)
		dst, ok := frame.Owned[dstID]
		if !ok {
			return nil, ErrBucketNotFound
		}
		src, ok := frame.Owned[srcID]
		if !ok {
			return nil, ErrBucketNotFound
		}
		if err := dst.Put(src); err != nil {
			return nil, err
		}
		delete(frame.Owned, srcID)
		return Encode(Value{Kind: KindUnit}), nil

	case OpCreateProofFromBucket:
		v, err := Decode(input)
		if err != nil || len(v.Fields) != 2 {
			return nil, &InvalidRequest{Cause: ErrInvalidType}
		}
		id := BucketID(v.Fields[0].LeafBytes)
		b, ok := frame.Owned[id]
		if !ok {
			return nil, ErrBucketNotFound
		}
		amount := NewAmountRaw(v.Fields[1].Int)
		p, err := NewProofFromAmount(b, b.Resource, amount)
		if err != nil {
			return nil, err
		}
		// Surrender the bucket to Lent: while the proof lives, no other
		// host op can reach it through frame.Owned (Take/Put/Burn all key
		// off that map), and an unreclaimed lend is itself a leak caught
		// by Finalize. ReleaseProof reclaims it on the proof's last drop.
		if err := frame.LendBucket(id); err != nil {
			return nil, err
		}
		frame.HoldProof(p)
		return Encode(proofIDValue(p.ID)), nil

	case OpCreateProofFromVault:
		v, err := Decode(input)
		if err != nil || len(v.Fields) != 2 {
			return nil, &InvalidRequest{Cause: ErrInvalidType}
		}
		id := VaultID(v.Fields[0].LeafBytes)
		vault, ok := in.Vaults[id]
		if !ok {
			return nil, ErrResourceNotFound
		}
		amount := NewAmountRaw(v.Fields[1].Int)
		p, err := NewProofFromAmount(vault, vault.Resource, amount)
		if err != nil {
			return nil, err
		}
		// Vaults have no frame-level Lent equivalent: they are persistent,
		// globally addressed state rather than a frame-owned bucket, so
		// there is nothing to move out of. Vault.Take/TakeNonFungible's own
		// HasLiveProofs guard is what keeps the vault from draining below
		// the proof's asserted amount while this proof is live.
		frame.HoldProof(p)
		return Encode(proofIDValue(p.ID)), nil

	case OpCreateProofFromAuthZone:
		v, err := Decode(input)
		if err != nil || len(v.Fields) != 2 {
			return nil, &InvalidRequest{Cause: ErrInvalidType}
		}
		resource := Address(addressFromBytes(v.Fields[0].LeafBytes))
		p, err := frame.AuthZone.CreateProofFromAmount(resource, NewAmountRaw(v.Fields[1].Int))
		if err != nil {
			return nil, err
		}
		frame.HoldProof(p)
		return Encode(proofIDValue(p.ID)), nil

	case OpProofClone:
		p, ok := frame.Borrowed[ProofID(input)]
		if !ok {
			return nil, ErrBucketRefNotFound
		}
		clone := p.Clone()
		frame.HoldProof(clone)
		return Encode(proofIDValue(clone.ID)), nil

	case OpProofDrop:
		return Encode(Value{Kind: KindUnit}), frame.ReleaseProof(ProofID(input))

	case OpPushAuthZone:
		p, ok := frame.Borrowed[ProofID(input)]
		if !ok {
			return nil, ErrBucketRefNotFound
		}
		delete(frame.Borrowed, p.ID)
		frame.AuthZone.Push(p)
		return Encode(Value{Kind: KindUnit}), nil

	case OpPopAuthZone:
		p, err := frame.AuthZone.Pop()
		if err != nil {
			return nil, err
		}
		frame.HoldProof(p)
		return Encode(proofIDValue(p.ID)), nil

	case OpClearAuthZone:
		frame.AuthZone.Clear()
		return Encode(Value{Kind: KindUnit}), nil

	case OpCreateResource:
		v, err := Decode(input)
		if err != nil {
			return nil, &InvalidRequest{Cause: err}
		}
		def := &ResourceDef{
			Address: in.Track.NewAddress(EntityResource),
			Symbol:  v.Fields[0].Str,
			Name:    v.Fields[1].Str,
			Kind:    ResourceKind(v.Fields[2].Int.Int64()),
		}
		in.Resources.Create(def)
		return Encode(addressValue(KindAddress, def.Address)), nil

	case OpGetResourceInfo:
		def, err := in.Resources.Get(Address(addressFromBytes(input)))
		if err != nil {
			return nil, err
		}
		return Encode(Value{Kind: KindString, Str: def.Symbol}), nil

	case OpMint:
		v, err := Decode(input)
		if err != nil || len(v.Fields) != 2 {
			return nil, &InvalidRequest{Cause: ErrInvalidType}
		}
		addr := Address(addressFromBytes(v.Fields[0].LeafBytes))
		def, err := in.Resources.Get(addr)
		if err != nil {
			return nil, err
		}
		if def.MintAuth.Rule == nil {
			return nil, ErrImmutableResource
		}
		if err := def.MintAuth.Rule.Check([][]*Proof{frame.AuthZone.Proofs()}); err != nil {
			return nil, ErrNotAuthorizedToMint
		}
		amount := NewAmountRaw(v.Fields[1].Int)
		b := NewFungibleBucket(addr, amount)
		frame.AdoptBucket(b)
		return Encode(bucketIDValue(b.ID)), nil

	case OpBurn:
		id := BucketID(input)
		b, ok := frame.Owned[id]
		if !ok {
			return nil, ErrBucketNotFound
		}
		def, err := in.Resources.Get(b.Resource)
		if err != nil {
			return nil, err
		}
		if def.BurnAuth.Rule == nil {
			return nil, ErrImmutableResource
		}
		if err := def.BurnAuth.Rule.Check([][]*Proof{frame.AuthZone.Proofs()}); err != nil {
			return nil, ErrNotAuthorizedToMint
		}
		if b.HasLiveProofs() {
			return nil, ErrNotAuthorized
		}
		delete(frame.Owned, id)
		return Encode(Value{Kind: KindUnit}), nil

	case OpCreateComponent:
		v, err := Decode(input)
		if err != nil || len(v.Fields) < 2 {
			return nil, &InvalidRequest{Cause: ErrInvalidType}
		}
		blueprint := v.Fields[0].Str
		state := v.Fields[1]
		rules := map[string]MethodAuthorization{}
		if pkg, err := in.Packages.Get(frame.Package); err == nil {
			if bp, ok := pkg.Blueprints[blueprint]; ok {
				rules = bp.Methods
			}
		}
		comp := in.Components.Create(in.Track, frame.Package, blueprint, state, rules)
		return Encode(addressValue(KindAddress, comp.Address)), nil

	case OpGetComponentInfo:
		comp, err := in.Components.Get(Address(addressFromBytes(input)))
		if err != nil {
			return nil, err
		}
		return Encode(Value{Kind: KindString, Str: comp.Blueprint}), nil

	case OpGetComponentState:
		comp, err := in.Components.Get(Address(addressFromBytes(input)))
		if err != nil {
			return nil, err
		}
		return Encode(comp.State), nil

	case OpPutComponentState:
		v, err := Decode(input)
		if err != nil || len(v.Fields) != 2 {
			return nil, &InvalidRequest{Cause: ErrInvalidType}
		}
		addr := Address(addressFromBytes(v.Fields[0].LeafBytes))
		newState, err := Traverse(v.Fields[1], func(leaf Value) (Value, error) {
			if leaf.Kind == KindBucketID {
				id := BucketID(leaf.LeafBytes)
				b, ok := frame.Owned[id]
				if !ok {
					return Value{}, ErrBucketNotFound
				}
				delete(frame.Owned, id)
				vaultID := VaultID(uuidLikeFromBucket(id))
				vault := NewVault(vaultID, b.Resource, b.Kind)
				if err := vault.Put(b); err != nil {
					return Value{}, err
				}
				in.Vaults[vaultID] = vault
				return Value{Kind: KindVaultID, LeafBytes: []byte(vaultID)}, nil
			}
			return leaf, nil
		})
		if err != nil {
			return nil, err
		}
		if err := in.Components.PutState(addr, newState); err != nil {
			return nil, err
		}
		return Encode(Value{Kind: KindUnit}), nil

	case OpCallFunction, OpCallMethod:
		// Re-entrant calls issued by a running guest use the same manifest
		// instruction shapes, decoded from the host-call input blob.
		v, err := Decode(input)
		if err != nil {
			return nil, &InvalidRequest{Cause: err}
		}
		return in.hostCall(frame, op, v)

	case OpPublishPackage:
		pkg, err := in.Packages.Publish(in.Track, in.Engine, input, map[string]*Blueprint{})
		if err != nil {
			return nil, err
		}
		return Encode(addressValue(KindAddress, pkg.Address)), nil

	default:
		return nil, ErrUnknownHostFunction
	}
}

// hostCall re-enters the manifest interpreter for a guest-issued
// CallFunction/CallMethod, with the issuing frame as caller.
func (in *Interpreter) hostCall(caller *Frame, op HostOp, v Value) ([]byte, error) {
	if len(v.Fields) < 2 {
		return nil, &InvalidRequest{Cause: ErrInvalidType}
	}
	var out Value
	var err error
	switch op {
	case OpCallFunction:
		instr := Instruction{
			Kind:      InstrCallFunction,
			Package:   Address(addressFromBytes(v.Fields[0].LeafBytes)),
			Blueprint: v.Fields[1].Str,
			Method:    v.Fields[2].Str,
			CallData:  Encode(v.Fields[3]),
		}
		out, err = in.callFunction(caller, instr)
	case OpCallMethod:
		instr := Instruction{
			Kind:      InstrCallMethod,
			Component: Address(addressFromBytes(v.Fields[0].LeafBytes)),
			Method:    v.Fields[1].Str,
			CallData:  Encode(v.Fields[2]),
		}
		out, err = in.callMethod(caller, instr)
	}
	if err != nil {
		return nil, err
	}
	return Encode(out), nil
}

func addressFromBytes(b []byte) Address {
	var a Address
	copy(a[:], b)
	return a
}

func uuidLikeFromBucket(id BucketID) string {
	return "vault-" + string(id)
}

func bigFromUint64(n uint64) *big.Int {
	return new(big.Int).SetUint64(n)
}
