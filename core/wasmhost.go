package core

// The WASM host surface (C5): module validation/instantiation via
// wasmer-go, and the host-call dispatch loop. Grounded on the teacher's
// HeavyVM.Execute (virtual_machine.go) for the wasmer bootstrap shape
// (NewEngine/NewStore/NewModule/ImportObject/NewInstance), and on
// wasmer.rs's send_value/read_value pair for the length-prefixed blob
// convention values use to cross the linear-memory boundary.

import (
	"encoding/binary"

	"github.com/sirupsen/logrus"
	"github.com/wasmerio/wasmer-go/wasmer"
)

// HostDispatchFunc handles one decoded host-call invocation and produces
// an encoded result; it is supplied by the frame driving the instance, not
// by the WASM engine itself.
type HostDispatchFunc func(op HostOp, input []byte) ([]byte, error)

// WasmEngine is the capability surface the engine treats the WASM runtime
// as: validate, instrument, instantiate. Instrumentation (metering,
// injected bounds checks) is the WASM engine's own concern and is out of
// scope here — Instrument is a passthrough.
type WasmEngine interface {
	Validate(code []byte) error
	Instrument(code []byte) ([]byte, error)
	Instantiate(code []byte, dispatch HostDispatchFunc) (*WasmInstance, error)
}

// WasmerEngine implements WasmEngine over wasmer-go.
type WasmerEngine struct {
	engine *wasmer.Engine
}

// NewWasmerEngine returns a WasmEngine backed by a fresh wasmer engine
// instance, shared across every module it validates/instantiates.
func NewWasmerEngine() *WasmerEngine {
	return &WasmerEngine{engine: wasmer.NewEngine()}
}

// Validate parses code as a wasmer module without instantiating it,
// surfacing any parse/validation failure from the runtime.
func (e *WasmerEngine) Validate(code []byte) error {
	store := wasmer.NewStore(e.engine)
	_, err := wasmer.NewModule(store, code)
	return err
}

// Instrument is a passthrough: gas metering is charged by the host-call
// dispatcher per invocation (gas.go), not by bytecode instrumentation, so
// there is nothing to rewrite here.
func (e *WasmerEngine) Instrument(code []byte) ([]byte, error) {
	return code, nil
}

// WasmInstance wraps one instantiated module and its linear memory.
type WasmInstance struct {
	instance *wasmer.Instance
	memory   *wasmer.Memory
	alloc    *wasmer.Function
}

// Instantiate builds a wasmer instance over code, wiring dispatch as the
// "env" host-call import. The guest is expected to export "memory" and
// "scrypto_alloc".
func (e *WasmerEngine) Instantiate(code []byte, dispatch HostDispatchFunc) (*WasmInstance, error) {
	store := wasmer.NewStore(e.engine)
	module, err := wasmer.NewModule(store, code)
	if err != nil {
		return nil, err
	}

	importObject := wasmer.NewImportObject()
	wi := &WasmInstance{}

	hostCall := wasmer.NewFunction(
		store,
		wasmer.NewFunctionType(wasmer.NewValueTypes(wasmer.I32, wasmer.I32), wasmer.NewValueTypes(wasmer.I32)),
		func(args []wasmer.Value) ([]wasmer.Value, error) {
			opRaw := args[0].I32()
			ptr := args[1].I32()

			input, err := readBlob(wi.memory, ptr)
			if err != nil {
				return nil, &InvalidRequest{Cause: err}
			}
			out, err := dispatch(HostOp(opRaw), input)
			if err != nil {
				logrus.WithError(err).WithField("op", opRaw).Debug("host call failed")
				return nil, err
			}
			outPtr, err := writeBlob(wi.memory, wi.alloc, out)
			if err != nil {
				return nil, err
			}
			return []wasmer.Value{wasmer.NewI32(outPtr)}, nil
		},
	)
	importObject.Register("env", map[string]wasmer.IntoExtern{
		"host_call": hostCall,
	})

	instance, err := wasmer.NewInstance(module, importObject)
	if err != nil {
		return nil, err
	}
	mem, err := instance.Exports.GetMemory("memory")
	if err != nil {
		return nil, &InvalidRequest{Cause: err}
	}
	alloc, err := instance.Exports.GetFunction("scrypto_alloc")
	if err != nil {
		return nil, &InvalidRequest{Cause: err}
	}
	wi.instance = instance
	wi.memory = mem
	wi.alloc = alloc
	return wi, nil
}

// InvokeExport calls the named export, passing arg across the linear
// memory boundary using the length-prefix convention and decoding the
// guest's returned pointer the same way.
func (wi *WasmInstance) InvokeExport(name string, arg []byte) ([]byte, error) {
	fn, err := wi.instance.Exports.GetFunction(name)
	if err != nil {
		return nil, ErrBlueprintNotFound
	}
	ptr, err := writeBlob(wi.memory, wi.alloc, arg)
	if err != nil {
		return nil, err
	}
	ret, err := fn(ptr)
	if err != nil {
		return nil, &InvokeErrorDetail{Cause: err}
	}
	retPtr, ok := ret.(int32)
	if !ok {
		return nil, ErrNoValidBlueprintReturn
	}
	return readBlob(wi.memory, retPtr)
}

// writeBlob calls the guest allocator for len(data)+4 bytes, writes the
// 4-byte little-endian length prefix and the payload, and returns the
// pointer to the payload (ptr, not ptr-4) — matching the convention where
// the guest reads the length at ptr-4.
func writeBlob(mem *wasmer.Memory, alloc *wasmer.Function, data []byte) (int32, error) {
	raw, err := alloc(int32(len(data) + 4))
	if err != nil {
		return 0, ErrUnableToAllocateMemory
	}
	base, ok := raw.(int32)
	if !ok {
		return 0, ErrUnableToAllocateMemory
	}
	buf := mem.Data()
	if int(base)+4+len(data) > len(buf) || base < 4 {
		return 0, ErrMemoryAccess
	}
	binary.LittleEndian.PutUint32(buf[base:base+4], uint32(len(data)))
	copy(buf[base+4:base+4+int32(len(data))], data)
	return base + 4, nil
}

// readBlob reads the 4-byte little-endian length at ptr-4 followed by the
// payload.
func readBlob(mem *wasmer.Memory, ptr int32) ([]byte, error) {
	buf := mem.Data()
	if ptr < 4 || int(ptr) > len(buf) {
		return nil, ErrMemoryAccess
	}
	length := binary.LittleEndian.Uint32(buf[ptr-4 : ptr])
	end := int(ptr) + int(length)
	if end > len(buf) || end < int(ptr) {
		return nil, ErrMemoryAccess
	}
	out := make([]byte, length)
	copy(out, buf[ptr:end])
	return out, nil
}

// InvokeErrorDetail wraps a raw wasmer invocation failure so callers can
// distinguish it from a host-call dispatch error while still exposing the
// guest-reported trap/message via Unwrap.
type InvokeErrorDetail struct{ Cause error }

func (e *InvokeErrorDetail) Error() string { return "wasm invoke: " + e.Cause.Error() }
func (e *InvokeErrorDetail) Unwrap() error { return e.Cause }
