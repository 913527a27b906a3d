package core

// Transaction Executor (C8): validates a signed transaction, drives the
// manifest interpreter on a fresh track, and produces a receipt. Grounded
// on executor.rs's execute() sequence — validate, open track, run, commit
// or discard, never leaving a partial effect behind.

import (
	"time"

	"github.com/sirupsen/logrus"
)

// VerifyFunc checks a signature over the unsigned transaction body;
// signature schemes and key management are external collaborators (spec
// non-goal), so the executor only ever calls an injected implementation.
type VerifyFunc func(unsignedBody []byte, signerPubKey []byte, signature []byte) bool

// SignedTransaction is the wire structure the executor consumes.
type SignedTransaction struct {
	Instructions  []Instruction
	UnsignedBody  []byte
	SignerPubKeys [][]byte
	Signatures    [][]byte
	TxHash        Hash
	EpochMin      uint64
	EpochMax      uint64
	Nonce         uint64
}

// TransactionExecutor drives one transaction at a time against a given
// substate store; the engine's concurrency model forbids concurrent
// execution against the same store.
type TransactionExecutor struct {
	Store      SubstateStore
	Packages   *PackageRegistry
	Components *ComponentRegistry
	Resources  *ResourceRegistry
	Engine     WasmEngine
	GasLimit   uint64
	Verify     VerifyFunc
	CurrentEpoch uint64
}

// NewTransactionExecutor wires an executor against shared registries and a
// store.
func NewTransactionExecutor(store SubstateStore, pkgs *PackageRegistry, comps *ComponentRegistry, res *ResourceRegistry, engine WasmEngine, gasLimit uint64, verify VerifyFunc) *TransactionExecutor {
	return &TransactionExecutor{
		Store:      store,
		Packages:   pkgs,
		Components: comps,
		Resources:  res,
		Engine:     engine,
		GasLimit:   gasLimit,
		Verify:     verify,
	}
}

// Execute runs signed end to end, returning a Receipt. Validation failures
// produce a receipt with no state effect and do not advance the nonce;
// any later failure discards the track; success commits it and bumps the
// nonce.
func (ex *TransactionExecutor) Execute(signed *SignedTransaction) *Receipt {
	start := time.Now()

	if err := ex.validate(signed); err != nil {
		return &Receipt{Err: &TransactionValidationError{Cause: err}, ElapsedNS: time.Since(start).Nanoseconds()}
	}

	track := NewTrack(ex.Store, signed.TxHash)
	gas := NewGasMeter(ex.GasLimit)
	interp := NewInterpreter(track, ex.Packages, ex.Components, ex.Resources, ex.Engine, gas, signed.TxHash)

	outputs, err := interp.Run(signed.Instructions)
	if err != nil {
		track.Discard()
		ex.Packages.Discard()
		ex.Components.Discard()
		ex.Resources.Discard()
		logrus.WithError(err).Debug("transaction execution failed, track and registries discarded")
		return &Receipt{Err: err, ElapsedNS: time.Since(start).Nanoseconds()}
	}

	commit := track.Commit()
	ex.Packages.Commit()
	ex.Components.Commit()
	ex.Resources.Commit()
	return &Receipt{
		Outputs:   outputs,
		Logs:      interp.logs,
		NewAddrs:  track.NewAddresses(),
		Commit:    commit,
		ElapsedNS: time.Since(start).Nanoseconds(),
	}
}

// validate runs the pre-execution checks (§4.8 step 1): signatures, hash,
// epoch window, nonce uniqueness. A validation failure never touches the
// track and never advances the nonce.
func (ex *TransactionExecutor) validate(signed *SignedTransaction) error {
	if HashBytes(signed.UnsignedBody) != signed.TxHash {
		return ErrBadSignature
	}
	if len(signed.SignerPubKeys) != len(signed.Signatures) {
		return ErrMalformedManifest
	}
	for i, pub := range signed.SignerPubKeys {
		if !ex.Verify(signed.UnsignedBody, pub, signed.Signatures[i]) {
			return ErrBadSignature
		}
	}
	if ex.CurrentEpoch < signed.EpochMin || ex.CurrentEpoch > signed.EpochMax {
		return ErrStaleEpoch
	}
	if signed.Nonce != ex.Store.GetNonce() {
		return ErrReplayedNonce
	}
	return nil
}
