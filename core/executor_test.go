package core_test

import (
	"testing"

	"resonance-engine/core"
)

func alwaysVerify(unsignedBody, pub, sig []byte) bool { return true }
func neverVerify(unsignedBody, pub, sig []byte) bool   { return false }

func newTestExecutor(store core.SubstateStore, verify core.VerifyFunc) *core.TransactionExecutor {
	return core.NewTransactionExecutor(
		store,
		core.NewPackageRegistry(),
		core.NewComponentRegistry(),
		core.NewResourceRegistry(),
		&stubWasmEngine{},
		1_000_000,
		verify,
	)
}

func signedTx(instrs []core.Instruction, nonce uint64) *core.SignedTransaction {
	body := []byte("unsigned-body")
	return &core.SignedTransaction{
		Instructions:  instrs,
		UnsignedBody:  body,
		SignerPubKeys: [][]byte{[]byte("pub")},
		Signatures:    [][]byte{[]byte("sig")},
		TxHash:        core.HashBytes(body),
		EpochMin:      0,
		EpochMax:      100,
		Nonce:         nonce,
	}
}

func TestExecutorRejectsBadTxHash(t *testing.T) {
	store := core.NewInMemoryStore()
	ex := newTestExecutor(store, alwaysVerify)

	tx := signedTx(nil, 0)
	tx.TxHash = core.HashBytes([]byte("mismatched"))

	receipt := ex.Execute(tx)
	if receipt.Err == nil {
		t.Fatal("expected a validation error for a mismatched tx hash")
	}
	if store.GetNonce() != 0 {
		t.Fatal("a validation failure must not advance the nonce")
	}
}

func TestExecutorRejectsBadSignature(t *testing.T) {
	store := core.NewInMemoryStore()
	ex := newTestExecutor(store, neverVerify)

	receipt := ex.Execute(signedTx(nil, 0))
	if receipt.Err == nil {
		t.Fatal("expected a validation error when Verify rejects every signature")
	}
}

func TestExecutorRejectsStaleEpoch(t *testing.T) {
	store := core.NewInMemoryStore()
	ex := newTestExecutor(store, alwaysVerify)
	ex.CurrentEpoch = 500

	receipt := ex.Execute(signedTx(nil, 0))
	if receipt.Err == nil {
		t.Fatal("expected a validation error for a transaction outside the epoch window")
	}
}

func TestExecutorRejectsReplayedNonce(t *testing.T) {
	store := core.NewInMemoryStore()
	ex := newTestExecutor(store, alwaysVerify)

	if receipt := ex.Execute(signedTx(nil, 0)); receipt.Err != nil {
		t.Fatalf("first transaction at nonce 0 should validate: %v", receipt.Err)
	}
	replayed := ex.Execute(signedTx(nil, 0))
	if replayed.Err == nil {
		t.Fatal("expected a validation error when replaying an already-used nonce")
	}
}

func TestExecutorSuccessfulRunCommitsAndAdvancesNonce(t *testing.T) {
	store := core.NewInMemoryStore()
	ex := newTestExecutor(store, alwaysVerify)

	receipt := ex.Execute(signedTx([]core.Instruction{
		{Kind: core.InstrClearAuthZone},
	}, 0))
	if receipt.Err != nil {
		t.Fatalf("expected a clean run, got %v", receipt.Err)
	}
	if store.GetNonce() != 1 {
		t.Fatalf("nonce = %d, want 1 after a committed transaction", store.GetNonce())
	}
}

func TestExecutorFailedRunDiscardsTrackAndLeavesNonceUnchanged(t *testing.T) {
	store := core.NewInMemoryStore()
	ex := newTestExecutor(store, alwaysVerify)

	resource := testResourceAddress()
	receipt := ex.Execute(signedTx([]core.Instruction{
		{Kind: core.InstrTakeFromWorktop, Resource: resource, BucketRef: "b1"},
	}, 0))
	if receipt.Err == nil {
		t.Fatal("taking from an empty worktop should fail the transaction")
	}
	if store.GetNonce() != 0 {
		t.Fatal("a failed execution must discard the track and leave the nonce untouched")
	}
}

func TestExecutorFailedRunDiscardsRegistries(t *testing.T) {
	store := core.NewInMemoryStore()
	ex := newTestExecutor(store, alwaysVerify)

	body := []byte("unsigned-body")
	txHash := core.HashBytes(body)
	// The transaction's first address allocation (counter 1) is the
	// package PublishPackage will mint, deterministically derivable
	// without needing the interpreter's (unreturned, since the run fails)
	// output value.
	pkgAddr := core.NewAddress(core.EntityPackage, txHash, 1)

	resource := testResourceAddress()
	tx := signedTx([]core.Instruction{
		{Kind: core.InstrPublishPackage, Code: []byte("wasm"), Blueprints: map[string]*core.Blueprint{}},
		{Kind: core.InstrTakeFromWorktop, Resource: resource, BucketRef: "b1"},
	}, 0)
	tx.UnsignedBody = body
	tx.TxHash = txHash

	receipt := ex.Execute(tx)
	if receipt.Err == nil {
		t.Fatal("the second instruction (take from an empty worktop) should fail the transaction")
	}
	if _, err := ex.Packages.Get(pkgAddr); err == nil {
		t.Fatal("a package published by a transaction that later fails must not survive Discard")
	}
}
