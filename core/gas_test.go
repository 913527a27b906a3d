package core_test

import (
	"testing"

	"resonance-engine/core"
)

func TestGasMeterConsumeAndRemaining(t *testing.T) {
	g := core.NewGasMeter(10_000)
	if err := g.Consume(core.OpGetActor); err != nil {
		t.Fatalf("Consume: %v", err)
	}
	if g.Used() != core.GasCost(core.OpGetActor) {
		t.Fatalf("Used() = %d, want %d", g.Used(), core.GasCost(core.OpGetActor))
	}
	if g.Remaining() != 10_000-core.GasCost(core.OpGetActor) {
		t.Fatalf("Remaining() = %d, want %d", g.Remaining(), 10_000-core.GasCost(core.OpGetActor))
	}
}

func TestGasMeterOutOfGas(t *testing.T) {
	g := core.NewGasMeter(100)
	if err := g.Consume(core.OpPublishPackage); err != core.ErrOutOfGas {
		t.Fatalf("got %v, want ErrOutOfGas", err)
	}
	if g.Remaining() != 0 {
		t.Fatalf("Remaining() = %d, want 0 after exhaustion", g.Remaining())
	}
}

func TestGasCostUnknownOpFallsBackToDefault(t *testing.T) {
	if got := core.GasCost(core.HostOp(9999)); got != core.DefaultGasCost {
		t.Fatalf("GasCost(unknown) = %d, want DefaultGasCost", got)
	}
}
