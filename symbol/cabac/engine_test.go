package cabac

import (
	"testing"

	"github.com/hawk90/bitvue-sub000/bits"
)

func TestStateTransitionMPSAdvances(t *testing.T) {
	ctx := &ContextModel{PStateIdx: 0, ValMPS: 1}
	ctx.StateTransition(1) // binVal == ValMPS
	if ctx.PStateIdx != stateTransTab[0].transIdxMPS {
		t.Errorf("PStateIdx = %d, want %d", ctx.PStateIdx, stateTransTab[0].transIdxMPS)
	}
	if ctx.ValMPS != 1 {
		t.Errorf("ValMPS flipped unexpectedly")
	}
}

func TestStateTransitionLPSAtZeroFlipsMPS(t *testing.T) {
	ctx := &ContextModel{PStateIdx: 0, ValMPS: 1}
	ctx.StateTransition(0) // binVal != ValMPS, at pStateIdx 0
	if ctx.ValMPS != 0 {
		t.Errorf("ValMPS = %d, want 0 (flipped)", ctx.ValMPS)
	}
	if ctx.PStateIdx != stateTransTab[0].transIdxLPS {
		t.Errorf("PStateIdx = %d, want %d", ctx.PStateIdx, stateTransTab[0].transIdxLPS)
	}
}

func TestDecodeBypassAndTerminate(t *testing.T) {
	// codIOffset initializes from the next 9 bits of the reader. Craft a
	// small stream: 9 bits for init, then enough bits for subsequent bypass
	// decisions and a terminating bit.
	buf := []byte{0xFF, 0xFF, 0xFF, 0xFF}
	r := bits.NewReader(buf)
	e, err := NewEngine(r)
	if err != nil {
		t.Fatal(err)
	}
	if e.codIRange != 510 {
		t.Fatalf("codIRange = %d, want 510", e.codIRange)
	}
	if _, err := e.DecodeBypass(); err != nil {
		t.Fatal(err)
	}
	if _, err := e.DecodeTerminate(); err != nil {
		t.Fatal(err)
	}
}
