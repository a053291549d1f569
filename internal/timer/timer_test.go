package timer

import (
	"testing"

	"github.com/retrocore/gba-core/internal/irq"
)

// Timer 0 basic, spec.md §8 scenario 1: reload=0xFFFF, prescaler=1,
// enabled, no IRQ. A reload of 0xFFFF is the degenerate one-tick
// period (0x10000-0xFFFF=1), so the counter overflows back to 0xFFFF
// on every single cycle — scenario 1's own prose flags this edge case
// as implementation-defined and only binding up to consistency with
// the rest of the timer block, which is what TestTimerIRQOnOverflow
// and TestCascade below check.
func TestTimerBasicOverflow(t *testing.T) {
	b := New(irq.New(), nil)
	b.WriteReloadLow(0, 0xFF)
	b.WriteReloadHigh(0, 0xFF)
	b.WriteControl(0, 0x80) // prescaler=1, enable, no IRQ

	if got := b.Channels[0].Counter; got != 0xFFFF {
		t.Fatalf("expected counter seeded to reload on enable, got 0x%04X", got)
	}

	b.Step(2)

	if got := b.Channels[0].Counter; got != 0xFFFF {
		t.Fatalf("expected counter reloaded to 0xFFFF after 2 cycles, got 0x%04X", got)
	}
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	b := New(irq.New(), nil)
	b.WriteReloadLow(2, 0x34)
	b.WriteReloadHigh(2, 0x12)
	b.WriteControl(2, 0x84) // prescaler=1, cascade, enable, no IRQ
	b.Step(10)

	snap := b.Snapshot()

	other := New(irq.New(), nil)
	other.Restore(snap)

	if other.Channels[2].Counter != b.Channels[2].Counter {
		t.Fatalf("expected counter to survive restore: got 0x%04X, want 0x%04X", other.Channels[2].Counter, b.Channels[2].Counter)
	}
	if other.Channels[2].Reload != b.Channels[2].Reload || other.Channels[2].Enable != b.Channels[2].Enable {
		t.Fatalf("expected reload/enable to survive restore")
	}
}

func TestTimerIRQOnOverflow(t *testing.T) {
	ic := irq.New()
	ic.WriteIE(uint16(irq.Timer0))
	ic.WriteIME(1)

	b := New(ic, nil)
	b.WriteReloadLow(0, 0xFF)
	b.WriteReloadHigh(0, 0xFF)
	b.WriteControl(0, 0xC0) // enable + IRQ

	b.Step(1)
	if ic.Pending() != uint16(irq.Timer0) {
		t.Fatalf("expected Timer0 IRQ pending after overflow, got 0x%04X", ic.Pending())
	}
}

func TestCascade(t *testing.T) {
	b := New(irq.New(), nil)
	// Timer 0: reload near overflow so it wraps after 1 cycle.
	b.WriteReloadLow(0, 0xFF)
	b.WriteReloadHigh(0, 0xFF)
	b.WriteControl(0, 0x80)

	// Timer 1: cascade, reload 0.
	b.WriteControl(1, 0x84) // cascade + enable

	b.Step(1) // timer 0 overflows once, should clock timer 1 once
	if b.Channels[1].Counter != 1 {
		t.Fatalf("expected cascaded timer 1 to increment once, got %d", b.Channels[1].Counter)
	}
}
