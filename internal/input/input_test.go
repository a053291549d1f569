package input

import (
	"testing"

	"github.com/retrocore/gba-core/internal/irq"
)

func TestKeyInputActiveLow(t *testing.T) {
	k := New(irq.New())
	if got := k.ReadKeyInput(); got != 0x3FF {
		t.Fatalf("expected all-released 0x3FF, got 0x%04X", got)
	}
	k.SetPressed(ButtonA, true)
	if got := k.ReadKeyInput(); got != 0x3FF&^uint16(ButtonA) {
		t.Fatalf("expected A bit cleared, got 0x%04X", got)
	}
}

func TestKeypadIRQOrCondition(t *testing.T) {
	ic := irq.New()
	ic.WriteIE(uint16(irq.Keypad))
	ic.WriteIME(1)

	k := New(ic)
	k.WriteKeyCnt(uint16(ButtonA) | uint16(ButtonB) | (1 << 14)) // OR, IRQ enabled
	k.SetPressed(ButtonB, true)

	if ic.Pending() != uint16(irq.Keypad) {
		t.Fatalf("expected keypad IRQ pending on OR match, got 0x%04X", ic.Pending())
	}
}

func TestKeypadIRQAndConditionRequiresAll(t *testing.T) {
	ic := irq.New()
	ic.WriteIE(uint16(irq.Keypad))
	ic.WriteIME(1)

	k := New(ic)
	k.WriteKeyCnt(uint16(ButtonA) | uint16(ButtonB) | (1 << 14) | (1 << 15)) // AND
	k.SetPressed(ButtonA, true)

	if ic.Pending() != 0 {
		t.Fatalf("expected no IRQ with only one of two AND-required keys held")
	}

	k.SetPressed(ButtonB, true)
	if ic.Pending() != uint16(irq.Keypad) {
		t.Fatalf("expected keypad IRQ once both AND-required keys are held")
	}
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	k := New(irq.New())
	k.SetPressed(ButtonStart, true)
	k.SetPressed(ButtonL, true)
	k.WriteKeyCnt(uint16(ButtonStart) | (1 << 14) | (1 << 15))

	snap := k.Snapshot()

	other := New(irq.New())
	other.Restore(snap)

	if got := other.ReadKeyInput(); got != k.ReadKeyInput() {
		t.Fatalf("KEYINPUT mismatch after restore: got 0x%04X, want 0x%04X", got, k.ReadKeyInput())
	}
	if got := other.ReadKeyCnt(); got != k.ReadKeyCnt() {
		t.Fatalf("KEYCNT mismatch after restore: got 0x%04X, want 0x%04X", got, k.ReadKeyCnt())
	}
}
