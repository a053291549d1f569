package irq

import "testing"

func TestWriteOneToClear(t *testing.T) {
	c := New()
	c.WriteIE(uint16(VBlank))
	c.WriteIME(1)
	c.Raise(VBlank)

	if c.Pending() != uint16(VBlank) {
		t.Fatalf("expected VBlank pending, got 0x%04X", c.Pending())
	}

	c.AckIF(uint16(VBlank))
	if c.Pending() != 0 {
		t.Fatalf("expected no pending after ack, got 0x%04X", c.Pending())
	}
	if c.IF != 0 {
		t.Fatalf("expected IF cleared, got 0x%04X", c.IF)
	}
}

func TestImeGatesPending(t *testing.T) {
	c := New()
	c.WriteIE(uint16(Timer0))
	c.Raise(Timer0)

	if c.Pending() != 0 {
		t.Fatalf("expected no pending while IME clear, got 0x%04X", c.Pending())
	}
	c.WriteIME(1)
	if c.Pending() != uint16(Timer0) {
		t.Fatalf("expected Timer0 pending once IME set, got 0x%04X", c.Pending())
	}
}

func TestDisabledSourceNeverPends(t *testing.T) {
	c := New()
	c.WriteIME(1)
	c.Raise(DMA0)
	if c.Pending() != 0 {
		t.Fatalf("expected DMA0 masked out by IE, got 0x%04X", c.Pending())
	}
}
