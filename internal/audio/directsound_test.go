package audio

import "testing"

func TestDirectSoundPushPop(t *testing.T) {
	var d DirectSound
	d.Push([]byte{0x10, 0x20, 0x30, 0x40})

	d.pop()
	if d.current != 0x10 {
		t.Fatalf("expected first popped byte 0x10, got %#x", d.current)
	}
	d.pop()
	if d.current != 0x20 {
		t.Fatalf("expected second popped byte 0x20, got %#x", d.current)
	}
	if d.len != 2 {
		t.Fatalf("expected 2 bytes remaining, got %d", d.len)
	}
}

// A FIFO at or below the refill threshold must request a DMA refill.
func TestDirectSoundNeedsRefill(t *testing.T) {
	var d DirectSound
	d.Push([]byte{1, 2, 3, 4, 5, 6, 7, 8})
	if d.needsRefill() {
		t.Fatalf("expected an 8-byte FIFO not to need refill yet")
	}
	for i := 0; i < 4; i++ {
		d.pop()
	}
	if !d.needsRefill() {
		t.Fatalf("expected a FIFO down to 4 bytes to need refill")
	}
}

func TestDirectSoundMixVolumeAndGating(t *testing.T) {
	var d DirectSound
	d.current = 10
	d.LeftEnable = true
	d.RightEnable = false
	d.FullVolume = true

	l, r := d.mix()
	if l != 10*256 {
		t.Fatalf("expected full-volume left sample of %d, got %d", 10*256, l)
	}
	if r != 0 {
		t.Fatalf("expected right channel gated off, got %d", r)
	}

	d.FullVolume = false
	l, _ = d.mix()
	if l != (10*256)/2 {
		t.Fatalf("expected half-volume left sample, got %d", l)
	}
}

// Pushing beyond the FIFO's capacity must drop the overflow rather
// than overwrite existing queued bytes.
func TestDirectSoundPushOverflowDropped(t *testing.T) {
	var d DirectSound
	full := make([]byte, fifoDepth+8)
	for i := range full {
		full[i] = byte(i)
	}
	d.Push(full)
	if d.len != fifoDepth {
		t.Fatalf("expected FIFO to cap at %d bytes, got %d", fifoDepth, d.len)
	}
	if d.buf[0] != 0 {
		t.Fatalf("expected first queued byte to survive the overflow, got %d", d.buf[0])
	}
}
