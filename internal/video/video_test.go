package video

import (
	"testing"

	"github.com/retrocore/gba-core/internal/irq"
)

func TestDISPCNTRoundTrip(t *testing.T) {
	p := New(irq.New(), nil)
	p.WriteRegister16(regDISPCNT, 0x0403) // mode 3, BG2 enable
	if p.Mode != 3 {
		t.Fatalf("expected mode 3, got %d", p.Mode)
	}
	if !p.BGEnable[2] {
		t.Fatalf("expected BG2 enabled")
	}
	if got := p.ReadRegister16(regDISPCNT); got != 0x0403 {
		t.Fatalf("expected round-trip 0x0403, got 0x%04X", got)
	}
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	p := New(irq.New(), nil)
	p.WriteRegister16(regDISPCNT, 0x0403)
	p.VRAM[0x100] = 0x77
	p.Palette[4] = 0x22
	p.StepPPU(4) // advance the dot cursor so CurrentDot is non-zero

	snap := p.Snapshot()

	other := New(irq.New(), nil)
	other.Restore(snap)

	if other.Mode != p.Mode || !other.BGEnable[2] {
		t.Fatalf("expected DISPCNT state to survive restore")
	}
	if other.VRAM[0x100] != 0x77 || other.Palette[4] != 0x22 {
		t.Fatalf("expected VRAM/palette contents to survive restore")
	}
	if other.ReadRegister16(regDISPCNT) != p.ReadRegister16(regDISPCNT) {
		t.Fatalf("expected DISPCNT readback to match after restore")
	}
}

func TestVBlankIRQFiresAtLine160(t *testing.T) {
	ic := irq.New()
	ic.WriteIE(uint16(irq.VBlank))
	ic.WriteIME(1)

	p := New(ic, nil)
	p.writeDISPSTAT(1 << 3) // VBlank IRQ enable

	p.StepPPU(VisibleScanlines * DotsPerScanline)
	if ic.Pending() != uint16(irq.VBlank) {
		t.Fatalf("expected VBlank IRQ pending at line 160, got 0x%04X", ic.Pending())
	}
	if !p.VBlankFlag {
		t.Fatalf("expected VBlankFlag set")
	}
}

func TestMode3BitmapPassthrough(t *testing.T) {
	p := New(irq.New(), nil)
	p.writeDISPCNT(0x0403) // mode 3, BG2 on
	// Pixel (0,0): pure red in BGR555 is 0x001F.
	p.VRAM[0] = 0x1F
	p.VRAM[1] = 0x00

	p.renderScanline(0)
	got := p.OutputBuffer[0]
	want := uint32(0xFFF80000) // approx red after 5->8 bit expansion
	if got&0xFF000000 != 0xFF000000 {
		t.Fatalf("expected opaque alpha, got 0x%08X", got)
	}
	if (got>>16)&0xFF < 0xF0 {
		t.Fatalf("expected strong red channel, got 0x%08X (want ~0x%08X)", got, want)
	}
}

func TestTextBGRendersOpaqueTile(t *testing.T) {
	p := New(irq.New(), nil)
	p.writeDISPCNT(0x0100) // mode 0, BG0 on
	p.writeBGCNT(0, 0x0000)

	// Palette index 1, bank 0: set palette entry 1 to green.
	p.Palette[2] = 0xE0
	p.Palette[3] = 0x03

	// Tile map entry 0 -> tile number 0.
	p.VRAM[0x0000] = 0x00
	p.VRAM[0x0001] = 0x00

	// Tile 0, row 0: all pixels = color index 1 (4bpp, low nibble).
	charBase := uint32(0)
	for b := 0; b < 4; b++ {
		p.VRAM[charBase+uint32(b)] = 0x11
	}

	p.renderScanline(0)
	got := p.OutputBuffer[0]
	if got&0xFF000000 != 0xFF000000 {
		t.Fatalf("expected opaque pixel from tile, got 0x%08X", got)
	}
}

func TestWindowMaskAllVisibleWhenNoWindowEnabled(t *testing.T) {
	p := New(irq.New(), nil)
	var objWin [ScreenWidth]bool
	mask := p.computeWindowMask(0, objWin)
	if mask[0] != 0x3F {
		t.Fatalf("expected full mask with no windows enabled, got 0x%02X", mask[0])
	}
}

func TestWindowRestrictsLayers(t *testing.T) {
	p := New(irq.New(), nil)
	p.WinEnable[0] = true
	p.Win[0] = Window{Left: 0, Right: 10, Top: 0, Bottom: 10, Enable: 0x01} // BG0 only
	p.WinOutEnable = 0x00

	var objWin [ScreenWidth]bool
	mask := p.computeWindowMask(5, objWin)
	if mask[5] != 0x01 {
		t.Fatalf("expected BG0-only mask inside window, got 0x%02X", mask[5])
	}
	if mask[50] != 0x00 {
		t.Fatalf("expected nothing visible outside window, got 0x%02X", mask[50])
	}
}
