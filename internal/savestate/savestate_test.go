package savestate

import (
	"path/filepath"
	"testing"

	"github.com/retrocore/gba-core/internal/mmu"
)

const headerSize = 0xC0

func makeROM(tag string) []uint8 {
	rom := make([]uint8, headerSize+0x100)
	copy(rom[0xA0:0xAC], "TESTGAME")
	copy(rom[0xAC:0xB0], "ABCE")
	copy(rom[headerSize:], tag)
	return rom
}

func newTestMMU(t *testing.T) *mmu.MMU {
	t.Helper()
	m := mmu.New(32768, nil)
	if err := m.Reset(makeROM("SRAM_V"), nil, nil); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	return m
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	m := newTestMMU(t)
	m.Write8(0x0200_1234, 0xAB)
	m.Write16(0x0400_0000, 0x0403) // DISPCNT: mode 3, BG2 enable
	m.Write8(0x0E00_0010, 0x5A)    // SRAM byte

	data, err := Encode(m)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	loaded := newTestMMU(t)
	if err := Decode(loaded, data); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if got := loaded.Read8(0x0200_1234); got != 0xAB {
		t.Fatalf("expected WRAM byte to survive round trip, got 0x%02X", got)
	}
	if got := loaded.Read16(0x0400_0000); got != 0x0403 {
		t.Fatalf("expected DISPCNT to survive round trip, got 0x%04X", got)
	}
	if got := loaded.Read8(0x0E00_0010); got != 0x5A {
		t.Fatalf("expected SRAM byte to survive round trip, got 0x%02X", got)
	}
}

func TestDecodeRejectsMismatchedVersion(t *testing.T) {
	m := newTestMMU(t)
	data, err := Encode(m)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	// Corrupt the version by re-encoding with a bumped version field via
	// a second blob built by hand, exercising the same decode path.
	blob := Blob{Version: CurrentVersion + 1, State: m.Snapshot()}
	var buf []byte
	buf, err = encodeBlob(blob)
	if err != nil {
		t.Fatalf("encodeBlob failed: %v", err)
	}

	if err := Decode(m, buf); err == nil {
		t.Fatalf("expected version mismatch to be rejected")
	}
	if err := Decode(m, data); err != nil {
		t.Fatalf("expected matching-version data to decode cleanly: %v", err)
	}
}

func TestSaveLoadFile(t *testing.T) {
	m := newTestMMU(t)
	m.Write8(0x0300_0010, 0x99)

	path := filepath.Join(t.TempDir(), "slot1.sav")
	if err := SaveToFile(m, path); err != nil {
		t.Fatalf("SaveToFile failed: %v", err)
	}

	loaded := newTestMMU(t)
	if err := LoadFromFile(loaded, path); err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	if got := loaded.Read8(0x0300_0010); got != 0x99 {
		t.Fatalf("expected IWRAM byte to survive file round trip, got 0x%02X", got)
	}
}
