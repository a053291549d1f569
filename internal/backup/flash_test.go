package backup

import "testing"

func unlock(f *Flash) {
	f.Write8(cmdOffset0, 0xAA)
	f.Write8(cmdOffset1, 0x55)
}

func TestFlashWriteSingleByte(t *testing.T) {
	f := NewFlash(false, nil)
	unlock(f)
	f.Write8(cmdOffset0, 0xA0) // write-byte command
	f.Write8(0x1234, 0x77)

	if got := f.Read8(0x1234); got != 0x77 {
		t.Fatalf("expected 0x77, got 0x%02X", got)
	}
}

func TestFlashIDMode(t *testing.T) {
	f := NewFlash(true, nil)
	unlock(f)
	f.Write8(cmdOffset0, 0x90) // enter ID mode

	if got := f.Read8(0x0000); got != macronixManufacturerID {
		t.Fatalf("expected manufacturer ID 0x%02X, got 0x%02X", macronixManufacturerID, got)
	}
	if got := f.Read8(0x0001); got != macronixDeviceID {
		t.Fatalf("expected device ID 0x%02X, got 0x%02X", macronixDeviceID, got)
	}

	unlock(f)
	f.Write8(cmdOffset0, 0xF0) // exit ID mode
	if f.grabIDs {
		t.Fatalf("expected ID mode cleared")
	}
}

func TestFlashEraseChip(t *testing.T) {
	f := NewFlash(false, nil)
	unlock(f)
	f.Write8(cmdOffset0, 0xA0)
	f.Write8(0x0000, 0x55)

	unlock(f)
	f.Write8(cmdOffset0, 0x80)
	unlock(f)
	f.Write8(cmdOffset0, 0x10)

	if got := f.Read8(0x0000); got != 0xFF {
		t.Fatalf("expected erased byte 0xFF, got 0x%02X", got)
	}
}

func TestFlashEraseSector(t *testing.T) {
	f := NewFlash(false, nil)
	unlock(f)
	f.Write8(cmdOffset0, 0xA0)
	f.Write8(0x3000, 0x11)

	unlock(f)
	f.Write8(cmdOffset0, 0x80)
	unlock(f)
	f.Write8(0x3000, 0x30) // sector-address write of 0x30 triggers sector erase

	if got := f.Read8(0x3000); got != 0xFF {
		t.Fatalf("expected sector-erased byte 0xFF, got 0x%02X", got)
	}
}

func TestFlashBankSwitch(t *testing.T) {
	f := NewFlash(true, nil)
	unlock(f)
	f.Write8(cmdOffset0, 0xA0)
	f.Write8(0x0010, 0xAB) // bank 0 write

	unlock(f)
	f.Write8(cmdOffset0, 0xB0) // bank switch command
	f.Write8(sec0Offset, 1)    // select bank 1

	unlock(f)
	f.Write8(cmdOffset0, 0xA0)
	f.Write8(0x0010, 0xCD) // bank 1 write

	if got := f.Read8(0x0010); got != 0xCD {
		t.Fatalf("expected bank 1 byte 0xCD, got 0x%02X", got)
	}

	unlock(f)
	f.Write8(cmdOffset0, 0xB0)
	f.Write8(sec0Offset, 0)
	if got := f.Read8(0x0010); got != 0xAB {
		t.Fatalf("expected bank 0 byte 0xAB after switching back, got 0x%02X", got)
	}
}

func TestFlashSnapshotFullRoundTrip(t *testing.T) {
	f := NewFlash(true, nil)
	unlock(f)
	f.Write8(cmdOffset0, 0xA0)
	f.Write8(0x0010, 0x55)
	unlock(f)
	f.Write8(cmdOffset0, 0xB0) // leave switchBank pending mid-command

	snap := f.SnapshotFull()

	other := NewFlash(true, nil)
	other.RestoreFull(snap)

	if got := other.Read8(0x0010); got != 0x55 {
		t.Fatalf("expected restored byte 0x55, got 0x%02X", got)
	}
	if !other.switchBank {
		t.Fatalf("expected in-flight switchBank command to survive restore")
	}
}
