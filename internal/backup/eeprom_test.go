package backup

import "testing"

func intToBits(v, n int) []uint8 {
	bits := make([]uint8, n)
	for i := 0; i < n; i++ {
		bits[n-1-i] = uint8((v >> i) & 1)
	}
	return bits
}

func buildWriteStream(addr int, addrBits int, data [8]byte) []uint8 {
	stream := []uint8{1, 1}
	stream = append(stream, intToBits(addr, addrBits)...)
	for _, b := range data {
		for bit := 7; bit >= 0; bit-- {
			stream = append(stream, (b>>uint(bit))&1)
		}
	}
	stream = append(stream, 0) // stop bit
	return stream
}

func buildReadRequestStream(addr int, addrBits int) []uint8 {
	stream := []uint8{1, 0}
	stream = append(stream, intToBits(addr, addrBits)...)
	stream = append(stream, 0)
	return stream
}

func TestEEPROMWriteThenRead(t *testing.T) {
	e := NewEEPROM(nil)
	data := [8]byte{0xDE, 0xAD, 0xBE, 0xEF, 0x11, 0x22, 0x33, 0x44}

	e.HandleStream(buildWriteStream(5, 6, data))
	if e.addrBits != 6 {
		t.Fatalf("expected 6-bit addressing locked, got %d", e.addrBits)
	}

	e.HandleStream(buildReadRequestStream(5, 6))
	out := e.ReadData()
	if len(out) != 68 {
		t.Fatalf("expected 68-bit response, got %d", len(out))
	}
	for i := 0; i < 4; i++ {
		if out[i] != 0 {
			t.Fatalf("expected leading 4 bits zero, got bit %d = %d", i, out[i])
		}
	}
	for byteIdx := 0; byteIdx < 8; byteIdx++ {
		got := bitsToInt8(out[4+byteIdx*8 : 4+byteIdx*8+8])
		if got != data[byteIdx] {
			t.Fatalf("byte %d: expected 0x%02X, got 0x%02X", byteIdx, data[byteIdx], got)
		}
	}
}

func TestEEPROMLargeAddressing(t *testing.T) {
	e := NewEEPROM(nil)
	data := [8]byte{1, 2, 3, 4, 5, 6, 7, 8}
	e.HandleStream(buildWriteStream(1000, 14, data))
	if e.addrBits != 14 {
		t.Fatalf("expected 14-bit addressing locked, got %d", e.addrBits)
	}
	if e.blockCount != largeBlocks {
		t.Fatalf("expected %d blocks, got %d", largeBlocks, e.blockCount)
	}
}

func TestEEPROMSnapshotFullRoundTrip(t *testing.T) {
	e := NewEEPROM(nil)
	data := [8]byte{9, 8, 7, 6, 5, 4, 3, 2}
	e.HandleStream(buildWriteStream(3, 6, data))
	e.HandleStream(buildReadRequestStream(3, 6))

	snap := e.SnapshotFull()

	other := NewEEPROM(nil)
	other.RestoreFull(snap)

	if other.addrBits != e.addrBits || other.blockCount != e.blockCount {
		t.Fatalf("expected addressing state to match after restore")
	}
	if !other.havePendingRead || other.pendingReadAddr != 3 {
		t.Fatalf("expected in-flight read request to survive restore")
	}
	out := other.ReadData()
	for byteIdx := 0; byteIdx < 8; byteIdx++ {
		got := bitsToInt8(out[4+byteIdx*8 : 4+byteIdx*8+8])
		if got != data[byteIdx] {
			t.Fatalf("byte %d: expected 0x%02X, got 0x%02X", byteIdx, data[byteIdx], got)
		}
	}
}
