package mmu

import "github.com/retrocore/gba-core/internal/cart"

const (
	regionBIOS    = 0x00
	regionWRAM    = 0x02
	regionIWRAM   = 0x03
	regionIO      = 0x04
	regionPalette = 0x05
	regionVRAM    = 0x06
	regionOAM     = 0x07
	regionROMLo   = 0x08
	regionROMHi   = 0x0D
	regionBackup0 = 0x0E
	regionBackup1 = 0x0F

	vramMirrorWindow = 0x20000 // next power of 2 above the real 96 KiB
	vramLowerMirror  = 0x18000 // k in [0, 0x8000) here mirrors [0x10000, 0x18000)
)

// Read8 reads one byte from the flat address space, per spec.md §4.1's
// region-dispatch-by-top-byte contract.
func (m *MMU) Read8(addr uint32) uint8 {
	region := addr >> 24
	offset := addr & 0x00FFFFFF

	switch region {
	case regionBIOS:
		if offset >= biosSize || !m.CPUInBIOS {
			return 0
		}
		return m.BIOS[offset]

	case regionWRAM:
		return m.WRAM[offset%wramSize]

	case regionIWRAM:
		return m.IWRAM[offset%iwramSize]

	case regionIO:
		return m.readIO8(offset)

	case regionPalette:
		return m.PPU.Palette[offset%1024]

	case regionVRAM:
		return m.PPU.VRAM[vramOffset(offset)]

	case regionOAM:
		return m.PPU.OAM[offset%1024]

	case regionBackup0, regionBackup1:
		if m.Backup == nil {
			return 0
		}
		return m.Backup.Read8(offset)

	default:
		if region >= regionROMLo && region <= regionROMHi {
			if region == regionROMHi && m.Cart != nil && m.Cart.Backup == cart.BackupEEPROM {
				return 0xFF // non-DMA byte reads of the EEPROM window carry no data
			}
			return m.romByte(offset)
		}
		m.fault("read8: unmapped address 0x%08X", addr)
		return 0
	}
}

// Write8 writes one byte to the flat address space.
func (m *MMU) Write8(addr uint32, value uint8) {
	region := addr >> 24
	offset := addr & 0x00FFFFFF

	switch region {
	case regionBIOS:
		// BIOS is read-only.

	case regionWRAM:
		m.WRAM[offset%wramSize] = value

	case regionIWRAM:
		m.IWRAM[offset%iwramSize] = value

	case regionIO:
		m.writeIO8(offset, value)

	case regionPalette:
		p := offset % 1024
		m.PPU.Palette[p] = value

	case regionVRAM:
		m.PPU.VRAM[vramOffset(offset)] = value

	case regionOAM:
		m.PPU.OAM[offset%1024] = value

	case regionBackup0, regionBackup1:
		if m.Backup != nil {
			m.Backup.Write8(offset, value)
		}

	default:
		if region >= regionROMLo && region <= regionROMHi {
			// ROM is read-only outside Flash's command addresses, which
			// only ever arrive as a byte write into the backup region,
			// not here. A DMA3 write to the EEPROM window (region
			// regionROMHi under an EEPROM cart) only ever happens as a
			// Write16 through eepromWriteBit, never this byte path.
			return
		}
		m.fault("write8: unmapped address 0x%08X value=0x%02X", addr, value)
	}
}

// Read16 reads a little-endian halfword. I/O and EEPROM reads are
// handled at halfword granularity directly; every other region composes
// two Read8 calls.
func (m *MMU) Read16(addr uint32) uint16 {
	region := addr >> 24
	offset := addr & 0x00FFFFFF

	if region == regionIO {
		return m.readIOHalf(offset)
	}
	if region == regionROMHi && m.Cart != nil && m.Cart.Backup == cart.BackupEEPROM {
		return m.eepromReadBit()
	}
	lo := m.Read8(addr)
	hi := m.Read8(addr + 1)
	return uint16(lo) | uint16(hi)<<8
}

// Write16 writes a little-endian halfword.
func (m *MMU) Write16(addr uint32, value uint16) {
	region := addr >> 24
	offset := addr & 0x00FFFFFF

	if region == regionIO {
		m.writeIOHalf(offset, value)
		return
	}
	if region == regionROMHi && m.Cart != nil && m.Cart.Backup == cart.BackupEEPROM {
		m.eepromWriteBit(uint8(value & 1))
		return
	}
	m.Write8(addr, uint8(value))
	m.Write8(addr+1, uint8(value>>8))
}

// Read32 reads a little-endian word as two halfwords.
func (m *MMU) Read32(addr uint32) uint32 {
	lo := m.Read16(addr)
	hi := m.Read16(addr + 2)
	return uint32(lo) | uint32(hi)<<16
}

// Write32 writes a little-endian word as two halfwords, except the
// sound FIFO registers, which always consume all 4 bytes of a 32-bit
// store in one push (spec.md §4.3).
func (m *MMU) Write32(addr uint32, value uint32) {
	region := addr >> 24
	offset := addr & 0x00FFFFFF
	if region == regionIO && (offset == regFIFO_A || offset == regFIFO_B) {
		m.APU.WriteFIFO(offset, value)
		return
	}
	m.Write16(addr, uint16(value))
	m.Write16(addr+2, uint16(value>>16))
}

// vramOffset applies the 96 KiB region's non-power-of-two mirror rule:
// the whole page repeats every 128 KiB, and within each repeat the
// upper 32 KiB mirrors the middle 32 KiB (spec.md §4.1/§9).
func vramOffset(offset uint32) uint32 {
	o := offset % vramMirrorWindow
	if o >= vramLowerMirror {
		o -= 0x8000
	}
	return o
}

// romByte reads one byte from the cartridge ROM image, mirrored
// identically across waitstate pages 0x08-0x0D (spec.md §9: "identical
// content, differing timing" — this core doesn't model wait-state
// cycle cost, only the address aliasing).
func (m *MMU) romByte(offset uint32) uint8 {
	if m.Cart == nil || int(offset) >= len(m.Cart.ROM) {
		return 0
	}
	return m.Cart.ROM[offset]
}
