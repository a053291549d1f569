// Package cart parses the GBA ROM header and auto-detects the backup
// storage type a cartridge uses (spec.md §4.1/§4.2 cartridge concerns),
// the way the teacher's memory.Cartridge parses its own header on load.
package cart

import "fmt"

const headerSize = 0xC0

// BackupType identifies which backup storage protocol a cartridge
// exposes, detected the same way real AGB software does: scanning the
// ROM image for one of a handful of fixed ASCII signatures.
type BackupType int

const (
	BackupNone BackupType = iota
	BackupSRAM
	BackupEEPROM  // size (512B vs 8KiB) is pinned later by DMA3 bit count
	BackupFlash64 // 64 KiB, single bank
	BackupFlash128
)

func (t BackupType) String() string {
	switch t {
	case BackupSRAM:
		return "SRAM"
	case BackupEEPROM:
		return "EEPROM"
	case BackupFlash64:
		return "FLASH_64"
	case BackupFlash128:
		return "FLASH_128"
	default:
		return "NONE"
	}
}

// Header holds the fixed fields of the 192-byte GBA ROM header.
type Header struct {
	Title     string
	GameCode  string
	MakerCode string
	Checksum  uint8
}

// Cartridge is a loaded ROM image plus its parsed header and detected
// backup type.
type Cartridge struct {
	ROM        []uint8
	Header     Header
	Backup     BackupType
	// Extension is a hook for cartridge-specific peripherals (real-time
	// clock, rumble, solar sensor, tilt sensor and the like) that are
	// explicitly out of scope for this core (spec.md §1 non-goals). A
	// nil Extension means none of those peripherals are present. The
	// MMU's address dispatch does not consult it.
	Extension Extension
}

// Extension is implemented by cartridge-specific peripheral add-ons.
// The core ships no implementations; it exists purely so a host can
// plug one in without this package needing to know what it is.
type Extension interface {
	Read8(offset uint32) (value uint8, handled bool)
	Write8(offset uint32, value uint8) (handled bool)
}

// LoadROM parses a raw ROM image: the fixed header fields and a
// signature scan for a backup-store marker string, matching the
// approach gbe-plus's MMU::parse_header / save-type auto-detect takes.
func LoadROM(data []uint8) (*Cartridge, error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("cart: ROM too small for header: %d bytes", len(data))
	}

	c := &Cartridge{ROM: data}
	c.Header = Header{
		Title:     trimCString(data[0xA0:0xAC]),
		GameCode:  trimCString(data[0xAC:0xB0]),
		MakerCode: trimCString(data[0xB0:0xB2]),
		Checksum:  data[0xBD],
	}
	c.Backup = detectBackupType(data)
	return c, nil
}

func trimCString(b []uint8) string {
	n := len(b)
	for n > 0 && b[n-1] == 0 {
		n--
	}
	return string(b[:n])
}

// backup signature table: offset 0 of each entry is the byte that opens
// the switch in gbe-plus's scan, the rest the bytes that must follow.
var signatures = []struct {
	bytes   []byte
	backup  BackupType
}{
	{[]byte("EEPROM_V"), BackupEEPROM},
	{[]byte("FLASH1M_V"), BackupFlash128},
	{[]byte("FLASH512_V"), BackupFlash64},
	{[]byte("FLASH_V"), BackupFlash64},
	{[]byte("SRAM_V"), BackupSRAM},
}

// detectBackupType scans the whole ROM image for one of the fixed ASCII
// markers linker scripts embed to advertise the save type, exactly as
// real cartridges (and gbe-plus's auto-detect) do. FLASH1M_V and
// FLASH512_V are checked before the shorter FLASH_V/SRAM_V prefixes they
// could otherwise be mistaken for.
func detectBackupType(data []uint8) BackupType {
	for i := range data {
		for _, sig := range signatures {
			if matchAt(data, i, sig.bytes) {
				return sig.backup
			}
		}
	}
	return BackupNone
}

func matchAt(data []uint8, offset int, sig []byte) bool {
	if offset+len(sig) > len(data) {
		return false
	}
	for i, b := range sig {
		if data[offset+i] != b {
			return false
		}
	}
	return true
}
