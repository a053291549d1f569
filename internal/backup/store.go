package backup

import (
	"github.com/retrocore/gba-core/internal/cart"
	"github.com/retrocore/gba-core/internal/debug"
)

// ByteStore is implemented by the SRAM and FLASH backends, which the
// MMU's address dispatch accesses directly by byte offset. EEPROM is
// deliberately excluded: it's reached only through HandleStream/ReadData
// on its DMA3 bitstream, never through ordinary byte reads/writes.
type ByteStore interface {
	Read8(offset uint32) uint8
	Write8(offset uint32, value uint8)
	Snapshot() []byte
}

// New constructs the backend matching a cartridge's detected backup
// type, seeding it from saveData if non-nil. It returns nil, nil for
// cartridges with no detected backup store. EEPROM is returned
// separately since its access pattern doesn't fit ByteStore.
func New(backupType cart.BackupType, saveData []byte, logger *debug.Logger) (store ByteStore, eeprom *EEPROM) {
	switch backupType {
	case cart.BackupSRAM:
		return NewSRAM(saveData), nil
	case cart.BackupFlash64:
		f := NewFlash(false, logger)
		f.seed(saveData)
		return f, nil
	case cart.BackupFlash128:
		f := NewFlash(true, logger)
		f.seed(saveData)
		return f, nil
	case cart.BackupEEPROM:
		e := NewEEPROM(logger)
		e.seed(saveData)
		return nil, e
	default:
		return nil, nil
	}
}
