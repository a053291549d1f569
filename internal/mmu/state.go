package mmu

import (
	"github.com/retrocore/gba-core/internal/audio"
	"github.com/retrocore/gba-core/internal/backup"
	"github.com/retrocore/gba-core/internal/cart"
	"github.com/retrocore/gba-core/internal/dma"
	"github.com/retrocore/gba-core/internal/input"
	"github.com/retrocore/gba-core/internal/timer"
	"github.com/retrocore/gba-core/internal/video"
)

// IRQState is the persistable snapshot of the interrupt controller.
type IRQState struct {
	IE, IF uint16
	IME    bool
}

// BackupState is the persistable snapshot of whichever backup protocol
// the loaded cartridge uses. Only the field matching Kind is meaningful,
// matching spec.md §6's "SRAM region, EEPROM record, Flash record" —
// a cartridge only ever carries one of the three.
type BackupState struct {
	Kind   cart.BackupType
	SRAM   []byte
	EEPROM backup.State
	Flash  backup.FlashState
}

// Snapshot is the full persisted core state spec.md §6 describes: every
// region of the address space the CPU collaborator can address, plus
// the scalar and per-component state needed to resume emulation
// bit-exact from a halted core.
type Snapshot struct {
	WRAM  [wramSize]byte
	IWRAM [iwramSize]byte
	IO    [0x400]byte

	CPUInBIOS bool
	Backup    BackupState

	DMA   [4]dma.ChannelState
	Timer [4]timer.ChannelState
	IRQ   IRQState
	Input input.State
	APU   audio.State
	PPU   video.State

	// In-flight DMA3 EEPROM bitstream accumulator, so a save made
	// mid-transfer doesn't drop a partially-received request.
	EEPROMWriteBits    []uint8
	EEPROMExpectedBits int
	EEPROMReadBits     []uint8
	EEPROMReadPos      int
}

// Snapshot captures the MMU's complete state: every owned region and
// component. Cart/ROM is deliberately excluded — the host reloads the
// ROM image and calls Reset before restoring a Snapshot, matching
// spec.md §6's cartridge interface (ROM is not part of the save-state
// blob, only backup and RAM state are).
func (m *MMU) Snapshot() Snapshot {
	s := Snapshot{
		WRAM:      m.WRAM,
		IWRAM:     m.IWRAM,
		IO:        m.ioShadow,
		CPUInBIOS: m.CPUInBIOS,
		DMA:       m.DMA.Snapshot(),
		Timer:     m.Timer.Snapshot(),
		IRQ:       IRQState{IE: m.IRQ.IE, IF: m.IRQ.IF, IME: m.IRQ.IME},
		Input:     m.Input.Snapshot(),
		APU:       m.APU.Snapshot(),
		PPU:       m.PPU.Snapshot(),

		EEPROMWriteBits:    append([]uint8(nil), m.eepromWriteBits...),
		EEPROMExpectedBits: m.eepromExpectedBits,
		EEPROMReadBits:     append([]uint8(nil), m.eepromReadBits...),
		EEPROMReadPos:      m.eepromReadPos,
	}

	if m.Cart != nil {
		s.Backup.Kind = m.Cart.Backup
	}
	switch store := m.Backup.(type) {
	case *backup.SRAM:
		s.Backup.SRAM = store.Snapshot()
	case *backup.Flash:
		s.Backup.Flash = store.SnapshotFull()
	}
	if m.EEPROM != nil {
		s.Backup.EEPROM = m.EEPROM.SnapshotFull()
	}

	return s
}

// Restore replaces the MMU's complete state from a prior Snapshot.
// Reset must already have loaded a ROM whose detected backup type
// matches s.Backup.Kind; Restore only rehydrates state, it never
// changes which backup protocol is in play.
func (m *MMU) Restore(s Snapshot) {
	m.WRAM = s.WRAM
	m.IWRAM = s.IWRAM
	m.ioShadow = s.IO
	m.CPUInBIOS = s.CPUInBIOS

	m.DMA.Restore(s.DMA)
	m.Timer.Restore(s.Timer)
	m.IRQ.IE, m.IRQ.IF, m.IRQ.IME = s.IRQ.IE, s.IRQ.IF, s.IRQ.IME
	m.Input.Restore(s.Input)
	m.APU.Restore(s.APU)
	m.PPU.Restore(s.PPU)

	switch store := m.Backup.(type) {
	case *backup.SRAM:
		store.Restore(s.Backup.SRAM)
	case *backup.Flash:
		store.RestoreFull(s.Backup.Flash)
	}
	if m.EEPROM != nil {
		m.EEPROM.RestoreFull(s.Backup.EEPROM)
	}

	m.eepromWriteBits = append([]uint8(nil), s.EEPROMWriteBits...)
	m.eepromExpectedBits = s.EEPROMExpectedBits
	m.eepromReadBits = append([]uint8(nil), s.EEPROMReadBits...)
	m.eepromReadPos = s.EEPROMReadPos
}
