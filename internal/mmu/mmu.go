// Package mmu implements the GBA's address space (spec.md §4.1, C1) and
// the MMU facade (§4.1, C8) that owns and sequences the PPU, APU, DMA
// engine, timer block, interrupt controller and backup store. The
// region-dispatch-by-top-byte shape is adapted from the teacher's
// internal/memory/bus.go, generalized from its 3-bank layout to the
// GBA's flat 32-bit space.
package mmu

import (
	"fmt"

	"github.com/retrocore/gba-core/internal/audio"
	"github.com/retrocore/gba-core/internal/backup"
	"github.com/retrocore/gba-core/internal/cart"
	"github.com/retrocore/gba-core/internal/debug"
	"github.com/retrocore/gba-core/internal/dma"
	"github.com/retrocore/gba-core/internal/input"
	"github.com/retrocore/gba-core/internal/irq"
	"github.com/retrocore/gba-core/internal/timer"
	"github.com/retrocore/gba-core/internal/video"
)

const (
	biosSize  = 0x4000
	wramSize  = 0x40000
	iwramSize = 0x8000
)

// MMU is the flat 256 MiB address space described in spec.md §4.1, plus
// the facade operations (reset/read/write/step/irq) the CPU collaborator
// drives. It owns every other component package; nothing outside this
// package imports more than one of them.
type MMU struct {
	BIOS  [biosSize]byte
	WRAM  [wramSize]byte
	IWRAM [iwramSize]byte

	// CPUInBIOS is set by the CPU collaborator to reflect whether its
	// current fetch address lies inside the BIOS region. Reads of BIOS
	// memory while false return 0 rather than tracking the real
	// hardware's last-prefetch value, per spec.md §4.1's explicit
	// "implementations may return zero" allowance.
	CPUInBIOS bool

	Cart   *cart.Cartridge
	Backup backup.ByteStore // non-nil for SRAM and FLASH carts; nil for BackupNone and EEPROM
	EEPROM *backup.EEPROM   // non-nil only for EEPROM carts

	// ForcedBackup overrides the ROM's auto-detected backup type when
	// non-nil, for the rare cartridge whose signature scan misdetects or
	// a host config that knows better (spec.md §4.2's "or forced by
	// configuration").
	ForcedBackup *cart.BackupType

	PPU   *video.PPU
	APU   *audio.APU
	DMA   *dma.Engine
	Timer *timer.Block
	IRQ   *irq.Controller
	Input *input.Keypad

	ioShadow [0x400]byte // raw backing for I/O registers with no structured owner

	eepromWriteBits    []uint8
	eepromExpectedBits int
	eepromReadBits     []uint8
	eepromReadPos      int

	unmappedAccess uint64 // diagnostic counter, spec.md §7

	Logger *debug.Logger
}

// New wires every component package together: the PPU's HBlank/VBlank
// signals drive the DMA engine, the timer block's FIFO overflows drive
// the APU's direct-sound channels, and the APU's FIFO drain requests
// drive the DMA engine back, closing the loop spec.md §4.3/§4.4
// describes. sampleRate is the host audio sample rate the APU
// synthesizes at.
func New(sampleRate uint32, logger *debug.Logger) *MMU {
	m := &MMU{Logger: logger}

	m.IRQ = irq.New()
	m.PPU = video.New(m.IRQ, logger)
	m.APU = audio.New(sampleRate, logger)
	m.Timer = timer.New(m.IRQ, logger)
	m.Input = input.New(m.IRQ)
	m.DMA = dma.New(m, m.IRQ, logger)

	m.APU.DMA = m.DMA
	m.Timer.Audio = m.APU
	m.PPU.OnHBlank = m.DMA.OnHBlank
	m.PPU.OnVBlank = m.DMA.OnVBlank

	return m
}

// Reset loads rom (and, if non-nil, bios) and detects the cartridge's
// backup store, matching spec.md §4.1's reset contract. saveData, if
// non-nil, seeds the backup store from a prior save file.
func (m *MMU) Reset(rom []byte, bios []byte, saveData []byte) error {
	c, err := cart.LoadROM(rom)
	if err != nil {
		return fmt.Errorf("mmu: %w", err)
	}
	if m.ForcedBackup != nil {
		c.Backup = *m.ForcedBackup
	}
	m.Cart = c

	store, eeprom := backup.New(c.Backup, saveData, m.Logger)
	m.Backup = store
	m.EEPROM = eeprom
	m.eepromWriteBits = nil
	m.eepromReadBits = nil
	m.eepromReadPos = 0

	if len(bios) > 0 {
		if len(bios) < biosSize {
			return fmt.Errorf("mmu: BIOS image too small: %d bytes, want %d", len(bios), biosSize)
		}
		copy(m.BIOS[:], bios)
		m.CPUInBIOS = true
	} else {
		m.CPUInBIOS = false
		m.initPostBootDefaults()
	}

	if m.Logger != nil {
		m.Logger.LogSystemf(debug.LogLevelInfo, "reset: title=%q backup=%s bios=%v", c.Header.Title, c.Backup, len(bios) > 0)
	}
	return nil
}

// initPostBootDefaults seeds the handful of I/O registers real hardware
// leaves in a known non-zero state when no BIOS intro runs, matching
// original_source/src/gba/mmu.cpp's bios-less boot path.
func (m *MMU) initPostBootDefaults() {
	m.APU.WriteRegister16(0x084, 0x0080) // SOUNDCNT_X: master enable
	m.APU.BiasLevel = 0x0200             // SOUNDBIAS default bias level
}

// Step advances the PPU, timer block and (transitively, via their
// HBlank/VBlank/FIFO-overflow callbacks) the DMA engine by cycles CPU
// clocks, then reports which IRQ sources were newly latched this step.
//
// spec.md §5 requires PPU-before-timer-before-DMA-before-IRQ ordering
// within a cycle. HBlank/VBlank-triggered DMA is a reaction to a signal
// the PPU step call itself produces, and FIFO-triggered DMA is a
// reaction to a timer overflow the timer step call produces, so both
// necessarily run nested inside the call that raises their trigger
// rather than after it as a separate top-level phase; this is the only
// order causally possible while keeping each trigger and its DMA
// response atomic, and is the Step ordering this facade commits to.
func (m *MMU) Step(cycles uint32) uint16 {
	prevIF := m.IRQ.IF
	m.PPU.StepPPU(cycles)
	m.Timer.Step(cycles)
	return m.IRQ.IF &^ prevIF
}

// PendingIRQs exposes IF ∧ IE ∧ IME to the CPU collaborator.
func (m *MMU) PendingIRQs() uint16 {
	return m.IRQ.Pending()
}

// AckIRQ implements the IF register's write-1-to-clear semantics.
func (m *MMU) AckIRQ(mask uint16) {
	m.IRQ.AckIF(mask)
}

func (m *MMU) fault(format string, args ...interface{}) {
	m.unmappedAccess++
	if m.Logger != nil {
		m.Logger.LogMemoryf(debug.LogLevelWarning, format, args...)
	}
}

// UnmappedAccessCount reports how many out-of-range or unmapped accesses
// have occurred since reset, the diagnostic counter spec.md §7 requires
// without making such accesses fatal.
func (m *MMU) UnmappedAccessCount() uint64 {
	return m.unmappedAccess
}

// BackupSnapshot returns the plain battery-save image for the active
// backup store (spec.md §6's "backup files"), or nil if the cartridge
// has none. This is the flat save file a host writes on teardown or
// flush; it carries no protocol state, unlike a savestate blob.
func (m *MMU) BackupSnapshot() []byte {
	if m.EEPROM != nil {
		return m.EEPROM.Snapshot()
	}
	if m.Backup != nil {
		return m.Backup.Snapshot()
	}
	return nil
}
