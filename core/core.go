// Package core assembles the GBA subsystems behind the two boundaries
// spec.md §6 names: the CPU-collaborator interface an external
// ARM7TDMI implementation drives the bus through, and the Host
// interface a front-end uses to push input and pull frames/audio. It
// is a thin orchestration layer over internal/mmu — the facade that
// already owns every peripheral package — following the teacher's
// internal/emulator.Emulator shape, minus the CPU it assembled
// in-process (out of scope here per spec.md §1).
package core

import (
	"fmt"
	"os"

	"github.com/retrocore/gba-core/internal/cart"
	"github.com/retrocore/gba-core/internal/debug"
	"github.com/retrocore/gba-core/internal/mmu"
	"github.com/retrocore/gba-core/internal/savestate"
)

// Config configures a Core at construction time, mirroring the
// teacher's constructor-injection style (NewAPU(sampleRate, logger))
// gathered into one options struct.
type Config struct {
	// BIOSPath names a BIOS image. New and LoadROM do not read this
	// field; the BIOS image is taken from LoadROM's biosPath argument.
	BIOSPath string

	// ForcedBackup overrides ROM signature auto-detection when non-nil,
	// per spec.md §4.2's "or forced by configuration".
	ForcedBackup *cart.BackupType

	// SampleRate is the host audio sample rate the APU synthesizes at.
	SampleRate uint32

	// LogLevel gates which log entries the shared logger records.
	LogLevel debug.LogLevel

	// LogCapacity bounds the logger's circular buffer.
	LogCapacity int
}

// DefaultConfig returns the settings a standalone demonstrator front
// end would reach for absent an explicit config file.
func DefaultConfig() Config {
	return Config{
		SampleRate:  32768,
		LogLevel:    debug.LogLevelWarning,
		LogCapacity: 4096,
	}
}

// Core owns the MMU facade and the handful of host-lifecycle concerns
// (backup file path, save-state slots) that sit above it.
type Core struct {
	MMU    *mmu.MMU
	Logger *debug.Logger

	backupPath string
}

// New constructs a Core from cfg. LoadROM must be called before the
// CPU collaborator or host interfaces are driven.
func New(cfg Config) *Core {
	logger := debug.NewLogger(cfg.LogCapacity)
	logger.SetMinLevel(cfg.LogLevel)

	m := mmu.New(cfg.SampleRate, logger)
	m.ForcedBackup = cfg.ForcedBackup

	return &Core{MMU: m, Logger: logger}
}

// LoadROM reads romPath (and, if biosPath is non-empty, the BIOS image)
// and resets the core against it. With a BIOS the core boots in
// BIOS-present mode; without one, MMU.Reset seeds the post-boot
// register defaults.
// backupPath names the flat save file to seed the backup store from,
// if it exists, and to flush to on Flush/Teardown.
func (c *Core) LoadROM(romPath, biosPath, backupPath string) error {
	rom, err := os.ReadFile(romPath)
	if err != nil {
		return fmt.Errorf("core: read ROM: %w", err)
	}

	var bios []byte
	if biosPath != "" {
		bios, err = os.ReadFile(biosPath)
		if err != nil {
			return fmt.Errorf("core: read BIOS: %w", err)
		}
	}

	var saveData []byte
	if backupPath != "" {
		if data, err := os.ReadFile(backupPath); err == nil {
			saveData = data
		}
	}
	c.backupPath = backupPath

	if err := c.MMU.Reset(rom, bios, saveData); err != nil {
		return fmt.Errorf("core: %w", err)
	}
	return nil
}

// Flush rewrites the backup file from the current backup store
// contents, matching spec.md §6's "on teardown or explicit flush the
// file is rewritten". It is a no-op if the cartridge carries no
// backup store or LoadROM was never given a backup path — loading a
// ROM with no backup and exiting produces no save file.
func (c *Core) Flush() error {
	if c.backupPath == "" {
		return nil
	}
	data := c.MMU.BackupSnapshot()
	if data == nil {
		return nil
	}
	if err := os.WriteFile(c.backupPath, data, 0644); err != nil {
		return fmt.Errorf("core: flush backup: %w", err)
	}
	return nil
}

// Teardown flushes the backup store. Callers should invoke it before
// discarding a Core, matching spec.md §6's teardown contract.
func (c *Core) Teardown() error {
	return c.Flush()
}

// SaveStateToFile persists the full save-state blob to path.
func (c *Core) SaveStateToFile(path string) error {
	return savestate.SaveToFile(c.MMU, path)
}

// LoadStateFromFile restores the full save-state blob from path. The
// core must already have LoadROM'd the same title the state was saved
// against.
func (c *Core) LoadStateFromFile(path string) error {
	return savestate.LoadFromFile(c.MMU, path)
}
