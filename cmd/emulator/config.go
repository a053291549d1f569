package main

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/retrocore/gba-core/internal/cart"
	"github.com/retrocore/gba-core/internal/debug"
)

// fileConfig is the TOML shape a settings file on disk takes. Fields are
// optional; flag.Parse defaults and command-line overrides fill in
// whatever the file leaves zero.
type fileConfig struct {
	BIOSPath     string `toml:"bios_path"`
	ForcedBackup string `toml:"forced_backup"`
	SampleRate   uint32 `toml:"sample_rate"`
	LogLevel     string `toml:"log_level"`
	Scale        int    `toml:"scale"`
}

func loadFileConfig(path string) (fileConfig, error) {
	var fc fileConfig
	if path == "" {
		return fc, nil
	}
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		return fc, fmt.Errorf("emulator: read config %s: %w", path, err)
	}
	return fc, nil
}

var backupNames = map[string]cart.BackupType{
	"none":    cart.BackupNone,
	"sram":    cart.BackupSRAM,
	"eeprom":  cart.BackupEEPROM,
	"flash64": cart.BackupFlash64,
	"flash128": cart.BackupFlash128,
}

func parseForcedBackup(name string) (*cart.BackupType, error) {
	if name == "" {
		return nil, nil
	}
	bt, ok := backupNames[name]
	if !ok {
		return nil, fmt.Errorf("emulator: unknown forced_backup %q", name)
	}
	return &bt, nil
}

var logLevelNames = map[string]debug.LogLevel{
	"none":    debug.LogLevelNone,
	"error":   debug.LogLevelError,
	"warning": debug.LogLevelWarning,
	"info":    debug.LogLevelInfo,
	"debug":   debug.LogLevelDebug,
	"trace":   debug.LogLevelTrace,
}

func parseLogLevel(name string) (debug.LogLevel, error) {
	if name == "" {
		return debug.LogLevelWarning, nil
	}
	lvl, ok := logLevelNames[name]
	if !ok {
		return 0, fmt.Errorf("emulator: unknown log_level %q", name)
	}
	return lvl, nil
}
