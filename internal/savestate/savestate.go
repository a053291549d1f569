// Package savestate serializes and restores the full persisted core
// state spec.md §6 describes: every memory region, the backup store,
// and every peripheral's live register and counter state, as a single
// versioned blob. The Version-tagged envelope and gob wire format
// follow the teacher's internal/emulator/savestate.go; unlike the
// teacher, SaveToFile/LoadFromFile here are real file I/O rather than
// stubs, since a core that claims to support save states has to
// actually write them.
package savestate

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"

	"github.com/retrocore/gba-core/internal/mmu"
)

// CurrentVersion is the blob format version this package writes.
// Readers reject anything else outright, per spec.md §6's "readers
// must refuse mismatched versions".
const CurrentVersion uint16 = 1

func init() {
	gob.Register(mmu.Snapshot{})
}

// Blob is the versioned envelope persisted to disk or handed to the
// host for in-memory slot storage.
type Blob struct {
	Version uint16
	State   mmu.Snapshot
}

// Encode captures m's current state and serializes it to a gob-encoded
// byte slice.
func Encode(m *mmu.MMU) ([]byte, error) {
	return encodeBlob(Blob{Version: CurrentVersion, State: m.Snapshot()})
}

func encodeBlob(blob Blob) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(blob); err != nil {
		return nil, fmt.Errorf("savestate: encode: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode deserializes data and restores it onto m. m must already have
// had Reset called with the same ROM the state was saved against, so
// its cartridge's backup protocol matches the blob's.
func Decode(m *mmu.MMU, data []byte) error {
	var blob Blob
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&blob); err != nil {
		return fmt.Errorf("savestate: decode: %w", err)
	}
	if blob.Version != CurrentVersion {
		return fmt.Errorf("savestate: unsupported version %d (want %d)", blob.Version, CurrentVersion)
	}
	m.Restore(blob.State)
	return nil
}

// SaveToFile encodes m's state and writes it to path.
func SaveToFile(m *mmu.MMU, path string) error {
	data, err := Encode(m)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("savestate: write %s: %w", path, err)
	}
	return nil
}

// LoadFromFile reads path and restores its state onto m.
func LoadFromFile(m *mmu.MMU, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("savestate: read %s: %w", path, err)
	}
	return Decode(m, data)
}
