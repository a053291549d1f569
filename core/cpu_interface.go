package core

// This file implements spec.md §6's CPU-collaborator interface: the
// load/store/step/irq contract an external ARM7TDMI implementation
// drives the core through. The core never calls into the CPU; the CPU
// calls these methods once per bus access or machine cycle.

// Read8 loads one byte from the flat address space.
func (c *Core) Read8(addr uint32) uint8 { return c.MMU.Read8(addr) }

// Read16 loads one halfword from the flat address space.
func (c *Core) Read16(addr uint32) uint16 { return c.MMU.Read16(addr) }

// Read32 loads one word from the flat address space.
func (c *Core) Read32(addr uint32) uint32 { return c.MMU.Read32(addr) }

// Write8 stores one byte to the flat address space.
func (c *Core) Write8(addr uint32, value uint8) { c.MMU.Write8(addr, value) }

// Write16 stores one halfword to the flat address space.
func (c *Core) Write16(addr uint32, value uint16) { c.MMU.Write16(addr, value) }

// Write32 stores one word to the flat address space.
func (c *Core) Write32(addr uint32, value uint32) { c.MMU.Write32(addr, value) }

// StepCycle advances every peripheral (PPU, timers, DMA) by one
// machine cycle. The CPU collaborator calls this once per cycle it
// consumes executing an instruction, per spec.md §5's control-flow
// contract.
func (c *Core) StepCycle() { c.MMU.Step(1) }

// PendingIRQMask returns IF ∧ IE, gated by IME, for the CPU
// collaborator to act on between instructions.
func (c *Core) PendingIRQMask() uint16 { return c.MMU.PendingIRQs() }

// AckIRQ implements the IF register's write-1-to-clear semantics, for
// a CPU collaborator that acknowledges interrupts by writing IF
// directly rather than through the ordinary MMIO path.
func (c *Core) AckIRQ(mask uint16) { c.MMU.AckIRQ(mask) }

// SetCPUInBIOS tells the MMU whether the CPU collaborator's program
// counter currently lies inside the BIOS region, the signal BIOS-read
// gating depends on (spec.md §4.1).
func (c *Core) SetCPUInBIOS(inBIOS bool) { c.MMU.CPUInBIOS = inBIOS }
