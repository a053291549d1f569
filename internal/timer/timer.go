// Package timer implements the GBA's 4-channel cascading timer block
// (spec.md §4.4, C4) and the TMxCNT_L/TMxCNT_H register pairs.
package timer

import (
	"github.com/retrocore/gba-core/internal/debug"
	"github.com/retrocore/gba-core/internal/irq"
)

const channelCount = 4

var prescalerCycles = [4]uint16{1, 64, 256, 1024}

var overflowSource = [4]irq.Source{irq.Timer0, irq.Timer1, irq.Timer2, irq.Timer3}

// Channel is one 16-bit reloading counter, matching gba_timer in
// original_source/src/gba/timer.h field-for-field.
type Channel struct {
	Counter       uint16
	Reload        uint16
	PrescalerSel  uint8 // 0..3 -> prescalerCycles
	Cascade       bool  // channels 1..3 only
	IRQEnable     bool
	Enable        bool
	accumCycles   uint16
	justOverflowed bool
}

// FIFORefiller is implemented by the APU so the timer block can pop one
// direct-sound sample per overflow without the timer package importing
// audio types (spec.md §4.4's "sound FIFOs consume one sample").
type FIFORefiller interface {
	// TimerOverflowed is called once per overflow of the given timer
	// index (0..3). Implementations should refill FIFO A/B if linked to
	// this timer index.
	TimerOverflowed(timerIndex int)
}

// Block owns the four timer channels and drives IRQ raises.
type Block struct {
	Channels [channelCount]Channel
	IRQ      *irq.Controller
	Audio    FIFORefiller
	Logger   *debug.Logger
}

// New creates a timer block wired to the shared interrupt controller.
func New(ic *irq.Controller, logger *debug.Logger) *Block {
	return &Block{IRQ: ic, Logger: logger}
}

// Step advances the block by `cycles` CPU clocks, implementing the
// accumulator/prescaler rule of spec.md §4.4.
func (b *Block) Step(cycles uint32) {
	for i := 0; i < channelCount; i++ {
		ch := &b.Channels[i]
		ch.justOverflowed = false
		if !ch.Enable || ch.Cascade {
			// Cascading channels are clocked only by their predecessor's
			// overflow, never by the CPU clock directly.
			continue
		}
		b.tick(i, uint32(cycles))
	}
}

// tick drains `cycles` CPU clocks into channel i's prescaler accumulator,
// then advances Counter by the resulting number of real prescaler
// steps. Counter only ever moves by the number of increments actually
// due; a wrap past 0xFFFF is what fires overflow() (spec.md §4.4: "on
// transition from 0xFFFF -> 0x0000, counter <- reload"), and any
// increments left over after a wrap carry on past it, possibly
// triggering further wraps within the same call — e.g. a DMA-sized
// cycle batch against a small reload period.
func (b *Block) tick(i int, cycles uint32) {
	ch := &b.Channels[i]
	step := uint32(prescalerCycles[ch.PrescalerSel])
	total := uint32(ch.accumCycles) + cycles
	increments := total / step
	ch.accumCycles = uint16(total % step)

	for increments > 0 {
		toWrap := uint32(0x10000) - uint32(ch.Counter)
		if increments < toWrap {
			ch.Counter += uint16(increments)
			break
		}
		increments -= toWrap
		b.overflow(i) // reloads Counter
	}
}

// overflow reloads the counter, raises the channel's IRQ if armed,
// clocks a cascading successor, and lets the APU drain one FIFO sample.
func (b *Block) overflow(i int) {
	ch := &b.Channels[i]
	ch.Counter = ch.Reload
	ch.justOverflowed = true

	if ch.IRQEnable && b.IRQ != nil {
		b.IRQ.Raise(overflowSource[i])
	}
	if b.Logger != nil && b.Logger.IsComponentEnabled(debug.ComponentTimer) {
		b.Logger.LogTimerf(debug.LogLevelTrace, "timer %d overflow, reload=0x%04X", i, ch.Reload)
	}

	if i+1 < channelCount && b.Channels[i+1].Enable && b.Channels[i+1].Cascade {
		b.clockCascade(i + 1)
	}
	if b.Audio != nil {
		b.Audio.TimerOverflowed(i)
	}
}

// clockCascade increments a cascading channel once, overflowing it (and
// its own successor, recursively, via overflow's own cascade clocking)
// if it wraps past 0xFFFF.
func (b *Block) clockCascade(i int) {
	ch := &b.Channels[i]
	if ch.Counter == 0xFFFF {
		b.overflow(i)
		return
	}
	ch.Counter++
}

// WriteReloadLow/WriteReloadHigh update the 16-bit reload value without
// touching the live counter (TMxCNT_L is the reload register on write,
// the counter on read).
func (b *Block) WriteReloadLow(i int, value uint8) {
	ch := &b.Channels[i]
	ch.Reload = (ch.Reload & 0xFF00) | uint16(value)
}

func (b *Block) WriteReloadHigh(i int, value uint8) {
	ch := &b.Channels[i]
	ch.Reload = (ch.Reload & 0x00FF) | (uint16(value) << 8)
}

// ReadCounterLow/ReadCounterHigh expose the live counter, which is what
// TMxCNT_L reads back as (distinct from what it last wrote).
func (b *Block) ReadCounterLow(i int) uint8  { return uint8(b.Channels[i].Counter & 0xFF) }
func (b *Block) ReadCounterHigh(i int) uint8 { return uint8(b.Channels[i].Counter >> 8) }

// WriteControl decodes TMxCNT_H: bits 0-1 prescaler select, bit 2
// cascade (count-up timing), bit 6 IRQ enable, bit 7 start/enable.
// Writing enable on a rising edge reloads the counter immediately
// (spec.md §4.4 and §8 scenario 1).
func (b *Block) WriteControl(i int, value uint8) {
	ch := &b.Channels[i]
	wasEnabled := ch.Enable

	ch.PrescalerSel = value & 0x3
	ch.Cascade = i != 0 && value&0x04 != 0
	ch.IRQEnable = value&0x40 != 0
	ch.Enable = value&0x80 != 0

	if ch.Enable && !wasEnabled {
		ch.Counter = ch.Reload
		ch.accumCycles = 0
	}
}

// ReadControl reconstructs TMxCNT_H from channel state.
func (b *Block) ReadControl(i int) uint8 {
	ch := &b.Channels[i]
	v := ch.PrescalerSel & 0x3
	if ch.Cascade {
		v |= 0x04
	}
	if ch.IRQEnable {
		v |= 0x40
	}
	if ch.Enable {
		v |= 0x80
	}
	return v
}

// JustOverflowed reports whether the timer at index i overflowed during
// the most recent Step.
func (b *Block) JustOverflowed(i int) bool {
	return b.Channels[i].justOverflowed
}

// ChannelState is the persistable snapshot of one timer channel,
// including the sub-prescaler accumulator that only ever lives in
// memory between overflows.
type ChannelState struct {
	Counter        uint16
	Reload         uint16
	PrescalerSel   uint8
	Cascade        bool
	IRQEnable      bool
	Enable         bool
	AccumCycles    uint16
	JustOverflowed bool
}

// Snapshot captures all four channels' state.
func (b *Block) Snapshot() [channelCount]ChannelState {
	var out [channelCount]ChannelState
	for i := range b.Channels {
		ch := &b.Channels[i]
		out[i] = ChannelState{
			Counter: ch.Counter, Reload: ch.Reload, PrescalerSel: ch.PrescalerSel,
			Cascade: ch.Cascade, IRQEnable: ch.IRQEnable, Enable: ch.Enable,
			AccumCycles: ch.accumCycles, JustOverflowed: ch.justOverflowed,
		}
	}
	return out
}

// Restore replaces all four channels' state with a prior snapshot.
func (b *Block) Restore(s [channelCount]ChannelState) {
	for i := range b.Channels {
		ch := &b.Channels[i]
		st := s[i]
		ch.Counter, ch.Reload, ch.PrescalerSel = st.Counter, st.Reload, st.PrescalerSel
		ch.Cascade, ch.IRQEnable, ch.Enable = st.Cascade, st.IRQEnable, st.Enable
		ch.accumCycles, ch.justOverflowed = st.AccumCycles, st.JustOverflowed
	}
}
