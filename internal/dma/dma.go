// Package dma implements the GBA's 4-channel DMA engine (spec.md §4.3,
// C3): the DMAxSAD/DMAxDAD/DMAxCNT_L/DMAxCNT_H register quartet and the
// trigger/step/repeat rules that move words around the bus without CPU
// involvement.
package dma

import (
	"github.com/retrocore/gba-core/internal/debug"
	"github.com/retrocore/gba-core/internal/irq"
)

const channelCount = 4

// Bus is the subset of the memory facade the DMA engine needs to move
// data. Channels never see cartridge or backup specifics directly; the
// facade's address dispatch (C1) takes care of routing a destination in
// the EEPROM window to the backup store the same way a CPU access would.
type Bus interface {
	Read16(addr uint32) uint16
	Read32(addr uint32) uint32
	Write16(addr uint32, value uint16)
	Write32(addr uint32, value uint32)
}

// AddrControl is the 2-bit source/dest step selector shared by both
// halves of DMAxCNT_H.
type AddrControl uint8

const (
	AddrIncrement    AddrControl = 0
	AddrDecrement    AddrControl = 1
	AddrFixed        AddrControl = 2
	AddrIncReload    AddrControl = 3 // dest only
)

// StartTiming selects when an armed channel actually begins moving
// words.
type StartTiming uint8

const (
	TimingImmediate StartTiming = 0
	TimingVBlank    StartTiming = 1
	TimingHBlank    StartTiming = 2
	TimingSpecial   StartTiming = 3 // sound FIFO (ch1/2) or video capture (ch3)
)

var completionSource = [4]irq.Source{irq.DMA0, irq.DMA1, irq.DMA2, irq.DMA3}

// romRegionStart is the first address of the cartridge ROM window;
// channel 0 is wired only to on-chip/EWRAM/IWRAM sources and must never
// be pointed at ROM (spec.md §4.3 channel-0 quirk).
const romRegionStart = 0x0800_0000
const romRegionEnd = 0x0E00_0000

// Channel holds one DMA channel's register state and in-flight status.
type Channel struct {
	SrcAddr   uint32 // as last written to DMAxSAD
	DstAddr   uint32 // as last written to DMAxDAD
	WordCount uint16 // 0 means the maximum (0x4000, or 0x10000 on ch3)

	DestControl AddrControl
	SrcControl  AddrControl
	Repeat      bool
	WordSize32  bool
	GamePakDRQ  bool // channel 3 only
	Timing      StartTiming
	IRQEnable   bool
	Enable      bool

	// Live cursor state for an in-progress or repeating transfer.
	curSrc, curDst uint32
	armed          bool // enable bit set, not yet triggered
	justCompleted  bool // completed by the most recent execute call; mirrors timer.justOverflowed
}

// Engine owns the four channels in hardware priority order (0 highest).
type Engine struct {
	Channels [channelCount]Channel
	Bus      Bus
	IRQ      *irq.Controller
	Logger   *debug.Logger
}

// New creates a DMA engine wired to the shared bus and interrupt
// controller.
func New(bus Bus, ic *irq.Controller, logger *debug.Logger) *Engine {
	return &Engine{Bus: bus, IRQ: ic, Logger: logger}
}

func maxWordCount(i int) uint32 {
	if i == 3 {
		return 0x10000
	}
	return 0x4000
}

// WordCount exposes the effective transfer length of channel i (0
// mapping to the hardware maximum), letting the MMU's EEPROM bridge
// know exactly how many bits a DMA3 bitstream transfer will carry
// without parsing the protocol itself (spec.md §4.2).
func (e *Engine) WordCount(i int) uint32 {
	return e.wordCount(i)
}

func (e *Engine) wordCount(i int) uint32 {
	wc := uint32(e.Channels[i].WordCount)
	if wc == 0 {
		return maxWordCount(i)
	}
	return wc
}

// WriteSADByte/WriteDADByte update the source/destination registers a byte at a
// time, matching the teacher's per-byte register-write convention.
func (e *Engine) WriteSADByte(i int, shift uint, value uint8) {
	ch := &e.Channels[i]
	ch.SrcAddr = setByte(ch.SrcAddr, shift, value)
}

func (e *Engine) WriteDADByte(i int, shift uint, value uint8) {
	ch := &e.Channels[i]
	ch.DstAddr = setByte(ch.DstAddr, shift, value)
}

func setByte(v uint32, shift uint, b uint8) uint32 {
	mask := uint32(0xFF) << shift
	return (v &^ mask) | (uint32(b) << shift)
}

// WriteWordCountLow/High update DMAxCNT_L (16-bit word count).
func (e *Engine) WriteWordCountLow(i int, value uint8) {
	ch := &e.Channels[i]
	ch.WordCount = (ch.WordCount & 0xFF00) | uint16(value)
}

func (e *Engine) WriteWordCountHigh(i int, value uint8) {
	ch := &e.Channels[i]
	ch.WordCount = (ch.WordCount & 0x00FF) | (uint16(value) << 8)
}

// WriteControl decodes the whole 16-bit DMAxCNT_H: dest control bits
// 5-6, source control bits 7-8, repeat bit 9, word size bit 10, Game Pak
// DRQ bit 11 (channel 3 only), start timing bits 12-13, IRQ enable bit
// 14 and enable bit 15. It takes the whole halfword rather than
// mirroring the hardware's byte split; callers that only have a byte at
// a time should accumulate into a uint16 before calling it.
func (e *Engine) WriteControl(i int, value uint16) {
	ch := &e.Channels[i]
	wasEnabled := ch.Enable

	ch.DestControl = AddrControl((value >> 5) & 0x3)
	ch.SrcControl = AddrControl((value >> 7) & 0x3)
	ch.Repeat = value&(1<<9) != 0
	ch.WordSize32 = value&(1<<10) != 0
	ch.GamePakDRQ = i == 3 && value&(1<<11) != 0
	ch.Timing = StartTiming((value >> 12) & 0x3)
	ch.IRQEnable = value&(1<<14) != 0
	ch.Enable = value&(1<<15) != 0

	if ch.Enable && !wasEnabled {
		ch.curSrc = ch.SrcAddr
		ch.curDst = ch.DstAddr
		ch.armed = true
		if ch.Timing == TimingImmediate {
			e.execute(i)
		}
	}
	if !ch.Enable {
		ch.armed = false
	}
}

// ReadControl reconstructs DMAxCNT_H from channel state.
func (e *Engine) ReadControl(i int) uint16 {
	ch := &e.Channels[i]
	var v uint16
	v |= uint16(ch.DestControl&0x3) << 5
	v |= uint16(ch.SrcControl&0x3) << 7
	if ch.Repeat {
		v |= 1 << 9
	}
	if ch.WordSize32 {
		v |= 1 << 10
	}
	if ch.GamePakDRQ {
		v |= 1 << 11
	}
	v |= uint16(ch.Timing&0x3) << 12
	if ch.IRQEnable {
		v |= 1 << 14
	}
	if ch.Enable {
		v |= 1 << 15
	}
	return v
}

// OnVBlank notifies every channel armed for vblank timing.
func (e *Engine) OnVBlank() {
	for i := 0; i < channelCount; i++ {
		ch := &e.Channels[i]
		if ch.armed && ch.Timing == TimingVBlank {
			e.execute(i)
		}
	}
}

// OnHBlank notifies channels armed for hblank timing, and drives channel
// 3's video-capture special transfer when line is within the capture
// window (spec.md §4.3: one line per HBlank, auto-disabled after line
// 161).
func (e *Engine) OnHBlank(line int) {
	for i := 0; i < channelCount; i++ {
		ch := &e.Channels[i]
		if !ch.armed {
			continue
		}
		switch {
		case ch.Timing == TimingHBlank:
			e.execute(i)
		case i == 3 && ch.Timing == TimingSpecial:
			if line < 2 || line > 161 {
				continue
			}
			e.execute(i)
			if line == 161 {
				ch.Enable = false
				ch.armed = false
			}
		}
	}
}

// OnFIFORequest services a sound-FIFO DRQ from the APU on channel 1 or 2.
// Per spec.md §4.3 the transfer always moves exactly four 32-bit words
// regardless of the configured word count, and never decrements
// WordCount or clears Enable (FIFO DMAs always repeat).
func (e *Engine) OnFIFORequest(channel int) {
	if channel != 1 && channel != 2 {
		return
	}
	ch := &e.Channels[channel]
	if !ch.armed || ch.Timing != TimingSpecial {
		return
	}
	for n := 0; n < 4; n++ {
		e.Bus.Write32(ch.curDst, e.Bus.Read32(ch.curSrc))
		ch.curSrc = stepAddr(ch.curSrc, ch.SrcControl, 4)
		// Destination is always fixed for FIFO DMAs in practice, but
		// honor whatever control bits software configured.
		if ch.DestControl != AddrFixed {
			ch.curDst = stepAddr(ch.curDst, ch.DestControl, 4)
		}
	}
	if e.Logger != nil && e.Logger.IsComponentEnabled(debug.ComponentDMA) {
		e.Logger.LogDMAf(debug.LogLevelTrace, "channel %d FIFO refill, 4 words", channel)
	}
}

// execute runs a whole block transfer to completion. Sub-cycle bus
// arbitration is out of scope (spec.md §1 non-goals); the engine moves
// the entire word count in one step and lets callers account for the
// elapsed cycles separately if they need to.
func (e *Engine) execute(i int) {
	ch := &e.Channels[i]
	ch.justCompleted = false

	if i == 0 && ch.curSrc >= romRegionStart && ch.curSrc < romRegionEnd {
		if e.Logger != nil {
			e.Logger.LogDMAf(debug.LogLevelWarning, "channel 0 source 0x%08X is ROM, skipping transfer", ch.curSrc)
		}
		ch.Enable = false
		ch.armed = false
		return
	}

	count := e.wordCount(i)
	unitSize := uint32(2)
	if ch.WordSize32 {
		unitSize = 4
	}

	for n := uint32(0); n < count; n++ {
		if ch.WordSize32 {
			e.Bus.Write32(ch.curDst, e.Bus.Read32(ch.curSrc))
		} else {
			e.Bus.Write16(ch.curDst, e.Bus.Read16(ch.curSrc))
		}
		ch.curSrc = stepAddr(ch.curSrc, ch.SrcControl, unitSize)
		ch.curDst = stepAddr(ch.curDst, ch.DestControl, unitSize)
	}

	ch.justCompleted = true
	if ch.IRQEnable && e.IRQ != nil {
		e.IRQ.Raise(completionSource[i])
	}
	if e.Logger != nil && e.Logger.IsComponentEnabled(debug.ComponentDMA) {
		e.Logger.LogDMAf(debug.LogLevelDebug, "channel %d transfer complete, %d words", i, count)
	}

	if ch.Repeat && ch.Timing != TimingImmediate {
		if ch.DestControl == AddrIncReload {
			ch.curDst = ch.DstAddr
		}
		ch.armed = true
		return
	}

	ch.Enable = false
	ch.armed = false
}

// stepAddr applies one address-control step for a transfer of the given
// unit size.
func stepAddr(addr uint32, ctrl AddrControl, unitSize uint32) uint32 {
	switch ctrl {
	case AddrDecrement:
		return addr - unitSize
	case AddrFixed:
		return addr
	default: // AddrIncrement, AddrIncReload (increments during the transfer)
		return addr + unitSize
	}
}

// JustCompleted reports whether channel i finished a transfer during its
// most recent execute call (immediate, VBlank, HBlank or video-capture
// trigger). OnFIFORequest refills do not set or clear it.
func (e *Engine) JustCompleted(i int) bool {
	return e.Channels[i].justCompleted
}

// ChannelState is the persistable snapshot of one DMA channel,
// including the live transfer cursor a repeating channel carries
// between triggers (spec.md §6's "four DMA records").
type ChannelState struct {
	SrcAddr, DstAddr       uint32
	WordCount              uint16
	DestControl            AddrControl
	SrcControl             AddrControl
	Repeat, WordSize32     bool
	GamePakDRQ             bool
	Timing                 StartTiming
	IRQEnable, Enable      bool
	CurSrc, CurDst         uint32
	Armed, JustCompleted   bool
}

// Snapshot captures all four channels' state.
func (e *Engine) Snapshot() [channelCount]ChannelState {
	var out [channelCount]ChannelState
	for i := range e.Channels {
		ch := &e.Channels[i]
		out[i] = ChannelState{
			SrcAddr: ch.SrcAddr, DstAddr: ch.DstAddr, WordCount: ch.WordCount,
			DestControl: ch.DestControl, SrcControl: ch.SrcControl,
			Repeat: ch.Repeat, WordSize32: ch.WordSize32, GamePakDRQ: ch.GamePakDRQ,
			Timing: ch.Timing, IRQEnable: ch.IRQEnable, Enable: ch.Enable,
			CurSrc: ch.curSrc, CurDst: ch.curDst, Armed: ch.armed, JustCompleted: ch.justCompleted,
		}
	}
	return out
}

// Restore replaces all four channels' state with a prior snapshot.
func (e *Engine) Restore(s [channelCount]ChannelState) {
	for i := range e.Channels {
		ch := &e.Channels[i]
		st := s[i]
		ch.SrcAddr, ch.DstAddr, ch.WordCount = st.SrcAddr, st.DstAddr, st.WordCount
		ch.DestControl, ch.SrcControl = st.DestControl, st.SrcControl
		ch.Repeat, ch.WordSize32, ch.GamePakDRQ = st.Repeat, st.WordSize32, st.GamePakDRQ
		ch.Timing, ch.IRQEnable, ch.Enable = st.Timing, st.IRQEnable, st.Enable
		ch.curSrc, ch.curDst, ch.armed, ch.justCompleted = st.CurSrc, st.CurDst, st.Armed, st.JustCompleted
	}
}
