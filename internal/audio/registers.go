package audio

import "github.com/retrocore/gba-core/internal/debug"

// Register offsets relative to the 0x0400_0000 I/O base, matching the
// GBA's fixed sound I/O map.
const (
	regSOUND1CNT_L = 0x060
	regSOUND1CNT_H = 0x062
	regSOUND1CNT_X = 0x064
	regSOUND2CNT_L = 0x068
	regSOUND2CNT_H = 0x06C
	regSOUND3CNT_L = 0x070
	regSOUND3CNT_H = 0x072
	regSOUND3CNT_X = 0x074
	regSOUND4CNT_L = 0x078
	regSOUND4CNT_H = 0x07C
	regSOUNDCNT_L  = 0x080
	regSOUNDCNT_H  = 0x082
	regSOUNDCNT_X  = 0x084
	regSOUNDBIAS   = 0x088
	regWaveRAMBase = 0x090
	regFIFO_A      = 0x0A0
	regFIFO_B      = 0x0A4
)

// WriteRegister16 decodes a 16-bit I/O write into the sound register
// file, mirroring video.WriteRegister16's offset-switch shape.
func (a *APU) WriteRegister16(offset uint32, value uint16) {
	switch offset {
	case regSOUND1CNT_L:
		a.Square1.WriteSweep(uint8(value))
	case regSOUND1CNT_H:
		a.Square1.WriteLengthEnvelope(value)
	case regSOUND1CNT_X:
		a.Square1.WriteFrequencyControl(value, a.SampleRate)

	case regSOUND2CNT_L:
		a.Square2.WriteLengthEnvelope(value)
	case regSOUND2CNT_H:
		a.Square2.WriteFrequencyControl(value, a.SampleRate)

	case regSOUND3CNT_L:
		a.Wave.WriteControl(uint8(value))
	case regSOUND3CNT_H:
		a.Wave.WriteLength(uint8(value))
		a.Wave.WriteVolume(uint8(value >> 8))
	case regSOUND3CNT_X:
		a.Wave.WriteFrequencyControl(value, a.SampleRate)

	case regSOUND4CNT_L:
		a.Noise.WriteLengthEnvelope(value)
	case regSOUND4CNT_H:
		a.Noise.WriteControl(value, a.SampleRate)

	case regSOUNDCNT_L:
		a.writeSoundCntL(value)
	case regSOUNDCNT_H:
		a.writeSoundCntH(value)
	case regSOUNDCNT_X:
		a.MasterEnable = value&(1<<7) != 0
	case regSOUNDBIAS:
		a.BiasLevel = value

	default:
		if offset >= regWaveRAMBase && offset < regWaveRAMBase+8 {
			idx := uint8((offset - regWaveRAMBase) * 2)
			a.Wave.WriteWaveRAM(idx, uint8(value))
			a.Wave.WriteWaveRAM(idx+1, uint8(value>>8))
		}
	}

	if a.Logger != nil && a.Logger.IsComponentEnabled(debug.ComponentAPU) {
		a.Logger.LogAPUf(debug.LogLevelTrace, "write16 offset=0x%03X value=0x%04X", offset, value)
	}
}

// ReadRegister16 reconstructs a sound register's readable bits.
func (a *APU) ReadRegister16(offset uint32) uint16 {
	switch offset {
	case regSOUNDCNT_L:
		return uint16(a.PSGVolumeRight) | uint16(a.PSGVolumeLeft)<<4 |
			uint16(a.PSGEnableRight)<<8 | uint16(a.PSGEnableLeft)<<12
	case regSOUNDCNT_H:
		return a.readSoundCntH()
	case regSOUNDCNT_X:
		return a.readSoundCntX()
	case regSOUNDBIAS:
		return a.BiasLevel
	default:
		if offset >= regWaveRAMBase && offset < regWaveRAMBase+8 {
			idx := uint8((offset - regWaveRAMBase) * 2)
			lo := a.Wave.ReadWaveRAM(idx)
			hi := a.Wave.ReadWaveRAM(idx + 1)
			return uint16(lo) | uint16(hi)<<8
		}
		return 0
	}
}

// WriteFIFO handles a 32-bit write to FIFO_A/FIFO_B (0x0A0/0x0A4),
// always pushing 4 bytes per spec.md §4.3's fixed-size FIFO DMA quirk.
func (a *APU) WriteFIFO(offset uint32, value uint32) {
	data := []byte{byte(value), byte(value >> 8), byte(value >> 16), byte(value >> 24)}
	switch offset {
	case regFIFO_A:
		a.FIFOA.Push(data)
	case regFIFO_B:
		a.FIFOB.Push(data)
	}
}

func (a *APU) writeSoundCntL(value uint16) {
	a.PSGVolumeRight = uint8(value & 0x7)
	a.PSGVolumeLeft = uint8((value >> 4) & 0x7)
	a.PSGEnableRight = uint8((value >> 8) & 0xF)
	a.PSGEnableLeft = uint8((value >> 12) & 0xF)
}

func (a *APU) writeSoundCntH(value uint16) {
	a.PSGVolumeRatio = uint8(value & 0x3)
	a.FIFOA.FullVolume = value&(1<<2) != 0
	a.FIFOB.FullVolume = value&(1<<3) != 0
	a.FIFOA.RightEnable = value&(1<<8) != 0
	a.FIFOA.LeftEnable = value&(1<<9) != 0
	if value&(1<<10) != 0 {
		a.FIFOA.TimerIndex = 1
	} else {
		a.FIFOA.TimerIndex = 0
	}
	if value&(1<<11) != 0 {
		a.FIFOA.Reset()
	}
	a.FIFOB.RightEnable = value&(1<<12) != 0
	a.FIFOB.LeftEnable = value&(1<<13) != 0
	if value&(1<<14) != 0 {
		a.FIFOB.TimerIndex = 1
	} else {
		a.FIFOB.TimerIndex = 0
	}
	if value&(1<<15) != 0 {
		a.FIFOB.Reset()
	}
}

func (a *APU) readSoundCntH() uint16 {
	v := uint16(a.PSGVolumeRatio & 0x3)
	if a.FIFOA.FullVolume {
		v |= 1 << 2
	}
	if a.FIFOB.FullVolume {
		v |= 1 << 3
	}
	if a.FIFOA.RightEnable {
		v |= 1 << 8
	}
	if a.FIFOA.LeftEnable {
		v |= 1 << 9
	}
	if a.FIFOA.TimerIndex == 1 {
		v |= 1 << 10
	}
	if a.FIFOB.RightEnable {
		v |= 1 << 12
	}
	if a.FIFOB.LeftEnable {
		v |= 1 << 13
	}
	if a.FIFOB.TimerIndex == 1 {
		v |= 1 << 14
	}
	return v
}

func (a *APU) readSoundCntX() uint16 {
	var v uint16
	if a.MasterEnable {
		v |= 1 << 7
	}
	if a.Square1.Playing {
		v |= 1 << 0
	}
	if a.Square2.Playing {
		v |= 1 << 1
	}
	if a.Wave.Playing {
		v |= 1 << 2
	}
	if a.Noise.Playing {
		v |= 1 << 3
	}
	return v
}
