package audio

// WaveChannel models PSG channel 3: a 32-byte Wave RAM split into two
// 16-byte banks, played back as 4-bit signed samples at a
// programmable rate (spec.md §4.6, grounded on
// original_source/src/gba/apu.cpp's generate_channel_3_samples and
// mmu.cpp's SND3CNT_L/X decode).
type WaveChannel struct {
	Bank        [2][16]uint8
	PlayBank    uint8 // which bank is currently sounding
	Dimension64 bool  // true = play through both banks as 64 4-bit samples
	DACEnable   bool  // SOUND3CNT_L bit 7

	RawFrequency uint16
	LengthFlag   bool
	Playing      bool

	VolumeSelect uint8 // 0=mute, 1=100%, 2=50%, 3=25%
	ForceVolume  bool  // bit 15 of SOUND3CNT_H forces 75%

	durationSeconds float64
	sampleLength    int64
	freqDistance    float64
}

// ReadWaveRAM/WriteWaveRAM access the bank NOT currently playing, the
// CPU-visible half of Wave RAM while sound is active.
func (w *WaveChannel) ReadWaveRAM(offset uint8) uint8 {
	bank := 1 - w.PlayBank
	return w.Bank[bank][offset&0xF]
}

func (w *WaveChannel) WriteWaveRAM(offset uint8, value uint8) {
	bank := 1 - w.PlayBank
	w.Bank[bank][offset&0xF] = value
}

// WriteControl handles SOUND3CNT_L: dimension (bit 5), bank select
// (bit 6), DAC enable (bit 7).
func (w *WaveChannel) WriteControl(value uint8) {
	w.Dimension64 = value&0x20 != 0
	w.PlayBank = (value >> 6) & 0x1
	w.DACEnable = value&0x80 != 0
	if !w.DACEnable {
		w.Playing = false
	}
}

// WriteLength handles SOUND3CNT_H low byte: length (0-7, 8-bit).
func (w *WaveChannel) WriteLength(length uint8) {
	w.durationSeconds = float64(256-int(length)) / 256.0
}

// WriteVolume handles SOUND3CNT_H high byte: volume select (13-14),
// force-75% override (15).
func (w *WaveChannel) WriteVolume(value uint8) {
	w.VolumeSelect = (value >> 5) & 0x3
	w.ForceVolume = value&0x80 != 0
}

// WriteFrequencyControl handles SOUND3CNT_X: frequency (0-10), length
// flag (14), restart (15).
func (w *WaveChannel) WriteFrequencyControl(value uint16, sampleRate uint32) {
	w.RawFrequency = value & 0x7FF
	w.LengthFlag = value&(1<<14) != 0

	if value&(1<<15) != 0 && w.DACEnable {
		w.Playing = true
		w.freqDistance = 0
		w.sampleLength = int64(w.durationSeconds * float64(sampleRate))
	}
}

func (w *WaveChannel) outputFrequency() float64 {
	if w.RawFrequency >= 2048 {
		return 0
	}
	base := 131072.0 / float64(2048-w.RawFrequency) / 2.0
	if w.Dimension64 {
		base /= 2.0
	}
	return base
}

// volumeFraction converts the volume selector into the 0/100/50/25%
// output scale, with the force-75% override from SOUND3CNT_H bit 15
// taking priority, per original_source's volume table.
func (w *WaveChannel) volumeFraction() float64 {
	if w.ForceVolume {
		return 0.75
	}
	switch w.VolumeSelect {
	case 0:
		return 0
	case 1:
		return 1.0
	case 2:
		return 0.5
	default:
		return 0.25
	}
}

func (w *WaveChannel) generateSample(sampleRate uint32) int16 {
	if !w.Playing || !w.DACEnable {
		return 0
	}
	if w.LengthFlag {
		if w.sampleLength <= 0 {
			w.Playing = false
			return 0
		}
		w.sampleLength--
	}

	freq := w.outputFrequency()
	if freq <= 0 {
		return 0
	}
	samplesPerPeriod := float64(sampleRate) / freq
	sampleCount := 32
	if w.Dimension64 {
		sampleCount = 64
	}
	step := samplesPerPeriod / float64(sampleCount)
	w.freqDistance++
	if w.freqDistance >= samplesPerPeriod {
		w.freqDistance = 0
	}

	index := int(w.freqDistance/step) % sampleCount
	var raw uint8
	if !w.Dimension64 {
		byteVal := w.Bank[w.PlayBank][index/2]
		if index%2 == 0 {
			raw = byteVal >> 4
		} else {
			raw = byteVal & 0xF
		}
	} else {
		bank := index / 32
		inBank := index % 32
		byteVal := w.Bank[bank][inBank/2]
		if inBank%2 == 0 {
			raw = byteVal >> 4
		} else {
			raw = byteVal & 0xF
		}
	}

	signed := int32(raw) - 8 // 4-bit sample centered at zero, range -8..7
	return int16(float64(signed*4096) * w.volumeFraction())
}
