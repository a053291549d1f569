package audio

// NoiseChannel models PSG channel 4: a 7-stage or 15-stage LFSR clocked
// at a programmable rate, grounded on
// original_source/src/gba/apu.cpp's buffer_channel_4 and
// mmu.cpp's SND4CNT_H decode.
type NoiseChannel struct {
	DividingRatio float64 // 0.5, 1.0 .. 7.0
	PrescalerSel  uint8   // SND4CNT_H bits 4-7 (s)
	SevenStage    bool    // bit 3: true = 7-stage, false = 15-stage

	LengthFlag bool
	Playing    bool

	Volume          uint8
	InitialVolume   uint8
	EnvelopeDir     uint8
	EnvelopeStep    uint8
	envelopeCounter uint32

	lfsr7           uint8
	lfsr15          uint16
	durationSeconds float64
	sampleLength    int64
	freqCounter     float64
}

var noiseRatios = [8]float64{0.5, 1.0, 2.0, 3.0, 4.0, 5.0, 6.0, 7.0}

// WriteLengthEnvelope handles SOUND4CNT_L: length (0-5), envelope step
// (8-10), direction (11), initial volume (12-15).
func (n *NoiseChannel) WriteLengthEnvelope(value uint16) {
	length := value & 0x3F
	n.EnvelopeStep = uint8((value >> 8) & 0x7)
	n.EnvelopeDir = uint8((value >> 11) & 0x1)
	n.InitialVolume = uint8((value >> 12) & 0xF)
	n.durationSeconds = float64(64-length) / 256.0

	if n.InitialVolume == 0 {
		n.Playing = false
	}
}

// WriteControl handles SOUND4CNT_H: dividing ratio r (0-2), width mode
// (3), prescaler shift s (4-7), length flag (14), restart (15).
func (n *NoiseChannel) WriteControl(value uint16, sampleRate uint32) {
	n.DividingRatio = noiseRatios[value&0x7]
	n.SevenStage = value&0x8 != 0
	n.PrescalerSel = uint8((value >> 4) & 0xF)
	n.LengthFlag = value&(1<<14) != 0

	if value&(1<<15) != 0 {
		n.Volume = n.InitialVolume
		n.Playing = n.Volume > 0
		n.freqCounter = 0
		n.envelopeCounter = 0
		n.sampleLength = int64(n.durationSeconds * float64(sampleRate))
		n.lfsr7 = 0x7F
		n.lfsr15 = 0x7FFF
	}
}

func (n *NoiseChannel) outputFrequency() float64 {
	prescaler := float64(uint32(2) << n.PrescalerSel)
	return 524288.0 / n.DividingRatio / prescaler
}

func (n *NoiseChannel) generateSample(sampleRate uint32) int16 {
	if !n.Playing {
		return 0
	}
	if n.LengthFlag {
		if n.sampleLength <= 0 {
			n.Playing = false
			return 0
		}
		n.sampleLength--
	}

	applyEnvelope(&n.EnvelopeDir, &n.Volume, &n.envelopeCounter, n.EnvelopeStep, sampleRate)

	freq := n.outputFrequency()
	if freq > 0 {
		samplesPerTick := freq / float64(sampleRate)
		n.freqCounter += samplesPerTick
		for n.freqCounter >= 1.0 {
			n.freqCounter -= 1.0
			n.clockLFSR()
		}
	}

	var bit0 uint16
	if n.SevenStage {
		bit0 = uint16(n.lfsr7 & 1)
	} else {
		bit0 = n.lfsr15 & 1
	}
	amplitude := int16(n.Volume) * 2048
	if bit0 != 0 {
		return amplitude
	}
	return -amplitude
}

func (n *NoiseChannel) clockLFSR() {
	if n.SevenStage {
		bit0 := n.lfsr7 & 1
		bit1 := (n.lfsr7 >> 1) & 1
		feedback := bit0 ^ bit1
		n.lfsr7 >>= 1
		if feedback != 0 {
			n.lfsr7 |= 0x40
		}
		return
	}
	bit0 := n.lfsr15 & 1
	bit1 := (n.lfsr15 >> 1) & 1
	feedback := bit0 ^ bit1
	n.lfsr15 >>= 1
	if feedback != 0 {
		n.lfsr15 |= 0x4000
	}
}
