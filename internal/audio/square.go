package audio

// dutyHighEighths gives, for each of the four duty-cycle settings, how
// many eighths of a waveform period output high, grounded on
// original_source/src/gba/mmu.cpp's duty_cycle_start/end pairs (always
// starting at 0): 1/8, 1/4, 1/2, 3/4.
var dutyHighEighths = [4]uint8{1, 2, 4, 6}

// SquareChannel models PSG channels 1 and 2. Channel 2 simply never
// has WriteSweep called on it, matching the hardware, which wires
// sweep only to channel 1.
type SquareChannel struct {
	RawFrequency uint16 // 11 bits
	DutySelect   uint8  // 0-3
	LengthFlag   bool
	Playing      bool

	Volume          uint8 // 0-15, current
	InitialVolume   uint8
	EnvelopeDir     uint8 // 0 = decrease, 1 = increase
	EnvelopeStep    uint8 // 0-7, 0 disables the envelope
	envelopeCounter uint32

	SweepTime      uint8 // 0-7, 0 disables sweep
	SweepDirection uint8 // 0 = increase, 1 = decrease
	SweepShift     uint8 // 0-7
	sweepCounter   uint32

	durationSeconds float64 // latched from the length field, committed to sampleLength on restart
	sampleLength    int64   // host samples remaining while LengthFlag is set
	freqDistance    float64
}

// WriteLengthEnvelope handles SOUND1CNT_H/SOUND2CNT_L: length (0-5),
// duty (6-7), envelope step (8-10), direction (11), initial volume
// (12-15).
func (s *SquareChannel) WriteLengthEnvelope(value uint16) {
	length := value & 0x3F
	s.DutySelect = uint8((value >> 6) & 0x3)
	s.EnvelopeStep = uint8((value >> 8) & 0x7)
	s.EnvelopeDir = uint8((value >> 11) & 0x1)
	s.InitialVolume = uint8((value >> 12) & 0xF)
	s.durationSeconds = float64(64-length) / 256.0

	if s.InitialVolume == 0 {
		s.Playing = false
	}
}

// WriteSweep handles SOUND1CNT_L (channel 1 only): shift (0-2),
// direction (3), time (4-6).
func (s *SquareChannel) WriteSweep(value uint8) {
	s.SweepShift = value & 0x7
	s.SweepDirection = (value >> 3) & 0x1
	s.SweepTime = (value >> 4) & 0x7
}

// WriteFrequencyControl handles SOUND1CNT_X/SOUND2CNT_H: frequency
// (0-10), length flag (14), restart (15). A restart re-keys the
// channel, resetting phase, envelope, sweep and the length countdown
// atomically, per spec.md §4.6's restartability rule.
func (s *SquareChannel) WriteFrequencyControl(value uint16, sampleRate uint32) {
	s.RawFrequency = value & 0x7FF
	s.LengthFlag = value&(1<<14) != 0

	if value&(1<<15) != 0 {
		s.Volume = s.InitialVolume
		s.Playing = s.Volume > 0
		s.freqDistance = 0
		s.envelopeCounter = 0
		s.sweepCounter = 0
		s.sampleLength = int64(s.durationSeconds * float64(sampleRate))
	}
}

func (s *SquareChannel) outputFrequency() float64 {
	if s.RawFrequency >= 2048 {
		return 0
	}
	return 131072.0 / float64(2048-s.RawFrequency)
}

// applySweep runs channel 1's frequency sweep, grounded on
// original_source/src/gba/apu.cpp's sweep block (128 Hz clock,
// stopping the channel if the swept frequency would exceed 2047).
func (s *SquareChannel) applySweep(sampleRate uint32) {
	if s.SweepTime == 0 {
		return
	}
	s.sweepCounter++
	period := uint32(sampleRate/128) * uint32(s.SweepTime)
	if period == 0 || s.sweepCounter < period {
		return
	}
	s.sweepCounter = 0

	var delta uint16
	if s.SweepShift > 0 {
		delta = s.RawFrequency >> s.SweepShift
	}
	if s.SweepDirection == 0 {
		if s.RawFrequency+delta >= 0x800 {
			s.Playing = false
			s.SweepTime = 0
			return
		}
		s.RawFrequency += delta
	} else if s.RawFrequency >= delta {
		s.RawFrequency -= delta
	}
}

// applyEnvelope runs the 64 Hz volume envelope shared by channels 1,
// 2 and 4.
func applyEnvelope(direction *uint8, volume *uint8, counter *uint32, envStep uint8, sampleRate uint32) {
	if envStep == 0 {
		return
	}
	*counter++
	period := uint32(sampleRate/64) * uint32(envStep)
	if period == 0 || *counter < period {
		return
	}
	*counter = 0
	if *direction == 0 && *volume > 0 {
		*volume--
	} else if *direction == 1 && *volume < 0xF {
		*volume++
	}
}

func (s *SquareChannel) generateSample(sampleRate uint32) int16 {
	if !s.Playing {
		return 0
	}
	if s.LengthFlag {
		if s.sampleLength <= 0 {
			s.Playing = false
			return 0
		}
		s.sampleLength--
	}

	s.applySweep(sampleRate)
	applyEnvelope(&s.EnvelopeDir, &s.Volume, &s.envelopeCounter, s.EnvelopeStep, sampleRate)

	freq := s.outputFrequency()
	if freq <= 0 {
		return 0
	}
	samplesPerPeriod := float64(sampleRate) / freq
	s.freqDistance++
	if s.freqDistance >= samplesPerPeriod {
		s.freqDistance = 0
	}

	eighth := samplesPerPeriod / 8.0
	high := s.freqDistance < eighth*float64(dutyHighEighths[s.DutySelect])

	amplitude := int16(s.Volume) * 2048
	if high {
		return amplitude
	}
	return -amplitude
}
