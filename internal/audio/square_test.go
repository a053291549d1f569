package audio

import "testing"

// Restarting channel 1 with a nonzero initial volume and max frequency
// should start it playing at full amplitude, spec.md §8 APU scenario.
func TestSquareRestart(t *testing.T) {
	var s SquareChannel
	s.WriteLengthEnvelope(0xF000) // initial volume 15, no envelope, no duty offset
	s.WriteFrequencyControl(0x87FF, 32768)

	if !s.Playing {
		t.Fatalf("expected channel to be playing after restart with nonzero volume")
	}
	if s.Volume != 15 {
		t.Fatalf("expected volume latched to initial volume 15, got %d", s.Volume)
	}
}

// Writing an initial volume of zero must not start the channel.
func TestSquareZeroVolumeDoesNotPlay(t *testing.T) {
	var s SquareChannel
	s.WriteLengthEnvelope(0x0000)
	s.WriteFrequencyControl(0x8400, 32768)

	if s.Playing {
		t.Fatalf("expected channel to stay silent when initial volume is 0")
	}
}

// The length counter should silence the channel once it counts down
// to zero while LengthFlag is set (spec.md length-counter edge case).
func TestSquareLengthCounterStopsChannel(t *testing.T) {
	var s SquareChannel
	s.WriteLengthEnvelope(0xF03F) // length=63 -> duration (64-63)/256 = 1/256s
	const sampleRate = 256
	s.WriteFrequencyControl(0x8400|(1<<14), sampleRate) // length flag set, restart

	if s.sampleLength != 1 {
		t.Fatalf("expected sampleLength of 1 host sample, got %d", s.sampleLength)
	}

	s.generateSample(sampleRate)
	if !s.Playing {
		t.Fatalf("channel should still be playing for its single remaining sample")
	}
	if out := s.generateSample(sampleRate); out != 0 || s.Playing {
		t.Fatalf("expected channel to stop after length counter reaches zero, out=%d playing=%v", out, s.Playing)
	}
}

// Sweeping channel 1 up past 2047 must disable the channel rather than
// wrap the frequency register, per original_source's sweep overflow.
func TestSquareSweepOverflowDisablesChannel(t *testing.T) {
	var s SquareChannel
	s.WriteLengthEnvelope(0xF000)
	s.SweepShift = 1
	s.SweepDirection = 0 // increase
	s.SweepTime = 1
	s.WriteFrequencyControl(0x87FE, 1000) // frequency 0x7FE, close to the 0x7FF ceiling

	period := uint32(1000/128) * 1
	for i := uint32(0); i <= period; i++ {
		s.generateSample(1000)
	}

	if s.Playing {
		t.Fatalf("expected sweep overflow to stop the channel")
	}
}
