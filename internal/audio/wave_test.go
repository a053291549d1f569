package audio

import "testing"

// Wave RAM reads and writes must always target the bank that is not
// currently playing, so the CPU can prepare the next waveform while
// the other bank sounds.
func TestWaveRAMBankSwap(t *testing.T) {
	var w WaveChannel
	w.WriteControl(0x00) // PlayBank 0, dimension 32, DAC off

	w.WriteWaveRAM(0, 0xAB)
	if w.Bank[1][0] != 0xAB {
		t.Fatalf("expected write to land in bank 1 while bank 0 plays, got bank0=%#x bank1=%#x", w.Bank[0][0], w.Bank[1][0])
	}
	if got := w.ReadWaveRAM(0); got != 0xAB {
		t.Fatalf("expected readback of 0xAB, got %#x", got)
	}

	w.WriteControl(0x40) // switch PlayBank to 1
	if w.ReadWaveRAM(0) != w.Bank[0][0] {
		t.Fatalf("expected read to now target bank 0")
	}
}

// Restarting requires DAC enable; a restart write with the DAC off
// must not start playback.
func TestWaveRestartRequiresDAC(t *testing.T) {
	var w WaveChannel
	w.WriteControl(0x00) // DAC disabled
	w.WriteLength(0)
	w.WriteFrequencyControl(0x8000, 32768)

	if w.Playing {
		t.Fatalf("expected wave channel to stay silent with DAC disabled")
	}

	w.WriteControl(0x80) // DAC enabled
	w.WriteFrequencyControl(0x8000, 32768)
	if !w.Playing {
		t.Fatalf("expected wave channel to start once DAC is enabled and restart bit set")
	}
}

// A mute volume selection must silence the channel even while playing.
func TestWaveMuteVolume(t *testing.T) {
	var w WaveChannel
	w.WriteControl(0x80)
	w.WriteWaveRAM(0, 0xFF) // bank 1, nibble pair both 0xF -> max positive sample
	w.WriteControl(0xC0)    // bank 1 now playing
	w.WriteVolume(0x00)     // VolumeSelect = 0 (mute)
	w.WriteLength(0)
	w.WriteFrequencyControl(0x87FF, 32768)

	if out := w.generateSample(32768); out != 0 {
		t.Fatalf("expected mute volume to silence output, got %d", out)
	}
}
