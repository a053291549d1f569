// Package audio implements the GBA's sound processing unit (spec.md
// §4.6, C6): four legacy PSG channels, two FIFO-fed direct-sound
// channels, and the soft mix to a signed 16-bit stereo stream.
package audio

import (
	"github.com/retrocore/gba-core/internal/debug"
)

// APU owns all six sound channels and the shared SOUNDCNT registers.
type APU struct {
	Square1 SquareChannel
	Square2 SquareChannel
	Wave    WaveChannel
	Noise   NoiseChannel
	FIFOA   DirectSound
	FIFOB   DirectSound

	SampleRate uint32

	// SOUNDCNT_L: per-PSG-channel left/right enable and master volume.
	PSGVolumeLeft, PSGVolumeRight uint8 // 0-7
	PSGEnableLeft, PSGEnableRight uint8 // bit per channel 0-3

	// SOUNDCNT_H
	PSGVolumeRatio uint8 // 0=25%, 1=50%, 2=100%
	BiasLevel      uint16

	MasterEnable bool // SOUNDCNT_X bit 7

	// DMA is the DMA engine's FIFO-request hook; wired by the owning
	// facade so a timer overflow that drains a FIFO below the refill
	// threshold can request four more words (spec.md §4.3/§4.4).
	DMA DMARequester

	Logger *debug.Logger
}

// DMARequester lets the APU ask the DMA engine to refill a sound FIFO,
// mirroring the injected-interface pattern timer.FIFORefiller uses to
// avoid a package import cycle between audio and dma.
type DMARequester interface {
	OnFIFORequest(channel int)
}

// New creates an APU producing samples at the given host sample rate.
func New(sampleRate uint32, logger *debug.Logger) *APU {
	a := &APU{SampleRate: sampleRate, Logger: logger}
	a.FIFOA.dmaChannel = 1
	a.FIFOB.dmaChannel = 2
	return a
}

// TimerOverflowed implements timer.FIFORefiller: a timer channel just
// overflowed, so any direct-sound channel linked to it pops one FIFO
// byte and, if its FIFO has drained to the refill threshold, asks the
// DMA engine for four more words.
func (a *APU) TimerOverflowed(timerIndex int) {
	if a.FIFOA.TimerIndex == timerIndex {
		a.FIFOA.pop()
		if a.FIFOA.needsRefill() && a.DMA != nil {
			a.DMA.OnFIFORequest(a.FIFOA.dmaChannel)
		}
	}
	if a.FIFOB.TimerIndex == timerIndex {
		a.FIFOB.pop()
		if a.FIFOB.needsRefill() && a.DMA != nil {
			a.DMA.OnFIFORequest(a.FIFOB.dmaChannel)
		}
	}
}

// GenerateSamples produces count interleaved stereo s16 samples (L, R,
// L, R, ...), advancing every channel's internal clocks by one host
// sample each iteration.
func (a *APU) GenerateSamples(count int) []int16 {
	out := make([]int16, count*2)
	for i := 0; i < count; i++ {
		l, r := a.generateStereoSample()
		out[i*2] = l
		out[i*2+1] = r
	}
	return out
}

func (a *APU) generateStereoSample() (left, right int16) {
	if !a.MasterEnable {
		return 0, 0
	}

	s1 := a.Square1.generateSample(a.SampleRate)
	s2 := a.Square2.generateSample(a.SampleRate)
	s3 := a.Wave.generateSample(a.SampleRate)
	s4 := a.Noise.generateSample(a.SampleRate)

	// SOUNDCNT_H's PSG ratio (25/50/100%) scales the summed PSG output;
	// SOUNDCNT_L's 3-bit per-side volume (value+1)/8 is applied per
	// channel alongside its left/right enable mask, per spec.md §4.6.
	psgRatio := [3]float64{0.25, 0.5, 1.0}[a.PSGVolumeRatio&0x3]
	leftScale := float64(a.PSGVolumeLeft+1) / 8.0
	rightScale := float64(a.PSGVolumeRight+1) / 8.0

	mix := func(sample int16, idx uint8) (l, r int32) {
		v := int32(sample)
		if a.PSGEnableLeft&(1<<idx) != 0 {
			l = int32(float64(v) * leftScale)
		}
		if a.PSGEnableRight&(1<<idx) != 0 {
			r = int32(float64(v) * rightScale)
		}
		return
	}

	l1, r1 := mix(s1, 0)
	l2, r2 := mix(s2, 1)
	l3, r3 := mix(s3, 2)
	l4, r4 := mix(s4, 3)
	psgLeft := int32(float64(l1+l2+l3+l4) * psgRatio)
	psgRight := int32(float64(r1+r2+r3+r4) * psgRatio)

	dmaAL, dmaAR := a.FIFOA.mix()
	dmaBL, dmaBR := a.FIFOB.mix()

	mixed := func(psg, dA, dB int32) int16 {
		total := (psg + dA + dB) / 6
		if total > 32767 {
			total = 32767
		} else if total < -32768 {
			total = -32768
		}
		return int16(total)
	}

	left = mixed(psgLeft, dmaAL, dmaBL)
	right = mixed(psgRight, dmaAR, dmaBR)
	return
}
