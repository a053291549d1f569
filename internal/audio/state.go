package audio

// State is the full persistable snapshot of the APU, including the
// per-channel counters that live only in memory between register
// writes (spec.md §6 "APU struct" in the persisted core state blob).
// Every field is exported so the owning savestate package can encode it
// without reaching into audio's internals, mirroring the teacher's
// APUState/PPUState DTOs in internal/emulator/savestate.go.
type State struct {
	Square1 SquareState
	Square2 SquareState
	Wave    WaveState
	Noise   NoiseState
	FIFOA   DirectSoundState
	FIFOB   DirectSoundState

	PSGVolumeLeft, PSGVolumeRight uint8
	PSGEnableLeft, PSGEnableRight uint8
	PSGVolumeRatio                uint8
	BiasLevel                     uint16
	MasterEnable                  bool
}

// Snapshot captures the APU's full state. DMA is excluded: it is a
// facade-wired collaborator reference, not state, and is rewired by
// the facade on restore rather than serialized.
func (a *APU) Snapshot() State {
	return State{
		Square1:        a.Square1.snapshot(),
		Square2:        a.Square2.snapshot(),
		Wave:           a.Wave.snapshot(),
		Noise:          a.Noise.snapshot(),
		FIFOA:          a.FIFOA.snapshot(),
		FIFOB:          a.FIFOB.snapshot(),
		PSGVolumeLeft:  a.PSGVolumeLeft,
		PSGVolumeRight: a.PSGVolumeRight,
		PSGEnableLeft:  a.PSGEnableLeft,
		PSGEnableRight: a.PSGEnableRight,
		PSGVolumeRatio: a.PSGVolumeRatio,
		BiasLevel:      a.BiasLevel,
		MasterEnable:   a.MasterEnable,
	}
}

// Restore replaces the APU's channel and mixer state with a prior
// snapshot, leaving SampleRate, DMA and Logger untouched since those
// are construction-time/facade concerns, not save-state.
func (a *APU) Restore(s State) {
	a.Square1.restore(s.Square1)
	a.Square2.restore(s.Square2)
	a.Wave.restore(s.Wave)
	a.Noise.restore(s.Noise)
	a.FIFOA.restore(s.FIFOA)
	a.FIFOB.restore(s.FIFOB)
	a.PSGVolumeLeft = s.PSGVolumeLeft
	a.PSGVolumeRight = s.PSGVolumeRight
	a.PSGEnableLeft = s.PSGEnableLeft
	a.PSGEnableRight = s.PSGEnableRight
	a.PSGVolumeRatio = s.PSGVolumeRatio
	a.BiasLevel = s.BiasLevel
	a.MasterEnable = s.MasterEnable
}

// SquareState mirrors SquareChannel field-for-field, including the
// envelope/sweep counters and latched duration that only ever live in
// memory.
type SquareState struct {
	RawFrequency    uint16
	DutySelect      uint8
	LengthFlag      bool
	Playing         bool
	Volume          uint8
	InitialVolume   uint8
	EnvelopeDir     uint8
	EnvelopeStep    uint8
	EnvelopeCounter uint32
	SweepTime       uint8
	SweepDirection  uint8
	SweepShift      uint8
	SweepCounter    uint32
	DurationSeconds float64
	SampleLength    int64
	FreqDistance    float64
}

func (s *SquareChannel) snapshot() SquareState {
	return SquareState{
		RawFrequency: s.RawFrequency, DutySelect: s.DutySelect,
		LengthFlag: s.LengthFlag, Playing: s.Playing,
		Volume: s.Volume, InitialVolume: s.InitialVolume,
		EnvelopeDir: s.EnvelopeDir, EnvelopeStep: s.EnvelopeStep, EnvelopeCounter: s.envelopeCounter,
		SweepTime: s.SweepTime, SweepDirection: s.SweepDirection, SweepShift: s.SweepShift, SweepCounter: s.sweepCounter,
		DurationSeconds: s.durationSeconds, SampleLength: s.sampleLength, FreqDistance: s.freqDistance,
	}
}

func (s *SquareChannel) restore(st SquareState) {
	s.RawFrequency, s.DutySelect = st.RawFrequency, st.DutySelect
	s.LengthFlag, s.Playing = st.LengthFlag, st.Playing
	s.Volume, s.InitialVolume = st.Volume, st.InitialVolume
	s.EnvelopeDir, s.EnvelopeStep, s.envelopeCounter = st.EnvelopeDir, st.EnvelopeStep, st.EnvelopeCounter
	s.SweepTime, s.SweepDirection, s.SweepShift, s.sweepCounter = st.SweepTime, st.SweepDirection, st.SweepShift, st.SweepCounter
	s.durationSeconds, s.sampleLength, s.freqDistance = st.DurationSeconds, st.SampleLength, st.FreqDistance
}

// WaveState mirrors WaveChannel field-for-field.
type WaveState struct {
	Bank            [2][16]uint8
	PlayBank        uint8
	Dimension64     bool
	DACEnable       bool
	RawFrequency    uint16
	LengthFlag      bool
	Playing         bool
	VolumeSelect    uint8
	ForceVolume     bool
	DurationSeconds float64
	SampleLength    int64
	FreqDistance    float64
}

func (w *WaveChannel) snapshot() WaveState {
	return WaveState{
		Bank: w.Bank, PlayBank: w.PlayBank, Dimension64: w.Dimension64, DACEnable: w.DACEnable,
		RawFrequency: w.RawFrequency, LengthFlag: w.LengthFlag, Playing: w.Playing,
		VolumeSelect: w.VolumeSelect, ForceVolume: w.ForceVolume,
		DurationSeconds: w.durationSeconds, SampleLength: w.sampleLength, FreqDistance: w.freqDistance,
	}
}

func (w *WaveChannel) restore(st WaveState) {
	w.Bank, w.PlayBank, w.Dimension64, w.DACEnable = st.Bank, st.PlayBank, st.Dimension64, st.DACEnable
	w.RawFrequency, w.LengthFlag, w.Playing = st.RawFrequency, st.LengthFlag, st.Playing
	w.VolumeSelect, w.ForceVolume = st.VolumeSelect, st.ForceVolume
	w.durationSeconds, w.sampleLength, w.freqDistance = st.DurationSeconds, st.SampleLength, st.FreqDistance
}

// NoiseState mirrors NoiseChannel field-for-field, including both LFSR
// widths so a restore lands back in whichever mode was active.
type NoiseState struct {
	DividingRatio   float64
	PrescalerSel    uint8
	SevenStage      bool
	LengthFlag      bool
	Playing         bool
	Volume          uint8
	InitialVolume   uint8
	EnvelopeDir     uint8
	EnvelopeStep    uint8
	EnvelopeCounter uint32
	LFSR7           uint8
	LFSR15          uint16
	DurationSeconds float64
	SampleLength    int64
	FreqCounter     float64
}

func (n *NoiseChannel) snapshot() NoiseState {
	return NoiseState{
		DividingRatio: n.DividingRatio, PrescalerSel: n.PrescalerSel, SevenStage: n.SevenStage,
		LengthFlag: n.LengthFlag, Playing: n.Playing,
		Volume: n.Volume, InitialVolume: n.InitialVolume,
		EnvelopeDir: n.EnvelopeDir, EnvelopeStep: n.EnvelopeStep, EnvelopeCounter: n.envelopeCounter,
		LFSR7: n.lfsr7, LFSR15: n.lfsr15,
		DurationSeconds: n.durationSeconds, SampleLength: n.sampleLength, FreqCounter: n.freqCounter,
	}
}

func (n *NoiseChannel) restore(st NoiseState) {
	n.DividingRatio, n.PrescalerSel, n.SevenStage = st.DividingRatio, st.PrescalerSel, st.SevenStage
	n.LengthFlag, n.Playing = st.LengthFlag, st.Playing
	n.Volume, n.InitialVolume = st.Volume, st.InitialVolume
	n.EnvelopeDir, n.EnvelopeStep, n.envelopeCounter = st.EnvelopeDir, st.EnvelopeStep, st.EnvelopeCounter
	n.lfsr7, n.lfsr15 = st.LFSR7, st.LFSR15
	n.durationSeconds, n.sampleLength, n.freqCounter = st.DurationSeconds, st.SampleLength, st.FreqCounter
}

// DirectSoundState mirrors DirectSound field-for-field.
type DirectSoundState struct {
	Buf         [fifoDepth]int8
	Len         int
	Current     int8
	TimerIndex  int
	LeftEnable  bool
	RightEnable bool
	FullVolume  bool
	DMAChannel  int
}

func (d *DirectSound) snapshot() DirectSoundState {
	return DirectSoundState{
		Buf: d.buf, Len: d.len, Current: d.current,
		TimerIndex: d.TimerIndex, LeftEnable: d.LeftEnable, RightEnable: d.RightEnable, FullVolume: d.FullVolume,
		DMAChannel: d.dmaChannel,
	}
}

func (d *DirectSound) restore(st DirectSoundState) {
	d.buf, d.len, d.current = st.Buf, st.Len, st.Current
	d.TimerIndex, d.LeftEnable, d.RightEnable, d.FullVolume = st.TimerIndex, st.LeftEnable, st.RightEnable, st.FullVolume
	d.dmaChannel = st.DMAChannel
}
