package video

// State is the full persistable snapshot of the PPU: register file,
// VRAM/palette/OAM storage, the dot-stepped scanline cursor, and the
// most recently completed frame, matching spec.md §6's "PPU struct"
// save-state entry plus its "per-channel OAM and palette caches" note
// (Sprite is this core's decoded-OAM cache).
type State struct {
	VRAM    [vramSize]uint8
	Palette [paletteSize]uint8
	OAM     [oamSize]uint8

	Mode         uint8
	FrameSelect  uint8
	HBlankFree   bool
	OBJMapping1D bool
	ForceBlank   bool
	BGEnable     [4]bool
	OBJEnable    bool
	WinEnable    [2]bool
	OBJWinEnable bool

	VBlankIRQEnable bool
	HBlankIRQEnable bool
	VCountIRQEnable bool
	VCountTarget    uint8

	BG           [4]Background
	Win          [2]Window
	WinOutEnable uint8
	WinObjEnable uint8

	BGMosaicH, BGMosaicV   uint8
	OBJMosaicH, OBJMosaicV uint8

	BlendMode   uint8
	BlendTarget [2]uint8
	EVA, EVB    uint8
	EVY         uint8

	CurrentScanline int
	CurrentDot      int
	ScanlineInit    bool
	FrameStarted    bool

	VBlankFlag    bool
	HBlankFlag    bool
	FrameCount    uint64
	FrameComplete bool

	OutputBuffer [ScreenWidth * ScreenHeight]uint32
	Sprites      [128]Sprite
}

// Snapshot captures the PPU's full state. IRQ, Logger and the
// HBlank/VBlank facade callbacks are excluded: they are wiring set up
// once at construction, not save-state.
func (p *PPU) Snapshot() State {
	return State{
		VRAM: p.VRAM, Palette: p.Palette, OAM: p.OAM,
		Mode: p.Mode, FrameSelect: p.FrameSelect, HBlankFree: p.HBlankFree,
		OBJMapping1D: p.OBJMapping1D, ForceBlank: p.ForceBlank, BGEnable: p.BGEnable,
		OBJEnable: p.OBJEnable, WinEnable: p.WinEnable, OBJWinEnable: p.OBJWinEnable,
		VBlankIRQEnable: p.VBlankIRQEnable, HBlankIRQEnable: p.HBlankIRQEnable,
		VCountIRQEnable: p.VCountIRQEnable, VCountTarget: p.VCountTarget,
		BG: p.BG, Win: p.Win, WinOutEnable: p.WinOutEnable, WinObjEnable: p.WinObjEnable,
		BGMosaicH: p.BGMosaicH, BGMosaicV: p.BGMosaicV, OBJMosaicH: p.OBJMosaicH, OBJMosaicV: p.OBJMosaicV,
		BlendMode: p.BlendMode, BlendTarget: p.BlendTarget, EVA: p.EVA, EVB: p.EVB, EVY: p.EVY,
		CurrentScanline: p.currentScanline, CurrentDot: p.currentDot,
		ScanlineInit: p.scanlineInit, FrameStarted: p.frameStarted,
		VBlankFlag: p.VBlankFlag, HBlankFlag: p.HBlankFlag,
		FrameCount: p.FrameCount, FrameComplete: p.FrameComplete,
		OutputBuffer: p.OutputBuffer, Sprites: p.sprites,
	}
}

// Restore replaces the PPU's state with a prior snapshot.
func (p *PPU) Restore(s State) {
	p.VRAM, p.Palette, p.OAM = s.VRAM, s.Palette, s.OAM
	p.Mode, p.FrameSelect, p.HBlankFree = s.Mode, s.FrameSelect, s.HBlankFree
	p.OBJMapping1D, p.ForceBlank, p.BGEnable = s.OBJMapping1D, s.ForceBlank, s.BGEnable
	p.OBJEnable, p.WinEnable, p.OBJWinEnable = s.OBJEnable, s.WinEnable, s.OBJWinEnable
	p.VBlankIRQEnable, p.HBlankIRQEnable = s.VBlankIRQEnable, s.HBlankIRQEnable
	p.VCountIRQEnable, p.VCountTarget = s.VCountIRQEnable, s.VCountTarget
	p.BG, p.Win, p.WinOutEnable, p.WinObjEnable = s.BG, s.Win, s.WinOutEnable, s.WinObjEnable
	p.BGMosaicH, p.BGMosaicV, p.OBJMosaicH, p.OBJMosaicV = s.BGMosaicH, s.BGMosaicV, s.OBJMosaicH, s.OBJMosaicV
	p.BlendMode, p.BlendTarget, p.EVA, p.EVB, p.EVY = s.BlendMode, s.BlendTarget, s.EVA, s.EVB, s.EVY
	p.currentScanline, p.currentDot = s.CurrentScanline, s.CurrentDot
	p.scanlineInit, p.frameStarted = s.ScanlineInit, s.FrameStarted
	p.VBlankFlag, p.HBlankFlag = s.VBlankFlag, s.HBlankFlag
	p.FrameCount, p.FrameComplete = s.FrameCount, s.FrameComplete
	p.OutputBuffer, p.sprites = s.OutputBuffer, s.Sprites
}
