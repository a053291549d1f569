// Package video implements the GBA's PPU (spec.md §4.5, C5): the
// 240x160 tile/bitmap display engine, its dot-stepped scanline timing,
// and the register file (DISPCNT, DISPSTAT, BGxCNT, windows, blend
// control) software programs it through. The dot-stepped StepPPU/stepDot
// shape is adapted from the teacher's internal/ppu/scanline.go.
package video

import (
	"github.com/retrocore/gba-core/internal/debug"
	"github.com/retrocore/gba-core/internal/irq"
)

// Display geometry and timing (spec.md §4.5).
const (
	ScreenWidth  = 240
	ScreenHeight = 160

	DotsPerScanline  = 308
	VisibleDots      = 240
	VisibleScanlines = 160
	TotalScanlines   = 228

	vramSize    = 96 * 1024
	paletteSize = 1024 // 256 BG + 256 OBJ entries, 2 bytes each
	oamSize     = 1024 // 128 sprites x 8 bytes
)

// Background holds one tile-mode or affine background's register state.
type Background struct {
	Priority    uint8
	CharBase    uint8 // tile/char block, x16KB
	Mosaic      bool
	ColorMode8  bool // false = 4bpp/16 palette banks, true = 8bpp/256 colors
	ScreenBase  uint8 // tilemap block, x2KB
	WrapAffine  bool  // affine BGs only: wrap instead of transparent at edges
	ScreenSize  uint8 // 2-bit size select, meaning depends on tile vs affine

	ScrollX, ScrollY uint16 // tile-mode BGs only (9-bit each)

	// Affine parameters (BG2 in modes 1-5, BG3 in mode 2).
	RefX, RefY             int32 // 20.8 fixed point reference point
	PA, PB, PC, PD         int16 // 8.8 fixed point matrix
	curRefX, curRefY       int32 // per-scanline accumulator, reloaded on vblank/ref write
}

// Sprite is one of the 128 OAM entries, decoded for the current frame's
// render pass.
type Sprite struct {
	Y, X           int16
	Shape, Size    uint8
	Affine         bool
	AffineIndex    uint8
	DoubleSize     bool
	Disabled       bool
	Mode           uint8 // 0 normal, 1 alpha blend, 2 window, 3 prohibited
	Mosaic         bool
	ColorMode8     bool
	TileIndex      uint16
	Priority       uint8
	PaletteBank    uint8
	HFlip, VFlip   bool
}

// Window holds one rectangular window's edges and per-layer enable mask.
type Window struct {
	Left, Right, Top, Bottom uint8
	Enable                   uint8 // bit0-3 BG0-3, bit4 OBJ, bit5 blend
}

// PPU is the whole picture-processing unit: VRAM/palette/OAM storage,
// the register file, and dot-stepped scanline timing.
type PPU struct {
	VRAM    [vramSize]uint8
	Palette [paletteSize]uint8
	OAM     [oamSize]uint8

	// DISPCNT
	Mode          uint8 // 0-5
	FrameSelect   uint8 // bitmap modes' active frame, 0 or 1
	HBlankFree    bool  // OAM accessible during HBlank
	OBJMapping1D  bool  // false = 2D sprite tile mapping, true = 1D
	ForceBlank    bool
	BGEnable      [4]bool
	OBJEnable     bool
	WinEnable     [2]bool
	OBJWinEnable  bool

	// DISPSTAT
	VBlankIRQEnable bool
	HBlankIRQEnable bool
	VCountIRQEnable bool
	VCountTarget    uint8

	BG [4]Background
	Win [2]Window
	WinOutEnable uint8 // bits as Window.Enable, for the area outside all windows
	WinObjEnable uint8

	// Mosaic
	BGMosaicH, BGMosaicV   uint8
	OBJMosaicH, OBJMosaicV uint8

	// Color special effects (BLDCNT/BLDALPHA/BLDY)
	BlendMode   uint8 // 0 none, 1 alpha, 2 brighten, 3 darken
	BlendTarget [2]uint8 // target-layer bitmask per BLDCNT bits 0-5/8-13
	EVA, EVB    uint8    // alpha coefficients, 0-16
	EVY         uint8    // brightness coefficient, 0-16

	currentScanline int
	currentDot      int
	scanlineInit    bool
	frameStarted    bool

	VBlankFlag bool
	HBlankFlag bool
	FrameCount uint64
	FrameComplete bool

	// OutputBuffer is the completed frame, one 0xAARRGGBB word per pixel.
	OutputBuffer [ScreenWidth * ScreenHeight]uint32

	sprites [128]Sprite

	IRQ    *irq.Controller
	Logger *debug.Logger

	// OnHBlank/OnVBlank notify the DMA engine of scanline edges; wired
	// by the MMU facade so this package doesn't import internal/dma.
	OnHBlank func(line int)
	OnVBlank func()
}

// New creates a PPU wired to the shared interrupt controller.
func New(ic *irq.Controller, logger *debug.Logger) *PPU {
	p := &PPU{IRQ: ic, Logger: logger}
	return p
}
