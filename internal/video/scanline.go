package video

import "github.com/retrocore/gba-core/internal/irq"

// StepPPU advances the PPU by cycles dots, matching the teacher's
// scanline.go's clock-driven StepPPU/stepDot split (ported from 10MHz/
// 360-dot/220-line SNES-ish timing to the GBA's 308-dot/228-line
// scanline grid).
func (p *PPU) StepPPU(cycles uint32) {
	for i := uint32(0); i < cycles; i++ {
		p.stepDot()
	}
}

func (p *PPU) stepDot() {
	if !p.scanlineInit {
		p.currentScanline = 0
		p.currentDot = 0
		p.scanlineInit = true
		p.frameStarted = false
	}

	if p.currentScanline == 0 && p.currentDot == 0 && !p.frameStarted {
		p.startFrame()
		p.frameStarted = true
	}

	// HBlank flag is set for the last 68 dots of every scanline
	// (including those in the VBlank period), matching DISPSTAT bit 1.
	p.HBlankFlag = p.currentDot >= VisibleDots
	if p.currentDot == VisibleDots {
		p.onHBlankStart()
	}

	if p.currentScanline < VisibleScanlines && p.currentDot < VisibleDots {
		if p.currentDot == 0 {
			p.renderScanline(p.currentScanline)
		}
	}

	p.currentDot++
	if p.currentDot >= DotsPerScanline {
		p.currentDot = 0
		p.endScanline()
		p.currentScanline++

		if p.currentScanline == VisibleScanlines {
			p.onVBlankStart()
		}
		if p.currentScanline == TotalScanlines-1 {
			// Line 227 is pre-start: VBlank is still off here even though
			// it has been on since line 160, matching readDISPSTAT's own
			// VBlank-flag semantics at this line.
			p.VBlankFlag = false
		}
		if p.currentScanline >= TotalScanlines {
			p.endFrame()
			p.currentScanline = 0
			p.frameStarted = false
		}

		// VCount-match fires against the scanline we just moved to, not
		// the one that just finished — matching readDISPSTAT, which
		// compares the same currentScanline field after this point.
		if p.currentScanline == VCountLine(p.VCountTarget) && p.VCountIRQEnable && p.IRQ != nil {
			p.IRQ.Raise(irq.VCount)
		}
	}
}

func (p *PPU) onHBlankStart() {
	if p.HBlankIRQEnable && p.IRQ != nil {
		p.IRQ.Raise(irq.HBlank)
	}
	if p.OnHBlank != nil {
		p.OnHBlank(p.currentScanline)
	}
}

func (p *PPU) onVBlankStart() {
	p.VBlankFlag = true
	if p.VBlankIRQEnable && p.IRQ != nil {
		p.IRQ.Raise(irq.VBlank)
	}
	if p.OnVBlank != nil {
		p.OnVBlank()
	}
	// Affine reference points reload from the written RefX/RefY at the
	// start of VBlank, matching real hardware's per-frame reload.
	for i := 2; i <= 3; i++ {
		p.BG[i].curRefX = p.BG[i].RefX
		p.BG[i].curRefY = p.BG[i].RefY
	}
}

func (p *PPU) startFrame() {
	p.VBlankFlag = false
	p.FrameCount++
	p.FrameComplete = false
	p.decodeSprites()
}

func (p *PPU) endScanline() {
	if p.currentScanline < VisibleScanlines {
		for i := 2; i <= 3; i++ {
			p.BG[i].curRefX += int32(p.BG[i].PB)
			p.BG[i].curRefY += int32(p.BG[i].PD)
		}
	}
}

// VCountLine normalizes a VCOUNT target byte to an int for comparison.
func VCountLine(target uint8) int { return int(target) }

func (p *PPU) endFrame() {
	p.FrameComplete = true
}

// CurrentScanline exposes VCOUNT for register reads.
func (p *PPU) CurrentScanline() int { return p.currentScanline }
