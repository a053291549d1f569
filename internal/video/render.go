package video

import "sort"

// pixel is one candidate layer's contribution to a composited output
// pixel.
type pixel struct {
	color    uint32
	priority uint8
	layer    int // 0-3 BG index, 4 = OBJ, 5 = backdrop
	opaque   bool
}

// textScreenDims returns a text-mode background's map size in tiles for
// its 2-bit ScreenSize field.
func textScreenDims(size uint8) (tilesW, tilesH int) {
	switch size {
	case 0:
		return 32, 32
	case 1:
		return 64, 32
	case 2:
		return 32, 64
	default:
		return 64, 64
	}
}

// affineScreenDims returns an affine background's map size in pixels.
func affineScreenDims(size uint8) int {
	return 128 << size
}

// renderScanline composites one visible line into OutputBuffer,
// following the teacher's per-scanline render entry point
// (internal/ppu/scanline.go's stepDot calling renderDot per pixel),
// generalized here to render a whole line at once per the GBA's
// layer-compositing model rather than a per-background-layer blit.
func (p *PPU) renderScanline(line int) {
	if p.ForceBlank {
		for x := 0; x < ScreenWidth; x++ {
			p.OutputBuffer[line*ScreenWidth+x] = 0xFFFFFFFF
		}
		return
	}

	var bgLines [4][ScreenWidth]pixel
	for i := 0; i < 4; i++ {
		if !p.bgVisibleInMode(i) || !p.BGEnable[i] {
			continue
		}
		if p.bgIsAffine(i) {
			bgLines[i] = p.renderAffineBG(i, line)
		} else {
			bgLines[i] = p.renderTextBG(i, line)
		}
	}

	objLine, objWindow := p.renderSprites(line)
	winMask := p.computeWindowMask(line, objWindow)

	backdrop := p.paletteColor(0, false)

	for x := 0; x < ScreenWidth; x++ {
		mask := winMask[x]
		candidates := make([]pixel, 0, 5)

		for i := 0; i < 4; i++ {
			if mask&(1<<uint(i)) == 0 {
				continue
			}
			px := bgLines[i][x]
			if px.opaque {
				px.layer = i
				candidates = append(candidates, px)
			}
		}
		if mask&(1<<4) != 0 && objLine[x].opaque {
			op := objLine[x]
			op.layer = 4
			candidates = append(candidates, op)
		}
		candidates = append(candidates, pixel{color: backdrop, priority: 4, layer: 5, opaque: true})

		sort.Slice(candidates, func(a, b int) bool {
			return betterPixel(candidates[a], candidates[b])
		})
		top := candidates[0]
		var bottom *pixel
		if len(candidates) > 1 {
			bottom = &candidates[1]
		}

		out := top.color
		if mask&(1<<5) != 0 {
			out = p.applyBlend(top, bottom, backdrop)
		}
		p.OutputBuffer[line*ScreenWidth+x] = out
	}
}

// betterPixel reports whether a beats b in the GBA's priority ordering:
// lower BGxCNT/OAM priority value wins; ties go to sprites over
// backgrounds, then to the lower BG index.
func betterPixel(a, b pixel) bool {
	if a.priority != b.priority {
		return a.priority < b.priority
	}
	if (a.layer == 4) != (b.layer == 4) {
		return a.layer == 4
	}
	return a.layer < b.layer
}

func (p *PPU) applyBlend(top pixel, bottom *pixel, backdrop uint32) uint32 {
	topMask := uint8(1) << uint(top.layer)
	if top.layer == 5 {
		topMask = 1 << 5
	}
	inTarget0 := p.BlendTarget[0]&topMask != 0

	switch p.BlendMode {
	case 1: // alpha blend between top and 2nd-highest pixel
		if !inTarget0 || bottom == nil {
			return top.color
		}
		bottomColor := backdrop
		bottomMask := uint8(1 << 5)
		if bottom.layer != 5 {
			bottomColor = bottom.color
			bottomMask = 1 << uint(bottom.layer)
		}
		if p.BlendTarget[1]&bottomMask == 0 {
			return top.color
		}
		return blendAlpha(top.color, bottomColor, p.EVA, p.EVB)
	case 2:
		if !inTarget0 {
			return top.color
		}
		return blendBrightness(top.color, p.EVY, true)
	case 3:
		if !inTarget0 {
			return top.color
		}
		return blendBrightness(top.color, p.EVY, false)
	default:
		return top.color
	}
}

// bgVisibleInMode reports whether background i participates at all in
// the current display mode (spec.md §4.5's six BG modes).
func (p *PPU) bgVisibleInMode(i int) bool {
	switch p.Mode {
	case 0:
		return true
	case 1:
		return i <= 2
	case 2:
		return i >= 2
	case 3, 4, 5:
		return i == 2
	default:
		return false
	}
}

// bgIsAffine reports whether background i uses the affine (rotation/
// scaling) tile map rather than the text map, for the current mode.
func (p *PPU) bgIsAffine(i int) bool {
	switch p.Mode {
	case 1:
		return i == 2
	case 2:
		return true
	case 3, 4, 5:
		return i == 2
	default:
		return false
	}
}

func (p *PPU) renderTextBG(i int, line int) [ScreenWidth]pixel {
	var out [ScreenWidth]pixel
	bg := &p.BG[i]

	tilesW, tilesH := textScreenDims(bg.ScreenSize)
	mapW, mapH := tilesW*8, tilesH*8
	charBase := uint32(bg.CharBase) * 0x4000
	screenBase := uint32(bg.ScreenBase) * 0x800

	y := (int(bg.ScrollY) + line) % mapH
	if y < 0 {
		y += mapH
	}
	tileRow := y / 8
	inTileY := y % 8

	for x := 0; x < ScreenWidth; x++ {
		ex := (int(bg.ScrollX) + x) % mapW
		if ex < 0 {
			ex += mapW
		}
		tileCol := ex / 8
		inTileX := ex % 8

		blockX, blockY := tileCol/32, tileRow/32
		blockIndex := blockY*(tilesW/32) + blockX
		entryAddr := screenBase + uint32(blockIndex)*0x800 + uint32((tileRow%32)*32+(tileCol%32))*2
		entry := uint16(p.VRAM[entryAddr]) | uint16(p.VRAM[entryAddr+1])<<8

		tileNum := entry & 0x3FF
		hflip := entry&(1<<10) != 0
		vflip := entry&(1<<11) != 0
		palBank := uint8((entry >> 12) & 0xF)

		px, py := inTileX, inTileY
		if hflip {
			px = 7 - px
		}
		if vflip {
			py = 7 - py
		}

		var colorIndex uint8
		if bg.ColorMode8 {
			addr := charBase + uint32(tileNum)*64 + uint32(py)*8 + uint32(px)
			colorIndex = p.VRAM[addr]
		} else {
			addr := charBase + uint32(tileNum)*32 + uint32(py)*4 + uint32(px/2)
			b := p.VRAM[addr]
			if px%2 == 0 {
				colorIndex = b & 0xF
			} else {
				colorIndex = b >> 4
			}
		}

		if colorIndex == 0 {
			continue
		}
		idx := colorIndex
		if !bg.ColorMode8 {
			idx = palBank*16 + colorIndex
		}
		out[x] = pixel{color: p.paletteColor(idx, false), priority: bg.Priority, opaque: true}
	}
	return out
}

func (p *PPU) renderAffineBG(i int, line int) [ScreenWidth]pixel {
	var out [ScreenWidth]pixel
	bg := &p.BG[i]

	if p.Mode >= 3 {
		return p.renderBitmapBG(line)
	}

	mapSize := affineScreenDims(bg.ScreenSize)
	charBase := uint32(bg.CharBase) * 0x4000
	screenBase := uint32(bg.ScreenBase) * 0x800
	tilesPerRow := mapSize / 8

	refX, refY := bg.curRefX, bg.curRefY
	for x := 0; x < ScreenWidth; x++ {
		px := (refX + int32(bg.PA)*int32(x)) >> 8
		py := (refY + int32(bg.PC)*int32(x)) >> 8

		if px < 0 || py < 0 || int(px) >= mapSize || int(py) >= mapSize {
			if !bg.WrapAffine {
				continue
			}
			px = ((px % int32(mapSize)) + int32(mapSize)) % int32(mapSize)
			py = ((py % int32(mapSize)) + int32(mapSize)) % int32(mapSize)
		}

		tileCol, tileRow := int(px)/8, int(py)/8
		inTileX, inTileY := int(px)%8, int(py)%8
		entryAddr := screenBase + uint32(tileRow*tilesPerRow+tileCol)
		tileNum := p.VRAM[entryAddr]

		addr := charBase + uint32(tileNum)*64 + uint32(inTileY)*8 + uint32(inTileX)
		colorIndex := p.VRAM[addr]
		if colorIndex == 0 {
			continue
		}
		out[x] = pixel{color: p.paletteColor(colorIndex, false), priority: bg.Priority, opaque: true}
	}
	return out
}

// renderBitmapBG handles modes 3/4/5, always rendered as BG2.
func (p *PPU) renderBitmapBG(line int) [ScreenWidth]pixel {
	var out [ScreenWidth]pixel
	bg := &p.BG[2]

	switch p.Mode {
	case 3:
		for x := 0; x < ScreenWidth; x++ {
			addr := uint32(line*ScreenWidth+x) * 2
			raw := uint16(p.VRAM[addr]) | uint16(p.VRAM[addr+1])<<8
			out[x] = pixel{color: bgr555ToARGB(raw), priority: bg.Priority, opaque: true}
		}
	case 4:
		frameBase := uint32(0)
		if p.FrameSelect != 0 {
			frameBase = 0xA000
		}
		for x := 0; x < ScreenWidth; x++ {
			addr := frameBase + uint32(line*ScreenWidth+x)
			idx := p.VRAM[addr]
			if idx == 0 {
				continue
			}
			out[x] = pixel{color: p.paletteColor(idx, false), priority: bg.Priority, opaque: true}
		}
	case 5:
		const modeWidth, modeHeight = 160, 128
		frameBase := uint32(0)
		if p.FrameSelect != 0 {
			frameBase = 0xA000
		}
		if line >= modeHeight {
			return out
		}
		for x := 0; x < modeWidth && x < ScreenWidth; x++ {
			addr := frameBase + uint32(line*modeWidth+x)*2
			raw := uint16(p.VRAM[addr]) | uint16(p.VRAM[addr+1])<<8
			out[x] = pixel{color: bgr555ToARGB(raw), priority: bg.Priority, opaque: true}
		}
	}
	return out
}

// renderSprites builds the OBJ layer for one scanline, returning the
// composited sprite pixels and a separate OBJ-window mask.
func (p *PPU) renderSprites(line int) ([ScreenWidth]pixel, [ScreenWidth]bool) {
	var out [ScreenWidth]pixel
	var objWindow [ScreenWidth]bool
	if !p.OBJEnable {
		return out, objWindow
	}

	for i := 0; i < 128; i++ {
		s := &p.sprites[i]
		if s.Disabled {
			continue
		}
		w, h := s.dims()
		boundW, boundH := w, h
		if s.Affine && s.DoubleSize {
			boundW, boundH = w*2, h*2
		}
		if line < int(s.Y) || line >= int(s.Y)+boundH {
			continue
		}
		if !s.Affine && !(line >= int(s.Y) && line < int(s.Y)+h) {
			continue
		}

		localY := line - int(s.Y)

		for sx := 0; sx < boundW; sx++ {
			screenX := int(s.X) + sx
			if screenX < 0 || screenX >= ScreenWidth {
				continue
			}

			var texX, texY int
			if s.Affine {
				pa, pb, pc, pd := p.affineParams(s.AffineIndex)
				cx, cy := boundW/2, boundH/2
				dx, dy := sx-cx, localY-cy
				tx := (int32(pa)*int32(dx) + int32(pb)*int32(dy)) >> 8
				ty := (int32(pc)*int32(dx) + int32(pd)*int32(dy)) >> 8
				texX, texY = int(tx)+w/2, int(ty)+h/2
				if texX < 0 || texY < 0 || texX >= w || texY >= h {
					continue
				}
			} else {
				texX, texY = sx, localY
				if s.HFlip {
					texX = w - 1 - texX
				}
				if s.VFlip {
					texY = h - 1 - texY
				}
			}

			tileX, tileY := texX/8, texY/8
			inX, inY := texX%8, texY%8

			// Tile numbers always address 32-byte slots; an 8bpp tile
			// occupies two consecutive slots, so each tile column steps
			// by 2 rather than 1 in that mode.
			stride := uint16(1)
			if s.ColorMode8 {
				stride = 2
			}
			var tileNum uint16
			if p.OBJMapping1D {
				tileNum = s.TileIndex + stride*uint16(tileY*(w/8)+tileX)
			} else {
				tileNum = s.TileIndex + stride*uint16(tileY*32+tileX)
			}

			const objBase = 0x10000
			var colorIndex uint8
			if s.ColorMode8 {
				addr := objBase + uint32(tileNum)*32 + uint32(inY)*8 + uint32(inX)
				colorIndex = p.VRAM[addr]
			} else {
				addr := objBase + uint32(tileNum)*32 + uint32(inY)*4 + uint32(inX/2)
				b := p.VRAM[addr]
				if inX%2 == 0 {
					colorIndex = b & 0xF
				} else {
					colorIndex = b >> 4
				}
			}
			if colorIndex == 0 {
				continue
			}

			if s.Mode == 2 {
				objWindow[screenX] = true
				continue
			}

			idx := colorIndex
			if !s.ColorMode8 {
				idx = s.PaletteBank*16 + colorIndex
			}
			color := p.paletteColor(idx, true)
			if !out[screenX].opaque || s.Priority < out[screenX].priority {
				out[screenX] = pixel{color: color, priority: s.Priority, opaque: true}
			}
		}
	}
	return out, objWindow
}
