package video

// spriteDims maps (shape, size) to a sprite's (width, height) in pixels,
// the fixed table from the GBA's OAM attribute 0/1 shape+size fields.
var spriteDims = [3][4][2]uint8{
	{{8, 8}, {16, 16}, {32, 32}, {64, 64}},   // square
	{{16, 8}, {32, 8}, {32, 16}, {64, 32}},   // horizontal
	{{8, 16}, {8, 32}, {16, 32}, {32, 64}},   // vertical
}

// decodeSprites parses all 128 OAM entries into p.sprites, run once per
// frame at frame start; per-scanline rendering reads the decoded table
// rather than re-parsing OAM every dot.
func (p *PPU) decodeSprites() {
	for i := 0; i < 128; i++ {
		base := i * 8
		a0 := uint16(p.OAM[base]) | uint16(p.OAM[base+1])<<8
		a1 := uint16(p.OAM[base+2]) | uint16(p.OAM[base+3])<<8
		a2 := uint16(p.OAM[base+4]) | uint16(p.OAM[base+5])<<8

		s := &p.sprites[i]
		s.Y = int16(a0 & 0xFF)
		if s.Y >= 160 {
			s.Y -= 256 // off-screen-above wraparound
		}
		s.Affine = a0&(1<<8) != 0
		s.DoubleSize = s.Affine && a0&(1<<9) != 0
		s.Disabled = !s.Affine && a0&(1<<9) != 0
		s.Mode = uint8((a0 >> 10) & 0x3)
		s.Mosaic = a0&(1<<12) != 0
		s.ColorMode8 = a0&(1<<13) != 0
		s.Shape = uint8((a0 >> 14) & 0x3)

		s.X = int16(a1 & 0x1FF)
		if s.X >= 240 {
			s.X -= 512
		}
		if s.Affine {
			s.AffineIndex = uint8((a1 >> 9) & 0x1F)
		} else {
			s.HFlip = a1&(1<<12) != 0
			s.VFlip = a1&(1<<13) != 0
		}
		s.Size = uint8((a1 >> 14) & 0x3)

		s.TileIndex = a2 & 0x3FF
		s.Priority = uint8((a2 >> 10) & 0x3)
		s.PaletteBank = uint8((a2 >> 12) & 0xF)
	}
}

func (s *Sprite) dims() (w, h int) {
	if s.Shape > 2 {
		return 8, 8
	}
	d := spriteDims[s.Shape][s.Size]
	return int(d[0]), int(d[1])
}

// affineParams reads one of the 32 OAM affine parameter groups (PA/PB/
// PC/PD), each stored every 4th OAM entry's attribute 3 per the GBA's
// interleaved affine-parameter layout.
func (p *PPU) affineParams(index uint8) (pa, pb, pc, pd int16) {
	group := int(index) * 4
	read := func(entry int) int16 {
		base := entry*8 + 6
		return int16(uint16(p.OAM[base]) | uint16(p.OAM[base+1])<<8)
	}
	return read(group), read(group + 1), read(group + 2), read(group + 3)
}
