package video

// computeWindowMask returns, for each pixel on the line, a bitmask of
// which layers are visible there: bits 0-3 BG0-3, bit 4 OBJ, bit 5
// color-special-effects. If no window is enabled at all, every layer is
// visible and blending always applies (spec.md §4.5 window behavior).
func (p *PPU) computeWindowMask(line int, objWindow [ScreenWidth]bool) [ScreenWidth]uint8 {
	var mask [ScreenWidth]uint8

	anyWindow := p.WinEnable[0] || p.WinEnable[1] || p.OBJWinEnable
	if !anyWindow {
		for x := range mask {
			mask[x] = 0x3F
		}
		return mask
	}

	for x := 0; x < ScreenWidth; x++ {
		switch {
		case p.WinEnable[0] && inWindow(p.Win[0], x, line):
			mask[x] = p.Win[0].Enable
		case p.WinEnable[1] && inWindow(p.Win[1], x, line):
			mask[x] = p.Win[1].Enable
		case p.OBJWinEnable && objWindow[x]:
			mask[x] = p.WinObjEnable
		default:
			mask[x] = p.WinOutEnable
		}
	}
	return mask
}

// inWindow reports whether (x, y) falls inside a window's rectangle.
// GBA window coordinates wrap: a right/bottom edge less than the
// left/top edge is treated as extending to the screen boundary.
func inWindow(w Window, x, y int) bool {
	left, right := int(w.Left), int(w.Right)
	top, bottom := int(w.Top), int(w.Bottom)
	if right <= left {
		right = ScreenWidth
	}
	if bottom <= top {
		bottom = ScreenHeight
	}
	return x >= left && x < right && y >= top && y < bottom
}
