// Command debugger is a fyne register/memory/palette/OAM viewer for the
// core, adapted from the teacher's internal/ui/panels (register_viewer.go,
// memory_viewer.go, tile_viewer.go) to the GBA's register and OAM layout.
// It loads a ROM, lets the user single-step whole frames, and inspects
// the resulting state; it drives no ARM7TDMI, so "stepping" here means
// running one PPU frame's worth of step_cycle() calls, not instructions.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"os"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/retrocore/gba-core/core"
)

const cyclesPerFrame = 308 * 228

func main() {
	romPath := flag.String("rom", "", "Path to GBA ROM")
	biosPath := flag.String("bios", "", "Path to GBA BIOS image (optional)")
	flag.Parse()

	if *romPath == "" {
		fmt.Fprintln(os.Stderr, "Usage: debugger -rom <path-to-rom> [-bios path]")
		os.Exit(1)
	}

	c := core.New(core.DefaultConfig())
	if err := c.LoadROM(*romPath, *biosPath, ""); err != nil {
		fmt.Fprintln(os.Stderr, "debugger:", err)
		os.Exit(1)
	}

	a := app.New()
	w := a.NewWindow("gba-core debugger")

	registers, updateRegisters := registerViewer(c)
	memory, updateMemory := memoryViewer(c)
	palette, updatePalette := paletteViewer(c)

	updateAll := func() {
		updateRegisters()
		updateMemory()
		updatePalette()
	}
	updateAll()

	stepBtn := widget.NewButton("Step Frame", func() {
		for i := 0; i < cyclesPerFrame; i++ {
			c.StepCycle()
		}
		updateAll()
	})
	refreshBtn := widget.NewButton("Refresh", updateAll)

	tabs := container.NewAppTabs(
		container.NewTabItem("Registers", registers),
		container.NewTabItem("Memory", memory),
		container.NewTabItem("Palette/OAM", palette),
	)

	content := container.NewBorder(container.NewHBox(stepBtn, refreshBtn), nil, nil, nil, tabs)
	w.SetContent(content)
	w.Resize(fyne.NewSize(720, 560))
	w.ShowAndRun()
}

// registerViewer shows IRQ, DISPCNT/DISPSTAT and timer/DMA channel state
// as scrollable selectable text, following the teacher's RegisterViewer
// panel (a disabled MultiLineEntry over a Scroll, plus a copy button).
func registerViewer(c *core.Core) (*fyne.Container, func()) {
	text := widget.NewMultiLineEntry()
	text.Wrapping = fyne.TextWrapOff
	text.Disable()
	scroll := container.NewScroll(text)
	scroll.SetMinSize(fyne.NewSize(680, 420))

	format := func() string {
		m := c.MMU
		s := "=== Interrupt Controller ===\n"
		s += fmt.Sprintf("  IE:  0x%04X\n  IF:  0x%04X\n  IME: %v\n\n", m.IRQ.IE, m.IRQ.IF, m.IRQ.IME)

		s += "=== PPU ===\n"
		s += fmt.Sprintf("  Mode: %d  FrameSelect: %d  ForceBlank: %v\n", m.PPU.Mode, m.PPU.FrameSelect, m.PPU.ForceBlank)
		s += fmt.Sprintf("  BGEnable: %v  OBJEnable: %v\n", m.PPU.BGEnable, m.PPU.OBJEnable)
		s += fmt.Sprintf("  VBlankFlag: %v  HBlankFlag: %v  FrameCount: %d\n\n", m.PPU.VBlankFlag, m.PPU.HBlankFlag, m.PPU.FrameCount)

		s += "=== Timers ===\n"
		for i, ch := range m.Timer.Channels {
			s += fmt.Sprintf("  T%d: counter=0x%04X reload=0x%04X enable=%v irq=%v\n", i, ch.Counter, ch.Reload, ch.Enable, ch.IRQEnable)
		}

		s += "\n=== DMA ===\n"
		for i, ch := range m.DMA.Channels {
			s += fmt.Sprintf("  D%d: src=0x%08X dst=0x%08X count=%d enable=%v\n", i, ch.SrcAddr, ch.DstAddr, ch.WordCount, ch.Enable)
		}
		return s
	}

	update := func() { text.SetText(format()) }
	return container.NewVBox(widget.NewLabel("Core Registers"), scroll), update
}

// memoryViewer renders a 16-byte-per-line hex dump of the flat address
// space starting at a user-entered address, following the teacher's
// MemoryViewer panel's bank/offset-entry-plus-label convention (the GBA
// has one flat space, so a bank selector doesn't apply here).
func memoryViewer(c *core.Core) (*fyne.Container, func()) {
	addrEntry := widget.NewEntry()
	addrEntry.SetText("0x03000000")
	dump := widget.NewLabel("")
	dump.Wrapping = fyne.TextWrapOff
	scroll := container.NewScroll(dump)
	scroll.SetMinSize(fyne.NewSize(680, 420))

	update := func() {
		var base uint32
		fmt.Sscanf(addrEntry.Text, "0x%X", &base)

		text := fmt.Sprintf("Memory dump from 0x%08X\n\n", base)
		for line := 0; line < 32; line++ {
			lineAddr := base + uint32(line*16)
			text += fmt.Sprintf("%08X  ", lineAddr)
			for i := 0; i < 16; i++ {
				text += fmt.Sprintf("%02X ", c.Read8(lineAddr+uint32(i)))
			}
			text += " |"
			for i := 0; i < 16; i++ {
				v := c.Read8(lineAddr + uint32(i))
				if v >= 32 && v < 127 {
					text += string(rune(v))
				} else {
					text += "."
				}
			}
			text += "|\n"
		}
		dump.SetText(text)
	}

	goBtn := widget.NewButton("Go", update)
	controls := container.NewHBox(widget.NewLabel("Address:"), addrEntry, goBtn)
	return container.NewVBox(widget.NewLabel("Address Space"), controls, scroll), update
}

// paletteViewer rasterizes the 256-entry BG palette as a 16x16 swatch
// grid and lists the first 16 OAM sprite entries as text, grounded on the
// teacher's TileViewer's CGRAM-to-RGB555 conversion and raster approach.
func paletteViewer(c *core.Core) (*fyne.Container, func()) {
	const swatch = 20
	raster := canvas.NewRaster(func(w, h int) image.Image {
		img := image.NewRGBA(image.Rect(0, 0, w, h))
		ppu := c.MMU.PPU
		for entry := 0; entry < 256; entry++ {
			row, col := entry/16, entry%16
			addr := entry * 2
			low, high := ppu.Palette[addr], ppu.Palette[addr+1]
			r5 := uint32(low & 0x1F)
			g5 := uint32(((high & 0x03) << 3) | (low >> 5))
			b5 := uint32((high >> 2) & 0x1F)
			r, g, b := uint8(r5*255/31), uint8(g5*255/31), uint8(b5*255/31)
			for y := 0; y < swatch; y++ {
				for x := 0; x < swatch; x++ {
					img.Set(col*swatch+x, row*swatch+y, color.RGBA{r, g, b, 255})
				}
			}
		}
		return img
	})
	raster.SetMinSize(fyne.NewSize(16*swatch, 16*swatch))

	oamText := widget.NewLabel("")
	oamText.Wrapping = fyne.TextWrapOff

	update := func() {
		raster.Refresh()
		ppu := c.MMU.PPU
		text := "OAM entries 0-15 (y, x, tile, priority)\n\n"
		for i := 0; i < 16; i++ {
			base := i * 8
			attr0 := uint16(ppu.OAM[base]) | uint16(ppu.OAM[base+1])<<8
			attr1 := uint16(ppu.OAM[base+2]) | uint16(ppu.OAM[base+3])<<8
			attr2 := uint16(ppu.OAM[base+4]) | uint16(ppu.OAM[base+5])<<8
			y := attr0 & 0xFF
			x := attr1 & 0x1FF
			tile := attr2 & 0x3FF
			priority := (attr2 >> 10) & 0x3
			text += fmt.Sprintf("  #%02d  y=%3d x=%3d tile=%3d prio=%d\n", i, y, x, tile, priority)
		}
		oamText.SetText(text)
	}

	return container.NewVBox(
		widget.NewLabel("BG Palette (256 entries)"),
		raster,
		widget.NewLabel("OAM"),
		oamText,
	), update
}
