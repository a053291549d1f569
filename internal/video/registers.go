package video

// Register offsets relative to the 0x0400_0000 I/O base, matching the
// GBA's fixed LCD I/O map.
const (
	regDISPCNT  = 0x000
	regDISPSTAT = 0x004
	regVCOUNT   = 0x006
	regBG0CNT   = 0x008
	regBG1CNT   = 0x00A
	regBG2CNT   = 0x00C
	regBG3CNT   = 0x00E
	regBG0HOFS  = 0x010
	regBG0VOFS  = 0x012
	regBG1HOFS  = 0x014
	regBG1VOFS  = 0x016
	regBG2HOFS  = 0x018
	regBG2VOFS  = 0x01A
	regBG3HOFS  = 0x01C
	regBG3VOFS  = 0x01E
	regBG2PA    = 0x020
	regBG2PB    = 0x022
	regBG2PC    = 0x024
	regBG2PD    = 0x026
	regBG2XL    = 0x028
	regBG2XH    = 0x02A
	regBG2YL    = 0x02C
	regBG2YH    = 0x02E
	regBG3PA    = 0x030
	regBG3PB    = 0x032
	regBG3PC    = 0x034
	regBG3PD    = 0x036
	regBG3XL    = 0x038
	regBG3XH    = 0x03A
	regBG3YL    = 0x03C
	regBG3YH    = 0x03E
	regWIN0H    = 0x040
	regWIN1H    = 0x042
	regWIN0V    = 0x044
	regWIN1V    = 0x046
	regWININ    = 0x048
	regWINOUT   = 0x04A
	regMOSAIC   = 0x04C
	regBLDCNT   = 0x050
	regBLDALPHA = 0x052
	regBLDY     = 0x054
)

// ReadRegister16 reads one of the LCD I/O registers by its offset from
// 0x0400_0000.
func (p *PPU) ReadRegister16(offset uint32) uint16 {
	switch offset {
	case regDISPCNT:
		return p.readDISPCNT()
	case regDISPSTAT:
		return p.readDISPSTAT()
	case regVCOUNT:
		return uint16(p.currentScanline)
	case regBG0CNT:
		return p.readBGCNT(0)
	case regBG1CNT:
		return p.readBGCNT(1)
	case regBG2CNT:
		return p.readBGCNT(2)
	case regBG3CNT:
		return p.readBGCNT(3)
	case regWININ:
		return uint16(p.Win[0].Enable) | uint16(p.Win[1].Enable)<<8
	case regWINOUT:
		return uint16(p.WinOutEnable) | uint16(p.WinObjEnable)<<8
	case regBLDCNT:
		return uint16(p.BlendTarget[0]) | uint16(p.BlendTarget[1])<<8 | uint16(p.BlendMode)<<6
	case regBLDALPHA:
		return uint16(p.EVA) | uint16(p.EVB)<<8
	default:
		return 0
	}
}

// WriteRegister16 writes one of the LCD I/O registers by its offset from
// 0x0400_0000.
func (p *PPU) WriteRegister16(offset uint32, value uint16) {
	switch offset {
	case regDISPCNT:
		p.writeDISPCNT(value)
	case regDISPSTAT:
		p.writeDISPSTAT(value)
	case regBG0CNT:
		p.writeBGCNT(0, value)
	case regBG1CNT:
		p.writeBGCNT(1, value)
	case regBG2CNT:
		p.writeBGCNT(2, value)
	case regBG3CNT:
		p.writeBGCNT(3, value)
	case regBG0HOFS:
		p.BG[0].ScrollX = value & 0x1FF
	case regBG0VOFS:
		p.BG[0].ScrollY = value & 0x1FF
	case regBG1HOFS:
		p.BG[1].ScrollX = value & 0x1FF
	case regBG1VOFS:
		p.BG[1].ScrollY = value & 0x1FF
	case regBG2HOFS:
		p.BG[2].ScrollX = value & 0x1FF
	case regBG2VOFS:
		p.BG[2].ScrollY = value & 0x1FF
	case regBG3HOFS:
		p.BG[3].ScrollX = value & 0x1FF
	case regBG3VOFS:
		p.BG[3].ScrollY = value & 0x1FF
	case regBG2PA:
		p.BG[2].PA = int16(value)
	case regBG2PB:
		p.BG[2].PB = int16(value)
	case regBG2PC:
		p.BG[2].PC = int16(value)
	case regBG2PD:
		p.BG[2].PD = int16(value)
	case regBG2XL:
		p.BG[2].RefX = setAffineLow(p.BG[2].RefX, value)
		p.BG[2].curRefX = p.BG[2].RefX
	case regBG2XH:
		p.BG[2].RefX = setAffineHigh(p.BG[2].RefX, value)
		p.BG[2].curRefX = p.BG[2].RefX
	case regBG2YL:
		p.BG[2].RefY = setAffineLow(p.BG[2].RefY, value)
		p.BG[2].curRefY = p.BG[2].RefY
	case regBG2YH:
		p.BG[2].RefY = setAffineHigh(p.BG[2].RefY, value)
		p.BG[2].curRefY = p.BG[2].RefY
	case regBG3PA:
		p.BG[3].PA = int16(value)
	case regBG3PB:
		p.BG[3].PB = int16(value)
	case regBG3PC:
		p.BG[3].PC = int16(value)
	case regBG3PD:
		p.BG[3].PD = int16(value)
	case regBG3XL:
		p.BG[3].RefX = setAffineLow(p.BG[3].RefX, value)
		p.BG[3].curRefX = p.BG[3].RefX
	case regBG3XH:
		p.BG[3].RefX = setAffineHigh(p.BG[3].RefX, value)
		p.BG[3].curRefX = p.BG[3].RefX
	case regBG3YL:
		p.BG[3].RefY = setAffineLow(p.BG[3].RefY, value)
		p.BG[3].curRefY = p.BG[3].RefY
	case regBG3YH:
		p.BG[3].RefY = setAffineHigh(p.BG[3].RefY, value)
		p.BG[3].curRefY = p.BG[3].RefY
	case regWIN0H:
		p.Win[0].Left, p.Win[0].Right = uint8(value>>8), uint8(value)
	case regWIN1H:
		p.Win[1].Left, p.Win[1].Right = uint8(value>>8), uint8(value)
	case regWIN0V:
		p.Win[0].Top, p.Win[0].Bottom = uint8(value>>8), uint8(value)
	case regWIN1V:
		p.Win[1].Top, p.Win[1].Bottom = uint8(value>>8), uint8(value)
	case regWININ:
		p.Win[0].Enable = uint8(value) & 0x3F
		p.Win[1].Enable = uint8(value>>8) & 0x3F
	case regWINOUT:
		p.WinOutEnable = uint8(value) & 0x3F
		p.WinObjEnable = uint8(value>>8) & 0x3F
	case regMOSAIC:
		p.BGMosaicH, p.BGMosaicV = uint8(value)&0xF, uint8(value>>4)&0xF
		p.OBJMosaicH, p.OBJMosaicV = uint8(value>>8)&0xF, uint8(value>>12)&0xF
	case regBLDCNT:
		p.BlendTarget[0] = uint8(value) & 0x3F
		p.BlendTarget[1] = uint8(value>>8) & 0x3F
		p.BlendMode = uint8(value>>6) & 0x3
	case regBLDALPHA:
		p.EVA = uint8(value) & 0x1F
		p.EVB = uint8(value>>8) & 0x1F
	case regBLDY:
		p.EVY = uint8(value) & 0x1F
	}
}

func setAffineLow(v int32, lo uint16) int32 {
	return signExtend28((v &^ 0xFFFF) | int32(lo))
}

func setAffineHigh(v int32, hi uint16) int32 {
	return signExtend28((v & 0xFFFF) | (int32(hi&0xFFF) << 16))
}

// signExtend28 sign-extends a 28-bit two's-complement fixed-point value
// (20.8 format) stored in the low 28 bits of an int32.
func signExtend28(v int32) int32 {
	v &= 0x0FFF_FFFF
	if v&0x0800_0000 != 0 {
		v |= ^int32(0x0FFF_FFFF)
	}
	return v
}

func (p *PPU) readDISPCNT() uint16 {
	v := uint16(p.Mode)
	if p.FrameSelect != 0 {
		v |= 1 << 4
	}
	if p.HBlankFree {
		v |= 1 << 5
	}
	if p.OBJMapping1D {
		v |= 1 << 6
	}
	if p.ForceBlank {
		v |= 1 << 7
	}
	for i := 0; i < 4; i++ {
		if p.BGEnable[i] {
			v |= 1 << (8 + i)
		}
	}
	if p.OBJEnable {
		v |= 1 << 12
	}
	if p.WinEnable[0] {
		v |= 1 << 13
	}
	if p.WinEnable[1] {
		v |= 1 << 14
	}
	if p.OBJWinEnable {
		v |= 1 << 15
	}
	return v
}

func (p *PPU) writeDISPCNT(value uint16) {
	p.Mode = uint8(value & 0x7)
	p.FrameSelect = uint8((value >> 4) & 0x1)
	p.HBlankFree = value&(1<<5) != 0
	p.OBJMapping1D = value&(1<<6) != 0
	p.ForceBlank = value&(1<<7) != 0
	for i := 0; i < 4; i++ {
		p.BGEnable[i] = value&(1<<(8+i)) != 0
	}
	p.OBJEnable = value&(1<<12) != 0
	p.WinEnable[0] = value&(1<<13) != 0
	p.WinEnable[1] = value&(1<<14) != 0
	p.OBJWinEnable = value&(1<<15) != 0
}

func (p *PPU) readDISPSTAT() uint16 {
	var v uint16
	if p.VBlankFlag {
		v |= 1 << 0
	}
	if p.HBlankFlag {
		v |= 1 << 1
	}
	if p.currentScanline == int(p.VCountTarget) {
		v |= 1 << 2
	}
	if p.VBlankIRQEnable {
		v |= 1 << 3
	}
	if p.HBlankIRQEnable {
		v |= 1 << 4
	}
	if p.VCountIRQEnable {
		v |= 1 << 5
	}
	v |= uint16(p.VCountTarget) << 8
	return v
}

func (p *PPU) writeDISPSTAT(value uint16) {
	p.VBlankIRQEnable = value&(1<<3) != 0
	p.HBlankIRQEnable = value&(1<<4) != 0
	p.VCountIRQEnable = value&(1<<5) != 0
	p.VCountTarget = uint8(value >> 8)
}

func (p *PPU) readBGCNT(i int) uint16 {
	bg := &p.BG[i]
	v := uint16(bg.Priority) & 0x3
	v |= uint16(bg.CharBase) << 2
	if bg.Mosaic {
		v |= 1 << 6
	}
	if bg.ColorMode8 {
		v |= 1 << 7
	}
	v |= uint16(bg.ScreenBase) << 8
	if bg.WrapAffine {
		v |= 1 << 13
	}
	v |= uint16(bg.ScreenSize) << 14
	return v
}

func (p *PPU) writeBGCNT(i int, value uint16) {
	bg := &p.BG[i]
	bg.Priority = uint8(value) & 0x3
	bg.CharBase = uint8(value>>2) & 0x3
	bg.Mosaic = value&(1<<6) != 0
	bg.ColorMode8 = value&(1<<7) != 0
	bg.ScreenBase = uint8(value>>8) & 0x1F
	bg.WrapAffine = value&(1<<13) != 0
	bg.ScreenSize = uint8(value>>14) & 0x3
}
