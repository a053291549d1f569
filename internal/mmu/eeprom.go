package mmu

// eepromWriteBit accumulates one bit of a DMA3 bitstream transfer
// (spec.md §4.2): each halfword Write16 into the EEPROM window carries
// exactly one meaningful bit in its low bit. Rather than guess where a
// request/write stream ends from its content, the expected length is
// read once, at the start of each stream, from DMA channel 3's own
// word-count register — the same value the game already set up to
// describe exactly how many halfwords this transfer moves.
func (m *MMU) eepromWriteBit(bit uint8) {
	if len(m.eepromWriteBits) == 0 {
		expected := int(m.DMA.WordCount(3))
		if expected <= 0 {
			expected = 1
		}
		m.eepromExpectedBits = expected
	}
	m.eepromWriteBits = append(m.eepromWriteBits, bit)
	if len(m.eepromWriteBits) < m.eepromExpectedBits {
		return
	}

	stream := m.eepromWriteBits
	m.eepromWriteBits = nil
	if m.EEPROM == nil {
		return
	}
	m.EEPROM.HandleStream(stream)

	if len(stream) >= 2 && stream[0] == 1 && stream[1] == 0 {
		m.eepromReadBits = m.EEPROM.ReadData()
		m.eepromReadPos = 0
	}
}

// eepromReadBit returns the next bit of the most recent read response,
// one per Read16 of the EEPROM window, matching the 68-bit
// dummy-then-data layout backup.EEPROM.ReadData produces.
func (m *MMU) eepromReadBit() uint16 {
	if m.eepromReadPos >= len(m.eepromReadBits) {
		return 0
	}
	bit := m.eepromReadBits[m.eepromReadPos]
	m.eepromReadPos++
	return uint16(bit)
}
