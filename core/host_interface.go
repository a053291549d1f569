package core

// This file implements spec.md §6's Host interface: the surface a
// front end (window, audio device, input poll) drives, never the CPU
// collaborator.

// SetKeys replaces the held-button set from a KEYINPUT-shaped word:
// bits 0..9 map to {A, B, Select, Start, Right, Left, Up, Down, R, L},
// active-low, exactly the shape the KEYINPUT register itself takes.
func (c *Core) SetKeys(keyInput uint16) {
	c.MMU.Input.SetKeyInput(keyInput)
}

// NextFrame returns the most recently completed 240x160 ARGB
// framebuffer. The returned pointer aliases the PPU's own output
// buffer; callers that need to hold onto a frame past the next
// StepCycle-driven scanline should copy it.
func (c *Core) NextFrame() *[240 * 160]uint32 {
	return &c.MMU.PPU.OutputBuffer
}

// AudioCallback fills out with interleaved stereo s16 samples (L, R,
// L, R, ...) generated on demand at the configured sample rate.
func (c *Core) AudioCallback(out []int16) {
	samples := c.MMU.APU.GenerateSamples(len(out) / 2)
	copy(out, samples)
}
