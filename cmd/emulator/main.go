// Command emulator is a minimal go-sdl2 host demonstrator for the core:
// it opens a window, blits next_frame()'s ARGB framebuffer, queues
// audio_callback's stereo stream, and polls keys into set_keys. It
// carries no ARM7TDMI of its own (out of the core's scope), so it drives
// step_cycle() on a fixed per-frame budget rather than in response to
// instruction execution — enough to exercise the Host interface and
// watch the PPU/APU/timers run, not to execute a ROM's program.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"
	"unsafe"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/retrocore/gba-core/core"
)

const (
	screenWidth  = 240
	screenHeight = 160

	// cyclesPerFrame is one PPU frame's worth of machine cycles: 308 dots
	// per scanline times 228 scanlines, the timing spec.md §5 describes.
	cyclesPerFrame = 308 * 228

	targetFPS = 59.7275
)

// keyMapping maps SDL2 scancodes to the GBA KEYINPUT bit each one holds
// down, matching the teacher's host-key-to-button convention.
var keyMapping = map[sdl.Scancode]uint16{
	sdl.SCANCODE_X:      1 << 0, // A
	sdl.SCANCODE_Z:      1 << 1, // B
	sdl.SCANCODE_RSHIFT: 1 << 2, // Select
	sdl.SCANCODE_RETURN: 1 << 3, // Start
	sdl.SCANCODE_RIGHT:  1 << 4,
	sdl.SCANCODE_LEFT:   1 << 5,
	sdl.SCANCODE_UP:     1 << 6,
	sdl.SCANCODE_DOWN:   1 << 7,
	sdl.SCANCODE_S:      1 << 8, // R
	sdl.SCANCODE_A:      1 << 9, // L
}

func main() {
	romPath := flag.String("rom", "", "Path to GBA ROM")
	biosPath := flag.String("bios", "", "Path to GBA BIOS image (optional)")
	savePath := flag.String("save", "", "Path to battery-save file (created on first flush if absent)")
	configPath := flag.String("config", "", "Path to a TOML settings file")
	scale := flag.Int("scale", 3, "Window scale (1-6)")
	flag.Parse()

	if *romPath == "" {
		fmt.Fprintln(os.Stderr, "Usage: emulator -rom <path-to-rom> [-bios path] [-save path] [-config settings.toml] [-scale 1-6]")
		os.Exit(1)
	}

	fc, err := loadFileConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if fc.BIOSPath != "" && *biosPath == "" {
		*biosPath = fc.BIOSPath
	}
	if fc.Scale != 0 {
		*scale = fc.Scale
	}
	forcedBackup, err := parseForcedBackup(fc.ForcedBackup)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logLevel, err := parseLogLevel(fc.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	sampleRate := fc.SampleRate
	if sampleRate == 0 {
		sampleRate = 32768
	}

	cfg := core.DefaultConfig()
	cfg.ForcedBackup = forcedBackup
	cfg.LogLevel = logLevel
	cfg.SampleRate = sampleRate

	c := core.New(cfg)
	if err := c.LoadROM(*romPath, *biosPath, *savePath); err != nil {
		fmt.Fprintln(os.Stderr, "emulator:", err)
		os.Exit(1)
	}
	defer c.Teardown()

	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_AUDIO | sdl.INIT_EVENTS); err != nil {
		fmt.Fprintln(os.Stderr, "emulator: sdl init:", err)
		os.Exit(1)
	}
	defer sdl.Quit()

	window, err := sdl.CreateWindow(
		"gba-core demonstrator",
		sdl.WINDOWPOS_CENTERED, sdl.WINDOWPOS_CENTERED,
		int32(screenWidth * *scale), int32(screenHeight * *scale),
		sdl.WINDOW_SHOWN,
	)
	if err != nil {
		fmt.Fprintln(os.Stderr, "emulator: create window:", err)
		os.Exit(1)
	}
	defer window.Destroy()

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED)
	if err != nil {
		fmt.Fprintln(os.Stderr, "emulator: create renderer:", err)
		os.Exit(1)
	}
	defer renderer.Destroy()

	texture, err := renderer.CreateTexture(sdl.PIXELFORMAT_ARGB8888, sdl.TEXTUREACCESS_STREAMING, screenWidth, screenHeight)
	if err != nil {
		fmt.Fprintln(os.Stderr, "emulator: create texture:", err)
		os.Exit(1)
	}
	defer texture.Destroy()

	if err := sdl.InitSubSystem(sdl.INIT_AUDIO); err != nil {
		fmt.Fprintln(os.Stderr, "emulator: audio init:", err)
		os.Exit(1)
	}
	audioSpec := &sdl.AudioSpec{Freq: int32(sampleRate), Format: sdl.AUDIO_S16LSB, Channels: 2, Samples: 1024}
	audioDev, err := sdl.OpenAudioDevice("", false, audioSpec, nil, 0)
	if err != nil {
		fmt.Fprintln(os.Stderr, "emulator: open audio device:", err)
		os.Exit(1)
	}
	defer sdl.CloseAudioDevice(audioDev)
	sdl.PauseAudioDevice(audioDev, false)

	frameTime := time.Duration(float64(time.Second) / targetFPS)
	audioSamples := make([]int16, int(sampleRate/60)*2)

	running := true
	for running {
		frameStart := time.Now()

		for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
			if _, ok := event.(*sdl.QuitEvent); ok {
				running = false
			}
		}

		keys := sdl.GetKeyboardState()
		var held uint16
		for scancode, bit := range keyMapping {
			if keys[scancode] != 0 {
				held |= bit
			}
		}
		c.SetKeys(^held & 0x3FF)

		for i := 0; i < cyclesPerFrame; i++ {
			c.StepCycle()
		}

		frame := c.NextFrame()
		pixels := (*[screenWidth * screenHeight * 4]byte)(unsafe.Pointer(frame))[:]
		texture.Update(nil, pixels, screenWidth*4)
		renderer.Clear()
		renderer.Copy(texture, nil, nil)
		renderer.Present()

		if queued := sdl.GetQueuedAudioSize(audioDev); queued < uint32(len(audioSamples))*2 {
			c.AudioCallback(audioSamples)
			bytes := (*[1 << 20]byte)(unsafe.Pointer(&audioSamples[0]))[: len(audioSamples)*2 : len(audioSamples)*2]
			sdl.QueueAudio(audioDev, bytes)
		}

		if elapsed := time.Since(frameStart); elapsed < frameTime {
			time.Sleep(frameTime - elapsed)
		}
	}
}
