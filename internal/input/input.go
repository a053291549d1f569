// Package input implements the GBA keypad: the live-read KEYINPUT
// register and the KEYCNT keypad-interrupt condition, replacing the
// teacher's latch/shift-register controller model (spec.md §4
// peripheral list; the GBA keypad has no serial latch step, it's a
// plain active-low status word).
package input

import "github.com/retrocore/gba-core/internal/irq"

// Button identifies one of the ten GBA keypad lines by KEYINPUT bit
// index.
type Button uint16

const (
	ButtonA      Button = 1 << 0
	ButtonB      Button = 1 << 1
	ButtonSelect Button = 1 << 2
	ButtonStart  Button = 1 << 3
	ButtonRight  Button = 1 << 4
	ButtonLeft   Button = 1 << 5
	ButtonUp     Button = 1 << 6
	ButtonDown   Button = 1 << 7
	ButtonR      Button = 1 << 8
	ButtonL      Button = 1 << 9

	allButtons = 0x3FF
)

// Keypad tracks which buttons are currently held and evaluates the
// KEYCNT keypad-interrupt condition.
type Keypad struct {
	pressed uint16 // bit set = button held

	selectedKeys uint16 // KEYCNT bits 0-9
	irqEnable    bool   // KEYCNT bit 14
	requireAll   bool   // KEYCNT bit 15: true = AND, false = OR

	IRQ *irq.Controller
}

// New returns a keypad with no buttons held, wired to the shared
// interrupt controller for keypad-IRQ raises.
func New(ic *irq.Controller) *Keypad {
	return &Keypad{IRQ: ic}
}

// SetPressed updates the live state of one button from the host's input
// poll, and evaluates the keypad-IRQ condition on every change.
func (k *Keypad) SetPressed(b Button, held bool) {
	if held {
		k.pressed |= uint16(b)
	} else {
		k.pressed &^= uint16(b)
	}
	k.checkIRQ()
}

// ReadKeyInput returns the KEYINPUT register: active-low, 1 = released.
func (k *Keypad) ReadKeyInput() uint16 {
	return (^k.pressed) & allButtons
}

// SetKeyInput replaces the whole held-button set from a host-supplied
// KEYINPUT-shaped word (active-low, bits 0..9), the shape the Host
// interface's set_keys call hands over in one word rather than one
// button at a time.
func (k *Keypad) SetKeyInput(keyInput uint16) {
	k.pressed = (^keyInput) & allButtons
	k.checkIRQ()
}

// WriteKeyCnt decodes KEYCNT: which keys participate in the interrupt
// condition, whether it's enabled, and whether all selected keys must
// be held (AND) or any one of them (OR).
func (k *Keypad) WriteKeyCnt(value uint16) {
	k.selectedKeys = value & allButtons
	k.irqEnable = value&(1<<14) != 0
	k.requireAll = value&(1<<15) != 0
	k.checkIRQ()
}

// ReadKeyCnt reconstructs KEYCNT from keypad state.
func (k *Keypad) ReadKeyCnt() uint16 {
	v := k.selectedKeys
	if k.irqEnable {
		v |= 1 << 14
	}
	if k.requireAll {
		v |= 1 << 15
	}
	return v
}

// State is the persistable snapshot of the keypad: which buttons are
// currently held plus the latched KEYCNT condition.
type State struct {
	Pressed      uint16
	SelectedKeys uint16
	IRQEnable    bool
	RequireAll   bool
}

// Snapshot captures the keypad's full state.
func (k *Keypad) Snapshot() State {
	return State{
		Pressed: k.pressed, SelectedKeys: k.selectedKeys,
		IRQEnable: k.irqEnable, RequireAll: k.requireAll,
	}
}

// Restore replaces the keypad's state from a prior snapshot.
func (k *Keypad) Restore(s State) {
	k.pressed, k.selectedKeys = s.Pressed, s.SelectedKeys
	k.irqEnable, k.requireAll = s.IRQEnable, s.RequireAll
}

func (k *Keypad) checkIRQ() {
	if !k.irqEnable || k.IRQ == nil {
		return
	}
	held := k.pressed & k.selectedKeys
	var condition bool
	if k.requireAll {
		condition = held == k.selectedKeys && k.selectedKeys != 0
	} else {
		condition = held != 0
	}
	if condition {
		k.IRQ.Raise(irq.Keypad)
	}
}
