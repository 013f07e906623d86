/*
 * riapyx - PC/XT keyboard interface
 *
 * Copyright (c) 2026, riapyx contributors
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

// Package keyboard implements the PC/XT keyboard interface: a 16-entry
// scan-code-set-1 queue exposed at port 0x60, with the status/ack
// latch conventionally shared with port 0x61, and IRQ1 raised when a
// scan code arrives in an empty queue.
package keyboard

import "sync"

const (
	// DataPort is where the CPU reads the most recently queued scan code.
	DataPort = 0x60
	// ControlPort carries the keyboard-enable and NMI-style ack bits
	// this interpreter does not model in detail; reads return the
	// shadow value last written.
	ControlPort = 0x61

	queueCapacity = 16
)

// Modifier bits tracked for the BIOS's INT 16h shift-status call.
const (
	ModRightShift = 1 << iota
	ModLeftShift
	ModCtrl
	ModAlt
)

// Keyboard buffers host key events as scan codes and exposes them to
// guest code through the 0x60/0x61 port pair. RaiseIRQ1, if set, is
// called when a scan code is enqueued into an empty queue, mirroring
// pit.PIT.RaiseIRQ0's
// callback-based wiring to the PIC.
type Keyboard struct {
	mu        sync.Mutex
	queue     []uint8
	lastCode  uint8
	modifiers uint8
	control   uint8

	RaiseIRQ1 func()
}

// New returns an empty keyboard.
func New() *Keyboard {
	return &Keyboard{}
}

// PushScanCode enqueues a raw scan-code-set-1 byte (make code, or break
// code with the 0x80 bit set) as produced by the host input layer, and
// raises IRQ1 if the queue was empty. A full queue drops the oldest
// entry, matching real XT keyboard controller behavior under host
// input bursts faster than the guest drains the port.
func (k *Keyboard) PushScanCode(code uint8) {
	k.mu.Lock()
	wasEmpty := len(k.queue) == 0
	if len(k.queue) >= queueCapacity {
		k.queue = k.queue[1:]
	}
	k.queue = append(k.queue, code)
	k.updateModifiers(code)
	k.mu.Unlock()

	if wasEmpty && k.RaiseIRQ1 != nil {
		k.RaiseIRQ1()
	}
}

func (k *Keyboard) updateModifiers(code uint8) {
	const (
		scLeftShift  = 0x2A
		scRightShift = 0x36
		scCtrl       = 0x1D
		scAlt        = 0x38
	)
	isMake := code&0x80 == 0
	bit := uint8(0)
	switch code &^ 0x80 {
	case scLeftShift:
		bit = ModLeftShift
	case scRightShift:
		bit = ModRightShift
	case scCtrl:
		bit = ModCtrl
	case scAlt:
		bit = ModAlt
	default:
		return
	}
	if isMake {
		k.modifiers |= bit
	} else {
		k.modifiers &^= bit
	}
}

// ReadData services a port 0x60 IN: it returns the oldest queued scan
// code and removes it, or the last code read again if the queue is
// empty (the 8042 latches the last byte transferred).
func (k *Keyboard) ReadData() uint8 {
	k.mu.Lock()
	defer k.mu.Unlock()
	if len(k.queue) == 0 {
		return k.lastCode
	}
	k.lastCode = k.queue[0]
	k.queue = k.queue[1:]
	return k.lastCode
}

// WriteData accepts a port 0x60 OUT; this interpreter does not model
// keyboard-controller commands (reset, set-leds), so writes are
// accepted and discarded.
func (k *Keyboard) WriteData(uint8) {}

// ReadControl services a port 0x61 IN.
func (k *Keyboard) ReadControl() uint8 {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.control
}

// WriteControl services a port 0x61 OUT, used by BIOS/guest code to
// toggle the keyboard-clock-enable and speaker-gate bits this
// interpreter stores but does not otherwise act on.
func (k *Keyboard) WriteControl(v uint8) {
	k.mu.Lock()
	k.control = v
	k.mu.Unlock()
}

// Modifiers returns the live shift/ctrl/alt bitmask for INT 16h AH=02h.
func (k *Keyboard) Modifiers() uint8 {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.modifiers
}

// HasPending reports whether a scan code is queued. (The BIOS's
// INT 16h AH=01h call uses Peek instead.)
func (k *Keyboard) HasPending() bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.queue) > 0
}

// Peek returns the next scan code without consuming it, and whether
// one was available.
func (k *Keyboard) Peek() (uint8, bool) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if len(k.queue) == 0 {
		return 0, false
	}
	return k.queue[0], true
}
