/*
 * riapyx - 8253-style programmable interval timer
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

// Package pit models the 8253-style programmable interval timer: three
// 16-bit counters, mode 2 (rate generator) and mode 3 (square wave)
// reload/countdown semantics, and channel 0's underflow wired to IRQ0.
package pit

// TicksPerInstruction is the implementation-chosen conversion from
// "one retired guest instruction" to "one PIT input clock", since the
// driver has no real oscillator to count against. See SPEC_FULL.md for
// the rationale: a deterministic instruction-count conversion keeps PIT
// behaviour reproducible in tests without a wall-clock race.
const TicksPerInstruction = 4

// Mode names, as programmed via the mode/command register.
const (
	ModeInterruptOnTerminalCount = 0
	ModeRateGenerator            = 2
	ModeSquareWave               = 3
)

const (
	CommandPort = 0x43
	// Channel data ports 0x40 (ch0), 0x41 (ch1), 0x42 (ch2).
	channelPortBase = 0x40
)

type channel struct {
	reload  uint16
	counter uint16
	mode    int

	// latch/load sequencing for the 16-bit access-mode LSB-then-MSB
	// protocol (access mode 3, the only one this implementation supports,
	// since every 8086-era BIOS programs channel 0 that way).
	writeLow    bool // next data-port write is the low byte
	readLow     bool
	pendingLow  uint8
	pendingRead uint8
	latched     bool
	latchValue  uint16

	gate   bool // channel 2's gate input (port 61h bit 0)
	output bool // current output line state
}

// PIT is an 8253-style timer with three channels. Channel 0 drives IRQ0
// through RaiseIRQ0 each time it underflows.
type PIT struct {
	ch       [3]channel
	RaiseIRQ0 func()
}

// New returns a PIT with all channels stopped (reload 0, mode rate
// generator) and no IRQ0 callback installed.
func New() *PIT {
	p := &PIT{}
	for i := range p.ch {
		p.ch[i].mode = ModeRateGenerator
	}
	return p
}

// WriteCommand handles a write to the mode/command register (port 0x43).
func (p *PIT) WriteCommand(v uint8) {
	sc := (v >> 6) & 0x3
	if sc == 3 {
		return // read-back command, not required by any BIOS this core targets
	}
	rw := (v >> 4) & 0x3
	mode := int((v >> 1) & 0x7)
	if mode > 5 {
		mode = mode - 4 // modes 6/7 alias 2/3 on real hardware
	}
	ch := &p.ch[sc]
	if rw == 0 {
		// Counter latch command: snapshot the current count for the next
		// one or two data-port reads.
		ch.latched = true
		ch.latchValue = ch.counter
		ch.readLow = true
		return
	}
	ch.mode = mode
	ch.writeLow = rw != 2 // mode 2 (MSB only) starts with the high byte
	ch.readLow = rw != 2
}

// WriteData handles a write to a channel's data port (0x40/0x41/0x42).
func (p *PIT) WriteData(channelIdx int, v uint8) {
	if channelIdx < 0 || channelIdx > 2 {
		return
	}
	ch := &p.ch[channelIdx]
	if ch.writeLow {
		ch.pendingLow = v
		ch.writeLow = false
		return
	}
	ch.reload = uint16(ch.pendingLow) | uint16(v)<<8
	ch.writeLow = true
	ch.counter = ch.reload
	ch.output = ch.mode != ModeInterruptOnTerminalCount
}

// ReadData handles a read from a channel's data port.
func (p *PIT) ReadData(channelIdx int) uint8 {
	if channelIdx < 0 || channelIdx > 2 {
		return 0xFF
	}
	ch := &p.ch[channelIdx]
	value := ch.counter
	if ch.latched {
		value = ch.latchValue
	}
	var b uint8
	if ch.readLow {
		b = uint8(value)
		ch.readLow = false
	} else {
		b = uint8(value >> 8)
		ch.readLow = true
		ch.latched = false
	}
	return b
}

// Port dispatch helpers for wiring into the bus: maps 0x40/0x41/0x42 to
// channel 0/1/2.
func (p *PIT) ReadPort(port uint16) uint8 {
	return p.ReadData(int(port - channelPortBase))
}

func (p *PIT) WritePort(port uint16, v uint8) {
	p.WriteData(int(port-channelPortBase), v)
}

// Advance runs ticks input clocks through every channel, raising IRQ0 on
// each channel-0 underflow. Channels 1 and 2 count down identically but
// drive no device (channel 1's historical refresh role and channel 2's
// speaker tone are both non-goals); their output state is still tracked
// so ChannelOutput(2) can answer port 61h's speaker-status bit.
func (p *PIT) Advance(ticks int) {
	for i := 0; i < ticks; i++ {
		p.tick(0)
		p.tick(1)
		p.tick(2)
	}
}

func (p *PIT) tick(idx int) {
	ch := &p.ch[idx]
	if ch.reload == 0 {
		return // unprogrammed channel does not run
	}
	if ch.counter == 0 {
		ch.counter = ch.reload
	}
	ch.counter--
	if ch.counter != 0 {
		return
	}
	switch ch.mode {
	case ModeSquareWave:
		// The output toggles on each underflow, so one full output period
		// spans two reloads, but the channel-0 interrupt fires on every
		// underflow, same as mode 2 - real 8253 mode-3 IRQ0 pacing (e.g.
		// the BIOS's 18.2 Hz tick) runs at the programmed rate, not half
		// of it.
		ch.output = !ch.output
		if idx == 0 && p.RaiseIRQ0 != nil {
			p.RaiseIRQ0()
		}
		ch.counter = ch.reload
	default: // rate generator, interrupt-on-terminal-count, and simplified others
		ch.output = true
		if idx == 0 && p.RaiseIRQ0 != nil {
			p.RaiseIRQ0()
		}
		ch.counter = ch.reload
	}
}

// ChannelOutput reports the current output line level of channel idx.
func (p *PIT) ChannelOutput(idx int) bool {
	if idx < 0 || idx > 2 {
		return false
	}
	return p.ch[idx].output
}

// SetGate sets channel 2's gate input, driven by port 61h bit 0.
func (p *PIT) SetGate(idx int, gate bool) {
	if idx < 0 || idx > 2 {
		return
	}
	p.ch[idx].gate = gate
}
