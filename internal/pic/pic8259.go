/*
 * riapyx - 8259-style programmable interrupt controller
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

// Package pic models the 8259A-style interrupt controller: eight input
// lines (IRQ0-IRQ7), request/in-service/mask registers, fixed
// lowest-number-highest priority, and the command-port protocol the CPU
// core and guest BIOS use to acknowledge and unmask interrupts.
package pic

// Ports, by PC convention: 0x20 command, 0x21 data (mask).
const (
	CommandPort = 0x20
	DataPort    = 0x21
)

// Command byte bits.
const (
	icw1 uint8 = 0x10 // bit 4 set identifies an ICW1 on the command port
	ocw3ReadIRR uint8 = 0x0A
	ocw3ReadISR uint8 = 0x0B
	eoiNonSpecific uint8 = 0x20
)

// PIC is an 8259-style interrupt controller wired to a single CPU.
// Construct it with New, which sets vector base 0x08 (IRQ0 -> INT 08h),
// matching BIOS default programming before the guest reprograms it via
// ICW2; the zero value has vector base 0.
type PIC struct {
	irr uint8 // interrupt request register: line asserted, not yet acknowledged
	isr uint8 // in-service register: acknowledged, awaiting EOI
	imr uint8 // interrupt mask register: 1 = masked

	vectorBase uint8 // from ICW2, default 0x08

	initSeq int  // 0 = idle, 1 = awaiting ICW2, 2 = awaiting ICW3, 3 = awaiting ICW4
	readISR bool // OCW3 selected ISR instead of IRR for the next status read
}

// New returns a PIC with vector base 0x08 (IRQ0..7 -> INT 0x08..0x0F),
// all lines unmasked, and no pending or in-service requests.
func New() *PIC {
	return &PIC{vectorBase: 0x08}
}

// Raise sets the request bit for line (0-7). It is idempotent: raising an
// already-pending line has no additional effect, matching real hardware
// level-triggered behaviour for a line a device holds asserted.
func (p *PIC) Raise(line int) {
	if line < 0 || line > 7 {
		return
	}
	p.irr |= 1 << uint(line)
}

// Clear clears the request bit for line without acknowledging it, for a
// device whose request condition is no longer true.
func (p *PIC) Clear(line int) {
	if line < 0 || line > 7 {
		return
	}
	p.irr &^= 1 << uint(line)
}

// pendingLine returns the lowest-numbered unmasked line that is requested
// and not already in service, or -1 if none.
func (p *PIC) pendingLine() int {
	active := p.irr &^ p.imr
	for line := 0; line < 8; line++ {
		bit := uint8(1) << uint(line)
		if active&bit == 0 {
			continue
		}
		// The highest-priority (lowest-numbered) in-service line blocks
		// itself and every lower-priority line; only a strictly
		// lower-numbered request can pre-empt it.
		if p.isr != 0 {
			highestInService := 0
			for l := 0; l < 8; l++ {
				if p.isr&(1<<uint(l)) != 0 {
					highestInService = l
					break
				}
			}
			if line >= highestInService {
				continue
			}
		}
		return line
	}
	return -1
}

// PendingVector reports whether an unmasked, not-in-service request is
// outstanding and, if so, the interrupt vector it maps to. It does not
// mutate state; the CPU core calls Acknowledge to actually accept it.
func (p *PIC) PendingVector() (uint8, bool) {
	line := p.pendingLine()
	if line < 0 {
		return 0, false
	}
	return p.vectorBase + uint8(line), true
}

// Acknowledge consumes the highest-priority pending request: clears its
// request bit and sets its in-service bit, returning its vector. Call
// only after PendingVector reported ok == true for the same state.
func (p *PIC) Acknowledge() uint8 {
	line := p.pendingLine()
	if line < 0 {
		return p.vectorBase
	}
	bit := uint8(1) << uint(line)
	p.irr &^= bit
	p.isr |= bit
	return p.vectorBase + uint8(line)
}

// WriteCommand handles a write to the command port (0x20): ICW1 to start
// initialization, or an OCW2/OCW3 once initialized.
func (p *PIC) WriteCommand(v uint8) {
	if v&icw1 != 0 {
		p.irr = 0
		p.isr = 0
		p.imr = 0
		p.initSeq = 1
		return
	}
	if p.initSeq != 0 {
		// Spurious command mid-init: ignore, matches real hardware treating
		// it as protocol error we simply don't model further.
		return
	}
	switch {
	case v&0x18 == 0x00: // OCW2: EOI family
		switch {
		case v&0x60 == 0x60:
			// Specific EOI (0x60|line): low 3 bits select the line.
			p.isr &^= 1 << uint(v&0x07)
		case v&eoiNonSpecific != 0:
			p.nonSpecificEOI()
		}
	case v&0x18 == 0x08: // OCW3
		switch v & 0x03 {
		case 0x02:
			p.readISR = false
		case 0x03:
			p.readISR = true
		}
	}
}

func (p *PIC) nonSpecificEOI() {
	for line := 0; line < 8; line++ {
		bit := uint8(1) << uint(line)
		if p.isr&bit != 0 {
			p.isr &^= bit
			return
		}
	}
}

// WriteData handles a write to the data port (0x21): ICW2/ICW3/ICW4
// during initialization, or the mask register (OCW1) afterwards.
func (p *PIC) WriteData(v uint8) {
	switch p.initSeq {
	case 1:
		p.vectorBase = v &^ 0x07 // ICW2: vector base, low 3 bits are the line number
		p.initSeq = 2
	case 2:
		p.initSeq = 3 // ICW3 accepted and discarded (no cascaded slave on this machine)
	case 3:
		p.initSeq = 0 // ICW4 accepted and discarded
	default:
		p.imr = v // OCW1
	}
}

// ReadData returns the current mask register (OCW1 readback).
func (p *PIC) ReadData() uint8 {
	return p.imr
}

// ReadCommand returns IRR or ISR depending on the last OCW3 read select,
// defaulting to IRR.
func (p *PIC) ReadCommand() uint8 {
	if p.readISR {
		return p.isr
	}
	return p.irr
}

// VectorBase returns the currently programmed ICW2 vector base, mainly
// for tests and debugger inspection.
func (p *PIC) VectorBase() uint8 {
	return p.vectorBase
}
