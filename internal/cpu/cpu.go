/*
 * riapyx - 8086/80186 instruction-set interpreter
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

// Package cpu implements the 16-bit instruction-set interpreter at the
// heart of the machine: the 8086/80186 integer ISA, the segmented
// memory model, flag semantics, and the interrupt-delivery protocol
// between instructions.
package cpu

// Bus is the memory and port address space the CPU executes against.
// *bus.Bus satisfies this interface; it is named here (rather than
// imported) so the cpu package has no dependency on the bus package,
// keeping the interpreter testable against a bare byte array.
type Bus interface {
	ReadByte(addr uint32) uint8
	WriteByte(addr uint32, v uint8)
	ReadWord(addr uint32) uint16
	WriteWord(addr uint32, v uint16)
	InByte(port uint16) uint8
	OutByte(port uint16, v uint8)
	InWord(port uint16) uint16
	OutWord(port uint16, v uint16)
}

// InterruptController is the narrow contract the CPU needs from the PIC:
// ask whether an unmasked request is pending and, if the guest has
// interrupts enabled, consume it.
type InterruptController interface {
	PendingVector() (vector uint8, ok bool)
	Acknowledge() uint8
}

// CPU is the register file plus the Bus/InterruptController it executes
// against. The zero value is not usable; construct with New.
type CPU struct {
	AX, BX, CX, DX uint16
	SP, BP, SI, DI uint16
	CS, DS, ES, SS uint16
	IP             uint16
	Flags          uint16

	Bus Bus
	PIC InterruptController

	// Intercept, if set, is consulted before any interrupt (software INT,
	// CPU-detected fault, or PIC-delivered IRQ) is vectored through the
	// IVT. Returning true means the vector was fully serviced in Go (the
	// BIOS service layer) and no guest code runs for it; the CPU simply
	// continues at the instruction after INT. Returning false falls
	// through to normal IVT delivery.
	Intercept func(vector uint8) bool

	running  bool
	trace    bool
	haltedOn bool // HLT executed, fetch suspended until an interrupt arrives

	prevTrapFlag bool // TF as observed before the instruction just completed

	// instrStart is set to the offset of the first prefix byte of the
	// instruction currently being decoded, so a suspended REP can rewind
	// IP to it.
	instrStart uint16
}

// New returns a CPU with every register zeroed, wired to bus for memory
// and port access and pic for interrupt delivery. Register
// initialization (CS:IP, SS:SP, flags) is the BIOS power-on sequence's
// job, not the CPU's.
func New(bus Bus, pic InterruptController) *CPU {
	return &CPU{Bus: bus, PIC: pic}
}

// phys computes the 20-bit physical address for segment:offset, wrapping
// modulo 1 MiB per spec.
func phys(seg, off uint16) uint32 {
	return (uint32(seg)<<4 + uint32(off)) & 0xFFFFF
}

// GetPC returns the current (CS, IP) pair.
func (c *CPU) GetPC() (cs, ip uint16) {
	return c.CS, c.IP
}

// SetPC sets (CS, IP) directly, used by the BIOS boot sequence and the
// debugger's breakpoint/jump handling.
func (c *CPU) SetPC(cs, ip uint16) {
	c.CS = cs
	c.IP = ip
}

// IsRunning reports whether the CPU is in the running state (as opposed
// to paused by the debugger).
func (c *CPU) IsRunning() bool {
	return c.running
}

// Pause transitions the CPU to the paused state; Step may still be
// invoked explicitly (single-step) while paused.
func (c *CPU) Pause() {
	c.running = false
}

// Resume transitions the CPU to the running state. trace enables
// per-step tracing for as long as the CPU remains running.
func (c *CPU) Resume(trace bool) {
	c.running = true
	c.trace = trace
}

// Tracing reports whether the current run was resumed with tracing on.
func (c *CPU) Tracing() bool {
	return c.trace
}

// Halted reports whether the CPU is halted on HLT, awaiting an interrupt.
func (c *CPU) Halted() bool {
	return c.haltedOn
}

// RewindCurrentInstruction resets IP back to the start of the
// instruction Step is currently executing (before any prefixes). BIOS
// service routines use this to implement a blocking call (e.g. "wait
// for keystroke") without actually blocking the interpreter: the
// service returns as if untaken, Step returns to the machine driver's
// loop, and the same INT re-executes on the next Step call once the
// awaited condition is satisfied.
func (c *CPU) RewindCurrentInstruction() {
	c.IP = c.instrStart
}

func (c *CPU) fetch8() uint8 {
	v := c.Bus.ReadByte(phys(c.CS, c.IP))
	c.IP++
	return v
}

func (c *CPU) fetch16() uint16 {
	lo := c.fetch8()
	hi := c.fetch8()
	return uint16(lo) | uint16(hi)<<8
}

func (c *CPU) fetch8signExt() uint16 {
	v := c.fetch8()
	return uint16(int16(int8(v)))
}

func (c *CPU) push16(v uint16) {
	c.SP -= 2
	c.Bus.WriteWord(phys(c.SS, c.SP), v)
}

func (c *CPU) pop16() uint16 {
	v := c.Bus.ReadWord(phys(c.SS, c.SP))
	c.SP += 2
	return v
}

// reg16 returns a pointer to the 16-bit general register named by a
// ModR/M-style 3-bit code: 0=AX 1=CX 2=DX 3=BX 4=SP 5=BP 6=SI 7=DI.
func (c *CPU) reg16(code uint8) *uint16 {
	switch code & 7 {
	case 0:
		return &c.AX
	case 1:
		return &c.CX
	case 2:
		return &c.DX
	case 3:
		return &c.BX
	case 4:
		return &c.SP
	case 5:
		return &c.BP
	case 6:
		return &c.SI
	default:
		return &c.DI
	}
}

func (c *CPU) getReg16(code uint8) uint16  { return *c.reg16(code) }
func (c *CPU) setReg16(code uint8, v uint16) { *c.reg16(code) = v }

// getReg8/setReg8 address the byte halves: 0=AL 1=CL 2=DL 3=BL 4=AH 5=CH
// 6=DH 7=BH.
func (c *CPU) getReg8(code uint8) uint8 {
	p := c.reg16(code & 3)
	if code&4 != 0 {
		return uint8(*p >> 8)
	}
	return uint8(*p)
}

func (c *CPU) setReg8(code uint8, v uint8) {
	p := c.reg16(code & 3)
	if code&4 != 0 {
		*p = (*p &^ 0xFF00) | uint16(v)<<8
	} else {
		*p = (*p &^ 0x00FF) | uint16(v)
	}
}

// segReg returns a pointer to the segment register named by a 2-bit
// code: 0=ES 1=CS 2=SS 3=DS.
func (c *CPU) segReg(code uint8) *uint16 {
	switch code & 3 {
	case 0:
		return &c.ES
	case 1:
		return &c.CS
	case 2:
		return &c.SS
	default:
		return &c.DS
	}
}
