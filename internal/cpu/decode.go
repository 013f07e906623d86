/*
 * riapyx - instruction decode: prefixes, ModR/M, operand addressing
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

package cpu

// operand is a decoded ModR/M operand: either a register (isReg, regCode)
// or a memory location (segment:off), already resolved through any
// segment-override prefix.
type operand struct {
	isReg   bool
	regCode uint8
	seg     uint16
	off     uint16
}

// prefixes accumulated while decoding the current instruction.
type prefixState struct {
	segOverride *uint16 // nil if no override prefix seen
	rep         uint8   // 0 = none, 0xF2 = REPNE, 0xF3 = REP/REPE
}

// repActive reports whether a REP-family prefix preceded the opcode.
func (p prefixState) repActive() bool { return p.rep != 0 }

func isPrefixByte(b uint8) bool {
	switch b {
	case 0x26, 0x2E, 0x36, 0x3E, 0xF0, 0xF2, 0xF3:
		return true
	}
	return false
}

// consumePrefixes reads legacy prefix bytes (segment override, REP family,
// LOCK) until a non-prefix byte is found, which it leaves unread.
func (c *CPU) consumePrefixes() prefixState {
	var p prefixState
	for {
		save := c.IP
		b := c.fetch8()
		switch b {
		case 0x26:
			p.segOverride = &c.ES
		case 0x2E:
			p.segOverride = &c.CS
		case 0x36:
			p.segOverride = &c.SS
		case 0x3E:
			p.segOverride = &c.DS
		case 0xF0:
			// LOCK: accepted, has no effect on a single-core interpreter.
		case 0xF2, 0xF3:
			p.rep = b
		default:
			c.IP = save
			return p
		}
	}
}

// modRM reads one ModR/M byte and, if it encodes a memory operand, any
// displacement bytes that follow. segOverride, if non-nil, replaces the
// addressing mode's default segment.
func (c *CPU) modRM(segOverride *uint16) (op operand, regField uint8) {
	b := c.fetch8()
	mod := b >> 6
	regField = (b >> 3) & 7
	rm := b & 7

	if mod == 3 {
		return operand{isReg: true, regCode: rm}, regField
	}

	var base uint16
	seg := c.DS
	switch rm {
	case 0:
		base = c.BX + c.SI
	case 1:
		base = c.BX + c.DI
	case 2:
		base = c.BP + c.SI
		seg = c.SS
	case 3:
		base = c.BP + c.DI
		seg = c.SS
	case 4:
		base = c.SI
	case 5:
		base = c.DI
	case 6:
		if mod == 0 {
			base = c.fetch16() // direct address, no base register
		} else {
			base = c.BP
			seg = c.SS
		}
	case 7:
		base = c.BX
	}

	switch mod {
	case 1:
		base += c.fetch8signExt()
	case 2:
		base += c.fetch16()
	}

	if segOverride != nil {
		seg = *segOverride
	}
	return operand{seg: seg, off: base}, regField
}

func (c *CPU) readOperand8(op operand) uint8 {
	if op.isReg {
		return c.getReg8(op.regCode)
	}
	return c.Bus.ReadByte(phys(op.seg, op.off))
}

func (c *CPU) writeOperand8(op operand, v uint8) {
	if op.isReg {
		c.setReg8(op.regCode, v)
		return
	}
	c.Bus.WriteByte(phys(op.seg, op.off), v)
}

func (c *CPU) readOperand16(op operand) uint16 {
	if op.isReg {
		return c.getReg16(op.regCode)
	}
	return c.Bus.ReadWord(phys(op.seg, op.off))
}

func (c *CPU) writeOperand16(op operand, v uint16) {
	if op.isReg {
		c.setReg16(op.regCode, v)
		return
	}
	c.Bus.WriteWord(phys(op.seg, op.off), v)
}

// StepResult reports what happened during one Step call, for the machine
// driver's PIT-advance and trace bookkeeping.
type StepResult struct {
	CS, IP      uint16 // PC before this instruction executed
	Interrupted bool   // a vectored interrupt was delivered instead of executing
}

// Step executes exactly one instruction (including any prefixes),
// including the interrupt-delivery protocol that precedes fetch: a
// pending single-step trap from the previous instruction, then any
// unmasked PIC request, then the opcode fetch itself. It returns the
// (CS, IP) the instruction started at.
func (c *CPU) Step() StepResult {
	startCS, startIP := c.CS, c.IP

	if c.prevTrapFlag {
		c.prevTrapFlag = false
		c.deliverInterrupt(1)
		return StepResult{CS: startCS, IP: startIP, Interrupted: true}
	}

	if c.getFlag(FlagIF) && c.PIC != nil {
		if _, ok := c.PIC.PendingVector(); ok {
			vec := c.PIC.Acknowledge()
			c.haltedOn = false
			if c.Intercept == nil || !c.Intercept(vec) {
				c.deliverInterrupt(vec)
			}
			return StepResult{CS: startCS, IP: startIP, Interrupted: true}
		}
	}

	if c.haltedOn {
		// Fetch is suspended; nothing to decode until an interrupt arrives.
		c.prevTrapFlag = c.getFlag(FlagTF)
		return StepResult{CS: startCS, IP: startIP}
	}

	c.instrStart = c.IP
	c.prevTrapFlag = c.getFlag(FlagTF)

	prefix := c.consumePrefixes()
	opcode := c.fetch8()
	c.execute(opcode, prefix)

	return StepResult{CS: startCS, IP: startIP}
}
