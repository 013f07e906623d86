/*
 * riapyx - opcode dispatch
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

// execute dispatches one already-fetched opcode byte. It is the tail of
// Step, called after any legacy prefixes have been consumed. Opcodes
// this table does not recognize are architecturally undefined in the
// subset this interpreter targets and raise interrupt 6, per the
// documented unimplemented-opcode fault.
func (c *CPU) execute(opcode uint8, prefix prefixState) {
	if opcode <= 0x3F {
		if c.executeALUGroup(opcode, prefix) {
			return
		}
	}

	switch {
	case opcode >= 0x50 && opcode <= 0x57: // PUSH reg16
		c.push16(c.getReg16(opcode & 7))
		return
	case opcode >= 0x58 && opcode <= 0x5F: // POP reg16
		c.setReg16(opcode&7, c.pop16())
		return
	case opcode >= 0x70 && opcode <= 0x7F: // Jcc rel8
		rel := c.fetch8signExt()
		if c.jccTaken(opcode) {
			c.IP += rel
		}
		return
	case opcode >= 0x91 && opcode <= 0x97: // XCHG AX,reg16
		r := opcode & 7
		v := c.getReg16(r)
		c.setReg16(r, c.AX)
		c.AX = v
		return
	case opcode >= 0xB0 && opcode <= 0xB7: // MOV reg8,imm8
		c.setReg8(opcode&7, c.fetch8())
		return
	case opcode >= 0xB8 && opcode <= 0xBF: // MOV reg16,imm16
		c.setReg16(opcode&7, c.fetch16())
		return
	}

	switch opcode {
	case 0x06:
		c.push16(c.ES)
	case 0x07:
		c.ES = c.pop16()
	case 0x0E:
		c.push16(c.CS)
	case 0x16:
		c.push16(c.SS)
	case 0x17:
		c.SS = c.pop16()
	case 0x1E:
		c.push16(c.DS)
	case 0x1F:
		c.DS = c.pop16()

	case 0x80: // ALU Eb,ib
		op, reg := c.modRM(prefix.segOverride)
		imm := c.fetch8()
		v := c.readOperand8(op)
		res := c.aluOp8(reg, v, imm)
		if reg != aluCMP {
			c.writeOperand8(op, res)
		}
	case 0x81: // ALU Ev,iv
		op, reg := c.modRM(prefix.segOverride)
		imm := c.fetch16()
		v := c.readOperand16(op)
		res := c.aluOp16(reg, v, imm)
		if reg != aluCMP {
			c.writeOperand16(op, res)
		}
	case 0x83: // ALU Ev,ib (sign-extended)
		op, reg := c.modRM(prefix.segOverride)
		imm := c.fetch8signExt()
		v := c.readOperand16(op)
		res := c.aluOp16(reg, v, imm)
		if reg != aluCMP {
			c.writeOperand16(op, res)
		}

	case 0x84: // TEST Eb,Gb
		op, reg := c.modRM(prefix.segOverride)
		c.logicFlags8(c.readOperand8(op) & c.getReg8(reg))
	case 0x85: // TEST Ev,Gv
		op, reg := c.modRM(prefix.segOverride)
		c.logicFlags16(c.readOperand16(op) & c.getReg16(reg))

	case 0x86: // XCHG Eb,Gb
		op, reg := c.modRM(prefix.segOverride)
		a, b := c.readOperand8(op), c.getReg8(reg)
		c.writeOperand8(op, b)
		c.setReg8(reg, a)
	case 0x87: // XCHG Ev,Gv
		op, reg := c.modRM(prefix.segOverride)
		a, b := c.readOperand16(op), c.getReg16(reg)
		c.writeOperand16(op, b)
		c.setReg16(reg, a)

	case 0x88: // MOV Eb,Gb
		op, reg := c.modRM(prefix.segOverride)
		c.writeOperand8(op, c.getReg8(reg))
	case 0x89: // MOV Ev,Gv
		op, reg := c.modRM(prefix.segOverride)
		c.writeOperand16(op, c.getReg16(reg))
	case 0x8A: // MOV Gb,Eb
		op, reg := c.modRM(prefix.segOverride)
		c.setReg8(reg, c.readOperand8(op))
	case 0x8B: // MOV Gv,Ev
		op, reg := c.modRM(prefix.segOverride)
		c.setReg16(reg, c.readOperand16(op))
	case 0x8C: // MOV Ew,Sw
		op, reg := c.modRM(prefix.segOverride)
		c.writeOperand16(op, *c.segReg(reg))
	case 0x8D: // LEA Gv,M
		op, reg := c.modRM(prefix.segOverride)
		c.setReg16(reg, op.off)
	case 0x8E: // MOV Sw,Ew
		op, reg := c.modRM(prefix.segOverride)
		*c.segReg(reg) = c.readOperand16(op)
	case 0x8F: // POP Ev
		op, _ := c.modRM(prefix.segOverride)
		c.writeOperand16(op, c.pop16())

	case 0x90: // NOP (XCHG AX,AX)

	case 0x9A: // CALL ptr16:16
		newIP := c.fetch16()
		newCS := c.fetch16()
		c.push16(c.CS)
		c.push16(c.IP)
		c.IP = newIP
		c.CS = newCS

	case 0x9C:
		c.pushFlags()
	case 0x9D:
		c.popFlags()
	case 0x9E: // SAHF
		c.Flags = (c.Flags &^ 0xFF) | (c.AX >> 8)
	case 0x9F: // LAHF
		c.AX = (c.AX &^ 0xFF00) | (c.Flags&0xFF)<<8

	case 0xA0: // MOV AL,moffs8
		addr := c.fetch16()
		c.AX = (c.AX &^ 0xFF) | uint16(c.Bus.ReadByte(phys(c.moffsSeg(prefix), addr)))
	case 0xA1: // MOV AX,moffs16
		addr := c.fetch16()
		c.AX = c.Bus.ReadWord(phys(c.moffsSeg(prefix), addr))
	case 0xA2: // MOV moffs8,AL
		addr := c.fetch16()
		c.Bus.WriteByte(phys(c.moffsSeg(prefix), addr), uint8(c.AX))
	case 0xA3: // MOV moffs16,AX
		addr := c.fetch16()
		c.Bus.WriteWord(phys(c.moffsSeg(prefix), addr), c.AX)

	case 0xA4:
		c.repeatString(prefix, false, func() { c.movsb(c.srcSegment(prefix)) })
	case 0xA5:
		c.repeatString(prefix, false, func() { c.movsw(c.srcSegment(prefix)) })
	case 0xA6:
		c.repeatString(prefix, true, func() { c.cmpsb(c.srcSegment(prefix)) })
	case 0xA7:
		c.repeatString(prefix, true, func() { c.cmpsw(c.srcSegment(prefix)) })
	case 0xA8: // TEST AL,imm8
		c.logicFlags8(uint8(c.AX) & c.fetch8())
	case 0xA9: // TEST AX,imm16
		c.logicFlags16(c.AX & c.fetch16())
	case 0xAA:
		c.repeatString(prefix, false, c.stosb)
	case 0xAB:
		c.repeatString(prefix, false, c.stosw)
	case 0xAC:
		c.repeatString(prefix, false, func() { c.lodsb(c.srcSegment(prefix)) })
	case 0xAD:
		c.repeatString(prefix, false, func() { c.lodsw(c.srcSegment(prefix)) })
	case 0xAE:
		c.repeatString(prefix, true, c.scasb)
	case 0xAF:
		c.repeatString(prefix, true, c.scasw)

	case 0xC0: // shift Eb,ib (80186)
		op, reg := c.modRM(prefix.segOverride)
		imm := c.fetch8()
		c.writeOperand8(op, c.shiftOp8(reg, c.readOperand8(op), imm))
	case 0xC1: // shift Ev,ib (80186)
		op, reg := c.modRM(prefix.segOverride)
		imm := c.fetch8()
		c.writeOperand16(op, c.shiftOp16(reg, c.readOperand16(op), imm))
	case 0xC2: // RET imm16
		imm := c.fetch16()
		c.IP = c.pop16()
		c.SP += imm
	case 0xC3: // RET
		c.IP = c.pop16()
	case 0xC4: // LES Gv,Mp
		op, reg := c.modRM(prefix.segOverride)
		c.setReg16(reg, c.Bus.ReadWord(phys(op.seg, op.off)))
		c.ES = c.Bus.ReadWord(phys(op.seg, op.off+2))
	case 0xC5: // LDS Gv,Mp
		op, reg := c.modRM(prefix.segOverride)
		c.setReg16(reg, c.Bus.ReadWord(phys(op.seg, op.off)))
		c.DS = c.Bus.ReadWord(phys(op.seg, op.off+2))
	case 0xC6: // MOV Eb,ib
		op, _ := c.modRM(prefix.segOverride)
		c.writeOperand8(op, c.fetch8())
	case 0xC7: // MOV Ev,iv
		op, _ := c.modRM(prefix.segOverride)
		c.writeOperand16(op, c.fetch16())
	case 0xCA: // RETF imm16
		imm := c.fetch16()
		c.IP = c.pop16()
		c.CS = c.pop16()
		c.SP += imm
	case 0xCB: // RETF
		c.IP = c.pop16()
		c.CS = c.pop16()
	case 0xCC: // INT 3
		c.Interrupt(3)
	case 0xCD: // INT imm8
		c.Interrupt(c.fetch8())
	case 0xCE: // INTO
		if c.getFlag(FlagOF) {
			c.Interrupt(4)
		}
	case 0xCF:
		c.iret()

	case 0xD0: // shift Eb,1
		op, reg := c.modRM(prefix.segOverride)
		c.writeOperand8(op, c.shiftOp8(reg, c.readOperand8(op), 1))
	case 0xD1: // shift Ev,1
		op, reg := c.modRM(prefix.segOverride)
		c.writeOperand16(op, c.shiftOp16(reg, c.readOperand16(op), 1))
	case 0xD2: // shift Eb,CL
		op, reg := c.modRM(prefix.segOverride)
		c.writeOperand8(op, c.shiftOp8(reg, c.readOperand8(op), uint8(c.CX)))
	case 0xD3: // shift Ev,CL
		op, reg := c.modRM(prefix.segOverride)
		c.writeOperand16(op, c.shiftOp16(reg, c.readOperand16(op), uint8(c.CX)))
	case 0xD4: // AAM ib
		c.aam(c.fetch8())
	case 0xD5: // AAD ib
		c.aad(c.fetch8())

	case 0xE0: // LOOPNE/LOOPNZ
		c.CX--
		rel := c.fetch8signExt()
		if c.CX != 0 && !c.getFlag(FlagZF) {
			c.IP += rel
		}
	case 0xE1: // LOOPE/LOOPZ
		c.CX--
		rel := c.fetch8signExt()
		if c.CX != 0 && c.getFlag(FlagZF) {
			c.IP += rel
		}
	case 0xE2: // LOOP
		c.CX--
		rel := c.fetch8signExt()
		if c.CX != 0 {
			c.IP += rel
		}
	case 0xE3: // JCXZ
		rel := c.fetch8signExt()
		if c.CX == 0 {
			c.IP += rel
		}

	case 0xE4: // IN AL,ib
		port := uint16(c.fetch8())
		c.AX = (c.AX &^ 0xFF) | uint16(c.Bus.InByte(port))
	case 0xE5: // IN AX,ib
		port := uint16(c.fetch8())
		c.AX = c.Bus.InWord(port)
	case 0xE6: // OUT ib,AL
		port := uint16(c.fetch8())
		c.Bus.OutByte(port, uint8(c.AX))
	case 0xE7: // OUT ib,AX
		port := uint16(c.fetch8())
		c.Bus.OutWord(port, c.AX)

	case 0xE8: // CALL rel16
		rel := c.fetch16()
		ret := c.IP
		c.push16(ret)
		c.IP = ret + rel
	case 0xE9: // JMP rel16
		rel := c.fetch16()
		c.IP += rel
	case 0xEA: // JMP ptr16:16
		newIP := c.fetch16()
		newCS := c.fetch16()
		c.IP = newIP
		c.CS = newCS
	case 0xEB: // JMP rel8
		rel := c.fetch8signExt()
		c.IP += rel

	case 0xEC: // IN AL,DX
		c.AX = (c.AX &^ 0xFF) | uint16(c.Bus.InByte(c.DX))
	case 0xED: // IN AX,DX
		c.AX = c.Bus.InWord(c.DX)
	case 0xEE: // OUT DX,AL
		c.Bus.OutByte(c.DX, uint8(c.AX))
	case 0xEF: // OUT DX,AX
		c.Bus.OutWord(c.DX, c.AX)

	case 0xF4: // HLT
		c.haltedOn = true
	case 0xF5: // CMC
		c.setFlag(FlagCF, !c.getFlag(FlagCF))
	case 0xF6: // Group 1 Eb
		c.group8086F6(prefix)
	case 0xF7: // Group 1 Ev
		c.group8086F7(prefix)
	case 0xF8:
		c.setFlag(FlagCF, false)
	case 0xF9:
		c.setFlag(FlagCF, true)
	case 0xFA:
		c.setFlag(FlagIF, false)
	case 0xFB:
		c.setFlag(FlagIF, true)
	case 0xFC:
		c.setFlag(FlagDF, false)
	case 0xFD:
		c.setFlag(FlagDF, true)
	case 0xFE: // INC/DEC Eb
		op, reg := c.modRM(prefix.segOverride)
		v := c.readOperand8(op)
		if reg == 0 {
			c.writeOperand8(op, c.inc8(v))
		} else {
			c.writeOperand8(op, c.dec8(v))
		}
	case 0xFF:
		c.group8086FF(prefix)

	default:
		c.Interrupt(6) // undefined opcode
	}
}

// executeALUGroup handles opcodes 0x00-0x3F that belong to the 8-opcode
// ALU group pattern (ADD/OR/ADC/SBB/AND/SUB/XOR/CMP), plus the decimal
// adjust opcodes that sit in the same range. It returns false for the
// remaining non-ALU sub-opcodes (segment push/pop) so the caller's
// second switch handles them.
func (c *CPU) executeALUGroup(opcode uint8, prefix prefixState) bool {
	group := opcode >> 3
	sub := opcode & 7
	if sub > 5 {
		switch opcode {
		case 0x27:
			c.daa()
		case 0x2F:
			c.das()
		case 0x37:
			c.aaa()
		case 0x3F:
			c.aas()
		default:
			return false // segment push/pop (and 0x0F), handled by execute's second switch
		}
		return true
	}

	switch sub {
	case 0: // Eb,Gb
		op, reg := c.modRM(prefix.segOverride)
		res := c.aluOp8(group, c.readOperand8(op), c.getReg8(reg))
		if group != aluCMP {
			c.writeOperand8(op, res)
		}
	case 1: // Ev,Gv
		op, reg := c.modRM(prefix.segOverride)
		res := c.aluOp16(group, c.readOperand16(op), c.getReg16(reg))
		if group != aluCMP {
			c.writeOperand16(op, res)
		}
	case 2: // Gb,Eb
		op, reg := c.modRM(prefix.segOverride)
		res := c.aluOp8(group, c.getReg8(reg), c.readOperand8(op))
		if group != aluCMP {
			c.setReg8(reg, res)
		}
	case 3: // Gv,Ev
		op, reg := c.modRM(prefix.segOverride)
		res := c.aluOp16(group, c.getReg16(reg), c.readOperand16(op))
		if group != aluCMP {
			c.setReg16(reg, res)
		}
	case 4: // AL,ib
		res := c.aluOp8(group, uint8(c.AX), c.fetch8())
		if group != aluCMP {
			c.AX = (c.AX &^ 0xFF) | uint16(res)
		}
	case 5: // AX,iv
		res := c.aluOp16(group, c.AX, c.fetch16())
		if group != aluCMP {
			c.AX = res
		}
	}
	return true
}

// moffsSeg returns the segment used by the A0-A3 direct-address MOV
// forms: DS unless overridden.
func (c *CPU) moffsSeg(prefix prefixState) uint16 {
	if prefix.segOverride != nil {
		return *prefix.segOverride
	}
	return c.DS
}

// group8086F6/F7 implement the TEST/NOT/NEG/MUL/IMUL/DIV/IDIV group
// selected by the ModR/M reg field of opcode 0xF6/0xF7.
func (c *CPU) group8086F6(prefix prefixState) {
	op, reg := c.modRM(prefix.segOverride)
	v := c.readOperand8(op)
	switch reg {
	case 0, 1: // TEST Eb,ib
		c.logicFlags8(v & c.fetch8())
	case 2: // NOT
		c.writeOperand8(op, c.not8(v))
	case 3: // NEG
		c.writeOperand8(op, c.neg8(v))
	case 4:
		c.mul8(v)
	case 5:
		c.imul8(v)
	case 6:
		c.div8(v)
	case 7:
		c.idiv8(v)
	}
}

func (c *CPU) group8086F7(prefix prefixState) {
	op, reg := c.modRM(prefix.segOverride)
	v := c.readOperand16(op)
	switch reg {
	case 0, 1: // TEST Ev,iv
		c.logicFlags16(v & c.fetch16())
	case 2:
		c.writeOperand16(op, c.not16(v))
	case 3:
		c.writeOperand16(op, c.neg16(v))
	case 4:
		c.mul16(v)
	case 5:
		c.imul16(v)
	case 6:
		c.div16(v)
	case 7:
		c.idiv16(v)
	}
}

// group8086FF implements the INC/DEC/CALL/JMP/PUSH group selected by
// the ModR/M reg field of opcode 0xFF.
func (c *CPU) group8086FF(prefix prefixState) {
	op, reg := c.modRM(prefix.segOverride)
	switch reg {
	case 0:
		c.writeOperand16(op, c.inc16(c.readOperand16(op)))
	case 1:
		c.writeOperand16(op, c.dec16(c.readOperand16(op)))
	case 2: // CALL near indirect
		target := c.readOperand16(op)
		c.push16(c.IP)
		c.IP = target
	case 3: // CALL far indirect
		newIP := c.Bus.ReadWord(phys(op.seg, op.off))
		newCS := c.Bus.ReadWord(phys(op.seg, op.off+2))
		c.push16(c.CS)
		c.push16(c.IP)
		c.IP = newIP
		c.CS = newCS
	case 4: // JMP near indirect
		c.IP = c.readOperand16(op)
	case 5: // JMP far indirect
		c.IP = c.Bus.ReadWord(phys(op.seg, op.off))
		c.CS = c.Bus.ReadWord(phys(op.seg, op.off+2))
	case 6: // PUSH Ev
		c.push16(c.readOperand16(op))
	}
}
