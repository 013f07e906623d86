/*
 * riapyx - instruction disassembler for the debugger's "u" command
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

import "fmt"

// opForm names how an opcode's trailing bytes are shaped: whether it
// carries a ModR/M byte and how many immediate bytes follow it. This
// is a convenience table for the debugger, not the execution path
// (execute.go decodes the real instruction stream independently) so it
// only needs to be right about length and a readable mnemonic, not
// about every addressing-mode subtlety.
type opForm struct {
	mnemonic string
	modrm    bool
	imm      int // immediate/displacement bytes beyond any ModR/M displacement
}

var reg8Names = [8]string{"AL", "CL", "DL", "BL", "AH", "CH", "DH", "BH"}
var reg16Names = [8]string{"AX", "CX", "DX", "BX", "SP", "BP", "SI", "DI"}
var rm16Names = [8]string{"BX+SI", "BX+DI", "BP+SI", "BP+DI", "SI", "DI", "BP", "BX"}
var jccNames = [16]string{
	"JO", "JNO", "JB", "JNB", "JZ", "JNZ", "JBE", "JA",
	"JS", "JNS", "JP", "JNP", "JL", "JGE", "JLE", "JG",
}
var aluMnemonics = [8]string{"ADD", "OR", "ADC", "SBB", "AND", "SUB", "XOR", "CMP"}
var shiftMnemonics = [8]string{"ROL", "ROR", "RCL", "RCR", "SHL", "SHR", "SAL", "SAR"}
var group1Mnemonics = [8]string{"TEST", "TEST", "NOT", "NEG", "MUL", "IMUL", "DIV", "IDIV"}

var fixedForms = map[uint8]opForm{
	0x06: {"PUSH ES", false, 0}, 0x07: {"POP ES", false, 0},
	0x0E: {"PUSH CS", false, 0},
	0x16: {"PUSH SS", false, 0}, 0x17: {"POP SS", false, 0},
	0x1E: {"PUSH DS", false, 0}, 0x1F: {"POP DS", false, 0},
	0x27: {"DAA", false, 0}, 0x2F: {"DAS", false, 0},
	0x37: {"AAA", false, 0}, 0x3F: {"AAS", false, 0},
	0x84: {"TEST Eb,Gb", true, 0}, 0x85: {"TEST Ev,Gv", true, 0},
	0x86: {"XCHG Eb,Gb", true, 0}, 0x87: {"XCHG Ev,Gv", true, 0},
	0x88: {"MOV Eb,Gb", true, 0}, 0x89: {"MOV Ev,Gv", true, 0},
	0x8A: {"MOV Gb,Eb", true, 0}, 0x8B: {"MOV Gv,Ev", true, 0},
	0x8C: {"MOV Ew,Sw", true, 0}, 0x8D: {"LEA Gv,M", true, 0},
	0x8E: {"MOV Sw,Ew", true, 0}, 0x8F: {"POP Ev", true, 0},
	0x90: {"NOP", false, 0},
	0x9A: {"CALL", false, 4}, 0x9C: {"PUSHF", false, 0}, 0x9D: {"POPF", false, 0},
	0x9E: {"SAHF", false, 0}, 0x9F: {"LAHF", false, 0},
	0xA0: {"MOV AL,[moffs]", false, 2}, 0xA1: {"MOV AX,[moffs]", false, 2},
	0xA2: {"MOV [moffs],AL", false, 2}, 0xA3: {"MOV [moffs],AX", false, 2},
	0xA4: {"MOVSB", false, 0}, 0xA5: {"MOVSW", false, 0},
	0xA6: {"CMPSB", false, 0}, 0xA7: {"CMPSW", false, 0},
	0xA8: {"TEST AL,ib", false, 1}, 0xA9: {"TEST AX,iv", false, 2},
	0xAA: {"STOSB", false, 0}, 0xAB: {"STOSW", false, 0},
	0xAC: {"LODSB", false, 0}, 0xAD: {"LODSW", false, 0},
	0xAE: {"SCASB", false, 0}, 0xAF: {"SCASW", false, 0},
	0xC2: {"RET", false, 2}, 0xC3: {"RET", false, 0},
	0xC4: {"LES Gv,Mp", true, 0}, 0xC5: {"LDS Gv,Mp", true, 0},
	0xC6: {"MOV Eb,ib", true, 1}, 0xC7: {"MOV Ev,iv", true, 2},
	0xCA: {"RETF", false, 2}, 0xCB: {"RETF", false, 0},
	0xCC: {"INT 3", false, 0}, 0xCD: {"INT", false, 1}, 0xCE: {"INTO", false, 0}, 0xCF: {"IRET", false, 0},
	0xD4: {"AAM", false, 1}, 0xD5: {"AAD", false, 1},
	0xE4: {"IN AL,ib", false, 1}, 0xE5: {"IN AX,ib", false, 1},
	0xE6: {"OUT ib,AL", false, 1}, 0xE7: {"OUT ib,AX", false, 1},
	0xE8: {"CALL", false, 2}, 0xE9: {"JMP", false, 2}, 0xEA: {"JMP", false, 4}, 0xEB: {"JMP", false, 1},
	0xEC: {"IN AL,DX", false, 0}, 0xED: {"IN AX,DX", false, 0},
	0xEE: {"OUT DX,AL", false, 0}, 0xEF: {"OUT DX,AX", false, 0},
	0xF4: {"HLT", false, 0}, 0xF5: {"CMC", false, 0},
	0xF8: {"CLC", false, 0}, 0xF9: {"STC", false, 0}, 0xFA: {"CLI", false, 0}, 0xFB: {"STI", false, 0},
	0xFC: {"CLD", false, 0}, 0xFD: {"STD", false, 0},
}

// decodeOne disassembles a single instruction at seg:off and returns
// its text and length in bytes. Unknown opcodes fall back to a raw
// byte directive and advance by one byte so a stream of unrecognized
// data never stalls the debugger's disassembly window.
func (c *CPU) decodeOne(seg, off uint16) (string, uint16) {
	start := off
	segName := ""
	b := c.Bus.ReadByte(phys(seg, off))
	for b == 0x26 || b == 0x2E || b == 0x36 || b == 0x3E || b == 0xF2 || b == 0xF3 {
		switch b {
		case 0x26:
			segName = "ES:"
		case 0x2E:
			segName = "CS:"
		case 0x36:
			segName = "SS:"
		case 0x3E:
			segName = "DS:"
		case 0xF2:
			segName = "REPNE " + segName
		case 0xF3:
			segName = "REP " + segName
		}
		off++
		b = c.Bus.ReadByte(phys(seg, off))
	}
	off++

	var text string
	switch {
	case b <= 0x3D && b&0xC0 == 0 && b&7 <= 5:
		group := b >> 3
		sub := b & 7
		switch sub {
		case 4: // AL, ib
			imm := c.Bus.ReadByte(phys(seg, off))
			off++
			text = fmt.Sprintf("%s AL,%02X", aluMnemonics[group], imm)
		case 5: // AX, iv
			imm := c.Bus.ReadWord(phys(seg, off))
			off += 2
			text = fmt.Sprintf("%s AX,%04X", aluMnemonics[group], imm)
		default:
			text, off = c.decodeModrmForm(seg, off, aluMnemonics[group], sub)
		}
	case b >= 0x50 && b <= 0x57:
		text = "PUSH " + reg16Names[b-0x50]
	case b >= 0x58 && b <= 0x5F:
		text = "POP " + reg16Names[b-0x58]
	case b >= 0x40 && b <= 0x47:
		text = "INC " + reg16Names[b-0x40]
	case b >= 0x48 && b <= 0x4F:
		text = "DEC " + reg16Names[b-0x48]
	case b >= 0x70 && b <= 0x7F:
		rel := int8(c.Bus.ReadByte(phys(seg, off)))
		off++
		text = fmt.Sprintf("%s %04X", jccNames[b-0x70], uint16(int(off)+int(rel)))
	case b >= 0x91 && b <= 0x97:
		text = "XCHG AX," + reg16Names[b-0x90]
	case b >= 0xB0 && b <= 0xB7:
		imm := c.Bus.ReadByte(phys(seg, off))
		off++
		text = fmt.Sprintf("MOV %s,%02X", reg8Names[b-0xB0], imm)
	case b >= 0xB8 && b <= 0xBF:
		imm := c.Bus.ReadWord(phys(seg, off))
		off += 2
		text = fmt.Sprintf("MOV %s,%04X", reg16Names[b-0xB8], imm)
	case b == 0x80 || b == 0x81 || b == 0x83:
		modrm := c.Bus.ReadByte(phys(seg, off))
		reg := (modrm >> 3) & 7
		immLen := 1
		if b == 0x81 {
			immLen = 2
		}
		text, off = c.decodeModrmForm(seg, off, aluMnemonics[reg], 0)
		imm := uint16(c.Bus.ReadByte(phys(seg, off)))
		if immLen == 2 {
			imm = c.Bus.ReadWord(phys(seg, off))
		}
		off += uint16(immLen)
		text = fmt.Sprintf("%s,%X", text, imm)
	case b == 0xC0 || b == 0xC1 || b == 0xD0 || b == 0xD1 || b == 0xD2 || b == 0xD3:
		modrm := c.Bus.ReadByte(phys(seg, off))
		reg := (modrm >> 3) & 7
		text, off = c.decodeModrmForm(seg, off, shiftMnemonics[reg], 0)
		switch b {
		case 0xC0, 0xC1:
			imm := c.Bus.ReadByte(phys(seg, off))
			off++
			text = fmt.Sprintf("%s,%02X", text, imm)
		case 0xD2, 0xD3:
			text += ",CL"
		default:
			text += ",1"
		}
	case b == 0xF6 || b == 0xF7:
		modrm := c.Bus.ReadByte(phys(seg, off))
		reg := (modrm >> 3) & 7
		text, off = c.decodeModrmForm(seg, off, group1Mnemonics[reg], 0)
		if reg <= 1 {
			immLen := uint16(1)
			if b == 0xF7 {
				immLen = 2
			}
			imm := uint16(c.Bus.ReadByte(phys(seg, off)))
			if immLen == 2 {
				imm = c.Bus.ReadWord(phys(seg, off))
			}
			off += immLen
			text = fmt.Sprintf("%s,%X", text, imm)
		}
	case b == 0xFE || b == 0xFF:
		modrm := c.Bus.ReadByte(phys(seg, off))
		reg := (modrm >> 3) & 7
		names := [8]string{"INC", "DEC", "CALL", "CALLF", "JMP", "JMPF", "PUSH", "?"}
		text, off = c.decodeModrmForm(seg, off, names[reg], 0)
	default:
		if form, ok := fixedForms[b]; ok {
			if form.modrm {
				text, off = c.decodeModrmForm(seg, off, form.mnemonic, 0)
			} else {
				text = form.mnemonic
				if form.imm > 0 {
					text += " " + c.dumpImmediate(seg, &off, form.imm)
				}
			}
		} else {
			text = fmt.Sprintf("DB %02X", b)
		}
	}

	length := off - start
	raw := ""
	for i := uint16(0); i < length; i++ {
		raw += fmt.Sprintf("%02X ", c.Bus.ReadByte(phys(seg, start+i)))
	}
	return fmt.Sprintf("%04X:%04X  %-24s  %s%s", seg, start, raw, segName, text), length
}

func (c *CPU) dumpImmediate(seg uint16, off *uint16, n int) string {
	switch n {
	case 1:
		v := c.Bus.ReadByte(phys(seg, *off))
		*off++
		return fmt.Sprintf("%02X", v)
	case 2:
		v := c.Bus.ReadWord(phys(seg, *off))
		*off += 2
		return fmt.Sprintf("%04X", v)
	case 4:
		off16 := c.Bus.ReadWord(phys(seg, *off))
		seg16 := c.Bus.ReadWord(phys(seg, *off+2))
		*off += 4
		return fmt.Sprintf("%04X:%04X", seg16, off16)
	}
	return ""
}

// decodeModrmForm reads a ModR/M byte (and any displacement) at seg:off,
// returning a formatted "MNEMONIC dest,src"-shaped operand string and
// the offset past it. The last parameter (the ALU-group caller passes
// its sub-opcode there) is ignored.
func (c *CPU) decodeModrmForm(seg, off uint16, mnemonic string, _ uint8) (string, uint16) {
	modrm := c.Bus.ReadByte(phys(seg, off))
	off++
	mod := modrm >> 6
	reg := (modrm >> 3) & 7
	rm := modrm & 7

	var rmText string
	switch mod {
	case 3:
		rmText = reg16Names[rm]
	case 0:
		if rm == 6 {
			disp := c.Bus.ReadWord(phys(seg, off))
			off += 2
			rmText = fmt.Sprintf("[%04X]", disp)
		} else {
			rmText = "[" + rm16Names[rm] + "]"
		}
	case 1:
		disp := c.Bus.ReadByte(phys(seg, off))
		off++
		rmText = fmt.Sprintf("[%s+%02X]", rm16Names[rm], disp)
	case 2:
		disp := c.Bus.ReadWord(phys(seg, off))
		off += 2
		rmText = fmt.Sprintf("[%s+%04X]", rm16Names[rm], disp)
	}

	return fmt.Sprintf("%s %s,%s", mnemonic, reg16Names[reg], rmText), off
}

// Disassemble formats count instructions starting at seg:off, one per
// line, as the debugger's "u" command expects.
func (c *CPU) Disassemble(seg, off uint16, count int) string {
	out := ""
	for i := 0; i < count; i++ {
		line, length := c.decodeOne(seg, off)
		out += line + "\n"
		off += length
	}
	return out
}
