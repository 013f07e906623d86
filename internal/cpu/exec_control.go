/*
 * riapyx - control transfer, flag control, halt, and port I/O
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

// jccTaken evaluates the branch condition encoded in the low nibble of a
// 0x70-0x7F Jcc opcode.
func (c *CPU) jccTaken(cond uint8) bool {
	switch cond & 0xF {
	case 0x0: // JO
		return c.getFlag(FlagOF)
	case 0x1: // JNO
		return !c.getFlag(FlagOF)
	case 0x2: // JB/JC/JNAE
		return c.getFlag(FlagCF)
	case 0x3: // JAE/JNB/JNC
		return !c.getFlag(FlagCF)
	case 0x4: // JE/JZ
		return c.getFlag(FlagZF)
	case 0x5: // JNE/JNZ
		return !c.getFlag(FlagZF)
	case 0x6: // JBE/JNA
		return c.getFlag(FlagCF) || c.getFlag(FlagZF)
	case 0x7: // JA/JNBE
		return !c.getFlag(FlagCF) && !c.getFlag(FlagZF)
	case 0x8: // JS
		return c.getFlag(FlagSF)
	case 0x9: // JNS
		return !c.getFlag(FlagSF)
	case 0xA: // JP/JPE
		return c.getFlag(FlagPF)
	case 0xB: // JNP/JPO
		return !c.getFlag(FlagPF)
	case 0xC: // JL/JNGE
		return c.getFlag(FlagSF) != c.getFlag(FlagOF)
	case 0xD: // JGE/JNL
		return c.getFlag(FlagSF) == c.getFlag(FlagOF)
	case 0xE: // JLE/JNG
		return c.getFlag(FlagZF) || c.getFlag(FlagSF) != c.getFlag(FlagOF)
	default: // JG/JNLE
		return !c.getFlag(FlagZF) && c.getFlag(FlagSF) == c.getFlag(FlagOF)
	}
}

func (c *CPU) pushFlags() { c.push16(c.Flags) }

func (c *CPU) popFlags() {
	// Bit 1 and the reserved high bits are not writable on the 8086/80186;
	// the low byte's documented flags and TF/IF/DF/OF are.
	const writable = FlagCF | FlagPF | FlagAF | FlagZF | FlagSF | FlagTF | FlagIF | FlagDF | FlagOF
	c.Flags = (c.Flags &^ writable) | (c.pop16() & writable)
}

func (c *CPU) iret() {
	c.IP = c.pop16()
	c.CS = c.pop16()
	c.popFlags()
}
