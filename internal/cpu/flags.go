/*
 * riapyx - CPU flags
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

// Flag bit positions within the 16-bit flags word.
const (
	FlagCF uint16 = 1 << 0 // Carry
	FlagPF uint16 = 1 << 2 // Parity (of low 8 bits of result)
	FlagAF uint16 = 1 << 4 // Auxiliary carry (nibble carry)
	FlagZF uint16 = 1 << 6 // Zero
	FlagSF uint16 = 1 << 7 // Sign
	FlagTF uint16 = 1 << 8 // Trap (single step)
	FlagIF uint16 = 1 << 9 // Interrupt enable
	FlagDF uint16 = 1 << 10 // Direction
	FlagOF uint16 = 1 << 11 // Overflow
)

var parityTable [256]bool

func init() {
	for i := 0; i < 256; i++ {
		bits := 0
		for b := i; b != 0; b >>= 1 {
			bits += b & 1
		}
		parityTable[i] = bits%2 == 0
	}
}

func (c *CPU) getFlag(mask uint16) bool {
	return c.Flags&mask != 0
}

func (c *CPU) setFlag(mask uint16, v bool) {
	if v {
		c.Flags |= mask
	} else {
		c.Flags &^= mask
	}
}

func (c *CPU) setPZS8(result uint8) {
	c.setFlag(FlagPF, parityTable[result])
	c.setFlag(FlagZF, result == 0)
	c.setFlag(FlagSF, result&0x80 != 0)
}

func (c *CPU) setPZS16(result uint16) {
	c.setFlag(FlagPF, parityTable[uint8(result)])
	c.setFlag(FlagZF, result == 0)
	c.setFlag(FlagSF, result&0x8000 != 0)
}

// addFlags8 computes CF/OF/AF for dst+src(+carryIn) -> result, 8-bit width.
func (c *CPU) addFlags8(dst, src uint8, carryIn uint8, result uint16) {
	c.setFlag(FlagCF, result > 0xFF)
	c.setFlag(FlagAF, (dst&0xF)+(src&0xF)+carryIn > 0xF)
	signDst := dst&0x80 != 0
	signSrc := src&0x80 != 0
	signRes := uint8(result)&0x80 != 0
	c.setFlag(FlagOF, signDst == signSrc && signRes != signDst)
	c.setPZS8(uint8(result))
}

func (c *CPU) addFlags16(dst, src uint16, carryIn uint16, result uint32) {
	c.setFlag(FlagCF, result > 0xFFFF)
	c.setFlag(FlagAF, (dst&0xF)+(src&0xF)+carryIn > 0xF)
	signDst := dst&0x8000 != 0
	signSrc := src&0x8000 != 0
	signRes := uint16(result)&0x8000 != 0
	c.setFlag(FlagOF, signDst == signSrc && signRes != signDst)
	c.setPZS16(uint16(result))
}

// subFlags8 computes CF/OF/AF for dst-src(-borrowIn) -> result, 8-bit width.
func (c *CPU) subFlags8(dst, src uint8, borrowIn uint8, result uint16) {
	c.setFlag(FlagCF, int(dst)-int(src)-int(borrowIn) < 0)
	c.setFlag(FlagAF, int(dst&0xF)-int(src&0xF)-int(borrowIn) < 0)
	signDst := dst&0x80 != 0
	signSrc := src&0x80 != 0
	signRes := uint8(result)&0x80 != 0
	c.setFlag(FlagOF, signDst != signSrc && signRes != signDst)
	c.setPZS8(uint8(result))
}

func (c *CPU) subFlags16(dst, src uint16, borrowIn uint16, result uint32) {
	c.setFlag(FlagCF, int(dst)-int(src)-int(borrowIn) < 0)
	c.setFlag(FlagAF, int(dst&0xF)-int(src&0xF)-int(borrowIn) < 0)
	signDst := dst&0x8000 != 0
	signSrc := src&0x8000 != 0
	signRes := uint16(result)&0x8000 != 0
	c.setFlag(FlagOF, signDst != signSrc && signRes != signDst)
	c.setPZS16(uint16(result))
}

// logicFlags8/16 set PF/ZF/SF from result and clear CF/OF, the convention
// for AND/OR/XOR/TEST. NOT does not use them: it affects no flags.
func (c *CPU) logicFlags8(result uint8) {
	c.setFlag(FlagCF, false)
	c.setFlag(FlagOF, false)
	c.setPZS8(result)
}

func (c *CPU) logicFlags16(result uint16) {
	c.setFlag(FlagCF, false)
	c.setFlag(FlagOF, false)
	c.setPZS16(result)
}
