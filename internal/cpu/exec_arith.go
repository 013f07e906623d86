/*
 * riapyx - arithmetic and logic ALU group, string/decimal adjust ops
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

// ALU group opcodes, as encoded by bits 3-5 of 0x00-0x3D and by the
// reg field of the 0x80/0x81/0x83 immediate group.
const (
	aluADD = 0
	aluOR  = 1
	aluADC = 2
	aluSBB = 3
	aluAND = 4
	aluSUB = 5
	aluXOR = 6
	aluCMP = 7
)

func (c *CPU) carryIn() uint16 {
	if c.getFlag(FlagCF) {
		return 1
	}
	return 0
}

// aluOp8 performs one ALU group operation on 8-bit operands, sets flags,
// and returns the result to store (CMP's result is discarded by the
// caller).
func (c *CPU) aluOp8(op uint8, dst, src uint8) uint8 {
	switch op {
	case aluADD:
		res := uint16(dst) + uint16(src)
		c.addFlags8(dst, src, 0, res)
		return uint8(res)
	case aluADC:
		cy := c.carryIn()
		res := uint16(dst) + uint16(src) + cy
		c.addFlags8(dst, src, uint8(cy), res)
		return uint8(res)
	case aluSUB:
		res := uint16(dst) - uint16(src)
		c.subFlags8(dst, src, 0, res)
		return uint8(res)
	case aluSBB:
		by := c.carryIn()
		res := uint16(dst) - uint16(src) - by
		c.subFlags8(dst, src, uint8(by), res)
		return uint8(res)
	case aluCMP:
		res := uint16(dst) - uint16(src)
		c.subFlags8(dst, src, 0, res)
		return dst
	case aluAND:
		res := dst & src
		c.logicFlags8(res)
		return res
	case aluOR:
		res := dst | src
		c.logicFlags8(res)
		return res
	case aluXOR:
		res := dst ^ src
		c.logicFlags8(res)
		return res
	}
	return dst
}

func (c *CPU) aluOp16(op uint8, dst, src uint16) uint16 {
	switch op {
	case aluADD:
		res := uint32(dst) + uint32(src)
		c.addFlags16(dst, src, 0, res)
		return uint16(res)
	case aluADC:
		cy := uint32(c.carryIn())
		res := uint32(dst) + uint32(src) + cy
		c.addFlags16(dst, src, uint16(cy), res)
		return uint16(res)
	case aluSUB:
		res := uint32(dst) - uint32(src)
		c.subFlags16(dst, src, 0, res)
		return uint16(res)
	case aluSBB:
		by := uint32(c.carryIn())
		res := uint32(dst) - uint32(src) - by
		c.subFlags16(dst, src, uint16(by), res)
		return uint16(res)
	case aluCMP:
		res := uint32(dst) - uint32(src)
		c.subFlags16(dst, src, 0, res)
		return dst
	case aluAND:
		res := dst & src
		c.logicFlags16(res)
		return res
	case aluOR:
		res := dst | src
		c.logicFlags16(res)
		return res
	case aluXOR:
		res := dst ^ src
		c.logicFlags16(res)
		return res
	}
	return dst
}

// inc8/dec8/inc16/dec16 affect OF/SF/ZF/AF/PF but leave CF untouched,
// the one ALU-group exception.
func (c *CPU) inc8(v uint8) uint8 {
	cf := c.getFlag(FlagCF)
	res := c.aluOp8(aluADD, v, 1)
	c.setFlag(FlagCF, cf)
	return res
}

func (c *CPU) dec8(v uint8) uint8 {
	cf := c.getFlag(FlagCF)
	res := c.aluOp8(aluSUB, v, 1)
	c.setFlag(FlagCF, cf)
	return res
}

func (c *CPU) inc16(v uint16) uint16 {
	cf := c.getFlag(FlagCF)
	res := c.aluOp16(aluADD, v, 1)
	c.setFlag(FlagCF, cf)
	return res
}

func (c *CPU) dec16(v uint16) uint16 {
	cf := c.getFlag(FlagCF)
	res := c.aluOp16(aluSUB, v, 1)
	c.setFlag(FlagCF, cf)
	return res
}

// neg8/neg16 implement NEG: CF is 0 only when the operand is 0.
func (c *CPU) neg8(v uint8) uint8 {
	res := c.aluOp8(aluSUB, 0, v)
	c.setFlag(FlagCF, v != 0)
	return res
}

func (c *CPU) neg16(v uint16) uint16 {
	res := c.aluOp16(aluSUB, 0, v)
	c.setFlag(FlagCF, v != 0)
	return res
}

func (c *CPU) not8(v uint8) uint8   { return ^v }
func (c *CPU) not16(v uint16) uint16 { return ^v }

// mul8 computes AX = AL * v (unsigned), CF=OF=1 iff AH != 0.
func (c *CPU) mul8(v uint8) {
	res := uint16(uint8(c.AX)) * uint16(v)
	c.AX = res
	overflow := uint8(res>>8) != 0
	c.setFlag(FlagCF, overflow)
	c.setFlag(FlagOF, overflow)
}

// mul16 computes DX:AX = AX * v (unsigned), CF=OF=1 iff DX != 0.
func (c *CPU) mul16(v uint16) {
	res := uint32(c.AX) * uint32(v)
	c.AX = uint16(res)
	c.DX = uint16(res >> 16)
	overflow := c.DX != 0
	c.setFlag(FlagCF, overflow)
	c.setFlag(FlagOF, overflow)
}

func (c *CPU) imul8(v uint8) {
	res := int16(int8(uint8(c.AX))) * int16(int8(v))
	c.AX = uint16(res)
	top := uint8(uint16(res) >> 8)
	signExtended := (top == 0xFF && uint8(res)&0x80 != 0) || (top == 0 && uint8(res)&0x80 == 0)
	overflow := !signExtended
	c.setFlag(FlagCF, overflow)
	c.setFlag(FlagOF, overflow)
}

func (c *CPU) imul16(v uint16) {
	res := int32(int16(c.AX)) * int32(int16(v))
	c.AX = uint16(res)
	c.DX = uint16(uint32(res) >> 16)
	top := c.DX
	bit15 := uint16(c.AX)>>15&1 == 1
	signExtended := (top == 0xFFFF && bit15) || (top == 0 && !bit15)
	overflow := !signExtended
	c.setFlag(FlagCF, overflow)
	c.setFlag(FlagOF, overflow)
}

// div8 divides AX by v, quotient in AL, remainder in AH. Division by
// zero or a quotient that does not fit in 8 bits raises interrupt 0.
func (c *CPU) div8(v uint8) bool {
	if v == 0 {
		c.Interrupt(0)
		return false
	}
	q := c.AX / uint16(v)
	r := c.AX % uint16(v)
	if q > 0xFF {
		c.Interrupt(0)
		return false
	}
	c.AX = uint16(uint8(q)) | uint16(uint8(r))<<8
	return true
}

func (c *CPU) idiv8(v uint8) bool {
	if v == 0 {
		c.Interrupt(0)
		return false
	}
	dividend := int16(c.AX)
	divisor := int16(int8(v))
	q := dividend / divisor
	r := dividend % divisor
	if q > 127 || q < -128 {
		c.Interrupt(0)
		return false
	}
	c.AX = uint16(uint8(int8(q))) | uint16(uint8(int8(r)))<<8
	return true
}

func (c *CPU) div16(v uint16) bool {
	if v == 0 {
		c.Interrupt(0)
		return false
	}
	dividend := uint32(c.DX)<<16 | uint32(c.AX)
	q := dividend / uint32(v)
	r := dividend % uint32(v)
	if q > 0xFFFF {
		c.Interrupt(0)
		return false
	}
	c.AX = uint16(q)
	c.DX = uint16(r)
	return true
}

func (c *CPU) idiv16(v uint16) bool {
	if v == 0 {
		c.Interrupt(0)
		return false
	}
	dividend := int32(uint32(c.DX)<<16 | uint32(c.AX))
	divisor := int32(int16(v))
	q := dividend / divisor
	r := dividend % divisor
	if q > 32767 || q < -32768 {
		c.Interrupt(0)
		return false
	}
	c.AX = uint16(int16(q))
	c.DX = uint16(int16(r))
	return true
}

// aaa/aas/aam/aad/daa/das are the BCD adjust instructions, defined in
// terms of AL's low nibble and the auxiliary-carry flag exactly as the
// 8086 data sheet specifies.
func (c *CPU) aaa() {
	al := uint8(c.AX)
	if al&0xF > 9 || c.getFlag(FlagAF) {
		c.AX += 0x106
		c.setFlag(FlagAF, true)
		c.setFlag(FlagCF, true)
	} else {
		c.setFlag(FlagAF, false)
		c.setFlag(FlagCF, false)
	}
	c.AX &= 0xFF0F
}

func (c *CPU) aas() {
	al := uint8(c.AX)
	if al&0xF > 9 || c.getFlag(FlagAF) {
		c.AX -= 6
		c.AX -= 0x100
		c.setFlag(FlagAF, true)
		c.setFlag(FlagCF, true)
	} else {
		c.setFlag(FlagAF, false)
		c.setFlag(FlagCF, false)
	}
	c.AX &= 0xFF0F
}

func (c *CPU) aam(base uint8) {
	if base == 0 {
		c.Interrupt(0)
		return
	}
	al := uint8(c.AX)
	ah := al / base
	al = al % base
	c.AX = uint16(al) | uint16(ah)<<8
	c.setPZS8(al)
}

func (c *CPU) aad(base uint8) {
	al := uint8(c.AX)
	ah := uint8(c.AX >> 8)
	res := ah*base + al
	c.AX = uint16(res)
	c.setPZS8(res)
}

func (c *CPU) daa() {
	al := uint8(c.AX)
	cf := c.getFlag(FlagCF)
	af := c.getFlag(FlagAF)
	oldAL := al

	if al&0xF > 9 || af {
		carry := al > 0xF9
		al += 6
		c.setFlag(FlagAF, true)
		cf = cf || carry
	} else {
		c.setFlag(FlagAF, false)
	}
	if oldAL > 0x99 || cf {
		al += 0x60
		cf = true
	}
	c.setFlag(FlagCF, cf)
	c.AX = (c.AX &^ 0xFF) | uint16(al)
	c.setPZS8(al)
}

func (c *CPU) das() {
	al := uint8(c.AX)
	cf := c.getFlag(FlagCF)
	af := c.getFlag(FlagAF)
	oldAL := al

	if al&0xF > 9 || af {
		carry := al < 6
		al -= 6
		c.setFlag(FlagAF, true)
		cf = cf || carry
	} else {
		c.setFlag(FlagAF, false)
	}
	if oldAL > 0x99 || cf {
		al -= 0x60
		cf = true
	}
	c.setFlag(FlagCF, cf)
	c.AX = (c.AX &^ 0xFF) | uint16(al)
	c.setPZS8(al)
}
