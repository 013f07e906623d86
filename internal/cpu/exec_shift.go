/*
 * riapyx - shift and rotate group
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

// Shift/rotate group reg-field selectors, as encoded in the 0xD0-0xD3 and
// 0xC0-0xC1 opcode groups.
const (
	shROL = 0
	shROR = 1
	shRCL = 2
	shRCR = 3
	shSHL = 4 // and SAL, same operation
	shSHR = 5
	shSAR = 7
)

// shiftCount masks the count the 80186 way: unlike the 8086, which uses
// CL unmasked, the 80186 masks the count to 5 bits before applying it,
// bounding rotate/shift latency.
func shiftCount(v uint8) uint8 {
	return v & 0x1F
}

func (c *CPU) shiftOp8(op uint8, v uint8, count uint8) uint8 {
	count = shiftCount(count)
	if count == 0 {
		return v
	}
	switch op {
	case shROL:
		for i := uint8(0); i < count; i++ {
			cf := v&0x80 != 0
			v = v<<1 | boolBit(cf)
			c.setFlag(FlagCF, cf)
		}
		if count == 1 {
			c.setFlag(FlagOF, (v&0x80 != 0) != c.getFlag(FlagCF))
		}
	case shROR:
		for i := uint8(0); i < count; i++ {
			cf := v&1 != 0
			v = v>>1 | boolBit(cf)<<7
			c.setFlag(FlagCF, cf)
		}
		if count == 1 {
			c.setFlag(FlagOF, (v&0x80 != 0) != (v&0x40 != 0))
		}
	case shRCL:
		for i := uint8(0); i < count; i++ {
			cf := c.getFlag(FlagCF)
			newCF := v&0x80 != 0
			v = v<<1 | boolBit(cf)
			c.setFlag(FlagCF, newCF)
		}
		if count == 1 {
			c.setFlag(FlagOF, (v&0x80 != 0) != c.getFlag(FlagCF))
		}
	case shRCR:
		for i := uint8(0); i < count; i++ {
			cf := c.getFlag(FlagCF)
			newCF := v&1 != 0
			v = v>>1 | boolBit(cf)<<7
			c.setFlag(FlagCF, newCF)
		}
		if count == 1 {
			c.setFlag(FlagOF, (v&0x80 != 0) != (v&0x40 != 0))
		}
	case shSHL:
		var lastOut bool
		for i := uint8(0); i < count; i++ {
			lastOut = v&0x80 != 0
			v <<= 1
		}
		c.setFlag(FlagCF, lastOut)
		c.setPZS8(v)
		if count == 1 {
			c.setFlag(FlagOF, (v&0x80 != 0) != lastOut)
		}
	case shSHR:
		var lastOut bool
		msb := v & 0x80
		for i := uint8(0); i < count; i++ {
			lastOut = v&1 != 0
			v >>= 1
		}
		c.setFlag(FlagCF, lastOut)
		c.setPZS8(v)
		if count == 1 {
			c.setFlag(FlagOF, msb != 0)
		}
	case shSAR:
		var lastOut bool
		sign := v & 0x80
		for i := uint8(0); i < count; i++ {
			lastOut = v&1 != 0
			v = v>>1 | sign
		}
		c.setFlag(FlagCF, lastOut)
		c.setPZS8(v)
		if count == 1 {
			c.setFlag(FlagOF, false)
		}
	}
	return v
}

func (c *CPU) shiftOp16(op uint8, v uint16, count uint8) uint16 {
	count = shiftCount(count)
	if count == 0 {
		return v
	}
	switch op {
	case shROL:
		for i := uint8(0); i < count; i++ {
			cf := v&0x8000 != 0
			v = v<<1 | uint16(boolBit(cf))
			c.setFlag(FlagCF, cf)
		}
		if count == 1 {
			c.setFlag(FlagOF, (v&0x8000 != 0) != c.getFlag(FlagCF))
		}
	case shROR:
		for i := uint8(0); i < count; i++ {
			cf := v&1 != 0
			v = v>>1 | uint16(boolBit(cf))<<15
			c.setFlag(FlagCF, cf)
		}
		if count == 1 {
			c.setFlag(FlagOF, (v&0x8000 != 0) != (v&0x4000 != 0))
		}
	case shRCL:
		for i := uint8(0); i < count; i++ {
			cf := c.getFlag(FlagCF)
			newCF := v&0x8000 != 0
			v = v<<1 | uint16(boolBit(cf))
			c.setFlag(FlagCF, newCF)
		}
		if count == 1 {
			c.setFlag(FlagOF, (v&0x8000 != 0) != c.getFlag(FlagCF))
		}
	case shRCR:
		for i := uint8(0); i < count; i++ {
			cf := c.getFlag(FlagCF)
			newCF := v&1 != 0
			v = v>>1 | uint16(boolBit(cf))<<15
			c.setFlag(FlagCF, newCF)
		}
		if count == 1 {
			c.setFlag(FlagOF, (v&0x8000 != 0) != (v&0x4000 != 0))
		}
	case shSHL:
		var lastOut bool
		for i := uint8(0); i < count; i++ {
			lastOut = v&0x8000 != 0
			v <<= 1
		}
		c.setFlag(FlagCF, lastOut)
		c.setPZS16(v)
		if count == 1 {
			c.setFlag(FlagOF, (v&0x8000 != 0) != lastOut)
		}
	case shSHR:
		var lastOut bool
		msb := v & 0x8000
		for i := uint8(0); i < count; i++ {
			lastOut = v&1 != 0
			v >>= 1
		}
		c.setFlag(FlagCF, lastOut)
		c.setPZS16(v)
		if count == 1 {
			c.setFlag(FlagOF, msb != 0)
		}
	case shSAR:
		var lastOut bool
		sign := v & 0x8000
		for i := uint8(0); i < count; i++ {
			lastOut = v&1 != 0
			v = v>>1 | sign
		}
		c.setFlag(FlagCF, lastOut)
		c.setPZS16(v)
		if count == 1 {
			c.setFlag(FlagOF, false)
		}
	}
	return v
}

func boolBit(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
