/*
 * riapyx - string instruction primitives and REP-prefix iteration
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

// repeatString runs one iteration of a REP-prefixed string instruction
// and decides whether the instruction is done.
//
// Each call to Step executes at most one iteration. If CX is already 0
// on entry, the instruction is a complete no-op: no memory access, no
// register change, consistent with the boundary law that REP with a
// zero count never touches memory. Otherwise CX is decremented first
// (matching 8086 microcode order), the iteration body runs, and if
// further iterations remain IP is rewound to the start of the
// instruction (its REP prefix byte) so the next Step call re-enters
// it — naturally interleaving with the pending-interrupt check at the
// top of Step, which is what makes REP string ops restartable.
func (c *CPU) repeatString(prefix prefixState, checkZF bool, body func()) {
	if !prefix.repActive() {
		body()
		return
	}

	if c.CX == 0 {
		return
	}

	c.CX--
	body()

	done := c.CX == 0
	if checkZF {
		wantZF := prefix.rep == 0xF3 // REPE/REPZ continues while ZF=1
		if c.getFlag(FlagZF) != wantZF {
			done = true
		}
	}

	if !done {
		c.IP = c.instrStart
	}
}

func (c *CPU) stringStep() uint16 {
	if c.getFlag(FlagDF) {
		return 0xFFFF // -1, added via wraparound
	}
	return 1
}

func (c *CPU) movsb(srcSeg uint16) {
	v := c.Bus.ReadByte(phys(srcSeg, c.SI))
	c.Bus.WriteByte(phys(c.ES, c.DI), v)
	c.SI += c.stringStep()
	c.DI += c.stringStep()
}

func (c *CPU) movsw(srcSeg uint16) {
	v := c.Bus.ReadWord(phys(srcSeg, c.SI))
	c.Bus.WriteWord(phys(c.ES, c.DI), v)
	c.SI += 2 * c.stringStep()
	c.DI += 2 * c.stringStep()
}

func (c *CPU) cmpsb(srcSeg uint16) {
	a := c.Bus.ReadByte(phys(srcSeg, c.SI))
	b := c.Bus.ReadByte(phys(c.ES, c.DI))
	c.aluOp8(aluCMP, a, b)
	c.SI += c.stringStep()
	c.DI += c.stringStep()
}

func (c *CPU) cmpsw(srcSeg uint16) {
	a := c.Bus.ReadWord(phys(srcSeg, c.SI))
	b := c.Bus.ReadWord(phys(c.ES, c.DI))
	c.aluOp16(aluCMP, a, b)
	c.SI += 2 * c.stringStep()
	c.DI += 2 * c.stringStep()
}

func (c *CPU) scasb() {
	b := c.Bus.ReadByte(phys(c.ES, c.DI))
	c.aluOp8(aluCMP, uint8(c.AX), b)
	c.DI += c.stringStep()
}

func (c *CPU) scasw() {
	b := c.Bus.ReadWord(phys(c.ES, c.DI))
	c.aluOp16(aluCMP, c.AX, b)
	c.DI += 2 * c.stringStep()
}

func (c *CPU) stosb() {
	c.Bus.WriteByte(phys(c.ES, c.DI), uint8(c.AX))
	c.DI += c.stringStep()
}

func (c *CPU) stosw() {
	c.Bus.WriteWord(phys(c.ES, c.DI), c.AX)
	c.DI += 2 * c.stringStep()
}

func (c *CPU) lodsb(srcSeg uint16) {
	c.AX = (c.AX &^ 0xFF) | uint16(c.Bus.ReadByte(phys(srcSeg, c.SI)))
	c.SI += c.stringStep()
}

func (c *CPU) lodsw(srcSeg uint16) {
	c.AX = c.Bus.ReadWord(phys(srcSeg, c.SI))
	c.SI += 2 * c.stringStep()
}

// srcSegment returns DS unless a segment-override prefix overrides the
// SI-addressed side of a string instruction; DI via ES is always fixed.
func (c *CPU) srcSegment(prefix prefixState) uint16 {
	if prefix.segOverride != nil {
		return *prefix.segOverride
	}
	return c.DS
}
