/*
 * riapyx - interrupt delivery
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

// IVTBase is the physical address of the interrupt vector table.
const IVTBase = 0x00000

// vectorAddr returns the physical address of vector n's (offset,segment)
// pair in the IVT.
func vectorAddr(n uint8) uint32 {
	return IVTBase + uint32(n)*4
}

// deliverInterrupt pushes flags, CS, IP, clears IF and TF, and loads
// CS:IP from vector n's IVT entry. This is the shared tail of software
// INT, hardware IRQ delivery, and CPU-detected exceptions.
func (c *CPU) deliverInterrupt(n uint8) {
	c.push16(c.Flags)
	c.push16(c.CS)
	c.push16(c.IP)
	c.setFlag(FlagIF, false)
	c.setFlag(FlagTF, false)
	addr := vectorAddr(n)
	offset := c.Bus.ReadWord(addr)
	segment := c.Bus.ReadWord(addr + 2)
	c.IP = offset
	c.CS = segment
}

// Interrupt delivers interrupt n immediately, per the documented
// push-flags/CS/IP, clear-IF/TF, load-from-vector protocol. Exposed for
// BIOS/device code that raises a software-visible fault (e.g. divide by
// zero) outside of Step's own decode loop.
func (c *CPU) Interrupt(n uint8) {
	if c.Intercept != nil && c.Intercept(n) {
		return
	}
	c.deliverInterrupt(n)
}

// PostExternalIRQ is a convenience the machine driver never needs for the
// PIC path (Step consults the PIC directly) but which device code can use
// to wake a halted CPU deterministically in tests.
func (c *CPU) PostExternalIRQ() {
	c.haltedOn = false
}
