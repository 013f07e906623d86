/*
 * riapyx - INT 1Ah time-of-day services
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

package bios

// timeService dispatches INT 1Ah by AH. This machine has no
// battery-backed clock, so "set" calls are accepted and discarded;
// "get" returns the IRQ0-driven tick counter the same way the real
// BIOS derives wall time from its own 18.2 Hz tick.
func (b *BIOS) timeService() {
	ah := uint8(b.cpu.AX >> 8)
	switch ah {
	case 0x00: // get system time -> CX:DX = ticks, AL = midnight-rollover flag
		b.cpu.CX = uint16(b.ticks >> 16)
		b.cpu.DX = uint16(b.ticks)
		b.cpu.AX &^= 0xFF
	case 0x01: // set system time
		b.ticks = uint32(b.cpu.CX)<<16 | uint32(b.cpu.DX)
	}
}
