/*
 * riapyx - INT 16h keyboard services
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

import "github.com/nathanjackson/riapyx/internal/cpu"

// scanToASCII is the unshifted US scan-code-set-1 to ASCII table for
// the printable keys; unmapped entries return 0, matching a real
// BIOS's treatment of keys that have no ASCII representation.
var scanToASCII = map[uint8]byte{
	0x02: '1', 0x03: '2', 0x04: '3', 0x05: '4', 0x06: '5',
	0x07: '6', 0x08: '7', 0x09: '8', 0x0A: '9', 0x0B: '0',
	0x10: 'q', 0x11: 'w', 0x12: 'e', 0x13: 'r', 0x14: 't',
	0x15: 'y', 0x16: 'u', 0x17: 'i', 0x18: 'o', 0x19: 'p',
	0x1E: 'a', 0x1F: 's', 0x20: 'd', 0x21: 'f', 0x22: 'g',
	0x23: 'h', 0x24: 'j', 0x25: 'k', 0x26: 'l',
	0x2C: 'z', 0x2D: 'x', 0x2E: 'c', 0x2F: 'v', 0x30: 'b',
	0x31: 'n', 0x32: 'm',
	0x39: ' ', 0x1C: '\r', 0x0E: '\b', 0x0F: '\t', 0x01: 0x1B,
}

// keyboardService dispatches INT 16h by AH.
func (b *BIOS) keyboardService() {
	ah := uint8(b.cpu.AX >> 8)
	switch ah {
	case 0x00: // read key (blocking)
		code, ok := b.Keyboard.Peek()
		if !ok {
			b.cpu.RewindCurrentInstruction()
			return
		}
		b.Keyboard.ReadData()
		b.cpu.AX = uint16(code)<<8 | uint16(scanToASCII[code])
	case 0x01: // check for key, non-blocking
		code, ok := b.Keyboard.Peek()
		if !ok {
			b.cpu.Flags |= cpu.FlagZF
			return
		}
		b.cpu.Flags &^= cpu.FlagZF
		b.cpu.AX = uint16(code)<<8 | uint16(scanToASCII[code])
	case 0x02: // get shift flags
		b.cpu.AX = (b.cpu.AX &^ 0xFF) | uint16(b.Keyboard.Modifiers())
	}
}
