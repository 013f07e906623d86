/*
 * riapyx - INT 10h video services
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

import "github.com/nathanjackson/riapyx/internal/video"

const defaultVideoAttr = video.DefaultAttribute

// videoService dispatches INT 10h by the function code in AH. Only the
// calls a text-mode-only BIOS needs are implemented; every other
// function is a no-op, matching how real BIOSes silently ignore
// functions a given adapter does not support.
func (b *BIOS) videoService() {
	ah := uint8(b.cpu.AX >> 8)
	switch ah {
	case 0x00: // set video mode (AL) - only mode 3, 80x25x16 text, exists
		b.Video.Clear(defaultVideoAttr)
	case 0x02: // set cursor position: DH=row DL=col
		row := int(b.cpu.DX >> 8)
		col := int(uint8(b.cpu.DX))
		b.Video.SetCursor(row, col)
	case 0x03: // get cursor position -> DH=row DL=col, CX=cursor shape (unused, 0)
		row, col := b.Video.Cursor()
		b.cpu.DX = uint16(row)<<8 | uint16(uint8(col))
		b.cpu.CX = 0
	case 0x06: // scroll up window: AL=lines (0=clear), BH=attr
		attr := uint8(b.cpu.BX >> 8)
		lines := uint8(b.cpu.AX)
		if lines == 0 {
			b.Video.Clear(attr)
		} else {
			for i := uint8(0); i < lines; i++ {
				b.Video.ScrollUp(attr)
			}
		}
	case 0x09: // write char+attribute at cursor, AL=char BL=attr CX=count
		ch := uint8(b.cpu.AX)
		attr := uint8(b.cpu.BX)
		row, col := b.Video.Cursor()
		count := int(b.cpu.CX)
		for i := 0; i < count && col+i < video.Columns; i++ {
			b.Video.WriteChar(row, col+i, ch, attr)
		}
	case 0x0E: // teletype output: AL=char, advance and wrap the cursor
		b.teletypeOutput(uint8(b.cpu.AX))
	case 0x0F: // get video mode -> AL=mode, AH=columns, BH=page
		b.cpu.AX = uint16(video.Columns)<<8 | 0x03
		b.cpu.BX &^= 0xFF00
	}
}

func (b *BIOS) teletypeOutput(ch uint8) {
	row, col := b.Video.Cursor()
	switch ch {
	case '\r':
		col = 0
	case '\n':
		row++
	case '\b':
		if col > 0 {
			col--
		}
	case 0x07: // BEL: no speaker to ring, cursor does not move
	default:
		b.Video.WriteChar(row, col, ch, defaultVideoAttr)
		col++
	}
	if col >= video.Columns {
		col = 0
		row++
	}
	if row >= video.Rows {
		b.Video.ScrollUp(defaultVideoAttr)
		row = video.Rows - 1
	}
	b.Video.SetCursor(row, col)
}
