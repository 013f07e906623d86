/*
 * riapyx - CGA/MDA-compatible 80x25x16 text video adapter
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

// Package video implements an 80x25, 16-color text-mode display adapter
// compatible with the CGA/MDA character+attribute framebuffer layout at
// physical address 0xB8000, plus the CRTC index/data port pair used to
// report and move the hardware cursor. Graphics modes are not modeled;
// every BIOS video call in this machine assumes text mode 3 (80x25x16).
package video

import "sync"

const (
	// Columns and Rows are the fixed text-mode geometry this adapter
	// presents; the BIOS never reprograms them.
	Columns = 80
	Rows    = 25

	// FrameBase is the physical address of the character+attribute
	// framebuffer.
	FrameBase = 0xB8000
	// FrameSize is 80*25 character cells, two bytes (char, attribute)
	// each.
	FrameSize = Columns * Rows * 2

	// CRTCIndexPort selects which CRTC register CRTCDataPort reads/writes.
	CRTCIndexPort = 0x3D4
	// CRTCDataPort reads or writes the register CRTCIndexPort selected.
	CRTCDataPort = 0x3D5

	regCursorHigh = 0x0E
	regCursorLow  = 0x0F
)

// DefaultAttribute is light-gray-on-black, the BIOS power-on attribute.
const DefaultAttribute = 0x07

// Adapter owns the text-mode framebuffer and CRTC cursor registers.
// Guest code addresses it either through the memory-mapped framebuffer
// (direct character writes) or through INT 10h BIOS calls that in turn
// call WriteChar/Scroll/etc; both paths go through the same state so
// they can never disagree about what's on screen.
type Adapter struct {
	mu    sync.Mutex
	cells [FrameSize]byte // interleaved char, attribute, char, attribute...

	crtcIndex  uint8
	cursorPos  uint16 // linear cell offset, not byte offset
}

// New returns a blank screen, space characters with DefaultAttribute,
// cursor at the origin.
func New() *Adapter {
	a := &Adapter{}
	a.Clear(DefaultAttribute)
	return a
}

// Clear fills every cell with a space character at the given attribute.
func (a *Adapter) Clear(attr uint8) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i := 0; i < FrameSize; i += 2 {
		a.cells[i] = ' '
		a.cells[i+1] = attr
	}
}

// ReadByte services a framebuffer byte read at the given offset from
// FrameBase.
func (a *Adapter) ReadByte(offset uint32) uint8 {
	a.mu.Lock()
	defer a.mu.Unlock()
	if offset >= FrameSize {
		return 0xFF
	}
	return a.cells[offset]
}

// WriteByte services a framebuffer byte write at the given offset from
// FrameBase.
func (a *Adapter) WriteByte(offset uint32, v uint8) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if offset >= FrameSize {
		return
	}
	a.cells[offset] = v
}

// WriteChar places a character and attribute at (row, col), the
// primitive INT 10h AH=09h/0Eh teletype and write-with-attribute
// calls build on.
func (a *Adapter) WriteChar(row, col int, ch, attr uint8) {
	if row < 0 || row >= Rows || col < 0 || col >= Columns {
		return
	}
	off := uint32(row*Columns+col) * 2
	a.mu.Lock()
	a.cells[off] = ch
	a.cells[off+1] = attr
	a.mu.Unlock()
}

// ReadChar returns the character and attribute at (row, col).
func (a *Adapter) ReadChar(row, col int) (ch, attr uint8) {
	if row < 0 || row >= Rows || col < 0 || col >= Columns {
		return 0, 0
	}
	off := uint32(row*Columns+col) * 2
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cells[off], a.cells[off+1]
}

// ScrollUp moves every row up by one, clearing the bottom row to attr,
// the primitive behind INT 10h AH=06h scroll-up and behind a newline at
// the bottom of the screen during teletype output.
func (a *Adapter) ScrollUp(attr uint8) {
	a.mu.Lock()
	defer a.mu.Unlock()
	copy(a.cells[:FrameSize-Columns*2], a.cells[Columns*2:])
	for i := FrameSize - Columns*2; i < FrameSize; i += 2 {
		a.cells[i] = ' '
		a.cells[i+1] = attr
	}
}

// SetCursor sets the hardware cursor to (row, col), the primitive
// behind INT 10h AH=02h and direct CRTC register programming.
func (a *Adapter) SetCursor(row, col int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cursorPos = uint16(row*Columns + col)
}

// Cursor returns the current cursor position as (row, col).
func (a *Adapter) Cursor() (row, col int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return int(a.cursorPos) / Columns, int(a.cursorPos) % Columns
}

// ReadCRTCIndex services a CRTCIndexPort IN.
func (a *Adapter) ReadCRTCIndex() uint8 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.crtcIndex
}

// WriteCRTCIndex services a CRTCIndexPort OUT, selecting the register
// the next CRTCDataPort access addresses.
func (a *Adapter) WriteCRTCIndex(v uint8) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.crtcIndex = v
}

// ReadCRTCData services a CRTCDataPort IN against the register
// CRTCIndexPort last selected. Only the cursor-position register pair
// is modeled; any other register reads back 0.
func (a *Adapter) ReadCRTCData() uint8 {
	a.mu.Lock()
	defer a.mu.Unlock()
	switch a.crtcIndex {
	case regCursorHigh:
		return uint8(a.cursorPos >> 8)
	case regCursorLow:
		return uint8(a.cursorPos)
	}
	return 0
}

// WriteCRTCData services a CRTCDataPort OUT against the register
// CRTCIndexPort last selected.
func (a *Adapter) WriteCRTCData(v uint8) {
	a.mu.Lock()
	defer a.mu.Unlock()
	switch a.crtcIndex {
	case regCursorHigh:
		a.cursorPos = (a.cursorPos &^ 0xFF00) | uint16(v)<<8
	case regCursorLow:
		a.cursorPos = (a.cursorPos &^ 0x00FF) | uint16(v)
	}
}

// Dump renders the screen as lines of text for the debugger and for
// tests, stripping attributes.
func (a *Adapter) Dump() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	lines := make([]string, Rows)
	for row := 0; row < Rows; row++ {
		line := make([]byte, Columns)
		for col := 0; col < Columns; col++ {
			line[col] = a.cells[(row*Columns+col)*2]
		}
		lines[row] = string(line)
	}
	return lines
}
