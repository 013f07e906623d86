/*
 * riapyx - video adapter tests
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

package video

import "testing"

func TestNewScreenIsBlank(t *testing.T) {
	a := New()
	ch, attr := a.ReadChar(0, 0)
	if ch != ' ' || attr != DefaultAttribute {
		t.Fatalf("blank cell = (%q, %02X), want (' ', %02X)", ch, attr, DefaultAttribute)
	}
}

func TestWriteCharThenFramebufferReadAgree(t *testing.T) {
	a := New()
	a.WriteChar(1, 2, 'X', 0x1F)
	off := uint32((1*Columns + 2) * 2)
	if got := a.ReadByte(off); got != 'X' {
		t.Fatalf("framebuffer char = %q, want X", got)
	}
	if got := a.ReadByte(off + 1); got != 0x1F {
		t.Fatalf("framebuffer attribute = %02X, want 1F", got)
	}
}

func TestFramebufferWriteThenReadCharAgree(t *testing.T) {
	a := New()
	off := uint32((5*Columns + 10) * 2)
	a.WriteByte(off, 'Q')
	a.WriteByte(off+1, 0x4F)
	ch, attr := a.ReadChar(5, 10)
	if ch != 'Q' || attr != 0x4F {
		t.Fatalf("ReadChar = (%q, %02X), want ('Q', 4F)", ch, attr)
	}
}

func TestScrollUpShiftsRowsAndClearsBottom(t *testing.T) {
	a := New()
	a.WriteChar(1, 0, 'A', DefaultAttribute)
	a.ScrollUp(DefaultAttribute)
	ch, _ := a.ReadChar(0, 0)
	if ch != 'A' {
		t.Fatalf("row 0 after scroll = %q, want A", ch)
	}
	ch, _ = a.ReadChar(Rows-1, 0)
	if ch != ' ' {
		t.Fatalf("bottom row after scroll = %q, want space", ch)
	}
}

func TestCRTCCursorRegisterRoundTrip(t *testing.T) {
	a := New()
	a.SetCursor(3, 40) // linear = 3*80+40 = 280 = 0x0118

	a.WriteCRTCIndex(0x0E)
	hi := a.ReadCRTCData()
	a.WriteCRTCIndex(0x0F)
	lo := a.ReadCRTCData()
	if hi != 0x01 || lo != 0x18 {
		t.Fatalf("CRTC cursor regs = %02X%02X, want 0118", hi, lo)
	}

	a.WriteCRTCIndex(0x0E)
	a.WriteCRTCData(0x00)
	a.WriteCRTCIndex(0x0F)
	a.WriteCRTCData(0x05)
	row, col := a.Cursor()
	if row != 0 || col != 5 {
		t.Fatalf("cursor after CRTC write = (%d,%d), want (0,5)", row, col)
	}
}
