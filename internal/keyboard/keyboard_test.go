/*
 * riapyx - keyboard interface tests
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

package keyboard

import "testing"

func TestPushScanCodeRaisesIRQOnlyWhenQueueWasEmpty(t *testing.T) {
	k := New()
	fired := 0
	k.RaiseIRQ1 = func() { fired++ }

	k.PushScanCode(0x1E) // 'A' make code
	k.PushScanCode(0x9E) // 'A' break code
	if fired != 1 {
		t.Fatalf("IRQ1 fired %d times, want 1 (queue was non-empty for the second push)", fired)
	}
}

func TestReadDataDrainsInFIFOOrder(t *testing.T) {
	k := New()
	k.PushScanCode(0x1E)
	k.PushScanCode(0x1F)
	if got := k.ReadData(); got != 0x1E {
		t.Fatalf("first read = %02X, want 1E", got)
	}
	if got := k.ReadData(); got != 0x1F {
		t.Fatalf("second read = %02X, want 1F", got)
	}
}

func TestReadDataOnEmptyQueueLatchesLastByte(t *testing.T) {
	k := New()
	k.PushScanCode(0x2A)
	k.ReadData()
	if got := k.ReadData(); got != 0x2A {
		t.Fatalf("read on empty queue = %02X, want latched 2A", got)
	}
}

func TestShiftModifierTracksMakeAndBreak(t *testing.T) {
	k := New()
	k.PushScanCode(0x2A) // left shift make
	if k.Modifiers()&ModLeftShift == 0 {
		t.Fatal("left shift should be set after make code")
	}
	k.PushScanCode(0xAA) // left shift break
	if k.Modifiers()&ModLeftShift != 0 {
		t.Fatal("left shift should clear after break code")
	}
}

func TestQueueOverflowDropsOldest(t *testing.T) {
	k := New()
	for i := 0; i < queueCapacity+2; i++ {
		k.PushScanCode(uint8(i))
	}
	if got := k.ReadData(); got != 2 {
		t.Fatalf("oldest surviving code = %d, want 2 (first two dropped)", got)
	}
}
