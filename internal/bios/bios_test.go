/*
 * riapyx - BIOS service layer tests
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

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/nathanjackson/riapyx/internal/bus"
	"github.com/nathanjackson/riapyx/internal/cpu"
	"github.com/nathanjackson/riapyx/internal/disk"
	"github.com/nathanjackson/riapyx/internal/keyboard"
	"github.com/nathanjackson/riapyx/internal/video"
)

type noPIC struct{}

func (noPIC) PendingVector() (uint8, bool) { return 0, false }
func (noPIC) Acknowledge() uint8           { return 0 }

func newTestMachine(t *testing.T) (*cpu.CPU, *BIOS) {
	t.Helper()
	b := bus.New()
	v := video.New()
	k := keyboard.New()

	fpath := filepath.Join(t.TempDir(), "floppy.img")
	image := make([]byte, 1440*1024)
	copy(image, bytes.Repeat([]byte{0x90}, 510)) // boot sector full of NOPs
	image[510], image[511] = 0x55, 0xAA          // followed by the boot signature
	if err := os.WriteFile(fpath, image, 0o600); err != nil {
		t.Fatal(err)
	}
	fd, err := disk.OpenFloppy(fpath, false)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { fd.Close() })

	bi := New(b, v, k, &disk.Controller{Floppy: fd})
	c := cpu.New(b, noPIC{})
	bi.Install(c)
	return c, bi
}

func TestInt10hTeletypeAdvancesCursor(t *testing.T) {
	c, bi := newTestMachine(t)
	c.AX = 0x0E41 // AH=0Eh, AL='A'
	if !bi.handle(0x10) {
		t.Fatal("INT 10h should be intercepted")
	}
	ch, _ := bi.Video.ReadChar(0, 0)
	if ch != 'A' {
		t.Fatalf("screen[0][0] = %q, want A", ch)
	}
	row, col := bi.Video.Cursor()
	if row != 0 || col != 1 {
		t.Fatalf("cursor = (%d,%d), want (0,1)", row, col)
	}
}

func TestInt13hReadSectorTransfersIntoGuestMemory(t *testing.T) {
	c, bi := newTestMachine(t)
	c.AX = 0x0201 // AH=02h read, AL=1 sector
	c.CX = 0x0001 // cylinder 0, sector 1
	c.DX = 0x0000 // head 0, drive 0 (floppy)
	c.ES, c.BX = 0x1000, 0x0000

	if !bi.handle(0x13) {
		t.Fatal("INT 13h should be intercepted")
	}
	if c.Flags&cpu.FlagCF != 0 {
		t.Fatal("CF should be clear on a successful read")
	}
	if uint8(c.AX) != 1 {
		t.Fatalf("AL = %d, want 1 sector transferred", uint8(c.AX))
	}
	got := bi.Bus.ReadByte(0x10000)
	if got != 0x90 {
		t.Fatalf("guest memory at 1000:0000 = %02X, want 90 (boot sector NOP fill)", got)
	}
}

func TestInt16hReadKeyBlocksByRewindingUntilKeyAvailable(t *testing.T) {
	c, bi := newTestMachine(t)
	c.CS, c.IP = 0x0100, 0x0010
	c.AX = 0x0000 // AH=00h read key
	bi.Bus.WriteBytes(0x1010, []byte{0xCD, 0x16}) // INT 16h at 0100:0010
	c.Step()                                      // makes 0100:0010 the current instruction

	if !bi.handle(0x16) {
		t.Fatal("INT 16h should be intercepted")
	}
	if c.IP != 0x0010 {
		t.Fatalf("IP = %04X, want rewound to 0010 with no key pending", c.IP)
	}

	bi.Keyboard.PushScanCode(0x1E) // 'a' make code
	bi.handle(0x16)
	if uint8(c.AX) != 'a' {
		t.Fatalf("AL = %q, want 'a'", uint8(c.AX))
	}
}

func TestInt19hBootstrapLoadsSectorAndSetsCSIP(t *testing.T) {
	c, bi := newTestMachine(t)
	c.DX = 0x0000 // boot from floppy 0
	if !bi.handle(0x19) {
		t.Fatal("INT 19h should be intercepted")
	}
	if c.Flags&cpu.FlagCF != 0 {
		t.Fatal("bootstrap should succeed against the prepared floppy image")
	}
	cs, ip := c.GetPC()
	if cs != 0 || ip != 0x7C00 {
		t.Fatalf("CS:IP = %04X:%04X, want 0000:7C00", cs, ip)
	}
	if got := bi.Bus.ReadByte(0x7C00); got != 0x90 {
		t.Fatalf("boot sector byte at 0000:7C00 = %02X, want 90", got)
	}
}

func TestIRQ0TickCounterIncrementsAndSendsEOI(t *testing.T) {
	c, bi := newTestMachine(t)
	if !bi.handle(0x08) {
		t.Fatal("IRQ0's vector 8 should be intercepted")
	}
	if bi.ticks != 1 {
		t.Fatalf("ticks = %d, want 1", bi.ticks)
	}
	_ = c
}
