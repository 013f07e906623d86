/*
 * riapyx - debugger command grammar tests
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

package console

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nathanjackson/riapyx/internal/bios"
	"github.com/nathanjackson/riapyx/internal/bus"
	"github.com/nathanjackson/riapyx/internal/cpu"
	"github.com/nathanjackson/riapyx/internal/disk"
	"github.com/nathanjackson/riapyx/internal/keyboard"
	"github.com/nathanjackson/riapyx/internal/machine"
	"github.com/nathanjackson/riapyx/internal/pic"
	"github.com/nathanjackson/riapyx/internal/pit"
	"github.com/nathanjackson/riapyx/internal/video"
)

func newTestRig(t *testing.T) (*machine.Machine, *cpuInspector) {
	t.Helper()
	b := bus.New()
	p := pic.New()
	c := cpu.New(b, p)
	bi := bios.New(b, video.New(), keyboard.New(), &disk.Controller{})
	bi.Install(c)
	b.WriteByte(0x1000, 0x90)
	b.WriteByte(0x1001, 0xF4)
	c.CS, c.IP = 0, 0x1000

	m := machine.New(c, b, p, pit.New(), bi)
	m.Start()
	t.Cleanup(m.Stop)

	inspector := NewInspector(c.RegisterDump, c.DumpMemory, c.Disassemble, func(path string) error {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = f.Write(b.ReadBytes(0, 1<<20))
		return err
	})
	return m, inspector
}

func TestEmptyLineStepsAndReportsRegisters(t *testing.T) {
	m, insp := newTestRig(t)
	outcome, err := ProcessCommand("", m, insp)
	if err != nil {
		t.Fatal(err)
	}
	if outcome.Quit {
		t.Fatal("empty line should not quit")
	}
	if outcome.Message == "" {
		t.Fatal("expected a register dump message")
	}
	if m.CPU.IP != 0x1001 {
		t.Fatalf("IP = %#x, want 1001 after single step", m.CPU.IP)
	}
}

func TestQuitCommandReturnsQuitOutcome(t *testing.T) {
	m, insp := newTestRig(t)
	outcome, err := ProcessCommand("q", m, insp)
	if err != nil {
		t.Fatal(err)
	}
	if !outcome.Quit {
		t.Fatal("q should request quit")
	}
}

func TestBadHexAddressIsFatal(t *testing.T) {
	m, insp := newTestRig(t)
	_, err := ProcessCommand("b zzzz 0000", m, insp)
	if !errors.Is(err, ErrBadHex) {
		t.Fatalf("err = %v, want ErrBadHex", err)
	}
}

func TestUnknownCommandReportsBadCommand(t *testing.T) {
	m, insp := newTestRig(t)
	outcome, err := ProcessCommand("frobnicate", m, insp)
	if err != nil {
		t.Fatal(err)
	}
	if outcome.Message != "Bad command." {
		t.Fatalf("message = %q, want Bad command.", outcome.Message)
	}
}

func TestMemoryDumpCommandReturnsSixteenBytes(t *testing.T) {
	m, insp := newTestRig(t)
	outcome, err := ProcessCommand("d 0000 1000", m, insp)
	if err != nil {
		t.Fatal(err)
	}
	if outcome.Message == "" {
		t.Fatal("expected a memory dump")
	}
	if n := len(strings.Fields(outcome.Message)) - 1; n != 16 {
		t.Fatalf("dump has %d bytes after the address, want 16:\n%s", n, outcome.Message)
	}
}

func TestWriteMemoryDumpCommand(t *testing.T) {
	m, insp := newTestRig(t)
	path := filepath.Join(t.TempDir(), "core.img")
	outcome, err := ProcessCommand("w "+path, m, insp)
	if err != nil {
		t.Fatal(err)
	}
	if outcome.Quit {
		t.Fatal("w should not quit")
	}
	info, statErr := os.Stat(path)
	if statErr != nil {
		t.Fatal(statErr)
	}
	if info.Size() != 1<<20 {
		t.Fatalf("dump size = %d, want 1 MiB", info.Size())
	}
}
