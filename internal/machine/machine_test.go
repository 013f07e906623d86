/*
 * riapyx - machine driver tests
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

package machine

import (
	"testing"
	"time"

	"github.com/nathanjackson/riapyx/internal/bios"
	"github.com/nathanjackson/riapyx/internal/bus"
	"github.com/nathanjackson/riapyx/internal/cpu"
	"github.com/nathanjackson/riapyx/internal/disk"
	"github.com/nathanjackson/riapyx/internal/keyboard"
	"github.com/nathanjackson/riapyx/internal/pic"
	"github.com/nathanjackson/riapyx/internal/pit"
	"github.com/nathanjackson/riapyx/internal/video"
)

func newTestMachine(t *testing.T) *Machine {
	t.Helper()
	b := bus.New()
	p := pic.New()
	c := cpu.New(b, p)
	t8253 := pit.New()
	bi := bios.New(b, video.New(), keyboard.New(), &disk.Controller{})
	bi.Install(c)

	// A small program in RAM, well clear of the BIOS's ROM region: three
	// NOPs then HLT, so a freely running machine parks itself without
	// needing a disk image.
	b.WriteByte(0x1000, 0x90)
	b.WriteByte(0x1001, 0x90)
	b.WriteByte(0x1002, 0x90)
	b.WriteByte(0x1003, 0xF4)
	c.CS, c.IP = 0x0000, 0x1000

	return New(c, b, p, t8253, bi)
}

func TestSingleStepAdvancesExactlyOneInstruction(t *testing.T) {
	m := newTestMachine(t)
	m.Start()
	defer m.Stop()

	startIP := m.CPU.IP
	m.SendSync(Command{Kind: CmdStep})
	if m.CPU.IP != startIP+1 {
		t.Fatalf("IP = %#x, want %#x after one NOP", m.CPU.IP, startIP+1)
	}
	if m.IsRunning() {
		t.Fatal("machine should remain paused after a single step")
	}
}

func TestRunStopsAtBreakpoint(t *testing.T) {
	m := newTestMachine(t)
	m.Start()
	defer m.Stop()

	// HLT sits at 0000:1003; put the breakpoint one instruction earlier
	// so Run observably halts the free-run loop instead of just hitting HLT.
	// SendSync waits for each command to be applied: Send would let the
	// Run replace the still-pending breakpoint, and the loop below could
	// read IsRunning before the Run took effect.
	m.SendSync(Command{Kind: CmdSetBreakpoint, Seg: 0x0000, Off: 0x1002})
	m.SendSync(Command{Kind: CmdRun})

	deadline := time.After(time.Second)
	for m.IsRunning() {
		select {
		case <-deadline:
			t.Fatal("machine never stopped at the breakpoint")
		case <-time.After(time.Millisecond):
		}
	}
	if m.CPU.IP != 0x1002 {
		t.Fatalf("IP = %#x, want breakpoint address 1002", m.CPU.IP)
	}
}

func TestStopIsIdempotentAndTimesOutGracefully(t *testing.T) {
	m := newTestMachine(t)
	m.Start()
	m.Stop()
	m.Stop() // a second Stop must return without panicking
}
