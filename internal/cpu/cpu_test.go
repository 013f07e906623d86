/*
 * riapyx - CPU interpreter tests
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

import "testing"

// flatBus is a bare 1 MiB byte array with no port devices, enough to
// exercise the interpreter without depending on the bus package.
type flatBus struct {
	mem   [1 << 20]byte
	ports [1 << 16]byte
}

func (b *flatBus) ReadByte(addr uint32) uint8     { return b.mem[addr&0xFFFFF] }
func (b *flatBus) WriteByte(addr uint32, v uint8) { b.mem[addr&0xFFFFF] = v }
func (b *flatBus) ReadWord(addr uint32) uint16 {
	return uint16(b.ReadByte(addr)) | uint16(b.ReadByte(addr+1))<<8
}
func (b *flatBus) WriteWord(addr uint32, v uint16) {
	b.WriteByte(addr, uint8(v))
	b.WriteByte(addr+1, uint8(v>>8))
}
func (b *flatBus) InByte(port uint16) uint8      { return b.ports[port] }
func (b *flatBus) OutByte(port uint16, v uint8)  { b.ports[port] = v }
func (b *flatBus) InWord(port uint16) uint16     { return uint16(b.ports[port]) | uint16(b.ports[port+1])<<8 }
func (b *flatBus) OutWord(port uint16, v uint16) { b.ports[port] = uint8(v); b.ports[port+1] = uint8(v >> 8) }

type noPIC struct{}

func (noPIC) PendingVector() (uint8, bool) { return 0, false }
func (noPIC) Acknowledge() uint8           { return 0 }

func newTestCPU() (*CPU, *flatBus) {
	bus := &flatBus{}
	c := New(bus, noPIC{})
	c.CS, c.IP = 0x0100, 0
	c.SS, c.SP = 0x0100, 0x0100
	return c, bus
}

func load(bus *flatBus, seg, off uint16, bytes ...uint8) {
	for i, b := range bytes {
		bus.WriteByte(phys(seg, off+uint16(i)), b)
	}
}

func TestMOVRegImmRoundTrip(t *testing.T) {
	c, bus := newTestCPU()
	load(bus, c.CS, 0, 0xB8, 0x34, 0x12) // MOV AX,0x1234
	c.Step()
	if c.AX != 0x1234 {
		t.Fatalf("AX = %04X, want 1234", c.AX)
	}
}

func TestPushPopRoundTrip(t *testing.T) {
	c, bus := newTestCPU()
	c.BX = 0xCAFE
	load(bus, c.CS, 0, 0x53, 0x5B) // PUSH BX; POP BX
	c.BX = 0xCAFE
	c.Step()
	c.BX = 0
	c.Step()
	if c.BX != 0xCAFE {
		t.Fatalf("BX = %04X, want CAFE", c.BX)
	}
}

func TestPushfPopfRoundTrip(t *testing.T) {
	c, bus := newTestCPU()
	c.Flags = FlagCF | FlagZF | FlagSF
	load(bus, c.CS, 0, 0x9C, 0x9D) // PUSHF; POPF
	want := c.Flags
	c.Step()
	c.Flags = 0
	c.Step()
	if c.Flags != want {
		t.Fatalf("Flags = %04X, want %04X", c.Flags, want)
	}
}

func TestXorSelfClearsAndSetsZF(t *testing.T) {
	c, bus := newTestCPU()
	c.AX = 0x55AA
	load(bus, c.CS, 0, 0x31, 0xC0) // XOR AX,AX
	c.Step()
	if c.AX != 0 {
		t.Fatalf("AX = %04X, want 0", c.AX)
	}
	if !c.getFlag(FlagZF) {
		t.Fatal("ZF should be set")
	}
	if c.getFlag(FlagCF) || c.getFlag(FlagOF) {
		t.Fatal("CF/OF should be clear after XOR")
	}
}

func TestNegNegIsIdentity(t *testing.T) {
	c, _ := newTestCPU()
	v := uint16(0x1234)
	once := c.neg16(v)
	twice := c.neg16(once)
	if twice != v {
		t.Fatalf("NEG(NEG(%04X)) = %04X, want %04X", v, twice, v)
	}
}

func TestSegmentWraparoundAtTopOfMemory(t *testing.T) {
	_, bus := newTestCPU()
	// FFFF:0010 -> (0xFFFF0 + 0x10) & 0xFFFFF = 0x00000
	bus.WriteByte(0, 0x42)
	got := bus.ReadByte(phys(0xFFFF, 0x0010))
	if got != 0x42 {
		t.Fatalf("phys(FFFF,0010) read %02X, want 42 (1MiB wraparound)", got)
	}
}

func TestAddOverflowSetsOF(t *testing.T) {
	c, bus := newTestCPU()
	c.AX = 0x7FFF
	load(bus, c.CS, 0, 0x05, 0x01, 0x00) // ADD AX,1
	c.Step()
	if c.AX != 0x8000 {
		t.Fatalf("AX = %04X, want 8000", c.AX)
	}
	if !c.getFlag(FlagOF) {
		t.Fatal("OF should be set on 0x7FFF+1 signed overflow")
	}
	if c.getFlag(FlagCF) {
		t.Fatal("CF should be clear: no unsigned carry out of bit 15")
	}
}

func TestRepMovsbZeroCountIsNoop(t *testing.T) {
	c, bus := newTestCPU()
	c.CX = 0
	c.DS, c.SI = 0x2000, 0x0010
	c.ES, c.DI = 0x3000, 0x0020
	bus.WriteByte(phys(c.DS, c.SI), 0x99)
	bus.WriteByte(phys(c.ES, c.DI), 0x00)
	load(bus, c.CS, 0, 0xF3, 0xA4) // REP MOVSB
	c.Step()
	if got := bus.ReadByte(phys(c.ES, c.DI)); got != 0 {
		t.Fatalf("REP MOVSB with CX=0 touched memory: got %02X", got)
	}
	if c.SI != 0x0010 || c.DI != 0x0020 {
		t.Fatal("REP MOVSB with CX=0 must not advance SI/DI")
	}
}

func TestRepMovsbCopiesAndRestartsAcrossSteps(t *testing.T) {
	c, bus := newTestCPU()
	c.CX = 3
	c.DS, c.SI = 0x2000, 0
	c.ES, c.DI = 0x3000, 0
	load(bus, c.DS, 0, 0xAA, 0xBB, 0xCC)
	load(bus, c.CS, 0, 0xF3, 0xA4) // REP MOVSB

	for i := 0; i < 3; i++ {
		c.Step()
		if c.CS != 0x0100 {
			t.Fatalf("iteration %d: CS changed unexpectedly", i)
		}
	}
	if c.CX != 0 {
		t.Fatalf("CX = %d, want 0 after 3 iterations", c.CX)
	}
	for i, want := range []uint8{0xAA, 0xBB, 0xCC} {
		got := bus.ReadByte(phys(c.ES, uint16(i)))
		if got != want {
			t.Fatalf("dest[%d] = %02X, want %02X", i, got, want)
		}
	}
	if c.IP != 2 {
		t.Fatalf("IP = %d, want 2 (past the REP MOVSB instruction) once CX hits 0", c.IP)
	}
}

func TestHaltSuspendsFetchUntilInterrupt(t *testing.T) {
	c, bus := newTestCPU()
	load(bus, c.CS, 0, 0xF4, 0x90) // HLT; NOP
	c.Step()
	if !c.Halted() {
		t.Fatal("CPU should be halted after HLT")
	}
	ipBefore := c.IP
	c.Step()
	if c.IP != ipBefore {
		t.Fatal("Step should not advance IP while halted with no pending interrupt")
	}
	c.PostExternalIRQ()
	c.Step()
	if c.Halted() {
		t.Fatal("CPU should resume fetching once haltedOn is cleared")
	}
}

func TestDivideByZeroRaisesInterruptZero(t *testing.T) {
	c, bus := newTestCPU()
	c.AX = 0x0064
	c.DX = 0
	c.CX = 0 // divisor in CL = 0
	load(bus, 0, 0, 0x10, 0x00, 0xAA, 0xAA) // vector 0 -> 0xAAAA:0x0010
	load(bus, c.CS, 0, 0xF6, 0xF1) // DIV CL
	c.Step()
	if c.CS != 0xAAAA || c.IP != 0x0010 {
		t.Fatalf("CS:IP = %04X:%04X, want AAAA:0010 after INT0", c.CS, c.IP)
	}
}
