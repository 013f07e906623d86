/*
 * riapyx - Memory & I/O bus
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

// Package bus implements the 1 MiB physical address space and the 64K
// port address space of the machine, dispatching every access to either
// plain RAM, write-ignored ROM, or a registered device handler.
package bus

import (
	"fmt"
	"sort"
)

const (
	// MemSize is the size of the flat physical address space in bytes.
	MemSize = 1 << 20
	// AddrMask wraps any 20-bit-plus address back into the 1 MiB space.
	AddrMask = MemSize - 1
	// PortSize is the size of the port address space.
	PortSize = 1 << 16
)

// MemHandler is the byte accessor pair a device installs over a physical
// memory range. Word access is never dispatched directly: ReadWord/WriteWord
// always synthesize it from two Read8/Write8 calls.
type MemHandler struct {
	Name   string
	Read8  func(addr uint32) uint8
	Write8 func(addr uint32, v uint8)
}

// PortHandler is the set of byte/word accessors a device installs over a
// port range. Only In8/Out8 are ever called: InWord/OutWord split a word
// access into two byte accesses and never consult In16/Out16.
type PortHandler struct {
	Name    string
	In8     func(port uint16) uint8
	Out8    func(port uint16, v uint8)
	In16    func(port uint16) uint16
	Out16   func(port uint16, v uint16)
}

type memRegion struct {
	start, end uint32 // inclusive physical range
	handler    MemHandler
}

type portRegion struct {
	start, end uint32 // inclusive port range
	handler    PortHandler
}

// Bus is the 1 MiB physical memory and 64K port address space shared by
// the CPU and every device. The zero value is not usable; construct with
// New.
type Bus struct {
	ram    []byte
	rom    []bool // per-byte ROM flag: writes are discarded, reads pass through ram
	mem    []memRegion
	ports  []portRegion
}

// New returns a Bus with MemSize bytes of zeroed RAM and no devices
// registered.
func New() *Bus {
	return &Bus{
		ram: make([]byte, MemSize),
		rom: make([]bool, MemSize),
	}
}

func overlaps(aStart, aEnd, bStart, bEnd uint32) bool {
	return aStart <= bEnd && bStart <= aEnd
}

// RegisterMemory installs handler over the inclusive physical range
// [start, end]. It is a configuration error, returned as an error rather
// than a panic, for the range to overlap a previously registered range.
func (b *Bus) RegisterMemory(start, end uint32, handler MemHandler) error {
	if start > end || end >= MemSize {
		return fmt.Errorf("bus: invalid memory range [%#x,%#x] for %s", start, end, handler.Name)
	}
	for _, r := range b.mem {
		if overlaps(start, end, r.start, r.end) {
			return fmt.Errorf("bus: memory range [%#x,%#x] for %s overlaps %s [%#x,%#x]",
				start, end, handler.Name, r.handler.Name, r.start, r.end)
		}
	}
	b.mem = append(b.mem, memRegion{start: start, end: end, handler: handler})
	sort.Slice(b.mem, func(i, j int) bool { return b.mem[i].start < b.mem[j].start })
	return nil
}

// RegisterPort installs handler over the inclusive port range [start, end].
func (b *Bus) RegisterPort(start, end uint32, handler PortHandler) error {
	if start > end || end >= PortSize {
		return fmt.Errorf("bus: invalid port range [%#x,%#x] for %s", start, end, handler.Name)
	}
	for _, r := range b.ports {
		if overlaps(start, end, r.start, r.end) {
			return fmt.Errorf("bus: port range [%#x,%#x] for %s overlaps %s [%#x,%#x]",
				start, end, handler.Name, r.handler.Name, r.start, r.end)
		}
	}
	b.ports = append(b.ports, portRegion{start: start, end: end, handler: handler})
	sort.Slice(b.ports, func(i, j int) bool { return b.ports[i].start < b.ports[j].start })
	return nil
}

// MarkROM flags [start, end] as read-only: writes through WriteByte are
// silently discarded. It has no effect on addresses covered by a
// registered device handler.
func (b *Bus) MarkROM(start, end uint32) {
	for a := start; a <= end && a < MemSize; a++ {
		b.rom[a] = true
	}
}

func (b *Bus) findMem(addr uint32) *memRegion {
	// Small registration counts in practice (a handful of devices); linear
	// scan over a sorted slice is simpler than a binary-search helper and
	// fast enough for an interpreter already paying per-instruction decode
	// cost.
	for i := range b.mem {
		r := &b.mem[i]
		if addr >= r.start && addr <= r.end {
			return r
		}
	}
	return nil
}

func (b *Bus) findPort(port uint32) *portRegion {
	for i := range b.ports {
		r := &b.ports[i]
		if port >= r.start && port <= r.end {
			return r
		}
	}
	return nil
}

// ReadByte reads one byte from physical address addr (wrapped mod 1 MiB).
func (b *Bus) ReadByte(addr uint32) uint8 {
	addr &= AddrMask
	if r := b.findMem(addr); r != nil {
		return r.handler.Read8(addr)
	}
	return b.ram[addr]
}

// WriteByte writes one byte to physical address addr (wrapped mod 1 MiB).
// Writes to ROM-marked addresses with no device handler are discarded.
func (b *Bus) WriteByte(addr uint32, v uint8) {
	addr &= AddrMask
	if r := b.findMem(addr); r != nil {
		r.handler.Write8(addr, v)
		return
	}
	if b.rom[addr] {
		return
	}
	b.ram[addr] = v
}

// ReadWord reads a little-endian word starting at addr. If addr and
// addr+1 fall in different handlers (or one falls in RAM and the other in
// a device), the access is split into two independent byte accesses, per
// spec.
func (b *Bus) ReadWord(addr uint32) uint16 {
	lo := b.ReadByte(addr)
	hi := b.ReadByte(addr + 1)
	return uint16(lo) | uint16(hi)<<8
}

// WriteWord writes a little-endian word starting at addr, splitting into
// two byte writes exactly as ReadWord splits reads.
func (b *Bus) WriteWord(addr uint32, v uint16) {
	b.WriteByte(addr, uint8(v))
	b.WriteByte(addr+1, uint8(v>>8))
}

// InByte reads one byte from port. Unclaimed ports read as 0xFF.
func (b *Bus) InByte(port uint16) uint8 {
	if r := b.findPort(uint32(port)); r != nil {
		return r.handler.In8(port)
	}
	return 0xFF
}

// OutByte writes one byte to port. Writes to unclaimed ports are dropped.
func (b *Bus) OutByte(port uint16, v uint8) {
	if r := b.findPort(uint32(port)); r != nil {
		r.handler.Out8(port, v)
	}
}

// InWord reads a little-endian word from port and port+1.
func (b *Bus) InWord(port uint16) uint16 {
	lo := b.InByte(port)
	hi := b.InByte(port + 1)
	return uint16(lo) | uint16(hi)<<8
}

// OutWord writes a little-endian word to port and port+1.
func (b *Bus) OutWord(port uint16, v uint16) {
	b.OutByte(port, uint8(v))
	b.OutByte(port+1, uint8(v>>8))
}

// ReadBytes copies length bytes from physical memory starting at addr
// (wrapping per-byte), for bulk transfers such as disk sector reads and
// memory dumps. It always reads through RAM/device handlers one byte at a
// time so straddled device ranges behave identically to scalar access.
func (b *Bus) ReadBytes(addr uint32, length int) []byte {
	out := make([]byte, length)
	for i := 0; i < length; i++ {
		out[i] = b.ReadByte(addr + uint32(i))
	}
	return out
}

// WriteBytes copies data into physical memory starting at addr.
func (b *Bus) WriteBytes(addr uint32, data []byte) {
	for i, v := range data {
		b.WriteByte(addr+uint32(i), v)
	}
}

// Snapshot returns a copy of the whole physical address space in address
// order. Device-owned ranges are read through their handlers so the copy
// reflects live device state (e.g. the video text buffer) rather than
// stale RAM underneath it.
func (b *Bus) Snapshot() []byte {
	out := make([]byte, MemSize)
	for i := 0; i < MemSize; i++ {
		out[i] = b.ReadByte(uint32(i))
	}
	return out
}
