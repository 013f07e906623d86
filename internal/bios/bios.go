/*
 * riapyx - BIOS service layer
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

// Package bios implements the BIOS service layer: the interrupt vector
// table, a minimal F000-segment ROM stub region, and Go-native
// handlers for INT 10h (video), INT 13h (disk), INT 16h (keyboard),
// INT 1Ah (time of day), and INT 19h (bootstrap loader), plus the
// IRQ0/IRQ1 hardware interrupt handlers a real BIOS installs.
//
// Rather than interpreting actual 8086 ROM machine code, each service
// is a Go function wired in through cpu.CPU.Intercept: when the
// interpreter is about to vector an INT through the IVT, it first
// offers the vector to the BIOS, which reads/writes CPU registers
// directly and reports the call as handled. Guest code sees exactly
// the documented register-in, register-out, flags-out contract of the
// real service; it never has to execute the routine's body.
package bios

import (
	"fmt"
	"os"

	"github.com/nathanjackson/riapyx/internal/bus"
	"github.com/nathanjackson/riapyx/internal/cpu"
	"github.com/nathanjackson/riapyx/internal/disk"
	"github.com/nathanjackson/riapyx/internal/keyboard"
	"github.com/nathanjackson/riapyx/internal/pic"
	"github.com/nathanjackson/riapyx/internal/video"
)

const (
	vectorTimerTick = 0x08
	vectorKeyboard  = 0x09
	vectorVideo     = 0x10
	vectorDisk      = 0x13
	vectorKeyIO     = 0x16
	vectorBootstrap = 0x19
	vectorTimeOfDay = 0x1A

	// romStubSeg:romStubOff is where every IVT entry not otherwise
	// handled in Go points: a single IRET byte, the default ISR for any
	// interrupt this machine does not service.
	romStubSeg = 0xF000
	romStubOff = 0xFF53

	// biosDataSeg is the conventional BIOS data area segment.
	biosDataSeg      = 0x0040
	bdaEquipmentWord = 0x0010
	bdaVideoMode     = 0x0049
	bdaVideoColumns  = 0x004A
	bdaTickCount     = 0x006C
	bdaTickCountFlag = 0x0070

	bootSectorSeg = 0x0000
	bootSectorOff = 0x7C00
)

// BIOS ties the virtual service routines to the devices they front.
type BIOS struct {
	Bus      *bus.Bus
	Video    *video.Adapter
	Keyboard *keyboard.Keyboard
	Disk     *disk.Controller

	cpu   *cpu.CPU
	ticks uint32 // INT 1Ah tick counter, incremented once per IRQ0
}

// New returns a BIOS wired to the given devices. Install must still be
// called once the owning CPU exists, to register the Intercept hook
// and populate the IVT/BDA.
func New(b *bus.Bus, v *video.Adapter, k *keyboard.Keyboard, d *disk.Controller) *BIOS {
	return &BIOS{Bus: b, Video: v, Keyboard: k, Disk: d}
}

// Install writes the default IVT, the BIOS data area, and wires c's
// Intercept hook to this BIOS's service dispatch.
func (b *BIOS) Install(c *cpu.CPU) {
	b.cpu = c
	stubAddr := phys(romStubSeg, romStubOff)
	b.Bus.WriteByte(stubAddr, 0xCF) // IRET
	b.Bus.MarkROM(0xF0000, 0xFFFFF)

	for v := 0; v < 256; v++ {
		b.Bus.WriteWord(uint32(v)*4, romStubOff)
		b.Bus.WriteWord(uint32(v)*4+2, romStubSeg)
	}

	b.Bus.WriteWord(phys(biosDataSeg, bdaEquipmentWord), 0x0021) // 1 floppy, no math coprocessor
	b.Bus.WriteByte(phys(biosDataSeg, bdaVideoMode), 0x03)
	b.Bus.WriteWord(phys(biosDataSeg, bdaVideoColumns), video.Columns)
	b.Bus.WriteWord(phys(biosDataSeg, bdaTickCount), 0)
	b.Bus.WriteWord(phys(biosDataSeg, bdaTickCount+2), 0)
	b.Bus.WriteByte(phys(biosDataSeg, bdaTickCountFlag), 0)

	c.Intercept = b.handle
}

func phys(seg, off uint16) uint32 {
	return (uint32(seg)<<4 + uint32(off)) & bus.AddrMask
}

// handle is the cpu.CPU.Intercept callback: it reports whether vector
// was serviced entirely in Go.
func (b *BIOS) handle(vector uint8) bool {
	switch vector {
	case vectorTimerTick:
		b.onTimerTick()
	case vectorKeyboard:
		b.onKeyboardIRQ()
	case vectorVideo:
		b.videoService()
	case vectorDisk:
		b.diskService()
	case vectorKeyIO:
		b.keyboardService()
	case vectorTimeOfDay:
		b.timeService()
	case vectorBootstrap:
		b.bootstrapService()
	default:
		return false
	}
	return true
}

func (b *BIOS) onTimerTick() {
	b.ticks++
	b.Bus.WriteWord(phys(biosDataSeg, bdaTickCount), uint16(b.ticks))
	b.Bus.WriteWord(phys(biosDataSeg, bdaTickCount+2), uint16(b.ticks>>16))
	b.sendEOI()
}

func (b *BIOS) onKeyboardIRQ() {
	// The scan code is already queued by keyboard.Keyboard.PushScanCode;
	// the real BIOS ISR would move it from the 8042's output buffer
	// into the BIOS keyboard ring here. This interpreter keeps the
	// queue itself as that ring, so there is nothing further to move.
	b.sendEOI()
}

func (b *BIOS) sendEOI() {
	b.Bus.OutByte(pic.CommandPort, 0x20)
}

// bootSignatureOffset is where the 0x55AA boot signature sits within a
// 512-byte boot sector; its absence marks the disk as not bootable.
const bootSignatureOffset = 510

// PowerOn loads the boot sector from drive into 0000:7C00 and sets up
// the CPU to begin execution there, mirroring POST handing off to a
// cold INT 19h bootstrap without actually interpreting one. DL is set
// to bootDrive, matching the real INT 19h contract so a boot loader can
// read back which unit it was started from.
func (b *BIOS) PowerOn(bootDrive uint8) error {
	if err := b.loadBootSector(bootDrive); err != nil {
		return err
	}
	b.cpu.DS, b.cpu.ES = 0, 0
	b.cpu.SS, b.cpu.SP = 0, 0xFFFE
	b.cpu.DX = uint16(bootDrive)
	b.cpu.SetPC(bootSectorSeg, bootSectorOff)
	return nil
}

func (b *BIOS) loadBootSector(bootDrive uint8) error {
	drive := b.Disk.Drive(bootDrive)
	if drive == nil {
		return fmt.Errorf("bios: no drive attached for boot unit %#02x", bootDrive)
	}
	sector, err := drive.ReadSectors(0, 0, 1, 1)
	if err != nil {
		return fmt.Errorf("bios: reading boot sector: %w", err)
	}
	if sector[bootSignatureOffset] != 0x55 || sector[bootSignatureOffset+1] != 0xAA {
		return fmt.Errorf("bios: boot sector on unit %#02x has no 0x55AA signature", bootDrive)
	}
	b.Bus.WriteBytes(phys(bootSectorSeg, bootSectorOff), sector)
	return nil
}

// bootstrapService handles a guest-invoked INT 19h (DL names the boot
// unit). A missing boot signature here is the same fatal condition as
// at cold power-on - §4.8 calls for aborting with a diagnostic and a
// non-zero exit rather than a guest-visible failure code, since there
// is no bootloader yet running to report it to.
func (b *BIOS) bootstrapService() {
	drive := uint8(b.cpu.DX)
	if err := b.PowerOn(drive); err != nil {
		fmt.Fprintln(os.Stderr, "riapyx: fatal:", err)
		os.Exit(1)
	}
}
