/*
 * riapyx - INT 13h disk services
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

import "github.com/nathanjackson/riapyx/internal/cpu"

// Status codes INT 13h reports in AH on return, the subset this BIOS
// can actually produce.
const (
	diskStatusOK             = 0x00
	diskStatusBadCommand     = 0x01
	diskStatusSectorNotFound = 0x04
	diskStatusFixedDiskError = 0xBB
)

// diskService dispatches INT 13h by AH. AL holds the sector count for
// read/write, CH/CL pack cylinder and sector in the standard BIOS way
// (CL bits 0-5 = sector, bits 6-7 = cylinder bits 8-9), DH = head,
// DL = drive, ES:BX = the transfer buffer.
func (b *BIOS) diskService() {
	ah := uint8(b.cpu.AX >> 8)
	switch ah {
	case 0x00: // reset disk system
		b.setDiskStatus(diskStatusOK)
	case 0x02:
		b.diskReadWrite(false)
	case 0x03:
		b.diskReadWrite(true)
	case 0x08:
		b.diskGetParameters()
	default:
		b.setDiskStatus(diskStatusBadCommand)
	}
}

func (b *BIOS) chsFromRegisters() (cylinder, head, sector int) {
	cl := uint8(b.cpu.CX)
	ch := uint8(b.cpu.CX >> 8)
	cylinder = int(ch) | int(cl&0xC0)<<2
	sector = int(cl & 0x3F)
	head = int(b.cpu.DX >> 8)
	return
}

func (b *BIOS) diskReadWrite(write bool) {
	count := int(uint8(b.cpu.AX))
	drive := uint8(b.cpu.DX)
	cylinder, head, sector := b.chsFromRegisters()

	d := b.Disk.Drive(drive)
	if d == nil {
		b.setDiskStatus(diskStatusFixedDiskError)
		return
	}

	bufAddr := phys(b.cpu.ES, uint16(b.cpu.BX))
	if write {
		data := b.Bus.ReadBytes(bufAddr, count*512)
		if err := d.WriteSectors(cylinder, head, sector, data); err != nil {
			b.setDiskStatus(diskStatusSectorNotFound)
			return
		}
	} else {
		data, err := d.ReadSectors(cylinder, head, sector, count)
		if err != nil {
			b.setDiskStatus(diskStatusSectorNotFound)
			return
		}
		b.Bus.WriteBytes(bufAddr, data)
	}
	b.cpu.AX = uint16(count) // AL = sectors transferred, AH = 0 (success)
	b.cpu.Flags &^= cpu.FlagCF
}

func (b *BIOS) diskGetParameters() {
	drive := uint8(b.cpu.DX)
	d := b.Disk.Drive(drive)
	if d == nil {
		b.setDiskStatus(diskStatusFixedDiskError)
		return
	}
	g := d.Geometry()
	maxCyl := g.Cylinders - 1
	b.cpu.CX = uint16(uint8(maxCyl))<<8 | uint16(uint8(maxCyl>>8))<<6 | uint16(uint8(g.SectorsPerTrack))
	b.cpu.DX = uint16(uint8(g.Heads-1))<<8 | uint16(1) // DL = number of drives of this class
	b.setDiskStatus(diskStatusOK)
}

func (b *BIOS) setDiskStatus(status uint8) {
	b.cpu.AX = (b.cpu.AX &^ 0xFF00) | uint16(status)<<8
	if status == diskStatusOK {
		b.cpu.Flags &^= cpu.FlagCF
	} else {
		b.cpu.Flags |= cpu.FlagCF
	}
}
