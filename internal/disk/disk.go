/*
 * riapyx - block storage: host-file-backed floppy and hard disk units
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

// Package disk implements block storage: host-file-backed floppy (unit
// 0x00) and hard disk (unit 0x80) drives addressed by the BIOS's
// cylinder/head/sector interface, translated to linear byte offsets in
// the backing file.
package disk

import (
	"errors"
	"fmt"
	"os"
)

// SectorSize is fixed at 512 bytes across every supported geometry.
const SectorSize = 512

// Geometry describes a drive's cylinder/head/sector shape.
type Geometry struct {
	Cylinders int
	Heads     int
	SectorsPerTrack int
}

// knownFloppyGeometries maps an image file's byte size to the standard
// IBM PC floppy geometry that produces it. A size the table does not
// recognize is rejected: inferring an invalid geometry from a corrupt
// image would corrupt guest reads silently.
var knownFloppyGeometries = map[int64]Geometry{
	160 * 1024:  {Cylinders: 40, Heads: 1, SectorsPerTrack: 8},
	180 * 1024:  {Cylinders: 40, Heads: 1, SectorsPerTrack: 9},
	320 * 1024:  {Cylinders: 40, Heads: 2, SectorsPerTrack: 8},
	360 * 1024:  {Cylinders: 40, Heads: 2, SectorsPerTrack: 9},
	1200 * 1024: {Cylinders: 80, Heads: 2, SectorsPerTrack: 15},
	720 * 1024:  {Cylinders: 80, Heads: 2, SectorsPerTrack: 9},
	1440 * 1024: {Cylinders: 80, Heads: 2, SectorsPerTrack: 18},
}

// ErrUnknownGeometry is returned when a floppy image's size does not
// match any standard format, and when a hard disk image's size is not
// an exact multiple of one cylinder.
var ErrUnknownGeometry = errors.New("disk: image size does not match a known geometry")

// Drive is one host-file-backed CHS-addressed unit.
type Drive struct {
	file     *os.File
	geometry Geometry
	readOnly bool
}

// OpenFloppy opens path as a floppy image, inferring geometry from its
// size against the standard 160KB-1.44MB formats.
func OpenFloppy(path string, readOnly bool) (*Drive, error) {
	f, info, err := openImage(path, readOnly)
	if err != nil {
		return nil, err
	}
	geom, ok := knownFloppyGeometries[info.Size()]
	if !ok {
		f.Close()
		return nil, fmt.Errorf("%w: %d bytes", ErrUnknownGeometry, info.Size())
	}
	return &Drive{file: f, geometry: geom, readOnly: readOnly}, nil
}

// OpenHardDisk opens path as a hard disk image, inferring a geometry
// with the standard 17 sectors/track, 4 heads CHS shape BIOS INT 13h
// hard disks conventionally report, and a cylinder count derived from
// the file size. The image size must be an exact multiple of one
// cylinder (heads * sectorsPerTrack * SectorSize bytes).
func OpenHardDisk(path string, readOnly bool) (*Drive, error) {
	const heads = 4
	const sectorsPerTrack = 17
	cylinderBytes := int64(heads * sectorsPerTrack * SectorSize)

	f, info, err := openImage(path, readOnly)
	if err != nil {
		return nil, err
	}
	if info.Size()%cylinderBytes != 0 {
		f.Close()
		return nil, fmt.Errorf("%w: %d bytes is not a multiple of one %d-byte cylinder",
			ErrUnknownGeometry, info.Size(), cylinderBytes)
	}
	geom := Geometry{
		Cylinders:       int(info.Size() / cylinderBytes),
		Heads:           heads,
		SectorsPerTrack: sectorsPerTrack,
	}
	return &Drive{file: f, geometry: geom, readOnly: readOnly}, nil
}

func openImage(path string, readOnly bool) (*os.File, os.FileInfo, error) {
	flag := os.O_RDWR
	if readOnly {
		flag = os.O_RDONLY
	}
	f, err := os.OpenFile(path, flag, 0)
	if err != nil {
		return nil, nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return f, info, nil
}

// Geometry returns the drive's CHS shape, for the BIOS's INT 13h AH=08h
// get-geometry call.
func (d *Drive) Geometry() Geometry {
	return d.geometry
}

// ReadOnly reports whether writes to this drive are rejected.
func (d *Drive) ReadOnly() bool {
	return d.readOnly
}

// CHSToLBA converts a 1-based sector, 0-based cylinder and head to a
// 0-based logical block address, the standard IBM PC formula.
func (g Geometry) CHSToLBA(cylinder, head, sector int) int {
	return (cylinder*g.Heads+head)*g.SectorsPerTrack + (sector - 1)
}

// InRange reports whether a CHS address is valid for this geometry, the
// check behind the BIOS's INT 13h AH=02h/03h sector-not-found status.
func (g Geometry) InRange(cylinder, head, sector int) bool {
	return cylinder >= 0 && cylinder < g.Cylinders &&
		head >= 0 && head < g.Heads &&
		sector >= 1 && sector <= g.SectorsPerTrack
}

// ReadSectors reads count sectors starting at (cylinder, head, sector)
// into a count*SectorSize buffer.
func (d *Drive) ReadSectors(cylinder, head, sector, count int) ([]byte, error) {
	if !d.geometry.InRange(cylinder, head, sector) {
		return nil, fmt.Errorf("disk: CHS %d/%d/%d out of range for geometry %+v", cylinder, head, sector, d.geometry)
	}
	lba := d.geometry.CHSToLBA(cylinder, head, sector)
	buf := make([]byte, count*SectorSize)
	_, err := d.file.ReadAt(buf, int64(lba)*SectorSize)
	if err != nil {
		return nil, fmt.Errorf("disk: read at LBA %d: %w", lba, err)
	}
	return buf, nil
}

// WriteSectors writes data (a multiple of SectorSize) starting at
// (cylinder, head, sector).
func (d *Drive) WriteSectors(cylinder, head, sector int, data []byte) error {
	if d.readOnly {
		return errors.New("disk: drive is read-only")
	}
	if !d.geometry.InRange(cylinder, head, sector) {
		return fmt.Errorf("disk: CHS %d/%d/%d out of range for geometry %+v", cylinder, head, sector, d.geometry)
	}
	lba := d.geometry.CHSToLBA(cylinder, head, sector)
	_, err := d.file.WriteAt(data, int64(lba)*SectorSize)
	if err != nil {
		return fmt.Errorf("disk: write at LBA %d: %w", lba, err)
	}
	return nil
}

// Close releases the backing file handle.
func (d *Drive) Close() error {
	return d.file.Close()
}

// Controller is the BIOS's view of attached storage: floppy unit 0x00
// and hard disk unit 0x80, addressed the way INT 13h's DL register
// does.
type Controller struct {
	Floppy   *Drive
	HardDisk *Drive
}

// Drive returns the drive for a BIOS unit number (0x00-0x7F is floppy,
// 0x80+ is hard disk), or nil if that unit is not attached.
func (c *Controller) Drive(unit uint8) *Drive {
	if unit&0x80 != 0 {
		return c.HardDisk
	}
	return c.Floppy
}

// Close releases whichever drives are attached.
func (c *Controller) Close() error {
	var err error
	if c.Floppy != nil {
		if e := c.Floppy.Close(); e != nil {
			err = e
		}
	}
	if c.HardDisk != nil {
		if e := c.HardDisk.Close(); e != nil {
			err = e
		}
	}
	return err
}
