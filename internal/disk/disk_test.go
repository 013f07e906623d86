/*
 * riapyx - block storage tests
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

package disk

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func makeImage(t *testing.T, size int64) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "image.img")
	if err := os.WriteFile(path, make([]byte, size), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestOpenFloppyInfers1440KGeometry(t *testing.T) {
	path := makeImage(t, 1440*1024)
	d, err := OpenFloppy(path, false)
	if err != nil {
		t.Fatal(err)
	}
	defer d.Close()
	g := d.Geometry()
	if g.Cylinders != 80 || g.Heads != 2 || g.SectorsPerTrack != 18 {
		t.Fatalf("geometry = %+v, want 80/2/18", g)
	}
}

func TestOpenFloppyRejectsUnknownSize(t *testing.T) {
	path := makeImage(t, 12345)
	if _, err := OpenFloppy(path, false); err == nil {
		t.Fatal("expected an error for a non-standard floppy image size")
	}
}

func TestWriteThenReadSectorRoundTrip(t *testing.T) {
	path := makeImage(t, 1440*1024)
	d, err := OpenFloppy(path, false)
	if err != nil {
		t.Fatal(err)
	}
	defer d.Close()

	payload := bytes.Repeat([]byte{0xAB}, SectorSize)
	if err := d.WriteSectors(0, 0, 1, payload); err != nil {
		t.Fatal(err)
	}
	got, err := d.ReadSectors(0, 0, 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatal("read back did not match write")
	}
}

func TestCHSToLBAMatchesStandardFormula(t *testing.T) {
	g := Geometry{Cylinders: 80, Heads: 2, SectorsPerTrack: 18}
	// cylinder 1, head 1, sector 1 -> (1*2+1)*18 + 0 = 54
	if got := g.CHSToLBA(1, 1, 1); got != 54 {
		t.Fatalf("CHSToLBA(1,1,1) = %d, want 54", got)
	}
}

func TestWriteRejectedOnReadOnlyDrive(t *testing.T) {
	path := makeImage(t, 1440*1024)
	d, err := OpenFloppy(path, true)
	if err != nil {
		t.Fatal(err)
	}
	defer d.Close()
	if err := d.WriteSectors(0, 0, 1, make([]byte, SectorSize)); err == nil {
		t.Fatal("expected write to a read-only drive to fail")
	}
}

func TestOpenHardDiskInfersCylindersFromSize(t *testing.T) {
	cylinderBytes := int64(4 * 17 * SectorSize)
	path := makeImage(t, cylinderBytes*10)
	d, err := OpenHardDisk(path, false)
	if err != nil {
		t.Fatal(err)
	}
	defer d.Close()
	g := d.Geometry()
	if g.Cylinders != 10 || g.Heads != 4 || g.SectorsPerTrack != 17 {
		t.Fatalf("geometry = %+v, want 10/4/17", g)
	}
}

func TestControllerDrivesFloppyAndHardDiskByUnitNumber(t *testing.T) {
	fpath := makeImage(t, 1440*1024)
	hpath := makeImage(t, 4*17*SectorSize*10)
	fd, err := OpenFloppy(fpath, false)
	if err != nil {
		t.Fatal(err)
	}
	hd, err := OpenHardDisk(hpath, false)
	if err != nil {
		t.Fatal(err)
	}
	ctrl := &Controller{Floppy: fd, HardDisk: hd}
	if ctrl.Drive(0x00) != fd {
		t.Fatal("unit 0x00 should resolve to the floppy drive")
	}
	if ctrl.Drive(0x80) != hd {
		t.Fatal("unit 0x80 should resolve to the hard disk drive")
	}
}
