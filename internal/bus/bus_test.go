package bus

import "testing"

func TestRAMReadWrite(t *testing.T) {
	b := New()
	b.WriteByte(0x1234, 0xAB)
	if got := b.ReadByte(0x1234); got != 0xAB {
		t.Fatalf("ReadByte = %#x, want 0xAB", got)
	}
	b.WriteWord(0x2000, 0xBEEF)
	if got := b.ReadWord(0x2000); got != 0xBEEF {
		t.Fatalf("ReadWord = %#x, want 0xBEEF", got)
	}
	if lo, hi := b.ReadByte(0x2000), b.ReadByte(0x2001); lo != 0xEF || hi != 0xBE {
		t.Fatalf("little-endian split wrong: lo=%#x hi=%#x", lo, hi)
	}
}

func TestAddressWraps(t *testing.T) {
	b := New()
	b.WriteByte(MemSize, 0x55) // one past the end wraps to 0
	if got := b.ReadByte(0); got != 0x55 {
		t.Fatalf("wrap write/read = %#x, want 0x55", got)
	}
}

func TestROMWritesDiscarded(t *testing.T) {
	b := New()
	b.WriteByte(0xF0000, 0x11)
	b.MarkROM(0xF0000, 0xFFFFF)
	b.WriteByte(0xF0000, 0x22)
	if got := b.ReadByte(0xF0000); got != 0x11 {
		t.Fatalf("ROM write not discarded: got %#x", got)
	}
}

func TestUnclaimedPortReadsFF(t *testing.T) {
	b := New()
	if got := b.InByte(0x999); got != 0xFF {
		t.Fatalf("unclaimed port = %#x, want 0xFF", got)
	}
	b.OutByte(0x999, 0x42) // must not panic, silently dropped
}

func TestDeviceMemoryDispatch(t *testing.T) {
	b := New()
	var store [16]byte
	err := b.RegisterMemory(0xB8000, 0xB800F, MemHandler{
		Name: "testdev",
		Read8: func(addr uint32) uint8 {
			return store[addr-0xB8000]
		},
		Write8: func(addr uint32, v uint8) {
			store[addr-0xB8000] = v
		},
	})
	if err != nil {
		t.Fatalf("RegisterMemory: %v", err)
	}
	b.WriteByte(0xB8000, 0x21)
	if store[0] != 0x21 {
		t.Fatalf("device store not written")
	}
	if got := b.ReadByte(0xB8000); got != 0x21 {
		t.Fatalf("device dispatch read = %#x, want 0x21", got)
	}
	// RAM just past a device range must still behave as plain RAM.
	b.WriteByte(0xB8010, 0x99)
	if got := b.ReadByte(0xB8010); got != 0x99 {
		t.Fatalf("RAM outside device range disturbed")
	}
}

func TestOverlappingRegistrationIsError(t *testing.T) {
	b := New()
	h := MemHandler{Name: "a", Read8: func(uint32) uint8 { return 0 }, Write8: func(uint32, uint8) {}}
	if err := b.RegisterMemory(0x1000, 0x1FFF, h); err != nil {
		t.Fatalf("first registration failed: %v", err)
	}
	if err := b.RegisterMemory(0x1800, 0x2800, h); err == nil {
		t.Fatalf("expected overlap error")
	}
}

func TestPortDispatch(t *testing.T) {
	b := New()
	var val uint8
	err := b.RegisterPort(0x60, 0x64, PortHandler{
		Name: "kbd",
		In8:  func(uint16) uint8 { return val },
		Out8: func(_ uint16, v uint8) { val = v },
	})
	if err != nil {
		t.Fatalf("RegisterPort: %v", err)
	}
	b.OutByte(0x60, 0x1E)
	if got := b.InByte(0x60); got != 0x1E {
		t.Fatalf("port dispatch = %#x, want 0x1E", got)
	}
}

func TestSnapshotReflectsDeviceState(t *testing.T) {
	b := New()
	err := b.RegisterMemory(0x100, 0x100, MemHandler{
		Name:   "one",
		Read8:  func(uint32) uint8 { return 0x7F },
		Write8: func(uint32, uint8) {},
	})
	if err != nil {
		t.Fatalf("RegisterMemory: %v", err)
	}
	snap := b.Snapshot()
	if snap[0x100] != 0x7F {
		t.Fatalf("snapshot byte at device range = %#x, want 0x7F", snap[0x100])
	}
}
