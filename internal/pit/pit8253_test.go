package pit

import "testing"

func programChannel0(p *PIT, mode int, reload uint16) {
	// Access mode 3 (LSB then MSB), given mode.
	p.WriteCommand(uint8(0x30 | (mode << 1)))
	p.WriteData(0, uint8(reload))
	p.WriteData(0, uint8(reload>>8))
}

func TestRateGeneratorUnderflowRaisesIRQ0(t *testing.T) {
	p := New()
	var count int
	p.RaiseIRQ0 = func() { count++ }
	programChannel0(p, ModeRateGenerator, 0x0010)

	p.Advance(0x10 * 5)
	if count != 5 {
		t.Fatalf("IRQ0 raised %d times, want 5", count)
	}
}

func TestReloadScenario(t *testing.T) {
	// End-to-end scenario 3 from spec.md: after >= N underflows of
	// channel 0 reload 0x0100, a counter incremented by the handler
	// equals N mod 65536.
	p := New()
	var ticks int
	p.RaiseIRQ0 = func() { ticks++ }
	programChannel0(p, ModeRateGenerator, 0x0100)

	const n = 37
	p.Advance(0x100 * n)
	if ticks != n {
		t.Fatalf("underflows = %d, want %d", ticks, n)
	}
}

func TestSquareWaveTogglesEveryReload(t *testing.T) {
	p := New()
	var count int
	p.RaiseIRQ0 = func() { count++ }
	programChannel0(p, ModeSquareWave, 4)

	p.Advance(16) // 4 underflows (4 output toggles) -> 4 IRQ0s
	if count != 4 {
		t.Fatalf("square wave IRQ0 count = %d, want 4", count)
	}
}

func TestReadBackLatchesCount(t *testing.T) {
	p := New()
	programChannel0(p, ModeRateGenerator, 1000)
	p.Advance(10)
	p.WriteCommand(0x00) // latch channel 0
	lo := p.ReadData(0)
	hi := p.ReadData(0)
	got := uint16(lo) | uint16(hi)<<8
	if got != 990 {
		t.Fatalf("latched count = %d, want 990", got)
	}
}

func TestUnprogrammedChannelDoesNotUnderflow(t *testing.T) {
	p := New()
	var count int
	p.RaiseIRQ0 = func() { count++ }
	p.Advance(1000)
	if count != 0 {
		t.Fatalf("unprogrammed channel raised IRQ0 %d times", count)
	}
}
