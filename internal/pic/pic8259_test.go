package pic

import "testing"

func TestDefaultVectorBase(t *testing.T) {
	p := New()
	p.Raise(1)
	vec, ok := p.PendingVector()
	if !ok || vec != 0x09 {
		t.Fatalf("PendingVector = %#x,%v want 0x09,true", vec, ok)
	}
}

func TestMaskBlocksRequest(t *testing.T) {
	p := New()
	p.WriteData(0xFF) // mask everything (OCW1, no init in progress)
	p.Raise(0)
	if _, ok := p.PendingVector(); ok {
		t.Fatalf("masked line reported pending")
	}
}

func TestPriorityLowestNumberWins(t *testing.T) {
	p := New()
	p.Raise(5)
	p.Raise(0)
	vec, ok := p.PendingVector()
	if !ok || vec != p.VectorBase() {
		t.Fatalf("expected IRQ0 vector, got %#x ok=%v", vec, ok)
	}
}

func TestAcknowledgeMovesToInService(t *testing.T) {
	p := New()
	p.Raise(2)
	vec := p.Acknowledge()
	if vec != p.VectorBase()+2 {
		t.Fatalf("Acknowledge vector = %#x", vec)
	}
	if _, ok := p.PendingVector(); ok {
		t.Fatalf("line still pending after acknowledge with no re-raise")
	}
	// Lower-priority line still blocked while IRQ2 is in service.
	p.Raise(5)
	if _, ok := p.PendingVector(); ok {
		t.Fatalf("lower-priority line should be blocked while higher is in-service")
	}
	// Higher-priority (lower-numbered) line pre-empts.
	p.Raise(1)
	vec, ok := p.PendingVector()
	if !ok || vec != p.VectorBase()+1 {
		t.Fatalf("expected IRQ1 to pre-empt, got %#x ok=%v", vec, ok)
	}
}

func TestEOIClearsInService(t *testing.T) {
	p := New()
	p.Raise(3)
	p.Acknowledge()
	p.WriteCommand(eoiNonSpecific)
	p.Raise(3)
	if _, ok := p.PendingVector(); !ok {
		t.Fatalf("line should be re-acknowledgeable after EOI")
	}
}

func TestICW2SetsVectorBase(t *testing.T) {
	p := New()
	p.WriteCommand(0x11) // ICW1, ICW4 needed
	p.WriteData(0x50)    // ICW2: vector base 0x50
	p.WriteData(0x04)    // ICW3 (ignored)
	p.WriteData(0x01)    // ICW4 (ignored)
	if p.VectorBase() != 0x50 {
		t.Fatalf("VectorBase = %#x, want 0x50", p.VectorBase())
	}
	p.Raise(0)
	vec, ok := p.PendingVector()
	if !ok || vec != 0x50 {
		t.Fatalf("PendingVector after reprogram = %#x,%v want 0x50,true", vec, ok)
	}
}

func TestReadIRRandISR(t *testing.T) {
	p := New()
	p.Raise(4)
	p.WriteCommand(ocw3ReadIRR)
	if got := p.ReadCommand(); got != 1<<4 {
		t.Fatalf("ReadCommand(IRR) = %#x, want %#x", got, 1<<4)
	}
	p.Acknowledge()
	p.WriteCommand(ocw3ReadISR)
	if got := p.ReadCommand(); got != 1<<4 {
		t.Fatalf("ReadCommand(ISR) = %#x, want %#x", got, 1<<4)
	}
}
