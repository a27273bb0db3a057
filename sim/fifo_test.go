package sim

import "testing"

func TestFifo_PushBack_PopHead_FIFOOrder(t *testing.T) {
	// GIVEN an empty Fifo with capacity 2
	f := NewFifo(2)

	// WHEN two packets are pushed
	f.PushBack(Packet{ArrivalTick: 0, SampleID: 0})
	f.PushBack(Packet{ArrivalTick: 0, SampleID: 1})

	// THEN it reports full and pops in insertion order
	if !f.Full() {
		t.Errorf("Full: got false, want true after filling to capacity")
	}
	if got := f.PopHead().SampleID; got != 0 {
		t.Errorf("PopHead: got sample %d, want 0", got)
	}
	if got := f.PopHead().SampleID; got != 1 {
		t.Errorf("PopHead: got sample %d, want 1", got)
	}
	if f.Len() != 0 {
		t.Errorf("Len: got %d, want 0 after draining", f.Len())
	}
}

func TestFifo_PushBack_OnFull_Panics(t *testing.T) {
	// GIVEN a Fifo at capacity
	f := NewFifo(1)
	f.PushBack(Packet{})

	// WHEN/THEN pushing again panics
	defer func() {
		if recover() == nil {
			t.Errorf("PushBack on full Fifo: expected panic, got none")
		}
	}()
	f.PushBack(Packet{})
}

func TestFifo_PopHead_OnEmpty_Panics(t *testing.T) {
	f := NewFifo(1)
	defer func() {
		if recover() == nil {
			t.Errorf("PopHead on empty Fifo: expected panic, got none")
		}
	}()
	f.PopHead()
}

func TestFifo_CanPop_GatesOnArrivalTick(t *testing.T) {
	// GIVEN a Fifo whose head packet arrives at tick 5
	f := NewFifo(1)
	f.PushBack(Packet{ArrivalTick: 5})

	// THEN CanPop is false before the arrival tick and true at/after it
	if f.CanPop(4) {
		t.Errorf("CanPop(4): got true, want false (arrival is tick 5)")
	}
	if !f.CanPop(5) {
		t.Errorf("CanPop(5): got false, want true")
	}
	if !f.CanPop(6) {
		t.Errorf("CanPop(6): got false, want true")
	}
}

func TestFifo_CanPop_Empty_False(t *testing.T) {
	f := NewFifo(1)
	if f.CanPop(0) {
		t.Errorf("CanPop on empty Fifo: got true, want false")
	}
}

func TestFifo_PeekHead_DoesNotRemove(t *testing.T) {
	f := NewFifo(1)
	f.PushBack(Packet{SampleID: 7})

	got, ok := f.PeekHead()
	if !ok || got.SampleID != 7 {
		t.Errorf("PeekHead: got (%v, %v), want (SampleID 7, true)", got, ok)
	}
	if f.Len() != 1 {
		t.Errorf("PeekHead: Len() got %d, want 1 (unchanged)", f.Len())
	}
}
