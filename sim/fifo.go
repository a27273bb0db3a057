package sim

// Fifo is a capacity-limited ordered queue of Packets whose elements
// carry arrival ticks (spec.md §4.2). All backpressure in the simulator
// is expressed through Fifo.Full and Fifo.CanPop — a packet "in flight"
// is not observable by its consumer until the current tick reaches its
// ArrivalTick.
type Fifo struct {
	packets  []Packet
	capacity int
}

// NewFifo creates an empty Fifo with the given capacity.
func NewFifo(capacity int) *Fifo {
	return &Fifo{capacity: capacity}
}

// Len returns the number of packets currently queued.
func (f *Fifo) Len() int { return len(f.packets) }

// Full reports whether the queue is at capacity; producers must not
// push_back onto a full queue.
func (f *Fifo) Full() bool { return len(f.packets) >= f.capacity }

// PushBack appends p to the tail of the queue. It panics if the queue is
// full — callers must check Full first, exactly as spec.md §4.2 requires
// ("fails (or simply refused by the producer) if len == capacity"); every
// caller in this package already gates on Full, so reaching capacity here
// is an internal invariant violation (spec.md §7).
func (f *Fifo) PushBack(p Packet) {
	if f.Full() {
		panic("sim: PushBack on full Fifo")
	}
	f.packets = append(f.packets, p)
}

// PeekHead returns the packet at the head of the queue without removing
// it, and whether the queue was non-empty.
func (f *Fifo) PeekHead() (Packet, bool) {
	if len(f.packets) == 0 {
		return Packet{}, false
	}
	return f.packets[0], true
}

// CanPop reports whether the head packet's ArrivalTick has elapsed by
// now. This is the sole admission predicate used by consumers (spec.md
// §4.2); an empty queue can never be popped.
func (f *Fifo) CanPop(now Tick) bool {
	head, ok := f.PeekHead()
	return ok && head.ArrivalTick <= now
}

// PopHead removes and returns the head packet. It panics if the queue is
// empty, an internal invariant violation since every caller in this
// package checks CanPop first. PopHead itself does not look at the head's
// ArrivalTick; gating on arrival is the caller's CanPop check.
func (f *Fifo) PopHead() Packet {
	if len(f.packets) == 0 {
		panic("sim: PopHead on empty Fifo")
	}
	p := f.packets[0]
	f.packets = f.packets[1:]
	return p
}
