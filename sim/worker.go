package sim

// Worker models a pipelined gradient unit: it drains a sample Fifo and
// produces update packets into its own Fifo, gated by an initiation
// interval (throughput) and a latency (pipeline depth), per spec.md
// §4.3. A pipelined functional unit with latency L and initiation
// interval II can accept one new input every II ticks and produces the
// corresponding output L ticks later; the backpressured update Fifo
// captures stall behavior when the server is slow to fold.
type Worker struct {
	cfg Config

	tick      Tick
	nextReady Tick
}

// NewWorker creates a Worker starting at tick 0, immediately ready to fire.
func NewWorker(cfg Config) *Worker {
	return &Worker{cfg: cfg}
}

// Step advances the worker by one global tick. It may fire at most once
// per call: if ready (tick >= nextReady), the sample queue has an
// arrived head, and the update queue has room, it pops the sample,
// stamps it with the worker's round-trip latency, and pushes it onto
// updateQ. The worker's tick always advances by one, whether or not it
// fired.
func (w *Worker) Step(sampleQ, updateQ *Fifo) {
	if w.tick >= w.nextReady && !updateQ.Full() && sampleQ.CanPop(w.tick) {
		s := sampleQ.PopHead()
		s.ArrivalTick = w.tick + w.cfg.GradientLatency + w.cfg.NetworkDelay + w.cfg.SendDelay
		updateQ.PushBack(s)
		w.nextReady = w.tick + w.cfg.GradientII
	}
	w.tick++
}
