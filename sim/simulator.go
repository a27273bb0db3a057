package sim

import (
	"github.com/sirupsen/logrus"
)

// Simulation owns one Server, NWorkers Workers, and the 2*NWorkers
// bounded Fifos connecting them, and drives the global tick loop of
// spec.md §4.5. It is strictly single-threaded and synchronous: there
// are no goroutines, no real channels, and no real clocks here (spec.md
// §5) — every "channel" is a Fifo whose packets carry their own future
// arrival tick.
type Simulation struct {
	cfg      Config
	server   *Server
	workers  []*Worker
	sampleQs []*Fifo
	updateQs []*Fifo
	log      logrus.FieldLogger
}

// New constructs a Simulation ready to process numSamples samples. It
// returns a Configuration error (spec.md §7) if cfg cannot guarantee
// termination.
func New(cfg Config, numSamples int, log logrus.FieldLogger) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logrus.StandardLogger()
	}

	s := &Simulation{
		cfg:      cfg,
		server:   NewServer(cfg, numSamples),
		workers:  make([]*Worker, cfg.NWorkers),
		sampleQs: make([]*Fifo, cfg.NWorkers),
		updateQs: make([]*Fifo, cfg.NWorkers),
		log:      log,
	}
	for i := 0; i < cfg.NWorkers; i++ {
		s.workers[i] = NewWorker(cfg)
		s.sampleQs[i] = NewFifo(cfg.FifoDepth)
		s.updateQs[i] = NewFifo(cfg.FifoDepth)
	}
	return s, nil
}

// step advances every component by exactly one tick: the server runs
// before the workers, and its newly issued samples are pushed into the
// sample Fifos only after every worker has already ticked this cycle.
// This ordering guarantee (spec.md §4.5) ensures no worker can observe a
// sample the same cycle it was sent, even when SendDelay+NetworkDelay is
// 0 and its ArrivalTick equals the tick it was issued at.
func (s *Simulation) step() {
	issued := s.server.Step(s.sampleQs, s.updateQs)
	for i, w := range s.workers {
		w.Step(s.sampleQs[i], s.updateQs[i])
	}
	for _, is := range issued {
		s.sampleQs[is.WorkerIndex].PushBack(is.Packet)
	}
}

// Run executes the simulation to completion and returns the cycle
// count and the update log (spec.md §4.5). Run assumes New already
// validated cfg, which in turn guarantees termination.
func (s *Simulation) Run() (Tick, UpdateLog) {
	for !s.server.FinishedReceiving() {
		s.log.Debugf("[tick %07d] stepping simulation", s.server.Tick())
		s.step()
	}
	s.server.Cleanup()
	s.log.Infof("[tick %07d] simulation complete, %d updates logged", s.server.Tick(), len(s.server.UpdateLog()))
	return s.server.Tick(), s.server.UpdateLog()
}

// Run is a convenience wrapper for New+Run, matching the shape of the
// teacher's package-level sim.NewSimulator/Run split (sim/simulator.go).
func Run(cfg Config, numSamples int, log logrus.FieldLogger) (Tick, UpdateLog, error) {
	s, err := New(cfg, numSamples, log)
	if err != nil {
		return 0, nil, err
	}
	cycles, log2 := s.Run()
	return cycles, log2, nil
}
