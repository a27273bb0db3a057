package sim

// pendingVersion is one entry of the weight-version queue: a future
// commit tick paired with the weight version that becomes current at
// that tick.
type pendingVersion struct {
	commitTick Tick
	version    int
}

// IssuedSample is a sample the server issued this tick, destined for a
// particular worker's sample Fifo. The driver (Simulation.step) pushes
// these into sampleQs[WorkerIndex] only after every worker has ticked
// this cycle, so no worker can pop a sample during the tick it was
// stamped, even when SendDelay+NetworkDelay is 0 and ArrivalTick equals
// that tick (spec.md §4.5's ordering guarantee).
type IssuedSample struct {
	WorkerIndex int
	Packet      Packet
}

// Server is the parameter-server model (spec.md §4.4): it issues
// samples rate-limited by weight-bank occupancy, receives folded
// updates from the workers, drives the fold pipeline, and maintains the
// logical weight version observed by future samples.
type Server struct {
	cfg        Config
	numSamples int

	tick               Tick
	nextSample         int
	currWeightVersion  int
	bankStates         []Tick
	weightVersionQueue []pendingVersion
	foldReadyAt        Tick
	updateLog          UpdateLog
}

// NewServer creates a Server that will issue exactly numSamples samples
// before it is done sending.
func NewServer(cfg Config, numSamples int) *Server {
	return &Server{
		cfg:        cfg,
		numSamples: numSamples,
		updateLog:  make(UpdateLog, 0, numSamples),
	}
}

// FinishedReceiving reports whether every sample has been folded and
// appended to the update log — the simulation's termination condition.
func (s *Server) FinishedReceiving() bool {
	return len(s.updateLog) == s.numSamples
}

// UpdateLog returns the folds recorded so far, in fold order.
func (s *Server) UpdateLog() UpdateLog { return s.updateLog }

// Tick returns the server's current tick.
func (s *Server) Tick() Tick { return s.tick }

func (s *Server) hasFreeWeightBanks() bool {
	return len(s.bankStates) < s.cfg.NWeightBanks
}

func (s *Server) hasMoreSamples() bool {
	return s.nextSample < s.numSamples
}

func (s *Server) canSend() bool {
	return s.hasMoreSamples() && s.hasFreeWeightBanks()
}

func (s *Server) canFold() bool {
	return s.tick >= s.foldReadyAt
}

// clearFreeBanks pops bank occupancies that have lapsed (step 1 of
// spec.md §4.4's per-tick invariant order).
func (s *Server) clearFreeBanks() {
	for len(s.bankStates) > 0 && s.bankStates[0] <= s.tick {
		s.bankStates = s.bankStates[1:]
	}
}

// spearheadWeightVersion is the highest version currently scheduled to
// commit — the tail of the pending-version queue, or the current
// version if nothing is pending.
func (s *Server) spearheadWeightVersion() int {
	if n := len(s.weightVersionQueue); n > 0 {
		return s.weightVersionQueue[n-1].version
	}
	return s.currWeightVersion
}

// commitPendingVersions pops committed versions off the pending queue
// (step 2 of spec.md §4.4's per-tick invariant order).
func (s *Server) commitPendingVersions() {
	for len(s.weightVersionQueue) > 0 && s.weightVersionQueue[0].commitTick <= s.tick {
		s.currWeightVersion = s.weightVersionQueue[0].version
		s.weightVersionQueue = s.weightVersionQueue[1:]
	}
}

// trySendSamples implements step 3 of spec.md §4.4: scan the worker
// sample Fifos in index order, emitting one sample to each with room,
// stopping the instant bank capacity or the sample supply runs out —
// which may happen mid-scan, so a tick can issue anywhere from zero to
// NWorkers samples.
func (s *Server) trySendSamples(sampleQs []*Fifo) []IssuedSample {
	if !s.canSend() {
		return nil
	}

	var issued []IssuedSample
	for i, q := range sampleQs {
		if q.Full() {
			continue
		}
		issued = append(issued, s.sendNextSample(i))
		if !s.canSend() {
			break
		}
	}
	return issued
}

func (s *Server) sendNextSample(workerIndex int) IssuedSample {
	arrival := s.tick + s.cfg.SendDelay + s.cfg.NetworkDelay
	p := Packet{
		ArrivalTick:   arrival,
		SampleID:      s.nextSample,
		WeightVersion: s.currWeightVersion,
	}
	s.nextSample++
	s.bankStates = append(s.bankStates, s.tick+s.cfg.SendDelay)
	return IssuedSample{WorkerIndex: workerIndex, Packet: p}
}

// pushNewWeightVersion schedules the version that will become current
// once this fold's latency elapses (spec.md §4.4, "Why weight version =
// spearhead + count").
func (s *Server) pushNewWeightVersion(numUpdates int) {
	s.weightVersionQueue = append(s.weightVersionQueue, pendingVersion{
		commitTick: s.tick + s.cfg.FoldLatency,
		version:    s.spearheadWeightVersion() + numUpdates,
	})
}

// tryFold implements step 4 of spec.md §4.4: if the fold unit is ready,
// collect at most one update per worker (in index order) whose head has
// arrived, up to NFolders total, and fold them as a single batch.
func (s *Server) tryFold(updateQs []*Fifo) {
	if !s.canFold() {
		return
	}

	var collected []Packet
	for _, q := range updateQs {
		if len(collected) >= s.cfg.NFolders {
			break
		}
		if q.CanPop(s.tick) {
			collected = append(collected, q.PopHead())
		}
	}
	if len(collected) == 0 {
		return
	}

	s.pushNewWeightVersion(len(collected))
	s.foldReadyAt = s.tick + s.cfg.FoldII
	for _, u := range collected {
		u.ArrivalTick = s.tick + s.cfg.FoldLatency
		s.updateLog = append(s.updateLog, u)
	}
}

// Step advances the server by one tick: free lapsed banks, commit
// pending weight versions, try to send new samples, try to fold
// arrived updates, then advance the tick. It returns the samples issued
// this tick, which the driver must push into the corresponding worker
// sample Fifos only after ticking every worker this cycle (spec.md
// §4.5).
func (s *Server) Step(sampleQs, updateQs []*Fifo) []IssuedSample {
	s.clearFreeBanks()
	s.commitPendingVersions()
	issued := s.trySendSamples(sampleQs)
	s.tryFold(updateQs)
	s.tick++
	return issued
}

// Cleanup advances the tick to the last fold's arrival and drains any
// remaining pending weight versions, per spec.md §4.4's "Cleanup" step.
// It panics if the invariants it is meant to restore do not hold —
// those are internal invariant violations (spec.md §7), not
// recoverable errors.
func (s *Server) Cleanup() {
	var maxTick Tick
	for _, u := range s.updateLog {
		if u.ArrivalTick > maxTick {
			maxTick = u.ArrivalTick
		}
	}
	s.tick = maxTick
	s.commitPendingVersions()

	if len(s.weightVersionQueue) != 0 {
		panic("sim: weight_version_queue not empty at cleanup")
	}
	if s.currWeightVersion != s.numSamples {
		panic("sim: curr_weight_version does not equal num_samples at cleanup")
	}
	if len(s.updateLog) != s.numSamples {
		panic("sim: update log length does not equal num_samples at cleanup")
	}
}
