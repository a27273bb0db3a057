package train

import (
	"github.com/paulmure/hogmild-sim/sim"
)

// Trainer replays a sim.UpdateLog against a SparseMatrix/Weights pair,
// reproducing the staleness pattern the simulator recorded rather than
// a plain sequential or fully-batched SGD pass (spec.md §4.8).
type Trainer struct {
	matrix  *SparseMatrix
	weights *Weights

	alpha0            float64
	decayRate         float64
	maxEpoch          int
	stoppingCriterion float64
}

// NewTrainer builds a Trainer over matrix/weights using the learning
// rate schedule lr(epoch) = alpha0 / (1 + decayRate*epoch)
// (matrix_completion.rs's train loop), stopping after maxEpoch epochs or
// once the relative improvement between consecutive epoch losses drops
// below stoppingCriterion, whichever comes first.
func NewTrainer(matrix *SparseMatrix, weights *Weights, alpha0, decayRate float64, maxEpoch int, stoppingCriterion float64) *Trainer {
	return &Trainer{
		matrix:            matrix,
		weights:           weights,
		alpha0:            alpha0,
		decayRate:         decayRate,
		maxEpoch:          maxEpoch,
		stoppingCriterion: stoppingCriterion,
	}
}

// Weights exposes the trainer's (mutating) weight state.
func (t *Trainer) Weights() *Weights { return t.weights }

// run is one maximal subsequence of the log whose entries share a
// weight_version — the unit a single replay pass reads-then-writes as a
// batch (spec.md §4.8).
type run struct {
	version int
	entries []sim.Packet
}

// groupRuns splits log into maximal runs of consecutive packets sharing
// a weight_version. The log need not be sorted by version — it is
// sorted by arrival/fold order — so a version can recur in a later,
// disjoint run; each occurrence is still its own run.
func groupRuns(log sim.UpdateLog) []run {
	var runs []run
	for _, p := range log {
		if n := len(runs); n > 0 && runs[n-1].version == p.WeightVersion {
			runs[n-1].entries = append(runs[n-1].entries, p)
			continue
		}
		runs = append(runs, run{version: p.WeightVersion, entries: []sim.Packet{p}})
	}
	return runs
}

// lrForEpoch returns the learning rate for the given 0-indexed epoch.
func (t *Trainer) lrForEpoch(epoch int) float64 {
	return t.alpha0 / (1 + t.decayRate*float64(epoch))
}

// ReplayEpoch replays the entire log once at the given epoch's learning
// rate and returns the total loss summed over every sample. Within each
// weight-version run, every sample's gradient is computed against the
// same read snapshot of the weights before any of that run's updates
// are applied — reproducing the staleness a Hogwild worker actually
// observed, instead of a fully sequential SGD pass (spec.md §4.8, "Why
// run-grouped replay").
func (t *Trainer) ReplayEpoch(log sim.UpdateLog, epoch int) float64 {
	lr := t.lrForEpoch(epoch)
	var totalLoss float64

	for _, r := range groupRuns(log) {
		updates := make([]sampleUpdate, len(r.entries))
		for i, p := range r.entries {
			e := t.matrix.At(p.SampleID)
			updates[i] = t.weights.gradient(t.matrix, e.Row, e.Col, e.Value, lr)
			totalLoss += updates[i].loss
		}
		for _, u := range updates {
			t.weights.apply(u)
		}
	}
	return totalLoss
}

// Train replays log for up to maxEpoch epochs, stopping early once the
// relative improvement between consecutive epochs' total loss drops
// below stoppingCriterion (matrix_completion.rs's train stopping rule:
// (last - curr) / last < stopping_criterion). It returns the per-epoch
// loss history, in order.
func (t *Trainer) Train(log sim.UpdateLog) []float64 {
	history := make([]float64, 0, t.maxEpoch)
	var last float64
	for epoch := 0; epoch < t.maxEpoch; epoch++ {
		curr := t.ReplayEpoch(log, epoch)
		history = append(history, curr)
		if epoch > 0 && last != 0 {
			if (last-curr)/last < t.stoppingCriterion {
				break
			}
		}
		last = curr
	}
	return history
}
