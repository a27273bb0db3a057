package train

import (
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// HyperParams are the matrix-completion model's fixed hyperparameters
// (spec.md §4.7): the global bias mu, the per-feature L2 regularization
// weights for the X and Y factors, and the L2 regularization weights
// for the x/y bias vectors.
type HyperParams struct {
	NFeatures int
	Mu        float64
	LamXF     float64
	LamYF     float64
	LamXB     float64
	LamYB     float64
}

// Weights holds the matrix-completion model's trainable parameters: the
// dense row-factor matrix X (nRows x nFeatures), the dense column-factor
// matrix Y (nCols x nFeatures), and the bias vectors Xb/Yb (spec.md
// §4.7). Everything is dense — the factorization is over the full
// row/column space, not just the revealed entries.
type Weights struct {
	hp HyperParams

	X  *mat.Dense
	Y  *mat.Dense
	Xb []float64
	Yb []float64
}

// NewWeights allocates Weights for an nRows x nCols matrix and fills
// every entry from rng with a uniform draw on [-1, 1), in the order X,
// then Y, then Xb, then Yb — matching matrix_completion.rs's
// ModelParams::new fill order exactly, since SGD's trajectory depends
// on the exact sequence of draws from a seeded source.
func NewWeights(nRows, nCols int, hp HyperParams, rng *rand.Rand) *Weights {
	w := &Weights{
		hp: hp,
		X:  mat.NewDense(nRows, hp.NFeatures, nil),
		Y:  mat.NewDense(nCols, hp.NFeatures, nil),
		Xb: make([]float64, nRows),
		Yb: make([]float64, nCols),
	}
	fillUniform(w.X, rng)
	fillUniform(w.Y, rng)
	fillUniformSlice(w.Xb, rng)
	fillUniformSlice(w.Yb, rng)
	return w
}

func fillUniform(m *mat.Dense, rng *rand.Rand) {
	r, c := m.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			m.Set(i, j, uniformSigned(rng))
		}
	}
}

func fillUniformSlice(s []float64, rng *rand.Rand) {
	for i := range s {
		s[i] = uniformSigned(rng)
	}
}

// uniformSigned draws a float64 uniform on [-1, 1).
func uniformSigned(rng *rand.Rand) float64 {
	return rng.Float64()*2 - 1
}

// Predict returns the model's predicted rating for (row, col): the dot
// product of the row and column factors plus both biases and the
// global mean, per spec.md §4.7's "pred" rule.
func (w *Weights) Predict(row, col int) float64 {
	xu := w.X.RawRowView(row)
	yv := w.Y.RawRowView(col)

	var dot float64
	for k := 0; k < w.hp.NFeatures; k++ {
		dot += xu[k] * yv[k]
	}
	return dot + w.Xb[row] + w.Yb[col] + w.hp.Mu
}

// sampleUpdate is the gradient computed for a single revealed entry —
// the delta to apply to its row/column factors and biases, plus the
// loss contribution it produced. It is deliberately inert: computing it
// never mutates Weights, so a batch of updates can be read entirely
// against one consistent weight snapshot before any of them is
// applied (spec.md §4.8's "read-before-write" replay rule).
type sampleUpdate struct {
	row, col int
	loss     float64
	dX, dY   []float64
	dXb, dYb float64
}

// gradient computes the regularized SGD update for one (row, col,
// rating) sample at learning rate lr against the current weights,
// without mutating them (matrix_completion.rs's sgd_step/sample_loss).
func (w *Weights) gradient(m *SparseMatrix, row, col int, rating, lr float64) sampleUpdate {
	xu := w.X.RawRowView(row)
	yv := w.Y.RawRowView(col)

	pred := w.Predict(row, col)
	e := rating - pred

	nnzR := float64(m.NnzRow(row))
	nnzC := float64(m.NnzCol(col))

	var xNormSq, yNormSq float64
	for k := 0; k < w.hp.NFeatures; k++ {
		xNormSq += xu[k] * xu[k]
		yNormSq += yv[k] * yv[k]
	}
	xReg := w.hp.LamXF * xNormSq / nnzR
	yReg := w.hp.LamYF * yNormSq / nnzC
	xbReg := w.hp.LamXB * w.Xb[row] / nnzR
	ybReg := w.hp.LamYB * w.Yb[col] / nnzC

	u := sampleUpdate{
		row:  row,
		col:  col,
		loss: e*e + xReg + yReg + xbReg + ybReg,
		dX:   make([]float64, w.hp.NFeatures),
		dY:   make([]float64, w.hp.NFeatures),
	}
	for k := 0; k < w.hp.NFeatures; k++ {
		u.dX[k] = lr * (e*yv[k] - xReg*xu[k])
		u.dY[k] = lr * (e*xu[k] - yReg*yv[k])
	}
	u.dXb = lr * (e - xbReg)
	u.dYb = lr * (e - ybReg)
	return u
}

// apply commits a previously computed sampleUpdate to the weights.
func (w *Weights) apply(u sampleUpdate) {
	xu := w.X.RawRowView(u.row)
	yv := w.Y.RawRowView(u.col)
	for k := 0; k < w.hp.NFeatures; k++ {
		xu[k] += u.dX[k]
		yv[k] += u.dY[k]
	}
	w.Xb[u.row] += u.dXb
	w.Yb[u.col] += u.dYb
}
