package train

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSparseMatrix_Insert_TracksNnzAndDims(t *testing.T) {
	m := NewSparseMatrix(0, 0)

	m.Insert(0, 0, 1.0)
	m.Insert(0, 1, 2.0)
	m.Insert(2, 1, 3.0)

	assert.Equal(t, 3, m.Nnz())
	assert.Equal(t, 3, m.NRows())
	assert.Equal(t, 2, m.NCols())
	assert.Equal(t, 2, m.NnzRow(0))
	assert.Equal(t, 1, m.NnzRow(2))
	assert.Equal(t, 0, m.NnzRow(1))
	assert.Equal(t, 1, m.NnzCol(0))
	assert.Equal(t, 2, m.NnzCol(1))
}

func TestSparseMatrix_InsertionOrderIsStableIterationOrder(t *testing.T) {
	// Insertion order is the order that assigns sample_id (spec.md §4.6):
	// the i-th call to Insert must be the i-th entry returned by At/Entries.
	m := NewSparseMatrix(0, 0)
	want := []Entry{
		{Row: 3, Col: 1, Value: 0.5},
		{Row: 0, Col: 2, Value: -0.5},
		{Row: 1, Col: 1, Value: 1.0},
	}
	for _, e := range want {
		m.Insert(e.Row, e.Col, e.Value)
	}

	for i, e := range want {
		assert.Equal(t, e, m.At(i))
	}
	assert.Equal(t, want, m.Entries())
}

func TestSparseMatrix_NnzRowCol_SumsMatchTotalEntries(t *testing.T) {
	m := NewSparseMatrix(0, 0)
	ratings := [][2]int{{0, 0}, {0, 1}, {1, 0}, {1, 1}, {2, 0}}
	for _, rc := range ratings {
		m.Insert(rc[0], rc[1], 1.0)
	}

	var rowSum, colSum int
	for r := 0; r < m.NRows(); r++ {
		rowSum += m.NnzRow(r)
	}
	for c := 0; c < m.NCols(); c++ {
		colSum += m.NnzCol(c)
	}
	assert.Equal(t, len(ratings), rowSum)
	assert.Equal(t, len(ratings), colSum)
}
