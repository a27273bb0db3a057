// Package train implements the downstream, single-threaded trainer: the
// sparse rating matrix, the matrix-completion weights, and the
// staleness-aware SGD replay that consumes a sim.UpdateLog (spec.md
// §4.6–§4.8).
package train

// Entry is one revealed (row, col, value) triple of a SparseMatrix.
type Entry struct {
	Row, Col int
	Value    float64
}

// SparseMatrix is an append-only coordinate-list store (spec.md §4.6).
// Iteration order is insertion order and is stable: it is the order
// that assigns sample_id to each entry, so a plain Go map cannot be
// used as the backing store (map iteration order is randomized).
type SparseMatrix struct {
	entries []Entry
	nnzRow  map[int]int
	nnzCol  map[int]int
	nRows   int
	nCols   int
}

// NewSparseMatrix creates an empty matrix with nRows rows and nCols
// columns already allocated (rows/cols with no entries yet are valid —
// the Netflix loader grows nRows/nCols incrementally as it discovers
// new users/movies, see netflix.Load).
func NewSparseMatrix(nRows, nCols int) *SparseMatrix {
	return &SparseMatrix{
		nnzRow: make(map[int]int),
		nnzCol: make(map[int]int),
		nRows:  nRows,
		nCols:  nCols,
	}
}

// GrowRows ensures the matrix has at least n rows.
func (m *SparseMatrix) GrowRows(n int) {
	if n > m.nRows {
		m.nRows = n
	}
}

// GrowCols ensures the matrix has at least n columns.
func (m *SparseMatrix) GrowCols(n int) {
	if n > m.nCols {
		m.nCols = n
	}
}

// Insert appends (row, col, value) to the matrix and updates the
// per-row and per-column non-zero counts. Its insertion index is the
// sample_id a simulator run assigns this entry (spec.md §4.6, §6.2).
func (m *SparseMatrix) Insert(row, col int, value float64) {
	m.entries = append(m.entries, Entry{Row: row, Col: col, Value: value})
	m.nnzRow[row]++
	m.nnzCol[col]++
	m.GrowRows(row + 1)
	m.GrowCols(col + 1)
}

// NRows returns the number of rows.
func (m *SparseMatrix) NRows() int { return m.nRows }

// NCols returns the number of columns.
func (m *SparseMatrix) NCols() int { return m.nCols }

// Nnz returns the total number of revealed entries.
func (m *SparseMatrix) Nnz() int { return len(m.entries) }

// NnzRow returns the number of revealed entries in row r.
func (m *SparseMatrix) NnzRow(r int) int { return m.nnzRow[r] }

// NnzCol returns the number of revealed entries in column c.
func (m *SparseMatrix) NnzCol(c int) int { return m.nnzCol[c] }

// At returns the i-th entry in insertion order. i is the sample_id that
// a simulator run over this matrix's Nnz() samples would assign it.
func (m *SparseMatrix) At(i int) Entry { return m.entries[i] }

// Entries returns every entry in insertion order. The returned slice
// must not be mutated by callers.
func (m *SparseMatrix) Entries() []Entry { return m.entries }
