package graph

// NoCost is returned by Cost when (i,j) is not an arc.
const NoCost = -1.0

// Read-only weighted digraph over vertices 0..VertexCount()-1.
// Implementations are immutable once constructed.
type Graph interface {
	// Return the number of vertices.
	VertexCount() int
	// Return the cost of arc (i,j), or NoCost if (i,j) is not an arc.
	// Cost is always >= 0 when IsArc(i,j) is true.
	Cost(i, j int) float64
	// Report whether (i,j) is an arc. False for i == j and out of range indices.
	IsArc(i, j int) bool
}

// Matrix is a dense Graph backed by a cost matrix.
// Negative entries and the diagonal are treated as missing arcs.
type Matrix struct {
	costs [][]float64
}

// NewMatrix copies costs into an immutable Matrix graph.
// Rows shorter than the matrix dimension are padded with missing arcs.
func NewMatrix(costs [][]float64) *Matrix {
	n := len(costs)
	m := &Matrix{costs: make([][]float64, n)}
	for i := 0; i < n; i++ {
		row := make([]float64, n)
		for j := 0; j < n; j++ {
			row[j] = NoCost
			if i != j && j < len(costs[i]) && costs[i][j] >= 0 {
				row[j] = costs[i][j]
			}
		}
		m.costs[i] = row
	}
	return m
}

func (m *Matrix) VertexCount() int { return len(m.costs) }

func (m *Matrix) Cost(i, j int) float64 {
	if !validCoordinates(i, j, len(m.costs)) {
		return NoCost
	}
	return m.costs[i][j]
}

func (m *Matrix) IsArc(i, j int) bool {
	return validCoordinates(i, j, len(m.costs)) && m.costs[i][j] >= 0
}

func validCoordinates(i, j, n int) bool {
	return i >= 0 && i < n && j >= 0 && j < n
}
