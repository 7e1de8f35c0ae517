// Package index provides an exact flat L2 nearest-neighbor index over an
// in-memory embedding matrix. Every query compares against every stored
// vector, which favors accuracy over scale and is the right trade-off for
// corpora of hundreds to low thousands of rows.
package index

import (
	"fmt"
	"sort"

	"github.com/alrashid-cloud/ragserve/internal/domain"
)

// Match is a single nearest-neighbor hit. Position refers to insertion
// order, which equals the source table's row order.
type Match struct {
	Position int
	Distance float32 // squared euclidean distance
}

// Flat is an immutable exhaustive L2 index. Build it once with New and
// share it freely; Search never mutates state.
type Flat struct {
	dim     int
	vectors [][]float32
}

// New builds a flat index from an (N x D) embedding matrix, inserting all
// N vectors in matrix order. The matrix must be non-empty and rectangular.
func New(matrix [][]float32) (*Flat, error) {
	if len(matrix) == 0 {
		return nil, fmt.Errorf("%w: embedding matrix is empty", domain.ErrInvalidInput)
	}
	dim := len(matrix[0])
	if dim == 0 {
		return nil, fmt.Errorf("%w: embedding matrix has zero dimension", domain.ErrInvalidInput)
	}

	vectors := make([][]float32, len(matrix))
	for i, v := range matrix {
		if len(v) != dim {
			return nil, fmt.Errorf("%w: row %d has width %d, want %d",
				domain.ErrIndexBuild, i, len(v), dim)
		}
		vec := make([]float32, dim)
		copy(vec, v)
		vectors[i] = vec
	}

	return &Flat{dim: dim, vectors: vectors}, nil
}

// Len returns the number of indexed vectors.
func (f *Flat) Len() int { return len(f.vectors) }

// Dim returns the embedding dimension.
func (f *Flat) Dim() int { return f.dim }

// Search returns the k nearest neighbors of query by squared L2 distance,
// ordered by increasing distance. Ties keep insertion order. When k
// exceeds the number of indexed vectors, all of them are returned.
func (f *Flat) Search(query []float32, k int) ([]Match, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", domain.ErrInvalidInput, k)
	}
	if len(query) != f.dim {
		return nil, fmt.Errorf("%w: query has width %d, index has width %d",
			domain.ErrDimMismatch, len(query), f.dim)
	}

	matches := make([]Match, len(f.vectors))
	for i, v := range f.vectors {
		matches[i] = Match{Position: i, Distance: squaredL2(query, v)}
	}
	sort.SliceStable(matches, func(a, b int) bool {
		return matches[a].Distance < matches[b].Distance
	})

	if k > len(matches) {
		k = len(matches)
	}
	return matches[:k], nil
}

func squaredL2(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
