package bundle

import (
	"math"
	"math/rand"

	"github.com/san-kum/reachset/internal/geom"
)

// Decompose searches for a better template by bounded randomized local
// search: mutate one template entry at a time, reject degenerate
// candidates, keep the best-scoring template seen. weight in [0,1]
// trades offset distance (1) against orthogonal proximity (0) in the
// score; lower scores are better. Directions and offsets are unchanged.
//
// The search is a heuristic. Its only contract is that the returned
// template never scores worse than the current one.
func (b *Bundle) Decompose(weight float64, maxIters int) *Bundle {
	dists := b.offsetDistances()

	current := cloneTemplate(b.template)
	best := cloneTemplate(b.template)
	bestScore := b.templateScore(best, dists, weight)

	for i := 0; i < maxIters; i++ {
		candidate := b.mutateTemplate(current)
		if !b.templateIsValid(candidate) {
			continue
		}
		score := b.templateScore(candidate, dists, weight)
		if score < bestScore {
			best = cloneTemplate(candidate)
			bestScore = score
		}
		current = candidate
	}

	return NewWithAssumptions(b.directions, b.offsetPlus, b.offsetMinus, best,
		b.assumeDirs, b.assumeOffsets)
}

// mutateTemplate swaps one random entry of one random row for a random
// direction index.
func (b *Bundle) mutateTemplate(template [][]int) [][]int {
	candidate := cloneTemplate(template)
	row := rand.Intn(len(candidate))
	col := rand.Intn(b.Dim())
	candidate[row][col] = rand.Intn(b.Size())
	return candidate
}

// templateIsValid rejects candidates with duplicate rows (one
// parallelotope listed twice, up to permutation) or rows whose
// directions are singular.
func (b *Bundle) templateIsValid(template [][]int) bool {
	for i, row := range template {
		if geom.IsPermutationOfOtherRows(template, i) {
			return false
		}
		if geom.IsSingular(gatherRows(b.directions, row)) {
			return false
		}
	}
	return true
}

// templateScore aggregates weight*maxOffsetDist + (1-weight)*maxOrthProx
// over all rows of the template.
func (b *Bundle) templateScore(template [][]int, dists geom.Vector, weight float64) float64 {
	return weight*maxOffsetDist(template, dists) + (1-weight)*b.maxOrthProx(template)
}

// offsetDistances is the per-direction distance between the two
// half-space offsets, normalized by direction norm.
func (b *Bundle) offsetDistances() geom.Vector {
	dists := make(geom.Vector, b.Size())
	for i, dir := range b.directions {
		dists[i] = math.Abs(b.offsetPlus[i]-b.offsetMinus[i]) / dir.Norm()
	}
	return dists
}

// maxOffsetDist is the maximum over rows of the product of the row's
// offset distances.
func maxOffsetDist(template [][]int, dists geom.Vector) float64 {
	maxDist := math.Inf(-1)
	for _, row := range template {
		dist := 1.0
		for _, idx := range row {
			dist *= dists[idx]
		}
		if dist > maxDist {
			maxDist = dist
		}
	}
	return maxDist
}

// maxOrthProx is the maximum pairwise orthogonal proximity within any
// row, read from the cached proximity matrix.
func (b *Bundle) maxOrthProx(template [][]int) float64 {
	maxProx := math.Inf(-1)
	for _, row := range template {
		rowProx := 0.0
		for i := 0; i < len(row); i++ {
			for j := i + 1; j < len(row); j++ {
				if p := b.proximity[row[i]][row[j]]; p > rowProx {
					rowProx = p
				}
			}
		}
		if rowProx > maxProx {
			maxProx = rowProx
		}
	}
	return maxProx
}
