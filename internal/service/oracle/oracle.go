// Package oracle decides whether two face embeddings belong to the same person.
package oracle

import (
	"math"

	"campusguard/internal/model"
)

// DefaultTolerance is the distance under which two embeddings match.
const DefaultTolerance = 0.6

// Oracle compares a candidate embedding against a list of embeddings and
// returns one flag per entry of known.
type Oracle interface {
	Compare(known []model.Embedding, candidate model.Embedding) []bool
}

// DistanceOracle matches embeddings whose Euclidean distance is at most
// Tolerance. It holds no state and is safe for concurrent use.
type DistanceOracle struct {
	Tolerance float64
}

// NewDistanceOracle returns an oracle with the given tolerance, falling back
// to DefaultTolerance for non-positive values.
func NewDistanceOracle(tolerance float64) DistanceOracle {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	return DistanceOracle{Tolerance: tolerance}
}

// Compare implements Oracle.
func (o DistanceOracle) Compare(known []model.Embedding, candidate model.Embedding) []bool {
	matches := make([]bool, len(known))
	for i, k := range known {
		d, ok := Distance(k, candidate)
		matches[i] = ok && d <= o.Tolerance
	}
	return matches
}

// Distance returns the Euclidean distance between a and b. ok is false when
// the dimensions differ or either embedding is empty.
func Distance(a, b model.Embedding) (float64, bool) {
	if len(a) == 0 || len(a) != len(b) {
		return 0, false
	}
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum), true
}

// FirstMatch returns the index of the first matching entry, or -1.
func FirstMatch(o Oracle, known []model.Embedding, candidate model.Embedding) int {
	if len(known) == 0 {
		return -1
	}
	for i, ok := range o.Compare(known, candidate) {
		if ok {
			return i
		}
	}
	return -1
}

// AnyMatch reports whether candidate matches any entry of known.
func AnyMatch(o Oracle, known []model.Embedding, candidate model.Embedding) bool {
	return FirstMatch(o, known, candidate) >= 0
}
