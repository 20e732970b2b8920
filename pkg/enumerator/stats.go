package enumerator

import (
	"time"

	"github.com/operator-framework/mustool/pkg/mus"
)

// Stats are the counters of an enumeration run.
type Stats struct {
	// Checks is the number of oracle calls made by the run.
	Checks int
	MUSes  int
	MSSes  int
	// Duplicates counts MUS candidates that were already explored.
	Duplicates int
	// Spurious counts TOME seeds found explored when their turn came.
	Spurious int
	// SkippedShrinks counts MUSes recorded without a shrink.
	SkippedShrinks int
	// UnexSat and UnexUnsat count the unexplored seeds by their
	// satisfiability.
	UnexSat   int
	UnexUnsat int
	// ExplicitSeeds counts TOME seeds obtained from the map solver.
	ExplicitSeeds int
	// RotatedMUSes counts TOME seeds obtained by MUS rotation.
	RotatedMUSes int
	// Criticals is the number of constraints critical for the whole
	// input.
	Criticals int
	// Rotations is the number of critical constraints found by model
	// rotation, when the oracle reports it.
	Rotations     int
	BackbonesUsed int
	Backbones     int

	// HSDSuccesses counts MUSes accepted by the hitting set duality
	// check, exact or not.
	HSDSuccesses int
	// Approximations counts MUSes accepted by the hitting set duality
	// check without being exact.
	Approximations int
	// RightApprox and OverApprox split the verified MUSes accepted by
	// the hitting set duality check into exact and oversized ones,
	// ApproxDifference sums the oversizes.
	RightApprox      int
	OverApprox       int
	ApproxDifference int

	Elapsed time.Duration
}

// AverageApproxDifference returns the mean number of superfluous
// constraints in the verified approximations.
func (s Stats) AverageApproxDifference() float64 {
	verified := s.RightApprox + s.OverApprox
	if verified == 0 {
		return 0
	}
	return float64(s.ApproxDifference) / float64(verified)
}

// Result is the outcome of a complete enumeration.
type Result struct {
	// MUSes holds the records in discovery order.
	MUSes []mus.MUS
	// Intersection and Union aggregate the bits of all MUSes.
	Intersection mus.Formula
	Union        mus.Formula
	// MSSes holds the blocked maximal satisfiable subsets.
	MSSes []mus.Formula
	Stats Stats
}
