package mus

import (
	"time"
)

// SkippedShrink is the Duration recorded for a MUS whose minimality was
// established from known critical constraints alone, without running a
// shrink.
const SkippedShrink time.Duration = -1

// MUS is a minimal unsatisfiable subset discovered during an
// enumeration. Values are never modified once they have been recorded.
type MUS struct {
	// Formula is the bit vector of the subset.
	Formula Formula
	// Indices lists the constraint indices of the subset in
	// increasing order.
	Indices []int
	// ID is the discovery order of the MUS, starting at 0.
	ID int
	// SeedDimension is the size of the seed the MUS was obtained from.
	SeedDimension int
	// Duration is the wall-clock time spent shrinking the seed, or
	// SkippedShrink.
	Duration time.Duration
	// Approximate is set when the subset was accepted by the hitting
	// set duality check without being shrunk, in which case it is not
	// guaranteed to be minimal.
	Approximate bool
}

// NewMUS builds a MUS record for formula. The ID is assigned when the
// record is accepted by an enumerator.
func NewMUS(formula Formula, duration time.Duration, seedDimension int) MUS {
	return MUS{
		Formula:       formula,
		Indices:       formula.Indices(),
		SeedDimension: seedDimension,
		Duration:      duration,
	}
}

// Dimension returns the number of constraints in the MUS.
func (m MUS) Dimension() int {
	return len(m.Indices)
}

// Skipped reports whether the MUS was recorded without a shrink.
func (m MUS) Skipped() bool {
	return m.Duration == SkippedShrink
}
