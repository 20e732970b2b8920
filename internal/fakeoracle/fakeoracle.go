// Package fakeoracle provides in-memory oracle backends with known
// answers for tests.
package fakeoracle

import (
	"github.com/operator-framework/mustool/pkg/mus"
)

// TruthTable is a backend whose unsatisfiable subsets are exactly the
// supersets of a fixed list of MUSes.
type TruthTable struct {
	dimension int
	muses     []mus.Formula

	// Cores enables reporting the first contained MUS as the
	// unsatisfiable core.
	Cores bool
	// Unknown makes every Solve fail with mus.ErrUnknown.
	Unknown bool
	// Calls counts Solve invocations.
	Calls int
}

func New(dimension int, muses ...[]int) *TruthTable {
	t := &TruthTable{dimension: dimension, Cores: true}
	for _, m := range muses {
		t.muses = append(t.muses, mus.FormulaOf(dimension, m...))
	}
	return t
}

func (t *TruthTable) Dimension() int {
	return t.dimension
}

func (t *TruthTable) Solve(f mus.Formula, core, _ bool) (bool, error) {
	t.Calls++
	if t.Unknown {
		return false, mus.ErrUnknown
	}
	for _, m := range t.muses {
		if m.SubsetOf(f) {
			if core && t.Cores {
				copy(f, m)
			}
			return false, nil
		}
	}
	return true, nil
}

// MUSes returns the configured MUSes.
func (t *TruthTable) MUSes() []mus.Formula {
	return t.muses
}
