// Package gophersat decides subsets of a CNF formula with the gophersat
// CDCL solver.
package gophersat

import (
	"github.com/crillab/gophersat/solver"

	"github.com/operator-framework/mustool/pkg/mus"
	"github.com/operator-framework/mustool/pkg/oracle"
)

var _ oracle.ClauseBackend = &Backend{}

// Backend builds a fresh gophersat solver for every decided subset.
// gophersat offers no assumption-based cores, so unsatisfiable answers
// leave the formula untouched.
type Backend struct {
	clauses [][]int
	nbVars  int
	model   []bool
}

func New(clauses [][]int) *Backend {
	b := &Backend{clauses: clauses}
	for _, clause := range clauses {
		for _, lit := range clause {
			if lit < 0 {
				lit = -lit
			}
			b.nbVars = max(b.nbVars, lit)
		}
	}
	b.model = make([]bool, b.nbVars)
	return b
}

func (b *Backend) Dimension() int {
	return len(b.clauses)
}

func (b *Backend) Clauses() [][]int {
	return b.clauses
}

func (b *Backend) Model() []bool {
	return b.model
}

func (b *Backend) Solve(f mus.Formula, _, grow bool) (bool, error) {
	if len(f) != len(b.clauses) {
		panic("formula dimension does not match the clause list")
	}
	active := make([][]int, 0, f.Count())
	for _, i := range f.Indices() {
		active = append(active, b.clauses[i])
	}

	model := make([]bool, b.nbVars)
	if len(active) > 0 {
		s := solver.New(solver.ParseSlice(active))
		switch s.Solve() {
		case solver.Sat:
			copy(model, s.Model())
		case solver.Unsat:
			return false, nil
		default:
			return false, mus.ErrUnknown
		}
	}
	b.model = model

	if grow {
		for i, clause := range b.clauses {
			if !f[i] && satisfied(clause, model) {
				f[i] = true
			}
		}
	}
	return true, nil
}

func satisfied(clause []int, model []bool) bool {
	for _, lit := range clause {
		if lit > 0 && model[lit-1] || lit < 0 && !model[-lit-1] {
			return true
		}
	}
	return false
}
