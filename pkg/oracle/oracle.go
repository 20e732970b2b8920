package oracle

import (
	"github.com/operator-framework/mustool/pkg/mus"
)

// Backend is a concrete decision procedure for the constraints of one
// problem instance. See mus.Oracle for the semantics of Solve.
type Backend interface {
	Dimension() int
	Solve(f mus.Formula, core, grow bool) (bool, error)
}

// ClauseBackend is a Backend whose constraints are CNF clauses. Oracles
// built on a ClauseBackend support model rotation.
type ClauseBackend interface {
	Backend
	// Clauses returns the DIMACS literals of every constraint, indexed
	// by constraint.
	Clauses() [][]int
	// Model returns the assignment found by the last satisfiable
	// Solve, where index v-1 holds the value of variable v.
	Model() []bool
}

var _ mus.Oracle = &Oracle{}

// Oracle implements mus.Oracle on top of a Backend, providing the
// generic shrink and grow procedures and the check counters.
type Oracle struct {
	backend Backend

	checks    int
	shrinks   int
	grows     int
	rotations int
}

func New(backend Backend) *Oracle {
	return &Oracle{backend: backend}
}

func (o *Oracle) Dimension() int {
	return o.backend.Dimension()
}

func (o *Oracle) Solve(f mus.Formula, core, grow bool) (bool, error) {
	o.checks++
	return o.backend.Solve(f, core, grow)
}

func (o *Oracle) Checks() int {
	return o.checks
}

func (o *Oracle) Shrinks() int {
	return o.shrinks
}

func (o *Oracle) Grows() int {
	return o.grows
}

// Rotations returns the number of critical constraints discovered by
// model rotation.
func (o *Oracle) Rotations() int {
	return o.rotations
}
