package fakeoracle

import (
	"github.com/operator-framework/mustool/pkg/mus"
)

// CNF is a brute force backend over a handful of CNF clauses. Each clause
// is one constraint. It enumerates every assignment, so it is only
// suitable for tiny instances.
type CNF struct {
	clauses [][]int
	nbVars  int
	model   []bool
}

func NewCNF(clauses ...[]int) *CNF {
	c := &CNF{clauses: clauses}
	for _, clause := range clauses {
		for _, lit := range clause {
			if lit < 0 {
				lit = -lit
			}
			if lit > c.nbVars {
				c.nbVars = lit
			}
		}
	}
	return c
}

func (c *CNF) Dimension() int {
	return len(c.clauses)
}

func (c *CNF) Clauses() [][]int {
	return c.clauses
}

func (c *CNF) Model() []bool {
	return c.model
}

func (c *CNF) Solve(f mus.Formula, _, grow bool) (bool, error) {
	model := make([]bool, c.nbVars)
	for n := 0; n < 1<<c.nbVars; n++ {
		for v := range model {
			model[v] = n&(1<<v) != 0
		}
		if !c.satisfies(f, model) {
			continue
		}
		c.model = model
		if grow {
			for i, clause := range c.clauses {
				if Satisfied(clause, model) {
					f[i] = true
				}
			}
		}
		return true, nil
	}
	return false, nil
}

func (c *CNF) satisfies(f mus.Formula, model []bool) bool {
	for i, clause := range c.clauses {
		if f[i] && !Satisfied(clause, model) {
			return false
		}
	}
	return true
}

// Satisfied reports whether model satisfies clause; index v-1 of model
// holds the value of variable v.
func Satisfied(clause []int, model []bool) bool {
	for _, lit := range clause {
		if lit > 0 && model[lit-1] || lit < 0 && !model[-lit-1] {
			return true
		}
	}
	return false
}
