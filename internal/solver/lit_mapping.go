package solver

import (
	"fmt"
	"strings"

	"github.com/go-air/gini/inter"
	"github.com/go-air/gini/logic"
	"github.com/go-air/gini/z"

	"github.com/operator-framework/mustool/pkg/mus"
	"github.com/operator-framework/mustool/pkg/mus/constraint"
)

type inconsistentLitMapping []error

func (inconsistentLitMapping) Error() string {
	return "internal solver failure"
}

// litMapping performs translation between constraint indices and the
// literals that appear in the SAT formula. Constraint i holds exactly
// when its literal holds, so selecting a subset of constraints amounts
// to assuming the literals of its members.
type litMapping struct {
	inorder              []constraint.Applied
	constraints          []z.Lit
	constraintsByLiteral map[z.Lit][]int
	background           []z.Lit
	lits                 map[constraint.Identifier]z.Lit
	c                    *logic.C
	errs                 inconsistentLitMapping
}

// newLitMapping returns a new litMapping with its state initialized based on
// the provided slice of applied constraints.
func newLitMapping(applied []constraint.Applied) (*litMapping, error) {
	d := litMapping{
		inorder:              make([]constraint.Applied, len(applied)),
		constraints:          make([]z.Lit, len(applied)),
		constraintsByLiteral: make(map[z.Lit][]int, len(applied)),
		lits:                 make(map[constraint.Identifier]z.Lit, 0),
		c:                    logic.NewC(),
	}

	for i, a := range applied {
		d.inorder[i] = a

		m := a.Constraint.Apply(&d, a.Subject)
		if m == z.LitNull {
			d.errs = append(d.errs, fmt.Errorf("constraint %d (%s) has no representation", i, a))
			continue
		}
		d.constraints[i] = m
		d.constraintsByLiteral[m] = append(d.constraintsByLiteral[m], i)
	}

	return &d, d.Error()
}

// AddBackground applies constraints that hold in every check. They
// take no part in formulas, cores or models.
func (d *litMapping) AddBackground(applied []constraint.Applied) error {
	for _, a := range applied {
		m := a.Constraint.Apply(d, a.Subject)
		if m == z.LitNull {
			d.errs = append(d.errs, fmt.Errorf("background constraint (%s) has no representation", a))
			continue
		}
		d.background = append(d.background, m)
	}
	return d.Error()
}

// LitOf returns the positive literal corresponding to the variable
// with the given Identifier.
func (d *litMapping) LitOf(id constraint.Identifier) z.Lit {
	_, ok := d.lits[id]
	if !ok {
		d.lits[id] = d.c.Lit()
	}
	return d.lits[id]
}

func (d *litMapping) LogicCircuit() *logic.C {
	return d.c
}

// Error returns a single error value that is an aggregation of all
// errors encountered during a litMapping's lifetime, or nil if there have
// been no errors.
func (d *litMapping) Error() error {
	if len(d.errs) == 0 {
		return nil
	}
	s := make([]string, len(d.errs))
	for i, err := range d.errs {
		s[i] = err.Error()
	}
	return fmt.Errorf("%d errors encountered: %s", len(s), strings.Join(s, ", "))
}

// AddConstraints adds the current constraints encoded in the embedded circuit to the
// solver g
func (d *litMapping) AddConstraints(g inter.S) {
	d.c.ToCnf(g)
	for _, m := range d.background {
		g.Add(m)
		g.Add(z.LitNull)
	}
}

// AssumeConstraints assumes the literal of every constraint selected
// by f.
func (d *litMapping) AssumeConstraints(g inter.S, f mus.Formula) {
	for i, m := range d.constraints {
		if f[i] {
			g.Assume(m)
		}
	}
}

// Conflicts clears the bits of f whose constraints were not used to
// derive the last unsatisfiable answer.
func (d *litMapping) Conflicts(g inter.Assumable, f mus.Formula) {
	core := make(map[int]struct{})
	for _, why := range g.Why(nil) {
		for _, i := range d.constraintsByLiteral[why] {
			core[i] = struct{}{}
		}
	}
	for i := range f {
		if _, ok := core[i]; !ok {
			f[i] = false
		}
	}
}

// Satisfied sets the bits of f whose constraints hold in the last
// model.
func (d *litMapping) Satisfied(g inter.S, f mus.Formula) {
	for i, m := range d.constraints {
		if !f[i] && g.Value(m) {
			f[i] = true
		}
	}
}

// Value returns the value of the variable with the given Identifier
// in the last model. Variables no constraint mentions are false.
func (d *litMapping) Value(g inter.S, id constraint.Identifier) bool {
	m, ok := d.lits[id]
	if !ok {
		return false
	}
	return g.Value(m)
}
