package constraint

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-air/gini/logic"
	"github.com/go-air/gini/z"
)

// Identifier values name the boolean variables constraints talk about.
type Identifier string

func (id Identifier) String() string {
	return string(id)
}

// LitMapping translates Identifiers into literals of a logic circuit.
type LitMapping interface {
	LitOf(subject Identifier) z.Lit
	LogicCircuit() *logic.C
}

// Constraint implementations restrict the values a subject variable and
// the variables it refers to may take. Apply returns a literal that is
// true exactly when the constraint holds.
type Constraint interface {
	String(subject Identifier) string
	Apply(lm LitMapping, subject Identifier) z.Lit
}

// Applied composes a Constraint with the variable it applies to. An
// enumeration instance is an ordered list of Applied constraints, and
// constraint index i is the position in that list.
type Applied struct {
	Subject    Identifier
	Constraint Constraint
}

// String implements fmt.Stringer and returns a human-readable message
// representing the receiver.
func (a Applied) String() string {
	return a.Constraint.String(a.Subject)
}

type MandatoryConstraint struct{}

func (constraint *MandatoryConstraint) String(subject Identifier) string {
	return fmt.Sprintf("%s is mandatory", subject)
}

func (constraint *MandatoryConstraint) Apply(lm LitMapping, subject Identifier) z.Lit {
	return lm.LitOf(subject)
}

// Mandatory returns a Constraint that will permit only solutions that
// contain a particular variable.
func Mandatory() Constraint {
	return &MandatoryConstraint{}
}

type ProhibitedConstraint struct{}

func (constraint *ProhibitedConstraint) String(subject Identifier) string {
	return fmt.Sprintf("%s is prohibited", subject)
}

func (constraint *ProhibitedConstraint) Apply(lm LitMapping, subject Identifier) z.Lit {
	return lm.LitOf(subject).Not()
}

// Prohibited returns a Constraint that will reject any solution that
// contains a particular variable.
func Prohibited() Constraint {
	return &ProhibitedConstraint{}
}

type DependencyConstraint struct {
	dependencyIDs []Identifier
}

func (constraint *DependencyConstraint) String(subject Identifier) string {
	if len(constraint.dependencyIDs) == 0 {
		return fmt.Sprintf("%s has a dependency without any candidates to satisfy it", subject)
	}
	s := make([]string, len(constraint.dependencyIDs))
	for i, each := range constraint.dependencyIDs {
		s[i] = string(each)
	}
	return fmt.Sprintf("%s requires at least one of %s", subject, strings.Join(s, ", "))
}

func (constraint *DependencyConstraint) Apply(lm LitMapping, subject Identifier) z.Lit {
	m := lm.LitOf(subject).Not()
	for _, each := range constraint.dependencyIDs {
		m = lm.LogicCircuit().Or(m, lm.LitOf(each))
	}
	return m
}

func (constraint *DependencyConstraint) DependencyIDs() []Identifier {
	return constraint.dependencyIDs
}

// Dependency returns a Constraint that will only permit solutions
// containing a given variable on the condition that at least one
// of the variables identified by the given Identifiers also
// appears in the solution.
func Dependency(ids ...Identifier) Constraint {
	return &DependencyConstraint{
		dependencyIDs: ids,
	}
}

type ConflictConstraint struct {
	conflictingID Identifier
}

func (constraint *ConflictConstraint) String(subject Identifier) string {
	return fmt.Sprintf("%s conflicts with %s", subject, constraint.conflictingID)
}

func (constraint *ConflictConstraint) Apply(lm LitMapping, subject Identifier) z.Lit {
	return lm.LogicCircuit().Or(lm.LitOf(subject).Not(), lm.LitOf(constraint.conflictingID).Not())
}

// Conflict returns a Constraint that will permit solutions containing
// either the constrained variable, the variable identified by
// the given Identifier, or neither, but not both.
func Conflict(id Identifier) Constraint {
	return &ConflictConstraint{
		conflictingID: id,
	}
}

type AtMostConstraint struct {
	ids []Identifier
	n   int
}

func (constraint *AtMostConstraint) String(subject Identifier) string {
	s := make([]string, len(constraint.ids))
	for i, each := range constraint.ids {
		s[i] = string(each)
	}
	return fmt.Sprintf("%s permits at most %d of %s", subject, constraint.n, strings.Join(s, ", "))
}

func (constraint *AtMostConstraint) N() int {
	return constraint.n
}

func (constraint *AtMostConstraint) Ids() []Identifier {
	return constraint.ids
}

func (constraint *AtMostConstraint) Apply(lm LitMapping, _ Identifier) z.Lit {
	ms := make([]z.Lit, len(constraint.ids))
	for i, each := range constraint.ids {
		ms[i] = lm.LitOf(each)
	}
	return lm.LogicCircuit().CardSort(ms).Leq(constraint.n)
}

// AtMost returns a Constraint that forbids solutions that contain
// more than n of the variables identified by the given
// Identifiers.
func AtMost(n int, ids ...Identifier) Constraint {
	return &AtMostConstraint{
		ids: ids,
		n:   n,
	}
}

// ClauseConstraint is a disjunction of DIMACS literals. Variable v is
// identified by the decimal string of v; the subject is ignored.
type ClauseConstraint struct {
	lits []int
}

func (constraint *ClauseConstraint) String(_ Identifier) string {
	s := make([]string, len(constraint.lits))
	for i, lit := range constraint.lits {
		s[i] = strconv.Itoa(lit)
	}
	return strings.Join(s, " ")
}

func (constraint *ClauseConstraint) Apply(lm LitMapping, _ Identifier) z.Lit {
	c := lm.LogicCircuit()
	if len(constraint.lits) == 0 {
		return c.F
	}
	ms := make([]z.Lit, len(constraint.lits))
	for i, lit := range constraint.lits {
		if lit < 0 {
			ms[i] = lm.LitOf(VariableOf(-lit)).Not()
		} else {
			ms[i] = lm.LitOf(VariableOf(lit))
		}
	}
	return c.Ors(ms...)
}

// Literals returns the DIMACS literals of the clause.
func (constraint *ClauseConstraint) Literals() []int {
	return constraint.lits
}

// Clause returns a Constraint that holds when at least one of the given
// DIMACS literals holds.
func Clause(lits ...int) Constraint {
	return &ClauseConstraint{
		lits: lits,
	}
}

// VariableOf returns the Identifier of DIMACS variable v.
func VariableOf(v int) Identifier {
	return Identifier(strconv.Itoa(v))
}
