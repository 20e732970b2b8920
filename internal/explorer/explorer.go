package explorer

import (
	"fmt"

	"github.com/go-air/gini"
	"github.com/go-air/gini/inter"
	"github.com/go-air/gini/z"

	"github.com/operator-framework/mustool/pkg/mus"
)

const (
	satisfiable   = 1
	unsatisfiable = -1
)

// Backbone records whether a constraint is known to be critical for the
// whole input, and whether that fact has been put to use.
type Backbone struct {
	Value bool
	Used  bool
}

// Explorer is the ledger of the explored part of the 2^D lattice of
// constraint subsets. A subset is explored once it is a superset of a
// blocked MUS or a subset of a blocked MSS. The unexplored subsets are
// the models of a map formula kept in a gini solver, where map variable
// i+1 stands for constraint i.
type Explorer struct {
	dimension int
	g         inter.S
	lits      []z.Lit

	muses []mus.Formula
	msses []mus.Formula

	critical     mus.Formula
	criticals    int
	backbones    []Backbone
	intersection mus.Formula
	union        mus.Formula

	// exhausted is set once the map formula is unsatisfiable without
	// assumptions. gini must not be solved again after that.
	exhausted bool
}

func New(dimension int) *Explorer {
	e := &Explorer{
		dimension:    dimension,
		g:            gini.New(),
		lits:         make([]z.Lit, dimension),
		critical:     mus.NewFormula(dimension, false),
		backbones:    make([]Backbone, dimension),
		intersection: mus.NewFormula(dimension, true),
		union:        mus.NewFormula(dimension, false),
	}
	for i := range e.lits {
		e.lits[i] = e.g.Lit()
	}
	return e
}

func (e *Explorer) Dimension() int {
	return e.dimension
}

// BlockUp marks f and all of its supersets as explored.
func (e *Explorer) BlockUp(f mus.Formula) {
	e.check(f)
	for i, in := range f {
		if in {
			e.g.Add(e.lits[i].Not())
		}
	}
	e.g.Add(z.LitNull)
	e.muses = append(e.muses, f.Clone())

	for i, in := range f {
		e.intersection[i] = e.intersection[i] && in
		e.union[i] = e.union[i] || in
	}
}

// BlockDown marks f and all of its subsets as explored. A blocked set
// missing a single constraint proves that constraint critical for the
// whole input.
func (e *Explorer) BlockDown(f mus.Formula) {
	e.check(f)
	missing, n := -1, 0
	for i, in := range f {
		if !in {
			e.g.Add(e.lits[i])
			missing = i
			n++
		}
	}
	e.g.Add(z.LitNull)
	e.msses = append(e.msses, f.Clone())

	if n == 1 && !e.critical[missing] {
		e.critical[missing] = true
		e.backbones[missing].Value = true
		e.criticals++
	}
}

// CheckValuation reports whether f is still unexplored.
func (e *Explorer) CheckValuation(f mus.Formula) bool {
	e.check(f)
	return !e.aboveMUS(f) && !e.belowMSS(f)
}

// TopUnexplored returns a maximal unexplored subset of region, or false
// if every subset of region has been explored.
func (e *Explorer) TopUnexplored(region mus.Formula) (mus.Formula, bool) {
	f, ok := e.AnyUnexplored(region)
	if !ok {
		return nil, false
	}
	return e.ascend(f, region), true
}

// BotUnexplored returns a minimal unexplored subset of seed. When seed
// itself is unexplored the result is reached from seed by removing
// constraints.
func (e *Explorer) BotUnexplored(seed mus.Formula) (mus.Formula, bool) {
	if e.CheckValuation(seed) {
		return e.descend(seed.Clone()), true
	}
	f, ok := e.AnyUnexplored(seed)
	if !ok {
		return nil, false
	}
	return e.descend(f), true
}

// AnyUnexplored returns some unexplored subset of region, as chosen by
// the map solver.
func (e *Explorer) AnyUnexplored(region mus.Formula) (mus.Formula, bool) {
	e.check(region)
	if e.exhausted {
		return nil, false
	}
	for i, in := range region {
		if !in {
			e.g.Assume(e.lits[i].Not())
		}
	}
	switch e.g.Solve() {
	case satisfiable:
	case unsatisfiable:
		if len(e.g.Why(nil)) == 0 {
			e.exhausted = true
		}
		return nil, false
	default:
		panic("explorer: map solver returned unknown")
	}
	f := make(mus.Formula, e.dimension)
	for i, m := range e.lits {
		f[i] = region[i] && e.g.Value(m)
	}
	return f, true
}

// GetImplies adds to crits every constraint that is known to be critical
// for seed: the constraints critical for the whole input and, for each
// blocked MSS that misses exactly one constraint of seed, that
// constraint.
func (e *Explorer) GetImplies(crits, seed mus.Formula) {
	e.check(crits)
	e.check(seed)
	for i, c := range e.critical {
		if c && seed[i] {
			crits[i] = true
			e.backbones[i].Used = true
		}
	}
	for _, s := range e.msses {
		missing, n := -1, 0
		for i, in := range seed {
			if in && !s[i] {
				missing = i
				n++
				if n > 1 {
					break
				}
			}
		}
		if n == 1 {
			crits[missing] = true
		}
	}
}

// Critical returns the constraints known to be critical for the whole
// input.
func (e *Explorer) Critical() mus.Formula {
	return e.critical.Clone()
}

// Criticals returns the number of constraints known to be critical for
// the whole input.
func (e *Explorer) Criticals() int {
	return e.criticals
}

// Backbones returns the number of backbone entries that have been used
// and the number of entries in total.
func (e *Explorer) Backbones() (used, original int) {
	for _, b := range e.backbones {
		if b.Value {
			original++
			if b.Used {
				used++
			}
		}
	}
	return used, original
}

// Intersection returns the constraints present in every blocked MUS.
func (e *Explorer) Intersection() mus.Formula {
	return e.intersection.Clone()
}

// Union returns the constraints present in at least one blocked MUS.
func (e *Explorer) Union() mus.Formula {
	return e.union.Clone()
}

// MSSes returns the blocked maximal satisfiable subsets.
func (e *Explorer) MSSes() []mus.Formula {
	return e.msses
}

// ascend adds constraints of region to f as long as f does not become a
// superset of a blocked MUS.
func (e *Explorer) ascend(f, region mus.Formula) mus.Formula {
	for i, in := range region {
		if !in || f[i] {
			continue
		}
		f[i] = true
		if e.aboveMUS(f) {
			f[i] = false
		}
	}
	return f
}

// descend removes constraints from f as long as f does not become a
// subset of a blocked MSS.
func (e *Explorer) descend(f mus.Formula) mus.Formula {
	for i, in := range f {
		if !in {
			continue
		}
		f[i] = false
		if e.belowMSS(f) {
			f[i] = true
		}
	}
	return f
}

func (e *Explorer) aboveMUS(f mus.Formula) bool {
	for _, m := range e.muses {
		if m.SubsetOf(f) {
			return true
		}
	}
	return false
}

func (e *Explorer) belowMSS(f mus.Formula) bool {
	for _, s := range e.msses {
		if f.SubsetOf(s) {
			return true
		}
	}
	return false
}

func (e *Explorer) check(f mus.Formula) {
	if len(f) != e.dimension {
		panic(fmt.Sprintf("explorer: formula of dimension %d, expected %d", len(f), e.dimension))
	}
}
