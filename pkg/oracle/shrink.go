package oracle

import (
	"github.com/operator-framework/mustool/pkg/mus"
)

// Shrink removes constraints from the unsatisfiable f one at a time, in
// index order, keeping a constraint only if its removal makes the set
// satisfiable. Constraints set in crits are never tried. Unsatisfiable
// cores reported by the backend replace the working set.
func (o *Oracle) Shrink(f, crits mus.Formula) (mus.Formula, error) {
	o.shrinks++
	if crits == nil {
		crits = mus.NewFormula(len(f), false)
	}
	s := f.Clone()
	for i := range s {
		if !s[i] || crits[i] {
			continue
		}
		s[i] = false
		sat, err := o.Solve(s, true, false)
		if err != nil {
			return nil, err
		}
		if sat {
			s[i] = true
		}
	}
	return s, nil
}

// Grow adds constraints to the satisfiable f one at a time, in index
// order, keeping a constraint only if the set stays satisfiable. Model
// extensions reported by the backend are kept.
func (o *Oracle) Grow(f mus.Formula) (mus.Formula, error) {
	o.grows++
	s := f.Clone()
	for i := range s {
		if s[i] {
			continue
		}
		s[i] = true
		sat, err := o.Solve(s, false, true)
		if err != nil {
			return nil, err
		}
		if !sat {
			s[i] = false
		}
	}
	return s, nil
}
