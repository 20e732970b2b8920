package enumerator

import (
	"github.com/operator-framework/mustool/pkg/mus"
)

// remus enumerates the MUSes inside region. Every MUS found in a
// maximal unexplored seed opens a recursive call on a sub-region around
// it, where the next seeds are smaller and cheaper to shrink.
func (m *Master) remus(region mus.Formula, depth int) error {
	for {
		if err := m.proceed(); err != nil {
			return err
		}
		if m.finished() {
			return nil
		}

		top, ok := m.explorer.TopUnexplored(region)
		if !ok {
			return nil
		}
		sat, err := m.isUnexploredSat(top)
		if err != nil {
			return err
		}
		if sat {
			// top is only maximal within region
			mss, err := m.grow(top)
			if err != nil {
				return err
			}
			m.blockDown(mss)
			continue
		}

		found, err := m.unsatSeed(top, mus.NewFormula(m.dimension, false))
		if err != nil {
			return err
		}
		if found == nil || depth >= m.config.ScopeLimit {
			continue
		}
		sub := m.reduced(found.Formula, top)
		if found.Dimension() < sub.Count() && sub.Count() < region.Count() {
			if err := m.remus(sub, depth+1); err != nil {
				return err
			}
		}
	}
}
