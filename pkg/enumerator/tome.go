package enumerator

import (
	"github.com/operator-framework/mustool/pkg/mus"
)

// seed is a TOME candidate together with constraints known to be
// critical for it.
type seed struct {
	formula mus.Formula
	hint    mus.Formula
}

// tome walks the chain between a minimal and a maximal unexplored point
// to find the unsatisfiable boundary, and rotates every MUS into new
// seeds that differ from it by one constraint.
func (m *Master) tome() error {
	all := mus.NewFormula(m.dimension, true)
	var frontier []seed
	for {
		if err := m.proceed(); err != nil {
			return err
		}
		if m.finished() {
			return nil
		}

		if len(frontier) == 0 {
			s, ok, err := m.explicitSeed(all)
			if err != nil {
				return err
			}
			if !ok {
				return nil
			}
			if s != nil {
				frontier = append(frontier, *s)
			}
			continue
		}

		s := frontier[len(frontier)-1]
		frontier = frontier[:len(frontier)-1]
		if !m.explorer.CheckValuation(s.formula) {
			m.stats.Spurious++
			continue
		}
		sat, err := m.isUnexploredSat(s.formula)
		if err != nil {
			return err
		}
		if sat {
			mss, err := m.grow(s.formula)
			if err != nil {
				return err
			}
			m.blockDown(mss)
			continue
		}
		found, err := m.unsatSeed(s.formula, s.hint)
		if err != nil {
			return err
		}
		if found != nil && !found.Approximate && m.config.Rotation {
			if frontier, err = m.rotate(found.Formula, frontier); err != nil {
				return err
			}
		}
	}
}

// explicitSeed takes a maximal unexplored point T of region and its
// minimal unexplored subset B. A satisfiable T is an MSS and an
// unsatisfiable B is a MUS. Otherwise the chain from B to T is searched
// for its first unsatisfiable element, which is returned as a seed. ok
// is false once region is fully explored.
func (m *Master) explicitSeed(region mus.Formula) (*seed, bool, error) {
	top, ok := m.explorer.TopUnexplored(region)
	if !ok {
		return nil, false, nil
	}
	m.stats.ExplicitSeeds++
	sat, err := m.isUnexploredSat(top)
	if err != nil {
		return nil, true, err
	}
	if sat {
		m.blockDown(top)
		return nil, true, nil
	}

	bot, _ := m.explorer.BotUnexplored(top)
	sat, err = m.isUnexploredSat(bot)
	if err != nil {
		return nil, true, err
	}
	if !sat {
		m.stats.SkippedShrinks++
		_, err := m.markMUS(bot, mus.SkippedShrink, top.Count(), false)
		return nil, true, err
	}
	mss, err := m.grow(bot)
	if err != nil {
		return nil, true, err
	}
	m.blockDown(mss)

	// chain[i] is bot plus the first i constraints of top\bot, chain[0]
	// is satisfiable and chain[len(missing)] is top.
	missing := top.Minus(bot).Indices()
	chain := func(i int) mus.Formula {
		c := bot.Clone()
		for _, j := range missing[:i] {
			c[j] = true
		}
		return c
	}
	lo, hi := 0, len(missing)
	for lo+1 < hi && chain(lo+1).SubsetOf(mss) {
		lo++
	}
	for lo+1 < hi {
		mid := (lo + hi) / 2
		sat, err := m.solve(chain(mid), false, false)
		if err != nil {
			return nil, true, err
		}
		if sat {
			lo = mid
		} else {
			hi = mid
		}
	}
	// removing the last added constraint from chain[hi] leaves the
	// satisfiable chain[hi-1]
	return &seed{
		formula: chain(hi),
		hint:    mus.FormulaOf(m.dimension, missing[hi-1]),
	}, true, nil
}

// rotate pushes, for every constraint c of the MUS found, the seeds
// obtained by replacing c with a constraint d outside an MSS extending
// found\{c}. d is critical for such a seed.
func (m *Master) rotate(found mus.Formula, frontier []seed) ([]seed, error) {
	for _, c := range found.Indices() {
		base := found.Clone()
		base[c] = false

		mss := m.knownMSS(base)
		if mss == nil {
			var err error
			if mss, err = m.grow(base); err != nil {
				return nil, err
			}
			m.blockDown(mss)
		}
		for _, d := range mss.Complement().Indices() {
			if d == c {
				continue
			}
			candidate := base.Clone()
			candidate[d] = true
			if !m.explorer.CheckValuation(candidate) {
				continue
			}
			m.stats.RotatedMUSes++
			frontier = append(frontier, seed{
				formula: candidate,
				hint:    mus.FormulaOf(m.dimension, d),
			})
		}
	}
	return frontier, nil
}

// knownMSS returns a blocked MSS containing f, or nil.
func (m *Master) knownMSS(f mus.Formula) mus.Formula {
	for _, mss := range m.explorer.MSSes() {
		if f.SubsetOf(mss) {
			return mss
		}
	}
	return nil
}
