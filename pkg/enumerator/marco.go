package enumerator

import (
	"github.com/operator-framework/mustool/pkg/mus"
)

// marco repeatedly takes an unexplored seed, grows it into an MSS when
// it is satisfiable and shrinks it into a MUS otherwise.
func (m *Master) marco() error {
	all := mus.NewFormula(m.dimension, true)
	for {
		if err := m.proceed(); err != nil {
			return err
		}
		if m.finished() {
			return nil
		}

		var seed mus.Formula
		var ok bool
		switch m.config.Algorithm {
		case MARCOBottom:
			seed, ok = m.explorer.BotUnexplored(all)
		case MARCOAny:
			seed, ok = m.explorer.AnyUnexplored(all)
		default:
			seed, ok = m.explorer.TopUnexplored(all)
		}
		if !ok {
			return nil
		}

		sat, err := m.isUnexploredSat(seed)
		if err != nil {
			return err
		}
		if sat {
			mss := seed
			if m.config.Algorithm != MARCO {
				if mss, err = m.grow(seed); err != nil {
					return err
				}
			}
			m.blockDown(mss)
			continue
		}

		if m.config.Algorithm == MARCOBottom {
			// every proper subset of a minimal unexplored seed is
			// explored, hence satisfiable
			m.stats.SkippedShrinks++
			if _, err := m.markMUS(seed, mus.SkippedShrink, seed.Count(), false); err != nil {
				return err
			}
			continue
		}
		if _, err := m.unsatSeed(seed, mus.NewFormula(m.dimension, false)); err != nil {
			return err
		}
	}
}
