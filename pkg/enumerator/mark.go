package enumerator

import (
	"fmt"
	"math"
	"time"

	"github.com/operator-framework/mustool/pkg/mus"
)

// shrink reduces the unsatisfiable seed f to a MUS. crits holds
// constraints known to be critical for f and is widened in place.
func (m *Master) shrink(f, crits mus.Formula) (mus.Formula, time.Duration, error) {
	if m.config.GetImplies {
		m.explorer.GetImplies(crits, f)
	}
	if m.config.CriticalsRotation {
		if err := m.oracle.CriticalsRotation(crits, f); err != nil {
			return nil, 0, fmt.Errorf("rotating criticals of %s: %w", f, err)
		}
	}

	known := crits.Intersect(f)
	if known.Count() == f.Count() {
		m.stats.SkippedShrinks++
		return f.Clone(), mus.SkippedShrink, nil
	}

	start := time.Now()
	if float64(known.Count())/float64(f.Count()) > m.config.CritsThreshold {
		sat, err := m.solve(known.Clone(), false, false)
		if err != nil {
			return nil, 0, err
		}
		if !sat {
			m.stats.SkippedShrinks++
			return known, mus.SkippedShrink, nil
		}
	}

	s, err := m.oracle.Shrink(f, known)
	if err != nil {
		return nil, 0, fmt.Errorf("shrinking %s: %w", f, err)
	}
	return s, time.Since(start), nil
}

// unsatSeed turns the unsatisfiable seed f into a recorded MUS, through
// the hitting set duality check when enabled and by shrinking
// otherwise. It returns the record, or nil when the candidate was a
// duplicate.
func (m *Master) unsatSeed(f, crits mus.Formula) (*mus.MUS, error) {
	if m.config.HSD {
		rec, accepted, err := m.checkMUSViaHSD(f)
		if err != nil {
			return nil, err
		}
		if accepted {
			return rec, nil
		}
	}
	s, d, err := m.shrink(f, crits)
	if err != nil {
		return nil, err
	}
	return m.markMUS(s, d, f.Count(), false)
}

// checkMUSViaHSD accepts the unexplored unsatisfiable f when it is its
// own minimal unexplored subset, in which case it is a MUS, or when it
// exceeds that subset by less than MUSApprox of the dimension, in which
// case it is recorded as an approximation. With VerifyApprox both kinds
// are shrunk afterwards to measure how far off they were.
func (m *Master) checkMUSViaHSD(f mus.Formula) (*mus.MUS, bool, error) {
	bot, ok := m.explorer.BotUnexplored(f)
	if !ok {
		return nil, false, nil
	}
	exact := bot.Equal(f)
	if !exact && float64(f.Count()-bot.Count()) >= float64(m.dimension)*m.config.MUSApprox {
		return nil, false, nil
	}

	m.stats.HSDSuccesses++
	if exact {
		m.stats.SkippedShrinks++
	} else {
		m.stats.Approximations++
	}
	if m.config.VerifyApprox {
		shrunk, err := m.oracle.Shrink(f, mus.NewFormula(m.dimension, false))
		if err != nil {
			return nil, false, fmt.Errorf("verifying approximation %s: %w", f, err)
		}
		if over := f.Count() - shrunk.Count(); over == 0 {
			m.stats.RightApprox++
		} else {
			m.stats.OverApprox++
			m.stats.ApproxDifference += over
		}
	}
	rec, err := m.markMUS(f, mus.SkippedShrink, f.Count(), !exact)
	return rec, true, err
}

// markMUS records f unless it has already been explored, in which case
// the returned record is nil.
func (m *Master) markMUS(f mus.Formula, d time.Duration, seedDimension int, approximate bool) (*mus.MUS, error) {
	if !m.explorer.CheckValuation(f) {
		m.stats.Duplicates++
		m.log.WithField("mus", f.String()).Debug("discarding explored MUS candidate")
		return nil, nil
	}
	if m.config.ValidateMUS && !approximate {
		if err := m.validateMUS(f); err != nil {
			return nil, err
		}
	}

	m.explorer.BlockUp(f)
	rec := mus.NewMUS(f.Clone(), d, seedDimension)
	rec.ID = len(m.muses)
	rec.Approximate = approximate
	m.muses = append(m.muses, rec)

	m.updateStats()
	m.tracer.Trace(Event{
		Kind:         MUSFound,
		MUS:          &rec,
		Stats:        m.stats,
		Intersection: m.explorer.Intersection().Count(),
		Union:        m.explorer.Union().Count(),
	})
	if m.writer != nil {
		if err := m.writer.Write(rec); err != nil {
			return nil, fmt.Errorf("writing MUS %d: %w", rec.ID, err)
		}
	}
	return &rec, nil
}

// validateMUS checks from scratch that f is unsatisfiable and that
// every constraint of f is necessary.
func (m *Master) validateMUS(f mus.Formula) error {
	sat, err := m.solve(f.Clone(), false, false)
	if err != nil {
		return err
	}
	if sat {
		return mus.NewContractViolation("MUS candidate is satisfiable", f)
	}
	for _, i := range f.Indices() {
		s := f.Clone()
		s[i] = false
		sat, err := m.solve(s, false, false)
		if err != nil {
			return err
		}
		if !sat {
			return mus.NewContractViolation(fmt.Sprintf("MUS candidate is not minimal, constraint %d is redundant", i), f)
		}
	}
	return nil
}

// reduced returns the ReMUS sub-region for a MUS found in top: the MUS
// completed with the first constraints of top until it holds
// ceil(DimReduction * |top|) constraints.
func (m *Master) reduced(found, top mus.Formula) mus.Formula {
	size := int(math.Ceil(m.config.DimReduction * float64(top.Count())))
	sub := found.Clone()
	n := sub.Count()
	for _, i := range top.Minus(found).Indices() {
		if n >= size {
			break
		}
		sub[i] = true
		n++
	}
	return sub
}
