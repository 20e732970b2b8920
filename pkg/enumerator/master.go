package enumerator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/operator-framework/mustool/internal/explorer"
	"github.com/operator-framework/mustool/pkg/mus"
)

var ErrIncomplete = errors.New("cancelled before the enumeration completed")

// MUSWriter persists recorded MUSes.
type MUSWriter interface {
	Write(m mus.MUS) error
}

// rotationCounter is implemented by oracles that count the critical
// constraints found by model rotation.
type rotationCounter interface {
	Rotations() int
}

// Master drives the enumeration of the MUSes of one instance. A Master
// is not safe for concurrent use.
type Master struct {
	oracle mus.Oracle
	config Config
	log    logrus.FieldLogger
	tracer Tracer
	writer MUSWriter

	dimension int
	explorer  *explorer.Explorer
	muses     []mus.MUS
	stats     Stats
	checks    int
	start     time.Time
	ctx       context.Context
}

func New(oracle mus.Oracle, options ...Option) (*Master, error) {
	m := Master{oracle: oracle}
	for _, option := range append(options, defaults...) {
		if err := option(&m); err != nil {
			return nil, err
		}
	}
	if err := m.config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	m.dimension = oracle.Dimension()
	return &m, nil
}

type Option func(m *Master) error

func WithConfig(config Config) Option {
	return func(m *Master) error {
		m.config = config
		return nil
	}
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(m *Master) error {
		m.log = log
		return nil
	}
}

func WithTracer(t Tracer) Option {
	return func(m *Master) error {
		m.tracer = t
		return nil
	}
}

// WithWriter persists every recorded MUS with w.
func WithWriter(w MUSWriter) Option {
	return func(m *Master) error {
		m.writer = w
		return nil
	}
}

var defaults = []Option{
	func(m *Master) error {
		if m.config.Algorithm == "" {
			m.config = DefaultConfig()
		}
		return nil
	},
	func(m *Master) error {
		if m.log == nil {
			l := logrus.New()
			l.SetLevel(logrus.WarnLevel)
			m.log = l
		}
		return nil
	},
	func(m *Master) error {
		if m.tracer == nil {
			m.tracer = DefaultTracer{}
		}
		return nil
	},
}

// Enumerate runs the configured strategy until every MUS has been found,
// MaxMUSes have been found, or ctx is done. Every call starts a fresh
// enumeration. Cancellation is only observed between iterations and
// yields ErrIncomplete without a result.
func (m *Master) Enumerate(ctx context.Context) (*Result, error) {
	m.ctx = ctx
	m.explorer = explorer.New(m.dimension)
	m.muses = nil
	m.stats = Stats{}
	m.checks = m.oracle.Checks()
	m.start = time.Now()

	log := m.log.WithFields(logrus.Fields{
		"algorithm": m.config.Algorithm,
		"dimension": m.dimension,
	})
	log.Info("starting enumeration")

	if err := m.validCheck(); err != nil {
		return nil, err
	}

	var err error
	switch m.config.Algorithm {
	case ReMUS:
		err = m.remus(mus.NewFormula(m.dimension, true), 0)
	case TOME:
		err = m.tome()
	case MARCO, MARCOBottom, MARCOAny:
		err = m.marco()
	}
	if err != nil {
		return nil, err
	}

	m.updateStats()
	log.WithFields(logrus.Fields{
		"muses":  m.stats.MUSes,
		"msses":  m.stats.MSSes,
		"checks": m.stats.Checks,
		"time":   m.stats.Elapsed.String(),
	}).Info("enumeration done")

	return &Result{
		MUSes:        m.muses,
		Intersection: m.explorer.Intersection(),
		Union:        m.explorer.Union(),
		MSSes:        m.explorer.MSSes(),
		Stats:        m.stats,
	}, nil
}

// validCheck fails unless the whole input is unsatisfiable.
func (m *Master) validCheck() error {
	whole := mus.NewFormula(m.dimension, true)
	sat, err := m.solve(whole.Clone(), false, false)
	if err != nil {
		return err
	}
	if sat {
		return mus.NewContractViolation("the input is satisfiable", nil)
	}
	return nil
}

// proceed returns ErrIncomplete once ctx is done.
func (m *Master) proceed() error {
	if m.ctx.Err() != nil {
		return ErrIncomplete
	}
	return nil
}

// finished reports whether MaxMUSes have been recorded.
func (m *Master) finished() bool {
	return m.config.MaxMUSes > 0 && len(m.muses) >= m.config.MaxMUSes
}

func (m *Master) solve(f mus.Formula, core, grow bool) (bool, error) {
	sat, err := m.oracle.Solve(f, core, grow)
	if err != nil {
		return false, fmt.Errorf("checking %s: %w", f, err)
	}
	return sat, nil
}

// isUnexploredSat solves an unexplored seed and counts the outcome.
func (m *Master) isUnexploredSat(seed mus.Formula) (bool, error) {
	sat, err := m.solve(seed.Clone(), false, false)
	if err != nil {
		return false, err
	}
	if sat {
		m.stats.UnexSat++
	} else {
		m.stats.UnexUnsat++
	}
	return sat, nil
}

func (m *Master) grow(f mus.Formula) (mus.Formula, error) {
	mss, err := m.oracle.Grow(f)
	if err != nil {
		return nil, fmt.Errorf("growing %s: %w", f, err)
	}
	return mss, nil
}

// blockDown records mss as a maximal satisfiable subset.
func (m *Master) blockDown(mss mus.Formula) {
	m.explorer.BlockDown(mss)
	m.stats.MSSes++
	m.updateStats()
	m.tracer.Trace(Event{
		Kind:         MSSFound,
		MSS:          mss,
		Stats:        m.stats,
		Intersection: m.explorer.Intersection().Count(),
		Union:        m.explorer.Union().Count(),
	})
}

func (m *Master) updateStats() {
	m.stats.Checks = m.oracle.Checks() - m.checks
	m.stats.Criticals = m.explorer.Criticals()
	m.stats.BackbonesUsed, m.stats.Backbones = m.explorer.Backbones()
	if rc, ok := m.oracle.(rotationCounter); ok {
		m.stats.Rotations = rc.Rotations()
	}
	m.stats.MUSes = len(m.muses)
	m.stats.Elapsed = time.Since(m.start)
}
