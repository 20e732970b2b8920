package solver

import (
	"github.com/go-air/gini"
	"github.com/go-air/gini/inter"

	"github.com/operator-framework/mustool/pkg/mus"
	"github.com/operator-framework/mustool/pkg/mus/constraint"
	"github.com/operator-framework/mustool/pkg/oracle"
)

const (
	satisfiable   = 1
	unsatisfiable = -1
	unknown       = 0
)

var _ oracle.Backend = &solver{}

// solver decides subsets of a fixed list of constraints with a single
// incremental gini instance.
type solver struct {
	g          inter.S
	litMap     *litMapping
	background []constraint.Applied
	tracer     Tracer
}

// Valuer reports the values of variables in the model of the last
// satisfiable check.
type Valuer interface {
	Value(id constraint.Identifier) bool
}

var _ Valuer = &solver{}

func (s *solver) Dimension() int {
	return len(s.litMap.inorder)
}

func (s *solver) Solve(f mus.Formula, core, grow bool) (bool, error) {
	if len(f) != s.Dimension() {
		panic("formula dimension does not match the constraint list")
	}
	assumed := f.Clone()
	s.litMap.AssumeConstraints(s.g, f)

	switch s.g.Solve() {
	case satisfiable:
		s.tracer.Trace(position{assumed: assumed, sat: true})
		if grow {
			s.litMap.Satisfied(s.g, f)
		}
		return true, nil
	case unsatisfiable:
		if core {
			s.litMap.Conflicts(s.g, f)
		}
		s.tracer.Trace(position{assumed: assumed, core: f.Clone()})
		return false, nil
	}
	return false, mus.ErrUnknown
}

func (s *solver) Value(id constraint.Identifier) bool {
	return s.litMap.Value(s.g, id)
}

// cnfSolver is a solver whose constraints are all clauses, which lets
// the oracle rotate models over it.
type cnfSolver struct {
	*solver
	clauses [][]int
	nbVars  int
}

var _ oracle.ClauseBackend = &cnfSolver{}

func (s *cnfSolver) Clauses() [][]int {
	return s.clauses
}

func (s *cnfSolver) Model() []bool {
	model := make([]bool, s.nbVars)
	for v := 1; v <= s.nbVars; v++ {
		model[v-1] = s.litMap.Value(s.g, constraint.VariableOf(v))
	}
	return model
}

// NewSolver returns an oracle.Backend deciding subsets of the
// constraints given with WithInput. When every constraint is a clause
// and there is no background the returned backend is also an
// oracle.ClauseBackend.
func NewSolver(options ...Option) (oracle.Backend, error) {
	s := solver{g: gini.New()}
	for _, option := range append(options, defaults...) {
		if err := option(&s); err != nil {
			return nil, err
		}
	}
	if err := s.litMap.AddBackground(s.background); err != nil {
		return nil, err
	}
	// teach all constraints to the solver
	s.litMap.AddConstraints(s.g)
	if len(s.background) > 0 {
		return &s, nil
	}

	clauses := make([][]int, 0, len(s.litMap.inorder))
	nbVars := 0
	for _, a := range s.litMap.inorder {
		c, ok := a.Constraint.(*constraint.ClauseConstraint)
		if !ok {
			return &s, nil
		}
		for _, lit := range c.Literals() {
			nbVars = max(nbVars, abs(lit))
		}
		clauses = append(clauses, c.Literals())
	}
	return &cnfSolver{solver: &s, clauses: clauses, nbVars: nbVars}, nil
}

type Option func(s *solver) error

func WithInput(input []constraint.Applied) Option {
	return func(s *solver) error {
		var err error
		s.litMap, err = newLitMapping(input)
		return err
	}
}

// WithBackground adds constraints that hold in every check.
func WithBackground(background []constraint.Applied) Option {
	return func(s *solver) error {
		s.background = append(s.background, background...)
		return nil
	}
}

func WithTracer(t Tracer) Option {
	return func(s *solver) error {
		s.tracer = t
		return nil
	}
}

var defaults = []Option{
	func(s *solver) error {
		if s.litMap == nil {
			var err error
			s.litMap, err = newLitMapping(nil)
			return err
		}
		return nil
	},
	func(s *solver) error {
		if s.tracer == nil {
			s.tracer = DefaultTracer{}
		}
		return nil
	},
}

func abs(lit int) int {
	if lit < 0 {
		return -lit
	}
	return lit
}
