package variables

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/operator-framework/mustool/pkg/mus/constraint"
)

// Document is a list of variables with the constraints that apply to
// them, for instance:
//
//	variables:
//	- id: a
//	  constraints:
//	  - mandatory: true
//	  - dependency: [b, c]
//	- id: b
//	  constraints:
//	  - conflict: a
//	- id: c
//	  constraints:
//	  - prohibited: true
//	  - atMost:
//	      n: 1
//	      ids: [a, b]
type Document struct {
	Variables []Variable `yaml:"variables"`
}

type Variable struct {
	ID          string           `yaml:"id"`
	Constraints []ConstraintSpec `yaml:"constraints"`
}

// ConstraintSpec holds exactly one constraint.
type ConstraintSpec struct {
	Mandatory  bool      `yaml:"mandatory"`
	Prohibited bool      `yaml:"prohibited"`
	Dependency *[]string `yaml:"dependency"`
	Conflict   string    `yaml:"conflict"`
	AtMost     *AtMost   `yaml:"atMost"`
}

type AtMost struct {
	N   int      `yaml:"n"`
	IDs []string `yaml:"ids"`
}

type DuplicateIdentifier constraint.Identifier

func (e DuplicateIdentifier) Error() string {
	return fmt.Sprintf("duplicate identifier %q in input", constraint.Identifier(e))
}

type UnknownIdentifier constraint.Identifier

func (e UnknownIdentifier) Error() string {
	return fmt.Sprintf("unknown identifier %q in input", constraint.Identifier(e))
}

// Parse reads a Document and returns its constraints in document order.
func Parse(r io.Reader) ([]constraint.Applied, error) {
	var doc Document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("invalid format: no variables found")
		}
		return nil, fmt.Errorf("error parsing variables: %w", err)
	}
	return doc.Constraints()
}

// Constraints validates the document and applies every constraint to
// its variable.
func (d Document) Constraints() ([]constraint.Applied, error) {
	if len(d.Variables) == 0 {
		return nil, fmt.Errorf("invalid format: no variables found")
	}
	known := make(map[string]struct{}, len(d.Variables))
	for _, v := range d.Variables {
		if v.ID == "" {
			return nil, fmt.Errorf("invalid format: variable without id")
		}
		if _, ok := known[v.ID]; ok {
			return nil, DuplicateIdentifier(v.ID)
		}
		known[v.ID] = struct{}{}
	}
	check := func(ids ...string) error {
		for _, id := range ids {
			if _, ok := known[id]; !ok {
				return UnknownIdentifier(id)
			}
		}
		return nil
	}

	var applied []constraint.Applied
	for _, v := range d.Variables {
		for i, spec := range v.Constraints {
			c, refs, err := spec.constraint()
			if err != nil {
				return nil, fmt.Errorf("constraint %d of %s: %w", i, v.ID, err)
			}
			if err := check(refs...); err != nil {
				return nil, fmt.Errorf("constraint %d of %s: %w", i, v.ID, err)
			}
			applied = append(applied, constraint.Applied{
				Subject:    constraint.Identifier(v.ID),
				Constraint: c,
			})
		}
	}
	if len(applied) == 0 {
		return nil, fmt.Errorf("invalid format: no constraints found")
	}
	return applied, nil
}

func (s ConstraintSpec) constraint() (constraint.Constraint, []string, error) {
	var (
		c    constraint.Constraint
		refs []string
		n    int
	)
	if s.Mandatory {
		c = constraint.Mandatory()
		n++
	}
	if s.Prohibited {
		c = constraint.Prohibited()
		n++
	}
	if s.Dependency != nil {
		refs = *s.Dependency
		c = constraint.Dependency(identifiers(refs)...)
		n++
	}
	if s.Conflict != "" {
		refs = []string{s.Conflict}
		c = constraint.Conflict(constraint.Identifier(s.Conflict))
		n++
	}
	if s.AtMost != nil {
		if s.AtMost.N < 0 {
			return nil, nil, fmt.Errorf("atMost needs a non-negative n, got %d", s.AtMost.N)
		}
		refs = s.AtMost.IDs
		c = constraint.AtMost(s.AtMost.N, identifiers(refs)...)
		n++
	}
	if n != 1 {
		return nil, nil, fmt.Errorf("expected exactly one constraint kind, got %d", n)
	}
	return c, refs, nil
}

func identifiers(ids []string) []constraint.Identifier {
	out := make([]constraint.Identifier, len(ids))
	for i, id := range ids {
		out[i] = constraint.Identifier(id)
	}
	return out
}
