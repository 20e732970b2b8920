package variables_test

import (
	"errors"
	"strings"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/operator-framework/mustool/cmd/variables"
	"github.com/operator-framework/mustool/pkg/mus/constraint"
)

func TestVariables(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Variables Suite")
}

const valid = `
variables:
- id: a
  constraints:
  - mandatory: true
  - dependency: [b, c]
- id: b
  constraints:
  - conflict: a
- id: c
  constraints:
  - prohibited: true
  - atMost:
      n: 1
      ids: [a, b]
  - dependency: []
`

var _ = Describe("Variables", func() {
	It("should parse every constraint kind in document order", func() {
		applied, err := variables.Parse(strings.NewReader(valid))
		Expect(err).ToNot(HaveOccurred())

		labels := make([]string, len(applied))
		for i, a := range applied {
			labels[i] = a.String()
		}
		Expect(labels).To(Equal([]string{
			"a is mandatory",
			"a requires at least one of b, c",
			"b conflicts with a",
			"c is prohibited",
			"c permits at most 1 of a, b",
			"c has a dependency without any candidates to satisfy it",
		}))
		Expect(applied[4].Subject).To(Equal(constraint.Identifier("c")))
	})

	It("should fail on duplicate variables", func() {
		_, err := variables.Parse(strings.NewReader("variables:\n- id: a\n- id: a\n"))
		var dup variables.DuplicateIdentifier
		Expect(errors.As(err, &dup)).To(BeTrue())
		Expect(string(dup)).To(Equal("a"))
	})

	It("should fail on references to unknown variables", func() {
		_, err := variables.Parse(strings.NewReader("variables:\n- id: a\n  constraints:\n  - conflict: z\n"))
		var unknown variables.UnknownIdentifier
		Expect(errors.As(err, &unknown)).To(BeTrue())
	})

	It("should fail on specs with several kinds", func() {
		_, err := variables.Parse(strings.NewReader("variables:\n- id: a\n  constraints:\n  - mandatory: true\n    prohibited: true\n"))
		Expect(err).To(MatchError(ContainSubstring("exactly one constraint kind")))
	})

	It("should fail on unknown fields", func() {
		_, err := variables.Parse(strings.NewReader("variables:\n- id: a\n  constraints:\n  - required: true\n"))
		Expect(err).To(HaveOccurred())
	})

	It("should fail on empty input", func() {
		_, err := variables.Parse(strings.NewReader(""))
		Expect(err).To(HaveOccurred())
	})

	It("should fail without constraints", func() {
		_, err := variables.Parse(strings.NewReader("variables:\n- id: a\n"))
		Expect(err).To(MatchError(ContainSubstring("no constraints")))
	})
})
