package enumerator_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"

	"github.com/operator-framework/mustool/internal/fakeoracle"
	"github.com/operator-framework/mustool/pkg/enumerator"
	"github.com/operator-framework/mustool/pkg/mus"
	"github.com/operator-framework/mustool/pkg/oracle"
)

var allAlgorithms = []enumerator.Algorithm{
	enumerator.ReMUS,
	enumerator.TOME,
	enumerator.MARCO,
	enumerator.MARCOBottom,
	enumerator.MARCOAny,
}

func configFor(a enumerator.Algorithm) enumerator.Config {
	c := enumerator.DefaultConfig()
	c.Algorithm = a
	return c
}

func enumerate(backend oracle.Backend, config enumerator.Config, options ...enumerator.Option) (*enumerator.Result, error) {
	m, err := enumerator.New(oracle.New(backend), append(options, enumerator.WithConfig(config))...)
	Expect(err).NotTo(HaveOccurred())
	return m.Enumerate(context.Background())
}

func formulas(muses []mus.MUS) []string {
	s := make([]string, len(muses))
	for i, m := range muses {
		s[i] = m.Formula.String()
	}
	sort.Strings(s)
	return s
}

func strings(fs []mus.Formula) []string {
	s := make([]string, len(fs))
	for i, f := range fs {
		s[i] = f.String()
	}
	sort.Strings(s)
	return s
}

// randomMUSes returns an antichain of non-empty subsets of [0, dimension).
func randomMUSes(r *rand.Rand, dimension int) [][]int {
	var sets []mus.Formula
	for n := 1 + r.Intn(5); len(sets) < n; {
		size := 1 + r.Intn(min(5, dimension))
		sets = append(sets, mus.FormulaOf(dimension, r.Perm(dimension)[:size]...))
	}
	var out [][]int
	for i, a := range sets {
		keep := true
		for j, b := range sets {
			if i != j && b.SubsetOf(a) && (!a.Equal(b) || j < i) {
				keep = false
			}
		}
		if keep {
			out = append(out, a.Indices())
		}
	}
	return out
}

type recorder struct {
	muses  []mus.MUS
	events []enumerator.Event
	err    error
}

func (r *recorder) Write(m mus.MUS) error {
	r.muses = append(r.muses, m)
	return r.err
}

func (r *recorder) Trace(e enumerator.Event) {
	r.events = append(r.events, e)
}

// lazyShrink is an oracle whose shrink gives up immediately.
type lazyShrink struct {
	*oracle.Oracle
}

func (o lazyShrink) Shrink(f, _ mus.Formula) (mus.Formula, error) {
	return f.Clone(), nil
}

var _ = Describe("Master", func() {
	DescribeTable("two disjoint MUSes", func(a enumerator.Algorithm) {
		backend := fakeoracle.New(4, []int{0, 1}, []int{2, 3})
		result, err := enumerate(backend, configFor(a))
		Expect(err).NotTo(HaveOccurred())

		Expect(formulas(result.MUSes)).To(Equal([]string{"0011", "1100"}))
		Expect(result.Intersection).To(Equal(mus.NewFormula(4, false)))
		Expect(result.Union).To(Equal(mus.NewFormula(4, true)))
		Expect(result.Stats.MUSes).To(Equal(2))
		Expect(result.Stats.Duplicates).To(BeZero())
		for i, m := range result.MUSes {
			Expect(m.ID).To(Equal(i))
			Expect(m.Indices).To(Equal(m.Formula.Indices()))
		}
		Expect(strings(result.MSSes)).To(Equal([]string{"0101", "0110", "1001", "1010"}))
	},
		Entry("remus", enumerator.ReMUS),
		Entry("tome", enumerator.TOME),
		Entry("marco", enumerator.MARCO),
		Entry("marco-bottom", enumerator.MARCOBottom),
		Entry("marco-any", enumerator.MARCOAny),
	)

	Describe("random instances", func() {
		check := func(config enumerator.Config, seed int64) {
			r := rand.New(rand.NewSource(seed))
			for i := 0; i < 30; i++ {
				dimension := 2 + r.Intn(10)
				backend := fakeoracle.New(dimension, randomMUSes(r, dimension)...)
				config.ValidateMUS = true
				result, err := enumerate(backend, config)
				Expect(err).NotTo(HaveOccurred())

				Expect(formulas(result.MUSes)).To(Equal(strings(backend.MUSes())))
				for _, m := range result.MUSes {
					for _, mss := range result.MSSes {
						Expect(m.Formula.SubsetOf(mss)).To(BeFalse())
					}
				}
				for _, mss := range result.MSSes {
					sat, err := backend.Solve(mss.Clone(), false, false)
					Expect(err).NotTo(HaveOccurred())
					Expect(sat).To(BeTrue())
				}
			}
		}

		for _, a := range allAlgorithms {
			a := a
			It("finds exactly the MUSes with "+string(a), func() {
				check(configFor(a), 42)
			})
		}
		for _, reduction := range []float64{0.2, 0.5, 0.9, 1} {
			reduction := reduction
			It(fmt.Sprintf("finds exactly the MUSes with remus reducing to %v", reduction), func() {
				config := configFor(enumerator.ReMUS)
				config.DimReduction = reduction
				check(config, 11)
			})
		}
	})

	It("finishes remus when a nested region exhausts the lattice", func() {
		backend := fakeoracle.New(6, []int{0, 1}, []int{0, 4})
		m, err := enumerator.New(oracle.New(backend))
		Expect(err).NotTo(HaveOccurred())
		result, err := m.Enumerate(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(formulas(result.MUSes)).To(Equal([]string{"100010", "110000"}))
	})

	DescribeTable("criticals and hitting set duality do not change the result", func(config enumerator.Config) {
		r := rand.New(rand.NewSource(7))
		for i := 0; i < 20; i++ {
			dimension := 3 + r.Intn(5)
			backend := fakeoracle.New(dimension, randomMUSes(r, dimension)...)
			result, err := enumerate(backend, config)
			Expect(err).NotTo(HaveOccurred())
			Expect(formulas(result.MUSes)).To(Equal(strings(backend.MUSes())))
		}
	},
		Entry("remus with hsd", enumerator.Config{Algorithm: enumerator.ReMUS, DimReduction: 0.8, CritsThreshold: 0.5, HSD: true, ScopeLimit: 2}),
		Entry("tome without rotation", enumerator.Config{Algorithm: enumerator.TOME, DimReduction: 0.5, CritsThreshold: 0.9}),
		Entry("tome with hsd", enumerator.Config{Algorithm: enumerator.TOME, DimReduction: 0.5, CritsThreshold: 0.3, HSD: true, GetImplies: true, Rotation: true}),
		Entry("marco with a zero threshold", enumerator.Config{Algorithm: enumerator.MARCO, DimReduction: 0.5, GetImplies: true}),
		Entry("marco-any with hsd", enumerator.Config{Algorithm: enumerator.MARCOAny, DimReduction: 0.5, CritsThreshold: 0.9, HSD: true}),
	)

	Describe("clause instances", func() {
		It("rotates criticals over clauses", func() {
			backend := fakeoracle.NewCNF([]int{1}, []int{-1, 2}, []int{-2}, []int{3}, []int{-3})
			config := configFor(enumerator.TOME)
			config.CriticalsRotation = true
			config.ValidateMUS = true
			result, err := enumerate(backend, config)
			Expect(err).NotTo(HaveOccurred())
			Expect(formulas(result.MUSes)).To(ConsistOf("11100", "00011"))
		})
	})

	Describe("skipped shrinks", func() {
		It("records bottom seeds without shrinking", func() {
			backend := fakeoracle.New(3, []int{0, 1, 2})
			result, err := enumerate(backend, configFor(enumerator.MARCOBottom))
			Expect(err).NotTo(HaveOccurred())
			Expect(result.MUSes).To(HaveLen(1))
			Expect(result.MUSes[0].Skipped()).To(BeTrue())
			Expect(result.MUSes[0].SeedDimension).To(Equal(3))
			Expect(result.Stats.SkippedShrinks).To(Equal(1))
		})

		It("derives all criticals from the MSSes", func() {
			backend := fakeoracle.New(3, []int{0, 1, 2})
			result, err := enumerate(backend, configFor(enumerator.TOME))
			Expect(err).NotTo(HaveOccurred())
			Expect(formulas(result.MUSes)).To(Equal([]string{"111"}))
			Expect(result.Stats.Criticals).To(Equal(3))
		})
	})

	Describe("approximations", func() {
		It("accepts seeds close to their minimal unexplored subset", func() {
			backend := fakeoracle.New(4, []int{0, 1}, []int{2, 3})
			config := configFor(enumerator.MARCO)
			config.HSD = true
			config.MUSApprox = 0.9
			config.VerifyApprox = true
			config.ValidateMUS = true
			result, err := enumerate(backend, config)
			Expect(err).NotTo(HaveOccurred())

			Expect(formulas(result.MUSes)).To(ConsistOf("0011", "1110", "1101", "1100"))
			approximate := 0
			for _, m := range result.MUSes {
				if m.Approximate {
					approximate++
					Expect(mus.FormulaOf(4, 0, 1).SubsetOf(m.Formula)).To(BeTrue())
					Expect(m.Skipped()).To(BeTrue())
				}
			}
			Expect(approximate).To(BeNumerically(">=", 2))
			Expect(result.Stats.Approximations).To(Equal(approximate))
			Expect(result.Stats.OverApprox).To(Equal(2))
			Expect(result.Stats.ApproxDifference).To(Equal(2))
			Expect(result.Stats.AverageApproxDifference()).To(BeNumerically("<=", 1))
		})
	})

	Describe("run control", func() {
		It("rejects a satisfiable input", func() {
			backend := fakeoracle.New(3)
			_, err := enumerate(backend, configFor(enumerator.MARCO))
			Expect(errors.Is(err, mus.ErrContractViolation)).To(BeTrue())
			Expect(backend.Calls).To(Equal(1))
		})

		It("fails on an unknown oracle answer", func() {
			backend := fakeoracle.New(3, []int{0})
			backend.Unknown = true
			_, err := enumerate(backend, configFor(enumerator.ReMUS))
			Expect(errors.Is(err, mus.ErrUnknown)).To(BeTrue())
		})

		It("stops when the context is done", func() {
			backend := fakeoracle.New(4, []int{0, 1}, []int{2, 3})
			m, err := enumerator.New(oracle.New(backend))
			Expect(err).NotTo(HaveOccurred())
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			result, err := m.Enumerate(ctx)
			Expect(err).To(MatchError(enumerator.ErrIncomplete))
			Expect(result).To(BeNil())
		})

		It("stops after the maximum number of MUSes", func() {
			backend := fakeoracle.New(4, []int{0}, []int{1}, []int{2}, []int{3})
			config := configFor(enumerator.MARCO)
			config.MaxMUSes = 2
			result, err := enumerate(backend, config)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.MUSes).To(HaveLen(2))
		})

		It("starts over on every call", func() {
			backend := fakeoracle.New(4, []int{0, 1}, []int{2, 3})
			m, err := enumerator.New(oracle.New(backend), enumerator.WithConfig(configFor(enumerator.ReMUS)))
			Expect(err).NotTo(HaveOccurred())
			first, err := m.Enumerate(context.Background())
			Expect(err).NotTo(HaveOccurred())
			second, err := m.Enumerate(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(formulas(second.MUSes)).To(Equal(formulas(first.MUSes)))
			Expect(second.Stats.Checks).To(Equal(first.Stats.Checks))
		})

		It("rejects an invalid configuration", func() {
			config := enumerator.DefaultConfig()
			config.DimReduction = 0
			_, err := enumerator.New(oracle.New(fakeoracle.New(2, []int{0})), enumerator.WithConfig(config))
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("validation", func() {
		It("rejects a non-minimal MUS", func() {
			o := lazyShrink{oracle.New(fakeoracle.New(3, []int{0, 1}))}
			config := configFor(enumerator.MARCO)
			config.ValidateMUS = true
			m, err := enumerator.New(o, enumerator.WithConfig(config))
			Expect(err).NotTo(HaveOccurred())
			_, err = m.Enumerate(context.Background())

			var violation *mus.ContractViolation
			Expect(errors.As(err, &violation)).To(BeTrue())
			Expect(violation.Formula).To(Equal(mus.NewFormula(3, true)))
		})

		It("records whatever shrink returns without validation", func() {
			o := lazyShrink{oracle.New(fakeoracle.New(3, []int{0, 1}))}
			m, err := enumerator.New(o, enumerator.WithConfig(configFor(enumerator.MARCO)))
			Expect(err).NotTo(HaveOccurred())
			result, err := m.Enumerate(context.Background())
			Expect(err).NotTo(HaveOccurred())
			// the subsets of a recorded non-minimal MUS remain unexplored
			Expect(formulas(result.MUSes)).To(Equal([]string{"110", "111"}))
		})
	})

	Describe("outputs", func() {
		It("writes and traces every MUS", func() {
			rec := &recorder{}
			backend := fakeoracle.New(4, []int{0, 1}, []int{2, 3})
			result, err := enumerate(backend, configFor(enumerator.TOME), enumerator.WithWriter(rec), enumerator.WithTracer(rec))
			Expect(err).NotTo(HaveOccurred())
			Expect(rec.muses).To(Equal(result.MUSes))

			var musEvents, mssEvents int
			for _, e := range rec.events {
				switch e.Kind {
				case enumerator.MUSFound:
					Expect(e.MUS.ID).To(Equal(musEvents))
					Expect(e.Stats.MUSes).To(Equal(musEvents + 1))
					musEvents++
				case enumerator.MSSFound:
					mssEvents++
					Expect(e.Stats.MSSes).To(Equal(mssEvents))
				}
			}
			Expect(musEvents).To(Equal(2))
			Expect(mssEvents).To(Equal(result.Stats.MSSes))
		})

		It("fails when the writer fails", func() {
			rec := &recorder{err: errors.New("disk full")}
			_, err := enumerate(fakeoracle.New(2, []int{0}), configFor(enumerator.MARCO), enumerator.WithWriter(rec))
			Expect(err).To(MatchError(ContainSubstring("disk full")))
		})

		It("logs every MUS", func() {
			var buf bytes.Buffer
			log := logrus.New()
			log.SetOutput(&buf)
			log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
			tracer := enumerator.LoggingTracer{Logger: log}
			_, err := enumerate(fakeoracle.New(2, []int{0}, []int{1}), configFor(enumerator.MARCO), enumerator.WithTracer(tracer))
			Expect(err).NotTo(HaveOccurred())
			Expect(bytes.Count(buf.Bytes(), []byte(`msg="found MUS"`))).To(Equal(2))
			Expect(buf.String()).To(ContainSubstring("dimension=1"))
		})
	})
})
