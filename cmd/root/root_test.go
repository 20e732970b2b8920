package root_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/operator-framework/mustool/cmd/root"
)

func TestRoot(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Root Suite")
}

const (
	pairs = `c two independent contradictions
p cnf 2 4
1 0
-1 0
2 0
-2 0
`
	contradiction = `
variables:
- id: a
  constraints:
  - mandatory: true
  - prohibited: true
- id: b
  constraints:
  - mandatory: true
`
)

var _ = Describe("mustool", func() {
	var (
		dir            string
		stdout, stderr *bytes.Buffer
	)

	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		Expect(os.WriteFile(path, []byte(content), 0o600)).To(Succeed())
		return path
	}
	execute := func(args ...string) error {
		cmd := root.NewRootCmd()
		cmd.SetArgs(args)
		cmd.SetOut(stdout)
		cmd.SetErr(stderr)
		return cmd.Execute()
	}

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		stdout = &bytes.Buffer{}
		stderr = &bytes.Buffer{}
	})

	It("should enumerate the MUSes of a cnf file", func() {
		out := filepath.Join(dir, "muses.txt")
		Expect(execute("enumerate", write("pairs.cnf", pairs), "-o", out)).To(Succeed())
		Expect(stdout.String()).To(ContainSubstring("algorithm: remus\n"))
		Expect(stdout.String()).To(ContainSubstring("MUSes: 2\n"))

		written, err := os.ReadFile(out)
		Expect(err).ToNot(HaveOccurred())
		Expect(string(written)).To(ContainSubstring("1\n-1\n\n"))
		Expect(string(written)).To(ContainSubstring("2\n-2\n\n"))
	})

	It("should enumerate the MUSes of a variables file", func() {
		out := filepath.Join(dir, "muses.txt")
		Expect(execute("enumerate", write("vars.yaml", contradiction), "--algorithm", "tome", "-o", out)).To(Succeed())
		Expect(stdout.String()).To(ContainSubstring("MUSes: 1\n"))

		written, err := os.ReadFile(out)
		Expect(err).ToNot(HaveOccurred())
		Expect(string(written)).To(Equal("a is mandatory\na is prohibited\n\n"))
	})

	DescribeTable("should run every algorithm on both solvers",
		func(algorithm, solver string) {
			Expect(execute("enumerate", write("pairs.cnf", pairs), "--algorithm", algorithm, "--solver", solver)).To(Succeed())
			Expect(stdout.String()).To(ContainSubstring("MUSes: 2\n"))
		},
		Entry("remus on gini", "remus", "gini"),
		Entry("tome on gini", "tome", "gini"),
		Entry("marco on gini", "marco", "gini"),
		Entry("marco-bottom on gophersat", "marco-bottom", "gophersat"),
		Entry("marco-any on gophersat", "marco-any", "gophersat"),
		Entry("tome on gophersat", "tome", "gophersat"),
	)

	It("should read settings from the environment", func() {
		Expect(os.Setenv("MUSTOOL_ALGORITHM", "marco")).To(Succeed())
		DeferCleanup(os.Unsetenv, "MUSTOOL_ALGORITHM")
		Expect(execute("enumerate", write("pairs.cnf", pairs))).To(Succeed())
		Expect(stdout.String()).To(ContainSubstring("algorithm: marco\n"))
	})

	It("should read settings from a config file", func() {
		config := write("mustool.yaml", "algorithm: tome\nrotation: false\nmax-muses: 1\n")
		Expect(execute("enumerate", write("pairs.cnf", pairs), "--config", config)).To(Succeed())
		Expect(stdout.String()).To(ContainSubstring("algorithm: tome\n"))
		Expect(stdout.String()).To(ContainSubstring("MUSes: 1\n"))
	})

	It("should prefer flags over the config file", func() {
		config := write("mustool.yaml", "algorithm: tome\n")
		Expect(execute("enumerate", write("pairs.cnf", pairs), "--config", config, "-a", "marco-bottom")).To(Succeed())
		Expect(stdout.String()).To(ContainSubstring("algorithm: marco-bottom\n"))
	})

	It("should serve metrics while enumerating", func() {
		Expect(execute("enumerate", write("pairs.cnf", pairs), "--metrics-addr", "127.0.0.1:0")).To(Succeed())
		Expect(stdout.String()).To(ContainSubstring("MUSes: 2\n"))
	})

	It("should trace the checks of the gini solver", func() {
		Expect(execute("enumerate", write("pairs.cnf", pairs), "--trace")).To(Succeed())
		Expect(stderr.String()).To(ContainSubstring("Assumptions:"))
	})

	It("should enumerate with the default settings when a nested region exhausts the lattice", func() {
		out := filepath.Join(dir, "muses.txt")
		Expect(execute("enumerate", write("nested.cnf", "p cnf 3 6\n1 0\n-1 0\n2 0\n3 0\n-1 0\n-3 2 0\n"), "-o", out)).To(Succeed())
		Expect(stdout.String()).To(ContainSubstring("algorithm: remus\n"))
		Expect(stdout.String()).To(ContainSubstring("MUSes: 2\n"))

		written, err := os.ReadFile(out)
		Expect(err).ToNot(HaveOccurred())
		Expect(string(written)).To(ContainSubstring("1\n-1\n\n"))
	})

	It("should write MUSes to standard output", func() {
		Expect(execute("enumerate", write("vars.yaml", contradiction), "-o", "-")).To(Succeed())
		Expect(stdout.String()).To(HavePrefix("a is mandatory\na is prohibited\n\n"))
	})

	It("should solve a sudoku board", func() {
		Expect(execute("sudoku", "53..7....6..195....98....6.8...6...34..8.3..17...2...6.6....28....419..5....8..79")).To(Succeed())
		lines := strings.Split(strings.TrimSuffix(stdout.String(), "\n"), "\n")
		Expect(lines).To(HaveLen(9))
		for _, line := range lines {
			Expect(line).To(MatchRegexp(`^[1-9]( [1-9]){8}$`))
		}
		Expect(lines[0]).To(HavePrefix("5 3"))
	})

	It("should explain an unsolvable sudoku board", func() {
		Expect(execute("sudoku", "55"+strings.Repeat(".", 79))).To(Succeed())
		Expect(stdout.String()).To(ContainSubstring("r1c1=5 is mandatory\nr1c2=5 is mandatory\n\n"))
		Expect(stdout.String()).To(ContainSubstring("MUSes: 1\n"))
	})

	It("should fail on a missing file", func() {
		err := execute("enumerate", filepath.Join(dir, "missing.cnf"))
		Expect(err).To(MatchError(ContainSubstring("not found")))
	})

	It("should fail on an unknown extension", func() {
		err := execute("enumerate", write("pairs.txt", pairs))
		Expect(err).To(MatchError(ContainSubstring("wrong input file")))
	})

	It("should fail on gophersat without a cnf input", func() {
		err := execute("enumerate", write("vars.yml", contradiction), "--solver", "gophersat")
		Expect(err).To(MatchError(ContainSubstring("requires a cnf input")))
	})

	It("should fail on an unknown algorithm", func() {
		err := execute("enumerate", write("pairs.cnf", pairs), "-a", "quickxplain")
		Expect(err).To(HaveOccurred())
	})

	It("should fail on a satisfiable input", func() {
		err := execute("enumerate", write("sat.cnf", "p cnf 1 1\n1 0\n"))
		Expect(err).To(MatchError(ContainSubstring("satisfiable")))
	})
})
