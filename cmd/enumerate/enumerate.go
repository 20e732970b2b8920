package enumerate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/operator-framework/mustool/cmd/dimacs"
	"github.com/operator-framework/mustool/cmd/variables"
	"github.com/operator-framework/mustool/internal/gophersat"
	"github.com/operator-framework/mustool/internal/metrics"
	"github.com/operator-framework/mustool/internal/output"
	"github.com/operator-framework/mustool/internal/solver"
	"github.com/operator-framework/mustool/pkg/enumerator"
	"github.com/operator-framework/mustool/pkg/mus/constraint"
	"github.com/operator-framework/mustool/pkg/oracle"
)

// Instance is a list of constraints to enumerate the MUSes of.
type Instance struct {
	Constraints []constraint.Applied
	// Background constraints hold in every check and are never part
	// of a MUS.
	Background []constraint.Applied
	// Clauses is nil unless the input is CNF.
	Clauses [][]int
	Labels  []string
}

// Load parses the input file at path, choosing the format by its
// extension.
func Load(path string) (*Instance, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening input file (%s): %w", path, err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".cnf":
		d, err := dimacs.NewDimacs(f)
		if err != nil {
			return nil, fmt.Errorf("error parsing dimacs file (%s): %w", path, err)
		}
		return &Instance{
			Constraints: d.Constraints(),
			Clauses:     d.Literals(),
			Labels:      d.Clauses(),
		}, nil
	case ".yaml", ".yml":
		applied, err := variables.Parse(f)
		if err != nil {
			return nil, fmt.Errorf("error parsing variables file (%s): %w", path, err)
		}
		return &Instance{
			Constraints: applied,
			Labels: lo.Map(applied, func(a constraint.Applied, _ int) string {
				return a.String()
			}),
		}, nil
	}
	return nil, fmt.Errorf("wrong input file (%s): expected a .cnf, .yaml or .yml file", path)
}

// NewBackend builds the satisfiability backend selected by opts.
func NewBackend(inst *Instance, opts Options, stderr io.Writer) (oracle.Backend, error) {
	switch opts.Solver {
	case SolverGini:
		options := []solver.Option{
			solver.WithInput(inst.Constraints),
			solver.WithBackground(inst.Background),
		}
		if opts.Trace {
			options = append(options, solver.WithTracer(solver.LoggingTracer{Writer: stderr}))
		}
		return solver.NewSolver(options...)
	case SolverGophersat:
		if inst.Clauses == nil {
			return nil, fmt.Errorf("solver %s requires a cnf input", SolverGophersat)
		}
		return gophersat.New(inst.Clauses), nil
	}
	return nil, fmt.Errorf("unknown solver %q", opts.Solver)
}

// Run enumerates the MUSes of the constraints decided by backend and
// prints a summary of the run to stdout. labels name the constraints
// in the output file.
func Run(ctx context.Context, stdout, stderr io.Writer, backend oracle.Backend, labels []string, config enumerator.Config, opts Options) error {
	log := logrus.New()
	log.SetOutput(stderr)
	if opts.Verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	o := oracle.New(backend)

	tracers := enumerator.MultiTracer{enumerator.LoggingTracer{Logger: log}}
	if opts.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		t, err := metrics.NewTracer(reg, config.Algorithm)
		if err != nil {
			return err
		}
		tracers = append(tracers, t)
		stop := serveMetrics(log, opts.MetricsAddr, reg)
		defer stop()
	}

	options := []enumerator.Option{
		enumerator.WithConfig(config),
		enumerator.WithLogger(log),
		enumerator.WithTracer(tracers),
	}
	switch opts.Output {
	case "":
	case "-":
		options = append(options, enumerator.WithWriter(output.NewWriter(stdout, labels)))
	default:
		w, err := output.Create(opts.Output, labels)
		if err != nil {
			return err
		}
		defer w.Close()
		options = append(options, enumerator.WithWriter(w))
	}

	m, err := enumerator.New(o, options...)
	if err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	result, err := m.Enumerate(ctx)
	if err != nil {
		return err
	}
	printSummary(stdout, config, o, result)
	return nil
}

// serveMetrics serves reg on addr until the returned func is called.
func serveMetrics(log logrus.FieldLogger, addr string, reg *prometheus.Registry) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("metrics serving failed: %v", err)
		}
	}()
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.Warnf("metrics server shutdown: %v", err)
		}
	}
}

func printSummary(w io.Writer, config enumerator.Config, o *oracle.Oracle, result *enumerator.Result) {
	s := result.Stats
	fmt.Fprintf(w, "algorithm: %s\n", config.Algorithm)
	fmt.Fprintf(w, "MUSes: %d\n", s.MUSes)
	fmt.Fprintf(w, "MSSes: %d\n", s.MSSes)
	fmt.Fprintf(w, "checks: %d\n", s.Checks)
	fmt.Fprintf(w, "shrinks: %d\n", o.Shrinks())
	fmt.Fprintf(w, "grows: %d\n", o.Grows())
	fmt.Fprintf(w, "skipped shrinks: %d\n", s.SkippedShrinks)
	fmt.Fprintf(w, "duplicates: %d\n", s.Duplicates)
	fmt.Fprintf(w, "criticals: %d\n", s.Criticals)
	fmt.Fprintf(w, "backbones: %d/%d\n", s.BackbonesUsed, s.Backbones)
	if config.Algorithm == enumerator.TOME {
		fmt.Fprintf(w, "explicit seeds: %d\n", s.ExplicitSeeds)
		fmt.Fprintf(w, "rotated MUSes: %d\n", s.RotatedMUSes)
		fmt.Fprintf(w, "spurious seeds: %d\n", s.Spurious)
	}
	if config.CriticalsRotation {
		fmt.Fprintf(w, "rotations: %d\n", s.Rotations)
	}
	fmt.Fprintf(w, "intersection: %d\n", result.Intersection.Count())
	fmt.Fprintf(w, "union: %d\n", result.Union.Count())
	if config.HSD {
		fmt.Fprintf(w, "hsd successes: %d\n", s.HSDSuccesses)
		fmt.Fprintf(w, "approximations: %d\n", s.Approximations)
	}
	if config.VerifyApprox {
		fmt.Fprintf(w, "right approximations: %d\n", s.RightApprox)
		fmt.Fprintf(w, "overapproximations: %d\n", s.OverApprox)
		fmt.Fprintf(w, "average overapproximation: %.2f\n", s.AverageApproxDifference())
	}
	fmt.Fprintf(w, "time: %s\n", s.Elapsed.Round(time.Millisecond))
}
