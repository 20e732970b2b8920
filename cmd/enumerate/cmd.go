package enumerate

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/operator-framework/mustool/pkg/enumerator"
)

const (
	SolverGini      = "gini"
	SolverGophersat = "gophersat"
)

// Options are the settings of a run that are not part of the
// enumerator configuration.
type Options struct {
	Solver      string        `mapstructure:"solver"`
	Output      string        `mapstructure:"output"`
	MetricsAddr string        `mapstructure:"metrics-addr"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Trace       bool          `mapstructure:"trace"`
	Verbose     bool          `mapstructure:"verbose"`
}

func NewEnumerateCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "enumerate <path>",
		Short: "Enumerates the minimal unsatisfiable subsets of a set of constraints",
		Long: `Enumerates the minimal unsatisfiable subsets (MUSes) of an unsatisfiable set of constraints.
The input format is chosen by file extension:
  .cnf         DIMACS CNF, every clause is one constraint
  .yaml, .yml  variables with constraints, every constraint is one constraint
For instance:
c an unsatisfiable formula with the MUSes {1, 2} and {3, 4}
p cnf 2 4
1 0
-1 0
2 0
-2 0
`,
		Args: cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(args[0]); errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("file (%s) not found", args[0])
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			config, opts, err := ReadSettings(v)
			if err != nil {
				return err
			}
			inst, err := Load(args[0])
			if err != nil {
				return err
			}
			backend, err := NewBackend(inst, opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			return Run(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), backend, inst.Labels, config, opts)
		},
	}

	AddFlags(cmd.Flags(), enumerator.DefaultConfig())
	return cmd
}

// ReadSettings unmarshals the settings bound into v.
func ReadSettings(v *viper.Viper) (enumerator.Config, Options, error) {
	config := enumerator.DefaultConfig()
	if err := v.Unmarshal(&config); err != nil {
		return config, Options{}, fmt.Errorf("error reading configuration: %w", err)
	}
	var opts Options
	if err := v.Unmarshal(&opts); err != nil {
		return config, opts, fmt.Errorf("error reading configuration: %w", err)
	}
	return config, opts, nil
}

// AddFlags declares one flag per configuration key, defaulting to the
// values of defaults.
func AddFlags(flags *pflag.FlagSet, defaults enumerator.Config) {
	flags.StringP("algorithm", "a", string(defaults.Algorithm), "enumeration algorithm: remus, tome, marco, marco-bottom or marco-any")
	flags.Float64("dim-reduction", defaults.DimReduction, "fraction of a seed kept in the sub-regions remus recurses into")
	flags.Float64("crits-threshold", defaults.CritsThreshold, "fraction of known critical constraints above which they are tested alone before shrinking")
	flags.Float64("mus-approx", defaults.MUSApprox, "fraction of the dimension by which accepted approximate MUSes may exceed their minimal unexplored subset")
	flags.Bool("hsd", defaults.HSD, "accept MUSes by the hitting set duality check")
	flags.Bool("validate-mus", defaults.ValidateMUS, "re-check every MUS before it is recorded")
	flags.Bool("verify-approx", defaults.VerifyApprox, "shrink approximate MUSes to measure the approximation error")
	flags.Bool("get-implies", defaults.GetImplies, "derive critical constraints from the maximal satisfiable subsets found")
	flags.Bool("criticals-rotation", defaults.CriticalsRotation, "widen critical constraints by model rotation (cnf inputs)")
	flags.Bool("rotation", defaults.Rotation, "rotate MUSes into new seeds (tome)")
	flags.Int("scope-limit", defaults.ScopeLimit, "maximal recursion depth of remus")
	flags.Int("max-muses", defaults.MaxMUSes, "stop after this many MUSes, 0 for no limit")
	flags.String("solver", SolverGini, "satisfiability backend: gini or gophersat (cnf inputs only)")
	flags.StringP("output", "o", "", "append every MUS to this file, - for standard output")
	flags.String("metrics-addr", "", "serve prometheus metrics on this address during the run")
	flags.Duration("timeout", 0, "abort the enumeration after this long, 0 for no timeout")
	flags.Bool("trace", false, "log every satisfiability check (gini only)")
}
