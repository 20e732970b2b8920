package sudoku

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/operator-framework/mustool/cmd/enumerate"
	"github.com/operator-framework/mustool/internal/solver"
	"github.com/operator-framework/mustool/pkg/enumerator"
	"github.com/operator-framework/mustool/pkg/mus"
)

func NewSudokuCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sudoku <board>",
		Short: "Solves a sudoku board, or explains why it has no solution",
		Long: `Solves a sudoku board given as 81 cells row by row, '.' or '0' for empty cells.
When the board has no solution, the minimal sets of clashing givens are enumerated instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			config, opts, err := enumerate.ReadSettings(v)
			if err != nil {
				return err
			}
			board, err := ParseBoard(args[0])
			if err != nil {
				return err
			}
			inst := board.Instance()
			backend, err := enumerate.NewBackend(inst, opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			sat, err := backend.Solve(mus.NewFormula(backend.Dimension(), true), false, false)
			if err != nil {
				return err
			}
			if sat {
				valuer, ok := backend.(solver.Valuer)
				if !ok {
					return fmt.Errorf("solver %s cannot print solutions", opts.Solver)
				}
				printBoard(cmd.OutOrStdout(), valuer)
				return nil
			}

			if opts.Output == "" {
				opts.Output = "-"
			}
			fmt.Fprintln(cmd.OutOrStdout(), "no solution, clashing givens:")
			return enumerate.Run(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), backend, inst.Labels, config, opts)
		},
	}
	enumerate.AddFlags(cmd.Flags(), enumerator.DefaultConfig())
	return cmd
}
