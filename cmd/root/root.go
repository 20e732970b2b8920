package root

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/operator-framework/mustool/cmd/enumerate"
	"github.com/operator-framework/mustool/cmd/sudoku"
)

const envPrefix = "MUSTOOL"

func NewRootCmd() *cobra.Command {
	v := viper.New()
	rootCmd := &cobra.Command{
		Use:   "mustool",
		Short: "mustool enumerates minimal unsatisfiable subsets of constraint sets",
		Long: `An online enumerator of minimal unsatisfiable subsets (MUSes) written in Go.
Settings are read from flags, then MUSTOOL_* environment variables, then the --config file.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return initConfig(v, cmd)
		},
	}
	rootCmd.PersistentFlags().String("config", "", "YAML configuration file")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log at debug level")

	// add sub-commands
	rootCmd.AddCommand(enumerate.NewEnumerateCommand(v))
	rootCmd.AddCommand(sudoku.NewSudokuCommand(v))

	return rootCmd
}

// initConfig binds the flags of the executing command to v and reads
// the environment and the optional configuration file.
func initConfig(v *viper.Viper, cmd *cobra.Command) error {
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}
	if err := v.BindPFlags(cmd.InheritedFlags()); err != nil {
		return err
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	path := v.GetString("config")
	if path == "" {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("error reading config file (%s): %w", path, err)
	}
	return nil
}
