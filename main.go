// Command spar is a static program analyzer over a statement-level IR. It
// loads a serialized program, builds per-procedure control-flow graphs, runs
// the selected data-flow analyses to a fixpoint, and reports the results as
// text or DOT graphs.
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/spartools/spar/config"
)

var (
	cfgFile string
	conf    config.Config
)

var rootCmd = &cobra.Command{
	Use:   "spar",
	Short: "spar - static program analyzer",
	Long: `spar analyzes programs given as a statement-level IR in YAML form.

Available analyses:
  live      live variables (backward may-analysis)
  reaching  reaching definitions (forward may-analysis)
  pointer   points-to and alias analysis (flow-insensitive)`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func setup(cmd *cobra.Command, _ []string) error {
	conf = config.Default()
	if cfgFile != "" {
		loaded, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		conf = loaded
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		conf.LogLevel = level
	}
	if noColor, _ := cmd.Flags().GetBool("no-color"); noColor {
		conf.NoColor = true
	}
	return conf.Apply()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to a YAML tool configuration")
	rootCmd.PersistentFlags().String("log-level", "", "log level (panic, fatal, error, warn, info, debug, trace)")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable colorized output")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(renderCmd)
}

func main() {
	// An interrupt cancels the run between procedure boundaries; completed
	// procedures are still reported.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
