package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/spartools/spar/analysis/runner"
	"github.com/spartools/spar/frontend"
	"github.com/spartools/spar/reporting"
)

var analysisFlags []string

var analyzeCmd = &cobra.Command{
	Use:   "analyze <program.yaml>",
	Short: "Run the selected analyses and print a text report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		prog, err := frontend.LoadFile(args[0])
		if err != nil {
			return err
		}

		kinds, err := selectedAnalyses()
		if err != nil {
			return err
		}

		rr := runner.Run(cmd.Context(), prog, runner.Options{
			Analyses:    kinds,
			Parallelism: conf.Parallelism,
		})

		failed := 0
		for _, res := range rr.Results() {
			if err := reporting.WriteText(os.Stdout, res); err != nil {
				return err
			}
			if res.Status == runner.StatusFailed {
				failed++
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d procedure(s) failed", failed)
		}
		return nil
	},
}

// selectedAnalyses resolves the --analysis flags, falling back to the
// configuration and then to all analyses.
func selectedAnalyses() ([]runner.Kind, error) {
	names := analysisFlags
	if len(names) == 0 {
		names = conf.Analyses
	}

	kinds := make([]runner.Kind, 0, len(names))
	for _, name := range names {
		kind, err := runner.ParseKind(name)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, kind)
	}
	return kinds, nil
}

func init() {
	analyzeCmd.Flags().StringSliceVar(&analysisFlags, "analysis", nil,
		"analyses to run (live, reaching, pointer); default all")
}
