package main

import (
	"fmt"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/spartools/spar/analysis/runner"
	"github.com/spartools/spar/frontend"
	"github.com/spartools/spar/reporting"
)

var renderCmd = &cobra.Command{
	Use:   "render <program.yaml>",
	Short: "Render per-procedure CFGs as DOT graphs or images",
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

		outDir, _ := cmd.Flags().GetString("out")
		if outDir == "" {
			outDir = conf.Reports.Dir
		}
		if outDir == "" {
			outDir = "."
		}
		format, _ := cmd.Flags().GetString("format")
		if format == "" {
			format = conf.Reports.DotFormat
		}
		facts := conf.Reports.Facts
		if cmd.Flags().Changed("facts") {
			facts, _ = cmd.Flags().GetBool("facts")
		}

		rr := runner.Run(cmd.Context(), prog, runner.Options{
			Analyses:    kinds,
			Parallelism: conf.Parallelism,
		})

		for _, res := range rr.Results() {
			if res.Graph == nil {
				logrus.Warnf("skipping %s: %s", res.Procedure, res.Status)
				continue
			}
			dot, err := reporting.DotGraph(res, facts)
			if err != nil {
				return err
			}

			base := filepath.Join(outDir, res.Procedure)
			var path string
			if format == "dot" {
				path, err = reporting.WriteDotFile(base, dot)
			} else {
				path, err = reporting.DotToImage(base, format, dot)
			}
			if err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", path)
		}
		return nil
	},
}

func init() {
	renderCmd.Flags().String("out", "", "output directory (default from config, else the working directory)")
	renderCmd.Flags().String("format", "", "output format: dot, svg, png (default from config)")
	renderCmd.Flags().Bool("facts", true, "annotate nodes with analysis facts")
}
