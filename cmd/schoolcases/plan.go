package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gyeh/schoolcases/internal/exitcode"
	"github.com/gyeh/schoolcases/internal/logging"
	"github.com/gyeh/schoolcases/internal/pipeline"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Dry-run the build and print stats (no writes)",
	RunE:  runPlan,
}

func init() {
	f := planCmd.Flags()
	f.StringVar(&cfg.BoundaryPath, "boundaries", "", "Complex area GeoJSON (optional)")
	f.BoolVar(&cfg.WriteParquet, "parquet", false, "Also render and verify cases.parquet")
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat, cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}

	b, err := pipeline.Prepare(context.Background(), log, &cfg, "")
	if err != nil {
		var pe *pipeline.PipelineError
		if errors.As(err, &pe) {
			log.Error().Err(pe.Err).Str("phase", pe.Phase).Msg("plan failed")
			os.Exit(exitCodeFor(pe.Phase))
		}
		log.Error().Err(err).Msg("plan failed")
		os.Exit(exitcode.OutputError)
	}

	s := b.Summary
	fmt.Println("=== schoolcases plan ===")
	fmt.Printf("File:            %s\n", s.InputPath)
	fmt.Printf("SHA-256:         %s\n", s.InputSHA256)
	fmt.Printf("Rows read:       %d\n", s.RowsRead)
	fmt.Printf("Records:         %d\n", s.RecordsEmitted)
	fmt.Printf("Rows split:      %d\n", s.RowsSplit)
	fmt.Printf("Rows continued:  %d (%d fragments dropped)\n", s.RowsContinued, s.FragmentsDropped)
	fmt.Printf("Warnings:        %d\n", s.Warnings)
	fmt.Printf("Grand total:     %d\n", s.GrandTotal)
	fmt.Printf("Latest date:     %s\n", s.LatestDate.Format("2006-01-02"))
	fmt.Printf("Schools:         %d (%d without directory data)\n", s.Schools, s.SchoolsUnmatched)
	fmt.Printf("Complex areas:   %d\n", s.Regions)
	fmt.Println()
	fmt.Println("Artifacts (not written):")
	for _, a := range b.Artifacts {
		fmt.Printf("  %-18s %8d bytes\n", a.Name, len(a.Body))
	}
	return nil
}
