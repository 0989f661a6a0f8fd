package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gyeh/schoolcases/internal/exitcode"
	"github.com/gyeh/schoolcases/internal/logging"
	"github.com/gyeh/schoolcases/internal/pipeline"
	"github.com/gyeh/schoolcases/internal/publish"
)

var publishDir string

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Upload a previously built output directory to the bucket",
	RunE:  runPublish,
}

func init() {
	publishCmd.Flags().StringVar(&publishDir, "dir", "", "Directory written by build --out (required)")
	_ = publishCmd.MarkFlagRequired("dir")
	addS3Flags(publishCmd)
	rootCmd.AddCommand(publishCmd)
}

func runPublish(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat, cfg.LogLevel)
	ctx := context.Background()

	if err := cfg.ValidateForPublish(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}

	artifacts, err := publish.LoadDir(publishDir)
	if err != nil {
		log.Error().Err(err).Msg("failed to read artifacts")
		os.Exit(exitcode.OutputError)
	}

	runID := pipeline.NewRunID()
	log = log.With().Str("run_id", runID).Logger()
	cfg.OutputDir = ""
	pub, err := publisherFor(ctx, log, &cfg, runID)
	if err != nil {
		log.Error().Err(err).Msg("publisher setup failed")
		os.Exit(exitcode.UsageError)
	}

	locs, err := pub.Publish(ctx, artifacts)
	if err != nil {
		log.Error().Err(err).Msg("publish failed")
		os.Exit(exitcode.PublishError)
	}

	fmt.Printf("Published %d artifacts\n", len(locs))
	for _, loc := range locs {
		fmt.Printf("  %s\n", loc)
	}
	return nil
}
