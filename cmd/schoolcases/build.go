package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/gyeh/schoolcases/internal/config"
	"github.com/gyeh/schoolcases/internal/exitcode"
	"github.com/gyeh/schoolcases/internal/logging"
	"github.com/gyeh/schoolcases/internal/pipeline"
	"github.com/gyeh/schoolcases/internal/publish"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the dashboard files and write or upload them",
	RunE:  runBuild,
}

func init() {
	f := buildCmd.Flags()
	f.StringVar(&cfg.BoundaryPath, "boundaries", "", "Complex area GeoJSON (required)")
	f.StringVar(&cfg.OutputDir, "out", "", "Directory to write the artifacts to")
	f.BoolVar(&cfg.WriteParquet, "parquet", false, "Also write cases.parquet")
	addS3Flags(buildCmd)
	rootCmd.AddCommand(buildCmd)
}

func addS3Flags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&cfg.Bucket, "bucket", "", "Bucket to publish to (or set S3_BUCKET)")
	f.StringVar(&cfg.Region, "s3-region", "", "Bucket region (or set S3_REGION)")
	f.StringVar(&cfg.Endpoint, "s3-endpoint", "", "S3-compatible endpoint URL (or set S3_ENDPOINT)")
	f.StringVar(&cfg.KeyPrefix, "key-prefix", config.DefaultKeyPrefix, "Object key prefix")
}

func runBuild(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat, cfg.LogLevel)
	ctx := context.Background()

	if err := cfg.ValidateForBuild(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}

	runID := pipeline.NewRunID()
	pub, err := publisherFor(ctx, log, &cfg, runID)
	if err != nil {
		log.Error().Err(err).Msg("publisher setup failed")
		os.Exit(exitcode.UsageError)
	}

	summary, err := pipeline.Run(ctx, log, &cfg, runID, pub)
	if err != nil {
		var pe *pipeline.PipelineError
		if errors.As(err, &pe) {
			log.Error().Err(pe.Err).Str("phase", pe.Phase).Msg("build failed")
			os.Exit(exitCodeFor(pe.Phase))
		}
		log.Error().Err(err).Msg("build failed")
		os.Exit(exitcode.OutputError)
	}

	fmt.Printf("Build complete: %d cases in %d records, %d schools, latest %s (%.1fs)\n",
		summary.GrandTotal, summary.RecordsEmitted, summary.Schools,
		summary.LatestDate.Format("2006-01-02"), summary.DurationTotal.Seconds())
	for _, loc := range summary.Artifacts {
		fmt.Printf("  %s\n", loc)
	}
	return nil
}

// publisherFor writes to the output directory, the bucket, or both.
func publisherFor(ctx context.Context, log zerolog.Logger, c *config.Config, runID string) (publish.Publisher, error) {
	var pubs publish.Multi
	if c.OutputDir != "" {
		pubs = append(pubs, publish.LocalDir{Dir: c.OutputDir})
	}
	if c.Bucket != "" {
		if err := c.ValidateForPublish(); err != nil {
			return nil, err
		}
		client, err := publish.NewS3Client(ctx, publish.S3Config{
			Bucket:    c.Bucket,
			Region:    c.Region,
			Endpoint:  c.Endpoint,
			AccessKey: c.AccessKey,
			SecretKey: c.SecretKey,
		})
		if err != nil {
			return nil, err
		}
		pubs = append(pubs, publish.NewS3(client, c.Bucket, c.KeyPrefix, runID, log))
	}
	if len(pubs) == 1 {
		return pubs[0], nil
	}
	return pubs, nil
}

func exitCodeFor(phase string) int {
	switch phase {
	case pipeline.PhaseDecode:
		return exitcode.DecodeError
	case pipeline.PhaseReconstruct, pipeline.PhaseAssemble:
		return exitcode.ParseError
	case pipeline.PhaseReference, pipeline.PhaseBoundary:
		return exitcode.ReferenceError
	case pipeline.PhasePublish:
		return exitcode.PublishError
	default:
		return exitcode.OutputError
	}
}
