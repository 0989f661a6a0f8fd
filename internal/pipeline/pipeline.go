// Package pipeline runs a complete case report build: decode the sheet,
// rebuild the records, aggregate, render and publish.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gyeh/schoolcases/internal/assemble"
	"github.com/gyeh/schoolcases/internal/boundary"
	"github.com/gyeh/schoolcases/internal/config"
	"github.com/gyeh/schoolcases/internal/db"
	"github.com/gyeh/schoolcases/internal/export"
	"github.com/gyeh/schoolcases/internal/grid"
	"github.com/gyeh/schoolcases/internal/model"
	"github.com/gyeh/schoolcases/internal/normalize"
	"github.com/gyeh/schoolcases/internal/parquetread"
	"github.com/gyeh/schoolcases/internal/publish"
	"github.com/gyeh/schoolcases/internal/reconstruct"
	"github.com/gyeh/schoolcases/internal/refdata"
)

// Pipeline phases, reported in PipelineError.
const (
	PhaseDecode      = "decode"
	PhaseReference   = "reference"
	PhaseReconstruct = "reconstruct"
	PhaseBoundary    = "boundary"
	PhaseAssemble    = "assemble"
	PhaseExport      = "export"
	PhaseWrite       = "write"
	PhasePublish     = "publish"
)

// PipelineError wraps an error with the phase where it occurred.
type PipelineError struct {
	Phase string
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s: %s", e.Phase, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// now stamps last_updated; tests replace it.
var now = time.Now

// Build holds everything a run produced before publishing.
type Build struct {
	Output    *assemble.Output
	Artifacts []export.Artifact
	Summary   *model.RunSummary
}

// NewRunID returns a fresh identifier for tagging one run's logs and objects.
func NewRunID() string {
	return uuid.New().String()
}

// Prepare runs every phase up to and including rendering. Nothing is
// written; a failure in any phase returns a *PipelineError. An empty runID
// is replaced by a fresh one.
func Prepare(ctx context.Context, log zerolog.Logger, cfg *config.Config, runID string) (*Build, error) {
	totalStart := time.Now()
	if runID == "" {
		runID = NewRunID()
	}
	log = log.With().Str("run_id", runID).Logger()
	summary := &model.RunSummary{RunID: runID, InputPath: cfg.InputPath}

	// Phase 1: Decode
	start := time.Now()
	log.Info().Str("file", cfg.InputPath).Msg("decoding case sheet")
	sha, err := normalize.FileHash(cfg.InputPath)
	if err != nil {
		return nil, &PipelineError{Phase: PhaseDecode, Err: &grid.DecodeError{Path: cfg.InputPath, Err: err}}
	}
	summary.InputSHA256 = sha
	g, err := grid.Open(cfg.InputPath, cfg.Layout.Sheet)
	if err != nil {
		return nil, &PipelineError{Phase: PhaseDecode, Err: err}
	}
	summary.DurationDecode = time.Since(start)
	log.Info().Str("sha256", sha).Int("last_row", g.LastRow()).Msg("case sheet decoded")

	// Phase 2: Reference data
	dir, err := loadDirectory(ctx, log, cfg)
	if err != nil {
		return nil, &PipelineError{Phase: PhaseReference, Err: err}
	}
	log.Info().Int("schools", dir.Len()).Msg("school directory loaded")

	// Phase 3: Reconstruct
	start = time.Now()
	opts := reconstruct.OptionsFromLayout(cfg.Layout)
	if cfg.StrictSchools {
		opts.KnownSchool = dir.Has
	}
	res, err := reconstruct.Rebuild(g, opts, log)
	if err != nil {
		return nil, &PipelineError{Phase: PhaseReconstruct, Err: err}
	}
	summary.DurationRebuild = time.Since(start)
	summary.RowsRead = res.RowsRead
	summary.RecordsEmitted = len(res.Records)
	summary.RowsSplit = res.RowsSplit
	summary.RowsContinued = res.RowsContinued
	summary.FragmentsDropped = res.FragmentsDropped

	// Phase 4: Boundaries
	var (
		regions []string
		extents map[string][]float64
	)
	if cfg.BoundaryPath != "" {
		rs, err := boundary.Load(cfg.BoundaryPath, cfg.Layout.RegionProperty)
		if err != nil {
			return nil, &PipelineError{Phase: PhaseBoundary, Err: err}
		}
		regions = boundary.Names(rs)
		extents = boundary.Extents(rs)
	} else {
		log.Info().Msg("no boundary file, skipping region totals")
	}

	// Phase 5: Assemble
	start = time.Now()
	epoch, err := cfg.Layout.EpochDate()
	if err != nil {
		return nil, &PipelineError{Phase: PhaseAssemble, Err: err}
	}
	out, err := assemble.Assemble(assemble.Input{
		Records:          res.Records,
		Directory:        dir,
		Regions:          regions,
		Extents:          extents,
		Epoch:            epoch,
		RecentWindowDays: cfg.Layout.RecentWindowDays,
		LastUpdated:      now(),
	}, log)
	if err != nil {
		return nil, &PipelineError{Phase: PhaseAssemble, Err: err}
	}
	summary.DurationAssemble = time.Since(start)
	summary.GrandTotal = out.Meta.GrandTotal
	summary.LatestDate = out.LatestDate
	summary.Schools = len(out.Schools)
	summary.Regions = len(out.Regions)
	summary.Warnings = len(res.Warnings) + len(out.Warnings)
	for _, w := range out.Warnings {
		var uw *refdata.UnmatchedSchoolWarning
		if errors.As(w, &uw) {
			summary.SchoolsUnmatched++
		}
	}

	// Phase 6: Render
	start = time.Now()
	artifacts, err := export.Render(out, export.Options{Parquet: cfg.WriteParquet})
	if err != nil {
		return nil, &PipelineError{Phase: PhaseExport, Err: err}
	}
	for _, a := range artifacts {
		if a.Name != export.CasesParquet {
			continue
		}
		if err := parquetread.Verify(a.Body, len(out.Records), out.Meta.GrandTotal); err != nil {
			return nil, &PipelineError{Phase: PhaseExport, Err: fmt.Errorf("verify %s: %w", a.Name, err)}
		}
	}
	summary.DurationExport = time.Since(start)
	summary.DurationTotal = time.Since(totalStart)

	log.Info().
		Int("rows_read", summary.RowsRead).
		Int("records", summary.RecordsEmitted).
		Int("rows_split", summary.RowsSplit).
		Int("warnings", summary.Warnings).
		Int("grand_total", summary.GrandTotal).
		Int("artifacts", len(artifacts)).
		Str("duration", summary.DurationTotal.String()).
		Msg("build prepared")

	return &Build{Output: out, Artifacts: artifacts, Summary: summary}, nil
}

// Run prepares a build and hands every artifact to pub. Publishing starts
// only after all artifacts rendered successfully.
func Run(ctx context.Context, log zerolog.Logger, cfg *config.Config, runID string, pub publish.Publisher) (*model.RunSummary, error) {
	b, err := Prepare(ctx, log, cfg, runID)
	if err != nil {
		return nil, err
	}
	summary := b.Summary
	log = log.With().Str("run_id", summary.RunID).Logger()

	start := time.Now()
	locs, err := pub.Publish(ctx, b.Artifacts)
	summary.Artifacts = locs
	if err != nil {
		phase := PhasePublish
		if _, local := pub.(publish.LocalDir); local {
			phase = PhaseWrite
		}
		return summary, &PipelineError{Phase: phase, Err: err}
	}
	summary.DurationPublish = time.Since(start)
	summary.DurationTotal += summary.DurationPublish

	log.Info().
		Int("artifacts", len(locs)).
		Int("grand_total", summary.GrandTotal).
		Str("latest_date", summary.LatestDate.Format("2006-01-02")).
		Str("total_duration", summary.DurationTotal.String()).
		Msg("case report pipeline complete")

	return summary, nil
}

func loadDirectory(ctx context.Context, log zerolog.Logger, cfg *config.Config) (*refdata.Directory, error) {
	if cfg.SchoolsDSN == "" {
		return refdata.LoadCSV(cfg.SchoolsPath)
	}

	pool, err := db.NewPool(ctx, cfg.SchoolsDSN, true)
	if err != nil {
		return nil, err
	}
	defer pool.Close()

	log.Info().Str("table", cfg.SchoolsTable).Msg("reading school directory from postgres")
	return refdata.LoadPostgres(ctx, pool, cfg.SchoolsTable)
}
