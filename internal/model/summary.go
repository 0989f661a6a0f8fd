package model

import "time"

// RunSummary captures metrics from a single pipeline run.
type RunSummary struct {
	RunID            string
	InputPath        string
	InputSHA256      string
	RowsRead         int
	RecordsEmitted   int
	RowsSplit        int
	RowsContinued    int
	FragmentsDropped int
	Warnings         int
	GrandTotal       int
	LatestDate       time.Time
	Schools          int
	SchoolsUnmatched int
	Regions          int
	Artifacts        []string
	DurationDecode   time.Duration
	DurationRebuild  time.Duration
	DurationAssemble time.Duration
	DurationExport   time.Duration
	DurationPublish  time.Duration
	DurationTotal    time.Duration
}
