package model

import "time"

// DailyPoint is one day of a dense date-indexed series.
type DailyPoint struct {
	Date            time.Time
	DailyCount      int
	CumulativeCount int
	// SevenDayAverage is nil for the first six points of a series.
	SevenDayAverage *int
}

// RunMetadata is the run-level summary published as meta.json.
type RunMetadata struct {
	LastUpdated         time.Time
	GrandTotal          int
	AllCasesByDate      []DailyPoint
	SchoolsLastTwoWeeks map[string][]DailyPoint
}
