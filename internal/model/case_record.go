package model

import "time"

// UnspecifiedLastDate is recorded when the source omits the last date on campus.
const UnspecifiedLastDate = "Unspecified"

// CaseRecord is one reported case line, or several cases that the source
// collapsed into a single row with Count > 1. Records are built once by the
// reconstructor and only read afterwards.
type CaseRecord struct {
	Region             string
	School             string
	DateReported       time.Time // midnight UTC, no time component
	DateReportedRaw    string    // text the date was parsed from
	LastDateOnCampus   string
	Count              int
	Source             string
	IsPublicSubmission bool
	ReportingPeriod    *string

	// Row is the 1-based source row the record came from.
	Row int
}

// CaseColumns returns the header for the case-level CSV export.
func CaseColumns() []string {
	return []string{
		"complex_area",
		"school",
		"date_reported_str",
		"date_reported",
		"last_date_on_campus",
		"count",
		"source",
		"Public Submission",
		"reporting_period",
	}
}

// CaseParquetRow is the columnar form of a CaseRecord written to cases.parquet.
type CaseParquetRow struct {
	Region             string  `parquet:"complex_area"`
	School             string  `parquet:"school"`
	DateReported       string  `parquet:"date_reported"`
	DateReportedRaw    string  `parquet:"date_reported_str"`
	LastDateOnCampus   string  `parquet:"last_date_on_campus"`
	Count              int64   `parquet:"count"`
	Source             string  `parquet:"source"`
	IsPublicSubmission bool    `parquet:"public_submission"`
	ReportingPeriod    *string `parquet:"reporting_period,optional"`
}
