// Package export renders the aggregate snapshot into the flat files the
// dashboard reads. Rendering happens entirely in memory so that a failure
// leaves nothing half-written.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/gyeh/schoolcases/internal/assemble"
	"github.com/gyeh/schoolcases/internal/model"
)

// Artifact names.
const (
	CasesCSV     = "cases.csv"
	SchoolsCSV   = "schools.csv"
	RegionsJSON  = "complexareas.json"
	MetaJSON     = "meta.json"
	CasesParquet = "cases.parquet"
)

const (
	// LastUpdatedLayout formats the run stamp in meta.json.
	LastUpdatedLayout = "January 02, 2006"
	// SeriesDateLayout formats series dates; the dashboard groups by this text.
	SeriesDateLayout = "January 2, 2006"
	isoDate          = "2006-01-02"
)

var contentTypes = map[string]string{
	CasesCSV:     "text/csv",
	SchoolsCSV:   "text/csv",
	RegionsJSON:  "application/json",
	MetaJSON:     "application/json",
	CasesParquet: "application/vnd.apache.parquet",
}

// Names lists every artifact name in render order.
func Names() []string {
	return []string{CasesCSV, SchoolsCSV, RegionsJSON, MetaJSON, CasesParquet}
}

// ContentType returns the MIME type an artifact is served with.
func ContentType(name string) string {
	if ct, ok := contentTypes[name]; ok {
		return ct
	}
	return "application/octet-stream"
}

// Artifact is one rendered output file.
type Artifact struct {
	Name        string
	ContentType string
	Body        []byte
}

// Options controls which optional artifacts are rendered.
type Options struct {
	Parquet bool
}

// Render produces every artifact for out, in a fixed order.
func Render(out *assemble.Output, opts Options) ([]Artifact, error) {
	cases, err := RenderCases(out.Records)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", CasesCSV, err)
	}
	schools, err := RenderSchools(out.Schools)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", SchoolsCSV, err)
	}
	regions, err := RenderRegions(out.Regions)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", RegionsJSON, err)
	}
	meta, err := RenderMeta(out.Meta)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", MetaJSON, err)
	}

	artifacts := []Artifact{
		{Name: CasesCSV, ContentType: ContentType(CasesCSV), Body: cases},
		{Name: SchoolsCSV, ContentType: ContentType(SchoolsCSV), Body: schools},
		{Name: RegionsJSON, ContentType: ContentType(RegionsJSON), Body: regions},
		{Name: MetaJSON, ContentType: ContentType(MetaJSON), Body: meta},
	}

	if opts.Parquet {
		pq, err := RenderCasesParquet(out.Records)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", CasesParquet, err)
		}
		artifacts = append(artifacts, Artifact{Name: CasesParquet, ContentType: ContentType(CasesParquet), Body: pq})
	}
	return artifacts, nil
}

// RenderCases writes one CSV row per case record.
func RenderCases(records []model.CaseRecord) ([]byte, error) {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			r.Region,
			r.School,
			r.DateReportedRaw,
			r.DateReported.Format(isoDate),
			r.LastDateOnCampus,
			strconv.Itoa(r.Count),
			r.Source,
			flag(r.IsPublicSubmission),
			optString(r.ReportingPeriod),
		})
	}
	return writeCSV(model.CaseColumns(), rows)
}

// RenderSchools writes one CSV row per school summary. Absent values are
// written as empty cells.
func RenderSchools(schools []model.SchoolSummary) ([]byte, error) {
	rows := make([][]string, 0, len(schools))
	for _, s := range schools {
		rows = append(rows, []string{
			s.Name,
			strconv.Itoa(s.CumulativeRecent),
			strconv.Itoa(s.CumulativeTotal),
			strconv.Itoa(s.CumulativePublic),
			strconv.Itoa(s.PreviousTwoWeeks),
			optFloat(s.TwoWeekChange),
			optFloat(s.Latitude),
			optFloat(s.Longitude),
			optString(s.Identifier),
			optInt(s.Enrollment),
			optInt(s.TeacherCount),
			optFloat(s.AdminFTE),
		})
	}
	return writeCSV(model.SchoolColumns(), rows)
}

// RenderRegions writes the region totals as a JSON array.
func RenderRegions(regions []model.RegionSummary) ([]byte, error) {
	if regions == nil {
		regions = []model.RegionSummary{}
	}
	return json.Marshal(regions)
}

type metaDoc struct {
	LastUpdated         string                `json:"last_updated"`
	GrandTotal          int                   `json:"grand_total"`
	AllCasesByDate      []pointDoc            `json:"all_cases_by_date"`
	SchoolsLastTwoWeeks map[string][]pointDoc `json:"schools_last_2_weeks"`
}

type pointDoc struct {
	Date            string `json:"date"`
	DailyCount      int    `json:"daily_count"`
	CumulativeCount int    `json:"cumulative_count"`
	SevenDayAverage *int   `json:"seven_day_avg,omitempty"`
}

// RenderMeta writes the run metadata document. Map keys are emitted in
// sorted order, so identical input renders identical bytes.
func RenderMeta(meta model.RunMetadata) ([]byte, error) {
	doc := metaDoc{
		LastUpdated:         meta.LastUpdated.Format(LastUpdatedLayout),
		GrandTotal:          meta.GrandTotal,
		AllCasesByDate:      points(meta.AllCasesByDate),
		SchoolsLastTwoWeeks: make(map[string][]pointDoc, len(meta.SchoolsLastTwoWeeks)),
	}
	for name, series := range meta.SchoolsLastTwoWeeks {
		doc.SchoolsLastTwoWeeks[name] = points(series)
	}
	return json.Marshal(doc)
}

// RenderCasesParquet writes the case records in columnar form.
func RenderCasesParquet(records []model.CaseRecord) ([]byte, error) {
	rows := make([]model.CaseParquetRow, len(records))
	for i, r := range records {
		rows[i] = model.CaseParquetRow{
			Region:             r.Region,
			School:             r.School,
			DateReported:       r.DateReported.Format(isoDate),
			DateReportedRaw:    r.DateReportedRaw,
			LastDateOnCampus:   r.LastDateOnCampus,
			Count:              int64(r.Count),
			Source:             r.Source,
			IsPublicSubmission: r.IsPublicSubmission,
			ReportingPeriod:    r.ReportingPeriod,
		}
	}
	var buf bytes.Buffer
	if err := parquet.Write(&buf, rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func points(series []model.DailyPoint) []pointDoc {
	out := make([]pointDoc, len(series))
	for i, p := range series {
		out[i] = pointDoc{
			Date:            FormatSeriesDate(p.Date),
			DailyCount:      p.DailyCount,
			CumulativeCount: p.CumulativeCount,
			SevenDayAverage: p.SevenDayAverage,
		}
	}
	return out
}

// FormatSeriesDate formats a series date the way the dashboard keys it.
func FormatSeriesDate(d time.Time) string {
	return d.Format(SeriesDateLayout)
}

func writeCSV(header []string, rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, err
	}
	if err := w.WriteAll(rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func optString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func optInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func optFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// flag spells a boolean the way spreadsheet readers expect it.
func flag(b bool) string {
	if b {
		return "TRUE"
	}
	return "FALSE"
}
