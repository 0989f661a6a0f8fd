// Package assemble builds the per-school, per-region and system-wide
// aggregates from reconstructed case records.
package assemble

import (
	"errors"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/gyeh/schoolcases/internal/model"
	"github.com/gyeh/schoolcases/internal/normalize"
	"github.com/gyeh/schoolcases/internal/refdata"
	"github.com/gyeh/schoolcases/internal/series"
)

// ErrNoRecords is returned when there is nothing to aggregate.
var ErrNoRecords = errors.New("no case records to aggregate")

// Input is everything one aggregation pass reads.
type Input struct {
	Records          []model.CaseRecord
	Directory        *refdata.Directory
	Regions          []string
	Extents          map[string][]float64 // region bounding boxes by name
	Epoch            time.Time
	RecentWindowDays int
	LastUpdated      time.Time
}

// Output is the complete, internally consistent aggregate snapshot.
type Output struct {
	Records    []model.CaseRecord // ascending by date reported
	Schools    []model.SchoolSummary
	Regions    []model.RegionSummary
	Meta       model.RunMetadata
	LatestDate time.Time
	Warnings   []error
}

// Windows are the recent and previous periods ending at the latest case
// date. A record is recent when it is at most Days days older than Latest.
type Windows struct {
	Latest time.Time
	Days   int
}

// RecentFrom is the first day of the recent window.
func (w Windows) RecentFrom() time.Time { return w.Latest.AddDate(0, 0, -w.Days) }

// PreviousFrom is the first day of the previous window.
func (w Windows) PreviousFrom() time.Time { return w.Latest.AddDate(0, 0, -2*w.Days) }

// PreviousTo is the last day of the previous window.
func (w Windows) PreviousTo() time.Time { return w.RecentFrom().AddDate(0, 0, -1) }

// Assemble runs the aggregation. It never mutates in.Records.
func Assemble(in Input, log zerolog.Logger) (*Output, error) {
	if len(in.Records) == 0 {
		return nil, ErrNoRecords
	}
	if in.RecentWindowDays < 1 {
		in.RecentWindowDays = 14
	}
	dir := in.Directory
	if dir == nil {
		dir = refdata.NewDirectory(nil)
	}

	records := append([]model.CaseRecord(nil), in.Records...)
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].DateReported.Before(records[j].DateReported)
	})

	latest := records[len(records)-1].DateReported
	w := Windows{Latest: latest, Days: in.RecentWindowDays}
	all := series.FromRecords(records)

	grandTotal := 0
	for _, r := range records {
		grandTotal += r.Count
	}

	epoch := normalize.DateOf(in.Epoch)
	out := &Output{
		Records:    records,
		LatestDate: latest,
		Meta: model.RunMetadata{
			LastUpdated:         in.LastUpdated,
			GrandTotal:          grandTotal,
			AllCasesByDate:      series.Build(all, epoch, latest, series.SumBefore(all, epoch)),
			SchoolsLastTwoWeeks: make(map[string][]model.DailyPoint),
		},
	}

	acc := accumulate(records)
	for _, name := range schoolNames(acc, dir) {
		summary, trailing := summarizeSchool(name, acc[name], w)
		out.Schools = append(out.Schools, summary)
		if trailing != nil {
			out.Meta.SchoolsLastTwoWeeks[name] = trailing
		}
	}
	out.Warnings = append(out.Warnings, refdata.Join(out.Schools, dir, log)...)

	out.Regions = summarizeRegions(in.Regions, in.Extents, records, w)

	log.Info().
		Int("records", len(records)).
		Int("grand_total", grandTotal).
		Str("latest_date", latest.Format("2006-01-02")).
		Int("schools", len(out.Schools)).
		Int("regions", len(out.Regions)).
		Msg("aggregation complete")

	return out, nil
}

// schoolCases is the per-school fold over the record set.
type schoolCases struct {
	counts []series.DatedCount
	total  int
	public int
}

func accumulate(records []model.CaseRecord) map[string]*schoolCases {
	acc := make(map[string]*schoolCases)
	for _, r := range records {
		if r.School == "" {
			continue
		}
		sc, ok := acc[r.School]
		if !ok {
			sc = &schoolCases{}
			acc[r.School] = sc
		}
		sc.counts = append(sc.counts, series.DatedCount{Date: r.DateReported, Count: r.Count})
		sc.total += r.Count
		if r.IsPublicSubmission {
			sc.public += r.Count
		}
	}
	return acc
}

// schoolNames is the sorted union of names with cases and directory names.
func schoolNames(acc map[string]*schoolCases, dir *refdata.Directory) []string {
	seen := make(map[string]bool, len(acc)+dir.Len())
	var names []string
	for name := range acc {
		seen[name] = true
		names = append(names, name)
	}
	for _, name := range dir.Names() {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// summarizeSchool computes one school's totals. The trailing series is nil
// for a school with no cases.
func summarizeSchool(name string, sc *schoolCases, w Windows) (model.SchoolSummary, []model.DailyPoint) {
	s := model.SchoolSummary{Name: name}
	if sc == nil {
		return s, nil
	}
	s.CumulativeTotal = sc.total
	s.CumulativePublic = sc.public
	s.CumulativeRecent = series.Sum(sc.counts, w.RecentFrom(), w.Latest)
	s.PreviousTwoWeeks = series.Sum(sc.counts, w.PreviousFrom(), w.PreviousTo())
	s.TwoWeekChange = ChangeRatio(s.CumulativeRecent, s.PreviousTwoWeeks)

	trailing := series.Build(sc.counts, w.RecentFrom(), w.Latest, series.SumBefore(sc.counts, w.RecentFrom()))
	return s, trailing
}

// ChangeRatio returns (recent-previous)/previous, or nil when previous is 0.
func ChangeRatio(recent, previous int) *float64 {
	if previous == 0 {
		return nil
	}
	r := float64(recent-previous) / float64(previous)
	return &r
}

func summarizeRegions(names []string, extents map[string][]float64, records []model.CaseRecord, w Windows) []model.RegionSummary {
	type totals struct{ total, recent int }
	byKey := make(map[string]*totals)
	from := w.RecentFrom()
	for _, r := range records {
		key := normalize.RegionKey(r.Region)
		t, ok := byKey[key]
		if !ok {
			t = &totals{}
			byKey[key] = t
		}
		t.total += r.Count
		if !r.DateReported.Before(from) && !r.DateReported.After(w.Latest) {
			t.recent += r.Count
		}
	}

	out := make([]model.RegionSummary, 0, len(names))
	for _, name := range names {
		rs := model.RegionSummary{Name: name, BBox: extents[name]}
		if t, ok := byKey[normalize.RegionKey(name)]; ok {
			rs.TotalCases = t.total
			rs.RecentCases = t.recent
		}
		out = append(out, rs)
	}
	return out
}
