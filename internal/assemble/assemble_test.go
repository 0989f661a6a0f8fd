package assemble

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"

	"github.com/gyeh/schoolcases/internal/model"
	"github.com/gyeh/schoolcases/internal/refdata"
)

func day(m time.Month, d int) time.Time {
	return time.Date(2021, m, d, 0, 0, 0, 0, time.UTC)
}

func rec(region, school string, date time.Time, count int) model.CaseRecord {
	return model.CaseRecord{
		Region:           region,
		School:           school,
		DateReported:     date,
		LastDateOnCampus: model.UnspecifiedLastDate,
		Count:            count,
	}
}

func floatPtr(v float64) *float64 { return &v }

func run(t *testing.T, in Input) *Output {
	t.Helper()
	if in.Epoch.IsZero() {
		in.Epoch = day(time.July, 28)
	}
	out, err := Assemble(in, zerolog.Nop())
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	return out
}

func findSchool(t *testing.T, out *Output, name string) model.SchoolSummary {
	t.Helper()
	for _, s := range out.Schools {
		if s.Name == name {
			return s
		}
	}
	t.Fatalf("no summary for %q", name)
	return model.SchoolSummary{}
}

func TestAssemble_NoRecords(t *testing.T) {
	_, err := Assemble(Input{}, zerolog.Nop())
	if !errors.Is(err, ErrNoRecords) {
		t.Fatalf("err = %v, want ErrNoRecords", err)
	}
}

func TestAssemble_SortsStablyByDate(t *testing.T) {
	in := []model.CaseRecord{
		rec("A", "Later", day(time.September, 3), 1),
		rec("A", "First", day(time.September, 1), 1),
		rec("A", "Second", day(time.September, 1), 1),
	}
	out := run(t, Input{Records: in})

	var got []string
	for _, r := range out.Records {
		got = append(got, r.School)
	}
	if diff := cmp.Diff([]string{"First", "Second", "Later"}, got); diff != "" {
		t.Errorf("record order (-want +got):\n%s", diff)
	}
	if in[0].School != "Later" {
		t.Error("input slice was reordered")
	}
	if !out.LatestDate.Equal(day(time.September, 3)) {
		t.Errorf("LatestDate = %s", out.LatestDate)
	}
}

func TestAssemble_GrandTotalConservation(t *testing.T) {
	out := run(t, Input{Records: []model.CaseRecord{
		rec("A", "Alpha", day(time.August, 2), 3),
		rec("A", "Beta", day(time.August, 20), 1),
		rec("B", "Alpha", day(time.September, 1), 2),
	}})

	if out.Meta.GrandTotal != 6 {
		t.Errorf("GrandTotal = %d, want 6", out.Meta.GrandTotal)
	}
	sum := 0
	for _, s := range out.Schools {
		sum += s.CumulativeTotal
	}
	if sum != out.Meta.GrandTotal {
		t.Errorf("sum of school totals = %d, grand total = %d", sum, out.Meta.GrandTotal)
	}
	series := out.Meta.AllCasesByDate
	if last := series[len(series)-1]; last.CumulativeCount != 6 {
		t.Errorf("final cumulative = %d, want 6", last.CumulativeCount)
	}
	if !series[0].Date.Equal(day(time.July, 28)) {
		t.Errorf("system series starts %s, want epoch", series[0].Date)
	}
}

func TestAssemble_CasesBeforeEpochSeedCumulative(t *testing.T) {
	out := run(t, Input{Records: []model.CaseRecord{
		rec("A", "Alpha", day(time.July, 1), 4),
		rec("A", "Alpha", day(time.August, 1), 1),
	}})
	first := out.Meta.AllCasesByDate[0]
	if first.CumulativeCount != 4 || first.DailyCount != 0 {
		t.Errorf("first point = %+v, want cumulative 4 daily 0", first)
	}
}

func TestAssemble_ForwardFilledRowsAggregate(t *testing.T) {
	// Three cases reported on one date for one school across two rows.
	out := run(t, Input{Records: []model.CaseRecord{
		rec("Region1", "Lincoln High", day(time.September, 1), 2),
		rec("Region1", "Lincoln High", day(time.September, 1), 1),
	}})
	s := findSchool(t, out, "Lincoln High")
	if s.CumulativeTotal != 3 {
		t.Errorf("CumulativeTotal = %d, want 3", s.CumulativeTotal)
	}
}

func TestAssemble_Windows(t *testing.T) {
	latest := day(time.October, 31)
	out := run(t, Input{Records: []model.CaseRecord{
		rec("A", "Alpha", latest, 2),                    // recent
		rec("A", "Alpha", latest.AddDate(0, 0, -14), 1), // recent, window edge
		rec("A", "Alpha", latest.AddDate(0, 0, -15), 1), // previous
		rec("A", "Alpha", latest.AddDate(0, 0, -28), 1), // previous, window edge
		rec("A", "Alpha", latest.AddDate(0, 0, -29), 5), // neither
	}})
	s := findSchool(t, out, "Alpha")
	if s.CumulativeRecent != 3 || s.PreviousTwoWeeks != 2 {
		t.Errorf("recent=%d previous=%d, want 3 and 2", s.CumulativeRecent, s.PreviousTwoWeeks)
	}
	if diff := cmp.Diff(floatPtr(0.5), s.TwoWeekChange); diff != "" {
		t.Errorf("TwoWeekChange (-want +got):\n%s", diff)
	}
	if s.CumulativeTotal != 10 {
		t.Errorf("CumulativeTotal = %d, want 10", s.CumulativeTotal)
	}
}

func TestAssemble_ChangeAbsentWithoutPrevious(t *testing.T) {
	out := run(t, Input{Records: []model.CaseRecord{
		rec("A", "Alpha", day(time.October, 31), 2),
	}})
	if s := findSchool(t, out, "Alpha"); s.TwoWeekChange != nil {
		t.Errorf("TwoWeekChange = %v, want nil", *s.TwoWeekChange)
	}
}

func TestChangeRatio(t *testing.T) {
	tests := []struct {
		recent, previous int
		want             *float64
	}{
		{3, 2, floatPtr(0.5)},
		{0, 4, floatPtr(-1)},
		{5, 0, nil},
		{0, 0, nil},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, ChangeRatio(tt.recent, tt.previous)); diff != "" {
			t.Errorf("ChangeRatio(%d, %d) (-want +got):\n%s", tt.recent, tt.previous, diff)
		}
	}
}

func TestAssemble_TrailingSeries(t *testing.T) {
	latest := day(time.October, 31)
	out := run(t, Input{Records: []model.CaseRecord{
		rec("A", "Alpha", latest.AddDate(0, 0, -20), 4),
		rec("A", "Alpha", latest.AddDate(0, 0, -3), 1),
		rec("A", "Beta", latest, 1),
	}})

	alpha := out.Meta.SchoolsLastTwoWeeks["Alpha"]
	if len(alpha) != 15 {
		t.Fatalf("trailing series has %d points, want 15", len(alpha))
	}
	if !alpha[0].Date.Equal(latest.AddDate(0, 0, -14)) || !alpha[14].Date.Equal(latest) {
		t.Errorf("series spans %s..%s", alpha[0].Date, alpha[14].Date)
	}
	if alpha[0].CumulativeCount != 4 {
		t.Errorf("first cumulative = %d, want 4 from cases before the window", alpha[0].CumulativeCount)
	}
	if alpha[14].CumulativeCount != 5 {
		t.Errorf("last cumulative = %d, want 5", alpha[14].CumulativeCount)
	}
}

func TestAssemble_DirectorySchoolsIncluded(t *testing.T) {
	lat, lon := 21.3, -157.8
	dir := refdata.NewDirectory([]model.SchoolDirectoryEntry{
		{Name: "Quiet Elementary", Latitude: &lat, Longitude: &lon},
	})
	out := run(t, Input{
		Records:   []model.CaseRecord{rec("A", "Busy High", day(time.September, 1), 1)},
		Directory: dir,
	})

	var names []string
	for _, s := range out.Schools {
		names = append(names, s.Name)
	}
	if diff := cmp.Diff([]string{"Busy High", "Quiet Elementary"}, names); diff != "" {
		t.Errorf("school names (-want +got):\n%s", diff)
	}

	quiet := findSchool(t, out, "Quiet Elementary")
	if quiet.CumulativeTotal != 0 || quiet.Latitude == nil || *quiet.Latitude != lat {
		t.Errorf("quiet school = %+v", quiet)
	}
	if _, ok := out.Meta.SchoolsLastTwoWeeks["Quiet Elementary"]; ok {
		t.Error("school without cases has a trailing series")
	}

	if len(out.Warnings) != 1 {
		t.Fatalf("got %d warnings, want 1", len(out.Warnings))
	}
	var uw *refdata.UnmatchedSchoolWarning
	if !errors.As(out.Warnings[0], &uw) || uw.School != "Busy High" {
		t.Errorf("warning = %v", out.Warnings[0])
	}
}

func TestAssemble_PublicSubmissions(t *testing.T) {
	pub := rec("A", "Alpha", day(time.September, 1), 2)
	pub.IsPublicSubmission = true
	out := run(t, Input{Records: []model.CaseRecord{
		pub,
		rec("A", "Alpha", day(time.September, 2), 1),
	}})
	if s := findSchool(t, out, "Alpha"); s.CumulativePublic != 2 {
		t.Errorf("CumulativePublic = %d, want 2", s.CumulativePublic)
	}
}

func TestAssemble_Regions(t *testing.T) {
	latest := day(time.October, 31)
	out := run(t, Input{
		Records: []model.CaseRecord{
			rec("Kailua-Kalaheo", "Alpha", latest, 2),
			rec("KAILUA-KALAHEO", "Beta", latest.AddDate(0, 0, -30), 3),
			rec("Farrington-Kaiser-Kalani", "Gamma", latest, 1),
		},
		Regions: []string{"Kailua-Kalaheo", "Nanakuli-Waianae"},
		Extents: map[string][]float64{"Kailua-Kalaheo": {-157.9, 21.3, -157.7, 21.6}},
	})

	want := []model.RegionSummary{
		{Name: "Kailua-Kalaheo", TotalCases: 5, RecentCases: 2, BBox: []float64{-157.9, 21.3, -157.7, 21.6}},
		{Name: "Nanakuli-Waianae"},
	}
	if diff := cmp.Diff(want, out.Regions); diff != "" {
		t.Errorf("regions (-want +got):\n%s", diff)
	}
}

func TestAssemble_Idempotent(t *testing.T) {
	in := Input{
		Records: []model.CaseRecord{
			rec("A", "Alpha", day(time.September, 1), 1),
			rec("B", "Beta", day(time.September, 5), 2),
		},
		Regions:     []string{"A", "B"},
		LastUpdated: day(time.November, 1),
	}
	first := run(t, in)
	second := run(t, in)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("repeated runs differ (-first +second):\n%s", diff)
	}
}
