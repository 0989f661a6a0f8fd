// Package series builds dense daily case series over a date range.
package series

import (
	"time"

	"github.com/gyeh/schoolcases/internal/model"
	"github.com/gyeh/schoolcases/internal/normalize"
)

// AverageWindow is the number of days in the trailing average.
const AverageWindow = 7

// DatedCount is one dated contribution to a series.
type DatedCount struct {
	Date  time.Time
	Count int
}

// FromRecords projects case records onto their dated counts.
func FromRecords(records []model.CaseRecord) []DatedCount {
	out := make([]DatedCount, len(records))
	for i, r := range records {
		out[i] = DatedCount{Date: r.DateReported, Count: r.Count}
	}
	return out
}

// Build returns one point per calendar day in [minDate, maxDate]. Counts
// dated outside the range are ignored; initial is the cumulative count
// accrued before minDate. An inverted range yields an empty series.
func Build(counts []DatedCount, minDate, maxDate time.Time, initial int) []model.DailyPoint {
	minDate, maxDate = normalize.DateOf(minDate), normalize.DateOf(maxDate)
	if maxDate.Before(minDate) {
		return []model.DailyPoint{}
	}

	byDate := make(map[time.Time]int, len(counts))
	for _, c := range counts {
		byDate[normalize.DateOf(c.Date)] += c.Count
	}

	days := normalize.DaysBetween(minDate, maxDate) + 1
	points := make([]model.DailyPoint, 0, days)
	cumulative := initial
	window := 0
	for i := 0; i < days; i++ {
		d := minDate.AddDate(0, 0, i)
		daily := byDate[d]
		cumulative += daily

		window += daily
		if i >= AverageWindow {
			window -= points[i-AverageWindow].DailyCount
		}

		p := model.DailyPoint{Date: d, DailyCount: daily, CumulativeCount: cumulative}
		if i >= AverageWindow-1 {
			avg := normalize.RoundHalfUp(float64(window) / AverageWindow)
			p.SevenDayAverage = &avg
		}
		points = append(points, p)
	}
	return points
}

// Sum adds the counts dated in [from, to].
func Sum(counts []DatedCount, from, to time.Time) int {
	from, to = normalize.DateOf(from), normalize.DateOf(to)
	total := 0
	for _, c := range counts {
		d := normalize.DateOf(c.Date)
		if !d.Before(from) && !d.After(to) {
			total += c.Count
		}
	}
	return total
}

// SumBefore adds the counts dated strictly before d.
func SumBefore(counts []DatedCount, d time.Time) int {
	d = normalize.DateOf(d)
	total := 0
	for _, c := range counts {
		if normalize.DateOf(c.Date).Before(d) {
			total += c.Count
		}
	}
	return total
}
