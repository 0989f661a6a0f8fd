package model

// SchoolSummary aggregates every case reported for one school, joined with
// the school directory when the name is known there.
type SchoolSummary struct {
	Name             string
	CumulativeTotal  int
	CumulativePublic int
	CumulativeRecent int
	PreviousTwoWeeks int
	// TwoWeekChange is nil when PreviousTwoWeeks is zero.
	TwoWeekChange *float64

	// Directory fields; nil when the school is not in the directory.
	Latitude     *float64
	Longitude    *float64
	Identifier   *string
	Enrollment   *int
	TeacherCount *int
	AdminFTE     *float64
}

// Joined reports whether directory data was attached to the summary.
func (s *SchoolSummary) Joined() bool {
	return s.Latitude != nil || s.Longitude != nil || s.Identifier != nil ||
		s.Enrollment != nil || s.TeacherCount != nil || s.AdminFTE != nil
}

// SchoolColumns returns the header for the school-level CSV export.
func SchoolColumns() []string {
	return []string{
		"name",
		"cumulative_recent",
		"cumulative",
		"cumulative_public",
		"prev_two_weeks",
		"two_week_change",
		"lat",
		"long",
		"id",
		"enrollment",
		"teachers",
		"admin_fte",
	}
}

// SchoolDirectoryEntry is one row of the static school directory.
type SchoolDirectoryEntry struct {
	Name         string
	Longitude    *float64
	Latitude     *float64
	Identifier   *string
	Enrollment   *int
	TeacherCount *int
	AdminFTE     *float64
}

// RegionSummary holds case totals for one complex area.
type RegionSummary struct {
	Name        string    `json:"name"`
	TotalCases  int       `json:"total"`
	RecentCases int       `json:"recent_total"`
	BBox        []float64 `json:"bbox,omitempty"` // [minX, minY, maxX, maxY]
}
