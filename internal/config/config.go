package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultKeyPrefix is the object key prefix artifacts are published under.
const DefaultKeyPrefix = "doe_cases/"

// DefaultSource is the public dashboard the case report is exported from.
const DefaultSource = "https://public.tableau.com/app/profile/hidoe.dga/viz/COVID-19HIDOECaseCountPublicDashboard/List"

// Config holds all runtime configuration for a schoolcases run.
type Config struct {
	InputPath     string
	SchoolsPath   string // school directory CSV
	SchoolsDSN    string // optional Postgres source for the directory
	SchoolsTable  string
	BoundaryPath  string // complex area GeoJSON
	OutputDir     string
	LayoutPath    string
	LogFormat     string // "text" or "json"
	LogLevel      string
	WriteParquet  bool
	StrictSchools bool // restrict continuation merges using directory names

	Bucket    string
	Region    string
	Endpoint  string // S3-compatible endpoint; empty for AWS
	KeyPrefix string
	AccessKey string
	SecretKey string

	Layout Layout
}

// Columns holds 1-based column positions in the case sheet. Zero means the
// column is not present in this revision of the export.
type Columns struct {
	Region           int `yaml:"region"`
	School           int `yaml:"school"`
	DateReported     int `yaml:"date_reported"`
	LastDateOnCampus int `yaml:"last_date_on_campus"`
	Marker           int `yaml:"marker"`
	Count            int `yaml:"count"`
	PublicSubmission int `yaml:"public_submission"`
	ReportingPeriod  int `yaml:"reporting_period"`
}

// Layout describes the shape of the case sheet and the aggregation windows.
type Layout struct {
	Sheet            string  `yaml:"sheet"`
	FirstRow         int     `yaml:"first_row"`
	Columns          Columns `yaml:"columns"`
	Source           string  `yaml:"source"`
	Epoch            string  `yaml:"epoch"`
	RecentWindowDays int     `yaml:"recent_window_days"`
	RegionProperty   string  `yaml:"region_property"`
}

// DefaultLayout matches the six-column export used since the 2021-22 school year.
func DefaultLayout() Layout {
	return Layout{
		FirstRow: 1,
		Columns: Columns{
			Region:           1,
			School:           2,
			DateReported:     3,
			LastDateOnCampus: 4,
			Marker:           5,
			Count:            6,
		},
		Source:           DefaultSource,
		Epoch:            "2021-07-28",
		RecentWindowDays: 14,
		RegionProperty:   "complex_area",
	}
}

// EpochDate returns the parsed start date of the system-wide series.
func (l Layout) EpochDate() (time.Time, error) {
	t, err := time.Parse("2006-01-02", l.Epoch)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid epoch %q: %w", l.Epoch, err)
	}
	return t, nil
}

// LoadFromFile reads a YAML layout file and merges it over the defaults.
func (c *Config) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	layout := DefaultLayout()
	if err := yaml.Unmarshal(data, &layout); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	if err := layout.validate(); err != nil {
		return err
	}
	c.Layout = layout
	return nil
}

func (l Layout) validate() error {
	if l.FirstRow < 1 {
		return fmt.Errorf("first_row must be >= 1, got %d", l.FirstRow)
	}
	required := map[string]int{
		"region":        l.Columns.Region,
		"school":        l.Columns.School,
		"date_reported": l.Columns.DateReported,
		"count":         l.Columns.Count,
	}
	for name, col := range required {
		if col < 1 {
			return fmt.Errorf("column %s is required", name)
		}
	}
	optional := []int{
		l.Columns.LastDateOnCampus, l.Columns.Marker,
		l.Columns.PublicSubmission, l.Columns.ReportingPeriod,
	}
	for _, col := range optional {
		if col < 0 {
			return fmt.Errorf("column positions must not be negative")
		}
	}
	if l.RecentWindowDays < 1 {
		return fmt.Errorf("recent_window_days must be >= 1, got %d", l.RecentWindowDays)
	}
	if _, err := l.EpochDate(); err != nil {
		return err
	}
	return nil
}

// Validate checks required fields and returns an error if the config is invalid.
func (c *Config) Validate() error {
	if c.InputPath == "" {
		return fmt.Errorf("--input is required")
	}
	if _, err := os.Stat(c.InputPath); err != nil {
		return fmt.Errorf("input not accessible: %w", err)
	}
	if c.SchoolsPath == "" && c.SchoolsDSN == "" {
		return fmt.Errorf("--schools or --schools-dsn is required")
	}
	if c.Layout.Columns == (Columns{}) {
		c.Layout = DefaultLayout()
	}
	return c.Layout.validate()
}

// ValidateForBuild additionally checks the output settings.
func (c *Config) ValidateForBuild() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.BoundaryPath == "" {
		return fmt.Errorf("--boundaries is required")
	}
	if c.OutputDir == "" && c.Bucket == "" {
		return fmt.Errorf("--out or --bucket is required")
	}
	return nil
}

// ValidateForPublish checks the blob store settings.
func (c *Config) ValidateForPublish() error {
	if c.Bucket == "" {
		return fmt.Errorf("--bucket or S3_BUCKET is required")
	}
	if c.Region == "" {
		return fmt.Errorf("--s3-region or S3_REGION is required")
	}
	return nil
}
