package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/gyeh/schoolcases/internal/config"
)

var (
	cfg        config.Config
	layoutPath string
)

var rootCmd = &cobra.Command{
	Use:   "schoolcases",
	Short: "School COVID-19 case report builder",
	Long: "Reads the converted school case report spreadsheet, repairs its rows, " +
		"aggregates cases per school, complex area and day, and publishes the dashboard files.",
	SilenceUsage:      true,
	PersistentPreRunE: loadLayout,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfg.InputPath, "input", "", "Path to the case report (.xlsx or .csv)")
	pf.StringVar(&cfg.SchoolsPath, "schools", "", "Path to the school directory CSV")
	pf.StringVar(&cfg.SchoolsDSN, "schools-dsn", "", "Postgres connection string for the school directory (or set SCHOOLS_DSN)")
	pf.StringVar(&cfg.SchoolsTable, "schools-table", "", "Directory table (default ref.schools)")
	pf.StringVar(&layoutPath, "config", "", "YAML file describing the sheet layout")
	pf.BoolVar(&cfg.StrictSchools, "strict-schools", false, "Only merge wrapped names when the result is a known school")
	pf.StringVar(&cfg.LogFormat, "log-format", "text", "Log format: text or json")
	pf.StringVar(&cfg.LogLevel, "log-level", "info", "Log level: debug, info, warn, error")
}

// loadLayout applies environment fallbacks and the layout file before any
// subcommand runs.
func loadLayout(cmd *cobra.Command, args []string) error {
	envFallback(cmd, "schools-dsn", &cfg.SchoolsDSN, "SCHOOLS_DSN")
	envFallback(cmd, "bucket", &cfg.Bucket, "S3_BUCKET")
	envFallback(cmd, "s3-region", &cfg.Region, "S3_REGION")
	envFallback(cmd, "s3-endpoint", &cfg.Endpoint, "S3_ENDPOINT")
	cfg.AccessKey = os.Getenv("S3_ACCESS_KEY")
	cfg.SecretKey = os.Getenv("S3_SECRET_KEY")

	cfg.LayoutPath = layoutPath
	if layoutPath == "" {
		cfg.Layout = config.DefaultLayout()
		return nil
	}
	return cfg.LoadFromFile(layoutPath)
}

// envFallback fills dst from an environment variable when the flag was not
// given on the command line.
func envFallback(cmd *cobra.Command, flag string, dst *string, env string) {
	if f := cmd.Flags().Lookup(flag); f != nil && f.Changed {
		return
	}
	if v := os.Getenv(env); v != "" {
		*dst = v
	}
}
