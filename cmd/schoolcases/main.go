package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/gyeh/schoolcases/internal/exitcode"
)

func main() {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitcode.UsageError)
	}
}
