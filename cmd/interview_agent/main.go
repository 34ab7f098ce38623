// Package main provides the entry point for the interview preparation server and CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "interview_agent",
	Short: "Interview preparation guide generator",
	Long: `Interview Agent turns a job posting URL and a résumé into a structured interview
preparation guide: job and company research, candidate highlights, expected interview
rounds and evidence-backed practice questions.

Settings come from defaults, an optional --config file, environment variables and flags,
in increasing precedence.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to a YAML, JSON or TOML config file")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
