package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/jonathan/interview-prep/internal/fetch"
	"github.com/jonathan/interview-prep/internal/ingestion"
	"github.com/jonathan/interview-prep/internal/observability"
	"github.com/jonathan/interview-prep/internal/pipeline"
	"github.com/jonathan/interview-prep/internal/stages"
	"github.com/jonathan/interview-prep/internal/types"
	"github.com/spf13/cobra"
)

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Generate a preparation guide for one job in the foreground",
	Long: `Runs every pipeline stage for a local résumé file and a job posting URL, then writes
the finished guide as JSON to --out, or to stdout when --out is omitted.

When DATABASE_URL is set the guide is also stored and shows up in history.`,
	RunE: runPipelineCmd,
}

var (
	runResume      string
	runJobURL      string
	runLinkedInURL string
	runOut         string
	runVerbose     bool
)

func init() {
	runCommand.Flags().StringVarP(&runResume, "resume", "r", "", "Path to the résumé (.txt, .md, .pdf, .docx, .doc, .rtf, .odt)")
	runCommand.Flags().StringVarP(&runJobURL, "job-url", "j", "", "URL of the job posting")
	runCommand.Flags().StringVar(&runLinkedInURL, "linkedin-url", "", "LinkedIn profile URL (optional)")
	runCommand.Flags().StringVarP(&runOut, "out", "o", "", "Write the guide JSON to this file instead of stdout")
	runCommand.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "Print stage progress and a summary of the guide")
	runCommand.Flags().String("db-url", "", "PostgreSQL connection URL (optional)")
	runCommand.Flags().Bool("use-browser", false, "Render script-heavy pages in headless Chrome")
	rootCmd.AddCommand(runCommand)
}

func runPipelineCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd, map[string]string{
		"database_url": "db-url",
		"use_browser":  "use-browser",
	})
	if err != nil {
		return err
	}

	if runResume == "" {
		return fmt.Errorf("--resume is required")
	}
	if err := fetch.ValidateURL(runJobURL); err != nil {
		return fmt.Errorf("--job-url: %w", err)
	}
	if runLinkedInURL != "" {
		if err := fetch.ValidateURL(runLinkedInURL); err != nil {
			return fmt.Errorf("--linkedin-url: %w", err)
		}
	}

	resumeText, err := ingestion.ExtractResumeFile(runResume)
	if err != nil {
		return err
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx := cmd.Context()
	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.close()

	caller, closeCaller, err := newCaller(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeCaller()

	printer := observability.NewPrinter(cmd.ErrOrStderr())
	lastStage := types.StageJobResearch
	orch := pipeline.NewOrchestrator(
		stages.Deps{Caller: caller, Pages: newFetcher(cfg, log), Log: log},
		st.jobs,
		pipeline.WithLogger(log),
		pipeline.WithProgress(func(e pipeline.ProgressEvent) {
			if e.Stage != types.StageFailed {
				lastStage = e.Stage
			}
			if runVerbose {
				printer.PrintStage(e.Stage, e.Message)
			}
		}),
	)

	id := uuid.NewString()
	st.jobs.Create(id, types.JobInputs{JobURL: runJobURL, LinkedInURL: runLinkedInURL, ResumeText: resumeText}, "")

	if runErr := orch.Run(ctx, id); runErr != nil {
		printer.PrintFailure(lastStage, runErr.Error())
		return fmt.Errorf("pipeline failed: %w", runErr)
	}

	artifact, err := st.jobs.Artifact(ctx, id)
	if err != nil {
		return err
	}
	if runVerbose {
		printer.PrintArtifact(artifact)
	}
	return writeArtifact(cmd.OutOrStdout(), runOut, artifact)
}

// writeArtifact writes a as indented JSON to path, or to stdout when path is empty.
func writeArtifact(stdout io.Writer, path string, a *types.Artifact) error {
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode guide: %w", err)
	}
	data = append(data, '\n')

	if path == "" {
		_, err := stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
