// Package observability provides formatted output utilities for the verbose CLI run.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/interview-prep/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// truncate shortens s to n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// writeList appends up to limit items under heading, noting how many were left out.
func writeList(sb *strings.Builder, heading string, items []string, limit int) {
	if len(items) == 0 {
		return
	}
	sb.WriteString(heading + ":\n")
	for _, item := range items[:min(len(items), limit)] {
		sb.WriteString(fmt.Sprintf("  • %s\n", item))
	}
	if len(items) > limit {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(items)-limit))
	}
}

// PrintStage prints a one-line progress marker.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintStage(stage types.Stage, message string) {
	fmt.Fprintf(p.out, "▶ %-28s %s\n", stage, message)
}

// PrintJobDetails outputs the researched job posting.
func (p *Printer) PrintJobDetails(details *types.JobDetails) {
	if details == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Company:  %s\n", details.Company))
	sb.WriteString(fmt.Sprintf("Role:     %s\n", details.Title))
	if details.Location != "" {
		sb.WriteString(fmt.Sprintf("Location: %s\n", details.Location))
	}
	sb.WriteString("\n")
	writeList(&sb, "Required Skills", details.RequiredSkills, maxItemsToShow)

	p.printBox("JOB DETAILS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintHighlights outputs the candidate's strengths and gaps.
func (p *Printer) PrintHighlights(h *types.CandidateHighlights) {
	if h == nil || (len(h.RelevantPoints) == 0 && len(h.GapAreas) == 0) {
		return
	}

	points := make([]string, 0, len(h.RelevantPoints))
	for _, pt := range h.RelevantPoints {
		points = append(points, pt.Text)
	}

	var sb strings.Builder
	writeList(&sb, "Strengths", points, maxItemsToShow)
	if len(points) > 0 && len(h.GapAreas) > 0 {
		sb.WriteString("\n")
	}
	writeList(&sb, "Gaps", h.GapAreas, 3)

	p.printBox("CANDIDATE HIGHLIGHTS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintCompanyInfo outputs the researched company context.
func (p *Printer) PrintCompanyInfo(info *types.CompanyInfo) {
	if info == nil {
		return
	}

	var sb strings.Builder
	if info.Description != "" {
		sb.WriteString(info.Description + "\n\n")
	}
	writeList(&sb, "Culture", info.Culture, 3)
	writeList(&sb, "Team", info.TeamInfo, 3)

	p.printBox("COMPANY", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintRounds outputs each interview round with its first questions.
func (p *Printer) PrintRounds(rounds []types.InterviewRound) {
	if len(rounds) == 0 {
		return
	}

	var sb strings.Builder
	total := 0
	for _, r := range rounds {
		total += len(r.Questions)
	}
	sb.WriteString(fmt.Sprintf("%d rounds, %d questions\n\n", len(rounds), total))

	for i, r := range rounds {
		sb.WriteString(fmt.Sprintf("%d. %s", i+1, r.Name))
		if r.Format != "" {
			sb.WriteString(fmt.Sprintf(" (%s)", r.Format))
		}
		sb.WriteString("\n")
		for j, q := range r.Questions {
			if j == 3 {
				sb.WriteString(fmt.Sprintf("   ... and %d more\n", len(r.Questions)-3))
				break
			}
			sb.WriteString(fmt.Sprintf("   ? %s\n", q.Text))
		}
		if i < len(rounds)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("INTERVIEW ROUNDS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintArtifact outputs every section of a completed guide.
func (p *Printer) PrintArtifact(a *types.Artifact) {
	if a == nil {
		return
	}
	p.PrintJobDetails(&a.JobDetails)
	p.PrintCompanyInfo(&a.CompanyInfo)
	p.PrintHighlights(&a.CandidateHighlights)
	p.PrintRounds(a.InterviewRounds)
}

// PrintFailure outputs the error that ended a job.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintFailure(stage types.Stage, message string) {
	fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate("❌ FAILED at "+string(stage), boxWidth-4))
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(message, boxWidth-4))
	fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
}
