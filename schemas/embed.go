// Package schemas embeds the JSON Schema documents that generated output is checked against.
package schemas

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

//go:embed *.schema.json
var files embed.FS

// Schema names, one per generated shape.
const (
	JobDetails          = "job_details"
	LinkedInInsights    = "linkedin_insights"
	ProfileAnalysis     = "profile_analysis"
	ProfileEnrichment   = "profile_enrichment"
	CandidateHighlights = "candidate_highlights"
	HighlightsRepair    = "highlights_repair"
	CompanyInfo         = "company_info"
	CompanyRepair       = "company_repair"
	InterviewRounds     = "interview_rounds"
	QuestionSet         = "question_set"
	TalkingPoints       = "talking_points"
	GradingResult       = "grading_result"
)

// Read returns the raw schema document for name.
func Read(name string) ([]byte, error) {
	data, err := files.ReadFile(name + ".schema.json")
	if err != nil {
		return nil, fmt.Errorf("schema %q not found: %w", name, err)
	}
	return data, nil
}

// Names lists every embedded schema, sorted.
func Names() []string {
	entries, err := fs.ReadDir(files, ".")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".schema.json"))
	}
	sort.Strings(names)
	return names
}
