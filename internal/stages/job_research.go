package stages

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonathan/interview-prep/internal/llm"
	"github.com/jonathan/interview-prep/internal/prompts"
	"github.com/jonathan/interview-prep/internal/types"
	"github.com/jonathan/interview-prep/schemas"
)

type linkedInInsights struct {
	CultureNotes []string `json:"cultureNotes"`
}

// JobResearch fetches the job posting and extracts JobDetails. Failure on the posting is
// fatal; a failed LinkedIn analysis only degrades the result.
func JobResearch(ctx context.Context, d Deps, inputs types.JobInputs) Result[types.JobDetails] {
	const stage = types.StageJobResearch
	var steps []types.ReasoningStep

	page, err := d.Pages.Page(ctx, inputs.JobURL)
	if err != nil {
		steps = append(steps, types.NewReasoningStep(stage, "Could not fetch the job posting: "+err.Error(), inputs.JobURL))
		return fatal[types.JobDetails](fmt.Errorf("failed to fetch job posting: %w", err), steps)
	}
	steps = append(steps, types.NewReasoningStep(stage,
		fmt.Sprintf("Fetched job posting (%s, %d characters)", page.Platform, len(page.Text)), inputs.JobURL))

	prompt := prompts.Render(prompts.KeyJobDetails, map[string]string{
		"JobURL":   inputs.JobURL,
		"PageText": Truncate(page.Text, maxPageRunes),
	})
	details, err := llm.Decode[types.JobDetails](ctx, d.Caller, llm.Request{
		Prompt: prompt,
		Tier:   llm.TierStandard,
		Schema: schemas.JobDetails,
	})
	if err != nil {
		steps = append(steps, types.NewReasoningStep(stage, "Could not extract job details: "+err.Error(), inputs.JobURL))
		return fatal[types.JobDetails](fmt.Errorf("failed to analyze job posting: %w", err), steps)
	}
	details.Company = strings.TrimSpace(details.Company)
	details.Title = strings.TrimSpace(details.Title)
	details.RequiredSkills = AppendUnique(nil, details.RequiredSkills...)
	steps = append(steps, types.NewReasoningStep(stage,
		fmt.Sprintf("Identified %s at %s with %d required skills", details.Title, details.Company, len(details.RequiredSkills)),
		inputs.JobURL))

	if inputs.LinkedInURL == "" {
		return succeeded(details, steps)
	}

	notes, err := analyzeLinkedIn(ctx, d, inputs.LinkedInURL, details.Company)
	if err != nil {
		d.log().Warnw("LinkedIn analysis failed", "url", inputs.LinkedInURL, "error", err)
		steps = append(steps, types.NewReasoningStep(stage,
			"LinkedIn analysis omitted, continuing with job posting data only: "+err.Error(), inputs.LinkedInURL))
		return degraded(details, err, steps)
	}
	details.CultureNotes = AppendUnique(details.CultureNotes, notes...)
	steps = append(steps, types.NewReasoningStep(stage,
		fmt.Sprintf("Added %d culture notes from LinkedIn", len(notes)), inputs.LinkedInURL))
	return succeeded(details, steps)
}

func analyzeLinkedIn(ctx context.Context, d Deps, url, company string) ([]string, error) {
	page, err := d.Pages.Page(ctx, url)
	if err != nil {
		return nil, err
	}
	insights, err := llm.Decode[linkedInInsights](ctx, d.Caller, llm.Request{
		Prompt: prompts.Render(prompts.KeyLinkedInInsights, map[string]string{
			"Company":  company,
			"PageText": Truncate(page.Text, maxPageRunes),
		}),
		Tier:   llm.TierStandard,
		Schema: schemas.LinkedInInsights,
	})
	if err != nil {
		return nil, err
	}
	return insights.CultureNotes, nil
}
