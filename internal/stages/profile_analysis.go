package stages

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jonathan/interview-prep/internal/llm"
	"github.com/jonathan/interview-prep/internal/prompts"
	"github.com/jonathan/interview-prep/internal/types"
	"github.com/jonathan/interview-prep/schemas"
)

// ErrEmptyResume is returned when there is no résumé text to analyze.
var ErrEmptyResume = errors.New("résumé text is empty")

type profileEnrichment struct {
	Skills   []string `json:"skills"`
	Evidence []string `json:"evidence"`
}

// ProfileAnalysis breaks the résumé into experiences, skills and verbatim evidence.
func ProfileAnalysis(ctx context.Context, d Deps, resumeText, linkedInURL string) Result[types.ProfileAnalysis] {
	const stage = types.StageProfileAnalysis
	var steps []types.ReasoningStep

	if strings.TrimSpace(resumeText) == "" {
		steps = append(steps, types.NewReasoningStep(stage, "No résumé text to analyze"))
		return fatal[types.ProfileAnalysis](ErrEmptyResume, steps)
	}

	profile, err := llm.Decode[types.ProfileAnalysis](ctx, d.Caller, llm.Request{
		Prompt: prompts.Render(prompts.KeyProfileAnalysis, map[string]string{
			"ResumeText": Truncate(resumeText, maxResumeRunes),
		}),
		Tier:   llm.TierStandard,
		Schema: schemas.ProfileAnalysis,
	})
	if err != nil {
		steps = append(steps, types.NewReasoningStep(stage, "Could not analyze the résumé: "+err.Error()))
		return fatal[types.ProfileAnalysis](fmt.Errorf("failed to analyze résumé: %w", err), steps)
	}
	profile.Skills = AppendUnique(nil, profile.Skills...)
	steps = append(steps, types.NewReasoningStep(stage,
		fmt.Sprintf("Analyzed %d experiences and %d skills with %d evidence excerpts",
			len(profile.Experiences), len(profile.Skills), len(profile.AllEvidence())),
		"résumé"))

	if linkedInURL == "" {
		return succeeded(profile, steps)
	}

	enrichment, err := enrichFromLinkedIn(ctx, d, linkedInURL, profile.Summary)
	if err != nil {
		d.log().Warnw("LinkedIn profile enrichment failed", "url", linkedInURL, "error", err)
		steps = append(steps, types.NewReasoningStep(stage,
			"LinkedIn enrichment omitted, continuing with résumé data only: "+err.Error(), linkedInURL))
		return degraded(profile, err, steps)
	}
	profile.Skills = AppendUnique(profile.Skills, enrichment.Skills...)
	profile.Evidence = AppendUnique(profile.Evidence, enrichment.Evidence...)
	steps = append(steps, types.NewReasoningStep(stage,
		fmt.Sprintf("Added %d skills and %d evidence excerpts from LinkedIn", len(enrichment.Skills), len(enrichment.Evidence)),
		linkedInURL))
	return succeeded(profile, steps)
}

func enrichFromLinkedIn(ctx context.Context, d Deps, url, summary string) (profileEnrichment, error) {
	page, err := d.Pages.Page(ctx, url)
	if err != nil {
		return profileEnrichment{}, err
	}
	return llm.Decode[profileEnrichment](ctx, d.Caller, llm.Request{
		Prompt: prompts.Render(prompts.KeyProfileEnrichment, map[string]string{
			"Summary":  summary,
			"PageText": Truncate(page.Text, maxPageRunes),
		}),
		Tier:   llm.TierStandard,
		Schema: schemas.ProfileEnrichment,
	})
}
