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

const maxFallbackItems = 5

// HighlightGeneration compares the candidate to the job. It never fails: a generation
// failure yields a fallback built from profile evidence, and thin output is left for the reviewer.
func HighlightGeneration(ctx context.Context, d Deps, resumeText string, job types.JobDetails, profile types.ProfileAnalysis) Result[types.CandidateHighlights] {
	const stage = types.StageHighlightGeneration
	var steps []types.ReasoningStep

	highlights, err := llm.Decode[types.CandidateHighlights](ctx, d.Caller, llm.Request{
		Prompt: prompts.Render(prompts.KeyCandidateHighlights, map[string]string{
			"JobDetails": ToJSON(job),
			"Profile":    ToJSON(profile),
			"ResumeText": Truncate(resumeText, maxResumeRunes),
		}),
		Tier:   llm.TierStandard,
		Schema: schemas.CandidateHighlights,
	})
	if err != nil {
		fallback := FallbackHighlights(resumeText, job, profile)
		steps = append(steps, types.NewReasoningStep(stage, fmt.Sprintf(
			"Highlight generation failed (%v); derived %d strengths from résumé evidence and %d gaps from unmatched required skills",
			err, len(fallback.RelevantPoints), len(fallback.GapAreas)), "résumé"))
		return degraded(fallback, err, steps)
	}

	highlights.RelevantPoints = dedupePoints(highlights.RelevantPoints)
	highlights.GapAreas = AppendUnique(nil, highlights.GapAreas...)
	if len(highlights.RelevantPoints) < 1 || len(highlights.GapAreas) < 1 {
		steps = append(steps, types.NewReasoningStep(stage, fmt.Sprintf(
			"Generated only %d strengths and %d gaps; left for quality review",
			len(highlights.RelevantPoints), len(highlights.GapAreas))))
		return degraded(highlights, nil, steps)
	}

	steps = append(steps, types.NewReasoningStep(stage, fmt.Sprintf(
		"Identified %d strengths and %d gap areas", len(highlights.RelevantPoints), len(highlights.GapAreas)), "résumé"))
	return succeeded(highlights, steps)
}

// FallbackHighlights builds highlights without the model: relevant points are profile
// evidence excerpts and gap areas are required skills the résumé never mentions.
func FallbackHighlights(resumeText string, job types.JobDetails, profile types.ProfileAnalysis) types.CandidateHighlights {
	h := types.CandidateHighlights{
		RelevantPoints: []types.HighlightPoint{},
		GapAreas:       []string{},
	}

	evidence := profile.AllEvidence()
	if len(evidence) == 0 {
		for _, exp := range profile.Experiences {
			evidence = append(evidence, exp.Achievements...)
		}
	}
	for _, e := range evidence {
		if len(h.RelevantPoints) == maxFallbackItems {
			break
		}
		h.RelevantPoints = append(h.RelevantPoints, types.HighlightPoint{Text: e, Evidence: e})
	}

	lower := strings.ToLower(resumeText)
	for _, skill := range job.RequiredSkills {
		if len(h.GapAreas) == maxFallbackItems {
			break
		}
		if s := strings.TrimSpace(skill); s != "" && !strings.Contains(lower, strings.ToLower(s)) {
			h.GapAreas = AppendUnique(h.GapAreas, "Limited demonstrated experience with "+s)
		}
	}
	return h
}

func dedupePoints(points []types.HighlightPoint) []types.HighlightPoint {
	out := make([]types.HighlightPoint, 0, len(points))
	seen := make(map[string]bool, len(points))
	for _, p := range points {
		key := normalize(p.Text)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		p.Text = strings.TrimSpace(p.Text)
		out = append(out, p)
	}
	return out
}
