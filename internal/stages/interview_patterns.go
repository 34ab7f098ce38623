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

type roundList struct {
	Rounds []types.RoundDescriptor `json:"rounds"`
}

// DefaultRounds is the fixed interview loop used when research yields nothing.
func DefaultRounds() []types.RoundDescriptor {
	return []types.RoundDescriptor{
		{Name: "Initial Screen", Focus: "Background, motivation and role fit", Format: "Phone or video call with a recruiter"},
		{Name: "Technical Assessment", Focus: "Core technical skills required by the role", Format: "Live technical interview or take-home exercise"},
		{Name: "Behavioral Interview", Focus: "Past experience, collaboration and impact", Format: "Structured interview using STAR questions"},
		{Name: "Culture Fit", Focus: "Values, working style and team alignment", Format: "Conversation with the hiring manager or team"},
	}
}

// InterviewPatternResearch finds the ordered rounds of the interview loop, falling back to DefaultRounds.
func InterviewPatternResearch(ctx context.Context, d Deps, company, title string) Result[[]types.RoundDescriptor] {
	const stage = types.StageInterviewPatternResearch
	var steps []types.ReasoningStep

	list, err := llm.Decode[roundList](ctx, d.Caller, llm.Request{
		Prompt: prompts.Render(prompts.KeyInterviewRounds, map[string]string{
			"Company": company,
			"Title":   title,
		}),
		Tier:   llm.TierStandard,
		Schema: schemas.InterviewRounds,
	})
	if err != nil {
		steps = append(steps, types.NewReasoningStep(stage,
			fmt.Sprintf("Interview pattern research failed (%v); using the default four-round loop", err)))
		return degraded(DefaultRounds(), err, steps)
	}

	rounds := make([]types.RoundDescriptor, 0, len(list.Rounds))
	seen := make(map[string]bool)
	for _, r := range list.Rounds {
		r.Name = strings.TrimSpace(r.Name)
		key := normalize(r.Name)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		rounds = append(rounds, r)
	}
	if len(rounds) == 0 {
		steps = append(steps, types.NewReasoningStep(stage, "No interview rounds found; using the default four-round loop"))
		return degraded(DefaultRounds(), nil, steps)
	}

	names := make([]string, len(rounds))
	for i, r := range rounds {
		names[i] = r.Name
	}
	steps = append(steps, types.NewReasoningStep(stage,
		fmt.Sprintf("Expecting %d rounds: %s", len(rounds), strings.Join(names, ", "))))
	return succeeded(rounds, steps)
}
