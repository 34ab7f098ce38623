package stages

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jonathan/interview-prep/internal/llm"
	"github.com/jonathan/interview-prep/internal/prompts"
	"github.com/jonathan/interview-prep/internal/types"
	"github.com/jonathan/interview-prep/schemas"
)

// QuestionInput is everything question generation reads.
type QuestionInput struct {
	Job        types.JobDetails
	Company    types.CompanyInfo
	Highlights types.CandidateHighlights
	Profile    types.ProfileAnalysis
	Rounds     []types.RoundDescriptor
}

// QuestionGeneration makes one call per round. Any failed call is fatal; a round that
// comes back empty is kept for the reviewer.
func QuestionGeneration(ctx context.Context, d Deps, in QuestionInput) Result[[]types.InterviewRound] {
	const stage = types.StageQuestionGeneration
	var steps []types.ReasoningStep

	evidence := EvidenceList(&in.Profile, &in.Highlights)
	highlights := HighlightList(&in.Highlights)
	companyContext := strings.TrimSpace(in.Company.Description + " " + strings.Join(in.Company.Culture, "; "))

	rounds := make([]types.InterviewRound, 0, len(in.Rounds))
	for _, desc := range in.Rounds {
		set, err := llm.Decode[QuestionSet](ctx, d.Caller, llm.Request{
			Prompt: prompts.Render(prompts.KeyRoundQuestions, map[string]string{
				"Company":        in.Job.Company,
				"Title":          in.Job.Title,
				"RoundName":      desc.Name,
				"RoundFocus":     desc.Focus,
				"RoundFormat":    desc.Format,
				"RequiredSkills": strings.Join(in.Job.RequiredSkills, ", "),
				"CompanyContext": companyContext,
				"Highlights":     highlights,
				"Evidence":       evidence,
			}),
			Tier:   llm.TierAdvanced,
			Schema: schemas.QuestionSet,
		})
		if err != nil {
			steps = append(steps, types.NewReasoningStep(stage,
				fmt.Sprintf("Question generation failed for round %q: %v", desc.Name, err)))
			return fatal[[]types.InterviewRound](fmt.Errorf("failed to generate questions for round %q: %w", desc.Name, err), steps)
		}

		round := types.InterviewRound{
			ID:        uuid.NewString(),
			Name:      desc.Name,
			Focus:     desc.Focus,
			Format:    desc.Format,
			Questions: NewQuestions(set.Questions),
		}
		rounds = append(rounds, round)

		points := 0
		for _, q := range round.Questions {
			points += len(q.TalkingPoints)
		}
		steps = append(steps, types.NewReasoningStep(stage,
			fmt.Sprintf("Generated %d questions with %d talking points for %s", len(round.Questions), points, desc.Name)))
		d.log().Debugw("round generated", "round", desc.Name, "questions", len(round.Questions), "talking_points", points)
	}

	return succeeded(rounds, steps)
}
