package stages

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonathan/interview-prep/internal/llm"
	"github.com/jonathan/interview-prep/internal/prompts"
	"github.com/jonathan/interview-prep/internal/research"
	"github.com/jonathan/interview-prep/internal/types"
	"github.com/jonathan/interview-prep/schemas"
)

// CompanyResearch researches the hiring company. On failure it returns a placeholder
// naming the company rather than stopping the pipeline.
func CompanyResearch(ctx context.Context, d Deps, company, title, jobURL string) Result[types.CompanyInfo] {
	const stage = types.StageCompanyResearch
	var steps []types.ReasoningStep

	sources := research.Gather(ctx, d.Pages, jobURL, research.DefaultMaxPages)
	if len(sources) > 0 {
		steps = append(steps, types.NewReasoningStep(stage,
			fmt.Sprintf("Read %d pages from the company website", len(sources)),
			research.URLs(sources)...))
	} else {
		d.log().Debugw("no company pages gathered", "job_url", jobURL)
	}

	info, err := llm.Decode[types.CompanyInfo](ctx, d.Caller, llm.Request{
		Prompt: prompts.Render(prompts.KeyCompanyInfo, map[string]string{
			"Company":      company,
			"Title":        title,
			"CompanyPages": research.FormatSources(sources),
		}),
		Tier:   llm.TierStandard,
		Schema: schemas.CompanyInfo,
	})
	if err != nil {
		steps = append(steps, types.NewReasoningStep(stage,
			fmt.Sprintf("Company research failed (%v); using placeholder company information", err)))
		return degraded(PlaceholderCompanyInfo(company), err, steps)
	}

	info.Culture = AppendUnique([]string{}, info.Culture...)
	info.BusinessFocus = AppendUnique([]string{}, info.BusinessFocus...)
	info.TeamInfo = AppendUnique([]string{}, info.TeamInfo...)
	info.RoleDetails = AppendUnique([]string{}, info.RoleDetails...)
	info.UsefulURLs = AppendUnique(research.URLs(sources), info.UsefulURLs...)
	if strings.TrimSpace(info.Description) == "" {
		info.Description = PlaceholderCompanyInfo(company).Description
	}

	steps = append(steps, types.NewReasoningStep(stage, fmt.Sprintf(
		"Researched %s: %d culture, %d business focus, %d team and %d role notes",
		companyName(company), len(info.Culture), len(info.BusinessFocus), len(info.TeamInfo), len(info.RoleDetails)),
		info.UsefulURLs...))
	return succeeded(info, steps)
}

// PlaceholderCompanyInfo is the deterministic stand-in used when research fails.
func PlaceholderCompanyInfo(company string) types.CompanyInfo {
	return types.CompanyInfo{
		Description:   fmt.Sprintf("Company information for %s is currently unavailable.", companyName(company)),
		Culture:       []string{"Culture information unavailable"},
		BusinessFocus: []string{"Business focus information unavailable"},
		TeamInfo:      []string{"Team information unavailable"},
		RoleDetails:   []string{"Role details unavailable"},
		UsefulURLs:    []string{},
	}
}

func companyName(company string) string {
	if c := strings.TrimSpace(company); c != "" {
		return c
	}
	return "the company"
}
