// Package review checks a generated artifact against minimum content thresholds and
// tops up deficient sections with one scoped repair call each.
package review

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonathan/interview-prep/internal/llm"
	"github.com/jonathan/interview-prep/internal/prompts"
	"github.com/jonathan/interview-prep/internal/stages"
	"github.com/jonathan/interview-prep/internal/types"
	"github.com/jonathan/interview-prep/schemas"
	"go.uber.org/zap"
)

// Content thresholds.
const (
	MinRelevantPoints = 3
	MinGapAreas       = 2
	MinQuestions      = 5
	MinTalkingPoints  = 3
)

// Input is the background the repairs draw on.
type Input struct {
	ResumeText string
	Profile    types.ProfileAnalysis
}

// Report summarizes one review pass.
type Report struct {
	Repaired []string
	Failed   []string
	Steps    []types.ReasoningStep
}

// Reviewer runs the quality check.
type Reviewer struct {
	caller llm.Caller
	log    *zap.SugaredLogger
}

// New creates a Reviewer.
func New(caller llm.Caller, log *zap.SugaredLogger) *Reviewer {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Reviewer{caller: caller, log: log}
}

// Review repairs a in place. Sections are visited in order: company info, highlights,
// rounds, then questions (including those added by round repairs). A section is
// repaired at most once and a failed repair is only recorded.
func (r *Reviewer) Review(ctx context.Context, a *types.Artifact, in Input) Report {
	var rep Report
	evidence := stages.EvidenceList(&in.Profile, &a.CandidateHighlights)

	if missing := missingCompanyFields(&a.CompanyInfo); len(missing) > 0 {
		r.record(&rep, "company info", r.repairCompany(ctx, a, missing))
	}

	relevant := MinRelevantPoints - len(a.CandidateHighlights.RelevantPoints)
	gaps := MinGapAreas - len(a.CandidateHighlights.GapAreas)
	if relevant > 0 || gaps > 0 {
		r.record(&rep, "candidate highlights", r.repairHighlights(ctx, a, in, max(relevant, 0), max(gaps, 0)))
		evidence = stages.EvidenceList(&in.Profile, &a.CandidateHighlights)
	}

	for i := range a.InterviewRounds {
		round := &a.InterviewRounds[i]
		if n := MinQuestions - len(round.Questions); n > 0 {
			r.record(&rep, fmt.Sprintf("round %q", round.Name), r.repairRound(ctx, a, round, n, evidence))
		}
	}

	for i := range a.InterviewRounds {
		round := &a.InterviewRounds[i]
		for j := range round.Questions {
			q := &round.Questions[j]
			if n := MinTalkingPoints - len(q.TalkingPoints); n > 0 {
				r.record(&rep, fmt.Sprintf("question %q", q.Text), r.repairQuestion(ctx, q, n, evidence))
			}
		}
	}

	if len(rep.Repaired) == 0 && len(rep.Failed) == 0 {
		rep.Steps = append(rep.Steps, types.NewReasoningStep(types.StageQualityCheck, "All sections meet content thresholds"))
	}
	return rep
}

func (r *Reviewer) record(rep *Report, section string, err error) {
	if err != nil {
		r.log.Warnw("repair failed", "section", section, "error", err)
		rep.Failed = append(rep.Failed, section)
		rep.Steps = append(rep.Steps, types.NewReasoningStep(types.StageQualityCheck,
			fmt.Sprintf("Repair of %s failed: %v", section, err)))
		return
	}
	rep.Repaired = append(rep.Repaired, section)
	rep.Steps = append(rep.Steps, types.NewReasoningStep(types.StageQualityCheck, "Repaired "+section))
}

func missingCompanyFields(c *types.CompanyInfo) []string {
	var missing []string
	if len(c.Culture) == 0 {
		missing = append(missing, "culture")
	}
	if len(c.BusinessFocus) == 0 {
		missing = append(missing, "businessFocus")
	}
	if len(c.TeamInfo) == 0 {
		missing = append(missing, "teamInfo")
	}
	if len(c.RoleDetails) == 0 {
		missing = append(missing, "roleDetails")
	}
	return missing
}

type companyRepair struct {
	Culture       []string `json:"culture"`
	BusinessFocus []string `json:"businessFocus"`
	TeamInfo      []string `json:"teamInfo"`
	RoleDetails   []string `json:"roleDetails"`
}

func (r *Reviewer) repairCompany(ctx context.Context, a *types.Artifact, missing []string) error {
	fix, err := llm.Decode[companyRepair](ctx, r.caller, llm.Request{
		Prompt: prompts.Render(prompts.KeyRepairCompany, map[string]string{
			"Company":       a.JobDetails.Company,
			"Title":         a.JobDetails.Title,
			"MissingFields": strings.Join(missing, ", "),
			"Existing":      stages.ToJSON(a.CompanyInfo),
		}),
		Tier:   llm.TierLite,
		Schema: schemas.CompanyRepair,
	})
	if err != nil {
		return err
	}
	c := &a.CompanyInfo
	for _, field := range missing {
		switch field {
		case "culture":
			c.Culture = stages.AppendUnique(c.Culture, fix.Culture...)
		case "businessFocus":
			c.BusinessFocus = stages.AppendUnique(c.BusinessFocus, fix.BusinessFocus...)
		case "teamInfo":
			c.TeamInfo = stages.AppendUnique(c.TeamInfo, fix.TeamInfo...)
		case "roleDetails":
			c.RoleDetails = stages.AppendUnique(c.RoleDetails, fix.RoleDetails...)
		}
	}
	return nil
}

type highlightsRepair struct {
	RelevantPoints []types.HighlightPoint `json:"relevantPoints"`
	GapAreas       []string               `json:"gapAreas"`
}

func (r *Reviewer) repairHighlights(ctx context.Context, a *types.Artifact, in Input, relevant, gaps int) error {
	fix, err := llm.Decode[highlightsRepair](ctx, r.caller, llm.Request{
		Prompt: prompts.Render(prompts.KeyRepairHighlights, map[string]string{
			"RelevantNeeded": fmt.Sprint(relevant),
			"GapNeeded":      fmt.Sprint(gaps),
			"JobDetails":     stages.ToJSON(a.JobDetails),
			"Existing":       stages.ToJSON(a.CandidateHighlights),
			"ResumeText":     stages.Truncate(in.ResumeText, 15000),
		}),
		Tier:   llm.TierLite,
		Schema: schemas.HighlightsRepair,
	})
	if err != nil {
		return err
	}
	h := &a.CandidateHighlights
	if relevant > 0 {
		for _, p := range fix.RelevantPoints {
			if strings.TrimSpace(p.Text) == "" || hasPoint(h.RelevantPoints, p.Text) {
				continue
			}
			p.Text = strings.TrimSpace(p.Text)
			h.RelevantPoints = append(h.RelevantPoints, p)
		}
	}
	if gaps > 0 {
		h.GapAreas = stages.AppendUnique(h.GapAreas, fix.GapAreas...)
	}
	return nil
}

func hasPoint(points []types.HighlightPoint, text string) bool {
	for _, p := range points {
		if stages.SameText(p.Text, text) {
			return true
		}
	}
	return false
}

func (r *Reviewer) repairRound(ctx context.Context, a *types.Artifact, round *types.InterviewRound, needed int, evidence string) error {
	existing := make([]string, len(round.Questions))
	for i, q := range round.Questions {
		existing[i] = q.Text
	}
	set, err := llm.Decode[stages.QuestionSet](ctx, r.caller, llm.Request{
		Prompt: prompts.Render(prompts.KeyRepairRoundQuestions, map[string]string{
			"RoundName":         round.Name,
			"RoundFocus":        round.Focus,
			"Company":           a.JobDetails.Company,
			"Title":             a.JobDetails.Title,
			"Needed":            fmt.Sprint(needed),
			"ExistingQuestions": stages.BulletList(existing),
			"Evidence":          evidence,
		}),
		Tier:   llm.TierLite,
		Schema: schemas.QuestionSet,
	})
	if err != nil {
		return err
	}
	for _, q := range stages.NewQuestions(set.Questions) {
		if hasQuestion(round.Questions, q.Text) {
			continue
		}
		round.Questions = append(round.Questions, q)
	}
	return nil
}

func hasQuestion(questions []types.InterviewQuestion, text string) bool {
	for _, q := range questions {
		if stages.SameText(q.Text, text) {
			return true
		}
	}
	return false
}

func (r *Reviewer) repairQuestion(ctx context.Context, q *types.InterviewQuestion, needed int, evidence string) error {
	existing := make([]string, len(q.TalkingPoints))
	for i, p := range q.TalkingPoints {
		existing[i] = p.Text
	}
	set, err := llm.Decode[stages.TalkingPointSet](ctx, r.caller, llm.Request{
		Prompt: prompts.Render(prompts.KeyRepairTalkingPoints, map[string]string{
			"Question":       q.Text,
			"Needed":         fmt.Sprint(needed),
			"ExistingPoints": stages.BulletList(existing),
			"Evidence":       evidence,
		}),
		Tier:   llm.TierLite,
		Schema: schemas.TalkingPoints,
	})
	if err != nil {
		return err
	}
	for _, p := range stages.NewTalkingPoints(set.TalkingPoints) {
		if hasTalkingPoint(q.TalkingPoints, p.Text) {
			continue
		}
		q.TalkingPoints = append(q.TalkingPoints, p)
	}
	return nil
}

func hasTalkingPoint(points []types.TalkingPoint, text string) bool {
	for _, p := range points {
		if stages.SameText(p.Text, text) {
			return true
		}
	}
	return false
}
