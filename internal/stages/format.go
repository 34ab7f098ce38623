package stages

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"github.com/jonathan/interview-prep/internal/types"
)

// Prompt input limits, in runes.
const (
	maxPageRunes   = 12000
	maxResumeRunes = 15000
	maxEvidence    = 25
)

// GeneratedPoint is a talking point as returned by the model.
type GeneratedPoint struct {
	Text     string `json:"text"`
	Evidence string `json:"evidence"`
}

// GeneratedQuestion is a question as returned by the model.
type GeneratedQuestion struct {
	Text          string           `json:"text"`
	Rationale     string           `json:"rationale"`
	TalkingPoints []GeneratedPoint `json:"talkingPoints"`
}

// QuestionSet is the model response for a round's questions.
type QuestionSet struct {
	Questions []GeneratedQuestion `json:"questions"`
}

// TalkingPointSet is the model response for a question's talking points.
type TalkingPointSet struct {
	TalkingPoints []GeneratedPoint `json:"talkingPoints"`
}

// NewTalkingPoints mints ids for generated points, skipping blanks.
func NewTalkingPoints(points []GeneratedPoint) []types.TalkingPoint {
	out := make([]types.TalkingPoint, 0, len(points))
	for _, p := range points {
		text := strings.TrimSpace(p.Text)
		if text == "" {
			continue
		}
		out = append(out, types.TalkingPoint{
			ID:       uuid.NewString(),
			Text:     text,
			Evidence: strings.TrimSpace(p.Evidence),
		})
	}
	return out
}

// NewQuestions mints ids for generated questions and their points, skipping blanks.
func NewQuestions(questions []GeneratedQuestion) []types.InterviewQuestion {
	out := make([]types.InterviewQuestion, 0, len(questions))
	for _, q := range questions {
		text := strings.TrimSpace(q.Text)
		if text == "" {
			continue
		}
		out = append(out, types.InterviewQuestion{
			ID:            uuid.NewString(),
			Text:          text,
			Rationale:     strings.TrimSpace(q.Rationale),
			TalkingPoints: NewTalkingPoints(q.TalkingPoints),
		})
	}
	return out
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// BulletList renders items as "- item" lines, or "(none)".
func BulletList(items []string) string {
	var sb strings.Builder
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		sb.WriteString("- ")
		sb.WriteString(item)
		sb.WriteString("\n")
	}
	if sb.Len() == 0 {
		return "(none)"
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

// EvidenceList renders profile evidence and highlight evidence for prompts.
func EvidenceList(profile *types.ProfileAnalysis, highlights *types.CandidateHighlights) string {
	var items []string
	seen := make(map[string]bool)
	add := func(s string) {
		key := strings.ToLower(strings.TrimSpace(s))
		if key == "" || seen[key] || len(items) >= maxEvidence {
			return
		}
		seen[key] = true
		items = append(items, strings.TrimSpace(s))
	}
	if highlights != nil {
		for _, p := range highlights.RelevantPoints {
			add(p.Evidence)
		}
	}
	for _, e := range profile.AllEvidence() {
		add(e)
	}
	return BulletList(items)
}

// HighlightList renders relevant points with their evidence.
func HighlightList(h *types.CandidateHighlights) string {
	if h == nil {
		return "(none)"
	}
	items := make([]string, 0, len(h.RelevantPoints))
	for _, p := range h.RelevantPoints {
		if p.Evidence != "" {
			items = append(items, p.Text+" (evidence: \""+p.Evidence+"\")")
		} else {
			items = append(items, p.Text)
		}
	}
	return BulletList(items)
}

// ToJSON renders v as indented JSON for prompts.
func ToJSON(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}

// AppendUnique appends additions not already present, comparing case-insensitively.
func AppendUnique(existing []string, additions ...string) []string {
	seen := make(map[string]bool, len(existing))
	for _, s := range existing {
		seen[normalize(s)] = true
	}
	for _, s := range additions {
		key := normalize(s)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		existing = append(existing, strings.TrimSpace(s))
	}
	return existing
}

func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// SameText compares two strings case-insensitively, ignoring whitespace differences.
func SameText(a, b string) bool {
	return normalize(a) == normalize(b)
}
