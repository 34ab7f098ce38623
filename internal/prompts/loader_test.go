package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_ValidPrompt(t *testing.T) {
	ClearCache()

	prompt, err := Get(Interview, KeyJobDetails)
	require.NoError(t, err)
	assert.Contains(t, prompt, "{{.PageText}}")
}

func TestGet_InvalidFile(t *testing.T) {
	ClearCache()

	_, err := Get("nonexistent.json", "some-key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read prompt file")
}

func TestGet_InvalidKey(t *testing.T) {
	ClearCache()

	_, err := Get(Interview, "nonexistent-key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestMustGet_Panics(t *testing.T) {
	assert.Panics(t, func() {
		MustGet("nonexistent.json", "some-key")
	})
}

func TestEveryKeyPresent(t *testing.T) {
	keys, err := List(Interview)
	require.NoError(t, err)

	for _, key := range []string{
		KeyJobDetails, KeyLinkedInInsights, KeyProfileAnalysis, KeyProfileEnrichment,
		KeyCandidateHighlights, KeyCompanyInfo, KeyInterviewRounds, KeyRoundQuestions,
		KeyRepairCompany, KeyRepairHighlights, KeyRepairRoundQuestions, KeyRepairTalkingPoints,
		KeyGradeResponse,
	} {
		assert.Contains(t, keys, key)
	}
}

func TestFormat(t *testing.T) {
	result := Format("Hello {{.Name}}, welcome to {{.Company}}!", map[string]string{
		"Name":    "Alice",
		"Company": "Acme Corp",
	})
	assert.Equal(t, "Hello Alice, welcome to Acme Corp!", result)

	// Unknown placeholders remain
	assert.Equal(t, "Hello {{.Name}}", Format("Hello {{.Name}}", map[string]string{}))
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, []string{"Company", "Title"}, Placeholders("{{.Title}} at {{.Company}} ({{.Title}})"))
	assert.Empty(t, Placeholders("none"))
}

func TestRender_FillsRoundQuestions(t *testing.T) {
	tpl := MustGet(Interview, KeyRoundQuestions)
	data := make(map[string]string)
	for _, name := range Placeholders(tpl) {
		data[name] = "x"
	}

	out := Render(KeyRoundQuestions, data)
	assert.Empty(t, Placeholders(out))
}
