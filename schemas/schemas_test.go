package schemas

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xeipuuv/gojsonschema"
)

var allSchemas = []string{
	JobDetails,
	LinkedInInsights,
	ProfileAnalysis,
	ProfileEnrichment,
	CandidateHighlights,
	HighlightsRepair,
	CompanyInfo,
	CompanyRepair,
	InterviewRounds,
	QuestionSet,
	TalkingPoints,
	GradingResult,
}

func TestAllSchemaFiles_ValidJSON(t *testing.T) {
	for _, name := range allSchemas {
		t.Run(name, func(t *testing.T) {
			data, err := Read(name)
			require.NoError(t, err, "should be able to read schema file")

			var v map[string]interface{}
			require.NoError(t, json.Unmarshal(data, &v), "schema file should be valid JSON: %s", name)
			assert.Equal(t, "object", v["type"])
			assert.Contains(t, v, "$schema")
		})
	}
}

func TestAllSchemaFiles_Compile(t *testing.T) {
	for _, name := range allSchemas {
		t.Run(name, func(t *testing.T) {
			data, err := Read(name)
			require.NoError(t, err)

			_, err = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data))
			assert.NoError(t, err)
		})
	}
}

func TestNames_ListsEveryConstant(t *testing.T) {
	names := Names()
	assert.Len(t, names, len(allSchemas))
	for _, name := range allSchemas {
		assert.Contains(t, names, name)
	}
}

func TestRead_Unknown(t *testing.T) {
	_, err := Read("does_not_exist")
	assert.Error(t, err)
}

func TestQuestionSet_RequiresTalkingPoints(t *testing.T) {
	data, err := Read(QuestionSet)
	require.NoError(t, err)
	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data))
	require.NoError(t, err)

	valid := `{"questions":[{"text":"Tell me about Acme","talkingPoints":[{"text":"40% latency cut"}]}]}`
	res, err := schema.Validate(gojsonschema.NewStringLoader(valid))
	require.NoError(t, err)
	assert.True(t, res.Valid())

	missing := `{"questions":[{"text":"Tell me about Acme"}]}`
	res, err = schema.Validate(gojsonschema.NewStringLoader(missing))
	require.NoError(t, err)
	assert.False(t, res.Valid())
}
