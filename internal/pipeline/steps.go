package pipeline

import (
	"fmt"

	"github.com/jonathan/interview-prep/internal/types"
)

// StageDefinition defines metadata for a pipeline stage
type StageDefinition struct {
	Stage        types.Stage
	Description  string
	Dependencies []types.Stage
}

// StageRegistry holds the stage definitions in execution order
var StageRegistry = []StageDefinition{
	{
		Stage:       types.StageJobResearch,
		Description: "Researching the job posting",
	},
	{
		Stage:       types.StageProfileAnalysis,
		Description: "Analyzing the candidate profile",
	},
	{
		Stage:        types.StageHighlightGeneration,
		Description:  "Matching the candidate to the role",
		Dependencies: []types.Stage{types.StageJobResearch, types.StageProfileAnalysis},
	},
	{
		Stage:        types.StageCompanyResearch,
		Description:  "Researching the company",
		Dependencies: []types.Stage{types.StageJobResearch},
	},
	{
		Stage:        types.StageInterviewPatternResearch,
		Description:  "Researching the interview process",
		Dependencies: []types.Stage{types.StageJobResearch},
	},
	{
		Stage:       types.StageQuestionGeneration,
		Description: "Generating interview questions",
		Dependencies: []types.Stage{
			types.StageJobResearch,
			types.StageProfileAnalysis,
			types.StageHighlightGeneration,
			types.StageCompanyResearch,
			types.StageInterviewPatternResearch,
		},
	},
	{
		Stage:        types.StageQualityCheck,
		Description:  "Reviewing and repairing the preparation guide",
		Dependencies: []types.Stage{types.StageQuestionGeneration},
	},
}

// DependencyError represents a stage scheduled before one of its inputs
type DependencyError struct {
	Stage               types.Stage
	MissingDependencies []types.Stage
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("stage %s scheduled before its dependencies: %v", e.Stage, e.MissingDependencies)
}

// ValidateOrder checks that every stage runs after the stages it reads from
func ValidateOrder(defs []StageDefinition) error {
	done := make(map[types.Stage]bool, len(defs))
	for _, def := range defs {
		var missing []types.Stage
		for _, dep := range def.Dependencies {
			if !done[dep] {
				missing = append(missing, dep)
			}
		}
		if len(missing) > 0 {
			return &DependencyError{Stage: def.Stage, MissingDependencies: missing}
		}
		done[def.Stage] = true
	}
	return nil
}

// stepMessage renders the progress line for a stage, e.g. "Step 3/7: Matching the candidate to the role"
func stepMessage(stage types.Stage) string {
	for i, def := range StageRegistry {
		if def.Stage == stage {
			return fmt.Sprintf("Step %d/%d: %s", i+1, len(StageRegistry), def.Description)
		}
	}
	return string(stage)
}

// MissingHandlerError is returned when a registered stage has no implementation
type MissingHandlerError struct {
	Stage types.Stage
}

func (e *MissingHandlerError) Error() string {
	return fmt.Sprintf("no handler registered for stage %s", e.Stage)
}
