package model

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

// WorkflowStep pairs a workflow step name with the role responsible for it.
type WorkflowStep struct {
	Name string `yaml:"name" json:"name"`
	Role string `yaml:"role" json:"role"`
}

//go:embed workflow.yaml
var workflowYAML []byte

var workflowTemplate []WorkflowStep

func init() {
	var doc struct {
		Steps []WorkflowStep `yaml:"steps"`
	}
	if err := yaml.Unmarshal(workflowYAML, &doc); err != nil {
		panic(fmt.Sprintf("parse embedded workflow template: %v", err))
	}
	if len(doc.Steps) != 23 {
		panic(fmt.Sprintf("workflow template must have 23 steps, has %d", len(doc.Steps)))
	}
	workflowTemplate = doc.Steps
}

// WorkflowTemplate returns the fixed ordered 23-step workflow every project
// is seeded with. The returned slice is a copy.
func WorkflowTemplate() []WorkflowStep {
	out := make([]WorkflowStep, len(workflowTemplate))
	copy(out, workflowTemplate)
	return out
}
