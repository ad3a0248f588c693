package workflow

import (
	"context"

	"fieldbot/models"
)

// Step is the unit of executable work inside a workflow. Zero-value Optional
// means the step is required: its failure aborts the workflow and triggers
// rollback of the steps completed before it.
type Step struct {
	ID       string
	Name     string
	Optional bool
	Execute  func(ctx context.Context, wc *models.WorkflowContext) models.StepResult
	// Rollback compensates a completed step after a later required step
	// fails. Nil when the step has nothing to undo.
	Rollback func(ctx context.Context, wc *models.WorkflowContext) error
}

// Workflow is one intent's ordered step sequence.
type Workflow interface {
	// Intent names the workflow for logging and routing diagnostics.
	Intent() string
	// CanHandle reports whether this workflow should process the message.
	CanHandle(intent string, entities map[string]string) bool
	Steps() []Step
	// GenerateResponse renders the final reply once every step has completed.
	GenerateResponse(wc *models.WorkflowContext, result *models.WorkflowResult) string
}
