package workflow

import (
	"context"
	"fmt"

	"fieldbot/models"
	"fieldbot/utils"

	"go.uber.org/zap"
)

// Engine runs a workflow's steps in order against a shared context.
// Steps never run concurrently within one execution.
type Engine struct {
	Logger *zap.Logger
}

func NewEngine(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = utils.GetLogger()
	}
	return &Engine{Logger: logger}
}

// Execute runs every step of wf. A step's early return ends the sequence
// immediately with its response and action. A required step's failure (or
// panic) rolls back the completed steps in reverse order and yields an error
// result; optional-step failures are logged and skipped. Rollback is
// best-effort compensation, not a transaction: a failing rollback is logged
// and the remaining rollbacks still run.
func (e *Engine) Execute(ctx context.Context, wf Workflow, wc *models.WorkflowContext) *models.WorkflowResult {
	if wc.StepResults == nil {
		wc.StepResults = make(map[string]*models.StepResult)
	}

	var completed []Step
	for _, step := range wf.Steps() {
		result, panicked := e.runStep(ctx, step, wc)
		wc.StepResults[step.ID] = &result

		if result.EarlyReturn != nil {
			e.Logger.Info("workflow early return",
				zap.String("workflow", wf.Intent()),
				zap.String("step", step.ID),
				zap.String("action", string(result.EarlyReturn.Action)))
			return &models.WorkflowResult{
				Success:     true,
				Response:    result.EarlyReturn.Response,
				Action:      result.EarlyReturn.Action,
				StepResults: wc.StepResults,
			}
		}

		if !result.Success {
			// A panic never takes the optional escape: an unexpected
			// exception in any step aborts and rolls back.
			if step.Optional && !panicked {
				e.Logger.Warn("optional step failed, continuing",
					zap.String("workflow", wf.Intent()),
					zap.String("step", step.ID),
					zap.String("error", result.Error))
				continue
			}

			e.Logger.Error("required step failed, rolling back",
				zap.String("workflow", wf.Intent()),
				zap.String("step", step.ID),
				zap.String("error", result.Error))
			e.rollback(ctx, completed, wc)
			return &models.WorkflowResult{
				Success:     false,
				FailedStep:  step.ID,
				Error:       result.Error,
				Action:      models.ActionError,
				StepResults: wc.StepResults,
			}
		}

		completed = append(completed, step)
	}

	result := &models.WorkflowResult{
		Success:     true,
		Action:      finalAction(wc),
		StepResults: wc.StepResults,
	}
	if sr, ok := wc.StepResults["create_job"]; ok && sr.Success && sr.Data != nil {
		result.JobCreated = sr.Data.Job
	}
	if sr, ok := wc.StepResults["find_or_create_customer"]; ok && sr.Success && sr.Data != nil {
		result.CustomerCreated = sr.Data.Customer
	}
	result.Response = wf.GenerateResponse(wc, result)
	return result
}

// runStep executes one step, converting a panic into a failed result so the
// engine's rollback path handles it like a required-step failure. The second
// return distinguishes panic failures from returned failures.
func (e *Engine) runStep(ctx context.Context, step Step, wc *models.WorkflowContext) (result models.StepResult, panicked bool) {
	defer func() {
		if r := recover(); r != nil {
			e.Logger.Error("step panicked",
				zap.String("step", step.ID),
				zap.Any("recover", r))
			result = models.StepResult{Success: false, Error: fmt.Sprintf("panic: %v", r)}
			panicked = true
		}
	}()
	return step.Execute(ctx, wc), false
}

// rollback compensates the completed steps in reverse completion order.
func (e *Engine) rollback(ctx context.Context, completed []Step, wc *models.WorkflowContext) {
	for i := len(completed) - 1; i >= 0; i-- {
		step := completed[i]
		if step.Rollback == nil {
			continue
		}
		if err := step.Rollback(ctx, wc); err != nil {
			e.Logger.Error("rollback failed, continuing with remaining rollbacks",
				zap.String("step", step.ID),
				zap.Error(err))
		}
	}
}

// finalAction is create_job when a create_job step succeeded with data,
// otherwise respond.
func finalAction(wc *models.WorkflowContext) models.WorkflowAction {
	if sr, ok := wc.StepResults["create_job"]; ok && sr.Success && sr.Data != nil && sr.Data.Job != nil {
		return models.ActionCreateJob
	}
	return models.ActionRespond
}
