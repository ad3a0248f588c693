package models

import "time"

// WorkflowAction is what the caller should do with a workflow result.
type WorkflowAction string

const (
	ActionRespond   WorkflowAction = "respond"
	ActionTransfer  WorkflowAction = "transfer"
	ActionCreateJob WorkflowAction = "create_job"
	ActionWaitInput WorkflowAction = "wait_input"
	ActionError     WorkflowAction = "error"
)

// WorkflowMetadata carries bookkeeping about the triggering message.
type WorkflowMetadata struct {
	StartedAt       time.Time `json:"startedAt"`
	AIConfidence    float64   `json:"aiConfidence,omitempty"`
	OriginalMessage string    `json:"originalMessage,omitempty"`
	MessageType     string    `json:"messageType,omitempty"`
}

// WorkflowContext is the shared mutable state of one workflow execution.
// One instance handles one inbound message and is then discarded; it is
// never shared between executions or goroutines.
type WorkflowContext struct {
	OrganizationID string            `json:"organizationId"`
	ConversationID string            `json:"conversationId"`
	CustomerID     string            `json:"customerId,omitempty"`
	CustomerPhone  string            `json:"customerPhone"`
	CustomerName   string            `json:"customerName,omitempty"`
	Entities       map[string]string `json:"extractedEntities"`
	Scheduling     *SchedulingResult `json:"schedulingContext,omitempty"`
	// StepResults is append-only within one execution and kept for audit.
	StepResults map[string]*StepResult `json:"stepResults"`
	Metadata    WorkflowMetadata       `json:"metadata"`
}

// Entity returns an extracted entity value, or "" when absent.
func (c *WorkflowContext) Entity(key string) string {
	if c.Entities == nil {
		return ""
	}
	return c.Entities[key]
}

// StepData is the typed payload a step can attach to its result. One case
// per kind of thing a step produces, so later steps and callers do not dig
// through untyped maps.
type StepData struct {
	Customer        *Customer         `json:"customer,omitempty"`
	CustomerCreated bool              `json:"customerCreated,omitempty"`
	Job             *Job              `json:"job,omitempty"`
	Scheduling      *SchedulingResult `json:"scheduling,omitempty"`
	Answer          string            `json:"answer,omitempty"`
}

// RequiresInput declares that a step needs a field from the customer. It is
// a marker for the response generator, not a suspend instruction by itself.
type RequiresInput struct {
	Field    string `json:"field"`
	Question string `json:"question"`
}

// EarlyReturn terminates the remaining step sequence immediately with a
// specific response and action, without being a failure.
type EarlyReturn struct {
	Response string         `json:"response"`
	Action   WorkflowAction `json:"action"`
}

// StepResult is the outcome of one workflow step.
type StepResult struct {
	Success       bool           `json:"success"`
	Data          *StepData      `json:"data,omitempty"`
	Error         string         `json:"error,omitempty"`
	RequiresInput *RequiresInput `json:"requiresInput,omitempty"`
	EarlyReturn   *EarlyReturn   `json:"earlyReturn,omitempty"`
}

// WorkflowResult is the outcome of a whole workflow execution. StepResults
// is the full audit trail, including the failed step when there is one.
type WorkflowResult struct {
	Success         bool                   `json:"success"`
	FailedStep      string                 `json:"failedStep,omitempty"`
	Error           string                 `json:"error,omitempty"`
	Response        string                 `json:"response,omitempty"`
	Action          WorkflowAction         `json:"action"`
	JobCreated      *Job                   `json:"jobCreated,omitempty"`
	CustomerCreated *Customer              `json:"customerCreated,omitempty"`
	StepResults     map[string]*StepResult `json:"stepResults"`
}
