package workflow

import (
	"fieldbot/utils"

	"go.uber.org/zap"
)

// Router selects the workflow for a detected intent. Registration order is
// the priority order: register booking before FAQ before the generic
// catch-all, or booking-capable messages get swallowed.
type Router struct {
	workflows []Workflow
	logger    *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	if logger == nil {
		logger = utils.GetLogger()
	}
	return &Router{logger: logger}
}

// Register appends a workflow at the lowest priority position.
func (r *Router) Register(wf Workflow) {
	r.workflows = append(r.workflows, wf)
	r.logger.Info("workflow registered",
		zap.String("intent", wf.Intent()),
		zap.Int("priority", len(r.workflows)))
}

// FindWorkflow returns the first registered workflow whose CanHandle
// matches, or nil when none does.
func (r *Router) FindWorkflow(intent string, entities map[string]string) Workflow {
	for _, wf := range r.workflows {
		if wf.CanHandle(intent, entities) {
			return wf
		}
	}
	return nil
}
