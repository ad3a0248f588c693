package workflow

import (
	"context"

	"fieldbot/models"
)

// GeneralInquiryWorkflow is the catch-all: it must be registered last.
// Urgent messages are handed to a human; everything else gets a guided menu.
type GeneralInquiryWorkflow struct{}

func (w *GeneralInquiryWorkflow) Intent() string { return "consulta_general" }

func (w *GeneralInquiryWorkflow) CanHandle(string, map[string]string) bool { return true }

func (w *GeneralInquiryWorkflow) Steps() []Step {
	return []Step{
		{ID: "compose_reply", Name: "Componer respuesta", Execute: w.composeReply},
	}
}

func (w *GeneralInquiryWorkflow) composeReply(_ context.Context, wc *models.WorkflowContext) models.StepResult {
	if wc.Entity("urgency") == "alta" {
		return models.StepResult{
			Success: true,
			EarlyReturn: &models.EarlyReturn{
				Response: "Entendido, es urgente. Te comunicamos con un asesor ahora mismo.",
				Action:   models.ActionTransfer,
			},
		}
	}
	return models.StepResult{
		Success: true,
		Data: &models.StepData{
			Answer: "¡Hola! Te podemos ayudar a agendar una visita técnica. " +
				"Dinos qué servicio necesitas y para qué fecha, o pregunta por horarios, precios o cobertura.",
		},
	}
}

func (w *GeneralInquiryWorkflow) GenerateResponse(wc *models.WorkflowContext, _ *models.WorkflowResult) string {
	if sr, ok := wc.StepResults["compose_reply"]; ok && sr.Data != nil {
		return sr.Data.Answer
	}
	return "¿En qué te podemos ayudar?"
}
