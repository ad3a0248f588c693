package workflow

import (
	"context"

	"fieldbot/models"
)

// FAQWorkflow answers frequent questions without touching any state.
// Register it after BookingWorkflow so booking-capable messages are not
// swallowed.
type FAQWorkflow struct {
	// Answers maps FAQ topics ("horario", "precios", ...) to replies.
	Answers map[string]string
}

func (w *FAQWorkflow) Intent() string { return "faq" }

func (w *FAQWorkflow) CanHandle(intent string, entities map[string]string) bool {
	switch intent {
	case "faq", "pregunta_frecuente", "informacion":
		return true
	}
	return entities["faqTopic"] != ""
}

func (w *FAQWorkflow) Steps() []Step {
	return []Step{
		{ID: "lookup_answer", Name: "Buscar respuesta", Execute: w.lookupAnswer},
	}
}

func (w *FAQWorkflow) lookupAnswer(_ context.Context, wc *models.WorkflowContext) models.StepResult {
	topic := wc.Entity("faqTopic")
	if answer, ok := w.Answers[topic]; ok {
		return models.StepResult{Success: true, Data: &models.StepData{Answer: answer}}
	}
	return models.StepResult{
		Success: true,
		Data: &models.StepData{
			Answer: "No tengo esa información a la mano. ¿Quieres que te comunique con un asesor?",
		},
	}
}

func (w *FAQWorkflow) GenerateResponse(wc *models.WorkflowContext, _ *models.WorkflowResult) string {
	if sr, ok := wc.StepResults["lookup_answer"]; ok && sr.Data != nil {
		return sr.Data.Answer
	}
	return "¿En qué más te podemos ayudar?"
}
