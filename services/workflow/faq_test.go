package workflow

import (
	"context"
	"testing"

	"fieldbot/models"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestFAQKnownTopic(t *testing.T) {
	wf := &FAQWorkflow{Answers: map[string]string{
		"horario": "Atendemos de lunes a viernes de 9:00 a 18:00.",
	}}
	engine := NewEngine(zap.NewNop())

	wc := &models.WorkflowContext{Entities: map[string]string{"faqTopic": "horario"}}
	result := engine.Execute(context.Background(), wf, wc)

	assert.True(t, result.Success)
	assert.Equal(t, models.ActionRespond, result.Action)
	assert.Equal(t, "Atendemos de lunes a viernes de 9:00 a 18:00.", result.Response)
}

func TestFAQUnknownTopicFallsBack(t *testing.T) {
	wf := &FAQWorkflow{Answers: map[string]string{}}
	engine := NewEngine(zap.NewNop())

	wc := &models.WorkflowContext{Entities: map[string]string{"faqTopic": "garantías"}}
	result := engine.Execute(context.Background(), wf, wc)

	assert.True(t, result.Success)
	assert.Contains(t, result.Response, "asesor")
}

func TestGeneralInquiryUrgentTransfers(t *testing.T) {
	engine := NewEngine(zap.NewNop())

	wc := &models.WorkflowContext{Entities: map[string]string{"urgency": "alta"}}
	result := engine.Execute(context.Background(), &GeneralInquiryWorkflow{}, wc)

	assert.True(t, result.Success)
	assert.Equal(t, models.ActionTransfer, result.Action)
	assert.Contains(t, result.Response, "asesor")
}

func TestGeneralInquiryDefaultMenu(t *testing.T) {
	engine := NewEngine(zap.NewNop())

	wc := &models.WorkflowContext{Entities: map[string]string{}}
	result := engine.Execute(context.Background(), &GeneralInquiryWorkflow{}, wc)

	assert.True(t, result.Success)
	assert.Equal(t, models.ActionRespond, result.Action)
	assert.Contains(t, result.Response, "agendar")
}

// Registration order is priority order: a message both the booking workflow
// and the catch-all could handle goes to booking.
func TestRouterPriorityOrder(t *testing.T) {
	router := NewRouter(zap.NewNop())
	booking := &BookingWorkflow{}
	faq := &FAQWorkflow{}
	router.Register(booking)
	router.Register(faq)
	router.Register(&GeneralInquiryWorkflow{})

	assert.Same(t, booking, router.FindWorkflow("agendar_visita", nil))
	assert.Same(t, faq, router.FindWorkflow("faq", nil))

	wf := router.FindWorkflow("otra_cosa", map[string]string{"serviceType": "plomería", "preferredDate": "2026-09-07"})
	assert.Same(t, booking, wf, "booking-capable entities route to booking over the catch-all")

	wf = router.FindWorkflow("otra_cosa", nil)
	assert.IsType(t, &GeneralInquiryWorkflow{}, wf)
}
