package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fieldbot/models"
	"fieldbot/services/interaction"
	"fieldbot/services/workflow"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newMessageRouter() *gin.Engine {
	wfRouter := workflow.NewRouter(zap.NewNop())
	wfRouter.Register(&workflow.FAQWorkflow{Answers: map[string]string{
		"horario": "Atendemos de lunes a viernes de 9:00 a 18:00.",
	}})
	wfRouter.Register(&workflow.GeneralInquiryWorkflow{})

	handler := NewMessageHandler(wfRouter, workflow.NewEngine(zap.NewNop()))
	r := gin.New()
	r.POST("/api/messages", handler.HandleInboundMessage)
	return r
}

func postJSON(t *testing.T, r *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandleInboundMessageFAQ(t *testing.T) {
	r := newMessageRouter()

	w := postJSON(t, r, "/api/messages", gin.H{
		"organizationId": "org1",
		"conversationId": "conv1",
		"customerPhone":  "+525512345678",
		"intent":         "faq",
		"entities":       gin.H{"faqTopic": "horario"},
	})

	require.Equal(t, http.StatusOK, w.Code)
	var result models.WorkflowResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.True(t, result.Success)
	assert.Equal(t, models.ActionRespond, result.Action)
	assert.Contains(t, result.Response, "lunes a viernes")
	assert.Contains(t, result.StepResults, "lookup_answer")
}

func TestHandleInboundMessageMissingFields(t *testing.T) {
	r := newMessageRouter()

	w := postJSON(t, r, "/api/messages", gin.H{
		"conversationId": "conv1",
		"intent":         "faq",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleInboundMessageUrgentTransfers(t *testing.T) {
	r := newMessageRouter()

	w := postJSON(t, r, "/api/messages", gin.H{
		"organizationId": "org1",
		"conversationId": "conv1",
		"customerPhone":  "+525512345678",
		"intent":         "consulta",
		"entities":       gin.H{"urgency": "alta"},
	})

	require.Equal(t, http.StatusOK, w.Code)
	var result models.WorkflowResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, models.ActionTransfer, result.Action)
}

type fakeButtonJobRepo struct{}

func (fakeButtonJobRepo) GetActiveForDate(ctx context.Context, orgID, date string) ([]models.Job, error) {
	return nil, nil
}
func (fakeButtonJobRepo) CreateBooking(ctx context.Context, job *models.Job, maxDailyJobs int) error {
	return nil
}
func (fakeButtonJobRepo) CancelBooking(ctx context.Context, orgID, jobID string) error { return nil }
func (fakeButtonJobRepo) EnsureIndexes(ctx context.Context) error                      { return nil }

func newButtonRouterHandler() (*gin.Engine, *interaction.MemoryStore) {
	store := interaction.NewMemoryStore(30*time.Minute, zap.NewNop())
	btnRouter := interaction.NewButtonRouter(store, fakeButtonJobRepo{}, zap.NewNop())
	handler := NewButtonHandler(btnRouter)
	r := gin.New()
	r.POST("/api/buttons", handler.HandleButtonClick)
	return r, store
}

func TestHandleButtonClickExpiredSession(t *testing.T) {
	r, _ := newButtonRouterHandler()

	w := postJSON(t, r, "/api/buttons", gin.H{
		"organizationId": "org1",
		"conversationId": "conv1",
		"buttonId":       "slot_0",
	})

	require.Equal(t, http.StatusOK, w.Code)
	var result interaction.ButtonClickResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.True(t, result.Handled)
	assert.Contains(t, result.Response, "sesión expiró")
}

func TestHandleButtonClickRequiresIdOrTitle(t *testing.T) {
	r, _ := newButtonRouterHandler()

	w := postJSON(t, r, "/api/buttons", gin.H{
		"organizationId": "org1",
		"conversationId": "conv1",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleButtonClickConfirmYes(t *testing.T) {
	r, store := newButtonRouterHandler()
	require.NoError(t, store.Set(context.Background(), "conv1", models.PendingInteraction{
		Type:           models.InteractionConfirmation,
		OrganizationID: "org1",
		Data: models.InteractionData{Confirmation: &models.ConfirmationData{
			Booking: models.BookingDraft{
				OrganizationID: "org1",
				Date:           "2026-09-07",
				StartTime:      "09:00",
				EndTime:        "10:00",
			},
		}},
	}))

	w := postJSON(t, r, "/api/buttons", gin.H{
		"organizationId": "org1",
		"conversationId": "conv1",
		"buttonId":       "confirm_yes",
	})

	require.Equal(t, http.StatusOK, w.Code)
	var result interaction.ButtonClickResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.True(t, result.Handled)
	assert.Equal(t, models.ActionCreateJob, result.Action)
	require.NotNil(t, result.Data)
	require.NotNil(t, result.Data.Job)
	assert.Equal(t, "2026-09-07", result.Data.Job.Date)
}
