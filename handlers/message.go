package handlers

import (
	"net/http"
	"time"

	"fieldbot/models"
	"fieldbot/services/workflow"
	"fieldbot/utils"

	"github.com/gin-gonic/gin"
)

// MessageHandler is the entry point for inbound chat messages. Intent and
// entity extraction happen upstream; this handler routes the already
// extracted message to a workflow and executes it.
type MessageHandler struct {
	Router *workflow.Router
	Engine *workflow.Engine
}

func NewMessageHandler(router *workflow.Router, engine *workflow.Engine) *MessageHandler {
	return &MessageHandler{Router: router, Engine: engine}
}

type inboundMessageRequest struct {
	OrganizationID string            `json:"organizationId" binding:"required"`
	ConversationID string            `json:"conversationId" binding:"required"`
	CustomerPhone  string            `json:"customerPhone" binding:"required"`
	CustomerName   string            `json:"customerName"`
	Message        string            `json:"message"`
	MessageType    string            `json:"messageType"`
	Intent         string            `json:"intent" binding:"required"`
	Entities       map[string]string `json:"entities"`
	AIConfidence   float64           `json:"aiConfidence"`
}

// HandleInboundMessage routes one extracted message through the workflow
// engine and returns the full WorkflowResult, audit trail included.
func (h *MessageHandler) HandleInboundMessage(c *gin.Context) {
	var req inboundMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid message payload", err.Error())
		return
	}

	wc := &models.WorkflowContext{
		OrganizationID: req.OrganizationID,
		ConversationID: req.ConversationID,
		CustomerPhone:  req.CustomerPhone,
		CustomerName:   req.CustomerName,
		Entities:       req.Entities,
		StepResults:    make(map[string]*models.StepResult),
		Metadata: models.WorkflowMetadata{
			StartedAt:       time.Now(),
			AIConfidence:    req.AIConfidence,
			OriginalMessage: req.Message,
			MessageType:     req.MessageType,
		},
	}

	wf := h.Router.FindWorkflow(req.Intent, req.Entities)
	if wf == nil {
		utils.JSONError(c, http.StatusUnprocessableEntity, "No workflow can handle this message", req.Intent)
		return
	}

	result := h.Engine.Execute(c.Request.Context(), wf, wc)
	c.JSON(http.StatusOK, result)
}
