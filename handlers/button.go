package handlers

import (
	"net/http"

	"fieldbot/services/interaction"
	"fieldbot/utils"

	"github.com/gin-gonic/gin"
)

// ButtonHandler receives interactive-message replies (button clicks, list
// selections) and resumes the matching paused conversation.
type ButtonHandler struct {
	Router *interaction.ButtonRouter
}

func NewButtonHandler(router *interaction.ButtonRouter) *ButtonHandler {
	return &ButtonHandler{Router: router}
}

type buttonClickRequest struct {
	OrganizationID string `json:"organizationId" binding:"required"`
	ConversationID string `json:"conversationId" binding:"required"`
	CustomerPhone  string `json:"customerPhone"`
	ButtonID       string `json:"buttonId"`
	ButtonTitle    string `json:"buttonTitle"`
}

func (h *ButtonHandler) HandleButtonClick(c *gin.Context) {
	var req buttonClickRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid button payload", err.Error())
		return
	}
	if req.ButtonID == "" && req.ButtonTitle == "" {
		utils.JSONError(c, http.StatusBadRequest, "Invalid button payload", "buttonId or buttonTitle is required")
		return
	}

	result, err := h.Router.Handle(c.Request.Context(), interaction.ButtonClickContext{
		OrganizationID: req.OrganizationID,
		ConversationID: req.ConversationID,
		CustomerPhone:  req.CustomerPhone,
		ButtonID:       req.ButtonID,
		ButtonTitle:    req.ButtonTitle,
	})
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Failed to process button click", err.Error())
		return
	}
	c.JSON(http.StatusOK, result)
}
