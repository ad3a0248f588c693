package handlers

import (
	"net/http"

	"fieldbot/models"
	"fieldbot/services/scheduling"
	"fieldbot/utils"

	"github.com/gin-gonic/gin"
)

// SchedulingHandler exposes the scheduling-intelligence query directly, used
// by chat responders that only need availability without a workflow.
type SchedulingHandler struct {
	Service scheduling.SchedulingService
}

func NewSchedulingHandler(service scheduling.SchedulingService) *SchedulingHandler {
	return &SchedulingHandler{Service: service}
}

type schedulingRequest struct {
	OrganizationID string   `json:"organizationId" binding:"required"`
	Date           string   `json:"date" binding:"required"`
	RequestedTime  string   `json:"requestedTime"`
	ServiceType    string   `json:"serviceType"`
	CustomerLat    *float64 `json:"customerLat"`
	CustomerLng    *float64 `json:"customerLng"`
}

func (h *SchedulingHandler) GetSchedulingContext(c *gin.Context) {
	var req schedulingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid scheduling query", err.Error())
		return
	}

	result, err := h.Service.GetSchedulingContext(c.Request.Context(), models.SchedulingContext{
		OrganizationID: req.OrganizationID,
		Date:           req.Date,
		RequestedTime:  req.RequestedTime,
		ServiceType:    req.ServiceType,
		CustomerLat:    req.CustomerLat,
		CustomerLng:    req.CustomerLng,
	})
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Failed to compute scheduling context", err.Error())
		return
	}
	c.JSON(http.StatusOK, result)
}
