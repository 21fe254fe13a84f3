package handlers

import (
	"net/http"

	"weatherbot-api/internal/common"
	"weatherbot-api/internal/schedule"
	"weatherbot-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// SchedulesHandler serves per-user schedule listings for the dashboard
type SchedulesHandler struct {
	schedules schedule.Repository
	logger    *logger.Logger
}

func NewSchedulesHandler(schedules schedule.Repository, logger *logger.Logger) *SchedulesHandler {
	return &SchedulesHandler{
		schedules: schedules,
		logger:    logger,
	}
}

// ListByUser returns every schedule entry owned by a user, active first
func (h *SchedulesHandler) ListByUser(c *gin.Context) {
	userID := common.UserID(c.Param("user_id"))

	entries, err := h.schedules.ListByUser(userID)
	if err != nil {
		h.logger.Error("Schedule listing failed", "user_id", string(userID), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "store unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id":   userID,
		"count":     len(entries),
		"schedules": entries,
	})
}
