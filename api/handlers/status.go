package handlers

import (
	"net/http"
	"time"

	"weatherbot-api/internal/messenger"
	"weatherbot-api/internal/profile"
	"weatherbot-api/internal/schedule"
	"weatherbot-api/internal/scheduler"
	"weatherbot-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// MessageCounter reports message-store totals for the dashboard
type MessageCounter interface {
	Counts() (int64, int64, error)
}

// StatusHandler serves the operational dashboard: store totals, poller
// cursor position and scheduler metrics.
type StatusHandler struct {
	profiles  profile.Repository
	schedules schedule.Repository
	messages  MessageCounter
	poller    messenger.Service
	sweeper   scheduler.Scheduler
	logger    *logger.Logger
	startedAt time.Time
}

func NewStatusHandler(
	profiles profile.Repository,
	schedules schedule.Repository,
	messages MessageCounter,
	poller messenger.Service,
	sweeper scheduler.Scheduler,
	logger *logger.Logger,
) *StatusHandler {
	return &StatusHandler{
		profiles:  profiles,
		schedules: schedules,
		messages:  messages,
		poller:    poller,
		sweeper:   sweeper,
		logger:    logger,
		startedAt: time.Now(),
	}
}

func (h *StatusHandler) Status(c *gin.Context) {
	userCount, err := h.profiles.Count()
	if err != nil {
		h.logger.Error("Profile count failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "store unavailable"})
		return
	}

	activeSchedules, totalSchedules, err := h.schedules.Counts()
	if err != nil {
		h.logger.Error("Schedule count failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "store unavailable"})
		return
	}

	inbound, outbound, err := h.messages.Counts()
	if err != nil {
		h.logger.Error("Message count failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "store unavailable"})
		return
	}

	schedulerStatus := gin.H{"running": false}
	if h.sweeper != nil {
		schedulerStatus = gin.H{
			"running": h.sweeper.IsRunning(),
			"metrics": h.sweeper.GetMetrics().GetMetricsSummary(),
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"service": "weatherbot-api",
		"uptime":  time.Since(h.startedAt).Round(time.Second).String(),
		"users":   userCount,
		"schedules": gin.H{
			"active": activeSchedules,
			"total":  totalSchedules,
		},
		"messages": gin.H{
			"inbound":  inbound,
			"outbound": outbound,
		},
		"poller": gin.H{
			"running": h.poller.IsRunning(),
			"cursor":  h.poller.CursorPosition(),
		},
		"scheduler": schedulerStatus,
	})
}
