package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"weatherbot-api/internal/common"
	"weatherbot-api/internal/profile"
	"weatherbot-api/internal/schedule"
	"weatherbot-api/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCounter struct {
	inbound  int64
	outbound int64
	err      error
}

func (s *stubCounter) Counts() (int64, int64, error) {
	return s.inbound, s.outbound, s.err
}

type stubPoller struct {
	running bool
	cursor  int64
}

func (s *stubPoller) Start(ctx context.Context) error { return nil }
func (s *stubPoller) Stop() error                     { return nil }
func (s *stubPoller) IsRunning() bool                 { return s.running }
func (s *stubPoller) CursorPosition() int64           { return s.cursor }

func TestStatusHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	profiles := profile.NewMockRepository()
	require.NoError(t, profiles.Put(profile.NewUserProfile("user-1")))
	require.NoError(t, profiles.Put(profile.NewUserProfile("user-2")))

	schedules := schedule.NewMockRepository()
	require.NoError(t, schedules.Create(schedule.NewEntry("user-1", 7, 0, common.RecurrenceDaily)))

	handler := NewStatusHandler(
		profiles,
		schedules,
		&stubCounter{inbound: 10, outbound: 8},
		&stubPoller{running: true, cursor: 10},
		nil,
		logger.NewWithLevel("error"),
	)

	router := gin.New()
	router.GET("/api/v1/status", handler.Status)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Service   string `json:"service"`
		Users     int64  `json:"users"`
		Schedules struct {
			Active int64 `json:"active"`
			Total  int64 `json:"total"`
		} `json:"schedules"`
		Messages struct {
			Inbound  int64 `json:"inbound"`
			Outbound int64 `json:"outbound"`
		} `json:"messages"`
		Poller struct {
			Running bool  `json:"running"`
			Cursor  int64 `json:"cursor"`
		} `json:"poller"`
		Scheduler struct {
			Running bool `json:"running"`
		} `json:"scheduler"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	assert.Equal(t, "weatherbot-api", body.Service)
	assert.EqualValues(t, 2, body.Users)
	assert.EqualValues(t, 1, body.Schedules.Active)
	assert.EqualValues(t, 1, body.Schedules.Total)
	assert.EqualValues(t, 10, body.Messages.Inbound)
	assert.EqualValues(t, 8, body.Messages.Outbound)
	assert.True(t, body.Poller.Running)
	assert.EqualValues(t, 10, body.Poller.Cursor)
	assert.False(t, body.Scheduler.Running, "disabled scheduler reports not running")
}

func TestStatusHandler_StoreFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)

	handler := NewStatusHandler(
		profile.NewMockRepository(),
		schedule.NewMockRepository(),
		&stubCounter{err: assert.AnError},
		&stubPoller{},
		nil,
		logger.NewWithLevel("error"),
	)

	router := gin.New()
	router.GET("/api/v1/status", handler.Status)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
