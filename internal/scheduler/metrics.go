package scheduler

import (
	"sync"
	"time"
)

// SchedulerMetrics tracks performance and health metrics for the scheduler
type SchedulerMetrics struct {
	mu               sync.RWMutex
	EntriesFired     int64
	SweepsCompleted  int64
	ProcessingErrors int64
	AverageSweepTime time.Duration
	LastSweepTime    time.Time
	totalSweepTime   time.Duration
}

// HealthStatus represents the health status of the scheduler
type HealthStatus struct {
	IsHealthy        bool      `json:"is_healthy"`
	LastSweepTime    time.Time `json:"last_sweep_time"`
	ProcessingErrors int64     `json:"processing_errors"`
	AverageSweepTime string    `json:"average_sweep_time"`
	ErrorRate        float64   `json:"error_rate"`
}

// MetricsSummary provides a summary of scheduler metrics
type MetricsSummary struct {
	EntriesFired     int64     `json:"entries_fired"`
	SweepsCompleted  int64     `json:"sweeps_completed"`
	ProcessingErrors int64     `json:"processing_errors"`
	AverageSweepTime string    `json:"average_sweep_time"`
	LastSweepTime    time.Time `json:"last_sweep_time"`
	ErrorRate        float64   `json:"error_rate_percentage"`
}

// NewSchedulerMetrics creates a new metrics instance
func NewSchedulerMetrics() *SchedulerMetrics {
	return &SchedulerMetrics{}
}

// RecordSweep records a completed sweep cycle with its duration
func (m *SchedulerMetrics) RecordSweep(duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SweepsCompleted++
	m.LastSweepTime = time.Now()
	m.totalSweepTime += duration
	m.AverageSweepTime = m.totalSweepTime / time.Duration(m.SweepsCompleted)
}

// RecordEntryFired increments the fired-entry counter
func (m *SchedulerMetrics) RecordEntryFired() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.EntriesFired++
}

// RecordProcessingError increments the error counter
func (m *SchedulerMetrics) RecordProcessingError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ProcessingErrors++
}

// IsHealthy determines if the scheduler is healthy based on metrics
func (m *SchedulerMetrics) IsHealthy() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.isHealthyLocked()
}

func (m *SchedulerMetrics) isHealthyLocked() bool {
	// Healthy when a sweep ran within the last 5 minutes and the error
	// rate stays below 50%.
	recentSweep := time.Since(m.LastSweepTime) < 5*time.Minute
	lowErrorRate := m.calculateErrorRate() < 0.5

	return recentSweep && lowErrorRate
}

// GetHealthStatus returns detailed health information
func (m *SchedulerMetrics) GetHealthStatus() HealthStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return HealthStatus{
		IsHealthy:        m.isHealthyLocked(),
		LastSweepTime:    m.LastSweepTime,
		ProcessingErrors: m.ProcessingErrors,
		AverageSweepTime: m.AverageSweepTime.String(),
		ErrorRate:        m.calculateErrorRate(),
	}
}

// GetMetricsSummary returns a comprehensive metrics summary
func (m *SchedulerMetrics) GetMetricsSummary() MetricsSummary {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return MetricsSummary{
		EntriesFired:     m.EntriesFired,
		SweepsCompleted:  m.SweepsCompleted,
		ProcessingErrors: m.ProcessingErrors,
		AverageSweepTime: m.AverageSweepTime.String(),
		LastSweepTime:    m.LastSweepTime,
		ErrorRate:        m.calculateErrorRate() * 100,
	}
}

// calculateErrorRate computes the error rate as a fraction of all outcomes
func (m *SchedulerMetrics) calculateErrorRate() float64 {
	total := m.EntriesFired + m.ProcessingErrors
	if total == 0 {
		return 0.0
	}
	return float64(m.ProcessingErrors) / float64(total)
}

// Reset resets all metrics to zero
func (m *SchedulerMetrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.EntriesFired = 0
	m.SweepsCompleted = 0
	m.ProcessingErrors = 0
	m.AverageSweepTime = 0
	m.LastSweepTime = time.Time{}
	m.totalSweepTime = 0
}
