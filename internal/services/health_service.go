package services

import (
	"time"

	"perobatch/pkg/contracts"
)

// HealthStatus is the response body of the health endpoint.
type HealthStatus struct {
	Status  string  `json:"status"`
	Version string  `json:"version"`
	Uptime  float64 `json:"uptime_seconds"`
}

// HealthService reports liveness of the web surface.
type HealthService struct {
	startedAt time.Time
}

// NewHealthService creates a health service.
func NewHealthService() *HealthService {
	return &HealthService{startedAt: time.Now()}
}

// Status returns the current health snapshot.
func (s *HealthService) Status() HealthStatus {
	return HealthStatus{
		Status:  "ok",
		Version: contracts.Version,
		Uptime:  time.Since(s.startedAt).Seconds(),
	}
}
