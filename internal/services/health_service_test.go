package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"perobatch/pkg/contracts"
)

func TestHealthStatus(t *testing.T) {
	status := NewHealthService().Status()

	assert.Equal(t, "ok", status.Status)
	assert.Equal(t, contracts.Version, status.Version)
	assert.GreaterOrEqual(t, status.Uptime, float64(0))
}
