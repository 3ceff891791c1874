package http

import (
	"net/http"

	"github.com/go-chi/render"

	"perobatch/internal/services"
	"perobatch/pkg/contracts"
)

// HealthHandler serves the liveness endpoint.
type HealthHandler struct {
	service *services.HealthService
}

// NewHealthHandler creates a health handler.
func NewHealthHandler(service *services.HealthService) *HealthHandler {
	return &HealthHandler{service: service}
}

// Health handles GET /healthz.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.service.Status())
}

// Version handles GET /version.
func (h *HealthHandler) Version(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, contracts.GetVersionInfo())
}
