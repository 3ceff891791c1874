// Package http implements the HTTP transport of the ingestion service.
package http

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "perobatch/internal/errors"
	"perobatch/internal/services"
)

// PlanHandler serves experiment-plan uploads and ingestion summaries.
type PlanHandler struct {
	service        *services.IngestService
	uploadsDir     string
	maxUploadBytes int64
	logger         *slog.Logger
	errorHandler   *apierrors.ErrorHandler
}

// NewPlanHandler creates a plan handler.
func NewPlanHandler(service *services.IngestService, uploadsDir string, maxUploadBytes int64, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *PlanHandler {
	return &PlanHandler{
		service:        service,
		uploadsDir:     uploadsDir,
		maxUploadBytes: maxUploadBytes,
		logger:         logger.With(slog.String("component", "plan_handler")),
		errorHandler:   errorHandler,
	}
}

// Routes returns the plan routes.
func (h *PlanHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Post("/", h.UploadPlan)
	r.Get("/", h.ListPlans)
	r.Get("/{uploadID}", h.GetPlan)

	return r
}

// UploadPlan handles POST /api/plans: a multipart upload of one .xlsx
// experiment plan, ingested synchronously.
func (h *PlanHandler) UploadPlan(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.NewProblemDetails(
			http.StatusRequestEntityTooLarge,
			apierrors.TypePayloadTooLarge,
			"Upload Too Large",
			fmt.Sprintf("Plan uploads are limited to %d bytes", h.maxUploadBytes),
			r.URL.Path,
		))
		return
	}

	file, header, err := r.FormFile("plan")
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.NewProblemDetails(
			http.StatusBadRequest,
			apierrors.TypeValidation,
			"Missing Plan File",
			`The multipart field "plan" is required`,
			r.URL.Path,
		))
		return
	}
	defer file.Close()

	if !strings.HasSuffix(strings.ToLower(header.Filename), ".xlsx") {
		h.errorHandler.HandleError(w, r, apierrors.NewProblemDetails(
			http.StatusBadRequest,
			apierrors.TypeValidation,
			"Unsupported File Type",
			"Experiment plans must be .xlsx workbooks",
			r.URL.Path,
		))
		return
	}

	path, err := h.savePlan(header.Filename, file)
	if err != nil {
		h.errorHandler.HandleError(w, r, fmt.Errorf("failed to store upload: %w", err))
		return
	}

	summary, err := h.service.IngestFile(r.Context(), path)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, summary)
}

// GetPlan handles GET /api/plans/{uploadID}.
func (h *PlanHandler) GetPlan(w http.ResponseWriter, r *http.Request) {
	uploadID := chi.URLParam(r, "uploadID")
	summary, err := h.service.Summary(uploadID)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, summary)
}

// ListPlans handles GET /api/plans.
func (h *PlanHandler) ListPlans(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.service.Summaries())
}

// savePlan writes the uploaded workbook into the uploads directory,
// keeping the original base name.
func (h *PlanHandler) savePlan(filename string, src io.Reader) (string, error) {
	if err := os.MkdirAll(h.uploadsDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create uploads directory: %w", err)
	}
	path := filepath.Join(h.uploadsDir, filepath.Base(filename))
	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}
	defer dst.Close()
	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("failed to write upload file: %w", err)
	}
	return path, nil
}
