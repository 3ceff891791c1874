// Package errors provides RFC 7807 problem-details responses for the
// HTTP surface and the sentinel errors shared across services.
package errors

import (
	"encoding/json"
	"errors"
)

// Problem type URIs following RFC 7807.
const (
	TypeValidation      = "/errors/validation"
	TypeNotFound        = "/errors/not-found"
	TypePayloadTooLarge = "/errors/payload-too-large"
	TypeRateLimit       = "/errors/rate-limit"
	TypeInternal        = "/errors/internal"
	TypeTimeout         = "/errors/timeout"
	TypePlanInvalid     = "/errors/plan/invalid"
	TypePlanNotFound    = "/errors/plan/not-found"
)

// Sentinel errors used across services.
var (
	// ErrPlanNotFound marks lookups of unknown ingestion IDs.
	ErrPlanNotFound = errors.New("plan not found")
	// ErrPlanInvalid marks plans the parser rejected.
	ErrPlanInvalid = errors.New("plan invalid")
)

// ProblemDetails is the RFC 7807 response body.
type ProblemDetails struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`

	Extensions map[string]interface{} `json:"-"`
}

// NewProblemDetails creates a problem-details response.
func NewProblemDetails(status int, problemType, title, detail, instance string) *ProblemDetails {
	return &ProblemDetails{
		Type:     problemType,
		Title:    title,
		Status:   status,
		Detail:   detail,
		Instance: instance,
	}
}

// WithExtension attaches an extension member to the problem.
func (pd *ProblemDetails) WithExtension(key string, value interface{}) *ProblemDetails {
	if pd.Extensions == nil {
		pd.Extensions = make(map[string]interface{})
	}
	pd.Extensions[key] = value
	return pd
}

// MarshalJSON includes the extension members alongside the standard
// fields.
func (pd *ProblemDetails) MarshalJSON() ([]byte, error) {
	data := make(map[string]interface{})
	data["type"] = pd.Type
	data["title"] = pd.Title
	data["status"] = pd.Status
	if pd.Detail != "" {
		data["detail"] = pd.Detail
	}
	if pd.Instance != "" {
		data["instance"] = pd.Instance
	}
	for k, v := range pd.Extensions {
		data[k] = v
	}
	return json.Marshal(data)
}
