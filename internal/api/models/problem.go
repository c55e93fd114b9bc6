package models

import (
	"encoding/json"
	"net/http"
)

// Problem represents an RFC7807 error response, extended with the success
// flag and message that every GreenPath response carries.
type Problem struct {
	// Type is a URI reference that identifies the problem type.
	Type string `json:"type"`

	// Title is a short, human-readable summary of the problem type.
	Title string `json:"title"`

	// Status is the HTTP status code for this occurrence of the problem.
	Status int `json:"status"`

	// Detail is a human-readable explanation specific to this occurrence.
	Detail string `json:"detail,omitempty"`

	// Instance is a URI reference that identifies the specific occurrence.
	Instance string `json:"instance,omitempty"`

	// TraceID is the request trace identifier for debugging.
	TraceID string `json:"traceId"`

	// Success is always false.
	Success bool `json:"success"`

	// Message repeats Detail for clients that only read message.
	Message string `json:"message"`
}

// ProblemType constants for standard error types.
const (
	ProblemTypeValidation      = "https://greenpath.dev/problems/validation-error"
	ProblemTypeNotFound        = "https://greenpath.dev/problems/not-found"
	ProblemTypeTooManyRequests = "https://greenpath.dev/problems/too-many-requests"
	ProblemTypeInternal        = "https://greenpath.dev/problems/internal-error"
	ProblemTypeProvider        = "https://greenpath.dev/problems/provider-unavailable"
	ProblemTypeConfiguration   = "https://greenpath.dev/problems/configuration-error"
	ProblemTypeUnavailable     = "https://greenpath.dev/problems/service-unavailable"
	ProblemTypeTLSRequired     = "https://greenpath.dev/problems/tls-required"
)

// NewProblem creates a new Problem with the given parameters.
func NewProblem(problemType, title string, status int, traceID string) *Problem {
	return &Problem{
		Type:    problemType,
		Title:   title,
		Status:  status,
		TraceID: traceID,
	}
}

// WithDetail sets the detail and message of the Problem.
func (p *Problem) WithDetail(detail string) *Problem {
	p.Detail = detail
	p.Message = detail
	return p
}

// WithInstance adds the request instance URI to the Problem.
func (p *Problem) WithInstance(instance string) *Problem {
	p.Instance = instance
	return p
}

// Write writes the Problem as JSON to the ResponseWriter.
func (p *Problem) Write(w http.ResponseWriter) {
	if p.Message == "" {
		p.Message = p.Title
	}
	w.Header().Set("Content-Type", "application/problem+json")
	if p.TraceID != "" {
		w.Header().Set("X-Request-Id", p.TraceID)
	}
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}

// NewBadRequest creates a 400 Bad Request problem.
func NewBadRequest(traceID, detail string) *Problem {
	return NewProblem(ProblemTypeValidation, "Validation error", http.StatusBadRequest, traceID).WithDetail(detail)
}

// NewNotFound creates a 404 Not Found problem.
func NewNotFound(traceID, detail string) *Problem {
	return NewProblem(ProblemTypeNotFound, "Not found", http.StatusNotFound, traceID).WithDetail(detail)
}

// NewTooManyRequests creates a 429 Too Many Requests problem.
func NewTooManyRequests(traceID, detail string) *Problem {
	return NewProblem(ProblemTypeTooManyRequests, "Too many requests", http.StatusTooManyRequests, traceID).WithDetail(detail)
}

// NewInternalError creates a 500 Internal Server Error problem.
func NewInternalError(traceID, detail string) *Problem {
	return NewProblem(ProblemTypeInternal, "Internal server error", http.StatusInternalServerError, traceID).WithDetail(detail)
}

// NewProviderError creates a 500 problem for an unreachable upstream
// provider.
func NewProviderError(traceID, detail string) *Problem {
	return NewProblem(ProblemTypeProvider, "Provider unavailable", http.StatusInternalServerError, traceID).WithDetail(detail)
}

// NewConfigurationError creates a 500 problem for a missing server setting.
func NewConfigurationError(traceID, detail string) *Problem {
	return NewProblem(ProblemTypeConfiguration, "Configuration error", http.StatusInternalServerError, traceID).WithDetail(detail)
}

// NewServiceUnavailable creates a 503 Service Unavailable problem.
func NewServiceUnavailable(traceID, detail string) *Problem {
	return NewProblem(ProblemTypeUnavailable, "Service unavailable", http.StatusServiceUnavailable, traceID).WithDetail(detail)
}
