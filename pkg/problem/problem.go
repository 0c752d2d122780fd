package problem

import (
	"encoding/json"
	"net/http"
	"strconv"
)

const (
	ContentType = "application/problem+json"
	BaseURI     = "http://localhost:8080/problems"
)

// Problem represents an RFC 9457 problem+json response
type Problem struct {
	Type   string       `json:"type"`
	Title  string       `json:"title"`
	Status int          `json:"status"`
	Detail string       `json:"detail,omitempty"`
	Errors []FieldError `json:"errors,omitempty"`

	headers map[string]string
}

// FieldError represents a validation error for a specific field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// New creates a new Problem
func New(status int, problemType, title, detail string) *Problem {
	return &Problem{
		Type:   BaseURI + "/" + problemType,
		Title:  title,
		Status: status,
		Detail: detail,
	}
}

// WithErrors adds field errors to the problem
func (p *Problem) WithErrors(errors []FieldError) *Problem {
	p.Errors = errors
	return p
}

// WithHeader attaches an extra response header written alongside the problem
func (p *Problem) WithHeader(key, value string) *Problem {
	if p.headers == nil {
		p.headers = make(map[string]string)
	}
	p.headers[key] = value
	return p
}

// Write writes the problem to the response
func (p *Problem) Write(w http.ResponseWriter) {
	w.Header().Set("Content-Type", ContentType)
	for k, v := range p.headers {
		w.Header().Set(k, v)
	}
	w.WriteHeader(p.Status)
	json.NewEncoder(w).Encode(p)
}

// Common problem constructors

func NotFound(detail string) *Problem {
	return New(http.StatusNotFound, "not-found", "Not Found", detail)
}

func BadRequest(detail string) *Problem {
	return New(http.StatusBadRequest, "bad-request", "Bad Request", detail)
}

// ValidationError renders field-level failures as a 400 so clients see one
// status for every malformed request, parse failure or not.
func ValidationError(detail string, errors []FieldError) *Problem {
	return New(http.StatusBadRequest, "validation-error", "Validation Error", detail).WithErrors(errors)
}

func Conflict(detail string) *Problem {
	return New(http.StatusConflict, "conflict", "Conflict", detail)
}

func InternalError(detail string) *Problem {
	return New(http.StatusInternalServerError, "internal-error", "Internal Server Error", detail)
}

// TooManyRequests builds a 429 with Retry-After and rate limit headers.
func TooManyRequests(detail string, limit, remaining, retryAfterSeconds int) *Problem {
	return New(http.StatusTooManyRequests, "rate-limited", "Too Many Requests", detail).
		WithHeader("Retry-After", strconv.Itoa(retryAfterSeconds)).
		WithHeader("X-RateLimit-Limit", strconv.Itoa(limit)).
		WithHeader("X-RateLimit-Remaining", strconv.Itoa(remaining))
}

func BadGateway(detail string) *Problem {
	return New(http.StatusBadGateway, "upstream-error", "Bad Gateway", detail)
}
