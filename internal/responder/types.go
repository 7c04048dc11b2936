package responder

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyEntry is returned when the journal entry is blank.
	ErrEmptyEntry = errors.New("journal entry is required")
	// ErrMissingAPIKey is returned when no API key is configured.
	ErrMissingAPIKey = errors.New("API key is not configured")
	// ErrMalformedResponse is returned when the model output has an unexpected shape.
	ErrMalformedResponse = errors.New("unexpected response format from AI model")
)

// UpstreamError is returned when the generation endpoint answers with a
// non-2xx status.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream status %d: %s", e.StatusCode, e.Body)
}

// GenerateRequest is the body sent to the text-generation endpoint.
type GenerateRequest struct {
	Inputs     string             `json:"inputs"`
	Parameters GenerateParameters `json:"parameters"`
}

// GenerateParameters are the sampling settings for a generation request.
type GenerateParameters struct {
	MaxNewTokens int     `json:"max_new_tokens"`
	Temperature  float64 `json:"temperature"`
	TopP         float64 `json:"top_p"`
	DoSample     bool    `json:"do_sample"`
}

// DefaultParameters are the sampling settings used for journal reflections.
var DefaultParameters = GenerateParameters{
	MaxNewTokens: 100,
	Temperature:  0.7,
	TopP:         0.9,
	DoSample:     true,
}
