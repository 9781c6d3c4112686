package models

import (
	"github.com/avvvet/travelbuddy-intent/internal/nlu"
	"github.com/avvvet/travelbuddy-intent/internal/rag"
)

// NATS chat request from the backend
type ChatRequest struct {
	UserID   string `json:"user_id" validate:"required,max=128"`
	Message  string `json:"message" validate:"required,max=2000"`
	Language string `json:"language,omitempty" validate:"omitempty,oneof=ar en"`
}

// NATS chat response to the backend
type ChatResponse struct {
	RequestID    string        `json:"request_id"`
	UserID       string        `json:"user_id"`
	Status       string        `json:"status"` // "OK", "ERROR"
	Message      string        `json:"message"`
	Language     string        `json:"language,omitempty"`
	Intent       string        `json:"intent,omitempty"`
	Confidence   float64       `json:"confidence,omitempty"`
	Entities     *nlu.Entities `json:"entities,omitempty"`
	Suggestions  []string      `json:"suggestions,omitempty"`
	Step         string        `json:"step,omitempty"`
	StepChanged  bool          `json:"step_changed,omitempty"`
	Hotels       []rag.Hotel   `json:"hotels,omitempty"`
	Sources      []string      `json:"sources,omitempty"`
	ErrorCode    *string       `json:"error_code,omitempty"`
	ErrorMessage *string       `json:"error_message,omitempty"`
}

// ClearRequest asks the service to forget everything about a user.
type ClearRequest struct {
	UserID string `json:"user_id" validate:"required"`
}

type ClearResponse struct {
	UserID       string  `json:"user_id"`
	Status       string  `json:"status"`
	ErrorCode    *string `json:"error_code,omitempty"`
	ErrorMessage *string `json:"error_message,omitempty"`
}

// Status constants
const (
	StatusOK    = "OK"
	StatusError = "ERROR"
)

// Error codes
const (
	ErrorParseError     = "PARSE_ERROR"
	ErrorInvalidRequest = "INVALID_REQUEST"
	ErrorLLMFailed      = "LLM_API_FAILED"
	ErrorRetrieval      = "RETRIEVAL_FAILED"
	ErrorSessionStore   = "SESSION_STORE_FAILED"
)
