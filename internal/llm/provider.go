package llm

import (
	"context"
	"errors"
)

// ErrNoResponse is returned when the model produced neither text nor a
// function call.
var ErrNoResponse = errors.New("llm returned no content")

// Roles accepted by providers
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one entry of the conversation sent to the model.
type Message struct {
	Role    string
	Content string
}

// FunctionCall is a tool invocation requested by the model.
type FunctionCall struct {
	Name      string                 `json:"name"`
	Arguments map[string]interface{} `json:"arguments"`
}

// Reply holds either text or a function call.
type Reply struct {
	Text         string
	FunctionCall *FunctionCall
}

// Provider defines the interface for LLM providers
type Provider interface {
	Generate(ctx context.Context, messages []Message) (*Reply, error)
}

// Function names the model may call
const (
	FuncSearchHotels       = "search_hotels"
	FuncGetDestinationInfo = "get_destination_info"
)
