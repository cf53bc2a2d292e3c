package mock

import (
	"context"

	"github.com/zflorman/Hillpulse-v3/internal/llm"
)

// Client replays a scripted sequence of errors and responses. Call n consumes
// Errs[n] when present (a nil entry means success) and Responses[n] when
// present, falling back to the last response.
type Client struct {
	Responses []llm.ChatResponse
	Errs      []error
	Calls     []llm.ChatRequest
}

func (c *Client) ChatCompletion(ctx context.Context, request llm.ChatRequest) (llm.ChatResponse, error) {
	_ = ctx
	n := len(c.Calls)
	c.Calls = append(c.Calls, request)
	if n < len(c.Errs) && c.Errs[n] != nil {
		return llm.ChatResponse{}, c.Errs[n]
	}
	if len(c.Responses) == 0 {
		return llm.ChatResponse{}, nil
	}
	if n < len(c.Responses) {
		return c.Responses[n], nil
	}
	return c.Responses[len(c.Responses)-1], nil
}
