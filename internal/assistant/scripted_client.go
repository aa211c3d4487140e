package assistant

import (
	"context"
	"errors"
	"sync"
)

// ScriptedLLMClient replays canned responses in order. It backs keyless
// development mode and deterministic tests.
type ScriptedLLMClient struct {
	mu        sync.Mutex
	responses []LLMResponse
	idx       int
	err       error

	// Requests records every request received, in order.
	Requests []LLMRequest
}

// NewScriptedLLMClient creates a scripted client that cycles through the
// given responses.
func NewScriptedLLMClient(responses ...LLMResponse) *ScriptedLLMClient {
	return &ScriptedLLMClient{responses: responses}
}

// NewFailingLLMClient creates a scripted client whose every call fails.
func NewFailingLLMClient(err error) *ScriptedLLMClient {
	if err == nil {
		err = errors.New("assistant: scripted failure")
	}
	return &ScriptedLLMClient{err: err}
}

func (c *ScriptedLLMClient) Complete(ctx context.Context, req LLMRequest) (LLMResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.Requests = append(c.Requests, req)

	if err := ctx.Err(); err != nil {
		return LLMResponse{}, err
	}
	if c.err != nil {
		return LLMResponse{}, c.err
	}
	if len(c.responses) == 0 {
		return LLMResponse{Text: "Thanks! Let's continue with your booking."}, nil
	}

	resp := c.responses[c.idx%len(c.responses)]
	c.idx++
	return resp, nil
}
