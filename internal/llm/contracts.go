package llm

import "context"

// Request is one inference invocation: exactly one user-role message (prompt
// text plus optional image) and at most one system-role instruction.
type Request struct {
	Prompt       string
	ImageDataURL string // optional; data URL form
	Model        string
	System       string // optional system instruction
}

// Usage carries the token accounting reported by the remote model.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is the free-form completion plus metadata.
type Response struct {
	Text  string
	Model string // model that actually served the request
	Usage Usage
}

// Invoker is the interface the pipeline depends on. Transport, retries, and
// timeouts are the implementation's concern; the pipeline treats any failure
// as a single opaque invocation error.
type Invoker interface {
	Invoke(ctx context.Context, req Request) (Response, error)
}
