package openrouter

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	openai "github.com/sashabaranov/go-openai"

	"idcard-extractor/internal/common"
	"idcard-extractor/internal/llm"
)

// Config for the OpenRouter client.
type Config struct {
	APIKey  string        // if empty, falls back to env OPENROUTER_API_KEY
	BaseURL string        // default https://openrouter.ai/api/v1
	Referer string        // sent as HTTP-Referer (OpenRouter app attribution)
	Title   string        // sent as X-Title
	Timeout time.Duration // http client timeout
}

// Client implements llm.Invoker against the OpenRouter chat/completions API,
// which speaks the OpenAI wire format.
type Client struct {
	cfg    Config
	api    *openai.Client
	logger *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("OPENROUTER_API_KEY")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://openrouter.ai/api/v1"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	oc := openai.DefaultConfig(cfg.APIKey)
	oc.BaseURL = cfg.BaseURL
	oc.HTTPClient = &http.Client{
		Timeout: cfg.Timeout,
		Transport: &attributionTransport{
			referer: cfg.Referer,
			title:   cfg.Title,
			next:    http.DefaultTransport,
		},
	}

	return &Client{
		cfg:    cfg,
		api:    openai.NewClientWithConfig(oc),
		logger: logger,
	}
}

// Invoke sends one user message (prompt plus optional image part) and an
// optional system instruction. All failures are classified as
// common.ErrInvocation; no retries happen here.
func (c *Client) Invoke(ctx context.Context, req llm.Request) (llm.Response, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.logger.Info("invoker.request",
		"req_id", rid,
		"model", req.Model,
		"prompt_len", len(req.Prompt),
		"has_image", req.ImageDataURL != "",
		"has_system", req.System != "",
	)

	var messages []openai.ChatCompletionMessage
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	if req.ImageDataURL != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role: openai.ChatMessageRoleUser,
			MultiContent: []openai.ChatMessagePart{
				{Type: openai.ChatMessagePartTypeText, Text: req.Prompt},
				{
					Type:     openai.ChatMessagePartTypeImageURL,
					ImageURL: &openai.ChatMessageImageURL{URL: req.ImageDataURL},
				},
			},
		})
	} else {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleUser,
			Content: req.Prompt,
		})
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    req.Model,
		Messages: messages,
	})
	if err != nil {
		c.logger.Error("invoker.error",
			"req_id", rid, "model", req.Model, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.Response{}, fmt.Errorf("%w: %v", common.ErrInvocation, err)
	}
	if len(resp.Choices) == 0 {
		c.logger.Error("invoker.no_choices",
			"req_id", rid, "model", req.Model,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.Response{}, fmt.Errorf("%w: no choices in response", common.ErrInvocation)
	}

	out := llm.Response{
		Text:  resp.Choices[0].Message.Content,
		Model: resp.Model,
		Usage: llm.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}

	c.logger.Info("invoker.response",
		"req_id", rid,
		"model_used", out.Model,
		"text_len", len(out.Text),
		"total_tokens", out.Usage.TotalTokens,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}

// attributionTransport adds the OpenRouter attribution headers to every
// outgoing request.
type attributionTransport struct {
	referer string
	title   string
	next    http.RoundTripper
}

func (t *attributionTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.referer != "" {
		req.Header.Set("HTTP-Referer", t.referer)
	}
	if t.title != "" {
		req.Header.Set("X-Title", t.title)
	}
	return t.next.RoundTrip(req)
}
