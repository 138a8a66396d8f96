package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"

	domain "github.com/bryanwahyu/resume-analyzer/internal/domain/analysis"
	"github.com/bryanwahyu/resume-analyzer/internal/infra/ai/prompt"
)

// Model and sampling parameters used for every request.
const (
	DefaultModel = "deepseek-r1-distill-llama-70b"
	maxTokens    = 4096
	temperature  = 0.6
	topP         = 0.95
)

// Client talks to any OpenAI-compatible chat completions endpoint (Groq by default).
type Client struct {
	*openai.Client
	Model string
}

// NewClient builds a client for baseURL, e.g. https://api.groq.com/openai/v1.
// A full ".../chat/completions" URL is accepted too.
func NewClient(apiKey, baseURL string) *Client {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = normalizeBaseURL(baseURL)
	return &Client{Client: openai.NewClientWithConfig(cfg), Model: DefaultModel}
}

func normalizeBaseURL(u string) string {
	u = strings.TrimRight(strings.TrimSpace(u), "/")
	return strings.TrimSuffix(u, "/chat/completions")
}

// Analyze sends one non-streaming completion request and returns the reply text.
func (c *Client) Analyze(ctx context.Context, resumeText, jobDescription string) (string, error) {
	model := c.Model
	if model == "" {
		model = DefaultModel
	}
	req := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt.BuildAnalysis(resumeText, jobDescription)},
		},
		Temperature: temperature,
		TopP:        topP,
		MaxTokens:   maxTokens,
		Stream:      false,
	}

	resp, err := c.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", transportError(err)
	}
	if len(resp.Choices) == 0 {
		return "", &domain.TransportError{Err: errors.New("ai response contained no choices")}
	}

	return resp.Choices[0].Message.Content, nil
}

func transportError(err error) error {
	status := 0
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}
	if status == http.StatusTooManyRequests {
		err = fmt.Errorf("%w: %v", domain.ErrQuotaExceeded, err)
	} else {
		err = fmt.Errorf("failed to create chat completion: %w", err)
	}
	return &domain.TransportError{StatusCode: status, Err: err}
}
