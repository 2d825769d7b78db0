// Package inference talks to the host's OpenAI-compatible model endpoint
// (LM Studio and friends). It is the only outbound call with an explicit
// timeout: a hung backend must not be able to hang the room.
package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"golang.org/x/time/rate"

	"github.com/promptroom/api/domain/model"
	"github.com/promptroom/api/infrastructure/config"
)

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Request struct {
	Endpoint  string
	Token     string
	ModelID   string
	Messages  []ChatMessage
	MaxTokens int64
}

type Result struct {
	Text            string
	TokenUsage      int64
	TokensPerSecond float64
}

type Client struct {
	httpClient  *http.Client
	limiter     *rate.Limiter
	temperature float64
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Inference.Timeout},
		limiter: rate.NewLimiter(
			rate.Limit(cfg.Inference.RequestsPerSec),
			cfg.Inference.RequestBurst,
		),
		temperature: cfg.Inference.Temperature,
	}
}

type completionRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	MaxTokens   int64         `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Output   json.RawMessage `json:"output"`
	Response string          `json:"response"`
	Usage    struct {
		CompletionTokens int64   `json:"completion_tokens"`
		TokensPerSecond  float64 `json:"tokens_per_second"`
	} `json:"usage"`
	Stats struct {
		TotalOutputTokens int64   `json:"total_output_tokens"`
		OutputTokens      int64   `json:"output_tokens"`
		TokensPerSecond   float64 `json:"tokens_per_second"`
	} `json:"stats"`
}

// Complete forwards one chat completion to the host's endpoint. Any
// transport failure, non-2xx status, or response without extractable text
// comes back as model.ErrUpstreamUnavailable; the caller treats them all the
// same way.
func (c *Client) Complete(ctx context.Context, req Request) (*Result, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrUpstreamUnavailable, err)
	}

	body, err := json.Marshal(completionRequest{
		Model:       req.ModelID,
		Messages:    req.Messages,
		MaxTokens:   req.MaxTokens,
		Temperature: c.temperature,
	})
	if err != nil {
		return nil, err
	}

	endpoint := normalizeBaseURL(req.Endpoint) + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if req.Token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.Token)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: endpoint responded with %d", model.ErrUpstreamUnavailable, resp.StatusCode)
	}

	var payload completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrUpstreamUnavailable, err)
	}

	text := stripThinkingSegments(extractText(&payload))
	if text == "" {
		return nil, fmt.Errorf("%w: response has no content", model.ErrUpstreamUnavailable)
	}

	return &Result{
		Text:            text,
		TokenUsage:      extractTokenUsage(&payload),
		TokensPerSecond: extractTokensPerSecond(&payload),
	}, nil
}

func extractText(payload *completionResponse) string {
	if len(payload.Output) > 0 {
		var s string
		if err := json.Unmarshal(payload.Output, &s); err == nil {
			return strings.TrimSpace(s)
		}
		// Structured output gets passed through verbatim.
		return strings.TrimSpace(string(payload.Output))
	}
	if payload.Response != "" {
		return strings.TrimSpace(payload.Response)
	}
	if len(payload.Choices) > 0 {
		return strings.TrimSpace(payload.Choices[0].Message.Content)
	}
	return ""
}

func extractTokenUsage(payload *completionResponse) int64 {
	switch {
	case payload.Usage.CompletionTokens > 0:
		return payload.Usage.CompletionTokens
	case payload.Stats.TotalOutputTokens > 0:
		return payload.Stats.TotalOutputTokens
	default:
		return payload.Stats.OutputTokens
	}
}

func extractTokensPerSecond(payload *completionResponse) float64 {
	if payload.Stats.TokensPerSecond > 0 {
		return payload.Stats.TokensPerSecond
	}
	return payload.Usage.TokensPerSecond
}

var thinkBlockRe = regexp.MustCompile(`(?is)<think>.*?</think>`)
var thinkTagRe = regexp.MustCompile(`(?i)</?think>`)

// stripThinkingSegments removes reasoning-model scratchpad blocks before the
// text reaches the room. If stripping would leave nothing, the original text
// wins over an empty message.
func stripThinkingSegments(input string) string {
	if !strings.Contains(input, "<think") {
		return input
	}

	cleaned := thinkTagRe.ReplaceAllString(thinkBlockRe.ReplaceAllString(input, ""), "")
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return input
	}
	return cleaned
}

func normalizeBaseURL(input string) string {
	return strings.TrimRight(strings.TrimSpace(input), "/")
}
