// Package glm calls the ZhipuAI GLM chat completions API for narrative
// generation.
package glm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/ainishanov/medicod-analytics-bot/internal/domain"
	"github.com/ainishanov/medicod-analytics-bot/internal/ports"
	"github.com/ainishanov/medicod-analytics-bot/pkg/config"
)

type Client struct {
	apiKey      string
	baseURL     string
	model       string
	maxTokens   int
	temperature float64
	httpClient  *http.Client
	log         *zap.Logger
}

func NewClient(cfg config.AIConfig, log *zap.Logger) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://open.bigmodel.cn/api/paas/v4"
	}
	return &Client{
		apiKey:      cfg.APIKey,
		baseURL:     baseURL,
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		log:         log,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

// Complete runs one chat completion. A missing API key or any transport
// failure surfaces as ErrNarrativeUnavailable so callers can degrade to a
// report without commentary.
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string) (*ports.NarrativeResult, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("glm: API key not configured: %w", domain.ErrNarrativeUnavailable)
	}

	reqBody := chatRequest{
		Model:       c.model,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("glm: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("glm: create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("glm: send request: %v: %w", err, domain.ErrNarrativeUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("glm: API error status %d: %s: %w", resp.StatusCode, string(body), domain.ErrNarrativeUnavailable)
	}

	var result chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("glm: decode response: %w", err)
	}

	if len(result.Choices) == 0 {
		return nil, fmt.Errorf("glm: no choices returned: %w", domain.ErrNarrativeUnavailable)
	}

	model := result.Model
	if model == "" {
		model = c.model
	}

	c.log.Info("GLM completion finished",
		zap.String("model", model),
		zap.Int("prompt_tokens", result.Usage.PromptTokens),
		zap.Int("completion_tokens", result.Usage.CompletionTokens),
	)

	return &ports.NarrativeResult{
		Text:             result.Choices[0].Message.Content,
		Model:            model,
		PromptTokens:     result.Usage.PromptTokens,
		CompletionTokens: result.Usage.CompletionTokens,
	}, nil
}
