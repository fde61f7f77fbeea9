// Package telegram delivers rendered reports through the Telegram Bot API.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/ainishanov/medicod-analytics-bot/internal/observability/telemetry"
	"github.com/ainishanov/medicod-analytics-bot/pkg/config"
)

// maxMessageLength is the Telegram Bot API limit for one message.
const maxMessageLength = 4096

type Client struct {
	token      string
	baseURL    string
	httpClient *http.Client
	log        *zap.Logger
}

func NewClient(cfg config.TelegramConfig, log *zap.Logger) *Client {
	baseURL := strings.TrimRight(cfg.APIBaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.telegram.org"
	}
	return &Client{
		token:      cfg.BotToken,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        log,
	}
}

type sendMessageRequest struct {
	ChatID                int64  `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// Send delivers an HTML message, splitting it into chunks when it exceeds
// the API's message length limit.
func (c *Client) Send(ctx context.Context, chatID int64, html string) error {
	for _, chunk := range splitMessage(html, maxMessageLength) {
		if err := c.sendOne(ctx, chatID, chunk); err != nil {
			telemetry.TelegramSendsTotal.WithLabelValues("error").Inc()
			return err
		}
	}
	telemetry.TelegramSendsTotal.WithLabelValues("ok").Inc()
	return nil
}

func (c *Client) sendOne(ctx context.Context, chatID int64, text string) error {
	payload, err := json.Marshal(sendMessageRequest{
		ChatID:                chatID,
		Text:                  text,
		ParseMode:             "HTML",
		DisableWebPagePreview: true,
	})
	if err != nil {
		return fmt.Errorf("telegram: marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", c.baseURL, c.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("telegram: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("telegram: send request: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	var result apiResponse
	if err := json.Unmarshal(body, &result); err != nil || !result.OK {
		return fmt.Errorf("telegram: API error status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// Ping verifies the bot token via getMe.
func (c *Client) Ping(ctx context.Context) error {
	url := fmt.Sprintf("%s/bot%s/getMe", c.baseURL, c.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("telegram: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("telegram: getMe: %w", err)
	}
	defer resp.Body.Close()

	var result apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("telegram: decode getMe: %w", err)
	}
	if !result.OK {
		return fmt.Errorf("telegram: getMe failed: %s", result.Description)
	}
	return nil
}

// splitMessage cuts text into chunks of at most limit bytes, preferring to
// break on newlines so Telegram HTML tags stay intact. A forced cut inside
// an overlong line backs off to a rune boundary so chunks stay valid UTF-8.
func splitMessage(text string, limit int) []string {
	if len(text) <= limit {
		return []string{text}
	}
	var chunks []string
	for len(text) > limit {
		cut := strings.LastIndex(text[:limit], "\n")
		if cut <= 0 {
			cut = limit
			for cut > 0 && !utf8.RuneStart(text[cut]) {
				cut--
			}
		}
		chunks = append(chunks, text[:cut])
		text = strings.TrimPrefix(text[cut:], "\n")
	}
	if text != "" {
		chunks = append(chunks, text)
	}
	return chunks
}
