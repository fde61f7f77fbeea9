package ports

import (
	"context"
	"time"
)

// NarrativeClient generates free-text commentary from an LLM.
type NarrativeClient interface {
	// Complete runs a single chat completion and returns the text plus token
	// counts for cost accounting.
	Complete(ctx context.Context, systemPrompt, userPrompt string) (*NarrativeResult, error)
}

// NarrativeResult carries a completion and its token usage.
type NarrativeResult struct {
	Text             string
	Model            string
	PromptTokens     int
	CompletionTokens int
}

// ReportSender delivers a rendered report to its destination channel.
type ReportSender interface {
	Send(ctx context.Context, chatID int64, html string) error
}

// Cache is a key-value cache with distributed locking for report
// deduplication across instances.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}

// MessageQueue publishes report lifecycle events for downstream consumers.
type MessageQueue interface {
	Publish(ctx context.Context, topic string, data []byte) error
	Subscribe(ctx context.Context, topic string, handler func(data []byte)) error
	Close() error
}

// EmailService sends report copies over email.
type EmailService interface {
	Send(ctx context.Context, to, subject, body string) error
	SendHTML(ctx context.Context, to, subject, htmlBody string) error
}

// SecretStore resolves secrets at startup (tokens, API keys, DSNs).
type SecretStore interface {
	GetSecret(ctx context.Context, path, key string) (string, error)
}
