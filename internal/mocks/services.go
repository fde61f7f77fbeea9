package mocks

import (
	"context"
	"errors"
	"time"

	"github.com/ainishanov/medicod-analytics-bot/internal/ports"
)

// MockNarrativeClient is a mock implementation of NarrativeClient
type MockNarrativeClient struct {
	CompleteFunc func(ctx context.Context, systemPrompt, userPrompt string) (*ports.NarrativeResult, error)
}

func (m *MockNarrativeClient) Complete(ctx context.Context, systemPrompt, userPrompt string) (*ports.NarrativeResult, error) {
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, systemPrompt, userPrompt)
	}
	return &ports.NarrativeResult{Text: "ok"}, nil
}

// MockReportSender is a mock implementation of ReportSender
type MockReportSender struct {
	SendFunc func(ctx context.Context, chatID int64, html string) error
	Sent     []string
}

func (m *MockReportSender) Send(ctx context.Context, chatID int64, html string) error {
	m.Sent = append(m.Sent, html)
	if m.SendFunc != nil {
		return m.SendFunc(ctx, chatID, html)
	}
	return nil
}

// MockCache is a mock implementation of Cache
type MockCache struct {
	GetFunc     func(ctx context.Context, key string, dest interface{}) error
	SetFunc     func(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteFunc  func(ctx context.Context, key string) error
	TryLockFunc func(ctx context.Context, key string, ttl time.Duration) (bool, error)
	UnlockFunc  func(ctx context.Context, key string) error
}

func (m *MockCache) Get(ctx context.Context, key string, dest interface{}) error {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key, dest)
	}
	return errors.New("cache miss")
}

func (m *MockCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, value, ttl)
	}
	return nil
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, key)
	}
	return nil
}

func (m *MockCache) TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if m.TryLockFunc != nil {
		return m.TryLockFunc(ctx, key, ttl)
	}
	return true, nil
}

func (m *MockCache) Unlock(ctx context.Context, key string) error {
	if m.UnlockFunc != nil {
		return m.UnlockFunc(ctx, key)
	}
	return nil
}

func (m *MockCache) Ping(ctx context.Context) error { return nil }

func (m *MockCache) Close() error { return nil }

// MockMessageQueue is a mock implementation of MessageQueue
type MockMessageQueue struct {
	PublishFunc   func(ctx context.Context, topic string, data []byte) error
	SubscribeFunc func(ctx context.Context, topic string, handler func(data []byte)) error
	Published     map[string][][]byte
}

func (m *MockMessageQueue) Publish(ctx context.Context, topic string, data []byte) error {
	if m.Published == nil {
		m.Published = make(map[string][][]byte)
	}
	m.Published[topic] = append(m.Published[topic], data)
	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, topic, data)
	}
	return nil
}

func (m *MockMessageQueue) Subscribe(ctx context.Context, topic string, handler func(data []byte)) error {
	if m.SubscribeFunc != nil {
		return m.SubscribeFunc(ctx, topic, handler)
	}
	return nil
}

func (m *MockMessageQueue) Close() error { return nil }
