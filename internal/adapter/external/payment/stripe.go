package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/ainishanov/medicod-analytics-bot/internal/domain"
	"github.com/ainishanov/medicod-analytics-bot/internal/ports"
)

// StripeWebhook verifies and ingests Stripe webhook events into the payments
// and error_events tables the metric source reads from.
type StripeWebhook struct {
	webhookSecret string
	recorder      ports.PaymentRecorder
	log           *zap.Logger
}

func NewStripeWebhook(webhookSecret string, recorder ports.PaymentRecorder, log *zap.Logger) *StripeWebhook {
	return &StripeWebhook{
		webhookSecret: webhookSecret,
		recorder:      recorder,
		log:           log,
	}
}

// HandleEvent verifies the signature and records the payment outcome. Events
// already recorded (same provider ID) are skipped, webhooks retry.
func (s *StripeWebhook) HandleEvent(ctx context.Context, payload []byte, signature string) error {
	event, err := webhook.ConstructEvent(payload, signature, s.webhookSecret)
	if err != nil {
		s.recordWebhookError(ctx, fmt.Sprintf("signature verification failed: %v", err))
		return fmt.Errorf("stripe: verify webhook: %w", err)
	}

	switch event.Type {
	case "payment_intent.succeeded":
		return s.recordIntent(ctx, event, domain.PaymentStatusSucceeded)
	case "payment_intent.payment_failed":
		return s.recordIntent(ctx, event, domain.PaymentStatusFailed)
	case "charge.refunded":
		return s.recordIntent(ctx, event, domain.PaymentStatusRefunded)
	default:
		s.log.Debug("Ignoring stripe event", zap.String("type", string(event.Type)))
		return nil
	}
}

func (s *StripeWebhook) recordIntent(ctx context.Context, event stripe.Event, status domain.PaymentStatus) error {
	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		s.recordWebhookError(ctx, fmt.Sprintf("unmarshal %s: %v", event.Type, err))
		return fmt.Errorf("stripe: unmarshal event: %w", err)
	}

	existing, err := s.recorder.GetPaymentByProviderID(ctx, pi.ID)
	if err != nil {
		return fmt.Errorf("stripe: lookup payment: %w", err)
	}
	if existing != nil {
		s.log.Debug("Duplicate stripe event, skipping", zap.String("provider_id", pi.ID))
		return nil
	}

	userID := pi.Metadata["user_id"]
	now := time.Now().UTC()
	p := &domain.Payment{
		ID:         uuid.New().String(),
		UserID:     userID,
		Amount:     float64(pi.Amount) / 100,
		Currency:   string(pi.Currency),
		Status:     status,
		Provider:   "stripe",
		ProviderID: pi.ID,
		CreatedAt:  now,
	}
	if status == domain.PaymentStatusSucceeded {
		p.CompletedAt = &now
	}

	if err := s.recorder.SavePayment(ctx, p); err != nil {
		return fmt.Errorf("stripe: save payment: %w", err)
	}

	s.log.Info("Stripe payment recorded",
		zap.String("provider_id", pi.ID),
		zap.String("status", string(status)),
		zap.Float64("amount", p.Amount),
	)
	return nil
}

func (s *StripeWebhook) recordWebhookError(ctx context.Context, message string) {
	err := s.recorder.SaveError(ctx, &domain.ErrorEvent{
		Source:    "webhook",
		Message:   message,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		s.log.Warn("Failed to record webhook error", zap.Error(err))
	}
}
