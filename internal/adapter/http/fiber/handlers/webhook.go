package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/ainishanov/medicod-analytics-bot/internal/adapter/external/payment"
)

type WebhookHandler struct {
	stripe *payment.StripeWebhook
	log    *zap.Logger
}

func NewWebhookHandler(stripe *payment.StripeWebhook, log *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		stripe: stripe,
		log:    log,
	}
}

// Stripe ingests a Stripe webhook event. Signature verification happens
// inside the adapter against the raw body; Stripe retries on non-2xx.
func (h *WebhookHandler) Stripe(c *fiber.Ctx) error {
	signature := c.Get("Stripe-Signature")
	if signature == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing Stripe-Signature header"})
	}

	if err := h.stripe.HandleEvent(c.Context(), c.Body(), signature); err != nil {
		h.log.Error("Stripe webhook rejected", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Webhook verification failed"})
	}
	return c.JSON(fiber.Map{"received": true})
}
