package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/ainishanov/medicod-analytics-bot/internal/domain"
	"github.com/ainishanov/medicod-analytics-bot/internal/service/report"
)

type ReportHandler struct {
	service *report.Service
	log     *zap.Logger
}

func NewReportHandler(service *report.Service, log *zap.Logger) *ReportHandler {
	return &ReportHandler{
		service: service,
		log:     log,
	}
}

// Get returns the structured report for a known period label
// (today, yesterday, week, month). Pass narrative=true to include
// the AI commentary.
func (h *ReportHandler) Get(c *fiber.Ctx) error {
	period := c.Params("period")
	withNarrative := c.QueryBool("narrative", false)

	rep, err := h.service.Generate(c.Context(), period, withNarrative)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidFilter) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		return err
	}
	return c.JSON(rep)
}

// Deliver generates the report for the period and sends it to the
// configured Telegram chat. Returns the rendered text for inspection.
func (h *ReportHandler) Deliver(c *fiber.Ctx) error {
	period := c.Params("period")
	if err := h.service.GenerateAndDeliver(c.Context(), period); err != nil {
		if errors.Is(err, domain.ErrInvalidFilter) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		return err
	}
	return c.JSON(fiber.Map{"status": "delivered", "period": period})
}

type AskRequest struct {
	Question string `json:"question"`
}

// Ask answers a free-form business question against current metrics.
func (h *ReportHandler) Ask(c *fiber.Ctx) error {
	var req AskRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}
	if req.Question == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Question is required"})
	}

	answer, err := h.service.Ask(c.Context(), req.Question)
	if err != nil {
		if errors.Is(err, domain.ErrNarrativeUnavailable) {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "AI assistant is unavailable"})
		}
		return err
	}
	return c.JSON(fiber.Map{"answer": answer})
}
