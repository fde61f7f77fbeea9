package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/ainishanov/medicod-analytics-bot/internal/domain"
	"github.com/ainishanov/medicod-analytics-bot/internal/service/customer"
)

type CustomerHandler struct {
	service *customer.Service
	log     *zap.Logger
}

func NewCustomerHandler(service *customer.Service, log *zap.Logger) *CustomerHandler {
	return &CustomerHandler{
		service: service,
		log:     log,
	}
}

// List returns lifetime-value records filtered by the query string.
func (h *CustomerHandler) List(c *fiber.Ctx) error {
	filter := domain.QueryFilter{
		DateFrom:    c.Query("date_from"),
		DateTo:      c.Query("date_to"),
		Limit:       c.QueryInt("limit"),
		UserID:      c.Query("user_id"),
		CohortMonth: c.Query("cohort_month"),
	}
	if err := filter.Validate(); err != nil {
		return err
	}

	records, err := h.service.Records(c.Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(records)
}

// Overview returns the churn, cohort and top-customer rollups.
func (h *CustomerHandler) Overview(c *fiber.Ctx) error {
	overview, err := h.service.Overview(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(overview)
}

// Refresh recomputes the lifetime record for one user.
func (h *CustomerHandler) Refresh(c *fiber.Ctx) error {
	userID := c.Params("id")

	record, err := h.service.Refresh(c.Context(), userID)
	if err != nil {
		return err
	}
	if record == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User has no payments"})
	}
	return c.JSON(record)
}

// RefreshAll recomputes lifetime records for every paying user.
func (h *CustomerHandler) RefreshAll(c *fiber.Ctx) error {
	n, err := h.service.RefreshAll(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"refreshed": n})
}
