package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/mosesmwila/zareat-api/internal/service"
	"github.com/mosesmwila/zareat-api/internal/transfer"
)

type SubscriptionHandler struct {
	s service.SubscriptionService
	a service.AccessService
}

func NewSubscriptionHandler(subscriptionService service.SubscriptionService, accessService service.AccessService) *SubscriptionHandler {
	return &SubscriptionHandler{s: subscriptionService, a: accessService}
}

func (h *SubscriptionHandler) RequestSubscription(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var req transfer.SubscriptionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	id, err := h.s.RequestSubscription(c.Context(), userID, req.Package)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidPackage),
			errors.Is(err, service.ErrDuplicatePendingRequest):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "something went wrong",
			})
		}
	}

	return c.JSON(fiber.Map{"id": id, "status": "pending"})
}

// GetContent is the protected-content gate. It never errors on a missing
// or expired subscription; it answers with the decision and its message.
func (h *SubscriptionHandler) GetContent(c *fiber.Ctx) error {
	userID := GetUserID(c)

	decision, err := h.a.EvaluateAccess(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "something went wrong",
		})
	}

	return c.JSON(decision)
}
