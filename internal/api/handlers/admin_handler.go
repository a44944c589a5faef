package handlers

import (
	"errors"
	"io"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/mosesmwila/zareat-api/internal/service"
	"github.com/mosesmwila/zareat-api/internal/transfer"
)

type AdminHandler struct {
	s service.SubscriptionService
	i service.InvoiceService
}

func NewAdminHandler(subscriptionService service.SubscriptionService, invoiceService service.InvoiceService) *AdminHandler {
	return &AdminHandler{s: subscriptionService, i: invoiceService}
}

func (h *AdminHandler) ListSubscriptions(c *fiber.Ctx) error {
	subscriptions, err := h.s.ListSubscriptions(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "something went wrong",
		})
	}
	return c.JSON(subscriptions)
}

func (h *AdminHandler) ListInvoices(c *fiber.Ctx) error {
	invoices, err := h.s.ListInvoices(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "something went wrong",
		})
	}
	return c.JSON(invoices)
}

// AddSubscription creates a subscription directly in the approved state,
// bypassing the request step.
func (h *AdminHandler) AddSubscription(c *fiber.Ctx) error {
	var req transfer.AddSubscriptionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	id, err := h.s.AddApprovedSubscription(c.Context(), req.UserID, req.Package)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidPackage),
			errors.Is(err, service.ErrDuplicateActiveSubscription):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "something went wrong",
			})
		}
	}

	return c.JSON(fiber.Map{"id": id, "status": "approved"})
}

func (h *AdminHandler) ApproveSubscription(c *fiber.Ctx) error {
	subscriptionID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid subscription id",
		})
	}

	if err := h.s.Approve(c.Context(), subscriptionID); err != nil {
		switch {
		case errors.Is(err, service.ErrSubscriptionNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": err.Error(),
			})
		case errors.Is(err, service.ErrAlreadyApproved):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": err.Error(),
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "something went wrong",
			})
		}
	}

	return c.JSON(fiber.Map{"status": "approved"})
}

func (h *AdminHandler) UploadInvoice(c *fiber.Ctx) error {
	subscriptionID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid subscription id",
		})
	}

	fileHeader, err := c.FormFile("invoice")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invoice file is required",
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "unable to read invoice file",
		})
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "unable to read invoice file",
		})
	}

	invoiceURL, err := h.i.AttachInvoice(c.Context(), subscriptionID, data)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSubscriptionNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": err.Error(),
			})
		case errors.Is(err, service.ErrUnsupportedFileType):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "something went wrong",
			})
		}
	}

	return c.JSON(fiber.Map{"invoice_url": invoiceURL})
}
