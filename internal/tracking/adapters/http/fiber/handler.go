package fiber

import (
	"context"
	"errors"
	"net/http"

	attrHTTP "conversion-tracking-service/internal/attribution/adapters/http/fiber"
	"conversion-tracking-service/internal/identity"
	"conversion-tracking-service/internal/tracking/core/usecase"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

type ReportEventUseCase interface {
	ReportCheckout(ctx context.Context, in usecase.ReportInput) (*usecase.ReportResult, error)
	ReportPurchase(ctx context.Context, in usecase.ReportInput) (*usecase.ReportResult, error)
	ReportViewContent(ctx context.Context, in usecase.ReportInput) (*usecase.ReportResult, error)
	ReportPageView(ctx context.Context, in usecase.ReportInput) (*usecase.ReportResult, error)
}

type reportFunc func(ctx context.Context, in usecase.ReportInput) (*usecase.ReportResult, error)

type EventHandler struct {
	uc ReportEventUseCase
}

func NewEventHandler(uc ReportEventUseCase) *EventHandler {
	return &EventHandler{uc: uc}
}

// ReportCheckout godoc
// @Summary Report a checkout
// @Description Dispatches InitiateCheckout to the collector
// @Tags Events
// @Accept json
// @Produce json
// @Param request body ReportEventRequest true "Report payload"
// @Success 202 {object} ReportEventResponse
// @Failure 400 {object} ErrorResponse
// @Router /events/checkout [post]
func (h *EventHandler) ReportCheckout(c *fiber.Ctx) error {
	return h.handle(c, h.uc.ReportCheckout)
}

// ReportPurchase godoc
// @Summary Report a purchase
// @Description Dispatches CompletePayment, backfilling stored attribution into the page URL
// @Tags Events
// @Accept json
// @Produce json
// @Param request body ReportEventRequest true "Report payload"
// @Success 202 {object} ReportEventResponse
// @Failure 400 {object} ErrorResponse
// @Router /events/purchase [post]
func (h *EventHandler) ReportPurchase(c *fiber.Ctx) error {
	return h.handle(c, h.uc.ReportPurchase)
}

// ReportViewContent godoc
// @Summary Report a content view
// @Description Dispatches ViewContent to the collector
// @Tags Events
// @Accept json
// @Produce json
// @Param request body ReportEventRequest true "Report payload"
// @Success 202 {object} ReportEventResponse
// @Failure 400 {object} ErrorResponse
// @Router /events/view-content [post]
func (h *EventHandler) ReportViewContent(c *fiber.Ctx) error {
	return h.handle(c, h.uc.ReportViewContent)
}

// ReportPageView godoc
// @Summary Report a page view
// @Description Dispatches a page command to the collector
// @Tags Events
// @Accept json
// @Produce json
// @Param request body ReportEventRequest true "Report payload"
// @Success 202 {object} ReportEventResponse
// @Failure 400 {object} ErrorResponse
// @Router /events/page-view [post]
func (h *EventHandler) ReportPageView(c *fiber.Ctx) error {
	return h.handle(c, h.uc.ReportPageView)
}

func (h *EventHandler) handle(c *fiber.Ctx, report reportFunc) error {
	var req ReportEventRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Error: "invalid_json",
		})
	}

	page, _, err := attrHTTP.PageFromRequest(c, req.PageURL, req.Referrer)
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Error:   "invalid_page",
			Message: err.Error(),
		})
	}

	in := usecase.ReportInput{
		Page:      page,
		UserAgent: utils.CopyString(c.Get(fiber.HeaderUserAgent)),
		IP:        utils.CopyString(c.IP()),
		Customer: identity.Customer{
			Email:      req.Email,
			Phone:      req.Phone,
			ExternalID: req.ExternalID,
		},
		Value:         req.Value,
		Currency:      req.Currency,
		Quantity:      req.Quantity,
		ContentID:     req.ContentID,
		ContentName:   req.ContentName,
		EventIDPrefix: req.EventIDPrefix,
	}

	res, err := report(c.UserContext(), in)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrInvalidPage),
			errors.Is(err, usecase.ErrInvalidValue),
			errors.Is(err, usecase.ErrInvalidQuantity):
			return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
				Error:   "invalid_event",
				Message: err.Error(),
			})
		default:
			return c.Status(http.StatusInternalServerError).JSON(ErrorResponse{
				Error: "internal_server_error",
			})
		}
	}

	resp := ReportEventResponse{
		Status:     "queued",
		EventID:    res.EventID,
		PageURL:    res.PageURL,
		URLUpdated: res.URLUpdated,
		Attributed: res.Attributed,
		Identified: res.Identify != nil,
	}
	if res.Delivery != nil {
		resp.Channel = res.Delivery.Channel
		if res.Delivery.State() == usecase.StateConfirmed {
			resp.Status = "confirmed"
		}
	}

	return c.Status(http.StatusAccepted).JSON(resp)
}
