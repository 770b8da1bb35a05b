package fiber

import (
	"context"
	"errors"
	"net/http"

	attrHTTP "conversion-tracking-service/internal/attribution/adapters/http/fiber"
	"conversion-tracking-service/internal/payment/core/domain"
	"conversion-tracking-service/internal/payment/core/usecase"

	"github.com/gofiber/fiber/v2"
)

type CheckPaymentStatusUseCase interface {
	Execute(ctx context.Context, in usecase.CheckPaymentStatusInput) (*domain.PaymentStatus, error)
}

type PaymentHandler struct {
	uc CheckPaymentStatusUseCase
}

func NewPaymentHandler(uc CheckPaymentStatusUseCase) *PaymentHandler {
	return &PaymentHandler{uc: uc}
}

// CheckStatus godoc
// @Summary Check a payment's status
// @Description Posts the transaction to the backend verify endpoint next to the page and classifies the answer
// @Tags Payments
// @Accept json
// @Produce json
// @Param request body CheckPaymentStatusRequest true "Transaction and page"
// @Success 200 {object} PaymentStatusResponse
// @Failure 400 {object} ErrorResponse
// @Failure 502 {object} BackendErrorResponse
// @Router /payments/status [post]
func (h *PaymentHandler) CheckStatus(c *fiber.Ctx) error {
	var req CheckPaymentStatusRequest
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

	st, err := h.uc.Execute(c.UserContext(), usecase.CheckPaymentStatusInput{
		TransactionID: req.TransactionID,
		PaymentID:     req.PaymentID,
		Page:          page,
	})
	if err != nil {
		var be *domain.BackendError
		switch {
		case errors.Is(err, usecase.ErrInvalidTransaction),
			errors.Is(err, usecase.ErrInvalidPage),
			errors.Is(err, usecase.ErrNoBackendBase):
			return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
				Error:   "invalid_request",
				Message: err.Error(),
			})
		case errors.As(err, &be):
			return c.Status(http.StatusBadGateway).JSON(BackendErrorResponse{
				Error:      "backend_error",
				StatusCode: be.StatusCode,
				Body:       be.Body,
			})
		case errors.Is(err, domain.ErrMalformedResponse):
			return c.Status(http.StatusBadGateway).JSON(BackendErrorResponse{
				Error:   "backend_malformed_response",
				Message: err.Error(),
			})
		default:
			return c.Status(http.StatusBadGateway).JSON(BackendErrorResponse{
				Error:   "backend_unreachable",
				Message: err.Error(),
			})
		}
	}

	resp := st.Response
	if resp == nil {
		resp = map[string]any{}
	}

	return c.Status(http.StatusOK).JSON(PaymentStatusResponse{
		TransactionID: st.TransactionID,
		Paid:          st.Paid,
		Status:        st.Status,
		Response:      resp,
	})
}

// Classify godoc
// @Summary Classify a backend response
// @Description Pure paid / not-paid classifier over a backend response body
// @Tags Payments
// @Accept json
// @Produce json
// @Param request body object true "Backend response body"
// @Success 200 {object} ClassifyResponse
// @Failure 400 {object} ErrorResponse
// @Router /payments/classify [post]
func (h *PaymentHandler) Classify(c *fiber.Ctx) error {
	var body map[string]any
	if err := c.BodyParser(&body); err != nil {
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Error: "invalid_json",
		})
	}

	return c.Status(http.StatusOK).JSON(ClassifyResponse{
		Paid: domain.IsPaid(body),
	})
}
