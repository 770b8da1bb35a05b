package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"conversion-tracking-service/internal/payment/core/domain"
	"conversion-tracking-service/internal/payment/core/ports"

	"github.com/gofiber/fiber/v2"
)

// Client posts status checks to the payment backend.
type Client struct {
	timeout time.Duration
}

func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{timeout: timeout}
}

var _ ports.PaymentBackendPort = (*Client)(nil)

func (c *Client) Verify(ctx context.Context, endpoint string, req ports.VerifyRequest) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < timeout {
			timeout = left
		}
	}

	a := fiber.Post(endpoint)
	a.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
	a.JSON(req)
	a.Timeout(timeout)

	status, raw, errs := a.Bytes()
	if len(errs) > 0 {
		return nil, fmt.Errorf("payment backend request: %w", errors.Join(errs...))
	}
	if status < 200 || status > 299 {
		return nil, &domain.BackendError{StatusCode: status, Body: string(raw)}
	}

	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrMalformedResponse, err)
	}
	return body, nil
}
