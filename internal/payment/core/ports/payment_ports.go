package ports

import (
	"context"

	attrPorts "conversion-tracking-service/internal/attribution/core/ports"
)

// VerifyRequest is the JSON body posted to the backend.
type VerifyRequest struct {
	ID        string `json:"id"`
	PaymentID string `json:"payment_id,omitempty"`
	UTMQuery  string `json:"utmQuery,omitempty"`
}

type PaymentBackendPort interface {
	// Verify posts once to endpoint. Non-2xx answers are *domain.BackendError.
	Verify(ctx context.Context, endpoint string, req VerifyRequest) (map[string]any, error)
}

type UTMSourcePort interface {
	UTMQuery(ctx context.Context, page attrPorts.Page) string
}
