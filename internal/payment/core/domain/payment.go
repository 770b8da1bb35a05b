package domain

import (
	"errors"
	"fmt"
	"strings"
)

var ErrMalformedResponse = errors.New("malformed backend response")

// PaymentStatus is the classified backend answer.
type PaymentStatus struct {
	TransactionID string
	Paid          bool
	// Status is the raw status string, "" when the backend sent none.
	Status   string
	Response map[string]any
}

var paidStatuses = map[string]bool{
	"paid":      true,
	"approved":  true,
	"completed": true,
	"confirmed": true,
	"succeeded": true,
	"success":   true,
}

// IsPaid classifies a backend response body. Unknown statuses are not paid.
func IsPaid(body map[string]any) bool {
	if body == nil {
		return false
	}
	if paid, ok := body["paid"].(bool); ok && paid {
		return true
	}
	status, ok := body["status"].(string)
	if !ok {
		return false
	}
	return paidStatuses[strings.ToLower(strings.TrimSpace(status))]
}

// StatusOf returns the body's status string, if any.
func StatusOf(body map[string]any) string {
	s, _ := body["status"].(string)
	return s
}

// BackendError is a non-2xx answer from the payment backend.
type BackendError struct {
	StatusCode int
	Body       string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("payment backend returned %d: %s", e.StatusCode, e.Body)
}
