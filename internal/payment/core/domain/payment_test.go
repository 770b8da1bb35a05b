package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsPaid(t *testing.T) {
	tests := []struct {
		name string
		body map[string]any
		want bool
	}{
		{"paid", map[string]any{"status": "paid"}, true},
		{"approved_upper", map[string]any{"status": "APPROVED"}, true},
		{"completed_mixed", map[string]any{"status": " Completed "}, true},
		{"confirmed", map[string]any{"status": "confirmed"}, true},
		{"succeeded", map[string]any{"status": "succeeded"}, true},
		{"success", map[string]any{"status": "Success"}, true},
		{"paid_flag", map[string]any{"paid": true}, true},
		{"paid_flag_false_with_status", map[string]any{"paid": false, "status": "paid"}, true},
		{"pending", map[string]any{"status": "pending"}, false},
		{"empty", map[string]any{}, false},
		{"nil", nil, false},
		{"paid_flag_string", map[string]any{"paid": "true"}, false},
		{"status_not_string", map[string]any{"status": 1}, false},
		{"unknown", map[string]any{"status": "refunded"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsPaid(tt.body); got != tt.want {
				t.Fatalf("IsPaid(%v) = %v, want %v", tt.body, got, tt.want)
			}
		})
	}
}

func TestBackendError(t *testing.T) {
	var err error = fmt.Errorf("check: %w", &BackendError{StatusCode: 503, Body: "down"})

	var be *BackendError
	if !errors.As(err, &be) {
		t.Fatalf("expected BackendError in chain")
	}
	if be.StatusCode != 503 || be.Body != "down" {
		t.Fatalf("unexpected error: %+v", be)
	}
	if be.Error() != "payment backend returned 503: down" {
		t.Fatalf("unexpected message: %s", be.Error())
	}
}
