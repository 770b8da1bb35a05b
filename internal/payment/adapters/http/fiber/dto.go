package fiber

type CheckPaymentStatusRequest struct {
	TransactionID string `json:"id" example:"tx_123"`
	PaymentID     string `json:"payment_id"`
	PageURL       string `json:"page_url" example:"https://shop.example/up1/obrigado.html"`
	Referrer      string `json:"referrer"`
}

type PaymentStatusResponse struct {
	TransactionID string         `json:"id"`
	Paid          bool           `json:"paid"`
	Status        string         `json:"status,omitempty"`
	Response      map[string]any `json:"response"`
}

type ClassifyResponse struct {
	Paid bool `json:"paid"`
}

type BackendErrorResponse struct {
	Error      string `json:"error" example:"backend_error"`
	StatusCode int    `json:"status_code,omitempty" example:"503"`
	Body       string `json:"body,omitempty"`
	Message    string `json:"message,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error" example:"invalid_request"`
	Message string `json:"message" example:"transaction id is required"`
}
