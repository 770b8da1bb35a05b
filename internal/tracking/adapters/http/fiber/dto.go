package fiber

// ReportEventRequest is the report payload of an embedding page.
// @Description Conversion report
type ReportEventRequest struct {
	PageURL  string `json:"page_url" example:"https://shop.example/up1/obrigado.html"`
	Referrer string `json:"referrer"`

	Email      string `json:"email"`
	Phone      string `json:"phone"`
	ExternalID string `json:"external_id"`

	Value       *float64 `json:"value"`
	Currency    string   `json:"currency" example:"BRL"`
	Quantity    int      `json:"quantity"`
	ContentID   string   `json:"content_id"`
	ContentName string   `json:"content_name"`

	EventIDPrefix string `json:"event_id_prefix"`
}

type ReportEventResponse struct {
	Status     string `json:"status" example:"queued"`
	EventID    string `json:"event_id"`
	Channel    string `json:"channel" example:"direct"`
	PageURL    string `json:"page_url"`
	URLUpdated bool   `json:"url_updated"`
	Attributed bool   `json:"attributed"`
	Identified bool   `json:"identified"`
}

type ErrorResponse struct {
	Error   string `json:"error" example:"invalid_event"`
	Message string `json:"message" example:"value must be a finite non-negative number"`
}
