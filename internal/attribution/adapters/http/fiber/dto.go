package fiber

type ResolveAttributionRequest struct {
	PageURL  string `json:"page_url" example:"https://shop.example/obrigado/?utm_source=tiktok"`
	Referrer string `json:"referrer"`
	// Backfill writes stored attribution into the returned page URL.
	Backfill bool `json:"backfill"`
}

type ResolveAttributionResponse struct {
	Token       string            `json:"ttclid,omitempty"`
	Found       bool              `json:"found"`
	VisitorID   string            `json:"visitor_id"`
	PageURL     string            `json:"page_url"`
	URLUpdated  bool              `json:"url_updated"`
	Attribution map[string]string `json:"attribution"`
}

type ErrorResponse struct {
	Error   string `json:"error" example:"invalid_page"`
	Message string `json:"message" example:"page location is empty"`
}
