package fiber

type StatsGroupResponse struct {
	Key             string  `json:"key"`
	TotalCount      int64   `json:"total_count"`
	UniqueVisitors  int64   `json:"unique_visitors"`
	AttributedCount int64   `json:"attributed_count"`
	TotalValue      float64 `json:"total_value"`
}

type StatsResponse struct {
	EventName       string               `json:"event_name"`
	From            int64                `json:"from"`
	To              int64                `json:"to"`
	TotalCount      int64                `json:"total_count"`
	UniqueVisitors  int64                `json:"unique_visitors"`
	AttributedCount int64                `json:"attributed_count"`
	TotalValue      float64              `json:"total_value"`
	GroupBy         string               `json:"group_by,omitempty"`
	Groups          []StatsGroupResponse `json:"groups,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error" example:"invalid_query"`
	Message string `json:"message" example:"invalid time range"`
}
