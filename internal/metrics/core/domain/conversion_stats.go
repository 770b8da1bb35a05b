package domain

type ConversionStats struct {
	EventName       string
	From            int64 // unix second
	To              int64 // unix second
	TotalCount      int64
	UniqueVisitors  int64
	AttributedCount int64
	TotalValue      float64

	GroupBy string // "", "channel", "time"
	Groups  []StatsGroup
}

type StatsGroup struct {
	Key             string // "direct", "queue" or "2025-12-07T10:00:00Z"
	TotalCount      int64
	UniqueVisitors  int64
	AttributedCount int64
	TotalValue      float64
}
