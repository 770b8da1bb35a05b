package domain

import "time"

// Conversion is one journaled outbound event.
type Conversion struct {
	EventName  string
	EventID    string
	Channel    string
	VisitorID  string
	PagePath   string
	EventTime  time.Time
	ContentIDs []string
	Value      float64
	Currency   string
	Attributed bool
	DedupeKey  string
}
