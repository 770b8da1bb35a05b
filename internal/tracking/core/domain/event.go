package domain

import (
	"sync"

	"conversion-tracking-service/internal/identity"
)

type EventKind string

const (
	KindCheckout    EventKind = "checkout"
	KindPurchase    EventKind = "purchase"
	KindViewContent EventKind = "view_content"
	KindPageView    EventKind = "page_view"
)

// EventName is the collector's standard event name for the kind.
func (k EventKind) EventName() string {
	switch k {
	case KindCheckout:
		return "InitiateCheckout"
	case KindPurchase:
		return "CompletePayment"
	case KindViewContent:
		return "ViewContent"
	case KindPageView:
		return "Pageview"
	default:
		return string(k)
	}
}

// IDPrefix is the semantic prefix of the kind's event ids.
func (k EventKind) IDPrefix() string {
	switch k {
	case KindCheckout:
		return "checkout"
	case KindPurchase:
		return "purchase"
	case KindViewContent:
		return "view"
	case KindPageView:
		return "page"
	default:
		return fallbackPrefix
	}
}

type Content struct {
	ContentID   string  `json:"content_id"`
	ContentType string  `json:"content_type"`
	ContentName string  `json:"content_name"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
}

type Properties struct {
	TTCLID string `json:"ttclid,omitempty"`
}

// EventPayload is one outbound conversion event. The identity keys are
// always serialized, empty when unknown.
type EventPayload struct {
	Contents    []Content `json:"contents"`
	ContentType string    `json:"content_type"`
	Value       float64   `json:"value"`
	Currency    string    `json:"currency"`
	EventID     string    `json:"event_id"`
	identity.Hashed
	UserAgent  string     `json:"user_agent,omitempty"`
	TTCLID     string     `json:"ttclid,omitempty"`
	Properties Properties `json:"properties"`
}

// Event wraps a payload so a late attribution token can be patched in
// while deferred delivery attempts read it.
type Event struct {
	Kind EventKind

	mu      sync.Mutex
	payload EventPayload
}

func NewEvent(kind EventKind, p EventPayload) *Event {
	if p.TTCLID == "" {
		p.TTCLID = p.Properties.TTCLID
	}
	p.Properties.TTCLID = p.TTCLID
	return &Event{Kind: kind, payload: p}
}

// Snapshot returns a copy of the payload as it is now.
func (e *Event) Snapshot() EventPayload {
	e.mu.Lock()
	defer e.mu.Unlock()

	p := e.payload
	p.Contents = append([]Content(nil), e.payload.Contents...)
	return p
}

// PatchToken sets the attribution token in both payload locations when it
// is still missing. It reports whether the payload changed.
func (e *Event) PatchToken(token string) bool {
	if token == "" {
		return false
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	changed := false
	if e.payload.TTCLID == "" {
		e.payload.TTCLID = token
		changed = true
	}
	if e.payload.Properties.TTCLID == "" {
		e.payload.Properties.TTCLID = token
		changed = true
	}
	return changed
}

func (e *Event) HasToken() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.payload.TTCLID != "" && e.payload.Properties.TTCLID != ""
}

func (e *Event) ID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.payload.EventID
}
