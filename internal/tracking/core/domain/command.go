package domain

import "conversion-tracking-service/internal/identity"

type Verb string

const (
	VerbTrack    Verb = "track"
	VerbPage     Verb = "page"
	VerbIdentify Verb = "identify"
)

// PageContext is what the collector knows about the page an event came from.
type PageContext struct {
	URL       string `json:"url,omitempty"`
	Referrer  string `json:"referrer,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`
	IP        string `json:"ip,omitempty"`
}

// Command is one entry of the collector's command protocol:
// [verb, event, payload] for track, [verb, payload] for page and
// [verb, identity] for identify.
type Command struct {
	Verb     Verb
	Event    string
	Payload  EventPayload
	Identity identity.Hashed
	Page     PageContext
}

func TrackCommand(event string, p EventPayload, page PageContext) Command {
	return Command{Verb: VerbTrack, Event: event, Payload: p, Page: page}
}

func PageCommand(p EventPayload, page PageContext) Command {
	return Command{Verb: VerbPage, Payload: p, Page: page}
}

func IdentifyCommand(h identity.Hashed, page PageContext) Command {
	return Command{Verb: VerbIdentify, Identity: h, Page: page}
}

// Tuple renders the command in its queued array form.
func (c Command) Tuple() []any {
	switch c.Verb {
	case VerbTrack:
		return []any{string(c.Verb), c.Event, c.Payload}
	case VerbIdentify:
		return []any{string(c.Verb), c.Identity}
	default:
		return []any{string(c.Verb), c.Payload}
	}
}

// EventID is the dedup id carried by the command, "" for identify.
func (c Command) EventID() string {
	if c.Verb == VerbIdentify {
		return ""
	}
	return c.Payload.EventID
}
