package ports

import (
	"context"
	"net/url"

	"conversion-tracking-service/internal/attribution/core/domain"
)

// RecordStorePort is a key-value store holding one attribution blob per
// scope (visitor id for the durable store, session id for the session store).
type RecordStorePort interface {
	// LoadRecord:
	//   rec != nil, err = nil -> stored record
	//   rec = nil,  err = nil -> nothing stored
	//   err != nil            -> store unavailable or blob malformed
	LoadRecord(ctx context.Context, scope string) (domain.AttributionRecord, error)
	SaveRecord(ctx context.Context, scope string, rec domain.AttributionRecord) error
}

// CookieJar is a read-only view of the page's cookies.
type CookieJar interface {
	Cookie(name string) (string, error)
}

// Location is the page's current URL. ReplaceQuery rewrites the query string
// in place without navigation and without adding a history entry.
type Location interface {
	URL() *url.URL
	ReplaceQuery(q url.Values) error
}

// Page bundles the per-request browser context the resolver reads from.
type Page struct {
	VisitorID string
	SessionID string
	Location  Location
	Cookies   CookieJar
	Referrer  string
}
