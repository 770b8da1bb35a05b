package page

import (
	"errors"
	"net/url"
	"sync"
)

var ErrNoLocation = errors.New("page location is empty")

// Location is the page URL as reported by the caller. Query rewrites are
// replace-only: the caller applies the final URL with history.replaceState,
// so nothing here ever navigates.
type Location struct {
	mu       sync.Mutex
	current  *url.URL
	replaced bool
}

func NewLocation(raw string) (*Location, error) {
	if raw == "" {
		return nil, ErrNoLocation
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	return &Location{current: u}, nil
}

// URL returns a copy of the current URL.
func (l *Location) URL() *url.URL {
	l.mu.Lock()
	defer l.mu.Unlock()

	u := *l.current
	return &u
}

func (l *Location) ReplaceQuery(q url.Values) error {
	if q == nil {
		return errors.New("nil query")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.current.RawQuery = q.Encode()
	l.replaced = true
	return nil
}

// Replaced reports whether the query was rewritten.
func (l *Location) Replaced() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.replaced
}

func (l *Location) String() string {
	return l.URL().String()
}
