package page

import (
	"fmt"
	"net/url"
	"strings"
)

// CookieHeader reads cookies from a raw Cookie header the way a page reads
// document.cookie: split on ";" then on the first "=", values URL-decoded.
type CookieHeader string

func (h CookieHeader) Cookie(name string) (string, error) {
	for _, part := range strings.Split(string(h), ";") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok || strings.TrimSpace(k) != name {
			continue
		}
		decoded, err := url.QueryUnescape(strings.TrimSpace(v))
		if err != nil {
			return "", fmt.Errorf("decode cookie %s: %w", name, err)
		}
		return decoded, nil
	}
	return "", nil
}
