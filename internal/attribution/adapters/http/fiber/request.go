package fiber

import (
	"time"

	"conversion-tracking-service/internal/attribution/adapters/page"
	"conversion-tracking-service/internal/attribution/core/ports"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/google/uuid"
)

const (
	VisitorCookie = "ttk_vid"
	SessionCookie = "ttk_sid"

	VisitorHeader = "X-Visitor-ID"
	SessionHeader = "X-Session-ID"

	visitorCookieTTL = 365 * 24 * time.Hour
)

// PageFromRequest rebuilds the caller's page context. The page URL falls
// back to the Referer header for loader scripts posting from the page itself.
// Visitor and session ids come from headers or cookies and are minted when
// missing. Header values are copied since deferred dispatch outlives the
// request.
func PageFromRequest(c *fiber.Ctx, pageURL, referrer string) (ports.Page, *page.Location, error) {
	if pageURL == "" {
		pageURL = utils.CopyString(c.Get(fiber.HeaderReferer))
	}

	loc, err := page.NewLocation(pageURL)
	if err != nil {
		return ports.Page{}, nil, err
	}

	return ports.Page{
		VisitorID: visitorID(c),
		SessionID: sessionID(c),
		Location:  loc,
		Cookies:   page.CookieHeader(utils.CopyString(c.Get(fiber.HeaderCookie))),
		Referrer:  referrer,
	}, loc, nil
}

func visitorID(c *fiber.Ctx) string {
	if id := c.Get(VisitorHeader); id != "" {
		return utils.CopyString(id)
	}
	if id := c.Cookies(VisitorCookie); id != "" {
		return utils.CopyString(id)
	}

	id := uuid.NewString()
	c.Cookie(&fiber.Cookie{
		Name:     VisitorCookie,
		Value:    id,
		Path:     "/",
		Expires:  time.Now().Add(visitorCookieTTL),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return id
}

func sessionID(c *fiber.Ctx) string {
	if id := c.Get(SessionHeader); id != "" {
		return utils.CopyString(id)
	}
	if id := c.Cookies(SessionCookie); id != "" {
		return utils.CopyString(id)
	}

	// session cookie: no expiry
	id := uuid.NewString()
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return id
}
