package fiber

import (
	"context"
	"net/http"

	"conversion-tracking-service/internal/attribution/core/domain"
	"conversion-tracking-service/internal/attribution/core/ports"

	"github.com/gofiber/fiber/v2"
)

type ResolveAttributionUseCase interface {
	ResolveToken(ctx context.Context, page ports.Page) (string, bool)
	EnsureTokenInURL(ctx context.Context, page ports.Page) bool
	CaptureAttribution(ctx context.Context, page ports.Page) domain.AttributionRecord
}

type AttributionHandler struct {
	uc ResolveAttributionUseCase
}

func NewAttributionHandler(uc ResolveAttributionUseCase) *AttributionHandler {
	return &AttributionHandler{uc: uc}
}

// Resolve godoc
// @Summary Resolve the attribution token
// @Description Captures URL attribution, resolves the click token from URL, stores, cookies and referrer, and optionally backfills the page URL
// @Tags Attribution
// @Accept json
// @Produce json
// @Param request body ResolveAttributionRequest true "Page context"
// @Success 200 {object} ResolveAttributionResponse
// @Failure 400 {object} ErrorResponse
// @Router /attribution/resolve [post]
func (h *AttributionHandler) Resolve(c *fiber.Ctx) error {
	var req ResolveAttributionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Error: "invalid_json",
		})
	}

	page, loc, err := PageFromRequest(c, req.PageURL, req.Referrer)
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Error:   "invalid_page",
			Message: err.Error(),
		})
	}

	ctx := c.UserContext()

	updated := false
	if req.Backfill {
		updated = h.uc.EnsureTokenInURL(ctx, page)
	}
	rec := h.uc.CaptureAttribution(ctx, page)
	token, found := h.uc.ResolveToken(ctx, page)

	if rec == nil {
		rec = domain.AttributionRecord{}
	}

	return c.Status(http.StatusOK).JSON(ResolveAttributionResponse{
		Token:       token,
		Found:       found,
		VisitorID:   page.VisitorID,
		PageURL:     loc.String(),
		URLUpdated:  updated,
		Attribution: rec,
	})
}
