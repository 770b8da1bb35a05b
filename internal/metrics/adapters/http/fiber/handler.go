package fiber

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"conversion-tracking-service/internal/metrics/core/domain"
	"conversion-tracking-service/internal/metrics/core/usecase"

	"github.com/gofiber/fiber/v2"
)

type GetConversionStatsUseCase interface {
	Execute(ctx context.Context, in usecase.GetConversionStatsInput) (*domain.ConversionStats, error)
}

type StatsHandler struct {
	uc GetConversionStatsUseCase
}

func NewStatsHandler(uc GetConversionStatsUseCase) *StatsHandler {
	return &StatsHandler{uc: uc}
}

// GetConversionStats godoc
// @Summary Query conversion stats
// @Description Aggregates journaled conversions, optionally grouped by delivery channel or time bucket
// @Tags Stats
// @Produce json
// @Param event_name query string true "Collector event name, e.g. CompletePayment"
// @Param from query int true "From timestamp (unix seconds)"
// @Param to query int true "To timestamp (unix seconds)"
// @Param channel query string false "Channel filter: direct | queue | lost"
// @Param group_by query string false "Group by: channel | time"
// @Param interval query string false "Interval: hour | day"
// @Success 200 {object} StatsResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /stats/conversions [get]
func (h *StatsHandler) GetConversionStats(c *fiber.Ctx) error {
	eventName := c.Query("event_name", "")
	if eventName == "" {
		return badQuery(c, "event_name is required")
	}

	fromStr := c.Query("from", "")
	toStr := c.Query("to", "")
	if fromStr == "" || toStr == "" {
		return badQuery(c, "from and to are required")
	}

	from, err := strconv.ParseInt(fromStr, 10, 64)
	if err != nil {
		return badQuery(c, "invalid 'from' parameter")
	}
	to, err := strconv.ParseInt(toStr, 10, 64)
	if err != nil {
		return badQuery(c, "invalid 'to' parameter")
	}

	var channelPtr *string
	if channel := c.Query("channel", ""); channel != "" {
		channelPtr = &channel
	}

	in := usecase.GetConversionStatsInput{
		EventName: eventName,
		From:      from,
		To:        to,
		Channel:   channelPtr,
		GroupBy:   c.Query("group_by", ""),
		Interval:  c.Query("interval", ""),
	}

	res, err := h.uc.Execute(c.Context(), in)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrInvalidStatsQuery),
			errors.Is(err, usecase.ErrInvalidTimeRange),
			errors.Is(err, usecase.ErrInvalidGroupBy),
			errors.Is(err, usecase.ErrInvalidInterval),
			errors.Is(err, usecase.ErrInvalidChannel):
			return badQuery(c, err.Error())
		default:
			return c.Status(http.StatusInternalServerError).JSON(ErrorResponse{
				Error: "internal_server_error",
			})
		}
	}

	resp := StatsResponse{
		EventName:       res.EventName,
		From:            res.From,
		To:              res.To,
		TotalCount:      res.TotalCount,
		UniqueVisitors:  res.UniqueVisitors,
		AttributedCount: res.AttributedCount,
		TotalValue:      res.TotalValue,
		GroupBy:         res.GroupBy,
		Groups:          make([]StatsGroupResponse, 0, len(res.Groups)),
	}

	for _, g := range res.Groups {
		resp.Groups = append(resp.Groups, StatsGroupResponse{
			Key:             g.Key,
			TotalCount:      g.TotalCount,
			UniqueVisitors:  g.UniqueVisitors,
			AttributedCount: g.AttributedCount,
			TotalValue:      g.TotalValue,
		})
	}

	return c.Status(http.StatusOK).JSON(resp)
}

func badQuery(c *fiber.Ctx, msg string) error {
	return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
		Error:   "invalid_query",
		Message: msg,
	})
}
