package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"conversion-tracking-service/internal/identity"
	"conversion-tracking-service/internal/tracking/core/domain"
	"conversion-tracking-service/internal/tracking/core/ports"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const DefaultEventsAPIURL = "https://business-api.tiktok.com/open_api/v1.3/event/track/"

var (
	ErrMissingCredentials   = errors.New("events api requires pixel code and access token")
	ErrEventsAPIRejected    = fmt.Errorf("events api rejected the event: %w", ports.ErrRejected)
	ErrEventsAPIUnavailable = errors.New("events api unavailable")
)

type EventsAPIConfig struct {
	Endpoint    string
	PixelCode   string
	AccessToken string
	// TestEventCode routes events to the test tab of the events manager.
	TestEventCode string
	Timeout       time.Duration
}

// EventsAPIClient is a direct collector posting to the TikTok Events API.
type EventsAPIClient struct {
	cfg    EventsAPIConfig
	logger *zap.Logger
}

func NewEventsAPIClient(cfg EventsAPIConfig, logger *zap.Logger) (*EventsAPIClient, error) {
	if cfg.PixelCode == "" || cfg.AccessToken == "" {
		return nil, ErrMissingCredentials
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEventsAPIURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventsAPIClient{cfg: cfg, logger: logger.Named("events_api")}, nil
}

var _ ports.DirectCollector = (*EventsAPIClient)(nil)

type eventsAPIRequest struct {
	EventSource   string           `json:"event_source"`
	EventSourceID string           `json:"event_source_id"`
	TestEventCode string           `json:"test_event_code,omitempty"`
	Data          []eventsAPIEvent `json:"data"`
}

type eventsAPIEvent struct {
	Event      string              `json:"event"`
	EventTime  int64               `json:"event_time"`
	EventID    string              `json:"event_id"`
	User       eventsAPIUser       `json:"user"`
	Properties eventsAPIProperties `json:"properties"`
	Page       eventsAPIPage       `json:"page"`
}

type eventsAPIUser struct {
	TTCLID     string `json:"ttclid,omitempty"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	ExternalID string `json:"external_id"`
	IP         string `json:"ip,omitempty"`
	UserAgent  string `json:"user_agent,omitempty"`
}

type eventsAPIProperties struct {
	Contents    []domain.Content `json:"contents"`
	ContentType string           `json:"content_type"`
	Value       float64          `json:"value"`
	Currency    string           `json:"currency"`
}

type eventsAPIPage struct {
	URL      string `json:"url,omitempty"`
	Referrer string `json:"referrer,omitempty"`
}

type eventsAPIResponse struct {
	Code      int    `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
}

func (c *EventsAPIClient) Track(ctx context.Context, event string, p domain.EventPayload, page domain.PageContext) error {
	return c.send(ctx, c.buildEvent(event, p, page))
}

func (c *EventsAPIClient) Page(ctx context.Context, p domain.EventPayload, page domain.PageContext) error {
	return c.send(ctx, c.buildEvent(domain.KindPageView.EventName(), p, page))
}

// Identify has no Events API counterpart: identity travels in the user block
// of every event.
func (c *EventsAPIClient) Identify(ctx context.Context, h identity.Hashed, page domain.PageContext) error {
	c.logger.Debug("identify folded into event user data", zap.String("url", page.URL))
	return nil
}

func (c *EventsAPIClient) buildEvent(event string, p domain.EventPayload, page domain.PageContext) eventsAPIEvent {
	ttclid := p.TTCLID
	if ttclid == "" {
		ttclid = p.Properties.TTCLID
	}
	userAgent := p.UserAgent
	if userAgent == "" {
		userAgent = page.UserAgent
	}

	return eventsAPIEvent{
		Event:     event,
		EventTime: time.Now().Unix(),
		EventID:   p.EventID,
		User: eventsAPIUser{
			TTCLID:     ttclid,
			Email:      p.Email,
			Phone:      p.PhoneNumber,
			ExternalID: p.ExternalID,
			IP:         page.IP,
			UserAgent:  userAgent,
		},
		Properties: eventsAPIProperties{
			Contents:    p.Contents,
			ContentType: p.ContentType,
			Value:       p.Value,
			Currency:    p.Currency,
		},
		Page: eventsAPIPage{URL: page.URL, Referrer: page.Referrer},
	}
}

func (c *EventsAPIClient) send(ctx context.Context, ev eventsAPIEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	body := eventsAPIRequest{
		EventSource:   "web",
		EventSourceID: c.cfg.PixelCode,
		TestEventCode: c.cfg.TestEventCode,
		Data:          []eventsAPIEvent{ev},
	}

	a := fiber.Post(c.cfg.Endpoint)
	a.Set("Access-Token", c.cfg.AccessToken)
	a.JSON(body)
	a.Timeout(c.cfg.Timeout)

	status, raw, errs := a.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("events api request: %w", errors.Join(errs...))
	}
	switch {
	case status == fiber.StatusTooManyRequests || status >= 500:
		return fmt.Errorf("%w: status %d: %s", ErrEventsAPIUnavailable, status, raw)
	case status < 200 || status > 299:
		return fmt.Errorf("%w: status %d: %s", ErrEventsAPIRejected, status, raw)
	}

	var resp eventsAPIResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return fmt.Errorf("events api response: %w", err)
	}
	if resp.Code != 0 {
		return fmt.Errorf("%w: code %d: %s", ErrEventsAPIRejected, resp.Code, resp.Message)
	}

	c.logger.Debug("event delivered",
		zap.String("event", ev.Event),
		zap.String("event_id", ev.EventID),
		zap.String("request_id", resp.RequestID),
	)
	return nil
}
