package usecase

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	attrPorts "conversion-tracking-service/internal/attribution/core/ports"
	"conversion-tracking-service/internal/identity"
	journalUsecase "conversion-tracking-service/internal/journal/core/usecase"
	"conversion-tracking-service/internal/tracking/core/domain"
	"conversion-tracking-service/internal/tracking/core/ports"

	"go.uber.org/zap"
)

var (
	ErrInvalidPage     = errors.New("page location is required")
	ErrInvalidValue    = errors.New("value must be a finite non-negative number")
	ErrInvalidQuantity = errors.New("quantity cannot be negative")
)

const DefaultCurrency = "BRL"

// EventDispatcher is satisfied by *Dispatcher.
type EventDispatcher interface {
	Dispatch(ctx context.Context, kind domain.EventKind, build BuildCommand) *Delivery
}

type ReportInput struct {
	Page      attrPorts.Page
	UserAgent string
	IP        string

	Customer identity.Customer

	// Value overrides price * quantity when set.
	Value    *float64
	Currency string
	Quantity int

	// ContentID and ContentName override the catalog entry for the path.
	ContentID   string
	ContentName string

	// EventIDPrefix overrides the kind's default id prefix.
	EventIDPrefix string
}

type ReportResult struct {
	EventID string
	// PageURL is the page URL after any attribution backfill.
	PageURL    string
	URLUpdated bool
	Attributed bool

	Delivery *Delivery
	// Identify is nil when the report carried no identity.
	Identify *Delivery
}

type ReportEventConfig struct {
	Catalog  domain.Catalog
	Currency string
}

type ReportEventUseCase struct {
	attribution ports.AttributionPort
	dispatcher  EventDispatcher
	journal     ports.ConversionJournalPort
	hasher      *identity.Hasher
	cfg         ReportEventConfig
	logger      *zap.Logger
}

// NewReportEventUseCase wires the report operations. journal may be nil.
func NewReportEventUseCase(
	attribution ports.AttributionPort,
	dispatcher EventDispatcher,
	journal ports.ConversionJournalPort,
	hasher *identity.Hasher,
	cfg ReportEventConfig,
	logger *zap.Logger,
) *ReportEventUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if hasher == nil {
		hasher = identity.NewHasher(logger)
	}
	if cfg.Currency == "" {
		cfg.Currency = DefaultCurrency
	}
	return &ReportEventUseCase{
		attribution: attribution,
		dispatcher:  dispatcher,
		journal:     journal,
		hasher:      hasher,
		cfg:         cfg,
		logger:      logger.Named("report"),
	}
}

func (uc *ReportEventUseCase) ReportCheckout(ctx context.Context, in ReportInput) (*ReportResult, error) {
	return uc.report(ctx, domain.KindCheckout, in)
}

// ReportPurchase backfills the page URL with stored attribution first and
// re-resolves the attribution token before every delivery attempt.
func (uc *ReportEventUseCase) ReportPurchase(ctx context.Context, in ReportInput) (*ReportResult, error) {
	return uc.report(ctx, domain.KindPurchase, in)
}

func (uc *ReportEventUseCase) ReportViewContent(ctx context.Context, in ReportInput) (*ReportResult, error) {
	return uc.report(ctx, domain.KindViewContent, in)
}

func (uc *ReportEventUseCase) ReportPageView(ctx context.Context, in ReportInput) (*ReportResult, error) {
	return uc.report(ctx, domain.KindPageView, in)
}

func (uc *ReportEventUseCase) report(ctx context.Context, kind domain.EventKind, in ReportInput) (*ReportResult, error) {
	if err := validateReport(in); err != nil {
		return nil, err
	}
	page := in.Page

	res := &ReportResult{}
	if kind == domain.KindPurchase {
		res.URLUpdated = uc.attribution.EnsureTokenInURL(ctx, page)
	}

	uc.attribution.CaptureAttribution(ctx, page)
	token, _ := uc.attribution.ResolveToken(ctx, page)

	u := page.Location.URL()
	res.PageURL = u.String()

	product := uc.cfg.Catalog.ProductForPath(u.Path)
	if in.ContentID != "" {
		product.ID = in.ContentID
	}
	if in.ContentName != "" {
		product.Name = in.ContentName
	}
	content := uc.cfg.Catalog.Describe(product, in.Quantity)

	value := content.Price * float64(content.Quantity)
	if in.Value != nil {
		value = *in.Value
	}

	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = uc.cfg.Currency
	}

	prefix := in.EventIDPrefix
	if strings.TrimSpace(prefix) == "" {
		prefix = kind.IDPrefix()
	}

	hashed := uc.hasher.Hash(in.Customer)

	ev := domain.NewEvent(kind, domain.EventPayload{
		Contents:    []domain.Content{content},
		ContentType: content.ContentType,
		Value:       value,
		Currency:    currency,
		EventID:     domain.GenerateEventID(prefix),
		Hashed:      hashed,
		UserAgent:   strings.TrimSpace(in.UserAgent),
		TTCLID:      token,
	})
	res.EventID = ev.ID()

	pageCtx := domain.PageContext{
		URL:       res.PageURL,
		Referrer:  page.Referrer,
		UserAgent: strings.TrimSpace(in.UserAgent),
		IP:        in.IP,
	}

	if !hashed.IsEmpty() {
		res.Identify = uc.dispatcher.Dispatch(ctx, kind, func(context.Context) domain.Command {
			return domain.IdentifyCommand(hashed, pageCtx)
		})
	}

	res.Delivery = uc.dispatcher.Dispatch(ctx, kind, func(ctx context.Context) domain.Command {
		if kind == domain.KindPurchase && !ev.HasToken() {
			if t, ok := uc.attribution.ResolveToken(ctx, page); ok {
				ev.PatchToken(t)
			}
		}
		p := ev.Snapshot()
		if kind == domain.KindPageView {
			return domain.PageCommand(p, pageCtx)
		}
		return domain.TrackCommand(kind.EventName(), p, pageCtx)
	})
	res.Attributed = ev.HasToken()

	uc.journalConversion(ctx, kind, ev.Snapshot(), res, page.VisitorID, u.Path)

	return res, nil
}

func (uc *ReportEventUseCase) journalConversion(
	ctx context.Context,
	kind domain.EventKind,
	p domain.EventPayload,
	res *ReportResult,
	visitorID, path string,
) {
	if uc.journal == nil {
		return
	}

	ids := make([]string, 0, len(p.Contents))
	for _, c := range p.Contents {
		ids = append(ids, c.ContentID)
	}

	_, err := uc.journal.Execute(ctx, journalUsecase.RecordConversionInput{
		EventName:  kind.EventName(),
		EventID:    p.EventID,
		Channel:    res.Delivery.Channel,
		VisitorID:  visitorID,
		PagePath:   path,
		Timestamp:  time.Now().Unix(),
		ContentIDs: ids,
		Value:      p.Value,
		Currency:   p.Currency,
		Attributed: res.Attributed,
	})
	if err != nil {
		uc.logger.Warn("conversion not journaled",
			zap.String("event_id", p.EventID),
			zap.Error(err),
		)
	}
}

func validateReport(in ReportInput) error {
	if in.Page.Location == nil || in.Page.Location.URL() == nil {
		return ErrInvalidPage
	}
	if in.Value != nil && (math.IsNaN(*in.Value) || math.IsInf(*in.Value, 0) || *in.Value < 0) {
		return ErrInvalidValue
	}
	if in.Quantity < 0 {
		return ErrInvalidQuantity
	}
	return nil
}
