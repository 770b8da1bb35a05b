package usecase

import (
	"context"
	"net/url"

	"conversion-tracking-service/internal/attribution/core/domain"
	"conversion-tracking-service/internal/attribution/core/ports"

	"go.uber.org/zap"
)

const (
	sourceURL      = "url"
	sourceDurable  = "durable_store"
	sourceSession  = "session_store"
	sourceCookie   = "cookie"
	sourceReferrer = "referrer"
)

type tokenSource struct {
	name    string
	lookup  func(ctx context.Context, page ports.Page) domain.Lookup
	promote bool
}

type ResolveAttributionUseCase struct {
	durable ports.RecordStorePort
	session ports.RecordStorePort
	logger  *zap.Logger
}

func NewResolveAttributionUseCase(durable, session ports.RecordStorePort, logger *zap.Logger) *ResolveAttributionUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResolveAttributionUseCase{
		durable: durable,
		session: session,
		logger:  logger.Named("attribution"),
	}
}

// ResolveToken walks the sources in priority order and returns the first
// attribution token found. A hit from any source other than the durable
// store is persisted there, without overwriting a stored token.
func (uc *ResolveAttributionUseCase) ResolveToken(ctx context.Context, page ports.Page) (string, bool) {
	sources := []tokenSource{
		{name: sourceURL, lookup: uc.fromURL, promote: true},
		{name: sourceDurable, lookup: uc.fromDurable},
		{name: sourceSession, lookup: uc.fromSession, promote: true},
		{name: sourceCookie, lookup: uc.fromCookies, promote: true},
		{name: sourceReferrer, lookup: uc.fromReferrer, promote: true},
	}

	for _, s := range sources {
		res := s.lookup(ctx, page)
		switch res.Status {
		case domain.SoftFailure:
			uc.logger.Warn("attribution source unreadable",
				zap.String("source", s.name),
				zap.Error(res.Err),
			)
			continue
		case domain.NotFound:
			continue
		}
		if !res.Found() {
			continue
		}

		if s.promote {
			uc.promote(ctx, page, res)
		}
		uc.logger.Debug("attribution token resolved", zap.String("source", s.name))
		return res.Value, true
	}

	uc.logger.Info("attribution token not found",
		zap.String("visitor_id", page.VisitorID),
	)
	return "", false
}

func (uc *ResolveAttributionUseCase) promote(ctx context.Context, page ports.Page, res domain.Lookup) {
	if page.VisitorID == "" || uc.durable == nil {
		return
	}

	rec, err := uc.durable.LoadRecord(ctx, page.VisitorID)
	if err != nil {
		uc.logger.Warn("skip token promotion: durable store unreadable",
			zap.String("source", res.Source),
			zap.Error(err),
		)
		return
	}
	if rec == nil {
		rec = domain.AttributionRecord{}
	}

	// a stored token under either name is never overwritten
	if _, ok := rec.ClickID(); ok {
		return
	}
	rec[domain.FieldClickID] = res.Value

	if err := uc.durable.SaveRecord(ctx, page.VisitorID, rec); err != nil {
		uc.logger.Warn("token promotion failed",
			zap.String("source", res.Source),
			zap.Error(err),
		)
	}
}

// EnsureTokenInURL backfills tracked fields missing from the page URL with
// the values held in the durable store. It reports whether the URL changed.
// Failures are logged and never surface to the caller.
func (uc *ResolveAttributionUseCase) EnsureTokenInURL(ctx context.Context, page ports.Page) bool {
	if page.Location == nil || page.Location.URL() == nil || page.VisitorID == "" || uc.durable == nil {
		return false
	}

	rec, err := uc.durable.LoadRecord(ctx, page.VisitorID)
	if err != nil {
		uc.logger.Warn("url backfill skipped: durable store unreadable", zap.Error(err))
		return false
	}
	if len(rec) == 0 {
		return false
	}

	q := page.Location.URL().Query()
	changed := false
	for _, k := range domain.TrackedKeys {
		if q.Get(k) != "" {
			continue
		}
		if v, ok := rec.Get(k); ok {
			q.Set(k, v)
			changed = true
		}
	}
	if !changed {
		return false
	}

	if err := page.Location.ReplaceQuery(q); err != nil {
		uc.logger.Warn("url backfill failed", zap.Error(err))
		return false
	}
	return true
}

// CaptureAttribution merges the tracked fields present in the page URL into
// the durable and session records (first touch wins) and returns the merged
// durable record.
func (uc *ResolveAttributionUseCase) CaptureAttribution(ctx context.Context, page ports.Page) domain.AttributionRecord {
	rec := domain.AttributionRecord{}
	if page.VisitorID != "" && uc.durable != nil {
		stored, err := uc.durable.LoadRecord(ctx, page.VisitorID)
		if err != nil {
			uc.logger.Warn("durable store unreadable, capturing from url only", zap.Error(err))
		} else if stored != nil {
			rec = stored.Clone()
		}
	}

	if page.Location == nil || page.Location.URL() == nil {
		return rec
	}

	q := page.Location.URL().Query()
	if mergeQuery(rec, q) && page.VisitorID != "" && uc.durable != nil {
		if err := uc.durable.SaveRecord(ctx, page.VisitorID, rec); err != nil {
			uc.logger.Warn("attribution capture not persisted", zap.Error(err))
		}
	}
	uc.captureSession(ctx, page.SessionID, q)
	return rec
}

func (uc *ResolveAttributionUseCase) captureSession(ctx context.Context, sessionID string, q url.Values) {
	if sessionID == "" || uc.session == nil {
		return
	}

	rec, err := uc.session.LoadRecord(ctx, sessionID)
	if err != nil {
		uc.logger.Warn("session store unreadable, capture skipped", zap.Error(err))
		return
	}
	if rec == nil {
		rec = domain.AttributionRecord{}
	}
	if !mergeQuery(rec, q) {
		return
	}
	if err := uc.session.SaveRecord(ctx, sessionID, rec); err != nil {
		uc.logger.Warn("session attribution capture not persisted", zap.Error(err))
	}
}

func mergeQuery(rec domain.AttributionRecord, q url.Values) bool {
	changed := false
	for _, k := range domain.TrackedKeys {
		if rec.SetIfAbsent(k, q.Get(k)) {
			changed = true
		}
	}
	return changed
}

// UTMQuery returns the captured UTM fields encoded as a query string, or ""
// when none are known.
func (uc *ResolveAttributionUseCase) UTMQuery(ctx context.Context, page ports.Page) string {
	utm := uc.CaptureAttribution(ctx, page).UTM()
	if len(utm) == 0 {
		return ""
	}
	q := url.Values{}
	for k, v := range utm {
		q.Set(k, v)
	}
	return q.Encode()
}

func (uc *ResolveAttributionUseCase) fromURL(_ context.Context, page ports.Page) domain.Lookup {
	if page.Location == nil || page.Location.URL() == nil {
		return domain.NotFoundIn(sourceURL)
	}
	return firstInQuery(sourceURL, page.Location.URL().Query())
}

func (uc *ResolveAttributionUseCase) fromDurable(ctx context.Context, page ports.Page) domain.Lookup {
	return fromStore(ctx, sourceDurable, uc.durable, page.VisitorID)
}

func (uc *ResolveAttributionUseCase) fromSession(ctx context.Context, page ports.Page) domain.Lookup {
	return fromStore(ctx, sourceSession, uc.session, page.SessionID)
}

func (uc *ResolveAttributionUseCase) fromCookies(_ context.Context, page ports.Page) domain.Lookup {
	if page.Cookies == nil {
		return domain.NotFoundIn(sourceCookie)
	}
	for _, k := range domain.ClickIDKeys {
		v, err := page.Cookies.Cookie(k)
		if err != nil {
			return domain.SoftFailureIn(sourceCookie, err)
		}
		if v != "" {
			return domain.FoundIn(sourceCookie, v)
		}
	}
	return domain.NotFoundIn(sourceCookie)
}

func (uc *ResolveAttributionUseCase) fromReferrer(_ context.Context, page ports.Page) domain.Lookup {
	if page.Referrer == "" {
		return domain.NotFoundIn(sourceReferrer)
	}
	u, err := url.Parse(page.Referrer)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return domain.NotFoundIn(sourceReferrer)
	}
	return firstInQuery(sourceReferrer, u.Query())
}

func fromStore(ctx context.Context, source string, store ports.RecordStorePort, scope string) domain.Lookup {
	if store == nil || scope == "" {
		return domain.NotFoundIn(source)
	}
	rec, err := store.LoadRecord(ctx, scope)
	if err != nil {
		return domain.SoftFailureIn(source, err)
	}
	if v, ok := rec.ClickID(); ok {
		return domain.FoundIn(source, v)
	}
	return domain.NotFoundIn(source)
}

func firstInQuery(source string, q url.Values) domain.Lookup {
	for _, k := range domain.ClickIDKeys {
		if v := q.Get(k); v != "" {
			return domain.FoundIn(source, v)
		}
	}
	return domain.NotFoundIn(source)
}
