package usecase_test

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"conversion-tracking-service/internal/attribution/adapters/memory"
	"conversion-tracking-service/internal/attribution/adapters/page"
	"conversion-tracking-service/internal/attribution/core/domain"
	"conversion-tracking-service/internal/attribution/core/ports"
	"conversion-tracking-service/internal/attribution/core/usecase"
)

// fakeStore implements RecordStorePort with overridable behaviour.
type fakeStore struct {
	LoadFn func(ctx context.Context, scope string) (domain.AttributionRecord, error)
	saves  int
}

func (f *fakeStore) LoadRecord(ctx context.Context, scope string) (domain.AttributionRecord, error) {
	return f.LoadFn(ctx, scope)
}

func (f *fakeStore) SaveRecord(ctx context.Context, scope string, rec domain.AttributionRecord) error {
	f.saves++
	return nil
}

func newPage(t *testing.T, rawURL string) ports.Page {
	t.Helper()
	loc, err := page.NewLocation(rawURL)
	if err != nil {
		t.Fatalf("bad url: %v", err)
	}
	return ports.Page{
		VisitorID: "visitor-1",
		SessionID: "session-1",
		Location:  loc,
	}
}

func seed(t *testing.T, store *memory.RecordStore, scope string, rec domain.AttributionRecord) {
	t.Helper()
	if err := store.SaveRecord(context.Background(), scope, rec); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
}

func load(t *testing.T, store *memory.RecordStore, scope string) domain.AttributionRecord {
	t.Helper()
	rec, err := store.LoadRecord(context.Background(), scope)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	return rec
}

func TestResolveToken_URLWinsOverDurable(t *testing.T) {
	durable := memory.NewRecordStore()
	seed(t, durable, "visitor-1", domain.AttributionRecord{"ttclid": "stored"})

	uc := usecase.NewResolveAttributionUseCase(durable, memory.NewRecordStore(), nil)
	p := newPage(t, "https://shop.example/checkout?ttclid=from-url")

	token, ok := uc.ResolveToken(context.Background(), p)
	if !ok || token != "from-url" {
		t.Fatalf("expected from-url, got %q (found=%v)", token, ok)
	}

	if got := load(t, durable, "visitor-1")["ttclid"]; got != "stored" {
		t.Fatalf("durable store overwritten: got %q", got)
	}
}

func TestResolveToken_URLHitPersistedWhenDurableEmpty(t *testing.T) {
	durable := memory.NewRecordStore()
	uc := usecase.NewResolveAttributionUseCase(durable, nil, nil)
	p := newPage(t, "/checkout?click_id=alt-name")

	token, ok := uc.ResolveToken(context.Background(), p)
	if !ok || token != "alt-name" {
		t.Fatalf("expected alt-name, got %q", token)
	}
	if got := load(t, durable, "visitor-1")["ttclid"]; got != "alt-name" {
		t.Fatalf("expected token persisted, got %q", got)
	}
}

func TestResolveToken_FirstKeyNameWins(t *testing.T) {
	uc := usecase.NewResolveAttributionUseCase(memory.NewRecordStore(), nil, nil)
	p := newPage(t, "/checkout?click_id=second&ttclid=first")

	token, _ := uc.ResolveToken(context.Background(), p)
	if token != "first" {
		t.Fatalf("expected ttclid to win over click_id, got %q", token)
	}
}

func TestResolveToken_FromDurable(t *testing.T) {
	durable := memory.NewRecordStore()
	seed(t, durable, "visitor-1", domain.AttributionRecord{"click_id": "stored"})

	uc := usecase.NewResolveAttributionUseCase(durable, nil, nil)

	token, ok := uc.ResolveToken(context.Background(), newPage(t, "/thanks"))
	if !ok || token != "stored" {
		t.Fatalf("expected stored, got %q", token)
	}
}

func TestResolveToken_SessionPromotedToDurable(t *testing.T) {
	durable := memory.NewRecordStore()
	session := memory.NewRecordStore()
	seed(t, session, "session-1", domain.AttributionRecord{"ttclid": "from-session"})

	uc := usecase.NewResolveAttributionUseCase(durable, session, nil)

	token, ok := uc.ResolveToken(context.Background(), newPage(t, "/thanks"))
	if !ok || token != "from-session" {
		t.Fatalf("expected from-session, got %q", token)
	}
	if got := load(t, durable, "visitor-1")["ttclid"]; got != "from-session" {
		t.Fatalf("expected promotion into durable store, got %q", got)
	}
}

func TestResolveToken_CookiePromotedToDurable(t *testing.T) {
	durable := memory.NewRecordStore()
	uc := usecase.NewResolveAttributionUseCase(durable, memory.NewRecordStore(), nil)

	p := newPage(t, "/thanks")
	p.Cookies = page.CookieHeader("foo=bar; ttclid=from%20cookie")

	token, ok := uc.ResolveToken(context.Background(), p)
	if !ok || token != "from cookie" {
		t.Fatalf("expected 'from cookie', got %q", token)
	}
	if got := load(t, durable, "visitor-1")["ttclid"]; got != "from cookie" {
		t.Fatalf("expected promotion into durable store, got %q", got)
	}
}

func TestResolveToken_ReferrerPromotedToDurable(t *testing.T) {
	durable := memory.NewRecordStore()
	uc := usecase.NewResolveAttributionUseCase(durable, nil, nil)

	p := newPage(t, "/thanks")
	p.Referrer = "https://landing.example/offer?ttclid=from-referrer"

	token, ok := uc.ResolveToken(context.Background(), p)
	if !ok || token != "from-referrer" {
		t.Fatalf("expected from-referrer, got %q", token)
	}
	if got := load(t, durable, "visitor-1")["ttclid"]; got != "from-referrer" {
		t.Fatalf("expected promotion into durable store, got %q", got)
	}
}

func TestResolveToken_MalformedReferrerIgnored(t *testing.T) {
	uc := usecase.NewResolveAttributionUseCase(memory.NewRecordStore(), nil, nil)

	p := newPage(t, "/thanks")
	p.Referrer = "offer?ttclid=relative-only"

	if token, ok := uc.ResolveToken(context.Background(), p); ok {
		t.Fatalf("expected not found, got %q", token)
	}
}

func TestResolveToken_NotFound(t *testing.T) {
	uc := usecase.NewResolveAttributionUseCase(memory.NewRecordStore(), memory.NewRecordStore(), nil)

	token, ok := uc.ResolveToken(context.Background(), newPage(t, "/thanks"))
	if ok || token != "" {
		t.Fatalf("expected absence, got %q", token)
	}
}

func TestResolveToken_SoftFailureFallsThrough(t *testing.T) {
	broken := &fakeStore{
		LoadFn: func(ctx context.Context, scope string) (domain.AttributionRecord, error) {
			return nil, errors.New("storage unavailable")
		},
	}
	session := memory.NewRecordStore()
	seed(t, session, "session-1", domain.AttributionRecord{"ttclid": "from-session"})

	uc := usecase.NewResolveAttributionUseCase(broken, session, nil)

	token, ok := uc.ResolveToken(context.Background(), newPage(t, "/thanks"))
	if !ok || token != "from-session" {
		t.Fatalf("expected from-session, got %q", token)
	}
	if broken.saves != 0 {
		t.Fatalf("expected no promotion into an unreadable store")
	}
}

func TestEnsureTokenInURL_Backfills(t *testing.T) {
	durable := memory.NewRecordStore()
	seed(t, durable, "visitor-1", domain.AttributionRecord{
		"ttclid":     "stored",
		"utm_source": "tiktok",
		"utm_medium": "paid",
	})

	uc := usecase.NewResolveAttributionUseCase(durable, nil, nil)

	loc, _ := page.NewLocation("https://shop.example/up1/index.html?utm_medium=organic")
	p := ports.Page{VisitorID: "visitor-1", Location: loc}

	if !uc.EnsureTokenInURL(context.Background(), p) {
		t.Fatalf("expected url to change")
	}

	q := loc.URL().Query()
	if q.Get("ttclid") != "stored" {
		t.Fatalf("expected ttclid backfilled, got %q", q.Get("ttclid"))
	}
	if q.Get("utm_source") != "tiktok" {
		t.Fatalf("expected utm_source backfilled, got %q", q.Get("utm_source"))
	}
	if q.Get("utm_medium") != "organic" {
		t.Fatalf("existing url field overwritten: %q", q.Get("utm_medium"))
	}
	if loc.URL().Path != "/up1/index.html" {
		t.Fatalf("path changed: %s", loc.URL().Path)
	}
}

func TestEnsureTokenInURL_NothingToDo(t *testing.T) {
	uc := usecase.NewResolveAttributionUseCase(memory.NewRecordStore(), nil, nil)

	loc, _ := page.NewLocation("/thanks")
	p := ports.Page{VisitorID: "visitor-1", Location: loc}

	if uc.EnsureTokenInURL(context.Background(), p) {
		t.Fatalf("expected no change")
	}
	if loc.Replaced() {
		t.Fatalf("location should be untouched")
	}
}

func TestCaptureAttribution_FirstTouchWins(t *testing.T) {
	durable := memory.NewRecordStore()
	seed(t, durable, "visitor-1", domain.AttributionRecord{"utm_source": "first"})

	uc := usecase.NewResolveAttributionUseCase(durable, nil, nil)
	p := newPage(t, "/?utm_source=second&utm_campaign=summer")

	rec := uc.CaptureAttribution(context.Background(), p)
	if rec["utm_source"] != "first" || rec["utm_campaign"] != "summer" {
		t.Fatalf("unexpected merge: %v", rec)
	}

	stored := load(t, durable, "visitor-1")
	if stored["utm_campaign"] != "summer" {
		t.Fatalf("expected merged record persisted, got %v", stored)
	}
}

func TestCaptureAttribution_SessionServesLaterRequest(t *testing.T) {
	durable := memory.NewRecordStore()
	session := memory.NewRecordStore()
	seed(t, session, "session-1", domain.AttributionRecord{"utm_source": "first"})

	uc := usecase.NewResolveAttributionUseCase(durable, session, nil)
	uc.CaptureAttribution(context.Background(), newPage(t, "/?ttclid=landing&utm_source=second"))

	stored := load(t, session, "session-1")
	if stored["ttclid"] != "landing" || stored["utm_source"] != "first" {
		t.Fatalf("unexpected session record: %v", stored)
	}

	broken := &fakeStore{
		LoadFn: func(ctx context.Context, scope string) (domain.AttributionRecord, error) {
			return nil, errors.New("storage unavailable")
		},
	}
	later := usecase.NewResolveAttributionUseCase(broken, session, nil)

	token, ok := later.ResolveToken(context.Background(), newPage(t, "/thanks"))
	if !ok || token != "landing" {
		t.Fatalf("expected landing from the session store, got %q (found=%v)", token, ok)
	}
}

func TestCaptureAttribution_NoSessionID(t *testing.T) {
	session := memory.NewRecordStore()
	uc := usecase.NewResolveAttributionUseCase(memory.NewRecordStore(), session, nil)

	p := newPage(t, "/?ttclid=landing")
	p.SessionID = ""
	uc.CaptureAttribution(context.Background(), p)

	if rec := load(t, session, ""); rec != nil {
		t.Fatalf("expected nothing stored without a session id, got %v", rec)
	}
}

func TestUTMQuery(t *testing.T) {
	uc := usecase.NewResolveAttributionUseCase(memory.NewRecordStore(), nil, nil)

	got := uc.UTMQuery(context.Background(), newPage(t, "/?utm_source=tt&utm_term=shoes&ttclid=x"))

	q, err := url.ParseQuery(got)
	if err != nil {
		t.Fatalf("invalid query %q: %v", got, err)
	}
	if q.Get("utm_source") != "tt" || q.Get("utm_term") != "shoes" {
		t.Fatalf("unexpected utm query: %q", got)
	}
	if q.Has("ttclid") {
		t.Fatalf("click id must not be part of the utm query: %q", got)
	}

	if empty := uc.UTMQuery(context.Background(), ports.Page{}); empty != "" {
		t.Fatalf("expected empty query, got %q", empty)
	}
}
