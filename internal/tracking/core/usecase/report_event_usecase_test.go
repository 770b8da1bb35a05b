package usecase_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"testing"
	"time"

	"conversion-tracking-service/internal/attribution/adapters/memory"
	"conversion-tracking-service/internal/attribution/adapters/page"
	attrDomain "conversion-tracking-service/internal/attribution/core/domain"
	attrPorts "conversion-tracking-service/internal/attribution/core/ports"
	attrUsecase "conversion-tracking-service/internal/attribution/core/usecase"
	"conversion-tracking-service/internal/identity"
	journalUsecase "conversion-tracking-service/internal/journal/core/usecase"
	"conversion-tracking-service/internal/tracking/core/domain"
	"conversion-tracking-service/internal/tracking/core/usecase"
)

type fakeJournal struct {
	ExecuteFn func(ctx context.Context, in journalUsecase.RecordConversionInput) (bool, error)
	inputs    []journalUsecase.RecordConversionInput
}

func (f *fakeJournal) Execute(ctx context.Context, in journalUsecase.RecordConversionInput) (bool, error) {
	f.inputs = append(f.inputs, in)
	if f.ExecuteFn != nil {
		return f.ExecuteFn(ctx, in)
	}
	return true, nil
}

var testCatalog = domain.Catalog{
	Default: domain.Product{ID: "kit-main", Name: "Main Kit", Price: 97},
	Upsells: map[int]domain.Product{
		1: {ID: "kit-up1", Name: "Refill Pack", Price: 47},
	},
}

type harness struct {
	durable   *memory.RecordStore
	collector *fakeCollector
	direct    *fakeDirect
	journal   *fakeJournal
	uc        *usecase.ReportEventUseCase
}

func newHarness(t *testing.T, upgraded bool) *harness {
	t.Helper()

	h := &harness{
		durable:   memory.NewRecordStore(),
		collector: &fakeCollector{},
		direct:    &fakeDirect{},
		journal:   &fakeJournal{},
	}
	if upgraded {
		h.collector.upgrade(h.direct)
	}

	resolver := attrUsecase.NewResolveAttributionUseCase(h.durable, memory.NewRecordStore(), nil)
	dispatcher := usecase.NewDispatcher(h.collector, nil, fastTimings, nil)

	h.uc = usecase.NewReportEventUseCase(
		resolver,
		dispatcher,
		h.journal,
		identity.NewHasher(nil),
		usecase.ReportEventConfig{Catalog: testCatalog},
		nil,
	)
	return h
}

func pageFor(t *testing.T, rawURL string) attrPorts.Page {
	t.Helper()
	loc, err := page.NewLocation(rawURL)
	if err != nil {
		t.Fatalf("bad url: %v", err)
	}
	return attrPorts.Page{VisitorID: "visitor-1", SessionID: "session-1", Location: loc}
}

// ------------------------------------------------------------
// PURCHASE PAYLOAD
// ------------------------------------------------------------

func TestReportPurchase_PayloadShape(t *testing.T) {
	h := newHarness(t, true)
	if err := h.durable.SaveRecord(context.Background(), "visitor-1", attrDomain.AttributionRecord{"ttclid": "stored-token"}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	res, err := h.uc.ReportPurchase(context.Background(), usecase.ReportInput{
		Page:      pageFor(t, "https://shop.example/obrigado/index.html"),
		UserAgent: "Mozilla/5.0",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	waitDone(t, res.Delivery)

	tracks := h.direct.Tracks()
	if len(tracks) != 1 {
		t.Fatalf("expected one track call, got %d", len(tracks))
	}
	p := tracks[0]

	if len(p.Contents) != 1 {
		t.Fatalf("expected exactly one content descriptor, got %d", len(p.Contents))
	}
	if p.TTCLID == "" || p.TTCLID != p.Properties.TTCLID {
		t.Fatalf("expected equal non-empty tokens, got %q / %q", p.TTCLID, p.Properties.TTCLID)
	}
	if p.TTCLID != "stored-token" {
		t.Fatalf("expected stored-token, got %q", p.TTCLID)
	}

	raw, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var asMap map[string]any
	if err := json.Unmarshal(raw, &asMap); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"email", "phone_number", "external_id"} {
		if _, ok := asMap[key]; !ok {
			t.Fatalf("expected %q key in payload: %s", key, raw)
		}
	}

	if !res.URLUpdated {
		t.Fatalf("expected stored token to be backfilled into the url")
	}
	u, _ := url.Parse(res.PageURL)
	if u.Query().Get("ttclid") != "stored-token" {
		t.Fatalf("expected url to carry the token, got %s", res.PageURL)
	}
	if !res.Attributed {
		t.Fatalf("expected attributed result")
	}
	if res.Identify != nil {
		t.Fatalf("no identify expected without customer data")
	}
}

func TestReportPurchase_LateTokenPatched(t *testing.T) {
	h := newHarness(t, false)

	res, err := h.uc.ReportPurchase(context.Background(), usecase.ReportInput{
		Page: pageFor(t, "https://shop.example/obrigado/"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Delivery.Channel != usecase.ChannelQueue {
		t.Fatalf("expected queued delivery, got %s", res.Delivery.Channel)
	}
	if q := h.collector.Queued(); len(q) != 1 || q[0].Payload.TTCLID != "" {
		t.Fatalf("expected one queued command without token, got %+v", q)
	}

	// the token becomes resolvable before the collector is ready
	if err := h.durable.SaveRecord(context.Background(), "visitor-1", attrDomain.AttributionRecord{"click_id": "late"}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	h.collector.upgrade(h.direct)

	waitDone(t, res.Delivery)

	tracks := h.direct.Tracks()
	if len(tracks) == 0 {
		t.Fatalf("expected a confirmation track call")
	}
	p := tracks[0]
	if p.TTCLID != "late" || p.Properties.TTCLID != "late" {
		t.Fatalf("expected late token patched in both places, got %q / %q", p.TTCLID, p.Properties.TTCLID)
	}
	if res.Delivery.State() != usecase.StateConfirmed {
		t.Fatalf("expected confirmed delivery")
	}
}

// ------------------------------------------------------------
// CONTENT / VALUE / IDENTIFY
// ------------------------------------------------------------

func TestReportCheckout_UpsellContentAndIdentify(t *testing.T) {
	h := newHarness(t, true)

	res, err := h.uc.ReportCheckout(context.Background(), usecase.ReportInput{
		Page:     pageFor(t, "https://shop.example/up1/checkout.html"),
		Quantity: 2,
		Customer: identity.Customer{Email: " Buyer@Example.com "},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	waitDone(t, res.Delivery)
	if res.Identify == nil {
		t.Fatalf("expected identify dispatch")
	}
	waitDone(t, res.Identify)

	p := h.direct.Tracks()[0]
	c := p.Contents[0]
	if c.ContentID != "kit-up1" || c.Quantity != 2 {
		t.Fatalf("unexpected content: %+v", c)
	}
	if p.Value != 94 {
		t.Fatalf("expected value price*quantity=94, got %v", p.Value)
	}
	if p.Currency != usecase.DefaultCurrency {
		t.Fatalf("expected default currency, got %s", p.Currency)
	}
	if p.Email != identity.SHA256Hex("buyer@example.com") {
		t.Fatalf("expected hashed normalized email, got %q", p.Email)
	}
	if ids := h.direct.Identifies(); len(ids) != 1 || ids[0].Email != p.Email {
		t.Fatalf("expected identify with the same hashed email, got %+v", ids)
	}
	if res.URLUpdated {
		t.Fatalf("checkout must not rewrite the url")
	}
}

func TestReportViewContent_ExplicitValueAndContent(t *testing.T) {
	h := newHarness(t, true)
	v := 10.5

	res, err := h.uc.ReportViewContent(context.Background(), usecase.ReportInput{
		Page:          pageFor(t, "/produto"),
		Value:         &v,
		Currency:      "usd",
		ContentID:     "sku-9",
		ContentName:   "Custom",
		EventIDPrefix: "vc",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	waitDone(t, res.Delivery)

	p := h.direct.Tracks()[0]
	if p.Value != 10.5 || p.Currency != "USD" {
		t.Fatalf("unexpected value/currency: %v %s", p.Value, p.Currency)
	}
	if p.Contents[0].ContentID != "sku-9" || p.Contents[0].ContentName != "Custom" {
		t.Fatalf("unexpected content: %+v", p.Contents[0])
	}
	if len(res.EventID) < 3 || res.EventID[:3] != "vc_" {
		t.Fatalf("expected custom prefix, got %s", res.EventID)
	}
}

func TestReportPageView_UsesPageVerb(t *testing.T) {
	h := newHarness(t, false)

	res, err := h.uc.ReportPageView(context.Background(), usecase.ReportInput{
		Page: pageFor(t, "https://shop.example/?utm_source=tiktok"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	q := h.collector.Queued()
	if len(q) != 1 || q[0].Verb != domain.VerbPage {
		t.Fatalf("expected a queued page command, got %+v", q)
	}
	waitDone(t, res.Delivery)

	stored, _ := h.durable.LoadRecord(context.Background(), "visitor-1")
	if stored["utm_source"] != "tiktok" {
		t.Fatalf("expected utm capture, got %v", stored)
	}
}

// ------------------------------------------------------------
// JOURNAL
// ------------------------------------------------------------

func TestReport_JournalsConversion(t *testing.T) {
	h := newHarness(t, true)

	res, err := h.uc.ReportPurchase(context.Background(), usecase.ReportInput{
		Page: pageFor(t, "https://shop.example/obrigado?ttclid=abc"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	waitDone(t, res.Delivery)

	if len(h.journal.inputs) != 1 {
		t.Fatalf("expected one journal entry, got %d", len(h.journal.inputs))
	}
	in := h.journal.inputs[0]
	if in.EventName != "CompletePayment" || in.EventID != res.EventID || in.Channel != usecase.ChannelDirect {
		t.Fatalf("unexpected journal input: %+v", in)
	}
	if !in.Attributed || in.VisitorID != "visitor-1" || in.PagePath != "/obrigado" {
		t.Fatalf("unexpected journal input: %+v", in)
	}
	if in.Timestamp > time.Now().Unix() {
		t.Fatalf("timestamp in the future: %d", in.Timestamp)
	}
}

func TestReport_JournalFailureDoesNotFailReport(t *testing.T) {
	h := newHarness(t, true)
	h.journal.ExecuteFn = func(ctx context.Context, in journalUsecase.RecordConversionInput) (bool, error) {
		return false, errors.New("db down")
	}

	res, err := h.uc.ReportCheckout(context.Background(), usecase.ReportInput{Page: pageFor(t, "/checkout")})
	if err != nil {
		t.Fatalf("journal failure must not surface: %v", err)
	}
	waitDone(t, res.Delivery)
}

// ------------------------------------------------------------
// VALIDATION
// ------------------------------------------------------------

func TestReport_Validation(t *testing.T) {
	h := newHarness(t, true)
	neg := -1.0

	tests := []struct {
		name string
		in   usecase.ReportInput
		want error
	}{
		{"missing_page", usecase.ReportInput{}, usecase.ErrInvalidPage},
		{"negative_value", usecase.ReportInput{Page: pageFor(t, "/"), Value: &neg}, usecase.ErrInvalidValue},
		{"negative_quantity", usecase.ReportInput{Page: pageFor(t, "/"), Quantity: -2}, usecase.ErrInvalidQuantity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := h.uc.ReportCheckout(context.Background(), tt.in); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}
