package domain

import "testing"

func testCatalog() Catalog {
	return Catalog{
		Default: Product{ID: "main-offer", Name: "Main Offer", Price: 97},
		Upsells: map[int]Product{
			1: {ID: "upsell-1", Name: "Bonus Pack", Price: 47},
		},
	}
}

func TestUpsellIndex(t *testing.T) {
	tests := []struct {
		path string
		want int
		ok   bool
	}{
		{"/up1/index.html", 1, true},
		{"/funnel/upsell2/", 2, true},
		{"/UP-3", 3, true},
		{"/upsell_4.html", 4, true},
		{"/setup2/index.html", 0, false},
		{"/checkout/", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		got, ok := UpsellIndex(tt.path)
		if got != tt.want || ok != tt.ok {
			t.Errorf("UpsellIndex(%q) = (%d,%v), want (%d,%v)", tt.path, got, ok, tt.want, tt.ok)
		}
	}
}

func TestCatalog_ProductForPath(t *testing.T) {
	c := testCatalog()

	if p := c.ProductForPath("/checkout/index.html"); p.ID != "main-offer" {
		t.Errorf("expected default product, got %+v", p)
	}
	if p := c.ProductForPath("/up1/"); p.Name != "Bonus Pack" {
		t.Errorf("expected upsell 1 from table, got %+v", p)
	}
	if p := c.ProductForPath("/up7/"); p.ID != "upsell-7" {
		t.Errorf("expected synthesized upsell 7, got %+v", p)
	}
}

func TestCatalog_Describe(t *testing.T) {
	c := testCatalog()

	got := c.Describe(c.Default, 0)
	if got.Quantity != 1 {
		t.Errorf("expected quantity floor of 1, got %d", got.Quantity)
	}
	if got.ContentType != DefaultContentType {
		t.Errorf("expected content type %q, got %q", DefaultContentType, got.ContentType)
	}
	if got.ContentID != "main-offer" || got.ContentName != "Main Offer" || got.Price != 97 {
		t.Errorf("unexpected descriptor %+v", got)
	}
}
