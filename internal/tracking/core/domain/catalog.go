package domain

import (
	"fmt"
	"regexp"
	"strconv"
)

const DefaultContentType = "product"

type Product struct {
	ID    string
	Name  string
	Price float64
}

// Catalog is the static content lookup table: one default product plus
// products keyed by upsell index.
type Catalog struct {
	Default     Product
	Upsells     map[int]Product
	ContentType string
}

var upsellPattern = regexp.MustCompile(`(?i)(?:^|/)up(?:sell)?[-_]?(\d+)(?:[/.]|$)`)

// UpsellIndex extracts the upsell number from a page path.
func UpsellIndex(path string) (int, bool) {
	m := upsellPattern.FindStringSubmatch(path)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// ProductForPath picks the upsell product for upsell pages and the default
// product otherwise.
func (c Catalog) ProductForPath(path string) Product {
	n, ok := UpsellIndex(path)
	if !ok {
		return c.Default
	}
	if p, found := c.Upsells[n]; found {
		return p
	}
	return Product{
		ID:    fmt.Sprintf("upsell-%d", n),
		Name:  fmt.Sprintf("Upsell %d", n),
		Price: c.Default.Price,
	}
}

func (c Catalog) contentType() string {
	if c.ContentType == "" {
		return DefaultContentType
	}
	return c.ContentType
}

// Describe builds the single content descriptor of an event.
func (c Catalog) Describe(p Product, quantity int) Content {
	if quantity <= 0 {
		quantity = 1
	}
	return Content{
		ContentID:   p.ID,
		ContentType: c.contentType(),
		ContentName: p.Name,
		Quantity:    quantity,
		Price:       p.Price,
	}
}
