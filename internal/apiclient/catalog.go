// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Pricing models used by the catalog.
const (
	PricingFree = "free"
	PricingPaid = "paid"
)

// NamedRef is a {name, slug} pair embedded in catalog entries.
type NamedRef struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Author is a course instructor.
type Author struct {
	FullName  string `json:"full_name"`
	AvatarURL string `json:"avatar_url"`
}

// Course is one entry of the course catalog.
type Course struct {
	Title         string              `json:"title"`
	Slug          string              `json:"slug"`
	Description   *string             `json:"description"`
	ThumbnailURL  *string             `json:"thumbnail_url"`
	PricingModel  string              `json:"pricing_model"`
	RegularPrice  decimal.NullDecimal `json:"regular_price"`
	SalePrice     decimal.NullDecimal `json:"sale_price"`
	Category      *NamedRef           `json:"category"`
	Authors       []Author            `json:"authors"`
	EnrolledUsers int                 `json:"enrolled_users_count"`
	LessonCount   int                 `json:"lesson_count"`
}

// IsFree reports whether the course costs nothing.
func (c *Course) IsFree() bool {
	if c.PricingModel == PricingFree {
		return true
	}
	return c.Price().IsZero()
}

// Price is the amount a student pays: the sale price when it undercuts the
// regular price, otherwise the regular price.
func (c *Course) Price() decimal.Decimal {
	if c.SalePrice.Valid && (!c.RegularPrice.Valid || c.SalePrice.Decimal.LessThan(c.RegularPrice.Decimal)) {
		return c.SalePrice.Decimal
	}
	if c.RegularPrice.Valid {
		return c.RegularPrice.Decimal
	}
	return decimal.Zero
}

// Discounted reports whether a sale price undercuts the regular price.
func (c *Course) Discounted() bool {
	return !c.IsFree() && c.SalePrice.Valid && c.RegularPrice.Valid &&
		c.SalePrice.Decimal.LessThan(c.RegularPrice.Decimal)
}

// PriceLabel formats the price for display.
func (c *Course) PriceLabel() string {
	if c.IsFree() {
		return "Free"
	}
	return FormatRupees(c.Price())
}

// CategoryName returns the course category name or "".
func (c *Course) CategoryName() string {
	if c.Category == nil {
		return ""
	}
	return c.Category.Name
}

// MockTest is one test inside a mock series.
type MockTest struct {
	Title           string `json:"title"`
	Slug            string `json:"slug"`
	DurationMinutes int    `json:"duration_minutes"`
	TotalMarks      int    `json:"total_marks"`
	IsFree          bool   `json:"is_free"`
}

// MockSeries is a purchasable bundle of mock tests.
type MockSeries struct {
	Title         string              `json:"title"`
	Slug          string              `json:"slug"`
	Description   *string             `json:"description"`
	ThumbnailURL  *string             `json:"thumbnail_url"`
	Price         decimal.NullDecimal `json:"price"`
	EnrolledUsers int                 `json:"enrolled_users_count"`
	Categories    []NamedRef          `json:"mock_categories"`
	Tests         []MockTest          `json:"tests"`
}

// IsFree reports whether the series has no price or a zero price.
func (m *MockSeries) IsFree() bool {
	return !m.Price.Valid || m.Price.Decimal.IsZero()
}

// PriceLabel formats the price for display.
func (m *MockSeries) PriceLabel() string {
	if m.IsFree() {
		return "Free"
	}
	return FormatRupees(m.Price.Decimal)
}

// FreeTests counts the tests that can be taken without buying the series.
func (m *MockSeries) FreeTests() int {
	n := 0
	for _, t := range m.Tests {
		if t.IsFree {
			n++
		}
	}
	return n
}

// CategoryName returns the first category name or "".
func (m *MockSeries) CategoryName() string {
	if len(m.Categories) == 0 {
		return ""
	}
	return m.Categories[0].Name
}

// FormatRupees renders an amount as "₹499" or "₹499.50".
func FormatRupees(d decimal.Decimal) string {
	if d.Equal(d.Truncate(0)) {
		return "₹" + d.StringFixed(0)
	}
	return "₹" + d.StringFixed(2)
}

// Catalog calls the external course and mock-test catalog.
type Catalog struct {
	baseURL string
	http    *http.Client
}

// NewCatalog returns a Catalog client, or nil when baseURL is empty. The
// site treats a nil catalog as "no courses available".
func NewCatalog(baseURL string, timeout time.Duration) *Catalog {
	if baseURL == "" {
		return nil
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Catalog{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Courses lists published courses. A nil Catalog has none.
func (c *Catalog) Courses(ctx context.Context) ([]Course, error) {
	if c == nil {
		return []Course{}, nil
	}
	raw, err := get(ctx, c.http, c.baseURL, "/courses", url.Values{"status": {"published"}})
	if err != nil {
		return nil, err
	}
	list, _, err := decodeList[Course](raw)
	return list, err
}

// MockSeries lists the mock-test series. A nil Catalog has none.
func (c *Catalog) MockSeries(ctx context.Context) ([]MockSeries, error) {
	if c == nil {
		return []MockSeries{}, nil
	}
	raw, err := get(ctx, c.http, c.baseURL, "/mock-series", nil)
	if err != nil {
		return nil, err
	}
	list, _, err := decodeList[MockSeries](raw)
	return list, err
}
