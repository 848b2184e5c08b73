package records

import (
	"context"
	"strings"
	"sync"

	"shop_return_desk/models"
)

// Facets are the values offered in the filter dropdowns.
type Facets struct {
	Brands     []string `json:"brands"`
	StoreCodes []string `json:"store_codes"`
}

type distincter interface {
	Collection() models.Collection
	Distinct(ctx context.Context, column string) ([]string, error)
}

// FacetCache loads facets once and again whenever the collection signal
// moved since the last load. One cache per collection is shared by the
// server.
type FacetCache struct {
	src    distincter
	signal *Signal

	mu      sync.Mutex
	loaded  bool
	version uint64
	facets  Facets
}

func NewFacetCache(src distincter, signal *Signal) *FacetCache {
	return &FacetCache{src: src, signal: signal}
}

func (c *FacetCache) Load(ctx context.Context) (Facets, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	version := c.signal.Version()
	if c.loaded && version == c.version {
		return c.facets, nil
	}

	coll := c.src.Collection()
	brands, err := c.src.Distinct(ctx, coll.BrandColumn)
	if err != nil {
		return Facets{}, err
	}
	stores, err := c.src.Distinct(ctx, models.ColumnStoreCode)
	if err != nil {
		return Facets{}, err
	}

	c.facets = Facets{Brands: brands, StoreCodes: stores}
	c.loaded = true
	c.version = version
	return c.facets, nil
}

// FilterBuilder keeps pending filter edits apart from the applied filter
// set. Nothing reaches the list until Apply succeeds.
type FilterBuilder struct {
	cache *FacetCache

	mu      sync.Mutex
	pending pendingFilters
	applied models.Filters
}

type pendingFilters struct {
	brand, storeCode, dateFrom, dateTo string
}

func NewFilterBuilder(cache *FacetCache) *FilterBuilder {
	return &FilterBuilder{cache: cache}
}

// Activate returns the facets, loading them if needed.
func (b *FilterBuilder) Activate(ctx context.Context) (Facets, error) {
	return b.cache.Load(ctx)
}

// clearable maps the dropdown's "all" entry and blank input to no filter.
func clearable(v string) string {
	v = strings.TrimSpace(v)
	if strings.EqualFold(v, "all") {
		return ""
	}
	return v
}

func (b *FilterBuilder) SetBrand(v string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending.brand = clearable(v)
}

func (b *FilterBuilder) SetStoreCode(v string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending.storeCode = clearable(v)
}

func (b *FilterBuilder) SetDateFrom(v string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending.dateFrom = clearable(v)
}

func (b *FilterBuilder) SetDateTo(v string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending.dateTo = clearable(v)
}

// Apply commits the pending edits as one filter set. An unparseable date
// fails the whole apply and keeps the previously applied filters.
func (b *FilterBuilder) Apply() (models.Filters, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	f := models.Filters{Brand: b.pending.brand, StoreCode: b.pending.storeCode}
	var err error
	if f.DateFrom, err = parseFilterDate("date_from", "Date from", b.pending.dateFrom); err != nil {
		return b.applied, err
	}
	if f.DateTo, err = parseFilterDate("date_to", "Date to", b.pending.dateTo); err != nil {
		return b.applied, err
	}
	b.applied = f
	return f, nil
}

func parseFilterDate(field, label, v string) (*models.Date, error) {
	if v == "" {
		return nil, nil
	}
	d, err := models.ParseDate(v)
	if err != nil {
		return nil, &ValidationError{Field: field, Message: label + " must be a valid date (YYYY-MM-DD)"}
	}
	return &d, nil
}

// Reset clears both the pending and the applied filters.
func (b *FilterBuilder) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending = pendingFilters{}
	b.applied = models.Filters{}
}

func (b *FilterBuilder) Applied() models.Filters {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.applied
}

func (b *FilterBuilder) Active() bool {
	return !b.Applied().IsZero()
}
