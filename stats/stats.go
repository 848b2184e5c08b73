package stats

import (
	"context"
	"fmt"
	"time"

	"shop_return_desk/models"
)

const (
	topBrandsOverview = 5
	topBrandsTrends   = 10
	trendMonths       = 6
)

// Source is the read side of a record store that the dashboards need.
// db.RecordStore and db.MemoryStore implement it.
type Source interface {
	Count(ctx context.Context, f *models.Filters) (int64, error)
	Distinct(ctx context.Context, column string) ([]string, error)
	GroupCount(ctx context.Context, column string, limit int) ([]models.Bucket, error)
	MonthlyCounts(ctx context.Context) ([]models.Bucket, error)
}

type Overview struct {
	Total        int64           `json:"total"`
	ThisMonth    int64           `json:"this_month"`
	ThisWeek     int64           `json:"this_week"`
	ActiveStores int             `json:"active_stores"`
	TopBrands    []models.Bucket `json:"top_brands"`
}

type Trends struct {
	Monthly   []models.Bucket `json:"monthly"`
	TopBrands []models.Bucket `json:"top_brands"`
}

// ErrUnknownCollection is returned for a collection the reader was not
// given.
type ErrUnknownCollection string

func (e ErrUnknownCollection) Error() string {
	return fmt.Sprintf("unknown collection %q", string(e))
}

type entry struct {
	coll models.Collection
	src  Source
}

// Reader serves read-only aggregates per collection.
type Reader struct {
	sources map[string]entry
	now     func() time.Time
}

func NewReader(now func() time.Time) *Reader {
	if now == nil {
		now = time.Now
	}
	return &Reader{sources: make(map[string]entry), now: now}
}

// Register adds the source for a collection.
func (r *Reader) Register(coll models.Collection, src Source) *Reader {
	r.sources[coll.Name] = entry{coll: coll, src: src}
	return r
}

func (r *Reader) lookup(name string) (entry, error) {
	e, ok := r.sources[name]
	if !ok {
		return entry{}, ErrUnknownCollection(name)
	}
	return e, nil
}

// Overview counts all records, this month's and this week's (by return
// date), the stores that have returns, and the five busiest brands.
func (r *Reader) Overview(ctx context.Context, collection string) (Overview, error) {
	e, err := r.lookup(collection)
	if err != nil {
		return Overview{}, err
	}
	today := models.DateOf(r.now())
	monthStart := MonthStart(today)
	weekStart := WeekStart(today)

	var out Overview
	if out.Total, err = e.src.Count(ctx, nil); err != nil {
		return Overview{}, err
	}
	if out.ThisMonth, err = e.src.Count(ctx, &models.Filters{DateFrom: &monthStart}); err != nil {
		return Overview{}, err
	}
	if out.ThisWeek, err = e.src.Count(ctx, &models.Filters{DateFrom: &weekStart}); err != nil {
		return Overview{}, err
	}
	stores, err := e.src.Distinct(ctx, models.ColumnStoreCode)
	if err != nil {
		return Overview{}, err
	}
	out.ActiveStores = len(stores)
	if out.TopBrands, err = e.src.GroupCount(ctx, e.coll.BrandColumn, topBrandsOverview); err != nil {
		return Overview{}, err
	}
	return out, nil
}

// Trends returns the last six months that have records (by creation time,
// oldest first) and the ten busiest brands.
func (r *Reader) Trends(ctx context.Context, collection string) (Trends, error) {
	e, err := r.lookup(collection)
	if err != nil {
		return Trends{}, err
	}
	monthly, err := e.src.MonthlyCounts(ctx)
	if err != nil {
		return Trends{}, err
	}
	if len(monthly) > trendMonths {
		monthly = monthly[len(monthly)-trendMonths:]
	}
	brands, err := e.src.GroupCount(ctx, e.coll.BrandColumn, topBrandsTrends)
	if err != nil {
		return Trends{}, err
	}
	return Trends{Monthly: monthly, TopBrands: brands}, nil
}

// Brands is the full per-brand breakdown, busiest first.
func (r *Reader) Brands(ctx context.Context, collection string) ([]models.Bucket, error) {
	e, err := r.lookup(collection)
	if err != nil {
		return nil, err
	}
	return e.src.GroupCount(ctx, e.coll.BrandColumn, 0)
}

func MonthStart(d models.Date) models.Date {
	return models.NewDate(d.Year(), d.Month(), 1)
}

// WeekStart is the most recent Sunday, d itself on a Sunday.
func WeekStart(d models.Date) models.Date {
	return models.DateOf(d.AddDate(0, 0, -int(d.Weekday())))
}
