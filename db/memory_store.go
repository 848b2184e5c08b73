package db

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"shop_return_desk/models"
)

// MemoryStore keeps one intake table in process memory. It runs the same
// query rules as RecordStore and backs DB_ENABLED=false and the tests.
type MemoryStore[T any, P models.Entity[T]] struct {
	mu   sync.RWMutex
	rows map[string]*T
	coll models.Collection

	// Fail, when set, is returned by every call. Tests use it to simulate an
	// unreachable backend.
	Fail error
}

func NewMemoryStore[T any, P models.Entity[T]]() *MemoryStore[T, P] {
	return &MemoryStore[T, P]{rows: make(map[string]*T), coll: P(new(T)).Collection()}
}

func (m *MemoryStore[T, P]) Insert(_ context.Context, rec *T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return m.Fail
	}
	id := P(rec).RecordID()
	if _, ok := m.rows[id]; ok {
		return fmt.Errorf("insert %s: duplicate id %s", m.coll.Name, id)
	}
	cp := *rec
	m.rows[id] = &cp
	return nil
}

func (m *MemoryStore[T, P]) Update(_ context.Context, id string, rec *T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return m.Fail
	}
	cur, ok := m.rows[id]
	if !ok {
		return ErrNotFound
	}
	next := *cur
	P(&next).CopyEditable(rec)
	m.rows[id] = &next
	return nil
}

func (m *MemoryStore[T, P]) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return m.Fail
	}
	if _, ok := m.rows[id]; !ok {
		return ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

func (m *MemoryStore[T, P]) Get(_ context.Context, id string) (*T, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Fail != nil {
		return nil, m.Fail
	}
	rec, ok := m.rows[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (m *MemoryStore[T, P]) Query(_ context.Context, q models.Query) ([]T, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Fail != nil {
		return nil, m.Fail
	}

	out := []T{}
	for _, rec := range m.rows {
		p := P(rec)
		if matchesSearch(p, m.coll.SearchColumns, q.Search) && matchesFilters(p, m.coll, &q.Filters) {
			out = append(out, *rec)
		}
	}
	sortRecords[T, P](out, q.Sort.Normalize())
	return out, nil
}

func (m *MemoryStore[T, P]) Count(_ context.Context, f *models.Filters) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Fail != nil {
		return 0, m.Fail
	}
	var n int64
	for _, rec := range m.rows {
		if matchesFilters(P(rec), m.coll, f) {
			n++
		}
	}
	return n, nil
}

func (m *MemoryStore[T, P]) Distinct(_ context.Context, column string) ([]string, error) {
	counts, err := m.counts(column)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(counts))
	for v := range counts {
		out = append(out, v)
	}
	slices.Sort(out)
	return out, nil
}

func (m *MemoryStore[T, P]) GroupCount(_ context.Context, column string, limit int) ([]models.Bucket, error) {
	counts, err := m.counts(column)
	if err != nil {
		return nil, err
	}
	return topBuckets(counts, limit), nil
}

func (m *MemoryStore[T, P]) MonthlyCounts(_ context.Context) ([]models.Bucket, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Fail != nil {
		return nil, m.Fail
	}
	counts := map[string]int64{}
	for _, rec := range m.rows {
		counts[P(rec).Created().UTC().Format("2006-01")]++
	}
	out := make([]models.Bucket, 0, len(counts))
	for k, n := range counts {
		out = append(out, models.Bucket{Key: k, Count: n})
	}
	slices.SortFunc(out, func(a, b models.Bucket) int { return strings.Compare(a.Key, b.Key) })
	return out, nil
}

func (m *MemoryStore[T, P]) counts(column string) (map[string]int64, error) {
	if !slices.Contains(m.coll.FacetColumns(), column) {
		return nil, fmt.Errorf("column %q is not a facet of %s", column, m.coll.Name)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Fail != nil {
		return nil, m.Fail
	}
	counts := map[string]int64{}
	for _, rec := range m.rows {
		if v, ok := P(rec).Column(column); ok {
			counts[v]++
		}
	}
	return counts, nil
}

func topBuckets(counts map[string]int64, limit int) []models.Bucket {
	out := make([]models.Bucket, 0, len(counts))
	for k, n := range counts {
		out = append(out, models.Bucket{Key: k, Count: n})
	}
	slices.SortFunc(out, func(a, b models.Bucket) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return strings.Compare(a.Key, b.Key)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func matchesSearch(rec models.Record, columns []string, term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	for _, col := range columns {
		if v, ok := rec.Column(col); ok && strings.Contains(strings.ToLower(v), term) {
			return true
		}
	}
	return false
}

func matchesFilters(rec models.Record, coll models.Collection, f *models.Filters) bool {
	if f == nil {
		return true
	}
	if f.Brand != "" {
		if v, _ := rec.Column(coll.BrandColumn); v != f.Brand {
			return false
		}
	}
	if f.StoreCode != "" {
		if v, ok := rec.Column(models.ColumnStoreCode); !ok || v != f.StoreCode {
			return false
		}
	}
	day := rec.ReturnedOn()
	if f.DateFrom != nil && day.Before(f.DateFrom.Time) {
		return false
	}
	if f.DateTo != nil && day.After(f.DateTo.Time) {
		return false
	}
	return true
}

// sortRecords applies the sort column, then created_at DESC, then id DESC.
func sortRecords[T any, P models.Entity[T]](rows []T, s models.Sort) {
	slices.SortStableFunc(rows, func(a, b T) int {
		pa, pb := P(&a), P(&b)
		var c int
		switch s.Column {
		case models.ColumnCreatedAt:
			c = pa.Created().Compare(pb.Created())
		default:
			c = pa.ReturnedOn().Compare(pb.ReturnedOn().Time)
		}
		if s.Desc {
			c = -c
		}
		if c != 0 {
			return c
		}
		if c = pb.Created().Compare(pa.Created()); c != 0 {
			return c
		}
		return strings.Compare(pb.RecordID(), pa.RecordID())
	})
}
