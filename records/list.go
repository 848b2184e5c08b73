package records

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"shop_return_desk/export"
	"shop_return_desk/models"
	"shop_return_desk/session"
)

// List holds the rows matching the current search and filters. Sync reloads
// them when an input changed or the collection signal moved.
type List[T any, P models.Entity[T]] struct {
	adapter *Adapter[T, P]
	signal  *Signal

	mu      sync.Mutex
	search  string
	filters models.Filters
	sort    models.Sort
	rows    []T

	loaded      bool
	dirty       bool
	seenVersion uint64
	staged      string
}

func NewList[T any, P models.Entity[T]](a *Adapter[T, P], signal *Signal) *List[T, P] {
	return &List[T, P]{adapter: a, signal: signal, sort: models.DefaultSort}
}

func (l *List[T, P]) SetSearch(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s = strings.TrimSpace(s)
	if s != l.search {
		l.search = s
		l.dirty = true
	}
}

func (l *List[T, P]) SetFilters(f models.Filters) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !f.Equal(l.filters) {
		l.filters = f
		l.dirty = true
	}
}

func (l *List[T, P]) SetSort(s models.Sort) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s = s.Normalize()
	if s != l.sort {
		l.sort = s
		l.dirty = true
	}
}

// Sync re-queries when needed and reports whether it did. On error the
// previous rows stay.
func (l *List[T, P]) Sync(ctx context.Context) (bool, error) {
	l.mu.Lock()
	version := l.signal.Version()
	if l.loaded && !l.dirty && version == l.seenVersion {
		l.mu.Unlock()
		return false, nil
	}
	q := models.Query{Search: l.search, Filters: l.filters, Sort: l.sort}
	l.mu.Unlock()

	rows, err := l.adapter.Query(ctx, q)
	if err != nil {
		return false, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.rows = rows
	l.loaded = true
	l.dirty = false
	l.seenVersion = version
	return true, nil
}

// Rows returns a copy of the current rows.
func (l *List[T, P]) Rows() []T {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]T, len(l.rows))
	copy(out, l.rows)
	return out
}

// StageDelete makes id the single delete candidate, replacing any earlier one.
func (l *List[T, P]) StageDelete(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.staged = id
}

func (l *List[T, P]) Staged() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.staged
}

func (l *List[T, P]) CancelDelete() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.staged = ""
}

// ConfirmPrompt is the question shown before a staged delete.
func (l *List[T, P]) ConfirmPrompt() string {
	return fmt.Sprintf("Are you sure you want to delete this %s?", l.adapter.coll.Label)
}

// ConfirmDelete deletes the staged record. On success the row is dropped
// locally without a re-query; on failure the row and the candidate stay.
func (l *List[T, P]) ConfirmDelete(ctx context.Context, ident *session.Identity) error {
	id := l.Staged()
	if id == "" {
		return ErrNothingStaged
	}
	if err := l.adapter.Delete(ctx, ident, id); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.rows {
		if P(&l.rows[i]).RecordID() == id {
			l.rows = append(l.rows[:i], l.rows[i+1:]...)
			break
		}
	}
	if l.staged == id {
		l.staged = ""
	}
	return nil
}

// Filtered reports whether a search or any filter is active.
func (l *List[T, P]) Filtered() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.search != "" || !l.filters.IsZero()
}

// EmptyMessage is shown in place of an empty table; "" when there are rows.
func (l *List[T, P]) EmptyMessage() string {
	if len(l.Rows()) > 0 {
		return ""
	}
	label := l.adapter.coll.Label
	if l.Filtered() {
		return fmt.Sprintf("No %ss found matching your search", label)
	}
	return fmt.Sprintf("No %ss yet. Add your first %s above.", label, label)
}

// Export renders the current rows as a workbook and names the file after the
// collection and the adapter's clock.
func (l *List[T, P]) Export() ([]byte, string, error) {
	rows := l.Rows()
	recs := make([]models.Record, len(rows))
	for i := range rows {
		recs[i] = P(&rows[i])
	}
	coll := l.adapter.coll
	b, err := export.Workbook(coll, recs)
	if err != nil {
		return nil, "", err
	}
	return b, export.Filename(coll, l.adapter.Now()), nil
}

