package models

// Filters are the structured, exact-match and range predicates of a list
// query. Empty fields are ignored; set fields are AND-combined.
type Filters struct {
	Brand     string `json:"brand,omitempty"`
	StoreCode string `json:"store_code,omitempty"`
	DateFrom  *Date  `json:"date_from,omitempty"`
	DateTo    *Date  `json:"date_to,omitempty"`
}

func (f Filters) IsZero() bool {
	return f.Brand == "" && f.StoreCode == "" && f.DateFrom == nil && f.DateTo == nil
}

type Sort struct {
	Column string
	Desc   bool
}

var DefaultSort = Sort{Column: ColumnReturnDate, Desc: true}

// Normalize falls back to DefaultSort for anything but the sortable columns.
func (s Sort) Normalize() Sort {
	switch s.Column {
	case ColumnReturnDate, ColumnCreatedAt:
		return s
	}
	return DefaultSort
}

type Query struct {
	Search  string
	Filters Filters
	Sort    Sort
}

// Bucket is one group of a grouped count.
type Bucket struct {
	Key   string `json:"key"`
	Count int64  `json:"count"`
}

func (f Filters) Equal(o Filters) bool {
	return f.Brand == o.Brand && f.StoreCode == o.StoreCode &&
		sameDate(f.DateFrom, o.DateFrom) && sameDate(f.DateTo, o.DateTo)
}

func sameDate(a, b *Date) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(b.Time)
}
