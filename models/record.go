package models

import "time"

// Record is the behaviour shared by the two intake tables. The memory store,
// the exporter and the forms only talk to records through it.
type Record interface {
	RecordID() string
	Collection() Collection
	ReturnedOn() Date
	Created() time.Time
	Updated() time.Time

	// Stamp sets the insert-only system fields.
	Stamp(id, userID string, now time.Time)
	Touch(now time.Time)

	// Editable returns every user-editable column with its value; absent
	// optional fields are nil so a full UPDATE writes NULL.
	Editable() map[string]any

	// Column returns the text value of a column; ok is false for NULL or for a
	// column the record does not have.
	Column(name string) (value string, ok bool)

	FormValues() map[string]any
	ExportRow() []any
}

// Entity ties a record type to its pointer so generic stores can allocate
// values and still call pointer methods.
type Entity[T any] interface {
	*T
	Record
	CopyEditable(from *T)
}

const (
	ColumnReturnDate = "return_date"
	ColumnStoreCode  = "store_code"
	ColumnCreatedAt  = "created_at"

	// ExportPlaceholder fills spreadsheet cells of NULL optional fields.
	ExportPlaceholder = "-"
)

// Collection describes one intake table.
type Collection struct {
	Name          string // table name, also the URL and export file stem
	Label         string // singular, lower case: "return item"
	Title         string // sheet name: "Return Items"
	BrandColumn   string
	SearchColumns []string
	ExportColumns []string
}

func (c Collection) FacetColumns() []string {
	return []string{c.BrandColumn, ColumnStoreCode}
}

// Optional returns nil for an empty string so storage never holds "".
func Optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func orPlaceholder(p *string) string {
	if p == nil {
		return ExportPlaceholder
	}
	return *p
}

func column(p *string) (string, bool) {
	if p == nil {
		return "", false
	}
	return *p, true
}
