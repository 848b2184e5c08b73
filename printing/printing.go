// Package printing renders receipts for returned hardware as standalone HTML
// documents. Rendering is pure: it never reads storage and only takes the
// current year from the injected clock.
package printing

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"

	"shop_return_desk/models"
)

//go:embed templates/*.html
var templateFS embed.FS

// Document is a rendered receipt.
type Document struct {
	Title string
	HTML  string
}

// Line is one row of the returned-items table.
type Line struct {
	Name   string
	Qty    int
	Serial string
}

// view is what the shared base template reads; Layout views embed it.
type view struct {
	Title    string
	Receiver string
	Year     int
	ReportID string
	Print    bool
}

// Layout turns one kind of record into a template and its data.
type Layout struct {
	name  string
	title string
	tmpl  *template.Template
	data  func(rec models.Record, base view) (any, error)
}

var funcs = template.FuncMap{"inc": func(i int) int { return i + 1 }}

func newLayout(name, title, file string, data func(models.Record, view) (any, error)) Layout {
	t := template.Must(template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/base.html", "templates/"+file))
	return Layout{name: name, title: title, tmpl: t, data: data}
}

var (
	ReturnItemLayout   = newLayout(models.ReturnItemTable, "Return Receipt", "return_item.html", returnItemView)
	LaptopReturnLayout = newLayout(models.LaptopReturnTable, "Laptop Return Receipt", "laptop_return.html", laptopReturnView)
)

// Renderer picks the layout for a record's collection.
type Renderer struct {
	layouts map[string]Layout
	now     func() time.Time
}

func NewRenderer(now func() time.Time) *Renderer {
	if now == nil {
		now = time.Now
	}
	return &Renderer{
		layouts: map[string]Layout{
			ReturnItemLayout.name:   ReturnItemLayout,
			LaptopReturnLayout.name: LaptopReturnLayout,
		},
		now: now,
	}
}

// Preview renders the receipt for on-screen viewing.
func (r *Renderer) Preview(rec models.Record) (Document, error) {
	return r.render(rec, false)
}

// HardCopy renders the receipt with a script that opens the print dialog on
// load and closes the window after printing.
func (r *Renderer) HardCopy(rec models.Record) (Document, error) {
	return r.render(rec, true)
}

func (r *Renderer) render(rec models.Record, print bool) (Document, error) {
	coll := rec.Collection()
	layout, ok := r.layouts[coll.Name]
	if !ok {
		return Document{}, fmt.Errorf("printing: no layout for %s", coll.Name)
	}

	base := view{
		Title:    layout.title,
		Year:     r.now().Year(),
		ReportID: rec.RecordID(),
		Print:    print,
	}
	if v, ok := rec.Column(coll.BrandColumn); ok {
		base.Title += " - " + v
	}
	data, err := layout.data(rec, base)
	if err != nil {
		return Document{}, err
	}

	var buf bytes.Buffer
	if err := layout.tmpl.ExecuteTemplate(&buf, "base", data); err != nil {
		return Document{}, fmt.Errorf("printing: render %s: %w", coll.Name, err)
	}
	return Document{Title: base.Title, HTML: buf.String()}, nil
}

type returnItemData struct {
	view
	Date   string
	Items  []Line
	Remark string
}

func returnItemView(rec models.Record, base view) (any, error) {
	item, ok := rec.(*models.ReturnItem)
	if !ok {
		return nil, fmt.Errorf("printing: expected return item, got %T", rec)
	}
	base.Receiver = value(item.ReceiverSignature)

	var lines []Line
	for _, p := range []struct {
		name string
		v    *string
	}{
		{"Canon Printer", item.CanonPrinterSN},
		{"Receipt Printer", item.ReceiptPrinterSN},
		{"USB Hub", item.UsbHub},
		{"Keyboard", item.Keyboard},
		{"Mouse", item.Mouse},
		{"Scanner", item.Scanner},
	} {
		if p.v != nil {
			lines = append(lines, Line{Name: p.name, Qty: 1, Serial: *p.v})
		}
	}

	return returnItemData{
		view:   base,
		Date:   item.ReturnDate.Display(),
		Items:  lines,
		Remark: value(item.Remark),
	}, nil
}

type laptopReturnData struct {
	view
	Brand     string
	StoreCode string
	Location  string
	Date      string
	Model     string
	Serial    string
	Charger   string
	Remark    string
}

func laptopReturnView(rec models.Record, base view) (any, error) {
	l, ok := rec.(*models.LaptopReturn)
	if !ok {
		return nil, fmt.Errorf("printing: expected laptop return, got %T", rec)
	}
	charger := "Without Charger"
	if l.HasCharger {
		charger = "With Charger"
	}
	return laptopReturnData{
		view:      base,
		Brand:     l.Brand,
		StoreCode: orNA(l.StoreCode),
		Location:  orNA(l.Location),
		Date:      l.ReturnDate.Display(),
		Model:     l.LaptopModel,
		Serial:    l.SerialNumber,
		Charger:   charger,
		Remark:    value(l.Remark),
	}, nil
}

func value(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func orNA(p *string) string {
	if p == nil {
		return "N/A"
	}
	return *p
}
