package printing

import (
	"strings"
	"testing"
	"time"

	"shop_return_desk/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }

func TestReturnItemPreview(t *testing.T) {
	r := NewRenderer(fixedClock)
	item := &models.ReturnItem{
		ID:                "rep-42",
		ReturnDate:        models.NewDate(2024, 3, 9),
		BrandName:         "Acme",
		CanonPrinterSN:    models.Optional("CP-1"),
		Mouse:             models.Optional("M-7"),
		ReceiverSignature: models.Optional("J. Doe"),
		Remark:            models.Optional("<b>boxed</b>"),
	}

	doc, err := r.Preview(item)
	require.NoError(t, err)

	assert.Equal(t, "Return Receipt - Acme", doc.Title)
	assert.Contains(t, doc.HTML, "09-03-2024")
	assert.Contains(t, doc.HTML, "<td>1</td><td>Canon Printer</td><td>1</td><td>CP-1</td>")
	assert.Contains(t, doc.HTML, "<td>2</td><td>Mouse</td><td>1</td><td>M-7</td>")
	assert.NotContains(t, doc.HTML, "Keyboard")
	assert.NotContains(t, doc.HTML, "No items returned")
	assert.Contains(t, doc.HTML, "J. Doe")
	assert.Contains(t, doc.HTML, "&lt;b&gt;boxed&lt;/b&gt;")
	assert.Contains(t, doc.HTML, "&copy; 2025")
	assert.Contains(t, doc.HTML, "Report ID: rep-42")
	assert.NotContains(t, doc.HTML, "window.print()")
}

func TestReturnItemNoItems(t *testing.T) {
	doc, err := NewRenderer(fixedClock).HardCopy(&models.ReturnItem{
		ID:         "r1",
		ReturnDate: models.NewDate(2024, 1, 2),
		BrandName:  "Zen",
	})
	require.NoError(t, err)
	assert.Contains(t, doc.HTML, "No items returned")
	assert.Contains(t, doc.HTML, "window.print()")
	assert.Contains(t, doc.HTML, "window.close()")
}

func TestLaptopReturnLayout(t *testing.T) {
	r := NewRenderer(fixedClock)
	l := &models.LaptopReturn{
		ID:           "lap-1",
		ReturnDate:   models.NewDate(2024, 3, 1),
		Brand:        "Dell",
		LaptopModel:  "Latitude 5420",
		SerialNumber: "ABC123",
		HasCharger:   false,
	}

	doc, err := r.Preview(l)
	require.NoError(t, err)
	assert.Equal(t, "Laptop Return Receipt - Dell", doc.Title)
	assert.Contains(t, doc.HTML, "<strong>Store Code:</strong> N/A")
	assert.Contains(t, doc.HTML, "<strong>Location:</strong> N/A")
	assert.Contains(t, doc.HTML, "01-03-2024")
	assert.Contains(t, doc.HTML, "<td>Latitude 5420</td><td>ABC123</td><td>Without Charger</td>")

	l.HasCharger = true
	l.StoreCode = models.Optional("S01")
	doc, err = r.HardCopy(l)
	require.NoError(t, err)
	assert.Contains(t, doc.HTML, "With Charger")
	assert.Contains(t, doc.HTML, "<strong>Store Code:</strong> S01")
	assert.Equal(t, 1, strings.Count(doc.HTML, "window.print()"))
}

func TestRenderIsDeterministic(t *testing.T) {
	r := NewRenderer(fixedClock)
	item := &models.ReturnItem{ID: "x", ReturnDate: models.NewDate(2024, 1, 1), BrandName: "Acme"}

	a, err := r.Preview(item)
	require.NoError(t, err)
	b, err := r.Preview(item)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
