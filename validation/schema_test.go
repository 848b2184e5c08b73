package validation

import (
	"strings"
	"testing"

	"shop_return_desk/models"
	"shop_return_desk/records"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validationError(t *testing.T, err error) *records.ValidationError {
	t.Helper()
	var ve *records.ValidationError
	require.ErrorAs(t, err, &ve)
	return ve
}

func TestReturnItemParseNormalizes(t *testing.T) {
	rec, err := ReturnItems.Parse(map[string]any{
		"return_date":   "2024-03-01",
		"brand_name":    "  Acme  ",
		"store_code":    " S01 ",
		"shop_location": "   ",
		"remark":        nil,
		"unknown_field": 42,
	})
	require.NoError(t, err)

	assert.Equal(t, models.NewDate(2024, 3, 1), rec.ReturnDate)
	assert.Equal(t, "Acme", rec.BrandName)
	require.NotNil(t, rec.StoreCode)
	assert.Equal(t, "S01", *rec.StoreCode)
	assert.Nil(t, rec.ShopLocation)
	assert.Nil(t, rec.Remark)
	assert.Nil(t, rec.Keyboard)
}

func TestReturnItemRules(t *testing.T) {
	base := func() map[string]any {
		return map[string]any{"return_date": "2024-03-01", "brand_name": "Acme"}
	}

	tests := []struct {
		name    string
		mutate  func(m map[string]any)
		field   string
		message string
	}{
		{
			name:    "blank brand",
			mutate:  func(m map[string]any) { m["brand_name"] = "   " },
			field:   "brand_name",
			message: "Brand name is required",
		},
		{
			name:    "missing date",
			mutate:  func(m map[string]any) { delete(m, "return_date") },
			field:   "return_date",
			message: "Return date is required",
		},
		{
			name:    "bad date",
			mutate:  func(m map[string]any) { m["return_date"] = "01/03/2024" },
			field:   "return_date",
			message: "Return date must be a valid date (YYYY-MM-DD)",
		},
		{
			name:    "too long store code",
			mutate:  func(m map[string]any) { m["store_code"] = strings.Repeat("x", 101) },
			field:   "store_code",
			message: "Store code must be at most 100 characters",
		},
		{
			name:    "number in text field",
			mutate:  func(m map[string]any) { m["keyboard"] = 12 },
			field:   "keyboard",
			message: "Keyboard must be text",
		},
		{
			name:    "first failure wins",
			mutate:  func(m map[string]any) { m["brand_name"] = ""; m["remark"] = strings.Repeat("r", 501) },
			field:   "brand_name",
			message: "Brand name is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := base()
			tt.mutate(m)
			_, err := ReturnItems.Parse(m)
			ve := validationError(t, err)
			assert.Equal(t, tt.field, ve.Field)
			assert.Equal(t, tt.message, ve.Message)
		})
	}
}

func TestMaxLengthCountsCharacters(t *testing.T) {
	_, err := ReturnItems.Parse(map[string]any{
		"return_date": "2024-03-01",
		"brand_name":  strings.Repeat("é", 255),
	})
	assert.NoError(t, err)
}

func TestLaptopReturnParse(t *testing.T) {
	rec, err := LaptopReturns.Parse(map[string]any{
		"return_date":   "2024-03-01",
		"brand":         "Dell",
		"laptop_model":  "Latitude 5420",
		"serial_number": "ABC123",
		"has_charger":   false,
		"location":      "",
	})
	require.NoError(t, err)
	assert.False(t, rec.HasCharger)
	assert.Nil(t, rec.Location)
	assert.Nil(t, rec.StoreCode)
}

func TestLaptopReturnChargerRules(t *testing.T) {
	m := map[string]any{
		"return_date":   "2024-03-01",
		"brand":         "Dell",
		"laptop_model":  "Latitude 5420",
		"serial_number": "ABC123",
	}
	_, err := LaptopReturns.Parse(m)
	ve := validationError(t, err)
	assert.Equal(t, "has_charger", ve.Field)
	assert.Equal(t, "Has charger is required", ve.Message)

	m["has_charger"] = "yes"
	_, err = LaptopReturns.Parse(m)
	ve = validationError(t, err)
	assert.Equal(t, "Has charger must be a boolean", ve.Message)
}

func TestLaptopReturnRequiredFields(t *testing.T) {
	_, err := LaptopReturns.Parse(map[string]any{
		"return_date": "2024-03-01",
		"brand":       "Dell",
		"has_charger": true,
	})
	ve := validationError(t, err)
	assert.Equal(t, "Laptop model is required", ve.Message)
}

func TestDefaults(t *testing.T) {
	today := models.NewDate(2024, 5, 6)

	d := LaptopReturns.Defaults(today)
	assert.Equal(t, "2024-05-06", d["return_date"])
	assert.Equal(t, true, d["has_charger"])
	assert.Equal(t, "", d["brand"])

	d = ReturnItems.Defaults(today)
	assert.Equal(t, "2024-05-06", d["return_date"])
	assert.Equal(t, "", d["receiver_signature"])

	_, err := ReturnItems.Parse(d)
	ve := validationError(t, err)
	assert.Equal(t, "brand_name", ve.Field)
}
