package models

import "time"

const LaptopReturnTable = "laptop_returns"

var LaptopReturns = Collection{
	Name:        LaptopReturnTable,
	Label:       "laptop return",
	Title:       "Laptop Returns",
	BrandColumn: "brand",
	SearchColumns: []string{
		"brand", "store_code", "location", "laptop_model", "serial_number", "remark",
	},
	ExportColumns: []string{
		"Return Date", "Brand", "Store Code", "Location",
		"Laptop Model", "Serial Number", "Charger", "Remark",
	},
}

type LaptopReturn struct {
	ID           string  `gorm:"type:uuid;primaryKey" json:"id"`
	ReturnDate   Date    `gorm:"type:date;not null;index" json:"return_date"`
	Brand        string  `gorm:"size:255;not null;index" json:"brand"`
	StoreCode    *string `gorm:"size:100;index" json:"store_code"`
	Location     *string `gorm:"size:255" json:"location"`
	LaptopModel  string  `gorm:"size:255;not null" json:"laptop_model"`
	SerialNumber string  `gorm:"size:100;not null;index" json:"serial_number"`
	HasCharger   bool    `gorm:"not null" json:"has_charger"`
	Remark       *string `gorm:"size:500" json:"remark"`

	UserID    string    `gorm:"type:uuid;index;not null" json:"user_id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (LaptopReturn) TableName() string { return LaptopReturnTable }

func (l *LaptopReturn) RecordID() string       { return l.ID }
func (l *LaptopReturn) Collection() Collection { return LaptopReturns }
func (l *LaptopReturn) ReturnedOn() Date       { return l.ReturnDate }
func (l *LaptopReturn) Created() time.Time     { return l.CreatedAt }
func (l *LaptopReturn) Updated() time.Time     { return l.UpdatedAt }

func (l *LaptopReturn) Stamp(id, userID string, now time.Time) {
	l.ID = id
	l.UserID = userID
	l.CreatedAt = now
	l.UpdatedAt = now
}

func (l *LaptopReturn) Touch(now time.Time) { l.UpdatedAt = now }

func (l *LaptopReturn) Editable() map[string]any {
	return map[string]any{
		"return_date":   l.ReturnDate,
		"brand":         l.Brand,
		"store_code":    l.StoreCode,
		"location":      l.Location,
		"laptop_model":  l.LaptopModel,
		"serial_number": l.SerialNumber,
		"has_charger":   l.HasCharger,
		"remark":        l.Remark,
	}
}

func (l *LaptopReturn) CopyEditable(from *LaptopReturn) {
	id, uid, created := l.ID, l.UserID, l.CreatedAt
	*l = *from
	l.ID, l.UserID, l.CreatedAt = id, uid, created
}

func (l *LaptopReturn) Column(name string) (string, bool) {
	switch name {
	case "brand":
		return l.Brand, true
	case "return_date":
		return l.ReturnDate.String(), true
	case "laptop_model":
		return l.LaptopModel, true
	case "serial_number":
		return l.SerialNumber, true
	case "store_code":
		return column(l.StoreCode)
	case "location":
		return column(l.Location)
	case "remark":
		return column(l.Remark)
	}
	return "", false
}

func (l *LaptopReturn) FormValues() map[string]any {
	return map[string]any{
		"return_date":   l.ReturnDate.String(),
		"brand":         l.Brand,
		"store_code":    deref(l.StoreCode),
		"location":      deref(l.Location),
		"laptop_model":  l.LaptopModel,
		"serial_number": l.SerialNumber,
		"has_charger":   l.HasCharger,
		"remark":        deref(l.Remark),
	}
}

// ChargerLabel is how lists and spreadsheets show has_charger.
func (l *LaptopReturn) ChargerLabel() string {
	if l.HasCharger {
		return "Yes"
	}
	return "No"
}

func (l *LaptopReturn) ExportRow() []any {
	return []any{
		l.ReturnDate.String(),
		l.Brand,
		orPlaceholder(l.StoreCode),
		orPlaceholder(l.Location),
		l.LaptopModel,
		l.SerialNumber,
		l.ChargerLabel(),
		orPlaceholder(l.Remark),
	}
}
