package models

import "time"

const ReturnItemTable = "return_items"

var ReturnItems = Collection{
	Name:        ReturnItemTable,
	Label:       "return item",
	Title:       "Return Items",
	BrandColumn: "brand_name",
	SearchColumns: []string{
		"brand_name", "store_code", "shop_location", "receiver_signature",
	},
	ExportColumns: []string{
		"Return Date", "Brand", "Store Code", "Location",
		"Canon Printer S/N", "Canon Printer Model",
		"Receipt Printer S/N", "Receipt Printer Model",
		"USB Hub", "Keyboard", "Mouse", "Scanner",
		"Other 1", "Other 2", "Receiver", "Remark",
	},
}

// ReturnItem is one store hardware return: the peripherals handed back by a
// shop, keyed by brand and store.
type ReturnItem struct {
	ID                  string  `gorm:"type:uuid;primaryKey" json:"id"`
	ReturnDate          Date    `gorm:"type:date;not null;index" json:"return_date"`
	BrandName           string  `gorm:"size:255;not null;index" json:"brand_name"`
	StoreCode           *string `gorm:"size:100;index" json:"store_code"`
	ShopLocation        *string `gorm:"size:255" json:"shop_location"`
	CanonPrinterSN      *string `gorm:"column:canon_printer_sn;size:100" json:"canon_printer_sn"`
	CanonPrinterModel   *string `gorm:"size:100" json:"canon_printer_model"`
	ReceiptPrinterSN    *string `gorm:"column:receipt_printer_sn;size:100" json:"receipt_printer_sn"`
	ReceiptPrinterModel *string `gorm:"size:100" json:"receipt_printer_model"`
	UsbHub              *string `gorm:"size:100" json:"usb_hub"`
	Keyboard            *string `gorm:"size:100" json:"keyboard"`
	Mouse               *string `gorm:"size:100" json:"mouse"`
	Scanner             *string `gorm:"size:100" json:"scanner"`
	Other1              *string `gorm:"column:other_1;size:255" json:"other_1"`
	Other2              *string `gorm:"column:other_2;size:255" json:"other_2"`
	ReceiverSignature   *string `gorm:"size:255" json:"receiver_signature"`
	Remark              *string `gorm:"size:500" json:"remark"`

	UserID    string    `gorm:"type:uuid;index;not null" json:"user_id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ReturnItem) TableName() string { return ReturnItemTable }

func (r *ReturnItem) RecordID() string       { return r.ID }
func (r *ReturnItem) Collection() Collection { return ReturnItems }
func (r *ReturnItem) ReturnedOn() Date       { return r.ReturnDate }
func (r *ReturnItem) Created() time.Time     { return r.CreatedAt }
func (r *ReturnItem) Updated() time.Time     { return r.UpdatedAt }

func (r *ReturnItem) Stamp(id, userID string, now time.Time) {
	r.ID = id
	r.UserID = userID
	r.CreatedAt = now
	r.UpdatedAt = now
}

func (r *ReturnItem) Touch(now time.Time) { r.UpdatedAt = now }

func (r *ReturnItem) Editable() map[string]any {
	return map[string]any{
		"return_date":           r.ReturnDate,
		"brand_name":            r.BrandName,
		"store_code":            r.StoreCode,
		"shop_location":         r.ShopLocation,
		"canon_printer_sn":      r.CanonPrinterSN,
		"canon_printer_model":   r.CanonPrinterModel,
		"receipt_printer_sn":    r.ReceiptPrinterSN,
		"receipt_printer_model": r.ReceiptPrinterModel,
		"usb_hub":               r.UsbHub,
		"keyboard":              r.Keyboard,
		"mouse":                 r.Mouse,
		"scanner":               r.Scanner,
		"other_1":               r.Other1,
		"other_2":               r.Other2,
		"receiver_signature":    r.ReceiverSignature,
		"remark":                r.Remark,
	}
}

func (r *ReturnItem) CopyEditable(from *ReturnItem) {
	id, uid, created := r.ID, r.UserID, r.CreatedAt
	*r = *from
	r.ID, r.UserID, r.CreatedAt = id, uid, created
}

func (r *ReturnItem) Column(name string) (string, bool) {
	switch name {
	case "brand_name":
		return r.BrandName, true
	case "return_date":
		return r.ReturnDate.String(), true
	case "store_code":
		return column(r.StoreCode)
	case "shop_location":
		return column(r.ShopLocation)
	case "canon_printer_sn":
		return column(r.CanonPrinterSN)
	case "canon_printer_model":
		return column(r.CanonPrinterModel)
	case "receipt_printer_sn":
		return column(r.ReceiptPrinterSN)
	case "receipt_printer_model":
		return column(r.ReceiptPrinterModel)
	case "usb_hub":
		return column(r.UsbHub)
	case "keyboard":
		return column(r.Keyboard)
	case "mouse":
		return column(r.Mouse)
	case "scanner":
		return column(r.Scanner)
	case "other_1":
		return column(r.Other1)
	case "other_2":
		return column(r.Other2)
	case "receiver_signature":
		return column(r.ReceiverSignature)
	case "remark":
		return column(r.Remark)
	}
	return "", false
}

// FormValues is the edit-form view of the record: NULL fields become "".
func (r *ReturnItem) FormValues() map[string]any {
	return map[string]any{
		"return_date":           r.ReturnDate.String(),
		"brand_name":            r.BrandName,
		"store_code":            deref(r.StoreCode),
		"shop_location":         deref(r.ShopLocation),
		"canon_printer_sn":      deref(r.CanonPrinterSN),
		"canon_printer_model":   deref(r.CanonPrinterModel),
		"receipt_printer_sn":    deref(r.ReceiptPrinterSN),
		"receipt_printer_model": deref(r.ReceiptPrinterModel),
		"usb_hub":               deref(r.UsbHub),
		"keyboard":              deref(r.Keyboard),
		"mouse":                 deref(r.Mouse),
		"scanner":               deref(r.Scanner),
		"other_1":               deref(r.Other1),
		"other_2":               deref(r.Other2),
		"receiver_signature":    deref(r.ReceiverSignature),
		"remark":                deref(r.Remark),
	}
}

// ExportRow follows ReturnItems.ExportColumns.
func (r *ReturnItem) ExportRow() []any {
	return []any{
		r.ReturnDate.String(),
		r.BrandName,
		orPlaceholder(r.StoreCode),
		orPlaceholder(r.ShopLocation),
		orPlaceholder(r.CanonPrinterSN),
		orPlaceholder(r.CanonPrinterModel),
		orPlaceholder(r.ReceiptPrinterSN),
		orPlaceholder(r.ReceiptPrinterModel),
		orPlaceholder(r.UsbHub),
		orPlaceholder(r.Keyboard),
		orPlaceholder(r.Mouse),
		orPlaceholder(r.Scanner),
		orPlaceholder(r.Other1),
		orPlaceholder(r.Other2),
		orPlaceholder(r.ReceiverSignature),
		orPlaceholder(r.Remark),
	}
}
