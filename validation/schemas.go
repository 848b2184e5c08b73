package validation

import "shop_return_desk/models"

type returnItemInput struct {
	ReturnDate          string `json:"return_date" label:"Return date" validate:"required,datetime=2006-01-02"`
	BrandName           string `json:"brand_name" label:"Brand name" validate:"required,max=255"`
	StoreCode           string `json:"store_code" label:"Store code" validate:"max=100"`
	ShopLocation        string `json:"shop_location" label:"Shop location" validate:"max=255"`
	CanonPrinterSN      string `json:"canon_printer_sn" label:"Canon printer S/N" validate:"max=100"`
	CanonPrinterModel   string `json:"canon_printer_model" label:"Canon printer model" validate:"max=100"`
	ReceiptPrinterSN    string `json:"receipt_printer_sn" label:"Receipt printer S/N" validate:"max=100"`
	ReceiptPrinterModel string `json:"receipt_printer_model" label:"Receipt printer model" validate:"max=100"`
	UsbHub              string `json:"usb_hub" label:"USB hub" validate:"max=100"`
	Keyboard            string `json:"keyboard" label:"Keyboard" validate:"max=100"`
	Mouse               string `json:"mouse" label:"Mouse" validate:"max=100"`
	Scanner             string `json:"scanner" label:"Scanner" validate:"max=100"`
	Other1              string `json:"other_1" label:"Other 1" validate:"max=255"`
	Other2              string `json:"other_2" label:"Other 2" validate:"max=255"`
	ReceiverSignature   string `json:"receiver_signature" label:"Receiver signature" validate:"max=255"`
	Remark              string `json:"remark" label:"Remark" validate:"max=500"`
}

type laptopReturnInput struct {
	ReturnDate   string `json:"return_date" label:"Return date" validate:"required,datetime=2006-01-02"`
	Brand        string `json:"brand" label:"Brand" validate:"required,max=255"`
	StoreCode    string `json:"store_code" label:"Store code" validate:"max=100"`
	Location     string `json:"location" label:"Location" validate:"max=255"`
	LaptopModel  string `json:"laptop_model" label:"Laptop model" validate:"required,max=255"`
	SerialNumber string `json:"serial_number" label:"Serial number" validate:"required,max=100"`
	HasCharger   *bool  `json:"has_charger" label:"Has charger" validate:"required"`
	Remark       string `json:"remark" label:"Remark" validate:"max=500"`
}

// mustDate is only called after the datetime rule passed.
func mustDate(s string) models.Date {
	d, _ := models.ParseDate(s)
	return d
}

var ReturnItems = newSchema(models.ReturnItems,
	func(today models.Date) map[string]any {
		return map[string]any{
			"return_date":           today.String(),
			"brand_name":            "",
			"store_code":            "",
			"shop_location":         "",
			"canon_printer_sn":      "",
			"canon_printer_model":   "",
			"receipt_printer_sn":    "",
			"receipt_printer_model": "",
			"usb_hub":               "",
			"keyboard":              "",
			"mouse":                 "",
			"scanner":               "",
			"other_1":               "",
			"other_2":               "",
			"receiver_signature":    "",
			"remark":                "",
		}
	},
	func(in *returnItemInput) *models.ReturnItem {
		return &models.ReturnItem{
			ReturnDate:          mustDate(in.ReturnDate),
			BrandName:           in.BrandName,
			StoreCode:           models.Optional(in.StoreCode),
			ShopLocation:        models.Optional(in.ShopLocation),
			CanonPrinterSN:      models.Optional(in.CanonPrinterSN),
			CanonPrinterModel:   models.Optional(in.CanonPrinterModel),
			ReceiptPrinterSN:    models.Optional(in.ReceiptPrinterSN),
			ReceiptPrinterModel: models.Optional(in.ReceiptPrinterModel),
			UsbHub:              models.Optional(in.UsbHub),
			Keyboard:            models.Optional(in.Keyboard),
			Mouse:               models.Optional(in.Mouse),
			Scanner:             models.Optional(in.Scanner),
			Other1:              models.Optional(in.Other1),
			Other2:              models.Optional(in.Other2),
			ReceiverSignature:   models.Optional(in.ReceiverSignature),
			Remark:              models.Optional(in.Remark),
		}
	},
)

var LaptopReturns = newSchema(models.LaptopReturns,
	func(today models.Date) map[string]any {
		return map[string]any{
			"return_date":   today.String(),
			"brand":         "",
			"store_code":    "",
			"location":      "",
			"laptop_model":  "",
			"serial_number": "",
			"has_charger":   true,
			"remark":        "",
		}
	},
	func(in *laptopReturnInput) *models.LaptopReturn {
		return &models.LaptopReturn{
			ReturnDate:   mustDate(in.ReturnDate),
			Brand:        in.Brand,
			StoreCode:    models.Optional(in.StoreCode),
			Location:     models.Optional(in.Location),
			LaptopModel:  in.LaptopModel,
			SerialNumber: in.SerialNumber,
			HasCharger:   *in.HasCharger,
			Remark:       models.Optional(in.Remark),
		}
	},
)
