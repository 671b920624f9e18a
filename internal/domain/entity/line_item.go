package entity

import "github.com/shopspring/decimal"

// DiscountType forma de expresar el descuento de una línea.
type DiscountType string

const (
	DiscountPercentage DiscountType = "PERCENTAGE"
	DiscountAmount     DiscountType = "AMOUNT"
)

// Valid indica si el tipo de descuento es conocido.
func (d DiscountType) Valid() bool {
	return d == DiscountPercentage || d == DiscountAmount
}

// LineItem línea de un documento: artículo, cantidad, precio, descuento e impuestos.
// Subtotal (ya descontado) y Total se recalculan con pricing.Compute.
type LineItem struct {
	ID           string
	DocumentID   string
	Position     int
	ArticleID    string
	Title        string
	Description  string
	Quantity     decimal.Decimal
	UnitPrice    decimal.Decimal
	Discount     decimal.Decimal
	DiscountType DiscountType
	Taxes        []TaxEntry
	Subtotal     decimal.Decimal
	Total        decimal.Decimal
}

// TaxEntry impuesto aplicado a una línea. Pertenece exclusivamente a la línea.
type TaxEntry struct {
	ID         string
	LineItemID string
	TaxID      string
	Label      string
	IsRate     bool
	Value      decimal.Decimal // porcentaje si IsRate, monto fijo si no
}

// HasTax indica si la línea ya tiene aplicado el impuesto taxID.
func (l *LineItem) HasTax(taxID string) bool {
	for _, t := range l.Taxes {
		if t.TaxID == taxID {
			return true
		}
	}
	return false
}
