package entity

import "github.com/shopspring/decimal"

// Currency moneda de referencia (solo lectura). Digits nil = precisión no declarada.
type Currency struct {
	ID     string
	Code   string // ISO 4217
	Symbol string
	Digits *int
}

// Tax definición de impuesto: porcentaje (IsRate) o monto fijo por línea.
type Tax struct {
	ID     string
	Label  string
	IsRate bool
	Value  decimal.Decimal
}

// Entry construye la asociación del impuesto con una línea.
func (t Tax) Entry() TaxEntry {
	return TaxEntry{TaxID: t.ID, Label: t.Label, IsRate: t.IsRate, Value: t.Value}
}

// Article artículo del catálogo; su precio es el valor por defecto de una línea nueva.
type Article struct {
	ID          string
	CompanyID   string
	Title       string
	Description string
	UnitPrice   decimal.Decimal
}
