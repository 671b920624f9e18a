// Package pricing calcula subtotales, impuestos y totales de las líneas de un documento.
// Todo es función pura de (líneas, precisión): recalcular sobre el mismo borrador
// siempre da el mismo resultado.
package pricing

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"

	"github.com/jhoicas/Documentos-api/internal/domain/entity"
)

// DefaultPrecision decimales cuando no se conoce la moneda.
const DefaultPrecision int32 = 3

// ratePrecision los porcentajes de impuesto se muestran siempre con 2 decimales.
const ratePrecision int32 = 2

var hundred = decimal.NewFromInt(100)

// TaxAmount impuesto calculado (por línea o agregado por impuesto en el documento).
type TaxAmount struct {
	TaxID  string          `json:"tax_id"`
	Label  string          `json:"label"`
	IsRate bool            `json:"is_rate"`
	Rate   decimal.Decimal `json:"rate"` // porcentaje redondeado a 2; monto fijo si !IsRate
	Amount decimal.Decimal `json:"amount"`
}

// LineTotals cifras de una línea.
type LineTotals struct {
	Gross      decimal.Decimal `json:"gross"`      // cantidad × precio
	Discounted decimal.Decimal `json:"discounted"` // subtotal de la línea tras el descuento
	Taxes      []TaxAmount     `json:"taxes"`
	TaxTotal   decimal.Decimal `json:"tax_total"`
	Total      decimal.Decimal `json:"total"`
}

// Totals cifras del documento completo.
type Totals struct {
	Precision  int32           `json:"precision"`
	Lines      []LineTotals    `json:"lines"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	TaxTotal   decimal.Decimal `json:"tax_total"`
	Total      decimal.Decimal `json:"total"`
	TaxSummary []TaxAmount     `json:"tax_summary"`
}

// Precision decimales de la moneda: los declarados, si no los de ISO 4217, si no DefaultPrecision.
func Precision(c *entity.Currency) int32 {
	return PrecisionOr(c, DefaultPrecision)
}

// PrecisionOr como Precision pero con un valor por defecto explícito.
func PrecisionOr(c *entity.Currency, def int32) int32 {
	if c == nil {
		return def
	}
	if c.Digits != nil && *c.Digits >= 0 {
		return int32(*c.Digits)
	}
	if c.Code != "" {
		if unit, err := currency.ParseISO(c.Code); err == nil {
			scale, _ := currency.Standard.Rounding(unit)
			return int32(scale)
		}
	}
	return def
}

// Compute calcula los totales con la precisión de la moneda.
func Compute(lines []entity.LineItem, c *entity.Currency) Totals {
	return ComputeAt(lines, Precision(c))
}

// ComputeAt calcula los totales con una precisión dada.
func ComputeAt(lines []entity.LineItem, precision int32) Totals {
	out := Totals{
		Precision: precision,
		Lines:     make([]LineTotals, 0, len(lines)),
		Subtotal:  decimal.Zero,
		TaxTotal:  decimal.Zero,
	}
	summary := map[string]int{}
	for i := range lines {
		lt := ComputeLine(&lines[i], precision)
		out.Lines = append(out.Lines, lt)
		out.Subtotal = out.Subtotal.Add(lt.Discounted)
		out.TaxTotal = out.TaxTotal.Add(lt.TaxTotal)

		for _, ta := range lt.Taxes {
			idx, ok := summary[ta.TaxID]
			if !ok {
				summary[ta.TaxID] = len(out.TaxSummary)
				out.TaxSummary = append(out.TaxSummary, ta)
				continue
			}
			out.TaxSummary[idx].Amount = out.TaxSummary[idx].Amount.Add(ta.Amount)
		}
	}
	out.Total = out.Subtotal.Add(out.TaxTotal)
	return out
}

// ComputeLine calcula una línea. Los impuestos se suman, nunca se componen: todos
// parten del subtotal descontado. Un impuesto fijo es un recargo por línea y no se
// multiplica por la cantidad.
func ComputeLine(l *entity.LineItem, precision int32) LineTotals {
	gross := l.Quantity.Mul(l.UnitPrice).Round(precision)
	discounted := applyDiscount(gross, l.Discount, l.DiscountType).Round(precision)

	lt := LineTotals{
		Gross:      gross,
		Discounted: discounted,
		Taxes:      make([]TaxAmount, 0, len(l.Taxes)),
		TaxTotal:   decimal.Zero,
	}
	for _, t := range l.Taxes {
		ta := TaxAmount{TaxID: t.TaxID, Label: t.Label, IsRate: t.IsRate}
		if t.IsRate {
			ta.Rate = t.Value.Round(ratePrecision)
			ta.Amount = discounted.Mul(t.Value).Div(hundred).Round(precision)
		} else {
			ta.Rate = t.Value
			ta.Amount = t.Value.Round(precision)
		}
		lt.Taxes = append(lt.Taxes, ta)
		lt.TaxTotal = lt.TaxTotal.Add(ta.Amount)
	}
	lt.Total = discounted.Add(lt.TaxTotal)
	return lt
}

// applyDiscount descuenta porcentaje o monto fijo. El monto fijo se limita al subtotal
// para que la línea nunca quede negativa.
func applyDiscount(gross, discount decimal.Decimal, kind entity.DiscountType) decimal.Decimal {
	if discount.IsZero() {
		return gross
	}
	if kind == entity.DiscountAmount {
		if discount.GreaterThan(gross) {
			return decimal.Zero
		}
		return gross.Sub(discount)
	}
	return gross.Mul(decimal.NewFromInt(1).Sub(discount.Div(hundred)))
}

// Apply copia los totales calculados sobre el documento y sus líneas.
func Apply(doc *entity.Document, t Totals) {
	for i := range doc.Items {
		if i >= len(t.Lines) {
			break
		}
		doc.Items[i].Subtotal = t.Lines[i].Discounted
		doc.Items[i].Total = t.Lines[i].Total
	}
	doc.Subtotal = t.Subtotal
	doc.TaxTotal = t.TaxTotal
	doc.Total = t.Total
}

// CanAddTax indica si una línea con selected impuestos admite otro de los available definidos.
func CanAddTax(selected, available int) bool {
	return selected < available
}
