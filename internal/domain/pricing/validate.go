package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Documentos-api/internal/domain"
	"github.com/jhoicas/Documentos-api/internal/domain/entity"
)

// maxInputDecimals cantidades y precios admiten hasta 3 decimales.
const maxInputDecimals int32 = 3

// ValidateLine rechaza entradas numéricas inválidas antes de tocar el borrador.
func ValidateLine(l entity.LineItem) error {
	if err := nonNegative("quantity", l.Quantity); err != nil {
		return err
	}
	if err := nonNegative("unit_price", l.UnitPrice); err != nil {
		return err
	}
	if l.DiscountType != "" && !l.DiscountType.Valid() {
		return fmt.Errorf("%w: discount_type %q", domain.ErrInvalidInput, l.DiscountType)
	}
	if l.Discount.IsNegative() {
		return fmt.Errorf("%w: discount negativo", domain.ErrInvalidInput)
	}
	if l.DiscountType != entity.DiscountAmount && l.Discount.GreaterThan(hundred) {
		return fmt.Errorf("%w: discount mayor a 100%%", domain.ErrInvalidInput)
	}
	seen := make(map[string]bool, len(l.Taxes))
	for _, t := range l.Taxes {
		if seen[t.TaxID] {
			return fmt.Errorf("%w: %s", domain.ErrDuplicateTax, t.TaxID)
		}
		seen[t.TaxID] = true
	}
	return nil
}

func nonNegative(field string, d decimal.Decimal) error {
	if d.IsNegative() {
		return fmt.Errorf("%w: %s negativo", domain.ErrInvalidInput, field)
	}
	if !d.Equal(d.Round(maxInputDecimals)) {
		return fmt.Errorf("%w: %s admite máximo %d decimales", domain.ErrInvalidInput, field, maxInputDecimals)
	}
	return nil
}
