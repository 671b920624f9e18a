package form

import (
	"fmt"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Documentos-api/internal/domain"
	"github.com/jhoicas/Documentos-api/internal/domain/entity"
	"github.com/jhoicas/Documentos-api/internal/domain/pricing"
)

func (c *Controller) blankLine() entity.LineItem {
	return entity.LineItem{
		ID:           c.newID(),
		Quantity:     decimal.NewFromInt(1),
		UnitPrice:    decimal.Zero,
		Discount:     decimal.Zero,
		DiscountType: entity.DiscountPercentage,
	}
}

// Add agrega una línea vacía al final y devuelve su id efímero.
func (c *Controller) Add() string {
	line := c.blankLine()
	c.draft.Items = append(c.draft.Items, line)
	c.renumber()
	c.touch()
	return line.ID
}

// Update reemplaza la línea id. Si cambia el tipo de descuento, el descuento vuelve a 0.
// Entradas numéricas inválidas no se aplican.
func (c *Controller) Update(id string, item entity.LineItem) error {
	i, err := c.indexOf(id)
	if err != nil {
		return err
	}
	cur := c.draft.Items[i]
	item.ID, item.DocumentID, item.Position = cur.ID, cur.DocumentID, cur.Position
	if item.DiscountType == "" {
		item.DiscountType = cur.DiscountType
	}
	if item.DiscountType != cur.DiscountType {
		item.Discount = decimal.Zero
	}
	if err := pricing.ValidateLine(item); err != nil {
		return err
	}
	if len(item.Taxes) > len(c.refs.Taxes) && len(c.refs.Taxes) > 0 {
		return c.warn("update", domain.ErrTaxSlotsExhausted)
	}
	item.Taxes = slices.Clone(item.Taxes)
	c.draft.Items[i] = item
	c.touch()
	return nil
}

// Delete quita la línea id. Con una sola línea es un no-op: el documento
// conserva siempre al menos una.
func (c *Controller) Delete(id string) error {
	i, err := c.indexOf(id)
	if err != nil {
		return err
	}
	if len(c.draft.Items) <= 1 {
		return c.warn("delete", domain.ErrLastLineItem)
	}
	c.draft.Items = slices.Delete(c.draft.Items, i, i+1)
	c.renumber()
	c.touch()
	return nil
}

// Reorder mueve la línea en from a la posición to (arrastrar y soltar).
func (c *Controller) Reorder(from, to int) error {
	n := len(c.draft.Items)
	if from < 0 || from >= n || to < 0 || to >= n {
		return fmt.Errorf("%w: posición fuera de rango", domain.ErrInvalidInput)
	}
	if from == to {
		return nil
	}
	line := c.draft.Items[from]
	items := slices.Delete(c.draft.Items, from, from+1)
	c.draft.Items = slices.Insert(items, to, line)
	c.renumber()
	c.touch()
	return nil
}

// SetDiscountType cambia el tipo de descuento de la línea y pone el descuento en 0.
func (c *Controller) SetDiscountType(id string, t entity.DiscountType) error {
	if !t.Valid() {
		return fmt.Errorf("%w: discount_type %q", domain.ErrInvalidInput, t)
	}
	i, err := c.indexOf(id)
	if err != nil {
		return err
	}
	c.draft.Items[i].DiscountType = t
	c.draft.Items[i].Discount = decimal.Zero
	c.touch()
	return nil
}

// AddTax aplica el impuesto taxID a la línea. Repetir un impuesto o superar los
// definidos es una advertencia y no se aplica.
func (c *Controller) AddTax(id, taxID string) error {
	i, err := c.indexOf(id)
	if err != nil {
		return err
	}
	tax, ok := c.refs.tax(taxID)
	if !ok {
		return fmt.Errorf("%w: impuesto %q", domain.ErrInvalidInput, taxID)
	}
	line := &c.draft.Items[i]
	if line.HasTax(taxID) {
		return c.warn("add_tax", domain.ErrDuplicateTax)
	}
	if !pricing.CanAddTax(len(line.Taxes), len(c.refs.Taxes)) {
		return c.warn("add_tax", domain.ErrTaxSlotsExhausted)
	}
	line.Taxes = append(slices.Clone(line.Taxes), tax.Entry())
	c.touch()
	return nil
}

// RemoveTax quita el impuesto en la posición index; los demás conservan su orden.
func (c *Controller) RemoveTax(id string, index int) error {
	i, err := c.indexOf(id)
	if err != nil {
		return err
	}
	line := &c.draft.Items[i]
	if index < 0 || index >= len(line.Taxes) {
		return fmt.Errorf("%w: impuesto %d fuera de rango", domain.ErrInvalidInput, index)
	}
	line.Taxes = slices.Delete(slices.Clone(line.Taxes), index, index+1)
	c.touch()
	return nil
}

// AvailableTaxes impuestos que aún se pueden aplicar a la línea.
func (c *Controller) AvailableTaxes(id string) []entity.Tax {
	i, err := c.indexOf(id)
	if err != nil {
		return nil
	}
	out := make([]entity.Tax, 0, len(c.refs.Taxes))
	for _, t := range c.refs.Taxes {
		if !c.draft.Items[i].HasTax(t.ID) {
			out = append(out, t)
		}
	}
	return out
}

func (c *Controller) indexOf(id string) (int, error) {
	for i := range c.draft.Items {
		if c.draft.Items[i].ID == id {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: línea %s", domain.ErrNotFound, id)
}

func (c *Controller) renumber() {
	for i := range c.draft.Items {
		c.draft.Items[i].Position = i
	}
}
