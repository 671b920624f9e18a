package form

import (
	"fmt"
	"time"

	"github.com/jhoicas/Documentos-api/internal/domain"
)

// Field campo de cabecera editable con Set.
type Field int

const (
	FieldFirm Field = iota
	FieldCurrency
	FieldObject
	FieldGeneralConditions
	FieldNotes
	FieldDate
	FieldDueDate
	fieldCount
)

var fieldNames = [fieldCount]string{
	FieldFirm:              "firm_id",
	FieldCurrency:          "currency_id",
	FieldObject:            "object",
	FieldGeneralConditions: "general_conditions",
	FieldNotes:             "notes",
	FieldDate:              "date",
	FieldDueDate:           "due_date",
}

func (f Field) String() string {
	if f < 0 || f >= fieldCount {
		return "unknown"
	}
	return fieldNames[f]
}

// Set mezcla un campo en el borrador. Un valor de tipo incorrecto es un error de
// validación y no se aplica.
func (c *Controller) Set(field Field, value any) error {
	next := c.draft
	switch field {
	case FieldFirm, FieldObject, FieldGeneralConditions, FieldNotes:
		s, ok := value.(string)
		if !ok {
			return mismatch(field, value)
		}
		switch field {
		case FieldFirm:
			next.FirmID = s
		case FieldObject:
			next.Object = s
		case FieldGeneralConditions:
			next.GeneralConditions = s
		case FieldNotes:
			next.Notes = s
		}
	case FieldCurrency:
		s, ok := value.(string)
		if !ok {
			return mismatch(field, value)
		}
		cur, known := c.refs.currency(s)
		if s != "" && !known {
			return fmt.Errorf("%w: moneda %q", domain.ErrInvalidInput, s)
		}
		next.CurrencyID, next.Currency = s, cur
	case FieldDate:
		t, ok := value.(time.Time)
		if !ok || t.IsZero() {
			return mismatch(field, value)
		}
		next.Date = t
	case FieldDueDate:
		switch v := value.(type) {
		case nil:
			next.DueDate = nil
		case time.Time:
			next.DueDate = &v
		case *time.Time:
			if v == nil {
				next.DueDate = nil
				break
			}
			d := *v
			next.DueDate = &d
		default:
			return mismatch(field, value)
		}
	default:
		return fmt.Errorf("%w: campo %d", domain.ErrInvalidInput, field)
	}
	c.draft = next
	c.touch()
	return nil
}

func mismatch(field Field, value any) error {
	return fmt.Errorf("%w: %s no admite %T", domain.ErrInvalidInput, field, value)
}
