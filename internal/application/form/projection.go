package form

import (
	"reflect"
	"time"

	"github.com/jhoicas/Documentos-api/internal/domain/entity"
)

// projection vista normalizada del borrador para detectar cambios: decimales en
// forma canónica y sin ids efímeros de línea.
type projection struct {
	FirmID            string
	CurrencyID        string
	Object            string
	GeneralConditions string
	Notes             string
	Date              string
	DueDate           string
	Items             []lineProjection

	// original guarda la instantánea completa para Reset.
	original entity.Document
}

type lineProjection struct {
	ArticleID    string
	Title        string
	Description  string
	Quantity     string
	UnitPrice    string
	Discount     string
	DiscountType entity.DiscountType
	Taxes        []string
}

func project(d *entity.Document) projection {
	p := projection{
		FirmID:            d.FirmID,
		CurrencyID:        d.CurrencyID,
		Object:            d.Object,
		GeneralConditions: d.GeneralConditions,
		Notes:             d.Notes,
		Date:              d.Date.Format(time.DateOnly),
		Items:             make([]lineProjection, len(d.Items)),
		original:          cloneDocument(d),
	}
	if d.DueDate != nil {
		p.DueDate = d.DueDate.Format(time.DateOnly)
	}
	for i, it := range d.Items {
		lp := lineProjection{
			ArticleID:    it.ArticleID,
			Title:        it.Title,
			Description:  it.Description,
			Quantity:     it.Quantity.String(),
			UnitPrice:    it.UnitPrice.String(),
			Discount:     it.Discount.String(),
			DiscountType: it.DiscountType,
			Taxes:        make([]string, len(it.Taxes)),
		}
		for j, t := range it.Taxes {
			lp.Taxes[j] = t.TaxID
		}
		p.Items[i] = lp
	}
	return p
}

// equal compara solo la parte normalizada.
func (p projection) equal(o projection) bool {
	p.original, o.original = entity.Document{}, entity.Document{}
	return reflect.DeepEqual(p, o)
}

func (p projection) restore() entity.Document {
	return cloneDocument(&p.original)
}
