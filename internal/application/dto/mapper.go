package dto

import (
	"time"

	"github.com/jhoicas/Documentos-api/internal/domain/entity"
	"github.com/jhoicas/Documentos-api/internal/domain/pricing"
)

// ToDocumentResponse convierte la entidad en el cuerpo de respuesta.
func ToDocumentResponse(doc *entity.Document) DocumentResponse {
	out := DocumentResponse{
		ID:                doc.ID,
		CompanyID:         doc.CompanyID,
		Kind:              string(doc.Kind),
		FirmID:            doc.FirmID,
		SequentialNumber:  doc.SequentialNumber,
		Status:            doc.Status,
		CurrencyID:        doc.CurrencyID,
		Object:            doc.Object,
		GeneralConditions: doc.GeneralConditions,
		Notes:             doc.Notes,
		Date:              doc.Date.Format(time.DateOnly),
		QuotationID:       doc.QuotationID,
		Subtotal:          doc.Subtotal,
		TaxTotal:          doc.TaxTotal,
		Total:             doc.Total,
		Version:           doc.Version,
		CreatedAt:         doc.CreatedAt,
		UpdatedAt:         doc.UpdatedAt,
	}
	if doc.DueDate != nil {
		out.DueDate = doc.DueDate.Format(time.DateOnly)
	}
	if doc.Currency != nil {
		c := ToCurrencyResponse(doc.Currency)
		out.Currency = &c
	}
	if len(doc.Items) > 0 {
		out.Items = make([]LineItemResponse, 0, len(doc.Items))
		for _, it := range doc.Items {
			out.Items = append(out.Items, toLineItemResponse(it))
		}
	}
	return out
}

func toLineItemResponse(it entity.LineItem) LineItemResponse {
	out := LineItemResponse{
		ID:           it.ID,
		Position:     it.Position,
		ArticleID:    it.ArticleID,
		Title:        it.Title,
		Description:  it.Description,
		Quantity:     it.Quantity,
		UnitPrice:    it.UnitPrice,
		Discount:     it.Discount,
		DiscountType: it.DiscountType,
		Taxes:        make([]TaxEntryResponse, 0, len(it.Taxes)),
		Subtotal:     it.Subtotal,
		Total:        it.Total,
	}
	for _, t := range it.Taxes {
		out.Taxes = append(out.Taxes, TaxEntryResponse{ID: t.ID, TaxID: t.TaxID, Label: t.Label, IsRate: t.IsRate, Value: t.Value})
	}
	return out
}

// ToCurrencyResponse incluye la precisión efectiva de la moneda.
func ToCurrencyResponse(c *entity.Currency) CurrencyResponse {
	return CurrencyResponse{ID: c.ID, Code: c.Code, Symbol: c.Symbol, Digits: c.Digits, Precision: pricing.Precision(c)}
}

// ToDocumentEntity reconstruye la entidad desde la respuesta (lado cliente).
func ToDocumentEntity(r DocumentResponse) *entity.Document {
	doc := &entity.Document{
		ID:                r.ID,
		CompanyID:         r.CompanyID,
		Kind:              entity.DocumentKind(r.Kind),
		FirmID:            r.FirmID,
		SequentialNumber:  r.SequentialNumber,
		Status:            r.Status,
		CurrencyID:        r.CurrencyID,
		Object:            r.Object,
		GeneralConditions: r.GeneralConditions,
		Notes:             r.Notes,
		QuotationID:       r.QuotationID,
		Subtotal:          r.Subtotal,
		TaxTotal:          r.TaxTotal,
		Total:             r.Total,
		Version:           r.Version,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
	doc.Date, _ = time.Parse(time.DateOnly, r.Date)
	if due, err := time.Parse(time.DateOnly, r.DueDate); err == nil {
		doc.DueDate = &due
	}
	if r.Currency != nil {
		doc.Currency = &entity.Currency{ID: r.Currency.ID, Code: r.Currency.Code, Symbol: r.Currency.Symbol, Digits: r.Currency.Digits}
	}
	for _, it := range r.Items {
		line := entity.LineItem{
			ID:           it.ID,
			DocumentID:   r.ID,
			Position:     it.Position,
			ArticleID:    it.ArticleID,
			Title:        it.Title,
			Description:  it.Description,
			Quantity:     it.Quantity,
			UnitPrice:    it.UnitPrice,
			Discount:     it.Discount,
			DiscountType: it.DiscountType,
			Subtotal:     it.Subtotal,
			Total:        it.Total,
		}
		for _, t := range it.Taxes {
			line.Taxes = append(line.Taxes, entity.TaxEntry{ID: t.ID, LineItemID: it.ID, TaxID: t.TaxID, Label: t.Label, IsRate: t.IsRate, Value: t.Value})
		}
		doc.Items = append(doc.Items, line)
	}
	return doc
}

// ToDocumentRequest cuerpo de alta o edición a partir del borrador (lado cliente).
func ToDocumentRequest(doc *entity.Document) DocumentRequest {
	req := DocumentRequest{
		FirmID:            doc.FirmID,
		CurrencyID:        doc.CurrencyID,
		Object:            doc.Object,
		GeneralConditions: doc.GeneralConditions,
		Notes:             doc.Notes,
		Version:           doc.Version,
		Items:             make([]LineItemRequest, 0, len(doc.Items)),
	}
	if !doc.Date.IsZero() {
		req.Date = doc.Date.Format(time.DateOnly)
	}
	if doc.DueDate != nil {
		req.DueDate = doc.DueDate.Format(time.DateOnly)
	}
	for _, it := range doc.Items {
		line := LineItemRequest{
			ID:           it.ID,
			ArticleID:    it.ArticleID,
			Title:        it.Title,
			Description:  it.Description,
			Quantity:     it.Quantity,
			UnitPrice:    it.UnitPrice,
			Discount:     it.Discount,
			DiscountType: it.DiscountType,
		}
		for _, t := range it.Taxes {
			line.TaxIDs = append(line.TaxIDs, t.TaxID)
		}
		req.Items = append(req.Items, line)
	}
	return req
}
