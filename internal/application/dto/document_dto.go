package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Documentos-api/internal/domain/entity"
)

// DocumentRequest body para POST /api/{kind} y PUT /api/{kind}/:id.
// Version es obligatoria en PUT: la que el cliente leyó por última vez.
type DocumentRequest struct {
	FirmID            string            `json:"firm_id"`
	CurrencyID        string            `json:"currency_id"`
	Object            string            `json:"object,omitempty"`
	GeneralConditions string            `json:"general_conditions,omitempty"`
	Notes             string            `json:"notes,omitempty"`
	Date              string            `json:"date,omitempty"`     // YYYY-MM-DD; vacío = hoy
	DueDate           string            `json:"due_date,omitempty"` // YYYY-MM-DD
	Version           int               `json:"version,omitempty"`
	Items             []LineItemRequest `json:"items"`
}

// LineItemRequest línea del documento. Los impuestos se referencian por id y el
// servidor copia etiqueta y valor vigentes.
type LineItemRequest struct {
	ID           string              `json:"id,omitempty"`
	ArticleID    string              `json:"article_id,omitempty"`
	Title        string              `json:"title"`
	Description  string              `json:"description,omitempty"`
	Quantity     decimal.Decimal     `json:"quantity"`
	UnitPrice    decimal.Decimal     `json:"unit_price"`
	Discount     decimal.Decimal     `json:"discount"`
	DiscountType entity.DiscountType `json:"discount_type"`
	TaxIDs       []string            `json:"tax_ids,omitempty"`
}

// PreviewRequest body para POST /api/{kind}/preview.
type PreviewRequest struct {
	CurrencyID string            `json:"currency_id,omitempty"`
	Items      []LineItemRequest `json:"items"`
}

// DuplicateRequest query de POST /api/{kind}/:id/duplicate.
type DuplicateRequest struct {
	IncludeItems bool `query:"includeItems"`
}

// DocumentResponse documento con líneas para GET /api/{kind}/:id.
type DocumentResponse struct {
	ID                string             `json:"id"`
	CompanyID         string             `json:"company_id"`
	Kind              string             `json:"kind"`
	FirmID            string             `json:"firm_id"`
	SequentialNumber  string             `json:"sequential_number"`
	Status            string             `json:"status"`
	CurrencyID        string             `json:"currency_id"`
	Currency          *CurrencyResponse  `json:"currency,omitempty"`
	Object            string             `json:"object,omitempty"`
	GeneralConditions string             `json:"general_conditions,omitempty"`
	Notes             string             `json:"notes,omitempty"`
	Date              string             `json:"date"`
	DueDate           string             `json:"due_date,omitempty"`
	QuotationID       string             `json:"quotation_id,omitempty"`
	Items             []LineItemResponse `json:"items,omitempty"`
	Subtotal          decimal.Decimal    `json:"subtotal"`
	TaxTotal          decimal.Decimal    `json:"tax_total"`
	Total             decimal.Decimal    `json:"total"`
	Version           int                `json:"version"`
	CreatedAt         time.Time          `json:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at"`
}

// LineItemResponse línea en la respuesta.
type LineItemResponse struct {
	ID           string              `json:"id"`
	Position     int                 `json:"position"`
	ArticleID    string              `json:"article_id,omitempty"`
	Title        string              `json:"title"`
	Description  string              `json:"description,omitempty"`
	Quantity     decimal.Decimal     `json:"quantity"`
	UnitPrice    decimal.Decimal     `json:"unit_price"`
	Discount     decimal.Decimal     `json:"discount"`
	DiscountType entity.DiscountType `json:"discount_type"`
	Taxes        []TaxEntryResponse  `json:"taxes"`
	Subtotal     decimal.Decimal     `json:"subtotal"`
	Total        decimal.Decimal     `json:"total"`
}

// TaxEntryResponse impuesto aplicado a una línea.
type TaxEntryResponse struct {
	ID     string          `json:"id"`
	TaxID  string          `json:"tax_id"`
	Label  string          `json:"label"`
	IsRate bool            `json:"is_rate"`
	Value  decimal.Decimal `json:"value"`
}

// TransitionResponse resultado de POST /api/{kind}/:id/actions/:action.
// Created es la factura generada por la acción invoice.
type TransitionResponse struct {
	Document DocumentResponse  `json:"document"`
	Created  *DocumentResponse `json:"created,omitempty"`
}
