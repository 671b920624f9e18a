package dto

import "github.com/shopspring/decimal"

// CurrencyResponse moneda de referencia. Precision es la efectiva usada en los totales.
type CurrencyResponse struct {
	ID        string `json:"id"`
	Code      string `json:"code"`
	Symbol    string `json:"symbol"`
	Digits    *int   `json:"digits,omitempty"`
	Precision int32  `json:"precision"`
}

// TaxResponse definición de impuesto.
type TaxResponse struct {
	ID     string          `json:"id"`
	Label  string          `json:"label"`
	IsRate bool            `json:"is_rate"`
	Value  decimal.Decimal `json:"value"`
}

// ArticleResponse artículo del catálogo.
type ArticleResponse struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// CreateFirmRequest body para POST /api/firms.
type CreateFirmRequest struct {
	Name  string `json:"name"`
	TaxID string `json:"tax_id"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// FirmResponse contraparte en respuestas.
type FirmResponse struct {
	ID        string `json:"id"`
	CompanyID string `json:"company_id"`
	Name      string `json:"name"`
	TaxID     string `json:"tax_id"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
}
