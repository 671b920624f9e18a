package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// DocumentKind tipo de documento comercial.
type DocumentKind string

const (
	KindQuotation        DocumentKind = "quotation"
	KindExpenseQuotation DocumentKind = "expense_quotation"
	KindInvoice          DocumentKind = "invoice"
	KindExpenseInvoice   DocumentKind = "expense_invoice"
)

// Kinds todos los tipos, en orden estable.
var Kinds = []DocumentKind{KindQuotation, KindExpenseQuotation, KindInvoice, KindExpenseInvoice}

// Valid indica si el tipo es conocido.
func (k DocumentKind) Valid() bool {
	switch k {
	case KindQuotation, KindExpenseQuotation, KindInvoice, KindExpenseInvoice:
		return true
	}
	return false
}

var kindPaths = map[DocumentKind]string{
	KindQuotation:        "quotations",
	KindExpenseQuotation: "expense-quotations",
	KindInvoice:          "invoices",
	KindExpenseInvoice:   "expense-invoices",
}

// Path segmento de URL del tipo en la API REST (ej: "expense-quotations").
func (k DocumentKind) Path() string {
	return kindPaths[k]
}

// KindFromPath resuelve el tipo desde su segmento de URL.
func KindFromPath(p string) (DocumentKind, bool) {
	for k, path := range kindPaths {
		if path == p {
			return k, true
		}
	}
	return "", false
}

// InvoiceKind tipo de factura que genera la acción "invoice" sobre una cotización.
func (k DocumentKind) InvoiceKind() (DocumentKind, bool) {
	switch k {
	case KindQuotation:
		return KindInvoice, true
	case KindExpenseQuotation:
		return KindExpenseInvoice, true
	}
	return "", false
}

// IsExpense indica si el documento es del lado de gastos (proveedor).
func (k DocumentKind) IsExpense() bool {
	return k == KindExpenseQuotation || k == KindExpenseInvoice
}

// Document cabecera de una cotización o factura (ventas o gastos).
// SequentialNumber se asigna una sola vez al crear y no cambia después.
// Status vacío significa "aún no creado".
type Document struct {
	ID                string
	CompanyID         string
	Kind              DocumentKind
	FirmID            string
	SequentialNumber  string
	Status            string
	CurrencyID        string
	Currency          *Currency // cargada con join=currency
	Object            string
	GeneralConditions string
	Notes             string
	Date              time.Time
	DueDate           *time.Time
	QuotationID       string // cotización de origen (solo facturas)
	Items             []LineItem
	Subtotal          decimal.Decimal
	TaxTotal          decimal.Decimal
	Total             decimal.Decimal
	Version           int
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
