// Package pdf genera la representación imprimible de cotizaciones y facturas.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Emisor              │  Tipo + N° + Fecha/Vence      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  CONTRAPARTE: Cliente o Proveedor + NIT/CC + contacto       │
//	│  OBJETO                                                      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Cant | Descripción | P.Unit | Desc. | Imp. | Subt.  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RESUMEN DE IMPUESTOS        │  Subtotal / Impuestos / TOTAL │
//	│  ─────────────────────────────────────────────────────────  │
//	│  CONDICIONES + NOTAS + QR de referencia                      │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Documentos-api/internal/application/document"
	"github.com/jhoicas/Documentos-api/internal/domain/entity"
	"github.com/jhoicas/Documentos-api/internal/domain/pricing"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

var titles = map[entity.DocumentKind]string{
	entity.KindQuotation:        "COTIZACIÓN",
	entity.KindExpenseQuotation: "COTIZACIÓN DE PROVEEDOR",
	entity.KindInvoice:          "FACTURA DE VENTA",
	entity.KindExpenseInvoice:   "FACTURA DE GASTO",
}

// ── Generator ─────────────────────────────────────────────────────────────────

var _ document.PDFGenerator = (*MarotoPDFGenerator)(nil)

// MarotoPDFGenerator implementa document.PDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct{}

// NewMarotoPDFGenerator construye el generador.
func NewMarotoPDFGenerator() *MarotoPDFGenerator { return &MarotoPDFGenerator{} }

// GenerateDocumentPDF genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateDocumentPDF(_ context.Context, in document.PDFInput) ([]byte, error) {
	doc := in.Document
	if doc == nil {
		return nil, fmt.Errorf("pdf: documento nil")
	}
	title := titles[doc.Kind]

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(title+" "+doc.SequentialNumber, true).
		WithAuthor(nonEmpty(in.Issuer, "documentos-api"), true).
		Build()

	m := maroto.New(cfg)
	money := moneyFormatter(doc.Currency, in.Totals.Precision)

	m.AddRows(headerRow(doc, in.Issuer, title))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(firmRow(doc.Kind, in.Firm))
	if doc.Object != "" {
		m.AddRows(labeledRow("OBJETO", doc.Object))
	}
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(tableDetailRows(doc.Items, in.Totals, money)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(in.Totals, money))
	m.AddRows(taxSummaryRows(in.Totals, money)...)

	m.AddRows(line.NewRow(3))
	if doc.GeneralConditions != "" {
		m.AddRows(labeledRow("CONDICIONES GENERALES", doc.GeneralConditions))
	}
	if doc.Notes != "" {
		m.AddRows(labeledRow("NOTAS", doc.Notes))
	}
	m.AddRows(referenceRow(doc, in.Totals, money))

	out, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return out.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: emisor (izq) y tipo + número + fechas (der).
func headerRow(doc *entity.Document, issuer, title string) core.Row {
	dates := "Fecha: " + doc.Date.Format("02/01/2006")
	if doc.DueDate != nil {
		dates += "   Vence: " + doc.DueDate.Format("02/01/2006")
	}

	return row.New(18).Add(
		col.New(7).Add(
			text.New(nonEmpty(issuer, "-"), props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Estado: "+nonEmpty(doc.Status, "-"), props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New(title, props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(doc.SequentialNumber, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New(dates, props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

// firmRow: cliente en ventas, proveedor en gastos.
func firmRow(kind entity.DocumentKind, firm *entity.Firm) core.Row {
	label := "CLIENTE"
	if kind.IsExpense() {
		label = "PROVEEDOR"
	}
	name, detail := "-", ""
	if firm != nil {
		name = firm.Name
		detail = fmt.Sprintf("NIT/CC: %s   |   Email: %s   |   Tel: %s",
			nonEmpty(firm.TaxID, "-"),
			nonEmpty(firm.Email, "-"),
			nonEmpty(firm.Phone, "-"),
		)
	}
	return row.New(14).Add(
		col.New(12).Add(
			text.New(label, props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(name, props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 6,
			}),
			text.New(detail, props.Text{Size: 8, Top: 12, Color: colorGray}),
		),
	)
}

func labeledRow(label, body string) core.Row {
	return row.New(12).Add(
		col.New(12).Add(
			text.New(label, props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(body, props.Text{Size: 8, Top: 6, Color: colorGray}),
		),
	)
}

// tableHeaderRow: cabecera de la tabla de líneas.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).WithStyle(&props.Cell{BackgroundColor: colorPrimary}).Add(
		h("Cant.", 1, align.Center),
		h("Descripción", 4, align.Left),
		h("Precio Unit.", 2, align.Right),
		h("Desc.", 1, align.Center),
		h("Impuestos", 2, align.Center),
		h("Subtotal", 2, align.Right),
	)
}

// tableDetailRows: una fila por línea, con los importes ya calculados.
func tableDetailRows(items []entity.LineItem, totals pricing.Totals, money func(decimal.Decimal) string) []core.Row {
	result := make([]core.Row, 0, len(items))
	for i, it := range items {
		var lt pricing.LineTotals
		if i < len(totals.Lines) {
			lt = totals.Lines[i]
		}
		desc := it.Title
		if it.Description != "" {
			desc += " - " + it.Description
		}
		result = append(result, row.New(7).Add(
			col.New(1).Add(text.New(
				it.Quantity.String(),
				props.Text{Size: 8, Align: align.Center, Top: 1},
			)),
			col.New(4).Add(text.New(
				desc,
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(2).Add(text.New(
				money(it.UnitPrice),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
			col.New(1).Add(text.New(
				discountLabel(it, money),
				props.Text{Size: 8, Align: align.Center, Top: 1},
			)),
			col.New(2).Add(text.New(
				taxLabels(lt.Taxes, money),
				props.Text{Size: 7, Align: align.Center, Top: 1},
			)),
			col.New(2).Add(text.New(
				money(lt.Discounted),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
		))
	}
	return result
}

// totalsRow: bloque de totales alineado a la derecha.
func totalsRow(t pricing.Totals, money func(decimal.Decimal) string) core.Row {
	label := func(s string) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2,
		})
	}
	value := func(s string, top float64) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1, Top: top})
	}

	return row.New(20).Add(
		col.New(6),
		col.New(3).Add(
			label("Subtotal:"),
			text.New("Impuestos:", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2, Top: 6}),
			text.New("TOTAL:", props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right,
				Color: colorPrimary, Right: 2, Top: 12,
			}),
		),
		col.New(3).Add(
			value(money(t.Subtotal), 0),
			value(money(t.TaxTotal), 6),
			text.New(money(t.Total), props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right,
				Color: colorPrimary, Right: 1, Top: 12,
			}),
		),
	)
}

// taxSummaryRows: un renglón por impuesto distinto del documento.
func taxSummaryRows(t pricing.Totals, money func(decimal.Decimal) string) []core.Row {
	if len(t.TaxSummary) == 0 {
		return nil
	}
	rows := []core.Row{
		row.New(6).Add(col.New(12).Add(
			text.New("RESUMEN DE IMPUESTOS", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
		)),
	}
	for _, tax := range t.TaxSummary {
		rows = append(rows, row.New(5).Add(
			col.New(8).Add(text.New(tax.Label, props.Text{Size: 8, Left: 2})),
			col.New(4).Add(text.New(money(tax.Amount), props.Text{Size: 8, Align: align.Right, Right: 1})),
		))
	}
	return rows
}

// referenceRow: QR con número, fecha y total para conciliación.
func referenceRow(doc *entity.Document, t pricing.Totals, money func(decimal.Decimal) string) core.Row {
	ref := strings.Join([]string{
		doc.SequentialNumber,
		doc.Date.Format(time.DateOnly),
		money(t.Total),
	}, "|")
	return row.New(30).Add(
		col.New(3).Add(code.NewQr(ref, props.Rect{Percent: 90, Center: true})),
		col.New(9).Add(
			text.New("Referencia del documento", props.Text{
				Style: fontstyle.Bold, Size: 8, Top: 4, Left: 3, Color: colorPrimary,
			}),
			text.New(ref, props.Text{Size: 8, Top: 10, Left: 3, Color: colorGray}),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

func discountLabel(it entity.LineItem, money func(decimal.Decimal) string) string {
	if it.Discount.IsZero() {
		return "-"
	}
	if it.DiscountType == entity.DiscountAmount {
		return money(it.Discount)
	}
	return it.Discount.String() + "%"
}

func taxLabels(taxes []pricing.TaxAmount, money func(decimal.Decimal) string) string {
	if len(taxes) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(taxes))
	for _, t := range taxes {
		if t.IsRate {
			parts = append(parts, t.Rate.StringFixed(2)+"%")
		} else {
			parts = append(parts, money(t.Rate))
		}
	}
	return strings.Join(parts, " + ")
}

// moneyFormatter formatea con la precisión de los totales y el símbolo de la moneda.
func moneyFormatter(c *entity.Currency, precision int32) func(decimal.Decimal) string {
	symbol := ""
	if c != nil {
		symbol = c.Symbol
	}
	return func(d decimal.Decimal) string {
		return symbol + formatMoney(d.StringFixed(precision))
	}
}

// formatMoney inserta puntos de miles y coma decimal en un string numérico.
// Ej: "25000" → "25.000", "1234567.891" → "1.234.567,891"
func formatMoney(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, hasFrac := strings.Cut(s, ".")
	n := len(intPart)
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(intPart) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	if hasFrac {
		buf = append(buf, ',')
		buf = append(buf, frac...)
	}
	return sign + string(buf)
}
