package lifecycle

import (
	"slices"

	"github.com/jhoicas/Documentos-api/internal/domain/entity"
)

// ActionView decisión de render de una acción para un estado concreto.
type ActionView struct {
	Action  Action  `json:"-"`
	Key     string  `json:"key"`
	Label   string  `json:"label"`
	Icon    string  `json:"icon"`
	Variant Variant `json:"variant"`
	Visible bool    `json:"visible"`
}

// KindPolicy tabla de un tipo de documento expuesta con estados como string,
// que es como viajan en la entidad y en la API.
type KindPolicy interface {
	Kind() entity.DocumentKind
	Statuses() []string
	ValidStatus(status string) bool
	Visible(a Action, status string) bool
	Target(a Action) (string, bool)
	Render(status string) []ActionView
}

type boundPolicy[S ~string] struct {
	kind     entity.DocumentKind
	table    *Table[S]
	statuses []S
}

func (p boundPolicy[S]) Kind() entity.DocumentKind { return p.kind }

func (p boundPolicy[S]) Statuses() []string {
	out := make([]string, len(p.statuses))
	for i, s := range p.statuses {
		out[i] = string(s)
	}
	return out
}

func (p boundPolicy[S]) ValidStatus(status string) bool {
	return slices.Contains(p.statuses, S(status))
}

// Visible es false para estados que no pertenecen al enum del tipo.
func (p boundPolicy[S]) Visible(a Action, status string) bool {
	if !p.ValidStatus(status) {
		return false
	}
	return p.table.Visible(a, S(status))
}

func (p boundPolicy[S]) Target(a Action) (string, bool) {
	d, ok := p.table.Descriptor(a)
	if !ok || d.Target == "" {
		return "", false
	}
	return string(d.Target), true
}

func (p boundPolicy[S]) Render(status string) []ActionView {
	views := make([]ActionView, 0, ActionCount)
	for _, a := range Actions() {
		d := p.table[a]
		views = append(views, ActionView{
			Action:  a,
			Key:     a.String(),
			Label:   d.Label,
			Icon:    d.Icon,
			Variant: d.Variant,
			Visible: p.Visible(a, status),
		})
	}
	return views
}

var policies = map[entity.DocumentKind]KindPolicy{
	entity.KindQuotation:        boundPolicy[QuotationStatus]{entity.KindQuotation, &QuotationTable, quotationStatuses},
	entity.KindExpenseQuotation: boundPolicy[ExpenseQuotationStatus]{entity.KindExpenseQuotation, &ExpenseQuotationTable, expenseQuotationStatuses},
	entity.KindInvoice:          boundPolicy[InvoiceStatus]{entity.KindInvoice, &InvoiceTable, invoiceStatuses},
	entity.KindExpenseInvoice:   boundPolicy[ExpenseInvoiceStatus]{entity.KindExpenseInvoice, &ExpenseInvoiceTable, expenseInvoiceStatuses},
}

// ForKind devuelve la política del tipo de documento.
func ForKind(kind entity.DocumentKind) (KindPolicy, bool) {
	p, ok := policies[kind]
	return p, ok
}

// VisibleByName evalúa una acción por su clave textual. Tipo o clave desconocidos = no visible.
func VisibleByName(kind entity.DocumentKind, action, status string) bool {
	p, ok := ForKind(kind)
	if !ok {
		return false
	}
	a, ok := ParseAction(action)
	if !ok {
		return false
	}
	return p.Visible(a, status)
}
