// Package form es el controlador del formulario de un documento en el lado cliente:
// mantiene el borrador, media las ediciones de cabecera y líneas, detecta cambios
// contra la última instantánea y dispara las acciones permitidas por el ciclo de vida.
//
// Cada formulario abierto tiene su propio Controller. No es seguro para uso
// concurrente salvo ApplySequenceUpdate, que puede llegar desde el canal push.
package form

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Documentos-api/internal/domain"
	"github.com/jhoicas/Documentos-api/internal/domain/entity"
	"github.com/jhoicas/Documentos-api/internal/domain/lifecycle"
	"github.com/jhoicas/Documentos-api/internal/domain/pricing"
)

// Controller estado explícito de un formulario de documento.
type Controller struct {
	kind     entity.DocumentKind
	policy   lifecycle.KindPolicy
	refs     References
	gateway  Gateway
	notifier Notifier

	draft    entity.Document
	snapshot projection
	changed  bool

	seqMu          sync.Mutex
	nextSequential string

	newID func() string
	now   func() time.Time
}

// NewController crea el controlador con un documento nuevo de una línea vacía.
func NewController(kind entity.DocumentKind, refs References, gateway Gateway, notifier Notifier) (*Controller, error) {
	policy, ok := lifecycle.ForKind(kind)
	if !ok {
		return nil, fmt.Errorf("%w: tipo %q", domain.ErrInvalidInput, kind)
	}
	if notifier == nil {
		notifier = NotifierFunc(func(Notice) {})
	}
	if refs.DefaultPrecision == 0 {
		refs.DefaultPrecision = pricing.DefaultPrecision
	}
	c := &Controller{
		kind:     kind,
		policy:   policy,
		refs:     refs,
		gateway:  gateway,
		notifier: notifier,
		newID:    uuid.NewString,
		now:      time.Now,
	}
	c.clear()
	return c, nil
}

// Load reemplaza el borrador por doc y toma una nueva instantánea.
func (c *Controller) Load(doc *entity.Document) {
	c.draft = cloneDocument(doc)
	if c.draft.Kind == "" {
		c.draft.Kind = c.kind
	}
	if c.draft.Currency == nil && c.draft.CurrencyID != "" {
		c.draft.Currency, _ = c.refs.currency(c.draft.CurrencyID)
	}
	if len(c.draft.Items) == 0 {
		c.draft.Items = []entity.LineItem{c.blankLine()}
	}
	c.snapshot = project(&c.draft)
	c.changed = false
}

// clear arranca un documento nuevo, aún no creado (estado vacío).
func (c *Controller) clear() {
	y, m, d := c.now().Date()
	c.Load(&entity.Document{
		Kind: c.kind,
		Date: time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
	})
}

// Draft copia del borrador actual.
func (c *Controller) Draft() entity.Document {
	return cloneDocument(&c.draft)
}

// Kind tipo de documento del formulario.
func (c *Controller) Kind() entity.DocumentKind { return c.kind }

// Status estado del documento; vacío si aún no fue creado.
func (c *Controller) Status() string { return c.draft.Status }

// Changed indica si el borrador difiere de la última instantánea.
func (c *Controller) Changed() bool { return c.changed }

// Reset descarta las ediciones y vuelve a la última instantánea, en cualquier
// estado. La política solo decide si el botón se muestra.
func (c *Controller) Reset() {
	c.draft = c.snapshot.restore()
	c.changed = false
}

// Totals recalcula los totales del borrador.
func (c *Controller) Totals() pricing.Totals {
	return pricing.ComputeAt(c.draft.Items, c.precision())
}

// Actions decisión de render de las acciones para el estado actual.
func (c *Controller) Actions() []lifecycle.ActionView {
	return c.policy.Render(c.draft.Status)
}

// Can indica si la acción está disponible en el estado actual.
func (c *Controller) Can(a lifecycle.Action) bool {
	return c.policy.Visible(a, c.draft.Status)
}

// ApplySequenceUpdate guarda el próximo número recibido por el canal push.
// Gana el último valor recibido; no se concilia con la edición en curso.
func (c *Controller) ApplySequenceUpdate(preview string) {
	c.seqMu.Lock()
	c.nextSequential = preview
	c.seqMu.Unlock()
}

// NextSequential último "próximo número" recibido.
func (c *Controller) NextSequential() string {
	c.seqMu.Lock()
	defer c.seqMu.Unlock()
	return c.nextSequential
}

func (c *Controller) precision() int32 {
	return pricing.PrecisionOr(c.draft.Currency, c.refs.DefaultPrecision)
}

func (c *Controller) touch() {
	c.changed = !project(&c.draft).equal(c.snapshot)
}

func (c *Controller) warn(action string, err error) error {
	c.notifier.Notify(Notice{Severity: SeverityWarning, Action: action, Message: err.Error(), Err: err})
	return err
}

func cloneDocument(d *entity.Document) entity.Document {
	out := *d
	if d.DueDate != nil {
		due := *d.DueDate
		out.DueDate = &due
	}
	out.Items = make([]entity.LineItem, len(d.Items))
	for i, it := range d.Items {
		it.Taxes = append([]entity.TaxEntry(nil), it.Taxes...)
		out.Items[i] = it
	}
	return out
}
