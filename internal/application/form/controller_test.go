package form_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Documentos-api/internal/application/form"
	"github.com/jhoicas/Documentos-api/internal/domain"
	"github.com/jhoicas/Documentos-api/internal/domain/entity"
	"github.com/jhoicas/Documentos-api/internal/domain/lifecycle"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

var (
	two  = 2
	refs = form.References{
		Currencies: []entity.Currency{{ID: "EUR", Code: "EUR", Symbol: "€", Digits: &two}},
		Taxes: []entity.Tax{
			{ID: "iva20", Label: "IVA 20%", IsRate: true, Value: dec("20")},
			{ID: "iva7", Label: "IVA 7%", IsRate: true, Value: dec("7")},
			{ID: "timbre", Label: "Timbre", IsRate: false, Value: dec("1")},
		},
	}
)

// fakeGateway simula la API remota: numera, versiona y aplica las transiciones de la política.
type fakeGateway struct {
	err   error
	calls []string
	seq   int
}

func (g *fakeGateway) Create(_ context.Context, kind entity.DocumentKind, doc *entity.Document, action lifecycle.Action) (*entity.Document, error) {
	g.calls = append(g.calls, "create:"+action.String())
	if g.err != nil {
		return nil, g.err
	}
	g.seq++
	p, _ := lifecycle.ForKind(kind)
	status, ok := p.Target(action)
	if !ok {
		status, _ = p.Target(lifecycle.ActionDraft)
	}
	out := *doc
	out.ID = fmt.Sprintf("doc-%d", g.seq)
	out.SequentialNumber = fmt.Sprintf("COT-2026-%04d", g.seq)
	out.Status = status
	out.Version = 1
	return &out, nil
}

func (g *fakeGateway) Update(_ context.Context, _ entity.DocumentKind, doc *entity.Document) (*entity.Document, error) {
	g.calls = append(g.calls, "update")
	if g.err != nil {
		return nil, g.err
	}
	out := *doc
	out.Version++
	return &out, nil
}

func (g *fakeGateway) Transition(_ context.Context, kind entity.DocumentKind, id string, a lifecycle.Action) (*form.TransitionResult, error) {
	g.calls = append(g.calls, "transition:"+a.String())
	if g.err != nil {
		return nil, g.err
	}
	p, _ := lifecycle.ForKind(kind)
	target, _ := p.Target(a)
	return &form.TransitionResult{Document: &entity.Document{ID: id, Kind: kind, Status: target, Version: 9,
		Items: []entity.LineItem{{ID: "l1", Quantity: dec("1"), DiscountType: entity.DiscountPercentage}}}}, nil
}

func (g *fakeGateway) Duplicate(_ context.Context, kind entity.DocumentKind, id string, _ bool) (*entity.Document, error) {
	g.calls = append(g.calls, "duplicate")
	if g.err != nil {
		return nil, g.err
	}
	return &entity.Document{ID: id + "-copy", Kind: kind, Status: "draft", Version: 1}, nil
}

func (g *fakeGateway) Delete(_ context.Context, _ entity.DocumentKind, _ string) error {
	g.calls = append(g.calls, "delete")
	return g.err
}

type recorder struct {
	notices []form.Notice
}

func (r *recorder) Notify(n form.Notice) { r.notices = append(r.notices, n) }

func newController(t *testing.T, kind entity.DocumentKind) (*form.Controller, *fakeGateway, *recorder) {
	t.Helper()
	gw := &fakeGateway{}
	rec := &recorder{}
	c, err := form.NewController(kind, refs, gw, rec)
	require.NoError(t, err)
	return c, gw, rec
}

func firstLine(c *form.Controller) entity.LineItem {
	return c.Draft().Items[0]
}

func TestNuevo_UnaLineaYSinCambios(t *testing.T) {
	c, _, _ := newController(t, entity.KindQuotation)

	d := c.Draft()
	require.Len(t, d.Items, 1)
	assert.NotEmpty(t, d.Items[0].ID)
	assert.Equal(t, "", c.Status())
	assert.False(t, c.Changed())
	assert.True(t, c.Can(lifecycle.ActionDraft))
	assert.False(t, c.Can(lifecycle.ActionDuplicate))

	_, err := form.NewController("memo", refs, nil, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSet_TiposYCambios(t *testing.T) {
	c, _, _ := newController(t, entity.KindQuotation)

	assert.ErrorIs(t, c.Set(form.FieldObject, 42), domain.ErrInvalidInput)
	assert.ErrorIs(t, c.Set(form.FieldDate, "2026-01-01"), domain.ErrInvalidInput)
	assert.ErrorIs(t, c.Set(form.FieldCurrency, "XXX"), domain.ErrInvalidInput)
	assert.False(t, c.Changed(), "un valor rechazado no toca el borrador")

	require.NoError(t, c.Set(form.FieldObject, "Servicios"))
	assert.True(t, c.Changed())
	assert.Equal(t, "Servicios", c.Draft().Object)

	require.NoError(t, c.Set(form.FieldObject, ""))
	assert.False(t, c.Changed(), "volver al valor original limpia el estado")

	require.NoError(t, c.Set(form.FieldCurrency, "EUR"))
	require.NotNil(t, c.Draft().Currency)
	assert.Equal(t, int32(2), c.Totals().Precision)

	due := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, c.Set(form.FieldDueDate, due))
	require.NoError(t, c.Set(form.FieldDueDate, nil))
	assert.Nil(t, c.Draft().DueDate)
}

func TestDelete_UltimaLineaEsNoOp(t *testing.T) {
	c, _, rec := newController(t, entity.KindInvoice)
	only := firstLine(c).ID

	err := c.Delete(only)
	assert.ErrorIs(t, err, domain.ErrLastLineItem)
	assert.Len(t, c.Draft().Items, 1)
	require.Len(t, rec.notices, 1)
	assert.Equal(t, form.SeverityWarning, rec.notices[0].Severity)

	second := c.Add()
	require.NoError(t, c.Delete(only))
	items := c.Draft().Items
	require.Len(t, items, 1)
	assert.Equal(t, second, items[0].ID)
	assert.Equal(t, 0, items[0].Position)

	assert.ErrorIs(t, c.Delete("nope"), domain.ErrNotFound)
}

func TestReorder(t *testing.T) {
	c, _, _ := newController(t, entity.KindQuotation)
	a := firstLine(c).ID
	b := c.Add()
	d := c.Add()

	require.NoError(t, c.Reorder(2, 0))
	items := c.Draft().Items
	assert.Equal(t, []string{d, a, b}, []string{items[0].ID, items[1].ID, items[2].ID})
	for i, it := range items {
		assert.Equal(t, i, it.Position)
	}
	assert.ErrorIs(t, c.Reorder(0, 3), domain.ErrInvalidInput)
}

func TestTipoDeDescuento_SiempreReiniciaElDescuento(t *testing.T) {
	c, _, _ := newController(t, entity.KindQuotation)
	id := firstLine(c).ID

	for _, prior := range []string{"0", "10", "99.5"} {
		line := firstLine(c)
		line.DiscountType = entity.DiscountPercentage
		line.Discount = dec(prior)
		require.NoError(t, c.Update(id, line))

		require.NoError(t, c.SetDiscountType(id, entity.DiscountAmount))
		assert.True(t, firstLine(c).Discount.IsZero(), "previo %s", prior)

		require.NoError(t, c.SetDiscountType(id, entity.DiscountPercentage))
		assert.True(t, firstLine(c).Discount.IsZero())
	}

	// Cambiar el tipo dentro de Update también reinicia, aunque el monto sea inválido como porcentaje.
	line := firstLine(c)
	line.DiscountType = entity.DiscountAmount
	line.Discount = dec("150")
	require.NoError(t, c.Update(id, line))
	assert.True(t, firstLine(c).Discount.IsZero())

	assert.ErrorIs(t, c.SetDiscountType(id, "HALF"), domain.ErrInvalidInput)
}

func TestUpdate_EntradaInvalidaNoSeAplica(t *testing.T) {
	c, _, _ := newController(t, entity.KindQuotation)
	id := firstLine(c).ID

	line := firstLine(c)
	line.UnitPrice = dec("-3")
	assert.ErrorIs(t, c.Update(id, line), domain.ErrInvalidInput)

	line.UnitPrice = dec("1.0001")
	assert.ErrorIs(t, c.Update(id, line), domain.ErrInvalidInput)
	assert.True(t, firstLine(c).UnitPrice.IsZero())
	assert.False(t, c.Changed())
}

func TestImpuestos_DuplicadoYCupos(t *testing.T) {
	c, _, rec := newController(t, entity.KindQuotation)
	id := firstLine(c).ID

	require.NoError(t, c.AddTax(id, "iva20"))
	assert.ErrorIs(t, c.AddTax(id, "iva20"), domain.ErrDuplicateTax)
	assert.Len(t, firstLine(c).Taxes, 1)

	require.NoError(t, c.AddTax(id, "iva7"))
	require.NoError(t, c.AddTax(id, "timbre"))
	assert.Empty(t, c.AvailableTaxes(id))

	assert.ErrorIs(t, c.AddTax(id, "otro"), domain.ErrInvalidInput)
	require.Len(t, rec.notices, 1, "solo el duplicado es advertencia; el id desconocido es validación")
	assert.Equal(t, form.SeverityWarning, rec.notices[0].Severity)
}

func TestImpuestos_SinCupoDisponible(t *testing.T) {
	gw := &fakeGateway{}
	rec := &recorder{}
	single := form.References{Taxes: refs.Taxes[:1]}
	c, err := form.NewController(entity.KindQuotation, single, gw, rec)
	require.NoError(t, err)
	id := firstLine(c).ID

	line := firstLine(c)
	line.Taxes = []entity.TaxEntry{refs.Taxes[0].Entry(), refs.Taxes[1].Entry()}
	assert.ErrorIs(t, c.Update(id, line), domain.ErrTaxSlotsExhausted)
	assert.Empty(t, firstLine(c).Taxes)
	require.Len(t, rec.notices, 1)
}

func TestRemoveTax_ConservaElOrden(t *testing.T) {
	c, _, _ := newController(t, entity.KindQuotation)
	id := firstLine(c).ID
	for _, tax := range []string{"iva20", "iva7", "timbre"} {
		require.NoError(t, c.AddTax(id, tax))
	}

	for remove := 0; remove < 3; remove++ {
		c.Reset()
		for _, tax := range []string{"iva20", "iva7", "timbre"} {
			_ = c.AddTax(id, tax)
		}
		before := firstLine(c).Taxes
		require.NoError(t, c.RemoveTax(id, remove))
		after := firstLine(c).Taxes

		require.Len(t, after, len(before)-1)
		want := append(append([]entity.TaxEntry{}, before[:remove]...), before[remove+1:]...)
		assert.Equal(t, want, after)
	}
	assert.ErrorIs(t, c.RemoveTax(id, 5), domain.ErrInvalidInput)
}

func TestTotals_Ejemplos(t *testing.T) {
	c, _, _ := newController(t, entity.KindQuotation)
	require.NoError(t, c.Set(form.FieldCurrency, "EUR"))

	line := entity.LineItem{
		Quantity:     dec("2"),
		UnitPrice:    dec("100"),
		Discount:     dec("10"),
		DiscountType: entity.DiscountPercentage,
		Taxes:        []entity.TaxEntry{refs.Taxes[0].Entry()},
	}
	require.NoError(t, c.Update(firstLine(c).ID, line))
	totals := c.Totals()
	assert.Equal(t, "180.00", totals.Lines[0].Discounted.StringFixed(2))
	assert.Equal(t, "216.00", totals.Total.StringFixed(2))

	require.NoError(t, c.Update(c.Add(), line))
	totals = c.Totals()
	assert.Equal(t, "360.00", totals.Subtotal.StringFixed(2))
	assert.Equal(t, "72.00", totals.TaxTotal.StringFixed(2))
	assert.Equal(t, "432.00", totals.Total.StringFixed(2))
}

func TestChanged_NormalizaDecimales(t *testing.T) {
	c, _, _ := newController(t, entity.KindQuotation)
	line := firstLine(c)
	line.Quantity = dec("1.000")
	require.NoError(t, c.Update(line.ID, line))
	assert.False(t, c.Changed(), "1.000 y 1 son la misma cantidad")
}

func TestReset_VuelveALaInstantanea(t *testing.T) {
	c, _, _ := newController(t, entity.KindQuotation)
	require.NoError(t, c.Set(form.FieldNotes, "nota"))
	c.Add()

	c.Reset()
	assert.False(t, c.Changed())
	assert.Len(t, c.Draft().Items, 1)
	assert.Empty(t, c.Draft().Notes)
}

func TestReset_DocumentoNoEditable(t *testing.T) {
	c, _, _ := newController(t, entity.KindQuotation)
	c.Load(&entity.Document{ID: "doc-1", Kind: entity.KindQuotation, Status: "validated", Object: "Original", Version: 2})
	require.False(t, c.Can(lifecycle.ActionSave))

	require.NoError(t, c.Set(form.FieldObject, "editado"))
	c.Add()
	require.True(t, c.Changed())

	c.Reset()
	assert.False(t, c.Changed())
	assert.Equal(t, "Original", c.Draft().Object)
	assert.Len(t, c.Draft().Items, 1)
}

func TestSet_DueDateCopiaElPuntero(t *testing.T) {
	c, _, _ := newController(t, entity.KindQuotation)
	due := time.Date(2026, time.April, 30, 0, 0, 0, 0, time.UTC)
	require.NoError(t, c.Set(form.FieldDueDate, &due))
	require.True(t, c.Changed())

	due = due.AddDate(0, 1, 0)
	require.NotNil(t, c.Draft().DueDate)
	assert.Equal(t, time.April, c.Draft().DueDate.Month(), "el borrador no cambia por fuera de Set")
}

func TestSave_CreaYLuegoActualiza(t *testing.T) {
	c, gw, _ := newController(t, entity.KindQuotation)
	require.NoError(t, c.Set(form.FieldObject, "Obra"))

	require.NoError(t, c.Save(context.Background()))
	assert.Equal(t, "doc-1", c.Draft().ID)
	assert.Equal(t, "draft", c.Status())
	assert.False(t, c.Changed())

	require.NoError(t, c.Set(form.FieldObject, "Obra 2"))
	require.NoError(t, c.Save(context.Background()))
	assert.Equal(t, []string{"create:save", "update"}, gw.calls)
	assert.Equal(t, 2, c.Draft().Version, "la versión viaja opaca y la devuelve el servidor")
}

func TestSave_FalloRemotoConservaElBorrador(t *testing.T) {
	c, gw, rec := newController(t, entity.KindQuotation)
	require.NoError(t, c.Set(form.FieldObject, "Obra"))
	before := c.Draft()

	gw.err = errors.New("503 Service Unavailable")
	err := c.Save(context.Background())
	require.Error(t, err)

	assert.Equal(t, before, c.Draft())
	assert.True(t, c.Changed())
	require.Len(t, rec.notices, 1)
	assert.Equal(t, form.SeverityError, rec.notices[0].Severity)
	assert.Equal(t, "save", rec.notices[0].Action)

	gw.err = nil
	require.NoError(t, c.Save(context.Background()), "reintentar la misma acción funciona")
}

func TestAcciones_ControladasPorEstado(t *testing.T) {
	c, gw, _ := newController(t, entity.KindQuotation)
	ctx := context.Background()

	_, err := c.Transition(ctx, lifecycle.ActionSend)
	assert.ErrorIs(t, err, domain.ErrActionNotAllowed)
	assert.ErrorIs(t, c.Duplicate(ctx, true), domain.ErrActionNotAllowed)
	assert.ErrorIs(t, c.DeleteDocument(ctx), domain.ErrActionNotAllowed)
	assert.Empty(t, gw.calls, "una acción oculta nunca llega al gateway")

	require.NoError(t, c.SaveDraft(ctx))
	assert.ErrorIs(t, c.SaveDraft(ctx), domain.ErrActionNotAllowed, "draft solo antes de crear")

	require.NoError(t, c.Set(form.FieldNotes, "x"))
	require.NoError(t, c.Validate(ctx))
	assert.Equal(t, []string{"create:draft", "update", "transition:validate"}, gw.calls)
	assert.Equal(t, "validated", c.Status())
	require.NoError(t, c.Set(form.FieldNotes, "y"))
	c.Reset()
	assert.False(t, c.Changed(), "restablecer no depende del estado")

	_, err = c.Transition(ctx, lifecycle.ActionSend)
	require.NoError(t, err)
	assert.Equal(t, "sent", c.Status())
}

func TestDeleteDocument_DejaFormularioNuevo(t *testing.T) {
	c, _, _ := newController(t, entity.KindInvoice)
	ctx := context.Background()
	require.NoError(t, c.Validate(ctx))
	require.NotEmpty(t, c.Draft().ID)

	require.NoError(t, c.DeleteDocument(ctx))
	assert.Empty(t, c.Draft().ID)
	assert.Equal(t, "", c.Status())
	assert.Len(t, c.Draft().Items, 1)
}

func TestDuplicate_CargaLaCopia(t *testing.T) {
	c, _, _ := newController(t, entity.KindInvoice)
	ctx := context.Background()
	require.NoError(t, c.Validate(ctx))

	require.NoError(t, c.Duplicate(ctx, false))
	assert.Equal(t, "doc-1-copy", c.Draft().ID)
	assert.Len(t, c.Draft().Items, 1, "una copia sin líneas arranca con una línea vacía")
}

func TestApplySequenceUpdate_GanaElUltimo(t *testing.T) {
	c, _, _ := newController(t, entity.KindQuotation)
	done := make(chan struct{})
	go func() {
		c.ApplySequenceUpdate("COT-2026-0007")
		close(done)
	}()
	<-done
	c.ApplySequenceUpdate("COT-2026-0008")
	assert.Equal(t, "COT-2026-0008", c.NextSequential())
}
