package document_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Documentos-api/internal/application/document"
	"github.com/jhoicas/Documentos-api/internal/application/dto"
	"github.com/jhoicas/Documentos-api/internal/domain"
	"github.com/jhoicas/Documentos-api/internal/domain/entity"
	"github.com/jhoicas/Documentos-api/internal/domain/lifecycle"
	"github.com/jhoicas/Documentos-api/internal/domain/repository"
	"github.com/jhoicas/Documentos-api/internal/infrastructure/memory"
	"github.com/jhoicas/Documentos-api/pkg/query"
	"github.com/jhoicas/Documentos-api/pkg/sequence"
)

const company = "company-1"

var now = time.Date(2026, time.March, 9, 15, 4, 5, 0, time.UTC)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type published struct {
	room    string
	payload []byte
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []published
}

func (p *recordingPublisher) Publish(room string, payload []byte) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, published{room: room, payload: payload})
	return 1
}

type fixture struct {
	store *memory.Store
	uc    *document.UseCase
	pub   *recordingPublisher
	ctx   context.Context
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	store.SeedDefaults()
	store.SeedArticle(entity.Article{ID: "art-1", CompanyID: company, Title: "Consultoría", Description: "Hora de consultoría", UnitPrice: dec("150")})

	pub := &recordingPublisher{}
	uc := document.NewUseCase(
		memory.NewTxRunner(store),
		memory.NewDocumentRepository(store),
		memory.NewCurrencyRepository(store),
		memory.NewTaxRepository(store),
		memory.NewArticleRepository(store),
		memory.NewFirmRepository(store),
		pub, nil, 3,
	).WithClock(func() time.Time { return now })
	return &fixture{store: store, uc: uc, pub: pub, ctx: context.Background()}
}

func request() dto.DocumentRequest {
	return dto.DocumentRequest{
		CurrencyID: "EUR",
		Object:     "Servicios de marzo",
		Items: []dto.LineItemRequest{{
			Title:        "Horas",
			Quantity:     dec("2"),
			UnitPrice:    dec("100"),
			Discount:     dec("10"),
			DiscountType: entity.DiscountPercentage,
			TaxIDs:       []string{"iva19"},
		}},
	}
}

func (f *fixture) create(t *testing.T, kind entity.DocumentKind, action lifecycle.Action) *dto.DocumentResponse {
	t.Helper()
	resp, err := f.uc.Create(f.ctx, company, kind, request(), action)
	require.NoError(t, err)
	return resp
}

func (f *fixture) transition(t *testing.T, kind entity.DocumentKind, id string, actions ...string) *dto.TransitionResponse {
	t.Helper()
	var resp *dto.TransitionResponse
	for _, a := range actions {
		var err error
		resp, err = f.uc.Transition(f.ctx, company, kind, id, a)
		require.NoError(t, err, a)
	}
	return resp
}

func TestCreate_ValidaNumeraYDifunde(t *testing.T) {
	f := newFixture(t)
	resp := f.create(t, entity.KindQuotation, lifecycle.ActionValidate)

	assert.Equal(t, "validated", resp.Status)
	assert.Equal(t, "COT-2026-0001", resp.SequentialNumber)
	assert.Equal(t, 1, resp.Version)
	assert.Equal(t, "214.20", resp.Total.StringFixed(2))
	assert.Equal(t, "34.20", resp.TaxTotal.StringFixed(2))
	require.Len(t, resp.Items, 1)
	require.Len(t, resp.Items[0].Taxes, 1)
	assert.Equal(t, "IVA 19%", resp.Items[0].Taxes[0].Label)

	require.Len(t, f.pub.events, 1)
	assert.Equal(t, "sequence:company-1:quotation", f.pub.events[0].room)
	var ev dto.SequenceEvent
	require.NoError(t, json.Unmarshal(f.pub.events[0].payload, &ev))
	assert.Equal(t, int64(2), ev.Next)
	assert.Equal(t, "COT-2026-0002", ev.Preview)
}

func TestCreate_SaveNaceEnBorrador(t *testing.T) {
	f := newFixture(t)
	resp := f.create(t, entity.KindExpenseInvoice, lifecycle.ActionSave)
	assert.Equal(t, "draft", resp.Status)
	assert.Equal(t, "FGA-2026-0001", resp.SequentialNumber)
}

func TestCreate_AccionNoPermitida(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.Create(f.ctx, company, entity.KindQuotation, request(), lifecycle.ActionSend)
	assert.ErrorIs(t, err, domain.ErrActionNotAllowed)

	_, err = f.uc.Create(f.ctx, company, "memo", request(), lifecycle.ActionSave)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreate_EntradaInvalida(t *testing.T) {
	f := newFixture(t)

	empty := request()
	empty.Items = nil
	_, err := f.uc.Create(f.ctx, company, entity.KindQuotation, empty, lifecycle.ActionSave)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	negative := request()
	negative.Items[0].Quantity = dec("-1")
	_, err = f.uc.Create(f.ctx, company, entity.KindQuotation, negative, lifecycle.ActionSave)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	dupTax := request()
	dupTax.Items[0].TaxIDs = []string{"iva19", "iva19"}
	_, err = f.uc.Create(f.ctx, company, entity.KindQuotation, dupTax, lifecycle.ActionSave)
	assert.ErrorIs(t, err, domain.ErrDuplicateTax)

	unknownCurrency := request()
	unknownCurrency.CurrencyID = "XXX"
	_, err = f.uc.Create(f.ctx, company, entity.KindQuotation, unknownCurrency, lifecycle.ActionSave)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	badDue := request()
	badDue.Date, badDue.DueDate = "2026-03-10", "2026-03-01"
	_, err = f.uc.Create(f.ctx, company, entity.KindQuotation, badDue, lifecycle.ActionSave)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	assert.Empty(t, f.pub.events, "ningún alta fallida difunde numeración")
}

func TestCreate_PrecioPorDefectoDelArticulo(t *testing.T) {
	f := newFixture(t)
	in := request()
	in.Items = []dto.LineItemRequest{{ArticleID: "art-1", Quantity: dec("1")}}

	resp, err := f.uc.Create(f.ctx, company, entity.KindQuotation, in, lifecycle.ActionSave)
	require.NoError(t, err)
	assert.Equal(t, "Consultoría", resp.Items[0].Title)
	assert.True(t, resp.Items[0].UnitPrice.Equal(dec("150")))
	assert.Equal(t, entity.DiscountPercentage, resp.Items[0].DiscountType)
}

func TestCreate_FalloRevierteLaSecuencia(t *testing.T) {
	f := newFixture(t)
	f.create(t, entity.KindQuotation, lifecycle.ActionSave)

	// Se fuerza la reutilización del número 0001 para provocar un conflicto.
	f.store.SeedSequence(entity.Sequence{
		CompanyID:  company,
		Kind:       entity.KindQuotation,
		Sequential: sequence.Sequential{Prefix: "COT", DateFormat: sequence.DateYYYY, Next: 1},
	})
	_, err := f.uc.Create(f.ctx, company, entity.KindQuotation, request(), lifecycle.ActionSave)
	require.ErrorIs(t, err, domain.ErrConflict)

	seq, err := memory.NewSequenceRepository(f.store).Get(f.ctx, company, entity.KindQuotation)
	require.NoError(t, err)
	assert.Equal(t, int64(1), seq.Next, "el contador vuelve al valor previo a la transacción")
}

func TestUpdate_ControlDeVersion(t *testing.T) {
	f := newFixture(t)
	created := f.create(t, entity.KindQuotation, lifecycle.ActionSave)

	in := request()
	in.Version = created.Version
	in.Object = "Servicios revisados"
	updated, err := f.uc.Update(f.ctx, company, entity.KindQuotation, created.ID, in)
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Version)
	assert.Equal(t, created.SequentialNumber, updated.SequentialNumber, "el número no cambia al editar")
	assert.Equal(t, "Servicios revisados", updated.Object)

	_, err = f.uc.Update(f.ctx, company, entity.KindQuotation, created.ID, in)
	assert.ErrorIs(t, err, domain.ErrConflict, "versión obsoleta")
}

func TestUpdate_NoEditableTrasValidar(t *testing.T) {
	f := newFixture(t)
	created := f.create(t, entity.KindInvoice, lifecycle.ActionValidate)

	in := request()
	in.Version = created.Version
	_, err := f.uc.Update(f.ctx, company, entity.KindInvoice, created.ID, in)
	assert.ErrorIs(t, err, domain.ErrActionNotAllowed)
}

func TestUpdate_ConservaSoloIDsConocidos(t *testing.T) {
	f := newFixture(t)
	created := f.create(t, entity.KindQuotation, lifecycle.ActionSave)

	in := request()
	in.Version = created.Version
	in.Items[0].ID = created.Items[0].ID
	in.Items = append(in.Items, dto.LineItemRequest{ID: "tmp-123", Title: "Extra", Quantity: dec("1"), UnitPrice: dec("5")})

	updated, err := f.uc.Update(f.ctx, company, entity.KindQuotation, created.ID, in)
	require.NoError(t, err)
	require.Len(t, updated.Items, 2)
	assert.Equal(t, created.Items[0].ID, updated.Items[0].ID)
	assert.NotEqual(t, "tmp-123", updated.Items[1].ID)
	assert.NotEmpty(t, updated.Items[1].ID)
}

var errCommit = errors.New("commit fallido")

// failingCommitTx ejecuta el callback en la transacción en memoria y falla al confirmar.
type failingCommitTx struct {
	inner *memory.TxRunner
	calls int
}

func (r *failingCommitTx) RunDocuments(ctx context.Context, fn func(repository.DocumentRepository, repository.SequenceRepository) error) error {
	r.calls++
	return r.inner.RunDocuments(ctx, func(docs repository.DocumentRepository, seqs repository.SequenceRepository) error {
		if err := fn(docs, seqs); err != nil {
			return err
		}
		return errCommit
	})
}

func TestUpdate_FalloDeTransaccionConservaElDocumento(t *testing.T) {
	f := newFixture(t)
	created := f.create(t, entity.KindQuotation, lifecycle.ActionSave)

	tx := &failingCommitTx{inner: memory.NewTxRunner(f.store)}
	uc := document.NewUseCase(
		tx,
		memory.NewDocumentRepository(f.store),
		memory.NewCurrencyRepository(f.store),
		memory.NewTaxRepository(f.store),
		memory.NewArticleRepository(f.store),
		memory.NewFirmRepository(f.store),
		nil, nil, 3,
	)

	in := request()
	in.Version = created.Version
	in.Object = "No debe quedar"
	in.Items = append(in.Items, dto.LineItemRequest{Title: "Extra", Quantity: dec("1"), UnitPrice: dec("5")})
	_, err := uc.Update(f.ctx, company, entity.KindQuotation, created.ID, in)
	require.ErrorIs(t, err, errCommit)
	assert.Equal(t, 1, tx.calls)

	stored, err := f.uc.Get(f.ctx, company, entity.KindQuotation, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Version, stored.Version)
	assert.Equal(t, created.Object, stored.Object)
	assert.Len(t, stored.Items, 1)

	require.ErrorIs(t, uc.Delete(f.ctx, company, entity.KindQuotation, created.ID), errCommit)
	_, err = f.uc.Get(f.ctx, company, entity.KindQuotation, created.ID)
	assert.NoError(t, err, "el borrado fallido no se aplica")
}

func TestTransition_CotizacionHastaFactura(t *testing.T) {
	f := newFixture(t)
	quote := f.create(t, entity.KindQuotation, lifecycle.ActionSave)

	resp := f.transition(t, entity.KindQuotation, quote.ID, "validate", "send", "accept", "invoice")
	assert.Equal(t, "invoiced", resp.Document.Status)
	assert.Equal(t, 5, resp.Document.Version)

	require.NotNil(t, resp.Created)
	inv := resp.Created
	assert.Equal(t, string(entity.KindInvoice), inv.Kind)
	assert.Equal(t, "draft", inv.Status)
	assert.Equal(t, quote.ID, inv.QuotationID)
	assert.Equal(t, "FAC-2026-0001", inv.SequentialNumber)
	require.Len(t, inv.Items, 1)
	assert.NotEqual(t, quote.Items[0].ID, inv.Items[0].ID)
	assert.True(t, inv.Total.Equal(quote.Total))

	_, err := f.uc.Transition(f.ctx, company, entity.KindQuotation, quote.ID, "invoice")
	assert.ErrorIs(t, err, domain.ErrActionNotAllowed, "no se factura dos veces")

	last := f.pub.events[len(f.pub.events)-1]
	assert.Equal(t, "sequence:company-1:invoice", last.room)
}

func TestTransition_CotizacionDeGastos(t *testing.T) {
	f := newFixture(t)
	quote := f.create(t, entity.KindExpenseQuotation, lifecycle.ActionValidate)

	resp := f.transition(t, entity.KindExpenseQuotation, quote.ID, "invoice")
	require.NotNil(t, resp.Created)
	assert.Equal(t, string(entity.KindExpenseInvoice), resp.Created.Kind)
	assert.Equal(t, "FGA-2026-0001", resp.Created.SequentialNumber)

	paid := f.transition(t, entity.KindExpenseInvoice, resp.Created.ID, "validate", "pay")
	assert.Equal(t, "paid", paid.Document.Status)
}

func TestTransition_Rechazos(t *testing.T) {
	f := newFixture(t)
	quote := f.create(t, entity.KindQuotation, lifecycle.ActionSave)

	cases := []string{"accept", "teleport", "duplicate", "archive"}
	for _, a := range cases {
		_, err := f.uc.Transition(f.ctx, company, entity.KindQuotation, quote.ID, a)
		assert.ErrorIs(t, err, domain.ErrActionNotAllowed, a)
	}
	_, err := f.uc.Transition(f.ctx, company, entity.KindInvoice, quote.ID, "validate")
	assert.ErrorIs(t, err, domain.ErrNotFound, "el id pertenece a otro tipo")
}

func TestDuplicate(t *testing.T) {
	f := newFixture(t)
	quote := f.create(t, entity.KindQuotation, lifecycle.ActionValidate)
	f.transition(t, entity.KindQuotation, quote.ID, "send", "reject")

	withItems, err := f.uc.Duplicate(f.ctx, company, entity.KindQuotation, quote.ID, true)
	require.NoError(t, err)
	assert.Equal(t, "draft", withItems.Status)
	assert.Equal(t, "COT-2026-0002", withItems.SequentialNumber)
	assert.Equal(t, quote.Object, withItems.Object)
	require.Len(t, withItems.Items, 1)
	assert.True(t, withItems.Total.Equal(quote.Total))

	blank, err := f.uc.Duplicate(f.ctx, company, entity.KindQuotation, quote.ID, false)
	require.NoError(t, err)
	require.Len(t, blank.Items, 1)
	assert.True(t, blank.Items[0].Quantity.Equal(dec("1")))
	assert.True(t, blank.Total.IsZero())
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	draft := f.create(t, entity.KindInvoice, lifecycle.ActionSave)
	sent := f.create(t, entity.KindInvoice, lifecycle.ActionValidate)
	f.transition(t, entity.KindInvoice, sent.ID, "send")

	assert.ErrorIs(t, f.uc.Delete(f.ctx, company, entity.KindInvoice, sent.ID), domain.ErrActionNotAllowed)

	require.NoError(t, f.uc.Delete(f.ctx, company, entity.KindInvoice, draft.ID))
	_, err := f.uc.Get(f.ctx, company, entity.KindInvoice, draft.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGet_OtraEmpresa(t *testing.T) {
	f := newFixture(t)
	doc := f.create(t, entity.KindQuotation, lifecycle.ActionSave)
	_, err := f.uc.Get(f.ctx, "otra", entity.KindQuotation, doc.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestList_FiltrosYJoins(t *testing.T) {
	f := newFixture(t)
	f.create(t, entity.KindQuotation, lifecycle.ActionValidate)
	f.create(t, entity.KindQuotation, lifecycle.ActionValidate)
	f.create(t, entity.KindQuotation, lifecycle.ActionSave)
	f.create(t, entity.KindInvoice, lifecycle.ActionValidate)

	out, err := f.uc.List(f.ctx, company, entity.KindQuotation, query.Params{Filters: []string{"status||$eq||validated"}})
	require.NoError(t, err)
	assert.Len(t, out.Data, 2)
	assert.Equal(t, 2, out.Meta.ItemCount)
	assert.Empty(t, out.Data[0].Items, "sin join=items no se cargan líneas")

	out, err = f.uc.List(f.ctx, company, entity.KindQuotation, query.Params{
		Limit: 2, Sort: "sequential_number,ASC", Join: "items,currency",
	})
	require.NoError(t, err)
	require.Len(t, out.Data, 2)
	assert.Equal(t, "COT-2026-0001", out.Data[0].SequentialNumber)
	assert.NotEmpty(t, out.Data[0].Items)
	require.NotNil(t, out.Data[0].Currency)
	assert.Equal(t, int32(2), out.Data[0].Currency.Precision)
	assert.Equal(t, 2, out.Meta.PageCount)
	assert.True(t, out.Meta.HasNextPage)

	_, err = f.uc.List(f.ctx, company, entity.KindQuotation, query.Params{Filters: []string{"status||like||x"}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestActions_DocumentoAlmacenado(t *testing.T) {
	f := newFixture(t)
	inv := f.create(t, entity.KindInvoice, lifecycle.ActionValidate)

	views, err := f.uc.Actions(f.ctx, company, entity.KindInvoice, inv.ID)
	require.NoError(t, err)
	visible := []string{}
	for _, v := range views {
		if v.Visible {
			visible = append(visible, v.Key)
		}
	}
	assert.ElementsMatch(t, []string{"send", "duplicate", "delete", "download"}, visible)
}

func TestPreview(t *testing.T) {
	f := newFixture(t)
	totals, err := f.uc.Preview(f.ctx, company, dto.PreviewRequest{
		CurrencyID: "TND",
		Items: []dto.LineItemRequest{{
			Quantity: dec("3"), UnitPrice: dec("10.125"), TaxIDs: []string{"timbre"},
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, int32(3), totals.Precision)
	assert.Equal(t, "30.375", totals.Subtotal.StringFixed(3))
	assert.Equal(t, "31.375", totals.Total.StringFixed(3), "el timbre fijo no se multiplica por la cantidad")
}
