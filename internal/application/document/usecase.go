// Package document contiene los casos de uso del servidor para cotizaciones y
// facturas: alta con numeración, edición versionada, transiciones de estado
// controladas por la política de ciclo de vida, duplicado, borrado y PDF.
package document

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Documentos-api/internal/application/dto"
	"github.com/jhoicas/Documentos-api/internal/domain"
	"github.com/jhoicas/Documentos-api/internal/domain/entity"
	"github.com/jhoicas/Documentos-api/internal/domain/lifecycle"
	"github.com/jhoicas/Documentos-api/internal/domain/pricing"
	"github.com/jhoicas/Documentos-api/internal/domain/repository"
	"github.com/jhoicas/Documentos-api/pkg/logger"
	"github.com/jhoicas/Documentos-api/pkg/query"
	"github.com/jhoicas/Documentos-api/pkg/sequence"
)

// UseCase casos de uso de documentos comerciales.
type UseCase struct {
	txRunner   TxRunner
	docs       repository.DocumentRepository
	currencies repository.CurrencyRepository
	taxes      repository.TaxRepository
	articles   repository.ArticleRepository
	firms      repository.FirmRepository
	publisher  Publisher
	log        *logger.Logger
	precision  int32
	now        func() time.Time
}

// NewUseCase construye el caso de uso. precision es la que se usa cuando el
// documento no tiene moneda; publisher y log pueden ser nil.
func NewUseCase(
	txRunner TxRunner,
	docs repository.DocumentRepository,
	currencies repository.CurrencyRepository,
	taxes repository.TaxRepository,
	articles repository.ArticleRepository,
	firms repository.FirmRepository,
	publisher Publisher,
	log *logger.Logger,
	precision int32,
) *UseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &UseCase{
		txRunner:   txRunner,
		docs:       docs,
		currencies: currencies,
		taxes:      taxes,
		articles:   articles,
		firms:      firms,
		publisher:  publisher,
		log:        log.Component("documents"),
		precision:  precision,
		now:        time.Now,
	}
}

// WithClock reemplaza el reloj (tests).
func (uc *UseCase) WithClock(now func() time.Time) *UseCase {
	uc.now = now
	return uc
}

// Create da de alta un documento con save, draft o validate. El número secuencial se
// asigna dentro de la transacción y el nuevo "próximo número" se difunde a la sala del tipo.
func (uc *UseCase) Create(ctx context.Context, companyID string, kind entity.DocumentKind, in dto.DocumentRequest, action lifecycle.Action) (*dto.DocumentResponse, error) {
	policy, err := policyFor(kind)
	if err != nil {
		return nil, err
	}
	switch action {
	case lifecycle.ActionSave, lifecycle.ActionDraft, lifecycle.ActionValidate:
	default:
		return nil, domain.ErrActionNotAllowed
	}
	if !policy.Visible(action, "") {
		return nil, domain.ErrActionNotAllowed
	}

	doc, err := uc.buildDocument(ctx, companyID, kind, in)
	if err != nil {
		return nil, err
	}
	doc.Status = initialStatus(policy, action)
	for i := range doc.Items {
		doc.Items[i].ID = ""
	}

	var seq *entity.Sequence
	err = uc.txRunner.RunDocuments(ctx, func(docs repository.DocumentRepository, seqs repository.SequenceRepository) error {
		var err error
		seq, err = uc.assignNumber(ctx, seqs, doc)
		if err != nil {
			return err
		}
		return docs.Create(ctx, doc)
	})
	if err != nil {
		return nil, err
	}
	publishSequence(uc.publisher, seq, uc.now())
	uc.log.Info().Str("kind", string(kind)).Str("id", doc.ID).Str("number", doc.SequentialNumber).Str("status", doc.Status).Msg("documento creado")

	resp := dto.ToDocumentResponse(doc)
	return &resp, nil
}

// Update reemplaza cabecera y líneas de un documento editable. in.Version debe ser
// la versión almacenada; si otro cliente guardó antes, domain.ErrConflict.
func (uc *UseCase) Update(ctx context.Context, companyID string, kind entity.DocumentKind, id string, in dto.DocumentRequest) (*dto.DocumentResponse, error) {
	policy, err := policyFor(kind)
	if err != nil {
		return nil, err
	}
	existing, err := uc.load(ctx, companyID, kind, id)
	if err != nil {
		return nil, err
	}
	if !policy.Visible(lifecycle.ActionSave, existing.Status) {
		return nil, domain.ErrActionNotAllowed
	}
	if in.Version != existing.Version {
		return nil, domain.ErrConflict
	}

	doc, err := uc.buildDocument(ctx, companyID, kind, in)
	if err != nil {
		return nil, err
	}
	doc.ID = existing.ID
	doc.SequentialNumber = existing.SequentialNumber
	doc.Status = existing.Status
	doc.QuotationID = existing.QuotationID
	doc.CreatedAt = existing.CreatedAt
	keepKnownItemIDs(doc, existing)

	// Cabecera, borrado e inserción de líneas van juntos: un fallo no deja el documento sin líneas.
	err = uc.txRunner.RunDocuments(ctx, func(docs repository.DocumentRepository, _ repository.SequenceRepository) error {
		return docs.Update(ctx, doc, in.Version)
	})
	if err != nil {
		return nil, err
	}
	resp := dto.ToDocumentResponse(doc)
	return &resp, nil
}

// Get devuelve el documento con líneas y moneda.
func (uc *UseCase) Get(ctx context.Context, companyID string, kind entity.DocumentKind, id string) (*dto.DocumentResponse, error) {
	doc, err := uc.load(ctx, companyID, kind, id)
	if err != nil {
		return nil, err
	}
	resp := dto.ToDocumentResponse(doc)
	return &resp, nil
}

// List lista documentos del tipo con paginación, orden, filtros y joins.
func (uc *UseCase) List(ctx context.Context, companyID string, kind entity.DocumentKind, params query.Params) (*dto.ListResponse[dto.DocumentResponse], error) {
	if !kind.Valid() {
		return nil, domain.ErrNotFound
	}
	q, err := query.Parse(params, repository.DocumentFilterFields, repository.DocumentJoins)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	docs, total, err := uc.docs.List(ctx, companyID, kind, q)
	if err != nil {
		return nil, fmt.Errorf("listar documentos: %w", err)
	}
	out := &dto.ListResponse[dto.DocumentResponse]{
		Data: make([]dto.DocumentResponse, 0, len(docs)),
		Meta: query.NewMeta(q, total),
	}
	for _, d := range docs {
		out.Data = append(out.Data, dto.ToDocumentResponse(d))
	}
	return out, nil
}

// Transition aplica una acción que mueve el estado (validate, send, accept, reject,
// invoice, pay). La acción invoice además genera la factura vinculada.
func (uc *UseCase) Transition(ctx context.Context, companyID string, kind entity.DocumentKind, id, actionKey string) (*dto.TransitionResponse, error) {
	policy, err := policyFor(kind)
	if err != nil {
		return nil, err
	}
	action, ok := lifecycle.ParseAction(actionKey)
	if !ok {
		return nil, domain.ErrActionNotAllowed
	}
	target, ok := policy.Target(action)
	if !ok {
		return nil, domain.ErrActionNotAllowed
	}
	doc, err := uc.load(ctx, companyID, kind, id)
	if err != nil {
		return nil, err
	}
	if !policy.Visible(action, doc.Status) {
		return nil, fmt.Errorf("%w: %s en estado %q", domain.ErrActionNotAllowed, action, doc.Status)
	}
	if action == lifecycle.ActionValidate && len(doc.Items) == 0 {
		return nil, fmt.Errorf("%w: el documento no tiene líneas", domain.ErrInvalidInput)
	}

	var created *entity.Document
	var seq *entity.Sequence
	expected := doc.Version
	doc.Status = target

	err = uc.txRunner.RunDocuments(ctx, func(docs repository.DocumentRepository, seqs repository.SequenceRepository) error {
		if action == lifecycle.ActionInvoice {
			invoice, err := uc.invoiceFrom(doc)
			if err != nil {
				return err
			}
			if seq, err = uc.assignNumber(ctx, seqs, invoice); err != nil {
				return err
			}
			if err := docs.Create(ctx, invoice); err != nil {
				return err
			}
			created = invoice
		}
		return docs.UpdateStatus(ctx, doc, expected)
	})
	if err != nil {
		return nil, err
	}
	if seq != nil {
		publishSequence(uc.publisher, seq, uc.now())
	}
	uc.log.Info().Str("kind", string(kind)).Str("id", doc.ID).Str("action", action.String()).Str("status", doc.Status).Msg("transición aplicada")

	resp := &dto.TransitionResponse{Document: dto.ToDocumentResponse(doc)}
	if created != nil {
		c := dto.ToDocumentResponse(created)
		resp.Created = &c
	}
	return resp, nil
}

// Duplicate crea un borrador nuevo (nuevo número) a partir de un documento existente.
// Sin includeItems el duplicado arranca con una línea vacía.
func (uc *UseCase) Duplicate(ctx context.Context, companyID string, kind entity.DocumentKind, id string, includeItems bool) (*dto.DocumentResponse, error) {
	policy, err := policyFor(kind)
	if err != nil {
		return nil, err
	}
	src, err := uc.load(ctx, companyID, kind, id)
	if err != nil {
		return nil, err
	}
	if !policy.Visible(lifecycle.ActionDuplicate, src.Status) {
		return nil, domain.ErrActionNotAllowed
	}

	doc := copyHeader(src, kind, uc.today())
	doc.Status = initialStatus(policy, lifecycle.ActionDraft)
	if includeItems {
		doc.Items = copyItems(src.Items)
	} else {
		doc.Items = []entity.LineItem{BlankLine()}
	}
	pricing.Apply(doc, pricing.ComputeAt(doc.Items, pricing.PrecisionOr(src.Currency, uc.precision)))

	var seq *entity.Sequence
	err = uc.txRunner.RunDocuments(ctx, func(docs repository.DocumentRepository, seqs repository.SequenceRepository) error {
		var err error
		if seq, err = uc.assignNumber(ctx, seqs, doc); err != nil {
			return err
		}
		return docs.Create(ctx, doc)
	})
	if err != nil {
		return nil, err
	}
	publishSequence(uc.publisher, seq, uc.now())

	resp := dto.ToDocumentResponse(doc)
	return &resp, nil
}

// Delete borra el documento si la política lo permite en su estado.
func (uc *UseCase) Delete(ctx context.Context, companyID string, kind entity.DocumentKind, id string) error {
	policy, err := policyFor(kind)
	if err != nil {
		return err
	}
	doc, err := uc.load(ctx, companyID, kind, id)
	if err != nil {
		return err
	}
	if !policy.Visible(lifecycle.ActionDelete, doc.Status) {
		return domain.ErrActionNotAllowed
	}
	return uc.txRunner.RunDocuments(ctx, func(docs repository.DocumentRepository, _ repository.SequenceRepository) error {
		return docs.Delete(ctx, companyID, id)
	})
}

// Actions decisión de render de todas las acciones para el documento almacenado.
func (uc *UseCase) Actions(ctx context.Context, companyID string, kind entity.DocumentKind, id string) ([]lifecycle.ActionView, error) {
	policy, err := policyFor(kind)
	if err != nil {
		return nil, err
	}
	doc, err := uc.load(ctx, companyID, kind, id)
	if err != nil {
		return nil, err
	}
	return policy.Render(doc.Status), nil
}

// Preview calcula los totales de unas líneas sin persistir nada.
func (uc *UseCase) Preview(ctx context.Context, companyID string, in dto.PreviewRequest) (*pricing.Totals, error) {
	cur, err := uc.currency(ctx, in.CurrencyID)
	if err != nil {
		return nil, err
	}
	items, err := uc.buildItems(ctx, companyID, in.Items)
	if err != nil {
		return nil, err
	}
	totals := pricing.ComputeAt(items, pricing.PrecisionOr(cur, uc.precision))
	return &totals, nil
}

func (uc *UseCase) load(ctx context.Context, companyID string, kind entity.DocumentKind, id string) (*entity.Document, error) {
	doc, err := uc.docs.GetByID(ctx, companyID, id)
	if err != nil {
		return nil, fmt.Errorf("obtener documento: %w", err)
	}
	if doc == nil || doc.Kind != kind {
		return nil, domain.ErrNotFound
	}
	return doc, nil
}

// buildDocument valida la entrada, resuelve referencias y calcula totales.
func (uc *UseCase) buildDocument(ctx context.Context, companyID string, kind entity.DocumentKind, in dto.DocumentRequest) (*entity.Document, error) {
	if len(in.Items) == 0 {
		return nil, fmt.Errorf("%w: el documento necesita al menos una línea", domain.ErrInvalidInput)
	}
	cur, err := uc.currency(ctx, in.CurrencyID)
	if err != nil {
		return nil, err
	}
	if in.FirmID != "" && uc.firms != nil {
		firm, err := uc.firms.GetByID(ctx, companyID, in.FirmID)
		if err != nil {
			return nil, fmt.Errorf("obtener contraparte: %w", err)
		}
		if firm == nil {
			return nil, fmt.Errorf("%w: contraparte %s", domain.ErrNotFound, in.FirmID)
		}
	}
	date := uc.today()
	if in.Date != "" {
		if date, err = time.Parse(time.DateOnly, in.Date); err != nil {
			return nil, fmt.Errorf("%w: date", domain.ErrInvalidInput)
		}
	}
	var due *time.Time
	if in.DueDate != "" {
		d, err := time.Parse(time.DateOnly, in.DueDate)
		if err != nil {
			return nil, fmt.Errorf("%w: due_date", domain.ErrInvalidInput)
		}
		if d.Before(date) {
			return nil, fmt.Errorf("%w: due_date anterior a date", domain.ErrInvalidInput)
		}
		due = &d
	}

	items, err := uc.buildItems(ctx, companyID, in.Items)
	if err != nil {
		return nil, err
	}
	doc := &entity.Document{
		CompanyID:         companyID,
		Kind:              kind,
		FirmID:            in.FirmID,
		CurrencyID:        in.CurrencyID,
		Currency:          cur,
		Object:            strings.TrimSpace(in.Object),
		GeneralConditions: in.GeneralConditions,
		Notes:             in.Notes,
		Date:              date,
		DueDate:           due,
		Items:             items,
	}
	pricing.Apply(doc, pricing.ComputeAt(items, pricing.PrecisionOr(cur, uc.precision)))
	return doc, nil
}

// buildItems convierte las líneas de entrada: precio por defecto del artículo,
// impuestos copiados de su definición vigente y validación numérica.
func (uc *UseCase) buildItems(ctx context.Context, companyID string, in []dto.LineItemRequest) ([]entity.LineItem, error) {
	items := make([]entity.LineItem, 0, len(in))
	for i, r := range in {
		line := entity.LineItem{
			ID:           r.ID,
			Position:     i,
			ArticleID:    r.ArticleID,
			Title:        strings.TrimSpace(r.Title),
			Description:  r.Description,
			Quantity:     r.Quantity,
			UnitPrice:    r.UnitPrice,
			Discount:     r.Discount,
			DiscountType: r.DiscountType,
		}
		if line.DiscountType == "" {
			line.DiscountType = entity.DiscountPercentage
		}
		if r.ArticleID != "" && uc.articles != nil {
			art, err := uc.articles.GetByID(ctx, companyID, r.ArticleID)
			if err != nil {
				return nil, fmt.Errorf("obtener artículo: %w", err)
			}
			if art == nil {
				return nil, fmt.Errorf("%w: artículo %s", domain.ErrNotFound, r.ArticleID)
			}
			if line.UnitPrice.IsZero() {
				line.UnitPrice = art.UnitPrice
			}
			if line.Title == "" {
				line.Title = art.Title
			}
			if line.Description == "" {
				line.Description = art.Description
			}
		}
		for _, taxID := range r.TaxIDs {
			tax, err := uc.taxes.GetByID(ctx, taxID)
			if err != nil {
				return nil, fmt.Errorf("obtener impuesto: %w", err)
			}
			if tax == nil {
				return nil, fmt.Errorf("%w: impuesto %s", domain.ErrInvalidInput, taxID)
			}
			line.Taxes = append(line.Taxes, tax.Entry())
		}
		if err := pricing.ValidateLine(line); err != nil {
			return nil, fmt.Errorf("línea %d: %w", i+1, err)
		}
		items = append(items, line)
	}
	return items, nil
}

func (uc *UseCase) currency(ctx context.Context, id string) (*entity.Currency, error) {
	if id == "" {
		return nil, nil
	}
	cur, err := uc.currencies.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("obtener moneda: %w", err)
	}
	if cur == nil {
		return nil, fmt.Errorf("%w: moneda %s", domain.ErrInvalidInput, id)
	}
	return cur, nil
}

// assignNumber toma la secuencia bloqueada, numera el documento y avanza el contador.
func (uc *UseCase) assignNumber(ctx context.Context, seqs repository.SequenceRepository, doc *entity.Document) (*entity.Sequence, error) {
	seq, err := seqs.GetForUpdate(ctx, doc.CompanyID, doc.Kind)
	if err != nil {
		return nil, fmt.Errorf("obtener secuencia: %w", err)
	}
	if seq == nil {
		seq = DefaultSequence(doc.CompanyID, doc.Kind)
	}
	doc.SequentialNumber = sequence.Format(seq.Sequential, uc.now())
	seq.Next++
	if err := seqs.Save(ctx, seq); err != nil {
		return nil, fmt.Errorf("avanzar secuencia: %w", err)
	}
	return seq, nil
}

// invoiceFrom arma la factura que genera una cotización aceptada (o validada, en gastos).
func (uc *UseCase) invoiceFrom(quote *entity.Document) (*entity.Document, error) {
	kind, ok := quote.Kind.InvoiceKind()
	if !ok {
		return nil, domain.ErrActionNotAllowed
	}
	policy, err := policyFor(kind)
	if err != nil {
		return nil, err
	}
	inv := copyHeader(quote, kind, uc.today())
	inv.Status = initialStatus(policy, lifecycle.ActionDraft)
	inv.QuotationID = quote.ID
	inv.GeneralConditions = quote.GeneralConditions
	inv.Items = copyItems(quote.Items)
	pricing.Apply(inv, pricing.ComputeAt(inv.Items, pricing.PrecisionOr(quote.Currency, uc.precision)))
	return inv, nil
}

func (uc *UseCase) today() time.Time {
	y, m, d := uc.now().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func policyFor(kind entity.DocumentKind) (lifecycle.KindPolicy, error) {
	p, ok := lifecycle.ForKind(kind)
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

// initialStatus estado con el que nace un documento: el destino de la acción o, para
// save, el de draft.
func initialStatus(p lifecycle.KindPolicy, action lifecycle.Action) string {
	if target, ok := p.Target(action); ok {
		return target
	}
	target, _ := p.Target(lifecycle.ActionDraft)
	return target
}

func copyHeader(src *entity.Document, kind entity.DocumentKind, date time.Time) *entity.Document {
	return &entity.Document{
		CompanyID:         src.CompanyID,
		Kind:              kind,
		FirmID:            src.FirmID,
		CurrencyID:        src.CurrencyID,
		Currency:          src.Currency,
		Object:            src.Object,
		GeneralConditions: src.GeneralConditions,
		Notes:             src.Notes,
		Date:              date,
	}
}

// copyItems copia líneas e impuestos sin sus ids para que el repositorio asigne nuevos.
func copyItems(src []entity.LineItem) []entity.LineItem {
	out := make([]entity.LineItem, len(src))
	for i, it := range src {
		it.ID, it.DocumentID = "", ""
		taxes := make([]entity.TaxEntry, len(it.Taxes))
		for j, t := range it.Taxes {
			t.ID, t.LineItemID = "", ""
			taxes[j] = t
		}
		it.Taxes = taxes
		out[i] = it
	}
	return out
}

// keepKnownItemIDs conserva los ids de líneas que ya existían; los demás (temporales
// del cliente) se descartan.
func keepKnownItemIDs(doc, existing *entity.Document) {
	known := make(map[string]bool, len(existing.Items))
	for _, it := range existing.Items {
		known[it.ID] = true
	}
	for i := range doc.Items {
		if !known[doc.Items[i].ID] {
			doc.Items[i].ID = ""
		}
	}
}

// BlankLine línea vacía con la que arranca un documento: cantidad 1, sin precio ni impuestos.
func BlankLine() entity.LineItem {
	return entity.LineItem{
		Quantity:     decimal.NewFromInt(1),
		UnitPrice:    decimal.Zero,
		Discount:     decimal.Zero,
		DiscountType: entity.DiscountPercentage,
	}
}
