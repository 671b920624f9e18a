package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Documentos-api/internal/domain"
	"github.com/jhoicas/Documentos-api/internal/domain/entity"
	"github.com/jhoicas/Documentos-api/internal/domain/repository"
	"github.com/jhoicas/Documentos-api/pkg/query"
)

var _ repository.DocumentRepository = (*DocumentRepo)(nil)

const documentSelect = `
	SELECT d.id, d.company_id, d.kind, d.firm_id, d.sequential_number, d.status, d.currency_id,
	       d.object, d.general_conditions, d.notes, d.date, d.due_date, d.quotation_id,
	       d.subtotal, d.tax_total, d.total, d.version, d.created_at, d.updated_at,
	       c.id, c.code, c.symbol, c.digits
	FROM documents d
	LEFT JOIN currencies c ON c.id = d.currency_id`

// DocumentRepo implementación de DocumentRepository (usable con pool o tx).
type DocumentRepo struct {
	q Querier
}

// NewDocumentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewDocumentRepository(q Querier) *DocumentRepo {
	return &DocumentRepo{q: q}
}

// Create persiste cabecera, líneas e impuestos. Debe llamarse dentro de una tx.
func (r *DocumentRepo) Create(ctx context.Context, doc *entity.Document) error {
	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	doc.Version = 1
	doc.CreatedAt, doc.UpdatedAt = now, now

	query := `
		INSERT INTO documents (id, company_id, kind, firm_id, sequential_number, status, currency_id,
		                       object, general_conditions, notes, date, due_date, quotation_id,
		                       subtotal, tax_total, total, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`
	_, err := r.q.Exec(ctx, query,
		doc.ID, doc.CompanyID, string(doc.Kind), nullIfEmpty(doc.FirmID), doc.SequentialNumber, doc.Status, nullIfEmpty(doc.CurrencyID),
		doc.Object, doc.GeneralConditions, doc.Notes, doc.Date, doc.DueDate, nullIfEmpty(doc.QuotationID),
		doc.Subtotal, doc.TaxTotal, doc.Total, doc.Version, doc.CreatedAt, doc.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("número %s ya asignado: %w", doc.SequentialNumber, domain.ErrConflict)
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("insert document: %w", domain.ErrInvalidInput)
		}
		return fmt.Errorf("insert document: %w", err)
	}
	return r.insertItems(ctx, doc)
}

// GetByID obtiene el documento con moneda, líneas e impuestos.
func (r *DocumentRepo) GetByID(ctx context.Context, companyID, id string) (*entity.Document, error) {
	row := r.q.QueryRow(ctx, documentSelect+` WHERE d.company_id = $1 AND d.id = $2`, companyID, id)
	doc, err := scanDocument(row, true)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get document: %w", err)
	}
	if err := r.loadItems(ctx, []*entity.Document{doc}); err != nil {
		return nil, err
	}
	return doc, nil
}

// List aplica filtros, orden y paginación en SQL; las líneas solo se cargan con join=items.
func (r *DocumentRepo) List(ctx context.Context, companyID string, kind entity.DocumentKind, q query.Query) ([]*entity.Document, int, error) {
	b := buildDocumentList(companyID, kind, q)

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM documents d WHERE `+b.where, b.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count documents: %w", err)
	}

	args := append(b.args, q.Limit, q.Offset())
	sql := fmt.Sprintf("%s WHERE %s ORDER BY %s LIMIT $%d OFFSET $%d",
		documentSelect, b.where, b.order, len(args)-1, len(args))
	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	list := make([]*entity.Document, 0, q.Limit)
	withCurrency := q.HasJoin("currency")
	for rows.Next() {
		doc, err := scanDocument(rows, withCurrency)
		if err != nil {
			return nil, 0, fmt.Errorf("scan document: %w", err)
		}
		list = append(list, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if q.HasJoin("items") {
		if err := r.loadItems(ctx, list); err != nil {
			return nil, 0, err
		}
	}
	return list, total, nil
}

// Update reemplaza cabecera y líneas con control de versión optimista.
func (r *DocumentRepo) Update(ctx context.Context, doc *entity.Document, expectedVersion int) error {
	query := `
		UPDATE documents
		SET firm_id = $4, status = $5, currency_id = $6, object = $7, general_conditions = $8, notes = $9,
		    date = $10, due_date = $11, subtotal = $12, tax_total = $13, total = $14,
		    version = version + 1, updated_at = $15
		WHERE company_id = $1 AND id = $2 AND version = $3
		RETURNING sequential_number, created_at, version`
	now := time.Now().UTC()
	err := r.q.QueryRow(ctx, query,
		doc.CompanyID, doc.ID, expectedVersion,
		nullIfEmpty(doc.FirmID), doc.Status, nullIfEmpty(doc.CurrencyID), doc.Object, doc.GeneralConditions, doc.Notes,
		doc.Date, doc.DueDate, doc.Subtotal, doc.TaxTotal, doc.Total, now,
	).Scan(&doc.SequentialNumber, &doc.CreatedAt, &doc.Version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return r.missOrConflict(ctx, doc)
		}
		return fmt.Errorf("update document: %w", err)
	}
	doc.UpdatedAt = now

	if _, err := r.q.Exec(ctx, `DELETE FROM document_items WHERE document_id = $1`, doc.ID); err != nil {
		return fmt.Errorf("delete document items: %w", err)
	}
	return r.insertItems(ctx, doc)
}

// UpdateStatus cambia solo el estado.
func (r *DocumentRepo) UpdateStatus(ctx context.Context, doc *entity.Document, expectedVersion int) error {
	query := `
		UPDATE documents SET status = $4, version = version + 1, updated_at = $5
		WHERE company_id = $1 AND id = $2 AND version = $3
		RETURNING version`
	now := time.Now().UTC()
	err := r.q.QueryRow(ctx, query, doc.CompanyID, doc.ID, expectedVersion, doc.Status, now).Scan(&doc.Version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return r.missOrConflict(ctx, doc)
		}
		return fmt.Errorf("update document status: %w", err)
	}
	doc.UpdatedAt = now
	return nil
}

// Delete elimina el documento; líneas e impuestos caen en cascada.
func (r *DocumentRepo) Delete(ctx context.Context, companyID, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM documents WHERE company_id = $1 AND id = $2`, companyID, id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *DocumentRepo) missOrConflict(ctx context.Context, doc *entity.Document) error {
	var exists bool
	err := r.q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM documents WHERE company_id = $1 AND id = $2)`, doc.CompanyID, doc.ID,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check document: %w", err)
	}
	if !exists {
		return domain.ErrNotFound
	}
	return domain.ErrConflict
}

func (r *DocumentRepo) insertItems(ctx context.Context, doc *entity.Document) error {
	for i := range doc.Items {
		it := &doc.Items[i]
		if it.ID == "" {
			it.ID = uuid.New().String()
		}
		it.DocumentID = doc.ID
		it.Position = i
		_, err := r.q.Exec(ctx, `
			INSERT INTO document_items (id, document_id, position, article_id, title, description,
			                            quantity, unit_price, discount, discount_type, subtotal, total)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			it.ID, it.DocumentID, it.Position, nullIfEmpty(it.ArticleID), it.Title, it.Description,
			it.Quantity, it.UnitPrice, it.Discount, string(it.DiscountType), it.Subtotal, it.Total,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("línea %s repetida: %w", it.ID, domain.ErrConflict)
			}
			return fmt.Errorf("insert document item: %w", err)
		}
		for j := range it.Taxes {
			t := &it.Taxes[j]
			if t.ID == "" {
				t.ID = uuid.New().String()
			}
			t.LineItemID = it.ID
			_, err := r.q.Exec(ctx, `
				INSERT INTO document_item_taxes (id, line_item_id, position, tax_id, label, is_rate, value)
				VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				t.ID, t.LineItemID, j, t.TaxID, t.Label, t.IsRate, t.Value,
			)
			if err != nil {
				if isUniqueViolation(err) {
					return domain.ErrDuplicateTax
				}
				return fmt.Errorf("insert item tax: %w", err)
			}
		}
	}
	return nil
}

// loadItems carga en bloque las líneas e impuestos de los documentos dados.
func (r *DocumentRepo) loadItems(ctx context.Context, docs []*entity.Document) error {
	if len(docs) == 0 {
		return nil
	}
	ids := make([]string, len(docs))
	byID := make(map[string]*entity.Document, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
		byID[d.ID] = d
		d.Items = []entity.LineItem{}
	}

	taxes, err := r.loadTaxes(ctx, ids)
	if err != nil {
		return err
	}

	rows, err := r.q.Query(ctx, `
		SELECT id, document_id, position, article_id, title, description,
		       quantity, unit_price, discount, discount_type, subtotal, total
		FROM document_items WHERE document_id = ANY($1)
		ORDER BY document_id, position`, ids)
	if err != nil {
		return fmt.Errorf("list document items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it entity.LineItem
		var articleID *string
		var discountType string
		if err := rows.Scan(&it.ID, &it.DocumentID, &it.Position, &articleID, &it.Title, &it.Description,
			&it.Quantity, &it.UnitPrice, &it.Discount, &discountType, &it.Subtotal, &it.Total); err != nil {
			return fmt.Errorf("scan document item: %w", err)
		}
		it.ArticleID = derefStr(articleID)
		it.DiscountType = entity.DiscountType(discountType)
		it.Taxes = taxes[it.ID]
		if d := byID[it.DocumentID]; d != nil {
			d.Items = append(d.Items, it)
		}
	}
	return rows.Err()
}

func (r *DocumentRepo) loadTaxes(ctx context.Context, documentIDs []string) (map[string][]entity.TaxEntry, error) {
	rows, err := r.q.Query(ctx, `
		SELECT t.id, t.line_item_id, t.tax_id, t.label, t.is_rate, t.value
		FROM document_item_taxes t
		JOIN document_items i ON i.id = t.line_item_id
		WHERE i.document_id = ANY($1)
		ORDER BY t.line_item_id, t.position`, documentIDs)
	if err != nil {
		return nil, fmt.Errorf("list item taxes: %w", err)
	}
	defer rows.Close()
	out := make(map[string][]entity.TaxEntry)
	for rows.Next() {
		var t entity.TaxEntry
		if err := rows.Scan(&t.ID, &t.LineItemID, &t.TaxID, &t.Label, &t.IsRate, &t.Value); err != nil {
			return nil, fmt.Errorf("scan item tax: %w", err)
		}
		out[t.LineItemID] = append(out[t.LineItemID], t)
	}
	return out, rows.Err()
}

func scanDocument(row pgx.Row, withCurrency bool) (*entity.Document, error) {
	var d entity.Document
	var kind string
	var firmID, currencyID, quotationID *string
	var curID, curCode, curSymbol *string
	var curDigits *int
	err := row.Scan(
		&d.ID, &d.CompanyID, &kind, &firmID, &d.SequentialNumber, &d.Status, &currencyID,
		&d.Object, &d.GeneralConditions, &d.Notes, &d.Date, &d.DueDate, &quotationID,
		&d.Subtotal, &d.TaxTotal, &d.Total, &d.Version, &d.CreatedAt, &d.UpdatedAt,
		&curID, &curCode, &curSymbol, &curDigits,
	)
	if err != nil {
		return nil, err
	}
	d.Kind = entity.DocumentKind(kind)
	d.FirmID = derefStr(firmID)
	d.CurrencyID = derefStr(currencyID)
	d.QuotationID = derefStr(quotationID)
	if withCurrency && curID != nil {
		d.Currency = &entity.Currency{ID: *curID, Code: derefStr(curCode), Symbol: derefStr(curSymbol), Digits: curDigits}
	}
	return &d, nil
}
