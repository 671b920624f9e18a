package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Documentos-api/internal/domain/entity"
	"github.com/jhoicas/Documentos-api/internal/domain/repository"
)

var (
	_ repository.CurrencyRepository = (*CurrencyRepo)(nil)
	_ repository.TaxRepository      = (*TaxRepo)(nil)
	_ repository.ArticleRepository  = (*ArticleRepo)(nil)
)

// CurrencyRepo monedas de referencia.
type CurrencyRepo struct {
	q Querier
}

func NewCurrencyRepository(q Querier) *CurrencyRepo {
	return &CurrencyRepo{q: q}
}

func (r *CurrencyRepo) List(ctx context.Context) ([]*entity.Currency, error) {
	rows, err := r.q.Query(ctx, `SELECT id, code, symbol, digits FROM currencies ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("list currencies: %w", err)
	}
	defer rows.Close()
	var list []*entity.Currency
	for rows.Next() {
		var c entity.Currency
		if err := rows.Scan(&c.ID, &c.Code, &c.Symbol, &c.Digits); err != nil {
			return nil, fmt.Errorf("scan currency: %w", err)
		}
		list = append(list, &c)
	}
	return list, rows.Err()
}

func (r *CurrencyRepo) GetByID(ctx context.Context, id string) (*entity.Currency, error) {
	var c entity.Currency
	err := r.q.QueryRow(ctx, `SELECT id, code, symbol, digits FROM currencies WHERE id = $1`, id).
		Scan(&c.ID, &c.Code, &c.Symbol, &c.Digits)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get currency: %w", err)
	}
	return &c, nil
}

// TaxRepo definiciones de impuestos.
type TaxRepo struct {
	q Querier
}

func NewTaxRepository(q Querier) *TaxRepo {
	return &TaxRepo{q: q}
}

func (r *TaxRepo) List(ctx context.Context) ([]*entity.Tax, error) {
	rows, err := r.q.Query(ctx, `SELECT id, label, is_rate, value FROM taxes ORDER BY label`)
	if err != nil {
		return nil, fmt.Errorf("list taxes: %w", err)
	}
	defer rows.Close()
	var list []*entity.Tax
	for rows.Next() {
		var t entity.Tax
		if err := rows.Scan(&t.ID, &t.Label, &t.IsRate, &t.Value); err != nil {
			return nil, fmt.Errorf("scan tax: %w", err)
		}
		list = append(list, &t)
	}
	return list, rows.Err()
}

func (r *TaxRepo) GetByID(ctx context.Context, id string) (*entity.Tax, error) {
	var t entity.Tax
	err := r.q.QueryRow(ctx, `SELECT id, label, is_rate, value FROM taxes WHERE id = $1`, id).
		Scan(&t.ID, &t.Label, &t.IsRate, &t.Value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get tax: %w", err)
	}
	return &t, nil
}

// ArticleRepo catálogo de artículos por empresa.
type ArticleRepo struct {
	q Querier
}

func NewArticleRepository(q Querier) *ArticleRepo {
	return &ArticleRepo{q: q}
}

// ListByCompany lista artículos de la empresa con paginación.
func (r *ArticleRepo) ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.Article, error) {
	query := `
		SELECT id, company_id, title, description, unit_price
		FROM articles WHERE company_id = $1 ORDER BY title LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, companyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	defer rows.Close()
	var list []*entity.Article
	for rows.Next() {
		var a entity.Article
		if err := rows.Scan(&a.ID, &a.CompanyID, &a.Title, &a.Description, &a.UnitPrice); err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		list = append(list, &a)
	}
	return list, rows.Err()
}

func (r *ArticleRepo) GetByID(ctx context.Context, companyID, id string) (*entity.Article, error) {
	query := `
		SELECT id, company_id, title, description, unit_price
		FROM articles WHERE company_id = $1 AND id = $2`
	var a entity.Article
	err := r.q.QueryRow(ctx, query, companyID, id).Scan(&a.ID, &a.CompanyID, &a.Title, &a.Description, &a.UnitPrice)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get article: %w", err)
	}
	return &a, nil
}
