package repository

import (
	"context"

	"github.com/jhoicas/Documentos-api/internal/domain/entity"
)

// CurrencyRepository monedas de referencia (solo lectura).
type CurrencyRepository interface {
	List(ctx context.Context) ([]*entity.Currency, error)
	GetByID(ctx context.Context, id string) (*entity.Currency, error)
}

// TaxRepository definiciones de impuestos (solo lectura).
type TaxRepository interface {
	List(ctx context.Context) ([]*entity.Tax, error)
	GetByID(ctx context.Context, id string) (*entity.Tax, error)
}

// ArticleRepository catálogo de artículos de la empresa.
type ArticleRepository interface {
	ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.Article, error)
	GetByID(ctx context.Context, companyID, id string) (*entity.Article, error)
}
