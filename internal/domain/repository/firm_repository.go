package repository

import (
	"context"

	"github.com/jhoicas/Documentos-api/internal/domain/entity"
)

// FirmRepository define el puerto de persistencia para las contrapartes (clientes y proveedores).
type FirmRepository interface {
	Create(ctx context.Context, firm *entity.Firm) error
	GetByID(ctx context.Context, companyID, id string) (*entity.Firm, error)
	GetByTaxID(ctx context.Context, companyID, taxID string) (*entity.Firm, error)
	ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.Firm, error)
}
