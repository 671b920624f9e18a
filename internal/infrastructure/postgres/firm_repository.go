package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Documentos-api/internal/domain"
	"github.com/jhoicas/Documentos-api/internal/domain/entity"
	"github.com/jhoicas/Documentos-api/internal/domain/repository"
)

var _ repository.FirmRepository = (*FirmRepo)(nil)

// FirmRepo implementación de FirmRepository (usable con pool o tx).
type FirmRepo struct {
	q Querier
}

// NewFirmRepository construye el adaptador. Pasar pool o tx (Querier).
func NewFirmRepository(q Querier) *FirmRepo {
	return &FirmRepo{q: q}
}

const firmSelect = `SELECT id, company_id, name, tax_id, email, phone, created_at, updated_at FROM firms`

// Create persiste una nueva contraparte.
func (r *FirmRepo) Create(ctx context.Context, firm *entity.Firm) error {
	if firm.ID == "" {
		firm.ID = uuid.New().String()
	}
	query := `
		INSERT INTO firms (id, company_id, name, tax_id, email, phone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		firm.ID, firm.CompanyID, firm.Name, firm.TaxID, firm.Email, firm.Phone, firm.CreatedAt, firm.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("insert firm: %w", err)
	}
	return nil
}

// GetByID obtiene una contraparte de la empresa por ID.
func (r *FirmRepo) GetByID(ctx context.Context, companyID, id string) (*entity.Firm, error) {
	return r.getOne(ctx, firmSelect+` WHERE company_id = $1 AND id = $2`, companyID, id)
}

// GetByTaxID obtiene una contraparte por empresa y NIT/cédula.
func (r *FirmRepo) GetByTaxID(ctx context.Context, companyID, taxID string) (*entity.Firm, error) {
	return r.getOne(ctx, firmSelect+` WHERE company_id = $1 AND tax_id = $2`, companyID, taxID)
}

// ListByCompany lista contrapartes de la empresa con paginación.
func (r *FirmRepo) ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.Firm, error) {
	rows, err := r.q.Query(ctx, firmSelect+` WHERE company_id = $1 ORDER BY name LIMIT $2 OFFSET $3`, companyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list firms: %w", err)
	}
	defer rows.Close()
	var list []*entity.Firm
	for rows.Next() {
		var f entity.Firm
		if err := rows.Scan(&f.ID, &f.CompanyID, &f.Name, &f.TaxID, &f.Email, &f.Phone, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan firm: %w", err)
		}
		list = append(list, &f)
	}
	return list, rows.Err()
}

func (r *FirmRepo) getOne(ctx context.Context, query string, args ...any) (*entity.Firm, error) {
	var f entity.Firm
	err := r.q.QueryRow(ctx, query, args...).Scan(
		&f.ID, &f.CompanyID, &f.Name, &f.TaxID, &f.Email, &f.Phone, &f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get firm: %w", err)
	}
	return &f, nil
}
