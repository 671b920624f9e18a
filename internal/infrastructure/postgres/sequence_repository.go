package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Documentos-api/internal/domain/entity"
	"github.com/jhoicas/Documentos-api/internal/domain/repository"
	"github.com/jhoicas/Documentos-api/pkg/sequence"
)

var _ repository.SequenceRepository = (*SequenceRepo)(nil)

// SequenceRepo implementación de SequenceRepository (usable con pool o tx).
type SequenceRepo struct {
	q Querier
}

// NewSequenceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSequenceRepository(q Querier) *SequenceRepo {
	return &SequenceRepo{q: q}
}

const sequenceSelect = `SELECT company_id, kind, prefix, date_format, next FROM sequences WHERE company_id = $1 AND kind = $2`

func (r *SequenceRepo) Get(ctx context.Context, companyID string, kind entity.DocumentKind) (*entity.Sequence, error) {
	return r.get(ctx, sequenceSelect, companyID, kind)
}

// GetForUpdate bloquea la fila con FOR UPDATE; solo tiene efecto dentro de una tx.
func (r *SequenceRepo) GetForUpdate(ctx context.Context, companyID string, kind entity.DocumentKind) (*entity.Sequence, error) {
	return r.get(ctx, sequenceSelect+` FOR UPDATE`, companyID, kind)
}

func (r *SequenceRepo) get(ctx context.Context, query, companyID string, kind entity.DocumentKind) (*entity.Sequence, error) {
	var s entity.Sequence
	var k, format string
	err := r.q.QueryRow(ctx, query, companyID, string(kind)).Scan(&s.CompanyID, &k, &s.Prefix, &format, &s.Next)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sequence: %w", err)
	}
	s.Kind = entity.DocumentKind(k)
	s.DateFormat = sequence.DateFormat(format)
	return &s, nil
}

// Save inserta o actualiza la secuencia (upsert por empresa y tipo).
func (r *SequenceRepo) Save(ctx context.Context, seq *entity.Sequence) error {
	query := `
		INSERT INTO sequences (company_id, kind, prefix, date_format, next, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (company_id, kind)
		DO UPDATE SET prefix = EXCLUDED.prefix, date_format = EXCLUDED.date_format,
		              next = EXCLUDED.next, updated_at = NOW()`
	_, err := r.q.Exec(ctx, query, seq.CompanyID, string(seq.Kind), seq.Prefix, string(seq.DateFormat), seq.Next)
	if err != nil {
		return fmt.Errorf("save sequence: %w", err)
	}
	return nil
}
