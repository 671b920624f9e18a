package repository

import (
	"context"

	"github.com/jhoicas/Documentos-api/internal/domain/entity"
)

// SequenceRepository define el puerto de persistencia para la numeración de documentos.
type SequenceRepository interface {
	// Get devuelve la secuencia del tipo o nil si la empresa aún no la configuró.
	Get(ctx context.Context, companyID string, kind entity.DocumentKind) (*entity.Sequence, error)

	// GetForUpdate como Get pero bloquea la fila hasta el fin de la transacción.
	// Es la consulta crítica al asignar números: dos altas concurrentes no pueden leer el mismo Next.
	GetForUpdate(ctx context.Context, companyID string, kind entity.DocumentKind) (*entity.Sequence, error)

	// Save inserta o actualiza la secuencia.
	Save(ctx context.Context, seq *entity.Sequence) error
}
